package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tbkit/config"
	"github.com/sarchlab/tbkit/datarecording"
	"github.com/sarchlab/tbkit/monitoring"
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/sim"
	"github.com/sarchlab/tbkit/testbench"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the counter test once and print the verdict.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			trace, _ := cmd.Flags().GetString("trace")

			result, err := runBench(cfg, trace, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !result.Passed() {
				return errors.Errorf("run %s", result.Verdict)
			}

			return nil
		},
	}

	f := runCmd.Flags()
	f.String("config", "", "YAML file with the run parameters")
	f.StringSlice("env-file", nil, "Files to load TBKIT_* variables from (default .env)")
	f.String("log-level", "", "Log level: trace, info or severe")
	f.String("trace", "", "Write the sampled value and enable trace to this file")
	f.String("recorder", "", "Recorder backend: none, sqlite or clickhouse")
	f.String("recorder-path", "", "SQLite file name without the extension")
	f.Bool("global-ids", false, "Use IDs that are unique across runs sharing a database")
	f.Bool("monitor", false, "Serve the monitoring page during the run")
	f.Int("port", 0, "Port of the monitoring server (0 picks a random one)")
	f.Bool("open-browser", false, "Open the monitoring page in the browser")
	f.Bool("hold-objection", false, "Keep the test objection raised so the run times out")
	f.Uint64("ceiling", 0, "Maximum simulation time")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

// loadConfig builds the configuration from the defaults, the env files, the
// YAML file, the environment and finally the command line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	f := cmd.Flags()

	envFiles, _ := f.GetStringSlice("env-file")
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return config.Config{}, err
	}

	path, _ := f.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}

	if f.Changed("recorder") {
		cfg.Recorder.Backend, _ = f.GetString("recorder")
	}

	if f.Changed("recorder-path") {
		cfg.Recorder.Path, _ = f.GetString("recorder-path")
	}

	if f.Changed("global-ids") {
		cfg.Recorder.GlobalIDs, _ = f.GetBool("global-ids")
	}

	if f.Changed("monitor") {
		cfg.Monitor.Enabled, _ = f.GetBool("monitor")
	}

	if f.Changed("port") {
		cfg.Monitor.Port, _ = f.GetInt("port")
	}

	if f.Changed("open-browser") {
		cfg.Monitor.OpenBrowser, _ = f.GetBool("open-browser")
	}

	if f.Changed("hold-objection") {
		cfg.HoldObjection, _ = f.GetBool("hold-objection")
	}

	if f.Changed("ceiling") {
		cfg.Ceiling, _ = f.GetUint64("ceiling")
	}

	return cfg, cfg.Validate()
}

func newRecorder(cfg config.RecorderConfig) datarecording.DataRecorder {
	switch cfg.Backend {
	case config.RecorderSQLite:
		return datarecording.New(cfg.Path)
	case config.RecorderClickHouse:
		return datarecording.NewClickHouseRecorder(
			datarecording.ClickHouseOptions{
				Addr:     cfg.Addr,
				Database: cfg.Database,
				Username: cfg.Username,
				Password: cfg.Password,
			})
	default:
		return nil
	}
}

func runBench(
	cfg config.Config,
	tracePath string,
	out, logOut io.Writer,
) (phase.Result, error) {
	level, err := sim.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return phase.Result{}, err
	}

	if cfg.Recorder.GlobalIDs {
		sim.UseGlobalIDGenerator()
	}

	opts := []testbench.BenchOption{
		testbench.WithLogger(log.New(logOut, "", 0), level),
	}

	recorder := newRecorder(cfg.Recorder)
	if recorder != nil {
		defer recorder.Close()

		opts = append(opts, testbench.WithRecorder(recorder))
	}

	bench, err := testbench.NewBench(cfg, opts...)
	if err != nil {
		return phase.Result{}, err
	}

	if cfg.Monitor.Enabled {
		stop, err := startMonitor(cfg, bench, out)
		if err != nil {
			return phase.Result{}, err
		}
		defer stop()
	}

	result := bench.Run()

	if tracePath != "" {
		if err := writeTrace(bench, tracePath); err != nil {
			return result, err
		}
	}

	printSummary(out, bench, result)

	return result, nil
}

func startMonitor(
	cfg config.Config,
	bench *testbench.Bench,
	out io.Writer,
) (func(), error) {
	m := monitoring.NewMonitor().
		WithPortNumber(cfg.Monitor.Port).
		WithBrowser(cfg.Monitor.OpenBrowser)
	m.RegisterController(bench.Controller)

	bar := m.CreateProgressBar("Simulation time", cfg.Ceiling)
	bench.Interface.Clk.OnPosedge(func() {
		bar.SetFinished(uint64(bench.Engine.CurrentTime()))
	})

	url, err := m.StartServer()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Monitoring simulation with %s\n", url)

	return func() {
		m.CompleteProgressBar(bar)
		_ = m.StopServer()
	}, nil
}

func writeTrace(bench *testbench.Bench, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create trace file")
	}
	defer f.Close()

	return bench.WriteTrace(f)
}

func printSummary(w io.Writer, bench *testbench.Bench, result phase.Result) {
	stats := bench.Env.Scoreboard.Stats()

	fmt.Fprintf(w, "verdict: %s\n", result.Verdict)
	fmt.Fprintf(w, "end time: %d\n", result.EndTime)
	fmt.Fprintf(w, "checks: %d, matches: %d, mismatches: %d\n",
		stats.Checks, stats.Matches, stats.Mismatches)
	fmt.Fprintf(w, "observed: %v\n", bench.ObservedValues())

	for _, m := range bench.Mismatches() {
		fmt.Fprintf(w, "mismatch %s\n", m)
	}

	if result.Err != nil {
		fmt.Fprintf(w, "error: %v\n", result.Err)
	}
}
