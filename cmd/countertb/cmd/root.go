// Package cmd provides the command-line interface of the counter testbench.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "countertb",
	Short: "countertb drives a clocked counter and checks it cycle by cycle.",
	Long: `countertb resets a counter, drives an alternating enable ` +
		`pattern into it, samples its output on every rising edge and ` +
		`compares each value against a reference prediction. The run ends ` +
		`when no phase objection is outstanding or the time ceiling is hit.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. The exit code is nonzero if the command fails.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
