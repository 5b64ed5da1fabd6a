package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/sampling"
	"github.com/sarchlab/tbkit/scoreboard"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

type plainComponent struct {
	name  string
	Level int
}

func (c *plainComponent) Name() string { return c.name }

var _ = Describe("Monitor", func() {
	var (
		engine  *sim.SerialEngine
		tracker *phase.ObjectionTracker
		sb      *scoreboard.Scoreboard
		m       *Monitor
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		m.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		tracker = phase.NewObjectionTracker()
		sb = scoreboard.New("Scoreboard", signal.New("clk", 0), 15)

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterTracker(tracker)
		m.RegisterComponent(&plainComponent{name: "Comp", Level: 3})
		m.RegisterComponent(sb)
	})

	It("should report the time", func() {
		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":0}`))
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		Expect(rec.Body.String()).To(Equal(`["Comp","Scoreboard"]`))
	})

	It("should return 404 for unknown components", func() {
		rec := get("/api/component/Nope")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize a component", func() {
		rec := get("/api/component/Comp")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Level"))
	})

	It("should list outstanding objections", func() {
		tracker.Raise(phase.PhaseRun, "Test", "test body")

		rec := get("/api/objections")

		var rsp []objectionRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(Equal([]objectionRsp{
			{Owner: "Test", Reason: "test body", Phase: "run"},
		}))
	})

	It("should list scoreboard counters", func() {
		sb.WriteValue(sampling.Sample[uint64]{Time: 40, Value: 0})

		rec := get("/api/scoreboard")

		var rsp []scoreboardRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(Equal([]scoreboardRsp{{Name: "Scoreboard"}}))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Run", 100)
		bar.SetFinished(250)

		rec := get("/api/progress")

		var rsp []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0]["name"]).To(Equal("Run"))
		Expect(rsp[0]["finished"]).To(BeEquivalentTo(100))

		m.CompleteProgressBar(bar)
		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should ignore privileged port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})
})
