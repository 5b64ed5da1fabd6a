package scoreboard

import (
	. "github.com/onsi/ginkgo/v2"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

var _ = Describe("CheckRecorder", func() {
	var (
		mockCtrl     *gomock.Controller
		dataRecorder *MockDataRecorder
		recorder     *CheckRecorder
		sb           *Scoreboard
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dataRecorder = NewMockDataRecorder(mockCtrl)
		dataRecorder.EXPECT().CreateTable(ChecksTable, CheckEntry{})
		recorder = NewCheckRecorder(dataRecorder, "run-1")
		sb = New("Scoreboard", signal.New("clk", 0), 15)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record a mismatch", func() {
		dataRecorder.EXPECT().InsertData(ChecksTable, CheckEntry{
			RunID:      "run-1",
			Scoreboard: "Scoreboard",
			Time:       15,
			Expected:   2,
			Observed:   3,
			Enabled:    true,
		})

		recorder.Func(sim.HookCtx{Domain: sb, Pos: HookPosMismatch,
			Item: Check{Time: 15, Expected: 2, Observed: 3, Enabled: true}})
	})

	It("should record a baseline as a match", func() {
		dataRecorder.EXPECT().InsertData(ChecksTable, CheckEntry{
			RunID:      "run-1",
			Scoreboard: "Scoreboard",
			Time:       45,
			Expected:   0,
			Observed:   0,
			Match:      true,
			Baseline:   true,
		})

		recorder.Func(sim.HookCtx{Domain: sb, Pos: HookPosBaseline,
			Item: Check{Time: 45}})
	})

	It("should ignore other items", func() {
		recorder.Func(sim.HookCtx{Domain: sb, Pos: HookPosMatch, Item: 3})
	})
})
