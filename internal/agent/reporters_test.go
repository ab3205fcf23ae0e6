package agent

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskReporterHoldsReportsWhileCoordinatorIsDown(t *testing.T) {
	coord := &flakyCoordinator{}
	ledger := NewLedger()
	ledger.Submit(TaskCreateTablet, 1, "a")

	gate := &coordinatorGate{}
	r := &TaskReporter{
		Reporter: Reporter{IntervalSecs: 1, Coordinator: coord, CoordinatorUp: gate.Ready},
		Ledger:   ledger,
	}
	// The 1-second ticker fires once before the deadline, so Run reaches
	// waitForCoordinator and is still waiting there when ctx expires.
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	// The gate stays closed; Run must block in waitForCoordinator and
	// never call Report.
	<-done
	require.Zero(t, atomic.LoadInt32(&coord.reports))
}

func TestCoordinatorGateOpensOnce(t *testing.T) {
	gate := &coordinatorGate{}
	require.False(t, gate.Ready())
	gate.Open()
	require.True(t, gate.Ready())
	gate.Open()
	require.True(t, gate.Ready())
}
