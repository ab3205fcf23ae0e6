package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// selectIndex is exercised directly against a hand-built queue so the
// fair-scheduler algorithm can be checked without spinning up worker
// goroutines.

func TestSelectIndexHighBandPrefersHighPriority(t *testing.T) {
	p := &PushPool{Ledger: NewLedger()}
	p.queue = []TaskRequest{
		{Signature: 1, User: "a", Priority: PriorityNormal},
		{Signature: 2, User: "a", Priority: PriorityHigh},
	}
	idx := p.selectIndex(BandHigh)
	require.Equal(t, 1, idx, "HIGH band must pick the first HIGH-priority entry, skipping NORMAL ones")
}

func TestSelectIndexHighBandMissReturnsNegativeOne(t *testing.T) {
	p := &PushPool{Ledger: NewLedger()}
	p.queue = []TaskRequest{{Signature: 1, User: "a", Priority: PriorityNormal}}
	require.Equal(t, -1, p.selectIndex(BandHigh))
}

func TestSelectIndexNormalBandBootstrapsOnZeroTotals(t *testing.T) {
	p := &PushPool{Ledger: NewLedger(), NormalCount: 2, HighCount: 0}
	p.queue = []TaskRequest{{Signature: 1, User: "a", Priority: PriorityNormal}}
	// No accepted/running history for "a": totalKind == 0, so the
	// bootstrap exception applies and the first entry qualifies.
	require.Equal(t, 0, p.selectIndex(BandNormal))
}

func TestSelectIndexNormalBandEnforcesFairShare(t *testing.T) {
	ledger := NewLedger()
	p := &PushPool{Kind: TaskPush, Ledger: ledger, NormalCount: 2, HighCount: 0}

	// Tenant "a" has accepted 8 of the last 10 push tasks and already
	// has 2 running; tenant "b" has accepted 2 of 10 and has 0 running.
	for i := 0; i < 8; i++ {
		ledger.Submit(TaskPush, int64(i), "a")
	}
	for i := 8; i < 10; i++ {
		ledger.Submit(TaskPush, int64(i), "b")
	}
	ledger.IncRunning(TaskPush, "a")
	ledger.IncRunning(TaskPush, "a")

	p.queue = []TaskRequest{
		{Signature: 100, User: "a", Priority: PriorityNormal},
		{Signature: 101, User: "b", Priority: PriorityNormal},
	}

	// a: projected = (2+1)/2 = 1.5, share = 8/10 = 0.8 -> disqualified
	// b: running == 0 -> bootstrap qualifies
	require.Equal(t, 1, p.selectIndex(BandNormal), "the over-share tenant must be skipped in favor of the under-share tenant")
}

func TestSelectIndexNormalBandAllDisqualifiedFallsBackToNegativeOne(t *testing.T) {
	ledger := NewLedger()
	p := &PushPool{Kind: TaskPush, Ledger: ledger, NormalCount: 1, HighCount: 0}

	for i := 0; i < 10; i++ {
		ledger.Submit(TaskPush, int64(i), "a")
	}
	ledger.IncRunning(TaskPush, "a")
	ledger.IncRunning(TaskPush, "a")
	ledger.IncRunning(TaskPush, "a")

	p.queue = []TaskRequest{{Signature: 200, User: "a", Priority: PriorityNormal}}
	// projected = 4/1 = 4.0, share = 10/10 = 1.0 -> disqualified, and
	// there is no other tenant queued to fall back to.
	require.Equal(t, -1, p.selectIndex(BandNormal))
}
