package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerSubmitDedups(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Submit(TaskCreateTablet, 100, "tenant-a"))
	require.False(t, l.Submit(TaskCreateTablet, 100, "tenant-a"), "same signature must be rejected as a duplicate")
	require.True(t, l.Submit(TaskCreateTablet, 101, "tenant-a"), "a different signature is independent")
}

func TestLedgerSubmitDistinguishesKind(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Submit(TaskCreateTablet, 100, "tenant-a"))
	require.True(t, l.Submit(TaskDropTablet, 100, "tenant-a"), "the same signature under a different kind is not a duplicate")
}

func TestLedgerRemoveThenResubmit(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Submit(TaskPush, 7, "tenant-a"))
	l.Remove(TaskPush, 7, "tenant-a")
	require.True(t, l.Submit(TaskPush, 7, "tenant-a"), "a removed signature can be resubmitted")
}

func TestLedgerRemoveClampsAtZero(t *testing.T) {
	l := NewLedger()
	// Remove without a matching Submit must not panic or underflow.
	require.NotPanics(t, func() {
		l.Remove(TaskPush, 1, "tenant-a")
		l.Remove(TaskPush, 1, "tenant-a")
	})
	totalUser, totalKind := l.PushTotals("tenant-a")
	require.Zero(t, totalUser)
	require.Zero(t, totalKind)
}

func TestLedgerPushTotalsAndRunning(t *testing.T) {
	l := NewLedger()
	l.Submit(TaskPush, 1, "a")
	l.Submit(TaskPush, 2, "a")
	l.Submit(TaskPush, 3, "b")

	totalA, totalKind := l.PushTotals("a")
	require.Equal(t, uint64(2), totalA)
	require.Equal(t, uint64(3), totalKind)

	l.IncRunning(TaskPush, "a")
	require.Equal(t, uint64(1), l.Running(TaskPush, "a"))
	require.Zero(t, l.Running(TaskPush, "b"))
}

func TestLedgerPendingSnapshot(t *testing.T) {
	l := NewLedger()
	l.Submit(TaskCreateTablet, 1, "a")
	l.Submit(TaskCreateTablet, 2, "a")
	l.Submit(TaskDropTablet, 3, "a")

	pending := l.Pending()
	require.ElementsMatch(t, []int64{1, 2}, pending[TaskCreateTablet])
	require.ElementsMatch(t, []int64{3}, pending[TaskDropTablet])
}
