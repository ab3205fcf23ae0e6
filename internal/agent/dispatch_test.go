package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	received []TaskRequest
}

func (r *recordingEnqueuer) Enqueue(req TaskRequest) {
	r.received = append(r.received, req)
}

func TestDispatcherSubmitEnqueuesOnce(t *testing.T) {
	ledger := NewLedger()
	d := NewDispatcher(ledger)
	pool := &recordingEnqueuer{}
	d.Register(TaskCreateTablet, pool)

	req := TaskRequest{Kind: TaskCreateTablet, Signature: 42, User: "tenant-a"}
	d.Submit(context.Background(), req)
	require.Len(t, pool.received, 1)

	// A duplicate submission must be dropped silently: no second
	// enqueue, no error.
	d.Submit(context.Background(), req)
	require.Len(t, pool.received, 1)
}

func TestDispatcherSubmitUnknownKindRollsBackLedger(t *testing.T) {
	ledger := NewLedger()
	d := NewDispatcher(ledger)

	req := TaskRequest{Kind: TaskCreateTablet, Signature: 1, User: "tenant-a"}
	d.Submit(context.Background(), req)

	// With no pool registered, the ledger entry must be rolled back so a
	// retried submission of the same signature is not treated as a
	// duplicate forever.
	pool := &recordingEnqueuer{}
	d.Register(TaskCreateTablet, pool)
	d.Submit(context.Background(), req)
	require.Len(t, pool.received, 1)
}
