package agent

import (
	"context"

	"github.com/batermj/incubator-doris/internal/metrics"
)

// Enqueuer is implemented by both Pool and PushPool so Submit can stay
// agnostic to which kind of pool backs a given task kind.
type Enqueuer interface {
	Enqueue(req TaskRequest)
}

// Dispatcher is the inbound submit path of spec §4.1: it is the only
// caller that needs to know the full kind -> pool mapping, so a
// coordinator-facing RPC server has one thing to call regardless of
// task kind.
type Dispatcher struct {
	Ledger *Ledger
	pools  map[TaskKind]Enqueuer
}

func NewDispatcher(ledger *Ledger) *Dispatcher {
	return &Dispatcher{Ledger: ledger, pools: make(map[TaskKind]Enqueuer)}
}

// Register wires a pool into the dispatcher under its task kind.
func (d *Dispatcher) Register(kind TaskKind, pool Enqueuer) {
	d.pools[kind] = pool
}

// Submit validates signature uniqueness, records acceptance in the
// ledger, and enqueues on the corresponding pool. Duplicate submissions
// are silently dropped: no error, no enqueue.
func (d *Dispatcher) Submit(ctx context.Context, req TaskRequest) {
	accepted := d.Ledger.Submit(req.Kind, req.Signature, req.User)
	if !accepted {
		log.Infow("duplicate task submission ignored", "kind", req.Kind, "signature", req.Signature)
		metrics.Inc(ctx, metrics.TaskDuplicate, string(req.Kind))
		return
	}
	metrics.Inc(ctx, metrics.TaskAccepted, string(req.Kind))

	pool, ok := d.pools[req.Kind]
	if !ok {
		log.Errorw("no pool registered for task kind", "kind", req.Kind, "signature", req.Signature)
		d.Ledger.Remove(req.Kind, req.Signature, req.User)
		return
	}
	pool.Enqueue(req)
}
