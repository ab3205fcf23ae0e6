package agent

import (
	"context"
	"sync"

	"github.com/batermj/incubator-doris/internal/metrics"
)

// Pool is a fixed-size worker group draining a single per-kind FIFO
// queue, per spec §3/§4.2. Push is the exception (see push_pool.go);
// every other kind uses this generic drain-handle-complete shell,
// parameterized by a Handler rather than picked out of a switch.
type Pool struct {
	Kind               TaskKind
	Handler            Handler
	Workers            int
	Ledger             *Ledger
	ReportVersion      *ReportVersion
	Finisher           *Finisher
	Backend            Backend
	BumpsReportVersion bool

	mu    sync.Mutex
	cond  *sync.Cond
	queue []TaskRequest
}

// NewPool constructs a pool. bumpsReportVersion is true only for
// CreateTablet and AlterTablet among the generic pools (Push bumps it
// from its own loop).
func NewPool(kind TaskKind, workers int, handler Handler, ledger *Ledger, rv *ReportVersion, finisher *Finisher, backend Backend, bumpsReportVersion bool) *Pool {
	p := &Pool{
		Kind:               kind,
		Handler:            handler,
		Workers:            workers,
		Ledger:             ledger,
		ReportVersion:      rv,
		Finisher:           finisher,
		Backend:            backend,
		BumpsReportVersion: bumpsReportVersion,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Enqueue appends req to the pool's queue and wakes one waiting
// worker. The dispatcher calls this only after the ledger has already
// accepted the submission (§4.1 step 4).
func (p *Pool) Enqueue(req TaskRequest) {
	p.mu.Lock()
	p.queue = append(p.queue, req)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *Pool) dequeue() TaskRequest {
	p.mu.Lock()
	for len(p.queue) == 0 {
		p.cond.Wait()
	}
	req := p.queue[0]
	p.queue = p.queue[1:]
	p.mu.Unlock()
	return req
}

// QueueLen reports the current queue depth, used by the metrics gauge.
func (p *Pool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Run is one worker's loop body; Manager.Start spawns Workers copies of
// it as goroutines.
func (p *Pool) Run(ctx context.Context) {
	for {
		req := p.dequeue()
		metrics.Set(ctx, metrics.QueueDepth, string(p.Kind), int64(p.QueueLen()))

		done := metrics.Timer(ctx, metrics.TaskLatencyMillis)
		result := p.Handler.Handle(ctx, req)
		done()

		var version int64
		if p.BumpsReportVersion {
			if result.Status.Code == StatusOK {
				version = p.ReportVersion.Bump()
			} else {
				version = p.ReportVersion.Load()
			}
		}
		finish := buildFinish(p.Backend, req, result, version, p.BumpsReportVersion)

		if result.Status.Code == StatusOK {
			metrics.Inc(ctx, metrics.TaskCompleted, string(p.Kind))
		} else {
			metrics.Inc(ctx, metrics.TaskFailed, string(p.Kind))
		}

		p.Finisher.FinishWithRetry(ctx, finish)
		p.Ledger.Remove(p.Kind, req.Signature, req.User)
	}
}
