package agent

import (
	"context"
	"sync"
	"time"

	"github.com/batermj/incubator-doris/internal/metrics"
)

// Band is the HIGH/NORMAL partition of the push pool's workers.
type Band string

const (
	BandHigh   Band = "HIGH"
	BandNormal Band = "NORMAL"
)

// bandAssigner hands out HIGH band to the first highCount workers to
// ask, NORMAL to the rest — the original source's static
// s_worker_count counter, preserved as a per-pool value built by
// NewPushPool rather than a package-level static (spec.md §9 design
// note).
type bandAssigner struct {
	mu        sync.Mutex
	remaining int
}

func newBandAssigner(highCount int) *bandAssigner {
	return &bandAssigner{remaining: highCount}
}

func (b *bandAssigner) assign() Band {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining > 0 {
		b.remaining--
		return BandHigh
	}
	return BandNormal
}

// PushPool is the non-FIFO worker pool for TaskPush/TaskRealtimePush/
// TaskDelete, implementing the fair scheduler of spec §4.3.
type PushPool struct {
	Kind          TaskKind
	Handler       Handler
	NormalCount   int
	HighCount     int
	Ledger        *Ledger
	ReportVersion *ReportVersion
	Finisher      *Finisher
	Backend       Backend
	SleepSeconds  int

	bands *bandAssigner

	mu    sync.Mutex
	cond  *sync.Cond
	queue []TaskRequest
}

func NewPushPool(kind TaskKind, normalCount, highCount int, handler Handler, ledger *Ledger, rv *ReportVersion, finisher *Finisher, backend Backend) *PushPool {
	p := &PushPool{
		Kind:          kind,
		Handler:       handler,
		NormalCount:   normalCount,
		HighCount:     highCount,
		Ledger:        ledger,
		ReportVersion: rv,
		Finisher:      finisher,
		Backend:       backend,
		SleepSeconds:  1,
		bands:         newBandAssigner(highCount),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (p *PushPool) PoolSize() int { return p.NormalCount + p.HighCount }

func (p *PushPool) Enqueue(req TaskRequest) {
	p.mu.Lock()
	p.queue = append(p.queue, req)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *PushPool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// selectIndex implements spec §4.3's selection rule over the queue
// held under p.mu. It must be called with the lock held.
func (p *PushPool) selectIndex(band Band) int {
	disqualified := make(map[string]struct{})
	for i, req := range p.queue {
		if band == BandHigh {
			if req.Priority == PriorityHigh {
				return i
			}
			continue
		}

		user := req.User
		if _, bad := disqualified[user]; bad {
			continue
		}

		totalUser, totalKind := p.Ledger.PushTotals(user)
		running := p.Ledger.Running(p.Kind, user)

		qualifies := running == 0 || totalKind == 0 // 0/0 treated as qualify, per spec numeric edge
		if !qualifies {
			projected := float64(running+1) / float64(p.PoolSize())
			share := float64(totalUser) / float64(totalKind)
			qualifies = projected <= share
		}

		if qualifies {
			return i
		}
		disqualified[user] = struct{}{}
	}
	return -1
}

// RunWorker is one push worker's loop body. band is decided once, at
// spawn time, via the shared bandAssigner.
func (p *PushPool) RunWorker(ctx context.Context) {
	band := p.bands.assign()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 {
			p.cond.Wait()
		}

		idx := p.selectIndex(band)
		if idx < 0 {
			if band == BandHigh {
				// No HIGH task queued; let a NORMAL worker take the
				// head of the queue instead. Preserved literally: this
				// spins the HIGH worker every second under heavy
				// NORMAL-only load (spec.md §9 open question).
				p.cond.Signal()
				p.mu.Unlock()
				time.Sleep(time.Duration(p.SleepSeconds) * time.Second)
				continue
			}
			idx = 0
		}

		req := p.queue[idx]
		p.queue = append(p.queue[:idx], p.queue[idx+1:]...)
		p.mu.Unlock()

		p.Ledger.IncRunning(p.Kind, req.User)
		metrics.Set(ctx, metrics.QueueDepth, string(p.Kind), int64(p.QueueLen()))

		done := metrics.Timer(ctx, metrics.TaskLatencyMillis)
		result := p.Handler.Handle(ctx, req)
		done()

		if result.SkipCoordinator {
			// Idempotent replay (PUSH_HAD_LOADED): drop from the
			// ledger, no finish-task RPC.
			p.Ledger.Remove(p.Kind, req.Signature, req.User)
			continue
		}

		var version int64
		if result.Status.Code == StatusOK {
			version = p.ReportVersion.Bump()
			metrics.Inc(ctx, metrics.TaskCompleted, string(p.Kind))
		} else {
			version = p.ReportVersion.Load()
			metrics.Inc(ctx, metrics.TaskFailed, string(p.Kind))
		}
		finish := buildFinish(p.Backend, req, result, version, true)

		p.Finisher.FinishWithRetry(ctx, finish)
		p.Ledger.Remove(p.Kind, req.Signature, req.User)
	}
}
