package agent

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/batermj/incubator-doris/internal/engine"
	"github.com/batermj/incubator-doris/internal/metrics"
)

// Reporter runs one of the three periodic state-push loops (task,
// disk, tablet). Each loop suppresses sending until the coordinator
// address is known, matching the original's wait-for-master behavior.
type Reporter struct {
	Name          string
	IntervalSecs  int
	Backend       Backend
	Coordinator   Coordinator
	CoordinatorUp func() bool
}

func (r *Reporter) interval() time.Duration {
	secs := r.IntervalSecs
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func (r *Reporter) waitForCoordinator(ctx context.Context) bool {
	for r.CoordinatorUp != nil && !r.CoordinatorUp() {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
	return true
}

// TaskReporter periodically snapshots the ledger's pending tasks and
// reports them to the coordinator.
type TaskReporter struct {
	Reporter
	Ledger *Ledger
}

func (r *TaskReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if !r.waitForCoordinator(ctx) {
			return
		}
		req := ReportRequest{Backend: r.Backend, Tasks: r.Ledger.Pending()}
		metrics.Inc(ctx, metrics.ReportTaskRequestsTotal, "")
		if _, err := r.Coordinator.Report(ctx, req); err != nil {
			metrics.Inc(ctx, metrics.ReportTaskRequestsFailed, "")
			log.Warnw("report task failed", "err", err)
		}
	}
}

// DiskReporter periodically enumerates data directories and reports
// their usage, then blocks on the engine's disk-state notify primitive
// so a mid-interval state change triggers an immediate re-report.
type DiskReporter struct {
	Reporter
	Engine engine.StorageEngine
}

func (r *DiskReporter) Run(ctx context.Context) {
	for {
		if !r.waitForCoordinator(ctx) {
			return
		}
		dirs, err := r.Engine.AllDataDirInfo(ctx)
		if err != nil {
			log.Warnw("enumerate data dirs failed", "err", err)
		} else {
			disks := make(map[string]DiskReport, len(dirs))
			for _, d := range dirs {
				disks[d.Path] = DiskReport{
					Path:           d.Path,
					PathHash:       d.PathHash,
					Capacity:       d.Capacity,
					UsedCapacity:   d.DataUsedCapacity,
					AvailableBytes: d.Available,
					Used:           d.IsUsed,
				}
			}
			req := ReportRequest{Backend: r.Backend, Disks: disks}
			metrics.Inc(ctx, metrics.ReportDiskRequestsTotal, "")
			if _, err := r.Coordinator.Report(ctx, req); err != nil {
				metrics.Inc(ctx, metrics.ReportDiskRequestsFailed, "")
				log.Warnw("report disk state failed", "err", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
		r.Engine.WaitForReportNotify(ctx, int64(r.interval().Seconds()), false)
	}
}

// TabletReporter periodically dumps the full tablet catalogue along
// with the current report version, then blocks on the tablet-state
// notify primitive. A catalogue dump failure skips this round rather
// than reporting a partial list. WaitForReportNotify is a
// storage-engine primitive (spec §6), not a tablet-manager one, so it
// is called on Engine rather than Tablets.
type TabletReporter struct {
	Reporter
	Tablets       engine.TabletManager
	Engine        engine.StorageEngine
	ReportVersion *ReportVersion
	ForceRecovery bool
}

func (r *TabletReporter) Run(ctx context.Context) {
	for {
		if !r.waitForCoordinator(ctx) {
			return
		}
		tablets, err := r.Tablets.ReportAllTabletsInfo(ctx)
		if err != nil {
			log.Warnw("report tablet: catalogue dump failed, skipping round", "err", err)
		} else {
			req := ReportRequest{
				Backend:       r.Backend,
				ForceRecover:  r.ForceRecovery,
				ReportVersion: r.ReportVersion.Load(),
				Tablets:       tablets,
			}
			if _, err := r.Coordinator.Report(ctx, req); err != nil {
				metrics.Inc(ctx, metrics.ReportTabletRequestsFailed, "")
				log.Warnw("report tablet failed", "err", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
		r.Engine.WaitForReportNotify(ctx, int64(r.interval().Seconds()), true)
	}
}

// coordinatorGate is a small latch that, once opened, lets all three
// reporters send; NewManager shares it with them via CoordinatorUp, and
// a nil gate there means the reporters send immediately.
type coordinatorGate struct {
	up atomic.Bool
}

func (g *coordinatorGate) Ready() bool { return g.up.Load() }
func (g *coordinatorGate) Open()       { g.up.Store(true) }
