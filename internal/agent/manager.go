package agent

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/batermj/incubator-doris/internal/config"
	"github.com/batermj/incubator-doris/internal/engine"
)

var ignoreSignalsOnce sync.Once

// ignoreChildSignals is the Go-idiomatic stand-in for the original's
// per-thread pthread_sigmask(SIGCHLD, SIGHUP, SIGPIPE) call: goroutines
// don't carry a per-thread signal mask, so the equivalent is a single
// process-wide ignore performed once at startup.
func ignoreChildSignals() {
	ignoreSignalsOnce.Do(func() {
		signal.Ignore(syscall.SIGCHLD, syscall.SIGHUP, syscall.SIGPIPE)
	})
}

// Engines bundles the external contracts a Manager wires handlers
// against. Cgroups defaults to a no-op when nil.
type Engines struct {
	Storage   engine.StorageEngine
	Tablets   engine.TabletManager
	Snapshots engine.SnapshotManager
	Loader    engine.SnapshotLoader
	Cgroups   engine.CgroupRegistrar
}

// Manager owns every pool, the ledger, the report-version counter, the
// coordinator client, and the three periodic reporters, wiring them
// together the way cmd/lotus-seal-worker/main.go wires a sealer
// worker's schedulers and task types.
type Manager struct {
	Dispatcher *Dispatcher
	Ledger     *Ledger

	pools     map[TaskKind]Enqueuer
	pushPools []*PushPool
	reporters []interface{ Run(context.Context) }
}

// NewManager constructs every pool named in spec §4 and registers them
// with a fresh Dispatcher. coordinator may be nil for tests that only
// exercise submission and queueing, but any pool reaching FinishTask or
// Report will then panic — production callers always supply a dialed
// rpcclient.Client.
func NewManager(cfg *config.Config, engines Engines, coordinator Coordinator, gate *coordinatorGate) *Manager {
	if engines.Cgroups == nil {
		engines.Cgroups = engine.NopCgroupRegistrar{}
	}

	ledger := NewLedger()
	rv := NewReportVersion()
	finisher := NewFinisher(coordinator, cfg.SleepOneSecond)
	backend := Backend{Host: cfg.Backend.Host, BEPort: cfg.Backend.BEPort, HTTPPort: cfg.Backend.HTTPPort}
	dispatcher := NewDispatcher(ledger)

	m := &Manager{Dispatcher: dispatcher, Ledger: ledger, pools: make(map[TaskKind]Enqueuer)}

	simple := []struct {
		kind    TaskKind
		workers int
		bumps   bool
		handler Handler
	}{
		{TaskCreateTablet, cfg.Workers.CreateTablet, true, NewCreateTabletHandler(engines.Storage)},
		{TaskDropTablet, cfg.Workers.DropTablet, false, NewDropTabletHandler(engines.Storage)},
		{TaskAlterTablet, cfg.Workers.AlterTablet, true, cgroupWrap(engines.Cgroups, NewAlterTabletHandler(engines.Storage, engines.Tablets))},
		{TaskPublishVersion, cfg.Workers.PublishVersion, false, NewPublishVersionHandler(engines.Storage, cfg.SleepOneSecond)},
		{TaskClearAlterTask, cfg.Workers.ClearAlterTask, false, NewClearAlterTaskHandler(engines.Storage)},
		{TaskClearTransactionTask, cfg.Workers.ClearTransactionTask, false, NewClearTransactionTaskHandler(engines.Storage)},
		{TaskClone, cfg.Workers.Clone, false, cgroupWrap(engines.Cgroups, NewCloneHandler(engines.Storage))},
		{TaskStorageMediumMigrate, cfg.Workers.StorageMediumMigrate, false, cgroupWrap(engines.Cgroups, NewStorageMediumMigrateHandler(engines.Storage))},
		{TaskCheckConsistency, cfg.Workers.CheckConsistency, false, cgroupWrap(engines.Cgroups, NewCheckConsistencyHandler(engines.Storage))},
		{TaskUpload, cfg.Workers.Upload, false, NewUploadHandler(engines.Loader)},
		{TaskDownload, cfg.Workers.Download, false, cgroupWrap(engines.Cgroups, NewDownloadHandler(engines.Loader))},
		{TaskMakeSnapshot, cfg.Workers.MakeSnapshot, false, cgroupWrap(engines.Cgroups, NewMakeSnapshotHandler(engines.Snapshots))},
		{TaskReleaseSnapshot, cfg.Workers.ReleaseSnapshot, false, cgroupWrap(engines.Cgroups, NewReleaseSnapshotHandler(engines.Snapshots))},
		{TaskMoveDir, 1, false, cgroupWrap(engines.Cgroups, NewMoveDirHandler(engines.Tablets, engines.Loader))},
		{TaskRecoverTablet, 1, false, cgroupWrap(engines.Cgroups, NewRecoverTabletHandler(engines.Storage))},
	}
	for _, s := range simple {
		pool := NewPool(s.kind, s.workers, s.handler, ledger, rv, finisher, backend, s.bumps)
		m.pools[s.kind] = pool
		dispatcher.Register(s.kind, pool)
	}

	pushHandler := cgroupWrap(engines.Cgroups, NewPushHandler(engines.Storage))
	pushCounts := map[TaskKind][2]int{
		TaskPush:         {cfg.Workers.PushNormalPriority, cfg.Workers.PushHighPriority},
		TaskRealtimePush: {cfg.Workers.PushNormalPriority, cfg.Workers.PushHighPriority},
		TaskDelete:       {cfg.Workers.Delete, 0},
	}
	for _, kind := range []TaskKind{TaskPush, TaskRealtimePush, TaskDelete} {
		counts := pushCounts[kind]
		pp := NewPushPool(kind, counts[0], counts[1], pushHandler, ledger, rv, finisher, backend)
		pp.SleepSeconds = cfg.SleepOneSecond
		m.pushPools = append(m.pushPools, pp)
		dispatcher.Register(kind, pp)
	}

	up := func() bool { return gate == nil || gate.Ready() }
	m.reporters = []interface{ Run(context.Context) }{
		&TaskReporter{
			Reporter: Reporter{Name: "report_task", IntervalSecs: cfg.Report.TaskSeconds, Backend: backend, Coordinator: coordinator, CoordinatorUp: up},
			Ledger:   ledger,
		},
		&DiskReporter{
			Reporter: Reporter{Name: "report_disk", IntervalSecs: cfg.Report.DiskSeconds, Backend: backend, Coordinator: coordinator, CoordinatorUp: up},
			Engine:   engines.Storage,
		},
		&TabletReporter{
			Reporter:      Reporter{Name: "report_tablet", IntervalSecs: cfg.Report.TabletSeconds, Backend: backend, Coordinator: coordinator, CoordinatorUp: up},
			Tablets:       engines.Tablets,
			Engine:        engines.Storage,
			ReportVersion: rv,
			ForceRecovery: cfg.ForceRecovery,
		},
	}

	return m
}

// cgroupWrap applies the cgroup registrar before delegating to h,
// matching the original's CgroupsMgr::apply_system_cgroup() call at
// the top of most handler loops. A registration failure is logged and
// does not block the task.
func cgroupWrap(reg engine.CgroupRegistrar, h Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		if err := reg.Apply(); err != nil {
			log.Warnw("apply system cgroup failed", "kind", req.Kind, "err", err)
		}
		return h.Handle(ctx, req)
	})
}

// Start spawns every worker goroutine and the three reporters and
// returns once they are all launched. It uses an errgroup only to
// structure that launch, not to join on shutdown: the workers loop
// forever draining their queues and are detached, matching the
// original's pthread_detach model. Callers block the process on their
// own signal-driven context instead of on Start's return.
func (m *Manager) Start(ctx context.Context) error {
	ignoreChildSignals()

	g, gctx := errgroup.WithContext(ctx)

	for _, pool := range m.pools {
		p := pool.(*Pool)
		for i := 0; i < p.Workers; i++ {
			g.Go(func() error {
				p.Run(gctx)
				return nil
			})
		}
	}
	for _, pp := range m.pushPools {
		pp := pp
		for i := 0; i < pp.PoolSize(); i++ {
			g.Go(func() error {
				pp.RunWorker(gctx)
				return nil
			})
		}
	}
	for _, r := range m.reporters {
		r := r
		g.Go(func() error {
			r.Run(gctx)
			return nil
		})
	}

	return nil
}
