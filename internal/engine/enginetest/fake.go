// Package enginetest provides in-memory fakes of the engine package's
// contracts, in the style of the teacher's storage/sealer/mock package:
// small mutex-protected maps standing in for the real storage engine,
// usable both by cmd/beagent for a coordinator-less local run and by
// the agent package's tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/batermj/incubator-doris/internal/agent"
	"github.com/batermj/incubator-doris/internal/engine"
)

type tabletKey struct {
	tabletID   int64
	schemaHash int64
}

// FakeStorageEngine is an in-memory StorageEngine. Every method
// succeeds unless a specific failure has been injected via the Fail*
// fields, which tests set directly before submitting a task; the one
// exception is DropTablet, which returns engine.ErrTabletNotFound for a
// tablet it does not hold.
type FakeStorageEngine struct {
	mu sync.Mutex

	tablets map[tabletKey]engine.TabletInfo

	FailCreate  bool
	FailPush    bool
	FailPublish bool
	FailAlter   bool
	FailClone   bool

	// PushAlreadyLoaded, when set, makes ExecuteBatchLoad report the
	// idempotent-replay signal instead of executing the load.
	PushAlreadyLoaded bool

	notify chan struct{}
}

func NewFakeStorageEngine() *FakeStorageEngine {
	return &FakeStorageEngine{
		tablets: make(map[tabletKey]engine.TabletInfo),
		notify:  make(chan struct{}, 1),
	}
}

func (f *FakeStorageEngine) CreateTablet(ctx context.Context, req engine.CreateTabletRequest) error {
	if f.FailCreate {
		return errFake("create tablet")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tablets[tabletKey{req.TabletID, req.SchemaHash}] = engine.TabletInfo{TabletID: req.TabletID, SchemaHash: req.SchemaHash}
	return nil
}

func (f *FakeStorageEngine) DropTablet(ctx context.Context, tabletID, schemaHash int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := tabletKey{tabletID, schemaHash}
	if _, ok := f.tablets[key]; !ok {
		return engine.ErrTabletNotFound
	}
	delete(f.tablets, key)
	return nil
}

func (f *FakeStorageEngine) PublishVersion(ctx context.Context, req engine.PublishVersionRequest) ([]int64, error) {
	if f.FailPublish {
		return req.Versions, errFake("publish version")
	}
	return nil, nil
}

func (f *FakeStorageEngine) ClearTransactionTask(ctx context.Context, transactionID, partitionID int64) {}

func (f *FakeStorageEngine) RecoverTablet(ctx context.Context, req engine.RecoverTabletRequest) error {
	return nil
}

func (f *FakeStorageEngine) ExecuteBatchLoad(ctx context.Context, req engine.PushRequest, signature int64) (engine.PushOutcome, error) {
	if f.PushAlreadyLoaded {
		return engine.PushOutcome{AlreadyLoaded: true}, nil
	}
	if f.FailPush {
		return engine.PushOutcome{}, errFake("batch load")
	}
	infos := make([]engine.TabletInfo, 0, len(req.TabletIDs))
	for _, id := range req.TabletIDs {
		infos = append(infos, engine.TabletInfo{TabletID: id, Version: req.Version})
	}
	return engine.PushOutcome{TabletInfos: infos}, nil
}

func (f *FakeStorageEngine) ExecuteAlterTablet(ctx context.Context, req engine.AlterTabletRequest, rollup bool) error {
	if f.FailAlter {
		return errFake("alter tablet")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tablets[tabletKey{req.NewTabletID, req.NewSchemaHash}] = engine.TabletInfo{TabletID: req.NewTabletID, SchemaHash: req.NewSchemaHash}
	return nil
}

func (f *FakeStorageEngine) ExecuteClearAlterTask(ctx context.Context, req engine.ClearAlterTaskRequest) error {
	return nil
}

func (f *FakeStorageEngine) ExecuteClone(ctx context.Context, req engine.CloneRequest, signature int64) (engine.CloneResult, error) {
	if f.FailClone {
		return engine.CloneResult{}, errFake("clone")
	}
	return engine.CloneResult{TabletInfos: []engine.TabletInfo{{TabletID: req.TabletID, SchemaHash: req.SchemaHash, Version: req.CommittedVersion}}}, nil
}

func (f *FakeStorageEngine) ExecuteStorageMediumMigrate(ctx context.Context, req engine.StorageMediumMigrateRequest) error {
	return nil
}

func (f *FakeStorageEngine) Checksum(ctx context.Context, tabletID, schemaHash, version, versionHash int64) (uint32, error) {
	return uint32(tabletID ^ schemaHash ^ version), nil
}

func (f *FakeStorageEngine) AllDataDirInfo(ctx context.Context) ([]engine.DataDirInfo, error) {
	return []engine.DataDirInfo{
		{Path: "/data/0", Capacity: 1 << 40, DataUsedCapacity: 1 << 30, Available: 1<<40 - 1<<30, IsUsed: true},
	}, nil
}

// WaitForReportNotify blocks until Notify is called or the timeout
// elapses. Tests can call Notify to make a reporter loop re-run
// immediately instead of waiting out a real interval.
func (f *FakeStorageEngine) WaitForReportNotify(ctx context.Context, timeoutSeconds int64, isTablet bool) {
	waitOnChannelOrTimeout(ctx, f.notify, timeoutSeconds)
}

func (f *FakeStorageEngine) Notify() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// FakeTabletManager is an in-memory TabletManager sharing no state
// with FakeStorageEngine, mirroring the original's separate
// TabletManager::instance() singleton.
type FakeTabletManager struct {
	mu      sync.Mutex
	tablets map[tabletKey]engine.Tablet
	notify  chan struct{}
}

func NewFakeTabletManager() *FakeTabletManager {
	return &FakeTabletManager{tablets: make(map[tabletKey]engine.Tablet), notify: make(chan struct{}, 1)}
}

func (f *FakeTabletManager) Put(t engine.Tablet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tablets[tabletKey{t.TabletID, t.SchemaHash}] = t
}

func (f *FakeTabletManager) GetTablet(tabletID, schemaHash int64) (engine.Tablet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tablets[tabletKey{tabletID, schemaHash}]
	return t, ok
}

func (f *FakeTabletManager) ReportTabletInfo(tabletID, schemaHash int64) (engine.TabletInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tablets[tabletKey{tabletID, schemaHash}]
	if !ok {
		return engine.TabletInfo{}, engine.ErrTabletNotFound
	}
	return engine.TabletInfo{TabletID: t.TabletID, SchemaHash: t.SchemaHash}, nil
}

func (f *FakeTabletManager) ReportAllTabletsInfo(ctx context.Context) ([]engine.TabletInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]engine.TabletInfo, 0, len(f.tablets))
	for _, t := range f.tablets {
		out = append(out, engine.TabletInfo{TabletID: t.TabletID, SchemaHash: t.SchemaHash})
	}
	return out, nil
}

func (f *FakeTabletManager) WaitForReportNotify(ctx context.Context, timeoutSeconds int64, isTablet bool) {
	waitOnChannelOrTimeout(ctx, f.notify, timeoutSeconds)
}

// FakeSnapshotManager is an in-memory SnapshotManager.
type FakeSnapshotManager struct {
	mu    sync.Mutex
	files map[string][]string
}

func NewFakeSnapshotManager() *FakeSnapshotManager {
	return &FakeSnapshotManager{files: make(map[string][]string)}
}

// MakeSnapshot mints a unique snapshot directory per call. A real
// engine derives this path from the tablet's data directory and a
// clone of its rowset files; this fake only needs the path to be
// unique and traceable back to the tablet, so it suffixes with a
// random UUID rather than a counter.
func (f *FakeSnapshotManager) MakeSnapshot(ctx context.Context, req engine.MakeSnapshotRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := snapshotPath(req.TabletID, uuid.New().String())
	f.files[path] = []string{"index.hdr", "data.dat"}
	return path, nil
}

func (f *FakeSnapshotManager) ReleaseSnapshot(ctx context.Context, snapshotPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, snapshotPath)
	return nil
}

func (f *FakeSnapshotManager) ListSnapshotFiles(ctx context.Context, snapshotPath string, tabletID, schemaHash int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[snapshotPath], nil
}

// FakeSnapshotLoader is an in-memory SnapshotLoader.
type FakeSnapshotLoader struct{}

func NewFakeSnapshotLoader() *FakeSnapshotLoader { return &FakeSnapshotLoader{} }

func (f *FakeSnapshotLoader) Upload(ctx context.Context, req engine.UploadRequest) (map[int64][]string, error) {
	out := make(map[int64][]string, len(req.SrcDestMap))
	i := int64(0)
	for src := range req.SrcDestMap {
		out[i] = []string{src}
		i++
	}
	return out, nil
}

func (f *FakeSnapshotLoader) Download(ctx context.Context, req engine.DownloadRequest) ([]int64, error) {
	ids := make([]int64, 0, len(req.SrcDestMap))
	i := int64(0)
	for range req.SrcDestMap {
		ids = append(ids, i)
		i++
	}
	return ids, nil
}

func (f *FakeSnapshotLoader) Move(ctx context.Context, src, destDir, storePath string, jobID int64, overwrite bool) error {
	return nil
}

// FakeCoordinator is an in-memory agent.Coordinator standing in for a
// dialed rpcclient.Client, used by cmd/beagent's coordinator-less local
// run and by the agent package's tests.
type FakeCoordinator struct {
	mu       sync.Mutex
	Finishes []agent.FinishTaskRequest
	Reports  []agent.ReportRequest

	FailFinish bool
	FailReport bool
}

func NewFakeCoordinator() *FakeCoordinator { return &FakeCoordinator{} }

func (c *FakeCoordinator) FinishTask(ctx context.Context, req agent.FinishTaskRequest) (*agent.MasterResult, error) {
	if c.FailFinish {
		return nil, errFake("finish task transport")
	}
	c.mu.Lock()
	c.Finishes = append(c.Finishes, req)
	c.mu.Unlock()
	return &agent.MasterResult{StatusCode: 0}, nil
}

func (c *FakeCoordinator) Report(ctx context.Context, req agent.ReportRequest) (*agent.MasterResult, error) {
	if c.FailReport {
		return nil, errFake("report transport")
	}
	c.mu.Lock()
	c.Reports = append(c.Reports, req)
	c.mu.Unlock()
	return &agent.MasterResult{StatusCode: 0}, nil
}

func (c *FakeCoordinator) Close() {}

func (c *FakeCoordinator) FinishCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Finishes)
}
