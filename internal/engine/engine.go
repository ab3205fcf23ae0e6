// Package engine describes the narrow contracts the task worker pool
// consumes from the storage engine, the snapshot manager, the snapshot
// loader, and the tablet manager. None of these are implemented here —
// this package only defines the seams; a real backend wires in the
// actual storage engine, and tests wire in the fakes under enginetest.
package engine

import (
	"context"
	"errors"
)

// ErrTabletNotFound is returned by DropTablet when the tablet does not
// exist; GetTablet reports the same case through its bool result.
// Callers map it per spec: a no-op success for drop, an analysis error
// for move-dir.
var ErrTabletNotFound = errors.New("engine: tablet not found")

type CreateTabletRequest struct {
	TabletID   int64
	SchemaHash int64
}

type AlterTabletRequest struct {
	NewTabletID       int64
	NewSchemaHash     int64
	BaseTabletID      int64
	BaseSchemaHash    int64
}

type PushRequest struct {
	TabletIDs   []int64
	Version     int64
	VersionHash int64
}

// PushOutcome is the result of executing a batch-load task. AlreadyLoaded
// mirrors the engine's idempotent-replay signal (PUSH_HAD_LOADED):
// when true, the task worker removes the task from the ledger without
// sending a finish-task RPC.
type PushOutcome struct {
	TabletInfos   []TabletInfo
	AlreadyLoaded bool
}

type PublishVersionRequest struct {
	TransactionID int64
	PartitionID   int64
	Versions      []int64
}

type ClearAlterTaskRequest struct {
	TabletID   int64
	SchemaHash int64
}

type CloneRequest struct {
	TabletID    int64
	SchemaHash  int64
	SrcBackends []string
	CommittedVersion int64
}

// CloneResult carries the already-exists signal (DORIS_CREATE_TABLE_EXIST
// in the original) which, like a not-found drop, is treated as success.
type CloneResult struct {
	TabletInfos  []TabletInfo
	AlreadyExist bool
}

type StorageMediumMigrateRequest struct {
	TabletID       int64
	SchemaHash     int64
	StorageMedium  string
}

type UploadRequest struct {
	JobID      int64
	SrcDestMap map[string]string
	BrokerAddr string
}

type DownloadRequest struct {
	JobID      int64
	SrcDestMap map[string]string
	BrokerAddr string
}

type MakeSnapshotRequest struct {
	TabletID    int64
	SchemaHash  int64
	Version     int64
	VersionHash int64
	ListFiles   bool
}

type RecoverTabletRequest struct {
	TabletID    int64
	SchemaHash  int64
	Version     int64
	VersionHash int64
}

type DataDirInfo struct {
	Path             string
	PathHash         int64
	Capacity         int64
	DataUsedCapacity int64
	Available        int64
	IsUsed           bool
}

type TabletInfo struct {
	TabletID   int64
	SchemaHash int64
	Version    int64
}

// StorageEngine is the core olap-engine contract: tablet lifecycle,
// publish, transaction cleanup, push execution, disk enumeration, and
// the report-notify wakeup primitive the periodic reporters block on.
type StorageEngine interface {
	CreateTablet(ctx context.Context, req CreateTabletRequest) error
	// DropTablet returns ErrTabletNotFound when the tablet is already
	// gone; the caller treats that as success per spec.
	DropTablet(ctx context.Context, tabletID, schemaHash int64) error
	PublishVersion(ctx context.Context, req PublishVersionRequest) (errorTabletIDs []int64, err error)
	ClearTransactionTask(ctx context.Context, transactionID, partitionID int64)
	RecoverTablet(ctx context.Context, req RecoverTabletRequest) error
	ExecuteBatchLoad(ctx context.Context, req PushRequest, signature int64) (PushOutcome, error)
	ExecuteAlterTablet(ctx context.Context, req AlterTabletRequest, rollup bool) error
	ExecuteClearAlterTask(ctx context.Context, req ClearAlterTaskRequest) error
	ExecuteClone(ctx context.Context, req CloneRequest, signature int64) (CloneResult, error)
	ExecuteStorageMediumMigrate(ctx context.Context, req StorageMediumMigrateRequest) error
	Checksum(ctx context.Context, tabletID, schemaHash, version, versionHash int64) (uint32, error)
	AllDataDirInfo(ctx context.Context) ([]DataDirInfo, error)
	// WaitForReportNotify blocks until the engine signals a state
	// change relevant to isTablet (tablet catalogue vs. disk state) or
	// timeout elapses, whichever comes first.
	WaitForReportNotify(ctx context.Context, timeout int64, isTablet bool)
}

// TabletManager is consulted for tablet lookups and catalogue dumps,
// kept distinct from StorageEngine per the original source's split
// between TabletManager::instance() and the engine singleton.
type TabletManager interface {
	GetTablet(tabletID, schemaHash int64) (Tablet, bool)
	ReportTabletInfo(tabletID, schemaHash int64) (TabletInfo, error)
	ReportAllTabletsInfo(ctx context.Context) ([]TabletInfo, error)
}

// Tablet is the minimal view of a tablet the move-dir handler needs to
// compute a destination path.
type Tablet struct {
	TabletID       int64
	SchemaHash     int64
	DirPath        string
	DataDirPath    string
}

// SnapshotManager makes and releases on-disk snapshots.
type SnapshotManager interface {
	MakeSnapshot(ctx context.Context, req MakeSnapshotRequest) (snapshotPath string, err error)
	ReleaseSnapshot(ctx context.Context, snapshotPath string) error
	// ListSnapshotFiles enumerates files under a produced snapshot
	// directory; only consulted when the request opts in.
	ListSnapshotFiles(ctx context.Context, snapshotPath string, tabletID, schemaHash int64) ([]string, error)
}

// SnapshotLoader performs broker-mediated upload/download and local
// directory moves.
type SnapshotLoader interface {
	Upload(ctx context.Context, req UploadRequest) (tabletFiles map[int64][]string, err error)
	Download(ctx context.Context, req DownloadRequest) (downloadedTabletIDs []int64, err error)
	Move(ctx context.Context, src, destDir, storePath string, jobID int64, overwrite bool) error
}

// CgroupRegistrar models the out-of-scope process-control-group
// registration the original source performs at the top of most
// handler loops (CgroupsMgr::apply_system_cgroup()). A real backend
// wires in the actual cgroup call; the default is a no-op.
type CgroupRegistrar interface {
	Apply() error
}

type NopCgroupRegistrar struct{}

func (NopCgroupRegistrar) Apply() error { return nil }
