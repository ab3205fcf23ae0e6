package agent

import "github.com/batermj/incubator-doris/internal/engine"

// Each payload variant implements Payload via the unexported
// taskPayload marker, matching the "single payload projection per
// handler" shape described for the pool abstraction.

type CreateTabletPayload struct{ Req engine.CreateTabletRequest }

func (CreateTabletPayload) taskPayload() {}

type DropTabletPayload struct {
	TabletID   int64
	SchemaHash int64
}

func (DropTabletPayload) taskPayload() {}

// AlterKind distinguishes the two sub-kinds an AlterTablet task may
// carry; any other value is an analysis error.
type AlterKind string

const (
	AlterSchemaChange AlterKind = "SCHEMA_CHANGE"
	AlterRollup       AlterKind = "ROLLUP"
)

type AlterTabletPayload struct {
	Kind AlterKind
	Req  engine.AlterTabletRequest
}

func (AlterTabletPayload) taskPayload() {}

// PushType distinguishes an ordinary load from a delete-push, which
// additionally carries a request version/hash in the finish message.
type PushType string

const (
	PushTypeLoad   PushType = "LOAD"
	PushTypeDelete PushType = "DELETE"
)

type PushPayload struct {
	Req      engine.PushRequest
	PushType PushType
}

func (PushPayload) taskPayload() {}

type PublishVersionPayload struct{ Req engine.PublishVersionRequest }

func (PublishVersionPayload) taskPayload() {}

type ClearAlterTaskPayload struct{ Req engine.ClearAlterTaskRequest }

func (ClearAlterTaskPayload) taskPayload() {}

type ClearTransactionTaskPayload struct {
	TransactionID int64
	PartitionID   int64
}

func (ClearTransactionTaskPayload) taskPayload() {}

type ClonePayload struct{ Req engine.CloneRequest }

func (ClonePayload) taskPayload() {}

type StorageMediumMigratePayload struct{ Req engine.StorageMediumMigrateRequest }

func (StorageMediumMigratePayload) taskPayload() {}

type CheckConsistencyPayload struct {
	TabletID    int64
	SchemaHash  int64
	Version     int64
	VersionHash int64
}

func (CheckConsistencyPayload) taskPayload() {}

type UploadPayload struct{ Req engine.UploadRequest }

func (UploadPayload) taskPayload() {}

type DownloadPayload struct{ Req engine.DownloadRequest }

func (DownloadPayload) taskPayload() {}

type MakeSnapshotPayload struct{ Req engine.MakeSnapshotRequest }

func (MakeSnapshotPayload) taskPayload() {}

type ReleaseSnapshotPayload struct{ SnapshotPath string }

func (ReleaseSnapshotPayload) taskPayload() {}

type MoveDirPayload struct {
	TabletID   int64
	SchemaHash int64
	Src        string
	JobID      int64
}

func (MoveDirPayload) taskPayload() {}

type RecoverTabletPayload struct{ Req engine.RecoverTabletRequest }

func (RecoverTabletPayload) taskPayload() {}
