// Package agent implements the backend node's task worker pool: the
// family of fixed-size worker groups that drain per-kind queues of
// directives pushed by the coordinator, invoke a domain handler, and
// hand the result back over the finish-task protocol.
package agent

import "github.com/batermj/incubator-doris/internal/engine"

// TaskKind is the closed enumeration of directives the coordinator can
// submit to this backend.
type TaskKind string

const (
	TaskCreateTablet          TaskKind = "CREATE_TABLET"
	TaskDropTablet            TaskKind = "DROP_TABLET"
	TaskPush                  TaskKind = "PUSH"
	TaskRealtimePush          TaskKind = "REALTIME_PUSH"
	TaskDelete                TaskKind = "DELETE"
	TaskAlterTablet           TaskKind = "ALTER_TABLET"
	TaskPublishVersion        TaskKind = "PUBLISH_VERSION"
	TaskClearAlterTask        TaskKind = "CLEAR_ALTER_TASK"
	TaskClearTransactionTask  TaskKind = "CLEAR_TRANSACTION_TASK"
	TaskClone                 TaskKind = "CLONE"
	TaskStorageMediumMigrate  TaskKind = "STORAGE_MEDIUM_MIGRATE"
	TaskCheckConsistency      TaskKind = "CHECK_CONSISTENCY"
	TaskReportTask            TaskKind = "REPORT_TASK"
	TaskReportDisk            TaskKind = "REPORT_DISK_STATE"
	TaskReportTablet          TaskKind = "REPORT_OLAP_TABLE"
	TaskUpload                TaskKind = "UPLOAD"
	TaskDownload              TaskKind = "DOWNLOAD"
	TaskMakeSnapshot          TaskKind = "MAKE_SNAPSHOT"
	TaskReleaseSnapshot       TaskKind = "RELEASE_SNAPSHOT"
	TaskMoveDir               TaskKind = "MOVE_DIR"
	TaskRecoverTablet         TaskKind = "RECOVER_TABLET"
)

// Priority is the HIGH/NORMAL band a push task is submitted under.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// StatusCode is the three-value status surfaced to the coordinator in
// every finish-task message.
type StatusCode int

const (
	StatusOK StatusCode = iota
	StatusAnalysisError
	StatusRuntimeError
)

// TaskStatus is embedded in every finish-task message.
type TaskStatus struct {
	Code      StatusCode
	ErrorMsgs []string
}

func okStatus(msgs ...string) TaskStatus {
	return TaskStatus{Code: StatusOK, ErrorMsgs: msgs}
}

func analysisError(msgs ...string) TaskStatus {
	return TaskStatus{Code: StatusAnalysisError, ErrorMsgs: msgs}
}

func runtimeError(msgs ...string) TaskStatus {
	return TaskStatus{Code: StatusRuntimeError, ErrorMsgs: msgs}
}

// Payload is the marker interface implemented by every kind-specific
// request variant carried by a TaskRequest. A TaskRequest carries
// exactly one.
type Payload interface {
	taskPayload()
}

// TaskRequest is the immutable record the coordinator submits.
type TaskRequest struct {
	Kind      TaskKind
	Signature int64
	User      string
	Priority  Priority
	Payload   Payload
}

// Backend is this node's identity, attached to every coordinator
// message.
type Backend struct {
	Host     string
	BEPort   int
	HTTPPort int
}

// FinishTaskRequest is the handshake sent back to the coordinator on
// task completion.
type FinishTaskRequest struct {
	Backend       Backend
	TaskType      TaskKind
	Signature     int64
	TaskStatus    TaskStatus
	ReportVersion int64 // only set for kinds that bump it: create/push/alter

	FinishTabletInfos   []engine.TabletInfo
	RequestVersion      int64
	RequestVersionHash  int64
	HasRequestVersion   bool
	TabletChecksum      int64
	ErrorTabletIDs      []int64
	SnapshotPath        string
	SnapshotFiles       []string
	TabletFiles         map[int64][]string
	DownloadedTabletIDs []int64
}

// ReportRequest is the periodic state push sent by the three reporter
// pools.
type ReportRequest struct {
	Backend      Backend
	ForceRecover bool

	Tasks         map[TaskKind][]int64 // ReportTask only
	Disks         map[string]DiskReport // ReportDisk only
	ReportVersion int64                 // ReportTablet only
	Tablets       []engine.TabletInfo   // ReportTablet only
}

// DiskReport mirrors the wire shape of a single data directory record.
type DiskReport struct {
	Path            string
	PathHash        int64
	Capacity        int64
	UsedCapacity    int64
	AvailableBytes  int64
	Used            bool
}

// MasterResult is the coordinator's reply to finishTask/report.
type MasterResult struct {
	StatusCode int
	Message    string
}
