// Package metrics declares the opencensus measures and views the task
// worker pool records against, grounded on the teacher's
// metrics/metrics.go (stats.Int64 measures, view.View registrations,
// a Timer helper) rather than a hand-rolled counter type.
package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var TaskKindKey, _ = tag.NewKey("task_kind")

var (
	TaskAccepted  = stats.Int64("agent/task_accepted", "tasks accepted by submit", stats.UnitDimensionless)
	TaskDuplicate = stats.Int64("agent/task_duplicate", "submissions dropped as duplicates", stats.UnitDimensionless)
	TaskCompleted = stats.Int64("agent/task_completed", "tasks that ran to completion", stats.UnitDimensionless)
	TaskFailed    = stats.Int64("agent/task_failed", "tasks that finished with a non-OK status", stats.UnitDimensionless)

	FinishTaskRequestsTotal  = stats.Int64("agent/finish_task_requests_total", "finishTask RPC attempts", stats.UnitDimensionless)
	FinishTaskRequestsFailed = stats.Int64("agent/finish_task_requests_failed", "finishTask RPC attempts that failed", stats.UnitDimensionless)

	ReportTaskRequestsTotal    = stats.Int64("agent/report_task_requests_total", "report-task RPC attempts", stats.UnitDimensionless)
	ReportTaskRequestsFailed   = stats.Int64("agent/report_task_requests_failed", "report-task RPC attempts that failed", stats.UnitDimensionless)
	ReportDiskRequestsTotal    = stats.Int64("agent/report_disk_requests_total", "report-disk RPC attempts", stats.UnitDimensionless)
	ReportDiskRequestsFailed   = stats.Int64("agent/report_disk_requests_failed", "report-disk RPC attempts that failed", stats.UnitDimensionless)
	ReportTabletRequestsFailed = stats.Int64("agent/report_tablet_requests_failed", "report-tablet RPC attempts that failed", stats.UnitDimensionless)

	CloneRequestsTotal  = stats.Int64("agent/clone_requests_total", "clone tasks executed", stats.UnitDimensionless)
	CloneRequestsFailed = stats.Int64("agent/clone_requests_failed", "clone tasks that failed", stats.UnitDimensionless)

	QueueDepth = stats.Int64("agent/queue_depth", "current queue depth per pool", stats.UnitDimensionless)

	TaskLatencyMillis = stats.Float64("agent/task_latency_ms", "handler execution time", stats.UnitMilliseconds)
)

// Views is the full set of view registrations a process should pass to
// view.Register at startup.
var Views = []*view.View{
	{Measure: TaskAccepted, Aggregation: view.Count(), TagKeys: []tag.Key{TaskKindKey}},
	{Measure: TaskDuplicate, Aggregation: view.Count(), TagKeys: []tag.Key{TaskKindKey}},
	{Measure: TaskCompleted, Aggregation: view.Count(), TagKeys: []tag.Key{TaskKindKey}},
	{Measure: TaskFailed, Aggregation: view.Count(), TagKeys: []tag.Key{TaskKindKey}},
	{Measure: FinishTaskRequestsTotal, Aggregation: view.Count()},
	{Measure: FinishTaskRequestsFailed, Aggregation: view.Count()},
	{Measure: ReportTaskRequestsTotal, Aggregation: view.Count()},
	{Measure: ReportTaskRequestsFailed, Aggregation: view.Count()},
	{Measure: ReportDiskRequestsTotal, Aggregation: view.Count()},
	{Measure: ReportDiskRequestsFailed, Aggregation: view.Count()},
	{Measure: ReportTabletRequestsFailed, Aggregation: view.Count()},
	{Measure: CloneRequestsTotal, Aggregation: view.Count()},
	{Measure: CloneRequestsFailed, Aggregation: view.Count()},
	{Measure: QueueDepth, Aggregation: view.LastValue(), TagKeys: []tag.Key{TaskKindKey}},
	{Measure: TaskLatencyMillis, Aggregation: view.Distribution(1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000), TagKeys: []tag.Key{TaskKindKey}},
}

// Timer records the elapsed time against m when the returned func is
// called, matching the teacher's metrics.Timer helper.
func Timer(ctx context.Context, m *stats.Float64Measure) func() {
	start := time.Now()
	return func() {
		stats.Record(ctx, m.M(float64(time.Since(start).Milliseconds())))
	}
}

// Inc records a single occurrence of an int64 measure, optionally
// tagged with a task kind.
func Inc(ctx context.Context, m *stats.Int64Measure, kind string) {
	if kind == "" {
		stats.Record(ctx, m.M(1))
		return
	}
	ctx, err := tag.New(ctx, tag.Upsert(TaskKindKey, kind))
	if err != nil {
		stats.Record(ctx, m.M(1))
		return
	}
	stats.Record(ctx, m.M(1))
}

// Set records a gauge-style value, optionally tagged with a task kind.
func Set(ctx context.Context, m *stats.Int64Measure, kind string, value int64) {
	if kind != "" {
		if tagged, err := tag.New(ctx, tag.Upsert(TaskKindKey, kind)); err == nil {
			ctx = tagged
		}
	}
	stats.Record(ctx, m.M(value))
}
