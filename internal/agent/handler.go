package agent

import "context"

// HandlerResult is what a domain handler hands back to the pool's
// worker loop: the status to surface, the kind-specific extra fields
// for the finish message, and (Push only) a flag telling the loop to
// skip the coordinator round-trip entirely for an idempotent replay.
type HandlerResult struct {
	Status         TaskStatus
	ExtraFinish    func(*FinishTaskRequest)
	SkipCoordinator bool
}

// Handler is the single-method capability a pool is parameterized by,
// per the design note steering away from a global switch on task kind:
// each pool owns one Handler and one payload projection, rather than a
// dispatcher picking a function pointer out of an enum switch.
type Handler interface {
	Handle(ctx context.Context, req TaskRequest) HandlerResult
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req TaskRequest) HandlerResult

func (f HandlerFunc) Handle(ctx context.Context, req TaskRequest) HandlerResult {
	return f(ctx, req)
}

func buildFinish(backend Backend, req TaskRequest, result HandlerResult, reportVersion int64, setReportVersion bool) FinishTaskRequest {
	finish := FinishTaskRequest{
		Backend:    backend,
		TaskType:   req.Kind,
		Signature:  req.Signature,
		TaskStatus: result.Status,
	}
	if setReportVersion {
		finish.ReportVersion = reportVersion
	}
	if result.ExtraFinish != nil {
		result.ExtraFinish(&finish)
	}
	return finish
}
