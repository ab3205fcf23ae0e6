package agent

import (
	"context"

	"github.com/batermj/incubator-doris/internal/engine"
)

// NewPushHandler builds the Push/RealtimePush/Delete handler. It turns
// the engine's replay signal (AlreadyLoaded) into SkipCoordinator; the
// PushPool acts on that flag by removing the task from the ledger
// without a finish-task RPC.
func NewPushHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(PushPayload)
		if !ok {
			return HandlerResult{Status: analysisError("push request push_type invalid.")}
		}

		outcome, err := eng.ExecuteBatchLoad(ctx, p.Req, req.Signature)
		extra := func(f *FinishTaskRequest) {
			if p.PushType == PushTypeDelete {
				f.HasRequestVersion = true
				f.RequestVersion = p.Req.Version
				f.RequestVersionHash = p.Req.VersionHash
			}
		}

		if outcome.AlreadyLoaded {
			return HandlerResult{Status: okStatus("push already loaded"), SkipCoordinator: true, ExtraFinish: extra}
		}
		if err != nil {
			log.Warnw("push failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("push failed"), ExtraFinish: extra}
		}

		return HandlerResult{
			Status: okStatus("push success"),
			ExtraFinish: func(f *FinishTaskRequest) {
				extra(f)
				f.FinishTabletInfos = outcome.TabletInfos
			},
		}
	})
}
