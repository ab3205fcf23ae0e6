package agent

import (
	"context"

	"github.com/batermj/incubator-doris/internal/engine"
)

// NewAlterTabletHandler builds the AlterTablet handler, dispatching on
// the request's AlterKind sub-kind per spec §4.4. Any other sub-kind is
// an analysis error without touching the engine. On success, it
// attaches the new tablet's info to the finish message; a failure to
// fetch that info is logged but does not downgrade the overall status.
func NewAlterTabletHandler(eng engine.StorageEngine, tablets engine.TabletManager) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(AlterTabletPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed alter_tablet payload")}
		}

		var rollup bool
		switch p.Kind {
		case AlterRollup:
			rollup = true
		case AlterSchemaChange:
			rollup = false
		default:
			log.Warnw("alter tablet type invalid", "signature", req.Signature, "kind", p.Kind)
			return HandlerResult{Status: analysisError("alter table request new tablet id or schema count invalid.")}
		}

		if err := eng.ExecuteAlterTablet(ctx, p.Req, rollup); err != nil {
			log.Warnw("alter tablet failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("alter table failed")}
		}

		info, infoErr := tablets.ReportTabletInfo(p.Req.NewTabletID, p.Req.NewSchemaHash)
		return HandlerResult{
			Status: okStatus("alter table success"),
			ExtraFinish: func(f *FinishTaskRequest) {
				if infoErr != nil {
					log.Warnw("alter table success, but get new tablet info failed",
						"tablet_id", p.Req.NewTabletID, "schema_hash", p.Req.NewSchemaHash, "err", infoErr)
					return
				}
				f.FinishTabletInfos = []engine.TabletInfo{info}
			},
		}
	})
}
