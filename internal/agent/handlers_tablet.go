package agent

import (
	"context"
	"errors"

	"github.com/batermj/incubator-doris/internal/engine"
)

// NewCreateTabletHandler builds the CreateTablet handler. Report
// version increments on success; that's handled by the owning Pool,
// not here.
func NewCreateTabletHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(CreateTabletPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed create_tablet payload")}
		}
		if err := eng.CreateTablet(ctx, p.Req); err != nil {
			log.Warnw("create tablet failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("create tablet failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}

// NewDropTabletHandler builds the DropTablet handler. A not-found
// status from the engine is mapped to success, per spec §7.
func NewDropTabletHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(DropTabletPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed drop_tablet payload")}
		}
		err := eng.DropTablet(ctx, p.TabletID, p.SchemaHash)
		if err != nil && !errors.Is(err, engine.ErrTabletNotFound) {
			log.Warnw("drop table failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("drop table failed!")}
		}
		return HandlerResult{Status: okStatus()}
	})
}
