package agent

import (
	"context"

	"github.com/batermj/incubator-doris/internal/engine"
	"github.com/batermj/incubator-doris/internal/metrics"
)

func NewClearAlterTaskHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(ClearAlterTaskPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed clear_alter_task payload")}
		}
		if err := eng.ExecuteClearAlterTask(ctx, p.Req); err != nil {
			log.Warnw("clear alter task failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("clear alter task failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}

// NewClearTransactionTaskHandler builds the ClearTransactionTask
// handler. The engine call has no failure signal to surface; this
// always finishes OK, matching the original.
func NewClearTransactionTaskHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(ClearTransactionTaskPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed clear_transaction_task payload")}
		}
		eng.ClearTransactionTask(ctx, p.TransactionID, p.PartitionID)
		return HandlerResult{Status: okStatus()}
	})
}

// NewCloneHandler builds the Clone handler. AlreadyExist is treated as
// success, mirroring DORIS_CREATE_TABLE_EXIST in the original.
func NewCloneHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(ClonePayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed clone payload")}
		}

		metrics.Inc(ctx, metrics.CloneRequestsTotal, "")
		result, err := eng.ExecuteClone(ctx, p.Req, req.Signature)
		if err != nil && !result.AlreadyExist {
			metrics.Inc(ctx, metrics.CloneRequestsFailed, "")
			log.Warnw("clone failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("clone failed.")}
		}
		return HandlerResult{
			Status: okStatus(),
			ExtraFinish: func(f *FinishTaskRequest) {
				f.FinishTabletInfos = result.TabletInfos
			},
		}
	})
}

func NewStorageMediumMigrateHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(StorageMediumMigratePayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed storage_medium_migrate payload")}
		}
		if err := eng.ExecuteStorageMediumMigrate(ctx, p.Req); err != nil {
			log.Warnw("storage media migrate failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("storage media migrate failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}

func NewCheckConsistencyHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(CheckConsistencyPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed check_consistency payload")}
		}
		checksum, err := eng.Checksum(ctx, p.TabletID, p.SchemaHash, p.Version, p.VersionHash)
		status := okStatus()
		if err != nil {
			log.Warnw("check consistency failed", "signature", req.Signature, "err", err)
			status = runtimeError("check consistency failed")
		}
		return HandlerResult{
			Status: status,
			ExtraFinish: func(f *FinishTaskRequest) {
				f.TabletChecksum = int64(checksum)
				f.HasRequestVersion = true
				f.RequestVersion = p.Version
				f.RequestVersionHash = p.VersionHash
			},
		}
	})
}
