package agent

import (
	"context"

	"github.com/batermj/incubator-doris/internal/engine"
)

func NewUploadHandler(loader engine.SnapshotLoader) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(UploadPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed upload payload")}
		}
		tabletFiles, err := loader.Upload(ctx, p.Req)
		if err != nil {
			log.Warnw("upload failed", "signature", req.Signature, "job_id", p.Req.JobID, "err", err)
			return HandlerResult{Status: runtimeError("upload failed")}
		}
		return HandlerResult{
			Status: okStatus(),
			ExtraFinish: func(f *FinishTaskRequest) {
				f.TabletFiles = tabletFiles
			},
		}
	})
}

func NewDownloadHandler(loader engine.SnapshotLoader) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(DownloadPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed download payload")}
		}
		downloaded, err := loader.Download(ctx, p.Req)
		if err != nil {
			log.Warnw("download failed", "signature", req.Signature, "job_id", p.Req.JobID, "err", err)
			return HandlerResult{Status: runtimeError("download failed")}
		}
		return HandlerResult{
			Status: okStatus(),
			ExtraFinish: func(f *FinishTaskRequest) {
				f.DownloadedTabletIDs = downloaded
			},
		}
	})
}

// NewMakeSnapshotHandler builds the MakeSnapshot handler. The request
// may opt into a subsequent file listing of the produced snapshot
// directory (ListFiles); when it does not, SnapshotFiles is left nil.
func NewMakeSnapshotHandler(snap engine.SnapshotManager) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(MakeSnapshotPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed make_snapshot payload")}
		}
		path, err := snap.MakeSnapshot(ctx, p.Req)
		if err != nil {
			log.Warnw("make snapshot failed", "signature", req.Signature, "tablet_id", p.Req.TabletID, "err", err)
			return HandlerResult{Status: runtimeError("make snapshot failed")}
		}

		var files []string
		if p.Req.ListFiles {
			files, err = snap.ListSnapshotFiles(ctx, path, p.Req.TabletID, p.Req.SchemaHash)
			if err != nil {
				log.Warnw("list snapshot files failed", "signature", req.Signature, "path", path, "err", err)
				return HandlerResult{Status: runtimeError("list snapshot files failed")}
			}
		}

		return HandlerResult{
			Status: okStatus(),
			ExtraFinish: func(f *FinishTaskRequest) {
				f.SnapshotPath = path
				f.SnapshotFiles = files
			},
		}
	})
}

func NewReleaseSnapshotHandler(snap engine.SnapshotManager) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(ReleaseSnapshotPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed release_snapshot payload")}
		}
		if err := snap.ReleaseSnapshot(ctx, p.SnapshotPath); err != nil {
			log.Warnw("release snapshot failed", "signature", req.Signature, "path", p.SnapshotPath, "err", err)
			return HandlerResult{Status: runtimeError("release snapshot failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}

// NewMoveDirHandler builds the MoveDir handler. overwrite is hard-coded
// true, matching an unresolved TODO in the original source.
func NewMoveDirHandler(tablets engine.TabletManager, loader engine.SnapshotLoader) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(MoveDirPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed move_dir payload")}
		}
		tablet, found := tablets.GetTablet(p.TabletID, p.SchemaHash)
		if !found {
			log.Warnw("move dir tablet not found", "tablet_id", p.TabletID, "schema_hash", p.SchemaHash)
			return HandlerResult{Status: analysisError("failed to initialize tablet")}
		}
		// TODO: overwrite should be a request field once the coordinator
		// wire format carries one; it is hard-coded true for now.
		if err := loader.Move(ctx, p.Src, tablet.DirPath, tablet.DataDirPath, p.JobID, true); err != nil {
			log.Warnw("move dir failed", "signature", req.Signature, "err", err)
			return HandlerResult{Status: runtimeError("move dir failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}

func NewRecoverTabletHandler(eng engine.StorageEngine) Handler {
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(RecoverTabletPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed recover_tablet payload")}
		}
		if err := eng.RecoverTablet(ctx, p.Req); err != nil {
			log.Warnw("recover tablet failed", "signature", req.Signature, "tablet_id", p.Req.TabletID, "err", err)
			return HandlerResult{Status: runtimeError("recover tablet failed")}
		}
		return HandlerResult{Status: okStatus()}
	})
}
