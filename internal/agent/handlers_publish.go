package agent

import (
	"context"
	"time"

	"github.com/batermj/incubator-doris/internal/engine"
)

const publishVersionMaxRetry = 3

// NewPublishVersionHandler builds the PublishVersion handler. On
// failure it retries the engine call up to publishVersionMaxRetry
// times with one-second sleeps, clearing the error-tablet list between
// attempts; after exhausting retries it reports failure with the last
// error-tablet list (spec §4.6).
func NewPublishVersionHandler(eng engine.StorageEngine, sleepSeconds int) Handler {
	if sleepSeconds <= 0 {
		sleepSeconds = 1
	}
	return HandlerFunc(func(ctx context.Context, req TaskRequest) HandlerResult {
		p, ok := req.Payload.(PublishVersionPayload)
		if !ok {
			return HandlerResult{Status: runtimeError("malformed publish_version payload")}
		}

		var errorTabletIDs []int64
		var err error
		for attempt := 0; attempt < publishVersionMaxRetry; attempt++ {
			errorTabletIDs = nil
			errorTabletIDs, err = eng.PublishVersion(ctx, p.Req)
			if err == nil {
				break
			}
			log.Warnw("publish version error, retry", "transaction_id", p.Req.TransactionID, "error_tablet_count", len(errorTabletIDs), "attempt", attempt)
			time.Sleep(time.Duration(sleepSeconds) * time.Second)
		}

		if err != nil {
			log.Warnw("publish version failed", "signature", req.Signature)
			return HandlerResult{
				Status: runtimeError("publish version failed"),
				ExtraFinish: func(f *FinishTaskRequest) {
					f.ErrorTabletIDs = errorTabletIDs
				},
			}
		}
		return HandlerResult{Status: okStatus()}
	})
}
