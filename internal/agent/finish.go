package agent

import (
	"context"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/batermj/incubator-doris/internal/metrics"
)

var log = logging.Logger("agent")

const taskFinishMaxRetry = 3

// Coordinator is the outbound RPC contract this package depends on.
// rpcclient.Client satisfies it structurally.
type Coordinator interface {
	FinishTask(ctx context.Context, req FinishTaskRequest) (*MasterResult, error)
	Report(ctx context.Context, req ReportRequest) (*MasterResult, error)
	Close()
}

// Finisher implements the completion protocol of spec §4.5: up to
// taskFinishMaxRetry attempts against the coordinator, one second apart,
// giving up silently after exhausting them (the coordinator reconciles
// via periodic reports).
type Finisher struct {
	Client       Coordinator
	SleepSeconds int
}

func NewFinisher(client Coordinator, sleepSeconds int) *Finisher {
	if sleepSeconds <= 0 {
		sleepSeconds = 1
	}
	return &Finisher{Client: client, SleepSeconds: sleepSeconds}
}

// FinishWithRetry sends req to the coordinator, retrying transport
// failures. Success is defined as the RPC completing without a
// transport error, regardless of the embedded MasterResult status
// code.
func (f *Finisher) FinishWithRetry(ctx context.Context, req FinishTaskRequest) {
	for attempt := 0; attempt < taskFinishMaxRetry; attempt++ {
		metrics.Inc(ctx, metrics.FinishTaskRequestsTotal, "")
		result, err := f.Client.FinishTask(ctx, req)
		if err == nil {
			log.Infow("finish task success", "signature", req.Signature, "task_type", req.TaskType, "result", result)
			return
		}
		metrics.Inc(ctx, metrics.FinishTaskRequestsFailed, "")
		log.Warnw("finish task failed", "signature", req.Signature, "task_type", req.TaskType, "attempt", attempt, "err", err)
		time.Sleep(time.Duration(f.SleepSeconds) * time.Second)
	}
}
