package agent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/batermj/incubator-doris/internal/agent"
	"github.com/batermj/incubator-doris/internal/config"
	"github.com/batermj/incubator-doris/internal/engine"
	"github.com/batermj/incubator-doris/internal/engine/enginetest"
)

func newTestManager(t *testing.T) (*agent.Manager, *enginetest.FakeCoordinator, *enginetest.FakeStorageEngine, *enginetest.FakeTabletManager) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers.CreateTablet = 1
	cfg.Workers.DropTablet = 1
	cfg.Workers.PushNormalPriority = 2
	cfg.Workers.PushHighPriority = 1
	cfg.Workers.PublishVersion = 1
	cfg.SleepOneSecond = 0

	storage := enginetest.NewFakeStorageEngine()
	tablets := enginetest.NewFakeTabletManager()
	coord := enginetest.NewFakeCoordinator()

	m := agent.NewManager(cfg, agent.Engines{
		Storage:   storage,
		Tablets:   tablets,
		Snapshots: enginetest.NewFakeSnapshotManager(),
		Loader:    enginetest.NewFakeSnapshotLoader(),
	}, coord, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, m.Start(ctx))

	return m, coord, storage, tablets
}

func waitForFinishCount(t *testing.T, coord *enginetest.FakeCoordinator, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if coord.FinishCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d finish-task calls, got %d", n, coord.FinishCount())
}

// S6: dropping an already-gone tablet reports success, not failure.
func TestDropTabletNotFoundReportsSuccess(t *testing.T) {
	m, coord, _, _ := newTestManager(t)

	req := agent.TaskRequest{
		Kind:      agent.TaskDropTablet,
		Signature: 1,
		User:      "tenant-a",
		Payload:   agent.DropTabletPayload{TabletID: 999, SchemaHash: 1},
	}
	m.Dispatcher.Submit(context.Background(), req)

	waitForFinishCount(t, coord, 1)
	require.Equal(t, agent.StatusOK, coord.Finishes[0].TaskStatus.Code, "dropping a tablet the engine has never heard of must report success")
}

// S7: a push the engine reports as already-loaded is removed from the
// ledger without a finish-task RPC round trip.
func TestPushIdempotentReplaySkipsCoordinator(t *testing.T) {
	m, coord, storage, _ := newTestManager(t)
	storage.PushAlreadyLoaded = true

	req := agent.TaskRequest{
		Kind:      agent.TaskPush,
		Signature: 555,
		User:      "tenant-a",
		Priority:  agent.PriorityNormal,
		Payload: agent.PushPayload{
			Req:      engine.PushRequest{TabletIDs: []int64{1}, Version: 2},
			PushType: agent.PushTypeLoad,
		},
	}
	m.Dispatcher.Submit(context.Background(), req)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, coord.FinishCount(), "an idempotent replay must never reach the coordinator")
}

// S1: resubmitting the same signature before the first attempt
// completes must not enqueue a second task or produce a second
// finish-task call.
func TestCreateTabletDedupUnderConcurrentSubmit(t *testing.T) {
	m, coord, _, _ := newTestManager(t)

	req := agent.TaskRequest{
		Kind:      agent.TaskCreateTablet,
		Signature: 900,
		User:      "tenant-a",
		Payload:   agent.CreateTabletPayload{Req: engine.CreateTabletRequest{TabletID: 1, SchemaHash: 2}},
	}
	m.Dispatcher.Submit(context.Background(), req)
	m.Dispatcher.Submit(context.Background(), req)

	waitForFinishCount(t, coord, 1)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, coord.FinishCount(), "the duplicate submission must never reach the coordinator")
}

// A successful push bumps ReportVersion and carries it on the finish
// message; a failed one still attaches the current version without
// bumping it.
func TestPushReportVersionOnlyBumpsOnSuccess(t *testing.T) {
	m, coord, storage, _ := newTestManager(t)

	submit := func(sig int64) {
		m.Dispatcher.Submit(context.Background(), agent.TaskRequest{
			Kind:      agent.TaskPush,
			Signature: sig,
			User:      "tenant-a",
			Payload: agent.PushPayload{
				Req:      engine.PushRequest{TabletIDs: []int64{1}, Version: 1},
				PushType: agent.PushTypeLoad,
			},
		})
	}

	submit(1)
	waitForFinishCount(t, coord, 1)
	firstVersion := coord.Finishes[0].ReportVersion

	storage.FailPush = true
	submit(2)
	waitForFinishCount(t, coord, 2)
	require.Equal(t, agent.StatusRuntimeError, coord.Finishes[1].TaskStatus.Code)
	require.Equal(t, firstVersion, coord.Finishes[1].ReportVersion, "a failed push must report the version unchanged, not bumped")
}
