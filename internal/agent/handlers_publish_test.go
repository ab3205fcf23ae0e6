package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/batermj/incubator-doris/internal/engine"
)

type publishFakeEngine struct {
	failCount   int
	calls       int
	errorTablet []int64
}

func (p *publishFakeEngine) CreateTablet(ctx context.Context, req engine.CreateTabletRequest) error { return nil }
func (p *publishFakeEngine) DropTablet(ctx context.Context, tabletID, schemaHash int64) error        { return nil }
func (p *publishFakeEngine) PublishVersion(ctx context.Context, req engine.PublishVersionRequest) ([]int64, error) {
	p.calls++
	if p.calls <= p.failCount {
		return p.errorTablet, errFakePublish
	}
	return nil, nil
}
func (p *publishFakeEngine) ClearTransactionTask(ctx context.Context, transactionID, partitionID int64) {}
func (p *publishFakeEngine) RecoverTablet(ctx context.Context, req engine.RecoverTabletRequest) error { return nil }
func (p *publishFakeEngine) ExecuteBatchLoad(ctx context.Context, req engine.PushRequest, signature int64) (engine.PushOutcome, error) {
	return engine.PushOutcome{}, nil
}
func (p *publishFakeEngine) ExecuteAlterTablet(ctx context.Context, req engine.AlterTabletRequest, rollup bool) error {
	return nil
}
func (p *publishFakeEngine) ExecuteClearAlterTask(ctx context.Context, req engine.ClearAlterTaskRequest) error {
	return nil
}
func (p *publishFakeEngine) ExecuteClone(ctx context.Context, req engine.CloneRequest, signature int64) (engine.CloneResult, error) {
	return engine.CloneResult{}, nil
}
func (p *publishFakeEngine) ExecuteStorageMediumMigrate(ctx context.Context, req engine.StorageMediumMigrateRequest) error {
	return nil
}
func (p *publishFakeEngine) Checksum(ctx context.Context, tabletID, schemaHash, version, versionHash int64) (uint32, error) {
	return 0, nil
}
func (p *publishFakeEngine) AllDataDirInfo(ctx context.Context) ([]engine.DataDirInfo, error) { return nil, nil }
func (p *publishFakeEngine) WaitForReportNotify(ctx context.Context, timeout int64, isTablet bool) {}

type publishError struct{}

func (publishError) Error() string { return "publish version transient failure" }

var errFakePublish = publishError{}

func TestPublishVersionRetriesThenSucceeds(t *testing.T) {
	eng := &publishFakeEngine{failCount: 2, errorTablet: []int64{1, 2}}
	handler := NewPublishVersionHandler(eng, 0)

	result := handler.Handle(context.Background(), TaskRequest{
		Kind:    TaskPublishVersion,
		Payload: PublishVersionPayload{Req: engine.PublishVersionRequest{TransactionID: 10}},
	})

	require.Equal(t, StatusOK, result.Status.Code)
	require.Equal(t, 3, eng.calls)
}

func TestPublishVersionExhaustsRetriesAndReportsErrorTablets(t *testing.T) {
	eng := &publishFakeEngine{failCount: 99, errorTablet: []int64{5, 6}}
	handler := NewPublishVersionHandler(eng, 0)

	result := handler.Handle(context.Background(), TaskRequest{
		Kind:    TaskPublishVersion,
		Payload: PublishVersionPayload{Req: engine.PublishVersionRequest{TransactionID: 11}},
	})

	require.Equal(t, StatusRuntimeError, result.Status.Code)
	require.Equal(t, publishVersionMaxRetry, eng.calls)

	var finish FinishTaskRequest
	result.ExtraFinish(&finish)
	require.Equal(t, []int64{5, 6}, finish.ErrorTabletIDs)
}
