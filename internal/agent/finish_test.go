package agent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type flakyCoordinator struct {
	failCount  int32
	calls      int32
	reports    int32
	statusCode int
	finishes   []FinishTaskRequest
}

func (f *flakyCoordinator) FinishTask(ctx context.Context, req FinishTaskRequest) (*MasterResult, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failCount {
		return nil, errors.New("transport down")
	}
	f.finishes = append(f.finishes, req)
	return &MasterResult{StatusCode: f.statusCode}, nil
}

func (f *flakyCoordinator) Report(ctx context.Context, req ReportRequest) (*MasterResult, error) {
	atomic.AddInt32(&f.reports, 1)
	return &MasterResult{StatusCode: 0}, nil
}

func (f *flakyCoordinator) Close() {}

func TestFinishWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	coord := &flakyCoordinator{failCount: 2}
	finisher := NewFinisher(coord, 0)
	finisher.SleepSeconds = 0 // don't slow down the test; retry timing isn't under test here

	finisher.FinishWithRetry(context.Background(), FinishTaskRequest{Signature: 1})
	require.Equal(t, int32(3), coord.calls)
	require.Len(t, coord.finishes, 1)
}

func TestFinishWithRetryGivesUpSilentlyAfterExhaustion(t *testing.T) {
	coord := &flakyCoordinator{failCount: 99}
	finisher := NewFinisher(coord, 0)
	finisher.SleepSeconds = 0

	require.NotPanics(t, func() {
		finisher.FinishWithRetry(context.Background(), FinishTaskRequest{Signature: 1})
	})
	require.Equal(t, int32(taskFinishMaxRetry), coord.calls)
	require.Empty(t, coord.finishes)
}

func TestFinishWithRetryIgnoresEmbeddedStatusCode(t *testing.T) {
	// Success is transport success; an embedded non-zero MasterResult
	// status code must not trigger a retry.
	coord := &flakyCoordinator{failCount: 0, statusCode: 1}
	finisher := NewFinisher(coord, 0)
	finisher.SleepSeconds = 0

	finisher.FinishWithRetry(context.Background(), FinishTaskRequest{Signature: 1})
	require.Equal(t, int32(1), coord.calls)
}
