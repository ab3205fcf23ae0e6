package enginetest

import (
	"context"
	"fmt"
	"time"
)

func errFake(op string) error {
	return fmt.Errorf("enginetest: injected failure: %s", op)
}

func snapshotPath(tabletID int64, suffix string) string {
	return fmt.Sprintf("/data/snapshot/%d/%s", tabletID, suffix)
}

func waitOnChannelOrTimeout(ctx context.Context, ch <-chan struct{}, timeoutSeconds int64) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	timer := time.NewTimer(time.Duration(timeoutSeconds) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-ch:
	case <-timer.C:
	}
}
