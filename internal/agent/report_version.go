package agent

import (
	"sync/atomic"
	"time"
)

// ReportVersion is the process-wide monotonic counter described in
// spec §3: seeded from wall-clock seconds so it stays monotonic across
// process restarts (assuming a monotonic wall clock), and bumped by
// exactly one on every successful CreateTablet, Push, or AlterTablet.
type ReportVersion struct {
	v atomic.Int64
}

// NewReportVersion seeds the counter at epochSeconds*10000, matching
// the original's `time(NULL) * 10000`.
func NewReportVersion() *ReportVersion {
	rv := &ReportVersion{}
	rv.v.Store(time.Now().Unix() * 10000)
	return rv
}

func (rv *ReportVersion) Load() int64 {
	return rv.v.Load()
}

// Bump increments the counter by exactly one and returns the new value.
func (rv *ReportVersion) Bump() int64 {
	return rv.v.Add(1)
}
