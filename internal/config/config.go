// Package config defines this backend node's on-disk configuration:
// the per-kind worker counts, reporter intervals, and RPC sleep
// interval, serialized as TOML.
package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// Config is the full set of tunables spec §6 names.
type Config struct {
	Backend BackendConfig
	Workers WorkerCounts
	Report  ReportIntervals

	// SleepOneSecond is the retry/backoff interval used by the
	// finish-task protocol, the publish-version handler's internal
	// retry loop, and the HIGH-band push worker's spin-wait.
	SleepOneSecond int

	// ForceRecovery mirrors the coordinator-facing force_recovery flag
	// attached to every ReportTablet round.
	ForceRecovery bool
}

type BackendConfig struct {
	Host     string
	BEPort   int
	HTTPPort int

	CoordinatorAddr string
}

// WorkerCounts is one field per configuration key in spec §6. MoveDir
// and RecoverTablet are intentionally absent: they are fixed at one
// worker each and not configurable, per spec.
type WorkerCounts struct {
	CreateTablet             int
	DropTablet               int
	PushNormalPriority       int
	PushHighPriority         int
	PublishVersion           int
	ClearAlterTask           int
	ClearTransactionTask     int
	Delete                   int
	AlterTablet              int
	Clone                    int
	StorageMediumMigrate     int
	CheckConsistency         int
	Upload                   int
	Download                 int
	MakeSnapshot             int
	ReleaseSnapshot          int
}

type ReportIntervals struct {
	TaskSeconds   int
	DiskSeconds   int
	TabletSeconds int
}

// DefaultConfig returns the tunables this backend ships with absent an
// on-disk override, mirroring node/config's defCommon pattern of one
// literal struct per section.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Host:     "0.0.0.0",
			BEPort:   9060,
			HTTPPort: 8040,
		},
		Workers: WorkerCounts{
			CreateTablet:         3,
			DropTablet:           3,
			PushNormalPriority:   3,
			PushHighPriority:     1,
			PublishVersion:       2,
			ClearAlterTask:       3,
			ClearTransactionTask: 3,
			Delete:               3,
			AlterTablet:          3,
			Clone:                3,
			StorageMediumMigrate: 1,
			CheckConsistency:     1,
			Upload:               1,
			Download:             1,
			MakeSnapshot:         5,
			ReleaseSnapshot:      5,
		},
		Report: ReportIntervals{
			TaskSeconds:   10,
			DiskSeconds:   60,
			TabletSeconds: 60,
		},
		SleepOneSecond: 1,
		ForceRecovery:  false,
	}
}

// Load reads and decodes a TOML config file, filling any field the
// file omits with DefaultConfig's value.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading config file: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, xerrors.Errorf("decoding config file: %w", err)
	}
	return cfg, nil
}

// Save encodes cfg as TOML and writes it to path, matching cmd/lotus's
// config-dump pattern of encoding through a buffer before touching
// disk.
func Save(path string, cfg *Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return xerrors.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return xerrors.Errorf("writing config file: %w", err)
	}
	return nil
}
