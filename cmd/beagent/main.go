// Command beagent runs the backend node's task worker pool: it dials
// the coordinator, loads its configuration, and starts every per-kind
// worker group and periodic reporter.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/batermj/incubator-doris/internal/agent"
	"github.com/batermj/incubator-doris/internal/config"
	"github.com/batermj/incubator-doris/internal/engine/enginetest"
	"github.com/batermj/incubator-doris/internal/rpcclient"
)

var log = logging.Logger("main")

func main() {
	logging.SetLogLevel("*", "info")

	app := &cli.App{
		Name:  "beagent",
		Usage: "storage backend agent task worker pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file; defaults are used when omitted",
			},
			&cli.StringFlag{
				Name:  "coordinator",
				Usage: "coordinator JSON-RPC address, e.g. ws://127.0.0.1:9020/rpc/v1",
			},
		},
		Commands: []*cli.Command{
			runCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorw("beagent exited with error", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "start the agent task worker pool",
	Action: func(cctx *cli.Context) error {
		cfg := config.DefaultConfig()
		if path := cctx.String("config"); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return xerrors.Errorf("loading config: %w", err)
			}
			cfg = loaded
		}
		if addr := cctx.String("coordinator"); addr != "" {
			cfg.Backend.CoordinatorAddr = addr
		}

		ctx, cancel := interruptContextForCLI(cctx)
		defer cancel()

		var coordinator agent.Coordinator
		if cfg.Backend.CoordinatorAddr != "" {
			client, err := rpcclient.Dial(ctx, cfg.Backend.CoordinatorAddr, nil)
			if err != nil {
				return xerrors.Errorf("dialing coordinator: %w", err)
			}
			defer client.Close()
			coordinator = client
		} else {
			log.Warnw("no coordinator address configured, running with an in-memory fake for local testing")
			coordinator = enginetest.NewFakeCoordinator()
		}

		engines := agent.Engines{
			Storage:   enginetest.NewFakeStorageEngine(),
			Tablets:   enginetest.NewFakeTabletManager(),
			Snapshots: enginetest.NewFakeSnapshotManager(),
			Loader:    enginetest.NewFakeSnapshotLoader(),
		}

		manager := agent.NewManager(cfg, engines, coordinator, nil)
		if err := manager.Start(ctx); err != nil {
			return xerrors.Errorf("starting manager: %w", err)
		}

		log.Infow("beagent running", "host", cfg.Backend.Host, "be_port", cfg.Backend.BEPort)
		<-ctx.Done()
		log.Info("beagent shutting down")
		return nil
	},
}
