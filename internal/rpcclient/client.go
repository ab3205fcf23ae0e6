// Package rpcclient is the outbound RPC client to the coordinator
// ("FE"). It follows the teacher's api/client/client.go shape: an
// internal struct of function fields populated by
// jsonrpc.NewMergeClient, wrapped in a small typed facade so the rest
// of the agent package depends on an interface, not the RPC library.
package rpcclient

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/batermj/incubator-doris/internal/agent"
)

var log = logging.Logger("rpcclient")

type rpcMethods struct {
	FinishTask func(ctx context.Context, req agent.FinishTaskRequest) (agent.MasterResult, error)
	Report     func(ctx context.Context, req agent.ReportRequest) (agent.MasterResult, error)
}

// Client is a jsonrpc.NewMergeClient-backed Coordinator.
type Client struct {
	internal rpcMethods
	closer   jsonrpc.ClientCloser
}

var _ agent.Coordinator = (*Client)(nil)

// Dial opens a JSON-RPC connection to the coordinator's FrontendService
// endpoint.
func Dial(ctx context.Context, addr string, header http.Header) (*Client, error) {
	c := &Client{}
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "FrontendService",
		[]interface{}{&c.internal},
		header,
	)
	if err != nil {
		return nil, xerrors.Errorf("dial coordinator at %s: %w", addr, err)
	}
	c.closer = closer
	return c, nil
}

func (c *Client) FinishTask(ctx context.Context, req agent.FinishTaskRequest) (*agent.MasterResult, error) {
	res, err := c.internal.FinishTask(ctx, req)
	if err != nil {
		log.Debugw("finishTask rpc error", "signature", req.Signature, "err", err)
		return nil, xerrors.Errorf("finishTask: %w", err)
	}
	return &res, nil
}

func (c *Client) Report(ctx context.Context, req agent.ReportRequest) (*agent.MasterResult, error) {
	res, err := c.internal.Report(ctx, req)
	if err != nil {
		return nil, xerrors.Errorf("report: %w", err)
	}
	return &res, nil
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}
