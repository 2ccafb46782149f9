package grpc

import (
	"context"
	"fmt"

	"github.com/m-zajac/ghanalyzer/internal/app"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls Analyzer service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient creates client connected to given address.
func NewClient(address string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating grpc client for %s: %w", address, err)
	}

	return &Client{conn: conn}, nil
}

// IssuesReport requests repository issues report.
func (c *Client) IssuesReport(ctx context.Context, req IssuesRequest) (*app.IssuesReport, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, issuesReportMethod, in, out); err != nil {
		return nil, appError(err)
	}

	report, err := issuesReportFromStruct(out)
	if err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return report, nil
}

// TopContributors requests repository top contributors.
func (c *Client) TopContributors(ctx context.Context, req ContributorsRequest) ([]app.ContributorStats, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, topContributorsMethod, in, out); err != nil {
		return nil, appError(err)
	}

	var reply contributorsReply
	if err := fromStruct(out, &reply); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	return reply.stats(), nil
}

// Close closes underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
