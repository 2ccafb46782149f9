package main

import (
	"github.com/m-zajac/ghanalyzer/internal/api/grpc"
	"github.com/m-zajac/ghanalyzer/internal/api/http"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP and gRPC servers",
		Long: `Runs HTTP and gRPC servers until SIGINT or SIGTERM.

Missing github data is fetched in background, requests for it are answered
with 202 (HTTP) or UNAVAILABLE (gRPC) until it's ready.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.githubClient(clientOptions{})
			if err != nil {
				return err
			}
			service := app.NewService(
				client,
				c.conf.ServiceResponseTimeout.D(),
				c.l.WithField("component", "service"),
			)

			mux := http.NewMux(service, c.conf.HTTPRequestTimeout.D(), c.l.WithField("component", "mux"))
			httpServer := http.NewServer(
				c.conf.HTTPServerAddress,
				c.conf.HTTPProfileServerAddress,
				mux,
				c.l.WithField("component", "httpServer"),
			)

			grpcServer := grpc.NewServer(
				grpc.NewService(service, c.l.WithField("component", "grpcService")),
				c.conf.GRPCServerAddress,
				c.l.WithField("component", "grpcServer"),
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return httpServer.Run(ctx)
			})
			g.Go(func() error {
				return grpcServer.Run(ctx)
			})

			return g.Wait()
		},
	}
}
