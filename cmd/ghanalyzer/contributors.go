package main

import (
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/m-zajac/ghanalyzer/internal/exporter"
	"github.com/spf13/cobra"
)

func (c *cli) contributorsCommand() *cobra.Command {
	var (
		repo    string
		count   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:     "contributors",
		Short:   "List repository contributors with most commits",
		Example: "  ghanalyzer contributors --repo grafana/loki --count 20",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireRepo(repo); err != nil {
				return err
			}

			client, err := c.githubClient(clientOptions{
				noStore:  noCache,
				blocking: true,
			})
			if err != nil {
				return err
			}
			service := app.NewService(client, 0, c.l.WithField("component", "service"))

			stats, err := service.TopContributors(cmd.Context(), repo, count)
			if err != nil {
				return err
			}

			return exporter.ContributorsTable(cmd.OutOrStdout(), repo, stats)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&repo, "repo", "", "repository in owner/name form (required)")
	flags.IntVar(&count, "count", 10, "number of contributors to list")
	flags.BoolVar(&noCache, "no-cache", false, "don't use persistent store for github data")

	return cmd
}
