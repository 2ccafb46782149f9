package main

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/api/grpc"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/m-zajac/ghanalyzer/internal/exporter"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (c *cli) queryCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query running ghanalyzer gRPC server",
	}
	cmd.PersistentFlags().StringVar(&server, "server", "localhost:9090", "grpc server address")

	connect := func() (*grpc.Client, error) {
		return grpc.NewClient(server)
	}
	cmd.AddCommand(
		c.queryIssuesCommand(connect),
		c.queryContributorsCommand(connect),
	)

	return cmd
}

func (c *cli) queryIssuesCommand(connect func() (*grpc.Client, error)) *cobra.Command {
	var (
		f          issuesFlags
		withIssues bool
	)

	cmd := &cobra.Command{
		Use:     "issues",
		Short:   "Request repository issues report",
		Example: "  ghanalyzer query issues --server localhost:9090 --repo grafana/loki --max-pages 3",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireRepo(f.repo); err != nil {
				return err
			}
			exp, err := exporter.New(f.format)
			if err != nil {
				return err
			}

			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			report, err := client.IssuesReport(cmd.Context(), grpc.IssuesRequest{
				Repo: f.repo,
				Options: app.IssuesOptions{
					MaxPages:            f.maxPages,
					PerPage:             f.perPage,
					State:               app.IssueState(f.state),
					IncludePullRequests: f.includePulls,
					TopN:                f.top,
				},
				WithIssues: withIssues,
			})
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), f.output, func(w io.Writer) error {
				return exp.Export(w, report)
			})
		},
	}

	var formats []string
	for _, format := range exporter.Formats() {
		if format != exporter.FormatSQLite {
			formats = append(formats, format)
		}
	}

	flags := cmd.Flags()
	flags.StringVar(&f.repo, "repo", "", "repository in owner/name form (required)")
	flags.IntVar(&f.maxPages, "max-pages", 10, "maximum number of issue pages to fetch")
	flags.IntVar(&f.perPage, "per-page", app.DefaultPerPage, fmt.Sprintf("issues per page, 1..%d", app.MaxPerPage))
	flags.StringVar(&f.state, "state", string(app.IssueStateAll), "issue state: open, closed, all")
	flags.BoolVar(&f.includePulls, "include-pulls", false, "include pull requests in report")
	flags.StringVar(&f.format, "format", exporter.FormatJSON, "output format: "+strings.Join(formats, ", "))
	flags.StringVarP(&f.output, "output", "o", "", "output file, stdout if empty")
	flags.IntVar(&f.top, "top", app.DefaultTopN, "length of top authors list")
	flags.BoolVar(&withIssues, "with-issues", false, "include issues list in report")

	return cmd
}

func (c *cli) queryContributorsCommand(connect func() (*grpc.Client, error)) *cobra.Command {
	var (
		repo  string
		count int
	)

	cmd := &cobra.Command{
		Use:     "contributors",
		Short:   "Request repository top contributors",
		Example: "  ghanalyzer query contributors --server localhost:9090 --repo grafana/loki",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireRepo(repo); err != nil {
				return err
			}

			client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			stats, err := client.TopContributors(cmd.Context(), grpc.ContributorsRequest{
				Repo:  repo,
				Count: count,
			})
			if err != nil {
				return err
			}

			return writeContributorsJSON(cmd.OutOrStdout(), repo, stats)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&repo, "repo", "", "repository in owner/name form (required)")
	flags.IntVar(&count, "count", 10, "number of contributors to list")

	return cmd
}

type contributorJSON struct {
	Login   string `json:"login"`
	Commits int    `json:"commits"`
}

func writeContributorsJSON(w io.Writer, repo string, stats []app.ContributorStats) error {
	out := struct {
		Repository   string            `json:"repository"`
		Contributors []contributorJSON `json:"contributors"`
	}{
		Repository:   repo,
		Contributors: make([]contributorJSON, 0, len(stats)),
	}
	for _, s := range stats {
		out.Contributors = append(out.Contributors, contributorJSON{
			Login:   s.Contributor.Login,
			Commits: s.Commits,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
