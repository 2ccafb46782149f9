package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/m-zajac/ghanalyzer/internal/exporter"
	"github.com/spf13/cobra"
)

type issuesFlags struct {
	repo         string
	maxPages     int
	perPage      int
	state        string
	includePulls bool
	format       string
	output       string
	top          int
	noCache      bool
}

func (c *cli) issuesCommand() *cobra.Command {
	var f issuesFlags

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "Analyze repository issues",
		Example: `  ghanalyzer issues --repo grafana/loki --max-pages 5
  ghanalyzer issues --repo grafana/loki --state closed --format markdown --output report.md
  ghanalyzer issues --repo grafana/loki --format sqlite --output issues.db`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runIssues(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.repo, "repo", "", "repository in owner/name form (required)")
	flags.IntVar(&f.maxPages, "max-pages", 10, "maximum number of issue pages to fetch")
	flags.IntVar(&f.perPage, "per-page", app.DefaultPerPage, fmt.Sprintf("issues per page, 1..%d", app.MaxPerPage))
	flags.StringVar(&f.state, "state", string(app.IssueStateAll), "issue state: open, closed, all")
	flags.BoolVar(&f.includePulls, "include-pulls", false, "include pull requests in report")
	flags.StringVar(&f.format, "format", exporter.FormatTable, "output format: "+strings.Join(exporter.Formats(), ", "))
	flags.StringVarP(&f.output, "output", "o", "", "output file, stdout if empty")
	flags.IntVar(&f.top, "top", app.DefaultTopN, "length of top authors list")
	flags.BoolVar(&f.noCache, "no-cache", false, "don't use persistent store for github data")

	return cmd
}

func (c *cli) runIssues(cmd *cobra.Command, f issuesFlags) error {
	if err := requireRepo(f.repo); err != nil {
		return err
	}

	// Output format is validated before anything is fetched.
	var exp exporter.Exporter
	if f.format == exporter.FormatSQLite {
		if f.output == "" {
			return app.InvalidRequestError("sqlite format needs --output file")
		}
	} else {
		var err error
		if exp, err = exporter.New(f.format); err != nil {
			return err
		}
	}

	client, err := c.githubClient(clientOptions{
		noStore:  f.noCache,
		blocking: true,
	})
	if err != nil {
		return err
	}
	service := app.NewService(client, 0, c.l.WithField("component", "service"))

	report, err := service.IssuesReport(cmd.Context(), f.repo, app.IssuesOptions{
		MaxPages:            f.maxPages,
		PerPage:             f.perPage,
		State:               app.IssueState(f.state),
		Concurrency:         c.conf.Concurrency,
		IncludePullRequests: f.includePulls,
		TopN:                f.top,
	})
	if err != nil {
		return err
	}

	if f.format == exporter.FormatSQLite {
		runID, err := exporter.ExportFile(cmd.Context(), f.output, report)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d issues of %s to %s, run %s\n", len(report.Issues), report.Repository.FullName, f.output, runID)
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), f.output, func(w io.Writer) error {
		return exp.Export(w, report)
	})
}

// writeOutput calls write with stdout, or with created file when path is not empty.
func writeOutput(stdout io.Writer, path string, write func(w io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()

	return write(f)
}
