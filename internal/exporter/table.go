package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/m-zajac/ghanalyzer/internal/app"
)

func exportTable(w io.Writer, r *app.IssuesReport) error {
	for _, rt := range reportTables(r) {
		rt.t.SetTitle(rt.title)
		rt.t.SetStyle(table.StyleRounded)
		if _, err := fmt.Fprintln(w, rt.t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func exportMarkdown(w io.Writer, r *app.IssuesReport) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", r.Repository.FullName); err != nil {
		return err
	}
	for _, rt := range reportTables(r) {
		if _, err := fmt.Fprintf(w, "## %s\n\n%s\n\n", rt.title, rt.t.RenderMarkdown()); err != nil {
			return err
		}
	}
	return nil
}

// ContributorsTable renders contributors stats.
func ContributorsTable(w io.Writer, repo string, stats []app.ContributorStats) error {
	t := table.NewWriter()
	t.SetTitle("Top contributors: " + repo)
	t.AppendHeader(table.Row{"#", "Login", "Commits"})
	for i, s := range stats {
		t.AppendRow(table.Row{i + 1, s.Contributor.Login, s.Commits})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type reportTable struct {
	title string
	t     table.Writer
}

func reportTables(r *app.IssuesReport) []reportTable {
	s := r.Summary
	var tables []reportTable
	add := func(title string, t table.Writer) {
		tables = append(tables, reportTable{title: title, t: t})
	}

	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRows([]table.Row{
		{"Repository", r.Repository.FullName},
		{"Stars", r.Repository.Stars},
		{"State filter", r.State},
		{"Pages fetched", r.PagesFetched},
		{"Issues analyzed", s.Total},
		{"Open", s.Open},
		{"Closed", s.Closed},
		{"Open and unassigned", s.Unassigned},
		{"Pull requests skipped", s.PullRequestsSkipped},
		{"Avg time to close", formatDuration(s.AvgTimeToClose)},
		{"Median time to close", formatDuration(s.MedianTimeToClose)},
		{"Generated at", r.GeneratedAt.Format(time.RFC3339)},
	})
	add("Summary", summary)

	if len(s.Labels) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Label", "Issues"})
		for _, l := range s.Labels {
			t.AppendRow(table.Row{l.Name, l.Count})
		}
		add("Labels", t)
	}

	if len(s.TopAuthors) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Author", "Issues"})
		for _, a := range s.TopAuthors {
			t.AppendRow(table.Row{a.Login, a.Count})
		}
		add("Top authors", t)
	}

	if len(s.CreatedByMonth) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Month", "Issues"})
		for _, m := range s.CreatedByMonth {
			t.AppendRow(table.Row{m.Month, m.Count})
		}
		add("Created by month", t)
	}

	if len(s.OldestOpen) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"#", "Title", "Created", "Age"})
		for _, i := range s.OldestOpen {
			t.AppendRow(table.Row{i.Number, truncate(i.Title, 60), i.CreatedAt.Format("2006-01-02"), formatDuration(r.GeneratedAt.Sub(i.CreatedAt))})
		}
		add("Oldest open issues", t)
	}

	if len(s.MostCommented) > 0 {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"#", "Title", "Comments", "State"})
		for _, i := range s.MostCommented {
			t.AppendRow(table.Row{i.Number, truncate(i.Title, 60), i.Comments, i.State})
		}
		add("Most commented issues", t)
	}

	return tables
}

// formatDuration formats duration as days and hours, like "3d 4h".
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", int(d/time.Minute))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
