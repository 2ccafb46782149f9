package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func exportJSON(w io.Writer, r *app.IssuesReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func exportYAML(w io.Writer, r *app.IssuesReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"number",
	"title",
	"state",
	"author",
	"assignees",
	"labels",
	"comments",
	"created_at",
	"closed_at",
	"pull_request",
	"url",
}

func exportCSV(w io.Writer, r *app.IssuesReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, i := range r.Issues {
		assignees := make([]string, 0, len(i.Assignees))
		for _, a := range i.Assignees {
			assignees = append(assignees, a.Login)
		}
		labels := make([]string, 0, len(i.Labels))
		for _, l := range i.Labels {
			labels = append(labels, l.Name)
		}
		var closedAt string
		if i.ClosedAt != nil {
			closedAt = i.ClosedAt.UTC().Format(time.RFC3339)
		}

		if err := cw.Write([]string{
			strconv.Itoa(i.Number),
			i.Title,
			string(i.State),
			i.Author.Login,
			strings.Join(assignees, ";"),
			strings.Join(labels, ";"),
			strconv.Itoa(i.Comments),
			i.CreatedAt.UTC().Format(time.RFC3339),
			closedAt,
			strconv.FormatBool(i.IsPullRequest),
			i.HTMLURL,
		}); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
