// Package exporter renders issues reports in various output formats.
package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/m-zajac/ghanalyzer/internal/app"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatCSV      = "csv"
	// FormatSQLite is written with ExportFile only.
	FormatSQLite = "sqlite"
)

// Exporter writes issues report to w.
type Exporter interface {
	Export(w io.Writer, r *app.IssuesReport) error
}

// ExporterFunc adapts function to Exporter interface.
type ExporterFunc func(w io.Writer, r *app.IssuesReport) error

// Export calls f(w, r).
func (f ExporterFunc) Export(w io.Writer, r *app.IssuesReport) error {
	return f(w, r)
}

var exporters = map[string]Exporter{
	FormatTable:    ExporterFunc(exportTable),
	FormatMarkdown: ExporterFunc(exportMarkdown),
	FormatJSON:     ExporterFunc(exportJSON),
	FormatYAML:     ExporterFunc(exportYAML),
	FormatCSV:      ExporterFunc(exportCSV),
}

// New returns exporter for given format. Empty format means table.
func New(format string) (Exporter, error) {
	if format == "" {
		format = FormatTable
	}
	if format == FormatSQLite {
		return nil, app.InvalidRequestError("sqlite format needs an output file")
	}
	e, ok := exporters[format]
	if !ok {
		return nil, app.InvalidRequestError(fmt.Sprintf("unknown format %q, valid formats: %s", format, strings.Join(Formats(), ", ")))
	}
	return e, nil
}

// Formats returns names of all supported formats.
func Formats() []string {
	formats := []string{FormatSQLite}
	for f := range exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
