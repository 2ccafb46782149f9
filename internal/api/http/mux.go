package http

import (
	"context"
	"net/http"
	"time"

	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mock/service.go -package=mock github.com/m-zajac/ghanalyzer/internal/api/http Service

// Service can analyze repository issues and contributors.
type Service interface {
	IssuesReport(ctx context.Context, repoName string, opts app.IssuesOptions) (*app.IssuesReport, error)
	TopContributors(ctx context.Context, repoName string, count int) ([]app.ContributorStats, error)
}

// NewMux creates router for app's http server.
func NewMux(service Service, timeout time.Duration, l logrus.FieldLogger) http.Handler {
	timeoutMiddleware := NewTimeoutMiddleware(timeout)

	repoName := func(r *http.Request) string {
		return r.PathValue("owner") + "/" + r.PathValue("name")
	}

	m := http.NewServeMux()
	m.HandleFunc("GET /issues/{owner}/{name}", timeoutMiddleware(
		NewIssuesHandler(repoName, service, l),
	))
	m.HandleFunc("GET /contributors/{owner}/{name}", timeoutMiddleware(
		NewContributorsHandler(repoName, service, l),
	))
	m.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return NewLoggingMiddleware(l)(m)
}
