package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/sirupsen/logrus"
)

const (
	defaultHandlerMaxPagesValue = 10
	defaultHandlerCountValue    = 10
)

type contributor struct {
	Login   string `json:"login"`
	Commits int    `json:"commits"`
}

type contributorsResponse struct {
	Repository   string        `json:"repository"`
	Contributors []contributor `json:"contributors"`
}

func newContributorsResponse(repo string, stats []app.ContributorStats) contributorsResponse {
	contributors := make([]contributor, 0, len(stats))
	for _, s := range stats {
		contributors = append(contributors, contributor{
			Login:   s.Contributor.Login,
			Commits: s.Commits,
		})
	}

	return contributorsResponse{
		Repository:   repo,
		Contributors: contributors,
	}
}

// NewIssuesHandler creates handlerfunc returning issues report response.
//
// Query params: maxPages, perPage, state, includePulls, withIssues, top.
func NewIssuesHandler(
	getRepo func(*http.Request) string,
	service Service,
	l logrus.FieldLogger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var opts app.IssuesOptions
		var withIssues bool
		var err error

		if opts.MaxPages, err = getIntParam(r, "maxPages", defaultHandlerMaxPagesValue); err != nil {
			writeError(w, err, l)
			return
		}
		if opts.PerPage, err = getIntParam(r, "perPage", 0); err != nil {
			writeError(w, err, l)
			return
		}
		if opts.TopN, err = getIntParam(r, "top", 0); err != nil {
			writeError(w, err, l)
			return
		}
		if opts.IncludePullRequests, err = getBoolParam(r, "includePulls"); err != nil {
			writeError(w, err, l)
			return
		}
		if withIssues, err = getBoolParam(r, "withIssues"); err != nil {
			writeError(w, err, l)
			return
		}
		opts.State = app.IssueState(r.URL.Query().Get("state"))

		report, err := service.IssuesReport(r.Context(), getRepo(r), opts)
		if err != nil {
			writeError(w, err, l)
			return
		}
		if !withIssues {
			reportCopy := *report
			reportCopy.Issues = nil
			report = &reportCopy
		}

		writeJSON(w, report)
	}
}

// NewContributorsHandler creates handlerfunc returning contributors response.
func NewContributorsHandler(
	getRepo func(*http.Request) string,
	service Service,
	l logrus.FieldLogger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := getRepo(r)
		count, err := getIntParam(r, "count", defaultHandlerCountValue)
		if err != nil {
			writeError(w, err, l)
			return
		}

		stats, err := service.TopContributors(r.Context(), repo, count)
		if err != nil {
			writeError(w, err, l)
			return
		}

		writeJSON(w, newContributorsResponse(repo, stats))
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-type", "application/json; charset=utf-8")
	_ = jsoniter.ConfigFastest.NewEncoder(w).Encode(v)
}

// writeError maps app errors to http statuses.
func writeError(w http.ResponseWriter, err error, l logrus.FieldLogger) {
	switch {
	case app.IsInvalidRequestError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case app.IsNotFoundError(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case app.IsTooManyRequestsError(err):
		var rle app.RateLimitError
		if errors.As(err, &rle) && !rle.Reset.IsZero() {
			if wait := time.Until(rle.Reset); wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			}
		}
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	case app.IsScheduledForLaterError(err):
		http.Error(w, "data is being prepared, retry later", http.StatusAccepted)
	default:
		l.Errorf("handler error: %v", err)
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func getIntParam(r *http.Request, name string, defaultValue int) (int, error) {
	vs := r.URL.Query().Get(name)
	if vs == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(vs)
	if err != nil || v < 0 {
		return 0, app.InvalidRequestError(fmt.Sprintf("invalid %s param: %q", name, vs))
	}

	return v, nil
}

func getBoolParam(r *http.Request, name string) (bool, error) {
	vs := r.URL.Query().Get(name)
	if vs == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(vs)
	if err != nil {
		return false, app.InvalidRequestError(fmt.Sprintf("invalid %s param: %q", name, vs))
	}

	return v, nil
}
