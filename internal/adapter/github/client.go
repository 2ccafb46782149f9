package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var tracer = otel.Tracer("github.com/m-zajac/ghanalyzer/internal/adapter/github")

// HTTPDoer can execute http request.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client returns details about github repositories, issues and stats.
// This struct is an adapter for app.GithubClient.
type Client struct {
	doer           HTTPDoer
	address        string
	authToken      string
	acceptWaitTime time.Duration

	repositoryResponseMaxSize int
	issuesResponseMaxSize     int
	statsResponseMaxSize      int
	numRetriesOnAccepted      int
}

var _ app.GithubClient = &Client{}

// NewClient creates new github client.
// authToken is optional.
func NewClient(doer HTTPDoer, address string, authToken string) *Client {
	c := Client{
		doer:           doer,
		address:        address,
		authToken:      authToken,
		acceptWaitTime: 5 * time.Second,

		repositoryResponseMaxSize: 1024 * 1024,
		issuesResponseMaxSize:     1024 * 1024 * 10,
		statsResponseMaxSize:      1024 * 1024 * 30,
		numRetriesOnAccepted:      7,
	}

	return &c
}

// Repository returns repository details.
func (c *Client) Repository(ctx context.Context, repo app.Repository) (app.RepositoryInfo, error) {
	if err := repo.Validate(); err != nil {
		return app.RepositoryInfo{}, err
	}

	ctx, span := c.startSpan(ctx, "Repository", repo)
	defer span.End()

	u, err := url.Parse(c.address + repoPath(repo))
	if err != nil {
		return app.RepositoryInfo{}, fmt.Errorf("invalid url: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return app.RepositoryInfo{}, fmt.Errorf("creating http request: %w", err)
	}

	resp, err := c.makeRequest(ctx, httpReq, c.repositoryResponseMaxSize)
	if err != nil {
		return app.RepositoryInfo{}, fmt.Errorf("making http request: %w", err)
	}

	var r repositoryResponse
	if err := json.Unmarshal(resp.body, &r); err != nil {
		return app.RepositoryInfo{}, fmt.Errorf("unmarshalling response: %w", err)
	}

	return r.ToRepositoryInfo(), nil
}

// IssuesPage returns single page of repository issues, newest first.
func (c *Client) IssuesPage(ctx context.Context, query app.IssuesQuery) (app.IssuesPage, error) {
	if err := query.Repository.Validate(); err != nil {
		return app.IssuesPage{}, err
	}
	if query.Page < 1 {
		return app.IssuesPage{}, app.InvalidRequestError("page must be greater than zero")
	}
	if query.PerPage < 1 || query.PerPage > app.MaxPerPage {
		return app.IssuesPage{}, app.InvalidRequestError(fmt.Sprintf("per page must be in range <1..%d>", app.MaxPerPage))
	}
	state := query.State
	if state == "" {
		state = app.IssueStateAll
	}
	if !state.Valid() {
		return app.IssuesPage{}, app.InvalidRequestError(fmt.Sprintf("invalid issue state %q", state))
	}

	ctx, span := c.startSpan(ctx, "IssuesPage", query.Repository)
	span.SetAttributes(attribute.Int("page", query.Page))
	defer span.End()

	u, err := url.Parse(c.address + repoPath(query.Repository)+"/issues")
	if err != nil {
		return app.IssuesPage{}, fmt.Errorf("invalid url: %w", err)
	}

	v := make(url.Values)
	v.Set("state", string(state))
	v.Set("sort", "created")
	v.Set("direction", "desc")
	v.Set("page", strconv.Itoa(query.Page))
	v.Set("per_page", strconv.Itoa(query.PerPage))
	u.RawQuery = v.Encode()

	httpReq, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return app.IssuesPage{}, fmt.Errorf("creating http request: %w", err)
	}

	resp, err := c.makeRequest(ctx, httpReq, c.issuesResponseMaxSize)
	if err != nil {
		return app.IssuesPage{}, fmt.Errorf("making http request: %w", err)
	}

	var r issuesResponse
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &r); err != nil {
			return app.IssuesPage{}, fmt.Errorf("unmarshalling response: %w", err)
		}
	}

	links := parseLinkHeader(resp.header.Get("Link"))
	return app.IssuesPage{
		Issues:   r.ToIssues(),
		Page:     query.Page,
		NextPage: links.next,
		LastPage: links.last,
	}, nil
}

// ContributorStats returns commit stats of repository contributors.
func (c *Client) ContributorStats(ctx context.Context, repo app.Repository) ([]app.ContributorStats, error) {
	if err := repo.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.startSpan(ctx, "ContributorStats", repo)
	defer span.End()

	u, err := url.Parse(c.address + repoPath(repo)+"/stats/contributors")
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating http request: %w", err)
	}

	// Github returns status 202 when processing data.
	// Should wait a bit and try again.
	var tries int
	var body []byte
	for {
		tries++
		resp, err := c.makeRequest(ctx, httpReq, c.statsResponseMaxSize)
		if err != nil {
			return nil, fmt.Errorf("making http request: %w", err)
		}
		if resp.status == http.StatusAccepted {
			if tries < c.numRetriesOnAccepted {
				select {
				case <-time.After(c.acceptWaitTime):
					continue
				case <-ctx.Done():
					return nil, fmt.Errorf("waiting for stats: %w", ctx.Err())
				}
			}
			return nil, errors.New("too many retries with status 202")
		}
		body = resp.body
		break
	}

	var r statsResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("unmarshalling response: %w", err)
		}
	}

	return r.ToStats(), nil
}

type response struct {
	body   []byte
	header http.Header
	status int
}

func (c *Client) makeRequest(ctx context.Context, req *http.Request, maxBytes int) (*response, error) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "token "+c.authToken)
	}

	resp, err := c.doer.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("doing http request: %w", err)
	}
	// Always drain body before close to allow connection reuse.
	defer func() {
		_, _ = io.CopyN(ioutil.Discard, resp.Body, 1024)
		resp.Body.Close()
	}()

	r := response{
		header: resp.Header,
		status: resp.StatusCode,
	}

	if resp.StatusCode == http.StatusNoContent {
		return &r, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, app.NotFoundError(fmt.Sprintf("not found: %s", req.URL.Path))
	}
	if resp.StatusCode/100 > 3 {
		if reset, ok := checkRateLimitExceeded(resp.Header); ok {
			return nil, app.RateLimitError{Reset: reset}
		}
		return nil, fmt.Errorf("got invalid http status code: %d", resp.StatusCode)
	}

	b, err := ioutil.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("reading http response body: %w", err)
	}
	if len(b) > maxBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBytes)
	}
	r.body = b

	return &r, nil
}

func (c *Client) startSpan(ctx context.Context, name string, repo app.Repository) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "github.Client."+name)
	span.SetAttributes(attribute.String("repository", repo.FullName()))
	return ctx, span
}

// checkRateLimitExceeded tells if response headers report exhausted rate limit.
// Returns limit reset time if known.
func checkRateLimitExceeded(h http.Header) (time.Time, bool) {
	s := h.Get("X-RateLimit-Remaining")
	if s == "" {
		return time.Time{}, false
	}
	if remaining, err := strconv.Atoi(s); err != nil || remaining != 0 {
		return time.Time{}, false
	}

	var reset time.Time
	if ts, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil && ts > 0 {
		reset = time.Unix(ts, 0).UTC()
	}
	return reset, true
}

// repoPath returns escaped api path of repository.
func repoPath(repo app.Repository) string {
	return "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name)
}
