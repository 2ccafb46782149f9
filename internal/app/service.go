package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Default values for IssuesOptions.
const (
	DefaultPerPage     = 100
	DefaultConcurrency = 4
	DefaultTopN        = 10
	MaxPerPage         = 100
	MaxContributors    = 100
)

var tracer = otel.Tracer("github.com/m-zajac/ghanalyzer/internal/app")

// GithubClient returns details about github repositories, issues and stats.
//go:generate mockgen -destination mock/githubcli.go -package mock github.com/m-zajac/ghanalyzer/internal/app GithubClient
type GithubClient interface {
	Repository(ctx context.Context, repo Repository) (RepositoryInfo, error)
	IssuesPage(ctx context.Context, query IssuesQuery) (IssuesPage, error)
	ContributorStats(ctx context.Context, repo Repository) ([]ContributorStats, error)
}

// IssuesOptions controls issues report generation.
type IssuesOptions struct {
	// MaxPages is the maximum number of listing pages to fetch. Required.
	MaxPages int
	// PerPage is the page size, 1..100.
	PerPage int
	// State filters issues. Empty means all.
	State IssueState
	// Concurrency is the maximum number of pages fetched at once.
	Concurrency int
	// IncludePullRequests keeps pull requests in the report.
	IncludePullRequests bool
	// TopN limits top authors list. Zero means default.
	TopN int
}

func (o IssuesOptions) withDefaults() IssuesOptions {
	if o.PerPage == 0 {
		o.PerPage = DefaultPerPage
	}
	if o.State == "" {
		o.State = IssueStateAll
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	return o
}

func (o IssuesOptions) validate() error {
	if o.MaxPages < 1 {
		return InvalidRequestError("max pages must be greater than zero")
	}
	if o.PerPage < 1 || o.PerPage > MaxPerPage {
		return InvalidRequestError(fmt.Sprintf("per page must be in range <1..%d>", MaxPerPage))
	}
	if o.TopN < 0 {
		return InvalidRequestError("top must not be negative")
	}
	if !o.State.Valid() {
		return InvalidRequestError(fmt.Sprintf("invalid issue state %q, must be one of: open, closed, all", o.State))
	}
	return nil
}

// Service is main apps entry point. Provides all app functionality
type Service struct {
	githubClient GithubClient
	timeout      time.Duration
	l            logrus.FieldLogger
	now          func() time.Time
}

// NewService creates new Service instance.
// timeout limits every service call, 0 means no limit.
func NewService(githubClient GithubClient, timeout time.Duration, l logrus.FieldLogger) *Service {
	return &Service{
		githubClient: githubClient,
		timeout:      timeout,
		l:            l,
		now:          time.Now,
	}
}

// IssuesReport fetches up to opts.MaxPages pages of repository issues and analyzes them.
func (s *Service) IssuesReport(ctx context.Context, repoName string, opts IssuesOptions) (report *IssuesReport, err error) {
	repo, err := ParseRepository(repoName)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ctx, span := tracer.Start(ctx, "Service.IssuesReport")
	span.SetAttributes(
		attribute.String("repository", repo.FullName()),
		attribute.Int("max_pages", opts.MaxPages),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	info, err := s.githubClient.Repository(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("retrieving repository %s: %w", repo, err)
	}

	pages, err := s.fetchPages(ctx, repo, opts)
	if err != nil {
		return nil, err
	}

	issues, skipped := collectIssues(pages, opts.IncludePullRequests)
	s.l.WithFields(logrus.Fields{
		"repository": repo.FullName(),
		"pages":      len(pages),
		"issues":     len(issues),
		"skipped":    skipped,
	}).Debug("issues fetched")

	summary := AnalyzeIssues(issues, opts.TopN)
	summary.PullRequestsSkipped = skipped

	return &IssuesReport{
		Repository:   info,
		State:        opts.State,
		PagesFetched: len(pages),
		GeneratedAt:  s.now().UTC(),
		Summary:      summary,
		Issues:       issues,
	}, nil
}

// fetchPages fetches first page, then the rest concurrently if the last page number is known.
// Otherwise it follows next page links one by one. Never fetches more than opts.MaxPages pages.
// Returned pages are ordered by page number.
func (s *Service) fetchPages(ctx context.Context, repo Repository, opts IssuesOptions) ([]IssuesPage, error) {
	query := func(page int) IssuesQuery {
		return IssuesQuery{
			Repository: repo,
			State:      opts.State,
			Page:       page,
			PerPage:    opts.PerPage,
		}
	}

	first, err := s.githubClient.IssuesPage(ctx, query(1))
	if err != nil {
		return nil, fmt.Errorf("retrieving issues page 1 of %s: %w", repo, err)
	}
	pages := []IssuesPage{first}

	if first.LastPage > 1 && opts.MaxPages > 1 {
		last := first.LastPage
		if last > opts.MaxPages {
			last = opts.MaxPages
		}

		rest := make([]IssuesPage, last-1)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for p := 2; p <= last; p++ {
			p := p
			g.Go(func() error {
				page, err := s.githubClient.IssuesPage(gctx, query(p))
				if err != nil {
					return fmt.Errorf("retrieving issues page %d of %s: %w", p, repo, err)
				}
				rest[p-2] = page
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return append(pages, rest...), nil
	}

	next := first.NextPage
	for next > 0 && len(pages) < opts.MaxPages {
		page, err := s.githubClient.IssuesPage(ctx, query(next))
		if err != nil {
			return nil, fmt.Errorf("retrieving issues page %d of %s: %w", next, repo, err)
		}
		pages = append(pages, page)
		if page.NextPage <= next {
			break
		}
		next = page.NextPage
	}

	return pages, nil
}

// collectIssues flattens pages, drops duplicates and, unless includePulls is set, pull requests.
// Returns number of skipped pull requests.
func collectIssues(pages []IssuesPage, includePulls bool) ([]Issue, int) {
	var issues []Issue
	var skipped int
	seen := make(map[int]bool)
	for _, p := range pages {
		for _, is := range p.Issues {
			if seen[is.ID] {
				continue
			}
			seen[is.ID] = true

			if is.IsPullRequest && !includePulls {
				skipped++
				continue
			}
			issues = append(issues, is)
		}
	}

	return issues, skipped
}

// TopContributors returns `count` repository contributors with most commits.
func (s *Service) TopContributors(ctx context.Context, repoName string, count int) (stats []ContributorStats, err error) {
	repo, err := ParseRepository(repoName)
	if err != nil {
		return nil, err
	}
	if count < 1 || count > MaxContributors {
		return nil, InvalidRequestError(fmt.Sprintf("count must be in range <1..%d>", MaxContributors))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ctx, span := tracer.Start(ctx, "Service.TopContributors")
	span.SetAttributes(attribute.String("repository", repo.FullName()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	stats, err = s.githubClient.ContributorStats(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("retrieving repository %s stats: %w", repo, err)
	}

	result := make([]ContributorStats, len(stats))
	copy(result, stats)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Commits != result[j].Commits {
			return result[i].Commits > result[j].Commits
		}
		return result[i].Contributor.Login < result[j].Contributor.Login
	})

	if len(result) > count {
		result = result[:count]
	}

	return result, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
