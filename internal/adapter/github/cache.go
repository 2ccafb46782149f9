package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/m-zajac/ghanalyzer/internal/app"
)

// CachedClient wraps github client with in-memory caching layer.
// Errors are never cached.
type CachedClient struct {
	client     app.GithubClient
	repoCache  *lru.Cache
	pageCache  *lru.Cache
	statsCache *lru.Cache
	ttl        time.Duration
	now        func() time.Time
}

var _ app.GithubClient = &CachedClient{}

// NewCachedClient creates new CachedClient instance.
// size is the capacity of each of the repository, issues page and stats caches.
func NewCachedClient(client app.GithubClient, size int, ttl time.Duration) (*CachedClient, error) {
	if size <= 0 {
		return nil, errors.New("cache size must be greater than 0")
	}
	repoCache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache for repositories: %w", err)
	}
	pageCache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache for issue pages: %w", err)
	}
	statsCache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache for stats: %w", err)
	}

	return &CachedClient{
		client:     client,
		repoCache:  repoCache,
		pageCache:  pageCache,
		statsCache: statsCache,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Repository returns repository details.
func (c *CachedClient) Repository(ctx context.Context, repo app.Repository) (app.RepositoryInfo, error) {
	key := repoKey(repo)
	if val, ok := c.repoCache.Get(key); ok {
		entry := val.(cacheEntry)
		if c.fresh(entry) {
			return entry.data.(app.RepositoryInfo), nil
		}
	}

	info, err := c.client.Repository(ctx, repo)
	if err != nil {
		return info, err
	}
	c.repoCache.Add(key, cacheEntry{created: c.now(), data: info})

	return info, nil
}

// IssuesPage returns single page of repository issues.
func (c *CachedClient) IssuesPage(ctx context.Context, query app.IssuesQuery) (app.IssuesPage, error) {
	key := pageKey(query)
	if val, ok := c.pageCache.Get(key); ok {
		entry := val.(cacheEntry)
		if c.fresh(entry) {
			return entry.data.(app.IssuesPage), nil
		}
	}

	page, err := c.client.IssuesPage(ctx, query)
	if err != nil {
		return page, err
	}
	c.pageCache.Add(key, cacheEntry{created: c.now(), data: page})

	return page, nil
}

// ContributorStats returns commit stats of repository contributors.
func (c *CachedClient) ContributorStats(ctx context.Context, repo app.Repository) ([]app.ContributorStats, error) {
	key := repoKey(repo)
	if val, ok := c.statsCache.Get(key); ok {
		entry := val.(cacheEntry)
		if c.fresh(entry) {
			return entry.data.([]app.ContributorStats), nil
		}
	}

	stats, err := c.client.ContributorStats(ctx, repo)
	if err != nil {
		return stats, err
	}
	c.statsCache.Add(key, cacheEntry{created: c.now(), data: stats})

	return stats, nil
}

func (c *CachedClient) fresh(e cacheEntry) bool {
	return e.created.Add(c.ttl).After(c.now())
}

func repoKey(repo app.Repository) string {
	return repo.Owner + "/" + repo.Name
}

func pageKey(q app.IssuesQuery) string {
	state := q.State
	if state == "" {
		state = app.IssueStateAll
	}
	return fmt.Sprintf("%s/%s?state=%s&page=%d&per_page=%d", q.Repository.Owner, q.Repository.Name, state, q.Page, q.PerPage)
}

type cacheEntry struct {
	created time.Time
	data    interface{}
}
