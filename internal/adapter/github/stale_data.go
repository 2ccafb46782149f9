package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/sirupsen/logrus"
)

// KVStore provides simple kv data storage.
// ReadKey returns nil data and nil error for missing keys.
type KVStore interface {
	ReadKey(key []byte) ([]byte, error)
	UpdateKey(key []byte, data []byte) error
}

// ClientWithStaleData wraps GithubClient and returns data saved in db if possible.
//
// If data is not available (or datas ttl is exceeded), update is scheduled, and app.ScheduledForLaterError is returned with empty data.
// If data is available, ttl is ok, but refreshTTL is exceeded, additional job for update is scheduled. Exisiting data is returned immediately.
// If data is available and no ttl is exceeded, then data is returned immediately.
//
// With blocking updates enabled, missing, expired and refreshTTL exceeded data is fetched synchronously instead of being scheduled.
// A failed refresh falls back to stored data while ttl is not exceeded.
type ClientWithStaleData struct {
	client     app.GithubClient
	store      KVStore
	ttl        time.Duration
	refreshTTL time.Duration
	blocking   bool
	l          logrus.FieldLogger

	updates chan dbUpdateRequest

	// Chan for controlling scheduler - only used for unit testing.
	schedulerPendingOps chan int

	// Func for canceling internal worker loop
	stop func()
}

var _ app.GithubClient = &ClientWithStaleData{}

// StaleDataOption configures ClientWithStaleData.
type StaleDataOption func(*ClientWithStaleData)

// WithBlockingUpdates makes the client fetch missing data synchronously.
func WithBlockingUpdates() StaleDataOption {
	return func(c *ClientWithStaleData) {
		c.blocking = true
	}
}

// WithUpdatesQueueSize sets capacity of scheduled updates queue.
func WithUpdatesQueueSize(size int) StaleDataOption {
	return func(c *ClientWithStaleData) {
		c.updates = make(chan dbUpdateRequest, size)
	}
}

// NewClientWithStaleData creates new ClientWithStaleData instance.
func NewClientWithStaleData(
	client app.GithubClient,
	store KVStore,
	ttl time.Duration,
	refreshTTL time.Duration,
	l logrus.FieldLogger,
	opts ...StaleDataOption,
) (*ClientWithStaleData, error) {
	if refreshTTL > ttl {
		return nil, fmt.Errorf("refresh ttl (%s) cannot exceed ttl (%s)", refreshTTL, ttl)
	}

	c := ClientWithStaleData{
		client:     client,
		store:      store,
		ttl:        ttl,
		refreshTTL: refreshTTL,
		l:          l.WithField("component", "staledata"),
		updates:    make(chan dbUpdateRequest, 1000),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return &c, nil
}

// RunScheduler runs internal scheduling goroutine.
// Doesn't block.
func (c *ClientWithStaleData) RunScheduler() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stop = cancel

	go func() {
		pending := make(map[string]bool)
		done := make(chan string)

		for {
			// This is intended for blocking scheduler for unit testing.
			// In standard execution this is always nil.
			if c.schedulerPendingOps != nil {
				c.schedulerPendingOps <- len(pending)
			}

			select {
			case req := <-c.updates:
				if pending[req.key] {
					continue
				}
				pending[req.key] = true

				go func(req dbUpdateRequest) {
					l := c.l.WithField("key", req.key)
					l.Info("scheduled update started")
					if err := req.run(ctx); err != nil {
						l.Errorf("scheduled update: %v", err)
					} else {
						l.Info("scheduled update done")
					}
					select {
					case done <- req.key:
					case <-ctx.Done():
					}
				}(req)
			case key := <-done:
				delete(pending, key)

			// Finish
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Repository returns repository details.
//
// Returns data from db if available.
func (c *ClientWithStaleData) Repository(ctx context.Context, repo app.Repository) (app.RepositoryInfo, error) {
	return staleGet(ctx, c, []byte("rp/"+repoKey(repo)), func(ctx context.Context) (app.RepositoryInfo, error) {
		return c.client.Repository(ctx, repo)
	})
}

// IssuesPage returns single page of repository issues.
//
// Returns data from db if available.
func (c *ClientWithStaleData) IssuesPage(ctx context.Context, query app.IssuesQuery) (app.IssuesPage, error) {
	return staleGet(ctx, c, []byte("is/"+pageKey(query)), func(ctx context.Context) (app.IssuesPage, error) {
		return c.client.IssuesPage(ctx, query)
	})
}

// ContributorStats returns commit stats of repository contributors.
//
// Returns data from db if available.
func (c *ClientWithStaleData) ContributorStats(ctx context.Context, repo app.Repository) ([]app.ContributorStats, error) {
	return staleGet(ctx, c, []byte("st/"+repoKey(repo)), func(ctx context.Context) ([]app.ContributorStats, error) {
		return c.client.ContributorStats(ctx, repo)
	})
}

// Close cleanups scheduler.
func (c *ClientWithStaleData) Close() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// staleGet reads entry under key, falling back to fetch according to ttl rules.
func staleGet[T any](ctx context.Context, c *ClientWithStaleData, key []byte, fetch func(context.Context) (T, error)) (T, error) {
	var empty T

	data, err := c.store.ReadKey(key)
	if err != nil {
		return empty, fmt.Errorf("reading key %s: %w", key, err)
	}

	update := func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		if err := c.save(key, v); err != nil {
			return v, fmt.Errorf("saving %s: %w", key, err)
		}
		return v, nil
	}
	run := func(ctx context.Context) error {
		_, err := update(ctx)
		return err
	}

	if data != nil {
		var entry dbEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return empty, fmt.Errorf("unserializing %s: %w", key, err)
		}
		entryCreated := time.Unix(entry.Created, 0)
		if entryCreated.Add(c.ttl).After(time.Now()) {
			var v T
			if err := json.Unmarshal(entry.Data, &v); err != nil {
				return empty, fmt.Errorf("unserializing %s data: %w", key, err)
			}
			if entryCreated.Add(c.refreshTTL).Before(time.Now()) {
				if !c.blocking {
					c.tryRefresh(dbUpdateRequest{key: string(key), run: run})
					return v, nil
				}
				fresh, err := update(ctx)
				if err != nil {
					c.l.WithField("key", string(key)).Warnf("refresh failed, returning stored data: %v", err)
					return v, nil
				}
				return fresh, nil
			}
			return v, nil
		}
	}

	if c.blocking {
		return update(ctx)
	}

	select {
	case c.updates <- dbUpdateRequest{key: string(key), run: run}:
		return empty, app.ScheduledForLaterError("scheduled")
	default:
		return empty, errors.New("stale data scheduler: no free slots left")
	}
}

func (c *ClientWithStaleData) tryRefresh(req dbUpdateRequest) {
	select {
	case c.updates <- req:
	default:
		c.l.WithField("key", req.key).Warn("refresh skipped, updates queue is full")
	}
}

func (c *ClientWithStaleData) save(key []byte, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	dbdata, err := json.Marshal(dbEntry{
		Created: time.Now().Unix(),
		Data:    raw,
	})
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return c.store.UpdateKey(key, dbdata)
}

type dbEntry struct {
	Created int64
	Data    jsoniter.RawMessage
}

type dbUpdateRequest struct {
	key string
	run func(context.Context) error
}
