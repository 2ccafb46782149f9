package github

import (
	"context"
	"errors"
	"io/ioutil"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/m-zajac/ghanalyzer/internal/adapter/github/mock"
	"github.com/m-zajac/ghanalyzer/internal/app"
	appmock "github.com/m-zajac/ghanalyzer/internal/app/mock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClientWithStaleDataScheduler test scheduler.
// It's a form of white box test - every scheduler step is checked one by one.
func TestClientWithStaleDataScheduler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		newStaleDataClientCall func(*ClientWithStaleData) func() error
	}{
		{
			name: "Repository",
			newStaleDataClientCall: func(c *ClientWithStaleData) func() error {
				return func() error {
					_, err := c.Repository(context.Background(), testRepo)
					return err
				}
			},
		},
		{
			name: "IssuesPage",
			newStaleDataClientCall: func(c *ClientWithStaleData) func() error {
				return func() error {
					_, err := c.IssuesPage(context.Background(), app.IssuesQuery{Repository: testRepo, Page: 1, PerPage: 100})
					return err
				}
			},
		},
		{
			name: "ContributorStats",
			newStaleDataClientCall: func(c *ClientWithStaleData) func() error {
				return func() error {
					_, err := c.ContributorStats(context.Background(), testRepo)
					return err
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			var _clientCalls int64
			getClientCalls := func() int {
				v := atomic.LoadInt64(&_clientCalls)
				return int(v)
			}
			clientTokens := make(chan struct{}, 1)
			waitForToken := func() {
				select {
				case <-clientTokens:
				case <-time.After(time.Second):
					t.Error("client locked")
				}
				atomic.AddInt64(&_clientCalls, int64(1))
			}

			client := appmock.NewMockGithubClient(ctrl)
			client.EXPECT().
				Repository(gomock.Any(), testRepo).
				DoAndReturn(func(ctx context.Context, repo app.Repository) (app.RepositoryInfo, error) {
					waitForToken()
					return app.RepositoryInfo{FullName: repo.FullName()}, nil
				}).
				AnyTimes()
			client.EXPECT().
				IssuesPage(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, q app.IssuesQuery) (app.IssuesPage, error) {
					waitForToken()
					return app.IssuesPage{Page: q.Page}, nil
				}).
				AnyTimes()
			client.EXPECT().
				ContributorStats(gomock.Any(), testRepo).
				DoAndReturn(func(ctx context.Context, repo app.Repository) ([]app.ContributorStats, error) {
					waitForToken()
					return nil, nil
				}).
				AnyTimes()

			storeTokens := make(chan struct{}, 10)
			store := mock.NewKVStore(nil, storeTokens)
			l := logrus.New()
			l.Out = ioutil.Discard

			ttl := time.Minute
			refreshTTL := 10 * time.Second
			staleDataClient, err := NewClientWithStaleData(client, store, ttl, refreshTTL, l)
			require.NoError(t, err)

			// Set special chan for blocking scheduler
			staleDataClient.schedulerPendingOps = make(chan int, 1)

			staleDataClient.RunScheduler()
			defer staleDataClient.Close()

			staleDataClientCall := tt.newStaleDataClientCall(staleDataClient)

			pendingUpdates := 0
			expectedClientCalls := 0
			expectedStoreReads := 0
			expectedStoreUpdates := 0
			expectedPendingUpdates := 0
			checkNextState := func(step string) {
				select {
				case pendingUpdates = <-staleDataClient.schedulerPendingOps:
				case <-time.After(time.Second):
					t.Fatalf("%s: scheduler locked", step)
				}

				time.Sleep(100 * time.Millisecond)

				assert.Equal(t, expectedPendingUpdates, pendingUpdates, step)
				assert.Equal(t, expectedClientCalls, getClientCalls(), step)
				assert.Equal(t, expectedStoreUpdates, store.Updates(), step)
				assert.Equal(t, expectedStoreReads, store.Reads(), step)
			}

			checkNextState("init scheduler")

			// PHASE1: Read with empty db
			t.Log("PHASE1: First call - should read from db, schedule update")
			if err = staleDataClientCall(); !app.IsScheduledForLaterError(err) {
				t.Errorf("phase1: ClientWithStaleData call unexpected error = %v", err)
			}
			expectedStoreReads++
			expectedPendingUpdates++
			checkNextState("phase1: after ClientWithStaleData call")

			t.Log("PHASE1: Next scheduler state - should see empty pending queue, client called and store update")
			expectedPendingUpdates--
			expectedStoreUpdates++
			storeTokens <- struct{}{} // allow store write
			expectedClientCalls++
			clientTokens <- struct{}{} // allow client call
			checkNextState("phase1: after scheduler finishes updates")

			// PHASE2: Read with data already in db
			t.Log("PHASE2: Second call - should read from db but NOT call client")
			if err = staleDataClientCall(); err != nil {
				t.Errorf("phase2: ClientWithStaleData call error = %v", err)
			}
			expectedStoreReads++
			// don't call checkNextState here, nothing is scheduled

			// PHASE3: Read with data in db, but ttl exceeded
			t.Log("PHASE3: Third call - should read from db, schedule update")
			staleDataClient.ttl = 0
			expectedClientCalls++
			clientTokens <- struct{}{} // allow client call
			if err = staleDataClientCall(); !app.IsScheduledForLaterError(err) {
				t.Errorf("phase3: ClientWithStaleData call unexpected error = %v", err)
			}
			expectedStoreReads++
			expectedPendingUpdates++
			checkNextState("phase3: after ClientWithStaleData call")

			t.Log("PHASE3: Next scheduler state - should see empty pending queue and store update")
			expectedPendingUpdates--
			expectedStoreUpdates++
			storeTokens <- struct{}{} // allow store write
			checkNextState("phase3: after scheduler finishes updates")
		})
	}
}

func TestClientWithStaleDataIssuesPage(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	closedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pageResponse := app.IssuesPage{
		Issues: []app.Issue{
			{
				ID:        1,
				Number:    10,
				Title:     "issue1",
				State:     app.IssueStateClosed,
				Author:    app.User{ID: 7, Login: "owner1"},
				CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				ClosedAt:  &closedAt,
			},
		},
		Page:     2,
		NextPage: 3,
		LastPage: 4,
	}
	query := app.IssuesQuery{Repository: testRepo, State: app.IssueStateClosed, Page: 2, PerPage: 50}

	client := appmock.NewMockGithubClient(ctrl)
	client.EXPECT().
		IssuesPage(gomock.Any(), query).
		Return(pageResponse, nil)

	store := mock.NewKVStore(nil, nil)
	l := logrus.New()
	l.Out = ioutil.Discard

	staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, time.Minute, l)
	require.NoError(t, err)
	staleDataClient.RunScheduler()
	defer staleDataClient.Close()

	_, err = staleDataClient.IssuesPage(context.Background(), query)
	require.True(t, app.IsScheduledForLaterError(err))

	require.Eventually(t, func() bool {
		return store.Updates() == 1
	}, time.Second, 5*time.Millisecond)

	page, err := staleDataClient.IssuesPage(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, pageResponse.NextPage, page.NextPage)
	assert.Equal(t, pageResponse.LastPage, page.LastPage)
	require.Len(t, page.Issues, 1)
	assert.Equal(t, pageResponse.Issues[0].Title, page.Issues[0].Title)
	assert.True(t, closedAt.Equal(*page.Issues[0].ClosedAt))
	assert.Equal(t, []string{"is/grafana/loki?state=closed&page=2&per_page=50"}, store.Keys())
}

func TestClientWithStaleDataBlockingUpdates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	statsResponse := []app.ContributorStats{
		{
			Contributor: app.Contributor{
				ID:    1,
				Login: "person1",
			},
			Commits: 10,
		},
		{
			Contributor: app.Contributor{
				ID:    2,
				Login: "person2",
			},
			Commits: 7,
		},
	}

	client := appmock.NewMockGithubClient(ctrl)
	client.EXPECT().
		ContributorStats(gomock.Any(), testRepo).
		Return(statsResponse, nil).
		Times(1)

	store := mock.NewKVStore(nil, nil)
	l := logrus.New()
	l.Out = ioutil.Discard

	staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, time.Minute, l, WithBlockingUpdates())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		stats, err := staleDataClient.ContributorStats(context.Background(), testRepo)
		require.NoError(t, err)
		assert.Equal(t, statsResponse, stats)
	}
	assert.Equal(t, 1, store.Updates())
	assert.Equal(t, 3, store.Reads())
}

func TestClientWithStaleDataBlockingUpdatesError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := appmock.NewMockGithubClient(ctrl)
	client.EXPECT().
		Repository(gomock.Any(), testRepo).
		Return(app.RepositoryInfo{}, app.NotFoundError("not found"))

	store := mock.NewKVStore(nil, nil)
	staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, time.Minute, logrus.New(), WithBlockingUpdates())
	require.NoError(t, err)

	_, err = staleDataClient.Repository(context.Background(), testRepo)
	assert.True(t, app.IsNotFoundError(err))
	assert.Equal(t, 0, store.Updates())
}

func TestClientWithStaleDataRefresh(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	oldEntry, err := json.Marshal(dbEntry{
		Created: time.Now().Add(-30 * time.Second).Unix(),
		Data:    []byte(`{"fullName":"grafana/loki","stars":1}`),
	})
	require.NoError(t, err)

	client := appmock.NewMockGithubClient(ctrl)
	client.EXPECT().
		Repository(gomock.Any(), testRepo).
		Return(app.RepositoryInfo{FullName: "grafana/loki", Stars: 2}, nil)

	store := mock.NewKVStore(map[string][]byte{"rp/grafana/loki": oldEntry}, nil)
	l := logrus.New()
	l.Out = ioutil.Discard

	staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, 10*time.Second, l)
	require.NoError(t, err)
	staleDataClient.RunScheduler()
	defer staleDataClient.Close()

	info, err := staleDataClient.Repository(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Stars, "stale data should be returned immediately")

	require.Eventually(t, func() bool {
		return store.Updates() == 1
	}, time.Second, 5*time.Millisecond)

	info, err = staleDataClient.Repository(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Stars)
}

func TestClientWithStaleDataBlockingRefresh(t *testing.T) {
	t.Parallel()

	oldEntry, err := json.Marshal(dbEntry{
		Created: time.Now().Add(-30 * time.Second).Unix(),
		Data:    []byte(`{"fullName":"grafana/loki","stars":1}`),
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		clientErr   error
		wantStars   int
		wantUpdates int
	}{
		{
			name:        "refreshed synchronously",
			wantStars:   2,
			wantUpdates: 1,
		},
		{
			name:        "refresh error returns stored data",
			clientErr:   errors.New("github is down"),
			wantStars:   1,
			wantUpdates: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := appmock.NewMockGithubClient(ctrl)
			client.EXPECT().
				Repository(gomock.Any(), testRepo).
				Return(app.RepositoryInfo{FullName: "grafana/loki", Stars: 2}, tt.clientErr)

			store := mock.NewKVStore(map[string][]byte{"rp/grafana/loki": oldEntry}, nil)
			l := logrus.New()
			l.Out = ioutil.Discard

			staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, 10*time.Second, l, WithBlockingUpdates())
			require.NoError(t, err)

			info, err := staleDataClient.Repository(context.Background(), testRepo)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStars, info.Stars)
			assert.Equal(t, tt.wantUpdates, store.Updates())
		})
	}
}

func TestClientWithStaleDataErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	client := appmock.NewMockGithubClient(ctrl)

	_, err := NewClientWithStaleData(client, mock.NewKVStore(nil, nil), time.Second, time.Minute, logrus.New())
	assert.Error(t, err, "refresh ttl greater than ttl")

	store := mock.NewKVStore(nil, nil)
	store.ReadErr = errors.New("db is gone")
	staleDataClient, err := NewClientWithStaleData(client, store, time.Minute, time.Second, logrus.New())
	require.NoError(t, err)

	_, err = staleDataClient.ContributorStats(context.Background(), testRepo)
	assert.EqualError(t, err, "reading key st/grafana/loki: db is gone")

	store = mock.NewKVStore(map[string][]byte{"st/grafana/loki": []byte("{")}, nil)
	staleDataClient, err = NewClientWithStaleData(client, store, time.Minute, time.Second, logrus.New())
	require.NoError(t, err)

	_, err = staleDataClient.ContributorStats(context.Background(), testRepo)
	assert.Error(t, err)

	staleDataClient, err = NewClientWithStaleData(client, mock.NewKVStore(nil, nil), time.Minute, time.Second, logrus.New(), WithUpdatesQueueSize(0))
	require.NoError(t, err)

	_, err = staleDataClient.ContributorStats(context.Background(), testRepo)
	assert.EqualError(t, err, "stale data scheduler: no free slots left")
}
