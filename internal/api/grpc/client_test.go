package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/m-zajac/ghanalyzer/internal/api/http/mock"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func TestClientServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	closedAt := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	report := &app.IssuesReport{
		Repository:   app.RepositoryInfo{FullName: "grafana/loki", Stars: 10},
		State:        app.IssueStateAll,
		PagesFetched: 2,
		GeneratedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Summary: app.IssuesSummary{
			Total:             2,
			Closed:            1,
			Open:              1,
			Labels:            []app.LabelCount{{Name: "bug", Count: 2}},
			AvgTimeToClose:    200*24*time.Hour + time.Nanosecond,
			MedianTimeToClose: 48 * time.Hour,
		},
		Issues: []app.Issue{
			{
				ID:        1,
				Number:    3,
				Title:     "closed one",
				State:     app.IssueStateClosed,
				CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				ClosedAt:  &closedAt,
			},
		},
	}
	stats := []app.ContributorStats{
		{Contributor: app.Contributor{ID: 1, Login: "a"}, Commits: 9},
	}

	appService := mock.NewMockService(ctrl)
	appService.EXPECT().
		IssuesReport(gomock.Any(), "grafana/loki", app.IssuesOptions{MaxPages: 2}).
		Return(report, nil)
	appService.EXPECT().
		TopContributors(gomock.Any(), "grafana/loki", 5).
		Return(stats, nil)
	appService.EXPECT().
		TopContributors(gomock.Any(), "bad", 5).
		Return(nil, app.InvalidRequestError("invalid repository"))

	lis := bufconn.Listen(1024 * 1024)
	server := NewServer(NewService(appService, testLogger()), "bufnet", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.serve(ctx, lis)
	}()
	defer func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Error("server didn't stop")
		}
	}()

	client, err := NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer client.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	gotReport, err := client.IssuesReport(callCtx, IssuesRequest{
		Repo:       "grafana/loki",
		Options:    app.IssuesOptions{MaxPages: 2},
		WithIssues: true,
	})
	require.NoError(t, err)
	assert.Equal(t, report.Repository, gotReport.Repository)
	assert.Equal(t, report.Summary.Labels, gotReport.Summary.Labels)
	assert.Equal(t, report.Summary.AvgTimeToClose, gotReport.Summary.AvgTimeToClose)
	assert.Equal(t, report.Summary.MedianTimeToClose, gotReport.Summary.MedianTimeToClose)
	assert.True(t, report.GeneratedAt.Equal(gotReport.GeneratedAt))
	require.Len(t, gotReport.Issues, 1)
	assert.True(t, closedAt.Equal(*gotReport.Issues[0].ClosedAt))

	gotStats, err := client.TopContributors(callCtx, ContributorsRequest{Repo: "grafana/loki", Count: 5})
	require.NoError(t, err)
	assert.Equal(t, []app.ContributorStats{
		{Contributor: app.Contributor{Login: "a"}, Commits: 9},
	}, gotStats)

	_, err = client.TopContributors(callCtx, ContributorsRequest{Repo: "bad", Count: 5})
	require.Error(t, err)
	assert.True(t, app.IsInvalidRequestError(err))
}
