package grpc

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	apihttp "github.com/m-zajac/ghanalyzer/internal/api/http"
	"github.com/m-zajac/ghanalyzer/internal/api/http/mock"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestServiceTopContributors(t *testing.T) {
	tests := []struct {
		name           string
		req            map[string]interface{}
		wantRepo       string
		wantCount      int
		appResultStats []app.ContributorStats
		appResultErr   error
		want           map[string]interface{}
		wantCode       codes.Code
	}{
		{
			name:         "app service error",
			req:          map[string]interface{}{"repo": "x/y", "count": 11},
			wantRepo:     "x/y",
			wantCount:    11,
			appResultErr: errors.New("test error"),
			wantCode:     codes.Internal,
		},
		{
			name:         "app service invalid request",
			req:          map[string]interface{}{"repo": "x", "count": 11},
			wantRepo:     "x",
			wantCount:    11,
			appResultErr: app.InvalidRequestError("invalid repository"),
			wantCode:     codes.InvalidArgument,
		},
		{
			name:      "app service ok, no contributors",
			req:       map[string]interface{}{"repo": "x/y", "count": 3},
			wantRepo:  "x/y",
			wantCount: 3,
			want: map[string]interface{}{
				"repository":   "x/y",
				"contributors": []interface{}{},
			},
		},
		{
			name:     "count is not an integer",
			req:      map[string]interface{}{"repo": "x/y", "count": 1.5},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "repo is not a string",
			req:      map[string]interface{}{"repo": 5},
			wantCode: codes.InvalidArgument,
		},
		{
			name:      "app service ok, valid response",
			req:       map[string]interface{}{"repo": "x/y", "count": 2},
			wantRepo:  "x/y",
			wantCount: 2,
			appResultStats: []app.ContributorStats{
				{
					Commits: 2,
					Contributor: app.Contributor{
						ID:    5,
						Login: "l2",
					},
				},
				{
					Commits: 1,
					Contributor: app.Contributor{
						ID:    1,
						Login: "l1",
					},
				},
			},
			want: map[string]interface{}{
				"repository": "x/y",
				"contributors": []interface{}{
					map[string]interface{}{"login": "l2", "commits": float64(2)},
					map[string]interface{}{"login": "l1", "commits": float64(1)},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			appService := mock.NewMockService(ctrl)
			if tt.wantRepo != "" {
				appService.EXPECT().
					TopContributors(gomock.Any(), tt.wantRepo, tt.wantCount).
					Return(tt.appResultStats, tt.appResultErr)
			}

			s := NewService(appService, testLogger())

			req, err := structpb.NewStruct(tt.req)
			require.NoError(t, err)

			got, err := s.TopContributors(context.Background(), req)
			require.Equal(t, tt.wantCode, status.Code(err), "error: %v", err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, got.AsMap())
		})
	}
}

func TestServiceIssuesReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	report := &app.IssuesReport{
		Repository:   app.RepositoryInfo{FullName: "grafana/loki"},
		State:        app.IssueStateOpen,
		PagesFetched: 1,
		GeneratedAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Summary:      app.IssuesSummary{Total: 1, Open: 1, AvgTimeToClose: 36 * time.Hour},
		Issues:       []app.Issue{{ID: 1, Number: 2, Title: "t"}},
	}

	appService := mock.NewMockService(ctrl)
	appService.EXPECT().
		IssuesReport(gomock.Any(), "grafana/loki", app.IssuesOptions{
			MaxPages:            3,
			PerPage:             20,
			State:               app.IssueStateOpen,
			IncludePullRequests: true,
		}).
		Return(report, nil)
	appService.EXPECT().
		IssuesReport(gomock.Any(), "grafana/nope", gomock.Any()).
		Return(nil, app.NotFoundError("not found"))

	s := NewService(appService, testLogger())

	req, err := structpb.NewStruct(map[string]interface{}{
		"repo":          "grafana/loki",
		"max_pages":     3,
		"per_page":      20,
		"state":         "open",
		"include_pulls": true,
	})
	require.NoError(t, err)

	got, err := s.IssuesReport(context.Background(), req)
	require.NoError(t, err)

	m := got.AsMap()
	assert.Equal(t, "grafana/loki", m["repository"].(map[string]interface{})["fullName"])
	assert.Equal(t, "36h0m0s", m["summary"].(map[string]interface{})["avgTimeToClose"])
	assert.Equal(t, "0s", m["summary"].(map[string]interface{})["medianTimeToClose"])
	assert.NotContains(t, m, "issues")

	req, err = structpb.NewStruct(map[string]interface{}{"repo": "grafana/nope"})
	require.NoError(t, err)
	_, err = s.IssuesReport(context.Background(), req)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServiceTopContributorsMatchesHTTPResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stats := []app.ContributorStats{
		{Contributor: app.Contributor{ID: 7, Login: "alice"}, Commits: 3},
		{Contributor: app.Contributor{ID: 8, Login: "bob"}, Commits: 1},
	}
	appService := mock.NewMockService(ctrl)
	appService.EXPECT().
		TopContributors(gomock.Any(), "x/y", 2).
		Return(stats, nil).
		Times(2)

	req, err := structpb.NewStruct(map[string]interface{}{"repo": "x/y", "count": 2})
	require.NoError(t, err)
	got, err := NewService(appService, testLogger()).TopContributors(context.Background(), req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux := apihttp.NewMux(appService, time.Second, testLogger())
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contributors/x/y?count=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var httpBody map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &httpBody))
	assert.Equal(t, httpBody, got.AsMap())
}

func TestIssuesReportStructDurations(t *testing.T) {
	report := &app.IssuesReport{
		Repository: app.RepositoryInfo{FullName: "grafana/loki"},
		Summary: app.IssuesSummary{
			AvgTimeToClose:    200*24*time.Hour + time.Nanosecond,
			MedianTimeToClose: 150*24*time.Hour + 3*time.Nanosecond,
		},
	}

	s, err := issuesReportToStruct(report)
	require.NoError(t, err)

	got, err := issuesReportFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, report.Summary.AvgTimeToClose, got.Summary.AvgTimeToClose)
	assert.Equal(t, report.Summary.MedianTimeToClose, got.Summary.MedianTimeToClose)

	bad, err := structpb.NewStruct(map[string]interface{}{
		"summary": map[string]interface{}{"avgTimeToClose": "long"},
	})
	require.NoError(t, err)
	_, err = issuesReportFromStruct(bad)
	assert.Error(t, err)
}

func TestAppError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "invalid argument",
			err:   status.Error(codes.InvalidArgument, "x"),
			check: app.IsInvalidRequestError,
		},
		{
			name:  "not found",
			err:   status.Error(codes.NotFound, "x"),
			check: app.IsNotFoundError,
		},
		{
			name:  "resource exhausted",
			err:   status.Error(codes.ResourceExhausted, "x"),
			check: app.IsTooManyRequestsError,
		},
		{
			name:  "unavailable",
			err:   status.Error(codes.Unavailable, "x"),
			check: app.IsScheduledForLaterError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(appError(tt.err)))
		})
	}

	internal := status.Error(codes.Internal, "boom")
	assert.Equal(t, internal, appError(internal))
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}
