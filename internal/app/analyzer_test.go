package app

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeIssues(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour
	base := time.Date(2024, 1, 30, 10, 0, 0, 0, time.UTC)
	closedAt := func(d time.Duration) *time.Time {
		ts := base.Add(d)
		return &ts
	}

	issues := []Issue{
		{
			ID:       1,
			Number:   1,
			State:    IssueStateClosed,
			Author:   User{ID: 1, Login: "alice"},
			Labels:   []Label{{Name: "bug"}, {Name: "loki"}},
			Comments: 3,
			// closed after 2 days
			CreatedAt: base,
			ClosedAt:  closedAt(2 * day),
		},
		{
			ID:        2,
			Number:    2,
			State:     IssueStateClosed,
			Author:    User{ID: 2, Login: "bob"},
			Labels:    []Label{{Name: "bug"}},
			CreatedAt: base,
			ClosedAt:  closedAt(4 * day),
		},
		{
			ID:        3,
			Number:    3,
			State:     IssueStateOpen,
			Author:    User{ID: 1, Login: "alice"},
			Labels:    []Label{{Name: "enhancement"}},
			Comments:  3,
			CreatedAt: base.Add(3 * day),
		},
		{
			ID:        4,
			Number:    4,
			State:     IssueStateOpen,
			Author:    User{ID: 3, Login: "carol"},
			Assignees: []User{{ID: 2, Login: "bob"}},
			Comments:  10,
			CreatedAt: base.Add(-10 * day),
		},
		{
			ID:        5,
			Number:    5,
			State:     IssueStateClosed,
			Author:    User{ID: 2, Login: "bob"},
			CreatedAt: base,
			// missing closed_at is ignored in time-to-close stats
		},
	}

	got := AnalyzeIssues(issues, 2)

	want := IssuesSummary{
		Total:      5,
		Open:       2,
		Closed:     3,
		Unassigned: 1,
		Labels: []LabelCount{
			{Name: "bug", Count: 2},
			{Name: "enhancement", Count: 1},
			{Name: "loki", Count: 1},
		},
		TopAuthors: []AuthorCount{
			{Login: "alice", Count: 2},
			{Login: "bob", Count: 2},
		},
		CreatedByMonth: []MonthCount{
			{Month: "2024-01", Count: 4},
			{Month: "2024-02", Count: 1},
		},
		AvgTimeToClose:    3 * day,
		MedianTimeToClose: 3 * day,
		OldestOpen:        []Issue{issues[3], issues[2]},
		MostCommented:     []Issue{issues[3], issues[0], issues[2]},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnalyzeIssues() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeIssuesEmpty(t *testing.T) {
	t.Parallel()

	got := AnalyzeIssues(nil, 10)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, time.Duration(0), got.AvgTimeToClose)
	assert.Equal(t, []LabelCount{}, got.Labels)
	assert.Equal(t, []Issue{}, got.OldestOpen)
	assert.Equal(t, []Issue{}, got.MostCommented)
}

func TestAnalyzeIssuesLimits(t *testing.T) {
	t.Parallel()

	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	var issues []Issue
	for i := 1; i <= 8; i++ {
		issues = append(issues, Issue{
			ID:        i,
			Number:    i,
			State:     IssueStateOpen,
			Author:    User{Login: "user"},
			Comments:  1,
			CreatedAt: base.Add(time.Duration(-i) * time.Hour),
		})
	}

	got := AnalyzeIssues(issues, 0)
	assert.Len(t, got.OldestOpen, 5)
	assert.Equal(t, 8, got.OldestOpen[0].Number)
	assert.Len(t, got.MostCommented, 5)
	// equal comments, ordered by number
	assert.Equal(t, 1, got.MostCommented[0].Number)
	assert.Equal(t, []AuthorCount{{Login: "user", Count: 8}}, got.TopAuthors)
}

func TestDurationStats(t *testing.T) {
	tests := []struct {
		name       string
		input      []time.Duration
		wantAvg    time.Duration
		wantMedian time.Duration
	}{
		{
			name: "empty",
		},
		{
			name:       "odd count",
			input:      []time.Duration{5, 1, 3},
			wantAvg:    3,
			wantMedian: 3,
		},
		{
			name:       "even count",
			input:      []time.Duration{10, 2, 4, 100},
			wantAvg:    29,
			wantMedian: 7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, median := durationStats(tt.input)
			assert.Equal(t, tt.wantAvg, avg)
			assert.Equal(t, tt.wantMedian, median)
		})
	}
}
