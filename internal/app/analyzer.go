package app

import (
	"sort"
	"time"
)

const (
	oldestOpenCount    = 5
	mostCommentedCount = 5
)

// AnalyzeIssues aggregates given issues into summary statistics.
// topN limits the number of top authors. Pull requests are counted like any other issue;
// callers filter them out beforehand.
func AnalyzeIssues(issues []Issue, topN int) IssuesSummary {
	s := IssuesSummary{
		Total:          len(issues),
		Labels:         []LabelCount{},
		TopAuthors:     []AuthorCount{},
		CreatedByMonth: []MonthCount{},
		OldestOpen:     []Issue{},
		MostCommented:  []Issue{},
	}

	labels := make(map[string]int)
	authors := make(map[string]int)
	months := make(map[string]int)
	var closeTimes []time.Duration
	var open []Issue

	for _, is := range issues {
		switch is.State {
		case IssueStateOpen:
			s.Open++
			open = append(open, is)
			if len(is.Assignees) == 0 {
				s.Unassigned++
			}
		case IssueStateClosed:
			s.Closed++
			if is.ClosedAt != nil && !is.ClosedAt.Before(is.CreatedAt) {
				closeTimes = append(closeTimes, is.ClosedAt.Sub(is.CreatedAt))
			}
		}

		for _, l := range is.Labels {
			labels[l.Name]++
		}
		if is.Author.Login != "" {
			authors[is.Author.Login]++
		}
		months[is.CreatedAt.UTC().Format("2006-01")]++
	}

	for name, count := range labels {
		s.Labels = append(s.Labels, LabelCount{Name: name, Count: count})
	}
	sort.Slice(s.Labels, func(i, j int) bool {
		if s.Labels[i].Count != s.Labels[j].Count {
			return s.Labels[i].Count > s.Labels[j].Count
		}
		return s.Labels[i].Name < s.Labels[j].Name
	})

	for login, count := range authors {
		s.TopAuthors = append(s.TopAuthors, AuthorCount{Login: login, Count: count})
	}
	sort.Slice(s.TopAuthors, func(i, j int) bool {
		if s.TopAuthors[i].Count != s.TopAuthors[j].Count {
			return s.TopAuthors[i].Count > s.TopAuthors[j].Count
		}
		return s.TopAuthors[i].Login < s.TopAuthors[j].Login
	})
	if topN > 0 && len(s.TopAuthors) > topN {
		s.TopAuthors = s.TopAuthors[:topN]
	}

	for month, count := range months {
		s.CreatedByMonth = append(s.CreatedByMonth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(s.CreatedByMonth, func(i, j int) bool {
		return s.CreatedByMonth[i].Month < s.CreatedByMonth[j].Month
	})

	s.AvgTimeToClose, s.MedianTimeToClose = durationStats(closeTimes)

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	if len(open) > oldestOpenCount {
		open = open[:oldestOpenCount]
	}
	s.OldestOpen = append(s.OldestOpen, open...)

	for _, is := range issues {
		if is.Comments > 0 {
			s.MostCommented = append(s.MostCommented, is)
		}
	}
	sort.Slice(s.MostCommented, func(i, j int) bool {
		if s.MostCommented[i].Comments != s.MostCommented[j].Comments {
			return s.MostCommented[i].Comments > s.MostCommented[j].Comments
		}
		return s.MostCommented[i].Number < s.MostCommented[j].Number
	})
	if len(s.MostCommented) > mostCommentedCount {
		s.MostCommented = s.MostCommented[:mostCommentedCount]
	}

	return s
}

// durationStats returns average and median of given durations. Zero values for empty input.
func durationStats(ds []time.Duration) (avg time.Duration, median time.Duration) {
	if len(ds) == 0 {
		return 0, 0
	}

	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	avg = sum / time.Duration(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return avg, median
}
