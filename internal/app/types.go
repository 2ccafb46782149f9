package app

import "time"

// IssueState is the state of an issue, or a state filter for issue listings.
type IssueState string

// Issue states.
const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
	IssueStateAll    IssueState = "all"
)

// Valid tells if state is usable as a listing filter.
func (s IssueState) Valid() bool {
	switch s {
	case IssueStateOpen, IssueStateClosed, IssueStateAll:
		return true
	}
	return false
}

// RepositoryInfo entity
type RepositoryInfo struct {
	FullName      string `json:"fullName" yaml:"fullName"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Stars         int    `json:"stars" yaml:"stars"`
	Forks         int    `json:"forks" yaml:"forks"`
	OpenIssues    int    `json:"openIssues" yaml:"openIssues"`
	DefaultBranch string `json:"defaultBranch,omitempty" yaml:"defaultBranch,omitempty"`
	HTMLURL       string `json:"htmlUrl,omitempty" yaml:"htmlUrl,omitempty"`
}

// User entity
type User struct {
	ID    int    `json:"id" yaml:"id"`
	Login string `json:"login" yaml:"login"`
}

// Label entity
type Label struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Issue entity. Github lists pull requests as issues too, IsPullRequest marks them.
type Issue struct {
	ID            int        `json:"id" yaml:"id"`
	Number        int        `json:"number" yaml:"number"`
	Title         string     `json:"title" yaml:"title"`
	State         IssueState `json:"state" yaml:"state"`
	Author        User       `json:"author" yaml:"author"`
	Assignees     []User     `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Labels        []Label    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Comments      int        `json:"comments" yaml:"comments"`
	CreatedAt     time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" yaml:"updatedAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty" yaml:"closedAt,omitempty"`
	HTMLURL       string     `json:"htmlUrl" yaml:"htmlUrl"`
	IsPullRequest bool       `json:"isPullRequest,omitempty" yaml:"isPullRequest,omitempty"`
}

// IssuesQuery describes single page of repository issues listing.
type IssuesQuery struct {
	Repository Repository
	State      IssueState
	Page       int
	PerPage    int
}

// IssuesPage is a single page of repository issues.
// NextPage is 0 when there are no more pages. LastPage is 0 when unknown.
type IssuesPage struct {
	Issues   []Issue
	Page     int
	NextPage int
	LastPage int
}

// Contributor entity
type Contributor struct {
	ID    int    `json:"id" yaml:"id"`
	Login string `json:"login" yaml:"login"`
}

// ContributorStats entity
type ContributorStats struct {
	Contributor Contributor `json:"contributor" yaml:"contributor"`
	Commits     int         `json:"commits" yaml:"commits"`
}

// LabelCount is number of issues with given label.
type LabelCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// AuthorCount is number of issues opened by given user.
type AuthorCount struct {
	Login string `json:"login" yaml:"login"`
	Count int    `json:"count" yaml:"count"`
}

// MonthCount is number of issues created in given month (YYYY-MM, UTC).
type MonthCount struct {
	Month string `json:"month" yaml:"month"`
	Count int    `json:"count" yaml:"count"`
}

// IssuesSummary holds aggregated issue statistics.
type IssuesSummary struct {
	Total               int           `json:"total" yaml:"total"`
	Open                int           `json:"open" yaml:"open"`
	Closed              int           `json:"closed" yaml:"closed"`
	PullRequestsSkipped int           `json:"pullRequestsSkipped" yaml:"pullRequestsSkipped"`
	Unassigned          int           `json:"unassigned" yaml:"unassigned"`
	Labels              []LabelCount  `json:"labels" yaml:"labels"`
	TopAuthors          []AuthorCount `json:"topAuthors" yaml:"topAuthors"`
	CreatedByMonth      []MonthCount  `json:"createdByMonth" yaml:"createdByMonth"`
	AvgTimeToClose      time.Duration `json:"avgTimeToClose" yaml:"avgTimeToClose"`
	MedianTimeToClose   time.Duration `json:"medianTimeToClose" yaml:"medianTimeToClose"`
	OldestOpen          []Issue       `json:"oldestOpen" yaml:"oldestOpen"`
	MostCommented       []Issue       `json:"mostCommented" yaml:"mostCommented"`
}

// IssuesReport is the result of repository issues analysis.
type IssuesReport struct {
	Repository   RepositoryInfo `json:"repository" yaml:"repository"`
	State        IssueState     `json:"state" yaml:"state"`
	PagesFetched int            `json:"pagesFetched" yaml:"pagesFetched"`
	GeneratedAt  time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Summary      IssuesSummary  `json:"summary" yaml:"summary"`
	Issues       []Issue        `json:"issues,omitempty" yaml:"issues,omitempty"`
}
