package github

import (
	"time"

	"github.com/m-zajac/ghanalyzer/internal/app"
)

type repositoryResponse struct {
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	DefaultBranch   string `json:"default_branch"`
	HTMLURL         string `json:"html_url"`
}

func (r repositoryResponse) ToRepositoryInfo() app.RepositoryInfo {
	return app.RepositoryInfo{
		FullName:      r.FullName,
		Description:   r.Description,
		Stars:         r.StargazersCount,
		Forks:         r.ForksCount,
		OpenIssues:    r.OpenIssuesCount,
		DefaultBranch: r.DefaultBranch,
		HTMLURL:       r.HTMLURL,
	}
}

type issuesResponse []issuesResponseItem

type issuesResponseItem struct {
	ID          int                           `json:"id"`
	Number      int                           `json:"number"`
	Title       string                        `json:"title"`
	State       string                        `json:"state"`
	User        issuesResponseUser            `json:"user"`
	Assignees   []issuesResponseUser          `json:"assignees"`
	Labels      []issuesResponseLabel         `json:"labels"`
	Comments    int                           `json:"comments"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	ClosedAt    *time.Time                    `json:"closed_at"`
	HTMLURL     string                        `json:"html_url"`
	PullRequest *issuesResponsePullRequestRef `json:"pull_request"`
}

type issuesResponseUser struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

type issuesResponseLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type issuesResponsePullRequestRef struct {
	URL string `json:"url"`
}

func (r issuesResponse) ToIssues() []app.Issue {
	issues := make([]app.Issue, 0, len(r))
	for _, i := range r {
		is := app.Issue{
			ID:            i.ID,
			Number:        i.Number,
			Title:         i.Title,
			State:         app.IssueState(i.State),
			Author:        app.User{ID: i.User.ID, Login: i.User.Login},
			Comments:      i.Comments,
			CreatedAt:     i.CreatedAt,
			UpdatedAt:     i.UpdatedAt,
			ClosedAt:      i.ClosedAt,
			HTMLURL:       i.HTMLURL,
			IsPullRequest: i.PullRequest != nil,
		}
		for _, a := range i.Assignees {
			is.Assignees = append(is.Assignees, app.User{ID: a.ID, Login: a.Login})
		}
		for _, l := range i.Labels {
			is.Labels = append(is.Labels, app.Label{Name: l.Name, Color: l.Color})
		}
		issues = append(issues, is)
	}

	return issues
}

type statsResponse []struct {
	Author statsResponseAuthor `json:"author"`
	Total  int                 `json:"total"`
}

type statsResponseAuthor struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

func (s statsResponse) ToStats() []app.ContributorStats {
	ss := make([]app.ContributorStats, 0, len(s))
	for _, el := range s {
		ss = append(ss, app.ContributorStats{
			Contributor: app.Contributor{
				ID:    el.Author.ID,
				Login: el.Author.Login,
			},
			Commits: el.Total,
		})
	}

	return ss
}
