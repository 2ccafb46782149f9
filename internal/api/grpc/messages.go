package grpc

import (
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"google.golang.org/protobuf/types/known/structpb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request field names.
const (
	fieldRepo         = "repo"
	fieldMaxPages     = "max_pages"
	fieldPerPage      = "per_page"
	fieldState        = "state"
	fieldIncludePulls = "include_pulls"
	fieldTop          = "top"
	fieldWithIssues   = "with_issues"
	fieldCount        = "count"
)

// IssuesRequest holds IssuesReport call params.
type IssuesRequest struct {
	Repo       string
	Options    app.IssuesOptions
	WithIssues bool
}

func (r IssuesRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		fieldRepo:         r.Repo,
		fieldMaxPages:     r.Options.MaxPages,
		fieldPerPage:      r.Options.PerPage,
		fieldState:        string(r.Options.State),
		fieldIncludePulls: r.Options.IncludePullRequests,
		fieldTop:          r.Options.TopN,
		fieldWithIssues:   r.WithIssues,
	})
}

func issuesRequestFromStruct(s *structpb.Struct) (IssuesRequest, error) {
	var r IssuesRequest
	var err error

	if r.Repo, err = stringField(s, fieldRepo); err != nil {
		return r, err
	}
	if r.Options.MaxPages, err = intField(s, fieldMaxPages); err != nil {
		return r, err
	}
	if r.Options.PerPage, err = intField(s, fieldPerPage); err != nil {
		return r, err
	}
	if r.Options.TopN, err = intField(s, fieldTop); err != nil {
		return r, err
	}
	state, err := stringField(s, fieldState)
	if err != nil {
		return r, err
	}
	r.Options.State = app.IssueState(state)
	if r.Options.IncludePullRequests, err = boolField(s, fieldIncludePulls); err != nil {
		return r, err
	}
	if r.WithIssues, err = boolField(s, fieldWithIssues); err != nil {
		return r, err
	}

	return r, nil
}

// ContributorsRequest holds TopContributors call params.
type ContributorsRequest struct {
	Repo  string
	Count int
}

func (r ContributorsRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		fieldRepo:  r.Repo,
		fieldCount: r.Count,
	})
}

func contributorsRequestFromStruct(s *structpb.Struct) (ContributorsRequest, error) {
	var r ContributorsRequest
	var err error

	if r.Repo, err = stringField(s, fieldRepo); err != nil {
		return r, err
	}
	if r.Count, err = intField(s, fieldCount); err != nil {
		return r, err
	}

	return r, nil
}

// Reply field names of duration values.
const (
	fieldSummary           = "summary"
	fieldAvgTimeToClose    = "avgTimeToClose"
	fieldMedianTimeToClose = "medianTimeToClose"
)

// contributorsReply mirrors the http contributors response.
type contributorsReply struct {
	Repository   string        `json:"repository"`
	Contributors []contributor `json:"contributors"`
}

type contributor struct {
	Login   string `json:"login"`
	Commits int    `json:"commits"`
}

func newContributorsReply(repo string, stats []app.ContributorStats) contributorsReply {
	contributors := make([]contributor, 0, len(stats))
	for _, s := range stats {
		contributors = append(contributors, contributor{
			Login:   s.Contributor.Login,
			Commits: s.Commits,
		})
	}

	return contributorsReply{
		Repository:   repo,
		Contributors: contributors,
	}
}

func (r contributorsReply) stats() []app.ContributorStats {
	stats := make([]app.ContributorStats, 0, len(r.Contributors))
	for _, c := range r.Contributors {
		stats = append(stats, app.ContributorStats{
			Contributor: app.Contributor{Login: c.Login},
			Commits:     c.Commits,
		})
	}
	return stats
}

// issuesReportToStruct converts report to struct.
// Summary durations are sent as duration strings ("36h0m0s"), struct numbers are float64
// and can't hold every int64 nanoseconds value.
func issuesReportToStruct(r *app.IssuesReport) (*structpb.Struct, error) {
	m, err := toMap(r)
	if err != nil {
		return nil, err
	}
	if summary, ok := m[fieldSummary].(map[string]interface{}); ok {
		summary[fieldAvgTimeToClose] = r.Summary.AvgTimeToClose.String()
		summary[fieldMedianTimeToClose] = r.Summary.MedianTimeToClose.String()
	}

	return structpb.NewStruct(m)
}

func issuesReportFromStruct(s *structpb.Struct) (*app.IssuesReport, error) {
	m := s.AsMap()
	if summary, ok := m[fieldSummary].(map[string]interface{}); ok {
		for _, name := range []string{fieldAvgTimeToClose, fieldMedianTimeToClose} {
			v, ok := summary[name].(string)
			if !ok {
				continue
			}
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
			summary[name] = int64(d)
		}
	}

	var report app.IssuesReport
	if err := fromMap(m, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// toStruct converts value to struct through its json representation.
func toStruct(v interface{}) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling json: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshalling json: %w", err)
	}
	return m, nil
}

// fromStruct fills v with struct contents through its json representation.
func fromStruct(s *structpb.Struct, v interface{}) error {
	return fromMap(s.AsMap(), v)
}

func fromMap(m map[string]interface{}, v interface{}) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshalling json: %w", err)
	}
	return nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", app.InvalidRequestError(fmt.Sprintf("field %s must be a string", name))
	}
	return sv.StringValue, nil
}

func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, nil
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || nv.NumberValue != math.Trunc(nv.NumberValue) || math.Abs(nv.NumberValue) > math.MaxInt32 {
		return 0, app.InvalidRequestError(fmt.Sprintf("field %s must be an integer", name))
	}
	return int(nv.NumberValue), nil
}

func boolField(s *structpb.Struct, name string) (bool, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return false, nil
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, app.InvalidRequestError(fmt.Sprintf("field %s must be a bool", name))
	}
	return bv.BoolValue, nil
}
