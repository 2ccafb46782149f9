package grpc

import (
	"context"
	"fmt"

	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AppService can analyze repository issues and contributors.
type AppService interface {
	IssuesReport(ctx context.Context, repoName string, opts app.IssuesOptions) (*app.IssuesReport, error)
	TopContributors(ctx context.Context, repoName string, count int) ([]app.ContributorStats, error)
}

// Service implements AnalyzerServer definition, acting as a direct proxy to AppService.
type Service struct {
	appService AppService
	l          logrus.FieldLogger
}

var _ AnalyzerServer = &Service{}

// NewService returns new Service instance
func NewService(appService AppService, l logrus.FieldLogger) *Service {
	return &Service{
		appService: appService,
		l:          l,
	}
}

// IssuesReport calls service and returns report reply.
func (s *Service) IssuesReport(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req, err := issuesRequestFromStruct(r)
	if err != nil {
		return nil, s.statusError(err)
	}

	report, err := s.appService.IssuesReport(ctx, req.Repo, req.Options)
	if err != nil {
		return nil, s.statusError(fmt.Errorf("service.IssuesReport: %w", err))
	}
	if !req.WithIssues {
		reportCopy := *report
		reportCopy.Issues = nil
		report = &reportCopy
	}

	reply, err := issuesReportToStruct(report)
	if err != nil {
		return nil, s.statusError(fmt.Errorf("converting report: %w", err))
	}
	return reply, nil
}

// TopContributors calls service and returns contributors reply.
func (s *Service) TopContributors(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req, err := contributorsRequestFromStruct(r)
	if err != nil {
		return nil, s.statusError(err)
	}

	stats, err := s.appService.TopContributors(ctx, req.Repo, req.Count)
	if err != nil {
		return nil, s.statusError(fmt.Errorf("service.TopContributors: %w", err))
	}
	reply, err := toStruct(newContributorsReply(req.Repo, stats))
	if err != nil {
		return nil, s.statusError(fmt.Errorf("converting contributors: %w", err))
	}
	return reply, nil
}

// statusError maps app errors to grpc status codes.
func (s *Service) statusError(err error) error {
	switch {
	case app.IsInvalidRequestError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case app.IsNotFoundError(err):
		return status.Error(codes.NotFound, err.Error())
	case app.IsTooManyRequestsError(err):
		return status.Error(codes.ResourceExhausted, err.Error())
	case app.IsScheduledForLaterError(err):
		return status.Error(codes.Unavailable, err.Error())
	}

	s.l.Errorf("grpc service error: %v", err)
	return status.Error(codes.Internal, err.Error())
}

// appError maps grpc status codes back to app errors.
func appError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return app.InvalidRequestError(st.Message())
	case codes.NotFound:
		return app.NotFoundError(st.Message())
	case codes.ResourceExhausted:
		return app.TooManyRequestsError(st.Message())
	case codes.Unavailable:
		return app.ScheduledForLaterError(st.Message())
	}
	return err
}
