// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
)

// errNoGitHubClient is returned by lookups when the service was built without
// a GitHub client.
var errNoGitHubClient = errors.New("github client not configured")

// AnalysisService answers the read use cases of the API: user profiles,
// repository health analyses, and language usage. It depends only on port
// interfaces and holds no per-request state.
type AnalysisService struct {
	ghClient  driven.GitHubClient
	narrative *NarrativeService
	logger    *slog.Logger
}

// NewAnalysisService creates an AnalysisService with the required dependencies.
func NewAnalysisService(ghClient driven.GitHubClient, narrative *NarrativeService, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if narrative == nil {
		narrative = NewNarrativeService(nil, nil, logger)
	}
	return &AnalysisService{
		ghClient:  ghClient,
		narrative: narrative,
		logger:    logger,
	}
}

// Profile returns the public profile of username.
func (s *AnalysisService) Profile(ctx context.Context, username string) (*model.UserProfile, error) {
	data, err := s.fetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return &data.Profile, nil
}

// AnalyzeMostStarred analyzes the user's most-starred owned, non-fork
// repository.
func (s *AnalysisService) AnalyzeMostStarred(ctx context.Context, username string) (model.AnalysisResult, error) {
	data, err := s.fetchUser(ctx, username)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	repo, err := MostStarred(FilterOwned(data.Repositories, username))
	if err != nil {
		return model.AnalysisResult{}, err
	}

	s.logger.Info("analyzing repository", "username", username, "repo", repo.Name)
	return s.AnalyzeRepository(ctx, repo), nil
}

// AnalyzeTop analyzes the user's two most-starred owned, non-fork
// repositories concurrently. Results are ordered by star count descending.
func (s *AnalysisService) AnalyzeTop(ctx context.Context, username string) ([]model.AnalysisResult, error) {
	data, err := s.fetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	repos, err := TopStarred(FilterOwned(data.Repositories, username), topRepositoryCount)
	if err != nil {
		return nil, err
	}

	results := make([]model.AnalysisResult, len(repos))
	var g errgroup.Group
	for i, repo := range repos {
		g.Go(func() error {
			results[i] = s.AnalyzeRepository(ctx, repo)
			return nil
		})
	}
	// AnalyzeRepository never fails; Wait only joins the goroutines.
	_ = g.Wait()

	s.logger.Info("analyzed repositories", "username", username, "count", len(results))
	return results, nil
}

// AnalyzeRepository computes the full analysis of one repository. It always
// returns a result: an unexpected failure while computing metrics yields a
// zero-valued result with an explanatory narrative.
func (s *AnalysisService) AnalyzeRepository(ctx context.Context, snap model.RepositorySnapshot) (result model.AnalysisResult) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("repository analysis failed", "repo", snap.Name, "panic", v)
			result = failedAnalysis(snap.Name, fmt.Errorf("%v", v))
		}
	}()

	metrics := CalculateMetrics(snap)
	score := OverallScore(metrics)
	narrative := s.narrative.Narrate(ctx, metrics)

	return model.AnalysisResult{
		MetricRecord: metrics,
		Narrative:    narrative,
		OverallScore: score,
	}
}

// LanguageUsage returns the user's commit change volume grouped by language
// and year.
func (s *AnalysisService) LanguageUsage(ctx context.Context, username string) ([]model.LanguageYearUsage, error) {
	data, err := s.fetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return AggregateLanguageYears(data.Repositories), nil
}

// RepoLanguages returns the declared languages of each fetched repository.
func (s *AnalysisService) RepoLanguages(ctx context.Context, username string) ([]model.RepoLanguages, error) {
	data, err := s.fetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return ListRepoLanguages(data.Repositories), nil
}

// RateLimits returns the GitHub rate limit buckets.
func (s *AnalysisService) RateLimits(ctx context.Context) (*model.RateLimits, error) {
	if s.ghClient == nil {
		return nil, errNoGitHubClient
	}
	return s.ghClient.FetchRateLimits(ctx)
}

func (s *AnalysisService) fetchUser(ctx context.Context, username string) (*model.UserData, error) {
	if s.ghClient == nil {
		return nil, errNoGitHubClient
	}

	data, err := s.ghClient.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, driven.ErrUserNotFound
	}

	s.logger.Debug("fetched user data", "username", username, "repos", len(data.Repositories))
	return data, nil
}

// failedAnalysis is the result reported when analysis of a repository fails
// unexpectedly. Only the repository name is preserved.
func failedAnalysis(name string, err error) model.AnalysisResult {
	if name == "" {
		name = unknownRepoName
	}
	return model.AnalysisResult{
		MetricRecord: model.MetricRecord{RepoName: name},
		Narrative:    fmt.Sprintf("An error occurred during analysis: %v", err),
		OverallScore: 0,
	}
}
