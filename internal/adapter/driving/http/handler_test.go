package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/repoanalyzer/internal/adapter/driving/http"
	"github.com/ericfisherdev/repoanalyzer/internal/application"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	data   *model.UserData
	err    error
	limits *model.RateLimits

	gotCtx context.Context
}

func (m *mockGitHubClient) FetchUser(ctx context.Context, _ string) (*model.UserData, error) {
	m.gotCtx = ctx
	return m.data, m.err
}

func (m *mockGitHubClient) FetchRateLimits(_ context.Context) (*model.RateLimits, error) {
	return m.limits, m.err
}

type mockNarrator struct {
	text string
	err  error
}

func (m *mockNarrator) Summarize(_ context.Context, _ model.MetricRecord) (string, error) {
	return m.text, m.err
}

// --- Helpers ---

func setupMux(gh *mockGitHubClient, narrator driven.Narrator) http.Handler {
	logger := slog.Default()
	narrative := application.NewNarrativeService(narrator, gate.Unbounded(), logger)
	svc := application.NewAnalysisService(gh, narrative, logger)
	h := httphandler.NewHandler(svc, logger)
	return httphandler.NewServeMux(h, logger, nil)
}

func doGet(t *testing.T, mux http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func sampleUserData() *model.UserData {
	return &model.UserData{
		Profile: model.UserProfile{
			Login:     "octocat",
			Name:      "The Octocat",
			AvatarURL: "https://avatars.example/octocat",
			CreatedAt: "2011-01-25T18:44:36Z",
			Followers: 10,
			Following: 2,
		},
		Repositories: []model.RepositorySnapshot{
			{
				Name: "widget", OwnerLogin: "octocat",
				Stars: 100, Forks: 20, OpenIssues: 5, ClosedIssues: 15, Watchers: 50,
				UpdatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
				Languages: []model.LanguageSize{{Name: "Go", Bytes: 900}, {Name: "Shell", Bytes: 100}},
				Commits: []model.Commit{
					{CommittedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Additions: 7, Deletions: 3},
				},
			},
			{Name: "gadget", OwnerLogin: "octocat", Stars: 40, Languages: []model.LanguageSize{}},
			{Name: "doohickey", OwnerLogin: "octocat", Stars: 10},
		},
	}
}

// --- Tests ---

func TestRoot(t *testing.T) {
	mux := setupMux(&mockGitHubClient{}, nil)

	rec := doGet(t, mux, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to the GitHub Repo Analyzer"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	mux := setupMux(&mockGitHubClient{}, nil)

	rec := doGet(t, mux, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}

func TestUnknownRoute(t *testing.T) {
	mux := setupMux(&mockGitHubClient{}, nil)

	rec := doGet(t, mux, "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUserProfile(t *testing.T) {
	gh := &mockGitHubClient{data: sampleUserData()}
	mux := setupMux(gh, nil)

	rec := doGet(t, mux, "/user/octocat")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"login": "octocat",
		"name": "The Octocat",
		"avatarUrl": "https://avatars.example/octocat",
		"bio": null,
		"createdAt": "2011-01-25T18:44:36Z",
		"followers": 10,
		"following": 2
	}`, rec.Body.String())
}

func TestGetUserProfile_DetachesRequestContext(t *testing.T) {
	gh := &mockGitHubClient{data: sampleUserData()}
	mux := setupMux(gh, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/user/octocat", nil).WithContext(ctx)
	cancel()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gh.gotCtx)
	assert.NoError(t, gh.gotCtx.Err(), "upstream calls must not see client cancellation")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		gh         *mockGitHubClient
		wantStatus int
		wantDetail string
	}{
		{
			name:       "user not found",
			gh:         &mockGitHubClient{err: driven.ErrUserNotFound},
			wantStatus: http.StatusNotFound,
			wantDetail: "User not found",
		},
		{
			name:       "wrapped not found",
			gh:         &mockGitHubClient{err: errors.Join(errors.New("lookup"), driven.ErrUserNotFound)},
			wantStatus: http.StatusNotFound,
			wantDetail: "User not found",
		},
		{
			name:       "graphql error",
			gh:         &mockGitHubClient{err: &driven.GraphQLError{Message: "Something went wrong"}},
			wantStatus: http.StatusBadRequest,
			wantDetail: "GitHub API error: Something went wrong",
		},
		{
			name:       "upstream failure",
			gh:         &mockGitHubClient{err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "connection refused",
		},
	}

	paths := []string{
		"/user/octocat",
		"/repos/analyze/octocat",
		"/repos/analyze/octocat?mode=single",
		"/repos/commits/octocat",
		"/repos/languages/octocat",
	}

	for _, tt := range tests {
		for _, path := range paths {
			t.Run(tt.name+" "+path, func(t *testing.T) {
				mux := setupMux(tt.gh, nil)

				rec := doGet(t, mux, path)

				assert.Equal(t, tt.wantStatus, rec.Code)
				assert.Equal(t, tt.wantDetail, decodeDetail(t, rec))
			})
		}
	}
}

func TestAnalyzeRepositories_TopTwo(t *testing.T) {
	gh := &mockGitHubClient{data: sampleUserData()}
	mux := setupMux(gh, &mockNarrator{text: "A **healthy** project."})

	rec := doGet(t, mux, "/repos/analyze/octocat")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []httphandler.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)

	assert.Equal(t, "widget", resp[0].RepoName)
	assert.Equal(t, "gadget", resp[1].RepoName)

	first := resp[0]
	assert.Equal(t, 100, first.Stars)
	assert.Equal(t, 15, first.ClosedIssues)
	assert.InDelta(t, 0.2, first.ForksToStarsRatio, 1e-9)
	assert.InDelta(t, 0.75, first.IssuesResolutionRate, 1e-9)
	assert.InDelta(t, 1.9, first.EngagementScore, 1e-9)
	assert.Equal(t, 76, first.OverallScore)
	assert.Equal(t, "A **healthy** project.", first.Analysis)
	assert.Contains(t, first.AnalysisHTML, "<strong>healthy</strong>")
}

func TestAnalyzeRepositories_Single(t *testing.T) {
	gh := &mockGitHubClient{data: sampleUserData()}
	mux := setupMux(gh, &mockNarrator{text: "Fine."})

	rec := doGet(t, mux, "/repos/analyze/octocat?mode=single")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "widget", resp.RepoName)
	assert.Equal(t, "Fine.", resp.Analysis)
}

func TestAnalyzeRepositories_NarrativeFailureDegrades(t *testing.T) {
	gh := &mockGitHubClient{data: sampleUserData()}
	mux := setupMux(gh, &mockNarrator{err: errors.New("rate limited")})

	rec := doGet(t, mux, "/repos/analyze/octocat?mode=single")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 76, resp.OverallScore)
	assert.Contains(t, resp.Analysis, "Error generating analysis")
	assert.Contains(t, resp.Analysis, "rate limited")
}

func TestAnalyzeRepositories_NoOwnedRepositories(t *testing.T) {
	data := sampleUserData()
	for i := range data.Repositories {
		data.Repositories[i].IsFork = true
	}
	mux := setupMux(&mockGitHubClient{data: data}, nil)

	for _, path := range []string{"/repos/analyze/octocat", "/repos/analyze/octocat?mode=single"} {
		rec := doGet(t, mux, path)

		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "No owned repositories found for this user", decodeDetail(t, rec), path)
	}
}

func TestAnalyzeRepositories_InvalidMode(t *testing.T) {
	mux := setupMux(&mockGitHubClient{data: sampleUserData()}, nil)

	rec := doGet(t, mux, "/repos/analyze/octocat?mode=all")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeDetail(t, rec), "mode")
}

func TestCommitsByLanguage(t *testing.T) {
	mux := setupMux(&mockGitHubClient{data: sampleUserData()}, nil)

	rec := doGet(t, mux, "/repos/commits/octocat")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"language": "Go", "year": 2023, "size": 5},
		{"language": "Shell", "year": 2023, "size": 5}
	]`, rec.Body.String())
}

func TestCommitsByLanguage_EmptyIsList(t *testing.T) {
	data := sampleUserData()
	data.Repositories = nil
	mux := setupMux(&mockGitHubClient{data: data}, nil)

	rec := doGet(t, mux, "/repos/commits/octocat")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRepoLanguages(t *testing.T) {
	mux := setupMux(&mockGitHubClient{data: sampleUserData()}, nil)

	rec := doGet(t, mux, "/repos/languages/octocat")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"repo_name": "widget", "languages": [{"language": "Go", "size": 900}, {"language": "Shell", "size": 100}], "updatedAt": "2025-05-01T10:00:00Z"},
		{"repo_name": "gadget", "languages": [], "updatedAt": null},
		{"repo_name": "doohickey", "languages": [], "updatedAt": null}
	]`, rec.Body.String())
}

func TestRateLimits(t *testing.T) {
	reset := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gh := &mockGitHubClient{limits: &model.RateLimits{
		Core:    model.RateLimit{Limit: 5000, Remaining: 4999, ResetAt: reset},
		GraphQL: model.RateLimit{Limit: 5000, Remaining: 4900, ResetAt: reset},
	}}
	mux := setupMux(gh, nil)

	rec := doGet(t, mux, "/ratelimit")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"core": {"limit": 5000, "remaining": 4999, "reset_at": "2026-01-01T12:00:00Z"},
		"graphql": {"limit": 5000, "remaining": 4900, "reset_at": "2026-01-01T12:00:00Z"}
	}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	mux := setupMux(&mockGitHubClient{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	logger := slog.Default()
	svc := application.NewAnalysisService(&mockGitHubClient{}, nil, logger)
	mux := httphandler.NewServeMux(httphandler.NewHandler(svc, logger), logger, []string{"https://app.example"})

	allowed := httptest.NewRequest(http.MethodGet, "/health", nil)
	allowed.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, allowed)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	denied := httptest.NewRequest(http.MethodGet, "/health", nil)
	denied.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, denied)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
