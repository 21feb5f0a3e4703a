package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Detail: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body of the root endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// UserProfileResponse is the JSON representation of a GitHub user profile.
// Name and Bio are null when the user has not set them.
type UserProfileResponse struct {
	Login     string  `json:"login"`
	Name      *string `json:"name"`
	AvatarURL string  `json:"avatarUrl"`
	Bio       *string `json:"bio"`
	CreatedAt string  `json:"createdAt"`
	Followers int     `json:"followers"`
	Following int     `json:"following"`
}

// AnalysisResponse is the JSON representation of one repository analysis.
type AnalysisResponse struct {
	RepoName             string  `json:"repo_name"`
	Stars                int     `json:"stars"`
	Forks                int     `json:"forks"`
	OpenIssues           int     `json:"open_issues"`
	ClosedIssues         int     `json:"closed_issues"`
	Watchers             int     `json:"watchers"`
	ForksToStarsRatio    float64 `json:"forks_to_stars_ratio"`
	IssuesResolutionRate float64 `json:"issues_resolution_rate"`
	EngagementScore      float64 `json:"engagement_score"`
	Analysis             string  `json:"analysis"`
	AnalysisHTML         string  `json:"analysis_html"`
	OverallScore         int     `json:"overall_score"`
}

// LanguageYearResponse is the change volume of one language in one year.
type LanguageYearResponse struct {
	Language string `json:"language"`
	Year     int    `json:"year"`
	Size     int    `json:"size"`
}

// LanguageSizeResponse is a declared repository language and its byte size.
type LanguageSizeResponse struct {
	Language string `json:"language"`
	Size     int    `json:"size"`
}

// RepoLanguagesResponse lists the declared languages of one repository.
type RepoLanguagesResponse struct {
	RepoName  string                 `json:"repo_name"`
	Languages []LanguageSizeResponse `json:"languages"`
	UpdatedAt *string                `json:"updatedAt"`
}

// RateLimitResponse is a single GitHub rate limit bucket.
type RateLimitResponse struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"reset_at"`
}

// RateLimitsResponse groups the GitHub rate limit buckets.
type RateLimitsResponse struct {
	Core    RateLimitResponse `json:"core"`
	GraphQL RateLimitResponse `json:"graphql"`
}

// optional returns nil for an empty string so it serializes as null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toUserProfileResponse(p model.UserProfile) UserProfileResponse {
	return UserProfileResponse{
		Login:     p.Login,
		Name:      optional(p.Name),
		AvatarURL: p.AvatarURL,
		Bio:       optional(p.Bio),
		CreatedAt: p.CreatedAt,
		Followers: p.Followers,
		Following: p.Following,
	}
}

// toAnalysisResponse converts a domain AnalysisResult to its JSON
// representation, rendering the narrative to sanitized HTML alongside the
// raw text.
func toAnalysisResponse(r model.AnalysisResult) AnalysisResponse {
	return AnalysisResponse{
		RepoName:             r.RepoName,
		Stars:                r.Stars,
		Forks:                r.Forks,
		OpenIssues:           r.OpenIssues,
		ClosedIssues:         r.ClosedIssues,
		Watchers:             r.Watchers,
		ForksToStarsRatio:    r.ForksToStarsRatio,
		IssuesResolutionRate: r.IssuesResolutionRate,
		EngagementScore:      r.EngagementScore,
		Analysis:             r.Narrative,
		AnalysisHTML:         RenderNarrative(r.Narrative),
		OverallScore:         r.OverallScore,
	}
}

func toLanguageYearResponse(u model.LanguageYearUsage) LanguageYearResponse {
	return LanguageYearResponse{
		Language: u.Language,
		Year:     u.Year,
		Size:     u.Size,
	}
}

func toRepoLanguagesResponse(r model.RepoLanguages) RepoLanguagesResponse {
	langs := make([]LanguageSizeResponse, 0, len(r.Languages))
	for _, l := range r.Languages {
		langs = append(langs, LanguageSizeResponse{Language: l.Name, Size: l.Bytes})
	}

	return RepoLanguagesResponse{
		RepoName:  r.RepoName,
		Languages: langs,
		UpdatedAt: optional(r.UpdatedAt),
	}
}

func toRateLimitResponse(l model.RateLimit) RateLimitResponse {
	resp := RateLimitResponse{Limit: l.Limit, Remaining: l.Remaining}
	if !l.ResetAt.IsZero() {
		resp.ResetAt = l.ResetAt.UTC().Format(time.RFC3339)
	}
	return resp
}
