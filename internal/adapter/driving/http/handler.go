// Package httphandler is the HTTP driving adapter exposing the repository
// analysis API as JSON endpoints.
package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/repoanalyzer/internal/application"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
)

const welcomeMessage = "Welcome to the GitHub Repo Analyzer"

// Analysis modes accepted by the analyze endpoint.
const (
	modeTop    = "top"
	modeSingle = "single"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	svc    *application.AnalysisService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc *application.AnalysisService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with CORS, logging and recovery middleware. An empty allowedOrigins admits
// any origin.
func NewServeMux(h *Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ratelimit", h.RateLimits)
	mux.HandleFunc("GET /user/{username}", h.GetUserProfile)
	mux.HandleFunc("GET /repos/analyze/{username}", h.AnalyzeRepositories)
	mux.HandleFunc("GET /repos/commits/{username}", h.CommitsByLanguage)
	mux.HandleFunc("GET /repos/languages/{username}", h.RepoLanguages)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = corsMiddleware(allowedOrigins, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Root returns the welcome message.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: welcomeMessage})
}

// Health returns the service health status and current time.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// RateLimits returns the current GitHub rate limit buckets.
func (h *Handler) RateLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.svc.RateLimits(detach(r))
	if err != nil {
		h.handleError(w, "failed to fetch rate limits", err)
		return
	}

	writeJSON(w, http.StatusOK, RateLimitsResponse{
		Core:    toRateLimitResponse(limits.Core),
		GraphQL: toRateLimitResponse(limits.GraphQL),
	})
}

// GetUserProfile returns the public profile of a GitHub user.
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := h.svc.Profile(detach(r), username)
	if err != nil {
		h.handleError(w, "failed to fetch user profile", err, "username", username)
		return
	}

	writeJSON(w, http.StatusOK, toUserProfileResponse(*profile))
}

// AnalyzeRepositories analyzes the user's top two owned repositories by
// stars. With ?mode=single only the most-starred repository is analyzed and
// a single object is returned instead of a list.
func (h *Handler) AnalyzeRepositories(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	ctx := detach(r)

	switch mode := r.URL.Query().Get("mode"); mode {
	case modeSingle:
		result, err := h.svc.AnalyzeMostStarred(ctx, username)
		if err != nil {
			h.handleError(w, "failed to analyze repository", err, "username", username)
			return
		}
		writeJSON(w, http.StatusOK, toAnalysisResponse(result))

	case "", modeTop:
		results, err := h.svc.AnalyzeTop(ctx, username)
		if err != nil {
			h.handleError(w, "failed to analyze repositories", err, "username", username)
			return
		}
		resp := make([]AnalysisResponse, 0, len(results))
		for _, res := range results {
			resp = append(resp, toAnalysisResponse(res))
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeError(w, http.StatusBadRequest, "mode must be \"top\" or \"single\"")
	}
}

// CommitsByLanguage returns the commit change volume per language and year.
func (h *Handler) CommitsByLanguage(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	usage, err := h.svc.LanguageUsage(detach(r), username)
	if err != nil {
		h.handleError(w, "failed to aggregate commits by language", err, "username", username)
		return
	}

	resp := make([]LanguageYearResponse, 0, len(usage))
	for _, u := range usage {
		resp = append(resp, toLanguageYearResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RepoLanguages returns the declared languages of each fetched repository.
func (h *Handler) RepoLanguages(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	repos, err := h.svc.RepoLanguages(detach(r), username)
	if err != nil {
		h.handleError(w, "failed to list repository languages", err, "username", username)
		return
	}

	resp := make([]RepoLanguagesResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoLanguagesResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleError maps a service error to its HTTP status and detail message.
func (h *Handler) handleError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, append(attrs, "error", err)...)
	} else {
		h.logger.Warn(msg, append(attrs, "error", err, "status", status)...)
	}
	writeError(w, status, detail)
}

func statusFor(err error) (int, string) {
	var gqlErr *driven.GraphQLError
	switch {
	case errors.Is(err, driven.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, application.ErrNoOwnedRepositories):
		return http.StatusNotFound, "No owned repositories found for this user"
	case errors.As(err, &gqlErr):
		return http.StatusBadRequest, gqlErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// detach returns the request context without its cancellation, so upstream
// calls already in flight complete even if the client goes away.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
