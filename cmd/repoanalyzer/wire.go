package main

import (
	"errors"
	"io"
	"log/slog"

	githubadapter "github.com/ericfisherdev/repoanalyzer/internal/adapter/driven/github"
	openaiadapter "github.com/ericfisherdev/repoanalyzer/internal/adapter/driven/openai"
	"github.com/ericfisherdev/repoanalyzer/internal/application"
	"github.com/ericfisherdev/repoanalyzer/internal/config"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

var errMissingGitHubToken = errors.New("REPOANALYZER_GITHUB_TOKEN is required")

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newAnalysisService wires the GitHub and OpenAI adapters, each behind its
// own process-wide gate, into the analysis service.
func newAnalysisService(cfg *config.Config, logger *slog.Logger) (*application.AnalysisService, error) {
	if !cfg.HasGitHubCredentials() {
		return nil, errMissingGitHubToken
	}

	ghClient := githubadapter.NewClient(cfg.GitHubToken,
		githubadapter.WithGate(gate.New(int64(cfg.GraphQLConcurrency))),
		githubadapter.WithLogger(logger),
	)

	var narrator driven.Narrator
	if cfg.HasNarrator() {
		narrator = openaiadapter.NewNarrator(cfg.OpenAIAPIKey,
			openaiadapter.WithModel(cfg.OpenAIModel),
			openaiadapter.WithBaseURL(cfg.OpenAIBaseURL),
			openaiadapter.WithTimeout(cfg.NarrativeTimeout),
		)
		logger.Info("narrator configured", "model", cfg.OpenAIModel)
	} else {
		logger.Warn("no openai api key configured, narratives will report an error")
	}

	narrative := application.NewNarrativeService(narrator, gate.New(int64(cfg.NarrativeConcurrency)), logger)
	return application.NewAnalysisService(ghClient, narrative, logger), nil
}
