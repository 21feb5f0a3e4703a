package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

// errEmptyNarrative is reported when the provider answers with no text.
var errEmptyNarrative = errors.New("provider returned an empty narrative")

// errNoNarrator is reported when no text-generation provider is configured.
var errNoNarrator = errors.New("no text generation provider configured")

// NarrativeService produces the narrative health summary of a repository.
// Calls to the provider pass through a shared gate. Provider failures never
// escape: they are turned into a human-readable narrative instead.
type NarrativeService struct {
	narrator driven.Narrator
	gate     gate.Gate
	logger   *slog.Logger
}

// NewNarrativeService creates a NarrativeService. narrator may be nil, in which
// case every narrative is the degraded message. g is shared by every in-flight
// request in the process.
func NewNarrativeService(narrator driven.Narrator, g gate.Gate, logger *slog.Logger) *NarrativeService {
	if g == nil {
		g = gate.Unbounded()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NarrativeService{
		narrator: narrator,
		gate:     g,
		logger:   logger,
	}
}

// Narrate returns the narrative for m. The returned string is never empty.
func (s *NarrativeService) Narrate(ctx context.Context, m model.MetricRecord) string {
	text, err := s.summarize(ctx, m)
	if err != nil {
		s.logger.Warn("narrative generation failed", "repo", m.RepoName, "error", err)
		return degradedNarrative(err)
	}
	return text
}

func (s *NarrativeService) summarize(ctx context.Context, m model.MetricRecord) (string, error) {
	if s.narrator == nil {
		return "", errNoNarrator
	}

	var text string
	err := gate.Do(ctx, s.gate, func() error {
		var err error
		text, err = s.narrator.Summarize(ctx, m)
		return err
	})
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyNarrative
	}
	return text, nil
}

// degradedNarrative is the narrative shown when the provider call fails.
func degradedNarrative(err error) string {
	return fmt.Sprintf("Error generating analysis: %v", err)
}
