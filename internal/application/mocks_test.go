package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	data   *model.UserData
	err    error
	limits *model.RateLimits

	mu    sync.Mutex
	calls []string
}

func (m *mockGitHubClient) FetchUser(_ context.Context, username string) (*model.UserData, error) {
	m.mu.Lock()
	m.calls = append(m.calls, username)
	m.mu.Unlock()
	return m.data, m.err
}

func (m *mockGitHubClient) FetchRateLimits(_ context.Context) (*model.RateLimits, error) {
	return m.limits, m.err
}

type mockNarrator struct {
	summarize func(ctx context.Context, m model.MetricRecord) (string, error)
}

func (m *mockNarrator) Summarize(ctx context.Context, metrics model.MetricRecord) (string, error) {
	return m.summarize(ctx, metrics)
}

func staticNarrator(text string) *mockNarrator {
	return &mockNarrator{summarize: func(context.Context, model.MetricRecord) (string, error) {
		return text, nil
	}}
}
