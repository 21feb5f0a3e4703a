package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// FetchRateLimits returns the core and GraphQL rate limit buckets for the
// authenticated token. The rate limit endpoint itself does not count against
// the quota.
func (c *Client) FetchRateLimits(ctx context.Context) (*model.RateLimits, error) {
	limits, resp, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching rate limits: %w", err)
	}

	c.logRateLimit(resp, "rate_limit")

	return &model.RateLimits{
		Core:    mapRate(limits.Core),
		GraphQL: mapRate(limits.GraphQL),
	}, nil
}

// mapRate converts a go-github Rate to a domain RateLimit. A nil rate maps to
// the zero value.
func mapRate(r *gh.Rate) model.RateLimit {
	if r == nil {
		return model.RateLimit{}
	}
	return model.RateLimit{
		Limit:     r.Limit,
		Remaining: r.Remaining,
		ResetAt:   r.Reset.Time,
	}
}
