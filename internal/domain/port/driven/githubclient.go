package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// ErrUserNotFound indicates the GitHub user lookup returned no user.
var ErrUserNotFound = errors.New("user not found")

// GraphQLError is returned when the GitHub GraphQL API answers with an errors
// array. Message is the first error's message.
type GraphQLError struct {
	Message string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("GitHub API error: %s", e.Message)
}

// GitHubClient defines the driven port for reading GitHub data.
type GitHubClient interface {
	// FetchUser runs the consolidated profile-and-repositories query for the
	// given login. Returns ErrUserNotFound when no such user exists and a
	// *GraphQLError when GitHub reports query errors.
	FetchUser(ctx context.Context, username string) (*model.UserData, error)

	// FetchRateLimits returns the current REST and GraphQL rate limit buckets.
	FetchRateLimits(ctx context.Context) (*model.RateLimits, error)
}
