package application

import (
	"errors"
	"slices"
	"strings"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// ErrNoOwnedRepositories indicates the user owns no non-fork repositories.
var ErrNoOwnedRepositories = errors.New("no owned repositories found for this user")

// topRepositoryCount is the number of repositories analyzed by the default
// multi-repository policy.
const topRepositoryCount = 2

// FilterOwned keeps the repositories owned by username that are not forks.
// Logins are compared case-insensitively, matching GitHub's lookup semantics.
func FilterOwned(repos []model.RepositorySnapshot, username string) []model.RepositorySnapshot {
	owned := make([]model.RepositorySnapshot, 0, len(repos))
	for _, r := range repos {
		if r.IsFork || !strings.EqualFold(r.OwnerLogin, username) {
			continue
		}
		owned = append(owned, r)
	}
	return owned
}

// MostStarred returns the repository with the highest star count. Ties go to
// the repository encountered first.
func MostStarred(repos []model.RepositorySnapshot) (model.RepositorySnapshot, error) {
	if len(repos) == 0 {
		return model.RepositorySnapshot{}, ErrNoOwnedRepositories
	}

	best := repos[0]
	for _, r := range repos[1:] {
		if r.Stars > best.Stars {
			best = r
		}
	}
	return best, nil
}

// TopStarred returns up to n repositories ordered by star count descending.
// Repositories with equal star counts keep their input order.
func TopStarred(repos []model.RepositorySnapshot, n int) ([]model.RepositorySnapshot, error) {
	if len(repos) == 0 {
		return nil, ErrNoOwnedRepositories
	}

	sorted := slices.Clone(repos)
	slices.SortStableFunc(sorted, func(a, b model.RepositorySnapshot) int {
		return b.Stars - a.Stars
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}
