package application

import "github.com/ericfisherdev/repoanalyzer/internal/domain/model"

// unknownRepoName is used when a snapshot carries no repository name.
const unknownRepoName = "Unknown"

// CalculateMetrics derives the engagement metrics of a repository snapshot.
// It never fails: negative counts are treated as zero and every ratio whose
// denominator is zero is defined as zero.
func CalculateMetrics(snap model.RepositorySnapshot) model.MetricRecord {
	stars := nonNegative(snap.Stars)
	forks := nonNegative(snap.Forks)
	openIssues := nonNegative(snap.OpenIssues)
	closedIssues := nonNegative(snap.ClosedIssues)
	watchers := nonNegative(snap.Watchers)

	name := snap.Name
	if name == "" {
		name = unknownRepoName
	}

	return model.MetricRecord{
		RepoName:             name,
		Stars:                stars,
		Forks:                forks,
		OpenIssues:           openIssues,
		ClosedIssues:         closedIssues,
		Watchers:             watchers,
		ForksToStarsRatio:    ratio(forks, stars),
		IssuesResolutionRate: ratio(closedIssues, openIssues+closedIssues),
		EngagementScore:      float64(stars+2*forks+watchers) / 100,
	}
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
