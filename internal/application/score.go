package application

import (
	"math"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// Overall score weights. Logarithmic terms saturate at their caps so a single
// very popular repository cannot max out the score on stars alone.
const (
	scoreBase = 10.0

	starsCap        = 35.0
	starsMultiplier = 8.0

	forksCap        = 15.0
	forksMultiplier = 4.0

	engagementCap        = 20.0
	engagementMultiplier = 5.0

	issuesWeight = 20.0

	openIssuesPenaltyCap     = 15.0
	openIssuesPerPenaltyUnit = 5.0

	minScore = 0.0
	maxScore = 100.0
)

// OverallScore computes the 0-100 health score for a metric record.
func OverallScore(m model.MetricRecord) int {
	stars := math.Min(starsCap, math.Log(float64(m.Stars)+1)*starsMultiplier)
	forks := math.Min(forksCap, math.Log(float64(m.Forks)+1)*forksMultiplier)
	engagement := math.Min(engagementCap, math.Log(m.EngagementScore+1)*engagementMultiplier)
	issues := m.IssuesResolutionRate * issuesWeight
	penalty := math.Min(openIssuesPenaltyCap, float64(m.OpenIssues)/openIssuesPerPenaltyUnit)

	overall := scoreBase + stars + forks + engagement + issues - penalty

	// NaN can only come from a corrupted record; treat it as the floor.
	if math.IsNaN(overall) {
		return int(minScore)
	}
	return int(math.Max(minScore, math.Min(maxScore, overall)))
}
