package model

// MetricRecord holds the normalized engagement metrics derived from a
// RepositorySnapshot. All ratios are finite.
type MetricRecord struct {
	RepoName             string
	Stars                int
	Forks                int
	OpenIssues           int
	ClosedIssues         int
	Watchers             int
	ForksToStarsRatio    float64
	IssuesResolutionRate float64
	EngagementScore      float64
}

// AnalysisResult is the complete health analysis of one repository.
type AnalysisResult struct {
	MetricRecord
	Narrative    string
	OverallScore int // Always within [0, 100].
}
