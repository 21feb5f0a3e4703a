package model

import "time"

// RepositorySnapshot is a point-in-time read of a repository's public metadata
// and bounded default-branch commit history. Counts absent from the upstream
// response are zero.
type RepositorySnapshot struct {
	Name            string
	OwnerLogin      string
	Description     string
	PrimaryLanguage string
	Stars           int
	Forks           int
	OpenIssues      int
	ClosedIssues    int
	Watchers        int
	IsFork          bool
	UpdatedAt       time.Time
	Languages       []LanguageSize

	// Commits is nil when the repository has no default branch history.
	Commits []Commit
}

// LanguageSize is a declared repository language and its size in bytes.
type LanguageSize struct {
	Name  string
	Bytes int
}

// Commit is a single default-branch commit with its line-change totals.
type Commit struct {
	CommittedAt time.Time
	Additions   int
	Deletions   int
}

// TotalChanges returns the number of changed lines in the commit.
func (c Commit) TotalChanges() int {
	return c.Additions + c.Deletions
}
