package model

// LanguageYearUsage is the commit change volume attributed to a language in a
// calendar year.
type LanguageYearUsage struct {
	Language string
	Year     int
	Size     int
}

// RepoLanguages lists the declared languages of a single repository.
type RepoLanguages struct {
	RepoName  string
	Languages []LanguageSize
	UpdatedAt string // RFC3339; empty when unknown.
}
