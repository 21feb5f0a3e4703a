package application

import (
	"time"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

type languageYear struct {
	language string
	year     int
}

// AggregateLanguageYears apportions commit change volume across each
// repository's declared languages and groups it by language and commit year.
//
// Each commit's added plus deleted lines are split evenly between the
// repository's languages. Commits without changes or without a date are
// skipped, as are repositories with no languages or no commit history. Sizes
// are truncated toward zero when emitted. Results are ordered by first
// appearance of the language, then of the year within that language.
func AggregateLanguageYears(repos []model.RepositorySnapshot) []model.LanguageYearUsage {
	totals := make(map[languageYear]float64)
	var languageOrder []string
	yearOrder := make(map[string][]int)

	for _, repo := range repos {
		if len(repo.Languages) == 0 || repo.Commits == nil {
			continue
		}
		languageCount := float64(len(repo.Languages))

		for _, c := range repo.Commits {
			total := c.TotalChanges()
			if total <= 0 || c.CommittedAt.IsZero() {
				continue
			}
			// The year is read in the committer's own offset, as GitHub reports it.
			year := c.CommittedAt.Year()
			share := float64(total) / languageCount

			for _, lang := range repo.Languages {
				key := languageYear{language: lang.Name, year: year}
				if _, seen := totals[key]; !seen {
					if _, known := yearOrder[lang.Name]; !known {
						languageOrder = append(languageOrder, lang.Name)
					}
					yearOrder[lang.Name] = append(yearOrder[lang.Name], year)
				}
				totals[key] += share
			}
		}
	}

	usage := make([]model.LanguageYearUsage, 0, len(totals))
	for _, lang := range languageOrder {
		for _, year := range yearOrder[lang] {
			usage = append(usage, model.LanguageYearUsage{
				Language: lang,
				Year:     year,
				Size:     int(totals[languageYear{language: lang, year: year}]),
			})
		}
	}
	return usage
}

// ListRepoLanguages returns the declared languages of every repository.
func ListRepoLanguages(repos []model.RepositorySnapshot) []model.RepoLanguages {
	out := make([]model.RepoLanguages, 0, len(repos))
	for _, repo := range repos {
		langs := repo.Languages
		if langs == nil {
			langs = []model.LanguageSize{}
		}

		var updatedAt string
		if !repo.UpdatedAt.IsZero() {
			updatedAt = repo.UpdatedAt.UTC().Format(time.RFC3339)
		}

		out = append(out, model.RepoLanguages{
			RepoName:  repo.Name,
			Languages: langs,
			UpdatedAt: updatedAt,
		})
	}
	return out
}
