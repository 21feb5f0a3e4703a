// Package cli renders analysis results for terminal output.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

// Health labels by overall score.
const (
	ExcellentValue = "Excellent"
	GoodValue      = "Good"
	FairValue      = "Fair"
	PoorValue      = "Poor"
)

var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgGreen)
	fairColor      = color.New(color.FgYellow)
	poorColor      = color.New(color.FgRed, color.Bold)
)

// PlainLabel returns the health label for an overall score in [0, 100].
func PlainLabel(score int) string {
	switch {
	case score >= 75:
		return ExcellentValue
	case score >= 50:
		return GoodValue
	case score >= 25:
		return FairValue
	default:
		return PoorValue
	}
}

// ColorLabel returns PlainLabel(score) colored for console output.
func ColorLabel(score int) string {
	text := PlainLabel(score)

	switch text {
	case ExcellentValue:
		return excellentColor.Sprint(text)
	case GoodValue:
		return goodColor.Sprint(text)
	case FairValue:
		return fairColor.Sprint(text)
	default:
		return poorColor.Sprint(text)
	}
}

// RenderProfile writes a one-line summary of the user profile.
func RenderProfile(w io.Writer, p model.UserProfile) error {
	name := p.Name
	if name == "" {
		name = p.Login
	}
	_, err := fmt.Fprintf(w, "%s (@%s): %d followers, %d following\n", name, p.Login, p.Followers, p.Following)
	return err
}

// RenderAnalyses writes the results as a table followed by each narrative.
func RenderAnalyses(w io.Writer, results []model.AnalysisResult) error {
	table := tablewriter.NewWriter(w)

	table.Header([]string{"Rank", "Repository", "Stars", "Forks", "Open", "Closed", "Watchers", "Resolved", "Engagement", "Score", "Health"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range results {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.RepoName,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			strconv.Itoa(r.OpenIssues),
			strconv.Itoa(r.ClosedIssues),
			strconv.Itoa(r.Watchers),
			fmt.Sprintf("%.0f%%", r.IssuesResolutionRate*100),
			fmt.Sprintf("%.2f", r.EngagementScore),
			strconv.Itoa(r.OverallScore),
			ColorLabel(r.OverallScore),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(w, "\n%s\n%s\n", color.New(color.Bold).Sprint(r.RepoName), r.Narrative); err != nil {
			return err
		}
	}
	return nil
}
