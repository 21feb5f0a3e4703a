package httphandler

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// narrativeMarkdown renders plain CommonMark. Raw HTML in provider output is
// omitted by goldmark and single newlines become line breaks, since models
// often separate sentences that way.
var narrativeMarkdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// narrativePolicy strips anything goldmark could still emit that is unsafe,
// such as javascript: links.
var narrativePolicy = bluemonday.UGCPolicy()

// RenderNarrative converts a narrative written in Markdown to sanitized HTML.
// Returns empty string for empty input. If rendering fails the narrative is
// returned sanitized as text.
func RenderNarrative(narrative string) string {
	if narrative == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := narrativeMarkdown.Convert([]byte(narrative), &buf); err != nil {
		return narrativePolicy.Sanitize(narrative)
	}
	return narrativePolicy.Sanitize(buf.String())
}
