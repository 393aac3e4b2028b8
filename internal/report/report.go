// Package report renders a completed workout's ScoringResult, together with an optional
// coach narrative, as an HTML fragment suitable for embedding in a feed page. The markdown
// source is built here; goldmark only ever sees trusted, internally generated text.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/summitpulse/ventiscore/internal/scoring"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Render builds the markdown report for result and narrative, then converts it to an HTML
// fragment. narrative may be empty when no coach summary is available.
func Render(result scoring.ScoringResult, narrative string) (string, error) {
	source := buildMarkdown(result, narrative)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown to html: %w", err)
	}
	return buf.String(), nil
}

func buildMarkdown(result scoring.ScoringResult, narrative string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Workout summary\n\n")
	fmt.Fprintf(&b, "**%.1f stamina gained**\n\n", result.StaminaGained)

	if narrative != "" {
		fmt.Fprintf(&b, "%s\n\n", narrative)
	}

	b.WriteString("| Zone | Minutes | Stamina |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, entry := range result.ZoneBreakdown {
		fmt.Fprintf(&b, "| %s | %.1f | %.1f |\n", entry.Zone, entry.Minutes, entry.StaminaGained)
	}

	return b.String()
}
