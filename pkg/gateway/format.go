package gateway

import (
	"regexp"
	"strings"
)

// emptyAnswerFallback replaces empty provider output so callers never see an
// empty answer.
const emptyAnswerFallback = "Sorry, no advice came back this time. Please try asking again."

var (
	// **text** and ***text*** become a bracket highlight.
	reEmphasisPair = regexp.MustCompile(`\*{2,3}([^*\n]+?)\*{2,3}`)

	// Unpaired emphasis markers are dropped.
	reStrayEmphasis = regexp.MustCompile(`\*{2,3}`)

	// Leading *, - or an existing bullet glyph become a single bullet.
	reListMarker = regexp.MustCompile(`(?m)^[ \t]*[*•-][ \t]*`)

	reExtraNewlines = regexp.MustCompile(`\n{3,}`)
)

// Format normalizes raw provider text into the presentation convention used
// across the app. It is pure and idempotent: Format(Format(x)) == Format(x).
func Format(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return emptyAnswerFallback
	}

	text := reEmphasisPair.ReplaceAllString(raw, "【$1】")
	text = reStrayEmphasis.ReplaceAllString(text, "")
	text = reListMarker.ReplaceAllString(text, "• ")
	text = reExtraNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" {
		return emptyAnswerFallback
	}
	return text
}
