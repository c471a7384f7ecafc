package tutor

import (
	"regexp"
	"strings"
)

// splitKind tags the three parsing outcomes of one raw completion so each
// branch stays independently testable.
type splitKind int

const (
	splitBoth splitKind = iota
	splitCoachingOnly
	splitNone
)

type completionSplit struct {
	kind           splitKind
	coaching       string
	conversational string
}

// splitCompletion locates both section markers in the raw completion,
// order-insensitive. Each section runs from its marker to the start of the
// other marker (when the other comes later) or to the end of the text.
func splitCompletion(raw string) completionSplit {
	ci := strings.Index(raw, coachingMarker)
	vi := strings.Index(raw, conversationMarker)

	switch {
	case ci >= 0 && vi >= 0:
		var coaching, conversational string
		if ci < vi {
			coaching = raw[ci+len(coachingMarker) : vi]
			conversational = raw[vi+len(conversationMarker):]
		} else {
			conversational = raw[vi+len(conversationMarker) : ci]
			coaching = raw[ci+len(coachingMarker):]
		}
		return completionSplit{
			kind:           splitBoth,
			coaching:       strings.TrimSpace(coaching),
			conversational: strings.TrimSpace(conversational),
		}
	case ci >= 0:
		return completionSplit{
			kind:     splitCoachingOnly,
			coaching: strings.TrimSpace(raw[ci+len(coachingMarker):]),
		}
	default:
		// Covers the stray conversation-marker-only case too: the marker
		// literal is removed so it is never spoken aloud.
		coaching := strings.ReplaceAll(raw, conversationMarker, " ")
		return completionSplit{kind: splitNone, coaching: strings.TrimSpace(coaching)}
	}
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// stripTags removes XML/HTML tags from LLM output while preserving the
// content, including tags that arrive HTML-entity-encoded.
func stripTags(text string) string {
	if text == "" {
		return ""
	}
	// &amp; first to avoid double-unescaping.
	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	text = r.Replace(text)
	text = strings.ReplaceAll(text, "><", "> <")
	text = xmlTagPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

const englishAllowed = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .,;:!?'\"-()&"

// filterEnglish keeps only ASCII letters, digits, spaces and common
// punctuation so the synthesis engine is never fed characters it can not
// speak. Everything else is silently discarded.
func filterEnglish(text string) string {
	var b strings.Builder
	for _, r := range text {
		if strings.ContainsRune(englishAllowed, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
