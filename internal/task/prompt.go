package task

import (
	"fmt"
	"strings"

	"github.com/recapd/recap-api/internal/domain"
)

// promptHistoryLimit caps how many recent histories feed into the prompt.
const promptHistoryLimit = 5

// historyExcerptLength caps how much of each prior history is quoted back
// to the model, to keep prompts bounded.
const historyExcerptLength = 200

// BuildPrompt assembles the generation prompt for a topic from its subject
// and its most recent histories (newest first). Two subject-embedded control
// tokens alter the construction:
//
//   - #clean-prompt: the subject (minus the token) is used verbatim as the
//     prompt, with prior histories wrapped as a context block.
//   - #discard-history: prior histories are suppressed entirely.
//
// The tokens are user-authored escape hatches for prompt control and are
// stripped from the subject before use.
func BuildPrompt(subject string, histories []*domain.TopicHistory) string {
	cleanPrompt := strings.Contains(subject, domain.SubjectTokenCleanPrompt)
	discardHistory := strings.Contains(subject, domain.SubjectTokenDiscardHistory)

	base := subject
	base = strings.ReplaceAll(base, domain.SubjectTokenCleanPrompt, "")
	base = strings.ReplaceAll(base, domain.SubjectTokenDiscardHistory, "")
	base = strings.TrimSpace(base)

	recent := histories
	if len(recent) > promptHistoryLimit {
		recent = recent[:promptHistoryLimit]
	}
	if discardHistory {
		recent = nil
	}

	var b strings.Builder

	if cleanPrompt {
		b.WriteString(base)
	} else {
		fmt.Fprintf(&b,
			"Write a short lesson teaching something new about the topic %q. "+
				"Bring one concrete fact, example, or technique the reader likely has not seen yet.",
			base)
	}

	if len(recent) > 0 {
		b.WriteString("\n\nPreviously covered, do not repeat:\n")
		for _, h := range recent {
			b.WriteString("- ")
			b.WriteString(excerpt(h.Content, historyExcerptLength))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// excerpt returns the first n runes of s, collapsing newlines.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
