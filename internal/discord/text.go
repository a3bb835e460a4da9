package discord

import (
	"log/slog"
	"strings"
)

const (
	// MaxContentLength is Discord's message content limit in characters.
	MaxContentLength = 2000
	// MaxThreadNameLength is Discord's thread name limit in characters.
	MaxThreadNameLength = 100

	defaultThreadName = "Thread"
	ellipsis          = "..."
)

// TruncateContent clips s to MaxContentLength runes, replacing the tail with
// "..." when it had to cut.
func TruncateContent(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxContentLength {
		return s
	}
	slog.Warn("content exceeds discord limit, truncated", "original_len", len(runes), "truncated_len", MaxContentLength)
	return string(runes[:MaxContentLength-len(ellipsis)]) + ellipsis
}

// TruncateThreadName clips s to MaxThreadNameLength runes without an ellipsis.
func TruncateThreadName(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxThreadNameLength {
		return s
	}
	return string(runes[:MaxThreadNameLength])
}

// ThreadNameFrom derives a thread name from message text: the first non-blank
// line, trimmed and clipped, or "Thread" when there is none.
func ThreadNameFrom(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return TruncateThreadName(line)
		}
	}
	return defaultThreadName
}
