package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidEmoji is returned for emoji strings that can't be sent as a reaction.
var ErrInvalidEmoji = errors.New("invalid emoji")

// ParseEmoji normalizes a reaction emoji to the form the reactions endpoint
// expects. Unicode emoji pass through. Custom emoji may be given as "name:id",
// "<:name:id>" or "<a:name:id>" and are returned as "name:id"; the id must be
// a numeric snowflake.
func ParseEmoji(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmoji)
	}

	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(s[1:], ">"), "a:")
		s = strings.TrimPrefix(s, ":")
	}

	name, id, ok := strings.Cut(s, ":")
	if !ok {
		return s, nil
	}
	if name == "" {
		return "", fmt.Errorf("%w: custom emoji %q has no name", ErrInvalidEmoji, s)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("%w: custom emoji id %q is not numeric", ErrInvalidEmoji, id)
	}
	return name + ":" + id, nil
}
