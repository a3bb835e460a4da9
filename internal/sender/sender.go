// Package sender classifies the originator of a gateway event and decides,
// per configured policy, whether the event is forwarded.
package sender

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Category is the single sender class an event falls into.
type Category int

const (
	User Category = iota
	Self
	Webhook
	System
	Bot
)

func (c Category) String() string {
	switch c {
	case Self:
		return "self"
	case Webhook:
		return "webhook"
	case System:
		return "system"
	case Bot:
		return "bot"
	default:
		return "user"
	}
}

// Author is the classification input extracted from an event.
type Author struct {
	ID        string
	WebhookID string
	System    bool
	Bot       bool
}

// Classify returns the category of author relative to selfID.
// First match wins: self, webhook, system, bot, user.
func Classify(selfID string, a Author) Category {
	switch {
	case selfID != "" && a.ID == selfID:
		return Self
	case a.WebhookID != "":
		return Webhook
	case a.System:
		return System
	case a.Bot:
		return Bot
	default:
		return User
	}
}

// FromMessage extracts the author of a message. A nil author yields an empty
// Author, which classifies as user unless the message came from a webhook.
func FromMessage(m *discordgo.Message) Author {
	a := Author{WebhookID: m.WebhookID}
	if m.Author != nil {
		a.ID = m.Author.ID
		a.System = m.Author.System
		a.Bot = m.Author.Bot
	}
	return a
}

// FromReaction extracts the reacting user. Reactions never carry a webhook id
// or the system flag; the bot flag is only known from the guild member payload.
func FromReaction(r *discordgo.MessageReaction, member *discordgo.Member) Author {
	a := Author{ID: r.UserID}
	if member != nil && member.User != nil {
		a.Bot = member.User.Bot
	}
	return a
}

// Policy is an allow-list over categories.
type Policy struct {
	Self    bool
	Webhook bool
	System  bool
	Bot     bool
	User    bool
}

// DefaultPolicy allows everything except the bridge's own events.
func DefaultPolicy() Policy {
	return Policy{Webhook: true, System: true, Bot: true, User: true}
}

// ParsePolicy parses a comma-separated allow-list. "all" allows every
// category, the empty string yields DefaultPolicy, unknown tokens are ignored.
func ParsePolicy(s string) Policy {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return DefaultPolicy()
	case "all":
		return Policy{Self: true, Webhook: true, System: true, Bot: true, User: true}
	}

	var p Policy
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "self":
			p.Self = true
		case "webhook":
			p.Webhook = true
		case "system":
			p.System = true
		case "bot":
			p.Bot = true
		case "user":
			p.User = true
		}
	}
	return p
}

// Allows reports whether c passes the policy.
func (p Policy) Allows(c Category) bool {
	switch c {
	case Self:
		return p.Self
	case Webhook:
		return p.Webhook
	case System:
		return p.System
	case Bot:
		return p.Bot
	default:
		return p.User
	}
}
