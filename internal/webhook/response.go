package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/mo"
)

// ActionKind names an action in the response's "type" field.
type ActionKind string

const (
	KindReply  ActionKind = "reply"
	KindReact  ActionKind = "react"
	KindThread ActionKind = "thread"
)

// DefaultAutoArchiveDuration applies when a thread action leaves it out.
const DefaultAutoArchiveDuration = 1440

// Action is one instruction from the endpoint. The set of kinds is closed.
type Action interface {
	Kind() ActionKind
	isAction()
}

// ReplyAction replies to the source message.
type ReplyAction struct {
	Content string
	Mention bool
}

// ReactAction adds a reaction to the source message.
type ReactAction struct {
	Emoji string
}

// ThreadAction posts into a thread on the source message, creating it when
// the message isn't already in one.
type ThreadAction struct {
	Name                mo.Option[string]
	Content             string
	Reply               bool
	Mention             bool
	AutoArchiveDuration int
}

func (ReplyAction) Kind() ActionKind  { return KindReply }
func (ReactAction) Kind() ActionKind  { return KindReact }
func (ThreadAction) Kind() ActionKind { return KindThread }

func (ReplyAction) isAction()  {}
func (ReactAction) isAction()  {}
func (ThreadAction) isAction() {}

// EventResponse is the decoded webhook response body.
type EventResponse struct {
	Actions []Action
}

var errMissingField = errors.New("missing or invalid required field")

// ParseEventResponse decodes a response body. The body must be a JSON object
// and "actions", when present, an array; otherwise it is an error. Individual
// entries with an unknown type or unusable required fields are skipped.
func ParseEventResponse(data []byte) (EventResponse, error) {
	var envelope struct {
		Actions []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return EventResponse{}, fmt.Errorf("decode event response: %w", err)
	}

	resp := EventResponse{Actions: make([]Action, 0, len(envelope.Actions))}
	for i, raw := range envelope.Actions {
		a, err := decodeAction(raw)
		if err != nil {
			slog.Warn("skipping webhook action", "index", i, "error", err)
			continue
		}
		resp.Actions = append(resp.Actions, a)
	}
	return resp, nil
}

type rawAction struct {
	Type                ActionKind      `json:"type"`
	Content             json.RawMessage `json:"content"`
	Emoji               json.RawMessage `json:"emoji"`
	Name                json.RawMessage `json:"name"`
	Mention             json.RawMessage `json:"mention"`
	Reply               json.RawMessage `json:"reply"`
	AutoArchiveDuration json.RawMessage `json:"auto_archive_duration"`
}

func decodeAction(data json.RawMessage) (Action, error) {
	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch raw.Type {
	case KindReply:
		content, ok := requiredString(raw.Content)
		if !ok {
			return nil, fmt.Errorf("reply: %w: content", errMissingField)
		}
		return ReplyAction{Content: content, Mention: lenientBool(raw.Mention)}, nil

	case KindReact:
		emoji, ok := requiredString(raw.Emoji)
		if !ok || emoji == "" {
			return nil, fmt.Errorf("react: %w: emoji", errMissingField)
		}
		return ReactAction{Emoji: emoji}, nil

	case KindThread:
		content, ok := requiredString(raw.Content)
		if !ok {
			return nil, fmt.Errorf("thread: %w: content", errMissingField)
		}
		return ThreadAction{
			Name:                lenientName(raw.Name),
			Content:             content,
			Reply:               lenientBool(raw.Reply),
			Mention:             lenientBool(raw.Mention),
			AutoArchiveDuration: lenientDuration(raw.AutoArchiveDuration),
		}, nil

	default:
		return nil, fmt.Errorf("unknown action type %q", raw.Type)
	}
}

// requiredString decodes a field only the matching kind reads, so a mistyped
// field that belongs to another kind never rejects the entry.
func requiredString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || string(raw) == "null" || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// Optional fields fall back to their defaults on absence or a wrong type.

func lenientBool(raw json.RawMessage) bool {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

func lenientName(raw json.RawMessage) mo.Option[string] {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}

func lenientDuration(raw json.RawMessage) int {
	var n int
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil {
		return DefaultAutoArchiveDuration
	}
	return n
}
