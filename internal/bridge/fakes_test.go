package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

type call struct {
	Op          string
	ChannelID   string
	MessageID   string
	Ref         *discordgo.MessageReference
	Content     string
	Mention     bool
	Emoji       string
	Name        string
	AutoArchive int
}

type fakePlatform struct {
	mu    sync.Mutex
	calls []call

	threadID       string
	threadErr      error
	message        *discordgo.Message
	messageErr     error
	failReactEmoji string
	replyErr       error
}

func (f *fakePlatform) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakePlatform) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakePlatform) Reply(_ context.Context, channelID string, ref *discordgo.MessageReference, content string, mention bool) error {
	f.record(call{Op: "reply", ChannelID: channelID, Ref: ref, Content: content, Mention: mention})
	return f.replyErr
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID, content string) error {
	f.record(call{Op: "send", ChannelID: channelID, Content: content})
	return nil
}

func (f *fakePlatform) React(_ context.Context, channelID, messageID, emoji string) error {
	f.record(call{Op: "react", ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	if emoji == f.failReactEmoji {
		return errors.New("unknown emoji")
	}
	return nil
}

func (f *fakePlatform) StartThread(_ context.Context, channelID, messageID, name string, autoArchive int) (*discordgo.Channel, error) {
	f.record(call{Op: "start_thread", ChannelID: channelID, MessageID: messageID, Name: name, AutoArchive: autoArchive})
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	id := f.threadID
	if id == "" {
		id = "new-thread"
	}
	return &discordgo.Channel{ID: id, Type: discordgo.ChannelTypeGuildPublicThread}, nil
}

func (f *fakePlatform) Message(_ context.Context, channelID, messageID string) (*discordgo.Message, error) {
	f.record(call{Op: "fetch_message", ChannelID: channelID, MessageID: messageID})
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return f.message, nil
}

type fakeResolver struct {
	threads  map[string]bool
	channels map[string]*discordgo.Channel
	err      error
}

func (r *fakeResolver) IsThread(_ context.Context, _, channelID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.threads[channelID], nil
}

func (r *fakeResolver) Channel(_ context.Context, _, channelID string) (mo.Option[*discordgo.Channel], error) {
	if r.err != nil {
		return mo.None[*discordgo.Channel](), r.err
	}
	if ch, ok := r.channels[channelID]; ok {
		return mo.Some(ch), nil
	}
	return mo.None[*discordgo.Channel](), nil
}

type sent struct {
	Handler string
	Body    map[string]any
}

// fakeForwarder answers every event with a fixed response and records the
// JSON body it would have posted.
type fakeForwarder struct {
	mu       sync.Mutex
	sent     []sent
	response mo.Option[webhook.EventResponse]
	err      error
}

func respondWith(actions ...webhook.Action) *fakeForwarder {
	return &fakeForwarder{response: mo.Some(webhook.EventResponse{Actions: actions})}
}

func (f *fakeForwarder) Send(_ context.Context, handler string, payload any) (mo.Option[webhook.EventResponse], error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mo.None[webhook.EventResponse](), err
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return mo.None[webhook.EventResponse](), err
	}

	f.mu.Lock()
	f.sent = append(f.sent, sent{Handler: handler, Body: body})
	f.mu.Unlock()

	if f.err != nil {
		return mo.None[webhook.EventResponse](), f.err
	}
	return f.response, nil
}

func (f *fakeForwarder) Sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}
