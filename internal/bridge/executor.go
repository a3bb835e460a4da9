package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/gatehook/internal/discord"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

var (
	ErrThreadsUnsupported = errors.New("threads are not supported in direct messages")
	ErrThreadMissing      = errors.New("message already has a thread but none was returned")
)

// Platform is the set of chat side effects actions need.
type Platform interface {
	Reply(ctx context.Context, channelID string, ref *discordgo.MessageReference, content string, mention bool) error
	SendMessage(ctx context.Context, channelID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	StartThread(ctx context.Context, channelID, messageID, name string, autoArchive int) (*discordgo.Channel, error)
	Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
}

// ThreadResolver answers whether a channel is a thread.
type ThreadResolver interface {
	IsThread(ctx context.Context, guildID, channelID string) (bool, error)
}

// Executor runs webhook actions against the platform, in order, isolating
// failures per action.
type Executor struct {
	platform   Platform
	resolver   ThreadResolver
	maxActions int
	tracer     trace.Tracer
}

// NewExecutor creates an Executor that runs at most maxActions per response.
func NewExecutor(platform Platform, resolver ThreadResolver, maxActions int) *Executor {
	return &Executor{
		platform:   platform,
		resolver:   resolver,
		maxActions: maxActions,
		tracer:     otel.Tracer("github.com/nextlevelbuilder/gatehook/internal/bridge"),
	}
}

// Execute runs actions against target. It never fails as a whole: each
// failing action is logged and the next one runs.
func (e *Executor) Execute(ctx context.Context, target ActionTarget, actions []webhook.Action) {
	if len(actions) > e.maxActions {
		slog.Warn("too many actions in webhook response, truncating",
			"count", len(actions), "max_actions", e.maxActions, "message_id", target.MessageID)
		actions = actions[:e.maxActions]
	}

	for i, a := range actions {
		if err := e.run(ctx, target, a); err != nil {
			slog.Error("action failed", "action", a.Kind(), "index", i, "message_id", target.MessageID, "error", err)
		}
	}
}

func (e *Executor) run(ctx context.Context, target ActionTarget, a webhook.Action) error {
	ctx, span := e.tracer.Start(ctx, "bridge.action", trace.WithAttributes(attribute.String("gatehook.action", string(a.Kind()))))
	defer span.End()

	var err error
	switch a := a.(type) {
	case webhook.ReplyAction:
		err = e.reply(ctx, target, a)
	case webhook.ReactAction:
		err = e.react(ctx, target, a)
	case webhook.ThreadAction:
		err = e.thread(ctx, target, a)
	default:
		err = fmt.Errorf("unsupported action %q", a.Kind())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "action failed")
	}
	return err
}

func (e *Executor) reply(ctx context.Context, target ActionTarget, a webhook.ReplyAction) error {
	return e.platform.Reply(ctx, target.ChannelID, target.referenceIn(target.ChannelID), discord.TruncateContent(a.Content), a.Mention)
}

func (e *Executor) react(ctx context.Context, target ActionTarget, a webhook.ReactAction) error {
	emoji, err := discord.ParseEmoji(a.Emoji)
	if err != nil {
		return err
	}
	return e.platform.React(ctx, target.ChannelID, target.MessageID, emoji)
}

func (e *Executor) thread(ctx context.Context, target ActionTarget, a webhook.ThreadAction) error {
	if target.GuildID == "" {
		return ErrThreadsUnsupported
	}

	dest, err := e.threadChannel(ctx, target, a)
	if err != nil {
		return err
	}

	content := discord.TruncateContent(a.Content)
	if a.Reply {
		return e.platform.Reply(ctx, dest, target.referenceIn(dest), content, a.Mention)
	}
	return e.platform.SendMessage(ctx, dest, content)
}

// threadChannel returns the channel thread content goes to: the current
// channel when it's already a thread, otherwise a thread started from (or
// already attached to) the source message.
func (e *Executor) threadChannel(ctx context.Context, target ActionTarget, a webhook.ThreadAction) (string, error) {
	inThread, err := e.resolver.IsThread(ctx, target.GuildID, target.ChannelID)
	if err != nil {
		return "", fmt.Errorf("resolve channel type: %w", err)
	}
	if inThread {
		if a.Name.IsPresent() {
			slog.Info("already in a thread, ignoring thread name", "channel_id", target.ChannelID)
		}
		return target.ChannelID, nil
	}

	name := discord.TruncateThreadName(a.Name.OrElse(discord.ThreadNameFrom(target.Content)))
	archive := discord.AutoArchiveDuration(a.AutoArchiveDuration)

	ch, err := e.platform.StartThread(ctx, target.ChannelID, target.MessageID, name, archive)
	if err == nil {
		slog.Debug("thread created", "thread_id", ch.ID, "message_id", target.MessageID)
		return ch.ID, nil
	}
	if !discord.IsThreadAlreadyCreated(err) {
		return "", err
	}

	// Another handler won the race; use the thread it created.
	m, ferr := e.platform.Message(ctx, target.ChannelID, target.MessageID)
	if ferr != nil {
		return "", fmt.Errorf("refetch message after thread conflict: %w", ferr)
	}
	if m.Thread == nil || m.Thread.ID == "" {
		return "", ErrThreadMissing
	}
	slog.Debug("reusing existing thread", "thread_id", m.Thread.ID, "message_id", target.MessageID)
	return m.Thread.ID, nil
}
