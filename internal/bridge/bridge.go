// Package bridge wires gateway events to the webhook and runs the actions the
// webhook answers with.
package bridge

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/nextlevelbuilder/gatehook/internal/discord"
	"github.com/nextlevelbuilder/gatehook/internal/sender"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

// Forwarder delivers an event payload and returns the decoded response, if any.
type Forwarder interface {
	Send(ctx context.Context, handler string, payload any) (mo.Option[webhook.EventResponse], error)
}

// ChannelResolver resolves channel metadata for payload enrichment and
// thread detection.
type ChannelResolver interface {
	ThreadResolver
	Channel(ctx context.Context, guildID, channelID string) (mo.Option[*discordgo.Channel], error)
}

// Bridge handles one gateway event per call. Handlers are safe to call
// concurrently.
type Bridge struct {
	identity  sender.Identity
	filters   sender.Filters
	resolver  ChannelResolver
	forwarder Forwarder
	executor  *Executor
}

// New creates a Bridge. The executor is built over platform and resolver.
func New(filters sender.Filters, resolver ChannelResolver, forwarder Forwarder, platform Platform, maxActions int) *Bridge {
	return &Bridge{
		filters:   filters,
		resolver:  resolver,
		forwarder: forwarder,
		executor:  NewExecutor(platform, resolver, maxActions),
	}
}

// Register subscribes the bridge to session events. ctx bounds every handler.
func (b *Bridge) Register(ctx context.Context, s *discordgo.Session) {
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) { b.HandleReady(ctx, r) })
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Resumed) { b.HandleResumed(ctx, r) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) { b.HandleMessage(ctx, m.Message) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) { b.HandleMessageUpdate(ctx, m.Message) })
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageDelete) { b.HandleMessageDelete(ctx, m.Message) })
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageDeleteBulk) { b.HandleMessageDeleteBulk(ctx, e) })
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.HandleReactionAdd(ctx, r.MessageReaction, r.Member)
	})
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
		b.HandleReactionRemove(ctx, r.MessageReaction)
	})
}

// HandleReady records the bridge's own user id and forwards the event.
func (b *Bridge) HandleReady(ctx context.Context, r *discordgo.Ready) {
	if r.User != nil {
		if b.identity.Set(r.User.ID) {
			slog.Info("discord bot connected",
				"username", r.User.Username, "id", r.User.ID, "guilds", len(r.Guilds))
			slog.Info("install the bot with", "url", discord.InstallURL(r.User.ID))
		} else {
			slog.Info("discord session re-identified", "id", r.User.ID)
		}
	}
	b.forwardOnly(ctx, HandlerReady, ReadyPayload{Ready: r})
}

func (b *Bridge) HandleResumed(ctx context.Context, r *discordgo.Resumed) {
	slog.Info("discord session resumed")
	b.forwardOnly(ctx, HandlerResumed, ResumedPayload{Resumed: r})
}

// HandleMessage filters, enriches and forwards a new message, then runs the
// returned actions against it.
func (b *Bridge) HandleMessage(ctx context.Context, m *discordgo.Message) {
	selfID, ok := b.identity.ID()
	if !ok {
		slog.Debug("dropping message received before ready", "message_id", m.ID)
		return
	}
	cat := sender.Classify(selfID, sender.FromMessage(m))
	if !b.filters.Message.For(m.GuildID).Allows(cat) {
		slog.Debug("message filtered", "message_id", m.ID, "sender", cat.String())
		return
	}

	payload := MessagePayload{Message: m, Channel: b.channel(ctx, m.GuildID, m.ChannelID)}
	resp, ok := b.forward(ctx, HandlerMessage, payload)
	if !ok || len(resp.Actions) == 0 {
		return
	}
	b.executor.Execute(ctx, TargetFromMessage(m), resp.Actions)
}

func (b *Bridge) HandleReactionAdd(ctx context.Context, r *discordgo.MessageReaction, member *discordgo.Member) {
	b.handleReaction(ctx, HandlerReactionAdd, b.filters.ReactionAdd, r, member)
}

// HandleReactionRemove has no member payload, so reaction removals by bots
// classify as user.
func (b *Bridge) HandleReactionRemove(ctx context.Context, r *discordgo.MessageReaction) {
	b.handleReaction(ctx, HandlerReactionRemove, b.filters.ReactionRemove, r, nil)
}

func (b *Bridge) handleReaction(ctx context.Context, handler string, policies sender.ContextPolicies, r *discordgo.MessageReaction, member *discordgo.Member) {
	selfID, ok := b.identity.ID()
	if !ok {
		slog.Debug("dropping reaction received before ready", "handler", handler, "message_id", r.MessageID)
		return
	}
	cat := sender.Classify(selfID, sender.FromReaction(r, member))
	if !policies.For(r.GuildID).Allows(cat) {
		slog.Debug("reaction filtered", "handler", handler, "message_id", r.MessageID, "sender", cat.String())
		return
	}

	payload := ReactionPayload{Reaction: r, Member: member}
	if r.GuildID != "" {
		payload.Channel = b.channel(ctx, r.GuildID, r.ChannelID)
	}
	resp, ok := b.forward(ctx, handler, payload)
	if !ok || len(resp.Actions) == 0 {
		return
	}
	b.executor.Execute(ctx, TargetFromReaction(r), resp.Actions)
}

func (b *Bridge) HandleMessageUpdate(ctx context.Context, m *discordgo.Message) {
	b.forwardOnly(ctx, HandlerMessageUpdate, MessageUpdatePayload{MessageUpdate: m})
}

func (b *Bridge) HandleMessageDelete(ctx context.Context, m *discordgo.Message) {
	b.forwardOnly(ctx, HandlerMessageDelete, MessageDeletePayload{MessageDelete: MessageDeleteEvent{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}})
}

func (b *Bridge) HandleMessageDeleteBulk(ctx context.Context, e *discordgo.MessageDeleteBulk) {
	b.forwardOnly(ctx, HandlerMessageDeleteBulk, MessageDeleteBulkPayload{MessageDeleteBulk: MessageDeleteBulkEvent{
		IDs:       e.Messages,
		ChannelID: e.ChannelID,
		GuildID:   e.GuildID,
	}})
}

// channel resolves enrichment metadata. Failures only cost the payload its
// channel field.
func (b *Bridge) channel(ctx context.Context, guildID, channelID string) *discordgo.Channel {
	opt, err := b.resolver.Channel(ctx, guildID, channelID)
	if err != nil {
		slog.Warn("failed to resolve channel, forwarding without it", "channel_id", channelID, "error", err)
		return nil
	}
	return opt.OrEmpty()
}

func (b *Bridge) forward(ctx context.Context, handler string, payload any) (webhook.EventResponse, bool) {
	opt, err := b.forwarder.Send(ctx, handler, payload)
	if err != nil {
		slog.Error("failed to forward event to webhook", "handler", handler, "error", err)
		return webhook.EventResponse{}, false
	}
	return opt.Get()
}

// forwardOnly is for events without an action target.
func (b *Bridge) forwardOnly(ctx context.Context, handler string, payload any) {
	resp, ok := b.forward(ctx, handler, payload)
	if ok && len(resp.Actions) > 0 {
		slog.Warn("webhook returned actions for an event that cannot take them, ignoring",
			"handler", handler, "count", len(resp.Actions))
	}
}
