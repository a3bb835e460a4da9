package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// ChannelCache is the synchronous local lookup side of channel resolution.
// Implementations return copies so callers never hold cache locks.
type ChannelCache interface {
	// GuildChannel looks a channel or thread up inside one guild.
	GuildChannel(guildID, channelID string) (*discordgo.Channel, bool)
	// FindChannel scans every cached guild.
	FindChannel(channelID string) (*discordgo.Channel, bool)
}

// ChannelFetcher is the remote API side of channel resolution.
type ChannelFetcher interface {
	FetchChannel(ctx context.Context, channelID string) (*discordgo.Channel, error)
}

// Resolver resolves channel metadata cache-first, falling back to the API
// only after the whole cache has missed.
type Resolver struct {
	cache   ChannelCache
	fetcher ChannelFetcher
}

// NewResolver creates a Resolver over the given cache and fetcher.
func NewResolver(cache ChannelCache, fetcher ChannelFetcher) *Resolver {
	return &Resolver{cache: cache, fetcher: fetcher}
}

// IsThread reports whether channelID is a thread of any kind.
func (r *Resolver) IsThread(ctx context.Context, guildID, channelID string) (bool, error) {
	ch, err := r.lookup(ctx, guildID, channelID)
	if err != nil {
		return false, err
	}
	return IsThreadChannel(ch), nil
}

// Channel returns guild channel metadata. Direct-message channels resolve to
// None.
func (r *Resolver) Channel(ctx context.Context, guildID, channelID string) (mo.Option[*discordgo.Channel], error) {
	ch, err := r.lookup(ctx, guildID, channelID)
	if err != nil {
		return mo.None[*discordgo.Channel](), err
	}
	if ch == nil || isPrivate(ch) {
		return mo.None[*discordgo.Channel](), nil
	}
	return mo.Some(ch), nil
}

func (r *Resolver) lookup(ctx context.Context, guildID, channelID string) (*discordgo.Channel, error) {
	if guildID != "" {
		if ch, ok := r.cache.GuildChannel(guildID, channelID); ok {
			return ch, nil
		}
	}
	if ch, ok := r.cache.FindChannel(channelID); ok {
		return ch, nil
	}

	ch, err := r.fetcher.FetchChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	return ch, nil
}

// IsThreadChannel reports whether ch is a public, private or news thread.
func IsThreadChannel(ch *discordgo.Channel) bool {
	if ch == nil {
		return false
	}
	switch ch.Type {
	case discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return true
	}
	return false
}

func isPrivate(ch *discordgo.Channel) bool {
	return ch.Type == discordgo.ChannelTypeDM || ch.Type == discordgo.ChannelTypeGroupDM
}

// StateCache adapts discordgo's in-memory state to ChannelCache.
type StateCache struct {
	state *discordgo.State
}

// NewStateCache wraps state. The state must track channels and threads.
func NewStateCache(state *discordgo.State) *StateCache {
	return &StateCache{state: state}
}

func (c *StateCache) GuildChannel(guildID, channelID string) (*discordgo.Channel, bool) {
	g, err := c.state.Guild(guildID)
	if err != nil {
		return nil, false
	}
	c.state.RLock()
	defer c.state.RUnlock()
	return findIn(g, channelID)
}

func (c *StateCache) FindChannel(channelID string) (*discordgo.Channel, bool) {
	c.state.RLock()
	defer c.state.RUnlock()
	for _, g := range c.state.Guilds {
		if ch, ok := findIn(g, channelID); ok {
			return ch, true
		}
	}
	return nil, false
}

// findIn searches a guild's channels, then its threads. Caller holds the
// state read lock.
func findIn(g *discordgo.Guild, channelID string) (*discordgo.Channel, bool) {
	for _, ch := range g.Channels {
		if ch.ID == channelID {
			cp := *ch
			return &cp, true
		}
	}
	for _, ch := range g.Threads {
		if ch.ID == channelID {
			cp := *ch
			return &cp, true
		}
	}
	return nil, false
}
