package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Service performs the bridge's platform side effects over a discordgo session.
type Service struct {
	session *discordgo.Session
}

// NewService wraps an opened or soon-to-be-opened session.
func NewService(session *discordgo.Session) *Service {
	return &Service{session: session}
}

// Reply sends content to channelID as a reply to ref. mention controls whether
// the referenced author is pinged; mentions inside content are never parsed.
func (s *Service) Reply(ctx context.Context, channelID string, ref *discordgo.MessageReference, content string, mention bool) error {
	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:   content,
		Reference: ref,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse:       []discordgo.AllowedMentionType{},
			RepliedUser: mention,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send discord reply: %w", err)
	}
	return nil
}

// SendMessage posts content to channelID.
func (s *Service) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

// React adds emoji, already normalized by ParseEmoji, to a message.
func (s *Service) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := s.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add discord reaction: %w", err)
	}
	return nil
}

// StartThread creates a thread attached to messageID. The returned error
// keeps the underlying *discordgo.RESTError for IsThreadAlreadyCreated.
func (s *Service) StartThread(ctx context.Context, channelID, messageID, name string, autoArchive int) (*discordgo.Channel, error) {
	ch, err := s.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: autoArchive,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("start discord thread: %w", err)
	}
	return ch, nil
}

// Message fetches a single message.
func (s *Service) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	m, err := s.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch discord message: %w", err)
	}
	return m, nil
}

// FetchChannel implements ChannelFetcher over the REST API.
func (s *Service) FetchChannel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return s.session.Channel(channelID, discordgo.WithContext(ctx))
}

// DefaultIntents is what the bridge needs: guild metadata for the channel
// cache plus messages and reactions in guilds and DMs.
const DefaultIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentsMessageContent

var intentNames = map[string]discordgo.Intent{
	"guilds":                   discordgo.IntentsGuilds,
	"guild_messages":           discordgo.IntentsGuildMessages,
	"guild_message_reactions":  discordgo.IntentsGuildMessageReactions,
	"direct_messages":          discordgo.IntentsDirectMessages,
	"direct_message_reactions": discordgo.IntentsDirectMessageReactions,
	"message_content":          discordgo.IntentsMessageContent,
	"guild_members":            discordgo.IntentsGuildMembers,
}

// ParseIntents turns configured intent names into a bitmask. An empty list
// yields DefaultIntents.
func ParseIntents(names []string) (discordgo.Intent, error) {
	if len(names) == 0 {
		return DefaultIntents, nil
	}
	var out discordgo.Intent
	for _, n := range names {
		in, ok := intentNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown discord intent %q", n)
		}
		out |= in
	}
	return out, nil
}

// InstallURL is the OAuth2 link that adds the bot to a server.
func InstallURL(applicationID string) string {
	return "https://discord.com/oauth2/authorize?client_id=" + applicationID + "&scope=bot"
}
