package bridge

import "github.com/bwmarrin/discordgo"

// Handler names sent as the webhook's "handler" query parameter.
const (
	HandlerMessage           = "message"
	HandlerReactionAdd       = "reaction_add"
	HandlerReactionRemove    = "reaction_remove"
	HandlerReady             = "ready"
	HandlerResumed           = "resumed"
	HandlerMessageUpdate     = "message_update"
	HandlerMessageDelete     = "message_delete"
	HandlerMessageDeleteBulk = "message_delete_bulk"
)

// ActionTarget identifies the message an action applies to. An empty GuildID
// means a direct-message context.
type ActionTarget struct {
	MessageID string
	ChannelID string
	GuildID   string
	// Content is the source message text when the event carried it. Only
	// used to name new threads.
	Content string
}

// TargetFromMessage builds the target for a message event.
func TargetFromMessage(m *discordgo.Message) ActionTarget {
	return ActionTarget{MessageID: m.ID, ChannelID: m.ChannelID, GuildID: m.GuildID, Content: m.Content}
}

// TargetFromReaction builds the target for a reaction event: the reacted-to
// message.
func TargetFromReaction(r *discordgo.MessageReaction) ActionTarget {
	return ActionTarget{MessageID: r.MessageID, ChannelID: r.ChannelID, GuildID: r.GuildID}
}

// referenceIn points at the source message from a post made in channelID.
func (t ActionTarget) referenceIn(channelID string) *discordgo.MessageReference {
	return &discordgo.MessageReference{MessageID: t.MessageID, ChannelID: channelID, GuildID: t.GuildID}
}

type MessagePayload struct {
	Message *discordgo.Message `json:"message"`
	Channel *discordgo.Channel `json:"channel,omitempty"`
}

type ReactionPayload struct {
	Reaction *discordgo.MessageReaction `json:"reaction"`
	Member   *discordgo.Member          `json:"member,omitempty"`
	Channel  *discordgo.Channel         `json:"channel,omitempty"`
}

type ReadyPayload struct {
	Ready *discordgo.Ready `json:"ready"`
}

type ResumedPayload struct {
	Resumed *discordgo.Resumed `json:"resumed"`
}

type MessageUpdatePayload struct {
	MessageUpdate *discordgo.Message `json:"message_update"`
}

type MessageDeleteEvent struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

type MessageDeletePayload struct {
	MessageDelete MessageDeleteEvent `json:"message_delete"`
}

type MessageDeleteBulkEvent struct {
	IDs       []string `json:"ids"`
	ChannelID string   `json:"channel_id"`
	GuildID   string   `json:"guild_id,omitempty"`
}

type MessageDeleteBulkPayload struct {
	MessageDeleteBulk MessageDeleteBulkEvent `json:"message_delete_bulk"`
}
