package config

// DiscordConfig configures the gateway session.
type DiscordConfig struct {
	Token string `json:"token,omitempty"`
	// Intents overrides the gateway intent names requested on identify.
	// Empty means the default set the bridge needs.
	Intents FlexibleStringSlice `json:"intents,omitempty"`
}

// FiltersConfig holds one sender policy string per event category and context.
// Policy strings are comma-separated allow-lists of self, webhook, system, bot
// and user. "all" allows everything; an empty string allows everything except
// the bridge's own events.
type FiltersConfig struct {
	MessageDirect        string `json:"message_direct"`
	MessageGuild         string `json:"message_guild"`
	ReactionAddDirect    string `json:"reaction_add_direct"`
	ReactionAddGuild     string `json:"reaction_add_guild"`
	ReactionRemoveDirect string `json:"reaction_remove_direct"`
	ReactionRemoveGuild  string `json:"reaction_remove_guild"`
}
