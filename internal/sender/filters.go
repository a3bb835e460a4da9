package sender

import (
	"sync"
	"sync/atomic"

	"github.com/nextlevelbuilder/gatehook/internal/config"
)

// ContextPolicies pairs the policy for direct messages with the one for guilds.
type ContextPolicies struct {
	Direct Policy
	Guild  Policy
}

// For picks the policy matching the event context.
func (c ContextPolicies) For(guildID string) Policy {
	if guildID == "" {
		return c.Direct
	}
	return c.Guild
}

// Filters holds the immutable policies for every filtered event category.
type Filters struct {
	Message        ContextPolicies
	ReactionAdd    ContextPolicies
	ReactionRemove ContextPolicies
}

// NewFilters parses the configured policy strings.
func NewFilters(cfg config.FiltersConfig) Filters {
	return Filters{
		Message:        ContextPolicies{Direct: ParsePolicy(cfg.MessageDirect), Guild: ParsePolicy(cfg.MessageGuild)},
		ReactionAdd:    ContextPolicies{Direct: ParsePolicy(cfg.ReactionAddDirect), Guild: ParsePolicy(cfg.ReactionAddGuild)},
		ReactionRemove: ContextPolicies{Direct: ParsePolicy(cfg.ReactionRemoveDirect), Guild: ParsePolicy(cfg.ReactionRemoveGuild)},
	}
}

// Identity holds the bridge's own user id. It is set once, from the first
// Ready event, and read concurrently by every event handler.
type Identity struct {
	once sync.Once
	id   atomic.Pointer[string]
}

// Set records id if no id has been recorded yet. It reports whether this call
// did the recording.
func (i *Identity) Set(id string) bool {
	set := false
	i.once.Do(func() {
		i.id.Store(&id)
		set = true
	})
	return set
}

// ID returns the recorded id, or false before Set.
func (i *Identity) ID() (string, bool) {
	p := i.id.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
