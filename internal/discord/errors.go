package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// codeThreadAlreadyCreated is Discord's JSON error code for starting a thread
// on a message that already has one.
const codeThreadAlreadyCreated = 160004

// IsThreadAlreadyCreated reports whether err is Discord rejecting a thread
// start because the message already has a thread.
func IsThreadAlreadyCreated(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == codeThreadAlreadyCreated
}
