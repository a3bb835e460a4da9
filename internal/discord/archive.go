package discord

import "log/slog"

// DefaultAutoArchive is the thread auto-archive duration, in minutes, used when
// none or an unsupported one is requested.
const DefaultAutoArchive = 1440

// AutoArchiveDuration maps a requested duration in minutes to one Discord
// accepts: 60, 1440, 4320 or 10080. Anything else becomes 1440.
func AutoArchiveDuration(minutes int) int {
	switch minutes {
	case 60, 1440, 4320, 10080:
		return minutes
	}
	slog.Warn("unsupported thread auto_archive_duration, using default",
		"requested", minutes, "default", DefaultAutoArchive)
	return DefaultAutoArchive
}
