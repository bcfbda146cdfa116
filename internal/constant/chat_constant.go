package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Seeded greeting for a fresh session
	ChatSessionGreeting = "War room online. What are we working on?"
)

// War-room modes selectable in the client. Mission scopes are user-defined
// and live in the missions table instead.
const (
	ModeTactical   = "tactical"
	ModeBrainstorm = "brainstorm"
	ModeIntel      = "intel"
	ModeOps        = "ops"
)

// WarRoomModes lists the built-in modes in display order.
var WarRoomModes = []string{ModeTactical, ModeBrainstorm, ModeIntel, ModeOps}

// IsWarRoomMode reports whether name is one of the built-in modes.
func IsWarRoomMode(name string) bool {
	for _, m := range WarRoomModes {
		if m == name {
			return true
		}
	}
	return false
}
