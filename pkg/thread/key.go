package thread

// Room identifies which surface of the client a scope belongs to.
type Room string

const (
	RoomWarRoom  Room = "war-room"
	RoomMissions Room = "missions"
)

// DefaultSession is the sentinel session id used when no session is selected.
const DefaultSession = "default"

// Scope describes the UI state a conversation thread is keyed under.
// Mode applies to the war room, Mission to the missions surface.
type Scope struct {
	Room      Room
	Mode      string
	Mission   string
	SessionID string
}

// Key resolves the scope to a deterministic thread key. It is pure and must
// be used on both read and write paths: resolving with a stale scope on one
// side silently routes messages into a different thread.
func (s Scope) Key() string {
	session := s.SessionID
	if session == "" {
		session = DefaultSession
	}

	switch s.Room {
	case RoomMissions:
		if s.Mission != "" {
			return s.Mission + "-" + session
		}
	case RoomWarRoom:
		if s.Mode != "" {
			return s.Mode + "-" + session
		}
	}
	return DefaultSession + "-" + session
}
