package store

import (
	"time"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Game is a persisted game row.
type Game struct {
	ID        int64      `json:"id"`
	ChannelID string     `json:"channel_id"`
	MessageID string     `json:"message_id,omitempty"` // lobby announcement
	OwnerID   string     `json:"owner_id"`
	Status    string     `json:"status"` // setup | configuring | running | ended
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// GamePlayer is a persisted seat.
type GamePlayer struct {
	ID       int64      `json:"id"`
	GameID   int64      `json:"game_id"`
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Role     roles.Role `json:"role,omitempty"`
	IsAlive  bool       `json:"is_alive"`
}

// GameRole is one role toggle of a game's configuration.
type GameRole struct {
	ID      int64      `json:"id"`
	GameID  int64      `json:"game_id"`
	Role    roles.Role `json:"role"`
	Enabled bool       `json:"enabled"`
	Basic   bool       `json:"basic"`
}

// StatusEnded is the only status the store interprets itself.
const StatusEnded = "ended"

// defaultRoles is the role configuration of a new game: basic roles on, the rest off.
func defaultRoles(gameID int64) []GameRole {
	defs := roles.All()
	out := make([]GameRole, 0, len(defs))
	for _, d := range defs {
		out = append(out, GameRole{GameID: gameID, Role: d.Role, Enabled: d.Basic, Basic: d.Basic})
	}
	return out
}

// EnabledRoles returns the enabled tags of rs.
func EnabledRoles(rs []GameRole) []roles.Role {
	var out []roles.Role
	for _, r := range rs {
		if r.Enabled {
			out = append(out, r.Role)
		}
	}
	return out
}
