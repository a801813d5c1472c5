package games

import "github.com/vntrieu/werewolf/internal/roles"

// Player is one seat in a game.
type Player struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Role            roles.Role `json:"role,omitempty"` // empty until roles are assigned
	Alive           bool       `json:"alive"`
	NightActionDone bool       `json:"night_action_done"`
	Protected       bool       `json:"protected"`
	Voted           bool       `json:"voted"`
	VotedFor        string     `json:"voted_for,omitempty"`
	VoteCount       int        `json:"vote_count"`
}

// NeedsNightAction reports whether the night waits on p.
func (p *Player) NeedsNightAction() bool {
	return p.Alive && p.Role.HasNightAction()
}

// IsWerewolfTeam reports whether p plays for the werewolves.
func (p *Player) IsWerewolfTeam() bool {
	return p.Role.IsWerewolfTeam()
}
