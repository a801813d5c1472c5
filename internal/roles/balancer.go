package roles

import (
	"github.com/rs/zerolog/log"
)

// Headcount is the number of players that receive each role.
type Headcount map[Role]int

// Total returns the number of seats in h.
func (h Headcount) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// WerewolfTeam returns the number of werewolf-team seats in h.
func (h Headcount) WerewolfTeam() int {
	n := 0
	for r, c := range h {
		if r.IsWerewolfTeam() {
			n += c
		}
	}
	return n
}

// Expand flattens h into one tag per seat, in priority order.
func (h Headcount) Expand() []Role {
	out := make([]Role, 0, h.Total())
	for _, d := range All() {
		for i := 0; i < h[d.Role]; i++ {
			out = append(out, d.Role)
		}
	}
	return out
}

// plan is the balance target for a player count before enabled roles are applied.
type plan struct {
	werewolves int
	needed     []Role
}

func planFor(playerCount int) plan {
	switch {
	case playerCount <= 4:
		return plan{werewolves: 1, needed: []Role{Seer, Guardian}}
	case playerCount <= 6:
		return plan{werewolves: 2, needed: []Role{Seer, Guardian}}
	case playerCount <= 8:
		return plan{werewolves: 2, needed: []Role{Seer, Guardian, Detective, WerewolfLeader}}
	case playerCount <= 10:
		return plan{werewolves: 3, needed: []Role{Seer, Guardian, Detective, Sniper, WerewolfLeader}}
	default:
		return plan{
			werewolves: min(4, playerCount/3),
			needed:     []Role{Seer, Guardian, Detective, Sniper, Reviver, Wizard, WerewolfLeader},
		}
	}
}

// Balance maps a player count and the owner's enabled roles to a headcount.
//
// Werewolves and villagers are always available. A needed special role that is
// not enabled falls back to a villager seat and is logged. The result always
// sums to playerCount and is deterministic.
func Balance(playerCount int, enabled []Role) Headcount {
	h := Headcount{}
	if playerCount <= 0 {
		return h
	}
	on := make(map[Role]bool, len(enabled))
	for _, r := range enabled {
		on[r] = true
	}

	p := planFor(playerCount)
	wolves := p.werewolves
	for _, r := range p.needed {
		if r == WerewolfLeader {
			if on[WerewolfLeader] {
				h[WerewolfLeader] = 1
				wolves--
			}
			continue
		}
		if on[r] {
			h[r] = 1
			continue
		}
		log.Warn().Int("players", playerCount).Str("role", string(r)).Msg("balance: needed role not enabled, seating a villager instead")
	}
	if wolves > 0 {
		h[Werewolf] = wolves
	}

	// Tiny tables cannot seat every special; drop village specials from the
	// highest priority down until the table fits.
	if over := h.Total() - playerCount; over > 0 {
		defs := ByTeam(TeamVillage)
		for i := len(defs) - 1; i >= 0 && over > 0; i-- {
			r := defs[i].Role
			if h[r] > 0 {
				h[r]--
				over--
				if h[r] == 0 {
					delete(h, r)
				}
			}
		}
	}

	if rest := playerCount - h.Total(); rest > 0 {
		h[Villager] += rest
	}
	log.Debug().Int("players", playerCount).Interface("headcount", h).Msg("balance: roles computed")
	return h
}

// Optimal returns the enabled-role set recommended for a player count.
func Optimal(playerCount int) map[Role]bool {
	set := map[Role]bool{
		Villager: true,
		Werewolf: true,
		Seer:     true,
		Guardian: true,
	}
	if playerCount <= 5 {
		return set
	}
	set[Detective] = true
	if playerCount <= 8 {
		set[WerewolfLeader] = playerCount >= 7
		return set
	}
	set[WerewolfLeader] = true
	set[Sniper] = true
	set[Reviver] = playerCount >= 10
	set[Wizard] = playerCount >= 12
	return set
}
