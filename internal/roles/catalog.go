package roles

import (
	"fmt"
	"sort"
)

// Role is a role tag as stored on players and in game_roles rows.
type Role string

const (
	Villager       Role = "villager"
	Werewolf       Role = "werewolf"
	WerewolfLeader Role = "werewolfLeader"
	Seer           Role = "seer"
	Detective      Role = "detective"
	Guardian       Role = "guardian"
	Sniper         Role = "sniper"
	Reviver        Role = "reviver"
	Wizard         Role = "wizard"
)

// Team is the side a role wins with.
type Team string

const (
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
)

// Definition is the static description of one role.
type Definition struct {
	Role         Role
	Name         string
	Team         Team
	Emoji        string
	Color        string
	Priority     int
	Basic        bool
	NightAction  bool
	Description  string
	Instructions string
}

var catalog = map[Role]Definition{
	Villager: {
		Role:         Villager,
		Name:         "Villager",
		Team:         TeamVillage,
		Emoji:        "🧑‍🌾",
		Color:        "#57F287",
		Priority:     0,
		Basic:        true,
		Description:  "Has no special power. Works with the other villagers to expose the werewolves and vote them out.",
		Instructions: "Sleep through the night, then argue your case during the day.",
	},
	Werewolf: {
		Role:         Werewolf,
		Name:         "Werewolf",
		Team:         TeamWerewolf,
		Emoji:        "🐺",
		Color:        "#ED4245",
		Priority:     10,
		Basic:        true,
		NightAction:  true,
		Description:  "Hunts with the pack. Each night the werewolves choose one player to kill, then hide among the villagers by day.",
		Instructions: "Each night pick a living non-werewolf to attack.",
	},
	WerewolfLeader: {
		Role:         WerewolfLeader,
		Name:         "Werewolf Leader",
		Team:         TeamWerewolf,
		Emoji:        "👑",
		Color:        "#8B0000",
		Priority:     11,
		NightAction:  true,
		Description:  "Leads the pack. Hunts with the werewolves and counts as one of them.",
		Instructions: "Each night pick a living non-werewolf to attack.",
	},
	Seer: {
		Role:         Seer,
		Name:         "Seer",
		Team:         TeamVillage,
		Emoji:        "👁️",
		Color:        "#5865F2",
		Priority:     20,
		Basic:        true,
		NightAction:  true,
		Description:  "Each night learns whether one player is a werewolf or not.",
		Instructions: "Each night pick a living player to inspect.",
	},
	Detective: {
		Role:         Detective,
		Name:         "Detective",
		Team:         TeamVillage,
		Emoji:        "🔍",
		Color:        "#FEE75C",
		Priority:     25,
		NightAction:  true,
		Description:  "Each night learns the exact role of one player.",
		Instructions: "Each night pick a living player to investigate.",
	},
	Guardian: {
		Role:         Guardian,
		Name:         "Guardian",
		Team:         TeamVillage,
		Emoji:        "🛡️",
		Color:        "#57F287",
		Priority:     30,
		Basic:        true,
		NightAction:  true,
		Description:  "Each night protects one player from being killed. Cannot protect the same player two nights in a row.",
		Instructions: "Each night pick a living player, yourself included, to protect.",
	},
	Sniper: {
		Role:         Sniper,
		Name:         "Sniper",
		Team:         TeamVillage,
		Emoji:        "🎯",
		Color:        "#FF7B1C",
		Priority:     35,
		NightAction:  true,
		Description:  "Carries two bullets for the whole game. A shot kills instantly unless the target is protected.",
		Instructions: "Each night shoot a living player or hold your fire.",
	},
	Reviver: {
		Role:         Reviver,
		Name:         "Reviver",
		Team:         TeamVillage,
		Emoji:        "💓",
		Color:        "#57F287",
		Priority:     40,
		NightAction:  true,
		Description:  "Can bring one dead player back to life, once per game.",
		Instructions: "Each night revive a dead player or wait.",
	},
	Wizard: {
		Role:         Wizard,
		Name:         "Wizard",
		Team:         TeamVillage,
		Emoji:        "🧙",
		Color:        "#9B59B6",
		Priority:     45,
		NightAction:  true,
		Description:  "Holds one protection elixir and one poison. Each can be used once per game.",
		Instructions: "Each night protect a player, poison a player, or do nothing.",
	},
}

// Lookup returns the definition for r.
func Lookup(r Role) (Definition, bool) {
	d, ok := catalog[r]
	return d, ok
}

// Get returns the definition for r, or a zero Definition for unknown tags.
func Get(r Role) Definition {
	return catalog[r]
}

// Parse validates a role tag.
func Parse(s string) (Role, error) {
	r := Role(s)
	if _, ok := catalog[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// All returns every definition ordered by priority.
func All() []Definition {
	defs := make([]Definition, 0, len(catalog))
	for _, d := range catalog {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Priority < defs[j].Priority })
	return defs
}

// Basic returns the roles enabled by default in a new game.
func Basic() []Definition {
	return filter(func(d Definition) bool { return d.Basic })
}

// Additional returns the roles a game owner has to opt into.
func Additional() []Definition {
	return filter(func(d Definition) bool { return !d.Basic })
}

// ByTeam returns the roles playing for t.
func ByTeam(t Team) []Definition {
	return filter(func(d Definition) bool { return d.Team == t })
}

func filter(keep func(Definition) bool) []Definition {
	var out []Definition
	for _, d := range All() {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r Role) Valid() bool {
	_, ok := catalog[r]
	return ok
}

// IsWerewolfTeam reports whether r plays for the werewolves.
func (r Role) IsWerewolfTeam() bool {
	return catalog[r].Team == TeamWerewolf
}

// HasNightAction reports whether r must act before a night can end.
func (r Role) HasNightAction() bool {
	return catalog[r].NightAction
}

// Mandatory roles are always enabled and cannot be toggled off.
func (r Role) Mandatory() bool {
	return r == Villager || r == Werewolf
}

func (r Role) String() string {
	return string(r)
}
