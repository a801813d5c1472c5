package games

import "time"

// Phase drives which actions are legal inside a running game.
type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseNight  Phase = "night"
	PhaseDay    Phase = "day"
	PhaseVoting Phase = "voting"
	PhaseEnded  Phase = "ended"
)

// Status is the coarse lifecycle gate: lobby, role configuration, in progress, finished.
type Status string

const (
	StatusSetup       Status = "setup"
	StatusConfiguring Status = "configuring"
	StatusRunning     Status = "running"
	StatusEnded       Status = "ended"
)

// Winner of a finished game.
type Winner string

const (
	WinnerNone       Winner = ""
	WinnerVillagers  Winner = "villagers"
	WinnerWerewolves Winner = "werewolves"
)

// NightActionKind is the bookkeeping tag of a submitted night action.
type NightActionKind string

const (
	NightKill          NightActionKind = "kill"
	NightReveal        NightActionKind = "reveal"
	NightInvestigate   NightActionKind = "investigate"
	NightProtect       NightActionKind = "protect"
	NightShoot         NightActionKind = "shoot"
	NightSkipShot      NightActionKind = "skip_shot"
	NightRevive        NightActionKind = "revive"
	NightSkipRevive    NightActionKind = "skip_revive"
	NightWizardProtect NightActionKind = "wizard_protect"
	NightWizardPoison  NightActionKind = "wizard_poison"
	NightWizardSkip    NightActionKind = "skip_wizard"
	NightNoTarget      NightActionKind = "no_target"
)

const (
	// MinPlayers is the smallest table a game can start with.
	MinPlayers = 3
	// SniperShots is the number of bullets a sniper gets per game.
	SniperShots = 2
	// FlavorEveryTicks is how often discussion posts a suspense line.
	FlavorEveryTicks = 8
	// QuietCalloutChance is the probability a suspense line names a quiet player.
	QuietCalloutChance = 0.3
)

// Timings holds every delay and countdown the lobby and the phase controller use.
type Timings struct {
	LobbyCountdown  time.Duration
	Discussion      time.Duration
	Voting          time.Duration
	Tick            time.Duration
	Settle          time.Duration // pause before auto-advancing so the last UI update lands
	GameOverDelay   time.Duration
	RoleRevealDelay time.Duration
	NoticeTTL       time.Duration // lifetime of the "lobby cancelled" notice
	AutoNightDelay  time.Duration // 0 leaves the next night to a button press
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		LobbyCountdown:  30 * time.Second,
		Discussion:      60 * time.Second,
		Voting:          30 * time.Second,
		Tick:            time.Second,
		Settle:          2 * time.Second,
		GameOverDelay:   3 * time.Second,
		RoleRevealDelay: 5 * time.Second,
		NoticeTTL:       5 * time.Second,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.LobbyCountdown <= 0 {
		t.LobbyCountdown = d.LobbyCountdown
	}
	if t.Discussion <= 0 {
		t.Discussion = d.Discussion
	}
	if t.Voting <= 0 {
		t.Voting = d.Voting
	}
	if t.Tick <= 0 {
		t.Tick = d.Tick
	}
	if t.Settle < 0 {
		t.Settle = 0
	}
	if t.GameOverDelay < 0 {
		t.GameOverDelay = 0
	}
	if t.RoleRevealDelay < 0 {
		t.RoleRevealDelay = 0
	}
	if t.NoticeTTL <= 0 {
		t.NoticeTTL = d.NoticeTTL
	}
	return t
}
