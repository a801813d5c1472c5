package games

import (
	"math/rand/v2"

	"github.com/vntrieu/werewolf/internal/roles"
)

// NightAction is one role action submitted during a night.
type NightAction struct {
	TargetID string          `json:"target_id,omitempty"`
	Kind     NightActionKind `json:"kind"`
}

// protection remembers a guardian's choice and the day it was made on.
type protection struct {
	target string
	day    int
}

// GameState is the in-memory model of one game. It performs no I/O and is not
// safe for concurrent use; the manager serializes access per game.
type GameState struct {
	ID        int64
	ChannelID string
	OwnerID   string
	Status    Status
	Phase     Phase
	Day       int

	players map[string]*Player
	order   []string // join order

	nightActions map[string]NightAction
	nightVictim  string
	nightOpen    bool // prompts for the current night went out
	votes        map[string]string

	sniperShots   map[string]int
	revived       map[string]bool
	wizardProtect map[string]bool
	wizardPoison  map[string]bool
	lastProtected map[string]protection

	rng *rand.Rand
}

// NewGameState creates a game in setup with the owner seated.
func NewGameState(id int64, channelID, ownerID, ownerName string, rng *rand.Rand) *GameState {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &GameState{
		ID:            id,
		ChannelID:     channelID,
		OwnerID:       ownerID,
		Status:        StatusSetup,
		Phase:         PhaseSetup,
		players:       make(map[string]*Player),
		nightActions:  make(map[string]NightAction),
		votes:         make(map[string]string),
		sniperShots:   make(map[string]int),
		revived:       make(map[string]bool),
		wizardProtect: make(map[string]bool),
		wizardPoison:  make(map[string]bool),
		lastProtected: make(map[string]protection),
		rng:           rng,
	}
	s.AddPlayer(ownerID, ownerName)
	return s
}

// AddPlayer seats a player. An existing player only has their name refreshed
// and false is returned.
func (s *GameState) AddPlayer(id, name string) bool {
	if p, ok := s.players[id]; ok {
		p.Name = name
		return false
	}
	s.players[id] = &Player{ID: id, Name: name, Alive: true}
	s.order = append(s.order, id)
	return true
}

// RemovePlayer unseats a player. The owner cannot be removed.
func (s *GameState) RemovePlayer(id string) bool {
	if id == s.OwnerID {
		return false
	}
	if _, ok := s.players[id]; !ok {
		return false
	}
	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *GameState) Player(id string) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// Players returns every player in join order.
func (s *GameState) Players() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id])
	}
	return out
}

func (s *GameState) PlayerCount() int {
	return len(s.order)
}

func (s *GameState) AlivePlayers() []*Player {
	return s.where(func(p *Player) bool { return p.Alive })
}

func (s *GameState) DeadPlayers() []*Player {
	return s.where(func(p *Player) bool { return !p.Alive })
}

func (s *GameState) PlayersByRole(r roles.Role) []*Player {
	return s.where(func(p *Player) bool { return p.Role == r })
}

// WerewolfTeammates returns the other werewolf-team members of id.
func (s *GameState) WerewolfTeammates(id string) []*Player {
	return s.where(func(p *Player) bool { return p.ID != id && p.IsWerewolfTeam() })
}

func (s *GameState) where(keep func(*Player) bool) []*Player {
	var out []*Player
	for _, id := range s.order {
		if p := s.players[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *GameState) SetPlayerRole(id string, r roles.Role) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.Role = r
	return true
}

func (s *GameState) SetPlayerAlive(id string, alive bool) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.Alive = alive
	return true
}

func (s *GameState) SetPhase(p Phase) { s.Phase = p }

func (s *GameState) SetDay(d int) { s.Day = d }

func (s *GameState) SetStatus(st Status) { s.Status = st }

// ResetNightActions clears the night bookkeeping. It runs at the start of every night.
func (s *GameState) ResetNightActions() {
	s.nightActions = make(map[string]NightAction)
	s.nightVictim = ""
	s.nightOpen = false
	for _, p := range s.players {
		p.NightActionDone = false
		p.Protected = false
	}
}

// AddNightAction records an action for completion tracking. Effects are
// applied by the caller.
func (s *GameState) AddNightAction(actorID string, a NightAction) bool {
	p, ok := s.players[actorID]
	if !ok {
		return false
	}
	s.nightActions[actorID] = a
	p.NightActionDone = true
	return true
}

// NightActions returns a copy of this night's actions keyed by actor.
func (s *GameState) NightActions() map[string]NightAction {
	out := make(map[string]NightAction, len(s.nightActions))
	for k, v := range s.nightActions {
		out[k] = v
	}
	return out
}

// SetWerewolfVictim records the night's victim; the last call wins. Empty clears it.
func (s *GameState) SetWerewolfVictim(id string) {
	s.nightVictim = id
}

// CurrentNightVictim returns the victim chosen this night, or "".
func (s *GameState) CurrentNightVictim() string {
	return s.nightVictim
}

// NightOpen reports whether the current night has been started and not yet resolved.
func (s *GameState) NightOpen() bool {
	return s.nightOpen
}

// AreAllNightActionsDone is true when every living player with a night
// action has submitted it. Villagers and the dead are not waited on.
func (s *GameState) AreAllNightActionsDone() bool {
	for _, p := range s.players {
		if p.NeedsNightAction() && !p.NightActionDone {
			return false
		}
	}
	return true
}

// PendingNightActors returns the living players the night is still waiting on.
func (s *GameState) PendingNightActors() []*Player {
	return s.where(func(p *Player) bool { return p.NeedsNightAction() && !p.NightActionDone })
}

// ResetVotes clears every ballot and tally. It runs at the start of every vote.
func (s *GameState) ResetVotes() {
	s.votes = make(map[string]string)
	for _, p := range s.players {
		p.Voted = false
		p.VotedFor = ""
		p.VoteCount = 0
	}
}

// AddVote records voterID's ballot for targetID. It does not undo a previous
// ballot; changing a vote is RemoveVote followed by AddVote.
func (s *GameState) AddVote(voterID, targetID string) bool {
	voter, ok := s.players[voterID]
	if !ok {
		return false
	}
	target, ok := s.players[targetID]
	if !ok {
		return false
	}
	voter.Voted = true
	voter.VotedFor = targetID
	target.VoteCount++
	s.votes[voterID] = targetID
	return true
}

// RemoveVote withdraws voterID's ballot.
func (s *GameState) RemoveVote(voterID string) bool {
	voter, ok := s.players[voterID]
	if !ok || !voter.Voted {
		return false
	}
	if target, ok := s.players[voter.VotedFor]; ok && target.VoteCount > 0 {
		target.VoteCount--
	}
	voter.Voted = false
	voter.VotedFor = ""
	delete(s.votes, voterID)
	return true
}

// Votes returns a copy of the ballots keyed by voter.
func (s *GameState) Votes() map[string]string {
	out := make(map[string]string, len(s.votes))
	for k, v := range s.votes {
		out[k] = v
	}
	return out
}

// AreAllVotesDone is true when every living player has voted.
func (s *GameState) AreAllVotesDone() bool {
	for _, p := range s.players {
		if p.Alive && !p.Voted {
			return false
		}
	}
	return true
}

// MostVotedPlayer returns the living player with the most votes, or nil when
// nobody received a vote. Ties are broken uniformly at random.
func (s *GameState) MostVotedPlayer() *Player {
	best := 0
	var leaders []*Player
	for _, p := range s.AlivePlayers() {
		switch {
		case p.VoteCount > best:
			best = p.VoteCount
			leaders = []*Player{p}
		case p.VoteCount == best && best > 0:
			leaders = append(leaders, p)
		}
	}
	if len(leaders) == 0 {
		return nil
	}
	return leaders[s.rng.IntN(len(leaders))]
}

func (s *GameState) aliveTeams() (wolves, others int) {
	for _, p := range s.players {
		if !p.Alive {
			continue
		}
		if p.IsWerewolfTeam() {
			wolves++
		} else {
			others++
		}
	}
	return wolves, others
}

// IsGameOver is true when no werewolf is alive or werewolves are no longer
// outnumbered.
func (s *GameState) IsGameOver() bool {
	wolves, others := s.aliveTeams()
	return wolves == 0 || wolves >= others
}

// Winner returns the winning side, or WinnerNone while the game goes on.
func (s *GameState) Winner() Winner {
	if !s.IsGameOver() {
		return WinnerNone
	}
	if wolves, _ := s.aliveTeams(); wolves == 0 {
		return WinnerVillagers
	}
	return WinnerWerewolves
}

// AdvanceToNextNight moves a resolved vote into the next night.
func (s *GameState) AdvanceToNextNight() {
	s.Day++
	s.Phase = PhaseNight
	s.ResetNightActions()
}

// SniperShotsLeft returns the bullets id has not fired yet.
func (s *GameState) SniperShotsLeft(id string) int {
	return SniperShots - s.sniperShots[id]
}

func (s *GameState) useSniperShot(id string) { s.sniperShots[id]++ }

// CanRevive reports whether id still holds a revive.
func (s *GameState) CanRevive(id string) bool { return !s.revived[id] }

func (s *GameState) useRevive(id string) { s.revived[id] = true }

// WizardPowers reports which of id's potions are left.
func (s *GameState) WizardPowers(id string) (protect, poison bool) {
	return !s.wizardProtect[id], !s.wizardPoison[id]
}

func (s *GameState) useWizardProtect(id string) { s.wizardProtect[id] = true }

func (s *GameState) useWizardPoison(id string) { s.wizardPoison[id] = true }

// ProtectedLastNight reports whether guardianID protected targetID on the previous night.
func (s *GameState) ProtectedLastNight(guardianID, targetID string) bool {
	last, ok := s.lastProtected[guardianID]
	return ok && last.target == targetID && last.day == s.Day-1
}

func (s *GameState) recordProtection(guardianID, targetID string) {
	s.lastProtected[guardianID] = protection{target: targetID, day: s.Day}
}

func (s *GameState) shuffle(n int, swap func(i, j int)) {
	// Fisher-Yates
	for i := n - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		swap(i, j)
	}
}

func (s *GameState) chance(p float64) bool {
	return s.rng.Float64() < p
}

func (s *GameState) pick(n int) int {
	return s.rng.IntN(n)
}
