package games

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/werewolf/internal/roles"
)

func newState(t *testing.T, seats ...seat) *GameState {
	t.Helper()
	st := NewGameState(1, "chan", seats[0].id, seats[0].id, rand.New(rand.NewPCG(1, 2)))
	for _, s := range seats {
		st.AddPlayer(s.id, s.id)
		st.SetPlayerRole(s.id, s.role)
	}
	return st
}

func TestGameState_OwnerSeatedAndKept(t *testing.T) {
	st := NewGameState(7, "chan", "owner", "Owner", nil)
	assert.Equal(t, StatusSetup, st.Status)
	assert.Equal(t, PhaseSetup, st.Phase)
	require.Equal(t, 1, st.PlayerCount())

	assert.True(t, st.AddPlayer("p2", "Two"))
	assert.False(t, st.AddPlayer("p2", "Renamed"), "second join only refreshes the name")
	p, _ := st.Player("p2")
	assert.Equal(t, "Renamed", p.Name)

	assert.False(t, st.RemovePlayer("owner"))
	assert.True(t, st.RemovePlayer("p2"))
	assert.False(t, st.RemovePlayer("p2"))
	assert.Equal(t, 1, st.PlayerCount())
}

func TestGameState_IsGameOver(t *testing.T) {
	tests := []struct {
		name   string
		seats  []seat
		dead   []string
		over   bool
		winner Winner
	}{
		{
			name:  "one wolf among three villagers",
			seats: []seat{{"w", roles.Werewolf}, {"a", roles.Villager}, {"b", roles.Seer}, {"c", roles.Villager}},
			over:  false,
		},
		{
			name:   "wolves equal villagers",
			seats:  []seat{{"w", roles.Werewolf}, {"a", roles.Villager}},
			over:   true,
			winner: WinnerWerewolves,
		},
		{
			name:   "leader counts as a wolf",
			seats:  []seat{{"w", roles.Werewolf}, {"l", roles.WerewolfLeader}, {"a", roles.Villager}, {"b", roles.Guardian}, {"c", roles.Villager}},
			dead:   []string{"c"},
			over:   true,
			winner: WinnerWerewolves,
		},
		{
			name:   "all wolves dead",
			seats:  []seat{{"w", roles.Werewolf}, {"a", roles.Villager}, {"b", roles.Villager}},
			dead:   []string{"w"},
			over:   true,
			winner: WinnerVillagers,
		},
		{
			name:  "dead villagers do not count",
			seats: []seat{{"w", roles.Werewolf}, {"a", roles.Villager}, {"b", roles.Villager}, {"c", roles.Villager}},
			dead:  []string{"a"},
			over:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t, tt.seats...)
			for _, id := range tt.dead {
				st.SetPlayerAlive(id, false)
			}
			assert.Equal(t, tt.over, st.IsGameOver())
			assert.Equal(t, tt.winner, st.Winner())
		})
	}
}

func TestGameState_NightBookkeeping(t *testing.T) {
	st := newState(t, seat{"w", roles.Werewolf}, seat{"s", roles.Seer}, seat{"v", roles.Villager}, seat{"g", roles.Guardian})

	assert.False(t, st.AreAllNightActionsDone())
	assert.ElementsMatch(t, []string{"w", "s", "g"}, playerIDs(st.PendingNightActors()))

	st.AddNightAction("w", NightAction{TargetID: "v", Kind: NightKill})
	st.SetWerewolfVictim("v")
	st.AddNightAction("s", NightAction{TargetID: "w", Kind: NightReveal})
	assert.False(t, st.AreAllNightActionsDone())

	// A dead guardian is not waited on.
	st.SetPlayerAlive("g", false)
	assert.True(t, st.AreAllNightActionsDone())
	assert.Equal(t, "v", st.CurrentNightVictim())
	assert.Len(t, st.NightActions(), 2)

	st.ResetNightActions()
	assert.Empty(t, st.NightActions())
	assert.Empty(t, st.CurrentNightVictim())
	for _, p := range st.Players() {
		assert.False(t, p.NightActionDone)
		assert.False(t, p.Protected)
	}
}

func TestGameState_AreAllNightActionsDone(t *testing.T) {
	tests := []struct {
		name  string
		seats []seat
		dead  []string
		acted []string
		done  bool
	}{
		{
			name:  "no night roles at the table",
			seats: []seat{{"a", roles.Villager}, {"b", roles.Villager}, {"c", roles.Villager}},
			done:  true,
		},
		{
			name:  "every night role is dead",
			seats: []seat{{"w", roles.Werewolf}, {"s", roles.Seer}, {"a", roles.Villager}, {"b", roles.Villager}},
			dead:  []string{"w", "s"},
			done:  true,
		},
		{
			name:  "one actor still pending",
			seats: []seat{{"w", roles.Werewolf}, {"s", roles.Seer}, {"a", roles.Villager}},
			acted: []string{"w"},
			done:  false,
		},
		{
			name:  "every living actor has acted",
			seats: []seat{{"w", roles.Werewolf}, {"s", roles.Seer}, {"a", roles.Villager}},
			acted: []string{"w", "s"},
			done:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t, tt.seats...)
			for _, id := range tt.dead {
				st.SetPlayerAlive(id, false)
			}
			for _, id := range tt.acted {
				require.True(t, st.AddNightAction(id, NightAction{Kind: NightNoTarget}))
			}
			assert.Equal(t, tt.done, st.AreAllNightActionsDone())
		})
	}
}

func TestGameState_BallotCompletion(t *testing.T) {
	type ballot struct{ voter, target string }
	tests := []struct {
		name     string
		ballots  []ballot
		allDone  bool
		mostVote string
	}{
		{
			name:     "one player abstains",
			ballots:  []ballot{{"a", "x"}, {"b", "x"}, {"x", "y"}},
			allDone:  false,
			mostVote: "x",
		},
		{
			name:     "last player votes",
			ballots:  []ballot{{"a", "x"}, {"b", "x"}, {"x", "y"}, {"y", "a"}},
			allDone:  true,
			mostVote: "x",
		},
		{
			name:    "nobody voted",
			allDone: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newState(t, seat{"a", roles.Villager}, seat{"b", roles.Villager}, seat{"x", roles.Werewolf}, seat{"y", roles.Seer})
			st.ResetVotes()
			for _, b := range tt.ballots {
				require.True(t, st.AddVote(b.voter, b.target))
			}
			assert.Equal(t, tt.allDone, st.AreAllVotesDone())
			if tt.mostVote == "" {
				assert.Nil(t, st.MostVotedPlayer())
				return
			}
			require.NotNil(t, st.MostVotedPlayer())
			assert.Equal(t, tt.mostVote, st.MostVotedPlayer().ID)
		})
	}
}

func TestGameState_VotesRoundTrip(t *testing.T) {
	st := newState(t, seat{"a", roles.Villager}, seat{"b", roles.Villager}, seat{"c", roles.Werewolf})

	require.True(t, st.AddVote("a", "c"))
	require.True(t, st.AddVote("b", "c"))
	c, _ := st.Player("c")
	assert.Equal(t, 2, c.VoteCount)

	require.True(t, st.RemoveVote("a"))
	assert.Equal(t, 1, c.VoteCount)
	assert.False(t, st.RemoveVote("a"), "nothing left to remove")
	assert.Equal(t, 1, c.VoteCount)

	require.True(t, st.AddVote("a", "b"))
	require.True(t, st.AddVote("c", "b"))
	assert.True(t, st.AreAllVotesDone())
	assert.Equal(t, map[string]string{"a": "b", "b": "c", "c": "b"}, st.Votes())
	assert.Equal(t, "b", st.MostVotedPlayer().ID)

	st.ResetVotes()
	assert.Empty(t, st.Votes())
	assert.Nil(t, st.MostVotedPlayer())
	assert.False(t, st.AreAllVotesDone())
}

func TestGameState_MostVotedTieIsRandom(t *testing.T) {
	st := newState(t, seat{"a", roles.Villager}, seat{"b", roles.Villager}, seat{"c", roles.Werewolf}, seat{"d", roles.Villager})
	st.AddVote("a", "b")
	st.AddVote("b", "a")
	st.AddVote("c", "a")
	st.AddVote("d", "b")

	seen := map[string]int{}
	for i := 0; i < 400; i++ {
		seen[st.MostVotedPlayer().ID]++
	}
	require.Len(t, seen, 2)
	assert.Greater(t, seen["a"], 100)
	assert.Greater(t, seen["b"], 100)
}

func TestGameState_AbilityLedger(t *testing.T) {
	st := newState(t, seat{"s", roles.Sniper}, seat{"r", roles.Reviver}, seat{"z", roles.Wizard}, seat{"g", roles.Guardian})

	assert.Equal(t, SniperShots, st.SniperShotsLeft("s"))
	st.useSniperShot("s")
	st.useSniperShot("s")
	assert.Zero(t, st.SniperShotsLeft("s"))

	assert.True(t, st.CanRevive("r"))
	st.useRevive("r")
	assert.False(t, st.CanRevive("r"))

	st.useWizardPoison("z")
	protect, poison := st.WizardPowers("z")
	assert.True(t, protect)
	assert.False(t, poison)

	st.SetDay(1)
	st.recordProtection("g", "s")
	st.SetDay(2)
	assert.True(t, st.ProtectedLastNight("g", "s"))
	st.SetDay(3)
	assert.False(t, st.ProtectedLastNight("g", "s"))
}

func TestGameState_AdvanceToNextNight(t *testing.T) {
	st := newState(t, seat{"w", roles.Werewolf}, seat{"a", roles.Villager}, seat{"b", roles.Villager})
	st.SetDay(1)
	st.SetPhase(PhaseVoting)
	st.AddNightAction("w", NightAction{TargetID: "a", Kind: NightKill})

	st.AdvanceToNextNight()
	assert.Equal(t, 2, st.Day)
	assert.Equal(t, PhaseNight, st.Phase)
	assert.False(t, st.AreAllNightActionsDone())
}

func playerIDs(ps []*Player) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
