package games

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/werewolf/internal/action"
	"github.com/vntrieu/werewolf/internal/roles"
)

func TestController_WerewolfKillResolvesAtDawn(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
		seat{"d", roles.Villager},
	)

	require.NoError(t, f.c.StartNight(ctx, id, "w"))
	assert.True(t, f.surface.announced("Night 1"))
	prompts := f.surface.promptsFor("w")
	require.NotEmpty(t, prompts)
	assert.Len(t, prompts[0].Buttons, 4, "one button per living villager")

	_, err := f.c.WerewolfKill(ctx, id, "w", "a")
	require.NoError(t, err)

	eventually(t, func() bool { return f.phase(id) == PhaseDay })
	assert.False(t, f.alive(t, id, "a"))
	assert.True(t, f.surface.announced("**a** dead"))

	players, err := f.repo.GetGamePlayers(ctx, id)
	require.NoError(t, err)
	for _, p := range players {
		assert.Equal(t, p.UserID != "a", p.IsAlive, p.UserID)
	}
}

func TestController_GuardianSavesVictim(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"g", roles.Guardian},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	_, err := f.c.GuardianProtect(ctx, id, "g", "a")
	require.NoError(t, err)
	assert.NotEqual(t, PhaseDay, f.phase(id), "night waits for the werewolf")

	_, err = f.c.WerewolfKill(ctx, id, "w", "a")
	require.NoError(t, err)

	eventually(t, func() bool { return f.phase(id) == PhaseDay })
	assert.True(t, f.alive(t, id, "a"))
	assert.True(t, f.surface.announced("survived"))
}

func TestController_GuardianCannotRepeat(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"g", roles.Guardian},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) {
		st.recordProtection("g", "a")
		st.SetDay(2)
	})
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	_, err := f.c.GuardianProtect(ctx, id, "g", "a")
	assert.ErrorIs(t, err, ErrRepeatProtection)
	_, err = f.c.GuardianProtect(ctx, id, "g", "g")
	assert.NoError(t, err, "self protection is allowed")
}

func TestController_DeadPlayerCannotStartNight(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
		seat{"d", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) { st.SetPlayerAlive("a", false) })

	assert.ErrorIs(t, f.c.StartNight(ctx, id, "a"), ErrNotAllowed)
	assert.ErrorIs(t, f.c.StartNight(ctx, id, "stranger"), ErrNotAllowed)
	require.NoError(t, f.c.StartNight(ctx, id, "b"))
}

func TestController_DawnAfterTargetWasShot(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"s", roles.Sniper},
		seat{"x", roles.Villager},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	_, err := f.c.WerewolfKill(ctx, id, "w", "x")
	require.NoError(t, err)
	_, err = f.c.SniperShoot(ctx, id, "s", "x")
	require.NoError(t, err)

	eventually(t, func() bool { return f.phase(id) == PhaseDay })
	assert.False(t, f.alive(t, id, "x"))
	assert.True(t, f.surface.announced("already claimed"))
	assert.False(t, f.surface.announced("passed peacefully"))
}

func TestController_NightActionRejections(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"l", roles.WerewolfLeader},
		seat{"s", roles.Seer},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)

	_, err := f.c.WerewolfKill(ctx, id, "w", "a")
	assert.ErrorIs(t, err, ErrInvalidPhase, "night not opened yet")

	require.NoError(t, f.c.StartNight(ctx, id, ""))
	assert.ErrorIs(t, f.c.StartNight(ctx, id, ""), ErrInvalidPhase)

	_, err = f.c.WerewolfKill(ctx, id, "a", "b")
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = f.c.WerewolfKill(ctx, id, "w", "l")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = f.c.SeerReveal(ctx, id, "s", "s")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = f.c.SeerReveal(ctx, id, "ghost", "a")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	vision, err := f.c.SeerReveal(ctx, id, "s", "l")
	require.NoError(t, err)
	assert.Contains(t, vision.Body, "is a werewolf")
	_, err = f.c.SeerReveal(ctx, id, "s", "a")
	assert.ErrorIs(t, err, ErrAlreadyActed)
}

func TestController_DetectiveSeesExactRole(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"d", roles.Detective},
		seat{"g", roles.Guardian},
		seat{"a", roles.Villager},
	)
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	report, err := f.c.DetectiveInvestigate(ctx, id, "d", "g")
	require.NoError(t, err)
	assert.Contains(t, report.Body, "Guardian")
}

func TestController_SniperShots(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"x", roles.Werewolf},
		seat{"s", roles.Sniper},
		seat{"g", roles.Guardian},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	_, err := f.c.GuardianProtect(ctx, id, "g", "x")
	require.NoError(t, err)
	res, err := f.c.SniperShoot(ctx, id, "s", "x")
	require.NoError(t, err)
	assert.Contains(t, res.Title, "blocked")
	assert.True(t, f.alive(t, id, "x"))
	f.inspect(t, id, func(st *GameState) {
		assert.Equal(t, 1, st.SniperShotsLeft("s"), "a blocked shot is still spent")
	})

	// Next night the last bullet lands.
	f.inspect(t, id, func(st *GameState) {
		st.AdvanceToNextNight()
	})
	require.NoError(t, f.c.StartNight(ctx, id, ""))
	_, err = f.c.SniperShoot(ctx, id, "s", "x")
	require.NoError(t, err)
	assert.False(t, f.alive(t, id, "x"))
	assert.True(t, f.surface.announced("shot in the night"))
	shot := f.surface.promptsFor("x")
	require.NotEmpty(t, shot)
	last := shot[len(shot)-1]
	assert.Contains(t, last.Title, "died in the night")
	assert.Contains(t, last.Body, roles.Get(roles.Werewolf).Name)

	f.inspect(t, id, func(st *GameState) {
		st.AdvanceToNextNight()
	})
	require.NoError(t, f.c.StartNight(ctx, id, ""))
	f.inspect(t, id, func(st *GameState) {
		p, _ := st.Player("s")
		assert.True(t, p.NightActionDone, "an empty rifle skips automatically")
	})
}

func TestController_ReviverAndWizard(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"r", roles.Reviver},
		seat{"z", roles.Wizard},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) { st.SetPlayerAlive("a", false) })
	require.NoError(t, f.c.StartNight(ctx, id, ""))

	_, err := f.c.ReviverRevive(ctx, id, "r", "b")
	assert.ErrorIs(t, err, ErrInvalidTarget, "only the dead can be revived")
	_, err = f.c.ReviverRevive(ctx, id, "r", "a")
	require.NoError(t, err)
	assert.True(t, f.alive(t, id, "a"))
	assert.NotEmpty(t, f.surface.promptsFor("a"))

	picker, err := f.c.WizardChoose(ctx, id, "z", PotionPoison)
	require.NoError(t, err)
	require.NotNil(t, picker.Select)
	sel, err := action.Decode(picker.Select.Action)
	require.NoError(t, err)
	assert.Equal(t, action.KindWizardPoisonTarget, sel.Kind)
	assert.NotContains(t, optionValues(picker.Select.Options), "z")

	_, err = f.c.WizardPoison(ctx, id, "z", "c")
	require.NoError(t, err)
	assert.False(t, f.alive(t, id, "c"))
	_, err = f.c.WizardChoose(ctx, id, "z", PotionProtect)
	assert.ErrorIs(t, err, ErrAlreadyActed)

	f.inspect(t, id, func(st *GameState) {
		protect, poison := st.WizardPowers("z")
		assert.True(t, protect)
		assert.False(t, poison)
		p, _ := st.Player("a")
		assert.True(t, p.NightActionDone)
	})
}

func TestController_VotingEliminatesWerewolf(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"a", roles.Villager},
		seat{"w", roles.Werewolf},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) { st.SetPhase(PhaseDay) })

	require.NoError(t, f.c.StartVoting(ctx, id))
	for _, p := range []string{"a", "w", "b", "c"} {
		require.NotEmpty(t, f.surface.promptsFor(p), "ballot for %s", p)
	}

	_, err := f.c.CastVote(ctx, id, "a", "a")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = f.c.CastVote(ctx, id, "a", "b")
	require.NoError(t, err)
	// Changing a vote moves it.
	ballot, err := f.c.CastVote(ctx, id, "a", "w")
	require.NoError(t, err)
	assert.Contains(t, ballot.Body, "**w**")
	f.inspect(t, id, func(st *GameState) {
		b, _ := st.Player("b")
		assert.Zero(t, b.VoteCount)
	})

	for _, voter := range []string{"b", "c"} {
		_, err := f.c.CastVote(ctx, id, voter, "w")
		require.NoError(t, err)
	}
	_, err = f.c.CastVote(ctx, id, "w", "a")
	require.NoError(t, err)

	eventually(t, func() bool { return f.m.Len() == 0 }, "game should end and be evicted")
	assert.True(t, f.surface.announced("villagers win"))
	out := f.surface.promptsFor("w")
	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Contains(t, last.Title, "eliminated")
	assert.Contains(t, last.Body, roles.Get(roles.Werewolf).Name)
	g, err := f.repo.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ended", g.Status)
	assert.NotNil(t, g.EndedAt)
}

func TestController_OwnerEndsVotingWithoutVotes(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"o", roles.Villager},
		seat{"w", roles.Werewolf},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) { st.SetPhase(PhaseDay) })

	assert.ErrorIs(t, f.c.EndDiscussion(ctx, id, "w"), ErrNotOwner)
	require.NoError(t, f.c.EndDiscussion(ctx, id, "o"))
	assert.Equal(t, PhaseVoting, f.phase(id))

	assert.ErrorIs(t, f.c.EndVoting(ctx, id, "b"), ErrNotOwner)
	require.NoError(t, f.c.EndVoting(ctx, id, "o"))

	assert.True(t, f.surface.announced("No one was eliminated"))
	f.inspect(t, id, func(st *GameState) {
		assert.Equal(t, PhaseNight, st.Phase)
		assert.Equal(t, 2, st.Day)
		assert.Len(t, st.AlivePlayers(), 4)
	})
	require.NoError(t, f.c.StartNight(ctx, id, "b"))
}

func TestController_DiscussionRunsIntoVoting(t *testing.T) {
	timings := testTimings()
	timings.Discussion = 40 * timings.Tick
	f := newFixture(t, timings)
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)

	require.NoError(t, f.c.StartDay(ctx, id, "", false))
	assert.True(t, f.surface.announced("peacefully"))
	eventually(t, func() bool { return f.phase(id) == PhaseVoting })
	assert.True(t, f.surface.announced("Meanwhile"), "suspense lines are posted during discussion")
}

func TestController_WerewolvesWinAtDawn(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"w", roles.Werewolf},
		seat{"a", roles.Villager},
		seat{"b", roles.Villager},
	)
	require.NoError(t, f.c.StartNight(ctx, id, ""))
	_, err := f.c.WerewolfKill(ctx, id, "w", "a")
	require.NoError(t, err)

	eventually(t, func() bool { return f.m.Len() == 0 })
	assert.True(t, f.surface.announced("werewolves win"))
	_, ok := f.m.ActiveGame("chan-w")
	assert.False(t, ok, "the channel is free again")
}

func TestController_EndGameStopsTimers(t *testing.T) {
	f := newFixture(t, testTimings())
	ctx := context.Background()
	id := f.running(t,
		seat{"o", roles.Villager},
		seat{"w", roles.Werewolf},
		seat{"b", roles.Villager},
		seat{"c", roles.Villager},
	)
	f.inspect(t, id, func(st *GameState) { st.SetPhase(PhaseDay) })
	require.NoError(t, f.c.StartVoting(ctx, id))
	require.NoError(t, f.c.EndGame(ctx, id))

	assert.Zero(t, f.m.Len())
	_, err := f.c.CastVote(ctx, id, "o", "w")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func optionValues(opts []SelectOption) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}
