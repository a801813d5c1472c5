package games

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Controller drives a running game through night, day and voting. Every
// public method serializes on the game it touches; scheduled transitions
// run under the same lock.
type Controller struct {
	m *Manager
}

// StartNight opens the current night: announces it and sends each living
// player the prompt for their role. actorID may be empty for automatic
// starts; otherwise it must be a living player.
func (c *Controller) StartNight(ctx context.Context, gameID int64, actorID string) error {
	return c.m.withSession(gameID, "start night", func(s *session) error {
		if actorID != "" {
			if p, ok := s.state.Player(actorID); !ok || !p.Alive {
				return ErrNotAllowed
			}
		}
		return c.startNightLocked(ctx, s)
	})
}

func (c *Controller) startNightLocked(ctx context.Context, s *session) error {
	st := s.state
	if st.Status != StatusRunning {
		return ErrInvalidStatus
	}
	if st.Phase != PhaseNight || st.nightOpen {
		return ErrInvalidPhase
	}
	s.round.cancelAll()
	s.advancing = false

	st.ResetNightActions()
	st.nightOpen = true
	_, _ = c.m.announce(ctx, st, nightAnnouncement(st))

	for _, p := range st.AlivePlayers() {
		prompt, auto := nightPrompt(st, p)
		if auto != "" {
			st.AddNightAction(p.ID, NightAction{Kind: auto})
		}
		if prompt != nil {
			c.m.prompt(ctx, st, p.ID, *prompt)
		}
	}
	log.Info().Int64("game_id", st.ID).Int("day", st.Day).Int("pending", len(st.PendingNightActors())).Msg("night started")

	c.checkNightComplete(s)
	return nil
}

// checkNightComplete schedules the move to day once every night action is in.
func (c *Controller) checkNightComplete(s *session) {
	st := s.state
	if s.advancing || !st.nightOpen || !st.AreAllNightActionsDone() {
		return
	}
	s.advancing = true
	s.after(&s.round, c.m.timings.Settle, func() {
		ctx := c.m.ctx
		if st.IsGameOver() {
			c.endGameLocked(ctx, s)
			return
		}
		victim := st.CurrentNightVictim()
		protected := false
		if p, ok := st.Player(victim); ok {
			protected = p.Protected
		}
		c.startDayLocked(ctx, s, victim, protected)
	})
}

// nightActor runs fn for a living player holding one of allowed who has not
// acted yet this night, then checks whether the night is complete.
func (c *Controller) nightActor(gameID int64, op, actorID string, allowed []roles.Role, fn func(s *session, actor *Player) (Prompt, error)) (Prompt, error) {
	var out Prompt
	err := c.m.withSession(gameID, op, func(s *session) error {
		st := s.state
		if st.Status != StatusRunning {
			return ErrInvalidStatus
		}
		if st.Phase != PhaseNight || !st.nightOpen {
			return ErrInvalidPhase
		}
		actor, ok := st.Player(actorID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, actorID)
		}
		if !actor.Alive || !slices.Contains(allowed, actor.Role) {
			return ErrNotAllowed
		}
		if actor.NightActionDone {
			return ErrAlreadyActed
		}
		p, err := fn(s, actor)
		if err != nil {
			return err
		}
		out = p
		c.checkNightComplete(s)
		return nil
	})
	return out, err
}

// livingTarget resolves a target that must be alive.
func livingTarget(st *GameState, actor *Player, targetID string, allowSelf bool) (*Player, error) {
	t, ok := st.Player(targetID)
	if !ok || !t.Alive || (!allowSelf && t.ID == actor.ID) {
		return nil, ErrInvalidTarget
	}
	return t, nil
}

// killNow applies an instant night kill, tells the victim and announces it.
func (c *Controller) killNow(ctx context.Context, st *GameState, victim *Player, a Announcement, cause string) {
	st.SetPlayerAlive(victim.ID, false)
	c.m.persistAlive(ctx, st, victim.ID, false)
	c.m.prompt(ctx, st, victim.ID, killedPrompt(victim, cause))
	_, _ = c.m.announce(ctx, st, a)
	log.Info().Int64("game_id", st.ID).Str("player_id", victim.ID).Str("cause", a.Title).Msg("player killed at night")
}

// scheduleEndGame finishes the game after the game-over pause.
func (c *Controller) scheduleEndGame(s *session) {
	s.round.cancelAll()
	s.advancing = true
	s.after(&s.round, c.m.timings.GameOverDelay, func() {
		c.endGameLocked(c.m.ctx, s)
	})
}

func (c *Controller) ownerOf(s *session, actorID string) error {
	if actorID != s.state.OwnerID {
		return ErrNotOwner
	}
	if s.state.Status != StatusRunning {
		return ErrInvalidStatus
	}
	return nil
}
