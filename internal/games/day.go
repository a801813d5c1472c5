package games

import (
	"context"

	"github.com/rs/zerolog/log"
)

// StartDay resolves the night: the victim dies unless they were protected.
// It then either ends the game or opens the discussion.
func (c *Controller) StartDay(ctx context.Context, gameID int64, victimID string, wasProtected bool) error {
	return c.m.withSession(gameID, "start day", func(s *session) error {
		st := s.state
		if st.Status != StatusRunning {
			return ErrInvalidStatus
		}
		if st.Phase != PhaseNight {
			return ErrInvalidPhase
		}
		c.startDayLocked(ctx, s, victimID, wasProtected)
		return nil
	})
}

func (c *Controller) startDayLocked(ctx context.Context, s *session, victimID string, wasProtected bool) {
	st := s.state
	s.round.cancelAll()
	s.advancing = false
	st.nightOpen = false
	st.SetPhase(PhaseDay)

	victim, ok := st.Player(victimID)
	switch {
	case ok && victim.Alive && !wasProtected:
		st.SetPlayerAlive(victim.ID, false)
		c.m.persistAlive(ctx, st, victim.ID, false)
		_, _ = c.m.announce(ctx, st, dawnDeathAnnouncement(st, victim))
	case ok && victim.Alive:
		_, _ = c.m.announce(ctx, st, dawnSurvivalAnnouncement(st, victim))
	case ok:
		_, _ = c.m.announce(ctx, st, dawnAlreadyDeadAnnouncement(st, victim))
	default:
		_, _ = c.m.announce(ctx, st, dawnPeacefulAnnouncement(st))
	}
	log.Info().Int64("game_id", st.ID).Int("day", st.Day).Str("victim_id", victimID).Bool("protected", wasProtected).Msg("day started")

	if st.IsGameOver() {
		c.scheduleEndGame(s)
		return
	}
	c.startDiscussion(ctx, s)
}

func (c *Controller) startDiscussion(ctx context.Context, s *session) {
	st := s.state
	tick := c.m.timings.Tick
	remaining := c.m.timings.Discussion
	ref, _ := c.m.announce(ctx, st, discussionAnnouncement(st, remaining))

	lines := suspenseLines(st)
	ticks := 0
	s.every(&s.round, tick, func() bool {
		remaining -= tick
		ticks++
		if remaining <= 0 {
			c.m.edit(c.m.ctx, st, ref, discussionClosedAnnouncement(st))
			if err := c.startVotingLocked(c.m.ctx, s); err != nil {
				log.Error().Err(err).Int64("game_id", st.ID).Msg("start voting failed")
			}
			return false
		}
		c.m.edit(c.m.ctx, st, ref, discussionAnnouncement(st, remaining))
		if ticks%FlavorEveryTicks == 0 {
			line := lines[(ticks/FlavorEveryTicks-1)%len(lines)]
			_, _ = c.m.announce(c.m.ctx, st, suspenseAnnouncement(st, line))
		}
		return true
	})
}

// EndDiscussion lets the owner cut the discussion short and open the vote.
func (c *Controller) EndDiscussion(ctx context.Context, gameID int64, actorID string) error {
	return c.m.withSession(gameID, "end discussion", func(s *session) error {
		if err := c.ownerOf(s, actorID); err != nil {
			return err
		}
		if s.state.Phase != PhaseDay || s.advancing {
			return ErrInvalidPhase
		}
		_, _ = c.m.announce(ctx, s.state, discussionEndedEarlyAnnouncement(s.state))
		return c.startVotingLocked(ctx, s)
	})
}
