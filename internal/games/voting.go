package games

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StartVoting opens the ballot: every living player receives one and the
// countdown starts. Results are resolved when it reaches zero or every
// living player has voted.
func (c *Controller) StartVoting(ctx context.Context, gameID int64) error {
	return c.m.withSession(gameID, "start voting", func(s *session) error {
		return c.startVotingLocked(ctx, s)
	})
}

func (c *Controller) startVotingLocked(ctx context.Context, s *session) error {
	st := s.state
	if st.Status != StatusRunning {
		return ErrInvalidStatus
	}
	if st.Phase != PhaseDay {
		return ErrInvalidPhase
	}
	s.round.cancelAll()
	s.advancing = false
	st.SetPhase(PhaseVoting)
	st.ResetVotes()

	tick := c.m.timings.Tick
	remaining := c.m.timings.Voting
	ref, _ := c.m.announce(ctx, st, votingAnnouncement(st, remaining))
	for _, p := range st.AlivePlayers() {
		c.m.prompt(ctx, st, p.ID, ballot(st, p))
	}
	log.Info().Int64("game_id", st.ID).Int("day", st.Day).Int("voters", len(st.AlivePlayers())).Msg("voting started")

	s.every(&s.round, tick, func() bool {
		remaining -= tick
		if remaining <= 0 {
			c.m.edit(c.m.ctx, st, ref, votingClosedAnnouncement(st))
			c.resolveVotesLocked(c.m.ctx, s)
			return false
		}
		c.m.edit(c.m.ctx, st, ref, votingAnnouncement(st, remaining))
		return true
	})
	return nil
}

// CastVote records or changes a ballot. Once every living player has voted
// the result is resolved after a short pause.
func (c *Controller) CastVote(ctx context.Context, gameID int64, voterID, targetID string) (Prompt, error) {
	var out Prompt
	err := c.m.withSession(gameID, "cast vote", func(s *session) error {
		st := s.state
		if st.Status != StatusRunning {
			return ErrInvalidStatus
		}
		if st.Phase != PhaseVoting || s.advancing {
			return ErrInvalidPhase
		}
		voter, ok := st.Player(voterID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, voterID)
		}
		if !voter.Alive {
			return ErrNotAllowed
		}
		target, err := livingTarget(st, voter, targetID, false)
		if err != nil {
			return err
		}
		st.RemoveVote(voter.ID)
		st.AddVote(voter.ID, target.ID)
		log.Debug().Int64("game_id", st.ID).Str("voter_id", voter.ID).Str("target_id", target.ID).Msg("vote cast")
		out = ballot(st, voter)

		if st.AreAllVotesDone() {
			s.advancing = true
			s.after(&s.round, c.m.timings.Settle, func() {
				c.resolveVotesLocked(c.m.ctx, s)
			})
		}
		return nil
	})
	return out, err
}

// EndVoting lets the owner close the ballot immediately.
func (c *Controller) EndVoting(ctx context.Context, gameID int64, actorID string) error {
	return c.m.withSession(gameID, "end voting", func(s *session) error {
		if err := c.ownerOf(s, actorID); err != nil {
			return err
		}
		if s.state.Phase != PhaseVoting {
			return ErrInvalidPhase
		}
		c.resolveVotesLocked(ctx, s)
		return nil
	})
}

// HandleVotingResults eliminates the most voted player, if any, then either
// ends the game or moves to the next night.
func (c *Controller) HandleVotingResults(ctx context.Context, gameID int64) error {
	return c.m.withSession(gameID, "voting results", func(s *session) error {
		if s.state.Status != StatusRunning {
			return ErrInvalidStatus
		}
		if s.state.Phase != PhaseVoting {
			return ErrInvalidPhase
		}
		c.resolveVotesLocked(ctx, s)
		return nil
	})
}

func (c *Controller) resolveVotesLocked(ctx context.Context, s *session) {
	st := s.state
	s.round.cancelAll()
	s.advancing = false

	var a Announcement
	if out := st.MostVotedPlayer(); out == nil {
		a = noEliminationAnnouncement(st)
		log.Info().Int64("game_id", st.ID).Int("day", st.Day).Msg("vote ended without elimination")
	} else {
		st.SetPlayerAlive(out.ID, false)
		c.m.persistAlive(ctx, st, out.ID, false)
		c.m.prompt(ctx, st, out.ID, eliminatedPrompt(st, out))
		a = eliminationAnnouncement(st, out)
		log.Info().Int64("game_id", st.ID).Int("day", st.Day).Str("player_id", out.ID).Int("votes", out.VoteCount).Msg("player eliminated")
	}

	if st.IsGameOver() {
		_, _ = c.m.announce(ctx, st, a)
		c.scheduleEndGame(s)
		return
	}

	st.AdvanceToNextNight()
	a.Buttons = append(a.Buttons, startNightButton(st))
	_, _ = c.m.announce(ctx, st, a)
	if c.m.timings.AutoNightDelay > 0 {
		s.after(&s.round, c.m.timings.AutoNightDelay, func() {
			if err := c.startNightLocked(c.m.ctx, s); err != nil {
				log.Debug().Err(err).Int64("game_id", st.ID).Msg("automatic night skipped")
			}
		})
	}
}
