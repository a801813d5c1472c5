package games

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/roles"
	"github.com/vntrieu/werewolf/internal/store"
)

// EndGame stops every timer, announces the winner with the full role list and
// drops the game from the registry.
func (c *Controller) EndGame(ctx context.Context, gameID int64) error {
	return c.m.withSession(gameID, "end game", func(s *session) error {
		c.endGameLocked(ctx, s)
		return nil
	})
}

func (c *Controller) endGameLocked(ctx context.Context, s *session) {
	st := s.state
	s.cancelTimers()
	winner := st.Winner()
	st.SetPhase(PhaseEnded)
	st.SetStatus(StatusEnded)
	c.m.persistStatus(ctx, st)
	_, _ = c.m.announce(ctx, st, summaryAnnouncement(st, winner))
	c.m.evictLocked(s)
	log.Info().Int64("game_id", st.ID).Str("winner", string(winner)).Int("day", st.Day).Msg("game ended")
}

// PlayerView is a player as seen from outside the game. Role is only filled
// in once the game has ended.
type PlayerView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Alive bool       `json:"alive"`
	Role  roles.Role `json:"role,omitempty"`
}

// View is a read-only snapshot of a game.
type View struct {
	ID        int64        `json:"id"`
	ChannelID string       `json:"channel_id"`
	OwnerID   string       `json:"owner_id"`
	Status    Status       `json:"status"`
	Phase     Phase        `json:"phase"`
	Day       int          `json:"day"`
	Countdown int          `json:"countdown_seconds,omitempty"`
	Winner    Winner       `json:"winner,omitempty"`
	Players   []PlayerView `json:"players"`
}

// Snapshot returns the view of a game. Games that are no longer registered
// are read back from the repository.
func (m *Manager) Snapshot(ctx context.Context, gameID int64) (View, error) {
	var v View
	err := m.withSession(gameID, "snapshot", func(s *session) error {
		st := s.state
		v = View{
			ID:        st.ID,
			ChannelID: st.ChannelID,
			OwnerID:   st.OwnerID,
			Status:    st.Status,
			Phase:     st.Phase,
			Day:       st.Day,
			Countdown: int(s.countdown.Seconds()),
			Players:   make([]PlayerView, 0, st.PlayerCount()),
		}
		for _, p := range st.Players() {
			v.Players = append(v.Players, PlayerView{ID: p.ID, Name: p.Name, Alive: p.Alive})
		}
		return nil
	})
	if err == nil || !IsNotFound(err) {
		return v, err
	}
	return m.storedView(ctx, gameID)
}

func (m *Manager) storedView(ctx context.Context, gameID int64) (View, error) {
	g, err := m.repo.GetGame(ctx, gameID)
	if err != nil {
		return View{}, fmt.Errorf("load game: %w", err)
	}
	if g == nil {
		return View{}, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	recs, err := m.repo.GetGamePlayers(ctx, gameID)
	if err != nil {
		return View{}, fmt.Errorf("load players: %w", err)
	}
	ended := g.Status == store.StatusEnded
	v := View{
		ID:        g.ID,
		ChannelID: g.ChannelID,
		OwnerID:   g.OwnerID,
		Status:    Status(g.Status),
		Phase:     PhaseSetup,
		Players:   make([]PlayerView, 0, len(recs)),
	}
	if ended {
		v.Phase = PhaseEnded
	}
	wolves, others := 0, 0
	for _, rec := range recs {
		pv := PlayerView{ID: rec.UserID, Name: rec.Username, Alive: rec.IsAlive}
		if ended {
			pv.Role = rec.Role
		}
		if rec.IsAlive && rec.Role != "" {
			if rec.Role.IsWerewolfTeam() {
				wolves++
			} else {
				others++
			}
		}
		v.Players = append(v.Players, pv)
	}
	if ended && wolves+others > 0 {
		switch {
		case wolves == 0:
			v.Winner = WinnerVillagers
		case wolves >= others:
			v.Winner = WinnerWerewolves
		}
	}
	return v, nil
}
