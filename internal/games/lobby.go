package games

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vntrieu/werewolf/internal/roles"
	"github.com/vntrieu/werewolf/internal/store"
)

// OpenLobby creates a game in channelID, seats the owner and posts the lobby
// with its countdown. A non-empty password gates joining.
func (m *Manager) OpenLobby(ctx context.Context, channelID, ownerID, ownerName, password string) (int64, error) {
	if err := m.reserveChannel(channelID); err != nil {
		return 0, err
	}

	var hash []byte
	if password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err != nil {
			m.releaseChannel(channelID)
			return 0, fmt.Errorf("hash lobby password: %w", err)
		}
	}

	rec, err := m.repo.CreateGame(ctx, channelID, ownerID)
	if err != nil {
		m.releaseChannel(channelID)
		return 0, fmt.Errorf("create game: %w", err)
	}
	if _, err := m.repo.AddPlayerToGame(ctx, rec.ID, ownerID, ownerName); err != nil {
		m.abandon(ctx, channelID, rec.ID)
		return 0, fmt.Errorf("seat owner: %w", err)
	}
	if _, err := m.repo.SetupGameRoles(ctx, rec.ID); err != nil {
		m.abandon(ctx, channelID, rec.ID)
		return 0, fmt.Errorf("setup roles: %w", err)
	}
	if _, err := m.CreateGame(rec.ID, channelID, ownerID, ownerName); err != nil {
		m.abandon(ctx, channelID, rec.ID)
		return 0, err
	}

	err = m.withSession(rec.ID, "open lobby", func(s *session) error {
		s.passwordHash = hash
		if m.renderer != nil && m.publicURL != "" {
			img, err := m.renderer.RenderInvite(ctx, m.inviteURL(rec.ID))
			if err != nil {
				log.Warn().Err(err).Int64("game_id", rec.ID).Msg("invite image failed")
			}
			s.inviteImage = img
		}
		s.countdown = m.timings.LobbyCountdown
		ref, err := m.surface.Announce(ctx, channelID, lobbyAnnouncement(s))
		if err != nil {
			s.state.SetStatus(StatusEnded)
			m.persistStatus(ctx, s.state)
			m.evictLocked(s)
			return fmt.Errorf("announce lobby: %w", err)
		}
		s.lobbyRef = ref
		if _, err := m.repo.UpdateGameMessage(ctx, rec.ID, ref.MessageID); err != nil {
			log.Warn().Err(err).Int64("game_id", rec.ID).Msg("persist lobby message failed")
		}
		m.startCountdownLocked(s, m.timings.LobbyCountdown)
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("game_id", rec.ID).Str("channel_id", channelID).Bool("password", hash != nil).Msg("lobby opened")
	return rec.ID, nil
}

func (m *Manager) abandon(ctx context.Context, channelID string, gameID int64) {
	m.releaseChannel(channelID)
	if _, err := m.repo.UpdateGameStatus(ctx, gameID, string(StatusEnded)); err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("end abandoned game failed")
	}
}

func (m *Manager) inviteURL(gameID int64) string {
	return fmt.Sprintf("%s/games/%d", m.publicURL, gameID)
}

// AddPlayer seats a player in a lobby.
func (m *Manager) AddPlayer(ctx context.Context, gameID int64, userID, name, password string) error {
	return m.withSession(gameID, "add player", func(s *session) error {
		st := s.state
		if st.Status != StatusSetup {
			return ErrInvalidStatus
		}
		if _, ok := st.Player(userID); ok {
			st.AddPlayer(userID, name)
			return ErrAlreadyJoined
		}
		if len(s.passwordHash) > 0 && bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
			return ErrWrongPassword
		}
		if _, err := m.repo.AddPlayerToGame(ctx, gameID, userID, name); err != nil {
			return fmt.Errorf("persist player: %w", err)
		}
		st.AddPlayer(userID, name)
		log.Info().Int64("game_id", gameID).Str("player_id", userID).Int("players", st.PlayerCount()).Msg("player joined")
		m.renderLobby(ctx, s)
		return nil
	})
}

// RemovePlayer unseats a player from a lobby. The owner cannot leave.
func (m *Manager) RemovePlayer(ctx context.Context, gameID int64, userID string) error {
	return m.withSession(gameID, "remove player", func(s *session) error {
		st := s.state
		if st.Status != StatusSetup {
			return ErrInvalidStatus
		}
		if userID == st.OwnerID {
			return ErrOwnerCannotLeave
		}
		if _, ok := st.Player(userID); !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, userID)
		}
		if _, err := m.repo.RemovePlayerFromGame(ctx, gameID, userID); err != nil {
			return fmt.Errorf("persist leave: %w", err)
		}
		st.RemovePlayer(userID)
		log.Info().Int64("game_id", gameID).Str("player_id", userID).Int("players", st.PlayerCount()).Msg("player left")
		m.renderLobby(ctx, s)
		return nil
	})
}

func (m *Manager) renderLobby(ctx context.Context, s *session) {
	m.edit(ctx, s.state, s.lobbyRef, lobbyAnnouncement(s))
}

// StartCountdown (re)starts the lobby countdown at d.
func (m *Manager) StartCountdown(gameID int64, d time.Duration) error {
	return m.withSession(gameID, "start countdown", func(s *session) error {
		if s.state.Status != StatusSetup {
			return ErrInvalidStatus
		}
		m.startCountdownLocked(s, d)
		return nil
	})
}

func (m *Manager) startCountdownLocked(s *session, d time.Duration) {
	s.lobby.cancelAll()
	s.countdown = d
	tick := m.timings.Tick
	s.every(&s.lobby, tick, func() bool {
		s.countdown -= tick
		if s.countdown > 0 {
			m.renderLobby(m.ctx, s)
			return true
		}
		s.countdown = 0
		m.countdownExpired(m.ctx, s)
		return false
	})
}

// StopCountdown halts the lobby countdown without changing the game.
func (m *Manager) StopCountdown(gameID int64) error {
	return m.withSession(gameID, "stop countdown", func(s *session) error {
		s.lobby.cancelAll()
		return nil
	})
}

// CountdownRemaining returns what is left of the lobby countdown.
func (m *Manager) CountdownRemaining(gameID int64) (time.Duration, error) {
	var d time.Duration
	err := m.withSession(gameID, "countdown remaining", func(s *session) error {
		d = s.countdown
		return nil
	})
	return d, err
}

func (m *Manager) countdownExpired(ctx context.Context, s *session) {
	st := s.state
	if st.Status != StatusSetup {
		return
	}
	count := st.PlayerCount()
	if recs, err := m.repo.GetGamePlayers(ctx, st.ID); err != nil {
		log.Warn().Err(err).Int64("game_id", st.ID).Msg("count players failed, using in-memory seats")
	} else {
		count = len(recs)
	}
	if count < MinPlayers {
		m.cancelLobby(ctx, s, count)
		return
	}
	st.SetStatus(StatusConfiguring)
	m.persistStatus(ctx, st)
	m.renderLobby(ctx, s)
	m.showRoleConfig(ctx, s)
}

func (m *Manager) cancelLobby(ctx context.Context, s *session, players int) {
	st := s.state
	st.SetStatus(StatusEnded)
	st.SetPhase(PhaseEnded)
	m.edit(ctx, st, s.lobbyRef, lobbyCancelledAnnouncement(players))
	m.persistStatus(ctx, st)
	m.deleteLater(s.lobbyRef, m.timings.NoticeTTL)
	m.evictLocked(s)
	log.Info().Int64("game_id", st.ID).Int("players", players).Msg("lobby cancelled")
}

// BeginConfiguration ends the lobby early and opens role configuration.
func (m *Manager) BeginConfiguration(ctx context.Context, gameID int64, actorID string) error {
	return m.withSession(gameID, "begin configuration", func(s *session) error {
		st := s.state
		if actorID != st.OwnerID {
			return ErrNotOwner
		}
		if st.Status != StatusSetup {
			return ErrInvalidStatus
		}
		if st.PlayerCount() < MinPlayers {
			return ErrNotEnoughPlayers
		}
		s.lobby.cancelAll()
		s.countdown = 0
		st.SetStatus(StatusConfiguring)
		m.persistStatus(ctx, st)
		m.renderLobby(ctx, s)
		m.showRoleConfig(ctx, s)
		return nil
	})
}

func (m *Manager) showRoleConfig(ctx context.Context, s *session) {
	st := s.state
	settings, err := m.repo.GetGameRoles(ctx, st.ID)
	if err != nil {
		log.Error().Err(err).Int64("game_id", st.ID).Msg("load role settings failed")
		return
	}
	a := roleConfigAnnouncement(st, settings)
	if s.configRef.MessageID != "" {
		m.edit(ctx, st, s.configRef, a)
		return
	}
	if ref, err := m.announce(ctx, st, a); err == nil {
		s.configRef = ref
	}
}

func (m *Manager) configuringOwner(s *session, actorID string) error {
	if actorID != s.state.OwnerID {
		return ErrNotOwner
	}
	if s.state.Status != StatusConfiguring {
		return ErrInvalidStatus
	}
	return nil
}

// ToggleRole flips one optional role on or off.
func (m *Manager) ToggleRole(ctx context.Context, gameID int64, actorID string, role roles.Role) error {
	return m.withSession(gameID, "toggle role", func(s *session) error {
		if err := m.configuringOwner(s, actorID); err != nil {
			return err
		}
		if !role.Valid() {
			return ErrInvalidTarget
		}
		if role.Mandatory() {
			return ErrRoleLocked
		}
		settings, err := m.repo.GetGameRoles(ctx, gameID)
		if err != nil {
			return fmt.Errorf("load role settings: %w", err)
		}
		enabled := false
		for _, r := range settings {
			if r.Role == role {
				enabled = r.Enabled
			}
		}
		if _, err := m.repo.UpdateGameRole(ctx, gameID, role, !enabled); err != nil {
			return fmt.Errorf("toggle role: %w", err)
		}
		log.Debug().Int64("game_id", gameID).Str("role", string(role)).Bool("enabled", !enabled).Msg("role toggled")
		m.showRoleConfig(ctx, s)
		return nil
	})
}

// AutoConfigureRoles enables the recommended roles for the current table size.
func (m *Manager) AutoConfigureRoles(ctx context.Context, gameID int64, actorID string) error {
	return m.withSession(gameID, "auto configure roles", func(s *session) error {
		if err := m.configuringOwner(s, actorID); err != nil {
			return err
		}
		want := roles.Optimal(s.state.PlayerCount())
		for _, d := range roles.All() {
			if d.Role.Mandatory() {
				continue
			}
			if _, err := m.repo.UpdateGameRole(ctx, gameID, d.Role, want[d.Role]); err != nil {
				return fmt.Errorf("configure %s: %w", d.Role, err)
			}
		}
		m.showRoleConfig(ctx, s)
		return nil
	})
}

// StartGame deals roles from the configured set, shows the distribution and
// sends the role cards after a short reveal delay.
func (m *Manager) StartGame(ctx context.Context, gameID int64, actorID string) error {
	return m.withSession(gameID, "start game", func(s *session) error {
		if err := m.configuringOwner(s, actorID); err != nil {
			return err
		}
		st := s.state
		if st.PlayerCount() < MinPlayers {
			return ErrNotEnoughPlayers
		}
		settings, err := m.repo.GetGameRoles(ctx, gameID)
		if err != nil {
			return fmt.Errorf("load role settings: %w", err)
		}
		h, err := m.assignRolesLocked(ctx, s, store.EnabledRoles(settings))
		if err != nil {
			return err
		}
		st.SetStatus(StatusRunning)
		m.persistStatus(ctx, st)
		m.edit(ctx, st, s.configRef, roleConfigLockedAnnouncement(st, settings))

		a := distributionAnnouncement(st, h)
		if m.renderer != nil {
			img, err := m.renderer.RenderRoleDistribution(ctx, h.Expand())
			if err != nil {
				log.Warn().Err(err).Int64("game_id", gameID).Msg("distribution image failed")
			}
			a.Image = img
		}
		_, _ = m.announce(ctx, st, a)

		s.after(&s.lobby, m.timings.RoleRevealDelay, func() {
			m.sendRoleAssignmentsLocked(m.ctx, s)
		})
		if m.timings.AutoNightDelay > 0 {
			s.after(&s.round, m.timings.RoleRevealDelay+m.timings.AutoNightDelay, func() {
				if err := m.controller.startNightLocked(m.ctx, s); err != nil {
					log.Debug().Err(err).Int64("game_id", gameID).Msg("automatic night skipped")
				}
			})
		}
		log.Info().Int64("game_id", gameID).Int("players", st.PlayerCount()).Msg("game started")
		return nil
	})
}
