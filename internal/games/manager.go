package games

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Options configures a Manager.
type Options struct {
	Repository Repository
	Surface    Surface
	Renderer   Renderer // optional; images are skipped without one
	Timings    Timings
	PublicURL  string // when set, lobbies carry an invite QR code
	Seed       uint64 // 0 seeds from the runtime
}

// Manager is the registry of active games. It owns the lobby countdown and
// role assignment; the in-round flow belongs to its Controller.
type Manager struct {
	repo      Repository
	surface   Surface
	renderer  Renderer
	timings   Timings
	publicURL string

	// ctx is used by timer callbacks, which outlive the request that armed them.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[int64]*session
	channels map[string]int64 // channel id -> active game id

	rngMu sync.Mutex
	rng   *rand.Rand

	controller *Controller
}

// pendingGame marks a channel reserved by a lobby that is still being created.
const pendingGame int64 = -1

// NewManager builds an empty registry.
func NewManager(opts Options) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	seed1, seed2 := opts.Seed, opts.Seed
	if opts.Seed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}
	m := &Manager{
		repo:      opts.Repository,
		surface:   opts.Surface,
		renderer:  opts.Renderer,
		timings:   opts.Timings.withDefaults(),
		publicURL: opts.PublicURL,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[int64]*session),
		channels:  make(map[string]int64),
		rng:       rand.New(rand.NewPCG(seed1, seed2)),
	}
	m.controller = &Controller{m: m}
	return m
}

// Controller returns the phase controller driving this manager's games.
func (m *Manager) Controller() *Controller {
	return m.controller
}

// Timings returns the effective timings.
func (m *Manager) Timings() Timings {
	return m.timings
}

func (m *Manager) newRand() *rand.Rand {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return rand.New(rand.NewPCG(m.rng.Uint64(), m.rng.Uint64()))
}

// CreateGame registers a new in-memory game with its owner seated.
func (m *Manager) CreateGame(gameID int64, channelID, ownerID, ownerName string) (*GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[gameID]; ok {
		return nil, fmt.Errorf("game %d already registered", gameID)
	}
	st := NewGameState(gameID, channelID, ownerID, ownerName, m.newRand())
	m.sessions[gameID] = &session{state: st}
	m.channels[channelID] = gameID
	log.Info().Int64("game_id", gameID).Str("channel_id", channelID).Str("owner_id", ownerID).Msg("game created")
	return st, nil
}

func (m *Manager) session(gameID int64) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[gameID]
}

// withSession runs fn with the game's lock held. Panics are recovered and
// reported as ErrInternal so one game cannot take the process down.
func (m *Manager) withSession(gameID int64, op string, fn func(s *session) error) (err error) {
	s := m.session(gameID)
	if s == nil {
		return fmt.Errorf("%s: %w: %d", op, ErrGameNotFound, gameID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%s: %w: %d", op, ErrGameNotFound, gameID)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int64("game_id", gameID).Str("op", op).Str("panic", fmt.Sprint(r)).Bytes("stack", debug.Stack()).Msg("game operation panicked")
			err = fmt.Errorf("%s: %w: %v", op, ErrInternal, r)
		}
	}()
	if err = fn(s); err != nil {
		if _, ok := IsInvalidState(err); ok {
			log.Debug().Int64("game_id", gameID).Str("op", op).Err(err).Msg("action rejected")
		} else {
			log.Error().Int64("game_id", gameID).Str("op", op).Err(err).Msg("game operation failed")
		}
	}
	return err
}

// evictLocked removes a game from the registry. The session lock must be held.
func (m *Manager) evictLocked(s *session) {
	s.cancelTimers()
	s.closed = true
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.state.ID)
	if m.channels[s.state.ChannelID] == s.state.ID {
		delete(m.channels, s.state.ChannelID)
	}
	log.Info().Int64("game_id", s.state.ID).Msg("game evicted")
}

// ActiveGame returns the game running in a channel.
func (m *Manager) ActiveGame(channelID string) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.channels[channelID]
	if !ok || id == pendingGame {
		return 0, false
	}
	return id, true
}

// Len returns the number of registered games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) reserveChannel(channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.channels[channelID]; busy {
		return ErrChannelBusy
	}
	m.channels[channelID] = pendingGame
	return nil
}

func (m *Manager) releaseChannel(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channels[channelID] == pendingGame {
		delete(m.channels, channelID)
	}
}

// AssignRoles deals roles to the players the repository knows about and moves
// the game to night 1 without telling anyone.
func (m *Manager) AssignRoles(ctx context.Context, gameID int64, enabled []roles.Role) (roles.Headcount, error) {
	var h roles.Headcount
	err := m.withSession(gameID, "assign roles", func(s *session) error {
		var err error
		h, err = m.assignRolesLocked(ctx, s, enabled)
		return err
	})
	return h, err
}

func (m *Manager) assignRolesLocked(ctx context.Context, s *session, enabled []roles.Role) (roles.Headcount, error) {
	st := s.state
	recs, err := m.repo.GetGamePlayers(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if len(recs) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	// The repository is authoritative; bring the in-memory seats in line.
	known := make(map[string]bool, len(recs))
	for _, rec := range recs {
		known[rec.UserID] = true
		st.AddPlayer(rec.UserID, rec.Username)
	}
	for _, p := range st.Players() {
		if !known[p.ID] {
			st.RemovePlayer(p.ID)
		}
	}

	h := roles.Balance(len(recs), enabled)
	tags := h.Expand()
	st.shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })

	for i, rec := range recs {
		st.SetPlayerRole(rec.UserID, tags[i])
		if _, err := m.repo.UpdatePlayerRole(ctx, st.ID, rec.UserID, tags[i]); err != nil {
			log.Error().Err(err).Int64("game_id", st.ID).Str("player_id", rec.UserID).Msg("persist role failed")
		}
	}
	st.SetPhase(PhaseNight)
	st.SetDay(1)
	log.Info().Int64("game_id", st.ID).Int("players", len(recs)).Interface("headcount", h).Msg("roles assigned")
	return h, nil
}

// SendRoleAssignments privately sends every player their role card. Delivery
// failures are logged and skipped; the number of delivered cards is returned.
func (m *Manager) SendRoleAssignments(ctx context.Context, gameID int64) (int, error) {
	var sent int
	err := m.withSession(gameID, "send role assignments", func(s *session) error {
		sent = m.sendRoleAssignmentsLocked(ctx, s)
		return nil
	})
	return sent, err
}

func (m *Manager) sendRoleAssignmentsLocked(ctx context.Context, s *session) int {
	st := s.state
	sent := 0
	for _, p := range st.Players() {
		if p.Role == "" {
			continue
		}
		if _, err := m.surface.SendPrompt(ctx, p.ID, roleCard(st, p)); err != nil {
			log.Warn().Err(err).Int64("game_id", st.ID).Str("player_id", p.ID).Msg("role card not delivered")
			continue
		}
		sent++
	}
	log.Info().Int64("game_id", st.ID).Int("sent", sent).Int("players", st.PlayerCount()).Msg("role cards sent")
	return sent
}

// RecoverStale ends every persisted game that is not registered in memory.
// Games do not survive a restart.
func (m *Manager) RecoverStale(ctx context.Context) (int, error) {
	games, err := m.repo.GetActiveGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active games: %w", err)
	}
	n := 0
	for _, g := range games {
		if m.session(g.ID) != nil {
			continue
		}
		if _, err := m.repo.UpdateGameStatus(ctx, g.ID, string(StatusEnded)); err != nil {
			log.Error().Err(err).Int64("game_id", g.ID).Msg("end stale game failed")
			continue
		}
		n++
	}
	if n > 0 {
		log.Info().Int("games", n).Msg("stale games ended")
	}
	return n, nil
}

// Shutdown cancels every timer and drops all games.
func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[int64]*session)
	m.channels = make(map[string]int64)
	m.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		s.cancelTimers()
		s.closed = true
		s.mu.Unlock()
	}
	log.Info().Int("games", len(sessions)).Msg("game manager stopped")
}

func (m *Manager) persistStatus(ctx context.Context, st *GameState) {
	if _, err := m.repo.UpdateGameStatus(ctx, st.ID, string(st.Status)); err != nil {
		log.Error().Err(err).Int64("game_id", st.ID).Str("status", string(st.Status)).Msg("persist status failed")
	}
}

func (m *Manager) persistAlive(ctx context.Context, st *GameState, playerID string, alive bool) {
	if _, err := m.repo.UpdatePlayerStatus(ctx, st.ID, playerID, alive); err != nil {
		log.Error().Err(err).Int64("game_id", st.ID).Str("player_id", playerID).Bool("alive", alive).Msg("persist player status failed")
	}
}

func (m *Manager) announce(ctx context.Context, st *GameState, a Announcement) (MessageRef, error) {
	ref, err := m.surface.Announce(ctx, st.ChannelID, a)
	if err != nil {
		log.Warn().Err(err).Int64("game_id", st.ID).Str("title", a.Title).Msg("announcement not delivered")
	}
	return ref, err
}

func (m *Manager) edit(ctx context.Context, st *GameState, ref MessageRef, a Announcement) {
	if ref.MessageID == "" {
		return
	}
	if err := m.surface.EditAnnouncement(ctx, ref, a); err != nil {
		log.Warn().Err(err).Int64("game_id", st.ID).Str("message_id", ref.MessageID).Msg("announcement edit failed")
	}
}

func (m *Manager) prompt(ctx context.Context, st *GameState, playerID string, p Prompt) {
	if _, err := m.surface.SendPrompt(ctx, playerID, p); err != nil {
		log.Warn().Err(err).Int64("game_id", st.ID).Str("player_id", playerID).Msg("prompt not delivered")
	}
}

func (m *Manager) deleteLater(ref MessageRef, after time.Duration) {
	if ref.MessageID == "" {
		return
	}
	time.AfterFunc(after, func() {
		if m.ctx.Err() != nil {
			return
		}
		if err := m.surface.DeleteAnnouncement(m.ctx, ref); err != nil {
			log.Warn().Err(err).Str("message_id", ref.MessageID).Msg("delete notice failed")
		}
	})
}
