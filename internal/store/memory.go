package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Memory is a process-local repository, used when no database is configured
// and in tests.
type Memory struct {
	mu           sync.RWMutex
	nextGameID   int64
	nextPlayerID int64
	nextRoleID   int64
	games        map[int64]*Game
	players      map[int64][]*GamePlayer
	roles        map[int64][]*GameRole
}

// NewMemory creates an empty repository.
func NewMemory() *Memory {
	return &Memory{
		games:   make(map[int64]*Game),
		players: make(map[int64][]*GamePlayer),
		roles:   make(map[int64][]*GameRole),
	}
}

func (m *Memory) CreateGame(_ context.Context, channelID, ownerID string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGameID++
	g := &Game{
		ID:        m.nextGameID,
		ChannelID: channelID,
		OwnerID:   ownerID,
		Status:    "setup",
		StartedAt: time.Now().UTC(),
	}
	m.games[g.ID] = g
	out := *g
	return &out, nil
}

func (m *Memory) GetGame(_ context.Context, id int64) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	out := *g
	return &out, nil
}

func (m *Memory) UpdateGameStatus(_ context.Context, id int64, status string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	g.Status = status
	if status == StatusEnded && g.EndedAt == nil {
		now := time.Now().UTC()
		g.EndedAt = &now
	}
	out := *g
	return &out, nil
}

func (m *Memory) UpdateGameMessage(_ context.Context, id int64, messageID string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	g.MessageID = messageID
	out := *g
	return &out, nil
}

func (m *Memory) GetActiveGames(_ context.Context) ([]Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Game
	for _, g := range m.games {
		if g.Status != StatusEnded {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AddPlayerToGame(_ context.Context, gameID int64, userID, username string) (*GamePlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, nil
	}
	for _, p := range m.players[gameID] {
		if p.UserID == userID {
			p.Username = username
			out := *p
			return &out, nil
		}
	}
	m.nextPlayerID++
	p := &GamePlayer{ID: m.nextPlayerID, GameID: gameID, UserID: userID, Username: username, IsAlive: true}
	m.players[gameID] = append(m.players[gameID], p)
	out := *p
	return &out, nil
}

func (m *Memory) RemovePlayerFromGame(_ context.Context, gameID int64, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.players[gameID]
	for i, p := range list {
		if p.UserID == userID {
			m.players[gameID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) GetGamePlayers(_ context.Context, gameID int64) ([]GamePlayer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GamePlayer, 0, len(m.players[gameID]))
	for _, p := range m.players[gameID] {
		out = append(out, *p)
	}
	return out, nil
}

func (m *Memory) UpdatePlayerRole(_ context.Context, gameID int64, userID string, role roles.Role) (*GamePlayer, error) {
	return m.updatePlayer(gameID, userID, func(p *GamePlayer) { p.Role = role })
}

func (m *Memory) UpdatePlayerStatus(_ context.Context, gameID int64, userID string, alive bool) (*GamePlayer, error) {
	return m.updatePlayer(gameID, userID, func(p *GamePlayer) { p.IsAlive = alive })
}

func (m *Memory) updatePlayer(gameID int64, userID string, apply func(*GamePlayer)) (*GamePlayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players[gameID] {
		if p.UserID == userID {
			apply(p)
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

// SetupGameRoles writes the default role configuration, keeping existing rows.
func (m *Memory) SetupGameRoles(_ context.Context, gameID int64) ([]GameRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return nil, nil
	}
	have := make(map[roles.Role]bool)
	for _, r := range m.roles[gameID] {
		have[r.Role] = true
	}
	for _, r := range defaultRoles(gameID) {
		if have[r.Role] {
			continue
		}
		m.nextRoleID++
		r.ID = m.nextRoleID
		row := r
		m.roles[gameID] = append(m.roles[gameID], &row)
	}
	return m.copyRoles(gameID), nil
}

func (m *Memory) UpdateGameRole(_ context.Context, gameID int64, role roles.Role, enabled bool) (*GameRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles[gameID] {
		if r.Role == role {
			r.Enabled = enabled
			out := *r
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetGameRoles(_ context.Context, gameID int64) ([]GameRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyRoles(gameID), nil
}

func (m *Memory) copyRoles(gameID int64) []GameRole {
	out := make([]GameRole, 0, len(m.roles[gameID]))
	for _, r := range m.roles[gameID] {
		out = append(out, *r)
	}
	return out
}
