package games

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vntrieu/werewolf/internal/roles"
	"github.com/vntrieu/werewolf/internal/store"
)

// fakeSurface records everything the game sends.
type fakeSurface struct {
	mu            sync.Mutex
	next          int
	announcements []Announcement
	edits         map[string][]Announcement
	deleted       []MessageRef
	prompts       map[string][]Prompt
	unreachable   map[string]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		edits:       make(map[string][]Announcement),
		prompts:     make(map[string][]Prompt),
		unreachable: make(map[string]bool),
	}
}

func (f *fakeSurface) Announce(_ context.Context, channelID string, a Announcement) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.announcements = append(f.announcements, a)
	return MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", f.next)}, nil
}

func (f *fakeSurface) EditAnnouncement(_ context.Context, ref MessageRef, a Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[ref.MessageID] = append(f.edits[ref.MessageID], a)
	return nil
}

func (f *fakeSurface) DeleteAnnouncement(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeSurface) SendPrompt(_ context.Context, playerID string, p Prompt) (PromptRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable[playerID] {
		return PromptRef{}, errors.New("direct messages closed")
	}
	f.next++
	f.prompts[playerID] = append(f.prompts[playerID], p)
	return PromptRef{PlayerID: playerID, PromptID: fmt.Sprintf("p%d", f.next)}, nil
}

func (f *fakeSurface) EditPrompt(context.Context, PromptRef, Prompt) error { return nil }

func (f *fakeSurface) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.announcements))
	for _, a := range f.announcements {
		out = append(out, a.Title)
	}
	return out
}

// announced reports whether an announcement whose title or body contains s was posted.
func (f *fakeSurface) announced(s string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.announcements {
		if strings.Contains(a.Title, s) || strings.Contains(a.Body, s) {
			return true
		}
	}
	return false
}

func (f *fakeSurface) promptsFor(playerID string) []Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Prompt(nil), f.prompts[playerID]...)
}

func (f *fakeSurface) lastEdit(messageID string) (Announcement, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.edits[messageID]
	if len(e) == 0 {
		return Announcement{}, false
	}
	return e[len(e)-1], true
}

func (f *fakeSurface) deletedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deleted)
}

func testTimings() Timings {
	return Timings{
		LobbyCountdown:  time.Hour,
		Discussion:      time.Hour,
		Voting:          time.Hour,
		Tick:            5 * time.Millisecond,
		Settle:          time.Millisecond,
		GameOverDelay:   time.Millisecond,
		RoleRevealDelay: time.Millisecond,
		NoticeTTL:       time.Millisecond,
	}
}

type fixture struct {
	m       *Manager
	c       *Controller
	repo    *store.Memory
	surface *fakeSurface
}

func newFixture(t *testing.T, timings Timings) *fixture {
	t.Helper()
	repo := store.NewMemory()
	surface := newFakeSurface()
	m := NewManager(Options{Repository: repo, Surface: surface, Timings: timings, Seed: 42})
	t.Cleanup(m.Shutdown)
	return &fixture{m: m, c: m.Controller(), repo: repo, surface: surface}
}

type seat struct {
	id   string
	role roles.Role
}

// running seats players with fixed roles in a running game at night 1,
// before the night is opened. The first seat owns the game.
func (f *fixture) running(t *testing.T, seats ...seat) int64 {
	t.Helper()
	ctx := context.Background()
	rec, err := f.repo.CreateGame(ctx, "chan-"+seats[0].id, seats[0].id)
	require.NoError(t, err)
	_, err = f.m.CreateGame(rec.ID, rec.ChannelID, seats[0].id, seats[0].id)
	require.NoError(t, err)
	f.inspect(t, rec.ID, func(st *GameState) {
		for _, s := range seats {
			st.AddPlayer(s.id, s.id)
			st.SetPlayerRole(s.id, s.role)
			_, err := f.repo.AddPlayerToGame(ctx, rec.ID, s.id, s.id)
			require.NoError(t, err)
		}
		st.SetStatus(StatusRunning)
		st.SetPhase(PhaseNight)
		st.SetDay(1)
	})
	return rec.ID
}

// inspect runs fn with the game locked.
func (f *fixture) inspect(t *testing.T, gameID int64, fn func(st *GameState)) {
	t.Helper()
	s := f.m.session(gameID)
	require.NotNil(t, s, "game %d not registered", gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// phase returns the game's phase, or PhaseEnded once it is gone.
func (f *fixture) phase(gameID int64) Phase {
	s := f.m.session(gameID)
	if s == nil {
		return PhaseEnded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

func (f *fixture) alive(t *testing.T, gameID int64, playerID string) bool {
	t.Helper()
	var alive bool
	f.inspect(t, gameID, func(st *GameState) {
		p, ok := st.Player(playerID)
		require.True(t, ok)
		alive = p.Alive
	})
	return alive
}

func eventually(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 2*time.Millisecond, msgAndArgs...)
}
