package games

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// timerGroup owns the timers of one concern of a game (lobby or round).
// cancelAll stops them and bumps the epoch, so a callback that already fired
// and is waiting for the game lock finds itself stale and does nothing.
type timerGroup struct {
	epoch uint64
	stops []func()
}

func (g *timerGroup) cancelAll() {
	for _, stop := range g.stops {
		stop()
	}
	g.stops = nil
	g.epoch++
}

// session is one registered game: its state, its lock and its timers.
type session struct {
	mu    sync.Mutex
	state *GameState

	lobby timerGroup // owned by the manager
	round timerGroup // owned by the phase controller

	lobbyRef     MessageRef
	configRef    MessageRef
	inviteImage  []byte
	passwordHash []byte
	countdown    time.Duration
	advancing    bool // an automatic transition is already scheduled
	closed       bool
}

// after runs fn under the session lock once d has elapsed, unless g is
// cancelled first.
func (s *session) after(g *timerGroup, d time.Duration, fn func()) {
	epoch := g.epoch
	t := time.AfterFunc(d, func() { s.fire(g, epoch, fn) })
	g.stops = append(g.stops, func() { t.Stop() })
}

// every runs fn under the session lock on each tick until fn returns false or
// g is cancelled.
func (s *session) every(g *timerGroup, interval time.Duration, fn func() bool) {
	epoch := g.epoch
	done := make(chan struct{})
	var once sync.Once
	g.stops = append(g.stops, func() { once.Do(func() { close(done) }) })

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				more := false
				if !s.fire(g, epoch, func() { more = fn() }) || !more {
					return
				}
			}
		}
	}()
}

// fire runs fn if g has not been cancelled since the timer was armed.
func (s *session) fire(g *timerGroup, epoch uint64, fn func()) (live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || g.epoch != epoch {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int64("game_id", s.state.ID).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("timer callback panicked")
			live = false
		}
	}()
	fn()
	return true
}

// cancelTimers stops every timer the game owns.
func (s *session) cancelTimers() {
	s.lobby.cancelAll()
	s.round.cancelAll()
}
