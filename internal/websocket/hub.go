package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active clients and routes envelopes to channels
// and to individual players.
type Hub struct {
	// Registered clients by channel_id
	channels map[string]map[*Client]bool

	// Registered clients by player_id; one player may have several tabs open
	players map[string]map[*Client]bool

	outbound   chan *outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Event handler for client messages
	eventHandler *EventHandler

	mu sync.RWMutex
}

// outbound is one envelope addressed to a channel or to a player.
// Exactly one of ChannelID or PlayerID is set.
type outbound struct {
	ChannelID     string
	PlayerID      string
	Envelope      *ServerEnvelope
	ExcludeClient *Client
}

// NewHub creates a new Hub.
func NewHub(eventHandler *EventHandler) *Hub {
	return &Hub{
		channels:     make(map[string]map[*Client]bool),
		players:      make(map[string]map[*Client]bool),
		outbound:     make(chan *outbound, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		eventHandler: eventHandler,
	}
}

// SetEventHandler sets the event handler for the hub.
func (h *Hub) SetEventHandler(handler *EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eventHandler = handler
}

func (h *Hub) handler() *EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.eventHandler
}

// Run is the hub's main loop. It returns when ctx is done; sends after
// that are dropped.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			add(h.channels, client.ChannelID, client)
			add(h.players, client.PlayerID, client)
			total := len(h.channels[client.ChannelID])
			h.mu.Unlock()
			log.Debug().Str("channel_id", client.ChannelID).Str("player_id", client.PlayerID).Int("total", total).Msg("ws client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(client)
			h.mu.Unlock()
			log.Debug().Str("channel_id", client.ChannelID).Str("player_id", client.PlayerID).Msg("ws client unregistered")

		case msg := <-h.outbound:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	targets := h.channels[msg.ChannelID]
	if msg.PlayerID != "" {
		targets = h.players[msg.PlayerID]
	}
	for client := range targets {
		if client == msg.ExcludeClient {
			continue
		}
		select {
		case client.send <- msg.Envelope:
		default:
			log.Warn().Str("player_id", client.PlayerID).Msg("ws client too slow; dropping")
			h.dropLocked(client)
		}
	}
}

func add(index map[string]map[*Client]bool, key string, c *Client) {
	if index[key] == nil {
		index[key] = make(map[*Client]bool)
	}
	index[key][c] = true
}

func remove(index map[string]map[*Client]bool, key string, c *Client) bool {
	set, ok := index[key]
	if !ok || !set[c] {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(index, key)
	}
	return true
}

func (h *Hub) dropLocked(c *Client) {
	if remove(h.channels, c.ChannelID, c) {
		close(c.send)
	}
	remove(h.players, c.PlayerID, c)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.channels {
		for c := range set {
			h.dropLocked(c)
		}
	}
}

func (h *Hub) enqueue(msg *outbound) {
	select {
	case h.outbound <- msg:
	case <-h.done:
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// BroadcastEnvelope sends an envelope to all clients in a channel.
func (h *Hub) BroadcastEnvelope(channelID string, envelope *ServerEnvelope) {
	h.enqueue(&outbound{ChannelID: channelID, Envelope: envelope})
}

// BroadcastEnvelopeExcept sends an envelope to all clients in a channel except the specified client.
func (h *Hub) BroadcastEnvelopeExcept(channelID string, envelope *ServerEnvelope, excludeClient *Client) {
	h.enqueue(&outbound{ChannelID: channelID, Envelope: envelope, ExcludeClient: excludeClient})
}

// SendToPlayer sends an envelope to every connection of playerID. It
// reports false when the player has no open connection.
func (h *Hub) SendToPlayer(playerID string, envelope *ServerEnvelope) bool {
	if !h.IsOnline(playerID) {
		return false
	}
	h.enqueue(&outbound{PlayerID: playerID, Envelope: envelope})
	return true
}

// IsOnline reports whether playerID has at least one open connection.
func (h *Hub) IsOnline(playerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.players[playerID]) > 0
}

// GetChannelClientCount returns the number of clients in a channel.
func (h *Hub) GetChannelClientCount(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}
