package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vntrieu/werewolf/internal/games"
)

// ErrPlayerOffline is returned when a prompt targets a player with no open connection.
var ErrPlayerOffline = errors.New("player has no open connection")

// Surface delivers game output through the hub: announcements go to every
// connection watching the channel, prompts to the player's own connections.
type Surface struct {
	hub *Hub
}

var _ games.Surface = (*Surface)(nil)

func NewSurface(hub *Hub) *Surface {
	return &Surface{hub: hub}
}

type announcementOut struct {
	games.MessageRef
	Announcement *games.Announcement `json:"announcement,omitempty"`
}

type promptOut struct {
	games.PromptRef
	Prompt games.Prompt `json:"prompt"`
}

func event(name string, payload interface{}) *ServerEnvelope {
	return &ServerEnvelope{Type: ServerTypeEvent, Event: name, Payload: payload}
}

func (s *Surface) Announce(_ context.Context, channelID string, a games.Announcement) (games.MessageRef, error) {
	if channelID == "" {
		return games.MessageRef{}, fmt.Errorf("announce: empty channel id")
	}
	ref := games.MessageRef{ChannelID: channelID, MessageID: uuid.NewString()}
	s.hub.BroadcastEnvelope(channelID, event(ServerEventAnnouncement, announcementOut{MessageRef: ref, Announcement: &a}))
	return ref, nil
}

func (s *Surface) EditAnnouncement(_ context.Context, ref games.MessageRef, a games.Announcement) error {
	s.hub.BroadcastEnvelope(ref.ChannelID, event(ServerEventAnnouncementEdited, announcementOut{MessageRef: ref, Announcement: &a}))
	return nil
}

func (s *Surface) DeleteAnnouncement(_ context.Context, ref games.MessageRef) error {
	s.hub.BroadcastEnvelope(ref.ChannelID, event(ServerEventAnnouncementDeleted, announcementOut{MessageRef: ref}))
	return nil
}

func (s *Surface) SendPrompt(_ context.Context, playerID string, p games.Prompt) (games.PromptRef, error) {
	ref := games.PromptRef{PlayerID: playerID, PromptID: uuid.NewString()}
	if !s.hub.SendToPlayer(playerID, event(ServerEventPrompt, promptOut{PromptRef: ref, Prompt: p})) {
		return games.PromptRef{}, fmt.Errorf("send prompt to %s: %w", playerID, ErrPlayerOffline)
	}
	return ref, nil
}

func (s *Surface) EditPrompt(_ context.Context, ref games.PromptRef, p games.Prompt) error {
	if !s.hub.SendToPlayer(ref.PlayerID, event(ServerEventPromptEdited, promptOut{PromptRef: ref, Prompt: p})) {
		return fmt.Errorf("edit prompt for %s: %w", ref.PlayerID, ErrPlayerOffline)
	}
	return nil
}
