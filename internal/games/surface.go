package games

import (
	"context"

	"github.com/vntrieu/werewolf/internal/roles"
)

// ButtonStyle is a presentation hint for a button.
type ButtonStyle string

const (
	StylePrimary   ButtonStyle = "primary"
	StyleSecondary ButtonStyle = "secondary"
	StyleSuccess   ButtonStyle = "success"
	StyleDanger    ButtonStyle = "danger"
)

// Button is a clickable component. Action is an encoded action.ID.
type Button struct {
	Label  string      `json:"label"`
	Emoji  string      `json:"emoji,omitempty"`
	Style  ButtonStyle `json:"style"`
	Action string      `json:"custom_id"`
}

// SelectOption is one entry of a SelectMenu.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// SelectMenu lets a player pick one option; the chosen value is the target.
type SelectMenu struct {
	Action      string         `json:"custom_id"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options"`
}

// Field is a titled block inside an announcement.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Announcement is a message posted to a game's channel.
type Announcement struct {
	Title   string   `json:"title"`
	Body    string   `json:"body,omitempty"`
	Color   string   `json:"color,omitempty"`
	Fields  []Field  `json:"fields,omitempty"`
	Image   []byte   `json:"image,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

// Prompt is a private message to one player.
type Prompt struct {
	Title   string      `json:"title"`
	Body    string      `json:"body,omitempty"`
	Color   string      `json:"color,omitempty"`
	Image   []byte      `json:"image,omitempty"`
	Buttons []Button    `json:"buttons,omitempty"`
	Select  *SelectMenu `json:"select,omitempty"`
}

// MessageRef identifies a posted announcement.
type MessageRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// PromptRef identifies a private prompt.
type PromptRef struct {
	PlayerID string `json:"player_id"`
	PromptID string `json:"prompt_id"`
}

// Surface is the chat platform the game is played through.
type Surface interface {
	Announce(ctx context.Context, channelID string, a Announcement) (MessageRef, error)
	EditAnnouncement(ctx context.Context, ref MessageRef, a Announcement) error
	DeleteAnnouncement(ctx context.Context, ref MessageRef) error
	SendPrompt(ctx context.Context, playerID string, p Prompt) (PromptRef, error)
	EditPrompt(ctx context.Context, ref PromptRef, p Prompt) error
}

// Renderer draws the cosmetic images. Failures fall back to text.
type Renderer interface {
	RenderRoleDistribution(ctx context.Context, tags []roles.Role) ([]byte, error)
	RenderInvite(ctx context.Context, url string) ([]byte, error)
}
