package games

import (
	"context"

	"github.com/vntrieu/werewolf/internal/roles"
	"github.com/vntrieu/werewolf/internal/store"
)

// Repository persists games, seats and role configuration. Absence is
// reported as a nil record or an empty slice, never as an error.
type Repository interface {
	CreateGame(ctx context.Context, channelID, ownerID string) (*store.Game, error)
	GetGame(ctx context.Context, id int64) (*store.Game, error)
	UpdateGameStatus(ctx context.Context, id int64, status string) (*store.Game, error)
	UpdateGameMessage(ctx context.Context, id int64, messageID string) (*store.Game, error)
	GetActiveGames(ctx context.Context) ([]store.Game, error)
	AddPlayerToGame(ctx context.Context, gameID int64, userID, username string) (*store.GamePlayer, error)
	RemovePlayerFromGame(ctx context.Context, gameID int64, userID string) (bool, error)
	GetGamePlayers(ctx context.Context, gameID int64) ([]store.GamePlayer, error)
	UpdatePlayerRole(ctx context.Context, gameID int64, userID string, role roles.Role) (*store.GamePlayer, error)
	UpdatePlayerStatus(ctx context.Context, gameID int64, userID string, alive bool) (*store.GamePlayer, error)
	SetupGameRoles(ctx context.Context, gameID int64) ([]store.GameRole, error)
	UpdateGameRole(ctx context.Context, gameID int64, role roles.Role, enabled bool) (*store.GameRole, error)
	GetGameRoles(ctx context.Context, gameID int64) ([]store.GameRole, error)
}
