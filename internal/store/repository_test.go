package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vntrieu/werewolf/internal/roles"
)

type repository interface {
	CreateGame(ctx context.Context, channelID, ownerID string) (*Game, error)
	GetGame(ctx context.Context, id int64) (*Game, error)
	UpdateGameStatus(ctx context.Context, id int64, status string) (*Game, error)
	UpdateGameMessage(ctx context.Context, id int64, messageID string) (*Game, error)
	GetActiveGames(ctx context.Context) ([]Game, error)
	AddPlayerToGame(ctx context.Context, gameID int64, userID, username string) (*GamePlayer, error)
	RemovePlayerFromGame(ctx context.Context, gameID int64, userID string) (bool, error)
	GetGamePlayers(ctx context.Context, gameID int64) ([]GamePlayer, error)
	UpdatePlayerRole(ctx context.Context, gameID int64, userID string, role roles.Role) (*GamePlayer, error)
	UpdatePlayerStatus(ctx context.Context, gameID int64, userID string, alive bool) (*GamePlayer, error)
	SetupGameRoles(ctx context.Context, gameID int64) ([]GameRole, error)
	UpdateGameRole(ctx context.Context, gameID int64, role roles.Role, enabled bool) (*GameRole, error)
	GetGameRoles(ctx context.Context, gameID int64) ([]GameRole, error)
}

var (
	_ repository = (*Memory)(nil)
	_ repository = (*Postgres)(nil)
)

func testRepository(t *testing.T, repo repository) {
	ctx := context.Background()

	t.Run("game lifecycle", func(t *testing.T) {
		g, err := repo.CreateGame(ctx, "chan-1", "owner")
		require.NoError(t, err)
		require.NotNil(t, g)
		assert.Equal(t, "setup", g.Status)
		assert.Nil(t, g.EndedAt)

		g, err = repo.UpdateGameMessage(ctx, g.ID, "msg-1")
		require.NoError(t, err)
		assert.Equal(t, "msg-1", g.MessageID)

		active, err := repo.GetActiveGames(ctx)
		require.NoError(t, err)
		assert.Contains(t, gameIDs(active), g.ID)

		g, err = repo.UpdateGameStatus(ctx, g.ID, "ended")
		require.NoError(t, err)
		assert.Equal(t, "ended", g.Status)
		assert.NotNil(t, g.EndedAt)

		active, err = repo.GetActiveGames(ctx)
		require.NoError(t, err)
		assert.NotContains(t, gameIDs(active), g.ID)
	})

	t.Run("absence is not an error", func(t *testing.T) {
		g, err := repo.GetGame(ctx, 987654)
		require.NoError(t, err)
		assert.Nil(t, g)

		p, err := repo.UpdatePlayerStatus(ctx, 987654, "nobody", false)
		require.NoError(t, err)
		assert.Nil(t, p)

		removed, err := repo.RemovePlayerFromGame(ctx, 987654, "nobody")
		require.NoError(t, err)
		assert.False(t, removed)

		players, err := repo.GetGamePlayers(ctx, 987654)
		require.NoError(t, err)
		assert.Empty(t, players)
	})

	t.Run("players", func(t *testing.T) {
		g, err := repo.CreateGame(ctx, "chan-2", "owner")
		require.NoError(t, err)

		_, err = repo.AddPlayerToGame(ctx, g.ID, "owner", "Owner")
		require.NoError(t, err)
		_, err = repo.AddPlayerToGame(ctx, g.ID, "p2", "Two")
		require.NoError(t, err)
		p, err := repo.AddPlayerToGame(ctx, g.ID, "p2", "Two Renamed")
		require.NoError(t, err)
		assert.Equal(t, "Two Renamed", p.Username)

		players, err := repo.GetGamePlayers(ctx, g.ID)
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, "owner", players[0].UserID)
		assert.True(t, players[1].IsAlive)

		p, err = repo.UpdatePlayerRole(ctx, g.ID, "p2", roles.Seer)
		require.NoError(t, err)
		assert.Equal(t, roles.Seer, p.Role)

		p, err = repo.UpdatePlayerStatus(ctx, g.ID, "p2", false)
		require.NoError(t, err)
		assert.False(t, p.IsAlive)

		removed, err := repo.RemovePlayerFromGame(ctx, g.ID, "p2")
		require.NoError(t, err)
		assert.True(t, removed)
		players, err = repo.GetGamePlayers(ctx, g.ID)
		require.NoError(t, err)
		assert.Len(t, players, 1)
	})

	t.Run("roles", func(t *testing.T) {
		g, err := repo.CreateGame(ctx, "chan-3", "owner")
		require.NoError(t, err)

		rs, err := repo.SetupGameRoles(ctx, g.ID)
		require.NoError(t, err)
		assert.Len(t, rs, len(roles.All()))
		assert.ElementsMatch(t, []roles.Role{roles.Villager, roles.Werewolf, roles.Seer, roles.Guardian}, EnabledRoles(rs))

		r, err := repo.UpdateGameRole(ctx, g.ID, roles.Sniper, true)
		require.NoError(t, err)
		assert.True(t, r.Enabled)

		// Running setup again keeps the toggle.
		rs, err = repo.SetupGameRoles(ctx, g.ID)
		require.NoError(t, err)
		assert.Contains(t, EnabledRoles(rs), roles.Sniper)
	})
}

func gameIDs(gs []Game) []int64 {
	out := make([]int64, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.ID)
	}
	return out
}

func TestMemory(t *testing.T) {
	testRepository(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	pool := SetupTestDB(t)
	testRepository(t, NewPostgres(pool))
}
