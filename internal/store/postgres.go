package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Postgres is the pgx-backed repository.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a repository on pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const (
	gameColumns   = `id, channel_id, message_id, owner_id, status, started_at, ended_at`
	playerColumns = `id, game_id, user_id, username, role, is_alive`
	roleColumns   = `id, game_id, role_name, is_enabled, is_basic`
)

func textToString(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func timestamptzToTime(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func scanGame(row pgx.Row) (*Game, error) {
	var (
		g         Game
		messageID pgtype.Text
		endedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&g.ID, &g.ChannelID, &messageID, &g.OwnerID, &g.Status, &g.StartedAt, &endedAt); err != nil {
		return nil, err
	}
	g.MessageID = textToString(messageID)
	g.EndedAt = timestamptzToTime(endedAt)
	return &g, nil
}

func scanPlayer(row pgx.Row) (*GamePlayer, error) {
	var (
		p    GamePlayer
		role pgtype.Text
	)
	if err := row.Scan(&p.ID, &p.GameID, &p.UserID, &p.Username, &role, &p.IsAlive); err != nil {
		return nil, err
	}
	p.Role = roles.Role(textToString(role))
	return &p, nil
}

func scanRole(row pgx.Row) (*GameRole, error) {
	var (
		r    GameRole
		name string
	)
	if err := row.Scan(&r.ID, &r.GameID, &name, &r.Enabled, &r.Basic); err != nil {
		return nil, err
	}
	r.Role = roles.Role(name)
	return &r, nil
}

// noRows reports whether err means the row is absent; callers return (nil, nil).
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (s *Postgres) CreateGame(ctx context.Context, channelID, ownerID string) (*Game, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO games (channel_id, owner_id, status) VALUES ($1, $2, 'setup') RETURNING `+gameColumns,
		channelID, ownerID)
	g, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

func (s *Postgres) GetGame(ctx context.Context, id int64) (*Game, error) {
	g, err := scanGame(s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

func (s *Postgres) UpdateGameStatus(ctx context.Context, id int64, status string) (*Game, error) {
	g, err := scanGame(s.pool.QueryRow(ctx,
		`UPDATE games
		 SET status = $2::text,
		     ended_at = CASE WHEN $2::text = 'ended' THEN COALESCE(ended_at, now()) ELSE ended_at END
		 WHERE id = $1
		 RETURNING `+gameColumns,
		id, status))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update game status: %w", err)
	}
	return g, nil
}

func (s *Postgres) UpdateGameMessage(ctx context.Context, id int64, messageID string) (*Game, error) {
	g, err := scanGame(s.pool.QueryRow(ctx,
		`UPDATE games SET message_id = $2 WHERE id = $1 RETURNING `+gameColumns, id, messageID))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update game message: %w", err)
	}
	return g, nil
}

func (s *Postgres) GetActiveGames(ctx context.Context) ([]Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+gameColumns+` FROM games WHERE status <> 'ended' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()
	var out []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (s *Postgres) AddPlayerToGame(ctx context.Context, gameID int64, userID, username string) (*GamePlayer, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx,
		`INSERT INTO game_players (game_id, user_id, username)
		 SELECT id, $2, $3 FROM games WHERE id = $1
		 ON CONFLICT (game_id, user_id) DO UPDATE SET username = EXCLUDED.username
		 RETURNING `+playerColumns,
		gameID, userID, username))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}
	return p, nil
}

func (s *Postgres) RemovePlayerFromGame(ctx context.Context, gameID int64, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM game_players WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return false, fmt.Errorf("remove player: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) GetGamePlayers(ctx context.Context, gameID int64) ([]GamePlayer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+playerColumns+` FROM game_players WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()
	out := []GamePlayer{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) UpdatePlayerRole(ctx context.Context, gameID int64, userID string, role roles.Role) (*GamePlayer, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx,
		`UPDATE game_players SET role = $3 WHERE game_id = $1 AND user_id = $2 RETURNING `+playerColumns,
		gameID, userID, string(role)))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update player role: %w", err)
	}
	return p, nil
}

func (s *Postgres) UpdatePlayerStatus(ctx context.Context, gameID int64, userID string, alive bool) (*GamePlayer, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx,
		`UPDATE game_players SET is_alive = $3 WHERE game_id = $1 AND user_id = $2 RETURNING `+playerColumns,
		gameID, userID, alive))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update player status: %w", err)
	}
	return p, nil
}

// SetupGameRoles writes the default role configuration in one transaction,
// keeping rows that already exist.
func (s *Postgres) SetupGameRoles(ctx context.Context, gameID int64) ([]GameRole, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check game: %w", err)
	}
	if !exists {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, r := range defaultRoles(gameID) {
		batch.Queue(`INSERT INTO game_roles (game_id, role_name, is_enabled, is_basic)
		             VALUES ($1, $2, $3, $4) ON CONFLICT (game_id, role_name) DO NOTHING`,
			gameID, string(r.Role), r.Enabled, r.Basic)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert game roles: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return s.GetGameRoles(ctx, gameID)
}

func (s *Postgres) UpdateGameRole(ctx context.Context, gameID int64, role roles.Role, enabled bool) (*GameRole, error) {
	r, err := scanRole(s.pool.QueryRow(ctx,
		`UPDATE game_roles SET is_enabled = $3 WHERE game_id = $1 AND role_name = $2 RETURNING `+roleColumns,
		gameID, string(role), enabled))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update game role: %w", err)
	}
	return r, nil
}

func (s *Postgres) GetGameRoles(ctx context.Context, gameID int64) ([]GameRole, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+roleColumns+` FROM game_roles WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game roles: %w", err)
	}
	defer rows.Close()
	out := []GameRole{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game role: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
