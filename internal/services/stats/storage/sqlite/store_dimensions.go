package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

func orPlaceholder(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return storage.Placeholder
	}
	return value
}

// PutPlayer upserts a player by ID. Placeholder name or position never
// overwrite known values.
func (s *Store) PutPlayer(ctx context.Context, player storage.Player) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id, err := requireID(player.ID, "player")
	if err != nil {
		return err
	}
	now := s.stamp()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO players (player_id, player_name, position, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?4)
ON CONFLICT(player_id) DO UPDATE SET
    player_name = CASE WHEN excluded.player_name = ?5 THEN players.player_name ELSE excluded.player_name END,
    position = CASE WHEN excluded.position = ?5 THEN players.position ELSE excluded.position END,
    updated_at = excluded.updated_at`,
		id,
		orPlaceholder(player.Name),
		orPlaceholder(player.Position),
		now,
		storage.Placeholder,
	)
	if err != nil {
		return fmt.Errorf("put player %s: %w", id, mapConstraintError(err))
	}
	return nil
}

// GetPlayer returns one player.
func (s *Store) GetPlayer(ctx context.Context, id string) (storage.Player, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Player{}, err
	}
	id, err := requireID(id, "player")
	if err != nil {
		return storage.Player{}, err
	}
	var player storage.Player
	var createdAt, updatedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT player_id, player_name, position, created_at, updated_at FROM players WHERE player_id = ?`,
		id,
	).Scan(&player.ID, &player.Name, &player.Position, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Player{}, storage.ErrNotFound
		}
		return storage.Player{}, fmt.Errorf("get player: %w", err)
	}
	player.CreatedAt = fromMillis(createdAt)
	player.UpdatedAt = fromMillis(updatedAt)
	return player, nil
}

// PutTeam upserts a team by ID. A placeholder name never overwrites a known one.
func (s *Store) PutTeam(ctx context.Context, team storage.Team) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id, err := requireID(team.ID, "team")
	if err != nil {
		return err
	}
	now := s.stamp()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO teams (team_id, team_name, created_at, updated_at)
VALUES (?1, ?2, ?3, ?3)
ON CONFLICT(team_id) DO UPDATE SET
    team_name = CASE WHEN excluded.team_name = ?4 THEN teams.team_name ELSE excluded.team_name END,
    updated_at = excluded.updated_at`,
		id,
		orPlaceholder(team.Name),
		now,
		storage.Placeholder,
	)
	if err != nil {
		return fmt.Errorf("put team %s: %w", id, mapConstraintError(err))
	}
	return nil
}

// GetTeam returns one team.
func (s *Store) GetTeam(ctx context.Context, id string) (storage.Team, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Team{}, err
	}
	id, err := requireID(id, "team")
	if err != nil {
		return storage.Team{}, err
	}
	var team storage.Team
	var createdAt, updatedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT team_id, team_name, created_at, updated_at FROM teams WHERE team_id = ?`,
		id,
	).Scan(&team.ID, &team.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Team{}, storage.ErrNotFound
		}
		return storage.Team{}, fmt.Errorf("get team: %w", err)
	}
	team.CreatedAt = fromMillis(createdAt)
	team.UpdatedAt = fromMillis(updatedAt)
	return team, nil
}

// PutGame upserts a game by ID. A missing date, league or patch keeps the
// stored value.
func (s *Store) PutGame(ctx context.Context, game storage.Game) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id, err := requireID(game.ID, "game")
	if err != nil {
		return err
	}
	now := s.stamp()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO games (game_id, game_date, league, patch, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?5)
ON CONFLICT(game_id) DO UPDATE SET
    game_date = COALESCE(excluded.game_date, games.game_date),
    league = CASE WHEN excluded.league = '' THEN games.league ELSE excluded.league END,
    patch = CASE WHEN excluded.patch = '' THEN games.patch ELSE excluded.patch END,
    updated_at = excluded.updated_at`,
		id,
		toNullMillis(game.Date),
		strings.TrimSpace(game.League),
		strings.TrimSpace(game.Patch),
		now,
	)
	if err != nil {
		return fmt.Errorf("put game %s: %w", id, mapConstraintError(err))
	}
	return nil
}

// GetGame returns one game.
func (s *Store) GetGame(ctx context.Context, id string) (storage.Game, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Game{}, err
	}
	id, err := requireID(id, "game")
	if err != nil {
		return storage.Game{}, err
	}
	var game storage.Game
	var date sql.NullInt64
	var createdAt, updatedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT game_id, game_date, league, patch, created_at, updated_at FROM games WHERE game_id = ?`,
		id,
	).Scan(&game.ID, &date, &game.League, &game.Patch, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Game{}, storage.ErrNotFound
		}
		return storage.Game{}, fmt.Errorf("get game: %w", err)
	}
	game.Date = fromNullMillis(date)
	game.CreatedAt = fromMillis(createdAt)
	game.UpdatedAt = fromMillis(updatedAt)
	return game, nil
}

// PutChampion upserts a champion by ID.
func (s *Store) PutChampion(ctx context.Context, champion storage.Champion) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id, err := requireID(champion.ID, "champion")
	if err != nil {
		return err
	}
	now := s.stamp()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO champions (champion_id, champion_name, created_at, updated_at)
VALUES (?1, ?2, ?3, ?3)
ON CONFLICT(champion_id) DO UPDATE SET
    champion_name = CASE WHEN excluded.champion_name = ?4 THEN champions.champion_name ELSE excluded.champion_name END,
    updated_at = excluded.updated_at`,
		id,
		orPlaceholder(champion.Name),
		now,
		storage.Placeholder,
	)
	if err != nil {
		return fmt.Errorf("put champion %s: %w", id, mapConstraintError(err))
	}
	return nil
}

// GetChampion returns one champion.
func (s *Store) GetChampion(ctx context.Context, id string) (storage.Champion, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Champion{}, err
	}
	id, err := requireID(id, "champion")
	if err != nil {
		return storage.Champion{}, err
	}
	var champion storage.Champion
	var createdAt, updatedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT champion_id, champion_name, created_at, updated_at FROM champions WHERE champion_id = ?`,
		id,
	).Scan(&champion.ID, &champion.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Champion{}, storage.ErrNotFound
		}
		return storage.Champion{}, fmt.Errorf("get champion: %w", err)
	}
	champion.CreatedAt = fromMillis(createdAt)
	champion.UpdatedAt = fromMillis(updatedAt)
	return champion, nil
}
