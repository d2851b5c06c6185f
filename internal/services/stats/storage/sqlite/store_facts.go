package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/services/stats/filter"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

const (
	defaultPlayerStatPageSize = 50
	maxPlayerStatPageSize     = 200
)

// PutPlayerStat upserts one player line keyed by game and player. Team totals
// follow through the player_stats triggers.
func (s *Store) PutPlayerStat(ctx context.Context, stat storage.PlayerStat) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	gameID, err := requireID(stat.GameID, "game")
	if err != nil {
		return err
	}
	playerID, err := requireID(stat.PlayerID, "player")
	if err != nil {
		return err
	}
	teamID, err := requireID(stat.TeamID, "team")
	if err != nil {
		return err
	}
	championID, err := requireID(stat.ChampionID, "champion")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO player_stats (game_id, player_id, team_id, position, champion_id, kills, deaths, assists, gold_earned, cs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(game_id, player_id) DO UPDATE SET
    team_id = excluded.team_id,
    position = excluded.position,
    champion_id = excluded.champion_id,
    kills = excluded.kills,
    deaths = excluded.deaths,
    assists = excluded.assists,
    gold_earned = excluded.gold_earned,
    cs = excluded.cs`,
		gameID,
		playerID,
		teamID,
		orPlaceholder(stat.Position),
		championID,
		stat.Kills,
		stat.Deaths,
		stat.Assists,
		stat.GoldEarned,
		stat.CS,
	)
	if err != nil {
		return fmt.Errorf("put player stat %s/%s: %w", gameID, playerID, mapConstraintError(err))
	}
	return nil
}

// PutTeamStat upserts team totals read from a game summary. When player lines
// exist for the pair, the totals they derive are kept.
func (s *Store) PutTeamStat(ctx context.Context, stat storage.TeamStat) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	gameID, err := requireID(stat.GameID, "game")
	if err != nil {
		return err
	}
	teamID, err := requireID(stat.TeamID, "team")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO team_stats (game_id, team_id, total_kills, total_deaths, total_assists)
VALUES (?1, ?2, ?3, ?4, ?5)
ON CONFLICT(game_id, team_id) DO UPDATE SET
    total_kills = CASE WHEN EXISTS (SELECT 1 FROM player_stats WHERE game_id = ?1 AND team_id = ?2)
        THEN team_stats.total_kills ELSE excluded.total_kills END,
    total_deaths = CASE WHEN EXISTS (SELECT 1 FROM player_stats WHERE game_id = ?1 AND team_id = ?2)
        THEN team_stats.total_deaths ELSE excluded.total_deaths END,
    total_assists = CASE WHEN EXISTS (SELECT 1 FROM player_stats WHERE game_id = ?1 AND team_id = ?2)
        THEN team_stats.total_assists ELSE excluded.total_assists END`,
		gameID,
		teamID,
		stat.TotalKills,
		stat.TotalDeaths,
		stat.TotalAssists,
	)
	if err != nil {
		return fmt.Errorf("put team stat %s/%s: %w", gameID, teamID, mapConstraintError(err))
	}
	return nil
}

// GetTeamStat returns the totals of one team in one game.
func (s *Store) GetTeamStat(ctx context.Context, gameID, teamID string) (storage.TeamStat, error) {
	if err := s.ready(ctx); err != nil {
		return storage.TeamStat{}, err
	}
	var stat storage.TeamStat
	err := s.db.QueryRowContext(ctx, `
SELECT game_id, team_id, total_kills, total_deaths, total_assists
  FROM team_stats
 WHERE game_id = ? AND team_id = ?`,
		strings.TrimSpace(gameID),
		strings.TrimSpace(teamID),
	).Scan(&stat.GameID, &stat.TeamID, &stat.TotalKills, &stat.TotalDeaths, &stat.TotalAssists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.TeamStat{}, storage.ErrNotFound
		}
		return storage.TeamStat{}, fmt.Errorf("get team stat: %w", err)
	}
	return stat, nil
}

// PutBan upserts one ban keyed by game, team and order.
func (s *Store) PutBan(ctx context.Context, ban storage.Ban) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	gameID, err := requireID(ban.GameID, "game")
	if err != nil {
		return err
	}
	teamID, err := requireID(ban.TeamID, "team")
	if err != nil {
		return err
	}
	championID, err := requireID(ban.ChampionID, "champion")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO bans (game_id, team_id, ban_order, champion_id)
VALUES (?, ?, ?, ?)
ON CONFLICT(game_id, team_id, ban_order) DO UPDATE SET
    champion_id = excluded.champion_id`,
		gameID, teamID, ban.Order, championID,
	)
	if err != nil {
		return fmt.Errorf("put ban %s/%s/%d: %w", gameID, teamID, ban.Order, mapConstraintError(err))
	}
	return nil
}

// PutPick upserts one pick keyed by game, team and order.
func (s *Store) PutPick(ctx context.Context, pick storage.Pick) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	gameID, err := requireID(pick.GameID, "game")
	if err != nil {
		return err
	}
	teamID, err := requireID(pick.TeamID, "team")
	if err != nil {
		return err
	}
	playerID, err := requireID(pick.PlayerID, "player")
	if err != nil {
		return err
	}
	championID, err := requireID(pick.ChampionID, "champion")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO picks (game_id, team_id, pick_order, player_id, champion_id)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(game_id, team_id, pick_order) DO UPDATE SET
    player_id = excluded.player_id,
    champion_id = excluded.champion_id`,
		gameID, teamID, pick.Order, playerID, championID,
	)
	if err != nil {
		return fmt.Errorf("put pick %s/%s/%d: %w", gameID, teamID, pick.Order, mapConstraintError(err))
	}
	return nil
}

// ListPlayerStats returns one page of player lines ordered by game and player.
func (s *Store) ListPlayerStats(ctx context.Context, query storage.PlayerStatQuery) (storage.PlayerStatPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.PlayerStatPage{}, err
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPlayerStatPageSize
	}
	if pageSize > maxPlayerStatPageSize {
		pageSize = maxPlayerStatPageSize
	}

	cond, err := filter.ParsePlayerStatFilter(query.Filter)
	if err != nil {
		return storage.PlayerStatPage{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "invalid filter: "+err.Error(), err)
	}

	var where []string
	var params []any
	if !cond.Empty() {
		where = append(where, cond.Clause)
		params = append(params, cond.Params...)
	}
	if query.PageToken != "" {
		gameID, playerID, err := decodePageToken(query.PageToken)
		if err != nil {
			return storage.PlayerStatPage{}, err
		}
		where = append(where, "(ps.game_id > ? OR (ps.game_id = ? AND ps.player_id > ?))")
		params = append(params, gameID, gameID, playerID)
	}

	statement := `
SELECT ps.game_id, ps.player_id, ps.team_id, ps.position, ps.champion_id,
       ps.kills, ps.deaths, ps.assists, ps.gold_earned, ps.cs,
       p.player_name, t.team_name, c.champion_name, g.league, g.patch
  FROM player_stats ps
  JOIN players p ON p.player_id = ps.player_id
  JOIN teams t ON t.team_id = ps.team_id
  JOIN champions c ON c.champion_id = ps.champion_id
  JOIN games g ON g.game_id = ps.game_id`
	if len(where) > 0 {
		statement += "\n WHERE " + strings.Join(where, " AND ")
	}
	statement += "\n ORDER BY ps.game_id, ps.player_id\n LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.db.QueryContext(ctx, statement, params...)
	if err != nil {
		return storage.PlayerStatPage{}, fmt.Errorf("list player stats: %w", err)
	}
	defer rows.Close()

	page := storage.PlayerStatPage{}
	for rows.Next() {
		var view storage.PlayerStatView
		if err := rows.Scan(
			&view.GameID,
			&view.PlayerID,
			&view.TeamID,
			&view.Position,
			&view.ChampionID,
			&view.Kills,
			&view.Deaths,
			&view.Assists,
			&view.GoldEarned,
			&view.CS,
			&view.PlayerName,
			&view.TeamName,
			&view.ChampionName,
			&view.League,
			&view.Patch,
		); err != nil {
			return storage.PlayerStatPage{}, fmt.Errorf("scan player stat: %w", err)
		}
		page.Stats = append(page.Stats, view)
	}
	if err := rows.Err(); err != nil {
		return storage.PlayerStatPage{}, fmt.Errorf("iterate player stats: %w", err)
	}

	if len(page.Stats) > pageSize {
		page.Stats = page.Stats[:pageSize]
		last := page.Stats[len(page.Stats)-1]
		page.NextPageToken = encodePageToken(last.GameID, last.PlayerID)
	}
	return page, nil
}

// pageToken is the keyset cursor of the last row served.
type pageToken struct {
	GameID   string `json:"g"`
	PlayerID string `json:"p"`
}

func encodePageToken(gameID, playerID string) string {
	raw, err := json.Marshal(pageToken{GameID: gameID, PlayerID: playerID})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodePageToken(token string) (string, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.CodePageTokenInvalid, "invalid page token", err)
	}
	var cursor pageToken
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return "", "", apperrors.Wrap(apperrors.CodePageTokenInvalid, "invalid page token", err)
	}
	if cursor.GameID == "" || cursor.PlayerID == "" {
		return "", "", apperrors.New(apperrors.CodePageTokenInvalid, "invalid page token")
	}
	return cursor.GameID, cursor.PlayerID, nil
}
