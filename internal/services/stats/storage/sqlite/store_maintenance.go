package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// countedTables lists the tables reported by TableCounts, in load order.
var countedTables = []string{
	"games",
	"teams",
	"players",
	"champions",
	"player_stats",
	"team_stats",
	"bans",
	"picks",
}

// RecomputeTeamTotals rewrites every team_stats row that has player lines
// with the sums of those lines, creating missing rows. It returns the number
// of pairs touched.
func (s *Store) RecomputeTeamTotals(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin recompute: %w", err)
	}
	result, err := tx.ExecContext(ctx, `
INSERT INTO team_stats (game_id, team_id, total_kills, total_deaths, total_assists)
SELECT game_id, team_id, SUM(kills), SUM(deaths), SUM(assists)
  FROM player_stats
 WHERE true
 GROUP BY game_id, team_id
ON CONFLICT(game_id, team_id) DO UPDATE SET
    total_kills = excluded.total_kills,
    total_deaths = excluded.total_deaths,
    total_assists = excluded.total_assists`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("recompute team totals: %w", mapConstraintError(err))
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recompute: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recompute rows affected: %w", err)
	}
	return int(affected), nil
}

// CheckIntegrity reports foreign key violations and team totals that drifted
// from their player lines.
func (s *Store) CheckIntegrity(ctx context.Context) (storage.IntegrityReport, error) {
	if err := s.ready(ctx); err != nil {
		return storage.IntegrityReport{}, err
	}
	var report storage.IntegrityReport

	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return storage.IntegrityReport{}, fmt.Errorf("foreign key check: %w", err)
	}
	for rows.Next() {
		var (
			table  string
			rowID  sql.NullInt64
			parent string
			fkID   int64
		)
		if err := rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			_ = rows.Close()
			return storage.IntegrityReport{}, fmt.Errorf("scan foreign key check: %w", err)
		}
		report.ForeignKeyViolations = append(report.ForeignKeyViolations, storage.ForeignKeyViolation{
			Table:  table,
			RowID:  rowID.Int64,
			Parent: parent,
		})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return storage.IntegrityReport{}, fmt.Errorf("iterate foreign key check: %w", err)
	}
	_ = rows.Close()

	drift, err := s.db.QueryContext(ctx, `
SELECT ts.game_id, ts.team_id, ts.total_kills, ts.total_deaths, ts.total_assists,
       SUM(ps.kills), SUM(ps.deaths), SUM(ps.assists)
  FROM team_stats ts
  JOIN player_stats ps ON ps.game_id = ts.game_id AND ps.team_id = ts.team_id
 GROUP BY ts.game_id, ts.team_id
HAVING ts.total_kills != SUM(ps.kills)
    OR ts.total_deaths != SUM(ps.deaths)
    OR ts.total_assists != SUM(ps.assists)
 ORDER BY ts.game_id, ts.team_id`)
	if err != nil {
		return storage.IntegrityReport{}, fmt.Errorf("team totals drift: %w", err)
	}
	defer drift.Close()
	for drift.Next() {
		var entry storage.TeamTotalsDrift
		if err := drift.Scan(
			&entry.Stored.GameID,
			&entry.Stored.TeamID,
			&entry.Stored.TotalKills,
			&entry.Stored.TotalDeaths,
			&entry.Stored.TotalAssists,
			&entry.Derived.TotalKills,
			&entry.Derived.TotalDeaths,
			&entry.Derived.TotalAssists,
		); err != nil {
			return storage.IntegrityReport{}, fmt.Errorf("scan team totals drift: %w", err)
		}
		entry.Derived.GameID = entry.Stored.GameID
		entry.Derived.TeamID = entry.Stored.TeamID
		report.TeamTotalsDrift = append(report.TeamTotalsDrift, entry)
	}
	if err := drift.Err(); err != nil {
		return storage.IntegrityReport{}, fmt.Errorf("iterate team totals drift: %w", err)
	}
	return report, nil
}

// TableCounts returns the row count of every statistics table.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(countedTables))
	for _, table := range countedTables {
		var count int64
		// Table names come from countedTables, never from input.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

// CountedTables returns the table names TableCounts reports, in load order.
func CountedTables() []string {
	return append([]string(nil), countedTables...)
}
