// Package report holds the catalog of canned statistics reports and runs
// them against a read-only store.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/platform/timeouts"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// DefaultChartLimit is the number of champions shown by the average kills chart.
const DefaultChartLimit = 10

const maxChartLimit = 50

// Report is one named read-only query.
type Report struct {
	ID          string
	Title       string
	Description string
	Query       string
}

var catalog = []Report{
	{
		ID:          "player-lines",
		Title:       "Player lines",
		Description: "Kills, deaths and assists per player line with the player's team.",
		Query: `SELECT pl.player_name, ps.kills, ps.deaths, ps.assists, t.team_name
  FROM player_stats ps
  JOIN players pl ON ps.player_id = pl.player_id
  JOIN teams t ON ps.team_id = t.team_id
 ORDER BY ps.game_id, ps.player_id
 LIMIT 20`,
	},
	{
		ID:          "champion-avg-kills",
		Title:       "Average kills by champion",
		Description: "Average kills per champion, highest first.",
		Query: `SELECT c.champion_name, ROUND(AVG(ps.kills), 2) AS avg_kills
  FROM player_stats ps
  JOIN champions c ON ps.champion_id = c.champion_id
 GROUP BY c.champion_name
 ORDER BY avg_kills DESC, c.champion_name`,
	},
	{
		ID:          "above-avg-killers",
		Title:       "Players with kills above average",
		Description: "Player lines whose kills exceed the average over all lines.",
		Query: `SELECT p.player_name, ps.kills
  FROM player_stats ps
  JOIN players p ON ps.player_id = p.player_id
 WHERE ps.kills > (SELECT AVG(kills) FROM player_stats)
 ORDER BY ps.game_id, ps.player_id
 LIMIT 20`,
	},
	{
		ID:          "running-kills",
		Title:       "Running total of kills",
		Description: "Cumulative kills across player lines in game order.",
		Query: `SELECT p.player_name, ps.game_id, ps.kills,
       SUM(ps.kills) OVER (ORDER BY ps.game_id, ps.player_id) AS running_kills
  FROM player_stats ps
  JOIN players p ON ps.player_id = p.player_id
 ORDER BY ps.game_id, ps.player_id
 LIMIT 20`,
	},
	{
		ID:          "team-above-avg-kills",
		Title:       "Team games with kills above average",
		Description: "Team totals whose kills exceed the average team total.",
		Query: `SELECT t.team_name, ts.game_id, ts.total_kills, ts.total_deaths
  FROM team_stats ts
  JOIN teams t ON ts.team_id = t.team_id
 WHERE ts.total_kills > (SELECT AVG(total_kills) FROM team_stats)
 ORDER BY ts.game_id, ts.team_id
 LIMIT 20`,
	},
	{
		ID:          "kills-by-patch",
		Title:       "Kills by patch",
		Description: "Total kills per game patch, highest first.",
		Query: `SELECT g.patch, SUM(ps.kills) AS total_kills
  FROM player_stats ps
  JOIN games g ON ps.game_id = g.game_id
 GROUP BY g.patch
 ORDER BY total_kills DESC, g.patch`,
	},
}

// Catalog returns every report in display order.
func Catalog() []Report {
	return append([]Report(nil), catalog...)
}

// Lookup returns the report with id.
func Lookup(id string) (Report, error) {
	id = strings.TrimSpace(id)
	for _, r := range catalog {
		if r.ID == id {
			return r, nil
		}
	}
	return Report{}, apperrors.WithMetadata(apperrors.CodeReportUnknown, fmt.Sprintf("unknown report %q", id), map[string]string{"report": id})
}

// ChampionAverage is one bar of the champion average kills chart.
type ChampionAverage struct {
	Champion string
	AvgKills float64
}

// Runner executes catalog reports.
type Runner struct {
	store storage.ReadStore
}

// NewRunner builds a Runner over store.
func NewRunner(store storage.ReadStore) *Runner {
	return &Runner{store: store}
}

// Run executes the report with id.
func (r *Runner) Run(ctx context.Context, id string) (storage.Table, error) {
	rep, err := Lookup(id)
	if err != nil {
		return storage.Table{}, err
	}
	if r == nil || r.store == nil {
		return storage.Table{}, fmt.Errorf("report store is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Query)
	defer cancel()

	table, err := r.store.QueryReport(ctx, rep.Query)
	if err != nil {
		return storage.Table{}, fmt.Errorf("run report %s: %w", rep.ID, err)
	}
	return table, nil
}

// ChampionAverages returns the champions with the highest average kills.
// A non-positive limit uses DefaultChartLimit.
func (r *Runner) ChampionAverages(ctx context.Context, limit int) ([]ChampionAverage, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("report store is not configured")
	}
	if limit <= 0 {
		limit = DefaultChartLimit
	}
	if limit > maxChartLimit {
		limit = maxChartLimit
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Query)
	defer cancel()

	table, err := r.store.QueryReport(ctx, `SELECT c.champion_name, AVG(ps.kills) AS avg_kills
  FROM player_stats ps
  JOIN champions c ON ps.champion_id = c.champion_id
 GROUP BY c.champion_name
 ORDER BY avg_kills DESC, c.champion_name
 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("champion averages: %w", err)
	}

	averages := make([]ChampionAverage, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) < 2 {
			continue
		}
		avg, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse average for %s: %w", row[0], err)
		}
		averages = append(averages, ChampionAverage{Champion: row[0], AvgKills: avg})
	}
	return averages, nil
}
