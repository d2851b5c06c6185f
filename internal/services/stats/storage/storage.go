// Package storage defines persistence contracts for match statistics.
//
// Dimension records (players, teams, games, champions) must exist before the
// fact records that reference them (player stats, team stats, bans, picks);
// the SQLite schema enforces this with foreign keys.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrForeignKey indicates a fact referenced a dimension that does not exist.
	ErrForeignKey = errors.New("foreign key constraint failed")
	// ErrConstraint indicates any other constraint violation (check, not null, unique).
	ErrConstraint = errors.New("constraint failed")
)

// Placeholder fills dimension attributes the sources leave empty. An upsert
// never replaces a known value with Placeholder.
const Placeholder = "Unknown"

// Player is one professional player.
type Player struct {
	ID        string
	Name      string
	Position  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team is one competing team.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Game is one played match.
type Game struct {
	ID        string
	Date      *time.Time
	League    string
	Patch     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Champion is one playable champion.
type Champion struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerStat is one player's line in one game.
type PlayerStat struct {
	GameID     string
	PlayerID   string
	TeamID     string
	Position   string
	ChampionID string
	Kills      int
	Deaths     int
	Assists    int
	GoldEarned int
	CS         int
}

// TeamStat holds a team's totals for one game. When player lines exist for
// the pair the totals are derived from them.
type TeamStat struct {
	GameID       string
	TeamID       string
	TotalKills   int
	TotalDeaths  int
	TotalAssists int
}

// Ban is one champion ban in draft order (1..5).
type Ban struct {
	GameID     string
	TeamID     string
	Order      int
	ChampionID string
}

// Pick is one champion pick in draft order (1..5).
type Pick struct {
	GameID     string
	TeamID     string
	Order      int
	PlayerID   string
	ChampionID string
}

// Batch groups every record read from one source so it can be loaded in one
// transaction, dimensions first.
type Batch struct {
	Source      string
	Games       []Game
	Teams       []Team
	Players     []Player
	Champions   []Champion
	PlayerStats []PlayerStat
	TeamStats   []TeamStat
	Bans        []Ban
	Picks       []Pick
}

// Empty reports whether the batch carries no records.
func (b Batch) Empty() bool {
	return len(b.Games) == 0 && len(b.Teams) == 0 && len(b.Players) == 0 &&
		len(b.Champions) == 0 && len(b.PlayerStats) == 0 && len(b.TeamStats) == 0 &&
		len(b.Bans) == 0 && len(b.Picks) == 0
}

// LoadCounts reports how many records of each kind a load wrote.
type LoadCounts struct {
	Games       int
	Teams       int
	Players     int
	Champions   int
	PlayerStats int
	TeamStats   int
	Bans        int
	Picks       int
}

// Add accumulates other into c.
func (c *LoadCounts) Add(other LoadCounts) {
	c.Games += other.Games
	c.Teams += other.Teams
	c.Players += other.Players
	c.Champions += other.Champions
	c.PlayerStats += other.PlayerStats
	c.TeamStats += other.TeamStats
	c.Bans += other.Bans
	c.Picks += other.Picks
}

// Total sums every counter.
func (c LoadCounts) Total() int {
	return c.Games + c.Teams + c.Players + c.Champions + c.PlayerStats + c.TeamStats + c.Bans + c.Picks
}

// PlayerStatView is a player line joined with its dimension names.
type PlayerStatView struct {
	PlayerStat
	PlayerName   string
	TeamName     string
	ChampionName string
	League       string
	Patch        string
}

// PlayerStatQuery selects a page of player lines.
type PlayerStatQuery struct {
	// Filter is an AIP-160 expression over player line fields.
	Filter    string
	PageSize  int
	PageToken string
}

// PlayerStatPage is one page of player lines.
type PlayerStatPage struct {
	Stats         []PlayerStatView
	NextPageToken string
}

// Table is a generic tabular query result.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ForeignKeyViolation is one row returned by PRAGMA foreign_key_check.
type ForeignKeyViolation struct {
	Table  string
	RowID  int64
	Parent string
}

// TeamTotalsDrift is a team_stats row whose totals differ from its player lines.
type TeamTotalsDrift struct {
	Stored  TeamStat
	Derived TeamStat
}

// IntegrityReport summarizes schema integrity checks.
type IntegrityReport struct {
	ForeignKeyViolations []ForeignKeyViolation
	TeamTotalsDrift      []TeamTotalsDrift
}

// OK reports whether no problem was found.
func (r IntegrityReport) OK() bool {
	return len(r.ForeignKeyViolations) == 0 && len(r.TeamTotalsDrift) == 0
}

// DimensionStore persists players, teams, games and champions.
type DimensionStore interface {
	PutPlayer(ctx context.Context, player Player) error
	GetPlayer(ctx context.Context, id string) (Player, error)
	PutTeam(ctx context.Context, team Team) error
	GetTeam(ctx context.Context, id string) (Team, error)
	PutGame(ctx context.Context, game Game) error
	GetGame(ctx context.Context, id string) (Game, error)
	PutChampion(ctx context.Context, champion Champion) error
	GetChampion(ctx context.Context, id string) (Champion, error)
}

// FactStore persists per-game facts.
type FactStore interface {
	PutPlayerStat(ctx context.Context, stat PlayerStat) error
	PutTeamStat(ctx context.Context, stat TeamStat) error
	GetTeamStat(ctx context.Context, gameID, teamID string) (TeamStat, error)
	PutBan(ctx context.Context, ban Ban) error
	PutPick(ctx context.Context, pick Pick) error
	ListPlayerStats(ctx context.Context, query PlayerStatQuery) (PlayerStatPage, error)
}

// BatchLoader writes a whole source batch atomically.
type BatchLoader interface {
	LoadBatch(ctx context.Context, batch Batch) (LoadCounts, error)
}

// MaintenanceStore repairs and inspects derived data.
type MaintenanceStore interface {
	RecomputeTeamTotals(ctx context.Context) (int, error)
	CheckIntegrity(ctx context.Context) (IntegrityReport, error)
	TableCounts(ctx context.Context) (map[string]int64, error)
}

// QueryStore runs read-only reports and role-gated statements.
type QueryStore interface {
	QueryReport(ctx context.Context, query string, args ...any) (Table, error)
	ExecStatement(ctx context.Context, statement string) (int64, error)
}

// ReadStore is the read-only surface used by the console and MCP tools.
type ReadStore interface {
	QueryReport(ctx context.Context, query string, args ...any) (Table, error)
	ListPlayerStats(ctx context.Context, query PlayerStatQuery) (PlayerStatPage, error)
}
