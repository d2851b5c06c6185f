package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := openTempStore(t)

	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != "0002_team_totals_triggers.sql" {
		t.Fatalf("schema version = %q, want %q", version, "0002_team_totals_triggers.sql")
	}
}

func TestPutPlayerKeepsKnownValuesOverPlaceholder(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if err := store.PutPlayer(ctx, storage.Player{ID: "p1", Name: "Faker", Position: "mid"}); err != nil {
		t.Fatalf("put player: %v", err)
	}
	if err := store.PutPlayer(ctx, storage.Player{ID: "p1", Name: storage.Placeholder, Position: ""}); err != nil {
		t.Fatalf("put placeholder player: %v", err)
	}

	got, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != "Faker" {
		t.Fatalf("name = %q, want %q", got.Name, "Faker")
	}
	if got.Position != "mid" {
		t.Fatalf("position = %q, want %q", got.Position, "mid")
	}

	if err := store.PutPlayer(ctx, storage.Player{ID: "p1", Name: "Lee Sang-hyeok", Position: "mid"}); err != nil {
		t.Fatalf("rename player: %v", err)
	}
	got, err = store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get renamed player: %v", err)
	}
	if got.Name != "Lee Sang-hyeok" {
		t.Fatalf("name = %q, want %q", got.Name, "Lee Sang-hyeok")
	}
}

func TestPutPlayerDefaultsToPlaceholder(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if err := store.PutPlayer(ctx, storage.Player{ID: "p9"}); err != nil {
		t.Fatalf("put player: %v", err)
	}
	got, err := store.GetPlayer(ctx, "p9")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != storage.Placeholder || got.Position != storage.Placeholder {
		t.Fatalf("player = %+v, want placeholder name and position", got)
	}
}

func TestPutTeamKeepsKnownName(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if err := store.PutTeam(ctx, storage.Team{ID: "t1", Name: "T1"}); err != nil {
		t.Fatalf("put team: %v", err)
	}
	if err := store.PutTeam(ctx, storage.Team{ID: "t1"}); err != nil {
		t.Fatalf("put unnamed team: %v", err)
	}
	got, err := store.GetTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if got.Name != "T1" {
		t.Fatalf("team name = %q, want %q", got.Name, "T1")
	}
}

func TestPutGameKeepsDateWhenMissing(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	date := time.Date(2024, 10, 3, 9, 30, 0, 0, time.UTC)
	if err := store.PutGame(ctx, storage.Game{ID: "g1", Date: &date, League: "WLDs", Patch: "14.18"}); err != nil {
		t.Fatalf("put game: %v", err)
	}
	if err := store.PutGame(ctx, storage.Game{ID: "g1"}); err != nil {
		t.Fatalf("put bare game: %v", err)
	}

	got, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Date == nil || !got.Date.Equal(date) {
		t.Fatalf("date = %v, want %v", got.Date, date)
	}
	if got.League != "WLDs" || got.Patch != "14.18" {
		t.Fatalf("league/patch = %q/%q, want WLDs/14.18", got.League, got.Patch)
	}
}

func TestGetMissingRecordsReturnNotFound(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.GetPlayer(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get player err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetChampion(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get champion err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetTeamStat(ctx, "g", "t"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get team stat err = %v, want ErrNotFound", err)
	}
}

func TestPlayerStatsMaintainTeamTotals(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	putStat(t, store, storage.PlayerStat{GameID: "g1", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri", Kills: 3, Deaths: 1, Assists: 4})
	putStat(t, store, storage.PlayerStat{GameID: "g1", PlayerID: "p2", TeamID: "t1", ChampionID: "lee_sin", Kills: 2, Deaths: 2, Assists: 6})
	assertTeamStat(t, store, "g1", "t1", 5, 3, 10)

	// Upsert replaces the line instead of adding a second one.
	putStat(t, store, storage.PlayerStat{GameID: "g1", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri", Kills: 7, Deaths: 1, Assists: 4})
	assertTeamStat(t, store, "g1", "t1", 9, 3, 10)

	if _, err := store.ExecStatement(ctx, "DELETE FROM player_stats WHERE game_id = 'g1' AND player_id = 'p2'"); err != nil {
		t.Fatalf("delete player stat: %v", err)
	}
	assertTeamStat(t, store, "g1", "t1", 7, 1, 4)

	// The last line of a pair leaves the totals in place.
	if _, err := store.ExecStatement(ctx, "DELETE FROM player_stats WHERE game_id = 'g1' AND player_id = 'p1'"); err != nil {
		t.Fatalf("delete last player stat: %v", err)
	}
	assertTeamStat(t, store, "g1", "t1", 7, 1, 4)
}

func TestPutTeamStatPrefersPlayerDerivedTotals(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	if err := store.PutTeamStat(ctx, storage.TeamStat{GameID: "g1", TeamID: "t1", TotalKills: 10, TotalDeaths: 5}); err != nil {
		t.Fatalf("put team stat: %v", err)
	}
	assertTeamStat(t, store, "g1", "t1", 10, 5, 0)

	putStat(t, store, storage.PlayerStat{GameID: "g1", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri", Kills: 3, Deaths: 1, Assists: 2})
	assertTeamStat(t, store, "g1", "t1", 3, 1, 2)

	if err := store.PutTeamStat(ctx, storage.TeamStat{GameID: "g1", TeamID: "t1", TotalKills: 10, TotalDeaths: 5}); err != nil {
		t.Fatalf("put team stat again: %v", err)
	}
	assertTeamStat(t, store, "g1", "t1", 3, 1, 2)
}

func TestPutPlayerStatRequiresDimensions(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	err := store.PutPlayerStat(ctx, storage.PlayerStat{GameID: "missing", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri"})
	if !errors.Is(err, storage.ErrForeignKey) {
		t.Fatalf("err = %v, want ErrForeignKey", err)
	}
}

func TestPutPlayerStatRejectsNegativeCounters(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	err := store.PutPlayerStat(ctx, storage.PlayerStat{GameID: "g1", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri", Kills: -1})
	if !errors.Is(err, storage.ErrConstraint) {
		t.Fatalf("err = %v, want ErrConstraint", err)
	}
}

func TestPutBanAndPickUpsertByOrder(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	for _, champion := range []string{"ahri", "lee_sin"} {
		if err := store.PutBan(ctx, storage.Ban{GameID: "g1", TeamID: "t1", Order: 1, ChampionID: champion}); err != nil {
			t.Fatalf("put ban %s: %v", champion, err)
		}
		if err := store.PutPick(ctx, storage.Pick{GameID: "g1", TeamID: "t1", Order: 1, PlayerID: "p1", ChampionID: champion}); err != nil {
			t.Fatalf("put pick %s: %v", champion, err)
		}
	}

	counts, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts["bans"] != 1 || counts["picks"] != 1 {
		t.Fatalf("bans/picks = %d/%d, want 1/1", counts["bans"], counts["picks"])
	}

	var champion string
	if err := store.sqlDB.QueryRow("SELECT champion_id FROM bans WHERE game_id = 'g1'").Scan(&champion); err != nil {
		t.Fatalf("scan ban: %v", err)
	}
	if champion != "lee_sin" {
		t.Fatalf("ban champion = %q, want %q", champion, "lee_sin")
	}

	if err := store.PutBan(ctx, storage.Ban{GameID: "g1", TeamID: "t1", Order: 6, ChampionID: "ahri"}); !errors.Is(err, storage.ErrConstraint) {
		t.Fatalf("ban order 6 err = %v, want ErrConstraint", err)
	}
}

func TestLoadBatchIsIdempotent(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	batch := sampleBatch()

	first, err := store.LoadBatch(ctx, batch)
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if first.PlayerStats != 2 || first.Bans != 1 || first.Picks != 1 {
		t.Fatalf("load counts = %+v", first)
	}
	before, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}

	if _, err := store.LoadBatch(ctx, batch); err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	after, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	for _, table := range CountedTables() {
		if before[table] != after[table] {
			t.Fatalf("%s count = %d after reload, want %d", table, after[table], before[table])
		}
	}
	assertTeamStat(t, store, "g1", "t1", 5, 3, 10)
}

func TestLoadBatchRollsBackOnError(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	batch := sampleBatch()
	batch.PlayerStats = append(batch.PlayerStats, storage.PlayerStat{
		GameID: "g1", PlayerID: "p1", TeamID: "t1", ChampionID: "not_loaded",
	})

	if _, err := store.LoadBatch(ctx, batch); !errors.Is(err, storage.ErrForeignKey) {
		t.Fatalf("err = %v, want ErrForeignKey", err)
	}
	counts, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	for table, count := range counts {
		if count != 0 {
			t.Fatalf("%s count = %d after rollback, want 0", table, count)
		}
	}
}

func TestLoadBatchEmpty(t *testing.T) {
	store := openTempStore(t)

	counts, err := store.LoadBatch(context.Background(), storage.Batch{Source: "empty"})
	if err != nil {
		t.Fatalf("load empty batch: %v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("total = %d, want 0", counts.Total())
	}
}

func TestListPlayerStatsPagesAndFilters(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.LoadBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	putStat(t, store, storage.PlayerStat{GameID: "g2", PlayerID: "p1", TeamID: "t1", ChampionID: "ahri", Kills: 9})

	page, err := store.ListPlayerStats(ctx, storage.PlayerStatQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page.Stats) != 2 || page.NextPageToken == "" {
		t.Fatalf("first page = %d stats, token %q", len(page.Stats), page.NextPageToken)
	}
	if page.Stats[0].PlayerName != "Faker" || page.Stats[0].TeamName != "T1" {
		t.Fatalf("first view = %+v", page.Stats[0])
	}

	next, err := store.ListPlayerStats(ctx, storage.PlayerStatQuery{PageSize: 2, PageToken: page.NextPageToken})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(next.Stats) != 1 || next.NextPageToken != "" {
		t.Fatalf("second page = %d stats, token %q", len(next.Stats), next.NextPageToken)
	}
	if next.Stats[0].GameID != "g2" {
		t.Fatalf("second page game = %q, want g2", next.Stats[0].GameID)
	}

	filtered, err := store.ListPlayerStats(ctx, storage.PlayerStatQuery{Filter: `kills > 2 AND team_name = "T1"`})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered.Stats) != 2 {
		t.Fatalf("filtered = %d stats, want 2", len(filtered.Stats))
	}
}

func TestListPlayerStatsRejectsBadInput(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_, err := store.ListPlayerStats(ctx, storage.PlayerStatQuery{Filter: "unknown_field = 1"})
	if apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("filter err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeFilterInvalid)
	}
	_, err = store.ListPlayerStats(ctx, storage.PlayerStatQuery{PageToken: "!!!"})
	if apperrors.CodeOf(err) != apperrors.CodePageTokenInvalid {
		t.Fatalf("token err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodePageTokenInvalid)
	}
}

func TestPageTokenKeepsSeparatorCharacters(t *testing.T) {
	token := encodePageToken("game\n1", "player\n7")
	gameID, playerID, err := decodePageToken(token)
	if err != nil {
		t.Fatalf("decode page token: %v", err)
	}
	if gameID != "game\n1" || playerID != "player\n7" {
		t.Fatalf("cursor = %q/%q", gameID, playerID)
	}
}

func TestPageTokenRejectsMalformedCursor(t *testing.T) {
	for _, raw := range []string{"game\nplayer", `{"g":"game"}`, `{"g":"","p":"player"}`} {
		_, _, err := decodePageToken(base64.RawURLEncoding.EncodeToString([]byte(raw)))
		if apperrors.CodeOf(err) != apperrors.CodePageTokenInvalid {
			t.Fatalf("%q: err code = %s, want %s", raw, apperrors.CodeOf(err), apperrors.CodePageTokenInvalid)
		}
	}
}

func TestRecomputeTeamTotalsRepairsDrift(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.LoadBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if _, err := store.sqlDB.Exec("UPDATE team_stats SET total_kills = 99 WHERE game_id = 'g1' AND team_id = 't1'"); err != nil {
		t.Fatalf("corrupt team stats: %v", err)
	}

	report, err := store.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("check integrity: %v", err)
	}
	if len(report.TeamTotalsDrift) != 1 {
		t.Fatalf("drift = %d entries, want 1", len(report.TeamTotalsDrift))
	}
	if drift := report.TeamTotalsDrift[0]; drift.Stored.TotalKills != 99 || drift.Derived.TotalKills != 5 {
		t.Fatalf("drift = %+v", drift)
	}

	touched, err := store.RecomputeTeamTotals(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if touched != 1 {
		t.Fatalf("touched = %d, want 1", touched)
	}
	report, err = store.CheckIntegrity(ctx)
	if err != nil {
		t.Fatalf("check integrity: %v", err)
	}
	if !report.OK() {
		t.Fatalf("integrity report not ok: %+v", report)
	}
}

func TestQueryReportFormatsValues(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	table, err := store.QueryReport(ctx, "SELECT 1 AS n, 2.5 AS avg, 'x' AS label, NULL AS missing")
	if err != nil {
		t.Fatalf("query report: %v", err)
	}
	if len(table.Columns) != 4 || table.Columns[1] != "avg" {
		t.Fatalf("columns = %v", table.Columns)
	}
	want := []string{"1", "2.5", "x", ""}
	for i, value := range want {
		if table.Rows[0][i] != value {
			t.Fatalf("row[%d] = %q, want %q", i, table.Rows[0][i], value)
		}
	}
}

func TestExecStatementRejectsEmpty(t *testing.T) {
	store := openTempStore(t)

	_, err := store.ExecStatement(context.Background(), "   ")
	if apperrors.CodeOf(err) != apperrors.CodeStatementEmpty {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeStatementEmpty)
	}
}

func TestExecStatementReportsAffectedRows(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	seedDimensions(t, store)

	affected, err := store.ExecStatement(ctx, "UPDATE players SET position = 'top'")
	if err != nil {
		t.Fatalf("exec statement: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}
}

func TestClosedStoreIsNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if err := store.PutTeam(context.Background(), storage.Team{ID: "t1"}); err == nil {
		t.Fatal("expected error for unconfigured store")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lolworlds.db")
	store, err := Open(path, WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil && err != sql.ErrConnDone {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func seedDimensions(t *testing.T, store *Store) {
	t.Helper()
	if _, err := store.LoadBatch(context.Background(), storage.Batch{
		Source:    "seed",
		Games:     []storage.Game{{ID: "g1"}, {ID: "g2"}},
		Teams:     []storage.Team{{ID: "t1", Name: "T1"}, {ID: "t2", Name: "Gen.G"}},
		Players:   []storage.Player{{ID: "p1", Name: "Faker", Position: "mid"}, {ID: "p2", Name: "Oner", Position: "jng"}},
		Champions: []storage.Champion{{ID: "ahri", Name: "Ahri"}, {ID: "lee_sin", Name: "Lee Sin"}},
	}); err != nil {
		t.Fatalf("seed dimensions: %v", err)
	}
}

func sampleBatch() storage.Batch {
	return storage.Batch{
		Source:    "sample",
		Games:     []storage.Game{{ID: "g1", League: "WLDs", Patch: "14.18"}, {ID: "g2", League: "WLDs", Patch: "14.19"}},
		Teams:     []storage.Team{{ID: "t1", Name: "T1"}},
		Players:   []storage.Player{{ID: "p1", Name: "Faker", Position: "mid"}, {ID: "p2", Name: "Oner", Position: "jng"}},
		Champions: []storage.Champion{{ID: "ahri", Name: "Ahri"}, {ID: "lee_sin", Name: "Lee Sin"}},
		PlayerStats: []storage.PlayerStat{
			{GameID: "g1", PlayerID: "p1", TeamID: "t1", Position: "mid", ChampionID: "ahri", Kills: 3, Deaths: 1, Assists: 4},
			{GameID: "g1", PlayerID: "p2", TeamID: "t1", Position: "jng", ChampionID: "lee_sin", Kills: 2, Deaths: 2, Assists: 6},
		},
		TeamStats: []storage.TeamStat{{GameID: "g1", TeamID: "t1", TotalKills: 40, TotalDeaths: 40}},
		Bans:      []storage.Ban{{GameID: "g1", TeamID: "t1", Order: 1, ChampionID: "lee_sin"}},
		Picks:     []storage.Pick{{GameID: "g1", TeamID: "t1", Order: 1, PlayerID: "p1", ChampionID: "ahri"}},
	}
}

func putStat(t *testing.T, store *Store, stat storage.PlayerStat) {
	t.Helper()
	if err := store.PutPlayerStat(context.Background(), stat); err != nil {
		t.Fatalf("put player stat %s/%s: %v", stat.GameID, stat.PlayerID, err)
	}
}

func assertTeamStat(t *testing.T, store *Store, gameID, teamID string, kills, deaths, assists int) {
	t.Helper()
	got, err := store.GetTeamStat(context.Background(), gameID, teamID)
	if err != nil {
		t.Fatalf("get team stat %s/%s: %v", gameID, teamID, err)
	}
	if got.TotalKills != kills || got.TotalDeaths != deaths || got.TotalAssists != assists {
		t.Fatalf("team stat %s/%s = %d/%d/%d, want %d/%d/%d",
			gameID, teamID, got.TotalKills, got.TotalDeaths, got.TotalAssists, kills, deaths, assists)
	}
}
