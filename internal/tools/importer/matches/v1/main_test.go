package matchimporter

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	storagesqlite "github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
	"github.com/xuri/excelize/v2"
)

const participantsFixture = `gameid;date;league;patch;playerid;playername;position;teamid;teamname;champion;kills;deaths;assists;cs;totalgold;ban1;ban2;ban3;ban4;ban5
g1;2024-10-03 09:30:00;WLDs;14.18;p1;Faker;mid;t1;T1;Ahri;3;1;4;250;12000;Lee Sin;Azir;;;
g1;2024-10-03 09:30:00;WLDs;14.18;p2;Oner;jng;t1;T1;Lee Sin;2.0;2;6;180;9000;Lee Sin;Azir;;;
g1;2024-10-03 09:30:00;WLDs;14.18;p3;Chovy;mid;t2;Gen.G;Azir;1;4;0;260;11000;Ahri;;;;
g1;2024-10-03 09:30:00;WLDs;14.18;;;team;t1;T1;;5;3;10;;;Lee Sin;Azir;;;
;;;;p9;Ghost;sup;t9;X;Thresh;0;0;0;0;0;;;;;
`

const gamesFixture = `gameid;date;league;patch;t1_id;t1_name;t1_kills;t1_deaths;t1_ban1;t2_id;t2_name;t2_kills;t2_deaths;t2_ban1;t1p1_champion;t1p1_playerid;t1p1_position;t2p1_champion;t2p1_playerid;t2p1_position
g1;;;;t1;;20;8;;t2;Gen.G;8;20;;Ahri;p1;mid;Azir;p3;mid
g2;45569;WLDs;14.19;t3;HLE;10;5;;t4;BLG;5;10;Jax;Orianna;p4;mid;;;
`

func clearImporterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOLWORLDS_PARTICIPANTS_CSV",
		"LOLWORLDS_GAMES_CSV",
		"LOLWORLDS_GAMES_XLSX",
		"LOLWORLDS_DB_PATH",
		"LOLWORLDS_IMPORT_TIMEOUT",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestParseConfigRequiresSource(t *testing.T) {
	clearImporterEnv(t)

	_, err := ParseConfig(flag.NewFlagSet("match-importer", flag.ContinueOnError), nil)
	if apperrors.CodeOf(err) != apperrors.CodeImportNoSources {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportNoSources)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	clearImporterEnv(t)
	t.Setenv("LOLWORLDS_GAMES_CSV", "games.csv")

	cfg, err := ParseConfig(flag.NewFlagSet("match-importer", flag.ContinueOnError), []string{"-strict"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "lolworlds.db") {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Fatalf("timeout = %v, want 10m", cfg.Timeout)
	}
	if !cfg.Strict || cfg.WarningsCap != defaultWarningsCap {
		t.Fatalf("strict/warnings cap = %v/%d", cfg.Strict, cfg.WarningsCap)
	}
	sources := cfg.sources()
	if len(sources) != 1 || sources[0].Kind != kindGames || sources[0].XLSX {
		t.Fatalf("sources = %+v", sources)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	clearImporterEnv(t)
	t.Setenv("LOLWORLDS_DB_PATH", "env.db")

	cfg, err := ParseConfig(flag.NewFlagSet("match-importer", flag.ContinueOnError), []string{
		"-participants-csv", "p.csv",
		"-games-xlsx", "g.xlsx",
		"-db-path", "flag.db",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("db path = %q, want flag.db", cfg.DBPath)
	}
	sources := cfg.sources()
	if len(sources) != 2 || sources[0].Kind != kindParticipants || !sources[1].XLSX {
		t.Fatalf("sources = %+v", sources)
	}
}

func TestRunImportsAllSourcesIdempotently(t *testing.T) {
	cfg := writeFixtures(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("run import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 3 source(s)") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), "empty gameid, row skipped") {
		t.Fatalf("expected warning in output: %s", out.String())
	}

	first := tableCounts(t, cfg.DBPath)
	want := map[string]int64{
		"games":        3,
		"teams":        4,
		"players":      4,
		"champions":    5,
		"player_stats": 3,
		"team_stats":   6,
		"bans":         4,
		"picks":        4,
	}
	for table, count := range want {
		if first[table] != count {
			t.Fatalf("%s count = %d, want %d", table, first[table], count)
		}
	}

	if err := Run(ctx, cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("rerun import: %v", err)
	}
	second := tableCounts(t, cfg.DBPath)
	for table, count := range first {
		if second[table] != count {
			t.Fatalf("%s count = %d after rerun, want %d", table, second[table], count)
		}
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	player, err := store.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.Name != "Faker" {
		t.Fatalf("player name = %q, want Faker", player.Name)
	}
	team, err := store.GetTeam(ctx, "t1")
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team.Name != "T1" {
		t.Fatalf("team name = %q, want T1", team.Name)
	}

	derived, err := store.GetTeamStat(ctx, "g1", "t1")
	if err != nil {
		t.Fatalf("get team stat: %v", err)
	}
	if derived.TotalKills != 5 || derived.TotalDeaths != 3 || derived.TotalAssists != 10 {
		t.Fatalf("g1/t1 totals = %+v, want player-derived 5/3/10", derived)
	}
	fromFile, err := store.GetTeamStat(ctx, "g3", "t1")
	if err != nil {
		t.Fatalf("get team stat: %v", err)
	}
	if fromFile.TotalKills != 7 || fromFile.TotalDeaths != 3 {
		t.Fatalf("g3/t1 totals = %+v, want 7/3/0", fromFile)
	}

	game, err := store.GetGame(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.Date == nil || game.League != "WLDs" {
		t.Fatalf("game g1 = %+v, want date and league kept", game)
	}
	workbookGame, err := store.GetGame(ctx, "g3")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if workbookGame.Date == nil || workbookGame.Date.Month() != time.October || workbookGame.Date.Day() != 5 {
		t.Fatalf("game g3 date = %v, want 2024-10-05", workbookGame.Date)
	}
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.DryRun = true

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(out.String(), "validated 3 source(s)") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if _, err := os.Stat(cfg.DBPath); !os.IsNotExist(err) {
		t.Fatalf("expected no database file, stat err = %v", err)
	}
}

func TestRunStrictFailsOnWarning(t *testing.T) {
	cfg := writeFixtures(t)
	cfg.Strict = true

	err := Run(context.Background(), cfg, &bytes.Buffer{})
	if apperrors.CodeOf(err) != apperrors.CodeImportInvalidRow {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportInvalidRow)
	}
	counts := tableCounts(t, cfg.DBPath)
	for table, count := range counts {
		if count != 0 {
			t.Fatalf("%s count = %d, want 0 when validation fails", table, count)
		}
	}
}

func TestRunMissingColumnFailsBeforeWrites(t *testing.T) {
	dir := t.TempDir()
	participants := filepath.Join(dir, "participants.csv")
	games := filepath.Join(dir, "games.csv")
	writeFile(t, participants, participantsFixture)
	writeFile(t, games, "gameid;date\ng1;2024-10-03\n")

	cfg := Config{ParticipantsCSV: participants, GamesCSV: games, DBPath: filepath.Join(dir, "stats.db")}
	err := Run(context.Background(), cfg, &bytes.Buffer{})
	if apperrors.CodeOf(err) != apperrors.CodeImportMissingColumn {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportMissingColumn)
	}
	counts := tableCounts(t, cfg.DBPath)
	if counts["games"] != 0 {
		t.Fatalf("games count = %d, want 0", counts["games"])
	}
}

func TestWriteReportCapsWarnings(t *testing.T) {
	report := Report{
		DryRun: true,
		Sources: []SourceReport{{
			Name:     "participants.csv",
			Rows:     3,
			Skipped:  3,
			Warnings: []string{"a", "b", "c"},
		}},
	}
	var out bytes.Buffer
	if err := writeReport(&out, report, Config{WarningsCap: 1}); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if !strings.Contains(out.String(), "warning: a") || strings.Contains(out.String(), "warning: b") {
		t.Fatalf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), "... 2 more warning(s)") {
		t.Fatalf("expected overflow line: %s", out.String())
	}
}

func writeFixtures(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	participants := filepath.Join(dir, "participants.csv")
	games := filepath.Join(dir, "games.csv")
	workbook := filepath.Join(dir, "games.xlsx")
	writeFile(t, participants, participantsFixture)
	writeFile(t, games, gamesFixture)

	book := excelize.NewFile()
	defer book.Close()
	rows := [][]any{
		{"gameid", "date", "league", "patch", "t1_id", "t1_name", "t1_kills", "t1_deaths", "t2_id", "t2_name", "t2_kills", "t2_deaths", "t1p1_champion", "t1p1_playerid", "t1p1_position"},
		{"g3", 45570, "WLDs", "14.19", "t1", "T1", 7, 3, "t2", "Gen.G", 3, 7, "Lee Sin", "p2", "jng"},
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("set sheet row: %v", err)
		}
	}
	if err := book.SaveAs(workbook); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	return Config{
		ParticipantsCSV: participants,
		GamesCSV:        games,
		GamesXLSX:       workbook,
		DBPath:          filepath.Join(dir, "stats.db"),
		WarningsCap:     defaultWarningsCap,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func tableCounts(t *testing.T, path string) map[string]int64 {
	t.Helper()
	store, err := storagesqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	counts, err := store.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	return counts
}

func TestParseConfigInvalidEnv(t *testing.T) {
	clearImporterEnv(t)
	t.Setenv("LOLWORLDS_IMPORT_TIMEOUT", "soon")

	_, err := ParseConfig(flag.NewFlagSet("match-importer", flag.ContinueOnError), []string{"-games-csv", "games.csv"})
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
