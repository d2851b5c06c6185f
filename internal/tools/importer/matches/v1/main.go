// Package matchimporter loads match statistics exports (participant CSV, game
// CSV and game workbook) into the statistics database.
package matchimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/lolworlds/internal/platform/config"
	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/platform/timeouts"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
	storagesqlite "github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/louisbranch/lolworlds/internal/tools/importer/matches/v1"

const defaultWarningsCap = 25

// Config holds configuration for the match importer.
type Config struct {
	ParticipantsCSV string
	GamesCSV        string
	GamesXLSX       string
	DBPath          string
	DryRun          bool
	Strict          bool
	WarningsCap     int
	Timeout         time.Duration
}

type envConfig struct {
	ParticipantsCSV string        `env:"LOLWORLDS_PARTICIPANTS_CSV"`
	GamesCSV        string        `env:"LOLWORLDS_GAMES_CSV"`
	GamesXLSX       string        `env:"LOLWORLDS_GAMES_XLSX"`
	DBPath          string        `env:"LOLWORLDS_DB_PATH"`
	Timeout         time.Duration `env:"LOLWORLDS_IMPORT_TIMEOUT"`
}

// ParseConfig parses env defaults and CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ParticipantsCSV: envCfg.ParticipantsCSV,
		GamesCSV:        envCfg.GamesCSV,
		GamesXLSX:       envCfg.GamesXLSX,
		DBPath:          envCfg.DBPath,
		WarningsCap:     defaultWarningsCap,
		Timeout:         envCfg.Timeout,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "lolworlds.db")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Import
	}

	fs.StringVar(&cfg.ParticipantsCSV, "participants-csv", cfg.ParticipantsCSV, "participant-level CSV export (default: LOLWORLDS_PARTICIPANTS_CSV)")
	fs.StringVar(&cfg.GamesCSV, "games-csv", cfg.GamesCSV, "game-level CSV export (default: LOLWORLDS_GAMES_CSV)")
	fs.StringVar(&cfg.GamesXLSX, "games-xlsx", cfg.GamesXLSX, "game-level workbook (default: LOLWORLDS_GAMES_XLSX)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "statistics database path (default: LOLWORLDS_DB_PATH or data/lolworlds.db)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "parse and validate without writing to the database")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail on the first row warning")
	fs.IntVar(&cfg.WarningsCap, "warnings-cap", cfg.WarningsCap, "max warnings to print (0 = no limit)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if len(cfg.sources()) == 0 {
		return Config{}, apperrors.New(apperrors.CodeImportNoSources, "at least one of -participants-csv, -games-csv or -games-xlsx is required")
	}
	return cfg, nil
}

// sources lists the configured inputs in load order.
func (c Config) sources() []source {
	var sources []source
	if path := strings.TrimSpace(c.ParticipantsCSV); path != "" {
		sources = append(sources, source{Name: filepath.Base(path), Kind: kindParticipants, Path: path})
	}
	if path := strings.TrimSpace(c.GamesCSV); path != "" {
		sources = append(sources, source{Name: filepath.Base(path), Kind: kindGames, Path: path})
	}
	if path := strings.TrimSpace(c.GamesXLSX); path != "" {
		sources = append(sources, source{Name: filepath.Base(path), Kind: kindGames, Path: path, XLSX: true})
	}
	return sources
}

// SourceReport summarizes one imported source.
type SourceReport struct {
	Name     string
	Rows     int
	Skipped  int
	Written  storage.LoadCounts
	Warnings []string
}

// Report summarizes an import run.
type Report struct {
	DryRun  bool
	Sources []SourceReport
	Total   storage.LoadCounts
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	sources := cfg.sources()
	if len(sources) == 0 {
		return apperrors.New(apperrors.CodeImportNoSources, "no import sources configured")
	}

	var loader storage.BatchLoader
	if !cfg.DryRun {
		store, err := storagesqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open stats store: %w", err)
		}
		defer store.Close()
		loader = store
	}

	report, err := importSources(ctx, loader, sources, cfg)
	if err != nil {
		return err
	}
	return writeReport(out, report, cfg)
}

// importSources reads every source, then loads each as one batch. All
// sources are read and validated before the first write.
func importSources(ctx context.Context, loader storage.BatchLoader, sources []source, cfg Config) (Report, error) {
	if !cfg.DryRun && loader == nil {
		return Report{}, errors.New("batch loader is required")
	}
	tracer := otel.Tracer(tracerName)

	type collected struct {
		report SourceReport
		batch  storage.Batch
	}
	var pending []collected
	for _, src := range sources {
		_, span := tracer.Start(ctx, "import.read_source")
		span.SetAttributes(
			attribute.String("import.source", src.Name),
			attribute.String("import.kind", string(src.Kind)),
		)
		sourceReport, batch, err := collectSource(src, cfg.Strict)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return Report{}, err
		}
		span.SetAttributes(
			attribute.Int("import.rows", sourceReport.Rows),
			attribute.Int("import.skipped", sourceReport.Skipped),
		)
		span.End()
		pending = append(pending, collected{report: sourceReport, batch: batch})
	}

	report := Report{DryRun: cfg.DryRun}
	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if !cfg.DryRun {
			loadCtx, span := tracer.Start(ctx, "import.load_batch")
			span.SetAttributes(attribute.String("import.source", item.batch.Source))
			written, err := loader.LoadBatch(loadCtx, item.batch)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
				return Report{}, fmt.Errorf("import %s: %w", item.report.Name, err)
			}
			span.SetAttributes(attribute.Int("import.records", written.Total()))
			span.End()
			item.report.Written = written
		}
		report.Total.Add(item.report.Written)
		report.Sources = append(report.Sources, item.report)
	}
	return report, nil
}

// collectSource reads and parses one source into a batch. In dry-run mode
// the batch counts stand in for written records.
func collectSource(src source, strict bool) (SourceReport, storage.Batch, error) {
	s, err := readSource(src)
	if err != nil {
		return SourceReport{}, storage.Batch{}, err
	}

	required := requiredParticipantColumns
	collect := collectParticipants
	if src.Kind == kindGames {
		required = requiredGameColumns
		collect = collectGames
	}
	if err := s.requireColumns(src.Name, required); err != nil {
		return SourceReport{}, storage.Batch{}, err
	}

	builder := newBatchBuilder(src.Name)
	warn := &warnings{strict: strict}
	rows, err := collect(src.Name, s, builder, warn)
	if err != nil {
		return SourceReport{}, storage.Batch{}, err
	}

	report := SourceReport{
		Name:    src.Name,
		Rows:    rows.Read,
		Skipped: rows.Skipped,
		Written: builder.counts(),
	}
	for _, item := range warn.items {
		report.Warnings = append(report.Warnings, item.String())
	}
	return report, builder.batch, nil
}

func writeReport(out io.Writer, report Report, cfg Config) error {
	verb := "imported"
	if report.DryRun {
		verb = "validated"
	}
	for _, src := range report.Sources {
		if _, err := fmt.Fprintf(out, "%s: %d row(s), %d skipped; %s\n", src.Name, src.Rows, src.Skipped, formatCounts(src.Written)); err != nil {
			return err
		}
		for i, warning := range src.Warnings {
			if cfg.WarningsCap > 0 && i >= cfg.WarningsCap {
				if _, err := fmt.Fprintf(out, "  ... %d more warning(s)\n", len(src.Warnings)-i); err != nil {
					return err
				}
				break
			}
			if _, err := fmt.Fprintf(out, "  warning: %s\n", warning); err != nil {
				return err
			}
		}
	}
	if report.DryRun {
		_, err := fmt.Fprintf(out, "%s %d source(s), %d record(s)\n", verb, len(report.Sources), report.Total.Total())
		return err
	}
	_, err := fmt.Fprintf(out, "%s %d source(s), %d record(s) into %s\n", verb, len(report.Sources), report.Total.Total(), cfg.DBPath)
	return err
}

func formatCounts(c storage.LoadCounts) string {
	return fmt.Sprintf("games=%d teams=%d players=%d champions=%d player_stats=%d team_stats=%d bans=%d picks=%d",
		c.Games, c.Teams, c.Players, c.Champions, c.PlayerStats, c.TeamStats, c.Bans, c.Picks)
}
