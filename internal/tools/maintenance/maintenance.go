// Package maintenance repairs and inspects derived statistics: team totals
// recomputed from player lines, foreign key checks and table counts.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/louisbranch/lolworlds/internal/platform/config"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
)

const (
	modeRecompute = "recompute-team-totals"
	modeIntegrity = "integrity"
	modeCounts    = "counts"
)

// Config holds maintenance command configuration.
type Config struct {
	DBPath              string
	Timeout             time.Duration
	RecomputeTeamTotals bool
	Integrity           bool
	Counts              bool
	WarningsCap         int
	JSONOutput          bool
}

type envConfig struct {
	DBPath  string        `env:"LOLWORLDS_DB_PATH"`
	Timeout time.Duration `env:"LOLWORLDS_MAINTENANCE_TIMEOUT" envDefault:"10m"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:      envCfg.DBPath,
		Timeout:     envCfg.Timeout,
		WarningsCap: 25,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "lolworlds.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to statistics sqlite database (default: LOLWORLDS_DB_PATH or data/lolworlds.db)")
	fs.BoolVar(&cfg.RecomputeTeamTotals, "recompute-team-totals", false, "rewrite team totals from player lines")
	fs.BoolVar(&cfg.Integrity, "integrity", false, "report foreign key violations and team totals drift")
	fs.BoolVar(&cfg.Counts, "counts", false, "print row counts per table")
	fs.IntVar(&cfg.WarningsCap, "warnings-cap", cfg.WarningsCap, "max warnings to print (0 = no limit)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if !cfg.RecomputeTeamTotals && !cfg.Integrity && !cfg.Counts {
		return Config{}, errors.New("one of -recompute-team-totals, -integrity or -counts is required")
	}
	if cfg.WarningsCap < 0 {
		return Config{}, errors.New("-warnings-cap must be >= 0")
	}
	return cfg, nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open stats store: %w", err)
	}
	return runWithStore(ctx, cfg, store, out, errOut)
}

func runWithStore(ctx context.Context, cfg Config, store closableStore, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close stats store: %v\n", err)
		}
	}()

	// Recompute runs first so an integrity check in the same run sees the
	// repaired totals.
	var modes []func(context.Context, storage.MaintenanceStore, int) runResult
	if cfg.RecomputeTeamTotals {
		modes = append(modes, recomputeTeamTotals)
	}
	if cfg.Integrity {
		modes = append(modes, checkIntegrity)
	}
	if cfg.Counts {
		modes = append(modes, countTables)
	}

	failed := false
	for _, mode := range modes {
		result := mode(ctx, store, cfg.WarningsCap)
		if cfg.JSONOutput {
			outputJSON(out, errOut, result)
		} else {
			printResult(out, errOut, result)
		}
		if result.ExitCode != 0 {
			failed = true
		}
	}
	if failed {
		return errors.New("maintenance failed")
	}
	return nil
}

type recomputeReport struct {
	RowsUpdated int `json:"rows_updated"`
}

type integrityReport struct {
	ForeignKeyViolations int  `json:"foreign_key_violations"`
	TeamTotalsDrift      int  `json:"team_totals_drift"`
	OK                   bool `json:"ok"`
}

type countsReport struct {
	Tables []tableCount `json:"tables"`
}

type tableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

type runResult struct {
	Mode          string          `json:"mode"`
	Report        json.RawMessage `json:"report,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	WarningsTotal int             `json:"warnings_total,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExitCode      int             `json:"-"`
}

func failedResult(mode string, err error) runResult {
	return runResult{Mode: mode, Error: err.Error(), ExitCode: 1}
}

func withReport(result runResult, report any) runResult {
	encoded, err := json.Marshal(report)
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = encoded
	return result
}

func recomputeTeamTotals(ctx context.Context, store storage.MaintenanceStore, _ int) runResult {
	rows, err := store.RecomputeTeamTotals(ctx)
	if err != nil {
		return failedResult(modeRecompute, err)
	}
	return withReport(runResult{Mode: modeRecompute}, recomputeReport{RowsUpdated: rows})
}

func checkIntegrity(ctx context.Context, store storage.MaintenanceStore, warningsCap int) runResult {
	report, err := store.CheckIntegrity(ctx)
	if err != nil {
		return failedResult(modeIntegrity, err)
	}
	var warnings []string
	for _, v := range report.ForeignKeyViolations {
		warnings = append(warnings, fmt.Sprintf("foreign key violation: %s row %d references missing %s", v.Table, v.RowID, v.Parent))
	}
	for _, d := range report.TeamTotalsDrift {
		warnings = append(warnings, fmt.Sprintf("team totals drift: game %s team %s stored %d/%d/%d, player lines %d/%d/%d",
			d.Stored.GameID, d.Stored.TeamID,
			d.Stored.TotalKills, d.Stored.TotalDeaths, d.Stored.TotalAssists,
			d.Derived.TotalKills, d.Derived.TotalDeaths, d.Derived.TotalAssists))
	}
	result := runResult{Mode: modeIntegrity}
	result.Warnings, result.WarningsTotal = capWarnings(warnings, warningsCap)
	if !report.OK() {
		result.Error = "integrity check failed"
		result.ExitCode = 1
	}
	return withReport(result, integrityReport{
		ForeignKeyViolations: len(report.ForeignKeyViolations),
		TeamTotalsDrift:      len(report.TeamTotalsDrift),
		OK:                   report.OK(),
	})
}

func countTables(ctx context.Context, store storage.MaintenanceStore, _ int) runResult {
	counts, err := store.TableCounts(ctx)
	if err != nil {
		return failedResult(modeCounts, err)
	}
	report := countsReport{Tables: make([]tableCount, 0, len(counts))}
	for _, table := range sqlite.CountedTables() {
		if rows, ok := counts[table]; ok {
			report.Tables = append(report.Tables, tableCount{Table: table, Rows: rows})
		}
	}
	return withReport(runResult{Mode: modeCounts}, report)
}

func capWarnings(warnings []string, limit int) ([]string, int) {
	total := len(warnings)
	if limit == 0 || total <= limit {
		return warnings, total
	}
	return warnings[:limit], total
}

func outputJSON(out io.Writer, errOut io.Writer, result runResult) {
	encoded, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(errOut, "Error: encode report: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(encoded))
}

func printResult(out io.Writer, errOut io.Writer, result runResult) {
	for _, warning := range result.Warnings {
		fmt.Fprintf(errOut, "Warning: %s\n", warning)
	}
	if result.WarningsTotal > len(result.Warnings) {
		fmt.Fprintf(errOut, "Warning: %d more warnings suppressed\n", result.WarningsTotal-len(result.Warnings))
	}
	if result.Error != "" {
		fmt.Fprintf(errOut, "Error: %s\n", result.Error)
	}
	if len(result.Report) == 0 {
		return
	}

	switch result.Mode {
	case modeRecompute:
		var report recomputeReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Recomputed team totals (%d rows updated)\n", report.RowsUpdated)
	case modeIntegrity:
		var report integrityReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Integrity check: %d foreign key violations, %d team totals drifted\n", report.ForeignKeyViolations, report.TeamTotalsDrift)
	case modeCounts:
		var report countsReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		for _, count := range report.Tables {
			fmt.Fprintf(out, "%-13s %d\n", count.Table, count.Rows)
		}
	}
}
