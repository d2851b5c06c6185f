package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// QueryReport runs a read-only query and renders every value as text.
func (s *Store) QueryReport(ctx context.Context, query string, args ...any) (storage.Table, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Table{}, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.Table{}, fmt.Errorf("run report query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return storage.Table{}, fmt.Errorf("report columns: %w", err)
	}
	table := storage.Table{Columns: columns}
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return storage.Table{}, fmt.Errorf("scan report row: %w", err)
		}
		row := make([]string, len(columns))
		for i, value := range values {
			row[i] = formatValue(value)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return storage.Table{}, fmt.Errorf("iterate report rows: %w", err)
	}
	return table, nil
}

// ExecStatement runs exactly one statement and returns the number of
// affected rows. Input holding several statements is rejected before
// anything runs. Permission checks belong to the caller.
func (s *Store) ExecStatement(ctx context.Context, statement string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	statement, err := SingleStatement(statement)
	if err != nil {
		return 0, err
	}
	if statement == "" {
		return 0, apperrors.New(apperrors.CodeStatementEmpty, "No DML statement entered.")
	}
	result, err := s.db.ExecContext(ctx, statement)
	if err != nil {
		return 0, fmt.Errorf("exec statement: %w", mapConstraintError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("statement rows affected: %w", err)
	}
	return affected, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
