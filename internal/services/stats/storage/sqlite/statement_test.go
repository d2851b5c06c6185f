package sqlite

import (
	"context"
	"testing"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
)

func TestSingleStatementAccepts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "DELETE FROM bans", "DELETE FROM bans"},
		{"terminator", " DELETE FROM bans ;  ", "DELETE FROM bans"},
		{"repeated terminator", "DELETE FROM bans;;", "DELETE FROM bans"},
		{"comment after terminator", "DELETE FROM bans; -- done\n/* really */", "DELETE FROM bans"},
		{"semicolon in string", "UPDATE teams SET team_name = 'a;b'", "UPDATE teams SET team_name = 'a;b'"},
		{"doubled quote", "UPDATE teams SET team_name = 'it''s; fine'", "UPDATE teams SET team_name = 'it''s; fine'"},
		{"double quoted identifier", `UPDATE "teams;x" SET a = 1`, `UPDATE "teams;x" SET a = 1`},
		{"backtick identifier", "UPDATE `teams;x` SET a = 1", "UPDATE `teams;x` SET a = 1"},
		{"bracket identifier", "UPDATE [teams;x] SET a = 1", "UPDATE [teams;x] SET a = 1"},
		{"quote inside bracket", "UPDATE [it's] SET a = 1", "UPDATE [it's] SET a = 1"},
		{"semicolon in comment", "UPDATE teams SET a = 1 -- x; DELETE FROM bans", "UPDATE teams SET a = 1 -- x; DELETE FROM bans"},
		{"semicolon in block comment", "UPDATE teams /* ; */ SET a = 1", "UPDATE teams /* ; */ SET a = 1"},
		{"empty", "  ;  ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SingleStatement(tc.input)
			if err != nil {
				t.Fatalf("single statement: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSingleStatementRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"two statements", "DELETE FROM bans; DELETE FROM picks", "Only one statement may be run at a time."},
		{"statement hidden by bracket quote", "INSERT INTO bans SELECT * FROM bans AS [a'] WHERE 0; DELETE FROM bans; -- '", "Only one statement may be run at a time."},
		{"string after terminator", "DELETE FROM bans; 'x'", "Only one statement may be run at a time."},
		{"bracket after terminator", "DELETE FROM bans; [x]", "Only one statement may be run at a time."},
		{"unterminated string", "UPDATE teams SET team_name = 'x", "Statement has an unterminated quoted value."},
		{"unterminated bracket", "UPDATE [teams SET a = 1", "Statement has an unterminated quoted value."},
		{"unterminated identifier", `UPDATE "teams SET a = 1`, "Statement has an unterminated quoted value."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SingleStatement(tc.input)
			if apperrors.CodeOf(err) != apperrors.CodeStatementRejected {
				t.Fatalf("code = %s, want %s (%v)", apperrors.CodeOf(err), apperrors.CodeStatementRejected, err)
			}
			if apperrors.MessageOf(err) != tc.message {
				t.Fatalf("message = %q, want %q", apperrors.MessageOf(err), tc.message)
			}
		})
	}
}

func TestExecStatementRunsOnlyOneStatement(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.LoadBatch(ctx, sampleBatch()); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	before, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if before["bans"] == 0 {
		t.Fatal("sample batch has no bans")
	}

	_, err = store.ExecStatement(ctx, "INSERT INTO bans SELECT * FROM bans AS [a'] WHERE 0; DELETE FROM bans; -- '")
	if apperrors.CodeOf(err) != apperrors.CodeStatementRejected {
		t.Fatalf("err code = %s, want %s (%v)", apperrors.CodeOf(err), apperrors.CodeStatementRejected, err)
	}
	after, err := store.TableCounts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if after["bans"] != before["bans"] {
		t.Fatalf("bans = %d, want %d", after["bans"], before["bans"])
	}

	affected, err := store.ExecStatement(ctx, "DELETE FROM bans WHERE ban_order = 1;")
	if err != nil {
		t.Fatalf("exec terminated statement: %v", err)
	}
	if affected == 0 {
		t.Fatal("expected a ban to be deleted")
	}
}
