package matchimporter

import (
	"strings"
	"testing"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
)

func TestDecodeCSVNormalizesHeader(t *testing.T) {
	input := "\ufeffGameID ; Date;league\ng1;2024-10-03;WLDs\n;;\ng2\n"
	s, err := decodeCSV(strings.NewReader(input), "participants.csv")
	if err != nil {
		t.Fatalf("decodeCSV returned error: %v", err)
	}

	var got []row
	if err := s.each(func(r row) error {
		got = append(got, r)
		return nil
	}); err != nil {
		t.Fatalf("each returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2 (blank rows skipped)", len(got))
	}
	if got[0].get("gameid") != "g1" || got[0].get("date") != "2024-10-03" {
		t.Fatalf("first row = %v", got[0].cells)
	}
	if got[1].line != 4 {
		t.Fatalf("second row line = %d, want 4", got[1].line)
	}
	if got[1].get("league") != "" {
		t.Fatalf("short row league = %q, want empty", got[1].get("league"))
	}
	if got[1].get("missing") != "" || got[1].has("missing") {
		t.Fatal("expected missing column to read as empty")
	}
}

func TestDecodeCSVRequiresHeader(t *testing.T) {
	_, err := decodeCSV(strings.NewReader(""), "games.csv")
	if apperrors.CodeOf(err) != apperrors.CodeImportUnreadableInput {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportUnreadableInput)
	}
}

func TestRequireColumns(t *testing.T) {
	s, err := decodeCSV(strings.NewReader("gameid;date\n"), "games.csv")
	if err != nil {
		t.Fatalf("decodeCSV returned error: %v", err)
	}
	err = s.requireColumns("games.csv", requiredGameColumns)
	if apperrors.CodeOf(err) != apperrors.CodeImportMissingColumn {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportMissingColumn)
	}
	if !strings.Contains(err.Error(), "t1_id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := readCSV(t.TempDir() + "/missing.csv")
	if apperrors.CodeOf(err) != apperrors.CodeImportUnreadableInput {
		t.Fatalf("err code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeImportUnreadableInput)
	}
}
