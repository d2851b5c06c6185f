package matchimporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// sourceKind identifies the layout of an input file.
type sourceKind string

const (
	kindParticipants sourceKind = "participants"
	kindGames        sourceKind = "games"
)

// source is one configured input file.
type source struct {
	Name string
	Kind sourceKind
	Path string
	XLSX bool
}

var requiredParticipantColumns = []string{
	"gameid", "date", "league", "patch",
	"playerid", "playername", "position",
	"teamid", "teamname", "champion",
	"kills", "deaths", "assists", "cs",
}

var requiredGameColumns = []string{
	"gameid", "date", "league", "patch",
	"t1_id", "t1_name", "t1_kills", "t1_deaths",
	"t2_id", "t2_name", "t2_kills", "t2_deaths",
}

// sheet is a header plus data rows read from one source.
type sheet struct {
	columns map[string]int
	rows    [][]string
}

// row is one data row with header-based cell access.
type row struct {
	line    int
	columns map[string]int
	cells   []string
}

// get returns the trimmed cell under column, or "" when the column or cell is
// missing.
func (r row) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// has reports whether the header carries column.
func (r row) has(column string) bool {
	_, ok := r.columns[column]
	return ok
}

func newSheet(records [][]string) sheet {
	s := sheet{columns: map[string]int{}}
	if len(records) == 0 {
		return s
	}
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, exists := s.columns[name]; !exists {
			s.columns[name] = i
		}
	}
	s.rows = records[1:]
	return s
}

// each yields every data row; line numbers are 1-based and count the header.
func (s sheet) each(fn func(row) error) error {
	for i, cells := range s.rows {
		if blank(cells) {
			continue
		}
		if err := fn(row{line: i + 2, columns: s.columns, cells: cells}); err != nil {
			return err
		}
	}
	return nil
}

func (s sheet) requireColumns(name string, columns []string) error {
	var missing []string
	for _, column := range columns {
		if _, ok := s.columns[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeImportMissingColumn,
		fmt.Sprintf("%s: missing required columns: %s", name, strings.Join(missing, ", ")),
		map[string]string{"source": name, "columns": strings.Join(missing, ",")},
	)
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readSource(src source) (sheet, error) {
	if src.XLSX {
		return readXLSX(src.Path)
	}
	return readCSV(src.Path)
}

// readCSV reads a semicolon separated export.
func readCSV(path string) (sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return sheet{}, apperrors.Wrap(apperrors.CodeImportUnreadableInput, fmt.Sprintf("open %s", path), err)
	}
	defer file.Close()
	return decodeCSV(file, path)
}

func decodeCSV(r io.Reader, name string) (sheet, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sheet{}, apperrors.Wrap(apperrors.CodeImportUnreadableInput, fmt.Sprintf("decode %s", name), err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return sheet{}, apperrors.New(apperrors.CodeImportUnreadableInput, fmt.Sprintf("%s: no header row", name))
	}
	return newSheet(records), nil
}

// readXLSX reads the first worksheet of a workbook.
func readXLSX(path string) (sheet, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return sheet{}, apperrors.Wrap(apperrors.CodeImportUnreadableInput, fmt.Sprintf("open %s", path), err)
	}
	defer book.Close()

	names := book.GetSheetList()
	if len(names) == 0 {
		return sheet{}, apperrors.New(apperrors.CodeImportUnreadableInput, fmt.Sprintf("%s: workbook has no sheets", path))
	}
	records, err := book.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet{}, apperrors.Wrap(apperrors.CodeImportUnreadableInput, fmt.Sprintf("read %s", path), err)
	}
	if len(records) == 0 {
		return sheet{}, apperrors.New(apperrors.CodeImportUnreadableInput, fmt.Sprintf("%s: no header row", path))
	}
	return newSheet(records), nil
}
