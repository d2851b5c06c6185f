package console

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage/sqlite"
)

const (
	verbInsert = "INSERT"
	verbUpdate = "UPDATE"
	verbDelete = "DELETE"
)

// Statement is a single data modification statement accepted for a role.
type Statement struct {
	Verb string
	SQL  string
}

// PrepareStatement checks that input is one INSERT, UPDATE or DELETE
// statement the role may run. The terminating semicolon is dropped.
func PrepareStatement(role Role, input string) (Statement, error) {
	if !role.CanModify() {
		return Statement{}, apperrors.New(apperrors.CodePermissionDenied, "You do not have privileges to modify data.")
	}
	sql := strings.TrimSpace(input)
	if sql == "" {
		return Statement{}, apperrors.New(apperrors.CodeStatementEmpty, "No DML statement entered.")
	}
	sql, err := sqlite.SingleStatement(sql)
	if err != nil {
		return Statement{}, err
	}
	if sql == "" {
		return Statement{}, apperrors.New(apperrors.CodeStatementEmpty, "No DML statement entered.")
	}
	verb := firstKeyword(sql)
	switch verb {
	case verbInsert, verbUpdate, verbDelete:
	default:
		return Statement{}, apperrors.New(apperrors.CodeStatementRejected, "Only INSERT, UPDATE or DELETE statements are allowed.")
	}
	if !role.Allows(verb) {
		return Statement{}, apperrors.New(apperrors.CodePermissionDenied, fmt.Sprintf("%s may not run %s statements.", role, verb))
	}
	return Statement{Verb: verb, SQL: sql}, nil
}

// firstKeyword returns the upper-cased first word after leading comments.
func firstKeyword(sql string) string {
	for {
		sql = strings.TrimSpace(sql)
		switch {
		case strings.HasPrefix(sql, "--"):
			end := strings.IndexByte(sql, '\n')
			if end < 0 {
				return ""
			}
			sql = sql[end+1:]
		case strings.HasPrefix(sql, "/*"):
			end := strings.Index(sql, "*/")
			if end < 0 {
				return ""
			}
			sql = sql[end+2:]
		default:
			end := strings.IndexFunc(sql, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if end < 0 {
				end = len(sql)
			}
			return strings.ToUpper(sql[:end])
		}
	}
}
