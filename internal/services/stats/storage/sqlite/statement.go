package sqlite

import (
	"strings"

	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
)

// SingleStatement returns sql without its terminating semicolon. It follows
// SQLite's lexical rules for string literals, quoted identifiers ("x", `x`
// and [x]) and comments, and rejects input holding more than one statement.
// Comments and further semicolons after the terminator are allowed.
func SingleStatement(sql string) (string, error) {
	end := -1
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			next, ok := skipQuoted(sql, i, c, true)
			if !ok {
				return "", unterminatedQuote()
			}
			if end >= 0 {
				return "", multipleStatements()
			}
			i = next
		case c == '[':
			next, ok := skipQuoted(sql, i, ']', false)
			if !ok {
				return "", unterminatedQuote()
			}
			if end >= 0 {
				return "", multipleStatements()
			}
			i = next
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			nl := strings.IndexByte(sql[i:], '\n')
			if nl < 0 {
				i = len(sql)
			} else {
				i += nl + 1
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			// An unterminated block comment runs to the end of input.
			close := strings.Index(sql[i+2:], "*/")
			if close < 0 {
				i = len(sql)
			} else {
				i += close + 4
			}
		case c == ';':
			if end < 0 {
				end = i
			}
			i++
		case isSpace(c):
			i++
		default:
			if end >= 0 {
				return "", multipleStatements()
			}
			i++
		}
	}
	if end >= 0 {
		sql = sql[:end]
	}
	return strings.TrimSpace(sql), nil
}

// skipQuoted returns the index just past the token opened at sql[start] and
// closed by closer. Doubled closers are escapes when doubling is set.
func skipQuoted(sql string, start int, closer byte, doubling bool) (int, bool) {
	for i := start + 1; i < len(sql); i++ {
		if sql[i] != closer {
			continue
		}
		if doubling && i+1 < len(sql) && sql[i+1] == closer {
			i++
			continue
		}
		return i + 1, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func multipleStatements() error {
	return apperrors.New(apperrors.CodeStatementRejected, "Only one statement may be run at a time.")
}

func unterminatedQuote() error {
	return apperrors.New(apperrors.CodeStatementRejected, "Statement has an unterminated quoted value.")
}
