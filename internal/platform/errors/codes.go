// Package errors provides structured domain errors shared by the importer,
// console and MCP surfaces.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Import errors
	CodeImportNoSources       Code = "IMPORT_NO_SOURCES"
	CodeImportMissingColumn   Code = "IMPORT_MISSING_COLUMN"
	CodeImportInvalidRow      Code = "IMPORT_INVALID_ROW"
	CodeImportUnreadableInput Code = "IMPORT_UNREADABLE_INPUT"

	// Query errors
	CodeReportUnknown     Code = "REPORT_UNKNOWN"
	CodeFilterInvalid     Code = "FILTER_INVALID"
	CodePageTokenInvalid  Code = "PAGE_TOKEN_INVALID"
	CodeStatementEmpty    Code = "STATEMENT_EMPTY"
	CodeStatementRejected Code = "STATEMENT_REJECTED"

	// Session errors
	CodeLoginEmptyCredentials Code = "LOGIN_EMPTY_CREDENTIALS"
	CodeLoginInvalid          Code = "LOGIN_INVALID"
	CodeLoginUnknownRole      Code = "LOGIN_UNKNOWN_ROLE"
	CodeSessionInvalid        Code = "SESSION_INVALID"
	CodeSessionExpired        Code = "SESSION_EXPIRED"
	CodePermissionDenied      Code = "PERMISSION_DENIED"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeForeignKeyViolated Code = "FOREIGN_KEY_VIOLATED"
	CodeConstraintViolated Code = "CONSTRAINT_VIOLATED"
)

// HTTPStatus maps domain codes to HTTP status codes for the console.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeImportNoSources,
		CodeImportMissingColumn,
		CodeImportInvalidRow,
		CodeFilterInvalid,
		CodePageTokenInvalid,
		CodeStatementEmpty,
		CodeStatementRejected,
		CodeLoginEmptyCredentials,
		CodeLoginUnknownRole:
		return http.StatusBadRequest

	case CodeLoginInvalid,
		CodeSessionInvalid,
		CodeSessionExpired:
		return http.StatusUnauthorized

	case CodePermissionDenied:
		return http.StatusForbidden

	case CodeNotFound,
		CodeReportUnknown:
		return http.StatusNotFound

	case CodeForeignKeyViolated,
		CodeConstraintViolated:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
