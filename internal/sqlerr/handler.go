package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/articles-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// unavailableMessage is returned for database failures that may go away on retry.
const unavailableMessage = "The database is temporarily unavailable, please retry later"

// uniqueConstraintColumn matches "<table>_<column>_key" and "unique_<table>_<column>".
var uniqueConstraintColumn = regexp.MustCompile(`^(?:unique_[^_]+_([a-z0-9]+)|[^_]+_([a-z0-9_]+)_(?:key|ukey))$`)

// clientError describes how a class of data error is reported as a 400.
type clientError struct {
	// action is appended to the singular table name to build the error code.
	action   string
	override bool
	message  func(e *Error) string
	fields   func(e *Error) []errs.FieldError
}

var clientErrors = map[Code]clientError{
	NotNullViolation: {
		action:   "REQUIRED",
		override: true,
		message: func(e *Error) string {
			return fmt.Sprintf("The %s is required", labelOr(e.ColumnName, "field"))
		},
		fields: func(e *Error) []errs.FieldError {
			if e.ColumnName == "" {
				return nil
			}
			return []errs.FieldError{{Field: strings.ToLower(e.ColumnName), Error: "is required"}}
		},
	},
	UniqueViolation: {
		action:   "ALREADY_EXISTS",
		override: true,
		message: func(e *Error) string {
			return fmt.Sprintf("%s with this %s already exists",
				labelOr(singular(e.TableName), "Record"),
				labelOr(uniqueColumn(e.ConstraintName), "identifier"))
		},
	},
	ForeignKeyViolation: {
		action: "NOT_FOUND",
		message: func(e *Error) string {
			return fmt.Sprintf("The referenced %s does not exist", referencedEntity(e))
		},
	},
	CheckViolation: {
		action:   "INVALID",
		override: true,
		message: func(e *Error) string {
			if e.ColumnName == "" {
				return "One or more values do not meet required conditions"
			}
			return fmt.Sprintf("The %s value does not meet required conditions", label(e.ColumnName))
		},
	},
	InvalidTextRepr: {
		action:   "INVALID",
		override: true,
		message:  func(*Error) string { return "One or more values have an invalid format" },
	},
	NumericOutOfRange: {
		action:   "INVALID",
		override: true,
		message:  func(*Error) string { return "One or more values have an invalid format" },
	},
}

// ErrCode reports the mapped Code for err, which may carry either an *Error
// or a driver *pgconn.PgError. It returns Other for anything else.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError into our own *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// HandleError converts a low-level database error into an *errs.HTTPError.
//
// Data violations become 400s with a message safe to show users.
// Connection, resource and operator failures and timeouts become 503.
// ErrNoRows becomes 404. Everything else is a generic 500; the driver text
// never reaches the client. An *errs.HTTPError is returned unchanged.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromPgError(ConvertPgError(pgerr))
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Resource not found", false, nil)
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err), isConnectError(err):
		return errs.NewServiceUnavailableError(unavailableMessage)
	}

	return errs.NewInternalServerError()
}

func fromPgError(e *Error) error {
	if ce, ok := clientErrors[e.Code]; ok {
		code := errorCode(e.TableName, ce.action)

		var fields []errs.FieldError
		if ce.fields != nil {
			fields = ce.fields(e)
		}
		return errs.NewBadRequestError(ce.message(e), ce.override, &code, fields)
	}

	if e.Transient() {
		return errs.NewServiceUnavailableError(unavailableMessage)
	}
	return errs.NewInternalServerError()
}

// errorCode builds "<ENTITY>_<ACTION>", e.g. articles + REQUIRED is
// ARTICLE_REQUIRED.
func errorCode(tableName, action string) string {
	entity := strings.ToUpper(singular(tableName))
	if entity == "" {
		entity = "RECORD"
	}
	return entity + "_" + action
}

// referencedEntity prefers the "<x>_id" column name over the table name.
func referencedEntity(e *Error) string {
	if col := strings.ToLower(e.ColumnName); strings.HasSuffix(col, "_id") {
		return label(strings.TrimSuffix(col, "_id"))
	}
	return labelOr(singular(e.TableName), "record")
}

func uniqueColumn(constraintName string) string {
	m := uniqueConstraintColumn.FindStringSubmatch(constraintName)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func singular(tableName string) string {
	if len(tableName) > 1 {
		return strings.TrimSuffix(tableName, "s")
	}
	return tableName
}

// label turns snake_case into Title Case: "first_name" -> "First Name".
func label(text string) string {
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

func labelOr(text, fallback string) string {
	if text == "" {
		return fallback
	}
	return label(text)
}

func isConnectError(err error) bool {
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
