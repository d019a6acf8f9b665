package sqlerr

import (
	"fmt"
	"strings"
)

// Code is a coarse classification of a PostgreSQL SQLSTATE.
type Code string

const (
	Other                 Code = "other"
	NotNullViolation      Code = "not_null_violation"
	ForeignKeyViolation   Code = "foreign_key_violation"
	UniqueViolation       Code = "unique_violation"
	CheckViolation        Code = "check_violation"
	ExclusionViolation    Code = "exclusion_violation"
	InvalidTextRepr       Code = "invalid_text_representation"
	NumericOutOfRange     Code = "numeric_value_out_of_range"
	ConnectionException   Code = "connection_exception"
	InsufficientResources Code = "insufficient_resources"
	OperatorIntervention  Code = "operator_intervention"
	UndefinedTable        Code = "undefined_table"
)

// Severity mirrors the severity field of a PostgreSQL error report.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a PostgreSQL error converted into our own vocabulary.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// Transient reports whether retrying the statement later may succeed.
func (e *Error) Transient() bool {
	switch e.Code {
	case ConnectionException, InsufficientResources, OperatorIntervention:
		return true
	}
	return false
}

// MapCode maps a five-character SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	case "22P02":
		return InvalidTextRepr
	case "22003":
		return NumericOutOfRange
	case "42P01":
		return UndefinedTable
	}

	// Whole classes: 08 connection exception, 53 insufficient resources,
	// 57 operator intervention (admin shutdown, query canceled, ...).
	switch {
	case strings.HasPrefix(sqlState, "08"):
		return ConnectionException
	case strings.HasPrefix(sqlState, "53"):
		return InsufficientResources
	case strings.HasPrefix(sqlState, "57"):
		return OperatorIntervention
	}

	return Other
}

// MapSeverity maps the severity string of an error report.
func MapSeverity(severity string) Severity {
	switch s := Severity(strings.ToUpper(severity)); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	}
	return SeverityError
}
