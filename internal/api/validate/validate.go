package validate

import (
	"strconv"
	"strings"
	"time"
)

// Rule codes reported to clients alongside the failing field.
const (
	CodeBlank     = "BLANK_FIELD"
	CodeEmail     = "INVALID_EMAIL"
	CodeTooShort  = "TOO_SHORT"
	CodeEnum      = "INVALID_ENUM_VALUE"
	CodeDateRange = "INVALID_DATE_RANGE"
)

type ErrField struct {
	Field string `json:"field"`
	Code  string `json:"code"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Append adds f unless the rule passed.
func (e Errs) Append(f *ErrField) Errs {
	if f == nil {
		return e
	}
	return append(e, *f)
}

// Rules. Each is a pure predicate over its input; none touches storage.

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Code: CodeBlank, Msg: "required"}
	}
	return nil
}

// RequiredTime is Required for date fields; the zero time means absent.
func RequiredTime(field string, value time.Time) *ErrField {
	if value.IsZero() {
		return &ErrField{Field: field, Code: CodeBlank, Msg: "required"}
	}
	return nil
}

// Email accepts local@domain with exactly one '@', non-empty sides and
// no whitespace anywhere.
func Email(field, value string) *ErrField {
	fail := &ErrField{Field: field, Code: CodeEmail, Msg: "must be a valid email address"}
	if strings.ContainsAny(value, " \t\r\n") {
		return fail
	}
	at := strings.Index(value, "@")
	if at <= 0 || at != strings.LastIndex(value, "@") || at == len(value)-1 {
		return fail
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if len(value) < min {
		return &ErrField{Field: field, Code: CodeTooShort, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

// OneOf is case-exact: "pending" does not match "PENDING".
func OneOf(field, value string, allowed ...string) *ErrField {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ErrField{Field: field, Code: CodeEnum, Msg: "must be one of " + strings.Join(allowed, ", ")}
}

func DateOrder(field string, start, end time.Time) *ErrField {
	if end.Before(start) {
		return &ErrField{Field: field, Code: CodeDateRange, Msg: "end must not be before start"}
	}
	return nil
}
