package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported     ErrorCode = "NOT_SUPPORTED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxSymbol    = "symbol"
	CtxLine      = "line"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key/value pair to err, wrapping plain errors as internal.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return err
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return code == CodeNotFound
	}
	return false
}

// ResolutionKind names the lookup that failed while populating symbols.
type ResolutionKind string

const (
	KindSuperClass      ResolutionKind = "super class"
	KindInterface       ResolutionKind = "interface"
	KindPackageFunction ResolutionKind = "package function"
	KindPackageVariable ResolutionKind = "package variable"
	KindTypeAlias       ResolutionKind = "type alias"
	KindType            ResolutionKind = "type"
)

// ResolutionError reports a name that could not be found in the symbol table.
// Except for KindType, which callers may downgrade to a fallback, it aborts the run.
type ResolutionError struct {
	Kind ResolutionKind
	FQN  string
	File string
	Line int
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("[%s] %s not found: %s", CodeNotFound, e.Kind, e.FQN)
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s (%s:%d)", msg, e.File, e.Line)
		}
		return fmt.Sprintf("%s (%s)", msg, e.File)
	}
	return msg
}

func (e *ResolutionError) Code() ErrorCode {
	return CodeNotFound
}

func NewResolution(kind ResolutionKind, fqn string) *ResolutionError {
	return &ResolutionError{Kind: kind, FQN: fqn}
}

// AsResolution unwraps err to a *ResolutionError when it holds one.
func AsResolution(err error) (*ResolutionError, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
