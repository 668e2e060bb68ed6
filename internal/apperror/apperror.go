package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	BadRequest Code = "BAD_REQUEST"
	NotFound   Code = "NOT_FOUND"
	Internal   Code = "INTERNAL"
	Conflict   Code = "CONFLICT"

	NetworkFailure Code = "NETWORK_FAILURE"
	FormatMismatch Code = "FORMAT_MISMATCH"
	ParseError     Code = "PARSE_ERROR"
	InvalidQuery   Code = "INVALID_QUERY"
	DivisionByZero Code = "DIVISION_BY_ZERO"
	InvalidRecord  Code = "INVALID_RECORD"
)

type AppError struct {
	code    Code
	message string
	err     error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches a code to an underlying error. The cause stays reachable
// through errors.Is / errors.As.
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *AppError) Unwrap() error   { return e.err }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest, InvalidQuery:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case NetworkFailure, FormatMismatch, ParseError:
		return http.StatusBadGateway
	case DivisionByZero, InvalidRecord:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return false
		}
		if ae.code == code {
			return true
		}
		err = ae.err
	}
	return false
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// Internal when there is none.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.code
	}
	return Internal
}
