package models

import (
	"errors"
	"net/http"
)

type RestCode int

const (
	CodeSuccess             RestCode = 0
	CodeServerError         RestCode = 1
	CodeInvalidMobile       RestCode = 2
	CodeOverFrequency       RestCode = 3
	CodeIncorrect           RestCode = 4
	CodeExpired             RestCode = 5
	CodeEmptyName           RestCode = 6
	CodeUserNotExist        RestCode = 7
	CodeUserForbidden       RestCode = 8
	CodePasswordIncorrect   RestCode = 9
	CodeUserAlreadyExists   RestCode = 10
	CodeSessionExpired      RestCode = 11
	CodeSessionNotScanned   RestCode = 12
	CodeSessionNotConfirmed RestCode = 13
)

var codeMessages = map[RestCode]string{
	CodeSuccess:             "success",
	CodeServerError:         "server error",
	CodeInvalidMobile:       "invalid mobile",
	CodeOverFrequency:       "send code over frequency",
	CodeIncorrect:           "code incorrect",
	CodeExpired:             "code expired",
	CodeEmptyName:           "name or password is empty",
	CodeUserNotExist:        "user not exist",
	CodeUserForbidden:       "user forbidden",
	CodePasswordIncorrect:   "password incorrect",
	CodeUserAlreadyExists:   "user already exists",
	CodeSessionExpired:      "session expired",
	CodeSessionNotScanned:   "session not scanned",
	CodeSessionNotConfirmed: "session not confirmed",
}

func (c RestCode) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return codeMessages[CodeServerError]
}

// HTTPStatus is the status the REST layer answers with for c.
func (c RestCode) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidMobile, CodeEmptyName, CodeIncorrect, CodeExpired,
		CodeSessionNotScanned, CodeSessionNotConfirmed:
		return http.StatusBadRequest
	case CodePasswordIncorrect:
		return http.StatusUnauthorized
	case CodeUserForbidden:
		return http.StatusForbidden
	case CodeUserNotExist:
		return http.StatusNotFound
	case CodeUserAlreadyExists:
		return http.StatusConflict
	case CodeSessionExpired:
		return http.StatusGone
	case CodeOverFrequency:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// CodeError is the only error kind services hand back to callers.
type CodeError struct {
	Code RestCode
}

func (e *CodeError) Error() string { return e.Code.Message() }

// Is makes errors.Is match on the code rather than the pointer.
func (e *CodeError) Is(target error) bool {
	var t *CodeError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrServerError         = &CodeError{Code: CodeServerError}
	ErrInvalidMobile       = &CodeError{Code: CodeInvalidMobile}
	ErrOverFrequency       = &CodeError{Code: CodeOverFrequency}
	ErrCodeIncorrect       = &CodeError{Code: CodeIncorrect}
	ErrCodeExpired         = &CodeError{Code: CodeExpired}
	ErrEmptyName           = &CodeError{Code: CodeEmptyName}
	ErrUserNotExist        = &CodeError{Code: CodeUserNotExist}
	ErrUserForbidden       = &CodeError{Code: CodeUserForbidden}
	ErrPasswordIncorrect   = &CodeError{Code: CodePasswordIncorrect}
	ErrUserAlreadyExists   = &CodeError{Code: CodeUserAlreadyExists}
	ErrSessionExpired      = &CodeError{Code: CodeSessionExpired}
	ErrSessionNotScanned   = &CodeError{Code: CodeSessionNotScanned}
	ErrSessionNotConfirmed = &CodeError{Code: CodeSessionNotConfirmed}
)

// CodeOf maps err onto a RestCode. Anything that is not a CodeError is a
// server error.
func CodeOf(err error) RestCode {
	if err == nil {
		return CodeSuccess
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeServerError
}

// RestResult is the JSON envelope every endpoint answers with.
type RestResult struct {
	Code    RestCode `json:"code"`
	Message string   `json:"message"`
	Result  any      `json:"result,omitempty"`
}

func OK(result any) RestResult {
	return RestResult{Code: CodeSuccess, Message: CodeSuccess.Message(), Result: result}
}

func Fail(err error) RestResult {
	code := CodeOf(err)
	return RestResult{Code: code, Message: code.Message()}
}
