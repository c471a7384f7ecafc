package tutor

import "fmt"

type ErrorCode string

const (
	// ErrorUnsupportedInput rejects the request before any collaborator is
	// called (bad audio container, empty upload).
	ErrorUnsupportedInput ErrorCode = "UNSUPPORTED_INPUT"
	// ErrorTranscription is the only collaborator failure that is terminal
	// for the whole request.
	ErrorTranscription ErrorCode = "TRANSCRIPTION_FAILED"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("tutor: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("tutor: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
