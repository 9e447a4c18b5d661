package dds

import "fmt"

// Error codes
const (
	ErrCodeFormat = "FORMAT_ERROR"
	ErrCodeDecode = "DECODE_ERROR"
	ErrCodeBind   = "BIND_ERROR"
)

// Sentinels for errors.Is; any *Error with the same code matches.
var (
	ErrFormat = &Error{Code: ErrCodeFormat}
	ErrDecode = &Error{Code: ErrCodeDecode}
	ErrBind   = &Error{Code: ErrCodeBind}
)

// Error is returned by every failing operation in this package.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on the error code only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func formatError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeFormat, Message: fmt.Sprintf(format, args...)}
}

func decodeError(cause error, format string, args ...any) *Error {
	return &Error{Code: ErrCodeDecode, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func bindError(message string) *Error {
	return &Error{Code: ErrCodeBind, Message: message}
}
