package serrors

import "fmt"

// Error is a coded error used across infrastructure packages so that
// callers can match on a stable code instead of message text.
type Error struct {
	Code    string
	Message string
	Detail  string
}

func NewError(code, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
}

func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// WithDetail returns a copy carrying extra detail; the code stays stable
// so errors.Is against the original still matches.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Detail: detail}
}
