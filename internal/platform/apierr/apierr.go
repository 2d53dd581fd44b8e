package apierr

import "fmt"

// Error is the error type every handler-visible failure is expressed
// as. Status doubles as the wire code in the response envelope; Code is
// the short machine label; Err carries the human message.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(401, "unauthorized", fmt.Errorf(format, args...))
}

// OracleUnreachable is still a 401 but carries a distinct label so the
// client can tell a transport failure (retryable) from a bad credential.
func OracleUnreachable(format string, args ...interface{}) *Error {
	return New(401, "oracle_unreachable", fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(403, "forbidden", fmt.Errorf(format, args...))
}

func BadRequest(format string, args ...interface{}) *Error {
	return New(400, "bad request", fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(404, "not found", fmt.Errorf(format, args...))
}

func MethodNotAllowed(format string, args ...interface{}) *Error {
	return New(405, "method not allowed", fmt.Errorf(format, args...))
}

func Unprocessable(format string, args ...interface{}) *Error {
	return New(422, "unprocessable", fmt.Errorf(format, args...))
}

func ServiceUnavailable(format string, args ...interface{}) *Error {
	return New(503, "service unavailable", fmt.Errorf(format, args...))
}
