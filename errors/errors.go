// Package errors classifies every failure of the server along two axes: the Kind tells
// what went wrong and the Severity tells how far the failure propagates.
//
// Fatal failures stop the server. Abortions drop the connection silently. Normal failures
// are the only ones ever reaching the client, as an error response.
package errors

import (
	stderrors "errors"
	"fmt"
	"html"

	"github.com/oxidar-web/oxidar/http"
	"github.com/oxidar-web/oxidar/http/proto"
	"github.com/oxidar-web/oxidar/http/status"
)

type Kind uint8

const (
	Untyped Kind = iota
	IO
	NotFound
	BadRequest
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case Untyped:
		return "Untyped"
	case IO:
		return "IO"
	case NotFound:
		return "404"
	case BadRequest:
		return "400"
	case Unavailable:
		return "503"
	default:
		return "Unknown"
	}
}

// Status returns the status line every error of the kind is answered with.
func (k Kind) Status() status.Status {
	switch k {
	case NotFound:
		return status.StatusNotFound
	case BadRequest:
		return status.StatusBadRequest
	case Unavailable:
		return status.StatusUnavailable
	default:
		return status.StatusServerError
	}
}

const defaultNotFoundMessage = "Resource Not Found"

// Error is a failure of a known kind. Err is set for IO errors only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Untypedf returns an error of no particular kind.
func Untypedf(format string, args ...any) *Error {
	return &Error{Kind: Untyped, Message: fmt.Sprintf(format, args...)}
}

// FromIO wraps an I/O error.
func FromIO(err error) *Error {
	return &Error{Kind: IO, Err: err}
}

// NewNotFound returns a 404 error. Empty message falls back to the default one.
func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// BadRequestf returns an error caused by a malformed request.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: BadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unavailablef returns an error telling the server can't take the request right now.
func Unavailablef(format string, args ...any) *Error {
	return &Error{Kind: Unavailable, Message: fmt.Sprintf(format, args...)}
}

// Text returns the human-readable message, without the kind marker.
func (e *Error) Text() string {
	switch {
	case e.Kind == IO && e.Err != nil:
		return e.Err.Error()
	case e.Kind == NotFound && len(e.Message) == 0:
		return defaultNotFoundMessage
	}

	return e.Message
}

func (e *Error) Error() string {
	return "(" + e.Kind.String() + ") " + e.Text()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the status line derived from the error kind.
func (e *Error) Status() status.Status {
	return e.Kind.Status()
}

type Severity uint8

const (
	Normal Severity = iota
	Abortion
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Abortion:
		return "Abortion"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Failure is an Error classified by severity.
type Failure struct {
	Severity Severity
	Err      *Error
}

// NewFatal marks the error as one the server can't continue with.
func NewFatal(err *Error) *Failure {
	return &Failure{Severity: Fatal, Err: err}
}

// NewAbortion marks the error as one that drops the connection with no response.
func NewAbortion(err *Error) *Failure {
	return &Failure{Severity: Abortion, Err: err}
}

// NewNormal marks the error as a user-facing one.
func NewNormal(err *Error) *Failure {
	return &Failure{Severity: Normal, Err: err}
}

// FatalIO wraps an I/O error as a fatal failure.
func FatalIO(err error) *Failure {
	return NewFatal(FromIO(err))
}

// AbortIO wraps an I/O error as an abortion.
func AbortIO(err error) *Failure {
	return NewAbortion(FromIO(err))
}

// HTTP404 returns a user-facing 404 failure.
func HTTP404(message string) *Failure {
	return NewNormal(NewNotFound(message))
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Severity.String() + " Error"
	}

	return f.Severity.String() + " Error " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	if f.Err == nil {
		return nil
	}

	return f.Err
}

// IsFatal reports whether the failure must stop the server.
func (f *Failure) IsFatal() bool {
	return f.Severity == Fatal
}

// ToResponse translates a Normal failure into an error response. Fatal failures and
// abortions are never answered, so false is returned for them.
func (f *Failure) ToResponse() (*http.Response, bool) {
	if f.Severity != Normal {
		return nil, false
	}

	return &http.Response{
		Proto:   proto.HTTP11,
		Status:  f.Err.Status(),
		Content: http.HTML("<h1 style='text-align: center'>" + html.EscapeString(f.Err.Text()) + "</h1>"),
	}, true
}

// Classify turns any error into a Failure. Failures are returned as is, bare Errors become
// Normal ones and everything else is considered a Normal untyped error. Nil stays nil. A
// failure carrying no error keeps its severity and gets an untyped one.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}

	var failure *Failure
	if stderrors.As(err, &failure) {
		if failure.Err == nil {
			return &Failure{Severity: failure.Severity, Err: Untypedf("Unknown failure.")}
		}

		return failure
	}

	var e *Error
	if stderrors.As(err, &e) {
		return NewNormal(e)
	}

	return NewNormal(&Error{Kind: Untyped, Message: err.Error(), Err: err})
}
