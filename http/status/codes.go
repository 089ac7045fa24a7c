package status

import "strconv"

type (
	Code uint16
	// Status is a complete status line tail as it goes on the wire right after the
	// protocol token, e.g. "200 OK".
	Status string
)

// HTTP status codes the framework and its sub-applications commonly respond with.
const (
	OK        Code = 200
	Created   Code = 201
	Accepted  Code = 202
	NoContent Code = 204

	MovedPermanently  Code = 301
	Found             Code = 302
	SeeOther          Code = 303
	NotModified       Code = 304
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308

	BadRequest          Code = 400
	Unauthorized        Code = 401
	Forbidden           Code = 403
	NotFound            Code = 404
	MethodNotAllowed    Code = 405
	RequestTimeout      Code = 408
	Conflict            Code = 409
	Gone                Code = 410
	UnprocessableEntity Code = 422
	TooManyRequests     Code = 429

	InternalServerError     Code = 500
	NotImplemented          Code = 501
	BadGateway              Code = 502
	ServiceUnavailable      Code = 503
	GatewayTimeout          Code = 504
	HTTPVersionNotSupported Code = 505
)

// KnownCodes lists every code Text has a reason phrase for.
var KnownCodes = []Code{
	OK, Created, Accepted, NoContent,
	MovedPermanently, Found, SeeOther, NotModified, TemporaryRedirect, PermanentRedirect,
	BadRequest, Unauthorized, Forbidden, NotFound, MethodNotAllowed, RequestTimeout, Conflict,
	Gone, UnprocessableEntity, TooManyRequests,
	InternalServerError, NotImplemented, BadGateway, ServiceUnavailable, GatewayTimeout,
	HTTPVersionNotSupported,
}

// Text returns the reason phrase for the code. 404 and 500 intentionally carry the
// framework's own phrases.
func Text(code Code) string {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case Accepted:
		return "Accepted"
	case NoContent:
		return "No Content"
	case MovedPermanently:
		return "Moved Permanently"
	case Found:
		return "Found"
	case SeeOther:
		return "See Other"
	case NotModified:
		return "Not Modified"
	case TemporaryRedirect:
		return "Temporary Redirect"
	case PermanentRedirect:
		return "Permanent Redirect"
	case BadRequest:
		return "Bad Request"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "Resource Not Found"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case RequestTimeout:
		return "Request Timeout"
	case Conflict:
		return "Conflict"
	case Gone:
		return "Gone"
	case UnprocessableEntity:
		return "Unprocessable Entity"
	case TooManyRequests:
		return "Too Many Requests"
	case InternalServerError:
		return "Server Error"
	case NotImplemented:
		return "Not Implemented"
	case BadGateway:
		return "Bad Gateway"
	case ServiceUnavailable:
		return "Service Unavailable"
	case GatewayTimeout:
		return "Gateway Timeout"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	default:
		return "Unknown Status Code"
	}
}

// StringCode returns the decimal representation of the code.
func StringCode(code Code) string {
	return strconv.Itoa(int(code))
}

// Line composes the code and its reason phrase into a status line tail.
func Line(code Code) Status {
	return Status(StringCode(code) + " " + Text(code))
}

// Status lines used by the framework itself.
var (
	StatusOK          = Line(OK)
	StatusBadRequest  = Line(BadRequest)
	StatusNotFound    = Line(NotFound)
	StatusServerError = Line(InternalServerError)
	StatusUnavailable = Line(ServiceUnavailable)
)
