package proto

import "strings"

// Proto is the protocol version of a request or a response.
type Proto uint8

const (
	Unknown Proto = 0
	HTTP09  Proto = 1 << (iota - 1)
	HTTP10
	HTTP11
	HTTP2
	HTTP3

	HTTP1 = HTTP10 | HTTP11
)

// List contains every version the server is able to recognize.
var List = []Proto{HTTP09, HTTP10, HTTP11, HTTP2, HTTP3}

// String returns the canonical token of the protocol. Empty string is returned for Unknown
// and for combined masks.
func (p Proto) String() string {
	switch p {
	case HTTP09:
		return "HTTP/0.9"
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	case HTTP3:
		return "HTTP/3"
	}

	return ""
}

// Parse recognizes the version token case-insensitively. Short forms without the minor
// version ("HTTP/1", "HTTP/2", "HTTP/3") and explicit ".0" forms are both accepted, however
// the canonical form of HTTP/2 and HTTP/3 has no minor version.
func Parse(token string) Proto {
	const httpScheme = "HTTP/"

	if len(token) <= len(httpScheme) || len(token) > len("HTTP/x.x") {
		return Unknown
	}

	token = strings.ToUpper(token)
	if token[:len(httpScheme)] != httpScheme {
		return Unknown
	}

	switch token[len(httpScheme):] {
	case "0.9":
		return HTTP09
	case "1", "1.0":
		return HTTP10
	case "1.1":
		return HTTP11
	case "2", "2.0":
		return HTTP2
	case "3", "3.0":
		return HTTP3
	}

	return Unknown
}
