package http

import (
	"net"

	"github.com/oxidar-web/oxidar/http/method"
	"github.com/oxidar-web/oxidar/http/proto"
)

// Headers maps header names to their values. Names are kept exactly as received, so lookups
// are case-sensitive. A repeated header overrides the previous value.
type Headers = map[string]string

// Request represents a single parsed HTTP request. It's constructed once per connection and
// must not be modified after it was handed to a handler.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// URI is the request target exactly as it was received.
	URI string
	// Path is the percent-decoded path part of the URI, without the query.
	Path string
	// Query is the raw query string (everything after the first '?'), if any.
	Query string
	// Proto is the protocol version the client claimed to speak.
	Proto proto.Proto
	// Headers holds header pairs as received.
	Headers Headers
	// Remote holds the remote address of the connection.
	Remote net.Addr
}

// NewRequest returns a request with an empty headers map ready to be filled.
func NewRequest() *Request {
	return &Request{
		Headers: make(Headers),
	}
}

// Header returns the value of the header with exactly the given name.
func (r *Request) Header(key string) (value string, found bool) {
	value, found = r.Headers[key]
	return value, found
}
