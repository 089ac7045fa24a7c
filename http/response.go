package http

import (
	"io"

	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/oxidar-web/oxidar/http/proto"
	"github.com/oxidar-web/oxidar/http/status"
)

type ContentType uint8

const (
	ContentHTML ContentType = iota
	ContentJSON
)

func (c ContentType) String() string {
	switch c {
	case ContentHTML:
		return "html"
	case ContentJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Content is the response body tagged with its kind.
type Content struct {
	Type ContentType
	Body string
}

// HTML returns an HTML content.
func HTML(body string) Content {
	return Content{Type: ContentHTML, Body: body}
}

// JSON returns a JSON content of an already serialized document.
func JSON(raw string) Content {
	return Content{Type: ContentJSON, Body: raw}
}

// Marshal serializes the model into a JSON content.
func Marshal(model any) (Content, error) {
	data, err := json.ConfigCompatibleWithStandardLibrary.Marshal(model)
	if err != nil {
		return Content{}, err
	}

	return JSON(uf.B2S(data)), nil
}

// Response is what a sub-application answers with. It's serialized exactly once and
// discarded afterwards.
type Response struct {
	Proto   proto.Proto
	Status  status.Status
	Content Content
}

// Respond returns an HTTP/1.1 response with the status line derived from the code.
func Respond(code status.Code, content Content) *Response {
	return &Response{
		Proto:   proto.HTTP11,
		Status:  status.Line(code),
		Content: content,
	}
}

// OK is a shorthand for a 200 OK response with an HTML body.
func OK(body string) *Response {
	return Respond(status.OK, HTML(body))
}

// AppendTo serializes the response in the form of
//
//	VERSION SP STATUS CRLF CRLF BODY
//
// No response headers are ever emitted. Responses with no protocol set are serialized
// as HTTP/1.1.
func (r *Response) AppendTo(buff []byte) []byte {
	protocol := r.Proto
	if protocol.String() == "" {
		protocol = proto.HTTP11
	}

	buff = append(buff, protocol.String()...)
	buff = append(buff, ' ')
	buff = append(buff, r.Status...)
	buff = append(buff, "\r\n\r\n"...)

	return append(buff, r.Content.Body...)
}

// Bytes returns the serialized response.
func (r *Response) Bytes() []byte {
	return r.AppendTo(make([]byte, 0, len("HTTP/x.x ")+len(r.Status)+4+len(r.Content.Body)))
}

// WriteTo writes the serialized response into the writer.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
