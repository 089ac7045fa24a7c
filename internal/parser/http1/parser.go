package http1

import (
	"bufio"
	"bytes"
	"io"

	"github.com/indigo-web/utils/uf"
	"github.com/oxidar-web/oxidar/config"
	"github.com/oxidar-web/oxidar/errors"
	"github.com/oxidar-web/oxidar/http"
	"github.com/oxidar-web/oxidar/http/method"
	"github.com/oxidar-web/oxidar/http/proto"
	"github.com/oxidar-web/oxidar/internal/uridecode"
)

var headerSeparator = []byte(": ")

// Parser is a line-based requests parser. It consumes the stream until the empty line
// terminating the headers section and never touches anything past it, as request bodies
// aren't supported.
//
// Every error it returns is an *errors.Failure: malformed requests are Normal ones (the client
// deserves a 400), while a stream ending or failing prematurely is an abortion, as there's
// nobody left to respond to.
type Parser struct {
	reader        *bufio.Reader
	limits        config.Limits
	state         parserState
	request       *http.Request
	line          []byte
	headersNumber int
}

func NewParser(reader *bufio.Reader, limits config.Limits) *Parser {
	return &Parser{
		reader: reader,
		limits: limits,
		state:  eRequestLine,
	}
}

// Parse reads exactly one request. In case of an error no request is returned, even if the
// request line was already parsed.
func (p *Parser) Parse() (*http.Request, error) {
	defer p.reset()

	for {
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}

		switch p.state {
		case eRequestLine:
			if len(line) == 0 {
				// RFC 9112, 2.2: at least one empty line received prior to the
				// request-line SHOULD be ignored
				continue
			}

			if p.request, err = parseRequestLine(line); err != nil {
				return nil, err
			}

			p.state = eHeaders
		case eHeaders:
			if len(line) == 0 {
				return p.request, nil
			}

			p.headersNumber++
			if p.headersNumber > p.limits.MaxHeaders {
				return nil, errors.NewNormal(errors.BadRequestf("Malformed Request: Too many headers."))
			}

			sep := bytes.Index(line, headerSeparator)
			if sep == -1 {
				return nil, errors.NewNormal(errors.BadRequestf(
					"Malformed Request: Header \"%s\" could not be parsed.", line,
				))
			}

			p.request.Headers[string(line[:sep])] = string(line[sep+len(headerSeparator):])
		}
	}
}

func (p *Parser) reset() {
	p.state = eRequestLine
	p.request = nil
	p.line = p.line[:0]
	p.headersNumber = 0
}

// readLine returns the next line without its line terminator (either LF or CRLF). The
// returned slice is valid until the next call only.
func (p *Parser) readLine() ([]byte, error) {
	p.line = p.line[:0]

	for {
		chunk, err := p.reader.ReadSlice('\n')
		if len(p.line)+len(chunk) > p.limits.MaxLineLength+len("\r\n") {
			return nil, errTooLong()
		}

		switch err {
		case nil:
			if len(p.line) > 0 {
				p.line = append(p.line, chunk...)
				chunk = p.line
			}

			return p.limitLine(trimEOL(chunk))
		case bufio.ErrBufferFull:
			p.line = append(p.line, chunk...)
		case io.EOF:
			p.line = append(p.line, chunk...)
			if len(p.line) == 0 {
				return nil, errors.NewAbortion(errors.Untypedf("No data found in request."))
			}

			// the last line isn't terminated, however it still must be processed. The
			// next call reports the end of the stream
			return p.limitLine(trimEOL(p.line))
		default:
			return nil, errors.AbortIO(err)
		}
	}
}

// limitLine checks the line length with the terminator already stripped, so that LF and
// CRLF terminated lines are limited equally.
func (p *Parser) limitLine(line []byte) ([]byte, error) {
	if len(line) > p.limits.MaxLineLength {
		return nil, errTooLong()
	}

	return line, nil
}

func errTooLong() error {
	return errors.NewNormal(errors.BadRequestf("Malformed Request: Line is too long."))
}

func trimEOL(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}

	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	return line
}

func parseRequestLine(line []byte) (*http.Request, error) {
	tokens := bytes.Fields(line)

	switch len(tokens) {
	case 0:
		return nil, malformed("Method could not be found.")
	case 1:
		return nil, malformed("URI could not be found.")
	case 2:
		return nil, malformed("HTTP version could not be found.")
	case 3:
	default:
		return nil, malformed("Items found after version.")
	}

	request := http.NewRequest()

	request.Method = method.Parse(uf.B2S(tokens[0]))
	if request.Method == method.Unknown {
		return nil, errors.NewNormal(errors.BadRequestf(
			"Could not parse request method string \"%s\".", tokens[0],
		))
	}

	request.Proto = proto.Parse(uf.B2S(tokens[2]))
	if request.Proto == proto.Unknown {
		return nil, errors.NewNormal(errors.BadRequestf(
			"Could not parse request version string \"%s\".", tokens[2],
		))
	}

	request.URI = string(tokens[1])
	path := tokens[1]
	if query := bytes.IndexByte(path, '?'); query != -1 {
		request.Query = request.URI[query+1:]
		path = path[:query]
	}

	decoded, err := uridecode.Decode(path, nil)
	if err != nil {
		return nil, errors.NewNormal(errors.BadRequestf("Malformed Request: URI \"%s\" could not be decoded.", request.URI))
	}

	request.Path = string(decoded)

	return request, nil
}

func malformed(reason string) error {
	return errors.NewNormal(errors.BadRequestf("Malformed Request: %s", reason))
}
