package rawhttp2

import "github.com/smuggledetect/smuggledetect/pkg/header"

// Request is a well-formed HTTP/2 request: method/path/authority/scheme as
// pseudo-headers, plus an ordered regular header list and an optional body.
// Unlike the teacher's Request, Headers is byte-string and duplicate
// preserving; there is no map collapsing repeated header names.
type Request struct {
	Method    string
	Path      string
	Authority string
	Scheme    string
	Headers   header.List
	Body      []byte
	EndStream bool
}

// NewRequest returns a Request with Scheme "https" and EndStream true: the
// stream is closed by the last frame sent, the HEADERS frame when Body is
// empty or otherwise the DATA frame carrying Body.
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Scheme: "https", EndStream: true}
}

// pseudoHeaders returns the four pseudo-header fields in the fixed wire order
// HPACK implementations expect them: method, path, scheme, authority.
func (r *Request) pseudoHeaders() []header.Field {
	return []header.Field{
		header.NewField(":method", r.Method),
		header.NewField(":path", r.Path),
		header.NewField(":scheme", r.Scheme),
		header.NewField(":authority", r.Authority),
	}
}
