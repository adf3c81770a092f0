package rawhttp1

import (
	"bytes"

	"github.com/smuggledetect/smuggledetect/pkg/header"
)

// Request is a byte-exact HTTP/1.1 request. Serialize emits exactly what
// the caller put in it: no Host injection, no Content-Length computation,
// no header normalization. Detectors rely on this to send RFC 7230
// violations deliberately.
type Request struct {
	Method      string
	Path        string
	HTTPVersion string // defaults to "HTTP/1.1" if empty
	Headers     header.List
	Body        []byte
}

// NewRequest builds a Request with the default HTTP version.
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, HTTPVersion: "HTTP/1.1"}
}

// Serialize renders the request exactly as it will be written to the wire:
// `METHOD SP PATH SP VERSION CRLF`, each header as given (order, case, and
// surrounding whitespace preserved), a blank-line terminator, then the body
// verbatim.
func (r *Request) Serialize() []byte {
	version := r.HTTPVersion
	if version == "" {
		version = "HTTP/1.1"
	}

	var buf bytes.Buffer
	buf.WriteString(r.Method)
	buf.WriteByte(' ')
	buf.WriteString(r.Path)
	buf.WriteByte(' ')
	buf.WriteString(version)
	buf.WriteString("\r\n")

	for _, f := range r.Headers {
		buf.Write(f.Name)
		buf.WriteString(": ")
		buf.Write(f.Value)
		buf.WriteString("\r\n")
	}

	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes()
}
