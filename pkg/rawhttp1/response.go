package rawhttp1

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/smuggledetect/smuggledetect/pkg/buffer"
	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/timing"
)

const maxHeaderBytes = 64 * 1024

// Response is a parsed HTTP/1.1 response, preserving header order/case and
// carrying the connection metadata a Finding needs alongside its timing.
type Response struct {
	StatusLine  string
	StatusCode  int
	Reason      string
	HTTPVersion string
	Headers     header.List
	Body        *buffer.Buffer
	Raw         *buffer.Buffer
	BodyBytes   int64
	RawBytes    int64

	// ElapsedSeconds is set by the caller (Client.SendRequest) immediately
	// around the write/read pair; response.go itself never touches the clock.
	ElapsedSeconds float64

	// ConnectMetrics carries the DNS/TCP/TLS phase timings from the Connect
	// call that preceded this request, for diagnostic reporting alongside
	// ElapsedSeconds.
	ConnectMetrics timing.Metrics

	// MultipleContentLength records the anomaly of a response carrying more
	// than one Content-Length header with differing values. Per spec §4.2
	// this is recorded, never rejected.
	MultipleContentLength bool

	// Connection metadata, supplementing the distilled spec per SPEC_FULL.md.
	ConnectedAddr      string
	NegotiatedProtocol string
	TLSVersion         string
	TLSCipherSuite     string
	TLSServerName      string
}

func newResponse(bodyMemLimit int64) *Response {
	return &Response{
		Body: buffer.New(bodyMemLimit),
		Raw:  buffer.New(bodyMemLimit + 1024*1024),
	}
}

func readResponse(r *bufio.Reader, resp *Response, method string) error {
	statusLine, err := readLine(r)
	if err != nil {
		return errors.NewProtocolError("reading status line", err)
	}
	resp.StatusLine = statusLine
	if _, err := resp.Raw.Write([]byte(statusLine + "\r\n")); err != nil {
		return err
	}

	if err := parseStatusLine(statusLine, resp); err != nil {
		return err
	}

	if err := readHeaders(r, resp); err != nil {
		return err
	}

	return readBody(r, resp, method)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], nil
	}
	return strings.TrimRight(line, "\n"), nil
}

func parseStatusLine(statusLine string, resp *Response) error {
	parts := strings.SplitN(statusLine, " ", 3)
	if len(parts) < 2 {
		return errors.NewProtocolError("invalid status line", nil)
	}
	resp.HTTPVersion = parts[0]
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return errors.NewProtocolError("invalid status code", err)
	}
	resp.StatusCode = code
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return nil
}

func readHeaders(r *bufio.Reader, resp *Response) error {
	total := 0

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return errors.NewProtocolError("reading headers", err)
		}

		total += len(line)
		if total > maxHeaderBytes {
			return errors.NewProtocolError("headers exceed maximum size", nil)
		}

		if _, err := resp.Raw.Write([]byte(line)); err != nil {
			return err
		}

		if line == "\r\n" || line == "\n" {
			break
		}

		trimmed := strings.TrimRight(line, "\r\n")

		// Header continuation (RFC 7230 §3.2.4 obs-fold): append to the
		// previous value rather than starting a new field.
		if (strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t")) && len(resp.Headers) > 0 {
			last := len(resp.Headers) - 1
			merged := resp.Headers[last].ValueString() + " " + strings.TrimSpace(trimmed)
			resp.Headers[last].Value = []byte(merged)
			continue
		}

		name, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if strings.EqualFold(name, "Content-Length") {
			if existing, found := resp.Headers.Get("Content-Length"); found && existing != value {
				resp.MultipleContentLength = true
			}
		}

		resp.Headers.Add(name, value)
	}

	return nil
}

func readBody(r *bufio.Reader, resp *Response, method string) error {
	te, _ := resp.Headers.Get("Transfer-Encoding")
	cl, hasCL := resp.Headers.Get("Content-Length")

	// RFC 9110 §6.4.1: 1xx/204/304 and responses to HEAD carry no body,
	// unless (RFC violation) the server actually sent one anyway — peek
	// buffered data before deciding to skip.
	if method == "HEAD" ||
		(resp.StatusCode >= 100 && resp.StatusCode < 200) ||
		resp.StatusCode == 204 || resp.StatusCode == 304 {
		if r.Buffered() == 0 {
			return nil
		}
	}

	switch {
	case strings.EqualFold(header.LastToken(te), "chunked"):
		return readChunkedBody(r, resp)
	case hasCL:
		length, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil {
			return errors.NewProtocolError("invalid content-length", err)
		}
		if length < 0 {
			return errors.NewProtocolError("negative content-length", nil)
		}
		return readFixedBody(r, length, resp)
	default:
		return readUntilClose(r, resp)
	}
}

func readFixedBody(r *bufio.Reader, length int64, resp *Response) error {
	if length <= 0 {
		return nil
	}

	n, err := io.CopyN(io.MultiWriter(resp.Body, resp.Raw), r, length)
	resp.BodyBytes += n
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// Server sent fewer bytes than Content-Length claimed. Protocol
			// violation; accept the partial read, the detector needs to see it.
			return nil
		}
		return errors.NewProtocolError("reading fixed body", err)
	}

	if buffered := r.Buffered(); buffered > 0 {
		if peek, err := r.Peek(minInt(buffered, 5)); err == nil && string(peek) == "HTTP/" {
			return nil
		}
	}

	return nil
}

func readUntilClose(r *bufio.Reader, resp *Response) error {
	n, err := io.Copy(io.MultiWriter(resp.Body, resp.Raw), r)
	resp.BodyBytes += n
	if err != nil && err != io.EOF {
		return errors.NewProtocolError("reading until close", err)
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
