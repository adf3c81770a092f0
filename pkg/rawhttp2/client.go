package rawhttp2

import (
	"context"
	"strings"
	"time"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/timing"
)

const defaultStreamTimeout = 5 * time.Second

// Client is the exported C3 surface: connect, send a well-formed or
// deliberately malformed request, read whatever response arrives, close.
// Like rawhttp1.Client it owns exactly one socket for its lifetime — no
// pooling, no reconnect-and-retry, per §5's fresh-connection-per-probe rule.
type Client struct {
	conn   *connection
	target Target
}

// New returns an unconnected Client for target.
func New(target Target) *Client {
	return &Client{target: target}
}

// Connect dials target and completes the h2 TLS+ALPN handshake and initial
// SETTINGS exchange. It must be called exactly once before any Send call.
func (c *Client) Connect(ctx context.Context, opts ConnectOptions) error {
	conn, err := dialTLS(ctx, c.target, opts)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// SendRequest sends a well-formed Request and reads the response, measuring
// elapsed time from immediately before the first frame write to immediately
// after the stream completes or the read deadline fires. The elapsed value
// is set even when err is non-nil: a read timeout is the detector's signal,
// not a failure to surface (§4.3, §5).
//
// Unlike SendMalformedHeaders, this convenience path strips the
// connection-specific headers H2 forbids and keeps only the first value for
// any duplicate name, the way the teacher's Converter normalizes an H1
// request into H2 headers. It exists for baseline requests, which are
// expected to be ordinary — probes that need byte-exact control over
// duplicates or forbidden headers go through SendMalformedHeaders instead.
func (c *Client) SendRequest(req *Request, timeout time.Duration) (*Response, error) {
	return c.send(req.pseudoHeaders(), normalizeHeaders(req.Headers), req.Body, req.EndStream, timeout)
}

// connectionSpecificHeaders lists the header names RFC 7540 §8.1.2.2
// forbids in an H2 request; grounded on the teacher's
// Converter.isConnectionSpecificHeader.
var connectionSpecificHeaders = map[string]bool{
	"connection":        true,
	"keep-alive":        true,
	"proxy-connection":  true,
	"transfer-encoding": true,
	"upgrade":           true,
	"te":                true,
}

func normalizeHeaders(in header.List) header.List {
	var out header.List
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		name := strings.ToLower(f.NameString())
		if connectionSpecificHeaders[name] || seen[name] {
			continue
		}
		seen[name] = true
		out.AddField(f)
	}
	return out
}

// SendMalformedHeaders sends an explicit pseudo-header set and header list
// without any normalization: duplicate pseudo-headers, connection-specific
// headers, and header names or values containing arbitrary bytes (including
// CRLF, for the custom_header_name placement) all reach the wire unchanged.
// This is the method the H2.CL/H2.TE probes use to place their smuggled
// directive according to h2_payload_placement.
func (c *Client) SendMalformedHeaders(pseudo []header.Field, headers header.List, data []byte, endStream bool, timeout time.Duration) (*Response, error) {
	return c.send(pseudo, headers, data, endStream, timeout)
}

func (c *Client) send(pseudo []header.Field, headers header.List, body []byte, endStream bool, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = defaultStreamTimeout
	}
	if c.conn == nil {
		return nil, errors.NewProtocolError("send called before Connect", nil)
	}

	st := c.conn.newStream()
	resp := st.response
	resp.NegotiatedProtocol = c.conn.negotiatedProtocol
	resp.TLSVersion = c.conn.tlsVersion
	resp.TLSCipherSuite = c.conn.tlsCipherSuite
	resp.TLSServerName = c.conn.tlsServerName
	resp.ConnectMetrics = c.conn.connectMetrics

	clock := timing.StartClock()

	headersEndStream := endStream && len(body) == 0
	block, err := c.conn.encodeHeaderBlock(pseudo, headers)
	if err != nil {
		resp.ElapsedSeconds = clock.Elapsed().Seconds()
		return resp, err
	}
	if err := c.conn.sendHeaders(st.id, block, headersEndStream); err != nil {
		resp.ElapsedSeconds = clock.Elapsed().Seconds()
		return resp, err
	}
	if !headersEndStream {
		if err := c.conn.sendData(st.id, body, endStream); err != nil {
			resp.ElapsedSeconds = clock.Elapsed().Seconds()
			return resp, err
		}
	}

	c.conn.conn.SetReadDeadline(time.Now().Add(timeout))
	err = c.conn.readUntilComplete(st)
	c.conn.conn.SetReadDeadline(time.Time{})

	resp.ElapsedSeconds = clock.Elapsed().Seconds()
	return resp, err
}

// Close closes the connection's socket after sending GOAWAY. A Client is
// not reusable after Close; a fresh Client and Connect call is required for
// the next probe.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.close()
}
