// Package rawhttp1 implements C2: a raw HTTP/1.1 client that emits
// byte-exact request streams (including RFC 7230 violations) and parses
// responses without the normalization net/http applies. Adapted from the
// teacher's pkg/client and the connect half of pkg/transport; see
// DESIGN.md.
package rawhttp1

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/timing"
	"github.com/smuggledetect/smuggledetect/pkg/tlsconfig"
	"github.com/smuggledetect/smuggledetect/pkg/tlsprovider"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultBodyMemLimit   = 4 * 1024 * 1024
)

// Target identifies the server a Client connects to.
type Target struct {
	Scheme string // "http" or "https"
	Host   string
	Port   int
}

// ConnectOptions controls connection establishment. Unlike the teacher's
// client.Options, there is no pooling, proxy, or client-certificate support:
// §5 requires one fresh socket per probe.
type ConnectOptions struct {
	ConnectTimeout time.Duration
	DNSTimeout     time.Duration
	SNI            string
	Verify         bool
	BodyMemLimit   int64
}

// Client owns exactly one TCP (or TLS-over-TCP) socket from Connect until
// Close. Re-connecting requires a new Client.
type Client struct {
	conn   net.Conn
	target Target
	opts   ConnectOptions

	connectedAddr      string
	negotiatedProtocol string
	tlsVersion         string
	tlsCipherSuite     string
	tlsServerName      string
	connectMetrics     timing.Metrics
}

// New returns an unconnected Client for target.
func New(target Target) *Client {
	return &Client{target: target}
}

// Connect resolves and dials target, upgrading to TLS when the scheme is
// https. One socket is opened; it is not pooled or reused across Clients.
func (c *Client) Connect(ctx context.Context, opts ConnectOptions) error {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.BodyMemLimit <= 0 {
		opts.BodyMemLimit = defaultBodyMemLimit
	}
	c.opts = opts

	dialAddr := net.JoinHostPort(c.target.Host, strconv.Itoa(c.target.Port))

	timer := timing.NewTimer()

	timer.StartTCP()
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", dialAddr)
	timer.EndTCP()
	if err != nil {
		return errors.NewConnectError(c.target.Host, c.target.Port, err)
	}

	c.connectedAddr = conn.RemoteAddr().String()
	c.negotiatedProtocol = "HTTP/1.1"

	if c.target.Scheme == "https" {
		sni := opts.SNI
		if sni == "" {
			sni = c.target.Host
		}
		tlsConn := tls.Client(conn, tlsprovider.ContextFor(sni, []string{"http/1.1"}, opts.Verify))
		tlsConn.SetDeadline(time.Now().Add(opts.ConnectTimeout))
		timer.StartTLS()
		err := tlsConn.HandshakeContext(ctx)
		timer.EndTLS()
		if err != nil {
			conn.Close()
			return errors.NewTLSError(c.target.Host, c.target.Port, err)
		}
		tlsConn.SetDeadline(time.Time{})

		state := tlsConn.ConnectionState()
		c.tlsVersion = tlsconfig.GetVersionName(state.Version)
		c.tlsCipherSuite = tls.CipherSuiteName(state.CipherSuite)
		c.tlsServerName = sni
		if alpn := tlsprovider.NegotiatedALPN(tlsConn); alpn != "" {
			c.negotiatedProtocol = alpn
		}
		conn = tlsConn
	}

	c.conn = conn
	c.connectMetrics = timer.Metrics()
	return nil
}

// ConnectMetrics returns the DNS/TCP/TLS phase timings recorded by the most
// recent Connect call. DNS is left zero: net.Dialer resolves and dials in
// one DialContext call with no phase boundary to hook.
func (c *Client) ConnectMetrics() timing.Metrics {
	return c.connectMetrics
}

// SendRequest writes req and reads a full response, measuring elapsed wall
// time from immediately before the write to immediately after the read
// completes or times out — no suspension point in between, per §5.
//
// On timeout, unlike the teacher's Client.Do, the partial Response is
// always returned with ElapsedSeconds set; detectors rely on this signal.
func (c *Client) SendRequest(req *Request, readTimeout time.Duration) (*Response, error) {
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	resp := newResponse(c.opts.BodyMemLimit)
	resp.ConnectedAddr = c.connectedAddr
	resp.NegotiatedProtocol = c.negotiatedProtocol
	resp.TLSVersion = c.tlsVersion
	resp.TLSCipherSuite = c.tlsCipherSuite
	resp.TLSServerName = c.tlsServerName
	resp.ConnectMetrics = c.connectMetrics

	clock := timing.StartClock()

	if err := c.writeAll(req.Serialize(), 0); err != nil {
		resp.ElapsedSeconds = clock.Elapsed().Seconds()
		return resp, err
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		resp.ElapsedSeconds = clock.Elapsed().Seconds()
		return resp, errors.NewProtocolError("setting read deadline", err)
	}

	reader := bufio.NewReader(c.conn)
	err := readResponse(reader, resp, req.Method)
	resp.ElapsedSeconds = clock.Elapsed().Seconds()
	resp.RawBytes = resp.Raw.Size()
	resp.BodyBytes = resp.Body.Size()

	return resp, err
}

// SendRaw writes data verbatim with no serialization applied, for callers
// constructing requests byte-by-byte.
func (c *Client) SendRaw(data []byte, writeTimeout time.Duration) error {
	return c.writeAll(data, writeTimeout)
}

func (c *Client) writeAll(data []byte, writeTimeout time.Duration) error {
	if writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return errors.NewProtocolError("setting write deadline", err)
		}
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	written := 0
	for written < len(data) {
		n, err := c.conn.Write(data[written:])
		if err != nil {
			return errors.NewConnectError(c.target.Host, c.target.Port, err)
		}
		written += n
	}
	return nil
}

// ReceiveRaw reads up to max bytes with the given timeout, for callers that
// want to observe raw socket behavior without full response parsing.
func (c *Client) ReceiveRaw(max int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, errors.NewProtocolError("setting read deadline", err)
		}
	}
	buf := make([]byte, max)
	n, err := c.conn.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

// PipelineRequests writes all requests back-to-back on the same socket,
// then reads responses sequentially, associating them positionally with
// the requests that produced them.
func (c *Client) PipelineRequests(reqs []*Request, timeout time.Duration) ([]*Response, error) {
	var combined []byte
	for _, req := range reqs {
		combined = append(combined, req.Serialize()...)
	}
	if err := c.writeAll(combined, 0); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, errors.NewProtocolError("setting read deadline", err)
	}

	reader := bufio.NewReader(c.conn)
	responses := make([]*Response, 0, len(reqs))
	for _, req := range reqs {
		resp := newResponse(c.opts.BodyMemLimit)
		if err := readResponse(reader, resp, req.Method); err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// Close closes the underlying socket. A Client is not reusable after Close.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
