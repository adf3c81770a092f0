// Package rawhttp2 implements C3: a raw HTTP/2 client that permits emission
// of HEADERS frames with duplicate pseudo-headers, forbidden
// connection-specific headers, and withheld stream termination — the frame
// and HPACK machinery the teacher's pkg/http2 already builds, with its
// connection pooling removed and its after-the-fact header stripping kept
// only on the SendRequest convenience path. See DESIGN.md.
package rawhttp2

import (
	"bytes"
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/timing"
	"github.com/smuggledetect/smuggledetect/pkg/tlsconfig"
	"github.com/smuggledetect/smuggledetect/pkg/tlsprovider"
)

const (
	defaultConnectTimeout = 5 * time.Second
	settingsAckTimeout    = 10 * time.Second
	hpackTableSize        = 4096
)

// Target identifies the server a Connection dials. H2 is TLS-only here: the
// scan's network boundary (§6) excludes H2C/prior-knowledge cleartext, which
// the teacher supports for its general-purpose client but this detector
// never needs — every HRS-relevant front end negotiates h2 via ALPN.
type Target struct {
	Host string
	Port int
}

// ConnectOptions controls connection establishment. There is no pooling,
// reuse, or client-certificate support: §5 requires a fresh connection per
// probe, and mTLS is outside this spec's scope.
type ConnectOptions struct {
	ConnectTimeout time.Duration
	SNI            string
	Verify         bool
}

// connection owns exactly one TLS socket, its Framer, and the HPACK
// encoder/decoder pair bound to that socket's dynamic table. It is not
// exported: callers use Client, which wraps a connection with the
// request/response contract C3 specifies.
type connection struct {
	conn   net.Conn
	framer *http2.Framer

	encoder *hpack.Encoder
	encBuf  bytes.Buffer
	decoder *hpack.Decoder

	nextStreamID uint32
	streams      map[uint32]*stream

	negotiatedProtocol string
	tlsVersion         string
	tlsCipherSuite     string
	tlsServerName      string
	connectMetrics     timing.Metrics
}

// stream is the per-request bookkeeping the registry keys by stream ID. It
// holds no back-reference to the connection: the connection owns the
// map[uint32]*stream, never the reverse, per the cyclic-ownership
// resolution in DESIGN.md.
type stream struct {
	id       uint32
	response *Response
}

func dialTLS(ctx context.Context, target Target, opts ConnectOptions) (*connection, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}

	dialAddr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))

	timer := timing.NewTimer()

	timer.StartTCP()
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", dialAddr)
	timer.EndTCP()
	if err != nil {
		return nil, errors.NewConnectError(target.Host, target.Port, err)
	}

	sni := opts.SNI
	if sni == "" {
		sni = target.Host
	}
	tlsConn := tls.Client(tcpConn, tlsprovider.ContextFor(sni, []string{"h2"}, opts.Verify))
	tlsConn.SetDeadline(time.Now().Add(opts.ConnectTimeout))
	timer.StartTLS()
	err = tlsConn.HandshakeContext(ctx)
	timer.EndTLS()
	if err != nil {
		tcpConn.Close()
		return nil, errors.NewTLSError(target.Host, target.Port, err)
	}

	state := tlsConn.ConnectionState()
	if state.NegotiatedProtocol != "h2" {
		tlsConn.Close()
		return nil, errors.NewTLSError(target.Host, target.Port,
			errFromALPN(state.NegotiatedProtocol))
	}
	tlsConn.SetDeadline(time.Time{})

	c := &connection{
		conn:               tlsConn,
		framer:             http2.NewFramer(tlsConn, tlsConn),
		decoder:            hpack.NewDecoder(hpackTableSize, nil),
		nextStreamID:       1,
		streams:            make(map[uint32]*stream),
		negotiatedProtocol: state.NegotiatedProtocol,
		tlsVersion:         tlsconfig.GetVersionName(state.Version),
		tlsCipherSuite:     tls.CipherSuiteName(state.CipherSuite),
		tlsServerName:      sni,
		connectMetrics:     timer.Metrics(),
	}
	c.encoder = hpack.NewEncoder(&c.encBuf)
	c.encoder.SetMaxDynamicTableSize(hpackTableSize)
	c.framer.AllowIllegalWrites = true

	if err := c.handshake(); err != nil {
		tlsConn.Close()
		return nil, err
	}
	return c, nil
}

// handshake writes the client preface, sends an opening SETTINGS frame, and
// waits for the server's SETTINGS ACK (ACKing any server SETTINGS received
// in the meantime), per the teacher's sendInitialSettings/waitForSettingsAck
// sequence in pkg/transport.
func (c *connection) handshake() error {
	if _, err := c.conn.Write([]byte(http2.ClientPreface)); err != nil {
		return errors.NewProtocolError("writing connection preface", err)
	}

	if err := c.framer.WriteSettings(); err != nil {
		return errors.NewProtocolError("writing initial SETTINGS", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(settingsAckTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		f, err := c.framer.ReadFrame()
		if err != nil {
			return errors.NewProtocolError("waiting for SETTINGS ack", err)
		}
		switch sf := f.(type) {
		case *http2.SettingsFrame:
			if sf.IsAck() {
				return nil
			}
			if err := c.framer.WriteSettingsAck(); err != nil {
				return errors.NewProtocolError("acking server SETTINGS", err)
			}
		case *http2.WindowUpdateFrame:
			// Ignore during handshake; flow control windows are generous enough
			// for the small probe bodies this client sends.
		case *http2.PingFrame:
			if err := c.framer.WritePing(true, sf.Data); err != nil {
				return errors.NewProtocolError("acking PING during handshake", err)
			}
		case *http2.GoAwayFrame:
			return errors.NewProtocolError("server sent GOAWAY during handshake", nil)
		default:
			return errors.NewProtocolError("unexpected frame during SETTINGS handshake", nil)
		}
	}
}

func (c *connection) allocateStreamID() uint32 {
	id := c.nextStreamID
	c.nextStreamID += 2
	return id
}

func (c *connection) close() error {
	if c.framer != nil {
		c.framer.WriteGoAway(0, http2.ErrCodeNo, nil)
	}
	return c.conn.Close()
}

type alpnError string

func (e alpnError) Error() string { return string(e) }

func errFromALPN(negotiated string) error {
	if negotiated == "" {
		return alpnError("server did not negotiate h2 via ALPN")
	}
	return alpnError("server negotiated " + negotiated + ", not h2")
}
