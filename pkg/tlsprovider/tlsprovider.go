// Package tlsprovider implements C1 of the detection engine: building TLS
// contexts with explicit ALPN selection and optional verification bypass,
// and reading back the protocol the peer actually negotiated.
package tlsprovider

import (
	"crypto/tls"

	"github.com/smuggledetect/smuggledetect/pkg/tlsconfig"
)

// ContextFor builds a *tls.Config for a handshake against serverName,
// offering alpn as the ALPN protocol list (e.g. ["h2"] for HTTP/2,
// ["http/1.1"] or nil for HTTP/1.1). When verify is false, both hostname
// checking and chain verification are disabled — this is a deliberate
// feature of a vulnerability scanner, which must be able to probe targets
// with self-signed or mismatched certificates.
func ContextFor(serverName string, alpn []string, verify bool) *tls.Config {
	cfg := &tls.Config{
		ServerName:         serverName,
		NextProtos:         alpn,
		InsecureSkipVerify: !verify,
	}
	tlsconfig.ApplyVersionProfile(cfg, tlsconfig.ProfileSecure)
	tlsconfig.ApplyCipherSuites(cfg, tlsconfig.ProfileSecure.Min)
	return cfg
}

// NegotiatedALPN returns the ALPN protocol the peer selected during the
// handshake on conn, or "" if none was negotiated (plain HTTP/1.1 servers
// with no ALPN support, or a non-TLS connection).
func NegotiatedALPN(conn *tls.Conn) string {
	return conn.ConnectionState().NegotiatedProtocol
}
