// Package errors provides the closed set of structured error types used
// throughout the detection engine.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrorType is the closed set of error categories a detector can observe.
type ErrorType string

const (
	// ErrorTypeDNS represents host resolution failures.
	ErrorTypeDNS ErrorType = "dns"
	// ErrorTypeConnect represents TCP connect failures or refusals.
	ErrorTypeConnect ErrorType = "connect"
	// ErrorTypeTLS represents handshake or ALPN negotiation failures.
	ErrorTypeTLS ErrorType = "tls"
	// ErrorTypeProtocol represents invalid framing (unparseable H1 response,
	// H2 GOAWAY with an error code, and raw socket read/write failures
	// encountered while parsing a response).
	ErrorTypeProtocol ErrorType = "protocol"
	// ErrorTypeTimeout represents a read or connect that exceeded its
	// budget. Not fatal for a probe: the elapsed measurement at timeout is
	// itself the detector's signal.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInput represents a malformed variation catalog or an
	// unparseable user-supplied target URL.
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeNotImplemented marks the CL.0/H2.0 detector stubs, which
	// deliberately refuse to guess at undocumented payload semantics.
	ErrorTypeNotImplemented ErrorType = "not_implemented"
)

// Error is a structured error carrying enough context for the detector
// kernel to decide whether to record an elapsed measurement or abandon a
// variation.
type Error struct {
	Type      ErrorType
	Op        string
	Message   string
	Cause     error
	Host      string
	Port      int
	Timestamp time.Time
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Host != "" {
		if e.Port > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.Host, e.Port))
		} else {
			parts = append(parts, e.Host)
		}
	}
	s := strings.Join(parts, " ")
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Type, satisfying
// errors.Is(err, &Error{Type: ErrorTypeTimeout}) style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewDNSError wraps a DNS resolution failure.
func NewDNSError(host string, cause error) *Error {
	return &Error{Type: ErrorTypeDNS, Op: "lookup", Message: fmt.Sprintf("DNS lookup failed for %s", host), Cause: cause, Host: host, Timestamp: time.Now()}
}

// NewConnectError wraps a TCP connect failure.
func NewConnectError(host string, port int, cause error) *Error {
	return &Error{Type: ErrorTypeConnect, Op: "dial", Message: fmt.Sprintf("failed to connect to %s:%d", host, port), Cause: cause, Host: host, Port: port, Timestamp: time.Now()}
}

// NewTLSError wraps a TLS handshake or ALPN negotiation failure.
func NewTLSError(host string, port int, cause error) *Error {
	return &Error{Type: ErrorTypeTLS, Op: "handshake", Message: fmt.Sprintf("TLS handshake failed for %s:%d", host, port), Cause: cause, Host: host, Port: port, Timestamp: time.Now()}
}

// NewTimeoutError wraps a read/connect that exceeded its deadline.
func NewTimeoutError(op string, timeout time.Duration) *Error {
	return &Error{Type: ErrorTypeTimeout, Op: op, Message: fmt.Sprintf("operation timed out after %v", timeout), Timestamp: time.Now()}
}

// NewProtocolError wraps an invalid-framing or raw I/O failure.
func NewProtocolError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeProtocol, Op: "parse", Message: message, Cause: cause, Timestamp: time.Now()}
}

// NewInputError wraps a malformed catalog or unparseable target URL.
func NewInputError(message string) *Error {
	return &Error{Type: ErrorTypeInput, Op: "validate", Message: message, Timestamp: time.Now()}
}

// NewNotImplementedError marks an unsupported detector (CL.0/H2.0).
func NewNotImplementedError(detector string) *Error {
	return &Error{Type: ErrorTypeNotImplemented, Op: detector, Message: fmt.Sprintf("%s detector is not implemented: payload semantics are undocumented and must not be guessed", detector), Timestamp: time.Now()}
}

// IsTimeout reports whether err is a timeout, including plain net.Error
// timeouts and context.DeadlineExceeded, not just our own Error type.
func IsTimeout(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Type == ErrorTypeTimeout {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsContextCanceled reports whether err is due to context cancellation.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// TypeOf returns the ErrorType of err if it's a structured *Error, or "" if
// it is not.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}
