package errors

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestErrorIsMatchesByType(t *testing.T) {
	e1 := NewTimeoutError("read", 5*time.Second)
	e2 := NewTimeoutError("connect", time.Second)
	if !errors.Is(e1, e2) {
		t.Fatal("expected timeout errors to match regardless of Op/Message")
	}
	if errors.Is(e1, NewDNSError("example.com", nil)) {
		t.Fatal("did not expect timeout error to match DNS error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := NewConnectError("example.com", 443, cause)
	if !errors.Is(e, cause) {
		t.Fatal("expected Unwrap to expose cause for errors.Is")
	}
}

func TestIsTimeoutRecognizesContextDeadline(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Fatal("expected context.DeadlineExceeded to be recognized as a timeout")
	}
	if !IsTimeout(NewTimeoutError("read", time.Second)) {
		t.Fatal("expected structured timeout error to be recognized")
	}
	if IsTimeout(NewDNSError("x", nil)) {
		t.Fatal("did not expect DNS error to be a timeout")
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf(NewInputError("bad url")); got != ErrorTypeInput {
		t.Fatalf("TypeOf() = %q, want %q", got, ErrorTypeInput)
	}
	if got := TypeOf(errors.New("plain")); got != "" {
		t.Fatalf("TypeOf() on plain error = %q, want empty", got)
	}
}

func TestNotImplementedError(t *testing.T) {
	e := NewNotImplementedError("CL.0")
	if e.Type != ErrorTypeNotImplemented {
		t.Fatalf("Type = %q, want %q", e.Type, ErrorTypeNotImplemented)
	}
}
