package rawhttp1

import (
	"bytes"
	"testing"

	"github.com/smuggledetect/smuggledetect/pkg/header"
)

func TestSerializePreservesOrderCaseAndWhitespace(t *testing.T) {
	req := NewRequest("POST", "/smuggle")
	req.Headers.Add("Host", "example.com")
	req.Headers.Add("Content-Length", "6")
	req.Headers.Add("transfer-encoding", " chunked")
	req.Headers.AddBytes([]byte("X-Dup"), []byte("1"))
	req.Headers.AddBytes([]byte("X-Dup"), []byte("2"))
	req.Body = []byte("0\r\n\r\nX")

	got := req.Serialize()
	want := "POST /smuggle HTTP/1.1\r\n" +
		"Host: example.com\r\n" +
		"Content-Length: 6\r\n" +
		"transfer-encoding:  chunked\r\n" +
		"X-Dup: 1\r\n" +
		"X-Dup: 2\r\n" +
		"\r\n" +
		"0\r\n\r\nX"

	if string(got) != want {
		t.Fatalf("Serialize() =\n%q\nwant\n%q", got, want)
	}
}

func TestSerializeNeverInjectsHostOrContentLength(t *testing.T) {
	req := NewRequest("GET", "/")
	got := req.Serialize()
	if bytes.Contains(got, []byte("Host:")) {
		t.Fatal("Serialize must not inject a Host header")
	}
	if bytes.Contains(got, []byte("Content-Length:")) {
		t.Fatal("Serialize must not inject a Content-Length header")
	}
}

// P1: deserializing the bytes a client would send reproduces the header
// list in order, case, and byte-identical values.
func TestP1SerializationFidelity(t *testing.T) {
	req := NewRequest("GET", "/x")
	req.Headers.Add("A", "1")
	req.Headers.Add("a", "2")
	req.Headers.Add("Transfer-Encoding", " chunked\t")

	raw := req.Serialize()
	idx := bytes.Index(raw, []byte("\r\n"))
	rest := raw[idx+2:]

	var got header.List
	for {
		lineEnd := bytes.Index(rest, []byte("\r\n"))
		line := rest[:lineEnd]
		rest = rest[lineEnd+2:]
		if len(line) == 0 {
			break
		}
		colon := bytes.IndexByte(line, ':')
		name := string(line[:colon])
		value := string(line[colon+2:])
		got.Add(name, value)
	}

	if len(got) != len(req.Headers) {
		t.Fatalf("got %d headers, want %d", len(got), len(req.Headers))
	}
	for i := range req.Headers {
		if got[i].NameString() != req.Headers[i].NameString() {
			t.Fatalf("header %d name = %q, want %q", i, got[i].NameString(), req.Headers[i].NameString())
		}
		if got[i].ValueString() != req.Headers[i].ValueString() {
			t.Fatalf("header %d value = %q, want %q", i, got[i].ValueString(), req.Headers[i].ValueString())
		}
	}
}
