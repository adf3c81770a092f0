package rawhttp2

import (
	"testing"

	"github.com/smuggledetect/smuggledetect/pkg/header"
)

func TestNormalizeHeadersStripsConnectionSpecificAndDuplicates(t *testing.T) {
	var in header.List
	in.Add("Content-Type", "text/plain")
	in.Add("Transfer-Encoding", "chunked")
	in.Add("Connection", "keep-alive")
	in.Add("X-Dup", "1")
	in.Add("x-dup", "2")

	out := normalizeHeaders(in)

	if got, ok := out.Get("Transfer-Encoding"); ok {
		t.Fatalf("Transfer-Encoding should have been stripped, got %q", got)
	}
	if got, ok := out.Get("Connection"); ok {
		t.Fatalf("Connection should have been stripped, got %q", got)
	}
	if n := out.Count("X-Dup"); n != 1 {
		t.Fatalf("X-Dup count = %d, want 1 (case-insensitive dedup keeps first)", n)
	}
	if got, _ := out.Get("Content-Type"); got != "text/plain" {
		t.Fatalf("Content-Type = %q, want text/plain", got)
	}
}
