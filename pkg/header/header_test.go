package header

import "testing"

func TestListPreservesDuplicateOrderAndCase(t *testing.T) {
	var l List
	l.Add("Content-Length", "6")
	l.Add("Transfer-Encoding", "chunked")
	l.Add("transfer-encoding", "identity")
	l.Add("X-Weird", "a\tb")

	if len(l) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(l))
	}
	if l[1].NameString() != "Transfer-Encoding" || l[2].NameString() != "transfer-encoding" {
		t.Fatalf("case was normalized: %q, %q", l[1].NameString(), l[2].NameString())
	}
	if got := l.Count("transfer-encoding"); got != 2 {
		t.Fatalf("expected 2 case-insensitive matches, got %d", got)
	}
}

func TestGetReturnsFirstOccurrence(t *testing.T) {
	var l List
	l.Add("X-A", "first")
	l.Add("x-a", "second")

	v, ok := l.Get("X-A")
	if !ok || v != "first" {
		t.Fatalf("Get() = %q, %v; want \"first\", true", v, ok)
	}
	all := l.All("x-a")
	if len(all) != 2 {
		t.Fatalf("All() returned %d fields, want 2", len(all))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var l List
	l.Add("A", "b")
	clone := l.Clone()
	clone[0].Value[0] = 'X'
	if l[0].ValueString() != "b" {
		t.Fatalf("mutating clone affected original: %q", l[0].ValueString())
	}
}

func TestWithoutPreservesOrder(t *testing.T) {
	var l List
	l.Add("Connection", "keep-alive")
	l.Add("X-A", "1")
	l.Add("TE", "trailers")
	l.Add("X-B", "2")

	stripped := l.Without("Connection").Without("TE")
	if len(stripped) != 2 || stripped[0].NameString() != "X-A" || stripped[1].NameString() != "X-B" {
		t.Fatalf("unexpected result: %+v", stripped)
	}
}

func TestHasTokenAndLastToken(t *testing.T) {
	if !HasToken("gzip, chunked", "chunked") {
		t.Fatal("expected chunked to be found")
	}
	if HasToken("chunked, gzip", "chunked") == false {
		t.Fatal("expected chunked to be found regardless of position")
	}
	if got := LastToken("gzip, chunked"); got != "chunked" {
		t.Fatalf("LastToken() = %q, want chunked", got)
	}
	if got := LastToken("  identity  "); got != "identity" {
		t.Fatalf("LastToken() = %q, want identity", got)
	}
}
