package tlsprovider

import (
	"crypto/tls"
	"testing"

	"github.com/smuggledetect/smuggledetect/pkg/tlsconfig"
)

func TestContextForSetsALPNAndVersion(t *testing.T) {
	cfg := ContextFor("example.com", []string{"h2"}, true)
	if len(cfg.NextProtos) != 1 || cfg.NextProtos[0] != "h2" {
		t.Fatalf("NextProtos = %v, want [h2]", cfg.NextProtos)
	}
	if cfg.MinVersion != tlsconfig.VersionTLS12 {
		t.Fatalf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
	if cfg.InsecureSkipVerify {
		t.Fatal("verify=true must not set InsecureSkipVerify")
	}
}

func TestContextForVerifyFalseDisablesChecks(t *testing.T) {
	cfg := ContextFor("example.com", nil, false)
	if !cfg.InsecureSkipVerify {
		t.Fatal("verify=false must set InsecureSkipVerify")
	}
}

func TestContextForNeverBelowTLS12(t *testing.T) {
	cfg := ContextFor("x", []string{"http/1.1"}, true)
	if cfg.MinVersion < tls.VersionTLS12 {
		t.Fatalf("MinVersion below TLS 1.2: %x", cfg.MinVersion)
	}
}
