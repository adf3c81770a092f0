package detector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// mockH1Server drains one HTTP/1.1 request (request line, headers, and
// exactly Content-Length body bytes if present) per connection, then either
// replies immediately or hangs forever when teHangs is true and the request
// carries a Transfer-Encoding header — modeling a back end that blocks
// waiting for chunked bytes a desynced front end never forwards. Grounded
// on the teacher's integration-test mock style (tests/integration/client_test.go:
// raw net.Listener, bufio line reads, a goroutine per accepted connection).
type mockH1Server struct {
	ln       net.Listener
	accepts  int32
	teHangs  bool
	teStalls time.Duration
}

func listenTCP(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPerm(err) {
			t.Skip("network sockets not permitted in sandbox")
		}
		t.Fatalf("listen: %v", err)
	}
	return ln
}

func isPerm(err error) bool {
	if err == nil {
		return false
	}
	if op, ok := err.(*net.OpError); ok {
		if se, ok := op.Err.(*os.SyscallError); ok && se.Err == syscall.EPERM {
			return true
		}
	}
	return strings.Contains(err.Error(), "operation not permitted")
}

func startMockH1(t *testing.T, teHangs bool) *mockH1Server {
	t.Helper()
	s := &mockH1Server{ln: listenTCP(t), teHangs: teHangs}
	go func() {
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&s.accepts, 1)
			go s.handle(conn)
		}
	}()
	t.Cleanup(func() { s.ln.Close() })
	return s
}

func (s *mockH1Server) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	if _, err := r.ReadString('\n'); err != nil {
		return
	}
	contentLength := 0
	hasTE := false
	for {
		line, err := r.ReadString('\n')
		if err != nil || line == "\r\n" {
			break
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "content-length:") {
			n, _ := strconv.Atoi(strings.TrimSpace(line[len("content-length:"):]))
			contentLength = n
		}
		if strings.HasPrefix(lower, "transfer-encoding:") {
			hasTE = true
		}
	}
	if contentLength > 0 {
		body := make([]byte, contentLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return
		}
	}

	if hasTE {
		switch {
		case s.teHangs:
			// Never reply: the client's read deadline is the only thing
			// that ends this probe, which is exactly the signal under test.
			select {}
		case s.teStalls > 0:
			time.Sleep(s.teStalls)
		}
	}
	fmt.Fprint(conn, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
}

func (s *mockH1Server) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *mockH1Server) url() string {
	return fmt.Sprintf("http://127.0.0.1:%d/smuggle", s.port())
}

func baseOpts(url string) ScanOptions {
	opts := ScanOptions{
		URL:            url,
		ConnectTimeout: 500 * time.Millisecond,
		Timeout:        400 * time.Millisecond,
		ThresholdRatio: 3.0,
	}
	opts.applyDefaults()
	return opts
}

func oneTEVariation() []variation.HeaderVariation {
	return []variation.HeaderVariation{{Description: "plain chunked", HeaderName: "Transfer-Encoding", HeaderValue: "chunked"}}
}

func mustTarget(t *testing.T, raw string) Target {
	t.Helper()
	target, err := ParseTarget(raw)
	require.NoError(t, err)
	return target
}

// TestP5FreshConnectionPerProbe verifies each probe opens its own TCP
// connection: one variation means one baseline accept plus one probe
// accept, never a reused socket.
func TestP5FreshConnectionPerProbe(t *testing.T) {
	srv := startMockH1(t, true)
	opts := baseOpts(srv.url())
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	ran := runCLTE(context.Background(), target, oneTEVariation(), opts, agg, zap.NewNop())
	require.False(t, ran)
	require.Equal(t, int32(2), atomic.LoadInt32(&srv.accepts))
}

// TestScenarioCLTEVulnerable: a back end that honors the injected
// Transfer-Encoding hangs on the probe until the read deadline, while the
// baseline (no TE header) returns immediately. Elevated ratio -> vulnerable.
func TestScenarioCLTEVulnerable(t *testing.T) {
	srv := startMockH1(t, true)
	opts := baseOpts(srv.url())
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	ran := runCLTE(context.Background(), target, oneTEVariation(), opts, agg, zap.NewNop())
	require.False(t, ran)

	result := agg.Result()
	require.Len(t, result.Findings, 1)
	require.Equal(t, report.ClassificationVulnerable, result.Findings[0].Classification)
	require.Equal(t, report.ExitVulnerableFound, result.ExitCode)
}

// TestScenarioSafeTarget: a back end that replies immediately regardless of
// the TE directive produces no Finding and a clean exit code.
func TestScenarioSafeTarget(t *testing.T) {
	srv := startMockH1(t, false)
	opts := baseOpts(srv.url())
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	ran := runCLTE(context.Background(), target, oneTEVariation(), opts, agg, zap.NewNop())
	require.False(t, ran)

	result := agg.Result()
	require.Empty(t, result.Findings)
	require.Equal(t, report.ExitNoFindings, result.ExitCode)
}

// TestScenarioExitFirstFalseAccumulatesFindings: with exit_first=false, a
// back end vulnerable to every variation produces one Finding per
// variation, not just the first.
func TestScenarioExitFirstFalseAccumulatesFindings(t *testing.T) {
	srv := startMockH1(t, true)
	opts := baseOpts(srv.url())
	opts.ExitFirst = false
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	variations := append(oneTEVariation(), variation.HeaderVariation{
		Description: "obfuscated", HeaderName: "Transfer-Encoding", HeaderValue: "chunked\t",
	})

	ran := runCLTE(context.Background(), target, variations, opts, agg, zap.NewNop())
	require.False(t, ran)

	result := agg.Result()
	require.Len(t, result.Findings, 2)
}

// TestScenarioExitFirstStopsEarly: with exit_first=true, runCLTE reports
// the halt signal to its caller after the first vulnerable classification
// and never evaluates the remaining variations.
func TestScenarioExitFirstStopsEarly(t *testing.T) {
	srv := startMockH1(t, true)
	opts := baseOpts(srv.url())
	opts.ExitFirst = true
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	variations := append(oneTEVariation(), variation.HeaderVariation{
		Description: "second", HeaderName: "Transfer-Encoding", HeaderValue: "chunked\t",
	})

	ran := runCLTE(context.Background(), target, variations, opts, agg, zap.NewNop())
	require.True(t, ran)

	result := agg.Result()
	require.Len(t, result.Findings, 1)
}

// TestScenarioTECLUncertain: a probe that stalls for noticeably longer than
// baseline but well under the read timeout lands in the uncertain band
// (>= 1.5x floor, < 3x floor) rather than vulnerable.
func TestScenarioTECLUncertain(t *testing.T) {
	srv := startMockH1(t, false)
	srv.teStalls = 200 * time.Millisecond
	opts := baseOpts(srv.url())
	opts.Timeout = time.Second
	opts.ThresholdRatio = 3.0
	target := mustTarget(t, srv.url())
	agg := report.NewAggregator(target.URL(), zap.NewNop())

	ran := runTECL(context.Background(), target, oneTEVariation(), opts, agg, zap.NewNop())
	require.False(t, ran)

	result := agg.Result()
	require.Len(t, result.Findings, 1)
	require.Equal(t, report.ClassificationUncertain, result.Findings[0].Classification)
}
