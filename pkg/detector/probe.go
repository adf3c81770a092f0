package detector

import (
	"context"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/rawhttp1"
	"github.com/smuggledetect/smuggledetect/pkg/rawhttp2"
)

// h1Probe opens one fresh HTTP/1.1 connection, sends req, and returns the
// elapsed wall-clock seconds. Per §7, a timeout is absorbed here rather than
// propagated: the elapsed value at timeout IS the detector's signal. Every
// other transport error propagates to the caller, which records it and
// moves to the next variation. The connection is always closed before
// returning, satisfying P5 (fresh connection per probe, no reuse between
// baseline and probe).
func h1Probe(ctx context.Context, target Target, opts ScanOptions, req *rawhttp1.Request) (float64, error) {
	client := rawhttp1.New(rawhttp1.Target{Scheme: target.Scheme, Host: target.Host, Port: target.Port})
	if err := client.Connect(ctx, rawhttp1.ConnectOptions{
		ConnectTimeout: opts.ConnectTimeout,
		Verify:         opts.Verify,
	}); err != nil {
		return 0, err
	}
	defer client.Close()

	for _, extra := range opts.ExtraHeaders {
		req.Headers.AddField(extra)
	}

	resp, err := client.SendRequest(req, opts.Timeout)
	if err != nil {
		if errors.IsTimeout(err) {
			return resp.ElapsedSeconds, nil
		}
		return resp.ElapsedSeconds, err
	}
	return resp.ElapsedSeconds, nil
}

// h2Probe opens one fresh HTTP/2 connection and sends an explicit
// pseudo-header/header set built by the caller (so H2.CL/H2.TE can place
// their smuggled directive per h2_payload_placement), returning elapsed
// wall-clock seconds with the same timeout-absorption contract as h1Probe.
func h2Probe(ctx context.Context, target Target, opts ScanOptions, path string, headers header.List, body []byte, endStream bool) (float64, error) {
	client := rawhttp2.New(rawhttp2.Target{Host: target.Host, Port: target.Port})
	if err := client.Connect(ctx, rawhttp2.ConnectOptions{
		ConnectTimeout: opts.ConnectTimeout,
		Verify:         opts.Verify,
	}); err != nil {
		return 0, err
	}
	defer client.Close()

	pseudo := []header.Field{
		header.NewField(":method", "POST"),
		header.NewField(":path", path),
		header.NewField(":scheme", "https"),
		header.NewField(":authority", target.Host),
	}

	for _, extra := range opts.ExtraHeaders {
		headers.AddField(extra)
	}

	resp, err := client.SendMalformedHeaders(pseudo, headers, body, endStream, opts.Timeout)
	if err != nil {
		if errors.IsTimeout(err) {
			return resp.ElapsedSeconds, nil
		}
		return resp.ElapsedSeconds, err
	}
	return resp.ElapsedSeconds, nil
}
