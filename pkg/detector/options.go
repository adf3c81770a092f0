package detector

import (
	"time"

	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/report"
)

// PayloadPlacement selects where an H2 probe embeds its smuggled directive,
// per spec §4.5's H2.CL placement semantics (reused unmodified for H2.TE).
type PayloadPlacement string

const (
	// PlacementNormalHeader adds the directive as a regular header.
	PlacementNormalHeader PayloadPlacement = "normal_header"
	// PlacementCustomHeaderValue flattens the directive into the value of an
	// unrelated header, exercising front ends that copy header values
	// verbatim into an HTTP/1 request line/headers without re-parsing them.
	PlacementCustomHeaderValue PayloadPlacement = "custom_header_value"
	// PlacementCustomHeaderName embeds the directive, CRLF-terminated, in a
	// header *name*, exercising front ends that don't escape header names
	// when serializing to HTTP/1.
	PlacementCustomHeaderName PayloadPlacement = "custom_header_name"
	// PlacementRequestLine embeds the directive in the :path pseudo-header.
	PlacementRequestLine PayloadPlacement = "request_line"
)

// ScanOptions carries the run_scan invocation surface (§6), in the same
// style as the teacher's client.Options/http2.Options: a single typed struct
// passed by the caller, never environment variables or a config file.
type ScanOptions struct {
	URL                string
	Types              []report.DetectorType
	ExtraHeaders       header.List
	ConnectTimeout     time.Duration
	Timeout            time.Duration
	ThresholdRatio     float64
	ExitFirst          bool
	H2PayloadPlacement PayloadPlacement
	TEVariationFile    string
	CLVariationFile    string
	Verify             bool
	// IncludeUnimplemented opts into running the CL.0/H2.0 stubs, surfacing
	// their distinguished not-implemented error in ScanResult.Errors. Left
	// false by default: the stubs always error, and folding them into every
	// scan would make exit code 0 ("no findings and no errors") unreachable
	// even against a perfectly safe target (§4.6).
	IncludeUnimplemented bool
}

const (
	defaultConnectTimeout = 5 * time.Second
	defaultProbeTimeout   = 5 * time.Second
	defaultThresholdRatio = 3.0
)

func (o *ScanOptions) applyDefaults() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultProbeTimeout
	}
	if o.ThresholdRatio <= 0 {
		o.ThresholdRatio = defaultThresholdRatio
	}
	if o.H2PayloadPlacement == "" {
		o.H2PayloadPlacement = PlacementNormalHeader
	}
	if len(o.Types) == 0 {
		o.Types = []report.DetectorType{
			report.DetectorCLTE, report.DetectorTECL, report.DetectorH2CL, report.DetectorH2TE,
		}
	}
}

func (o ScanOptions) wants(t report.DetectorType) bool {
	for _, want := range o.Types {
		if want == t {
			return true
		}
	}
	return false
}
