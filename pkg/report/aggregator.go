package report

import (
	"fmt"

	"go.uber.org/zap"
)

// Aggregator collects findings and errors across a scan's detectors and
// prints the five stdout markers for each vulnerable finding as it arrives,
// so the external CLI wrapper has a
// parseable log stream to pipe through even if it never reads the final
// JSON. Accepts a *zap.Logger by parameter (never a package-level logger),
// per the "no global mutable state" design note.
type Aggregator struct {
	result *ScanResult
	log    *zap.Logger
}

// NewAggregator returns an Aggregator writing into a fresh ScanResult for
// target. A nil logger is replaced with zap.NewNop() so callers that don't
// care about logging don't need a sentinel.
func NewAggregator(target string, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{result: NewScanResult(target), log: log}
}

// RecordFinding appends f to the result and emits a structured log line; the
// five stdout markers are printed only when f classified vulnerable, not for
// uncertain findings.
func (a *Aggregator) RecordFinding(f Finding) {
	a.result.AddFinding(f)
	a.log.Info("finding recorded",
		zap.String("type", string(f.Type)),
		zap.String("classification", string(f.Classification)),
		zap.Float64("baseline_elapsed", f.BaselineElapsed),
		zap.Float64("probe_elapsed", f.ProbeElapsed),
		zap.Float64("ratio", f.Ratio),
	)
	if f.Classification == ClassificationVulnerable {
		for _, m := range f.Markers() {
			fmt.Println(m)
		}
	}
}

// RecordError formats err per §7's "ERROR: <kind>: <detail>" convention and
// both logs and accumulates it.
func (a *Aggregator) RecordError(kind, detail string) {
	msg := fmt.Sprintf("ERROR: %s: %s", kind, detail)
	a.result.AddError(msg)
	a.log.Warn("transport error", zap.String("kind", kind), zap.String("detail", detail))
}

// Result finalizes the exit code and returns the accumulated ScanResult. Safe
// to call once all detectors have run; calling it again recomputes the exit
// code from whatever has been added since.
func (a *Aggregator) Result() *ScanResult {
	a.result.Finalize()
	return a.result
}
