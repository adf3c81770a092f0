package report

import "github.com/google/uuid"

// ExitCode mirrors the three-way exit status §4.6 defines for the external
// CLI wrapper to surface.
type ExitCode int

const (
	ExitNoFindings         ExitCode = 0
	ExitVulnerableFound    ExitCode = 1
	ExitErrorsNoVulnerable ExitCode = 2
)

// ScanResult is the append-only accumulation of one run's findings and
// transport errors, plus the exit code derived from them.
type ScanResult struct {
	ID       uuid.UUID `json:"id"`
	Target   string    `json:"target"`
	Findings []Finding `json:"findings"`
	Errors   []string  `json:"errors"`
	ExitCode ExitCode  `json:"exit_code"`
}

// NewScanResult returns an empty result for target, stamped with a fresh ID.
func NewScanResult(target string) *ScanResult {
	return &ScanResult{ID: uuid.New(), Target: target}
}

// AddFinding appends f, preserving catalog order; findings are never
// reordered or deduplicated after the fact.
func (r *ScanResult) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// AddError records a transport-layer error string (already formatted as
// "ERROR: <kind>: <detail>" by the caller, per §7's user-visible contract).
func (r *ScanResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Finalize computes ExitCode from the accumulated Findings/Errors per
// §4.6: vulnerable findings take priority over errors, which take priority
// over a clean zero-finding run.
func (r *ScanResult) Finalize() {
	r.ExitCode = exitCodeFor(r.Findings, r.Errors)
}

func exitCodeFor(findings []Finding, errs []string) ExitCode {
	for _, f := range findings {
		if f.Classification == ClassificationVulnerable {
			return ExitVulnerableFound
		}
	}
	if len(errs) > 0 {
		return ExitErrorsNoVulnerable
	}
	return ExitNoFindings
}

// HasVulnerable reports whether any Finding classified vulnerable.
func (r *ScanResult) HasVulnerable() bool {
	for _, f := range r.Findings {
		if f.Classification == ClassificationVulnerable {
			return true
		}
	}
	return false
}
