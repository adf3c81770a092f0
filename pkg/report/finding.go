// Package report accumulates detector findings and transport errors into a
// ScanResult, and computes the scan's exit code. Grounded on the teacher's
// plain-struct result types (no equivalent exists in the teacher, which is a
// pure transport library; the shape follows spec.md §3's Finding/ScanResult
// data model instead), with github.com/google/uuid stamping identity the way
// the corpus's docker-compose repo stamps object IDs.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/smuggledetect/smuggledetect/pkg/timing"
)

// Classification is the three-way verdict a detector assigns a variation.
type Classification string

const (
	ClassificationSafe       Classification = "safe"
	ClassificationUncertain  Classification = "uncertain"
	ClassificationVulnerable Classification = "vulnerable"
)

// DetectorType names one of the four HRS probe kinds.
type DetectorType string

const (
	DetectorCLTE DetectorType = "CL.TE"
	DetectorTECL DetectorType = "TE.CL"
	DetectorH2CL DetectorType = "H2.CL"
	DetectorH2TE DetectorType = "H2.TE"
)

// Finding is one variation's classification result, carrying enough detail
// for an external writer to reproduce the five stdout markers (§4.6).
type Finding struct {
	ID     uuid.UUID      `json:"id"`
	URL    string         `json:"url"`
	Type   DetectorType   `json:"type"`
	Header HeaderEvidence `json:"header"`

	BaselineElapsed float64        `json:"baseline_elapsed"`
	ProbeElapsed    float64        `json:"probe_elapsed"`
	Ratio           float64        `json:"ratio"`
	Classification  Classification `json:"classification"`

	DetectedAt time.Time `json:"detected_at"`
}

// minRatioBaseline guards Ratio's division only against an exactly-zero or
// negative baseline (which a real wall-clock measurement never produces);
// it is not the classification floor (see Classify) and exists purely to
// keep Ratio finite in that degenerate case.
const minRatioBaseline = 0.001

// HeaderEvidence names the variation that produced a Finding, i.e. the
// human-readable description plus the exact header name/value bytes (as
// strings) that were sent.
type HeaderEvidence struct {
	Description string `json:"description"`
	Name        string `json:"name"`
	Value       string `json:"value"`
}

// NewFinding stamps a fresh Finding with a random ID and the current time.
// classification is computed by the caller via Classify, which needs the
// detector's threshold ratio and timeout budget that this constructor does
// not otherwise have access to.
func NewFinding(url string, typ DetectorType, evidence HeaderEvidence, baselineElapsed, probeElapsed float64, classification Classification) Finding {
	// Ratio is evidence for a human reader, not a threshold input: it reports
	// the true probe/baseline relationship. Classify applies its own floor
	// to baselineElapsed for the vulnerable/uncertain decision — that floor
	// must not leak into the reported ratio or a ~0.05s baseline would be
	// under-reported by 2x (§8 scenario 1: baseline 0.05s, probe 4.5s, ratio
	// ~90, not 45).
	baseline := baselineElapsed
	if baseline <= 0 {
		baseline = minRatioBaseline
	}
	return Finding{
		ID:              uuid.New(),
		URL:             url,
		Type:            typ,
		Header:          evidence,
		BaselineElapsed: baselineElapsed,
		ProbeElapsed:    probeElapsed,
		Ratio:           probeElapsed / baseline,
		Classification:  classification,
		DetectedAt:      time.Now(),
	}
}

// Classify implements the classification rule from spec §4.5: a 0.1s floor
// on the baseline prevents division-by-tiny-number false positives, and a
// timeout budget additionally gates the "vulnerable" tier so a probe that
// merely ran a bit slow (but returned well under the timeout) is never
// promoted past "uncertain".
func Classify(baselineElapsed, probeElapsed, thresholdRatio, timeout float64) Classification {
	floor := timing.Floor(secondsToDuration(baselineElapsed)).Seconds()
	if probeElapsed >= thresholdRatio*floor && (timeout <= 0 || probeElapsed >= 0.9*timeout) {
		return ClassificationVulnerable
	}
	if probeElapsed >= 1.5*floor {
		return ClassificationUncertain
	}
	return ClassificationSafe
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Markers renders the five stdout markers the external CLI/GUI collaborator
// parses out of free-form log output (§4.6, §6).
func (f Finding) Markers() []string {
	return []string{
		"Vulnerability_Type: " + string(f.Type),
		"Vulnerable_URL: " + f.URL,
		"Header_Description: " + f.Header.Description,
		"Actual_Header_Name: " + f.Header.Name,
		"Actual_Header_Value: " + f.Header.Value,
	}
}
