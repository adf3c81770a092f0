package report

import "testing"

// P3: for a fixed baseline, increasing probe_elapsed never downgrades the
// classification (safe -> uncertain -> vulnerable).
func TestClassificationMonotonicity(t *testing.T) {
	baseline := 0.2
	rank := map[Classification]int{
		ClassificationSafe:       0,
		ClassificationUncertain:  1,
		ClassificationVulnerable: 2,
	}

	prev := ClassificationSafe
	for probe := 0.0; probe <= 2.0; probe += 0.01 {
		got := Classify(baseline, probe, 3.0, 0)
		if rank[got] < rank[prev] {
			t.Fatalf("probe_elapsed=%.2f: classification regressed from %s to %s", probe, prev, got)
		}
		prev = got
	}
}

// P4: if baseline_elapsed < 0.1s, the effective baseline used in
// classification is exactly 0.1s.
func TestClassifyAppliesBaselineFloor(t *testing.T) {
	withFloor := Classify(0.01, 0.31, 3.0, 0)
	withoutFloorEquivalent := Classify(0.1, 0.31, 3.0, 0)
	if withFloor != withoutFloorEquivalent {
		t.Fatalf("Classify(0.01, 0.31, ...) = %s, want same as Classify(0.1, 0.31, ...) = %s", withFloor, withoutFloorEquivalent)
	}
	if withFloor != ClassificationVulnerable {
		t.Fatalf("Classify(0.01, 0.31, 3.0, 0) = %s, want vulnerable (0.31 >= 3.0*0.1)", withFloor)
	}
}

func TestClassifyTimeoutGate(t *testing.T) {
	// Ratio alone clears the threshold but the probe finished well under the
	// timeout budget: should not be promoted to vulnerable.
	got := Classify(0.1, 0.4, 3.0, 5.0)
	if got == ClassificationVulnerable {
		t.Fatalf("Classify with probe well under timeout = vulnerable, want uncertain/safe")
	}
}

// §8 scenario 1: baseline ~0.05s, probe 4.5s sleep -> ratio ~90. Ratio must
// use the true baseline, not Classify's 0.1s-floored one (which would halve
// it to 45).
func TestNewFindingRatioUsesUnflooredBaseline(t *testing.T) {
	f := NewFinding("https://example.com", DetectorCLTE, HeaderEvidence{}, 0.05, 4.5, ClassificationVulnerable)
	const want = 4.5 / 0.05
	if f.Ratio != want {
		t.Fatalf("Ratio = %v, want %v (unfloored baseline)", f.Ratio, want)
	}
}

func TestScanResultExitCodes(t *testing.T) {
	t.Run("no findings no errors", func(t *testing.T) {
		r := NewScanResult("https://example.com")
		r.Finalize()
		if r.ExitCode != ExitNoFindings {
			t.Fatalf("ExitCode = %d, want %d", r.ExitCode, ExitNoFindings)
		}
	})

	t.Run("vulnerable finding wins over errors", func(t *testing.T) {
		r := NewScanResult("https://example.com")
		r.AddError("ERROR: connect: refused")
		r.AddFinding(NewFinding("https://example.com", DetectorCLTE, HeaderEvidence{}, 0.05, 4.5, ClassificationVulnerable))
		r.Finalize()
		if r.ExitCode != ExitVulnerableFound {
			t.Fatalf("ExitCode = %d, want %d", r.ExitCode, ExitVulnerableFound)
		}
	})

	t.Run("errors without vulnerable findings", func(t *testing.T) {
		r := NewScanResult("https://example.com")
		r.AddError("ERROR: timeout: deadline exceeded")
		r.Finalize()
		if r.ExitCode != ExitErrorsNoVulnerable {
			t.Fatalf("ExitCode = %d, want %d", r.ExitCode, ExitErrorsNoVulnerable)
		}
	})
}

func TestFindingMarkers(t *testing.T) {
	f := NewFinding("https://example.com/x", DetectorH2CL, HeaderEvidence{
		Description: "custom_header_name placement",
		Name:        "x-smuggled\r\ncontent-length: 4\r\n",
		Value:       "1",
	}, 0.05, 4.0, ClassificationVulnerable)

	markers := f.Markers()
	if len(markers) != 5 {
		t.Fatalf("got %d markers, want 5", len(markers))
	}
	want := []string{
		"Vulnerability_Type: H2.CL",
		"Vulnerable_URL: https://example.com/x",
		"Header_Description: custom_header_name placement",
		"Actual_Header_Name: x-smuggled\r\ncontent-length: 4\r\n",
		"Actual_Header_Value: 1",
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Fatalf("marker %d = %q, want %q", i, markers[i], want[i])
		}
	}
}
