package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/rawhttp1"
	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// runCLTE iterates the TE catalog, baselining a well-formed Content-Length
// request against a probe that adds a competing Transfer-Encoding header
// and a body crafted to starve a TE-honoring back end (§4.5's "starve-TE-
// reader" variant). Returns true if exit_first fired.
func runCLTE(ctx context.Context, target Target, variations []variation.HeaderVariation, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) bool {
	for _, v := range variations {
		baseline := rawhttp1.NewRequest("POST", target.Path)
		baseline.Headers.Add("Host", target.Host)
		baseline.Headers.Add("Content-Length", "6")
		baseline.Body = []byte("0\r\n\r\nX")

		baselineElapsed, err := h1Probe(ctx, target, opts, baseline)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		probe := rawhttp1.NewRequest("POST", target.Path)
		probe.Headers.Add("Host", target.Host)
		probe.Headers.Add("Content-Length", "7")
		probe.Headers.AddField(v.Field())
		for _, extra := range v.Extras() {
			probe.Headers.AddField(extra)
		}
		probe.Body = []byte("1\r\nA\r\nX")

		probeElapsed, err := h1Probe(ctx, target, opts, probe)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		classification := report.Classify(baselineElapsed, probeElapsed, opts.ThresholdRatio, opts.Timeout.Seconds())
		log.Debug("cl.te variation classified",
			zap.String("description", v.Description),
			zap.Float64("baseline_elapsed", baselineElapsed),
			zap.Float64("probe_elapsed", probeElapsed),
			zap.String("classification", string(classification)),
		)
		if classification == report.ClassificationSafe {
			continue
		}

		f := report.NewFinding(target.URL(), report.DetectorCLTE, report.HeaderEvidence{
			Description: v.Description,
			Name:        v.HeaderName,
			Value:       v.HeaderValue,
		}, baselineElapsed, probeElapsed, classification)
		agg.RecordFinding(f)

		if classification == report.ClassificationVulnerable && opts.ExitFirst {
			return true
		}
	}
	return false
}
