package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/rawhttp1"
	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// runTECL iterates the TE catalog, baselining a well-formed GET against a
// probe carrying both a Transfer-Encoding variation and a deliberately
// undersized Content-Length: a front end that honors TE forwards the full
// chunked body while a back end honoring CL=4 leaves the remainder
// unconsumed on the socket and stalls (§4.5).
func runTECL(ctx context.Context, target Target, variations []variation.HeaderVariation, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) bool {
	for _, v := range variations {
		baseline := rawhttp1.NewRequest("GET", target.Path)
		baseline.Headers.Add("Host", target.Host)

		baselineElapsed, err := h1Probe(ctx, target, opts, baseline)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		probe := rawhttp1.NewRequest("POST", target.Path)
		probe.Headers.Add("Host", target.Host)
		probe.Headers.AddField(v.Field())
		for _, extra := range v.Extras() {
			probe.Headers.AddField(extra)
		}
		probe.Headers.Add("Content-Length", "4")
		probe.Body = []byte("8\r\nSMUGGLED\r\n0\r\n\r\n")

		probeElapsed, err := h1Probe(ctx, target, opts, probe)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		classification := report.Classify(baselineElapsed, probeElapsed, opts.ThresholdRatio, opts.Timeout.Seconds())
		log.Debug("te.cl variation classified",
			zap.String("description", v.Description),
			zap.Float64("baseline_elapsed", baselineElapsed),
			zap.Float64("probe_elapsed", probeElapsed),
			zap.String("classification", string(classification)),
		)
		if classification == report.ClassificationSafe {
			continue
		}

		f := report.NewFinding(target.URL(), report.DetectorTECL, report.HeaderEvidence{
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
