package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// runH2TE iterates the TE catalog, baselining a well-formed H2 POST against
// a probe carrying a transfer-encoding directive (placed per
// H2PayloadPlacement) and a body missing its chunked terminator CRLF, left
// open with end_stream=false: a back end that honors the TE directive waits
// for a terminator that never arrives (§4.5).
func runH2TE(ctx context.Context, target Target, variations []variation.HeaderVariation, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) bool {
	for _, v := range variations {
		baselineElapsed, err := h2Probe(ctx, target, opts, target.Path, nil, []byte("ok"), true)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		directiveName := v.HeaderName
		if directiveName == "" {
			directiveName = "transfer-encoding"
		}
		directiveValue := v.HeaderValue
		if directiveValue == "" {
			directiveValue = "chunked"
		}
		placed := place(opts.H2PayloadPlacement, target.Path, directiveName, directiveValue)

		path := target.Path
		var headers header.List
		if placed.pathOverride != "" {
			path = placed.pathOverride
		} else if placed.extraHeader != nil {
			headers.AddField(*placed.extraHeader)
		}
		for _, extra := range v.Extras() {
			headers.AddField(extra)
		}

		probeElapsed, err := h2Probe(ctx, target, opts, path, headers, []byte("0\r\n"), false)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		classification := report.Classify(baselineElapsed, probeElapsed, opts.ThresholdRatio, opts.Timeout.Seconds())
		log.Debug("h2.te variation classified",
			zap.String("description", v.Description),
			zap.String("placement", string(opts.H2PayloadPlacement)),
			zap.Float64("baseline_elapsed", baselineElapsed),
			zap.Float64("probe_elapsed", probeElapsed),
			zap.String("classification", string(classification)),
		)
		if classification == report.ClassificationSafe {
			continue
		}

		f := report.NewFinding(target.URL(), report.DetectorH2TE, report.HeaderEvidence{
			Description: v.Description,
			Name:        placed.evidenceName,
			Value:       placed.evidenceValue,
		}, baselineElapsed, probeElapsed, classification)
		agg.RecordFinding(f)

		if classification == report.ClassificationVulnerable && opts.ExitFirst {
			return true
		}
	}
	return false
}
