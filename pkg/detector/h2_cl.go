package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// runH2CL iterates the CL catalog, baselining a well-formed H2 POST against
// a probe whose content-length directive (placed per H2PayloadPlacement)
// overstates the body by one byte: a front end that translates the H2
// request to HTTP/1.1 preserving that content-length stalls a back end
// waiting for a byte that never arrives (§4.5).
func runH2CL(ctx context.Context, target Target, variations []variation.HeaderVariation, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) bool {
	for _, v := range variations {
		baselineElapsed, err := h2Probe(ctx, target, opts, target.Path,
			header.List{header.NewField("content-length", "3")}, []byte("abc"), true)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		directiveName := v.HeaderName
		if directiveName == "" {
			directiveName = "content-length"
		}
		placed := place(opts.H2PayloadPlacement, target.Path, directiveName, "4")

		path := target.Path
		var headers header.List
		if placed.pathOverride != "" {
			path = placed.pathOverride
		} else if placed.extraHeader != nil {
			headers.AddField(*placed.extraHeader)
		}

		probeElapsed, err := h2Probe(ctx, target, opts, path, headers, []byte("abc"), true)
		if err != nil {
			agg.RecordError(string(errors.TypeOf(err)), err.Error())
			continue
		}

		classification := report.Classify(baselineElapsed, probeElapsed, opts.ThresholdRatio, opts.Timeout.Seconds())
		log.Debug("h2.cl variation classified",
			zap.String("description", v.Description),
			zap.String("placement", string(opts.H2PayloadPlacement)),
			zap.Float64("baseline_elapsed", baselineElapsed),
			zap.Float64("probe_elapsed", probeElapsed),
			zap.String("classification", string(classification)),
		)
		if classification == report.ClassificationSafe {
			continue
		}

		f := report.NewFinding(target.URL(), report.DetectorH2CL, report.HeaderEvidence{
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
