package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/report"
)

// DetectorCL0 and DetectorH2Zero name the two stub detectors. They are not
// part of report.DetectorType's closed set (§3 lists only the four real
// probe kinds): a Finding can never carry one of these as its Type, so they
// live here rather than in pkg/report.
const (
	DetectorCL0    = "CL.0"
	DetectorH2Zero = "H2.0"
)

// runCL0Stub and runH2ZeroStub re-validate the target URL (no connection is
// opened), then refuse to guess at undocumented payload semantics: both CL.0 and H2.0 were listed in the original tool's
// planned detector set but never documented precisely enough to reproduce,
// and original_source/ carries no implementation to consult (see
// DESIGN.md's Open Question resolution). Returning ErrorTypeNotImplemented
// lets callers distinguish "not supported" from "probe inconclusive".

func runCL0Stub(ctx context.Context, target Target, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) {
	if _, err := ParseTarget(target.URL()); err != nil {
		agg.RecordError(string(errors.TypeOf(err)), err.Error())
		return
	}
	err := errors.NewNotImplementedError(DetectorCL0)
	log.Info("detector not implemented", zap.String("detector", DetectorCL0))
	agg.RecordError(string(err.Type), err.Error())
}

func runH2ZeroStub(ctx context.Context, target Target, opts ScanOptions, agg *report.Aggregator, log *zap.Logger) {
	if _, err := ParseTarget(target.URL()); err != nil {
		agg.RecordError(string(errors.TypeOf(err)), err.Error())
		return
	}
	err := errors.NewNotImplementedError(DetectorH2Zero)
	log.Info("detector not implemented", zap.String("detector", DetectorH2Zero))
	agg.RecordError(string(err.Type), err.Error())
}
