package detector

import (
	"context"

	"go.uber.org/zap"

	"github.com/smuggledetect/smuggledetect/pkg/report"
	"github.com/smuggledetect/smuggledetect/pkg/variation"
)

// RunScan is the invocation surface named in §6:
// run_scan(url, types, headers, timeout, exit_first, h2_payload_placement,
// variation_files) -> ScanResult. It owns the sequential detector ordering
// (§5: CL.TE, TE.CL, H2.CL, H2.TE), the variation catalog loaded once and
// treated as immutable, and honors exit_first across detectors as well as
// within each one.
func RunScan(ctx context.Context, opts ScanOptions, log *zap.Logger) (*report.ScanResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts.applyDefaults()

	target, err := ParseTarget(opts.URL)
	if err != nil {
		return nil, err
	}

	teVariations := loadTEVariations(opts, log)
	clVariations := loadCLVariations(opts, log)

	agg := report.NewAggregator(target.URL(), log)

	stop := false
	if !stop && opts.wants(report.DetectorCLTE) {
		stop = runCLTE(ctx, target, teVariations, opts, agg, log)
	}
	if !stop && opts.wants(report.DetectorTECL) {
		stop = runTECL(ctx, target, teVariations, opts, agg, log)
	}
	if !stop && opts.wants(report.DetectorH2CL) {
		stop = runH2CL(ctx, target, clVariations, opts, agg, log)
	}
	if !stop && opts.wants(report.DetectorH2TE) {
		stop = runH2TE(ctx, target, teVariations, opts, agg, log)
	}
	if opts.IncludeUnimplemented {
		runCL0Stub(ctx, target, opts, agg, log)
		runH2ZeroStub(ctx, target, opts, agg, log)
	}

	return agg.Result(), nil
}

// loadTEVariations loads the TE catalog named by opts.TEVariationFile, or
// the built-in defaults if no file was named. Per §4.4 a catalog file that
// can't be read or parsed falls back to the built-in defaults rather than
// aborting the scan — the catalog is a convenience override, not a
// required input.
func loadTEVariations(opts ScanOptions, log *zap.Logger) []variation.HeaderVariation {
	if opts.TEVariationFile == "" {
		return variation.DefaultTEVariations()
	}
	v, err := variation.LoadCatalog(opts.TEVariationFile)
	if err != nil {
		log.Warn("TE variation catalog unreadable, falling back to defaults",
			zap.String("file", opts.TEVariationFile), zap.Error(err))
		return variation.DefaultTEVariations()
	}
	return v
}

func loadCLVariations(opts ScanOptions, log *zap.Logger) []variation.HeaderVariation {
	if opts.CLVariationFile == "" {
		return variation.DefaultCLVariations()
	}
	v, err := variation.LoadCatalog(opts.CLVariationFile)
	if err != nil {
		log.Warn("CL variation catalog unreadable, falling back to defaults",
			zap.String("file", opts.CLVariationFile), zap.Error(err))
		return variation.DefaultCLVariations()
	}
	return v
}
