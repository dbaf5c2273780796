package tensorgen

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/augustjohansson/ffcx/tensor"
)

// GenerateAll generates the integral classes of irs on at most workers
// goroutines. Results are in input order; on failure the error of the first
// failing integral in that order is returned.
func GenerateAll(irs []*tensor.IntegralIR, prefix string, params Parameters, workers int) ([]*Code, error) {
	codes := make([]*Code, len(irs))
	if len(irs) == 0 {
		return codes, nil
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	errs := make([]error, len(irs))
	var g errgroup.Group
	g.SetLimit(min(workers, len(irs)))
	for k := range irs {
		g.Go(func() error {
			codes[k], errs[k] = GenerateIntegralCode(irs[k], prefix, params)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return codes, nil
}
