package lifecycle

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CheckState compares the latest version with the installed one.
type CheckState string

const (
	CheckCurrent      CheckState = "current"
	CheckOutdated     CheckState = "outdated"
	CheckNotInstalled CheckState = "not_installed"
	CheckUnknown      CheckState = "unknown"
)

// CheckResult is the outcome of checking one package.
type CheckResult struct {
	Package   string     `json:"package" yaml:"package"`
	Latest    string     `json:"latest" yaml:"latest"`
	Installed string     `json:"installed,omitempty" yaml:"installed,omitempty"`
	State     CheckState `json:"state" yaml:"state"`
	Reason    string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Compare classifies a resolution against the installed version.
func Compare(name string, latest Latest, installed string) CheckResult {
	res := CheckResult{Package: name, Latest: latest.String(), Installed: installed}
	switch {
	case !latest.Usable():
		res.State = CheckUnknown
		if latest.Err != nil {
			res.Reason = latest.Err.Error()
		}
	case installed == "":
		res.State = CheckNotInstalled
	case installed == res.Latest:
		res.State = CheckCurrent
	default:
		res.State = CheckOutdated
	}
	return res
}

// Check resolves every orchestrator concurrently, at most limit at a time,
// and compares each with installed, keyed by package name. Results keep the
// order of orchestrators.
func Check(ctx context.Context, orchestrators []*Orchestrator, installed map[string]string, limit int) ([]CheckResult, error) {
	results := make([]CheckResult, len(orchestrators))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, o := range orchestrators {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := o.Package().Name
			results[i] = Compare(name, o.Resolve(gctx), installed[name])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
