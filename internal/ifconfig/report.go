package ifconfig

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Step is the outcome of one commit operation.
type Step struct {
	Label string
	Err   error
}

// Report collects the outcome of every operation of a commit.
type Report struct {
	Steps []Step
}

func (r *Report) add(label string, err error) {
	r.Steps = append(r.Steps, Step{Label: label, Err: err})
}

// Failed returns the steps that did not succeed.
func (r *Report) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Labels returns the label of every step, in order.
func (r *Report) Labels() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Label
	}
	return out
}

// Err folds the failed steps into one error, or nil.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var result *multierror.Error
	for _, s := range r.Failed() {
		result = multierror.Append(result, fmt.Errorf("%s: %w", s.Label, s.Err))
	}
	if result != nil {
		result.ErrorFormat = listFormat
	}
	return result.ErrorOrNil()
}

func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}
