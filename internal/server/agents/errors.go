package agents

import (
	"strings"

	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// PersonaFailure records why one persona's completion failed.
type PersonaFailure struct {
	Label string
	Err   error
}

// UpstreamError is returned when at least one persona completion failed.
// It matches common.ErrUpstreamFailure and unwraps to the individual causes.
type UpstreamError struct {
	Failed []PersonaFailure
}

func (e *UpstreamError) Error() string {
	return common.ErrUpstreamFailure.Error() + ": " + strings.Join(e.Labels(), ", ")
}

func (e *UpstreamError) Is(target error) bool {
	return target == common.ErrUpstreamFailure
}

func (e *UpstreamError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// Labels returns the failed persona labels in declaration order.
func (e *UpstreamError) Labels() []string {
	labels := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		labels = append(labels, f.Label)
	}
	return labels
}
