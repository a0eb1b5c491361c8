package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Completer produces a completion for a single prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Call outcomes reported to a Recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCanceled = "canceled"
)

// Recorder observes individual persona calls.
type Recorder interface {
	ObservePersonaCall(persona, outcome string, elapsed time.Duration)
}

var errEmptyCompletion = errors.New("empty completion")

type Orchestrator struct {
	completer Completer
	personas  []Persona
	timeout   time.Duration
	recorder  Recorder
	logger    logging.Logger
}

type Option func(*Orchestrator)

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator builds an Orchestrator over personas (DefaultPersonas when
// empty). timeout bounds a whole Compose call; zero means no bound beyond the
// caller's context.
func NewOrchestrator(c Completer, personas []Persona, timeout time.Duration, l logging.Logger, opts ...Option) *Orchestrator {
	if len(personas) == 0 {
		personas = DefaultPersonas()
	}
	o := &Orchestrator{
		completer: c,
		personas:  append([]Persona(nil), personas...),
		timeout:   timeout,
		logger:    l.With("module", "agents"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Personas returns the configured personas in declaration order.
func (o *Orchestrator) Personas() []Persona {
	return append([]Persona(nil), o.personas...)
}

// Compose asks every persona concurrently and returns their answers in
// declaration order. If any call fails the whole composition fails with an
// *UpstreamError, in-flight siblings are cancelled and no partial answer is
// returned.
func (o *Orchestrator) Compose(ctx context.Context, prompt string) (*Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", common.ErrInvalidInput)
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	texts := make([]string, len(o.personas))
	errs := make([]error, len(o.personas))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range o.personas {
		g.Go(func() error {
			start := time.Now()
			text, err := o.completer.Complete(gctx, BuildPrompt(p, prompt))
			if err == nil && strings.TrimSpace(text) == "" {
				err = errEmptyCompletion
			}
			o.observe(p.Label, err, time.Since(start))
			if err != nil {
				errs[i] = err
				return err
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, o.upstreamError(ctx, errs)
	}

	answer := &Answer{Sections: make([]Section, len(o.personas))}
	for i, p := range o.personas {
		answer.Sections[i] = Section{Label: p.Label, Text: texts[i]}
	}
	return answer, nil
}

// upstreamError keeps the failures that caused the composition to fail and
// drops siblings that were only cancelled because of them.
func (o *Orchestrator) upstreamError(ctx context.Context, errs []error) error {
	var failed, cancelled []PersonaFailure

	for i, err := range errs {
		if err == nil {
			continue
		}
		f := PersonaFailure{Label: o.personas[i].Label, Err: err}
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			cancelled = append(cancelled, f)
			continue
		}
		failed = append(failed, f)
	}

	if len(failed) == 0 {
		failed = cancelled
	}

	for _, f := range failed {
		o.logger.Warn(ctx, "persona completion failed", "persona", f.Label, "error", f.Err)
	}

	return &UpstreamError{Failed: failed}
}

func (o *Orchestrator) observe(label string, err error, elapsed time.Duration) {
	if o.recorder == nil {
		return
	}
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		outcome = OutcomeCanceled
	default:
		outcome = OutcomeFailure
	}
	o.recorder.ObservePersonaCall(label, outcome, elapsed)
}
