package submissions

import (
	"context"
	"time"

	"github.com/wolfman30/landing-intake/internal/observability/metrics"
	"github.com/wolfman30/landing-intake/pkg/logging"
)

// Policy decides what a failing step does to the request.
type Policy int

const (
	// Critical steps abort the request with their error.
	Critical Policy = iota
	// BestEffort steps are logged and skipped.
	BestEffort
)

func (p Policy) String() string {
	if p == Critical {
		return "critical"
	}
	return "best_effort"
}

// Step is one external call made while handling a submission.
type Step struct {
	Provider  string
	Operation string
	Policy    Policy
	Run       func(ctx context.Context) error
}

type stepRunner struct {
	metrics *metrics.SubmissionMetrics
	logger  *logging.Logger
}

// run executes steps in order and returns the first critical failure.
func (s stepRunner) run(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		start := time.Now()
		err := step.Run(ctx)
		s.metrics.ObserveExternalCall(step.Provider, step.Operation, err, time.Since(start).Seconds())
		if err == nil {
			continue
		}
		if step.Policy == Critical {
			s.logger.Error("submission step failed",
				"provider", step.Provider,
				"operation", step.Operation,
				"policy", step.Policy.String(),
				"error", err,
			)
			return err
		}
		s.logger.Warn("submission step failed, continuing",
			"provider", step.Provider,
			"operation", step.Operation,
			"policy", step.Policy.String(),
			"error", err,
		)
	}
	return nil
}
