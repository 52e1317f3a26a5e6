package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Saga runs a sequence of dependent steps (create product, create variant,
// upload images, ...) and, when one fails, rolls back the completed steps
// in reverse order on a best-effort basis. It exists because half-created
// products with orphaned images are worse than a clean failure.
type Saga struct {
	steps []sagaStep
	log   *zap.Logger
}

type sagaStep struct {
	name     string
	run      func(ctx context.Context) error
	rollback func(ctx context.Context) error
}

// StepError names the step that failed so the caller can report precisely
// what went wrong.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func NewSaga(log *zap.Logger) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saga{log: log}
}

// Add appends a step. rollback may be nil for steps with nothing to undo.
func (s *Saga) Add(name string, run, rollback func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, run: run, rollback: rollback})
}

// Run executes the steps in order. On the first failure it attempts to
// roll back every completed step in reverse; rollback failures are logged
// and swallowed, the original failure is what the caller gets.
func (s *Saga) Run(ctx context.Context) error {
	completed := make([]sagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		if err := step.run(ctx); err != nil {
			s.log.Warn("saga step failed, rolling back",
				zap.String("step", step.name),
				zap.Int("completed", len(completed)),
				zap.Error(err),
			)
			for i := len(completed) - 1; i >= 0; i-- {
				c := completed[i]
				if c.rollback == nil {
					continue
				}
				if rbErr := c.rollback(ctx); rbErr != nil {
					s.log.Error("saga rollback failed",
						zap.String("step", c.name),
						zap.Error(rbErr),
					)
				}
			}
			return &StepError{Step: step.name, Err: err}
		}
		completed = append(completed, step)
	}
	return nil
}
