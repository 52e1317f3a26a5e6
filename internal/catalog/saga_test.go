package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestSagaRunsAllSteps(t *testing.T) {
	var order []string
	s := NewSaga(nil)
	s.Add("one", func(ctx context.Context) error {
		order = append(order, "one")
		return nil
	}, nil)
	s.Add("two", func(ctx context.Context) error {
		order = append(order, "two")
		return nil
	}, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(order) != 2 || order[0] != "one" || order[1] != "two" {
		t.Fatalf("steps ran out of order: %v", order)
	}
}

func TestSagaRollsBackInReverse(t *testing.T) {
	var rolledBack []string
	boom := errors.New("boom")

	s := NewSaga(nil)
	s.Add("one", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			rolledBack = append(rolledBack, "one")
			return nil
		})
	s.Add("two", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			rolledBack = append(rolledBack, "two")
			return nil
		})
	s.Add("three", func(ctx context.Context) error { return boom }, nil)

	err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing step")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if stepErr.Step != "three" {
		t.Fatalf("failed step: got %q want %q", stepErr.Step, "three")
	}
	if !errors.Is(err, boom) {
		t.Fatal("StepError must unwrap to the original error")
	}

	if len(rolledBack) != 2 || rolledBack[0] != "two" || rolledBack[1] != "one" {
		t.Fatalf("rollback order: got %v want [two one]", rolledBack)
	}
}

func TestSagaSkipsLaterStepsAfterFailure(t *testing.T) {
	ran := false
	s := NewSaga(nil)
	s.Add("fail", func(ctx context.Context) error { return errors.New("nope") }, nil)
	s.Add("after", func(ctx context.Context) error {
		ran = true
		return nil
	}, nil)

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if ran {
		t.Fatal("steps after a failure must not run")
	}
}

func TestSagaSwallowsRollbackFailure(t *testing.T) {
	boom := errors.New("boom")
	s := NewSaga(nil)
	s.Add("one", func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return errors.New("rollback broke") })
	s.Add("two", func(ctx context.Context) error { return boom }, nil)

	err := s.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("caller must get the original failure, got %v", err)
	}
}
