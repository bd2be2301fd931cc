package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"packwright/internal/analysis"
	"packwright/internal/config"
	"packwright/internal/run"
	"packwright/internal/services"
)

func testRunner() *analysis.Runner {
	return analysis.NewRunner(config.Analysis{TaskTimeout: 5, FanInTimeout: 10, MaxConcurrent: 4}, nil)
}

func okTask(name string, payload string) analysis.Task {
	return analysis.Task{
		Name:            name,
		MaxPayloadBytes: 1024,
		Run: func(ctx context.Context) (json.RawMessage, error) {
			return json.RawMessage(payload), nil
		},
	}
}

func TestRunAllSucceed(t *testing.T) {
	runner := testRunner()
	outcome, err := runner.Run(context.Background(), []analysis.Task{
		okTask("a", `{"x":1}`),
		okTask("b", `{"x":2}`),
		okTask("c", `{"x":3}`),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Degraded || len(outcome.Missing) != 0 {
		t.Fatalf("unexpected degradation: %#v", outcome)
	}
	if len(outcome.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(outcome.Results))
	}
	for _, name := range []string{"a", "b", "c"} {
		if res, ok := outcome.Result(name); !ok || res.Status != run.TaskOk {
			t.Fatalf("missing result for %s: %#v", name, res)
		}
	}
}

func TestRetryOnceThenSucceed(t *testing.T) {
	var attempts atomic.Int32
	task := analysis.Task{
		Name:            "flaky",
		MaxPayloadBytes: 1024,
		Run: func(ctx context.Context) (json.RawMessage, error) {
			if attempts.Add(1) == 1 {
				return nil, errors.New("first attempt fails")
			}
			return json.RawMessage(`{}`), nil
		},
	}

	outcome, err := testRunner().Run(context.Background(), []analysis.Task{task})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Degraded {
		t.Fatal("retry success must not degrade the round")
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestNonCriticalFailureDegrades(t *testing.T) {
	failing := analysis.Task{
		Name:            "research",
		MaxPayloadBytes: 1024,
		Run: func(ctx context.Context) (json.RawMessage, error) {
			return nil, errors.New("backend down")
		},
	}

	outcome, err := testRunner().Run(context.Background(), []analysis.Task{
		okTask("summary", `{}`),
		failing,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Degraded {
		t.Fatal("expected degraded outcome")
	}
	if len(outcome.Missing) != 1 || outcome.Missing[0] != "research" {
		t.Fatalf("unexpected missing set: %v", outcome.Missing)
	}
	if _, ok := outcome.Result("summary"); !ok {
		t.Fatal("surviving result should still be present")
	}
	if res := outcome.Results["research"]; res.Status != run.TaskFailed || res.Error == "" {
		t.Fatalf("failed task should record its cause: %#v", res)
	}
}

func TestCriticalFailureFailsRound(t *testing.T) {
	critical := analysis.Task{
		Name:            "titles",
		Critical:        true,
		MaxPayloadBytes: 1024,
		Run: func(ctx context.Context) (json.RawMessage, error) {
			return nil, errors.New("cannot generate")
		},
	}

	_, err := testRunner().Run(context.Background(), []analysis.Task{
		okTask("summary", `{}`),
		critical,
	})
	if err == nil {
		t.Fatal("expected round failure")
	}
}

func TestOversizedPayloadIsDefect(t *testing.T) {
	big := make([]byte, 64)
	for i := range big {
		big[i] = 'x'
	}
	task := analysis.Task{
		Name:            "echo",
		MaxPayloadBytes: 16,
		Run: func(ctx context.Context) (json.RawMessage, error) {
			return big, nil
		},
	}

	_, err := testRunner().Run(context.Background(), []analysis.Task{task})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation defect, got %v", err)
	}
}

func TestFailureDoesNotCancelSiblings(t *testing.T) {
	var siblingRan atomic.Bool
	tasks := []analysis.Task{
		{
			Name:            "fails",
			MaxPayloadBytes: 1024,
			Run: func(ctx context.Context) (json.RawMessage, error) {
				return nil, errors.New("boom")
			},
		},
		{
			Name:            "survives",
			MaxPayloadBytes: 1024,
			Run: func(ctx context.Context) (json.RawMessage, error) {
				siblingRan.Store(true)
				return json.RawMessage(`{}`), nil
			},
		},
	}

	outcome, err := testRunner().Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !siblingRan.Load() {
		t.Fatal("sibling task should have run")
	}
	if _, ok := outcome.Result("survives"); !ok {
		t.Fatal("sibling result missing")
	}
}
