package recurring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dashsync/dashsync/pkg/loop"
	"github.com/dashsync/dashsync/pkg/loop/recurring"
)

func TestParsePolicy(t *testing.T) {
	for name, testcase := range map[string]struct {
		when        string
		then        recurring.Policy
		expectError bool
	}{
		"every means every default interval": {
			when: "every",
			then: recurring.Every(0),
		},
		"every: means every default interval": {
			when: "every:",
			then: recurring.Every(0),
		},
		"every:3m means every 3 minutes": {
			when: "every:3m",
			then: recurring.Every(3 * time.Minute),
		},
		"every:someday can not be parsed (someday is not time.Duration)": {
			when:        "every:someday",
			expectError: true,
		},
		"every:-1s can not be parsed (interval should be positive)": {
			when:        "every:-1s",
			expectError: true,
		},
		"once means once": {
			when: "once",
			then: recurring.Once(),
		},
		"once:param can not be parsed (it should not take any parameters)": {
			when:        "once:param",
			expectError: true,
		},
		"empty string can not be parsed (it is not policy)": {
			when:        "",
			expectError: true,
		},
		"unknown policy can not be parsed (it is not policy)": {
			when:        "???????unknown??????",
			expectError: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			when, expected := testcase.when, testcase.then
			actual, err := recurring.ParsePolicy(when)

			if testcase.expectError {
				if err == nil {
					t.Fatal("expected error does not occured")
				}
				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if actual != expected {
				t.Errorf("unmatch: (actual, expected) = (%v, %v)", actual, expected)
			}
		})
	}
}

func TestPolicy_Next(t *testing.T) {
	fake := errors.New("fake")

	type When struct {
		policy  recurring.Policy
		changed bool
		err     error
	}
	type Then struct {
		interval time.Duration
		goOn     bool
		err      error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			next := when.policy.Next(when.changed, when.err)
			interval, goOn := next.Interval()
			if goOn != then.goOn || interval != then.interval {
				t.Errorf(
					"unexpected next: (actual, expected) = ((%s, %v), (%s, %v))",
					interval, goOn, then.interval, then.goOn,
				)
			}

			// observe the error Next carries through a loop.
			_, err := loop.Start(context.Background(), 0, func(context.Context, int) (int, loop.Next) {
				if goOn {
					return 0, loop.Break(nil)
				}
				return 0, next
			})
			if !errors.Is(err, then.err) {
				t.Errorf("unexpected error: (actual, expected) = (%v, %v)", err, then.err)
			}
		}
	}

	t.Run("every continues after its interval", theory(
		When{policy: recurring.Every(time.Minute), changed: true},
		Then{interval: time.Minute, goOn: true},
	))
	t.Run("every continues even after an error", theory(
		When{policy: recurring.Every(time.Minute), err: fake},
		Then{interval: time.Minute, goOn: true},
	))
	t.Run("once breaks without error after a successful run", theory(
		When{policy: recurring.Once(), changed: true},
		Then{goOn: false, err: nil},
	))
	t.Run("once breaks with the error of the run", theory(
		When{policy: recurring.Once(), err: fake},
		Then{goOn: false, err: fake},
	))
}

func TestDefaulted(t *testing.T) {
	for name, testcase := range map[string]struct {
		when recurring.Policy
		then recurring.Policy
	}{
		"every without interval gets the default": {
			when: recurring.Every(0), then: recurring.Every(10 * time.Minute),
		},
		"every with interval keeps it": {
			when: recurring.Every(time.Minute), then: recurring.Every(time.Minute),
		},
		"once is kept": {
			when: recurring.Once(), then: recurring.Once(),
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := recurring.Defaulted(testcase.when, 10*time.Minute)
			if actual != testcase.then {
				t.Errorf("unmatch: (actual, expected) = (%v, %v)", actual, testcase.then)
			}
		})
	}
}

func TestTask_Applied(t *testing.T) {
	runs := 0
	task := recurring.Task[int](func(_ context.Context, v int) (int, bool, error) {
		runs += 1
		return v + 1, true, nil
	})

	actual, err := loop.Start(context.Background(), 41, task.Applied(recurring.Once()))
	if err != nil {
		t.Fatal(err)
	}
	if actual != 42 || runs != 1 {
		t.Errorf("unexpected: (value, runs) = (%d, %d), expected (42, 1)", actual, runs)
	}
}
