package pass

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dashsync/dashsync/pkg/metrics"
	"golang.org/x/sync/semaphore"
)

// a pass is running. The trigger is skipped.
var ErrBusy = errors.New("pass: another pass is running")

// Runner serializes passes.
//
// Both the periodic loop and on-demand triggers (HTTP) go through one Runner.
// A trigger arriving while a pass is running is not queued, but skipped with ErrBusy.
type Runner struct {
	config Config
	sem    *semaphore.Weighted

	mu   sync.Mutex
	last *Report
}

func NewRunner(config Config) *Runner {
	return &Runner{config: config, sem: semaphore.NewWeighted(1)}
}

// Run performs a pass unless another one is running.
//
// See the package function Run for Report and error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if !r.sem.TryAcquire(1) {
		metrics.ObservePass(metrics.ResultBusy, 0)
		return Report{}, ErrBusy
	}
	defer r.sem.Release(1)

	begin := time.Now()
	report, err := Run(ctx, r.config)
	metrics.ObservePass(resultLabel(err), time.Since(begin))
	if report.DiscoveryError != "" {
		metrics.ObserveDiscoveryFailure()
	}
	for _, d := range report.Decisions {
		metrics.ObserveCandidate(d.Outcome.String())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &report

	return report, err
}

// Last returns the report of the last pass run by r.
//
// It returns false when no passes have been run.
func (r *Runner) Last() (Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrLoad):
		return metrics.ResultLoad
	case errors.Is(err, ErrHook):
		return metrics.ResultHook
	case errors.Is(err, ErrSave):
		return metrics.ResultSave
	}
	return metrics.ResultUnknown
}
