package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dashsync/dashsync/pkg/configs/daemon"
	"github.com/dashsync/dashsync/pkg/discovery/kubernetes"
	"github.com/dashsync/dashsync/pkg/discovery/portainer"
	"github.com/dashsync/dashsync/pkg/logger"
	"github.com/dashsync/dashsync/pkg/loop"
	"github.com/dashsync/dashsync/pkg/loop/recurring"
	"github.com/dashsync/dashsync/pkg/pass"
	"github.com/dashsync/dashsync/pkg/utils/kubeutil"
)

// what the sync loop has done so far.
type stats struct {
	Passes  uint
	Changed uint
	Failed  uint
	Skipped uint

	// summary of the last report
	Last string
}

func (s stats) String() string {
	return fmt.Sprintf(
		"passes=%d changed=%d failed=%d skipped=%d last=(%s)",
		s.Passes, s.Changed, s.Failed, s.Skipped, s.Last,
	)
}

// passRunner is satisfied by *pass.Runner.
type passRunner interface {
	Run(context.Context) (pass.Report, error)
}

// Wrapper for monitoring loop tasks
//
// Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	// counter for execution of the task
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X", counter)

		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s with value = %v",
				counter, time.Since(timestamp), next, ret,
			)
		}()

		ret, next = task(ctx, t)
		return
	}
}

// syncTask runs a pass by runner.
//
// A pass skipped because another one (triggered by HTTP) is running is not an error.
func syncTask(logger *log.Logger, runner passRunner) recurring.Task[stats] {
	return func(ctx context.Context, s stats) (stats, bool, error) {
		report, err := runner.Run(ctx)
		if errors.Is(err, pass.ErrBusy) {
			logger.Println("skipped: another pass is running")
			s.Skipped += 1
			return s, false, nil
		}

		s.Passes += 1
		s.Last = report.String()
		if report.DiscoveryError != "" {
			logger.Printf("discovery has failed: %s", report.DiscoveryError)
		}
		if err != nil {
			logger.Printf("pass has failed: %s", err)
			s.Failed += 1
			return s, false, err
		}
		if report.Changed {
			s.Changed += 1
		}
		return s, report.Changed, nil
	}
}

// Manifest for starting the sync loop.
type LoopManifest struct {
	Policy recurring.Policy

	// upper limit of the time taken by a pass. No limit if 0.
	Timeout time.Duration
}

// StartSyncLoop runs passes by runner until the policy or ctx breaks it.
//
// # Returns
//
// - stats: what the loop has done.
//
// - error: the error which has broken the loop.
func StartSyncLoop(
	ctx context.Context,
	l *log.Logger,
	runner passRunner,
	manifest LoopManifest,
) (stats, error) {
	l = logger.By(l, logger.Copied(), logger.WithPrefix("[sync loop] "), logger.WithTimestamp())

	opts := []loop.LoopOption{}
	if manifest.Timeout > 0 {
		opts = append(opts, loop.WithTimeout(manifest.Timeout))
	}
	return loop.Start(
		ctx, stats{},
		monitor(l, syncTask(l, runner).Applied(manifest.Policy)),
		opts...,
	)
}

// buildDiscovery makes the Discovery configured.
func buildDiscovery(conf *daemon.DiscoveryConfig, l *log.Logger) (pass.Discovery, error) {
	if p := conf.Portainer(); p != nil {
		return portainer.New(
			portainer.Config{
				URL:      p.URL().String(),
				Endpoint: p.Endpoint(),
				Token:    p.Token(),
				Username: p.Username(),
				Password: p.Password(),
				Timeout:  p.Timeout(),
			},
			portainer.WithLogger(
				logger.By(l, logger.Copied(), logger.WithPrefix("[portainer] "), logger.WithTimestamp()),
			),
		), nil
	}

	if k := conf.Kubernetes(); k != nil {
		searchPath := []string{}
		if kc := k.Kubeconfig(); kc != "" {
			searchPath = append(searchPath, kc)
		}
		clientset, err := kubeutil.ConnectToK8s(searchPath...)
		if err != nil {
			return nil, err
		}
		return kubernetes.New(
			clientset, k.Namespace(), k.Annotation(),
			kubernetes.WithLogger(
				logger.By(l, logger.Copied(), logger.WithPrefix("[kubernetes] "), logger.WithTimestamp()),
			),
		), nil
	}

	return nil, errors.New("no discovery is configured")
}
