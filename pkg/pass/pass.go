// One reconciliation pass: discover container names, fold them into the
// Homer document, and save it.
//
// Collaborators (discovery, storage, hooks) are passed explicitly by Config,
// so that a pass can run against in-memory documents.
package pass

import (
	"context"
	"errors"
	"log"
	"time"

	xe "github.com/dashsync/dashsync/pkg/errors"
	"github.com/dashsync/dashsync/pkg/homer"
	xlog "github.com/dashsync/dashsync/pkg/logger"
	"github.com/dashsync/dashsync/pkg/naming"
	"github.com/dashsync/dashsync/pkg/reconcile"
)

var (
	// discovery has failed. A pass goes on with no containers.
	ErrDiscovery = errors.New("pass: discovery failed")

	// the document can not be loaded. A pass is aborted.
	ErrLoad = errors.New("pass: failed to load document")

	// the document can not be saved. Changes in the pass are lost.
	ErrSave = errors.New("pass: failed to save document")

	// a before-hook has refused the pass. The document is not saved.
	ErrHook = errors.New("pass: hook refused")
)

// Discovery lists names of running containers.
type Discovery interface {
	ListRunningContainerNames(context.Context) ([]string, error)
}

// Storage of the Homer document.
type Storage interface {
	Load(context.Context) (*homer.Document, error)
	Save(context.Context, *homer.Document) error
}

// Hook is notified with the report of a pass.
//
// Before is called before saving the document. If it returns error, the pass is aborted.
// After is called after the document is saved.
//
// Both receive the context of the pass, and should give up when it is done.
type Hook interface {
	Before(context.Context, Report) error
	After(context.Context, Report) error
}

type Config struct {
	Discovery Discovery
	Storage   Storage

	// optional.
	Hook Hook

	// optional. log.Default() is used if nil.
	Logger *log.Logger
}

// Run performs a pass.
//
// # Returns
//
// - Report: what the pass has done. It is returned even with error.
//
// - error: wraps ErrLoad, ErrHook or ErrSave, or nil.
// Failures of discovery are not error; see Report.DiscoveryError.
func Run(ctx context.Context, config Config) (Report, error) {
	logger := xlog.OrDefault(config.Logger)

	report := Report{Started: time.Now(), Decisions: []Decision{}}

	names, err := config.Discovery.ListRunningContainerNames(ctx)
	if err != nil {
		err = xe.WrapWithNote("discovery", errors.Join(ErrDiscovery, err))
		logger.Printf("error retrieving container names: %s", err)
		report.DiscoveryError = err.Error()
		names = nil
	}

	doc, err := config.Storage.Load(ctx)
	if err != nil {
		logger.Printf("error loading document: %s", err)
		report.Finished = time.Now()
		return report, xe.WrapWithNote("storage", errors.Join(ErrLoad, err))
	}

	for _, raw := range names {
		d := Fold(raw, doc)
		report.Decisions = append(report.Decisions, d)
		if d.Changed() {
			report.Changed = true
		}
		logDecision(logger, d)
	}

	if config.Hook != nil {
		if err := config.Hook.Before(ctx, report); err != nil {
			logger.Printf("document is not saved: %s", err)
			report.Finished = time.Now()
			return report, xe.WrapWithNote("before-hook", errors.Join(ErrHook, err))
		}
	}

	if err := config.Storage.Save(ctx, doc); err != nil {
		logger.Printf("error saving document: %s", err)
		report.Finished = time.Now()
		return report, xe.WrapWithNote("storage", errors.Join(ErrSave, err))
	}
	report.Saved = true
	report.Finished = time.Now()

	if config.Hook != nil {
		if err := config.Hook.After(ctx, report); err != nil {
			logger.Printf("after-hook failed: %s", err)
		}
	}

	return report, nil
}

// Fold decodes a container name and reconciles it into doc.
func Fold(raw string, doc *homer.Document) Decision {
	c := naming.Decode(raw)

	r, ok := reconcile.Admit(c)
	if ok {
		r = reconcile.Reconcile(c, doc)
	}

	return Decision{
		Raw:     raw,
		Name:    c.DisplayName,
		Outcome: r.Outcome,
		Group:   r.Group,
		Entry:   r.Entry,
		Reason:  r.Reason,
	}
}

// Changed reports whether the decision has modified the document.
func (d Decision) Changed() bool {
	return reconcile.Result{Outcome: d.Outcome, Entry: d.Entry}.Changed()
}

func logDecision(logger *log.Logger, d Decision) {
	switch d.Outcome {
	case reconcile.Inserted:
		logger.Printf("added %q (%s) in group %q", d.Name, d.Raw, d.Group)
	case reconcile.Renamed:
		if d.Entry != "" {
			logger.Printf("renamed %q to %q in group %q", d.Entry, d.Name, d.Group)
		}
	case reconcile.Deduplicated:
		logger.Printf("%q (%s) already exists as %q in group %q", d.Name, d.Raw, d.Entry, d.Group)
	case reconcile.Rejected:
		logger.Printf("skipped %q: %s", d.Raw, d.Reason)
	}
}
