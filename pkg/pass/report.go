package pass

import (
	"fmt"
	"strings"
	"time"

	"github.com/dashsync/dashsync/pkg/reconcile"
)

// Decision is what a pass has done for a container name.
type Decision struct {
	// container name as discovered
	Raw string `json:"raw"`

	// decoded display name
	Name string `json:"name,omitempty"`

	Outcome reconcile.Outcome `json:"outcome"`
	Group   string            `json:"group,omitempty"`
	Entry   string            `json:"entry,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

// Report of a pass.
type Report struct {
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// one for each discovered container name, in discovered order.
	Decisions []Decision `json:"decisions"`

	// set when discovery failed. The pass went on with no container names.
	DiscoveryError string `json:"discoveryError,omitempty"`

	// true when any decision modified the document.
	Changed bool `json:"changed"`

	// true when the document is saved.
	Saved bool `json:"saved"`
}

// Count returns the number of decisions with the outcome.
func (r Report) Count(o reconcile.Outcome) int {
	n := 0
	for _, d := range r.Decisions {
		if d.Outcome == o {
			n += 1
		}
	}
	return n
}

func (r Report) String() string {
	sb := new(strings.Builder)
	fmt.Fprintf(
		sb, "%d containers: inserted=%d renamed=%d deduplicated=%d rejected=%d (changed=%t saved=%t)",
		len(r.Decisions),
		r.Count(reconcile.Inserted), r.Count(reconcile.Renamed),
		r.Count(reconcile.Deduplicated), r.Count(reconcile.Rejected),
		r.Changed, r.Saved,
	)
	if r.DiscoveryError != "" {
		fmt.Fprintf(sb, " / discovery error: %s", r.DiscoveryError)
	}
	return sb.String()
}
