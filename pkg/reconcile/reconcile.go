// Merge policy of Candidates into a Homer document.
//
// For each candidate, exactly one of Outcome is reached:
//
//	Decoded --+--> Rejected      (hidden, invalid, or no group to put it in)
//	          +--> Renamed       (an entry has the same name ignoring case)
//	          +--> Deduplicated  (an entry has a similar name. See Similar)
//	          +--> Inserted      (appended to the group of its category)
//
// Entries are never removed, and reconciling the same candidate twice
// changes nothing at the second time.
package reconcile

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dashsync/dashsync/pkg/homer"
	"github.com/dashsync/dashsync/pkg/naming"
)

const (
	// prefix of logo path of new entries.
	LogoDir = "assets/tools/"

	// target of new entries.
	DefaultTarget = "_blank"
)

type Outcome int

const (
	Rejected Outcome = iota
	Renamed
	Deduplicated
	Inserted
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Renamed:
		return "renamed"
	case Deduplicated:
		return "deduplicated"
	case Inserted:
		return "inserted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for _, known := range []Outcome{Rejected, Renamed, Deduplicated, Inserted} {
		if string(text) == known.String() {
			*o = known
			return nil
		}
	}
	return fmt.Errorf("unknown outcome: %q", text)
}

// Result tells what Reconcile (or Admit) has done for a candidate.
type Result struct {
	Outcome Outcome

	// name of the group where the entry is renamed, found or inserted.
	Group string

	// Renamed: name of the entry before renaming. Empty if it has had the name already.
	// Deduplicated: name of the entry which is similar to the candidate.
	Entry string

	// why it is Rejected.
	Reason string
}

// Changed reports whether the document has been modified.
func (r Result) Changed() bool {
	switch r.Outcome {
	case Inserted:
		return true
	case Renamed:
		return r.Entry != ""
	}
	return false
}

// Admit decides whether a candidate can be passed to Reconcile.
//
// When it can not, Admit returns a Rejected Result and false.
func Admit(c naming.Candidate) (Result, bool) {
	if c.DisplayName == "" {
		return Result{Outcome: Rejected, Reason: "empty name"}, false
	}
	if c.Hidden {
		return Result{Outcome: Rejected, Reason: "hidden"}, false
	}
	if !c.Valid {
		reason := "invalid name"
		if err := naming.Validate(c.NormalizedName); err != nil {
			reason = err.Error()
		}
		return Result{Outcome: Rejected, Reason: reason}, false
	}
	return Result{}, true
}

// Reconcile folds a candidate into doc.
//
// c should be admitted by Admit.
//
// It tries, in order:
//
// 1. rename: the first entry whose name equals c.NormalizedName in lower case
// gets c.DisplayName as its name.
//
// 2. dedup: when any entry is Similar to c.NormalizedName, c is dropped.
//
// 3. insert: c is appended to the group named c.Category (case-insensitive),
// or the group "Tools" if there are no such group.
// When "Tools" is missing too, c is dropped. Groups are never created.
func Reconcile(c naming.Candidate, doc *homer.Document) Result {
	for gi := range doc.Services {
		g := &doc.Services[gi]
		for ei := range g.Items {
			e := &g.Items[ei]
			if strings.ToLower(e.Name) != c.NormalizedName {
				continue
			}
			r := Result{Outcome: Renamed, Group: g.Name}
			if e.Name != c.DisplayName {
				r.Entry = e.Name
				e.Name = c.DisplayName
			}
			return r
		}
	}

	for _, g := range doc.Services {
		for _, e := range g.Items {
			if Similar(c.NormalizedName, e.Name) {
				return Result{Outcome: Deduplicated, Group: g.Name, Entry: e.Name}
			}
		}
	}

	category := c.Category
	g := findGroup(doc, category)
	if g == nil {
		category = naming.DefaultCategory
		g = findGroup(doc, category)
	}
	if g == nil {
		return Result{
			Outcome: Rejected,
			Reason:  fmt.Sprintf("no group for %q nor %q", c.Category, naming.DefaultCategory),
		}
	}

	g.Items = append(g.Items, homer.Entry{
		Name:     c.DisplayName,
		Logo:     LogoDir + c.NormalizedName + ".png",
		Subtitle: "",
		Tag:      category,
		URL:      "",
		Target:   DefaultTarget,
	})
	return Result{Outcome: Inserted, Group: g.Name}
}

func findGroup(doc *homer.Document, name string) *homer.Group {
	for i := range doc.Services {
		if strings.EqualFold(doc.Services[i].Name, name) {
			return &doc.Services[i]
		}
	}
	return nil
}

var nonWord = regexp.MustCompile(`\W+`)

// Tokens splits s in lower case by non-word characters.
//
// Leading or trailing non-word characters yield an empty token, and it is
// compared as any other token: "plex." and "Radarr (4K)" share "".
func Tokens(s string) []string {
	return nonWord.Split(strings.ToLower(s), -1)
}

// Similar reports whether a candidate name looks like an existing entry name.
//
// They are similar when either of:
//
// - all tokens of candidate are in tokens of existing, or
//
// - any token of existing is in tokens of candidate.
//
// This is loose: "Plex" is similar to "Old Plex", and also "Plex Exporter"
// is similar to "Plex". Dropping a new tile is preferred to doubling one.
func Similar(candidate, existing string) bool {
	ct, et := Tokens(candidate), Tokens(existing)

	all := true
	for _, t := range ct {
		if !slices.Contains(et, t) {
			all = false
			break
		}
	}
	if all {
		return true
	}

	for _, t := range et {
		if slices.Contains(ct, t) {
			return true
		}
	}
	return false
}
