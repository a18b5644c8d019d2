// Decoder for container names.
//
// A container name encodes up to three fields joined by Delimiter:
//
//	{name}-{category}-{hidden marker}
//
// In the name field, "_" stands for a space.
// EscapeMarker is stripped from every field.
//
// Example:
//
//	Decode("Plex_Server-Media-")      // => "Plex Server" in "Media", visible
//	Decode("Sonarr-Media-£hidden£")   // => "Sonarr" in "Media", hidden
//	Decode("grafana")                 // => "grafana" in "Tools", visible
package naming

import (
	"errors"
	"strings"
)

const (
	// separator of fields in a container name.
	Delimiter = "-"

	// marker which is not a part of any field. It is removed from each field.
	EscapeMarker = "£"

	// category used when a container name does not specify one.
	DefaultCategory = "Tools"
)

// substrings which make a name invalid. They are compared in lower case.
var DeniedKeywords = []string{"duplicate", "invalid", "reserved"}

var (
	ErrEmptyName         = errors.New("naming: name is empty")
	ErrMixedAlphanumeric = errors.New("naming: name mixes letters and digits")
	ErrDeniedKeyword     = errors.New("naming: name contains denied keyword")
)

// Candidate is an entry derived from a container name.
type Candidate struct {
	// container name which this candidate is decoded from.
	Raw string

	// name to be shown. Spaces are restored and casing is kept.
	DisplayName string

	// lower case DisplayName. It is used for comparison.
	NormalizedName string

	// category which the entry should be put in.
	//
	// DefaultCategory when the container name has no category.
	Category string

	// true when the container name has hidden marker.
	Hidden bool

	// true when NormalizedName passes the naming policy. See Validate.
	Valid bool
}

// Decode parses a container name into a Candidate.
//
// Decode never fails. Malformed names yield Candidate with Valid == false.
func Decode(raw string) Candidate {
	fields := strings.Split(raw, Delimiter)
	field := func(nth int) string {
		if len(fields) <= nth {
			return ""
		}
		return strings.ReplaceAll(fields[nth], EscapeMarker, "")
	}

	display := strings.ReplaceAll(field(0), "_", " ")
	normalized := strings.ToLower(display)

	category := field(1)
	if category == "" {
		category = DefaultCategory
	}

	return Candidate{
		Raw:            raw,
		DisplayName:    display,
		NormalizedName: normalized,
		Category:       category,
		Hidden:         field(2) != "",
		Valid:          Validate(normalized) == nil,
	}
}

// Validate checks name against the naming policy.
//
// # Returns
//
// - nil: name is acceptable.
//
// - ErrEmptyName: name is empty.
//
// - ErrMixedAlphanumeric: name has both of ASCII letters and digits.
// Such names are likely generated ones (e.g. "grafana2", "app-3fa9c").
//
// - ErrDeniedKeyword: name contains one of DeniedKeywords.
func Validate(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	hasDigit, hasLetter := false, false
	for _, r := range name {
		switch {
		case '0' <= r && r <= '9':
			hasDigit = true
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
			hasLetter = true
		}
	}
	if hasDigit && hasLetter {
		return ErrMixedAlphanumeric
	}

	lower := strings.ToLower(name)
	for _, kw := range DeniedKeywords {
		if strings.Contains(lower, kw) {
			return ErrDeniedKeyword
		}
	}
	return nil
}
