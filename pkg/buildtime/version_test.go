package buildtime_test

import (
	"strings"
	"testing"

	"github.com/dashsync/dashsync/pkg/buildtime"
)

func TestVersion(t *testing.T) {
	if v := buildtime.Version(); v == "" || strings.ContainsAny(v, " \n") {
		t.Errorf("malformed version: %q", v)
	}
	if r := buildtime.Revision(); r == "" || strings.ContainsAny(r, " \n") {
		t.Errorf("malformed revision: %q", r)
	}

	expected := buildtime.Version() + " (commit: " + buildtime.Revision() + ")"
	if actual := buildtime.String(); actual != expected {
		t.Errorf("unexpected: (actual, expected) = (%s, %s)", actual, expected)
	}
	if actual := buildtime.UserAgent(); actual != "dashsync/"+buildtime.Version() {
		t.Errorf("unexpected user agent: %s", actual)
	}
}
