// Package buildtime exposes the version stamped into the binary.
//
// VERSION and revision are plain text files beside this source,
// to be rewritten by the release build before `go build`.
// When revision is left as "unknown", the VCS revision recorded by the Go
// toolchain is used instead, if any.
package buildtime

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

const unknownRevision = "unknown"

func init() {
	version = strings.TrimSpace(version)
	revision = strings.TrimSpace(revision)
	if revision == "" || revision == unknownRevision {
		revision = revisionOf(debug.ReadBuildInfo())
	}
}

// revisionOf picks the VCS revision out of build settings.
//
// A revision built from a modified tree is suffixed with "-dirty".
func revisionOf(info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return unknownRevision
	}

	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return unknownRevision
	}
	if 12 < len(rev) {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// Version of dashsync, like "v0.1.0".
func Version() string {
	return version
}

// Revision is the commit which dashsync has been built from.
func Revision() string {
	return revision
}

// String is for -version and the startup log.
func String() string {
	return version + " (commit: " + revision + ")"
}

// UserAgent for requests sent by dashsync.
func UserAgent() string {
	return "dashsync/" + version
}
