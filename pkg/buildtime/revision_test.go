package buildtime

import (
	"runtime/debug"
	"testing"
)

func TestRevisionOf(t *testing.T) {
	settings := func(kv ...string) *debug.BuildInfo {
		info := &debug.BuildInfo{}
		for i := 0; i+1 < len(kv); i += 2 {
			info.Settings = append(info.Settings, debug.BuildSetting{Key: kv[i], Value: kv[i+1]})
		}
		return info
	}

	for name, testcase := range map[string]struct {
		info *debug.BuildInfo
		ok   bool
		then string
	}{
		"no build info": {info: nil, ok: false, then: "unknown"},
		"no vcs settings": {
			info: settings("GOOS", "linux"), ok: true, then: "unknown",
		},
		"clean tree": {
			info: settings("vcs.revision", "0123456789abcdef0123", "vcs.modified", "false"), ok: true,
			then: "0123456789ab",
		},
		"modified tree": {
			info: settings("vcs.revision", "0123456789abcdef0123", "vcs.modified", "true"), ok: true,
			then: "0123456789ab-dirty",
		},
		"short revision is kept": {
			info: settings("vcs.revision", "abc123"), ok: true, then: "abc123",
		},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := revisionOf(testcase.info, testcase.ok); actual != testcase.then {
				t.Errorf("unexpected: (actual, expected) = (%s, %s)", actual, testcase.then)
			}
		})
	}
}
