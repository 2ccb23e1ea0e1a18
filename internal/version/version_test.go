package version

import (
	"strings"
	"testing"
)

func TestColoredPlainMatchesVersion(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	for _, v := range []string{"0.1.0-dev", "1.2.3", "2.0.0-rc.1", "7"} {
		Version = v
		if got := Colored(false); got != v {
			t.Errorf("Colored(false) = %q, want %q", got, v)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-dev"
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes in %q", got)
	}
	if !strings.HasSuffix(got, "-dev") {
		t.Fatalf("suffix must stay plain: %q", got)
	}
}

func TestLongIncludesBuildMetadata(t *testing.T) {
	origV, origC, origD := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origV, origC, origD }()

	Version, GitCommit, BuildDate = "1.0.0", "abc123", "2024-01-15"
	if got, want := Long(false), "qgraph 1.0.0 (abc123) built 2024-01-15"; got != want {
		t.Fatalf("Long = %q, want %q", got, want)
	}
	if Producer() != "qgraph 1.0.0" {
		t.Fatalf("Producer = %q", Producer())
	}
}
