package markdown

import (
	"strings"
	"testing"
)

func normalizeTwice(t *testing.T, input string) string {
	t.Helper()
	once := Normalize(input)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("normalize is not idempotent:\nfirst:  %q\nsecond: %q", once, twice)
	}
	return once
}

func TestNormalizeBulletMarkers(t *testing.T) {
	got := normalizeTwice(t, "* one\n+ two\n  • three\n- four")
	want := "- one\n- two\n- three\n- four"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeInlineBullets(t *testing.T) {
	got := normalizeTwice(t, "Shopping list • milk • eggs")
	want := "Shopping list\n- milk\n- eggs"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeHeaderSpacing(t *testing.T) {
	got := normalizeTwice(t, "intro\n#Header\nbody")
	want := "intro\n\n# Header\n\nbody"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeCollapsesBlankRuns(t *testing.T) {
	got := normalizeTwice(t, "first\n\n\n\n\nsecond")
	want := "first\n\nsecond"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeStripsCRLFAndTrailingWS(t *testing.T) {
	got := normalizeTwice(t, "line one   \r\nline two\t\r\n")
	want := "line one\nline two"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizePlainTextUnchanged(t *testing.T) {
	input := "just a paragraph\n\n- a\n- b\n\n# Done"
	if got := normalizeTwice(t, input); got != input {
		t.Fatalf("expected already-normal text to pass through, got %q", got)
	}
}

func TestNormalizeDoesNotTouchHashInsideLine(t *testing.T) {
	got := normalizeTwice(t, "issue #42 is fixed")
	if !strings.Contains(got, "#42") {
		t.Fatalf("expected inline hash preserved, got %q", got)
	}
}
