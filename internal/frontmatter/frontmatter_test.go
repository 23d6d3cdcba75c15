package frontmatter

import (
	"strings"
	"testing"
)

func TestParseAndRenderRoundTrip(t *testing.T) {
	src := "---\ntitle: Daily\ntags:\n  - journal\n---\n\n# Morning\n\nSome text.\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	v, ok := doc.Value("title")
	if !ok || v != "Daily" {
		t.Errorf("title = %v, %v", v, ok)
	}

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != src {
		t.Errorf("round trip changed content:\n got %q\nwant %q", out, src)
	}
}

func TestSetUpdatesExistingKeyInPlace(t *testing.T) {
	src := "---\ntitle: Daily\nCoding (min): 10\nmood: good\n---\n\nBody\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := doc.Set("Coding (min)", 42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := "---\ntitle: Daily\nCoding (min): 42\nmood: good\n---\n\nBody\n"
	if string(out) != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestSetAppendsNewKey(t *testing.T) {
	src := "---\ntitle: Daily\n---\n\nBody\n"
	doc, _ := Parse([]byte(src))
	if err := doc.Set("Writing (min)", 31); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, _ := doc.Render()

	want := "---\ntitle: Daily\nWriting (min): 31\n---\n\nBody\n"
	if string(out) != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestSetOnNoteWithoutFrontmatter(t *testing.T) {
	src := "# Just a heading\n\nText.\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Has("anything") {
		t.Error("note without frontmatter should have no properties")
	}
	if err := doc.Set("Coding (min)", 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, _ := doc.Render()

	want := "---\nCoding (min): 5\n---\n\n# Just a heading\n\nText.\n"
	if string(out) != want {
		t.Errorf("got:\n%q\nwant:\n%q", out, want)
	}
}

func TestRenderPreservesComments(t *testing.T) {
	src := "---\ntitle: Daily # the display name\n---\n\nBody\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := doc.Set("Coding (min)", 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	out, _ := doc.Render()
	if !strings.Contains(string(out), "# the display name") {
		t.Errorf("comment lost:\n%s", out)
	}
}

func TestParseInvalidYAMLFails(t *testing.T) {
	src := "---\ntitle: [unclosed\n---\n\nBody\n"
	if _, err := Parse([]byte(src)); err == nil {
		t.Error("expected error for invalid frontmatter")
	}
}

func TestParseNoClosingDelimiterIsBody(t *testing.T) {
	src := "---\ntitle: Daily\n\nno closing fence"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Has("title") {
		t.Error("unclosed fence should not parse as frontmatter")
	}
	out, _ := doc.Render()
	if string(out) != src {
		t.Errorf("body changed: %q", out)
	}
}

func TestValueAbsent(t *testing.T) {
	doc, _ := Parse([]byte("---\ntitle: x\n---\nBody"))
	if _, ok := doc.Value("missing"); ok {
		t.Error("absent key reported present")
	}
}
