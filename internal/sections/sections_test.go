package sections

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplit_FourNumberedSections(t *testing.T) {
	raw := "1. Foo\n2. Bar\n3. Baz\n4. Qux"
	got := Split(raw)
	if len(got) != 4 {
		t.Fatalf("expected 4 sections, got %d: %#v", len(got), got)
	}
	bodies := []string{"Foo", "Bar", "Baz", "Qux"}
	for i, s := range got {
		if s.Title != Titles[i] {
			t.Fatalf("section %d: expected title %q, got %q", i, Titles[i], s.Title)
		}
		want := Titles[i] + "\n" + bodies[i]
		if s.Text != want {
			t.Fatalf("section %d: expected text %q, got %q", i, want, s.Text)
		}
	}
}

func TestSplit_NoMarkersAssignedToFirstTitle(t *testing.T) {
	raw := "  An unstructured explanation with no numbering.  "
	got := Split(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 section, got %d", len(got))
	}
	if got[0].Title != Titles[0] {
		t.Fatalf("expected first canonical title, got %q", got[0].Title)
	}
	if got[0].Text != Titles[0]+"\n"+strings.TrimSpace(raw) {
		t.Fatalf("unexpected text: %q", got[0].Text)
	}
}

func TestSplit_EmptyAndWhitespaceInput(t *testing.T) {
	if got := Split(""); len(got) != 0 {
		t.Fatalf("expected no sections for empty input, got %#v", got)
	}
	if got := Split("  \n\t "); len(got) != 0 {
		t.Fatalf("expected no sections for whitespace input, got %#v", got)
	}
}

func TestSplit_EmptyFragmentDroppedWithoutShifting(t *testing.T) {
	// The second fragment is blank; indices still map by position, so the
	// third fragment lands on the third title.
	got := Split("1. Foo\n2. \n3. Baz")
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d: %#v", len(got), got)
	}
	if got[0].Title != Titles[0] || got[0].Text != Titles[0]+"\nFoo" {
		t.Fatalf("unexpected first section: %#v", got[0])
	}
	if got[1].Title != Titles[2] || got[1].Text != Titles[2]+"\nBaz" {
		t.Fatalf("expected third title for second section, got %#v", got[1])
	}
}

func TestSplit_ExtraFragmentsTruncated(t *testing.T) {
	raw := "1. A\n2. B\n3. C\n4. D\n5. E\n6. F"
	got := Split(raw)
	if len(got) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(got))
	}
	if got[3].Text != Titles[3]+"\nD" {
		t.Fatalf("expected fourth section body D, got %q", got[3].Text)
	}
}

func TestSplit_MultiDigitMarkersAndTrailingWhitespace(t *testing.T) {
	got := Split("1. First\n12. Second   \n3. Third")
	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got))
	}
	if got[1].Text != Titles[1]+"\nSecond" {
		t.Fatalf("expected trimmed body, got %q", got[1].Text)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	raw := "1. Foo\n2. Bar"
	a := Split(raw)
	b := Split(raw)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical output for repeated calls: %#v vs %#v", a, b)
	}
}
