package scheduling

import (
	"testing"
	"time"
)

func TestCachedGenerator_MatchesGenerate(t *testing.T) {
	g, err := NewCachedGenerator(8)
	if err != nil {
		t.Fatal(err)
	}
	tpl := weekdayTemplate(win("09:00", "17:00"))

	want, _ := Generate(monday, tpl, 30, 30)
	for i := 0; i < 2; i++ {
		got, err := g.Generate(monday, tpl, 30, 30)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Fatalf("pass %d: got %d slots, want %d", i, len(got), len(want))
		}
		for j := range want {
			if !got[j].Start.Equal(want[j].Start) || !got[j].End.Equal(want[j].End) {
				t.Fatalf("pass %d: slot %d differs", i, j)
			}
		}
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}
}

func TestCachedGenerator_ReturnsCopies(t *testing.T) {
	g, _ := NewCachedGenerator(8)
	tpl := weekdayTemplate(win("09:00", "10:00"))

	first, _ := g.Generate(monday, tpl, 30, 30)
	first[0].Start = time.Time{}

	second, _ := g.Generate(monday, tpl, 30, 30)
	if second[0].Start.IsZero() {
		t.Error("mutating a returned slice leaked into the cache")
	}
}

func TestCachedGenerator_KeyedByVersion(t *testing.T) {
	g, _ := NewCachedGenerator(8)
	tpl := weekdayTemplate(win("09:00", "10:00"))

	before, _ := g.Generate(monday, tpl, 30, 30)

	replaced := weekdayTemplate(win("09:00", "12:00"))
	replaced.Version = tpl.Version + 1
	after, _ := g.Generate(monday, replaced, 30, 30)

	if len(before) == len(after) {
		t.Errorf("new template version must not reuse cached slots (%d vs %d)", len(before), len(after))
	}
}

func TestCachedGenerator_DisabledAndErrors(t *testing.T) {
	g, err := NewCachedGenerator(0)
	if err != nil {
		t.Fatal(err)
	}
	tpl := weekdayTemplate(win("09:00", "10:00"))

	if _, err := g.Generate(monday, tpl, 30, 30); err != nil {
		t.Fatal(err)
	}
	if g.Len() != 0 {
		t.Error("size 0 should not cache")
	}

	enabled, _ := NewCachedGenerator(4)
	if _, err := enabled.Generate(monday, tpl, 0, 30); err == nil {
		t.Error("invalid configuration must not be cached as success")
	}
	if enabled.Len() != 0 {
		t.Error("errors must not be cached")
	}
}
