package diag

import (
	"strings"
	"testing"
)

func TestFormatDiagnostic(t *testing.T) {
	d := New(SevWarning, QntUnresolvedObserver,
		Location{Method: "forward", Value: "x", Node: "prim::CallExtern"},
		"observer has no calibration entry;\nremoved").
		WithNote(Location{Method: "forward"}, "dictionary has 3 entries")

	got := FormatDiagnostic(d, FormatOptions{Notes: true})
	want := "warning QNT3001 forward:%x [prim::CallExtern]: observer has no calibration entry; removed\n" +
		"  note: forward: dictionary has 3 entries"
	if got != want {
		t.Fatalf("unexpected format:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatDiagnosticColor(t *testing.T) {
	d := New(SevError, IRInvalid, Location{}, "broken")
	got := FormatDiagnostic(d, FormatOptions{Color: true})
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escape in colored output, got %q", got)
	}
	if !strings.HasSuffix(got, "IR1001 <module>: broken") {
		t.Fatalf("unexpected tail: %q", got)
	}
}

func TestBagSortAndLimit(t *testing.T) {
	b := NewBag(3)
	b.Add(New(SevInfo, QntUncalibratedValue, Location{Method: "b", Value: "v"}, "i"))
	b.Add(New(SevInfo, QntUncalibratedValue, Location{Method: "a", Value: "v"}, "i"))
	b.Add(New(SevWarning, QntUnresolvedObserver, Location{Method: "a", Value: "v"}, "w"))
	if b.Add(New(SevError, IRInvalid, Location{}, "dropped")) {
		t.Fatalf("expected bag limit to drop the fourth diagnostic")
	}

	b.Sort()
	items := b.Items()
	if items[0].Loc.Method != "a" || items[0].Severity != SevWarning {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[2].Loc.Method != "b" {
		t.Fatalf("unexpected last item %+v", items[2])
	}
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatalf("severity predicates disagree with contents")
	}
}

func TestBagMergeRaisesLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(New(SevInfo, CalInfo, Location{}, "a"))
	other := NewBag(2)
	other.Add(New(SevInfo, CalInfo, Location{}, "b"))
	other.Add(New(SevInfo, CalInfo, Location{}, "c"))

	a.Merge(other)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("expected 3 items and cap 3, got %d/%d", a.Len(), a.Cap())
	}
}

func TestNewBagClampsLimit(t *testing.T) {
	if NewBag(1<<20).Cap() != 65535 {
		t.Fatalf("expected clamped cap")
	}
	if NewBag(-1).Cap() != 0 {
		t.Fatalf("expected zero cap for negative limit")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	loc := Location{Method: "forward", Value: "x"}
	r.Report(QntUncalibratedValue, SevInfo, loc, "left unquantized", nil)
	r.Report(QntUncalibratedValue, SevInfo, loc, "left unquantized", nil)
	r.Report(QntUncalibratedValue, SevInfo, Location{Method: "forward", Value: "y"}, "left unquantized", nil)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 1 {
		t.Fatalf("suppressed = %d, want 1", r.Suppressed())
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"info": SevInfo, "WARN": SevWarning, " error ": SevError} {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Errorf("ParseSeverity(fatal) should fail")
	}
}

func TestRenderFiltersBySeverity(t *testing.T) {
	bag := NewBag(4)
	bag.Add(New(SevInfo, QntUncalibratedValue, Location{Method: "f", Value: "x"}, "left alone"))
	bag.Add(New(SevWarning, QntUnresolvedObserver, Location{Method: "f", Value: "y"}, "removed"))

	var sb strings.Builder
	if err := Render(&sb, bag, FormatOptions{MinSeverity: SevWarning}); err != nil {
		t.Fatal(err)
	}
	if got, want := sb.String(), "warning QNT3001 f:%y: removed\n"; got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
