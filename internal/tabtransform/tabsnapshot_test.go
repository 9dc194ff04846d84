package tabtransform

import (
	"testing"

	"github.com/dshills/collabcore/internal/rope"
)

func TestExpandTabs(t *testing.T) {
	r := rope.FromString("a\tbc\td")
	snap := New(r, 4)
	if got, want := snap.Text(), "a   bc  d"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestFromPointToPointRoundTrip(t *testing.T) {
	r := rope.FromString("x\tyz\nabc")
	snap := New(r, 4)
	for col := uint32(0); col <= 4; col++ {
		p := rope.Point{Row: 0, Column: col}
		tp := snap.FromPoint(p)
		back := snap.ToPoint(tp)
		if back.Row != p.Row {
			t.Fatalf("row mismatch for col %d: %+v", col, back)
		}
	}
}

func TestMaxPoint(t *testing.T) {
	r := rope.FromString("\tab\nc")
	snap := New(r, 4)
	max := snap.MaxPoint()
	if max.Row != 1 {
		t.Fatalf("MaxPoint row = %d, want 1", max.Row)
	}
}

func TestSyncProducesTabEdit(t *testing.T) {
	r := rope.FromString("abc")
	snap := New(r, 4)
	r2 := r.Insert(1, "\t")
	next, edits := Sync(snap, r2, []RopeEdit{
		{
			Old: Range[rope.Point]{Start: rope.Point{Row: 0, Column: 1}, End: rope.Point{Row: 0, Column: 1}},
			New: Range[rope.Point]{Start: rope.Point{Row: 0, Column: 1}, End: rope.Point{Row: 0, Column: 2}},
		},
	})
	if next.Version() != snap.Version()+1 {
		t.Fatalf("version not advanced")
	}
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
}
