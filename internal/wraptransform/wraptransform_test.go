package wraptransform

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dshills/collabcore/internal/rope"
	"github.com/dshills/collabcore/internal/tabtransform"
)

func TestWrapIdentityWhenDisabled(t *testing.T) {
	r := rope.FromString("hello world\nsecond line")
	tab := tabtransform.New(r, 4)
	snap := BuildFull(tab, 0, false)
	if snap.Interpolated() {
		t.Fatalf("fresh identity snapshot should not be interpolated")
	}
	if got, want := snap.Text(tab), tab.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestLineWrapperProducesBoundaries(t *testing.T) {
	w := NewLineWrapper(10)
	boundaries := w.WrapLine("the quick brown fox jumps")
	if len(boundaries) == 0 {
		t.Fatalf("expected at least one wrap boundary")
	}
	for _, b := range boundaries {
		if b.NextIndent > MaxIndent {
			t.Fatalf("indent %d exceeds MaxIndent", b.NextIndent)
		}
	}
}

func TestLineWrapperCountsWideRunesAsTwoColumns(t *testing.T) {
	w := NewLineWrapper(10)
	// 10 grapheme clusters occupying 20 display columns: a cluster-count
	// measure would see this as exactly at the wrap width and not wrap,
	// but each is an East Asian Wide rune worth two columns, so it must.
	wide := w.WrapLine("中中中中中中中中中中")
	if len(wide) == 0 {
		t.Fatalf("expected wide-rune line (20 display columns) to wrap at width 10")
	}
}

func TestBuildFullWithWidthWraps(t *testing.T) {
	r := rope.FromString("the quick brown fox jumps over the lazy dog")
	tab := tabtransform.New(r, 4)
	snap := BuildFull(tab, 10, true)
	max := snap.MaxPoint()
	if max.Row == 0 {
		t.Fatalf("expected wrapping to introduce additional rows, got MaxPoint=%+v", max)
	}
}

func TestWrapMapSyncSmallEdit(t *testing.T) {
	r := rope.FromString("short line one\nshort line two")
	tab := tabtransform.New(r, 4)
	wm := NewWrapMap(tab)
	wm.SetWrapWidth(8)

	r2 := r.Insert(5, "X")
	tab2, tabEdits := tabtransform.Sync(tab, r2, []tabtransform.RopeEdit{
		{
			Old: tabtransform.Range[rope.Point]{Start: rope.Point{Row: 0, Column: 5}, End: rope.Point{Row: 0, Column: 5}},
			New: tabtransform.Range[rope.Point]{Start: rope.Point{Row: 0, Column: 5}, End: rope.Point{Row: 0, Column: 6}},
		},
	})
	snap, wrapEdits := wm.Sync(tab2, tabEdits)
	if snap.TabVersion() != tab2.Version() {
		t.Fatalf("snapshot tab version = %d, want %d", snap.TabVersion(), tab2.Version())
	}
	_ = wrapEdits
}

// TestWrapMapSyncLargeEditConverges exercises the background-rewrap
// path (spec §4.4: an edit spanning more rows than rewrapRowThreshold
// is interpolated synchronously and rewrapped exactly on a background
// goroutine), grounded on the deadline-poll pattern
// internal/config/watcher/watcher_test.go uses to wait for an async
// event.
func TestWrapMapSyncLargeEditConverges(t *testing.T) {
	r := rope.FromString("start")
	tab := tabtransform.New(r, 4)
	wm := NewWrapMap(tab)
	wm.SetWrapWidth(10)

	oldMax := r.MaxPoint()

	var lines []string
	for i := 0; i < rewrapRowThreshold*2; i++ {
		lines = append(lines, "line number "+strconv.Itoa(i)+" long enough to wrap at least once")
	}
	bigText := "\n" + strings.Join(lines, "\n")

	r2 := r.Insert(r.Len(), bigText)
	tab2, tabEdits := tabtransform.Sync(tab, r2, []tabtransform.RopeEdit{
		{
			Old: tabtransform.Range[rope.Point]{Start: oldMax, End: oldMax},
			New: tabtransform.Range[rope.Point]{Start: oldMax, End: r2.MaxPoint()},
		},
	})

	snap, _ := wm.Sync(tab2, tabEdits)
	if !snap.Interpolated() {
		t.Fatalf("a %d-row edit should exceed rewrapRowThreshold and return an interpolated snapshot", rewrapRowThreshold*2)
	}
	if got, want := snap.Text(tab2), tab2.Text(); got != want {
		t.Fatalf("interpolated snapshot content mismatch:\ngot  %q\nwant %q", got, want)
	}

	deadline := time.Now().Add(2 * time.Second)
	var converged WrapSnapshot
	for time.Now().Before(deadline) {
		converged = wm.Snapshot()
		if !converged.Interpolated() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if converged.Interpolated() {
		t.Fatalf("background rewrap did not converge within deadline")
	}

	want := BuildFull(tab2, 10, true)
	if got := converged.Text(tab2); got != want.Text(tab2) {
		t.Fatalf("converged snapshot text mismatch:\ngot  %q\nwant %q", got, want.Text(tab2))
	}
	if converged.MaxPoint() != want.MaxPoint() {
		t.Fatalf("converged snapshot MaxPoint = %+v, want %+v", converged.MaxPoint(), want.MaxPoint())
	}
}

func TestBufferRowsMarksContinuations(t *testing.T) {
	r := rope.FromString("a line that definitely needs to wrap across rows")
	tab := tabtransform.New(r, 4)
	snap := BuildFull(tab, 10, true)
	rows := snap.BufferRows(0)
	if len(rows) == 0 {
		t.Fatalf("expected at least one row")
	}
	if rows[0] == nil || *rows[0] != 0 {
		t.Fatalf("first row should start at buffer row 0, got %+v", rows[0])
	}
}
