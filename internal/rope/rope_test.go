package rope

import (
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

func TestEmptyRope(t *testing.T) {
	r := New()
	if !r.IsEmpty() || r.Len() != 0 || r.LineCount() != 1 {
		t.Fatalf("empty rope invariants violated: %+v", r)
	}
}

func TestFromStringRoundTrip(t *testing.T) {
	text := "abc\ndefg\nhi"
	r := FromString(text)
	if r.String() != text {
		t.Fatalf("got %q, want %q", r.String(), text)
	}
	if r.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", r.LineCount())
	}
}

// TestReplaceScenario exercises the literal worked example: replacing
// a middle span with shorter text and reading the result back.
func TestReplaceScenario(t *testing.T) {
	r := FromString("abc\ndefg\nhi")
	out := r.Replace(4, 8, "X")
	want := "abc\nX\nhi"
	if got := out.String(); got != want {
		t.Fatalf("Replace = %q, want %q", got, want)
	}
}

// TestFourByteScalarRoundTrip pushes a rope well past a single chunk
// using a four-byte scalar (🏀, U+1F3C0) repeated densely enough to
// force multiple chunk boundaries, and checks no boundary split the
// scalar and the text survives untouched.
func TestFourByteScalarRoundTrip(t *testing.T) {
	want := strings.Repeat("🏀", 256)
	r := FromString(want)
	if got := r.String(); got != want {
		t.Fatalf("round trip mismatch: got %d runes, want %d", len([]rune(got)), len([]rune(want)))
	}
	if r.Len() != ByteOffset(len(want)) {
		t.Fatalf("Len = %d, want %d", r.Len(), len(want))
	}
	if r.LenUTF16() != OffsetUTF16(2*256) {
		t.Fatalf("LenUTF16 = %d, want %d", r.LenUTF16(), 2*256)
	}
	for _, c := range r.tree.Items() {
		if !utf8.ValidString(c.String()) {
			t.Fatalf("chunk boundary split a scalar: %q", c.String())
		}
	}
}

func TestInsertDeleteInverse(t *testing.T) {
	r := FromString("hello world")
	ins := r.Insert(5, ", there")
	if ins.String() != "hello, there world" {
		t.Fatalf("Insert = %q", ins.String())
	}
	del := ins.Delete(5, 12)
	if del.String() != r.String() {
		t.Fatalf("Delete did not invert Insert: got %q, want %q", del.String(), r.String())
	}
}

func TestSliceConcatLaw(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	r := FromString(text)
	mid := r.Len() / 2
	left := r.Slice(0, mid)
	right := r.Slice(mid, r.Len())
	if got := left.Concat(right).String(); got != text {
		t.Fatalf("slice/concat law broken: got %q, want %q", got, text)
	}
}

func TestOffsetPointInverse(t *testing.T) {
	text := "abc\ndefg\nhi"
	r := FromString(text)
	for offset := ByteOffset(0); offset <= r.Len(); offset++ {
		p := r.OffsetToPoint(offset)
		back := r.PointToOffset(p)
		if back != offset {
			t.Fatalf("offset %d -> point %+v -> offset %d", offset, p, back)
		}
	}
}

func TestOffsetUTF16Inverse(t *testing.T) {
	text := "a\nb𝄞c\n"
	r := FromString(text)
	for offset := ByteOffset(0); offset <= r.Len(); offset = r.ClipOffset(offset+1, Right) {
		u := r.OffsetToOffsetUTF16(offset)
		back := r.OffsetUTF16ToOffset(u)
		if back != offset {
			t.Fatalf("offset %d -> utf16 %d -> offset %d", offset, u, back)
		}
		if offset == r.Len() {
			break
		}
	}
}

func TestClipOffsetIdempotent(t *testing.T) {
	text := "héllo wörld"
	r := FromString(text)
	f := func(raw uint16) bool {
		offset := ByteOffset(raw) % (r.Len() + 1)
		once := r.ClipOffset(offset, Right)
		twice := r.ClipOffset(once, Right)
		return once == twice
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSaturatingTranslation(t *testing.T) {
	r := FromString("short")
	if p := r.OffsetToPoint(1000); p != r.MaxPoint() {
		t.Fatalf("OffsetToPoint overflow = %+v, want MaxPoint %+v", p, r.MaxPoint())
	}
	if o := r.PointToOffset(Point{Row: 1000, Column: 0}); o != r.Len() {
		t.Fatalf("PointToOffset overflow = %d, want %d", o, r.Len())
	}
}

func TestChunkOccupancyInvariant(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 200)
	r := FromString(text)
	chunks := r.tree.Items()
	for i, c := range chunks {
		if i == len(chunks)-1 {
			continue // trailing chunk may be short.
		}
		if c.Len() < minChunkSize || c.Len() > maxChunkSize {
			t.Fatalf("chunk %d length %d out of [%d,%d]", i, c.Len(), minChunkSize, maxChunkSize)
		}
	}
}

func TestLongestRowAcrossJoin(t *testing.T) {
	left := FromString("short\nlonger-lef")
	right := FromString("t-part-that-continues\nx")
	joined := left.Concat(right)
	sum := joined.Summary()
	wantRow := uint32(1) // the joined second line is the longest.
	if sum.LongestRow != wantRow {
		t.Fatalf("LongestRow = %d, want %d (summary=%+v)", sum.LongestRow, wantRow, sum)
	}
}

func TestPushLargeMatchesPush(t *testing.T) {
	text := strings.Repeat("x", 10000)
	viaPush := New().Push(text)
	viaPushLarge := New().PushLarge(text)
	if viaPush.String() != viaPushLarge.String() {
		t.Fatalf("PushLarge diverged from Push")
	}
}

func TestLines(t *testing.T) {
	r := FromString("one\ntwo\nthree")
	lines := r.Lines(0, r.LineCount())
	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
