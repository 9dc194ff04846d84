package sumtree

import "testing"

// intItem is a minimal Item used to exercise the generic tree without
// pulling in the rope or wrap packages.
type intItem int

type intSummary struct {
	count int
	sum   int
}

func (s intSummary) Add(other intSummary) intSummary {
	return intSummary{count: s.count + other.count, sum: s.sum + other.sum}
}

func (v intItem) Summary() intSummary {
	return intSummary{count: 1, sum: int(v)}
}

type countDim int

func (c countDim) Cmp(other countDim) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}

func countOf(s intSummary) countDim { return countDim(s.count) }

func buildInts(n int) Tree[intItem, intSummary] {
	items := make([]intItem, n)
	for i := range items {
		items[i] = intItem(i)
	}
	return FromItems[intItem, intSummary](items)
}

func TestFromItemsSummary(t *testing.T) {
	tr := buildInts(100)
	s := tr.Summary()
	if s.count != 100 {
		t.Fatalf("count = %d, want 100", s.count)
	}
	want := 0
	for i := 0; i < 100; i++ {
		want += i
	}
	if s.sum != want {
		t.Fatalf("sum = %d, want %d", s.sum, want)
	}
}

func TestCursorSeekAndItem(t *testing.T) {
	tr := buildInts(50)
	cur := NewCursor[intItem, intSummary, countDim](tr, countOf)
	if !cur.Seek(countDim(10), Right) {
		t.Fatal("seek(10, Right) should land on an item")
	}
	it, ok := cur.Item()
	if !ok || int(it) != 10 {
		t.Fatalf("item = %v, ok=%v, want 10", it, ok)
	}
}

func TestCursorSeekBiasAtBoundary(t *testing.T) {
	tr := buildInts(10)
	cur := NewCursor[intItem, intSummary, countDim](tr, countOf)
	// Boundary between item 4 (end count=5) and item 5 (start count=5).
	cur.Seek(countDim(5), Left)
	it, ok := cur.Item()
	if !ok || int(it) != 4 {
		t.Fatalf("Left bias at boundary 5: item = %v, ok=%v, want 4", it, ok)
	}

	cur.Seek(countDim(5), Right)
	it, ok = cur.Item()
	if !ok || int(it) != 5 {
		t.Fatalf("Right bias at boundary 5: item = %v, ok=%v, want 5", it, ok)
	}
}

func TestCursorNextPrevRoundTrip(t *testing.T) {
	tr := buildInts(40)
	cur := NewCursor[intItem, intSummary, countDim](tr, countOf)
	var forward []int
	for {
		it, ok := cur.Item()
		if !ok {
			break
		}
		forward = append(forward, int(it))
		if !cur.Next() {
			break
		}
	}
	if len(forward) != 40 {
		t.Fatalf("collected %d items forward, want 40", len(forward))
	}
	for i, v := range forward {
		if v != i {
			t.Fatalf("forward[%d] = %d, want %d", i, v, i)
		}
	}

	// Walk backward from the last item.
	cur2 := NewCursor[intItem, intSummary, countDim](tr, countOf)
	cur2.Seek(countDim(39), Right)
	var backward []int
	for {
		it, ok := cur2.Item()
		if !ok {
			break
		}
		backward = append(backward, int(it))
		if !cur2.Prev() {
			break
		}
	}
	if len(backward) != 40 {
		t.Fatalf("collected %d items backward, want 40", len(backward))
	}
}

func TestSliceAndSuffixPartitionTree(t *testing.T) {
	tr := buildInts(30)
	cur := NewCursor[intItem, intSummary, countDim](tr, countOf)
	prefix := cur.Slice(countDim(12), Right)
	suffix := cur.Suffix()

	if prefix.Len()+suffix.Len() != 30 {
		t.Fatalf("prefix(%d) + suffix(%d) != 30", prefix.Len(), suffix.Len())
	}
	items := prefix.Items()
	for i, v := range items {
		if int(v) != i {
			t.Fatalf("prefix[%d] = %d, want %d", i, v, i)
		}
	}
	suffixItems := suffix.Items()
	for i, v := range suffixItems {
		if int(v) != len(items)+i {
			t.Fatalf("suffix[%d] = %d, want %d", i, v, len(items)+i)
		}
	}
}

func TestConcatPreservesOrder(t *testing.T) {
	a := buildInts(17)
	b := FromItems[intItem, intSummary]([]intItem{100, 101, 102})
	joined := Concat(a, b)
	items := joined.Items()
	if len(items) != 20 {
		t.Fatalf("len = %d, want 20", len(items))
	}
	if items[17] != 100 || items[19] != 102 {
		t.Fatalf("unexpected tail: %v", items[17:])
	}
}

func TestUpdateLast(t *testing.T) {
	tr := buildInts(5)
	updated := UpdateLast(tr, func(v intItem) intItem { return v + 1000 })
	items := updated.Items()
	if items[4] != 1004 {
		t.Fatalf("last item = %d, want 1004", items[4])
	}
	// original unaffected (persistence).
	orig := tr.Items()
	if orig[4] != 4 {
		t.Fatalf("original mutated: %d", orig[4])
	}
}

func TestPushOrExtendMerges(t *testing.T) {
	tr := FromItems[intItem, intSummary]([]intItem{1, 2})
	merge := func(last, next intItem) (intItem, bool) {
		return last + next, true // always mergeable for this test
	}
	tr = PushOrExtend(tr, intItem(3), merge)
	items := tr.Items()
	if len(items) != 2 || items[1] != 5 {
		t.Fatalf("items = %v, want [1 5]", items)
	}
}

func TestParExtendMatchesFromItems(t *testing.T) {
	n := ParallelExtendThreshold*3 + 7
	items := make([]intItem, n)
	for i := range items {
		items[i] = intItem(i)
	}
	seq := FromItems[intItem, intSummary](items)
	par := ParExtend[intItem, intSummary](items)
	if seq.Summary() != par.Summary() {
		t.Fatalf("summary mismatch: seq=%v par=%v", seq.Summary(), par.Summary())
	}
	seqItems, parItems := seq.Items(), par.Items()
	if len(seqItems) != len(parItems) {
		t.Fatalf("length mismatch: %d vs %d", len(seqItems), len(parItems))
	}
	for i := range seqItems {
		if seqItems[i] != parItems[i] {
			t.Fatalf("mismatch at %d: %d vs %d", i, seqItems[i], parItems[i])
		}
	}
}
