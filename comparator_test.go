package orderedwal

import "testing"

func TestRangeContains(t *testing.T) {
	cmp := DefaultComparator
	cases := []struct {
		name        string
		start, end  Bound
		key         string
		wantContain bool
	}{
		{"within included-excluded", IncludedBound([]byte("b")), ExcludedBound([]byte("d")), "c", true},
		{"excluded start boundary", ExcludedBound([]byte("b")), UnboundedBound(), "b", false},
		{"included start boundary", IncludedBound([]byte("b")), UnboundedBound(), "b", true},
		{"excluded end boundary", UnboundedBound(), ExcludedBound([]byte("d")), "d", false},
		{"included end boundary", UnboundedBound(), IncludedBound([]byte("d")), "d", true},
		{"fully unbounded", UnboundedBound(), UnboundedBound(), "anything", true},
		{"before start", IncludedBound([]byte("m")), UnboundedBound(), "a", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rangeContains(tc.start, tc.end, []byte(tc.key), cmp)
			if got != tc.wantContain {
				t.Fatalf("rangeContains(%q) = %v, want %v", tc.key, got, tc.wantContain)
			}
		})
	}
}

func TestCompareStartBoundOrdering(t *testing.T) {
	cmp := DefaultComparator
	u := UnboundedBound()
	incB := IncludedBound([]byte("b"))
	excB := ExcludedBound([]byte("b"))

	if compareStartBound(u, incB, cmp) >= 0 {
		t.Fatal("Unbounded start must sort before a bounded start")
	}
	if compareStartBound(incB, excB, cmp) >= 0 {
		t.Fatal("Included(b) must sort before Excluded(b) as a start bound")
	}
	if compareStartBound(incB, incB, cmp) != 0 {
		t.Fatal("identical start bounds must compare equal")
	}
}

func TestCompareEndBoundOrdering(t *testing.T) {
	cmp := DefaultComparator
	u := UnboundedBound()
	incB := IncludedBound([]byte("b"))
	excB := ExcludedBound([]byte("b"))

	if compareEndBound(u, incB, cmp) <= 0 {
		t.Fatal("Unbounded end must sort after a bounded end")
	}
	if compareEndBound(incB, excB, cmp) <= 0 {
		t.Fatal("Included(b) must sort after Excluded(b) as an end bound")
	}
}
