package solver

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	t.Run("StrictOverlap", func(t *testing.T) {
		r := All([][]uint32{{1, 3, 5, 7}, {3, 5, 9}}, Strict)
		assert.Equal(t, []uint32{3, 5}, r.IDs)
		assert.False(t, r.Unconstrained)
	})

	t.Run("EmptyConstraint", func(t *testing.T) {
		lists := [][]uint32{{1, 3, 5, 7}, {}}
		assert.True(t, All(lists, Strict).Empty())
		assert.Equal(t, []uint32{1, 3, 5, 7}, All(lists, Nonstrict).IDs)
	})

	t.Run("Unconstrained", func(t *testing.T) {
		for _, p := range []Policy{Strict, Nonstrict} {
			r := All([][]uint32{}, p)
			assert.True(t, r.Unconstrained, p.String())
			assert.False(t, r.Empty(), p.String())

			id, ok := First([][]uint32(nil), p)
			assert.True(t, ok, p.String())
			assert.Zero(t, id, p.String())
		}
	})
}

func TestAllStrict(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]uint32
		want  []uint32
	}{
		{"Single", [][]uint32{{2, 4, 6}}, []uint32{2, 4, 6}},
		{"SingleEmpty", [][]uint32{{}}, nil},
		{"DisjointRanges", [][]uint32{{1, 2, 3}, {7, 8}}, nil},
		{"DisjointInterleaved", [][]uint32{{1, 3, 5}, {2, 4, 6}}, nil},
		{"Identical", [][]uint32{{1, 2, 3}, {1, 2, 3}}, []uint32{1, 2, 3}},
		{"EqualPivotKept", [][]uint32{{5, 6, 7}, {1, 2, 5, 7}}, []uint32{5, 7}},
		{"ShortAgainstLong", [][]uint32{{50, 999}, seq(0, 1000)}, []uint32{50, 999}},
		{"Three", [][]uint32{{1, 2, 3, 4, 5}, {2, 3, 4}, {3, 4, 9}}, []uint32{3, 4}},
		{"EmptyLast", [][]uint32{{1, 2}, {1, 2}, {}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := All(tt.lists, Strict)
			assert.False(t, r.Unconstrained)
			if tt.want == nil {
				assert.Empty(t, r.IDs)
			} else {
				assert.Equal(t, tt.want, r.IDs)
			}

			first, ok := First(tt.lists, Strict)
			assert.Equal(t, tt.want != nil, ok)
			if ok {
				assert.Equal(t, tt.want[0], first)
			}
		})
	}
}

func TestAllNonstrict(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]uint32
		want  []uint32
	}{
		{"AllEmpty", [][]uint32{{}, {}}, nil},
		{"LeadingEmpty", [][]uint32{{}, {4, 5}, {5, 6}}, []uint32{5}},
		{"DisjointDiscarded", [][]uint32{{1, 2, 3}, {7, 8}, {2, 3}}, []uint32{2, 3}},
		{"NarrowsToOne", [][]uint32{{1, 2, 3}, {2}, {9}}, []uint32{2}},
		{"OrderMatters", [][]uint32{{7, 8}, {1, 2, 3}, {2, 3}}, []uint32{7, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := All(tt.lists, Nonstrict)
			assert.False(t, r.Unconstrained)
			if tt.want == nil {
				assert.True(t, r.Empty())
			} else {
				assert.Equal(t, tt.want, r.IDs)
			}

			first, ok := First(tt.lists, Nonstrict)
			assert.Equal(t, tt.want != nil, ok)
			if ok {
				assert.Equal(t, tt.want[0], first)
			}
		})
	}
}

func TestInputsAreNotMutated(t *testing.T) {
	a := []uint32{1, 3, 5, 7}
	b := []uint32{3, 7}
	c := []uint32{9}
	lists := [][]uint32{a, b, c}

	All(lists, Strict)
	All(lists, Nonstrict)
	First(lists, Strict)

	assert.Equal(t, []uint32{1, 3, 5, 7}, a)
	assert.Equal(t, []uint32{3, 7}, b)
	assert.Equal(t, []uint32{9}, c)
}

func TestSeqVariants(t *testing.T) {
	nested := map[string][]uint16{"stem": {1, 4, 9}}
	r := AllSeq(func(yield func([]uint16) bool) {
		if !yield(nested["stem"]) {
			return
		}
		yield([]uint16{4, 9, 12})
	}, Strict)
	assert.Equal(t, []uint16{4, 9}, r.IDs)

	stopped := false
	id, ok := FirstSeq(func(yield func([]uint64) bool) {
		if !yield([]uint64{}) {
			stopped = true
			return
		}
		yield([]uint64{1})
	}, Strict)
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.True(t, stopped, "strict first stops consuming at the first empty list")
}

type pathID uint32

func TestNamedElementType(t *testing.T) {
	type postingList []pathID
	r := All([]postingList{{1, 2, 3}, {2, 3}}, Strict)
	assert.Equal(t, []pathID{2, 3}, r.IDs)
}

func TestGallop(t *testing.T) {
	s := []uint32{2, 4, 4, 8, 16, 32, 64}
	tests := []struct {
		x    uint32
		from int
		want int
	}{
		{0, 0, 0},
		{2, 0, 0},
		{3, 0, 1},
		{4, 0, 1},
		{5, 0, 3},
		{64, 0, 6},
		{65, 0, 7},
		{16, 5, 5},
		{1, 3, 3},
		{9, 7, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Gallop(s, tt.x, tt.from), "x=%d from=%d", tt.x, tt.from)
	}
	assert.Equal(t, 0, Gallop([]uint32(nil), 1, 0))
}

func TestIntersectInPlace(t *testing.T) {
	a := []uint32{1, 2, 3, 4, 5, 6}
	got := Intersect(a[:0], a, []uint32{2, 4, 6, 8})
	assert.Equal(t, []uint32{2, 4, 6}, got)
}

// Property checks against roaring's intersection.
func TestMatchesBitmapIntersection(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := range 300 {
		k := 1 + rng.IntN(5)
		lists := make([][]uint32, k)
		bitmaps := make([]*roaring.Bitmap, k)
		for i := range lists {
			lists[i] = randomList(rng)
			bitmaps[i] = roaring.BitmapOf(lists[i]...)
		}

		want := roaring.FastAnd(bitmaps...).ToArray()
		got := All(lists, Strict)
		require.Equal(t, len(want), len(got.IDs), "round %d", round)
		if len(want) > 0 {
			require.Equal(t, want, got.IDs, "round %d", round)
		}

		first, ok := First(lists, Strict)
		require.Equal(t, len(want) > 0, ok, "round %d", round)
		if ok {
			require.Equal(t, want[0], first, "round %d", round)
		}

		shuffled := slices.Clone(lists)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, len(want), len(All(shuffled, Strict).IDs), "round %d: order independence", round)
	}
}

func TestNonstrictMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for round := range 200 {
		k := 1 + rng.IntN(4)
		lists := make([][]uint32, k)
		for i := range lists {
			lists[i] = randomList(rng)
		}
		base := All(lists, Nonstrict)

		withEmpty := All(append(slices.Clone(lists), []uint32{}), Nonstrict)
		require.Equal(t, base.IDs, withEmpty.IDs, "round %d: empty constraint", round)

		if len(base.IDs) == 0 {
			continue
		}
		beyond := base.IDs[len(base.IDs)-1] + 1
		disjoint := []uint32{beyond, beyond + 3}
		withDisjoint := All(append(slices.Clone(lists), disjoint), Nonstrict)
		require.Equal(t, base.IDs, withDisjoint.IDs, "round %d: disjoint constraint", round)

		// the result only ever narrows the first non-empty list
		for _, l := range lists {
			if len(l) > 0 {
				for _, id := range base.IDs {
					_, found := slices.BinarySearch(l, id)
					require.True(t, found, "round %d", round)
				}
				break
			}
		}
	}
}

func seq(lo, hi uint32) []uint32 {
	out := make([]uint32, 0, hi-lo)
	for v := lo; v < hi; v++ {
		out = append(out, v)
	}
	return out
}

// randomList mixes dense, sparse and empty lists over a small universe so
// that intersections are frequently non-trivial.
func randomList(rng *rand.Rand) []uint32 {
	switch rng.IntN(6) {
	case 0:
		return nil
	case 1:
		lo := uint32(rng.IntN(200))
		return seq(lo, lo+uint32(rng.IntN(300)))
	}
	n := rng.IntN(60)
	set := make(map[uint32]struct{}, n)
	for range n {
		set[uint32(rng.IntN(400))] = struct{}{}
	}
	out := make([]uint32, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
