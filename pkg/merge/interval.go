package merge

import (
	"sort"

	"github.com/chillbot-io/openlabels/pkg/types"
)

// intervalIndexThreshold is spec §9's "n < 100" boundary: below it the
// quadratic containment check in removeContainedSpansQuadratic is
// acceptable; at or above it, removeContainedSpans uses the Fenwick-tree
// index below instead.
const intervalIndexThreshold = 100

// fenwickMax is a Fenwick tree (binary indexed tree) over a compressed
// coordinate space, supporting O(log n) point-update / prefix-max
// queries. Values here are only ever increased (the containment stage
// never removes an accepted span), which is exactly what a Fenwick max
// tree needs to stay correct without a decrease operation.
type fenwickMax struct {
	tree []int
}

func newFenwickMax(size int) *fenwickMax {
	return &fenwickMax{tree: make([]int, size+1)}
}

func (f *fenwickMax) update(i, value int) {
	for ; i < len(f.tree); i += i & (-i) {
		if value > f.tree[i] {
			f.tree[i] = value
		}
	}
}

func (f *fenwickMax) queryPrefix(i int) int {
	best := 0
	for ; i > 0; i -= i & (-i) {
		if f.tree[i] > best {
			best = f.tree[i]
		}
	}
	return best
}

// typeIntervalIndex answers stage 14's containment query — "does an
// already-accepted span of a compatible type fully contain this
// span's range?" — in O(log n) per query instead of scanning every
// previously accepted span. It keeps one Fenwick tree of accepted end
// positions per distinct entity type seen in the run, all sharing one
// compressed start-coordinate space, and only ever consults the trees
// belonging to types pairwise compatible with the query's type (per
// types.CompatibleTypes, computed once up front over the small set of
// distinct types actually present — not assumed transitive, since
// CompatibleTypes("DATE_DOB", "DATE") and CompatibleTypes("DATE",
// "DATE_RANGE") both holding does not imply "DATE_DOB" and
// "DATE_RANGE" are compatible with each other).
type typeIntervalIndex struct {
	coordIndex   map[int]int // span start -> compressed 1-based coordinate
	coordSize    int
	trees        map[string]*fenwickMax
	pointEnds    map[string]map[int]int
	compatibleOf map[string][]string
}

// newTypeIntervalIndex builds the shared coordinate compression and the
// compatible-type lookup for every span the caller will Insert/Contains
// over; spans must be the full candidate set (coordinate compression
// only covers start positions actually present).
func newTypeIntervalIndex(spans []types.Span) *typeIntervalIndex {
	seenStart := map[int]bool{}
	starts := make([]int, 0, len(spans))
	distinctTypes := map[string]bool{}
	for _, s := range spans {
		if !seenStart[s.Start] {
			seenStart[s.Start] = true
			starts = append(starts, s.Start)
		}
		distinctTypes[s.EntityType] = true
	}
	sort.Ints(starts)

	coordIndex := make(map[int]int, len(starts))
	for i, v := range starts {
		coordIndex[v] = i + 1
	}

	compatibleOf := make(map[string][]string, len(distinctTypes))
	for t1 := range distinctTypes {
		for t2 := range distinctTypes {
			if types.CompatibleTypes(t1, t2) {
				compatibleOf[t1] = append(compatibleOf[t1], t2)
			}
		}
	}

	return &typeIntervalIndex{
		coordIndex:   coordIndex,
		coordSize:    len(starts),
		trees:        make(map[string]*fenwickMax),
		pointEnds:    make(map[string]map[int]int),
		compatibleOf: compatibleOf,
	}
}

// Contains reports whether an already-inserted, type-compatible span
// fully contains s, excluding the case where the only witness has s's
// exact [start,end) range (an exact duplicate, left for the dedup
// stage rather than dropped here).
func (idx *typeIntervalIndex) Contains(s types.Span) bool {
	startIdx, ok := idx.coordIndex[s.Start]
	if !ok {
		return false
	}

	best, bestAtStart := 0, 0
	for _, t := range idx.compatibleOf[s.EntityType] {
		if tree, ok := idx.trees[t]; ok {
			if m := tree.queryPrefix(startIdx); m > best {
				best = m
			}
		}
		if p, ok := idx.pointEnds[t][startIdx]; ok && p > bestAtStart {
			bestAtStart = p
		}
	}

	if best < s.End {
		return false
	}
	if best == s.End && bestAtStart == s.End {
		return false
	}
	return true
}

// Insert records s as accepted so later Contains queries can match
// against it.
func (idx *typeIntervalIndex) Insert(s types.Span) {
	startIdx, ok := idx.coordIndex[s.Start]
	if !ok {
		return
	}

	tree, ok := idx.trees[s.EntityType]
	if !ok {
		tree = newFenwickMax(idx.coordSize)
		idx.trees[s.EntityType] = tree
	}
	tree.update(startIdx, s.End)

	points, ok := idx.pointEnds[s.EntityType]
	if !ok {
		points = map[int]int{}
		idx.pointEnds[s.EntityType] = points
	}
	if s.End > points[startIdx] {
		points[startIdx] = s.End
	}
}
