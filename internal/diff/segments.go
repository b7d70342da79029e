package diff

import (
	"sort"

	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/token"
)

// SegmentMatcher computes move-aware edit scripts between segment trees. It is immutable and safe for concurrent use.
//
// Matching runs in two phases. First, b's tree is walked top-down and each paragraph or sentence is paired with an unused, content-identical segment
// anywhere in a; a pair becomes one Equal even when the segment moved. Unpaired segments are searched again at the next finer level. Second, the tokens
// left over on both sides (unpaired leaves and all whitespace segments) are diffed with a SequenceMatcher.
//
// When several segments of a have the right content, the one whose neighbours also match b's neighbours for the longest run wins; remaining ties go to
// the leftmost.
type SegmentMatcher struct {
	seq *SequenceMatcher
}

// NewSegmentMatcher returns a SegmentMatcher whose residual diffs use a SequenceMatcher configured by opts.
func NewSegmentMatcher(opts Options) *SegmentMatcher {
	return &SegmentMatcher{seq: NewSequenceMatcher(opts)}
}

// siblings locates a node in the child list (or root list) that contains it.
type siblings struct {
	list []int
	idx  int
}

// segmentMatch holds the state of one Diff call.
type segmentMatch struct {
	a, b     *segment.Tree
	byHash   map[uint64][]int // a's paragraph/sentence node ids, by hash, ascending by start then descending by length
	aSibs    map[int]siblings
	aUsed    []bool
	bMatched []bool
	pieces   []Operation
}

// Diff returns the edit script turning a's tokens into b's tokens.
func (m *SegmentMatcher) Diff(a, b *segment.Tree) []Operation {
	sm := &segmentMatch{
		a:        a,
		b:        b,
		byHash:   map[uint64][]int{},
		aSibs:    map[int]siblings{},
		aUsed:    make([]bool, a.Len()),
		bMatched: make([]bool, b.Len()),
	}
	sm.indexA()
	sm.matchList(b.Roots)
	m.residual(sm)
	return arrange(sm.pieces)
}

func (sm *segmentMatch) indexA() {
	var walk func(list []int)
	walk = func(list []int) {
		for i, id := range list {
			n := sm.a.Nodes[id]
			sm.aSibs[id] = siblings{list: list, idx: i}
			if n.Level != segment.Whitespace {
				sm.byHash[n.Hash] = append(sm.byHash[n.Hash], id)
			}
			walk(n.Children)
		}
	}
	walk(sm.a.Roots)
	for _, ids := range sm.byHash {
		sort.SliceStable(ids, func(i, j int) bool {
			ni, nj := sm.a.Nodes[ids[i]], sm.a.Nodes[ids[j]]
			if ni.Start != nj.Start {
				return ni.Start < nj.Start
			}
			return ni.Len() > nj.Len()
		})
	}
}

// matchList pairs each node of a b child list with a node of a, descending into nodes that find no partner.
func (sm *segmentMatch) matchList(list []int) {
	for k, id := range list {
		n := sm.b.Nodes[id]
		if n.Level != segment.Whitespace {
			if ai, ok := sm.pick(list, k); ok {
				an := sm.a.Nodes[ai]
				for i := an.Start; i < an.End; i++ {
					sm.aUsed[i] = true
				}
				for j := n.Start; j < n.End; j++ {
					sm.bMatched[j] = true
				}
				sm.pieces = append(sm.pieces, Operation{Op: OpEqual, A1: an.Start, A2: an.End, B1: n.Start, B2: n.End})
				continue
			}
		}
		sm.matchList(n.Children)
	}
}

// pick chooses the a node to pair with b node list[k], if any.
func (sm *segmentMatch) pick(list []int, k int) (int, bool) {
	bid := list[k]
	best, bestScore := -1, -1
	for _, ai := range sm.byHash[sm.b.Nodes[bid].Hash] {
		if !sm.available(ai) || !segment.SameContent(sm.a, ai, sm.b, bid) {
			continue
		}
		if score := sm.context(ai, list, k); score > bestScore {
			best, bestScore = ai, score
		}
	}
	return best, best >= 0
}

// available reports whether none of node ai's tokens are paired yet.
func (sm *segmentMatch) available(ai int) bool {
	n := sm.a.Nodes[ai]
	for i := n.Start; i < n.End; i++ {
		if sm.aUsed[i] {
			return false
		}
	}
	return true
}

// context counts how many siblings on either side of a node ai and b node list[k] also have identical content, stopping at the first mismatch in each
// direction.
func (sm *segmentMatch) context(ai int, list []int, k int) int {
	s := sm.aSibs[ai]
	score := 0
	for _, dir := range []int{-1, 1} {
		for d := 1; ; d++ {
			x, y := s.idx+dir*d, k+dir*d
			if x < 0 || x >= len(s.list) || y < 0 || y >= len(list) {
				break
			}
			if !segment.SameContent(sm.a, s.list[x], sm.b, list[y]) {
				break
			}
			score++
		}
	}
	return score
}

// residual diffs the unpaired tokens of both sides and adds the results to sm.pieces, split wherever the unpaired tokens are not contiguous in the
// original sequences.
func (m *SegmentMatcher) residual(sm *segmentMatch) {
	var ua, ub []int
	var ka, kb []string
	for i, used := range sm.aUsed {
		if !used {
			ua = append(ua, i)
			ka = append(ka, sm.a.Tokens[i].Key())
		}
	}
	for j, matched := range sm.bMatched {
		if !matched {
			ub = append(ub, j)
			kb = append(kb, sm.b.Tokens[j].Key())
		}
	}

	// aAt and bAt map a position in the residual sequences back to the original ones.
	aAt := func(x int) int {
		if x < len(ua) {
			return ua[x]
		}
		return sm.a.Len()
	}

	var trailing []Operation
	for _, op := range m.seq.DiffKeys(ka, kb) {
		switch op.Op {
		case OpEqual:
			start := 0
			for t := 1; t <= op.A2-op.A1; t++ {
				if t < op.A2-op.A1 && ua[op.A1+t] == ua[op.A1+t-1]+1 && ub[op.B1+t] == ub[op.B1+t-1]+1 {
					continue
				}
				a1, b1 := ua[op.A1+start], ub[op.B1+start]
				sm.pieces = append(sm.pieces, Operation{Op: OpEqual, A1: a1, A2: a1 + t - start, B1: b1, B2: b1 + t - start})
				start = t
			}
		case OpInsert:
			anchor := aAt(op.A1)
			for _, r := range runs(ub[op.B1:op.B2]) {
				sm.pieces = append(sm.pieces, Operation{Op: OpInsert, A1: anchor, A2: anchor, B1: r[0], B2: r[1]})
			}
		case OpDelete:
			for _, r := range runs(ua[op.A1:op.A2]) {
				del := Operation{Op: OpDelete, A1: r[0], A2: r[1]}
				if op.B1 < len(ub) {
					del.B1, del.B2 = ub[op.B1], ub[op.B1]
					sm.pieces = append(sm.pieces, del)
				} else {
					trailing = append(trailing, del)
				}
			}
		}
	}

	// Deletions after the last residual b token follow whatever precedes them in a.
	for _, del := range trailing {
		p := sm.b.Len()
		if del.A1 == 0 {
			p = 0
		} else {
			for _, pc := range sm.pieces {
				if pc.A2 == del.A1 && pc.Op != OpInsert {
					p = pc.B2
					break
				}
			}
		}
		del.B1, del.B2 = p, p
		sm.pieces = append(sm.pieces, del)
	}
}

// runs splits ascending indices into maximal [start, end) runs of consecutive values.
func runs(idx []int) [][2]int {
	var out [][2]int
	for i, v := range idx {
		if i > 0 && v == idx[i-1]+1 {
			out[len(out)-1][1] = v + 1
			continue
		}
		out = append(out, [2]int{v, v + 1})
	}
	return out
}

// arrange orders pieces by their position in b (deletions before the piece that starts where they sit, then by a) and merges neighbours.
func arrange(pieces []Operation) []Operation {
	sort.SliceStable(pieces, func(i, j int) bool {
		pi, pj := pieces[i], pieces[j]
		if pi.B1 != pj.B1 {
			return pi.B1 < pj.B1
		}
		di, dj := pi.Op == OpDelete, pj.Op == OpDelete
		if di != dj {
			return di
		}
		return pi.A1 < pj.A1
	})
	return compact(pieces)
}

// DiffTokens is a convenience that segments a and b with s and diffs the trees.
func (m *SegmentMatcher) DiffTokens(s *segment.Segmenter, a, b []token.Token) []Operation {
	return m.Diff(s.Segment(a), s.Segment(b))
}
