package diff

import (
	"sort"

	"github.com/codalotl/deltas/internal/token"
)

// SequenceMatcher computes edit scripts between flat token sequences. It is immutable and safe for concurrent use.
//
// The algorithm finds the longest contiguous block common to a[alo:ahi] and b[blo:bhi] and repeats on the regions before and after it. Among blocks of
// maximal length it picks the one starting earliest in a, then earliest in b, so results are deterministic. This is not always the shortest edit
// script, but it tends to produce diffs that read the way a person would describe the change. The worst case is quadratic.
type SequenceMatcher struct {
	junkThreshold float64
}

// NewSequenceMatcher returns a SequenceMatcher configured by opts.
func NewSequenceMatcher(opts Options) *SequenceMatcher {
	return &SequenceMatcher{junkThreshold: opts.JunkThreshold}
}

// Diff returns the edit script turning a into b.
func (m *SequenceMatcher) Diff(a, b []token.Token) []Operation {
	return m.DiffKeys(token.Keys(a), token.Keys(b))
}

// DiffKeys is Diff over precomputed equality keys.
func (m *SequenceMatcher) DiffKeys(a, b []string) []Operation {
	blocks := m.matchingBlocks(a, b)
	return opsFromBlocks(blocks, len(a), len(b))
}

// block is a match: a[a:a+n] == b[b:b+n].
type block struct {
	a, b, n int
}

// region is a pair of half-open ranges still to be matched.
type region struct {
	alo, ahi, blo, bhi int
}

// index maps each key of b to its ascending positions, without popular keys.
func (m *SequenceMatcher) index(b []string) map[string][]int {
	b2j := make(map[string][]int)
	for j, k := range b {
		b2j[k] = append(b2j[k], j)
	}
	if m.junkThreshold > 0 {
		limit := m.junkThreshold * float64(len(b))
		for k, js := range b2j {
			if len(js) > 1 && float64(len(js)) > limit {
				delete(b2j, k)
			}
		}
	}
	return b2j
}

// matchingBlocks returns the non-adjacent matching blocks, ascending in both a and b. Regions are processed from an explicit stack so that depth is
// bounded by memory, not the goroutine stack.
func (m *SequenceMatcher) matchingBlocks(a, b []string) []block {
	b2j := m.index(b)

	var blocks []block
	stack := []region{{0, len(a), 0, len(b)}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bl := findLongestMatch(a, b, b2j, r)
		if bl.n == 0 {
			continue
		}
		blocks = append(blocks, bl)
		if r.alo < bl.a && r.blo < bl.b {
			stack = append(stack, region{r.alo, bl.a, r.blo, bl.b})
		}
		if bl.a+bl.n < r.ahi && bl.b+bl.n < r.bhi {
			stack = append(stack, region{bl.a + bl.n, r.ahi, bl.b + bl.n, r.bhi})
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].a < blocks[j].a })

	// Regions are independent, so neighbouring blocks can abut; join them.
	var out []block
	for _, bl := range blocks {
		if n := len(out); n > 0 && out[n-1].a+out[n-1].n == bl.a && out[n-1].b+out[n-1].n == bl.b {
			out[n-1].n += bl.n
			continue
		}
		out = append(out, bl)
	}
	return out
}

// findLongestMatch returns the longest block in region r, preferring the lowest a start and then the lowest b start. Keys left out of b2j (popular
// keys) cannot seed a block, but the block found is extended over any equal neighbours, popular or not.
func findLongestMatch(a, b []string, b2j map[string][]int, r region) block {
	besti, bestj, bestn := r.alo, r.blo, 0

	// j2len[j] is the length of the match ending at a[i-1], b[j].
	j2len := map[int]int{}
	for i := r.alo; i < r.ahi; i++ {
		next := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < r.blo {
				continue
			}
			if j >= r.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestn {
				besti, bestj, bestn = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	for besti > r.alo && bestj > r.blo && a[besti-1] == b[bestj-1] {
		besti, bestj, bestn = besti-1, bestj-1, bestn+1
	}
	for besti+bestn < r.ahi && bestj+bestn < r.bhi && a[besti+bestn] == b[bestj+bestn] {
		bestn++
	}
	return block{besti, bestj, bestn}
}

// opsFromBlocks converts ascending matching blocks into an edit script. A gap changed on both sides becomes a Delete followed by an Insert.
func opsFromBlocks(blocks []block, la, lb int) []Operation {
	var ops []Operation
	i, j := 0, 0
	for _, bl := range append(blocks, block{la, lb, 0}) {
		if i < bl.a {
			ops = append(ops, Operation{Op: OpDelete, A1: i, A2: bl.a, B1: j, B2: j})
		}
		if j < bl.b {
			ops = append(ops, Operation{Op: OpInsert, A1: bl.a, A2: bl.a, B1: j, B2: bl.b})
		}
		if bl.n > 0 {
			ops = append(ops, Operation{Op: OpEqual, A1: bl.a, A2: bl.a + bl.n, B1: bl.b, B2: bl.b + bl.n})
		}
		i, j = bl.a+bl.n, bl.b+bl.n
	}
	return compact(ops)
}
