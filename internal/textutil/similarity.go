package textutil

// Ratio returns the gestalt (Ratcliff/Obershelp) similarity of a and b in
// [0,1]: twice the runes covered by matching blocks over the total rune
// count. Blocks are found longest first, earliest on ties, then on both
// sides of each block. Runes that make up more than 1% of a b of 200 or more
// runes never start a block. Argument order matters. Two empty strings are
// identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return float64(2*newBlockMatcher(ra, rb).matched()) / float64(total)
}

type blockMatcher struct {
	a, b []rune
	// b2j indexes the positions of each rune in b, ascending.
	b2j map[rune][]int
}

func newBlockMatcher(a, b []rune) *blockMatcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= 200 {
		limit := n/100 + 1
		for r, idx := range b2j {
			if len(idx) > limit {
				delete(b2j, r)
			}
		}
	}
	return &blockMatcher{a: a, b: b, b2j: b2j}
}

// matched sums the sizes of all matching blocks.
func (m *blockMatcher) matched() int {
	total := 0
	queue := [][4]int{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		alo, ahi, blo, bhi := r[0], r[1], r[2], r[3]
		i, j, k := m.longest(alo, ahi, blo, bhi)
		if k == 0 {
			continue
		}
		total += k
		if alo < i && blo < j {
			queue = append(queue, [4]int{alo, i, blo, j})
		}
		if i+k < ahi && j+k < bhi {
			queue = append(queue, [4]int{i + k, ahi, j + k, bhi})
		}
	}
	return total
}

// longest finds the longest block a[i:i+k] == b[j:j+k] inside the given
// ranges, preferring the smallest i and then the smallest j.
func (m *blockMatcher) longest(alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, best := alo, blo, 0
	runs := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runs[j-1] + 1
			next[j] = k
			if k > best {
				besti, bestj, best = i-k+1, j-k+1, k
			}
		}
		runs = next
	}
	// Pruned runes can still extend a block found through other runes.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, best = besti-1, bestj-1, best+1
	}
	for besti+best < ahi && bestj+best < bhi && m.a[besti+best] == m.b[bestj+best] {
		best++
	}
	return besti, bestj, best
}
