package pdblegacy

import "fmt"

// SeqResAlignError is a hard error per §4.K/§7: an observed residue that
// matches nothing in SEQRES means the file disagrees with itself, which
// is never recoverable by logging and continuing.
type SeqResAlignError struct {
	ChainID string
	Index   int
	ResName string
}

func (e *SeqResAlignError) Error() string {
	return fmt.Sprintf("pdblegacy: chain %s: observed residue %d (%s) matches nothing in SEQRES", e.ChainID, e.Index, e.ResName)
}

// Alignment scoring constants, verbatim from §4.K.
const (
	scoreMatch       = 5.0
	scoreMismatch    = -10.0
	gapOpenCost      = 10.0
	gapOpenReduced   = 0.0
	gapExtendCost    = 0.1
	negInf           = -1e18
)

// cell is one entry of Gotoh's three-matrix dynamic-programming grid:
// m is the "both sides aligned" score, ix a gap in the seqres axis, iy
// a gap in the observed axis.
type cell struct{ m, ix, iy float64 }

// AlignPair is one cell of the traceback: SeqResIdx/ObservedIdx are
// 0-based indices into the two input sequences, or -1 when the other
// side of the pair is a gap.
type AlignPair struct {
	SeqResIdx   int
	ObservedIdx int
}

// AlignResult is the traceback of one chain's alignment, plus the
// seq-number assignment SEQRES positions receive once alignment is
// done.
type AlignResult struct {
	Pairs      []AlignPair
	SeqNumbers []int // parallel to the SEQRES sequence; propagated/backfilled per §4.K
}

// AlignChain runs the Needleman-Wunsch affine-gap alignment of §4.K
// between seqres (the full declared sequence, after ModResMap
// normalization) and observed (the residues actually seen in ATOM/HETATM
// records for this chain, in the same normalized form). observedResSeq
// gives the author-supplied residue number for each observed position,
// used both to detect "a gap is expected" (waiving the gap-open
// penalty) and to seed the seq-number backfill once the best path is
// found.
//
// It implements Gotoh's three-matrix formulation: M (both sides
// aligned), Ix (gap in x/seqres — an inserted, unobserved residue), Iy
// (gap in y/observed — an extra observed residue absent from SEQRES,
// which is the hard-error case once no traceback explains it).
func AlignChain(chainID string, seqres, observed []string, observedResSeq []int) (AlignResult, error) {
	n, m := len(seqres), len(observed)

	grid := make([][]cell, n+1)
	for i := range grid {
		grid[i] = make([]cell, m+1)
	}
	for j := 1; j <= m; j++ {
		grid[0][j].m = negInf
		grid[0][j].ix = negInf
		grid[0][j].iy = gapPenalty(j, gapExpectedAt(observedResSeq, j-1))
	}
	for i := 1; i <= n; i++ {
		grid[i][0].m = negInf
		grid[i][0].iy = negInf
		grid[i][0].ix = gapPenalty(i, false)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := scoreMismatch
			if seqres[i-1] == observed[j-1] {
				sub = scoreMatch
			}
			prev := grid[i-1][j-1]
			grid[i][j].m = sub + max3(prev.m, prev.ix, prev.iy)

			openX := gapOpenCost
			if gapExpectedAt(observedResSeq, j-1) {
				openX = gapOpenReduced
			}
			up := grid[i-1][j]
			grid[i][j].ix = max2(
				up.m-openX,
				max2(up.ix-gapExtendCost, up.iy-openX),
			)

			openY := gapOpenCost
			left := grid[i][j-1]
			grid[i][j].iy = max2(
				left.m-openY,
				max2(left.iy-gapExtendCost, left.ix-openY),
			)
		}
	}

	// Traceback from the highest-scoring cell in the final row or
	// column, per §4.K.
	// The (n,m) cell wins ties, so an end-gap path never displaces an
	// equally scored complete alignment.
	bestI, bestJ, bestScore := n, m, max3(grid[n][m].m, grid[n][m].ix, grid[n][m].iy)
	for j := 0; j <= m; j++ {
		if s := max3(grid[n][j].m, grid[n][j].ix, grid[n][j].iy); s > bestScore {
			bestScore, bestI, bestJ = s, n, j
		}
	}
	for i := 0; i <= n; i++ {
		if s := max3(grid[i][m].m, grid[i][m].ix, grid[i][m].iy); s > bestScore {
			bestScore, bestI, bestJ = s, i, m
		}
	}

	var pairs []AlignPair
	i, j := bestI, bestJ
	// Observed residues past bestJ are left out of the traceback: an
	// unaligned C-terminal tail, not a hard error (§4.K handles those
	// via the TER index in the caller). The traceback runs back to
	// (0,0), so every observed residue it covers that has no SEQRES
	// counterpart, a leading one included, is the hard-error case.
	state := bestState(grid[i][j])
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && state == 'M':
			pairs = append(pairs, AlignPair{SeqResIdx: i - 1, ObservedIdx: j - 1})
			prev := grid[i-1][j-1]
			i, j = i-1, j-1
			state = bestState(prev)
		case i > 0 && (j == 0 || state == 'X'):
			pairs = append(pairs, AlignPair{SeqResIdx: i - 1, ObservedIdx: -1})
			i--
			state = 'X'
			if i > 0 {
				state = stateFeedingIx(grid, i, j)
			}
		case j > 0:
			pairs = append(pairs, AlignPair{SeqResIdx: -1, ObservedIdx: j - 1})
			j--
			state = 'Y'
			if j > 0 {
				state = stateFeedingIy(grid, i, j)
			}
		default:
			i, j = 0, 0
		}
	}
	reversePairs(pairs)

	for _, p := range pairs {
		if p.SeqResIdx == -1 || (p.ObservedIdx >= 0 && seqres[p.SeqResIdx] != observed[p.ObservedIdx]) {
			// An observed residue with no SEQRES counterpart inside the
			// aligned region, or aligned against a different SEQRES
			// residue: the file disagrees with itself.
			return AlignResult{}, &SeqResAlignError{ChainID: chainID, Index: p.ObservedIdx, ResName: observed[p.ObservedIdx]}
		}
	}

	seqNumbers := backfillSeqNumbers(pairs, n, observedResSeq)
	return AlignResult{Pairs: pairs, SeqNumbers: seqNumbers}, nil
}

func gapExpectedAt(observedResSeq []int, j int) bool {
	if j < 0 || j+1 >= len(observedResSeq) {
		return false
	}
	return observedResSeq[j+1]-observedResSeq[j] > 1
}

func gapPenalty(steps int, reduced bool) float64 {
	open := gapOpenCost
	if reduced {
		open = gapOpenReduced
	}
	return -(open + float64(steps-1)*gapExtendCost)
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func max3(a, b, c float64) float64 { return max2(a, max2(b, c)) }

func bestState(c cell) byte {
	switch {
	case c.m >= c.ix && c.m >= c.iy:
		return 'M'
	case c.ix >= c.iy:
		return 'X'
	default:
		return 'Y'
	}
}

func stateFeedingIx(grid [][]cell, i, j int) byte {
	return bestState(grid[i][j])
}

func stateFeedingIy(grid [][]cell, i, j int) byte {
	return bestState(grid[i][j])
}

func reversePairs(p []AlignPair) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// backfillSeqNumbers implements §4.K's "unaligned SEQRES positions
// receive seq numbers propagated from their aligned neighbours;
// positions that remain unnumbered at the N-terminal end are numbered
// backwards from the first aligned position".
func backfillSeqNumbers(pairs []AlignPair, seqresLen int, observedResSeq []int) []int {
	nums := make([]int, seqresLen)
	assigned := make([]bool, seqresLen)
	for _, p := range pairs {
		if p.SeqResIdx >= 0 && p.ObservedIdx >= 0 {
			nums[p.SeqResIdx] = observedResSeq[p.ObservedIdx]
			assigned[p.SeqResIdx] = true
		}
	}

	firstAligned := -1
	for i, ok := range assigned {
		if ok {
			firstAligned = i
			break
		}
	}
	if firstAligned == -1 {
		for i := range nums {
			nums[i] = i + 1
		}
		return nums
	}

	// N-terminal unaligned run: numbered backwards from the first
	// aligned position.
	for i := firstAligned - 1; i >= 0; i-- {
		nums[i] = nums[i+1] - 1
	}
	// Interior/C-terminal unaligned positions: propagate forward from
	// the last known value.
	last := nums[firstAligned]
	for i := firstAligned + 1; i < seqresLen; i++ {
		if assigned[i] {
			last = nums[i]
			continue
		}
		last++
		nums[i] = last
	}
	return nums
}
