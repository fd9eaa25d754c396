package pdblegacy

import "testing"

func TestAlignChainExactMatch(t *testing.T) {
	seqres := []string{"ALA", "GLY", "SER", "CYS", "LEU"}
	observed := []string{"ALA", "GLY", "SER", "CYS", "LEU"}
	resSeq := []int{1, 2, 3, 4, 5}

	res, err := AlignChain("A", seqres, observed, resSeq)
	if err != nil {
		t.Fatalf("AlignChain: %v", err)
	}
	if len(res.Pairs) != 5 {
		t.Fatalf("got %d pairs, want 5", len(res.Pairs))
	}
	for i, p := range res.Pairs {
		if p.SeqResIdx != i || p.ObservedIdx != i {
			t.Errorf("pair %d = %+v, want {%d %d}", i, p, i, i)
		}
	}
	if got := res.SeqNumbers; len(got) != 5 || got[0] != 1 || got[4] != 5 {
		t.Errorf("SeqNumbers = %v, want [1 2 3 4 5]", got)
	}
}

func TestAlignChainMissingSeqResResidues(t *testing.T) {
	// SEQRES declares a flexible loop (residues 3-4) never observed in
	// the density; the aligner should skip over them as a gap in the
	// observed axis, not fail.
	seqres := []string{"ALA", "GLY", "SER", "CYS", "LEU"}
	observed := []string{"ALA", "GLY", "LEU"}
	resSeq := []int{1, 2, 5}

	res, err := AlignChain("A", seqres, observed, resSeq)
	if err != nil {
		t.Fatalf("AlignChain: %v", err)
	}
	if len(res.SeqNumbers) != 5 {
		t.Fatalf("got %d seq numbers, want 5", len(res.SeqNumbers))
	}
	if res.SeqNumbers[0] != 1 || res.SeqNumbers[4] != 5 {
		t.Errorf("SeqNumbers = %v, want endpoints 1 and 5", res.SeqNumbers)
	}
}

func TestAlignChainObservedResidueNotInSeqResIsHardError(t *testing.T) {
	seqres := []string{"ALA", "GLY"}
	observed := []string{"ALA", "TRP", "GLY"}
	resSeq := []int{1, 2, 3}

	_, err := AlignChain("A", seqres, observed, resSeq)
	if err == nil {
		t.Fatalf("expected a SeqResAlignError, got nil")
	}
	if _, ok := err.(*SeqResAlignError); !ok {
		t.Fatalf("got error of type %T, want *SeqResAlignError", err)
	}
}

func TestBackfillSeqNumbersNoAlignedPositions(t *testing.T) {
	nums := backfillSeqNumbers(nil, 3, nil)
	if len(nums) != 3 || nums[0] != 1 || nums[1] != 2 || nums[2] != 3 {
		t.Errorf("backfillSeqNumbers with no pairs = %v, want [1 2 3]", nums)
	}
}
