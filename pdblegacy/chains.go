package pdblegacy

import "strings"

// observedResidue is one residue actually seen in ATOM/HETATM records,
// as opposed to merely declared by SEQRES.
type observedResidue struct {
	chain   byte
	resSeq  int
	iCode   string
	resName string
	isAtom  bool // true for ATOM, false for HETATM
}

// buildChains implements the SEQRES-gathering half of §4.J/§4.K: it
// collects each chain's declared SEQRES sequence (normalized through
// modres so the aligner scores modified residues against their
// standard parents) and the residues actually observed in ATOM/HETATM,
// then aligns each chain and records its seq-number backfill onto the
// then aligns each chain so that an observed residue SEQRES cannot
// account for fails with a SeqResAlignError.
func buildChains(pp *PreParsed, modres ModResMap) ([]*Chain, []observedResidue, error) {
	seqresByChain := map[byte][]string{}
	order := []byte{}
	for _, r := range pp.FindAll("SEQRES") {
		v := r.Value
		chainID := vC(v, 12)
		monomers := strings.Fields(vSTail(v, 20))
		if _, ok := seqresByChain[chainID]; !ok {
			order = append(order, chainID)
		}
		seqresByChain[chainID] = append(seqresByChain[chainID], monomers...)
	}

	var observed []observedResidue
	seenResidue := map[chainResKey]bool{}
	for _, r := range pp.Records {
		if r.Type != "ATOM  " && r.Type != "HETATM" {
			continue
		}
		v := r.Value
		chainID := vC(v, 22)
		resSeq, _ := vI(v, 23, 26)
		iCode := vS(v, 27, 27)
		key := chainResKey{chain: chainID, resSeq: resSeq, iCode: iCode}
		if seenResidue[key] {
			continue
		}
		seenResidue[key] = true
		observed = append(observed, observedResidue{
			chain:   chainID,
			resSeq:  resSeq,
			iCode:   iCode,
			resName: vS(v, 18, 20),
			isAtom:  r.Type == "ATOM  ",
		})
	}

	var chains []*Chain
	for _, chainID := range order {
		seqres := seqresByChain[chainID]
		isPolymer := len(seqres) > 0
		chains = append(chains, &Chain{
			AuthChainID: chainID,
			SeqRes:      seqres,
			IsPolymer:   isPolymer,
		})
	}

	// Chains that appear only in ATOM/HETATM with no SEQRES (pure
	// heterogen/water chains) still need an entry so their residues get
	// an asym id.
	seenChain := map[byte]bool{}
	for _, c := range chains {
		seenChain[c.AuthChainID] = true
	}
	for _, o := range observed {
		if !seenChain[o.chain] {
			seenChain[o.chain] = true
			chains = append(chains, &Chain{AuthChainID: o.chain, IsPolymer: false})
		}
	}

	if err := alignAllChains(chains, observed, modres); err != nil {
		return nil, nil, err
	}

	return chains, observed, nil
}

// alignAllChains runs AlignChain per polymer chain over its ATOM
// residues and returns the first SeqResAlignError. The backfilled seq
// numbers of each AlignResult are not kept: buildEntities numbers
// residues by SEQRES position instead.
func alignAllChains(chains []*Chain, observed []observedResidue, modres ModResMap) error {
	obsByChain := map[byte][]observedResidue{}
	for _, o := range observed {
		if o.isAtom {
			obsByChain[o.chain] = append(obsByChain[o.chain], o)
		}
	}

	for _, ch := range chains {
		if !ch.IsPolymer || len(ch.SeqRes) == 0 {
			continue
		}
		obs := obsByChain[ch.AuthChainID]
		if len(obs) == 0 {
			continue
		}

		seqresNorm := make([]string, len(ch.SeqRes))
		for i, m := range ch.SeqRes {
			seqresNorm[i] = modres.EquivalentForAlignment(m)
		}
		obsNorm := make([]string, len(obs))
		obsResSeq := make([]int, len(obs))
		for i, o := range obs {
			obsNorm[i] = modres.EquivalentForAlignment(o.resName)
			obsResSeq[i] = o.resSeq
		}

		if _, err := AlignChain(string(ch.AuthChainID), seqresNorm, obsNorm, obsResSeq); err != nil {
			return err
		}
	}
	return nil
}
