package pdblegacy

// ModResMap is the MODRES map supplemented from original_source/ (see
// SPEC_FULL.md §4): a standard-residue <- modified-residue lookup used
// both by chem-comp emission's mon_nstd_flag computation and by the
// SEQRES aligner, which treats a modified residue as equivalent to its
// standard parent for scoring purposes.
type ModResMap map[string]string

// BuildModResMap parses every MODRES record's residue-name/standard-name
// pair, following the reference implementation's column layout:
// residue name at columns 13-15, standard residue name at columns 25-27.
func BuildModResMap(pp *PreParsed) ModResMap {
	m := ModResMap{}
	for _, r := range pp.FindAll("MODRES") {
		resName := vS(r.Value, 13, 15)
		stdRes := vS(r.Value, 25, 27)
		if resName == "" || stdRes == "" {
			continue
		}
		m[resName] = stdRes
	}
	return m
}

// Parent returns the standard residue name resName was modified from,
// or resName itself (with ok=false) if it is not a tracked modification.
func (m ModResMap) Parent(resName string) (string, bool) {
	if std, ok := m[resName]; ok {
		return std, true
	}
	return resName, false
}

// EquivalentForAlignment returns the residue name the aligner should
// score resName against: its standard parent if it is a known
// modification, otherwise resName unchanged.
func (m ModResMap) EquivalentForAlignment(resName string) string {
	if std, ok := m[resName]; ok {
		return std
	}
	return resName
}
