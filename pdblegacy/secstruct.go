package pdblegacy

import "strconv"

// reconstructSecondaryStructure implements §4.J's "Secondary structure"
// step: HELIX -> struct_conf, SHEET -> struct_sheet/struct_sheet_range/
// struct_sheet_order/pdbx_struct_sheet_hbond, per the reference's column
// layout.
func reconstructSecondaryStructure(db *datablockWriter, pp *PreParsed, eb *entityBuild) {
	for _, r := range pp.FindAll("HELIX ") {
		v := r.Value
		begAsym, begSeq, ok1 := eb.mapResidue(vC(v, 20), mustI(vI(v, 22, 25)), vS(v, 26, 26))
		endAsym, endSeq, ok2 := eb.mapResidue(vC(v, 32), mustI(vI(v, 34, 37)), vS(v, 38, 38))
		if !ok1 || !ok2 {
			continue
		}
		serNum, _ := vI(v, 8, 10)
		db.structConf.AppendRow(map[string]string{
			"conf_type_id":            "HELX_P",
			"id":                      "HELX_P" + strconv.Itoa(serNum),
			"pdbx_PDB_helix_id":       vS(v, 12, 14),
			"beg_label_comp_id":       vS(v, 16, 18),
			"beg_label_asym_id":       begAsym,
			"beg_label_seq_id":        strconv.Itoa(begSeq),
			"pdbx_beg_PDB_ins_code":   vS(v, 26, 26),
			"end_label_comp_id":       vS(v, 28, 30),
			"end_label_asym_id":       endAsym,
			"end_label_seq_id":        strconv.Itoa(endSeq),
			"pdbx_end_PDB_ins_code":   vS(v, 38, 38),
			"beg_auth_comp_id":        vS(v, 16, 18),
			"beg_auth_asym_id":        vS(v, 20, 20),
			"beg_auth_seq_id":         intOrEmpty(vI(v, 22, 25)),
			"end_auth_comp_id":        vS(v, 28, 30),
			"end_auth_asym_id":        vS(v, 32, 32),
			"end_auth_seq_id":         intOrEmpty(vI(v, 34, 37)),
			"pdbx_PDB_helix_class":    vS(v, 39, 40),
			"details":                 vS(v, 41, 70),
			"pdbx_PDB_helix_length":   intOrEmpty(vI(v, 72, 76)),
		})
	}

	seenSheets := map[string]bool{}
	rangeID := 1
	for _, r := range pp.FindAll("SHEET ") {
		v := r.Value
		sheetID := vS(v, 12, 14)
		if !seenSheets[sheetID] {
			seenSheets[sheetID] = true
			rangeID = 1
			db.structSheet.AppendRow(map[string]string{
				"id":              sheetID,
				"number_strands":  intOrEmpty(vI(v, 15, 16)),
			})
		}

		if sense, ok := vI(v, 39, 40); ok && sense != 0 {
			senseStr := "parallel"
			if sense == -1 {
				senseStr = "anti-parallel"
			}
			db.structSheetOrder.AppendRow(map[string]string{
				"sheet_id":   sheetID,
				"range_id_1": strconv.Itoa(rangeID),
				"range_id_2": strconv.Itoa(rangeID + 1),
				"sense":      senseStr,
			})
		}

		begAsym, begSeq, ok1 := eb.mapResidue(vC(v, 22), mustI(vI(v, 23, 26)), vS(v, 27, 27))
		endAsym, endSeq, ok2 := eb.mapResidue(vC(v, 33), mustI(vI(v, 34, 37)), vS(v, 38, 38))
		if !ok1 || !ok2 {
			continue
		}
		strandID, _ := vI(v, 8, 10)
		db.structSheetRange.AppendRow(map[string]string{
			"sheet_id":              sheetID,
			"id":                    strconv.Itoa(strandID),
			"beg_label_comp_id":     vS(v, 18, 20),
			"beg_label_asym_id":     begAsym,
			"beg_label_seq_id":      strconv.Itoa(begSeq),
			"pdbx_beg_PDB_ins_code": vS(v, 27, 27),
			"end_label_comp_id":     vS(v, 29, 31),
			"end_label_asym_id":     endAsym,
			"end_label_seq_id":      strconv.Itoa(endSeq),
			"pdbx_end_PDB_ins_code": vS(v, 38, 38),
			"beg_auth_comp_id":      vS(v, 18, 20),
			"beg_auth_asym_id":      vS(v, 22, 22),
			"beg_auth_seq_id":       intOrEmpty(vI(v, 23, 26)),
			"end_auth_comp_id":      vS(v, 29, 31),
			"end_auth_asym_id":      vS(v, 33, 33),
			"end_auth_seq_id":       intOrEmpty(vI(v, 34, 37)),
		})
		rangeID++
	}
}

func mustI(n int, _ bool) int { return n }

func intOrEmpty(n int, ok bool) string {
	if !ok {
		return "?"
	}
	return strconv.Itoa(n)
}
