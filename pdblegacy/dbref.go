package pdblegacy

import "strconv"

// reconstructDBRef implements the DBREF/DBREF1/DBREF2 -> struct_ref/
// struct_ref_seq half of §4.J, plus SEQADV -> struct_ref_seq_dif,
// following the reference's column layout. DBREF1/DBREF2 is a two-line
// pair sharing one chain's reference (DBREF1 carries everything but the
// numeric database range, which DBREF2 supplies); §4.I's continuation
// rules leave these as two separate records, so this pass keeps the
// DBREF1 half in a pending map keyed by chain until the DBREF2 half
// arrives.
func reconstructDBRef(db *datablockWriter, pp *PreParsed, eb *entityBuild) {
	type pending struct {
		chainID  string
		database string
		dbIdCode string

		seqBegin, seqEnd       int
		insertBegin, insertEnd string
	}
	pendingByChain := map[string]pending{}

	refID := 0
	emit := func(chainID string, seqBegin, seqEnd int, insertBegin, insertEnd string,
		database, dbAccession, dbIdCode string, dbSeqBegin, dbSeqEnd int) {
		refID++
		asymID, _, _ := eb.mapResidue(firstByte(chainID), seqBegin, insertBegin)
		entityID := ""
		if eid, ok := eb.chainEntity[firstByte(chainID)]; ok {
			entityID = strconv.Itoa(eid)
		}
		db.structRef.AppendRow(map[string]string{
			"id":             strconv.Itoa(refID),
			"entity_id":      entityID,
			"db_name":        database,
			"db_code":        dbIdCode,
			"pdbx_db_accession": dbAccession,
		})
		db.structRefSeq.AppendRow(map[string]string{
			"align_id":             strconv.Itoa(refID),
			"ref_id":               strconv.Itoa(refID),
			"pdbx_PDB_id_code":     "",
			"pdbx_strand_id":       chainID,
			"seq_align_beg":        intOrEmpty(seqBegin, true),
			"pdbx_seq_align_beg_ins_code": insertBegin,
			"seq_align_end":        intOrEmpty(seqEnd, true),
			"pdbx_seq_align_end_ins_code": insertEnd,
			"pdbx_db_accession":    dbAccession,
			"db_align_beg":         strconv.Itoa(dbSeqBegin),
			"db_align_end":         strconv.Itoa(dbSeqEnd),
			"pdbx_auth_seq_align_beg": strconv.Itoa(seqBegin),
			"pdbx_auth_seq_align_end": strconv.Itoa(seqEnd),
		})
		_ = asymID
	}

	for _, r := range pp.FindAll("DBREF ") {
		v := r.Value
		chainID := vS(v, 13, 13)
		seqBegin, _ := vI(v, 15, 18)
		insertBegin := vS(v, 19, 19)
		seqEnd, _ := vI(v, 21, 24)
		insertEnd := vS(v, 25, 25)
		database := vS(v, 27, 32)
		dbAccession := vS(v, 34, 41)
		dbIdCode := vS(v, 43, 54)
		dbSeqBegin, _ := vI(v, 56, 60)
		dbSeqEnd, _ := vI(v, 63, 67)
		emit(chainID, seqBegin, seqEnd, insertBegin, insertEnd, database, dbAccession, dbIdCode, dbSeqBegin, dbSeqEnd)
	}

	for _, r := range pp.FindAll("DBREF1") {
		v := r.Value
		chainID := vS(v, 13, 13)
		seqBegin, _ := vI(v, 15, 18)
		seqEnd, _ := vI(v, 21, 24)
		pendingByChain[chainID] = pending{
			chainID:     chainID,
			database:    vS(v, 27, 32),
			dbIdCode:    vS(v, 48, 67),
			seqBegin:    seqBegin,
			seqEnd:      seqEnd,
			insertBegin: vS(v, 19, 19),
			insertEnd:   vS(v, 25, 25),
		}
	}
	for _, r := range pp.FindAll("DBREF2") {
		v := r.Value
		chainID := vS(v, 13, 13)
		p, ok := pendingByChain[chainID]
		if !ok {
			continue
		}
		dbAccession := vS(v, 19, 40)
		dbSeqBegin, _ := vI(v, 46, 55)
		dbSeqEnd, _ := vI(v, 58, 67)
		emit(chainID, p.seqBegin, p.seqEnd, p.insertBegin, p.insertEnd, p.database, dbAccession, p.dbIdCode, dbSeqBegin, dbSeqEnd)
	}

	for _, r := range pp.FindAll("SEQADV") {
		v := r.Value
		resName := vS(v, 13, 15)
		chainID := vS(v, 17, 17)
		seqNum, _ := vI(v, 19, 22)
		iCode := vS(v, 23, 23)
		database := vS(v, 25, 28)
		dbAccession := vS(v, 30, 38)
		dbRes := vS(v, 40, 42)
		dbSeq, dbSeqOk := vI(v, 44, 48)
		conflict := vSTail(v, 50)

		asymID, labelSeq, ok := eb.mapResidue(firstByte(chainID), seqNum, iCode)
		if !ok {
			continue
		}
		db.structRefSeqDif.AppendRow(map[string]string{
			"align_id":          "1",
			"pdbx_pdb_id_code":  "",
			"mon_id":            resName,
			"pdbx_pdb_strand_id": chainID,
			"seq_num":           strconv.Itoa(labelSeq),
			"pdbx_pdb_ins_code": iCode,
			"pdbx_seq_db_name":  database,
			"pdbx_seq_db_accession_code": dbAccession,
			"db_mon_id":         dbRes,
			"pdbx_seq_db_seq_num": intOrEmpty(dbSeq, dbSeqOk),
			"details":           conflict,
			"pdbx_auth_seq_num": strconv.Itoa(seqNum),
		})
		_ = asymID
	}
}
