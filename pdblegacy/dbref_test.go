package pdblegacy

import "testing"

// dbrefValue builds a DBREF record's value (columns 7+) by column
// position, matching reconstructDBRef's layout.
func dbrefValue() string {
	buf := make([]byte, 68-7+1)
	for i := range buf {
		buf[i] = ' '
	}
	place := func(col int, s string) { copy(buf[col-7:], []byte(s)) }
	placeRight := func(col, width int, s string) {
		start := col - 7 + (width - len(s))
		copy(buf[start:start+len(s)], []byte(s))
	}
	place(8, "1ABC")
	place(13, "A")
	placeRight(15, 4, "1")
	placeRight(21, 4, "129")
	place(27, "UNP")
	place(34, "P12345")
	place(43, "MYPROT_HUMAN")
	placeRight(56, 5, "1")
	placeRight(63, 5, "129")
	return string(buf)
}

func TestReconstructDBRefEmitsStructRef(t *testing.T) {
	db := newTestDatablockWriter(t)
	eb := newEntityBuild()
	eb.chainEntity['A'] = 1
	eb.residueMap[chainResKey{chain: 'A', resSeq: 1}] = residueLoc{asymID: "A", labelSeq: 1, isPoly: true}

	src := "DBREF " + dbrefValue() + "\n"
	pp := mustPreParse(t, src)

	reconstructDBRef(db, pp, eb)
	if db.structRef.RowCount() != 1 {
		t.Fatalf("expected 1 struct_ref row, got %d", db.structRef.RowCount())
	}
	row := db.structRef.Rows()[0]
	if got := db.structRef.GetOrUnknown(row, "db_name"); got != "UNP" {
		t.Errorf("db_name = %q, want UNP", got)
	}
	if got := db.structRef.GetOrUnknown(row, "pdbx_db_accession"); got != "P12345" {
		t.Errorf("pdbx_db_accession = %q, want P12345", got)
	}
	if db.structRefSeq.RowCount() != 1 {
		t.Fatalf("expected 1 struct_ref_seq row, got %d", db.structRefSeq.RowCount())
	}
}

func TestReconstructDBRefDBREF1DBREF2Pair(t *testing.T) {
	db := newTestDatablockWriter(t)
	eb := newEntityBuild()

	buf1 := make([]byte, 67-7+1)
	for i := range buf1 {
		buf1[i] = ' '
	}
	copy(buf1[13-7:], []byte("A"))
	copy(buf1[27-7:], []byte("UNP"))
	copy(buf1[48-7:], []byte("SOMEPROT_HUMAN"))
	rec1 := "DBREF1" + string(buf1)

	buf2 := make([]byte, 67-7+1)
	for i := range buf2 {
		buf2[i] = ' '
	}
	copy(buf2[13-7:], []byte("A"))
	copy(buf2[19-7:], []byte("P12345"))
	rec2 := "DBREF2" + string(buf2)

	pp := mustPreParse(t, rec1+"\n"+rec2+"\n")
	reconstructDBRef(db, pp, eb)
	if db.structRef.RowCount() != 1 {
		t.Fatalf("expected DBREF1/DBREF2 pair to merge into 1 struct_ref row, got %d", db.structRef.RowCount())
	}
	row := db.structRef.Rows()[0]
	if got := db.structRef.GetOrUnknown(row, "pdbx_db_accession"); got != "P12345" {
		t.Errorf("pdbx_db_accession = %q, want P12345", got)
	}
}

func TestReconstructDBRefSEQADV(t *testing.T) {
	db := newTestDatablockWriter(t)
	eb := newEntityBuild()
	eb.residueMap[chainResKey{chain: 'A', resSeq: 5}] = residueLoc{asymID: "A", labelSeq: 5, isPoly: true}

	buf := make([]byte, 80-7+1)
	for i := range buf {
		buf[i] = ' '
	}
	place := func(col int, s string) { copy(buf[col-7:], []byte(s)) }
	place(8, "1ABC")
	place(13, "VAL")
	place(17, "A")
	place(19, "   5")
	place(25, "UNP")
	place(30, "P12345")
	place(40, "MET")
	place(50, "ENGINEERED MUTATION")
	src := "SEQADV" + string(buf) + "\n"
	pp := mustPreParse(t, src)

	reconstructDBRef(db, pp, eb)
	if db.structRefSeqDif.RowCount() != 1 {
		t.Fatalf("expected 1 struct_ref_seq_dif row, got %d", db.structRefSeqDif.RowCount())
	}
	row := db.structRefSeqDif.Rows()[0]
	if got := db.structRefSeqDif.GetOrUnknown(row, "mon_id"); got != "VAL" {
		t.Errorf("mon_id = %q, want VAL", got)
	}
}
