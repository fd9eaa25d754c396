package pdblegacy

import "testing"

func TestLinkConnTypeMetal(t *testing.T) {
	if got := linkConnType("ZN", "SG"); got != "metalc" {
		t.Errorf("linkConnType with a zinc atom = %q, want metalc", got)
	}
	if got := linkConnType("C", "N"); got != "covale" {
		t.Errorf("linkConnType between organic atoms = %q, want covale", got)
	}
}

func TestIsLikelyMetal(t *testing.T) {
	for _, m := range []string{"ZN", "MG", "FE"} {
		if !isLikelyMetal(m) {
			t.Errorf("isLikelyMetal(%q) = false, want true", m)
		}
	}
	if isLikelyMetal("CA2") {
		t.Errorf("isLikelyMetal should only match exact element codes")
	}
}

func TestSymmetryOrDefault(t *testing.T) {
	if got := symmetryOrDefault(""); got != "1_555" {
		t.Errorf("symmetryOrDefault(\"\") = %q, want 1_555", got)
	}
	if got := symmetryOrDefault("2_655"); got != "2_655" {
		t.Errorf("symmetryOrDefault should pass through a present value, got %q", got)
	}
}

func TestEmptyToDot(t *testing.T) {
	if got := emptyToDot(""); got != "." {
		t.Errorf("emptyToDot(\"\") = %q, want .", got)
	}
	if got := emptyToDot("A"); got != "A" {
		t.Errorf("emptyToDot(A) = %q, want A", got)
	}
}

// ssbondValue builds an SSBOND record's value (columns 7+) by placing
// each field at its documented column, matching reconstructSSBonds'
// column layout exactly rather than relying on hand-counted spacing.
func ssbondValue() string {
	buf := make([]byte, 78-7+1)
	for i := range buf {
		buf[i] = ' '
	}
	place := func(col, width int, s string) {
		start := col - 7
		copy(buf[start:start+width], []byte(s))
	}
	placeRight := func(col, width int, s string) {
		start := col - 7 + (width - len(s))
		copy(buf[start:start+len(s)], []byte(s))
	}
	place(12, 3, "CYS")
	place(16, 1, "A")
	placeRight(18, 4, "10")
	place(26, 3, "CYS")
	place(30, 1, "A")
	placeRight(32, 4, "40")
	place(60, 4, "1555")
	place(67, 4, "1555")
	placeRight(74, 5, "2.03")
	return string(buf)
}

func TestReconstructConnectivitySSBond(t *testing.T) {
	db := newTestDatablockWriter(t)
	eb := newEntityBuild()
	eb.residueMap[chainResKey{chain: 'A', resSeq: 10}] = residueLoc{asymID: "A", labelSeq: 10, isPoly: true}
	eb.residueMap[chainResKey{chain: 'A', resSeq: 40}] = residueLoc{asymID: "A", labelSeq: 40, isPoly: true}

	src := "SSBOND" + ssbondValue() + "\n"
	pp := mustPreParse(t, src)

	reconstructConnectivity(db, pp, eb)
	if db.structConn.RowCount() != 1 {
		t.Fatalf("expected 1 struct_conn row, got %d", db.structConn.RowCount())
	}
	row := db.structConn.Rows()[0]
	if got := db.structConn.GetOrUnknown(row, "conn_type_id"); got != "disulf" {
		t.Errorf("conn_type_id = %q, want disulf", got)
	}
	if got := db.structConn.GetOrUnknown(row, "ptnr1_label_asym_id"); got != "A" {
		t.Errorf("ptnr1_label_asym_id = %q, want A", got)
	}
	if got := db.structConn.GetOrUnknown(row, "pdbx_dist_value"); got != "2.03" {
		t.Errorf("pdbx_dist_value = %q, want 2.03", got)
	}
}
