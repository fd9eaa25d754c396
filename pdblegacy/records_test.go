package pdblegacy

import (
	"strings"
	"testing"

	"github.com/pdbredo/cifkit/diag"
)

func mustPreParse(t *testing.T, src string) *PreParsed {
	t.Helper()
	pp, err := PreParse(strings.NewReader(src), diag.New())
	if err != nil {
		t.Fatalf("PreParse: %v", err)
	}
	return pp
}

func TestPreParseJoinsTitleContinuations(t *testing.T) {
	src := "TITLE     CRYSTAL STRUCTURE OF SOMETHING REALLY LONG THAT RUNS\n" +
		"TITLE    2  PAST EIGHTY COLUMNS ON THE FIRST LINE\n"
	pp := mustPreParse(t, src)
	rec, ok := pp.First("TITLE ")
	if !ok {
		t.Fatalf("TITLE record not found")
	}
	if !strings.Contains(rec.Value, "PAST EIGHTY COLUMNS") {
		t.Errorf("continuation not joined, got %q", rec.Value)
	}
}

func TestPreParseDropsUnsupportedRecord(t *testing.T) {
	src := "FAKEREC SOMETHING\nHEADER    HYDROLASE                               01-JAN-00   1ABC\n"
	pp := mustPreParse(t, src)
	found := false
	for _, d := range pp.Dropped {
		if d == "FAKEREC" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected FAKEREC to be recorded as dropped, got %v", pp.Dropped)
	}
	if _, ok := pp.First("HEADER"); !ok {
		t.Errorf("HEADER record should still be parsed")
	}
}

func TestPreParseRemark200NoneBecomesDot(t *testing.T) {
	src := "REMARK 200  PH                        : NONE\n"
	pp := mustPreParse(t, src)
	if got := pp.Remark200["PH"]; got != "." {
		t.Errorf("Remark200[PH] = %q, want %q", got, ".")
	}
}

func TestPreParseRemark200NullDropped(t *testing.T) {
	src := "REMARK 200  TEMPERATURE           (KELVIN) : NULL\n"
	pp := mustPreParse(t, src)
	if _, ok := pp.Remark200["TEMPERATURE (KELVIN)"]; ok {
		t.Errorf("NULL value should be dropped, not stored")
	}
}

func TestRemarksFiltersByNumber(t *testing.T) {
	src := "REMARK   3 PROGRAM     : REFMAC 5.8\n" +
		"REMARK 200  PH : 7.0\n"
	pp := mustPreParse(t, src)
	rows := pp.Remarks(3)
	if len(rows) != 1 {
		t.Fatalf("Remarks(3) returned %d rows, want 1", len(rows))
	}
}

func TestLooksLikeLegacyPDB(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"HEADER    HYDROLASE\n", true},
		{"data_1ABC\n", false},
		{"  \nHEADER    X\n", true},
		{"", false},
	}
	for _, tc := range cases {
		if got := LooksLikeLegacyPDB([]byte(tc.src)); got != tc.want {
			t.Errorf("LooksLikeLegacyPDB(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestPreParseLinkRecordTooShortIsSkipped(t *testing.T) {
	src := "LINK  short\n"
	pp := mustPreParse(t, src)
	if len(pp.Links) != 0 {
		t.Errorf("expected no links parsed from a too-short LINK value, got %+v", pp.Links)
	}
}
