package pdblegacy

import (
	"strings"
	"testing"

	"github.com/pdbredo/cifkit/compound"
	"github.com/pdbredo/cifkit/diag"
)

// fixedLine builds one legacy-PDB record: recType (6 chars) followed by
// a line of the given total length with each field placed left-aligned
// starting at its documented 1-based column. Fields not covered are left
// blank, matching how a minimal, tolerant fixture file is built.
func fixedLine(recType string, totalLen int, fields map[int]string) string {
	buf := make([]byte, totalLen)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, []byte(recType))
	for col, s := range fields {
		copy(buf[col-1:], []byte(s))
	}
	return strings.TrimRight(string(buf), " ")
}

func atomLine(serial int, name, resName string, chain byte, resSeq int, x, y, z float64, element string) string {
	return fixedLine("ATOM  ", 80, map[int]string{
		13: name,
		18: resName,
		22: string(chain),
		23: pad4(resSeq),
		31: pad8f(x),
		39: pad8f(y),
		47: pad8f(z),
		55: "  1.00",
		61: " 20.00",
		77: element,
	})
}

func pad4(n int) string {
	s := itoa(n)
	for len(s) < 4 {
		s = " " + s
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func pad8f(f float64) string {
	s := ftoa3(f)
	for len(s) < 8 {
		s = " " + s
	}
	return s
}

func ftoa3(f float64) string {
	neg := f < 0
	if neg {
		f = -f
	}
	whole := int(f)
	frac := int((f-float64(whole))*1000 + 0.5)
	s := itoa(whole) + "." + padFrac(frac)
	if neg {
		s = "-" + s
	}
	return s
}

func padFrac(n int) string {
	s := itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

func TestReconstructEndToEnd(t *testing.T) {
	var lines []string
	lines = append(lines, fixedLine("HEADER", 80, map[int]string{11: "HYDROLASE", 51: "01-JAN-00", 63: "1ABC"}))
	lines = append(lines, fixedLine("CRYST1", 80, map[int]string{
		7: "50.000", 16: "60.000", 25: "70.000",
		34: "90.00", 41: "90.00", 48: "90.00",
		56: "P 1", 67: "1",
	}))
	lines = append(lines, fixedLine("SEQRES", 80, map[int]string{8: "1", 12: "A", 14: "3", 20: "ALA GLY SER"}))
	lines = append(lines, atomLine(1, "N", "ALA", 'A', 1, 11.1, 13.2, 2.0, "N"))
	lines = append(lines, atomLine(2, "CA", "ALA", 'A', 1, 11.9, 12.0, 2.5, "C"))
	lines = append(lines, atomLine(3, "N", "GLY", 'A', 2, 13.0, 12.5, 3.0, "N"))
	lines = append(lines, atomLine(4, "CA", "GLY", 'A', 2, 13.9, 13.0, 3.5, "C"))
	lines = append(lines, atomLine(5, "N", "SER", 'A', 3, 15.0, 13.5, 4.0, "N"))
	lines = append(lines, atomLine(6, "CA", "SER", 'A', 3, 15.9, 14.0, 4.5, "C"))
	lines = append(lines, "END")
	src := strings.Join(lines, "\n") + "\n"

	pp, err := PreParse(strings.NewReader(src), diag.New())
	if err != nil {
		t.Fatalf("PreParse: %v", err)
	}

	lookup := compound.NewStaticLookup(map[string]compound.Info{
		"ALA": {ID: "ALA", Type: "L-peptide linking"},
		"GLY": {ID: "GLY", Type: "peptide linking"},
		"SER": {ID: "SER", Type: "L-peptide linking"},
	})

	file, err := Reconstruct(pp, lookup, diag.New())
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	block, ok := file.Datablock("1ABC")
	if !ok {
		t.Fatalf("expected datablock named 1ABC")
	}
	entry, ok := block.Category("entry")
	if !ok || entry.RowCount() != 1 {
		t.Fatalf("expected 1 entry row")
	}

	atomSite, ok := block.Category("atom_site")
	if !ok {
		t.Fatalf("atom_site category missing")
	}
	if got := atomSite.RowCount(); got != 6 {
		t.Errorf("atom_site row count = %d, want 6", got)
	}

	entity, ok := block.Category("entity")
	if !ok || entity.RowCount() != 1 {
		t.Fatalf("expected 1 entity row (single SEQRES chain), got found=%v", ok)
	}

	cell, ok := block.Category("cell")
	if !ok {
		t.Fatalf("cell category missing")
	}
	row := cell.Rows()[0]
	if got := cell.GetOrUnknown(row, "length_a"); got != "50.000" {
		t.Errorf("cell.length_a = %q, want 50.000", got)
	}
}

func TestDatablockNameFallsBackToUnknown(t *testing.T) {
	pp := &PreParsed{}
	if got := datablockName(pp); got != "unknown" {
		t.Errorf("datablockName with no HEADER = %q, want unknown", got)
	}
}
