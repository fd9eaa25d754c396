package pdblegacy

import (
	"testing"

	"github.com/pdbredo/cifkit/compound"
	"github.com/pdbredo/cifkit/diag"
)

func TestReconstructChemCompKnownResidue(t *testing.T) {
	db := newTestDatablockWriter(t)
	chains := []*Chain{{AuthChainID: 'A', SeqRes: []string{"ALA", "ALA", "GLY"}, IsPolymer: true}}
	lookup := compound.NewStaticLookup(map[string]compound.Info{
		"ALA": {ID: "ALA", Name: "ALANINE", Type: "L-peptide linking", Formula: "C3 H7 N O2"},
		"GLY": {ID: "GLY", Name: "GLYCINE", Type: "peptide linking", Formula: "C2 H5 N O2"},
	})
	reconstructChemComp(db, chains, lookup, ModResMap{}, diag.New())

	if db.chemComp.RowCount() != 2 {
		t.Fatalf("expected 2 distinct chem_comp rows, got %d", db.chemComp.RowCount())
	}
	rows := db.chemComp.Rows()
	if got := db.chemComp.GetOrUnknown(rows[0], "id"); got != "ALA" {
		t.Errorf("first chem_comp id = %q, want ALA", got)
	}
	if got := db.chemComp.GetOrUnknown(rows[0], "mon_nstd_flag"); got != "y" {
		t.Errorf("ALA mon_nstd_flag = %q, want y", got)
	}
}

func TestReconstructChemCompModifiedResidue(t *testing.T) {
	db := newTestDatablockWriter(t)
	chains := []*Chain{{AuthChainID: 'A', SeqRes: []string{"MSE"}, IsPolymer: true}}
	lookup := compound.NewStaticLookup(map[string]compound.Info{
		"MSE": {ID: "MSE", Name: "SELENOMETHIONINE", Type: "L-peptide linking"},
	})
	modres := ModResMap{"MSE": "MET"}
	reconstructChemComp(db, chains, lookup, modres, diag.New())

	row := db.chemComp.Rows()[0]
	if got := db.chemComp.GetOrUnknown(row, "mon_nstd_flag"); got != "n" {
		t.Errorf("MSE mon_nstd_flag = %q, want n", got)
	}
}

func TestReconstructChemCompUnknownFallsBack(t *testing.T) {
	db := newTestDatablockWriter(t)
	chains := []*Chain{{AuthChainID: 'A', SeqRes: []string{"XYZ"}, IsPolymer: false}}
	lookup := compound.NewStaticLookup(nil)
	reconstructChemComp(db, chains, lookup, ModResMap{}, diag.New())

	row := db.chemComp.Rows()[0]
	if got := db.chemComp.GetOrUnknown(row, "type"); got != "non-polymer" {
		t.Errorf("unknown component type = %q, want non-polymer", got)
	}
}

func TestClassifyFallbackType(t *testing.T) {
	lookup := compound.NewStaticLookup(nil)
	if got := classifyFallbackType("ALA", lookup); got != "L-peptide linking" {
		t.Errorf("classifyFallbackType(ALA) = %q, want L-peptide linking", got)
	}
	if got := classifyFallbackType("HOH", lookup); got != "non-polymer" {
		t.Errorf("classifyFallbackType(HOH) = %q, want non-polymer", got)
	}
}
