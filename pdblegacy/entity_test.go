package pdblegacy

import (
	"testing"

	"github.com/pdbredo/cifkit/cif"
	"github.com/pdbredo/cifkit/diag"
)

func newTestDatablockWriter(t *testing.T) *datablockWriter {
	t.Helper()
	file := cif.NewFile()
	block, err := file.NewDatablock("test")
	if err != nil {
		t.Fatalf("NewDatablock: %v", err)
	}
	return newDatablockWriter(block)
}

func TestAsymAllocatorBase26Sequence(t *testing.T) {
	a := &asymAllocator{}
	want := []string{"A", "B", "C"}
	for i, w := range want {
		if got := a.next_(); got != w {
			t.Errorf("next_ #%d = %q, want %q", i, got, w)
		}
	}
}

func TestAsymAllocatorRollsOverPastZ(t *testing.T) {
	a := &asymAllocator{next: 26}
	if got := a.next_(); got != "BA" {
		t.Errorf("26th allocation = %q, want BA", got)
	}
}

func TestBuildEntitiesSharedSeqResShareOneEntity(t *testing.T) {
	db := newTestDatablockWriter(t)
	chains := []*Chain{
		{AuthChainID: 'A', SeqRes: []string{"ALA", "GLY"}, IsPolymer: true},
		{AuthChainID: 'B', SeqRes: []string{"ALA", "GLY"}, IsPolymer: true},
		{AuthChainID: 'C', SeqRes: []string{"CYS", "CYS", "CYS"}, IsPolymer: true},
	}
	eb := buildEntities(db, chains, nil, diag.New())

	if eb.chainEntity['A'] != eb.chainEntity['B'] {
		t.Errorf("chains A and B should share an entity, got %d and %d", eb.chainEntity['A'], eb.chainEntity['B'])
	}
	if eb.chainEntity['A'] == eb.chainEntity['C'] {
		t.Errorf("chain C has a distinct sequence and should not share chain A's entity")
	}
	if db.entity.RowCount() != 2 {
		t.Errorf("expected 2 entity rows, got %d", db.entity.RowCount())
	}
	if db.structAsym.RowCount() != 3 {
		t.Errorf("expected 3 struct_asym rows (one per chain), got %d", db.structAsym.RowCount())
	}
}

func TestBuildEntitiesAssignsDistinctAsymIDs(t *testing.T) {
	db := newTestDatablockWriter(t)
	chains := []*Chain{
		{AuthChainID: 'A', SeqRes: []string{"ALA"}, IsPolymer: true},
		{AuthChainID: 'B', SeqRes: []string{"GLY"}, IsPolymer: true},
	}
	eb := buildEntities(db, chains, nil, diag.New())
	if eb.chainAsym['A'] == eb.chainAsym['B'] {
		t.Errorf("distinct chains should receive distinct asym ids, both got %q", eb.chainAsym['A'])
	}
}

func TestMapResidueFallsBackToNoICode(t *testing.T) {
	eb := newEntityBuild()
	eb.residueMap[chainResKey{chain: 'A', resSeq: 5}] = residueLoc{asymID: "A", labelSeq: 5, isPoly: true}

	asymID, labelSeq, ok := eb.mapResidue('A', 5, "X")
	if !ok {
		t.Fatalf("mapResidue should fall back to the no-iCode entry")
	}
	if asymID != "A" || labelSeq != 5 {
		t.Errorf("mapResidue = (%q, %d), want (A, 5)", asymID, labelSeq)
	}
}

func TestMapResidueUnknownReturnsFalse(t *testing.T) {
	eb := newEntityBuild()
	if _, _, ok := eb.mapResidue('Z', 1, ""); ok {
		t.Errorf("mapResidue on an unregistered residue should return ok=false")
	}
}

func TestParseCompoundsMolIDAndChains(t *testing.T) {
	src := "COMPND    MOL_ID: 1;\n" +
		"COMPND   2 MOLECULE: LYSOZYME;\n" +
		"COMPND   3 CHAIN: A, B;\n"
	pp := mustPreParse(t, src)
	compounds := ParseCompounds(pp)
	if len(compounds) != 1 {
		t.Fatalf("got %d compounds, want 1", len(compounds))
	}
	c := compounds[0]
	if c.MolID != 1 {
		t.Errorf("MolID = %d, want 1", c.MolID)
	}
	if c.Info["MOLECULE"] != "LYSOZYME" {
		t.Errorf("MOLECULE = %q, want LYSOZYME", c.Info["MOLECULE"])
	}
	if !c.Chains['A'] || !c.Chains['B'] {
		t.Errorf("expected chains A and B, got %v", c.Chains)
	}
}

func TestSrcMethod(t *testing.T) {
	synthetic := &PDBCompound{Source: map[string]string{"SYNTHETIC": "YES"}}
	if got := srcMethod(synthetic); got != "syn" {
		t.Errorf("synthetic src_method = %q, want syn", got)
	}
	engineered := &PDBCompound{Source: map[string]string{"EXPRESSION_SYSTEM": "ESCHERICHIA COLI"}}
	if got := srcMethod(engineered); got != "man" {
		t.Errorf("engineered src_method = %q, want man", got)
	}
	natural := &PDBCompound{Source: map[string]string{}}
	if got := srcMethod(natural); got != "nat" {
		t.Errorf("natural src_method = %q, want nat", got)
	}
}
