package compound

import "testing"

func TestSQLiteFactoryCachesHitsAndMisses(t *testing.T) {
	backing := NewStaticLookup(map[string]Info{
		"ALA": {ID: "ALA", Name: "ALANINE", Type: "L-peptide linking", Formula: "C3 H7 N O2", Weight: 89.09},
	})

	f, err := NewSQLiteFactory(":memory:", backing)
	if err != nil {
		t.Fatalf("NewSQLiteFactory: %v", err)
	}
	defer f.Close()

	info, ok := f.LookupCompound("ALA")
	if !ok || info.Name != "ALANINE" {
		t.Fatalf("LookupCompound(ALA) = %+v, %v", info, ok)
	}

	// Delete from the backing store; the cached hit must still resolve.
	delete(backing.Entries, "ALA")
	info2, ok2 := f.LookupCompound("ALA")
	if !ok2 || info2.Name != "ALANINE" {
		t.Fatalf("cached LookupCompound(ALA) = %+v, %v, want cached hit", info2, ok2)
	}

	if _, ok := f.LookupCompound("ZZZ"); ok {
		t.Fatalf("LookupCompound(ZZZ) should miss")
	}
	// A cached miss must also stick, even if backing would now resolve it.
	backing.Entries["ZZZ"] = Info{ID: "ZZZ", Name: "LATE ARRIVAL"}
	if _, ok := f.LookupCompound("ZZZ"); ok {
		t.Fatalf("cached miss for ZZZ should still miss")
	}
}

func TestStaticLookupFallsBackToStandardSets(t *testing.T) {
	s := NewStaticLookup(nil)
	if !s.IsKnownPeptide("GLY") {
		t.Error("GLY should be a known peptide by the standard fallback set")
	}
	if !s.IsKnownBase("DA") {
		t.Error("DA should be a known base by the standard fallback set")
	}
	if s.IsKnownPeptide("NAG") {
		t.Error("NAG should not be a known peptide")
	}
}
