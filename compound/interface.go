// Package compound isolates the external collaborator spec.md §1 places
// out of scope for the CORE: element/atom lookup tables and
// chemical-component dictionaries. This package never encodes chemical
// knowledge itself — it only defines the small interface the
// reconstruction pipeline needs (pdblegacy.Reconstruct takes one) and one
// concrete, cache-shaped implementation in front of a caller-supplied
// Lookup.
package compound

// Atom is one atom of a chemical component as returned by a Lookup.
type Atom struct {
	Name    string
	Element string
	Charge  int
}

// Bond is one bond between two named atoms of the same component.
type Bond struct {
	Atom1, Atom2 string
	Order        string // "sing", "doub", "trip", "arom", "delo"
	Aromatic     bool
}

// Info is the result of a successful lookup_compound(id) call: the
// chemical-component dictionary record spec.md §1 treats as an external
// collaborator's responsibility, never derived locally.
type Info struct {
	ID      string
	Name    string
	Type    string // e.g. "L-peptide linking", "non-polymer", "D-saccharide"
	Formula string
	Weight  float64
	Atoms   []Atom
	Bonds   []Bond
}

// Lookup is the out-of-scope external collaborator: `lookup_compound(id)
// -> {atoms, bonds, name, type, formula, weight}` and
// `is_known_peptide/base(id) -> bool`, verbatim from spec.md §1. The
// reconstruction pipeline never constructs chemical knowledge itself; it
// only calls through this interface.
type Lookup interface {
	// LookupCompound resolves id (a three-to-five-letter chemical
	// component code) to its dictionary record. ok is false when id is
	// not known to the backing dictionary.
	LookupCompound(id string) (Info, bool)

	// IsKnownPeptide reports whether id is a standard or modified amino
	// acid residue, consulted by the reconstruction pipeline's
	// group_PDB correction and mon_nstd_flag computation.
	IsKnownPeptide(id string) bool

	// IsKnownBase reports whether id is a standard or modified nucleic
	// acid base, consulted the same way IsKnownPeptide is.
	IsKnownBase(id string) bool
}

// StandardPeptides is the 20 standard amino-acid three-letter codes, used
// by StaticLookup and by callers that want a baseline set without a full
// CCD-backed Lookup.
var StandardPeptides = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
}

// StandardBases is the standard nucleic-acid one/two-letter codes (both
// DNA and RNA residue names as they appear in legacy PDB SEQRES/ATOM
// records).
var StandardBases = map[string]bool{
	"A": true, "C": true, "G": true, "T": true, "U": true,
	"DA": true, "DC": true, "DG": true, "DT": true, "DU": true,
	"I": true, "DI": true,
}

// StaticLookup is a minimal Lookup backed by an in-memory map, useful in
// tests and as a fallback when no chemical-component dictionary is
// configured. Unknown ids fall back to the standard peptide/base sets
// for IsKnownPeptide/IsKnownBase even when LookupCompound itself misses.
type StaticLookup struct {
	Entries map[string]Info
}

// NewStaticLookup returns a StaticLookup seeded with entries.
func NewStaticLookup(entries map[string]Info) *StaticLookup {
	if entries == nil {
		entries = map[string]Info{}
	}
	return &StaticLookup{Entries: entries}
}

func (s *StaticLookup) LookupCompound(id string) (Info, bool) {
	info, ok := s.Entries[id]
	return info, ok
}

func (s *StaticLookup) IsKnownPeptide(id string) bool {
	if info, ok := s.Entries[id]; ok {
		return isPeptideType(info.Type)
	}
	return StandardPeptides[id]
}

func (s *StaticLookup) IsKnownBase(id string) bool {
	if info, ok := s.Entries[id]; ok {
		return isBaseType(info.Type)
	}
	return StandardBases[id]
}

func isPeptideType(t string) bool {
	switch t {
	case "peptide linking", "L-peptide linking", "D-peptide linking",
		"L-peptide NH3 amino terminus", "L-peptide COOH carboxy terminus",
		"peptide-like":
		return true
	default:
		return false
	}
}

func isBaseType(t string) bool {
	switch t {
	case "DNA linking", "RNA linking", "L-DNA linking", "L-RNA linking",
		"DNA OH 5 prime terminus", "DNA OH 3 prime terminus",
		"RNA OH 5 prime terminus", "RNA OH 3 prime terminus":
		return true
	default:
		return false
	}
}
