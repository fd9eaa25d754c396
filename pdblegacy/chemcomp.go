package pdblegacy

import (
	"strings"

	"github.com/pdbredo/cifkit/compound"
	"github.com/pdbredo/cifkit/diag"
)

// reconstructChemComp emits one `chem_comp` row per distinct monomer id
// seen across every chain's SEQRES, resolving name/formula/type through
// the compound.Lookup collaborator and mon_nstd_flag from ModResMap,
// per §4.J's "chem_comp rows are emitted for every distinct monomer,
// resolved via the external chemical-component dictionary".
func reconstructChemComp(db *datablockWriter, chains []*Chain, lookup compound.Lookup, modres ModResMap, diagCtx *diag.Context) {
	seen := map[string]bool{}
	for _, ch := range chains {
		for _, mon := range ch.SeqRes {
			if seen[mon] {
				continue
			}
			seen[mon] = true

			info, found := lookup.LookupCompound(mon)
			row := map[string]string{"id": mon}
			if found {
				row["name"] = info.Name
				row["formula"] = info.Formula
				row["type"] = info.Type
			} else {
				diagCtx.Warnf("pdblegacy: unknown chemical component %q, emitting minimal chem_comp row", mon)
				row["type"] = classifyFallbackType(mon, lookup)
			}

			if _, isMod := modres[mon]; isMod {
				row["mon_nstd_flag"] = "n"
			} else if lookup.IsKnownPeptide(mon) || lookup.IsKnownBase(mon) {
				row["mon_nstd_flag"] = "y"
			} else {
				row["mon_nstd_flag"] = "."
			}

			db.chemComp.AppendRow(row)
		}
	}
}

func classifyFallbackType(mon string, lookup compound.Lookup) string {
	switch {
	case lookup.IsKnownPeptide(mon):
		return "L-peptide linking"
	case lookup.IsKnownBase(mon):
		return "RNA linking"
	case strings.EqualFold(mon, "HOH"):
		return "non-polymer"
	default:
		return "non-polymer"
	}
}
