package pdblegacy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdbredo/cifkit/compound"
	"github.com/pdbredo/cifkit/diag"
)

type atomRecord struct {
	asymID   string
	entityID string
	seqID    int
	isResseq bool
	atom     Record
	anisou   *Record
	model    int
}

// reconstructCoordinates implements §4.J's coordinate step: ATOM/HETATM
// (with an optional trailing ANISOU) become atom_site/
// atom_site_anisotrop rows, stable-sorted by (asym_id, seq_id) and with
// alternate conformers reordered to keep the first-seen atom name's
// alt-loc first, per the reference's rLess/aLess comparators. group_PDB
// is corrected from HETATM to ATOM (or vice versa) using
// compound.Lookup so a standard residue is never left as a heterogen
// merely because the file authors used HETATM loosely.
func reconstructCoordinates(db *datablockWriter, pp *PreParsed, eb *entityBuild, observed []observedResidue, lookup compound.Lookup, diagCtx *diag.Context) {
	chainEntityIDs := map[byte]string{}
	for chain, eid := range eb.chainEntity {
		chainEntityIDs[chain] = strconv.Itoa(eid)
	}

	var atoms []atomRecord
	model := 0
	for i := 0; i < len(pp.Records); i++ {
		r := pp.Records[i]
		switch r.Type {
		case "MODEL ":
			model, _ = vI(r.Value, 11, 14)
		case "ATOM  ", "HETATM":
			chainID := vC(r.Value, 22)
			resSeq, _ := vI(r.Value, 23, 26)
			iCode := vS(r.Value, 27, 27)
			asymID, seqID, isResseq := eb.mapResidue(chainID, resSeq, iCode)
			if asymID == "" {
				diagCtx.Warnf("pdblegacy: dropping atom at line %d, chain %q resSeq %d has no asym mapping", r.Line, string(chainID), resSeq)
				continue
			}
			rec := atomRecord{asymID: asymID, entityID: chainEntityIDs[chainID], seqID: seqID, isResseq: isResseq, atom: r, model: model}
			if i+1 < len(pp.Records) && pp.Records[i+1].Type == "ANISOU" {
				an := pp.Records[i+1]
				rec.anisou = &an
				i++
			}
			atoms = append(atoms, rec)
		}
	}

	sort.SliceStable(atoms, func(i, j int) bool {
		if atoms[i].asymID != atoms[j].asymID {
			return atoms[i].asymID < atoms[j].asymID
		}
		return atoms[i].seqID < atoms[j].seqID
	})

	reorderAlternates(atoms)

	atomID := 0
	for _, a := range atoms {
		atomID++
		v := a.atom.Value
		name := vS(v, 13, 16)
		altLoc := vC(v, 17)
		resName := vS(v, 18, 20)
		iCode := vS(v, 27, 27)
		x := vFString(v, 31, 38)
		y := vFString(v, 39, 46)
		z := vFString(v, 47, 54)
		occ := vFString(v, 55, 60)
		temp := vFString(v, 61, 66)
		element := strings.ToUpper(vS(v, 77, 78))
		charge := pdbCharge(vS(v, 79, 80))

		groupPDB := "ATOM"
		if a.atom.Type == "HETATM" {
			groupPDB = "HETATM"
		}
		groupPDB = correctGroupPDB(groupPDB, resName, lookup)

		labelSeq := "."
		if a.isResseq && a.seqID > 0 {
			labelSeq = strconv.Itoa(a.seqID)
		}
		insCode := ""
		if iCode != "" {
			insCode = iCode
		}

		row := map[string]string{
			"group_PDB":           groupPDB,
			"id":                  strconv.Itoa(atomID),
			"type_symbol":         element,
			"label_atom_id":       name,
			"label_alt_id":        altOrDot(altLoc),
			"label_comp_id":       resName,
			"label_asym_id":       a.asymID,
			"label_entity_id":     a.entityID,
			"label_seq_id":        labelSeq,
			"pdbx_PDB_ins_code":   insCode,
			"Cartn_x":             x,
			"Cartn_y":             y,
			"Cartn_z":             z,
			"occupancy":           occ,
			"B_iso_or_equiv":      temp,
			"pdbx_formal_charge":  charge,
			"auth_seq_id":         vS(v, 23, 26),
			"auth_comp_id":        resName,
			"auth_asym_id":        vSRaw(v, 22, 22),
			"auth_atom_id":        name,
			"pdbx_PDB_model_num":  modelNumOrDefault(a.model),
		}
		db.atomSite.AppendRow(row)

		if a.anisou != nil {
			av := a.anisou.Value
			db.atomSiteAnisotrop.AppendRow(map[string]string{
				"id":             strconv.Itoa(atomID),
				"type_symbol":    element,
				"U[1][1]":        anisouTerm(av, 29, 35),
				"U[2][2]":        anisouTerm(av, 36, 42),
				"U[3][3]":        anisouTerm(av, 43, 49),
				"U[1][2]":        anisouTerm(av, 50, 56),
				"U[1][3]":        anisouTerm(av, 57, 63),
				"U[2][3]":        anisouTerm(av, 64, 70),
			})
		}
	}
}

// reorderAlternates mirrors the reference implementation's
// post-sort pass: within a run of atoms sharing the same (asym, seq)
// ordering position, alternate conformers are grouped by atom name so
// all of a given alt-loc's copies of "CA", "CB", etc. stay adjacent.
func reorderAlternates(atoms []atomRecord) {
	for i := 0; i+1 < len(atoms); i++ {
		altLoc := vC(atoms[i].atom.Value, 17)
		if altLoc == ' ' {
			continue
		}
		j := i
		for j < len(atoms) && atoms[j].asymID == atoms[i].asymID && atoms[j].seqID == atoms[i].seqID {
			j++
		}
		run := atoms[i:j]
		firstIndex := map[string]int{}
		order := 0
		for _, a := range run {
			name := vS(a.atom.Value, 13, 16)
			if _, ok := firstIndex[name]; !ok {
				order++
				firstIndex[name] = order
			}
		}
		sort.SliceStable(run, func(a, b int) bool {
			na := vS(run[a].atom.Value, 13, 16)
			nb := vS(run[b].atom.Value, 13, 16)
			if firstIndex[na] != firstIndex[nb] {
				return firstIndex[na] < firstIndex[nb]
			}
			return vC(run[a].atom.Value, 17) < vC(run[b].atom.Value, 17)
		})
		i = j - 1
	}
}

// correctGroupPDB implements the reference's "Changing atom from HETATM
// to ATOM"/"... to HETATM" correction: UNK and any standard
// peptide/base residue is always group_PDB=ATOM, everything else is
// HETATM, regardless of what the file itself said.
func correctGroupPDB(current, resName string, lookup compound.Lookup) string {
	if resName == "UNK" || lookup.IsKnownPeptide(resName) || lookup.IsKnownBase(resName) {
		return "ATOM"
	}
	return "HETATM"
}

func altOrDot(altLoc byte) string {
	if altLoc == ' ' || altLoc == 0 {
		return "."
	}
	return string(altLoc)
}

func modelNumOrDefault(m int) string {
	if m == 0 {
		return "1"
	}
	return strconv.Itoa(m)
}

// pdbCharge converts the legacy "2+"/"1-"-style charge field into the
// signed mmCIF form ("2", "-1"), per the reference's pdb2cifCharge.
func pdbCharge(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "?"
	}
	if len(raw) != 2 {
		return "?"
	}
	digit, sign := raw[0], raw[1]
	if digit < '0' || digit > '9' {
		return "?"
	}
	if sign == '-' {
		return "-" + string(digit)
	}
	return string(digit)
}

func vFString(value string, first, last int) string {
	s := vS(value, first, last)
	if s == "" {
		return "?"
	}
	return s
}

func anisouTerm(value string, first, last int) string {
	n, ok := vI(value, first, last)
	if !ok {
		return "?"
	}
	return strconv.FormatFloat(float64(n)/10000.0, 'f', 4, 64)
}
