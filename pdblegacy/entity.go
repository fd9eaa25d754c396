package pdblegacy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdbredo/cifkit/diag"
)

// PDBCompound is one `MOL_ID`-keyed molecule description assembled from
// COMPND and SOURCE, per §4.J. A molecule with no explicit `MOL_ID:`
// header is treated as id=1, matching the reference implementation's
// "dumb, stripped files" fallback.
type PDBCompound struct {
	MolID  int
	Title  string
	Chains map[byte]bool
	Info   map[string]string
	Source map[string]string
}

// ParseCompounds parses the flattened COMPND (and matching SOURCE)
// records into one PDBCompound per MOL_ID, per §4.J's "COMPND is parsed
// by a sub-parser that scans TOKEN: value; pairs across continuation
// lines".
func ParseCompounds(pp *PreParsed) []*PDBCompound {
	var compounds []*PDBCompound
	byID := map[int]*PDBCompound{}

	getOrCreate := func(id int) *PDBCompound {
		if c, ok := byID[id]; ok {
			return c
		}
		c := &PDBCompound{MolID: id, Chains: map[byte]bool{}, Info: map[string]string{}, Source: map[string]string{}}
		byID[id] = c
		compounds = append(compounds, c)
		return c
	}

	if rec, ok := pp.First("COMPND"); ok {
		value := strings.TrimSpace(strings.ReplaceAll(rec.Value, "\n", " "))
		if !strings.Contains(value, ":") {
			getOrCreate(1).Info["MOLECULE"] = value
		} else {
			for _, kv := range specifications(value) {
				key, val := kv.key, kv.val
				if !strings.EqualFold(key, "MOL_ID") && len(compounds) == 0 {
					break
				}
				switch {
				case strings.EqualFold(key, "MOL_ID"):
					id, _ := strconv.Atoi(val)
					getOrCreate(id)
				case strings.EqualFold(key, "CHAIN"):
					cur := compounds[len(compounds)-1]
					for _, c := range strings.Split(val, ",") {
						c = strings.TrimSpace(c)
						if c != "" {
							cur.Chains[c[0]] = true
						}
					}
				default:
					compounds[len(compounds)-1].Info[strings.ToUpper(key)] = val
				}
			}
		}
	}

	if rec, ok := pp.First("SOURCE"); ok {
		value := strings.TrimSpace(strings.ReplaceAll(rec.Value, "\n", " "))
		var cur *PDBCompound
		for _, kv := range specifications(value) {
			key, val := kv.key, kv.val
			if strings.EqualFold(key, "MOL_ID") {
				id, _ := strconv.Atoi(val)
				cur = byID[id]
				continue
			}
			if cur == nil {
				continue
			}
			cur.Source[strings.ToUpper(key)] = val
		}
	}

	return compounds
}

// specKV is one TOKEN: value pair yielded by specifications.
type specKV struct {
	key, val string
}

// specifications splits a `TOKEN: value; TOKEN: value; ...` field into
// its pairs, tolerating embedded whitespace around the delimiters per
// §4.J. This is a simplified rendering of the reference's character-by-
// character SpecificationListParser state machine sufficient for the
// well-formed fields this pipeline consumes.
func specifications(text string) []specKV {
	var out []specKV
	for _, chunk := range strings.Split(text, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		i := strings.Index(chunk, ":")
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(chunk[:i])
		val := strings.TrimSpace(chunk[i+1:])
		if key == "" || val == "" {
			continue
		}
		out = append(out, specKV{key: key, val: val})
	}
	return out
}

// srcMethod chooses src_method per §4.J from a compound's SOURCE fields:
// "syn" for a synthetic construct, "man" for an engineered/expressed
// construct, "nat" otherwise.
func srcMethod(c *PDBCompound) string {
	if strings.EqualFold(c.Source["SYNTHETIC"], "YES") {
		return "syn"
	}
	if _, ok := c.Source["EXPRESSION_SYSTEM"]; ok {
		return "man"
	}
	return "nat"
}

// Chain is one per-author-chain residue stream gathered while walking
// SEQRES/ATOM/HETATM, prior to entity/asym construction.
type Chain struct {
	AuthChainID byte
	SeqRes      []string // monomer ids in SEQRES declaration order
	IsPolymer   bool
}

// asymAllocator assigns synthetic asym-ids in base-26 sequence starting
// at "A", per §4.J ("Assign synthetic asym-ids in base-26 sequence
// starting at A").
type asymAllocator struct{ next int }

func (a *asymAllocator) next_() string {
	n := a.next
	a.next++
	var b []byte
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(b)
}

// entityBuild holds the derived entity/asym state threaded through
// reconstruction: the triple-map of §4.J ("(chainID, resSeq, iCode) ->
// (asymID, label_seq, is_poly)") plus which entity each author chain
// belongs to.
type entityBuild struct {
	asym       *asymAllocator
	chainAsym  map[byte]string            // author chain -> asym id (polymer chains)
	chainEntity map[byte]int              // author chain -> entity id
	entitySeq  map[int][]string           // entity id -> SEQRES monomer ids
	residueMap map[chainResKey]residueLoc // (chain, resSeq, iCode) -> placement
	nextEntity int
}

type chainResKey struct {
	chain  byte
	resSeq int
	iCode  string
}

type residueLoc struct {
	asymID   string
	labelSeq int
	isPoly   bool
}

func newEntityBuild() *entityBuild {
	return &entityBuild{
		asym:        &asymAllocator{},
		chainAsym:   map[byte]string{},
		chainEntity: map[byte]int{},
		entitySeq:   map[int][]string{},
		residueMap:  map[chainResKey]residueLoc{},
	}
}

// mapResidue resolves an author (chain, resSeq, iCode) triple to its
// label_asym_id/label_seq_id placement, per §4.J's residue-placement
// triple-map. ok is false when the residue was never registered by
// buildEntities (e.g. a HELIX/SHEET record referencing a chain this
// pipeline dropped).
func (eb *entityBuild) mapResidue(chain byte, resSeq int, iCode string) (asymID string, labelSeq int, ok bool) {
	loc, found := eb.residueMap[chainResKey{chain: chain, resSeq: resSeq, iCode: iCode}]
	if !found {
		loc, found = eb.residueMap[chainResKey{chain: chain, resSeq: resSeq}]
	}
	if !found {
		return "", 0, false
	}
	return loc.asymID, loc.labelSeq, true
}

// buildEntities implements the bulk of §4.J's "Entity construction":
// chains whose SEQRES monomer sequence is identical share one entity
// (a faithful, simplified reading of "for each compound, choose
// src_method..." — distinct SEQRES content is what actually
// distinguishes entities on write, the compound/MOL_ID split drives
// src_method and descriptive fields layered on afterward).
func buildEntities(db *datablockWriter, chains []*Chain, compounds []*PDBCompound, diagCtx *diag.Context) *entityBuild {
	eb := newEntityBuild()

	seqKey := func(seq []string) string { return strings.Join(seq, "\x1f") }
	seqToEntity := map[string]int{}

	sorted := append([]*Chain{}, chains...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AuthChainID < sorted[j].AuthChainID })

	for _, ch := range sorted {
		key := seqKey(ch.SeqRes)
		eid, ok := seqToEntity[key]
		if !ok {
			eb.nextEntity++
			eid = eb.nextEntity
			seqToEntity[key] = eid
			eb.entitySeq[eid] = ch.SeqRes
		}
		eb.chainEntity[ch.AuthChainID] = eid

		asymID := eb.asym.next_()
		eb.chainAsym[ch.AuthChainID] = asymID

		for i, mon := range ch.SeqRes {
			eb.residueMap[chainResKey{chain: ch.AuthChainID, resSeq: i + 1}] = residueLoc{asymID: asymID, labelSeq: i + 1, isPoly: ch.IsPolymer}
			_ = mon
		}
	}

	entityIDs := make([]int, 0, len(eb.entitySeq))
	for eid := range eb.entitySeq {
		entityIDs = append(entityIDs, eid)
	}
	sort.Ints(entityIDs)

	for _, eid := range entityIDs {
		seq := eb.entitySeq[eid]
		entityType := "polymer"
		if len(seq) == 0 {
			entityType = "non-polymer"
		}
		entRow, _ := db.entity.AppendRow(map[string]string{
			"id":   strconv.Itoa(eid),
			"type": entityType,
		})
		_ = entRow
		db.entityPoly.AppendRow(map[string]string{"entity_id": strconv.Itoa(eid)})
		for i, mon := range seq {
			db.entityPolySeq.AppendRow(map[string]string{
				"entity_id": strconv.Itoa(eid),
				"num":       strconv.Itoa(i + 1),
				"mon_id":    mon,
			})
		}
	}

	for _, ch := range sorted {
		asymID := eb.chainAsym[ch.AuthChainID]
		eid := eb.chainEntity[ch.AuthChainID]
		db.structAsym.AppendRow(map[string]string{
			"id":        asymID,
			"entity_id": strconv.Itoa(eid),
		})
		for i := range ch.SeqRes {
			db.pdbxPolySeqScheme.AppendRow(map[string]string{
				"asym_id": asymID,
				"entity_id": strconv.Itoa(eid),
				"seq_id":  strconv.Itoa(i + 1),
				"mon_id":  ch.SeqRes[i],
			})
		}
	}

	for _, c := range compounds {
		diagCtx.Debugf("pdblegacy: compound MOL_ID=%d src_method=%s chains=%v", c.MolID, srcMethod(c), c.Chains)
	}

	return eb
}
