package cif

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// TypeComparator orders two raw item-value strings the way the
// dictionary's declared primitive type requires. The design notes
// call for replacing the source's hand-rolled red-black tree with "a
// standard ordered map with a custom comparator closure built from
// the validator" rather than hand-rolling a balancing tree in Go;
// this package supplies that comparator type and keyIndex supplies
// the ordered structure (a sorted slice, kept in order by binary
// search insert — the allocator-friendly alternative the same note
// names as acceptable when a B-tree would be overkill for typical
// category sizes).
type TypeComparator func(a, b string) int

// NumericComparator implements the numeric-primitive ordering of
// §4.E: both sides parsed as float64, equal within machine epsilon,
// with non-parsable values sorting greater than parsable ones.
func NumericComparator(a, b string) int {
	af, aerr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	bf, berr := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return 1
	case berr != nil:
		return -1
	case math.Abs(af-bf) <= 0x1p-52: // float64 machine epsilon
		return 0
	case af < bf:
		return -1
	default:
		return 1
	}
}

// CharComparator implements the char/uchar ordering of §4.E:
// case-insensitive ASCII comparison with internal whitespace runs
// collapsed to a single space before comparing, so "A  B", "A B", and
// "A\tB" all compare equal. The empty string sorts before every
// non-empty string.
func CharComparator(a, b string) int {
	na, nb := collapseWhitespace(a), collapseWhitespace(b)
	if na == "" && nb == "" {
		return 0
	}
	if na == "" {
		return -1
	}
	if nb == "" {
		return 1
	}
	return strings.Compare(foldCaser.String(na), foldCaser.String(nb))
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// keyIndex is the per-category ordered index of §4.E, keyed by a
// composite of keyItems compared with the per-item TypeComparator
// (defaulting to CharComparator when typeOf returns nil).
type keyIndex struct {
	cat      *Category
	keyItems []string
	typeOf   func(item string) TypeComparator
	order    []RowIndex // kept sorted by compareRows
}

func newKeyIndex(cat *Category, keyItems []string, typeOf func(item string) TypeComparator) *keyIndex {
	if typeOf == nil {
		typeOf = func(string) TypeComparator { return nil }
	}
	return &keyIndex{cat: cat, keyItems: keyItems, typeOf: typeOf}
}

func (ki *keyIndex) compareRows(a, b RowIndex) int {
	av := ki.cat.keyValues(a, ki.keyItems)
	bv := ki.cat.keyValues(b, ki.keyItems)
	for i, item := range ki.keyItems {
		cmp := ki.typeOf(item)
		if cmp == nil {
			cmp = CharComparator
		}
		if c := cmp(av[i], bv[i]); c != 0 {
			return c
		}
	}
	return 0
}

// insert adds row to the index in sorted position. If a row with an
// equal key tuple already exists, insert does not modify the index and
// returns that row with ok=false, matching the "insertion on duplicate
// key MUST NOT modify the tree" rule.
func (ki *keyIndex) insert(row RowIndex) (existing RowIndex, ok bool) {
	i := sort.Search(len(ki.order), func(i int) bool {
		return ki.compareRows(ki.order[i], row) >= 0
	})
	if i < len(ki.order) && ki.compareRows(ki.order[i], row) == 0 {
		return ki.order[i], false
	}
	ki.order = append(ki.order, noRow)
	copy(ki.order[i+1:], ki.order[i:])
	ki.order[i] = row
	return row, true
}

// find returns the row whose key tuple equals probe's (a row handle
// in the same category, used only for its key values), if any.
func (ki *keyIndex) find(probe RowIndex) (RowIndex, bool) {
	i := sort.Search(len(ki.order), func(i int) bool {
		return ki.compareRows(ki.order[i], probe) >= 0
	})
	if i < len(ki.order) && ki.compareRows(ki.order[i], probe) == 0 {
		return ki.order[i], true
	}
	return noRow, false
}

// findByValues looks up a row by explicit key values rather than an
// existing row's handle, for cascade-erase lookups where the probe
// values came from a different (parent) category.
func (ki *keyIndex) findByValues(values []string) (RowIndex, bool) {
	for _, r := range ki.order {
		if rowMatchesValues(ki.cat, r, ki.keyItems, values, ki.typeOf) {
			return r, true
		}
	}
	return noRow, false
}

func rowMatchesValues(cat *Category, row RowIndex, keyItems []string, values []string, typeOf func(string) TypeComparator) bool {
	for i, item := range keyItems {
		cmp := typeOf(item)
		if cmp == nil {
			cmp = CharComparator
		}
		if cmp(cat.GetOrUnknown(row, item), values[i]) != 0 {
			return false
		}
	}
	return true
}

// erase removes row from the index.
func (ki *keyIndex) erase(row RowIndex) {
	for i, r := range ki.order {
		if r == row {
			ki.order = append(ki.order[:i], ki.order[i+1:]...)
			return
		}
	}
}

// reorder threads the category's row list into ascending key order
// and returns the new (head, tail).
func (ki *keyIndex) reorder() (head, tail RowIndex) {
	if len(ki.order) == 0 {
		return noRow, noRow
	}
	cat := ki.cat
	for i, r := range ki.order {
		if i == 0 {
			cat.rows[r].prev = noRow
		} else {
			cat.rows[r].prev = ki.order[i-1]
		}
		if i == len(ki.order)-1 {
			cat.rows[r].next = noRow
		} else {
			cat.rows[r].next = ki.order[i+1]
		}
	}
	return ki.order[0], ki.order[len(ki.order)-1]
}
