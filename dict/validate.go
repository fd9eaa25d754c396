package dict

import (
	"github.com/pdbredo/cifkit/cif"
	"github.com/pdbredo/cifkit/diag"
)

// ValidateDatablock checks every category dict knows about against
// the mandatory-field, type, and enumeration rules of §4.F. In strict
// mode the first failure returns a *ValidationError; otherwise every
// failure is logged via diagCtx and ValidateDatablock always returns
// nil, matching the "strict: throw; else log" policy of §7.
func (v *Validator) ValidateDatablock(db *cif.Datablock, diagCtx *diag.Context) error {
	for _, c := range db.Categories() {
		cv, ok := v.Category(c.Name)
		if !ok {
			continue // no dictionary entry: nothing to check
		}
		if err := v.validateCategory(c, cv, diagCtx); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateCategory(c *cif.Category, cv *CategoryValidator, diagCtx *diag.Context) error {
	for _, row := range c.Rows() {
		for local, iv := range cv.Items {
			val, present := c.Get(row, local)
			if cv.Mandatory[local] && (!present || val == "" || val == "?") {
				err := &ValidationError{Item: iv.Tag, Reason: "mandatory item missing"}
				if v.Strict {
					return err
				}
				diagCtx.Warnf("%s", err)
				continue
			}
			if !present {
				continue
			}
			if err := iv.Validate(val); err != nil {
				if v.Strict {
					return err
				}
				diagCtx.Warnf("%s", err)
			}
		}
	}
	return nil
}

// CheckReferentialIntegrity re-walks every item with a Parent link and
// logs (never throws) any value whose parent row cannot be found, per
// §7's "parent key missing for child value: Logged only" policy.
func (v *Validator) CheckReferentialIntegrity(db *cif.Datablock, diagCtx *diag.Context) {
	for _, c := range db.Categories() {
		cv, ok := v.Category(c.Name)
		if !ok {
			continue
		}
		for local, iv := range cv.Items {
			if iv.Parent == "" {
				continue
			}
			parentCatName, parentItem, ok := splitTag(iv.Parent)
			if !ok {
				continue
			}
			parentCat, ok := db.Category(parentCatName)
			if !ok {
				continue
			}
			for _, row := range c.Rows() {
				val, present := c.Get(row, local)
				if !present || val == "" || val == "." || val == "?" {
					continue
				}
				if len(cif.Find(parentCat, cif.KeyEquals(parentItem, val)).Rows) == 0 {
					diagCtx.Warnf("dict: %s.%s=%q has no matching %s.%s", c.Name, local, val, parentCatName, parentItem)
				}
			}
		}
	}
}

// EraseCascade erases row from category catName and, for every item
// in that row which is a parent foreign key (ForeignKeyChildren
// non-empty), erases every row in each child category whose matching
// item equals the erased row's key value — applied recursively, per
// §3's cascade-erase invariant. Per that invariant's ordering
// requirement, the row is removed from the key index (inside
// Category.EraseRow) before any reparenting of list pointers, and
// before children are visited.
func (v *Validator) EraseCascade(db *cif.Datablock, catName string, row cif.RowIndex) {
	cat, ok := db.Category(catName)
	if !ok {
		return
	}
	cv, ok := v.Category(catName)
	if !ok {
		cat.EraseRow(row)
		return
	}

	type cascade struct {
		value    string
		children []string
	}
	var pending []cascade
	for local, iv := range cv.Items {
		if len(iv.ForeignKeyChildren) == 0 {
			continue
		}
		val, present := cat.Get(row, local)
		if !present {
			continue
		}
		pending = append(pending, cascade{value: val, children: iv.ForeignKeyChildren})
	}

	cat.EraseRow(row)

	for _, p := range pending {
		for _, childTag := range p.children {
			childCatName, childItem, ok := splitTag(childTag)
			if !ok {
				continue
			}
			childCat, ok := db.Category(childCatName)
			if !ok {
				continue
			}
			matches := cif.Find(childCat, cif.KeyEquals(childItem, p.value))
			for _, r := range matches.Rows {
				v.EraseCascade(db, childCatName, r)
			}
		}
	}
}
