package dict

import (
	"regexp"
	"strings"

	"github.com/pdbredo/cifkit/cif"
	"github.com/pdbredo/cifkit/diag"
)

// dictBuilder is the Handler the dictionary parser installs in place
// of cif's default file builder: it overrides ProduceSave to treat
// save-frames as per-item/per-category mini-datablocks, reusing
// cif.Datablock/Category as the storage for each frame's rows rather
// than inventing a parallel structure.
type dictBuilder struct {
	outer *cif.File
	cur   *cif.Datablock

	saves      *cif.File
	activeSave *cif.Datablock

	lastCatName string
	lastRow     cif.RowIndex
	lastCat     *cif.Category
	havePending bool
}

func newDictBuilder() *dictBuilder {
	return &dictBuilder{outer: cif.NewFile(), saves: cif.NewFile()}
}

func (b *dictBuilder) target() *cif.Datablock {
	if b.activeSave != nil {
		return b.activeSave
	}
	return b.cur
}

func (b *dictBuilder) ProduceDatablock(name string) error {
	db, err := b.outer.NewDatablock(name)
	if err != nil {
		return err
	}
	b.cur = db
	b.havePending = false
	return nil
}

func (b *dictBuilder) ProduceItem(category, item, value string, vk cif.ValueKind) error {
	target := b.target()
	if target == nil {
		return &ParseStateError{"item outside any datablock or save frame"}
	}
	if !b.havePending || b.lastCatName != category || b.lastCat == nil {
		c := target.EnsureCategory(category)
		row, _ := c.AppendRow(nil)
		b.lastCat, b.lastRow, b.lastCatName, b.havePending = c, row, category, true
	}
	b.lastCat.Set(b.lastRow, item, value)
	return nil
}

func (b *dictBuilder) ProduceLoopRow(category string, items []string, values []string, vks []cif.ValueKind) error {
	target := b.target()
	if target == nil {
		return &ParseStateError{"loop_ outside any datablock or save frame"}
	}
	c := target.EnsureCategory(category)
	vals := make(map[string]string, len(items))
	for i, it := range items {
		vals[it] = values[i]
	}
	c.AppendRow(vals)
	b.havePending = false
	return nil
}

func (b *dictBuilder) ProduceSave(name string) error {
	if name != "" {
		if b.activeSave != nil {
			return &ParseStateError{"nested save_ frames are not supported"}
		}
		db, err := b.saves.NewDatablock(name)
		if err != nil {
			return err
		}
		b.activeSave = db
		b.havePending = false
		return nil
	}
	if b.activeSave == nil {
		return &ParseStateError{"unmatched save_ terminator"}
	}
	b.activeSave = nil
	b.havePending = false
	return nil
}

// ParseStateError signals a dictionary file whose save-frame nesting
// is malformed.
type ParseStateError struct{ Msg string }

func (e *ParseStateError) Error() string { return "dict: " + e.Msg }

// Parse reads a complete dictionary file (itself mmCIF-shaped) and
// builds a Validator from its save-frames, per §4.F/§6.3.
func Parse(src []byte, diagCtx *diag.Context) (*Validator, error) {
	if diagCtx == nil {
		diagCtx = diag.New()
	}
	lex := cif.NewLexer(src)
	b := newDictBuilder()
	d := cif.NewDriver(lex, b)
	if err := d.Run(); err != nil {
		return nil, err
	}
	return buildValidator(b.cur, b.saves, diagCtx)
}

func buildValidator(root *cif.Datablock, saves *cif.File, diagCtx *diag.Context) (*Validator, error) {
	v := NewValidator()
	if root == nil {
		return v, nil
	}

	if dictCat, ok := root.Category("dictionary"); ok {
		if rows := dictCat.Rows(); len(rows) > 0 {
			v.DictName = dictCat.GetOrUnknown(rows[0], "title")
			v.DictVersion = dictCat.GetOrUnknown(rows[0], "version")
		}
	}

	if typeCat, ok := root.Category("item_type_list"); ok {
		for _, row := range typeCat.Rows() {
			code := typeCat.GetOrUnknown(row, "code")
			prim := typeCat.GetOrUnknown(row, "primitive_code")
			construct := typeCat.GetOrUnknown(row, "construct")
			re, err := regexp.Compile("^(?:" + construct + ")$")
			if err != nil {
				diagCtx.Warnf("dict: type %s has unusable construct regex: %v", code, err)
				re = nil
			}
			v.Types[strings.ToLower(code)] = &TypeValidator{
				Name:      code,
				Primitive: parsePrimitive(prim),
				Regex:     re,
			}
		}
	}

	for _, frame := range saves.Blocks {
		if strings.HasPrefix(frame.Name, "_") {
			parseItemFrame(v, frame, diagCtx)
		} else {
			parseCategoryFrame(v, frame)
		}
	}

	linkParentChild(v, root)

	for _, cv := range v.Categories {
		for local, iv := range cv.Items {
			if iv.Type == nil {
				diagCtx.Warnf("dict: item %s.%s has no declared type", cv.Name, local)
			}
		}
	}

	return v, nil
}

func parsePrimitive(code string) Primitive {
	switch strings.ToLower(code) {
	case "numb":
		return PrimNumb
	case "uchar":
		return PrimUChar
	default:
		return PrimChar
	}
}

func parseItemFrame(v *Validator, frame *cif.Datablock, diagCtx *diag.Context) {
	itemCat, ok := frame.Category("item")
	if !ok {
		return
	}
	rows := itemCat.Rows()
	if len(rows) == 0 {
		return
	}
	row := rows[0]
	tag := strings.TrimPrefix(itemCat.GetOrUnknown(row, "name"), "_")
	categoryID := itemCat.GetOrUnknown(row, "category_id")
	mandatory := strings.EqualFold(itemCat.GetOrUnknown(row, "mandatory_code"), "yes")

	iv := &ItemValidator{Tag: tag, Mandatory: mandatory, Enumeration: map[string]bool{}}

	if typeCat, ok := frame.Category("item_type"); ok {
		if r := typeCat.Rows(); len(r) > 0 {
			code := typeCat.GetOrUnknown(r[0], "code")
			if t, ok := v.Types[strings.ToLower(code)]; ok {
				iv.Type = t
			} else {
				diagCtx.Warnf("dict: item %s references unknown type %s", tag, code)
			}
		}
	}
	if enumCat, ok := frame.Category("item_enumeration"); ok {
		for _, r := range enumCat.Rows() {
			iv.Enumeration[enumCat.GetOrUnknown(r, "value")] = true
		}
	}

	cv := v.ensureCategory(categoryID)
	local := iv.LocalName()
	cv.Items[strings.ToLower(local)] = iv
	if mandatory {
		cv.Mandatory[strings.ToLower(local)] = true
	}
}

func parseCategoryFrame(v *Validator, frame *cif.Datablock) {
	catCat, ok := frame.Category("category")
	if !ok {
		return
	}
	rows := catCat.Rows()
	if len(rows) == 0 {
		return
	}
	id := catCat.GetOrUnknown(rows[0], "id")
	cv := v.ensureCategory(id)

	if keyCat, ok := frame.Category("category_key"); ok {
		for _, r := range keyCat.Rows() {
			name := strings.TrimPrefix(keyCat.GetOrUnknown(r, "name"), "_")
			if i := strings.Index(name, "."); i >= 0 {
				name = name[i+1:]
			}
			cv.KeyItems = append(cv.KeyItems, name)
		}
	}
	if groupCat, ok := frame.Category("category_group"); ok {
		for _, r := range groupCat.Rows() {
			cv.Groups = append(cv.Groups, groupCat.GetOrUnknown(r, "id"))
		}
	}
}

// linkParentChild walks _item_linked (or its bulk form
// pdbx_item_linked_group_list) and wires each child item's Parent, the
// parent's Children, and — when the child's category key is exactly
// that one item — the parent's ForeignKeyChildren, which is the
// directional link cascade-erase follows.
func linkParentChild(v *Validator, root *cif.Datablock) {
	for _, catName := range []string{"item_linked", "pdbx_item_linked_group_list"} {
		lc, ok := root.Category(catName)
		if !ok {
			continue
		}
		for _, r := range lc.Rows() {
			child := strings.TrimPrefix(lc.GetOrUnknown(r, "child_name"), "_")
			parent := strings.TrimPrefix(lc.GetOrUnknown(r, "parent_name"), "_")
			if child == "" || parent == "" {
				continue
			}
			wireParentChild(v, parent, child)
		}
	}
}

func wireParentChild(v *Validator, parentTag, childTag string) {
	parentCatName, parentItem, ok1 := splitTag(parentTag)
	childCatName, childItem, ok2 := splitTag(childTag)
	if !ok1 || !ok2 {
		return
	}
	parentCV := v.ensureCategory(parentCatName)
	childCV := v.ensureCategory(childCatName)

	parentIV, ok := parentCV.Items[strings.ToLower(parentItem)]
	if !ok {
		parentIV = &ItemValidator{Tag: parentTag, Enumeration: map[string]bool{}}
		parentCV.Items[strings.ToLower(parentItem)] = parentIV
	}
	childIV, ok := childCV.Items[strings.ToLower(childItem)]
	if !ok {
		childIV = &ItemValidator{Tag: childTag, Enumeration: map[string]bool{}}
		childCV.Items[strings.ToLower(childItem)] = childIV
	}

	childIV.Parent = parentTag
	parentIV.Children = append(parentIV.Children, childTag)

	if len(childCV.KeyItems) == 1 && strings.EqualFold(childCV.KeyItems[0], childItem) {
		parentIV.ForeignKeyChildren = append(parentIV.ForeignKeyChildren, childTag)
	}
}

func splitTag(tag string) (category, item string, ok bool) {
	if i := strings.Index(tag, "."); i >= 0 {
		return tag[:i], tag[i+1:], true
	}
	return "", "", false
}
