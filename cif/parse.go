package cif

import "github.com/pdbredo/cifkit/diag"

// fileBuilder is the default Handler: it builds a File, coalescing
// consecutive ProduceItem calls against the same category into one
// logical row, per §4.C's tag-coalescing rule.
type fileBuilder struct {
	file *File
	cur  *Datablock

	lastCatName string
	lastRow     RowIndex
	lastCat     *Category
	havePending bool
}

func (b *fileBuilder) ProduceDatablock(name string) error {
	db, err := b.file.NewDatablock(name)
	if err != nil {
		return err
	}
	b.cur = db
	b.havePending = false
	return nil
}

func (b *fileBuilder) ProduceItem(category, item, value string, vk ValueKind) error {
	if b.cur == nil {
		return newParseError(0, "item %s.%s outside any datablock", category, item)
	}
	if !b.havePending || b.lastCatName != category {
		c := b.cur.EnsureCategory(category)
		row, _ := c.AppendRow(nil)
		b.lastCat = c
		b.lastRow = row
		b.lastCatName = category
		b.havePending = true
	}
	b.lastCat.Set(b.lastRow, item, value)
	return nil
}

func (b *fileBuilder) ProduceLoopRow(category string, items []string, values []string, vks []ValueKind) error {
	if b.cur == nil {
		return newParseError(0, "loop_ row for %s outside any datablock", category)
	}
	c := b.cur.EnsureCategory(category)
	vals := make(map[string]string, len(items))
	for i, it := range items {
		vals[it] = values[i]
	}
	c.AppendRow(vals)
	b.havePending = false
	return nil
}

func (b *fileBuilder) ProduceSave(name string) error {
	return newParseError(0, "unexpected save_%s outside a dictionary parse", name)
}

// Parse reads a complete mmCIF file from src and returns its data
// model. diagCtx may be nil (a default Context is used).
func Parse(src []byte, diagCtx *diag.Context) (*File, error) {
	if diagCtx == nil {
		diagCtx = diag.New()
	}
	lex := NewLexer(src)
	f := NewFile()
	b := &fileBuilder{file: f}
	d := NewDriver(lex, b)
	if err := d.Run(); err != nil {
		return nil, err
	}
	diagCtx.Progress("cif: parsed %d datablock(s)", len(src), len(f.Blocks))
	return f, nil
}
