// Package cif implements the mmCIF lexer, grammar driver, in-memory
// data model, indexed category store, query layer, and writer (§4.A
// through §4.H of the design). It has no dependency on the legacy-PDB
// or dictionary-validator packages; they are built on top of it.
package cif

import (
	"fmt"
	"strings"
)

// RowIndex is a handle to a row within its owning Category's arena.
// It borrows from the Category and must not be used after the
// category (or the row itself) has been erased.
type RowIndex int

const noRow RowIndex = -1

// itemValue is one named value within a row. A missing value is
// represented by the absence of an entry for that column, which
// read-side accessors treat identically to an explicit "?".
type itemValue struct {
	col   int
	value string
}

type rowNode struct {
	items []itemValue // sparse: only columns actually set
	prev  RowIndex
	next  RowIndex
	live  bool
}

// Category is a named table: an ordered set of columns and a linked
// list of rows, arena-backed so that row handles are plain indices
// rather than pointers.
type Category struct {
	Name    string
	columns []string
	colIdx  map[string]int

	rows     []rowNode
	head     RowIndex
	tail     RowIndex
	freeList []RowIndex

	keyIndex *keyIndex // nil unless a dictionary key list is attached
}

// Datablock is the `data_<name>` container: an ordered, case-
// insensitively-unique set of categories.
type Datablock struct {
	Name       string
	categories []*Category
	catIdx     map[string]int
}

// File owns an ordered list of datablocks. Datablock names must be
// unique within a file, case-insensitively.
type File struct {
	Blocks []*Datablock
	names  map[string]int
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{names: map[string]int{}}
}

// NewDatablock appends and returns a new, empty datablock named name.
// It returns an error if a datablock with that name (case-insensitive)
// already exists.
func (f *File) NewDatablock(name string) (*Datablock, error) {
	key := strings.ToLower(name)
	if _, ok := f.names[key]; ok {
		return nil, fmt.Errorf("cif: duplicate datablock name %q", name)
	}
	db := &Datablock{Name: name, catIdx: map[string]int{}}
	f.names[key] = len(f.Blocks)
	f.Blocks = append(f.Blocks, db)
	return db, nil
}

// Datablock looks up a datablock by name, case-insensitively.
func (f *File) Datablock(name string) (*Datablock, bool) {
	i, ok := f.names[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return f.Blocks[i], true
}

// Category looks up a category by name, case-insensitively, creating
// none.
func (d *Datablock) Category(name string) (*Category, bool) {
	i, ok := d.catIdx[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return d.categories[i], true
}

// Categories returns the datablock's categories in insertion order.
func (d *Datablock) Categories() []*Category { return d.categories }

// EnsureCategory returns the named category, creating an empty one in
// insertion-order position if it does not already exist.
func (d *Datablock) EnsureCategory(name string) *Category {
	if c, ok := d.Category(name); ok {
		return c
	}
	c := &Category{Name: name, colIdx: map[string]int{}, head: noRow, tail: noRow}
	d.catIdx[strings.ToLower(name)] = len(d.categories)
	d.categories = append(d.categories, c)
	return c
}

// Columns returns the category's column names in declaration order.
func (c *Category) Columns() []string { return c.columns }

func (c *Category) ensureColumn(name string) int {
	key := strings.ToLower(name)
	if i, ok := c.colIdx[key]; ok {
		return i
	}
	i := len(c.columns)
	c.columns = append(c.columns, name)
	c.colIdx[key] = i
	return i
}

func (c *Category) columnIndex(name string) (int, bool) {
	i, ok := c.colIdx[strings.ToLower(name)]
	return i, ok
}

// AttachKeyIndex installs the red-black-tree-equivalent ordered index
// described in §4.E, built from keyItems and a comparator driven by
// typeOf (nil means "char" comparator for every key). Existing rows
// are indexed immediately in list order; when two of them share a key,
// the first stays in the index and the later one is left out of it
// (it stays in the row list, and nothing is reported), matching the
// "insertion on duplicate key must not modify the tree" rule for
// emplace.
func (c *Category) AttachKeyIndex(keyItems []string, typeOf func(item string) TypeComparator) {
	ki := newKeyIndex(c, keyItems, typeOf)
	for r := c.head; r != noRow; r = c.rows[r].next {
		ki.insert(r)
	}
	c.keyIndex = ki
}

// newRowNode allocates a new, empty row slot (reusing a freed one if
// any) and returns its handle. It does not link the row into the row
// list or the key index; AppendRow does that.
func (c *Category) newRowNode() RowIndex {
	var idx RowIndex
	if n := len(c.freeList); n > 0 {
		idx = c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		c.rows[idx] = rowNode{prev: noRow, next: noRow, live: true}
	} else {
		idx = RowIndex(len(c.rows))
		c.rows = append(c.rows, rowNode{prev: noRow, next: noRow, live: true})
	}
	return idx
}

func (c *Category) linkTail(idx RowIndex) {
	if c.tail == noRow {
		c.head, c.tail = idx, idx
		return
	}
	c.rows[c.tail].next = idx
	c.rows[idx].prev = c.tail
	c.tail = idx
}

// AppendRow creates a row with the given column=value pairs (columns
// created on demand) and links it at the tail in insertion order. If
// the category has a key index and the new row's key tuple duplicates
// an existing row, AppendRow does not insert it and returns the
// existing row's handle with inserted=false, per the emplace contract
// of §4.E/§3.
func (c *Category) AppendRow(values map[string]string) (row RowIndex, inserted bool) {
	idx := c.newRowNode()
	for name, v := range values {
		col := c.ensureColumn(name)
		c.rows[idx].items = append(c.rows[idx].items, itemValue{col: col, value: v})
	}
	if c.keyIndex != nil {
		if existing, ok := c.keyIndex.insert(idx); !ok {
			c.freeList = append(c.freeList, idx)
			c.rows[idx] = rowNode{}
			return existing, false
		}
	}
	c.linkTail(idx)
	return idx, true
}

// Get returns the value stored for column name in row, and whether it
// was present. An absent value is semantically "?" per §3, but Get
// reports presence explicitly so callers can distinguish a stored "?"
// from a genuinely missing item-value.
func (c *Category) Get(row RowIndex, name string) (string, bool) {
	col, ok := c.columnIndex(name)
	if !ok {
		return "", false
	}
	for _, iv := range c.rows[row].items {
		if iv.col == col {
			return iv.value, true
		}
	}
	return "", false
}

// GetOrUnknown is Get, defaulting to "?" when the item-value is
// absent, matching the "missing item-value is semantically equivalent
// to ?" invariant of §3.
func (c *Category) GetOrUnknown(row RowIndex, name string) string {
	v, ok := c.Get(row, name)
	if !ok {
		return "?"
	}
	return v
}

// Set assigns name=value in row, creating the column if necessary and
// overwriting any existing value for that column.
func (c *Category) Set(row RowIndex, name, value string) {
	col := c.ensureColumn(name)
	items := c.rows[row].items
	for i := range items {
		if items[i].col == col {
			items[i].value = value
			return
		}
	}
	c.rows[row].items = append(items, itemValue{col: col, value: value})
}

// RowCount returns the number of live rows.
func (c *Category) RowCount() int {
	n := 0
	for r := c.head; r != noRow; r = c.rows[r].next {
		n++
	}
	return n
}

// Rows returns every live row handle in current iteration order
// (insertion order unless ReorderByIndex has been called).
func (c *Category) Rows() []RowIndex {
	out := make([]RowIndex, 0, c.RowCount())
	for r := c.head; r != noRow; r = c.rows[r].next {
		out = append(out, r)
	}
	return out
}

// ReorderByIndex re-threads the row list into key order using the
// attached key index, per §4.E's reorder() operation. It is a no-op
// if no key index is attached.
func (c *Category) ReorderByIndex() {
	if c.keyIndex == nil {
		return
	}
	head, tail := c.keyIndex.reorder()
	c.head, c.tail = head, tail
}

// EraseRow removes row from the category: it is unlinked from the row
// list, removed from the key index (if any) before reparenting list
// pointers per §3's ordering requirement, and its slot is recycled.
// EraseRow itself does not cascade; cascade-erase across parent/child
// links is implemented by the dict package, which knows the
// dictionary's parent/child graph.
func (c *Category) EraseRow(row RowIndex) {
	if !c.rows[row].live {
		return
	}
	if c.keyIndex != nil {
		c.keyIndex.erase(row)
	}
	n := c.rows[row]
	if n.prev != noRow {
		c.rows[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != noRow {
		c.rows[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	c.rows[row] = rowNode{}
	c.freeList = append(c.freeList, row)
}

// keyValues returns a row's current key-tuple snapshot for key-index
// comparisons: the values of items, in order, as currently stored (or
// "?" if absent).
func (c *Category) keyValues(row RowIndex, items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = c.GetOrUnknown(row, it)
	}
	return out
}
