package cif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// categorySnapshot flattens a category into a comparable value for
// go-cmp, since Category itself holds unexported arena/index state
// that isn't meaningful to compare directly.
func categorySnapshot(c *Category) []map[string]string {
	out := make([]map[string]string, 0, c.RowCount())
	for _, r := range c.Rows() {
		row := map[string]string{}
		for _, col := range c.Columns() {
			row[col] = c.GetOrUnknown(r, col)
		}
		out = append(out, row)
	}
	return out
}

func TestParseTinyLoop(t *testing.T) {
	f, err := Parse([]byte("data_x\nloop_\n_a.b\n_a.c\n1 2\n3 4\n#\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Blocks) != 1 || f.Blocks[0].Name != "x" {
		t.Fatalf("got %+v", f.Blocks)
	}
	db := f.Blocks[0]
	cat, ok := db.Category("a")
	if !ok {
		t.Fatal("category a not found")
	}
	rows := cat.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if b, _ := cat.Get(rows[0], "b"); b != "1" {
		t.Errorf("row0.b = %q", b)
	}
	if c, _ := cat.Get(rows[1], "c"); c != "4" {
		t.Errorf("row1.c = %q", c)
	}
}

func TestParseCoalescesTagRows(t *testing.T) {
	f, err := Parse([]byte("data_x\n_entry.id  1ABC\n_entry.method  X-RAY\n_exptl.method  NEUTRON\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	db := f.Blocks[0]
	entry, _ := db.Category("entry")
	if entry.RowCount() != 1 {
		t.Fatalf("expected one coalesced row, got %d", entry.RowCount())
	}
	row := entry.Rows()[0]
	if id, _ := entry.Get(row, "id"); id != "1ABC" {
		t.Errorf("id = %q", id)
	}
	if m, _ := entry.Get(row, "method"); m != "X-RAY" {
		t.Errorf("method = %q", m)
	}
}

func TestRoundTripWriter(t *testing.T) {
	f, err := Parse([]byte("data_x\nloop_\n_a.b\n_a.c\n1 2\n3 4\n#\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, nil); err != nil {
		t.Fatal(err)
	}
	f2, err := Parse(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("re-parse failed: %v\n%s", err, buf.String())
	}
	cat1, _ := f.Blocks[0].Category("a")
	cat2, _ := f2.Blocks[0].Category("a")
	if diff := cmp.Diff(categorySnapshot(cat1), categorySnapshot(cat2)); diff != "" {
		t.Errorf("round trip changed category a (-before +after):\n%s", diff)
	}
}

func TestWriterLineWidth(t *testing.T) {
	f := NewFile()
	db, _ := f.NewDatablock("x")
	cat := db.EnsureCategory("a")
	cat.AppendRow(map[string]string{"b": strings.Repeat("x", 10), "c": "y"})
	cat.AppendRow(map[string]string{"b": strings.Repeat("z", 5), "c": "w"})
	var buf bytes.Buffer
	if err := Write(&buf, f, nil); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > lineWidth {
			t.Errorf("line exceeds %d columns: %q", lineWidth, line)
		}
	}
}

func TestKeyIndexUniqueness(t *testing.T) {
	f := NewFile()
	db, _ := f.NewDatablock("x")
	cat := db.EnsureCategory("atom_site")
	cat.AttachKeyIndex([]string{"id"}, nil)
	_, inserted := cat.AppendRow(map[string]string{"id": "1", "label": "CA"})
	if !inserted {
		t.Fatal("first insert should succeed")
	}
	existing, inserted := cat.AppendRow(map[string]string{"id": "1", "label": "CB"})
	if inserted {
		t.Fatal("duplicate key should not insert")
	}
	if v, _ := cat.Get(existing, "label"); v != "CA" {
		t.Errorf("existing row should be unmodified, got %q", v)
	}
}

func TestNumericComparator(t *testing.T) {
	if NumericComparator("1.0", "1") != 0 {
		t.Error("1.0 should equal 1")
	}
	if NumericComparator("-1e2", "-100") != 0 {
		t.Error("-1e2 should equal -100")
	}
	if NumericComparator("x", "1") <= 0 {
		t.Error("non-numeric should sort greater")
	}
}

func TestCharComparator(t *testing.T) {
	if CharComparator("A  B", "A B") != 0 {
		t.Error("whitespace runs should collapse")
	}
	if CharComparator("", "a") >= 0 {
		t.Error("empty string should sort first")
	}
}

func TestConditionFind(t *testing.T) {
	f, _ := Parse([]byte("data_x\nloop_\n_a.b\n_a.c\n1 2\n3 4\n5 2\n#\n"), nil)
	cat, _ := f.Blocks[0].Category("a")
	rs := Find(cat, KeyEquals("c", "2"))
	if len(rs.Rows) != 2 {
		t.Fatalf("got %d rows", len(rs.Rows))
	}
}
