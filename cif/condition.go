package cif

import "regexp"

// Condition is the boxed predicate of §4.G: a composable test over a
// (category, row) pair. It replaces the source's condition_impl class
// hierarchy with a closure-backed tagged value, per the "no
// inheritance" redesign note — each constructor below returns the
// same Condition type with a different eval closure and Str text.
type Condition struct {
	eval func(c *Category, row RowIndex) bool
	str  string
}

// Test evaluates the condition against a row of c.
func (cond Condition) Test(c *Category, row RowIndex) bool { return cond.eval(c, row) }

// String renders the condition for diagnostics.
func (cond Condition) String() string { return cond.str }

// KeyEquals builds `key(tag) == v`.
func KeyEquals(tag, v string) Condition {
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return c.GetOrUnknown(row, tag) == v },
		str:  tag + " == " + v,
	}
}

// KeyNotEquals builds `key(tag) != v`.
func KeyNotEquals(tag, v string) Condition {
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return c.GetOrUnknown(row, tag) != v },
		str:  tag + " != " + v,
	}
}

// KeyCompare builds a condition from an arbitrary comparison closure,
// used to implement `<`, `<=`, `>`, `>=` against a typed comparator
// (numeric or char) rather than lexical string order.
func KeyCompare(tag string, cmp TypeComparator, op string, v string) Condition {
	var test func(n int) bool
	switch op {
	case "<":
		test = func(n int) bool { return n < 0 }
	case "<=":
		test = func(n int) bool { return n <= 0 }
	case ">":
		test = func(n int) bool { return n > 0 }
	case ">=":
		test = func(n int) bool { return n >= 0 }
	default:
		test = func(int) bool { return false }
	}
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return test(cmp(c.GetOrUnknown(row, tag), v)) },
		str:  tag + " " + op + " " + v,
	}
}

// KeyMatch builds `key(tag) ~= regex`.
func KeyMatch(tag, pattern string) Condition {
	re := regexp.MustCompile(pattern)
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return re.MatchString(c.GetOrUnknown(row, tag)) },
		str:  tag + " ~= " + pattern,
	}
}

// AnyEquals builds `any == v`: true if some column in the row equals
// v.
func AnyEquals(v string) Condition {
	return Condition{
		eval: func(c *Category, row RowIndex) bool {
			for _, name := range c.columns {
				if c.GetOrUnknown(row, name) == v {
					return true
				}
			}
			return false
		},
		str: "any == " + v,
	}
}

// AnyMatch builds `any ~= regex`.
func AnyMatch(pattern string) Condition {
	re := regexp.MustCompile(pattern)
	return Condition{
		eval: func(c *Category, row RowIndex) bool {
			for _, name := range c.columns {
				if re.MatchString(c.GetOrUnknown(row, name)) {
					return true
				}
			}
			return false
		},
		str: "any ~= " + pattern,
	}
}

// And builds a logical AND of two conditions.
func And(a, b Condition) Condition {
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return a.eval(c, row) && b.eval(c, row) },
		str:  "(" + a.str + " && " + b.str + ")",
	}
}

// Or builds a logical OR of two conditions.
func Or(a, b Condition) Condition {
	return Condition{
		eval: func(c *Category, row RowIndex) bool { return a.eval(c, row) || b.eval(c, row) },
		str:  "(" + a.str + " || " + b.str + ")",
	}
}

// RowSet is a vector of row handles borrowed from the category that
// produced them via Find. It is invalidated by any mutation that
// removes a row it holds.
type RowSet struct {
	Cat  *Category
	Rows []RowIndex
}

// Find returns every row of c matching cond, preserving category
// order.
func Find(c *Category, cond Condition) RowSet {
	var out []RowIndex
	for _, r := range c.Rows() {
		if cond.Test(c, r) {
			out = append(out, r)
		}
	}
	return RowSet{Cat: c, Rows: out}
}

// OrderBy stable-sorts the rowset using the key comparator built from
// items (CharComparator for each, unless typeOf supplies another).
func (rs RowSet) OrderBy(items []string, typeOf func(item string) TypeComparator) RowSet {
	if typeOf == nil {
		typeOf = func(string) TypeComparator { return nil }
	}
	out := make([]RowIndex, len(rs.Rows))
	copy(out, rs.Rows)
	stableSortRows(rs.Cat, out, items, typeOf)
	return RowSet{Cat: rs.Cat, Rows: out}
}

func stableSortRows(cat *Category, rows []RowIndex, items []string, typeOf func(string) TypeComparator) {
	// Insertion sort: stable, and category row counts in this domain
	// are small enough that O(n^2) is not a concern; a key index
	// reorder (§4.E) is used instead for anything large.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0; j-- {
			if compareByItems(cat, rows[j-1], rows[j], items, typeOf) <= 0 {
				break
			}
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
}

func compareByItems(cat *Category, a, b RowIndex, items []string, typeOf func(string) TypeComparator) int {
	for _, item := range items {
		cmp := typeOf(item)
		if cmp == nil {
			cmp = CharComparator
		}
		if c := cmp(cat.GetOrUnknown(a, item), cat.GetOrUnknown(b, item)); c != 0 {
			return c
		}
	}
	return 0
}
