package cif

import (
	"bufio"
	"io"
	"strings"
)

const lineWidth = 132

// TagOrder optionally overrides the column order a category is
// written in; categories not listed keep their natural column order.
type TagOrder map[string][]string

// WriteOptions configures Write. A nil Options is equivalent to the
// zero value: no tag-order override, no audit_conform synthesis.
type WriteOptions struct {
	TagOrder TagOrder
	// DictionaryName/DictionaryVersion, when non-empty, cause Write to
	// synthesize an audit_conform row naming the dictionary a
	// validator checked this datablock against, per §4.H.
	DictionaryName    string
	DictionaryVersion string
}

// Write serializes f as mmCIF to w. Write never mutates f.
func Write(w io.Writer, f *File, opts *WriteOptions) error {
	bw := bufio.NewWriter(w)
	if opts == nil {
		opts = &WriteOptions{}
	}
	for _, db := range f.Blocks {
		if err := writeDatablock(bw, db, opts); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeDatablock(w *bufio.Writer, db *Datablock, opts *WriteOptions) error {
	if _, err := w.WriteString("data_" + db.Name + "\n#\n"); err != nil {
		return err
	}
	if opts.DictionaryName != "" {
		w.WriteString("_audit_conform.dict_name    " + quoteValue(opts.DictionaryName) + "\n")
		w.WriteString("_audit_conform.dict_version  " + quoteValue(opts.DictionaryVersion) + "\n#\n")
	}
	for _, c := range db.categories {
		if err := writeCategory(w, c, opts.TagOrder[c.Name]); err != nil {
			return err
		}
	}
	return nil
}

func orderedColumns(c *Category, override []string) []string {
	if len(override) == 0 {
		return c.columns
	}
	seen := make(map[string]bool, len(c.columns))
	for _, col := range c.columns {
		seen[col] = true
	}
	out := make([]string, 0, len(c.columns))
	used := make(map[string]bool, len(override))
	for _, col := range override {
		if seen[col] {
			out = append(out, col)
			used[col] = true
		}
	}
	for _, col := range c.columns {
		if !used[col] {
			out = append(out, col)
		}
	}
	return out
}

func writeCategory(w *bufio.Writer, c *Category, tagOrder []string) error {
	rows := c.Rows()
	cols := orderedColumns(c, tagOrder)
	if len(rows) == 0 {
		return nil
	}
	if len(rows) == 1 {
		return writeSingleRow(w, c, cols, rows[0])
	}
	return writeLoop(w, c, cols, rows)
}

func writeSingleRow(w *bufio.Writer, c *Category, cols []string, row RowIndex) error {
	gutter := 0
	for _, col := range cols {
		tag := "_" + c.Name + "." + col
		if len(tag) > gutter {
			gutter = len(tag)
		}
	}
	for _, col := range cols {
		tag := "_" + c.Name + "." + col
		val := formatValue(c.GetOrUnknown(row, col))
		if strings.HasPrefix(val, ";") {
			// A text field's opening ';' must sit in column 1.
			if _, err := w.WriteString(tag + "\n" + val + "\n"); err != nil {
				return err
			}
			continue
		}
		pad := gutter + 2 - len(tag)
		if pad < 1 {
			pad = 1
		}
		if _, err := w.WriteString(tag + strings.Repeat(" ", pad) + val + "\n"); err != nil {
			return err
		}
	}
	_, err := w.WriteString("#\n")
	return err
}

func writeLoop(w *bufio.Writer, c *Category, cols []string, rows []RowIndex) error {
	if _, err := w.WriteString("loop_\n"); err != nil {
		return err
	}
	for _, col := range cols {
		if _, err := w.WriteString("_" + c.Name + "." + col + "\n"); err != nil {
			return err
		}
	}
	widths := make([]int, len(cols))
	for ci, col := range cols {
		width := 2
		for _, r := range rows {
			v := formatValue(c.GetOrUnknown(r, col))
			if !strings.Contains(v, "\n") && len(v) > width {
				width = len(v)
			}
		}
		if width > lineWidth {
			width = lineWidth
		}
		widths[ci] = width
	}
	for _, r := range rows {
		if err := writeLoopRow(w, c, cols, widths, r); err != nil {
			return err
		}
	}
	_, err := w.WriteString("#\n")
	return err
}

func writeLoopRow(w *bufio.Writer, c *Category, cols []string, widths []int, row RowIndex) error {
	var line strings.Builder
	for i, col := range cols {
		v := formatValue(c.GetOrUnknown(row, col))
		if strings.Contains(v, "\n") || strings.HasPrefix(v, ";") {
			if line.Len() > 0 {
				if _, err := w.WriteString(strings.TrimRight(line.String(), " ") + "\n"); err != nil {
					return err
				}
				line.Reset()
			}
			if _, err := w.WriteString(v + "\n"); err != nil {
				return err
			}
			continue
		}
		if line.Len()+len(v)+1 > lineWidth {
			if _, err := w.WriteString(strings.TrimRight(line.String(), " ") + "\n"); err != nil {
				return err
			}
			line.Reset()
		}
		line.WriteString(v)
		if i < len(cols)-1 {
			pad := widths[i] - len(v) + 1
			if pad < 1 {
				pad = 1
			}
			line.WriteString(strings.Repeat(" ", pad))
		}
	}
	if line.Len() > 0 {
		if _, err := w.WriteString(strings.TrimRight(line.String(), " ") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// formatValue chooses quoting for a single value: bare when legal,
// else single- then double-quotes, else a semicolon text field, per
// §4.H.
func formatValue(v string) string {
	if v == "?" || v == "." {
		return v
	}
	if len(v) >= lineWidth || strings.Contains(v, "\n") {
		return textField(v)
	}
	if isValidBareValue(v) {
		return v
	}
	if q, ok := tryQuote(v, '\''); ok {
		return q
	}
	if q, ok := tryQuote(v, '"'); ok {
		return q
	}
	return textField(v)
}

func quoteValue(v string) string { return formatValue(v) }

func isValidBareValue(v string) bool {
	if v == "" {
		return false
	}
	if !isOrdinary(v[0]) {
		return false
	}
	if strings.ContainsAny(v, " \t") {
		return false
	}
	for i := 1; i < len(v); i++ {
		if !isAnyPrint(v[i]) {
			return false
		}
	}
	lower := strings.ToLower(v)
	for _, p := range []string{"data_", "save_", "loop_", "stop_", "global_"} {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

func tryQuote(v string, quote byte) (string, bool) {
	for i := 0; i+1 < len(v); i++ {
		if v[i] == quote && (v[i+1] == ' ' || v[i+1] == '\t') {
			return "", false
		}
	}
	if len(v) > 0 && v[len(v)-1] == quote {
		return "", false
	}
	return string(quote) + v + string(quote), true
}

// textField wraps v as a semicolon text field, escaping any interior
// line that begins with ';' as '\;' so the reader never mistakes it
// for the terminator.
func textField(v string) string {
	lines := strings.Split(v, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, ";") {
			lines[i] = "\\" + l
		}
	}
	return ";" + strings.Join(lines, "\n") + "\n;"
}
