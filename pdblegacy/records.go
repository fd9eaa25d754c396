// Package pdblegacy implements the legacy fixed-column record pre-parser
// (§4.I), the multi-pass semantic reconstruction pipeline (§4.J), the
// SEQRES/ATOM chain aligner (§4.K), and the remark-3 refinement-program
// dispatcher (§4.L, in the pdblegacy/remark3 subpackage). It depends on
// cif, dict, and compound but the reverse is never true.
package pdblegacy

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdbredo/cifkit/diag"
)

// Record is one logical legacy-PDB record after continuation-joining:
// a 6-character type name and the flattened value starting at column 7.
// Value[0] is column 7 of the original line. The vS/vC/vI/vF helpers
// take the line's 1-based column numbers; direct substrLen offsets (as
// in parseLink) are 0-based against Value.
type Record struct {
	Line  int
	Type  string
	Value string
}

// supportedRecords gates acceptance of a record type the same way the
// reference implementation's kSupportedRecords set does; anything else
// is dropped with a diagnostic (spec.md §4.I, §7's "Unsupported legacy
// record: Logged; record dropped").
var supportedRecords = map[string]bool{
	"HEADER": true, "OBSLTE": true, "TITLE ": true, "SPLIT ": true,
	"CAVEAT": true, "COMPND": true, "SOURCE": true,
	"KEYWDS": true, "EXPDTA": true, "NUMMDL": true, "MDLTYP": true,
	"AUTHOR": true, "REVDAT": true, "SPRSDE": true,
	"JRNL  ": true, "REMARK": true, "DBREF ": true, "DBREF1": true,
	"DBREF2": true, "SEQADV": true, "SEQRES": true,
	"MODRES": true, "HET   ": true, "HETNAM": true, "HETSYN": true,
	"FORMUL": true, "HELIX ": true, "SHEET ": true,
	"SSBOND": true, "LINK  ": true, "CISPEP": true, "SITE  ": true,
	"CRYST1": true, "ORIGX1": true, "SCALE1": true,
	"MTRIX1": true, "ORIGX2": true, "SCALE2": true, "MTRIX2": true,
	"ORIGX3": true, "SCALE3": true, "MTRIX3": true,
	"MODEL ": true, "ATOM  ": true, "ANISOU": true, "TER   ": true,
	"HETATM": true, "ENDMDL": true, "CONECT": true,
	"MASTER": true, "END   ": true,
	"LINKR ": true,
}

// PreParsed is the result of PreParse: the flattened record stream plus
// the eagerly-extracted structures §4.I calls out by name.
type PreParsed struct {
	Records   []Record
	Remark200 map[string]string
	Remark240 map[string]string
	Links     []Link
	Dropped   []string // distinct dropped type names, in first-seen order
}

// Link is the typed LINK/LINKR record of §4.I, parsed eagerly so that
// reconstructLinks (connectivity.go) reads the atom pairs without
// re-scanning text.
type Link struct {
	Line             int
	Name1, AltLoc1   string
	ResName1, Chain1 string
	ResSeq1          int
	ICode1           string
	Name2, AltLoc2   string
	ResName2, Chain2 string
	ResSeq2          int
	ICode2           string
	Sym1, Sym2       string
	Distance         float64
	HasDistance      bool
}

// substrLen mimics C++ std::string::substr(start, length): out-of-range
// start yields "", and a length running past the end of s is clamped.
func substrLen(s string, start, length int) string {
	if start < 0 || start >= len(s) {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// substrFrom mimics substr(start): everything from start to the end, or
// "" if start is past the end of s.
func substrFrom(s string, start int) string {
	if start < 0 || start >= len(s) {
		return ""
	}
	return s[start:]
}

func trimRight(s string) string  { return strings.TrimRight(s, " \t") }
func contNr(line string, offset, length int) (int, bool) {
	cs := strings.TrimSpace(substrLen(line, offset, length))
	if cs == "" {
		return 0, true
	}
	n, err := strconv.Atoi(cs)
	return n, err == nil
}

// PreParse reads a legacy-PDB stream and returns the flattened record
// list plus the auxiliary structures of §4.I. It never returns a hard
// error for unsupported records — those are only logged through
// diagCtx and collected into Dropped. A malformed REVDAT number is
// likewise tolerated by falling back to "no further continuation", and
// a FORMUL line with an invalid component number is dropped with a
// warning, matching the original's catch-and-continue behavior around
// `stoi`.
func PreParse(r io.Reader, diagCtx *diag.Context) (*PreParsed, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), 1<<20)

	pp := &PreParsed{
		Remark200: map[string]string{},
		Remark240: map[string]string{},
	}
	droppedSeen := map[string]bool{}

	lineNr := 0
	var lookahead string
	haveLookahead := false
	nextLine := func() (string, bool) {
		if scanner.Scan() {
			lineNr++
			return strings.TrimRight(scanner.Text(), "\r"), true
		}
		return "", false
	}
	lookahead, haveLookahead = nextLine()

	for {
		if !haveLookahead {
			break
		}
		if lookahead == "" {
			lookahead, haveLookahead = nextLine()
			continue
		}

		typ := substrLen(lookahead, 0, 6)
		var value string
		if len(lookahead) > 6 {
			value = trimRight(substrFrom(lookahead, 6))
		}
		curLineNr := lineNr
		lookahead, haveLookahead = nextLine()

		if !supportedRecords[typ] {
			name := strings.TrimSpace(typ)
			if name != "END" && name != "" && !droppedSeen[name] {
				droppedSeen[name] = true
				pp.Dropped = append(pp.Dropped, name)
				diagCtx.Warnf("pdblegacy: dropping unsupported record %q (line %d)", name, curLineNr)
			}
			continue
		}

		switch typ {
		case "AUTHOR", "EXPDTA", "MDLTYP", "KEYWDS", "SPLIT ", "SPRSDE", "TITLE ":
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				if cn, ok := contNr(lookahead, 7, 3); !ok || cn != n {
					break
				}
				value += trimRight(substrFrom(lookahead, 10))
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "COMPND":
			value += "\n"
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				if cn, ok := contNr(lookahead, 7, 3); !ok || cn != n {
					break
				}
				value += trimRight(substrFrom(lookahead, 10))
				value += "\n"
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "SOURCE":
			value += "\n"
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				if cn, ok := contNr(lookahead, 7, 3); !ok || cn != n {
					break
				}
				value += strings.TrimLeft(trimRight(substrFrom(lookahead, 10)), "")
				value += "\n"
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "REVDAT":
			revNr, ok := contNr(value, 1, 3)
			n := 2
			for ok && haveLookahead && substrLen(lookahead, 0, 6) == typ {
				rn, rok := contNr(lookahead, 7, 3)
				cn, cok := contNr(lookahead, 10, 2)
				if !rok || !cok || rn != revNr || cn != n {
					break
				}
				value += substrFrom(lookahead, 38)
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "CAVEAT":
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				if cn, ok := contNr(lookahead, 7, 3); !ok || cn != n {
					break
				}
				value += trimRight(substrFrom(lookahead, 13))
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "OBSLTE":
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				value += substrFrom(lookahead, 31)
				lookahead, haveLookahead = nextLine()
			}
		case "FORMUL":
			compNr, ok := contNr(value, 1, 3)
			if !ok {
				diagCtx.Warnf("pdblegacy: dropping FORMUL line (%d) with invalid component number %q", curLineNr, substrLen(value, 1, 3))
				continue
			}
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				cn, cok := contNr(lookahead, 7, 3)
				sn, sok := contNr(lookahead, 16, 2)
				if !cok || !sok || cn != compNr || sn != n {
					break
				}
				value += trimRight(substrFrom(lookahead, 19))
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "HETNAM", "HETSYN":
			n := 2
			for haveLookahead && substrLen(lookahead, 0, 6) == typ {
				if cn, ok := contNr(lookahead, 8, 2); !ok || cn != n {
					break
				}
				value += trimRight(substrFrom(lookahead, 16))
				lookahead, haveLookahead = nextLine()
				n++
			}
		case "SITE  ":
			siteName := substrLen(value, 5, 3)
			value = trimRight(value)
			if rem := len(value) - 12; rem >= 0 {
				pad := 11 - rem%11
				if pad == 11 {
					pad = 0
				}
				value += strings.Repeat(" ", pad)
			}
			for haveLookahead && substrLen(lookahead, 0, 6) == typ && substrLen(lookahead, 11, 3) == siteName {
				s := trimRight(substrFrom(lookahead, 18))
				pad := 11 - len(s)%11
				if pad == 11 {
					pad = 0
				}
				value += s + strings.Repeat(" ", pad)
				lookahead, haveLookahead = nextLine()
			}
		case "REMARK":
			remarkNo := substrLen(value, 0, 4)
			typ = typ + remarkNo
			if strings.TrimSpace(remarkNo) == "200" || strings.TrimSpace(remarkNo) == "240" {
				target := pp.Remark200
				if strings.TrimSpace(remarkNo) == "240" {
					target = pp.Remark240
				}
				if i := strings.Index(value, ":"); i >= 0 {
					k := collapseSpaces(strings.TrimSpace(substrLen(value, 4, i-4)))
					v := strings.TrimSpace(substrFrom(value, i+1))
					switch {
					case strings.EqualFold(v, "NONE"), strings.EqualFold(v, "N/A"), strings.EqualFold(v, "NAN"):
						target[k] = "."
					case strings.EqualFold(v, "NULL"):
						// dropped per original behavior
					default:
						target[k] = v
					}
				}
			}
		case "LINK  ", "LINKR ":
			if l, ok := parseLink(curLineNr, value); ok {
				pp.Links = append(pp.Links, l)
			}
		}

		pp.Records = append(pp.Records, Record{Line: curLineNr, Type: typ, Value: value})
	}

	return pp, nil
}

func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// parseLink decodes a LINK/LINKR record's atom-pair fields, following
// the standard wwPDB column layout (value starts at column 7, so column
// c is at offset c-7).
func parseLink(line int, value string) (Link, bool) {
	if len(value) < 60 {
		return Link{}, false
	}
	l := Link{Line: line}
	l.Name1 = strings.TrimSpace(substrLen(value, 6, 4))
	l.AltLoc1 = strings.TrimSpace(substrLen(value, 10, 1))
	l.ResName1 = strings.TrimSpace(substrLen(value, 11, 3))
	l.Chain1 = strings.TrimSpace(substrLen(value, 15, 1))
	l.ResSeq1, _ = strconv.Atoi(strings.TrimSpace(substrLen(value, 16, 4)))
	l.ICode1 = strings.TrimSpace(substrLen(value, 20, 1))

	l.Name2 = strings.TrimSpace(substrLen(value, 36, 4))
	l.AltLoc2 = strings.TrimSpace(substrLen(value, 40, 1))
	l.ResName2 = strings.TrimSpace(substrLen(value, 41, 3))
	l.Chain2 = strings.TrimSpace(substrLen(value, 45, 1))
	l.ResSeq2, _ = strconv.Atoi(strings.TrimSpace(substrLen(value, 46, 4)))
	l.ICode2 = strings.TrimSpace(substrLen(value, 50, 1))

	l.Sym1 = strings.TrimSpace(substrLen(value, 53, 6))
	l.Sym2 = strings.TrimSpace(substrLen(value, 60, 6))
	if d := strings.TrimSpace(substrLen(value, 67, 5)); d != "" {
		if f, err := strconv.ParseFloat(d, 64); err == nil {
			l.Distance = f
			l.HasDistance = true
		}
	}
	return l, true
}

// FindAll returns every record of the given type, in file order.
func (pp *PreParsed) FindAll(typ string) []Record {
	var out []Record
	for _, r := range pp.Records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// First returns the first record of the given type, if any.
func (pp *PreParsed) First(typ string) (Record, bool) {
	for _, r := range pp.Records {
		if r.Type == typ {
			return r, true
		}
	}
	return Record{}, false
}

// Remarks returns every REMARK record whose number equals n, in file
// order, with the "REMARK <n>" type prefix and leading remark-number
// field already stripped from Value's first four columns.
func (pp *PreParsed) Remarks(n int) []Record {
	want := fmt.Sprintf("REMARK%4d", n)
	var out []Record
	for _, r := range pp.Records {
		if r.Type == want {
			r.Value = substrFrom(r.Value, 4)
			out = append(out, r)
		}
	}
	return out
}

// LooksLikeLegacyPDB implements §4.I's format-detection rule: the first
// non-empty line must be HEADER, or detection falls through to mmCIF
// (the first non-whitespace byte being an ASCII letter other than 'd'
// is read here as "not data_", i.e. not mmCIF).
func LooksLikeLegacyPDB(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		first := trimmed[0]
		if first < 'A' || first > 'z' {
			return false
		}
		return !strings.HasPrefix(strings.ToLower(trimmed), "data_") && strings.HasPrefix(trimmed, "HEADER")
	}
	return false
}
