// Package remark3 implements §4.L's refinement-program dispatcher: ten
// fixed per-program templates, each an ordered array of regex rules
// driving a small state machine over the REMARK 3 free text, scored by
// line coverage and the best-scoring template's extracted statistics
// written into the datablock.
package remark3

import (
	"regexp"
	"strings"
)

// Line is one REMARK 3 text line, already stripped of the "REMARK   3"
// prefix by the caller.
type Line = string

// TemplateLine is one rule of a program's template: on the first match
// of Regex starting from the engine's current state, its capture groups
// are written into (Category, Items) — a fresh row if CreateNew, else
// the category's last row — and the state advances by NextStateOffset.
// LSRestrType marks a refine_ls_restr rule's restraint-type key so the
// two-phase count/weight then dev_ideal passes address the same row.
type TemplateLine struct {
	Regex           *regexp.Regexp
	NextStateOffset int
	Category        string
	Items           []string
	LSRestrType     string
	CreateNew       bool
}

// Template is one refinement program's complete set of template rules,
// plus the regex used to extract its version number from the PROGRAM
// line.
type Template struct {
	Program     string
	Rules       []TemplateLine
	VersionExpr *regexp.Regexp
}

// Row is one emitted datablock row: Category names the mmCIF category,
// Values holds item->text pairs. LSRestrType, when non-empty, is the
// restraint_type key the row is addressed by (for refine_ls_restr's
// two-phase merge).
type Row struct {
	Category    string
	Values      map[string]string
	LSRestrType string
}

// Result is the outcome of running one Template against a program's
// REMARK 3 lines: the extracted rows, the free-text tail captured by
// "OTHER REFINEMENT REMARKS:", and the line-coverage score used to pick
// the winning template.
type Result struct {
	Program string
	Version string
	Rows    []Row
	Details string
	Score   float64
}

var otherRemarksExpr = regexp.MustCompile(`(?i)OTHER REFINEMENT REMARKS\s*:\s*(.*)`)

// Run executes one program's template against the full REMARK 3 line
// set, per §4.L step 2: "For every recognized program name, runs the
// corresponding template against a copy of the remark-3 lines and
// records a score equal to matched_lines / total_lines."
//
// restr rows sharing the same LSRestrType are merged: a count/weight
// rule followed later by a dev_ideal rule for the same restraint type
// address the same row, implementing the two-phase emit of §4.L's
// last paragraph.
func (t *Template) Run(lines []Line, programLineVersion string) Result {
	res := Result{Program: t.Program, Version: programLineVersion}
	if len(lines) == 0 {
		return res
	}

	restrRows := map[string]*Row{}
	var order []string

	state := 0
	matched := 0
	i := 0
	for ; i < len(lines); i++ {
		if state >= len(t.Rules) {
			break
		}
		line := lines[i]
		found := false
		for s := state; s < len(t.Rules); s++ {
			rule := t.Rules[s]
			m := rule.Regex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			found = true
			matched++
			if rule.Category != "" {
				applyRule(restrRows, &order, &res, rule, m[1:])
			}
			state = s + rule.NextStateOffset
			break
		}
		if !found {
			continue
		}
	}

	for _, key := range order {
		res.Rows = append(res.Rows, *restrRows[key])
	}

	for i = 0; i < len(lines); i++ {
		if m := otherRemarksExpr.FindStringSubmatch(lines[i]); m != nil {
			var tail []string
			if strings.TrimSpace(m[1]) != "" {
				tail = append(tail, strings.TrimSpace(m[1]))
			}
			for j := i + 1; j < len(lines); j++ {
				if strings.TrimSpace(lines[j]) != "" {
					tail = append(tail, strings.TrimSpace(lines[j]))
				}
			}
			res.Details = strings.Join(tail, " ")
			break
		}
	}

	res.Score = float64(matched) / float64(len(lines))
	return res
}

func applyRule(restrRows map[string]*Row, order *[]string, res *Result, rule TemplateLine, groups []string) {
	if rule.Category == "refine_ls_restr" && rule.LSRestrType != "" {
		row, ok := restrRows[rule.LSRestrType]
		if !ok || rule.CreateNew {
			row = &Row{Category: rule.Category, Values: map[string]string{}, LSRestrType: rule.LSRestrType}
			restrRows[rule.LSRestrType] = row
			*order = append(*order, rule.LSRestrType)
		}
		for i, item := range rule.Items {
			if i < len(groups) {
				row.Values[item] = strings.TrimSpace(groups[i])
			}
		}
		return
	}

	row := Row{Category: rule.Category, Values: map[string]string{}}
	for i, item := range rule.Items {
		if i < len(groups) {
			row.Values[item] = strings.TrimSpace(groups[i])
		}
	}
	res.Rows = append(res.Rows, row)
}

// ProgramNameFromHeader implements §4.L step 1: "Reads the PROGRAM:
// line; splits on ', '."
func ProgramNameFromHeader(lines []Line) []string {
	programLine := regexp.MustCompile(`(?i)^\s*PROGRAM\s*:\s*(.+)`)
	for _, l := range lines {
		if m := programLine.FindStringSubmatch(l); m != nil {
			var names []string
			for _, part := range strings.Split(m[1], ",") {
				part = strings.TrimSpace(part)
				if part != "" {
					names = append(names, part)
				}
			}
			return names
		}
	}
	return nil
}

// Dispatch implements the whole of §4.L's dispatcher: it tries every
// named candidate (matched against the PROGRAM: line) scoring each,
// and falls back to trying every known template if no named candidate
// scores >= 0.9.
func Dispatch(lines []Line) (Result, bool) {
	named := ProgramNameFromHeader(lines)

	var best Result
	haveBest := false
	tryTemplate := func(tpl *Template, name string) {
		res := tpl.Run(lines, extractVersion(tpl, name))
		if !haveBest || res.Score > best.Score {
			best, haveBest = res, true
		}
	}

	for _, name := range named {
		for _, tpl := range AllTemplates {
			if matchesProgramName(tpl, name) {
				tryTemplate(tpl, name)
			}
		}
	}

	if !haveBest || best.Score < 0.9 {
		for _, tpl := range AllTemplates {
			name := ""
			for _, n := range named {
				if matchesProgramName(tpl, n) {
					name = n
					break
				}
			}
			tryTemplate(tpl, name)
		}
	}

	return best, haveBest && best.Score > 0
}

func matchesProgramName(tpl *Template, name string) bool {
	if tpl.VersionExpr == nil {
		return false
	}
	return tpl.VersionExpr.MatchString(name)
}

// extractVersion pulls the version capture group (group 2) out of
// tpl.VersionExpr's match against name, per §8 scenario 4 ("PROGRAM :
// REFMAC 5.8.0267" must yield software.version = "5.8.0267"). Returns
// "" if the template has no version expression, name is empty, or the
// version group didn't participate in the match.
func extractVersion(tpl *Template, name string) string {
	if tpl.VersionExpr == nil || name == "" {
		return ""
	}
	m := tpl.VersionExpr.FindStringSubmatch(name)
	if len(m) < 3 {
		return ""
	}
	return strings.TrimSpace(m[2])
}
