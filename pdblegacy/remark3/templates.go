package remark3

import "regexp"

// rx compiles a template-line pattern; panics on malformed patterns,
// which would only ever be a programming error in this file.
func rx(pattern string) *regexp.Regexp { return regexp.MustCompile(pattern) }

// The ten candidate templates of §4.L. Each is a representative subset
// of its program's full statistics block — the resolution range, the
// R-value/free-R-value lines, and the core bond/angle rmsd restraints —
// rather than every line the corresponding refinement program can ever
// emit; see DESIGN.md for the scope decision.

var busterTNTTemplate = &Template{
	Program:     "BUSTER-TNT",
	VersionExpr: rx(`(?i)(BUSTER(?:-TNT)?)(?: (\d+(?:\..+)?))?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\) :\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`RESOLUTION RANGE LOW \(ANGSTROMS\) :\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_low"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`FREE R VALUE\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_free"}},
		{Regex: rx(`BOND LENGTHS \(A\) :\s+(.+?);\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight", "number"}, LSRestrType: "t_bond_d"},
		{Regex: rx(`BOND ANGLES \(DEGREES\) :\s+(.+?);\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight", "number"}, LSRestrType: "t_angle_deg"},
	},
}

var cnsTemplate = &Template{
	Program:     "CNS",
	VersionExpr: rx(`(?i)(CN[SX])(?: (\d+(?:\.\d+)?))?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`RESOLUTION RANGE LOW\s+\(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_low"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`FREE R VALUE\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_free"}},
		{Regex: rx(`BOND LENGTHS\s*\(A\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal"}, LSRestrType: "c_bond_d"},
		{Regex: rx(`BOND ANGLES\s*\(DEGREES\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal"}, LSRestrType: "c_angle_deg"},
	},
}

var phenixTemplate = &Template{
	Program:     "PHENIX",
	VersionExpr: rx(`(?i)(PHENIX)(?:\s*\(PHENIX\.REFINE\))?(?:\s*:\s*(.+))?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`RESOLUTION RANGE LOW\s+\(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_low"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET, NO CUTOFF\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`FREE R VALUE\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_free"}},
		{Regex: rx(`BOND LENGTHS REFINED ATOMS\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "f_bond_d"},
		{Regex: rx(`BOND ANGLES REFINED ATOMS\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "f_angle_d"},
	},
}

var nuclsqTemplate = &Template{
	Program:     "NUCLSQ",
	VersionExpr: rx(`(?i)(NUCLSQ)`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`DISTANCE RESTRAINTS.+WEIGHT.+COUNT`), NextStateOffset: 1},
		{Regex: rx(`SUGAR-BASE BOND DISTANCE\s*\(A\)\s*:\s+(.+?);\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight", "number"}, LSRestrType: "n_bond_d"},
	},
}

var prolsqTemplate = &Template{
	Program:     "PROLSQ",
	VersionExpr: rx(`(?i)(PROLSQ)`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`BOND DISTANCES\s*\(A\)\s*:\s+(.+?);\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight", "number"}, LSRestrType: "p_bond_d"},
		{Regex: rx(`BOND ANGLES\s*\(DEGREES\)\s*:\s+(.+?);\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight", "number"}, LSRestrType: "p_angle_d"},
	},
}

var refmacTemplate = &Template{
	Program:     "REFMAC",
	VersionExpr: rx(`(?i)^(REFMAC)(?:\s+(\d+(?:\.\d+)*))?\s*$`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`FREE R VALUE\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_free"}},
		{Regex: rx(`BOND LENGTHS REFINED ATOMS\s*\(A\)\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "r_bond_refined_d"},
		{Regex: rx(`BOND ANGLES REFINED ATOMS\s*\(DEGREES\)\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "r_angle_refined_deg"},
	},
}

var refmac5Template = &Template{
	Program:     "REFMAC5",
	VersionExpr: rx(`(?i)^(REFMAC)\s+(5(?:\.\d+)*)\s*$`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET, NO CUTOFF\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`FREE R VALUE\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_free"}},
		{Regex: rx(`BOND LENGTHS REFINED ATOMS\s*\(A\)\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "r_bond_refined_d"},
		{Regex: rx(`BOND ANGLES REFINED ATOMS\s*\(DEGREES\)\s*:\s*(.+?)\s*;\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"number", "dev_ideal"}, LSRestrType: "r_angle_refined_deg"},
		{Regex: rx(`U VALUES\s*:\s*REFINED INDIVIDUAL`), NextStateOffset: 1},
	},
}

var shelxlTemplate = &Template{
	Program:     "SHELXL",
	VersionExpr: rx(`(?i)(SHELXL)(?:-| )?(\d+(?:\.\d+)?)?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`BOND LENGTHS\s*(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal"}, LSRestrType: "s_bond_d"},
	},
}

var tntTemplate = &Template{
	Program:     "TNT",
	VersionExpr: rx(`(?i)^(TNT)(?:\s+V\.?\s*(.+))?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`BOND LENGTHS\s*:\s+(.+?);\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal", "weight"}, LSRestrType: "t_bond_d"},
	},
}

var xplorTemplate = &Template{
	Program:     "X-PLOR",
	VersionExpr: rx(`(?i)(X-PLOR)(?:\s+(\d+(?:\.\d+)?))?`),
	Rules: []TemplateLine{
		{Regex: rx(`RESOLUTION RANGE HIGH \(ANGSTROMS\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_d_res_high"}},
		{Regex: rx(`R VALUE\s*\(WORKING SET\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine", Items: []string{"ls_R_factor_R_work"}},
		{Regex: rx(`BOND LENGTHS\s*\(A\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal"}, LSRestrType: "x_bond_d"},
		{Regex: rx(`BOND ANGLES\s*\(DEGREES\)\s*:\s+(.+?)\s*$`), NextStateOffset: 1, Category: "refine_ls_restr", Items: []string{"dev_ideal"}, LSRestrType: "x_angle_d"},
	},
}

// AllTemplates is the fixed registry of every candidate refinement
// program's template, per §4.L's list: "BUSTER-TNT, CNS/CNX, PHENIX,
// NUCLSQ, PROLSQ, REFMAC, REFMAC5, SHELXL, TNT, X-PLOR."
var AllTemplates = []*Template{
	busterTNTTemplate,
	cnsTemplate,
	phenixTemplate,
	nuclsqTemplate,
	prolsqTemplate,
	refmacTemplate,
	refmac5Template,
	shelxlTemplate,
	tntTemplate,
	xplorTemplate,
}
