// Package dict implements the dictionary-driven validator of §4.F: it
// parses an mmCIF-shaped dictionary file into type/category/item
// validators, cross-links parent/child items, and checks values on
// write. It depends on cif but not on pdblegacy.
package dict

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdbredo/cifkit/cif"
)

// Primitive is the dictionary's primitive type classification.
type Primitive int

const (
	PrimChar Primitive = iota
	PrimUChar
	PrimNumb
)

// TypeValidator is (name, primitive_kind, regex) from _item_type_list.
type TypeValidator struct {
	Name      string
	Primitive Primitive
	Regex     *regexp.Regexp
}

// Comparator returns the §4.E type-aware comparator for this type: the
// numeric comparator for PrimNumb, the char comparator otherwise.
func (t *TypeValidator) Comparator() cif.TypeComparator {
	if t != nil && t.Primitive == PrimNumb {
		return cif.NumericComparator
	}
	return cif.CharComparator
}

// ItemValidator is a single item's (tag, mandatory?, type?,
// enumeration set, parent, children, foreign-key children).
type ItemValidator struct {
	Tag         string // "category.item", no leading underscore
	Mandatory   bool
	Type        *TypeValidator
	Enumeration map[string]bool

	Parent           string
	Children         []string
	ForeignKeyChildren []string
}

// LocalName returns the item portion of Tag (after the category
// prefix).
func (iv *ItemValidator) LocalName() string {
	if i := strings.Index(iv.Tag, "."); i >= 0 {
		return iv.Tag[i+1:]
	}
	return iv.Tag
}

// Validate reports whether value passes this item's type and
// enumeration constraints. Per §4.F, empty, ".", and "?" always pass.
func (iv *ItemValidator) Validate(value string) error {
	if value == "" || value == "." || value == "?" {
		return nil
	}
	if iv.Type != nil && iv.Type.Regex != nil && !iv.Type.Regex.MatchString(value) {
		return &ValidationError{Item: iv.Tag, Reason: fmt.Sprintf("value %q does not match type %s", value, iv.Type.Name)}
	}
	if len(iv.Enumeration) > 0 && !iv.Enumeration[value] {
		return &ValidationError{Item: iv.Tag, Reason: "value not in enumeration"}
	}
	return nil
}

// CategoryValidator is (name, ordered key list, mandatory-item set,
// group set, item-validator set).
type CategoryValidator struct {
	Name      string
	KeyItems  []string
	Mandatory map[string]bool
	Groups    []string
	Items     map[string]*ItemValidator // keyed by local item name
}

// Validator holds the types and categories of §4.F (categories hold
// their items), each in a map keyed by lower-cased name.
type Validator struct {
	Types      map[string]*TypeValidator
	Categories map[string]*CategoryValidator

	// Strict selects the error policy of §4.F/§7: in strict mode a
	// failure returns a *ValidationError; otherwise it is only logged
	// via the supplied diag.Context and the write/check continues.
	Strict bool

	DictName    string
	DictVersion string
}

// NewValidator returns an empty Validator in non-strict mode.
func NewValidator() *Validator {
	return &Validator{Types: map[string]*TypeValidator{}, Categories: map[string]*CategoryValidator{}}
}

func (v *Validator) ensureCategory(name string) *CategoryValidator {
	key := strings.ToLower(name)
	if cv, ok := v.Categories[key]; ok {
		return cv
	}
	cv := &CategoryValidator{Name: name, Mandatory: map[string]bool{}, Items: map[string]*ItemValidator{}}
	v.Categories[key] = cv
	return cv
}

// Category looks up a category validator by name, case-insensitively.
func (v *Validator) Category(name string) (*CategoryValidator, bool) {
	cv, ok := v.Categories[strings.ToLower(name)]
	return cv, ok
}

// Item looks up an item validator by category and local item name.
func (v *Validator) Item(category, item string) (*ItemValidator, bool) {
	cv, ok := v.Category(category)
	if !ok {
		return nil, false
	}
	iv, ok := cv.Items[strings.ToLower(item)]
	return iv, ok
}

// TypeComparatorFor returns the type-aware comparator for category.item,
// for use as the typeOf closure cif.Category.AttachKeyIndex wants.
func (v *Validator) TypeComparatorFor(category, item string) cif.TypeComparator {
	iv, ok := v.Item(category, item)
	if !ok {
		return cif.CharComparator
	}
	return iv.Type.Comparator()
}

// AttachKeyIndexes installs a cif key index on every category of db
// that has a dictionary-declared, non-empty key list, per §3's
// category invariant (b).
func (v *Validator) AttachKeyIndexes(db *cif.Datablock) {
	for _, c := range db.Categories() {
		cv, ok := v.Category(c.Name)
		if !ok || len(cv.KeyItems) == 0 {
			continue
		}
		catName := c.Name
		c.AttachKeyIndex(cv.KeyItems, func(item string) cif.TypeComparator {
			return v.TypeComparatorFor(catName, item)
		})
	}
}

// ValidationError is thrown (in strict mode) or logged (otherwise) per
// §7's error policy.
type ValidationError struct {
	Item   string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Item + ": " + e.Reason
}
