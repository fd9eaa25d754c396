package dict

import (
	"strings"
	"testing"

	"github.com/pdbredo/cifkit/diag"
)

// minimalDictionary builds a small but structurally complete
// dictionary source: an item_type_list, three item save-frames
// (entity.id mandatory, entity.type with an enumeration,
// atom_site.label_entity_id), two category save-frames each with a key
// item, and an item_linked pair wiring a parent/child foreign key.
func minimalDictionary() string {
	var b strings.Builder
	b.WriteString("data_test_dic\n")
	b.WriteString("_dictionary.title   test_dic\n")
	b.WriteString("_dictionary.version 1.0\n")
	b.WriteString("loop_\n")
	b.WriteString("_item_type_list.code\n")
	b.WriteString("_item_type_list.primitive_code\n")
	b.WriteString("_item_type_list.construct\n")
	b.WriteString("code      char '[A-Za-z0-9_]+'\n")
	b.WriteString("int       numb '[0-9]+'\n")
	b.WriteString("loop_\n")
	b.WriteString("_item_linked.child_name\n")
	b.WriteString("_item_linked.parent_name\n")
	b.WriteString("'_atom_site.label_entity_id'  '_entity.id'\n")
	b.WriteString("#\n")

	b.WriteString("save__entity.id\n")
	b.WriteString("_item.name            '_entity.id'\n")
	b.WriteString("_item.category_id     entity\n")
	b.WriteString("_item.mandatory_code  yes\n")
	b.WriteString("_item_type.code        code\n")
	b.WriteString("save_\n")

	b.WriteString("save__entity.type\n")
	b.WriteString("_item.name            '_entity.type'\n")
	b.WriteString("_item.category_id     entity\n")
	b.WriteString("_item.mandatory_code  no\n")
	b.WriteString("_item_type.code        code\n")
	b.WriteString("loop_\n")
	b.WriteString("_item_enumeration.value\n")
	b.WriteString("polymer\n")
	b.WriteString("non-polymer\n")
	b.WriteString("water\n")
	b.WriteString("save_\n")

	b.WriteString("save_entity\n")
	b.WriteString("_category.id entity\n")
	b.WriteString("_category_key.name '_entity.id'\n")
	b.WriteString("save_\n")

	b.WriteString("save__atom_site.label_entity_id\n")
	b.WriteString("_item.name            '_atom_site.label_entity_id'\n")
	b.WriteString("_item.category_id     atom_site\n")
	b.WriteString("_item.mandatory_code  no\n")
	b.WriteString("_item_type.code        code\n")
	b.WriteString("save_\n")

	b.WriteString("save_atom_site\n")
	b.WriteString("_category.id atom_site\n")
	b.WriteString("_category_key.name '_atom_site.label_entity_id'\n")
	b.WriteString("save_\n")

	return b.String()
}

func TestParseBuildsTypesCategoriesAndItems(t *testing.T) {
	v, err := Parse([]byte(minimalDictionary()), diag.New())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.DictName != "test_dic" {
		t.Errorf("DictName = %q, want test_dic", v.DictName)
	}
	if v.DictVersion != "1.0" {
		t.Errorf("DictVersion = %q, want 1.0", v.DictVersion)
	}
	if _, ok := v.Types["code"]; !ok {
		t.Fatalf("expected type 'code' to be registered")
	}
	if _, ok := v.Types["int"]; !ok {
		t.Fatalf("expected type 'int' to be registered")
	}

	idItem, ok := v.Item("entity", "id")
	if !ok {
		t.Fatalf("expected entity.id item to be registered")
	}
	if !idItem.Mandatory {
		t.Errorf("entity.id should be mandatory")
	}
	if idItem.Type == nil || idItem.Type.Name != "code" {
		t.Errorf("entity.id type = %+v, want code", idItem.Type)
	}

	typeItem, ok := v.Item("entity", "type")
	if !ok {
		t.Fatalf("expected entity.type item to be registered")
	}
	if typeItem.Mandatory {
		t.Errorf("entity.type should not be mandatory")
	}
	if len(typeItem.Enumeration) != 3 || !typeItem.Enumeration["polymer"] {
		t.Errorf("entity.type enumeration = %v, want polymer/non-polymer/water", typeItem.Enumeration)
	}

	cv, ok := v.Category("entity")
	if !ok {
		t.Fatalf("expected category entity to be registered")
	}
	if len(cv.KeyItems) != 1 || cv.KeyItems[0] != "id" {
		t.Errorf("entity.KeyItems = %v, want [id]", cv.KeyItems)
	}
}

func TestParseWiresParentChildForeignKey(t *testing.T) {
	v, err := Parse([]byte(minimalDictionary()), diag.New())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	child, ok := v.Item("atom_site", "label_entity_id")
	if !ok {
		t.Fatalf("expected atom_site.label_entity_id item to be registered")
	}
	if child.Parent != "entity.id" {
		t.Errorf("child.Parent = %q, want entity.id", child.Parent)
	}

	parent, ok := v.Item("entity", "id")
	if !ok {
		t.Fatalf("expected entity.id item to be registered")
	}
	if len(parent.Children) != 1 || parent.Children[0] != "atom_site.label_entity_id" {
		t.Errorf("parent.Children = %v, want [atom_site.label_entity_id]", parent.Children)
	}
	if len(parent.ForeignKeyChildren) != 1 {
		t.Errorf("expected entity.id to have exactly 1 foreign-key child since atom_site's only key item is label_entity_id, got %v", parent.ForeignKeyChildren)
	}
}

func TestParseEmptyDictionaryYieldsEmptyValidator(t *testing.T) {
	v, err := Parse([]byte("data_empty\n"), diag.New())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(v.Types) != 0 || len(v.Categories) != 0 {
		t.Errorf("expected empty Validator, got types=%v categories=%v", v.Types, v.Categories)
	}
}
