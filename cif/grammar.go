package cif

import "strings"

// Handler carries the four produce_* callbacks the grammar driver
// invokes; it replaces the source's sac_parser -> parser -> dict_parser
// inheritance chain with a single interface implemented differently by
// cif.Parse (builds a File) and by dict.Parse (builds a Validator from
// save-frames).
type Handler interface {
	// ProduceDatablock is called once per `data_<name>` header.
	ProduceDatablock(name string) error
	// ProduceItem is called for a single TAG/VALUE pair outside a
	// loop_. Consecutive ProduceItem calls for the same category
	// belong to one logical row; a new category or a loop_ starts a
	// fresh one.
	ProduceItem(category, item, value string, vk ValueKind) error
	// ProduceLoopRow is called once per row of a loop_ construct,
	// with items holding the bare item names (category prefix
	// already stripped and verified common) and values the row's
	// values in the same order.
	ProduceLoopRow(category string, items []string, values []string, vks []ValueKind) error
	// ProduceSave is called on SAVE tokens. The default top-level
	// parser rejects save-frames; the dictionary parser overrides
	// this to treat them as per-item/per-category mini-datablocks.
	// name is empty on the closing `save_`.
	ProduceSave(name string) error
}

// Driver consumes a token stream with one token of look-ahead and
// dispatches the DATA/LOOP/TAG/SAVE productions of §4.C to a Handler.
type Driver struct {
	lex     *Lexer
	h       Handler
	tok     Token
	haveTok bool
}

// NewDriver returns a Driver reading from lex and dispatching to h.
func NewDriver(lex *Lexer, h Handler) *Driver {
	return &Driver{lex: lex, h: h}
}

func (d *Driver) peek() (Token, error) {
	if !d.haveTok {
		t, err := d.lex.NextToken()
		if err != nil {
			return Token{}, err
		}
		d.tok = t
		d.haveTok = true
	}
	return d.tok, nil
}

func (d *Driver) advance() (Token, error) {
	t, err := d.peek()
	if err != nil {
		return Token{}, err
	}
	d.haveTok = false
	return t, nil
}

// Run drives the whole input to completion: zero or more datablocks,
// each containing LOOP, TAG, and SAVE productions in any order.
func (d *Driver) Run() error {
	for {
		t, err := d.peek()
		if err != nil {
			return err
		}
		switch t.Kind {
		case EOF:
			return nil
		case GLOBAL:
			d.advance()
			continue
		case DATA:
			d.advance()
			if err := d.h.ProduceDatablock(t.Text); err != nil {
				return err
			}
			if err := d.runDatablockBody(); err != nil {
				return err
			}
		default:
			return newParseError(t.Line, "expected data_ or global_, got %s", t.Kind)
		}
	}
}

func (d *Driver) runDatablockBody() error {
	for {
		t, err := d.peek()
		if err != nil {
			return err
		}
		switch t.Kind {
		case LOOP:
			d.advance()
			if err := d.runLoop(); err != nil {
				return err
			}
		case TAG:
			if err := d.runTag(); err != nil {
				return err
			}
		case SAVE:
			d.advance()
			if err := d.h.ProduceSave(t.Text); err != nil {
				return err
			}
		default:
			return nil // DATA, GLOBAL, or EOF: let the outer loop handle it
		}
	}
}

func splitTag(tag string) (category, item string, ok bool) {
	if i := strings.Index(tag, "."); i >= 0 {
		return tag[:i], tag[i+1:], true
	}
	if i := strings.LastIndex(tag, "_"); i > 0 {
		return tag[:i], tag[i+1:], true
	}
	return "", "", false
}

func (d *Driver) runTag() error {
	t, _ := d.advance()
	category, item, ok := splitTag(t.Text)
	if !ok {
		return newParseError(t.Line, "malformed tag %q", t.Text)
	}
	vt, err := d.peek()
	if err != nil {
		return err
	}
	if vt.Kind != VALUE {
		return newParseError(vt.Line, "expected value for tag %q, got %s", t.Text, vt.Kind)
	}
	d.advance()
	return d.h.ProduceItem(category, item, vt.Text, vt.Value)
}

// runLoop consumes TAG+ (all sharing a category prefix), then VALUE
// tokens in groups the size of the tag list, emitting one
// ProduceLoopRow call per group, until the next non-VALUE token.
func (d *Driver) runLoop() error {
	var category string
	var items []string
	for {
		t, err := d.peek()
		if err != nil {
			return err
		}
		if t.Kind != TAG {
			break
		}
		d.advance()
		cat, item, ok := splitTag(t.Text)
		if !ok {
			return newParseError(t.Line, "malformed tag %q", t.Text)
		}
		if category == "" {
			category = cat
		} else if !strings.EqualFold(category, cat) {
			return newParseError(t.Line, "loop_ tag %q does not share category %q", t.Text, category)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		t, _ := d.peek()
		return newParseError(t.Line, "loop_ with no tags")
	}

	for {
		t, err := d.peek()
		if err != nil {
			return err
		}
		if t.Kind != VALUE {
			return nil
		}
		values := make([]string, len(items))
		vks := make([]ValueKind, len(items))
		for i := range items {
			vt, err := d.peek()
			if err != nil {
				return err
			}
			if vt.Kind != VALUE {
				return newParseError(vt.Line, "loop_ row truncated: expected %d values, got %d", len(items), i)
			}
			d.advance()
			values[i] = vt.Text
			vks[i] = vt.Value
		}
		if err := d.h.ProduceLoopRow(category, items, values, vks); err != nil {
			return err
		}
	}
}
