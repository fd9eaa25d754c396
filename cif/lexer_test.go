package cif

import "testing"

func tokens(t *testing.T, src string) []Token {
	t.Helper()
	lex := NewLexer([]byte(src))
	var out []Token
	for {
		tok, err := lex.NextToken()
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

func TestLexerTinyLoop(t *testing.T) {
	toks := tokens(t, "data_x\nloop_\n_a.b _a.c\n1 2\n3 4\n#\n")
	want := []TokenKind{DATA, LOOP, TAG, TAG, VALUE, VALUE, VALUE, VALUE, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[0].Text != "x" {
		t.Errorf("datablock name = %q, want x", toks[0].Text)
	}
}

func TestLexerQuotedApostrophe(t *testing.T) {
	toks := tokens(t, "_s.name 'O'Connor'\n")
	if toks[1].Kind != VALUE || toks[1].Text != "O'Connor" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexerTextFieldWithEscapedSemicolon(t *testing.T) {
	src := ";line one\n\\;line two\n;\n"
	lex := NewLexer([]byte(src))
	tok, err := lex.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != VALUE || tok.Value != KindTextField {
		t.Fatalf("got %+v", tok)
	}
	want := "line one\n\\;line two"
	if tok.Text != want {
		t.Fatalf("got %q, want %q", tok.Text, want)
	}
}

func TestLexerInapplicableAndUnknown(t *testing.T) {
	toks := tokens(t, "_a.b . ? \n")
	// _a.b is consumed as a tag, then two values
	if toks[1].Value != KindInapplicable || toks[1].Text != "." {
		t.Fatalf("got %+v", toks[1])
	}
	if toks[2].Value != KindUnknown || toks[2].Text != "?" {
		t.Fatalf("got %+v", toks[2])
	}
}

func TestLexerReservedWordsCaseInsensitive(t *testing.T) {
	toks := tokens(t, "DATA_Foo\nLOOP_\nSTOP_\nGLOBAL_\n")
	want := []TokenKind{DATA, LOOP, STOP, GLOBAL, EOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[0].Text != "Foo" {
		t.Errorf("datablock name = %q", toks[0].Text)
	}
}

func TestLexerRetractIdempotent(t *testing.T) {
	lex := NewLexer([]byte("ab"))
	posBefore, lineBefore, bolBefore := lex.pos, lex.line, lex.bol
	c, ok := lex.getNextChar()
	if !ok || c != 'a' {
		t.Fatalf("got %c %v", c, ok)
	}
	lex.retract()
	if lex.pos != posBefore || lex.line != lineBefore || lex.bol != bolBefore {
		t.Fatalf("retract did not restore state: pos=%d line=%d bol=%v", lex.pos, lex.line, lex.bol)
	}
}

func TestClassifyNumeric(t *testing.T) {
	cases := map[string]ValueKind{
		"1":      KindInt,
		"-1":     KindInt,
		"1.0":    KindFloat,
		"-1e2":   KindFloat,
		"1.23e-4": KindFloat,
		"abc":    KindString,
		"1.2.3":  KindString,
	}
	for in, want := range cases {
		if got := classifyNumeric(in); got != want {
			t.Errorf("classifyNumeric(%q) = %v, want %v", in, got, want)
		}
	}
}
