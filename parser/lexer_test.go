package parser

import "testing"

func tokensOf(t *testing.T, src string) []Token {
	t.Helper()
	lx := NewLexer([]byte(src), "test")
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return toks
}

func kindsOf(toks []Token) []TokenKind {
	kinds := make([]TokenKind, len(toks))
	for i, t := range toks {
		kinds[i] = t.Kind
	}
	return kinds
}

func TestLexerSplitsDotFromUnquoted(t *testing.T) {
	toks := tokensOf(t, "a.b.c")
	kinds := kindsOf(toks)
	want := []TokenKind{TokenUnquotedString, TokenDot, TokenUnquotedString, TokenDot, TokenUnquotedString, TokenEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (full: %v)", i, kinds[i], want[i], kinds)
		}
	}
}

func TestLexerPlusEquals(t *testing.T) {
	toks := tokensOf(t, "a += 1")
	if toks[1].Kind != TokenPlusEquals {
		t.Fatalf("expected TokenPlusEquals, got %v", toks[1].Kind)
	}
}

func TestLexerSubstitutionTokens(t *testing.T) {
	toks := tokensOf(t, "${a.b}")
	if toks[0].Kind != TokenDollarBrace {
		t.Fatalf("expected ${, got %v", toks[0].Kind)
	}
	toks = tokensOf(t, "${?a.b}")
	if toks[0].Kind != TokenDollarQBrace {
		t.Fatalf("expected ${?, got %v", toks[0].Kind)
	}
}

func TestLexerQuotedStringEscapes(t *testing.T) {
	toks := tokensOf(t, `"a\nb\tc"`)
	if toks[0].Kind != TokenQuotedString {
		t.Fatalf("expected quoted string, got %v", toks[0].Kind)
	}
	if toks[0].Literal != "a\nb\tc" {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestLexerTripleQuotedClosesOnLastRun(t *testing.T) {
	toks := tokensOf(t, `"""he said "hi"."""`)
	if toks[0].Kind != TokenTripleQuotedString {
		t.Fatalf("expected triple-quoted string, got %v", toks[0].Kind)
	}
	if toks[0].Literal != `he said "hi".` {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestLexerCollapsesBlankLines(t *testing.T) {
	toks := tokensOf(t, "a\n\n\nb")
	kinds := kindsOf(toks)
	want := []TokenKind{TokenUnquotedString, TokenNewline, TokenUnquotedString, TokenEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestLexerLineComment(t *testing.T) {
	toks := tokensOf(t, "a // comment\nb")
	kinds := kindsOf(toks)
	want := []TokenKind{TokenUnquotedString, TokenNewline, TokenUnquotedString, TokenEOF}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestLexerHashComment(t *testing.T) {
	toks := tokensOf(t, "a # comment\nb")
	kinds := kindsOf(toks)
	want := []TokenKind{TokenUnquotedString, TokenNewline, TokenUnquotedString, TokenEOF}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestLexerParens(t *testing.T) {
	toks := tokensOf(t, `file("a.conf")`)
	kinds := kindsOf(toks)
	want := []TokenKind{TokenUnquotedString, TokenLParen, TokenQuotedString, TokenRParen, TokenEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}
