package parser

import "github.com/dhamidi/hocon/hocerr"

// Position is re-exported from hocerr so callers of this package never need
// to import it directly just to read a token's location.
type Position = hocerr.Position

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError

	// TokenUnquotedString covers bare runs of non-forbidden characters;
	// the parser, not the lexer, classifies these into bool/null/number/
	// string per the HOCON grammar (they all share one surface form).
	TokenUnquotedString
	TokenQuotedString
	TokenTripleQuotedString

	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenLParen
	TokenRParen
	TokenColon
	TokenEquals
	TokenComma
	TokenDot
	TokenPlusEquals
	TokenDollarBrace  // ${
	TokenDollarQBrace // ${?
	TokenNewline
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:                "EOF",
	TokenError:              "Error",
	TokenUnquotedString:     "UnquotedString",
	TokenQuotedString:       "QuotedString",
	TokenTripleQuotedString: "TripleQuotedString",
	TokenLBrace:             "{",
	TokenRBrace:             "}",
	TokenLBracket:           "[",
	TokenRBracket:           "]",
	TokenLParen:             "(",
	TokenRParen:             ")",
	TokenColon:              ":",
	TokenEquals:             "=",
	TokenComma:              ",",
	TokenDot:                ".",
	TokenPlusEquals:         "+=",
	TokenDollarBrace:        "${",
	TokenDollarQBrace:       "${?",
	TokenNewline:            "newline",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Token is a single lexical unit together with its source span. Literal
// holds the decoded text for strings/numbers, or the raw run for unquoted
// strings and keywords.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}
