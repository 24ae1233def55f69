package parser

import (
	"strconv"
	"strings"

	"github.com/dhamidi/hocon/hocerr"
)

// Mode selects strict or lenient error propagation (§7).
type Mode int

const (
	ModeStrict Mode = iota
	ModeLenient
)

// IncludeKind is the reference kind of an include directive.
type IncludeKind int

const (
	IncludeUnqualified IncludeKind = iota
	IncludeFile
	IncludeURL
	IncludeClasspath
)

// IncludeHost is the parser's only collaborator for I/O (§4.2): given the
// kind and target of an include directive, it fetches, recursively parses,
// and returns the resulting tree, or an error. The parser itself never
// touches the filesystem or network.
type IncludeHost interface {
	ResolveInclude(kind IncludeKind, ref string, required bool) (*Node, error)
}

// syntheticIncludeKey names the member an include directive's error is
// recorded under in lenient mode. An include directive has no key of its
// own, but a failed include (a required one that is not found, or any
// include that fails for another reason) still needs somewhere to park its
// BadValue so the surrounding document can note it without losing the
// information. The leading NUL makes it unreachable from any real HOCON
// key, quoted or not.
func syntheticIncludeKey(n int) string {
	return "\x00include#" + strconv.Itoa(n)
}

// Parser turns a flat token stream into an Intermediate Tree. Unlike a
// streaming editor-facing parser, it buffers the whole token list up
// front; HOCON documents are configuration, not multi-megabyte source
// files, so the simplicity is worth it.
type Parser struct {
	tokens       []Token
	pos          int
	mode         Mode
	host         IncludeHost
	errs         []error
	includeCount int
}

// Parse parses input into an Intermediate Tree. host may be nil, in which
// case any include directive other than a plain optional one is treated as
// not found.
func Parse(input []byte, source string, mode Mode, host IncludeHost) (*Node, error) {
	lx := NewLexer(input, source)
	var tokens []Token
	for {
		t := lx.Next()
		tokens = append(tokens, t)
		if t.Kind == TokenEOF {
			break
		}
	}

	p := &Parser{tokens: tokens, mode: mode, host: host}
	root := p.parseRoot()
	if mode == ModeStrict && len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	return root, nil
}

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	return p.tokens[idx]
}

func (p *Parser) at(kind TokenKind) bool {
	return p.cur().Kind == kind
}

func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

// fail records a parse error. In strict mode it is queued to short-circuit
// Parse; in lenient mode it becomes the returned BadValue node and parsing
// otherwise continues.
func (p *Parser) fail(pos Position, message string) *Node {
	err := &hocerr.ParseError{Pos: pos, Message: message}
	if p.mode == ModeStrict {
		p.errs = append(p.errs, err)
	}
	return Bad(pos, hocerr.KindParse, err)
}

// resync skips tokens until a member separator or closing brace/bracket,
// so a lenient parse can recover after a malformed member.
func (p *Parser) resync() {
	for {
		switch p.cur().Kind {
		case TokenComma, TokenNewline, TokenRBrace, TokenRBracket, TokenEOF:
			return
		default:
			p.advance()
		}
	}
}

func (p *Parser) skipSeparators() {
	for p.at(TokenNewline) || p.at(TokenComma) {
		p.advance()
	}
}

func (p *Parser) parseRoot() *Node {
	if p.at(TokenLBrace) {
		return p.parseObject()
	}
	return p.parseObjectBody(true)
}

func (p *Parser) parseObject() *Node {
	pos := p.cur().Span.Start
	p.advance() // {
	body := p.parseObjectBody(false)
	body.Pos = pos
	return body
}

func (p *Parser) parseObjectBody(topLevel bool) *Node {
	pos := p.cur().Span.Start
	obj := NewObject()
	for {
		p.skipSeparators()
		if topLevel {
			if p.at(TokenEOF) {
				break
			}
		} else {
			if p.at(TokenRBrace) {
				p.advance()
				break
			}
			if p.at(TokenEOF) {
				p.fail(p.cur().Span.Start, "unterminated object: missing '}'")
				break
			}
		}
		p.parseMember(obj)
	}
	return ObjectNode(pos, obj)
}

func (p *Parser) parseMember(obj *Object) {
	if p.at(TokenUnquotedString) && p.cur().Literal == "include" && p.looksLikeIncludeTarget(p.peekAt(1)) {
		p.parseInclude(obj)
		return
	}

	path, ok := p.parseKeyPath()
	if !ok {
		p.resync()
		return
	}

	switch {
	case p.at(TokenColon) || p.at(TokenEquals):
		p.advance()
		val := p.parseValuePosition()
		setPath(obj, path, val)
	case p.at(TokenPlusEquals):
		pos := p.cur().Span.Start
		p.advance()
		val := p.parseValuePosition()
		sub := Substitution(pos, strings.Join(path, "."), true)
		appended := Concat(pos, []*Node{sub, Array(pos, []*Node{val})})
		setPath(obj, path, appended)
	case p.at(TokenLBrace):
		val := p.parseObject()
		setPath(obj, path, val)
	default:
		errNode := p.fail(p.cur().Span.Start, "expected ':', '=', '+=' or '{' after key")
		setPath(obj, path, errNode)
		p.resync()
	}
}

// looksLikeIncludeTarget disambiguates the "include" directive keyword
// from a plain key literally named "include" (e.g. "include = 5"): the
// directive is only recognized when what follows could start one of its
// four forms, never when it's a member separator or '.'.
func (p *Parser) looksLikeIncludeTarget(next Token) bool {
	switch next.Kind {
	case TokenQuotedString:
		return true
	case TokenUnquotedString:
		switch next.Literal {
		case "required", "file", "url", "classpath":
			return true
		}
	}
	return false
}

// parseKeyPath reads one or more dot-separated segments (§4.1's path
// expression sugar). Each segment is whatever literal text a string token
// carries, quoted or not; a quoted segment may itself contain dots.
func (p *Parser) parseKeyPath() ([]string, bool) {
	var segs []string
	for {
		t := p.cur()
		switch t.Kind {
		case TokenUnquotedString, TokenQuotedString, TokenTripleQuotedString:
			segs = append(segs, t.Literal)
			p.advance()
		default:
			if len(segs) == 0 {
				p.fail(t.Span.Start, "expected a key")
				return nil, false
			}
		}
		if p.at(TokenDot) {
			p.advance()
			continue
		}
		break
	}
	return segs, true
}

// setPath installs val at path within obj, folding it with whatever is
// already there via MergeAt at every level the path passes through, which
// is what gives "a.b.c = 1" and deep merge (§4.3, §4.4) a single
// implementation.
func setPath(obj *Object, path []string, val *Node) {
	if len(path) == 1 {
		existing, _ := obj.Get(path[0])
		obj.Set(path[0], MergeAt(path, existing, val))
		return
	}

	key := path[0]
	child := NewObject()
	setPath(child, path[1:], val)
	childNode := ObjectNode(val.Pos, child)

	if existing, ok := obj.Get(key); ok {
		obj.Set(key, MergeAt([]string{key}, existing, childNode))
	} else {
		obj.Set(key, childNode)
	}
}

func (p *Parser) isValueStart() bool {
	switch p.cur().Kind {
	case TokenUnquotedString, TokenQuotedString, TokenTripleQuotedString,
		TokenLBrace, TokenLBracket, TokenDollarBrace, TokenDollarQBrace,
		TokenDot, TokenLParen, TokenRParen:
		return true
	default:
		return false
	}
}

// parseValuePosition parses one or more adjacent value atoms into a single
// Concat node (§4.1: "multiple adjacent tokens separated only by
// whitespace... produce a Concat node"), or returns the lone atom directly
// when there's only one.
func (p *Parser) parseValuePosition() *Node {
	pos := p.cur().Span.Start
	var parts []*Node
	var gaps []bool
	var prevEnd Position
	havePrev := false
	for p.isValueStart() {
		atomStart := p.cur().Span.Start
		gaps = append(gaps, havePrev && atomStart.Offset != prevEnd.Offset)
		parts = append(parts, p.parseValueAtom())
		prevEnd = p.tokens[p.pos-1].Span.End
		havePrev = true
	}
	if len(parts) == 0 {
		return p.fail(pos, "expected a value")
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ConcatWithGaps(pos, parts, gaps)
}

func (p *Parser) parseValueAtom() *Node {
	t := p.cur()
	switch t.Kind {
	case TokenLBrace:
		return p.parseObject()
	case TokenLBracket:
		return p.parseArray()
	case TokenDollarBrace, TokenDollarQBrace:
		return p.parseSubstitution()
	case TokenQuotedString, TokenTripleQuotedString:
		p.advance()
		return String(t.Span.Start, t.Literal)
	case TokenDot:
		p.advance()
		return String(t.Span.Start, ".")
	case TokenLParen:
		p.advance()
		return String(t.Span.Start, "(")
	case TokenRParen:
		p.advance()
		return String(t.Span.Start, ")")
	case TokenUnquotedString:
		p.advance()
		return classifyUnquoted(t.Span.Start, t.Literal)
	default:
		p.advance()
		return p.fail(t.Span.Start, "unexpected token "+t.Kind.String())
	}
}

func (p *Parser) parseSubstitution() *Node {
	t := p.cur()
	optional := t.Kind == TokenDollarQBrace
	pos := t.Span.Start
	p.advance()

	segs, ok := p.parseKeyPath()
	if !ok {
		return p.fail(pos, "expected substitution path")
	}
	if !p.at(TokenRBrace) {
		return p.fail(p.cur().Span.Start, "expected '}' to close substitution")
	}
	p.advance()
	return Substitution(pos, strings.Join(segs, "."), optional)
}

func (p *Parser) parseArray() *Node {
	pos := p.cur().Span.Start
	p.advance() // [
	var elems []*Node
	for {
		p.skipSeparators()
		if p.at(TokenRBracket) {
			p.advance()
			break
		}
		if p.at(TokenEOF) {
			p.fail(p.cur().Span.Start, "unterminated array: missing ']'")
			break
		}
		elems = append(elems, p.parseValuePosition())
	}
	return Array(pos, elems)
}

// classifyUnquoted recognizes true/false/null and numeric literals before
// falling back to a plain string, per §4.1.
func classifyUnquoted(pos Position, lit string) *Node {
	switch lit {
	case "true":
		return Bool(pos, true)
	case "false":
		return Bool(pos, false)
	case "null":
		return Null(pos)
	}
	if iv, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return Int(pos, iv)
	}
	if fv, err := strconv.ParseFloat(lit, 64); err == nil {
		return Float(pos, fv)
	}
	return String(pos, lit)
}

// parseInclude handles all four include forms plus the required(...)
// wrapper (§4.1, §4.2). It never performs I/O itself; ResolveInclude does.
func (p *Parser) parseInclude(obj *Object) {
	pos := p.cur().Span.Start
	p.advance() // 'include'

	required := false
	if p.at(TokenUnquotedString) && p.cur().Literal == "required" && p.peekAt(1).Kind == TokenLParen {
		required = true
		p.advance() // required
		p.advance() // (
	}

	kind, refTok, ok := p.parseIncludeRef()
	if required {
		if p.at(TokenRParen) {
			p.advance()
		} else {
			p.fail(p.cur().Span.Start, "expected ')' to close required(...)")
		}
	}
	if !ok {
		p.resync()
		return
	}

	p.spliceInclude(obj, pos, kind, refTok.Literal, required)
}

func (p *Parser) parseIncludeRef() (IncludeKind, Token, bool) {
	t := p.cur()
	if t.Kind == TokenUnquotedString && p.peekAt(1).Kind == TokenLParen {
		var kind IncludeKind
		switch t.Literal {
		case "file":
			kind = IncludeFile
		case "url":
			kind = IncludeURL
		case "classpath":
			kind = IncludeClasspath
		default:
			p.fail(t.Span.Start, "unknown include form "+t.Literal)
			return IncludeUnqualified, Token{}, false
		}
		p.advance() // word
		p.advance() // (
		strTok := p.cur()
		if strTok.Kind != TokenQuotedString {
			p.fail(strTok.Span.Start, "expected quoted string in include(...)")
			return kind, Token{}, false
		}
		p.advance()
		if p.at(TokenRParen) {
			p.advance()
		} else {
			p.fail(p.cur().Span.Start, "expected ')' to close "+t.Literal+"(...)")
			return kind, Token{}, false
		}
		return kind, strTok, true
	}
	if t.Kind == TokenQuotedString {
		p.advance()
		return IncludeUnqualified, t, true
	}
	p.fail(t.Span.Start, "expected an include target")
	return IncludeUnqualified, Token{}, false
}

// spliceInclude resolves and folds an include directive's result into obj,
// matching §4.2's "as if its members were declared in place of the include
// directive".
func (p *Parser) spliceInclude(obj *Object, pos Position, kind IncludeKind, ref string, required bool) {
	if p.host == nil {
		if required {
			p.recordIncludeFailure(obj, pos, &hocerr.IncludeError{Kind: hocerr.IncludeNotFound, Source: ref})
		}
		return
	}

	included, err := p.host.ResolveInclude(kind, ref, required)
	if err != nil {
		if incErr, ok := err.(*hocerr.IncludeError); ok && incErr.Kind == hocerr.IncludeNotFound && !required {
			return
		}
		p.recordIncludeFailure(obj, pos, err)
		return
	}
	if included == nil {
		return
	}
	mergeIncludeResult(obj, included)
}

func (p *Parser) recordIncludeFailure(obj *Object, pos Position, err error) {
	if p.mode == ModeStrict {
		p.errs = append(p.errs, err)
	}
	kind := hocerr.KindIncludeIO
	if ie, ok := err.(*hocerr.IncludeError); ok {
		kind = ie.ErrKind()
	}
	p.includeCount++
	obj.Set(syntheticIncludeKey(p.includeCount), Bad(pos, kind, err))
}

func mergeIncludeResult(obj *Object, included *Node) {
	if included.Kind != KindObject {
		return
	}
	for _, k := range included.Obj.Keys() {
		v, _ := included.Obj.Get(k)
		if existing, ok := obj.Get(k); ok {
			obj.Set(k, MergeAt([]string{k}, existing, v))
		} else {
			obj.Set(k, v)
		}
	}
}
