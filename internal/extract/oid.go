package extract

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/golangsnmp/mibtree/internal/lexer"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// parseOidValue parses "{ parent arc... }" into decl.Parent and
// decl.Suffix. Components are handled as follows:
//
//	name        parent reference; a name after numbers restarts the value
//	Mod.name    parent reference with an implicit import of name from Mod
//	n           arc
//	name(n)     arc; the label is dropped
//	Mod.name(n) arc
//
// A value with no parent name is anchored at the top of the tree. It
// returns false, with a diagnostic, when the value cannot be used.
func (e *Extractor) parseOidValue(rec *mib.Record, decl *mib.Declaration) bool {
	if !e.check(lexer.TokLBrace) {
		e.diagAt(types.DiagMalformedOid, e.peek().Span,
			fmt.Sprintf("%s: expected { after ::=", decl.Name))
		e.recoverToDefinition()
		return false
	}
	open := e.advance()

	var (
		parent    string
		qualifier string
		suffix    []uint32
		valid     = true
	)
	for !e.check(lexer.TokRBrace) {
		tok := e.peek()
		switch {
		case tok.Kind == lexer.TokEOF || tok.Kind == lexer.TokKwEnd:
			e.diagAt(types.DiagMalformedOid, open.Span,
				fmt.Sprintf("%s: unterminated OID value", decl.Name))
			return false

		case tok.Kind == lexer.TokNumber:
			e.advance()
			v, ok := e.parseArc(tok)
			valid = valid && ok
			suffix = append(suffix, v)

		case tok.Kind.IsIdentifier():
			e.advance()
			name, mod := e.text(tok), ""
			if e.check(lexer.TokDot) && e.peekNth(1).Kind.IsIdentifier() {
				e.advance()
				mod, name = name, e.text(e.advance())
			}
			if e.check(lexer.TokLParen) {
				v, ok := e.parseNamedArc(decl.Name)
				if !ok {
					e.skipOidValue()
					return false
				}
				valid = valid && v.ok
				suffix = append(suffix, v.arc)
				continue
			}
			parent, qualifier = name, mod
			suffix = suffix[:0]

		default:
			e.diagAt(types.DiagMalformedOid, tok.Span,
				fmt.Sprintf("%s: unexpected %s in OID value", decl.Name, tok.Kind))
			e.skipOidValue()
			return false
		}
	}
	e.advance() // }

	if !valid {
		return false
	}
	if len(suffix) == 0 {
		e.diagAt(types.DiagMalformedOid, open.Span,
			fmt.Sprintf("%s: OID value has no numeric component", decl.Name))
		return false
	}
	if qualifier != "" {
		e.bindQualified(rec, qualifier, parent, open)
	}
	decl.Parent = parent
	decl.Suffix = suffix
	return true
}

type namedArc struct {
	arc uint32
	ok  bool
}

// parseNamedArc parses the "(n)" following a label.
func (e *Extractor) parseNamedArc(declName string) (namedArc, bool) {
	e.advance() // (
	numTok := e.peek()
	if numTok.Kind != lexer.TokNumber || e.peekNth(1).Kind != lexer.TokRParen {
		e.diagAt(types.DiagMalformedOid, numTok.Span,
			fmt.Sprintf("%s: expected number in named OID component", declName))
		return namedArc{}, false
	}
	e.advance()
	e.advance() // )
	v, ok := e.parseArc(numTok)
	return namedArc{arc: v, ok: ok}, true
}

// skipOidValue skips to just past the closing brace of the current OID
// value.
func (e *Extractor) skipOidValue() {
	for !e.isEOF() && !e.check(lexer.TokKwEnd) {
		if e.advance().Kind == lexer.TokRBrace {
			return
		}
	}
}

// parseArc converts a number token to an arc, rejecting values that do
// not fit in 32 bits.
func (e *Extractor) parseArc(tok lexer.Token) (uint32, bool) {
	text := e.text(tok)
	v, err := strconv.ParseUint(text, 10, 64)
	if err == nil {
		var arc uint32
		if arc, err = safecast.Conv[uint32](v); err == nil {
			return arc, true
		}
	}
	e.diagAt(types.DiagArcOverflow, tok.Span,
		fmt.Sprintf("OID arc %s does not fit in 32 bits", text))
	return 0, false
}

// bindQualified records an implicit import for a "Mod.name" reference.
// An explicit import of the same symbol from another module wins.
func (e *Extractor) bindQualified(rec *mib.Record, mod, name string, at lexer.Token) {
	prev, ok := rec.Imports[name]
	switch {
	case !ok:
		rec.Imports[name] = mod
	case prev != mod:
		e.diagAt(types.DiagQualifiedParent, at.Span,
			fmt.Sprintf("%s.%s conflicts with import of %s from %s", mod, name, name, prev))
	}
}
