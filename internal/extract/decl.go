package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/golangsnmp/mibtree/internal/lexer"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

var macroKinds = map[lexer.TokenKind]mib.Kind{
	lexer.TokKwObjectType:        mib.KindObjectType,
	lexer.TokKwModuleIdentity:    mib.KindModuleIdentity,
	lexer.TokKwObjectIdentity:    mib.KindObjectIdentity,
	lexer.TokKwNotificationType:  mib.KindNotification,
	lexer.TokKwObjectGroup:       mib.KindObjectGroup,
	lexer.TokKwNotificationGroup: mib.KindNotificationGroup,
	lexer.TokKwModuleCompliance:  mib.KindCompliance,
	lexer.TokKwAgentCapabilities: mib.KindCapabilities,
}

// parseDefinition dispatches on the first tokens of a definition.
func (e *Extractor) parseDefinition(rec *mib.Record) {
	first := e.peek().Kind
	second := e.peekNth(1).Kind
	third := e.peekNth(2).Kind

	e.Trace("definition",
		slog.Int("offset", int(e.peek().Span.Start)),
		slog.String("first", first.String()),
		slog.String("second", second.String()))

	switch {
	case first.IsIdentifier() && second == lexer.TokKwObject && third == lexer.TokKwIdentifier:
		e.parseValueAssignment(rec)

	case first.IsIdentifier() && second == lexer.TokKwTrapType:
		e.parseTrapType(rec)

	case first == lexer.TokUppercaseIdent && second == lexer.TokKwTextualConvention:
		e.parseTextualConvention(rec)

	case first.IsIdentifier() && macroKinds[second] != mib.KindUnknown:
		e.parseMacroInvocation(rec, macroKinds[second])

	case first == lexer.TokUppercaseIdent && second == lexer.TokColonColonEqual:
		if third == lexer.TokKwTextualConvention {
			e.parseTextualConvention(rec)
		} else {
			e.parseTypeAssignment(rec)
		}

	case (first == lexer.TokUppercaseIdent || first.IsMacroKeyword()) && second == lexer.TokKwMacro:
		// The lexer has already discarded the body; END follows MACRO.
		e.advance()
		e.advance()
		if e.check(lexer.TokKwEnd) {
			e.advance()
		}

	case first == lexer.TokKwExports:
		e.advance()
		if e.check(lexer.TokSemicolon) {
			e.advance()
		}

	case first == lexer.TokKwImports:
		e.parseImports(rec)

	default:
		tok := e.peek()
		e.diagAt(types.DiagSkippedDeclaration, tok.Span,
			fmt.Sprintf("unrecognized definition starting at %s %q", tok.Kind, e.text(tok)))
		e.recoverToDefinition()
	}
}

// atDefinitionStart reports whether the current tokens begin a
// definition the extractor recognizes.
func (e *Extractor) atDefinitionStart() bool {
	current := e.peek().Kind
	next := e.peekNth(1).Kind
	return (current.IsIdentifier() && next.IsMacroKeyword()) ||
		(current == lexer.TokUppercaseIdent && next == lexer.TokColonColonEqual) ||
		(current == lexer.TokUppercaseIdent && next == lexer.TokKwMacro) ||
		(current.IsMacroKeyword() && next == lexer.TokKwMacro) ||
		(current.IsIdentifier() && next == lexer.TokKwObject &&
			e.peekNth(2).Kind == lexer.TokKwIdentifier)
}

// recoverToDefinition skips tokens until the start of a new definition
// or END.
func (e *Extractor) recoverToDefinition() {
	e.advance()
	for !e.isEOF() && !e.check(lexer.TokKwEnd) && !e.atDefinitionStart() {
		e.advance()
	}
}

// parseValueAssignment parses: name OBJECT IDENTIFIER ::= { ... }
func (e *Extractor) parseValueAssignment(rec *mib.Record) {
	nameTok := e.advance()
	e.advance() // OBJECT
	e.advance() // IDENTIFIER
	if !e.check(lexer.TokColonColonEqual) {
		e.diagAt(types.DiagSkippedDeclaration, nameTok.Span,
			fmt.Sprintf("%s: expected ::= after OBJECT IDENTIFIER", e.text(nameTok)))
		e.recoverToDefinition()
		return
	}
	e.advance()

	decl := mib.Declaration{
		Name: e.text(nameTok),
		Kind: mib.KindIdentifier,
		Line: e.line(nameTok),
	}
	if !e.parseOidValue(rec, &decl) {
		return
	}
	rec.Declarations = append(rec.Declarations, decl)
}

// clauses collects the clause values of one macro invocation. The first
// occurrence of each clause wins; later ones belong to nested parts such
// as compliance refinements or capability variations.
type clauses struct {
	syntax      *syntaxInfo
	access      string
	status      string
	description string
	displayHint string
	enterprise  string
}

// parseMacroInvocation parses: name MACRO-KEYWORD clauses ::= { ... }
func (e *Extractor) parseMacroInvocation(rec *mib.Record, kind mib.Kind) {
	nameTok := e.advance()
	e.advance() // macro keyword

	var c clauses
	if !e.scanClauses(&c) {
		e.diagAt(types.DiagSkippedDeclaration, nameTok.Span,
			fmt.Sprintf("%s %s has no ::= value", e.text(nameTok), kind))
		return
	}
	e.advance() // ::=

	decl := mib.Declaration{
		Name:        e.text(nameTok),
		Kind:        kind,
		Status:      c.status,
		Description: c.description,
		Line:        e.line(nameTok),
	}
	if kind == mib.KindObjectType {
		decl.Access = c.access
		if c.syntax != nil {
			decl.Syntax = c.syntax.text
		}
	}
	if !e.parseOidValue(rec, &decl) {
		return
	}
	rec.Declarations = append(rec.Declarations, decl)
}

// parseTrapType parses an SMIv1 TRAP-TYPE. The trap is placed at
// { enterprise 0 n }, the SNMPv2 mapping of an enterprise-specific trap.
func (e *Extractor) parseTrapType(rec *mib.Record) {
	nameTok := e.advance()
	e.advance() // TRAP-TYPE

	var c clauses
	if !e.scanClauses(&c) {
		e.diagAt(types.DiagSkippedDeclaration, nameTok.Span,
			fmt.Sprintf("%s TRAP-TYPE has no ::= value", e.text(nameTok)))
		return
	}
	e.advance() // ::=

	if !e.check(lexer.TokNumber) {
		e.diagAt(types.DiagMalformedOid, e.peek().Span,
			fmt.Sprintf("%s TRAP-TYPE value must be a number", e.text(nameTok)))
		e.recoverToDefinition()
		return
	}
	numTok := e.advance()
	if c.enterprise == "" {
		e.diagAt(types.DiagSkippedDeclaration, nameTok.Span,
			fmt.Sprintf("%s TRAP-TYPE has no ENTERPRISE", e.text(nameTok)))
		return
	}
	n, ok := e.parseArc(numTok)
	if !ok {
		return
	}
	parent := c.enterprise
	if mod, name, qualified := strings.Cut(parent, "."); qualified {
		e.bindQualified(rec, mod, name, numTok)
		parent = name
	}
	rec.Declarations = append(rec.Declarations, mib.Declaration{
		Name:        e.text(nameTok),
		Parent:      parent,
		Suffix:      []uint32{0, n},
		Kind:        mib.KindNotification,
		Status:      c.status,
		Description: c.description,
		Line:        e.line(nameTok),
	})
}

// scanClauses walks a macro body up to the "::=" that ends it and
// captures the clauses it knows. It returns false, leaving the position
// at the offending token, when the body runs into END, EOF or the start
// of another definition first.
func (e *Extractor) scanClauses(c *clauses) bool {
	depth := 0
	for {
		tok := e.peek()
		switch {
		case tok.Kind == lexer.TokEOF || tok.Kind == lexer.TokKwEnd:
			return false
		case depth == 0 && tok.Kind == lexer.TokColonColonEqual:
			return true
		case depth == 0 && e.atDefinitionStart():
			return false
		case tok.Kind == lexer.TokLBrace || tok.Kind == lexer.TokLParen:
			depth++
			e.advance()
		case tok.Kind == lexer.TokRBrace || tok.Kind == lexer.TokRParen:
			if depth > 0 {
				depth--
			}
			e.advance()
		case depth == 0 && tok.Kind.IsClauseKeyword():
			e.parseClause(c)
		default:
			e.advance()
		}
	}
}

// parseClause consumes one clause keyword and, when it is one the
// extractor keeps, its value.
func (e *Extractor) parseClause(c *clauses) {
	kw := e.advance()
	switch kw.Kind {
	case lexer.TokKwSyntax:
		if c.syntax != nil {
			return
		}
		if info, ok := e.parseSyntax(); ok {
			c.syntax = &info
		}
	case lexer.TokKwMaxAccess, lexer.TokKwAccess:
		if e.peek().Kind.IsIdentifier() {
			v := e.text(e.advance())
			if c.access == "" {
				c.access = v
			}
		}
	case lexer.TokKwStatus:
		if e.peek().Kind.IsIdentifier() {
			v := e.text(e.advance())
			if c.status == "" {
				c.status = v
			}
		}
	case lexer.TokKwDescription:
		if e.check(lexer.TokQuotedString) {
			v := unquote(e.text(e.advance()))
			if c.description == "" {
				c.description = v
			}
		}
	case lexer.TokKwDisplayHint:
		if e.check(lexer.TokQuotedString) {
			v := unquote(e.text(e.advance()))
			if c.displayHint == "" {
				c.displayHint = v
			}
		}
	case lexer.TokKwEnterprise:
		if !e.peek().Kind.IsIdentifier() {
			return
		}
		v := e.text(e.advance())
		if e.check(lexer.TokDot) && e.peekNth(1).Kind.IsIdentifier() {
			e.advance()
			v += "." + e.text(e.advance())
		}
		if c.enterprise == "" {
			c.enterprise = v
		}
	}
}

// parseTextualConvention parses both "Name ::= TEXTUAL-CONVENTION ..." and
// the rarer form without "::=". The convention ends with its SYNTAX.
func (e *Extractor) parseTextualConvention(rec *mib.Record) {
	nameTok := e.advance()
	if e.check(lexer.TokColonColonEqual) {
		e.advance()
	}
	e.advance() // TEXTUAL-CONVENTION

	var c clauses
	for c.syntax == nil {
		tok := e.peek()
		if tok.Kind == lexer.TokEOF || tok.Kind == lexer.TokKwEnd || e.atDefinitionStart() {
			e.diagAt(types.DiagSkippedDeclaration, nameTok.Span,
				fmt.Sprintf("textual convention %s has no SYNTAX", e.text(nameTok)))
			return
		}
		if tok.Kind == lexer.TokKwSyntax {
			e.parseClause(&c)
			if c.syntax == nil {
				e.diagAt(types.DiagUnsupportedTypeForm, tok.Span,
					fmt.Sprintf("textual convention %s has unreadable SYNTAX", e.text(nameTok)))
				e.recoverToDefinition()
				return
			}
			continue
		}
		if tok.Kind.IsClauseKeyword() {
			e.parseClause(&c)
			continue
		}
		e.advance()
	}

	rec.Types = append(rec.Types, mib.TypeAlias{
		Name:              e.text(nameTok),
		Syntax:            c.syntax.text,
		Enums:             c.syntax.enums,
		Ranges:            c.syntax.ranges,
		DisplayHint:       c.displayHint,
		Status:            c.status,
		Description:       c.description,
		TextualConvention: true,
	})
}

// parseTypeAssignment parses: Name ::= Syntax. SEQUENCE and CHOICE
// bodies describe table rows and are not kept as aliases.
func (e *Extractor) parseTypeAssignment(rec *mib.Record) {
	nameTok := e.advance()
	e.advance() // ::=

	if (e.check(lexer.TokKwSequence) || e.check(lexer.TokKwChoice)) && e.peekNth(1).Kind == lexer.TokLBrace {
		e.advance()
		e.skipBalanced()
		return
	}

	info, ok := e.parseSyntax()
	if !ok {
		e.diagAt(types.DiagUnsupportedTypeForm, nameTok.Span,
			fmt.Sprintf("type %s has an unsupported definition", e.text(nameTok)))
		e.recoverToDefinition()
		return
	}
	rec.Types = append(rec.Types, mib.TypeAlias{
		Name:   e.text(nameTok),
		Syntax: info.text,
		Enums:  info.enums,
		Ranges: info.ranges,
	})
}

// unquote strips the surrounding double quotes of a string literal and
// trims surrounding whitespace.
func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}
