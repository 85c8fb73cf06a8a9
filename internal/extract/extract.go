// Package extract pulls unresolved module records out of MIB source text.
//
// The extractor is structural and best-effort: it recognizes module
// headers, IMPORTS, OID value assignments, macro invocations and type
// assignments, and skips anything it cannot make sense of, leaving a
// diagnostic behind. It never fails and never resolves names.
package extract

import (
	"fmt"
	"log/slog"

	"github.com/golangsnmp/mibtree/internal/lexer"
	"github.com/golangsnmp/mibtree/internal/types"
	"github.com/golangsnmp/mibtree/mib"
)

// UnknownModule is the module name used when no header is found.
const UnknownModule = "UNKNOWN"

// Extractor walks the token stream of one source text.
type Extractor struct {
	source   []byte
	file     string
	tokens   []lexer.Token
	pos      int
	lexDiags []types.SpanDiagnostic
	diags    []types.SpanDiagnostic
	lines    types.LineTable
	eofToken lexer.Token
	types.Logger
}

// New tokenizes source and returns an Extractor for it. file is recorded
// as the source file of every record. Pass nil for logger to disable
// logging.
func New(source []byte, file string, logger *slog.Logger) *Extractor {
	lex := lexer.New(source, types.Component(logger, "lexer"))
	tokens, lexDiags := lex.Tokenize()
	eofSpan := types.NewSpan(types.ByteOffset(len(source)), types.ByteOffset(len(source)))
	return &Extractor{
		source:   source,
		file:     file,
		tokens:   tokens,
		lexDiags: lexDiags,
		lines:    types.BuildLineTable(source),
		eofToken: lexer.NewToken(lexer.TokEOF, eofSpan),
		Logger:   types.Logger{L: logger},
	}
}

// Extract returns the record of the first module in source, or an
// UNKNOWN record holding whatever declarations were found when the
// source has no module header.
func Extract(source []byte, file string, logger *slog.Logger) mib.Record {
	return New(source, file, logger).Next()
}

// ExtractAll returns one record per module in source. It always returns
// at least one record.
func ExtractAll(source []byte, file string, logger *slog.Logger) []mib.Record {
	return New(source, file, logger).All()
}

// All extracts every remaining module.
func (e *Extractor) All() []mib.Record {
	records := []mib.Record{e.Next()}
	for e.hasHeaderAhead() {
		records = append(records, e.Next())
	}
	return records
}

// Next extracts the next module. At end of input it returns an empty
// UNKNOWN record.
func (e *Extractor) Next() mib.Record {
	e.diags = nil
	startOffset := e.peek().Span.Start
	if e.pos == 0 {
		startOffset = 0
	}

	rec := mib.Record{
		SourceFile: e.file,
		Imports:    make(map[string]string),
	}

	name, ok := e.parseHeader()
	if ok {
		rec.Name = name
	} else {
		rec.Name = UnknownModule
		e.diagAt(types.DiagMissingHeader, e.peek().Span, "no module header found")
	}
	e.Log(slog.LevelDebug, "extracting module",
		slog.String("module", rec.Name),
		slog.String("file", e.file))

	if e.check(lexer.TokKwImports) {
		e.parseImports(&rec)
	}

	for !e.isEOF() && !e.check(lexer.TokKwEnd) {
		if ok && e.atHeader() {
			break
		}
		start := e.pos
		e.parseDefinition(&rec)
		if e.pos == start {
			e.advance()
		}
	}

	if e.check(lexer.TokKwEnd) {
		e.advance()
	} else if ok {
		e.diagAt(types.DiagUnterminatedModule, e.peek().Span,
			fmt.Sprintf("module %s has no END", rec.Name))
	}

	endOffset := e.peek().Span.Start
	if e.isEOF() {
		endOffset = types.ByteOffset(len(e.source))
	}
	rec.Diagnostics = e.convertDiagnostics(rec.Name, startOffset, endOffset)
	if len(rec.Imports) == 0 {
		rec.Imports = nil
	}

	e.Log(slog.LevelDebug, "module extracted",
		slog.String("module", rec.Name),
		slog.Int("declarations", len(rec.Declarations)),
		slog.Int("types", len(rec.Types)),
		slog.Int("imports", len(rec.Imports)),
		slog.Int("diagnostics", len(rec.Diagnostics)))
	return rec
}

// parseHeader consumes "Name [{ oid }] DEFINITIONS ::= BEGIN". Tokens
// before the first header are skipped. When no header exists nothing is
// consumed.
func (e *Extractor) parseHeader() (string, bool) {
	for i := e.pos; i < len(e.tokens); i++ {
		if e.tokens[i].Kind != lexer.TokKwDefinitions {
			continue
		}
		nameIdx := e.headerNameIndex(i)
		if nameIdx < 0 {
			continue
		}
		name := e.text(e.tokens[nameIdx])
		e.pos = i + 1
		if e.check(lexer.TokColonColonEqual) {
			e.advance()
		}
		if e.check(lexer.TokKwBegin) {
			e.advance()
		}
		return name, true
	}
	return "", false
}

// headerNameIndex returns the index of the module name for the
// DEFINITIONS token at defIdx, or -1 if the preceding tokens do not form
// a header.
func (e *Extractor) headerNameIndex(defIdx int) int {
	i := defIdx - 1
	if i >= e.pos && e.tokens[i].Kind == lexer.TokRBrace {
		depth := 0
		for ; i >= e.pos; i-- {
			switch e.tokens[i].Kind {
			case lexer.TokRBrace:
				depth++
			case lexer.TokLBrace:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		i--
	}
	if i < e.pos || e.tokens[i].Kind != lexer.TokUppercaseIdent {
		return -1
	}
	return i
}

// atHeader reports whether the current token starts a module header.
func (e *Extractor) atHeader() bool {
	return e.peek().Kind == lexer.TokUppercaseIdent &&
		(e.peekNth(1).Kind == lexer.TokKwDefinitions || e.peekNth(1).Kind == lexer.TokLBrace && e.braceThenDefinitions(e.pos+1))
}

func (e *Extractor) braceThenDefinitions(idx int) bool {
	end := e.matchingBrace(idx)
	return end >= 0 && end+1 < len(e.tokens) && e.tokens[end+1].Kind == lexer.TokKwDefinitions
}

// hasHeaderAhead reports whether another module header follows.
func (e *Extractor) hasHeaderAhead() bool {
	for i := e.pos; i < len(e.tokens); i++ {
		if e.tokens[i].Kind == lexer.TokKwDefinitions && e.headerNameIndex(i) >= 0 {
			return true
		}
	}
	return false
}

// parseImports parses: IMPORTS sym, sym FROM Module [{ oid }] ... ;
func (e *Extractor) parseImports(rec *mib.Record) {
	start := e.advance() // IMPORTS
	var pending []lexer.Token

	for {
		tok := e.peek()
		switch {
		case tok.Kind == lexer.TokSemicolon:
			e.advance()
			if len(pending) > 0 {
				e.diagAt(types.DiagMalformedImports, pending[0].Span, "imported symbols without FROM")
			}
			return
		case tok.Kind == lexer.TokEOF || tok.Kind == lexer.TokKwEnd:
			e.diagAt(types.DiagMalformedImports, start.Span, "unterminated IMPORTS")
			return
		case tok.Kind == lexer.TokKwFrom:
			e.advance()
			if !e.peek().Kind.IsIdentifier() {
				e.diagAt(types.DiagMalformedImports, e.peek().Span, "expected module name after FROM")
				e.recoverImports()
				return
			}
			from := e.text(e.advance())
			if e.check(lexer.TokLBrace) {
				e.skipBalanced()
			}
			for _, sym := range pending {
				name := e.text(sym)
				if prev, dup := rec.Imports[name]; dup && prev != from {
					e.diagAt(types.DiagConflictingImport, sym.Span,
						fmt.Sprintf("%s imported from both %s and %s, keeping %s", name, prev, from, prev))
					continue
				}
				rec.Imports[name] = from
			}
			pending = pending[:0]
		case tok.Kind == lexer.TokComma:
			e.advance()
		case tok.Kind.IsIdentifier() || tok.Kind.IsKeyword():
			pending = append(pending, e.advance())
		default:
			e.diagAt(types.DiagMalformedImports, tok.Span,
				fmt.Sprintf("unexpected %s in IMPORTS", tok.Kind))
			e.recoverImports()
			return
		}
	}
}

// recoverImports skips to the semicolon ending IMPORTS, or stops at the
// first definition if there is none.
func (e *Extractor) recoverImports() {
	for !e.isEOF() && !e.check(lexer.TokKwEnd) {
		if e.check(lexer.TokSemicolon) {
			e.advance()
			return
		}
		if e.atDefinitionStart() {
			return
		}
		e.advance()
	}
}

func (e *Extractor) convertDiagnostics(module string, start, end types.ByteOffset) []mib.Diagnostic {
	var out []mib.Diagnostic
	add := func(d types.SpanDiagnostic) {
		out = append(out, mib.Diagnostic{
			Severity: severityFor(d.Code),
			Code:     d.Code,
			Message:  d.Message,
			Module:   module,
			File:     e.file,
			Line:     e.lines.Line(d.Span.Start),
		})
	}
	for _, d := range e.lexDiags {
		if d.Span.Start >= start && d.Span.Start < end {
			add(d)
		}
	}
	for _, d := range e.diags {
		add(d)
	}
	return out
}

func severityFor(code string) mib.Severity {
	switch code {
	case types.DiagLexError, types.DiagArcOverflow, types.DiagMissingHeader:
		return mib.SeverityError
	case types.DiagQualifiedParent:
		return mib.SeverityInfo
	default:
		return mib.SeverityWarning
	}
}

func (e *Extractor) diagAt(code string, span types.Span, message string) {
	e.diags = append(e.diags, types.SpanDiagnostic{Code: code, Span: span, Message: message})
	e.Log(slog.LevelDebug, "extract diagnostic",
		slog.String("code", code),
		slog.String("message", message),
		slog.Int("line", e.lines.Line(span.Start)))
}

func (e *Extractor) isEOF() bool {
	return e.peek().Kind == lexer.TokEOF
}

func (e *Extractor) peek() lexer.Token {
	return e.peekNth(0)
}

func (e *Extractor) peekNth(n int) lexer.Token {
	if e.pos+n < len(e.tokens) {
		return e.tokens[e.pos+n]
	}
	return e.eofToken
}

func (e *Extractor) advance() lexer.Token {
	tok := e.peek()
	if e.pos < len(e.tokens) {
		e.pos++
	}
	return tok
}

func (e *Extractor) check(kind lexer.TokenKind) bool {
	return e.peek().Kind == kind
}

func (e *Extractor) text(tok lexer.Token) string {
	return tok.Text(e.source)
}

func (e *Extractor) line(tok lexer.Token) int {
	return e.lines.Line(tok.Span.Start)
}

// matchingBrace returns the index of the token closing the brace or
// parenthesis at idx, or -1 if it is never closed.
func (e *Extractor) matchingBrace(idx int) int {
	open := e.tokens[idx].Kind
	var closeKind lexer.TokenKind
	switch open {
	case lexer.TokLBrace:
		closeKind = lexer.TokRBrace
	case lexer.TokLParen:
		closeKind = lexer.TokRParen
	case lexer.TokLBracket:
		closeKind = lexer.TokRBracket
	default:
		return -1
	}
	depth := 0
	for i := idx; i < len(e.tokens); i++ {
		switch e.tokens[i].Kind {
		case open:
			depth++
		case closeKind:
			depth--
			if depth == 0 {
				return i
			}
		case lexer.TokKwEnd, lexer.TokEOF:
			return -1
		}
	}
	return -1
}

// skipBalanced consumes the bracketed group starting at the current
// token and returns the tokens inside it. An unclosed group is consumed
// up to END or EOF.
func (e *Extractor) skipBalanced() []lexer.Token {
	end := e.matchingBrace(e.pos)
	if end < 0 {
		for !e.isEOF() && !e.check(lexer.TokKwEnd) {
			e.advance()
		}
		return nil
	}
	inner := e.tokens[e.pos+1 : end]
	e.pos = end + 1
	return inner
}
