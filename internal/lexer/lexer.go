package lexer

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/golangsnmp/mibtree/internal/types"
)

// skipMode says what the scanner discards before the next token.
type skipMode int

const (
	skipNone    skipMode = iota
	skipMacro            // up to the END closing a MACRO definition
	skipExports          // up to the ';' closing an EXPORTS clause
)

var punctuation = map[byte]TokenKind{
	'[': TokLBracket,
	']': TokRBracket,
	'{': TokLBrace,
	'}': TokRBrace,
	'(': TokLParen,
	')': TokRParen,
	';': TokSemicolon,
	',': TokComma,
	'|': TokPipe,
}

// Lexer turns MIB source text into a token stream. Comments never
// produce tokens; MACRO bodies and EXPORTS lists are dropped whole.
type Lexer struct {
	src   []byte
	pos   int
	skip  skipMode
	diags []types.SpanDiagnostic
	types.Logger
}

// New returns a Lexer over source.
func New(source []byte, logger *slog.Logger) *Lexer {
	return &Lexer{src: source, Logger: types.Logger{L: logger}}
}

// Tokenize scans the whole source. The stream always ends with TokEOF.
func (l *Lexer) Tokenize() ([]Token, []types.SpanDiagnostic) {
	tokens := make([]Token, 0, max(len(l.src)/6, 64))
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenized",
		slog.Int("bytes", len(l.src)),
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(l.diags)))
	return tokens, l.diags
}

// Next returns the next token, TokEOF once the source is exhausted.
func (l *Lexer) Next() Token {
	switch l.skip {
	case skipMacro:
		l.skip = skipNone
		return l.afterMacro()
	case skipExports:
		l.skip = skipNone
		return l.afterExports()
	}
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			return l.emit(TokEOF, l.pos)
		}
		if tok, ok := l.scan(); ok {
			return tok
		}
	}
}

// scan reads one token at the cursor. It reports false after skipping
// an unexpected character, together with the rest of its line.
func (l *Lexer) scan() (Token, bool) {
	start := l.pos
	c := l.src[start]

	if kind, ok := punctuation[c]; ok {
		l.pos++
		return l.emit(kind, start), true
	}
	switch {
	case l.has("::="):
		l.pos += 3
		return l.emit(TokColonColonEqual, start), true
	case c == ':':
		l.pos++
		return l.emit(TokColon, start), true
	case l.has(".."):
		l.pos += 2
		return l.emit(TokDotDot, start), true
	case c == '.':
		l.pos++
		return l.emit(TokDot, start), true
	case c == '-' && isDigit(l.at(1)):
		l.pos++
		l.eat(isDigit)
		return l.emit(TokNegativeNumber, start), true
	case c == '-':
		l.pos++
		return l.emit(TokMinus, start), true
	case isDigit(c):
		l.eat(isDigit)
		return l.emit(TokNumber, start), true
	case c == '"':
		return l.quoted(), true
	case c == '\'':
		return l.binary(), true
	case isAlpha(c):
		return l.word(), true
	}

	l.pos++
	l.fail(start, fmt.Sprintf("unexpected character: 0x%02x", c))
	for l.pos < len(l.src) && !isNewline(l.src[l.pos]) {
		l.pos++
	}
	return Token{}, false
}

// skipTrivia moves past whitespace and "--" comments. A comment runs to
// the end of the line or to the next "--"; a run of dashes closing a
// line is taken whole.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch {
		case isSpace(l.src[l.pos]):
			l.pos++
		case l.has("--"):
			l.pos += 2
			l.comment()
		default:
			return
		}
	}
}

func (l *Lexer) comment() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isNewline(c) {
			return
		}
		if !l.has("--") {
			l.pos++
			continue
		}
		run := l.pos
		for run < len(l.src) && l.src[run] == '-' {
			run++
		}
		if run == len(l.src) || isNewline(l.src[run]) {
			l.pos = run
		} else {
			l.pos += 2
		}
		return
	}
}

func (l *Lexer) word() Token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '-' && l.at(1) == '-' {
			break
		}
		if !isAlphanumeric(c) && c != '_' && c != '-' {
			break
		}
		l.pos++
	}

	kind, ok := LookupKeyword(string(l.src[start:l.pos]))
	switch {
	case !ok && isUpperAlpha(l.src[start]):
		kind = TokUppercaseIdent
	case !ok:
		kind = TokLowercaseIdent
	case kind == TokKwMacro:
		l.skip = skipMacro
	case kind == TokKwExports:
		l.skip = skipExports
	}
	return l.emit(kind, start)
}

func (l *Lexer) quoted() Token {
	start := l.pos
	end := bytes.IndexByte(l.src[start+1:], '"')
	if end < 0 {
		l.pos = len(l.src)
		l.fail(start, "unterminated string literal")
		return l.emit(TokQuotedString, start)
	}
	l.pos = start + 1 + end + 1
	return l.emit(TokQuotedString, start)
}

// binary scans '...'H and '...'B literals.
func (l *Lexer) binary() Token {
	start := l.pos
	end := bytes.IndexByte(l.src[start+1:], '\'')
	if end < 0 {
		l.pos = len(l.src)
		l.fail(start, "unterminated hex/binary string")
		return l.emit(TokError, start)
	}
	l.pos = start + 1 + end + 1

	kind := TokError
	switch l.at(0) {
	case 'H', 'h':
		kind = TokHexString
	case 'B', 'b':
		kind = TokBinString
	}
	if kind == TokError {
		l.fail(start, "expected 'H' or 'B' suffix for hex/binary string")
		return l.emit(TokError, start)
	}
	l.pos++
	return l.emit(kind, start)
}

// afterMacro drops a MACRO body and returns the END token closing it.
// Quoted strings and comments inside the body may contain END.
func (l *Lexer) afterMacro() Token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case l.has("--"):
			l.pos += 2
			l.comment()
		case c == '"':
			if end := bytes.IndexByte(l.src[l.pos+1:], '"'); end >= 0 {
				l.pos += end + 2
			} else {
				l.pos = len(l.src)
			}
		case l.has("END") && l.boundaryBefore() && l.boundaryAfter(3):
			l.Trace("macro body skipped", slog.Int("from", start), slog.Int("to", l.pos))
			at := l.pos
			l.pos += 3
			return l.emit(TokKwEnd, at)
		default:
			l.pos++
		}
	}
	return l.emit(TokEOF, l.pos)
}

// afterExports drops an EXPORTS list and returns its terminating ';'.
func (l *Lexer) afterExports() Token {
	end := bytes.IndexByte(l.src[l.pos:], ';')
	if end < 0 {
		l.pos = len(l.src)
		return l.emit(TokEOF, l.pos)
	}
	at := l.pos + end
	l.pos = at + 1
	return l.emit(TokSemicolon, at)
}

func (l *Lexer) boundaryBefore() bool {
	if l.pos == 0 {
		return true
	}
	prev := l.src[l.pos-1]
	return !isAlphanumeric(prev) && prev != '-' && prev != '_'
}

func (l *Lexer) boundaryAfter(n int) bool {
	c := l.at(n)
	if c == '-' {
		return l.at(n+1) == '-'
	}
	return !isAlphanumeric(c)
}

func (l *Lexer) emit(kind TokenKind, start int) Token {
	tok := Token{Kind: kind, Span: types.NewSpan(types.ByteOffset(start), types.ByteOffset(l.pos))}
	if l.TraceEnabled() {
		l.Trace("token", slog.String("kind", kind.String()), slog.Int("start", start), slog.Int("end", l.pos))
	}
	return tok
}

func (l *Lexer) fail(start int, msg string) {
	l.diags = append(l.diags, types.SpanDiagnostic{
		Code:    types.DiagLexError,
		Span:    types.NewSpan(types.ByteOffset(start), types.ByteOffset(l.pos)),
		Message: msg,
	})
}

// at returns the byte n past the cursor, or 0 past the end.
func (l *Lexer) at(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) has(s string) bool {
	return bytes.HasPrefix(l.src[l.pos:], []byte(s))
}

func (l *Lexer) eat(pred func(byte) bool) {
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.pos++
	}
}

func isDigit(b byte) bool        { return b >= '0' && b <= '9' }
func isUpperAlpha(b byte) bool   { return b >= 'A' && b <= 'Z' }
func isAlpha(b byte) bool        { return isUpperAlpha(b) || (b >= 'a' && b <= 'z') }
func isAlphanumeric(b byte) bool { return isAlpha(b) || isDigit(b) }
func isNewline(b byte) bool      { return b == '\n' || b == '\r' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\f' || isNewline(b)
}
