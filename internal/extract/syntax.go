package extract

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/golangsnmp/mibtree/internal/lexer"
	"github.com/golangsnmp/mibtree/mib"
)

// syntaxInfo is a parsed SYNTAX value: its source text with whitespace
// collapsed, plus any enumeration or range constraints.
type syntaxInfo struct {
	text   string
	enums  []mib.NamedNumber
	ranges []mib.Range
}

// parseSyntax parses a type reference with optional tag, named-number
// list and constraint:
//
//	[APPLICATION n] IMPLICIT Base { a(1), b(2) } (constraint)
//
// It returns false, consuming nothing, if the current token cannot start
// a type.
func (e *Extractor) parseSyntax() (syntaxInfo, bool) {
	startIdx := e.pos
	start := e.peek().Span.Start

	if e.check(lexer.TokLBracket) {
		if e.matchingBrace(e.pos) < 0 {
			return syntaxInfo{}, false
		}
		e.skipBalanced()
	}
	if e.check(lexer.TokKwImplicit) {
		e.advance()
	}

	switch e.peek().Kind {
	case lexer.TokKwOctet:
		e.advance()
		if e.check(lexer.TokKwString) {
			e.advance()
		}
	case lexer.TokKwObject:
		e.advance()
		if e.check(lexer.TokKwIdentifier) {
			e.advance()
		}
	case lexer.TokKwSequence:
		e.advance()
		if e.check(lexer.TokKwOf) {
			e.advance()
			if e.peek().Kind.IsIdentifier() {
				e.advance()
			}
		} else if e.check(lexer.TokLBrace) {
			e.skipBalanced()
		}
	case lexer.TokKwChoice:
		e.advance()
		if e.check(lexer.TokLBrace) {
			e.skipBalanced()
		}
	case lexer.TokKwInteger, lexer.TokKwBits:
		e.advance()
	case lexer.TokUppercaseIdent:
		e.advance()
		if e.check(lexer.TokDot) && e.peekNth(1).Kind == lexer.TokUppercaseIdent {
			e.advance()
			e.advance()
		}
	default:
		e.pos = startIdx
		return syntaxInfo{}, false
	}

	var info syntaxInfo
	if e.check(lexer.TokLBrace) {
		info.enums = e.parseNamedNumbers(e.skipBalanced())
	}
	if e.check(lexer.TokLParen) {
		info.ranges = e.parseConstraint(e.skipBalanced())
	}

	end := e.tokens[e.pos-1].Span.End
	info.text = collapseSpace(string(e.source[start:end]))
	return info, true
}

// parseNamedNumbers reads "a(1), b(2)" from the tokens inside braces.
// Malformed entries are dropped.
func (e *Extractor) parseNamedNumbers(inner []lexer.Token) []mib.NamedNumber {
	var out []mib.NamedNumber
	for i := 0; i+3 < len(inner); i++ {
		if !inner[i].Kind.IsIdentifier() || inner[i+1].Kind != lexer.TokLParen || inner[i+3].Kind != lexer.TokRParen {
			continue
		}
		v, ok := e.parseInt64(inner[i+2])
		if !ok {
			continue
		}
		out = append(out, mib.NamedNumber{Name: e.text(inner[i]), Value: v})
		i += 3
	}
	return out
}

// parseConstraint reads the tokens inside "( ... )": either a value
// range list "a..b | c" or "SIZE (a..b | c)".
func (e *Extractor) parseConstraint(inner []lexer.Token) []mib.Range {
	size := false
	if len(inner) > 0 && inner[0].Kind == lexer.TokKwSize {
		size = true
		inner = inner[1:]
		if len(inner) >= 2 && inner[0].Kind == lexer.TokLParen && inner[len(inner)-1].Kind == lexer.TokRParen {
			inner = inner[1 : len(inner)-1]
		}
	}

	var out []mib.Range
	var item []lexer.Token
	flush := func() {
		if r, ok := e.parseRangeItem(item, size); ok {
			out = append(out, r)
		}
		item = item[:0]
	}
	for _, tok := range inner {
		if tok.Kind == lexer.TokPipe {
			flush()
			continue
		}
		item = append(item, tok)
	}
	flush()
	return out
}

func (e *Extractor) parseRangeItem(item []lexer.Token, size bool) (mib.Range, bool) {
	switch {
	case len(item) == 1:
		v, ok := e.rangeBound(item[0], size)
		return mib.Range{Min: v, Max: v, Size: size}, ok
	case len(item) == 3 && item[1].Kind == lexer.TokDotDot:
		lo, ok1 := e.rangeBound(item[0], size)
		hi, ok2 := e.rangeBound(item[2], size)
		return mib.Range{Min: lo, Max: hi, Size: size}, ok1 && ok2
	}
	return mib.Range{}, false
}

func (e *Extractor) rangeBound(tok lexer.Token, size bool) (int64, bool) {
	if tok.Kind == lexer.TokUppercaseIdent {
		switch e.text(tok) {
		case "MIN":
			if size {
				return 0, true
			}
			return math.MinInt64, true
		case "MAX":
			return math.MaxInt64, true
		}
		return 0, false
	}
	return e.parseInt64(tok)
}

// parseInt64 converts a decimal, negative, hex or binary literal.
func (e *Extractor) parseInt64(tok lexer.Token) (int64, bool) {
	text := e.text(tok)
	switch tok.Kind {
	case lexer.TokNegativeNumber:
		v, err := strconv.ParseInt(text, 10, 64)
		return v, err == nil
	case lexer.TokNumber:
		return toInt64(strconv.ParseUint(text, 10, 64))
	case lexer.TokHexString:
		digits := text[1 : len(text)-2]
		if digits == "" {
			return 0, true
		}
		return toInt64(strconv.ParseUint(digits, 16, 64))
	case lexer.TokBinString:
		digits := text[1 : len(text)-2]
		if digits == "" {
			return 0, true
		}
		return toInt64(strconv.ParseUint(digits, 2, 64))
	}
	return 0, false
}

func toInt64(v uint64, err error) (int64, bool) {
	if err != nil {
		return 0, false
	}
	n, err := safecast.Conv[int64](v)
	return n, err == nil
}

// collapseSpace replaces each run of whitespace with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
