package types

import (
	"sort"
	"strings"
)

// SpanDiagnostic is a lexer or extractor finding positioned by byte span.
// The extractor converts it to a mib.Diagnostic with a line number once
// the module name is known.
type SpanDiagnostic struct {
	Code    string
	Span    Span
	Message string
}

// LineTable maps byte offsets to 1-based line numbers.
type LineTable []int

// BuildLineTable records the byte offset at which each line starts.
func BuildLineTable(source []byte) LineTable {
	table := LineTable{0}
	for i, b := range source {
		if b == '\n' {
			table = append(table, i+1)
		}
	}
	return table
}

// Line returns the 1-based line containing offset.
func (t LineTable) Line(offset ByteOffset) int {
	if len(t) == 0 {
		return 0
	}
	idx := sort.Search(len(t), func(i int) bool {
		return t[i] > int(offset)
	})
	return idx
}

// MatchGlob performs simple glob matching with * wildcard.
func MatchGlob(pattern, s string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
