package lexer

// keywords maps reserved words to their kinds. The spelling of each
// keyword is its entry in tokenKindNames.
var keywords = func() map[string]TokenKind {
	m := make(map[string]TokenKind, tokKindCount-TokKwDefinitions)
	for k := TokKwDefinitions; k < tokKindCount; k++ {
		m[tokenKindNames[k]] = k
	}
	return m
}()

// LookupKeyword returns the kind of a reserved word, or (TokError, false).
func LookupKeyword(text string) (TokenKind, bool) {
	if k, ok := keywords[text]; ok {
		return k, true
	}
	return TokError, false
}
