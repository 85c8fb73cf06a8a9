package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(source string) ([]Token, []string) {
	tokens, _ := New([]byte(source), nil).Tokenize()
	texts := make([]string, 0, len(tokens))
	for _, tok := range tokens[:len(tokens)-1] {
		texts = append(texts, tok.Text([]byte(source)))
	}
	return tokens, texts
}

func kindsOf(source string) []TokenKind {
	tokens, _ := scan(source)
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestTokenKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []TokenKind
	}{
		{"empty", "", nil},
		{"whitespace", "   \t\n\r\n\f ", nil},
		{"punctuation", "[ ] { } ( ) ; , . |", []TokenKind{
			TokLBracket, TokRBracket, TokLBrace, TokRBrace,
			TokLParen, TokRParen, TokSemicolon, TokComma, TokDot, TokPipe,
		}},
		{"packed punctuation", "{{}}()", []TokenKind{
			TokLBrace, TokLBrace, TokRBrace, TokRBrace, TokLParen, TokRParen,
		}},
		{"operators", ".. ::= : -", []TokenKind{TokDotDot, TokColonColonEqual, TokColon, TokMinus}},
		{"range", "(0..255)", []TokenKind{TokLParen, TokNumber, TokDotDot, TokNumber, TokRParen}},
		{"module header", "IF-MIB DEFINITIONS ::= BEGIN", []TokenKind{
			TokUppercaseIdent, TokKwDefinitions, TokColonColonEqual, TokKwBegin,
		}},
		{"oid value", "{ iso org(3) dod(6) 1 }", []TokenKind{
			TokLBrace, TokLowercaseIdent,
			TokLowercaseIdent, TokLParen, TokNumber, TokRParen,
			TokLowercaseIdent, TokLParen, TokNumber, TokRParen,
			TokNumber, TokRBrace,
		}},
		{"type names", "INTEGER Integer32 DisplayString OCTET STRING", []TokenKind{
			TokKwInteger, TokUppercaseIdent, TokUppercaseIdent, TokKwOctet, TokKwString,
		}},
		{"clause values", "read-only not-accessible current", []TokenKind{
			TokLowercaseIdent, TokLowercaseIdent, TokLowercaseIdent,
		}},
		{"macro keywords", "MODULE-IDENTITY OBJECT-TYPE NOTIFICATION-TYPE TEXTUAL-CONVENTION TRAP-TYPE", []TokenKind{
			TokKwModuleIdentity, TokKwObjectType, TokKwNotificationType, TokKwTextualConvention, TokKwTrapType,
		}},
		{"tag keywords", "APPLICATION IMPLICIT UNIVERSAL", []TokenKind{
			TokKwApplication, TokKwImplicit, TokKwUniversal,
		}},
		{"line comment", "OBJECT -- comment\nTYPE", []TokenKind{TokKwObject, TokUppercaseIdent}},
		{"closed comment", "OBJECT -- comment -- TYPE", []TokenKind{TokKwObject, TokUppercaseIdent}},
		{"comment at eof", "OBJECT -- trailing", []TokenKind{TokKwObject}},
		{"dash rule", "-- header ---\nOBJECT\n------------\nTYPE", []TokenKind{TokKwObject, TokUppercaseIdent}},
		{"exports", "EXPORTS foo, bar;OBJECT-TYPE", []TokenKind{TokKwExports, TokSemicolon, TokKwObjectType}},
		{"macro", `OBJECT-TYPE MACRO ::=
			BEGIN
				TYPE NOTATION ::= "END of notation" -- END
				VALUE NOTATION ::= value(VALUE ObjectName)
			END
			ifIndex OBJECT-TYPE`, []TokenKind{
			TokKwObjectType, TokKwMacro, TokKwEnd, TokLowercaseIdent, TokKwObjectType,
		}},
		{"macro ending at eof", "X MACRO ::= BEGIN never closed", []TokenKind{TokUppercaseIdent, TokKwMacro}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := append(tt.want, TokEOF)
			assert.Equal(t, want, kindsOf(tt.source))
		})
	}
}

func TestTokenTexts(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"numbers", "0 42 4294967295 99999999999999", []string{"0", "42", "4294967295", "99999999999999"}},
		{"negative numbers", "-1 -0", []string{"-1", "-0"}},
		{"identifiers", "ifIndex IF-MIB my_object MY_MODULE", []string{"ifIndex", "IF-MIB", "my_object", "MY_MODULE"}},
		{"trailing hyphen", "test- OBJECT", []string{"test-", "OBJECT"}},
		{"double hyphen starts a comment", "foo--bar", []string{"foo"}},
		{"strings", `"hello" "with spaces" "multi
line"`, []string{`"hello"`, `"with spaces"`, "\"multi\nline\""}},
		{"hex and bin", "'0A1B'H 'ff'h '0101'B ''H ''b", []string{"'0A1B'H", "'ff'h", "'0101'B", "''H", "''b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, texts := scan(tt.source)
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestLexDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		first    TokenKind
		message  string
		position int
	}{
		{"unterminated string", `"open`, TokQuotedString, "unterminated string literal", 0},
		{"unterminated hex", "'0A1B", TokError, "unterminated hex/binary string", 0},
		{"bad suffix", "'0A1B'X", TokError, "expected 'H' or 'B' suffix for hex/binary string", 0},
		{"unknown character", "foo @", TokLowercaseIdent, "unexpected character: 0x40", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, diags := New([]byte(tt.source), nil).Tokenize()
			assert.Equal(t, tt.first, tokens[0].Kind)
			require.Len(t, diags, 1)
			assert.Equal(t, "lex-error", diags[0].Code)
			assert.Equal(t, tt.message, diags[0].Message)
			assert.Equal(t, tt.position, int(diags[0].Span.Start))
		})
	}
}

func TestUnknownCharacterSkipsLine(t *testing.T) {
	_, texts := scan("OBJECT @ stuff\nTYPE")
	assert.Equal(t, []string{"OBJECT", "TYPE"}, texts)
}

func TestNextAfterEOF(t *testing.T) {
	l := New([]byte("x"), nil)
	assert.Equal(t, TokLowercaseIdent, l.Next().Kind)
	assert.Equal(t, TokEOF, l.Next().Kind)
	assert.Equal(t, TokEOF, l.Next().Kind)
}

func TestLookupKeyword(t *testing.T) {
	for text, kind := range keywords {
		assert.True(t, kind.IsKeyword(), text)
		assert.Equal(t, text, kind.String())
	}
	assert.Len(t, keywords, int(tokKindCount-TokKwDefinitions))

	for _, text := range []string{"Integer32", "current", "ifIndex", "", "object-type"} {
		_, ok := LookupKeyword(text)
		assert.False(t, ok, text)
	}
	kind, ok := LookupKeyword("MAX-ACCESS")
	require.True(t, ok)
	assert.Equal(t, TokKwMaxAccess, kind)
	assert.True(t, kind.IsClauseKeyword())
	assert.True(t, TokKwObjectType.IsMacroKeyword())
	assert.True(t, TokUppercaseIdent.IsIdentifier())
}
