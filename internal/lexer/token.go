// Package lexer provides tokenization for SMIv1/SMIv2 MIB source text.
//
// The lexer is the extractor's comment-stripping pass: "--" comments are
// dropped, MACRO bodies and EXPORTS clauses are skipped, and everything
// else becomes a flat token stream positioned by byte span.
package lexer

import (
	"github.com/golangsnmp/mibtree/internal/types"
)

// Token is a token with kind and source span.
type Token struct {
	Kind TokenKind
	Span types.Span
}

// NewToken creates a new token.
func NewToken(kind TokenKind, span types.Span) Token {
	return Token{Kind: kind, Span: span}
}

// Text returns the token's source text.
func (t Token) Text(source []byte) string {
	if int(t.Span.End) > len(source) || t.Span.Start > t.Span.End {
		return ""
	}
	return string(source[t.Span.Start:t.Span.End])
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// TokError is a lexical error.
	TokError TokenKind = iota
	// TokEOF is end of input.
	TokEOF

	// TokUppercaseIdent is an uppercase identifier (module names, type names).
	TokUppercaseIdent
	// TokLowercaseIdent is a lowercase identifier (object names, enum labels).
	TokLowercaseIdent

	// TokNumber is an unsigned decimal number.
	TokNumber
	// TokNegativeNumber is a signed decimal number (negative).
	TokNegativeNumber
	// TokQuotedString is a quoted string literal.
	TokQuotedString
	// TokHexString is a hex string literal ('...'H).
	TokHexString
	// TokBinString is a binary string literal ('...'B).
	TokBinString

	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokColon
	TokSemicolon
	TokComma
	TokDot
	TokPipe
	TokMinus
	TokDotDot
	TokColonColonEqual

	// Structural keywords.
	TokKwDefinitions
	TokKwBegin
	TokKwEnd
	TokKwImports
	TokKwExports
	TokKwFrom
	TokKwObject
	TokKwIdentifier
	TokKwSequence
	TokKwOf
	TokKwChoice
	TokKwMacro

	// Clause keywords.
	TokKwSyntax
	TokKwMaxAccess
	TokKwMinAccess
	TokKwAccess
	TokKwStatus
	TokKwDescription
	TokKwReference
	TokKwUnits
	TokKwIndex
	TokKwAugments
	TokKwDefval
	TokKwDisplayHint
	TokKwEnterprise
	TokKwVariables
	TokKwObjects
	TokKwNotifications
	TokKwModule
	TokKwMandatoryGroups
	TokKwGroup
	TokKwLastUpdated
	TokKwOrganization
	TokKwContactInfo
	TokKwRevision
	TokKwProductRelease
	TokKwSupports
	TokKwIncludes
	TokKwVariation
	TokKwWriteSyntax
	TokKwCreationRequires

	// Definition macro keywords.
	TokKwTextualConvention
	TokKwObjectType
	TokKwModuleIdentity
	TokKwObjectIdentity
	TokKwNotificationType
	TokKwTrapType
	TokKwModuleCompliance
	TokKwObjectGroup
	TokKwNotificationGroup
	TokKwAgentCapabilities

	// Type keywords.
	TokKwInteger
	TokKwOctet
	TokKwString
	TokKwBits
	TokKwSize
	TokKwImplicit
	TokKwApplication
	TokKwUniversal
	TokKwImplied

	tokKindCount
)

var tokenKindNames = [tokKindCount]string{
	TokError:               "Error",
	TokEOF:                 "EOF",
	TokUppercaseIdent:      "UppercaseIdent",
	TokLowercaseIdent:      "LowercaseIdent",
	TokNumber:              "Number",
	TokNegativeNumber:      "NegativeNumber",
	TokQuotedString:        "QuotedString",
	TokHexString:           "HexString",
	TokBinString:           "BinString",
	TokLBracket:            "[",
	TokRBracket:            "]",
	TokLBrace:              "{",
	TokRBrace:              "}",
	TokLParen:              "(",
	TokRParen:              ")",
	TokColon:               ":",
	TokSemicolon:           ";",
	TokComma:               ",",
	TokDot:                 ".",
	TokPipe:                "|",
	TokMinus:               "-",
	TokDotDot:              "..",
	TokColonColonEqual:     "::=",
	TokKwDefinitions:       "DEFINITIONS",
	TokKwBegin:             "BEGIN",
	TokKwEnd:               "END",
	TokKwImports:           "IMPORTS",
	TokKwExports:           "EXPORTS",
	TokKwFrom:              "FROM",
	TokKwObject:            "OBJECT",
	TokKwIdentifier:        "IDENTIFIER",
	TokKwSequence:          "SEQUENCE",
	TokKwOf:                "OF",
	TokKwChoice:            "CHOICE",
	TokKwMacro:             "MACRO",
	TokKwSyntax:            "SYNTAX",
	TokKwMaxAccess:         "MAX-ACCESS",
	TokKwMinAccess:         "MIN-ACCESS",
	TokKwAccess:            "ACCESS",
	TokKwStatus:            "STATUS",
	TokKwDescription:       "DESCRIPTION",
	TokKwReference:         "REFERENCE",
	TokKwUnits:             "UNITS",
	TokKwIndex:             "INDEX",
	TokKwAugments:          "AUGMENTS",
	TokKwDefval:            "DEFVAL",
	TokKwDisplayHint:       "DISPLAY-HINT",
	TokKwEnterprise:        "ENTERPRISE",
	TokKwVariables:         "VARIABLES",
	TokKwObjects:           "OBJECTS",
	TokKwNotifications:     "NOTIFICATIONS",
	TokKwModule:            "MODULE",
	TokKwMandatoryGroups:   "MANDATORY-GROUPS",
	TokKwGroup:             "GROUP",
	TokKwLastUpdated:       "LAST-UPDATED",
	TokKwOrganization:      "ORGANIZATION",
	TokKwContactInfo:       "CONTACT-INFO",
	TokKwRevision:          "REVISION",
	TokKwProductRelease:    "PRODUCT-RELEASE",
	TokKwSupports:          "SUPPORTS",
	TokKwIncludes:          "INCLUDES",
	TokKwVariation:         "VARIATION",
	TokKwWriteSyntax:       "WRITE-SYNTAX",
	TokKwCreationRequires:  "CREATION-REQUIRES",
	TokKwTextualConvention: "TEXTUAL-CONVENTION",
	TokKwObjectType:        "OBJECT-TYPE",
	TokKwModuleIdentity:    "MODULE-IDENTITY",
	TokKwObjectIdentity:    "OBJECT-IDENTITY",
	TokKwNotificationType:  "NOTIFICATION-TYPE",
	TokKwTrapType:          "TRAP-TYPE",
	TokKwModuleCompliance:  "MODULE-COMPLIANCE",
	TokKwObjectGroup:       "OBJECT-GROUP",
	TokKwNotificationGroup: "NOTIFICATION-GROUP",
	TokKwAgentCapabilities: "AGENT-CAPABILITIES",
	TokKwInteger:           "INTEGER",
	TokKwOctet:             "OCTET",
	TokKwString:            "STRING",
	TokKwBits:              "BITS",
	TokKwSize:              "SIZE",
	TokKwImplicit:          "IMPLICIT",
	TokKwApplication:       "APPLICATION",
	TokKwUniversal:         "UNIVERSAL",
	TokKwImplied:           "IMPLIED",
}

// String returns the keyword text for keywords and punctuation, and a
// descriptive name for other kinds.
func (k TokenKind) String() string {
	if k >= 0 && k < tokKindCount {
		return tokenKindNames[k]
	}
	return "Unknown"
}

// IsIdentifier reports whether the token is an uppercase or lowercase identifier.
func (k TokenKind) IsIdentifier() bool {
	return k == TokUppercaseIdent || k == TokLowercaseIdent
}

// IsKeyword reports whether the token is any reserved keyword.
func (k TokenKind) IsKeyword() bool {
	return k >= TokKwDefinitions && k < tokKindCount
}

// IsMacroKeyword reports whether the token introduces a definition macro
// invocation (OBJECT-TYPE, MODULE-IDENTITY, TEXTUAL-CONVENTION, ...).
func (k TokenKind) IsMacroKeyword() bool {
	return k >= TokKwTextualConvention && k <= TokKwAgentCapabilities
}

// IsClauseKeyword reports whether the token starts a clause inside a
// macro invocation body (SYNTAX, STATUS, DESCRIPTION, ...).
func (k TokenKind) IsClauseKeyword() bool {
	return k >= TokKwSyntax && k <= TokKwCreationRequires
}
