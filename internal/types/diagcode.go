package types

// Diagnostic codes emitted by the lexer, extractor, and resolver.
// Centralizing these prevents silent breakage from typos in string literals.

// Lexer and extractor diagnostic codes.
const (
	DiagLexError            = "lex-error"
	DiagMissingHeader       = "missing-module-header"
	DiagMalformedImports    = "malformed-imports"
	DiagMalformedOid        = "malformed-oid-value"
	DiagSkippedDeclaration  = "skipped-declaration"
	DiagArcOverflow         = "arc-overflow"
	DiagQualifiedParent     = "qualified-parent"
	DiagConflictingImport   = "conflicting-import"
	DiagUnterminatedModule  = "unterminated-module"
	DiagUnsupportedTypeForm = "unsupported-type-form"
)

// Resolver diagnostic codes.
const (
	DiagBaselineRedefinition = "baseline-redefinition"
	DiagDuplicateDeclaration = "duplicate-declaration"
	DiagImportSymbolMissing  = "import-symbol-missing"
	DiagAmbiguousParent      = "ambiguous-parent"
	DiagOrphan               = "orphan"
	DiagCycle                = "cycle"
)

// AllDiagnosticCodes returns all known diagnostic codes grouped by phase.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		{Code: DiagLexError, Phase: "extract"},
		{Code: DiagMissingHeader, Phase: "extract"},
		{Code: DiagMalformedImports, Phase: "extract"},
		{Code: DiagMalformedOid, Phase: "extract"},
		{Code: DiagSkippedDeclaration, Phase: "extract"},
		{Code: DiagArcOverflow, Phase: "extract"},
		{Code: DiagQualifiedParent, Phase: "extract"},
		{Code: DiagConflictingImport, Phase: "extract"},
		{Code: DiagUnterminatedModule, Phase: "extract"},
		{Code: DiagUnsupportedTypeForm, Phase: "extract"},
		{Code: DiagBaselineRedefinition, Phase: "resolver"},
		{Code: DiagDuplicateDeclaration, Phase: "resolver"},
		{Code: DiagImportSymbolMissing, Phase: "resolver"},
		{Code: DiagAmbiguousParent, Phase: "resolver"},
		{Code: DiagOrphan, Phase: "resolver"},
		{Code: DiagCycle, Phase: "resolver"},
	}
}

// DiagCodeInfo describes a diagnostic code and the phase that emits it.
type DiagCodeInfo struct {
	Code  string
	Phase string
}
