package loc

type DiagnosticCode int

const (
	ERROR                    DiagnosticCode = 1000
	ERROR_INVALID_SELECTOR   DiagnosticCode = 1001
	ERROR_UNTERMINATED_BLOCK DiagnosticCode = 1002
	ERROR_TRANSFORMER_FAILED DiagnosticCode = 1003
	ERROR_MISSING_DEPENDENCY DiagnosticCode = 1004
	WARNING                  DiagnosticCode = 2000
	WARNING_INVALID_SELECTOR DiagnosticCode = 2001
	WARNING_INVALID_CSS      DiagnosticCode = 2002
	WARNING_UNKNOWN_LANGUAGE DiagnosticCode = 2003
	WARNING_NESTED_CSS       DiagnosticCode = 2004
	INFO                     DiagnosticCode = 3000
	HINT                     DiagnosticCode = 4000
	HINT_EMPTY_RULE_REMOVED  DiagnosticCode = 4001
)
