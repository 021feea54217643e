package loc

import "fmt"

type Loc struct {
	// This is the 0-based index of this location from the start of the file, in bytes
	Start int
}

type Range struct {
	Loc Loc
	Len int
}

func (r Range) End() int {
	return r.Loc.Start + r.Len
}

// Span is a range of bytes in a source buffer. The start is inclusive,
// the end is exclusive.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Range() Range {
	return Range{Loc: Loc{Start: s.Start}, Len: s.Len()}
}

type DiagnosticSeverity int

const (
	ErrorType       DiagnosticSeverity = 1
	WarningType     DiagnosticSeverity = 2
	InformationType DiagnosticSeverity = 3
	HintType        DiagnosticSeverity = 4
)

type DiagnosticMessage struct {
	Severity int                 `json:"severity" js:"severity"`
	Code     int                 `json:"code" js:"code"`
	Location *DiagnosticLocation `json:"location,omitempty" js:"location"`
	Hint     string              `json:"hint,omitempty" js:"hint"`
	Text     string              `json:"text" js:"text"`
}

type DiagnosticLocation struct {
	File   string `json:"file" js:"file"`
	Line   int    `json:"line" js:"line"`
	Column int    `json:"column" js:"column"`
	Length int    `json:"length" js:"length"`
}

// ErrorWithRange attaches a source range and a diagnostic code to an error.
type ErrorWithRange struct {
	Code  DiagnosticCode
	Text  string
	Hint  string
	Range Range
	Err   error
}

func (e *ErrorWithRange) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Text, e.Err.Error())
	}
	return e.Text
}

func (e *ErrorWithRange) Unwrap() error {
	return e.Err
}

func (e *ErrorWithRange) ToMessage(location *DiagnosticLocation) DiagnosticMessage {
	return DiagnosticMessage{
		Code:     int(e.Code),
		Text:     e.Error(),
		Hint:     e.Hint,
		Location: location,
	}
}
