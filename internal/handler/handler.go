package handler

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/withastro/preprocess/internal/loc"
)

type Handler struct {
	sourcetext  string
	filename    string
	lineOffsets []int
	errors      []error
	warnings    []error
	infos       []error
	hints       []error
}

func NewHandler(sourcetext string, filename string) *Handler {
	return &Handler{
		sourcetext:  sourcetext,
		filename:    filename,
		lineOffsets: generateLineOffsets(sourcetext),
		errors:      make([]error, 0),
		warnings:    make([]error, 0),
		infos:       make([]error, 0),
		hints:       make([]error, 0),
	}
}

// Merge moves the diagnostics collected on other into h, shifting ranged
// errors by offset bytes. It is used to report diagnostics collected on a
// block's content against the whole document.
func (h *Handler) Merge(other *Handler, offset int) {
	h.merge(other, func(r *loc.Range) {
		r.Loc.Start += offset
	})
}

// MergeAt moves the diagnostics collected on other into h and attributes
// every ranged error to rng. It is used when other was collected on text
// that does not appear in the document, such as compiled output.
func (h *Handler) MergeAt(other *Handler, rng loc.Range) {
	h.merge(other, func(r *loc.Range) {
		*r = rng
	})
}

func (h *Handler) merge(other *Handler, relocate func(r *loc.Range)) {
	shift := func(errs []error) []error {
		out := make([]error, 0, len(errs))
		for _, err := range errs {
			var rangedError *loc.ErrorWithRange
			if errors.As(err, &rangedError) {
				moved := *rangedError
				relocate(&moved.Range)
				out = append(out, &moved)
				continue
			}
			out = append(out, err)
		}
		return out
	}
	h.errors = append(h.errors, shift(other.errors)...)
	h.warnings = append(h.warnings, shift(other.warnings)...)
	h.infos = append(h.infos, shift(other.infos)...)
	h.hints = append(h.hints, shift(other.hints)...)
}

func (h *Handler) Filename() string {
	return h.filename
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) HasWarnings() bool {
	return len(h.warnings) > 0
}

func (h *Handler) AppendError(err error) {
	h.errors = append(h.errors, err)
}

func (h *Handler) AppendWarning(err error) {
	h.warnings = append(h.warnings, err)
}

func (h *Handler) AppendInfo(err error) {
	h.infos = append(h.infos, err)
}

func (h *Handler) AppendHint(err error) {
	h.hints = append(h.hints, err)
}

// Err returns the first collected error, or nil.
func (h *Handler) Err() error {
	for _, err := range h.errors {
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Errors() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0)
	for _, err := range h.errors {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.ErrorType, err))
		}
	}
	return msgs
}

func (h *Handler) Warnings() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0)
	for _, err := range h.warnings {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.WarningType, err))
		}
	}
	return msgs
}

func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0)
	for _, err := range h.errors {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.ErrorType, err))
		}
	}
	for _, err := range h.warnings {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.WarningType, err))
		}
	}
	for _, err := range h.infos {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.InformationType, err))
		}
	}
	for _, err := range h.hints {
		if err != nil {
			msgs = append(msgs, ErrorToMessage(h, loc.HintType, err))
		}
	}
	return msgs
}

// GetLineAndColumnForLocation returns the 1-based line and the 0-based column
// (in runes) of a byte offset.
func (h *Handler) GetLineAndColumnForLocation(location loc.Loc) []int {
	offset := location.Start
	if offset < 0 {
		offset = 0
	}
	if offset > len(h.sourcetext) {
		offset = len(h.sourcetext)
	}
	line := sort.Search(len(h.lineOffsets), func(i int) bool {
		return h.lineOffsets[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	column := utf8.RuneCountInString(h.sourcetext[h.lineOffsets[line]:offset])
	return []int{line + 1, column}
}

func ErrorToMessage(h *Handler, severity loc.DiagnosticSeverity, err error) loc.DiagnosticMessage {
	var rangedError *loc.ErrorWithRange
	switch {
	case errors.As(err, &rangedError):
		pos := h.GetLineAndColumnForLocation(rangedError.Range.Loc)
		location := &loc.DiagnosticLocation{
			File:   h.filename,
			Line:   pos[0],
			Column: pos[1],
			Length: rangedError.Range.Len,
		}
		message := rangedError.ToMessage(location)
		message.Severity = int(severity)
		return message
	default:
		return loc.DiagnosticMessage{Severity: int(severity), Text: err.Error()}
	}
}

func generateLineOffsets(sourcetext string) []int {
	offsets := make([]int, 1, strings.Count(sourcetext, "\n")+1)
	for i := 0; i < len(sourcetext); i++ {
		if sourcetext[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
