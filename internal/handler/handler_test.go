package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/withastro/preprocess/internal/loc"
)

func TestGetLineAndColumnForLocation(t *testing.T) {
	source := "<style>\n  .a :global b {}\n</style>"
	h := NewHandler(source, "/test.astro")

	tests := []struct {
		name   string
		offset int
		want   []int
	}{
		{"start", 0, []int{1, 0}},
		{"end of first line", 7, []int{1, 7}},
		{"second line", 10, []int{2, 2}},
		{"last line", 26, []int{3, 0}},
		{"past end", 1000, []int{3, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.GetLineAndColumnForLocation(loc.Loc{Start: tt.offset})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiagnostics(t *testing.T) {
	source := "a\nbc :global"
	h := NewHandler(source, "/test.astro")
	h.AppendWarning(&loc.ErrorWithRange{
		Code:  loc.WARNING_INVALID_SELECTOR,
		Text:  "invalid selector",
		Range: loc.Range{Loc: loc.Loc{Start: 2}, Len: 2},
	})
	h.AppendError(errors.New("boom"))

	assert.True(t, h.HasErrors())
	assert.True(t, h.HasWarnings())
	assert.EqualError(t, h.Err(), "boom")

	msgs := h.Diagnostics()
	assert.Len(t, msgs, 2)
	assert.Equal(t, int(loc.ErrorType), msgs[0].Severity)
	assert.Equal(t, "boom", msgs[0].Text)
	assert.Nil(t, msgs[0].Location)

	assert.Equal(t, int(loc.WarningType), msgs[1].Severity)
	assert.Equal(t, int(loc.WARNING_INVALID_SELECTOR), msgs[1].Code)
	assert.Equal(t, &loc.DiagnosticLocation{File: "/test.astro", Line: 2, Column: 0, Length: 2}, msgs[1].Location)
}

func TestMerge(t *testing.T) {
	source := "<style>\n.a{}\n</style>"
	parent := NewHandler(source, "/test.astro")
	child := NewHandler(".a{}", "/test.astro")
	child.AppendWarning(&loc.ErrorWithRange{
		Code:  loc.WARNING_INVALID_CSS,
		Text:  "invalid css",
		Range: loc.Range{Loc: loc.Loc{Start: 1}, Len: 1},
	})
	child.AppendInfo(errors.New("note"))

	parent.Merge(child, 8)

	warnings := parent.Warnings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Location.Line)
	assert.Equal(t, 1, warnings[0].Location.Column)
	assert.Len(t, parent.Diagnostics(), 2)
	assert.False(t, parent.HasErrors())
}

func TestMergeAt(t *testing.T) {
	parent := NewHandler("<style lang=\"scss\">\n$a: 1;\n</style>", "/test.astro")
	child := NewHandler(".a{}\n.b :global{}", "/test.astro")
	child.AppendWarning(&loc.ErrorWithRange{
		Code:  loc.WARNING_INVALID_SELECTOR,
		Text:  "invalid selector",
		Range: loc.Range{Loc: loc.Loc{Start: 5}, Len: 10},
	})

	parent.MergeAt(child, loc.Range{Loc: loc.Loc{Start: 0}, Len: 19})

	warnings := parent.Warnings()
	assert.Len(t, warnings, 1)
	assert.Equal(t, &loc.DiagnosticLocation{File: "/test.astro", Line: 1, Column: 0, Length: 19}, warnings[0].Location)
}
