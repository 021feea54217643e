package stylesheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	sheet, err := Parse("h1, .a .b { color: red; margin: 0 auto }")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)

	rule, ok := sheet.Nodes[0].(*Rule)
	require.True(t, ok)
	assert.Equal(t, []string{"h1", ".a .b"}, rule.Selectors)
	assert.Equal(t, 0, rule.Range.Loc.Start)
	assert.Equal(t, []Node{
		&Declaration{Property: "color", Value: "red"},
		&Declaration{Property: "margin", Value: "0 auto"},
	}, rule.Nodes)
}

func TestParseRuleRange(t *testing.T) {
	sheet, err := Parse("\n  .x{}")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)
	rule := sheet.Nodes[0].(*Rule)
	assert.Equal(t, 3, rule.Range.Loc.Start)
	assert.Equal(t, 2, rule.Range.Len)
}

func TestParseAtRules(t *testing.T) {
	sheet, err := Parse(`@import "a.css";@media (min-width: 640px) { h1 { color: blue } }`)
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 2)

	imp, ok := sheet.Nodes[0].(*AtRule)
	require.True(t, ok)
	assert.Equal(t, "import", imp.Name)
	assert.Equal(t, `"a.css"`, imp.Prelude)
	assert.False(t, imp.Block)

	media, ok := sheet.Nodes[1].(*AtRule)
	require.True(t, ok)
	assert.Equal(t, "media", media.Name)
	assert.True(t, media.Block)
	require.Len(t, media.Nodes, 1)
	assert.Equal(t, []string{"h1"}, media.Nodes[0].(*Rule).Selectors)
}

func TestParseKeyframes(t *testing.T) {
	sheet, err := Parse("@keyframes spin { from { opacity: 0 } 50% { opacity: 1 } }")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)

	keyframes := sheet.Nodes[0].(*AtRule)
	assert.Equal(t, "keyframes", keyframes.Name)
	assert.Equal(t, "spin", keyframes.Prelude)
	require.Len(t, keyframes.Nodes, 2)
	assert.Equal(t, []string{"from"}, keyframes.Nodes[0].(*Rule).Selectors)
	assert.Equal(t, []string{"50%"}, keyframes.Nodes[1].(*Rule).Selectors)
}

func TestParseComments(t *testing.T) {
	sheet, err := Parse("/* hi */a{}/*! license */b{}")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 3)
	assert.IsType(t, &Rule{}, sheet.Nodes[0])
	assert.Equal(t, &Comment{Text: "/*! license */"}, sheet.Nodes[1])
	assert.IsType(t, &Rule{}, sheet.Nodes[2])
}

func TestParseRuleListAtRules(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   [][]string
	}{
		{
			name:   "layer",
			source: "@layer base { .card .title { color: red } }",
			want:   [][]string{{".card .title"}},
		},
		{
			name:   "container",
			source: "@container (min-width: 400px) { .card .title { color: red } a, b { margin: 0 } }",
			want:   [][]string{{".card .title"}, {"a", "b"}},
		},
		{
			name:   "scope",
			source: "@scope (.card) { img { border: 0 } }",
			want:   [][]string{{"img"}},
		},
		{
			name:   "layer in media",
			source: "@media print { @layer base { p { color: black } } }",
			want:   [][]string{{"p"}},
		},
		{
			name:   "nested layers",
			source: "@layer a { @layer b { .x .y { color: red } } }",
			want:   [][]string{{".x .y"}},
		},
		{
			name:   "unknown at-rule holding rules",
			source: "@screen md { .a .b { color: red } }",
			want:   [][]string{{".a .b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := Parse(tt.source)
			require.NoError(t, err)
			assert.Empty(t, sheet.Problems)

			var got [][]string
			Walk(sheet.Nodes, func(n Node) bool {
				if rule, ok := n.(*Rule); ok {
					got = append(got, rule.Selectors)
				}
				return true
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRuleListRanges(t *testing.T) {
	source := "@layer base {\n  .a{}\n}"
	sheet, err := Parse(source)
	require.NoError(t, err)
	layer := sheet.Nodes[0].(*AtRule)
	assert.Equal(t, "layer", layer.Name)
	assert.Equal(t, "base", layer.Prelude)
	require.Len(t, layer.Nodes, 1)
	rule := layer.Nodes[0].(*Rule)
	assert.Equal(t, strings.Index(source, ".a"), rule.Range.Loc.Start)
	assert.Equal(t, 2, rule.Range.Len)
}

func TestParseOpaqueAtRuleKeptVerbatim(t *testing.T) {
	sheet, err := Parse("@property --x { syntax: '<color>'; inherits: false }")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)
	property := sheet.Nodes[0].(*AtRule)
	assert.Equal(t, "property", property.Name)
	assert.Equal(t, []Node{&Raw{Text: "syntax: '<color>'; inherits: false"}}, property.Nodes)
}

func TestWalk(t *testing.T) {
	sheet, err := Parse("a{} @media print { b{} @supports (display: grid) { c{} } }")
	require.NoError(t, err)
	var selectors []string
	Walk(sheet.Nodes, func(n Node) bool {
		if rule, ok := n.(*Rule); ok {
			selectors = append(selectors, rule.SelectorText())
		}
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, selectors)

	selectors = nil
	Walk(sheet.Nodes, func(n Node) bool {
		if rule, ok := n.(*Rule); ok {
			selectors = append(selectors, rule.SelectorText())
		}
		_, isAtRule := n.(*AtRule)
		return !isAtRule
	})
	assert.Equal(t, []string{"a"}, selectors)
}
