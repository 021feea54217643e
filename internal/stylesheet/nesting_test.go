package stylesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindNesting(t *testing.T) {
	tests := []struct {
		name   string
		source string
		found  bool
		text   string
	}{
		{
			name:   "flat",
			source: "a{color:red} b, c{margin:0}",
		},
		{
			name:   "media and keyframes",
			source: "@media print{a{color:red}} @-webkit-keyframes spin{from{opacity:0}to{opacity:1}}",
		},
		{
			name:   "layer and container",
			source: "@layer base{@container (min-width: 400px){.a .b{color:red}}}",
		},
		{
			name:   "declaration at-rules",
			source: "@font-face{font-family:x} @property --x{syntax:'*';inherits:false}",
		},
		{
			name:   "braces in strings and comments",
			source: `a{content:"{"}/* b{c{}} */`,
		},
		{
			name:   "nested rule",
			source: "a{color:red;.b{color:blue}}",
			found:  true,
			text:   ".b{",
		},
		{
			name:   "nesting selector",
			source: "@media print{.a{ &:hover {color:red}}}",
			found:  true,
			text:   "&:hover {",
		},
		{
			name:   "nested at-rule",
			source: ".a{@media print{color:red}}",
			found:  true,
			text:   "@media print{",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, found := FindNesting(tt.source)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.text, tt.source[r.Loc.Start:r.Loc.Start+r.Len])
			}
		})
	}
}
