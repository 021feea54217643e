package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/withastro/preprocess/internal/handler"
	"github.com/withastro/preprocess/internal/loc"
	"github.com/withastro/preprocess/internal/test_utils"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   TransformOptions
		want   string
	}{
		{
			name:   "global rule",
			source: "<div />\n<style>\n:global .a { color: red }\n</style>",
			want:   "<div />\n<style>:global(.a){color:red}</style>",
		},
		{
			name:   "style without global is untouched",
			source: "<style>\n  h1 { color: red }\n</style>",
			want:   "<style>\n  h1 { color: red }\n</style>",
		},
		{
			name:   "global attribute",
			source: "<style global>h1{color:red}</style>",
			want:   "<style>:global(h1){color:red}</style>",
		},
		{
			name:   "global attribute with value",
			source: `<style global="true" media="print">h1{color:red}</style>`,
			want:   `<style media="print">:global(h1){color:red}</style>`,
		},
		{
			name:   "global rule disabled",
			source: "<style>:global .a{}</style>",
			opts:   TransformOptions{DisableGlobalRule: true},
			want:   "<style>:global .a{}</style>",
		},
		{
			name:   "custom transformer",
			source: `<style lang="scss">$c: red;</style>`,
			opts: TransformOptions{
				Transformers: map[string]Transformer{
					"scss": TransformerFunc(func(ctx context.Context, in Input) (Output, error) {
						return Output{Code: "a{}\n:global .b{}"}, nil
					}),
				},
			},
			want: "<style>a{}:global(.b){}</style>",
		},
		{
			name:   "replace",
			source: "<p>__NAME__ and __NAME__</p>",
			opts: TransformOptions{
				Replace: []ReplaceRule{{Pattern: "__(\\w+)__", Replacement: "[$1]"}},
			},
			want: "<p>[NAME] and [NAME]</p>",
		},
		{
			name:   "template indentation",
			source: "<template>\n    <p>x</p>\n  </template>",
			want:   "<template>\n<p>x</p>\n</template>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHandler(tt.source, "/src/Component.astro")
			tt.opts.Filename = "/src/Component.astro"
			result, err := Preprocess(context.Background(), tt.source, tt.opts, h)
			assert.NilError(t, err)
			if diff := test_utils.ANSIDiff(tt.want, result.Code); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPreprocessBlocksAndDependencies(t *testing.T) {
	source := `<script lang="ts">let a: number = 1</script><style lang="scss">a{}</style>`
	withDeps := func(code string, deps ...string) Transformer {
		return TransformerFunc(func(ctx context.Context, in Input) (Output, error) {
			return Output{Code: code, Dependencies: deps}, nil
		})
	}
	opts := TransformOptions{
		Transformers: map[string]Transformer{
			"typescript": withDeps("let a = 1", "/src/types.ts", "/src/shared.css"),
			"scss":       withDeps("b{}", "/src/shared.css", "/src/vars.scss"),
		},
	}

	h := handler.NewHandler(source, "/src/Component.astro")
	result, err := Preprocess(context.Background(), source, opts, h)
	assert.NilError(t, err)
	assert.Equal(t, result.Code, "<script>let a = 1</script><style>b{}</style>")
	assert.DeepEqual(t, result.Dependencies, []string{"/src/types.ts", "/src/shared.css", "/src/vars.scss"})
	assert.Equal(t, len(result.Blocks), 2)
	assert.Equal(t, result.Blocks[0].Tag, "script")
	assert.Equal(t, result.Blocks[0].Lang, "typescript")
	assert.Equal(t, result.Blocks[1].Tag, "style")
	assert.Equal(t, result.Blocks[1].Code, "b{}")
}

func TestPreprocessUnknownLanguage(t *testing.T) {
	source := `<style lang="foo">a{}</style>`
	h := handler.NewHandler(source, "/test.astro")
	result, err := Preprocess(context.Background(), source, TransformOptions{}, h)
	assert.NilError(t, err)
	assert.Equal(t, result.Code, source)
	assert.Equal(t, len(result.Diagnostics), 1)
	assert.Equal(t, result.Diagnostics[0].Code, int(loc.WARNING_UNKNOWN_LANGUAGE))
	assert.Equal(t, result.Diagnostics[0].Location.Length, len(`<style lang="foo">`))
}

func TestPreprocessMissingDependency(t *testing.T) {
	ResetDepCache()
	source := "<h1>x</h1>\n<style lang=\"scss\">$a: 1;</style>"
	opts := TransformOptions{
		Languages: map[string]ExternalCommand{
			"scss": {Command: "preprocess-test-missing-binary"},
		},
	}
	h := handler.NewHandler(source, "/test.astro")
	result, err := Preprocess(context.Background(), source, opts, h)
	assert.Assert(t, errors.Is(err, ErrMissingDependency))
	assert.Equal(t, result.Code, source)

	errs := h.Errors()
	assert.Equal(t, len(errs), 1)
	assert.Equal(t, errs[0].Code, int(loc.ERROR_MISSING_DEPENDENCY))
	assert.Equal(t, errs[0].Location.Line, 2)
	assert.Assert(t, is.Contains(errs[0].Text, "preprocess-test-missing-binary"))
}

func TestPreprocessStrict(t *testing.T) {
	source := "<style>\na > > b :global{}\n</style>"

	h := handler.NewHandler(source, "/test.astro")
	result, err := Preprocess(context.Background(), source, TransformOptions{}, h)
	assert.NilError(t, err)
	assert.Equal(t, len(result.Diagnostics), 1)
	assert.Equal(t, result.Diagnostics[0].Severity, int(loc.WarningType))
	assert.Equal(t, result.Diagnostics[0].Location.Line, 2)

	h = handler.NewHandler(source, "/test.astro")
	_, err = Preprocess(context.Background(), source, TransformOptions{Strict: true}, h)
	assert.ErrorContains(t, err, "unexpected combinator")
	assert.Equal(t, len(h.Errors()), 1)
	assert.Equal(t, h.Errors()[0].Code, int(loc.ERROR_INVALID_SELECTOR))
}

func TestPreprocessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := "<style>a{}</style>"
	_, err := Preprocess(ctx, source, TransformOptions{}, handler.NewHandler(source, "/test.astro"))
	assert.Assert(t, errors.Is(err, context.Canceled))
}

func TestPreprocessUnterminatedBlock(t *testing.T) {
	source := "<style>a{}"
	h := handler.NewHandler(source, "/test.astro")
	_, err := Preprocess(context.Background(), source, TransformOptions{}, h)
	assert.ErrorContains(t, err, "Unterminated <style>")
	assert.Assert(t, h.HasErrors())
}

func TestPreprocessGlobalStyleBlock(t *testing.T) {
	source := test_utils.Wrap("style", "global", `
		h1 { color: red }
		@keyframes spin { to { opacity: 1 } }
	`)
	want := test_utils.RemoveNewlines(`<style>:global(h1){color:red}
@keyframes -global-spin{to{opacity:1}}</style>`)

	h := handler.NewHandler(source, "/test.astro")
	result, err := Preprocess(context.Background(), source, TransformOptions{}, h)
	assert.NilError(t, err)
	assert.Equal(t, result.Code, want)
}

func TestPreprocessStyleMap(t *testing.T) {
	withMap := TransformerFunc(func(ctx context.Context, in Input) (Output, error) {
		assert.Equal(t, in.Filename, "/src/Card.astro")
		return Output{Code: in.Content, Map: `{"version":3}`}, nil
	})
	opts := TransformOptions{Transformers: map[string]Transformer{"scss": withMap}}

	tests := []struct {
		name    string
		source  string
		wantMap string
	}{
		{
			name:    "untouched css keeps map",
			source:  `<style lang="scss">a{color:red}</style>`,
			wantMap: `{"version":3}`,
		},
		{
			name:    "rewritten css drops map",
			source:  `<style lang="scss">:global .a{color:red}</style>`,
			wantMap: "",
		},
		{
			name:    "global style drops map",
			source:  `<style lang="scss" global>a{color:red}</style>`,
			wantMap: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHandler(tt.source, "/src/Card.astro")
			result, err := Preprocess(context.Background(), tt.source, opts, h)
			assert.NilError(t, err)
			assert.Equal(t, len(result.Blocks), 1)
			assert.Equal(t, result.Blocks[0].Map, tt.wantMap)
		})
	}
}
