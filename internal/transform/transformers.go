package transform

import (
	"context"

	"github.com/lithammer/dedent"
	preprocess "github.com/withastro/preprocess/internal"
)

type Input struct {
	Content    string
	Filename   string
	Attributes []preprocess.Attribute
	Lang       string
}

type Output struct {
	Code         string
	Map          string
	Dependencies []string
}

// Transformer compiles the content of a block.
type Transformer interface {
	Transform(ctx context.Context, in Input) (Output, error)
}

type TransformerFunc func(ctx context.Context, in Input) (Output, error)

func (f TransformerFunc) Transform(ctx context.Context, in Input) (Output, error) {
	return f(ctx, in)
}

// builtinLanguages are the commands used for languages that are not
// configured. Every one of them reads the source on stdin and writes the
// compiled code to stdout.
var builtinLanguages = map[string]ExternalCommand{
	"scss":         {Command: "sass", Args: []string{"--stdin", "--no-source-map", "--load-path={dir}"}},
	"sass":         {Command: "sass", Args: []string{"--stdin", "--indented", "--no-source-map", "--load-path={dir}"}},
	"less":         {Command: "lessc", Args: []string{"--include-path={dir}", "-"}},
	"stylus":       {Command: "stylus", Args: []string{"--include", "{dir}"}},
	"coffeescript": {Command: "coffee", Args: []string{"--stdio", "--print", "--compile", "--bare"}},
	"pug":          {Command: "pug", Args: []string{"--path", "{filename}"}},
}

func (opts TransformOptions) transformerFor(lang string) Transformer {
	if t, ok := opts.Transformers[lang]; ok {
		return t
	}
	if c, ok := opts.Languages[lang]; ok {
		return c
	}
	if c, ok := builtinLanguages[lang]; ok {
		return c
	}
	return nil
}

// stripIndent removes the common indentation of a block, as done for
// <template> markup before it is compiled.
func stripIndent(content string) string {
	return dedent.Dedent(content)
}
