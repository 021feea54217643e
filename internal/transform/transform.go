package transform

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	preprocess "github.com/withastro/preprocess/internal"
	"github.com/withastro/preprocess/internal/handler"
	"github.com/withastro/preprocess/internal/loc"
	a "golang.org/x/net/html/atom"
)

// TransformOptions configures Preprocess. Strict turns selectors that cannot
// be parsed into errors instead of warnings. Languages maps a language name
// to the command that compiles it, extending and overriding the built-in
// commands; Transformers take precedence over both.
type TransformOptions struct {
	Filename          string
	Strict            bool
	DisableGlobalRule bool
	Replace           []ReplaceRule
	Languages         map[string]ExternalCommand
	Transformers      map[string]Transformer
}

type BlockResult struct {
	Tag          string   `json:"tag" js:"tag"`
	Lang         string   `json:"lang" js:"lang"`
	Code         string   `json:"code" js:"code"`
	Map          string   `json:"map,omitempty" js:"map"`
	Dependencies []string `json:"dependencies,omitempty" js:"dependencies"`
}

type Result struct {
	Code         string                  `json:"code" js:"code"`
	Dependencies []string                `json:"dependencies" js:"dependencies"`
	Blocks       []BlockResult           `json:"blocks" js:"blocks"`
	Diagnostics  []loc.DiagnosticMessage `json:"diagnostics" js:"diagnostics"`
}

// Preprocess runs every block of source through the transformer of its
// language and splices the results back. Replace rules are applied to the
// whole document first. Diagnostics are collected on h; h.Err() is returned
// when any block failed.
func Preprocess(ctx context.Context, source string, opts TransformOptions, h *handler.Handler) (*Result, error) {
	if len(opts.Replace) > 0 {
		replaced, err := ApplyReplace(source, opts.Replace)
		if err != nil {
			h.AppendError(err)
			return nil, err
		}
		source = replaced
	}

	doc, err := preprocess.Parse(source)
	if err != nil {
		h.AppendError(err)
		return nil, err
	}

	result := &Result{
		Dependencies: make([]string, 0),
		Blocks:       make([]BlockResult, 0, len(doc.Blocks)),
	}
	replacements := make([]preprocess.Replacement, 0, len(doc.Blocks))
	seen := make(map[string]bool)
	for _, block := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blockResult, replacement, err := transformBlock(ctx, block, opts, h)
		if err != nil {
			h.AppendError(err)
			continue
		}
		result.Blocks = append(result.Blocks, blockResult)
		replacements = append(replacements, replacement)
		for _, dep := range blockResult.Dependencies {
			if !seen[dep] {
				seen[dep] = true
				result.Dependencies = append(result.Dependencies, dep)
			}
		}
	}

	result.Code = doc.Splice(replacements)
	result.Diagnostics = h.Diagnostics()
	if h.HasErrors() {
		return result, h.Err()
	}
	return result, nil
}

func transformBlock(ctx context.Context, block *preprocess.Block, opts TransformOptions, h *handler.Handler) (BlockResult, preprocess.Replacement, error) {
	lang := block.Lang()
	content := block.Content
	if block.DataAtom == a.Template {
		content = stripIndent(content)
	}

	out := Output{Code: content}
	transformed := false
	if t := opts.transformerFor(lang); t != nil {
		var err error
		out, err = t.Transform(ctx, Input{
			Content:    content,
			Filename:   h.Filename(),
			Attributes: block.Attr,
			Lang:       lang,
		})
		if err != nil {
			return BlockResult{}, preprocess.Replacement{}, blockError(block, lang, err)
		}
		transformed = true
	} else if lang != preprocess.DefaultLang(block.DataAtom) {
		h.AppendWarning(&loc.ErrorWithRange{
			Code:  loc.WARNING_UNKNOWN_LANGUAGE,
			Text:  fmt.Sprintf("No transformer for lang %q", lang),
			Hint:  "Add a command for it to the languages config.",
			Range: block.OpenTag.Range(),
		})
	}

	removeAttrs := make([]string, 0, 3)
	if transformed {
		removeAttrs = append(removeAttrs, "lang", "type")
	}
	if block.DataAtom == a.Style {
		global := preprocess.HasTruthyAttr(block.Attr, "global")
		code, err := transformStyle(out.Code, h.Filename(), global, opts, func(child *handler.Handler) {
			if transformed {
				h.MergeAt(child, block.OpenTag.Range())
			} else {
				h.Merge(child, block.ContentLoc.Start)
			}
		})
		if err != nil {
			return BlockResult{}, preprocess.Replacement{}, blockError(block, lang, err)
		}
		if code != out.Code {
			// the map no longer matches the rewritten CSS
			out.Map = ""
			out.Code = code
		}
		if global {
			removeAttrs = append(removeAttrs, "global")
		}
	}

	replacement := preprocess.Replacement{Block: block, Content: out.Code}
	if len(removeAttrs) > 0 && hasAnyAttr(block.Attr, removeAttrs) {
		replacement.Attr = preprocess.WithoutAttrs(block.Attr, removeAttrs...)
	}
	return BlockResult{
		Tag:          block.Data,
		Lang:         lang,
		Code:         out.Code,
		Map:          out.Map,
		Dependencies: out.Dependencies,
	}, replacement, nil
}

// transformStyle runs global style mode when global is set, otherwise global
// rule mode unless disabled. Global style mode resolves bare markers too.
// Diagnostics are collected on a handler over the CSS and handed to merge.
// Failures recorded there are not returned again.
func transformStyle(css string, filename string, global bool, opts TransformOptions, merge func(child *handler.Handler)) (string, error) {
	mode := GlobalRuleMode
	if global {
		mode = GlobalStyleMode
	} else if opts.DisableGlobalRule {
		return css, nil
	}

	child := handler.NewHandler(css, filename)
	defer merge(child)
	code, err := TransformCSS(css, mode, opts, child)
	if err != nil {
		if child.HasErrors() {
			return css, nil
		}
		return "", err
	}
	return code, nil
}

func blockError(block *preprocess.Block, lang string, err error) error {
	code := loc.ERROR_TRANSFORMER_FAILED
	if errors.Is(err, ErrMissingDependency) {
		code = loc.ERROR_MISSING_DEPENDENCY
	}
	var rangedErr *loc.ErrorWithRange
	if errors.As(err, &rangedErr) {
		code = rangedErr.Code
	}
	return &loc.ErrorWithRange{
		Code:  code,
		Text:  fmt.Sprintf("Failed to transform <%s lang=%q>", block.Data, lang),
		Range: block.OpenTag.Range(),
		Err:   errors.WithStack(err),
	}
}

func hasAnyAttr(attrs []preprocess.Attribute, keys []string) bool {
	for _, key := range keys {
		if preprocess.HasAttr(attrs, key) {
			return true
		}
	}
	return false
}
