package preprocess

import (
	"strings"

	"golang.org/x/net/html/atom"
)

var langAliases = map[string]string{
	"styl":    "stylus",
	"ts":      "typescript",
	"coffee":  "coffeescript",
	"js":      "javascript",
	"module":  "javascript",
	"pcss":    "css",
	"postcss": "css",
}

// DefaultLang is the language of a block with no lang or type attribute.
func DefaultLang(a atom.Atom) string {
	switch a {
	case atom.Style:
		return "css"
	case atom.Script:
		return "javascript"
	}
	return "html"
}

// Lang resolves the language of b from its lang attribute, then its type
// attribute (`text/scss`), then the tag's default. Aliases are normalized.
func (b *Block) Lang() string {
	lang := strings.ToLower(strings.TrimSpace(GetQuotedAttr(b.Attr, "lang")))
	if lang == "" {
		lang = strings.ToLower(strings.TrimSpace(GetQuotedAttr(b.Attr, "type")))
		if i := strings.LastIndexByte(lang, '/'); i >= 0 {
			lang = lang[i+1:]
		}
	}
	if lang == "" {
		lang = DefaultLang(b.DataAtom)
	}
	return NormalizeLang(lang)
}

func NormalizeLang(lang string) string {
	if alias, ok := langAliases[lang]; ok {
		return alias
	}
	return lang
}
