// Package preprocess locates the <style>, <script> and top-level <template>
// blocks of a component file and splices transformed content back into it.
package preprocess

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/withastro/preprocess/internal/loc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Block struct {
	DataAtom atom.Atom
	Data     string
	Attr     []Attribute

	// OpenTag spans the opening tag, ContentLoc the text between the
	// opening and the closing tag.
	OpenTag    loc.Span
	ContentLoc loc.Span
	Content    string
}

type Document struct {
	Source string
	Blocks []*Block
}

// Replacement is new content for a block. A nil Attr keeps the opening tag
// as written; otherwise the tag is printed again with Attr.
type Replacement struct {
	Block   *Block
	Content string
	Attr    []Attribute
}

// Parse tokenizes source and records its blocks in document order. Blocks
// nested in a <template> belong to the template's markup and are not
// reported on their own.
func Parse(source string) (*Document, error) {
	z := html.NewTokenizer(strings.NewReader(source))
	doc := &Document{Source: source}

	var open, template *Block
	templateDepth := 0
	offset := 0
	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return nil, errors.Wrap(z.Err(), "tokenizing document")
			}
			if unterminated := firstNonNil(open, template); unterminated != nil {
				return nil, &loc.ErrorWithRange{
					Code:  loc.ERROR_UNTERMINATED_BLOCK,
					Text:  "Unterminated <" + unterminated.Data + "> block",
					Hint:  "Add a closing </" + unterminated.Data + "> tag.",
					Range: unterminated.OpenTag.Range(),
				}
			}
			return doc, nil
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			if template != nil {
				if a == atom.Template {
					templateDepth++
				}
				continue
			}
			if a != atom.Style && a != atom.Script && a != atom.Template {
				continue
			}
			b := &Block{
				DataAtom:   a,
				Data:       string(name),
				OpenTag:    loc.Span{Start: start, End: offset},
				ContentLoc: loc.Span{Start: offset, End: offset},
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				b.Attr = append(b.Attr, newAttribute(string(key), string(val)))
			}
			if a == atom.Template {
				template, templateDepth = b, 1
			} else {
				open = b
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			var closed *Block
			switch {
			case template != nil:
				if a != atom.Template {
					continue
				}
				if templateDepth--; templateDepth > 0 {
					continue
				}
				closed, template = template, nil
			case open != nil && a == open.DataAtom:
				closed, open = open, nil
			default:
				continue
			}
			closed.ContentLoc.End = start
			closed.Content = source[closed.ContentLoc.Start:start]
			doc.Blocks = append(doc.Blocks, closed)
		}
	}
}

// Splice rebuilds the source with every replacement applied.
func (d *Document) Splice(replacements []Replacement) string {
	sorted := append([]Replacement(nil), replacements...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Block.OpenTag.Start < sorted[j].Block.OpenTag.Start
	})

	var buf strings.Builder
	last := 0
	for _, r := range sorted {
		b := r.Block
		if r.Attr != nil {
			buf.WriteString(d.Source[last:b.OpenTag.Start])
			PrintOpenTag(&buf, b.Data, r.Attr)
		} else {
			buf.WriteString(d.Source[last:b.OpenTag.End])
		}
		buf.WriteString(r.Content)
		last = b.ContentLoc.End
	}
	buf.WriteString(d.Source[last:])
	return buf.String()
}

func firstNonNil(blocks ...*Block) *Block {
	for _, b := range blocks {
		if b != nil {
			return b
		}
	}
	return nil
}
