package preprocess

import (
	"fmt"
	"strings"
)

// PrintOpenTag writes the opening tag of a block with the given attributes.
func PrintOpenTag(buf *strings.Builder, tag string, attrs []Attribute) {
	buf.WriteString(fmt.Sprintf(`<%s`, tag))
	for _, attr := range attrs {
		buf.WriteString(" ")
		switch attr.Type {
		case QuotedAttribute:
			buf.WriteString(attr.Key)
			buf.WriteString("=")
			buf.WriteString(`"` + strings.ReplaceAll(attr.Val, `"`, "&quot;") + `"`)
		case EmptyAttribute:
			buf.WriteString(attr.Key)
		case ExpressionAttribute:
			buf.WriteString(attr.Key)
			buf.WriteString("=")
			buf.WriteString(`{` + strings.TrimSpace(attr.Val) + `}`)
		}
	}
	buf.WriteString(`>`)
}
