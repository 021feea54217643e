package preprocess

import "strings"

type AttributeType uint32

const (
	QuotedAttribute AttributeType = iota
	EmptyAttribute
	ExpressionAttribute
)

// Attribute is an attribute of a block's opening tag. Keys are lower-cased.
// For an ExpressionAttribute (`global={true}`) Val holds the text between
// the braces.
type Attribute struct {
	Key  string
	Val  string
	Type AttributeType
}

func newAttribute(key string, val string) Attribute {
	switch {
	case val == "":
		return Attribute{Key: key, Type: EmptyAttribute}
	case len(val) >= 2 && val[0] == '{' && val[len(val)-1] == '}':
		return Attribute{Key: key, Val: strings.TrimSpace(val[1 : len(val)-1]), Type: ExpressionAttribute}
	}
	return Attribute{Key: key, Val: val, Type: QuotedAttribute}
}

func HasAttr(attrs []Attribute, key string) bool {
	for _, attr := range attrs {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func GetAttr(attrs []Attribute, key string) *Attribute {
	for i := range attrs {
		if attrs[i].Key == key {
			return &attrs[i]
		}
	}
	return nil
}

// GetQuotedAttr returns the value of key, or "" when it is missing or not a
// plain value.
func GetQuotedAttr(attrs []Attribute, key string) string {
	attr := GetAttr(attrs, key)
	if attr == nil || attr.Type != QuotedAttribute {
		return ""
	}
	return attr.Val
}

// HasTruthyAttr reports whether key is set to a value that enables it:
// `global`, `global=""`, `global="true"`, `global="global"` or `global={true}`.
func HasTruthyAttr(attrs []Attribute, key string) bool {
	for _, attr := range attrs {
		if attr.Key != key {
			continue
		}
		switch attr.Type {
		case EmptyAttribute:
			return true
		case ExpressionAttribute:
			return attr.Val == "true"
		case QuotedAttribute:
			return attr.Val == "" || attr.Val == "true" || attr.Val == key
		}
	}
	return false
}

// WithoutAttrs returns a copy of attrs with every attribute named in keys
// removed.
func WithoutAttrs(attrs []Attribute, keys ...string) []Attribute {
	out := make([]Attribute, 0, len(attrs))
outer:
	for _, attr := range attrs {
		for _, key := range keys {
			if attr.Key == key {
				continue outer
			}
		}
		out = append(out, attr)
	}
	return out
}
