package transform

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// ReplaceRule replaces every match of Pattern with Replacement. Patterns use
// JavaScript syntax and may be written as a literal with flags, such as
// `/foo/i`. A literal without the g flag replaces only the first match.
type ReplaceRule struct {
	Pattern     string
	Replacement string
}

// ApplyReplace runs rules over source in order.
func ApplyReplace(source string, rules []ReplaceRule) (string, error) {
	for _, rule := range rules {
		re, count, err := compileReplaceRule(rule.Pattern)
		if err != nil {
			return source, err
		}
		source, err = re.Replace(source, rule.Replacement, -1, count)
		if err != nil {
			return source, errors.Wrapf(err, "replacing %s", rule.Pattern)
		}
	}
	return source, nil
}

func compileReplaceRule(pattern string) (*regexp2.Regexp, int, error) {
	options := regexp2.RegexOptions(regexp2.ECMAScript)
	count := -1
	if i := strings.LastIndexByte(pattern, '/'); strings.HasPrefix(pattern, "/") && i > 0 {
		flags := pattern[i+1:]
		pattern = pattern[1:i]
		count = 1
		for _, flag := range flags {
			switch flag {
			case 'g':
				count = -1
			case 'i':
				options |= regexp2.IgnoreCase
			case 'm':
				options |= regexp2.Multiline
			default:
				return nil, 0, errors.Errorf("unsupported flag %q in replace pattern /%s/%s", flag, pattern, flags)
			}
		}
	}
	re, err := regexp2.Compile(pattern, options)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "invalid replace pattern %q", pattern)
	}
	return re, count, nil
}
