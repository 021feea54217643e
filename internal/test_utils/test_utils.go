package test_utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

func RemoveNewlines(input string) string {
	return strings.ReplaceAll(input, "\n", "")
}

func Dedent(input string) string {
	return dedent.Dedent( // removes any leading whitespace
		strings.ReplaceAll( // compress linebreaks to 1 or 2 lines max
			strings.TrimLeft(
				strings.TrimRight(input, " \n\r"), // remove any trailing whitespace
				" \t\r\n"),                        // remove leading whitespace
			"\n\n\n", "\n\n"),
	)
}

func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escapeCode := func(code int) string {
		return fmt.Sprintf("\x1b[%dm", code)
	}
	diff := cmp.Diff(x, y, opts...)
	if diff == "" {
		return ""
	}
	ss := strings.Split(diff, "\n")
	for i, s := range ss {
		switch {
		case strings.HasPrefix(s, "-"):
			ss[i] = escapeCode(31) + s + escapeCode(0)
		case strings.HasPrefix(s, "+"):
			ss[i] = escapeCode(32) + s + escapeCode(0)
		}
	}
	return strings.Join(ss, "\n")
}

// Wrap returns a minimal component document with source inside the given tag.
func Wrap(tag string, attrs string, source string) string {
	open := "<" + tag
	if attrs != "" {
		open += " " + attrs
	}
	return open + ">\n" + Dedent(source) + "\n</" + tag + ">"
}

// RedactTestName replaces the characters that cannot appear in a snapshot
// file name.
func RedactTestName(testCaseName string) string {
	return snapshotNameReplacer.Replace(testCaseName)
}

var snapshotNameReplacer = strings.NewReplacer(
	"#", "_", "<", "_", ">", "_", "(", "_", ")", "_", ":", "_", " ", "_",
	"'", "_", "\"", "_", "@", "_", "`", "_", "+", "_", ",", "_", "/", "_",
)

type OutputKind int

const (
	CssOutput OutputKind = iota
	HtmlOutput
	JsonOutput
)

var outputKind = map[OutputKind]string{
	CssOutput:  "css",
	HtmlOutput: "html",
	JsonOutput: "json",
}

type SnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Input        string
	Output       string
	Kind         OutputKind
	FolderName   string
}

// MakeSnapshot records the input and output of a test case in its own
// snapshot file.
func MakeSnapshot(options *SnapshotOptions) {
	folderName := "__snapshots__"
	if options.FolderName != "" {
		folderName = options.FolderName
	}

	s := snaps.WithConfig(
		snaps.Filename(RedactTestName(options.TestCaseName)),
		snaps.Dir(folderName),
	)

	snapshot := "## Input\n\n```\n"
	snapshot += Dedent(options.Input)
	snapshot += "\n```\n\n## Output\n\n"
	snapshot += "```" + outputKind[options.Kind] + "\n"
	snapshot += Dedent(options.Output)
	snapshot += "\n```"

	s.MatchSnapshot(options.Testing, snapshot)
}
