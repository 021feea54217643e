package transform

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

var ErrMissingDependency = errors.New("missing dependency")

// ExternalCommand compiles a block by running Command with the block content
// on stdin and reading the result from stdout. `{filename}` and `{dir}` in
// Args are replaced with the document's path and directory.
type ExternalCommand struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

var importRE = regexp2.MustCompile(`@(?:import|use|forward|require)\s+(?:url\()?\s*(['"])([^'"]+)\1`, regexp2.ECMAScript)

func (c ExternalCommand) Transform(ctx context.Context, in Input) (Output, error) {
	if !HasDepInstalled(c.Command) {
		return Output{}, errors.Wrapf(ErrMissingDependency, "%q is required for lang %q but was not found in PATH", c.Command, in.Lang)
	}

	dir := "."
	if in.Filename != "" {
		dir = filepath.Dir(in.Filename)
	}
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		arg = strings.ReplaceAll(arg, "{filename}", in.Filename)
		args[i] = strings.ReplaceAll(arg, "{dir}", dir)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Stdin = strings.NewReader(in.Content)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Output{}, errors.WithStack(ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Output{}, errors.Errorf("%s: %s", c.Command, msg)
		}
		return Output{}, errors.Wrapf(err, "running %s", c.Command)
	}

	return Output{
		Code:         stdout.String(),
		Dependencies: scanImports(in.Content, dir),
	}, nil
}

// scanImports lists the relative files pulled in by @import, @use, @forward
// and @require statements, resolved against dir.
func scanImports(content string, dir string) []string {
	var deps []string
	m, _ := importRE.FindStringMatch(content)
	for m != nil {
		path := m.GroupByNumber(2).String()
		if isRelativeImport(path) {
			deps = append(deps, filepath.Join(dir, path))
		}
		m, _ = importRE.FindNextMatch(m)
	}
	return deps
}

func isRelativeImport(path string) bool {
	if strings.Contains(path, "://") || strings.HasPrefix(path, "/") {
		return false
	}
	return strings.HasPrefix(path, ".") || !strings.Contains(path, ":")
}
