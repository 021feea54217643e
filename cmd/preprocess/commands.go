package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/diff"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/withastro/preprocess/internal/handler"
	"github.com/withastro/preprocess/internal/loc"
	"github.com/withastro/preprocess/internal/selector"
	"github.com/withastro/preprocess/internal/transform"
)

func runFile(c *cli.Context) error {
	ctx, cancel := installSignals()
	defer cancel()

	path, source, err := readInput(c)
	if err != nil {
		return err
	}
	opts := transform.TransformOptions{Filename: path}
	if configPath := c.String("config"); configPath != "" {
		if opts, err = loadConfig(configPath, path); err != nil {
			return err
		}
	}
	if c.Bool("strict") {
		opts.Strict = true
	}

	h := handler.NewHandler(source, path)
	result, err := transform.Preprocess(ctx, source, opts, h)
	if !c.Bool("json") {
		printDiagnostics(c.App.ErrWriter, h.Diagnostics())
	}
	if result == nil {
		return errors.WithStack(err)
	}

	out := c.App.Writer
	if output := c.String("output"); output != "" {
		f, createErr := os.Create(output)
		if createErr != nil {
			return errors.Wrap(createErr, "creating output file")
		}
		defer f.Close()
		out = f
	}

	switch {
	case c.Bool("json"):
		if writeErr := json.MarshalWrite(out, result, jsontext.WithIndent("  ")); writeErr != nil {
			return errors.Wrap(writeErr, "writing json")
		}
		fmt.Fprintln(out)
	case c.Bool("diff"):
		name := filepath.Base(path)
		if writeErr := diff.Text("a/"+name, "b/"+name, source, result.Code, out); writeErr != nil {
			return errors.Wrap(writeErr, "writing diff")
		}
	default:
		if _, writeErr := io.WriteString(out, result.Code); writeErr != nil {
			return writeErr
		}
	}
	if err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func runCSS(c *cli.Context) error {
	path, source, err := readInput(c)
	if err != nil {
		return err
	}
	mode := transform.GlobalRuleMode
	if c.Bool("global") {
		mode = transform.GlobalStyleMode
	}

	h := handler.NewHandler(source, path)
	code, err := transform.TransformCSS(source, mode, transform.TransformOptions{Strict: c.Bool("strict")}, h)
	printDiagnostics(c.App.ErrWriter, h.Diagnostics())
	if err != nil {
		return cli.Exit("", 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, code)
	return err
}

func runSelector(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("selector expects exactly one argument: "+c.Command.ArgsUsage, 2)
	}
	initial := selector.Local
	if c.Bool("global") {
		initial = selector.Global
	}
	out, err := transform.GlobalizeSelector(c.Args().First(), initial)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func printDiagnostics(w io.Writer, msgs []loc.DiagnosticMessage) {
	for _, msg := range msgs {
		severity := "error"
		switch loc.DiagnosticSeverity(msg.Severity) {
		case loc.WarningType:
			severity = "warning"
		case loc.InformationType:
			severity = "info"
		case loc.HintType:
			severity = "hint"
		}
		if msg.Location != nil {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", msg.Location.File, msg.Location.Line, msg.Location.Column+1, severity, msg.Text)
		} else {
			fmt.Fprintf(w, "%s: %s\n", severity, msg.Text)
		}
		if msg.Hint != "" {
			fmt.Fprintf(w, "  hint: %s\n", msg.Hint)
		}
	}
}
