package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "preprocess"
	app.Usage = "Preprocess the style, script and template blocks of component files"
	app.Description = `Compiles each block with the tool for its lang attribute and resolves :global(...) in styles`
	app.Commands = []*cli.Command{
		cmdFile,
		cmdCSS,
		cmdSelector,
	}
	return app
}

var cmdFile = &cli.Command{
	Name:      "file",
	Usage:     "Preprocess a component file",
	ArgsUsage: "<path>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "JSON config file with languages and replace rules",
			EnvVars: envVars("config"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the result to this file instead of stdout",
			EnvVars: envVars("output"),
		},
		&cli.BoolFlag{
			Name:    "json",
			Usage:   "Print the full result, including blocks and diagnostics, as JSON",
			EnvVars: envVars("json"),
		},
		&cli.BoolFlag{
			Name:    "diff",
			Usage:   "Print a unified diff against the input",
			EnvVars: envVars("diff"),
		},
		strictFlag(),
	},
	Action: runFile,
}

var cmdCSS = &cli.Command{
	Name:      "css",
	Usage:     "Resolve :global(...) in a stylesheet",
	ArgsUsage: "<path|->",
	Flags: []cli.Flag{
		globalFlag("Make the whole stylesheet global and prefix @keyframes names"),
		strictFlag(),
	},
	Action: runCSS,
}

var cmdSelector = &cli.Command{
	Name:      "selector",
	Usage:     "Print a selector list with :global(...) resolved",
	ArgsUsage: "<selector>",
	Flags: []cli.Flag{
		globalFlag("Start every complex selector in global scope"),
	},
	Action: runSelector,
}

func strictFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "strict",
		Usage:   "Fail on selectors that cannot be parsed instead of warning",
		EnvVars: envVars("strict"),
	}
}

func globalFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:    "global",
		Aliases: []string{"g"},
		Usage:   usage,
		EnvVars: envVars("global"),
	}
}

// envVars names the environment variable of a flag, e.g. PREPROCESS_STRICT.
func envVars(flag string) []string {
	return []string{"PREPROCESS_" + strcase.ToScreamingSnake(flag)}
}

func installSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func readInput(c *cli.Context) (string, string, error) {
	if c.Args().Len() != 1 {
		return "", "", cli.Exit(fmt.Sprintf("%s expects exactly one argument: %s", c.Command.Name, c.Command.ArgsUsage), 2)
	}
	path := c.Args().First()
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(c.App.Reader)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", "", err
	}
	return path, string(b), nil
}
