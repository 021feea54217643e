package main

import (
	"os"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
	"github.com/withastro/preprocess/internal/transform"
)

// config is the JSON form of transform.TransformOptions.
//
//	{
//	  "strict": true,
//	  "globalRule": false,
//	  "replace": [["__VERSION__", "1.0.0"]],
//	  "languages": {"scss": {"command": "sass", "args": ["--stdin"]}}
//	}
type config struct {
	Strict     bool                                 `json:"strict"`
	GlobalRule *bool                                `json:"globalRule"`
	Replace    [][2]string                          `json:"replace"`
	Languages  map[string]transform.ExternalCommand `json:"languages"`
}

func loadConfig(path string, filename string) (transform.TransformOptions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return transform.TransformOptions{}, errors.Wrap(err, "reading config")
	}
	return parseConfig(b, filename)
}

func parseConfig(b []byte, filename string) (transform.TransformOptions, error) {
	var cfg config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return transform.TransformOptions{}, errors.Wrap(err, "parsing config")
	}
	opts := transform.TransformOptions{
		Filename:          filename,
		Strict:            cfg.Strict,
		DisableGlobalRule: cfg.GlobalRule != nil && !*cfg.GlobalRule,
		Languages:         cfg.Languages,
	}
	for _, pair := range cfg.Replace {
		opts.Replace = append(opts.Replace, transform.ReplaceRule{Pattern: pair[0], Replacement: pair[1]})
	}
	return opts, nil
}
