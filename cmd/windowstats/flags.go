package main

import (
	"flag"
	"fmt"

	"github.com/ccp-p/windowstats/internal/config"
)

type cliConfig struct {
	ConfigPath string
	EnvFile    string
	Input      string
	OutputDir  string
	Lengths    string
	Format     string
	Renderer   string
	Parallel   bool
	NoChart    bool
	NoText     bool
	Prune      bool
	Verbose    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, map[string]bool, error) {
	cfg := cliConfig{}

	fs.StringVar(&cfg.ConfigPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&cfg.EnvFile, "env", ".env", "Path to an optional .env file")
	fs.StringVar(&cfg.Input, "input", "", "Token file, one instruction per line")
	fs.StringVar(&cfg.OutputDir, "out", "", "Output directory for reports and charts")
	fs.StringVar(&cfg.Lengths, "lengths", "", "Window lengths, e.g. 1-5 or 1,3,7")
	fs.StringVar(&cfg.Format, "format", "", "Chart format: png or svg")
	fs.StringVar(&cfg.Renderer, "renderer", "", "Chart renderer: native or chrome")
	fs.BoolVar(&cfg.Parallel, "parallel", false, "Analyze window lengths concurrently")
	fs.BoolVar(&cfg.NoChart, "no-chart", false, "Skip bar charts")
	fs.BoolVar(&cfg.NoText, "no-text", false, "Skip text reports")
	fs.BoolVar(&cfg.Prune, "prune", false, "Remove artifacts for window lengths not in this run")
	fs.BoolVar(&cfg.Verbose, "v", false, "Debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return cfg, set, nil
}

// apply overrides cfg with the flags given on the command line.
func (c cliConfig) apply(cfg *config.Config, set map[string]bool) error {
	if set["input"] {
		cfg.Input = c.Input
	}
	if set["out"] {
		cfg.OutputDir = c.OutputDir
	}
	if set["lengths"] {
		lengths, err := config.ParseLengths(c.Lengths)
		if err != nil {
			return fmt.Errorf("-lengths: %w", err)
		}
		cfg.WindowLengths = lengths
	}
	if set["format"] {
		cfg.Chart.Format = c.Format
	}
	if set["renderer"] {
		cfg.Chart.Renderer = c.Renderer
	}
	if set["parallel"] {
		cfg.Parallel = c.Parallel
	}
	if set["no-chart"] {
		cfg.Chart.Enabled = !c.NoChart
	}
	if set["no-text"] {
		cfg.TextReport = !c.NoText
	}
	if set["prune"] {
		cfg.PruneStale = c.Prune
	}
	if set["v"] && c.Verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}
