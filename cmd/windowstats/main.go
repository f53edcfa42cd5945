package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ccp-p/windowstats/internal/analyzer"
	"github.com/ccp-p/windowstats/internal/chart"
	"github.com/ccp-p/windowstats/internal/config"
	"github.com/ccp-p/windowstats/internal/console"
	"github.com/ccp-p/windowstats/internal/finder"
	"github.com/ccp-p/windowstats/internal/pipeline"
	"github.com/ccp-p/windowstats/internal/report"
)

func main() {
	start := time.Now()
	printer := console.NewPrinter(os.Stdout)

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Invalid configuration", "error", err)
		printer.Failed(err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger, printer); err != nil {
		logger.Error("Run failed", "error", err)
		printer.Failed(err)
		os.Exit(1)
	}

	logger.Info("Run finished", "elapsed", time.Since(start))
}

// loadConfig merges defaults, the YAML file, .env and environment, and flags,
// in that order.
func loadConfig(args []string) (*config.Config, error) {
	fset := flag.NewFlagSet("windowstats", flag.ContinueOnError)
	cli, set, err := parseFlags(fset, args)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if cli.ConfigPath != "" {
		if cfg, err = config.LoadFile(cli.ConfigPath); err != nil {
			return nil, err
		}
	}

	if cli.EnvFile != "" {
		if err := config.LoadDotEnv(cli.EnvFile); err != nil {
			if set["env"] || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			slog.Debug("Skipping .env file", "path", cli.EnvFile)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cli.apply(cfg, set); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// run analyzes the input and writes every configured artifact.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, printer *console.Printer) error {
	tokens, err := pipeline.LoadTokens(cfg.Input)
	if err != nil {
		return err
	}
	logger.Info("Loaded tokens", "input", cfg.Input, "tokens", len(tokens))
	printer.Start(cfg.Input, len(tokens), cfg.WindowLengths)

	wa, err := analyzer.NewWindowAnalyzer(cfg.WindowLengths, analyzer.WithParallel(cfg.Parallel))
	if err != nil {
		return err
	}
	results, err := wa.Analyze(tokens)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", cfg.OutputDir, err)
	}

	if cfg.PruneStale {
		artifactFinder, err := finder.NewArtifactFinder(cfg.Prefix)
		if err != nil {
			return err
		}
		removed, err := artifactFinder.PruneStale(cfg.OutputDir, cfg.WindowLengths)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logger.Info("Pruned stale artifacts", "count", len(removed))
		}
		printer.Pruned(removed)
	}

	var renderer chart.Renderer
	if cfg.Chart.Enabled {
		if renderer, err = newChartRenderer(cfg.Chart); err != nil {
			return err
		}
	}

	artifacts := make(map[int][]string, len(results))
	for _, r := range results {
		files, err := writeArtifacts(ctx, cfg, renderer, r)
		if err != nil {
			return err
		}
		artifacts[r.WindowLength] = files

		logger.Debug("Window length done",
			"length", r.WindowLength,
			"positions", r.Positions,
			"distinct", r.Distinct(),
			"recurring", len(r.Recurring),
		)
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = filepath.Join(cfg.OutputDir, f)
		}
		printer.Result(r, paths)
	}

	if cfg.Manifest {
		m := report.NewManifest(cfg.Input, len(tokens), results, artifacts)
		if err := m.WriteFile(filepath.Join(cfg.OutputDir, report.ManifestFile)); err != nil {
			return err
		}
	}

	printer.Done(cfg.OutputDir)
	return nil
}

func newChartRenderer(cc config.ChartConfig) (chart.Renderer, error) {
	opts := chart.Options{
		Format:    chart.Format(cc.Format),
		Width:     cc.Width,
		BarHeight: cc.BarHeight,
		MaxLabel:  cc.MaxLabel,
	}
	if cc.Renderer == config.RendererChrome {
		return chart.NewChromeRenderer(opts, cc.ChromePath, cc.Timeout), nil
	}
	return chart.NewNativeRenderer(opts)
}

// writeArtifacts writes the text report and chart for one window length and
// returns their file names.
func writeArtifacts(ctx context.Context, cfg *config.Config, renderer chart.Renderer, r analyzer.LengthResult) ([]string, error) {
	var files []string

	if cfg.TextReport {
		name := fmt.Sprintf("%s%d.txt", cfg.Prefix, r.WindowLength)
		if err := report.WriteTextFile(filepath.Join(cfg.OutputDir, name), r); err != nil {
			return nil, err
		}
		files = append(files, name)
	}

	if renderer != nil {
		name := fmt.Sprintf("%s%d.%s", cfg.Prefix, r.WindowLength, renderer.Ext())
		if err := writeChart(ctx, filepath.Join(cfg.OutputDir, name), renderer, r); err != nil {
			return nil, err
		}
		files = append(files, name)
	}

	return files, nil
}

func writeChart(ctx context.Context, path string, renderer chart.Renderer, r analyzer.LengthResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := renderer.Render(ctx, file, r); err != nil {
		file.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return file.Close()
}
