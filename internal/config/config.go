package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// Chart renderers.
const (
	RendererNative = "native"
	RendererChrome = "chrome"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WINDOWSTATS_"

// Config holds everything a run needs.
type Config struct {
	Input         string      `yaml:"input"`
	OutputDir     string      `yaml:"output_dir"`
	Prefix        string      `yaml:"prefix"`
	WindowLengths []int       `yaml:"window_lengths"`
	Parallel      bool        `yaml:"parallel"`
	TextReport    bool        `yaml:"text_report"`
	Manifest      bool        `yaml:"manifest"`
	PruneStale    bool        `yaml:"prune_stale"`
	LogLevel      string      `yaml:"log_level"`
	Chart         ChartConfig `yaml:"chart"`
}

// ChartConfig controls the bar-chart output.
type ChartConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Renderer   string        `yaml:"renderer"`
	Format     string        `yaml:"format"`
	Width      int           `yaml:"width"`
	BarHeight  int           `yaml:"bar_height"`
	MaxLabel   int           `yaml:"max_label"`
	ChromePath string        `yaml:"chrome_path"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default analyzes lengths 1..5 of usedInstructions.txt and writes reports to
// the working directory.
func Default() *Config {
	return &Config{
		Input:         "usedInstructions.txt",
		OutputDir:     ".",
		Prefix:        "instructionWindows",
		WindowLengths: append([]int(nil), analyzer.DefaultWindowLengths...),
		TextReport:    true,
		Manifest:      true,
		LogLevel:      "info",
		Chart: ChartConfig{
			Enabled:  true,
			Renderer: RendererNative,
			Format:   "png",
			Timeout:  30 * time.Second,
		},
	}
}

// LoadFile reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set.
func LoadDotEnv(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// ApplyEnv overrides fields from WINDOWSTATS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("INPUT", &c.Input)
	str("OUTPUT_DIR", &c.OutputDir)
	str("PREFIX", &c.Prefix)
	str("LOG_LEVEL", &c.LogLevel)
	str("CHART_RENDERER", &c.Chart.Renderer)
	str("CHART_FORMAT", &c.Chart.Format)
	str("CHROME_PATH", &c.Chart.ChromePath)

	if v, ok := lookup(EnvPrefix + "LENGTHS"); ok && v != "" {
		lengths, err := ParseLengths(v)
		if err != nil {
			return fmt.Errorf("%sLENGTHS: %w", EnvPrefix, err)
		}
		c.WindowLengths = lengths
	}

	return errors.Join(
		boolean("PARALLEL", &c.Parallel),
		boolean("CHART", &c.Chart.Enabled),
		boolean("TEXT_REPORT", &c.TextReport),
		boolean("PRUNE_STALE", &c.PruneStale),
	)
}

// ParseLengths parses a list such as "1-5", "2,4" or "1-3,8". Duplicates are
// dropped; order of first appearance is kept.
func ParseLengths(s string) ([]int, error) {
	var lengths []int
	seen := make(map[int]bool)
	add := func(l int) {
		if !seen[l] {
			seen[l] = true
			lengths = append(lengths, l)
		}
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		from, err := parseLength(lo)
		if err != nil {
			return nil, err
		}
		to := from
		if isRange {
			if to, err = parseLength(hi); err != nil {
				return nil, err
			}
			if to < from {
				return nil, fmt.Errorf("invalid range %q", part)
			}
		}
		for l := from; l <= to; l++ {
			add(l)
		}
	}

	if len(lengths) == 0 {
		return nil, analyzer.ErrNoWindowLengths
	}
	return lengths, nil
}

func parseLength(s string) (int, error) {
	l, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid window length %q: %w", s, err)
	}
	if l < 1 {
		return 0, fmt.Errorf("window length %d: %w", l, analyzer.ErrInvalidWindowLength)
	}
	return l, nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.Prefix == "" {
		return fmt.Errorf("artifact prefix is required")
	}
	if len(c.WindowLengths) == 0 {
		return analyzer.ErrNoWindowLengths
	}
	for _, l := range c.WindowLengths {
		if l < 1 {
			return fmt.Errorf("window length %d: %w", l, analyzer.ErrInvalidWindowLength)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if !c.TextReport && !c.Chart.Enabled && !c.Manifest {
		return fmt.Errorf("all outputs are disabled")
	}

	switch c.Chart.Renderer {
	case RendererNative:
		if c.Chart.Format != "png" && c.Chart.Format != "svg" {
			return fmt.Errorf("unsupported chart format %q", c.Chart.Format)
		}
	case RendererChrome:
		if c.Chart.Format != "png" {
			return fmt.Errorf("chrome renderer only produces png, got %q", c.Chart.Format)
		}
	default:
		return fmt.Errorf("unknown chart renderer %q", c.Chart.Renderer)
	}
	if c.Chart.Width < 0 || c.Chart.BarHeight < 0 || c.Chart.MaxLabel < 0 {
		return fmt.Errorf("chart dimensions must not be negative")
	}
	return nil
}
