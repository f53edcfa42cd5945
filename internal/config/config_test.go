package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.WindowLengths)
	assert.Equal(t, "instructionWindows", cfg.Prefix)
	assert.True(t, cfg.TextReport)
	assert.True(t, cfg.Chart.Enabled)

	cfg.WindowLengths[0] = 9
	assert.Equal(t, 1, analyzer.DefaultWindowLengths[0])
}

func TestParse(t *testing.T) {
	t.Run("overrides keep unset defaults", func(t *testing.T) {
		yaml := `
input: traces/used.txt
output_dir: out
window_lengths: [2, 3]
parallel: true
chart:
  format: svg
  width: 900
  timeout: 5s
`
		cfg, err := Parse([]byte(yaml))
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, "traces/used.txt", cfg.Input)
		assert.Equal(t, "out", cfg.OutputDir)
		assert.Equal(t, []int{2, 3}, cfg.WindowLengths)
		assert.True(t, cfg.Parallel)
		assert.Equal(t, "svg", cfg.Chart.Format)
		assert.Equal(t, 900, cfg.Chart.Width)
		assert.Equal(t, 5*time.Second, cfg.Chart.Timeout)

		assert.Equal(t, "instructionWindows", cfg.Prefix)
		assert.True(t, cfg.TextReport)
		assert.True(t, cfg.Chart.Enabled)
		assert.Equal(t, RendererNative, cfg.Chart.Renderer)
	})

	t.Run("disable outputs", func(t *testing.T) {
		cfg, err := Parse([]byte("text_report: false\nchart:\n  enabled: false\n"))
		require.NoError(t, err)
		assert.False(t, cfg.TextReport)
		assert.False(t, cfg.Chart.Enabled)
		assert.True(t, cfg.Manifest)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("window_lengths: [1, 2"))
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "windowstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: win\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "win", cfg.Prefix)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"WINDOWSTATS_INPUT":          "trace.txt",
		"WINDOWSTATS_OUTPUT_DIR":     "reports",
		"WINDOWSTATS_LENGTHS":        "2-4",
		"WINDOWSTATS_PARALLEL":       "true",
		"WINDOWSTATS_CHART_RENDERER": "chrome",
		"WINDOWSTATS_CHROME_PATH":    "/usr/bin/chromium",
		"WINDOWSTATS_LOG_LEVEL":      "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "trace.txt", cfg.Input)
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.Equal(t, []int{2, 3, 4}, cfg.WindowLengths)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, RendererChrome, cfg.Chart.Renderer)
	assert.Equal(t, "/usr/bin/chromium", cfg.Chart.ChromePath)
	assert.Equal(t, "info", cfg.LogLevel)

	t.Run("invalid values", func(t *testing.T) {
		bad := map[string]string{"WINDOWSTATS_PARALLEL": "maybe", "WINDOWSTATS_LENGTHS": "0"}
		err := Default().ApplyEnv(func(k string) (string, bool) {
			v, ok := bad[k]
			return v, ok
		})
		assert.ErrorIs(t, err, analyzer.ErrInvalidWindowLength)

		delete(bad, "WINDOWSTATS_LENGTHS")
		err = Default().ApplyEnv(func(k string) (string, bool) {
			v, ok := bad[k]
			return v, ok
		})
		assert.ErrorContains(t, err, "WINDOWSTATS_PARALLEL")
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WINDOWSTATS_PREFIX=fromdotenv\n"), 0644))
	t.Setenv("WINDOWSTATS_PREFIX", "")
	os.Unsetenv("WINDOWSTATS_PREFIX")

	require.NoError(t, LoadDotEnv(path))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(os.LookupEnv))
	assert.Equal(t, "fromdotenv", cfg.Prefix)

	assert.Error(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestParseLengths(t *testing.T) {
	testCases := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{input: "1-5", want: []int{1, 2, 3, 4, 5}},
		{input: "3", want: []int{3}},
		{input: "1,3,7", want: []int{1, 3, 7}},
		{input: " 1-3 , 8 ", want: []int{1, 2, 3, 8}},
		{input: "2,1-3", want: []int{2, 1, 3}},
		{input: "5-3", wantErr: true},
		{input: "0-2", wantErr: true},
		{input: "a", wantErr: true},
		{input: "", wantErr: true},
		{input: ",", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseLengths(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "no input", modify: func(c *Config) { c.Input = "" }, errMsg: "input"},
		{name: "no output dir", modify: func(c *Config) { c.OutputDir = "" }, errMsg: "output directory"},
		{name: "no prefix", modify: func(c *Config) { c.Prefix = "" }, errMsg: "prefix"},
		{name: "no lengths", modify: func(c *Config) { c.WindowLengths = nil }, errMsg: "no window lengths"},
		{name: "zero length", modify: func(c *Config) { c.WindowLengths = []int{0} }, errMsg: "at least 1"},
		{name: "bad level", modify: func(c *Config) { c.LogLevel = "loud" }, errMsg: "log level"},
		{name: "everything off", modify: func(c *Config) {
			c.TextReport, c.Chart.Enabled, c.Manifest = false, false, false
		}, errMsg: "disabled"},
		{name: "bad format", modify: func(c *Config) { c.Chart.Format = "gif" }, errMsg: "format"},
		{name: "chrome svg", modify: func(c *Config) {
			c.Chart.Renderer, c.Chart.Format = RendererChrome, "svg"
		}, errMsg: "only produces png"},
		{name: "bad renderer", modify: func(c *Config) { c.Chart.Renderer = "gpu" }, errMsg: "renderer"},
		{name: "negative width", modify: func(c *Config) { c.Chart.Width = -1 }, errMsg: "negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}
