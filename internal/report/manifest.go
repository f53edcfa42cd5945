package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// ManifestFile is the name of the run manifest in the output directory.
const ManifestFile = "windowstats.json"

// LengthSummary describes the outcome for one window length.
type LengthSummary struct {
	WindowLength int      `json:"window_length"`
	Positions    int      `json:"positions"`
	Distinct     int      `json:"distinct_windows"`
	Recurring    int      `json:"recurring_windows"`
	MaxCount     int      `json:"max_count"`
	Artifacts    []string `json:"artifacts"`
}

// Manifest summarizes a run. It holds no timestamps so identical input
// produces an identical manifest.
type Manifest struct {
	Input   string          `json:"input"`
	Tokens  int             `json:"tokens"`
	Lengths []LengthSummary `json:"lengths"`
}

// NewManifest builds a manifest from analysis results. artifacts maps a window
// length to the file names written for it.
func NewManifest(input string, tokens int, results []analyzer.LengthResult, artifacts map[int][]string) *Manifest {
	m := &Manifest{
		Input:   input,
		Tokens:  tokens,
		Lengths: make([]LengthSummary, 0, len(results)),
	}
	for _, r := range results {
		files := artifacts[r.WindowLength]
		if files == nil {
			files = []string{}
		}
		m.Lengths = append(m.Lengths, LengthSummary{
			WindowLength: r.WindowLength,
			Positions:    r.Positions,
			Distinct:     r.Distinct(),
			Recurring:    len(r.Recurring),
			MaxCount:     r.MaxCount(),
			Artifacts:    files,
		})
	}
	return m
}

// WriteFile writes the manifest as indented JSON.
func (m *Manifest) WriteFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
