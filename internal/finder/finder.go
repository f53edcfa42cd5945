package finder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
)

// Artifact is an output file left in the output directory by a run.
type Artifact struct {
	Path         string
	WindowLength int
}

// FileFinder finds files whose names match a pattern.
type FileFinder struct {
	pattern *regexp.Regexp
}

// NewFileFinder compiles the file name pattern.
func NewFileFinder(pattern string) (*FileFinder, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return &FileFinder{pattern: regex}, nil
}

// NewArtifactFinder matches `<prefix><length>.<txt|png|svg>`.
func NewArtifactFinder(prefix string) (*FileFinder, error) {
	return NewFileFinder(`^` + regexp.QuoteMeta(prefix) + `(\d+)\.(txt|png|svg)$`)
}

// FindFiles lists matching regular files directly inside directory, sorted.
// A missing directory yields no files.
func (f *FileFinder) FindFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", directory, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if f.pattern.MatchString(entry.Name()) {
			files = append(files, filepath.Join(directory, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FindArtifacts lists matching files together with the window length
// captured by the first group of the pattern.
func (f *FileFinder) FindArtifacts(directory string) ([]Artifact, error) {
	files, err := f.FindFiles(directory)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(files))
	for _, path := range files {
		m := f.pattern.FindStringSubmatch(filepath.Base(path))
		if len(m) < 2 {
			continue
		}
		l, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{Path: path, WindowLength: l})
	}
	return artifacts, nil
}

// PruneStale removes artifacts whose window length is not in keep and
// returns the removed paths.
func (f *FileFinder) PruneStale(directory string, keep []int) ([]string, error) {
	artifacts, err := f.FindArtifacts(directory)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, a := range artifacts {
		if slices.Contains(keep, a.WindowLength) {
			continue
		}
		if err := os.Remove(a.Path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", a.Path, err)
		}
		removed = append(removed, a.Path)
	}
	return removed, nil
}
