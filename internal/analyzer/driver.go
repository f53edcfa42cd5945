package analyzer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoWindowLengths is returned when a run has nothing to analyze.
var ErrNoWindowLengths = errors.New("no window lengths configured")

// DefaultWindowLengths is used when no lengths are configured.
var DefaultWindowLengths = []int{1, 2, 3, 4, 5}

// LengthResult holds everything computed for one window length.
type LengthResult struct {
	WindowLength int
	// Positions is the number of offsets a window could start at.
	Positions int
	Ranked    []RankedEntry
	Recurring []RankedEntry
}

// Distinct returns the number of distinct windows.
func (r LengthResult) Distinct() int {
	return len(r.Ranked)
}

// MaxCount returns the highest count, zero for an empty result.
func (r LengthResult) MaxCount() int {
	if len(r.Ranked) == 0 {
		return 0
	}
	return r.Ranked[0].Count
}

// WindowAnalyzer runs the frequency analysis for several window lengths.
type WindowAnalyzer struct {
	lengths  []int
	parallel bool
}

// Option configures a WindowAnalyzer.
type Option func(*WindowAnalyzer)

// WithParallel processes window lengths concurrently.
func WithParallel(parallel bool) Option {
	return func(wa *WindowAnalyzer) {
		wa.parallel = parallel
	}
}

// NewWindowAnalyzer validates the lengths and creates an analyzer.
func NewWindowAnalyzer(lengths []int, opts ...Option) (*WindowAnalyzer, error) {
	if len(lengths) == 0 {
		return nil, ErrNoWindowLengths
	}
	for _, l := range lengths {
		if l < 1 {
			return nil, fmt.Errorf("window length %d: %w", l, ErrInvalidWindowLength)
		}
	}

	wa := &WindowAnalyzer{lengths: append([]int(nil), lengths...)}
	for _, opt := range opts {
		opt(wa)
	}
	return wa, nil
}

// Lengths returns the configured window lengths in processing order.
func (wa *WindowAnalyzer) Lengths() []int {
	return append([]int(nil), wa.lengths...)
}

// Analyze computes one LengthResult per configured length, in configured
// order. The token slice is only read.
func (wa *WindowAnalyzer) Analyze(tokens []string) ([]LengthResult, error) {
	results := make([]LengthResult, len(wa.lengths))

	if !wa.parallel {
		for i, l := range wa.lengths {
			r, err := AnalyzeLength(tokens, l)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	errs := make([]error, len(wa.lengths))
	var wg sync.WaitGroup
	for i, l := range wa.lengths {
		wg.Add(1)
		go func(i, l int) {
			defer wg.Done()
			results[i], errs[i] = AnalyzeLength(tokens, l)
		}(i, l)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// AnalyzeLength builds, ranks and filters the table for a single length.
func AnalyzeLength(tokens []string, windowLength int) (LengthResult, error) {
	ft, err := BuildFrequencyTable(tokens, windowLength)
	if err != nil {
		return LengthResult{}, fmt.Errorf("window length %d: %w", windowLength, err)
	}

	ranked := RankByFrequency(ft)
	return LengthResult{
		WindowLength: windowLength,
		Positions:    ft.Total(),
		Ranked:       ranked,
		Recurring:    FilterRecurring(ranked),
	}, nil
}
