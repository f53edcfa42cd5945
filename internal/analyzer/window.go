package analyzer

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidWindowLength is returned for window lengths below one.
var ErrInvalidWindowLength = errors.New("window length must be at least 1")

// Window is an ordered run of consecutive tokens.
type Window []string

// Compare orders windows element-wise.
func (w Window) Compare(other Window) int {
	return slices.Compare(w, other)
}

// Key returns the map key for the window. Each token is length-prefixed so
// tokens containing separators cannot collide.
func (w Window) Key() string {
	var sb strings.Builder
	for _, t := range w {
		sb.WriteString(strconv.Itoa(len(t)))
		sb.WriteByte(':')
		sb.WriteString(t)
	}
	return sb.String()
}

// RankedEntry pairs a window with its occurrence count.
type RankedEntry struct {
	Count  int
	Window Window
}

// FrequencyTable maps every distinct window of one length to its count.
type FrequencyTable struct {
	length  int
	counts  map[string]int
	windows map[string]Window
}

// WindowLength returns the length of every window in the table.
func (ft *FrequencyTable) WindowLength() int {
	return ft.length
}

// Len returns the number of distinct windows.
func (ft *FrequencyTable) Len() int {
	return len(ft.counts)
}

// Count returns how often the window occurred, zero if never.
func (ft *FrequencyTable) Count(w Window) int {
	return ft.counts[w.Key()]
}

// Total returns the sum of all counts, i.e. the number of start positions.
func (ft *FrequencyTable) Total() int {
	total := 0
	for _, c := range ft.counts {
		total += c
	}
	return total
}

// Entries returns the table contents in no particular order.
func (ft *FrequencyTable) Entries() []RankedEntry {
	entries := make([]RankedEntry, 0, len(ft.counts))
	for key, c := range ft.counts {
		entries = append(entries, RankedEntry{Count: c, Window: ft.windows[key]})
	}
	return entries
}

// BuildFrequencyTable counts every contiguous window of windowLength tokens.
// A window longer than the sequence yields an empty table.
func BuildFrequencyTable(tokens []string, windowLength int) (*FrequencyTable, error) {
	if windowLength < 1 {
		return nil, ErrInvalidWindowLength
	}

	ft := &FrequencyTable{
		length:  windowLength,
		counts:  make(map[string]int),
		windows: make(map[string]Window),
	}

	for i := 0; i <= len(tokens)-windowLength; i++ {
		w := Window(tokens[i : i+windowLength])
		key := w.Key()
		if _, ok := ft.counts[key]; !ok {
			ft.windows[key] = slices.Clone(w)
		}
		ft.counts[key]++
	}

	return ft, nil
}

// compareRanked sorts by count, then window, both descending.
func compareRanked(a, b RankedEntry) int {
	if a.Count != b.Count {
		return b.Count - a.Count
	}
	return b.Window.Compare(a.Window)
}

// RankByFrequency returns every entry sorted by descending count. Equal counts
// are ordered by descending window.
func RankByFrequency(ft *FrequencyTable) []RankedEntry {
	entries := ft.Entries()
	slices.SortStableFunc(entries, compareRanked)
	return entries
}

// FilterRecurring keeps the entries seen more than once, order preserved.
func FilterRecurring(entries []RankedEntry) []RankedEntry {
	recurring := make([]RankedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Count > 1 {
			recurring = append(recurring, e)
		}
	}
	return recurring
}
