package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindowAnalyzer(t *testing.T) {
	testCases := []struct {
		name    string
		lengths []int
		wantErr error
	}{
		{name: "default lengths", lengths: DefaultWindowLengths},
		{name: "single length", lengths: []int{7}},
		{name: "no lengths", lengths: nil, wantErr: ErrNoWindowLengths},
		{name: "zero length", lengths: []int{1, 0}, wantErr: ErrInvalidWindowLength},
		{name: "negative length", lengths: []int{-2}, wantErr: ErrInvalidWindowLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wa, err := NewWindowAnalyzer(tc.lengths)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lengths, wa.Lengths())
		})
	}
}

func TestWindowAnalyzerAnalyze(t *testing.T) {
	tokens := []string{"A", "B", "A", "B"}

	wa, err := NewWindowAnalyzer(DefaultWindowLengths)
	require.NoError(t, err)

	results, err := wa.Analyze(tokens)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, r := range results {
		l := DefaultWindowLengths[i]
		assert.Equal(t, l, r.WindowLength)
		assert.Equal(t, max(0, len(tokens)-l+1), r.Positions)
	}

	pairs := results[1]
	assert.Equal(t, 2, pairs.Distinct())
	assert.Equal(t, 2, pairs.MaxCount())
	assert.Equal(t, []RankedEntry{{Count: 2, Window: Window{"A", "B"}}}, pairs.Recurring)

	// Length 5 exceeds the input and stays empty without affecting the rest.
	assert.Zero(t, results[4].Distinct())
	assert.Zero(t, results[4].MaxCount())
	assert.Empty(t, results[4].Recurring)
}

func TestWindowAnalyzerEmptyInput(t *testing.T) {
	wa, err := NewWindowAnalyzer([]int{1, 2, 3})
	require.NoError(t, err)

	results, err := wa.Analyze(nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.Positions)
		assert.Empty(t, r.Ranked)
		assert.Empty(t, r.Recurring)
	}
}

func TestWindowAnalyzerParallelMatchesSequential(t *testing.T) {
	tokens := []string{"mov", "add", "mov", "cmp", "jne", "mov", "add", "mov", "cmp", "jne", "ret"}
	lengths := []int{5, 1, 3, 2, 4, 12}

	seq, err := NewWindowAnalyzer(lengths)
	require.NoError(t, err)
	par, err := NewWindowAnalyzer(lengths, WithParallel(true))
	require.NoError(t, err)

	want, err := seq.Analyze(tokens)
	require.NoError(t, err)
	got, err := par.Analyze(tokens)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	for i, r := range got {
		assert.Equal(t, lengths[i], r.WindowLength)
	}
}
