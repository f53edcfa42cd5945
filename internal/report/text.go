package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ccp-p/windowstats/internal/analyzer"
)

// WriteText writes every ranked entry of r, most frequent first.
func WriteText(w io.Writer, r analyzer.LengthResult) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Instruction windows of length %d, from most frequent to least frequent:\n\n", r.WindowLength)

	if len(r.Ranked) == 0 {
		fmt.Fprintf(bw, "No windows of length %d were found.\n", r.WindowLength)
	}

	for _, e := range r.Ranked {
		fmt.Fprintf(bw, "This window occurred %d time(s):\n", e.Count)
		for _, token := range e.Window {
			bw.WriteString(token)
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteTextFile writes the text report for r to path.
func WriteTextFile(path string, r analyzer.LengthResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := WriteText(file, r); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
