package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxTokenSize bounds a single input line.
const maxTokenSize = 1024 * 1024

// ReadTokens reads one token per line, keeping order. A trailing newline does
// not produce an empty final token; blank lines in between are kept.
func ReadTokens(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(bufio.ScanLines)

	tokens := make([]string, 0)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan tokens: %w", err)
	}
	return tokens, nil
}

// LoadTokens reads the token file at path.
func LoadTokens(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	tokens, err := ReadTokens(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tokens, nil
}
