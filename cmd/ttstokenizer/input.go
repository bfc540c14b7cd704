package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// maxStdinBytes bounds text read from stdin.
const maxStdinBytes = 8 << 20

var errNoInput = errors.New("no input text: pass --text, arguments or pipe text on stdin")

// readInput returns the text to process: --text wins, then positional
// arguments joined by spaces, then stdin.
func readInput(cmd *cobra.Command, flagText string, args []string) (string, error) {
	if flagText != "" {
		return flagText, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinBytes+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) > maxStdinBytes {
		return "", fmt.Errorf("stdin exceeds %d bytes", maxStdinBytes)
	}

	s := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(s) == "" {
		return "", errNoInput
	}

	return s, nil
}

// readLines splits input into non-empty lines, for batch commands.
func readLines(s string) []string {
	var lines []string
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
