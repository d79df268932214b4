// Package prompt is the one human-facing boundary of the resolution
// core: when fuzzy matching produces ranked candidates, something
// here asks the user which document they meant. There is deliberately
// no timeout; a single-user session waits as long as the human does.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/entrhq/recall/pkg/matching"
)

// Choice is the outcome of one disambiguation prompt.
type Choice struct {
	// Path is the chosen document, or the free-text override when
	// Manual is set.
	Path string

	// Manual marks a free-text override typed by the user instead of
	// a pick from the list.
	Manual bool

	// Cancelled means the user dismissed the prompt without choosing.
	Cancelled bool
}

// Chooser asks a human to pick among ranked candidates.
type Chooser interface {
	Choose(term string, candidates []matching.Candidate) (Choice, error)
}

// StdinChooser is a plain line-oriented chooser for non-TTY use:
// a numbered list, a 1-based selection, "m <name>" for a manual
// override, empty input or "q" to cancel.
type StdinChooser struct {
	In  io.Reader
	Out io.Writer
}

// Choose renders the candidates and reads one selection.
func (c *StdinChooser) Choose(term string, candidates []matching.Candidate) (Choice, error) {
	if len(candidates) == 0 {
		return Choice{Cancelled: true}, nil
	}

	fmt.Fprintf(c.Out, "note '%s' not found. similar notes:\n\n", term)
	for i, candidate := range candidates {
		fmt.Fprintf(c.Out, "  %d. %s  (%.0f%%, %s)\n", i+1, candidate.Path, candidate.Confidence*100, candidate.Reason)
	}
	fmt.Fprintf(c.Out, "\nselect 1-%d, 'm <name>' to type a name, or enter to cancel: ", len(candidates))

	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return Choice{Cancelled: true}, nil
	}

	return parseSelection(line, candidates), nil
}

// parseSelection interprets one line of user input against the
// candidate list.
func parseSelection(line string, candidates []matching.Candidate) Choice {
	input := strings.TrimSpace(line)
	switch {
	case input == "" || strings.EqualFold(input, "q"):
		return Choice{Cancelled: true}
	case strings.HasPrefix(strings.ToLower(input), "m "):
		name := strings.TrimSpace(input[2:])
		if name == "" {
			return Choice{Cancelled: true}
		}
		return Choice{Path: name, Manual: true}
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(candidates) {
		return Choice{Cancelled: true}
	}
	return Choice{Path: candidates[n-1].Path}
}
