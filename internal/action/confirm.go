package action

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Confirmer asks the user a yes/no question and reports whether they agreed.
type Confirmer func(prompt string) bool

// Always returns a Confirmer that gives the same answer to every prompt.
func Always(answer bool) Confirmer {
	return func(string) bool {
		return answer
	}
}

// NewPromptConfirmer returns a Confirmer that writes the prompt to out and
// reads one line from in. Only "y" (case-insensitive, surrounding spaces
// ignored) confirms; an empty answer or end of input declines.
func NewPromptConfirmer(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)
	var mu sync.Mutex

	return func(prompt string) bool {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprint(out, prompt) //nolint:errcheck // prompt output is best effort
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out) //nolint:errcheck // keep the next log line off the prompt
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}

// IsTerminal reports whether r is attached to an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// DeletePrompt returns the confirmation question asked before deleting path.
func DeletePrompt(path string) string {
	return fmt.Sprintf("CONFIRM: Delete %s? (y/N): ", path)
}
