package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"COMMAND", "DEL", "FLUSHALL", "GET", "SET",
			"exit", "help", "history", "quit",
		},
	}
}

// Complete returns the commands starting with prefix, ignoring case.
// Only the command name is completed; a prefix containing a space yields
// nothing.
func (c *Completer) Complete(prefix string) []string {
	if strings.ContainsAny(prefix, " \t") {
		return nil
	}
	upper := strings.ToUpper(prefix)

	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToUpper(cmd), upper) {
			suggestions = append(suggestions, cmd)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}
