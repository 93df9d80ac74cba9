package repl

import (
	"sort"
	"strings"
)

// Completer suggests command lines from a fixed vocabulary.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer over commands plus the REPL builtins.
// Entries may contain spaces ("hash inspect").
func NewCompleter(commands ...string) *Completer {
	seen := make(map[string]bool)
	all := make([]string, 0, len(commands)+len(builtins))
	for _, c := range append(append([]string{}, commands...), builtins...) {
		if !seen[c] {
			seen[c] = true
			all = append(all, c)
		}
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns every entry starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Known reports whether word is the first word of any entry.
func (c *Completer) Known(word string) bool {
	for _, cmd := range c.commands {
		first, _, _ := strings.Cut(cmd, " ")
		if first == word {
			return true
		}
	}
	return false
}

// AutoComplete implements the x/term AutoCompleteCallback for the Tab
// key. A single match replaces the text before the cursor; several
// matches extend it to their longest common prefix.
func (c *Completer) AutoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	prefix := line[:pos]
	matches := c.Complete(prefix)
	if len(matches) == 0 {
		return "", 0, false
	}

	completed := matches[0]
	if len(matches) == 1 {
		completed += " "
	} else {
		completed = commonPrefix(matches)
	}
	if len(completed) <= len(prefix) {
		return "", 0, false
	}
	return completed + line[pos:], len(completed), true
}

func commonPrefix(list []string) string {
	prefix := list[0]
	for _, s := range list[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
