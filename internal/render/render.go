// Package render substitutes directive values into deck templates.
//
// The renderer owns a closed vocabulary of placeholder tokens. Template
// text outside that vocabulary passes through untouched, so engine
// keywords that happen to be uppercase are never mistaken for
// placeholders. Rendering is a pure function and byte-stable for
// identical input.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/molsim/deckgen/internal/deck"
)

// tokenPattern matches candidate placeholder tokens: uppercase
// identifiers at word boundaries.
var tokenPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9_]{2,}\b`)

// UnknownPlaceholderError reports a vocabulary token present in the
// template but absent from the directive sequence.
type UnknownPlaceholderError struct {
	Token string
	Line  int
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("template line %d references placeholder %q with no matching directive", e.Line, e.Token)
}

// DuplicateDirectiveError reports a token emitted twice by an adapter.
type DuplicateDirectiveError struct {
	Token string
}

func (e *DuplicateDirectiveError) Error() string {
	return fmt.Sprintf("directive %q emitted more than once", e.Token)
}

// Warning flags a directive that no template placeholder consumed.
// Warnings are collected, never fatal.
type Warning struct {
	Token string
}

func (w Warning) String() string {
	return fmt.Sprintf("directive %q unused by template", w.Token)
}

// Renderer substitutes directives into templates limited to a declared
// placeholder vocabulary.
type Renderer struct {
	vocab map[string]bool
}

// New builds a renderer over the given closed vocabulary.
func New(vocabulary []string) *Renderer {
	vocab := make(map[string]bool, len(vocabulary))
	for _, token := range vocabulary {
		vocab[token] = true
	}
	return &Renderer{vocab: vocab}
}

// Render replaces every vocabulary token in the template with the text of
// its directive. Text after a '#' is comment and is never scanned. The
// returned warnings name directives the template never consumed.
func (r *Renderer) Render(template string, directives []deck.Directive) (string, []Warning, error) {
	values := make(map[string]string, len(directives))
	used := make(map[string]bool, len(directives))
	for _, d := range directives {
		if _, dup := values[d.Token]; dup {
			return "", nil, &DuplicateDirectiveError{Token: d.Token}
		}
		values[d.Token] = d.Text()
	}

	lines := strings.Split(template, "\n")
	for i, line := range lines {
		code, comment := splitComment(line)
		if strings.TrimSpace(code) == "" {
			continue
		}

		var substErr error
		replaced := tokenPattern.ReplaceAllStringFunc(code, func(token string) string {
			if !r.vocab[token] {
				return token
			}
			text, ok := values[token]
			if !ok {
				if substErr == nil {
					substErr = &UnknownPlaceholderError{Token: token, Line: i + 1}
				}
				return token
			}
			used[token] = true
			return text
		})
		if substErr != nil {
			return "", nil, substErr
		}
		lines[i] = replaced + comment
	}

	var warnings []Warning
	for _, d := range directives {
		if !used[d.Token] {
			warnings = append(warnings, Warning{Token: d.Token})
		}
	}
	return strings.Join(lines, "\n"), warnings, nil
}

// splitComment separates a template line into code and trailing comment.
func splitComment(line string) (code, comment string) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx], line[idx:]
	}
	return line, ""
}
