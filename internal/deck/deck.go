// Package deck defines the engine-neutral directive sequence that sits
// between an engine adapter and the renderer.
package deck

import (
	"strconv"
	"strings"
)

// Directive binds one placeholder token to the value tuple that replaces
// it. Tokens are uppercase identifiers embedded verbatim in templates.
type Directive struct {
	Token  string
	Values []string
}

// D builds a directive from a token and its values.
func D(token string, values ...string) Directive {
	return Directive{Token: token, Values: values}
}

// Text returns the substitution text of the directive: the values joined
// by single spaces. Multi-line block values pass through unchanged.
func (d Directive) Text() string {
	return strings.Join(d.Values, " ")
}

// Bool formats a flag the way both engine decks spell it.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Int formats an integer value.
func Int(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Float formats a floating-point value with the shortest exact
// representation, keeping rendered decks byte-stable.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
