package validate

import (
	"fmt"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	// KindRange flags a bounded scalar outside its declared domain.
	KindRange Kind = "range"
	// KindSumInvariant flags a move-set whose frequencies do not sum to 1.
	KindSumInvariant Kind = "sum-invariant"
	// KindOrdering flags two fields whose required ordering is violated.
	KindOrdering Kind = "ordering"
	// KindDependency flags a field supplied without, or against, the
	// feature flag it depends on.
	KindDependency Kind = "dependency"
	// KindReferential flags a reference to an undeclared molecule kind.
	KindReferential Kind = "referential"
	// KindCardinality flags a list whose length does not match its peer.
	KindCardinality Kind = "cardinality"
)

// specificity orders kinds from most to least specific. When two findings
// concern the same field only the most specific one is reported.
var specificity = map[Kind]int{
	KindRange:        0,
	KindReferential:  1,
	KindCardinality:  2,
	KindDependency:   3,
	KindOrdering:     4,
	KindSumInvariant: 5,
}

// Error is a single validation finding: the field, the offending value,
// and the invariant it violates.
type Error struct {
	Kind      Kind
	Field     string
	Value     any
	Invariant string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: field %q = %v violates %q", e.Kind, e.Field, e.Value, e.Invariant)
}

// Errors is the full collection of findings for one parameter set.
type Errors []*Error

// Error implements the error interface by joining all findings.
func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasKind reports whether any finding is of the given kind.
func (es Errors) HasKind(k Kind) bool {
	for _, e := range es {
		if e.Kind == k {
			return true
		}
	}
	return false
}
