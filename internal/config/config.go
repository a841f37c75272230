// Package config defines the format-agnostic representation of a plan
// file and the interface format-specific loaders implement.
package config

import (
	"context"

	"github.com/molsim/deckgen/internal/paramset"
)

// Chain is one named sequence of simulation stages sharing restart
// continuity.
type Chain struct {
	Name    string
	ChainID string
	Stages  []*paramset.ParameterSet
}

// Plan is the unified, format-agnostic representation of an entire plan
// file: every chain it declares.
type Plan struct {
	Chains []*Chain
}

// Loader is the interface for a format-specific plan loader. It reads a
// plan file and translates it into the format-agnostic model.
type Loader interface {
	Load(ctx context.Context, path string) (*Plan, error)
}
