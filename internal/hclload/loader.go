// Package hclload implements the HCL plan loader.
package hclload

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/molsim/deckgen/internal/config"
	"github.com/molsim/deckgen/internal/ctxlog"
	"github.com/molsim/deckgen/internal/schema"
)

// Loader reads .hcl plan files into the format-agnostic model.
type Loader struct{}

// NewLoader creates an HCL plan loader.
func NewLoader() *Loader { return &Loader{} }

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, diags)
	}

	var planFile schema.PlanFile
	if diags := gohcl.DecodeBody(file.Body, nil, &planFile); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, diags)
	}
	logger.Debug("Plan file decoded.", "path", path, "simulations", len(planFile.Simulations))

	plan := &config.Plan{}
	for _, sim := range planFile.Simulations {
		chain, err := translateSimulation(sim)
		if err != nil {
			return nil, fmt.Errorf("simulation %q: %w", sim.Name, err)
		}
		plan.Chains = append(plan.Chains, chain)
	}
	return plan, nil
}
