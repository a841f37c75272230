// Package workflow validates chains of simulation stages and the
// continuity constraints between them.
//
// Within one chain stages are strictly ordered: a stage resuming from a
// restart artifact can only be checked against its predecessor's declared
// outputs. Independent chains share no state and may be planned
// concurrently.
package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/molsim/deckgen/internal/ctxlog"
	"github.com/molsim/deckgen/internal/paramset"
	"github.com/molsim/deckgen/internal/validate"
)

// ConsistencyError reports a cross-stage violation, naming the offending
// stage index and field.
type ConsistencyError struct {
	Stage  int
	Field  string
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("workflow stage %d: field %q: %s", e.Stage, e.Field, e.Reason)
}

// StageError wraps the validation findings of a single stage.
type StageError struct {
	Stage int
	Errs  validate.Errors
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow stage %d failed validation: %s", e.Stage, e.Errs.Error())
}

// Unwrap exposes the underlying validation findings.
func (e *StageError) Unwrap() error { return e.Errs }

// Plan is a validated chain of stages sharing restart continuity.
type Plan struct {
	ChainID string
	Stages  []*validate.Validated
}

// Planner validates stage chains.
type Planner struct {
	chainID string
}

// Option configures a Planner.
type Option func(*Planner)

// WithChainID pins the chain identifier instead of drawing a random
// UUID, keeping planning fully deterministic for reproducible builds.
func WithChainID(id string) Option {
	return func(p *Planner) { p.chainID = id }
}

// NewPlanner creates a Planner.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan validates every stage and the continuity invariants between
// consecutive stages, returning the validated chain.
func (p *Planner) Plan(ctx context.Context, stages []*paramset.ParameterSet) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if len(stages) == 0 {
		return nil, &ConsistencyError{Stage: 0, Field: "stages", Reason: "chain declares no stages"}
	}

	chainID := p.chainID
	if chainID == "" {
		chainID = uuid.NewString()
	}

	validated := make([]*validate.Validated, len(stages))
	for i, stage := range stages {
		v, errs := validate.ParameterSet(stage)
		if errs != nil {
			return nil, &StageError{Stage: i, Errs: errs}
		}
		validated[i] = v
	}
	logger.Debug("All stages passed per-stage validation.", "chain", chainID, "stages", len(stages))

	for i := 1; i < len(stages); i++ {
		if err := checkContinuity(stages[i-1], stages[i], i); err != nil {
			return nil, err
		}
	}
	logger.Debug("Chain continuity checks passed.", "chain", chainID)

	return &Plan{ChainID: chainID, Stages: validated}, nil
}

// PlanAll plans independent chains concurrently. Chains are keyed by
// name; results preserve the keys.
func (p *Planner) PlanAll(ctx context.Context, chains map[string][]*paramset.ParameterSet) (map[string]*Plan, error) {
	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)

	plans := make([]*Plan, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			plan, err := p.Plan(ctx, chains[name])
			if err != nil {
				return fmt.Errorf("chain %q: %w", name, err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Plan, len(names))
	for i, name := range names {
		out[name] = plans[i]
	}
	return out, nil
}

// checkContinuity enforces the invariants linking stage i to stage i-1:
// restart linkage, box-count invariance, and molecule-kind invariance.
func checkContinuity(prev, cur *paramset.ParameterSet, i int) error {
	if cur.Seed.Policy == paramset.SeedRestart {
		cad, ok := prev.Output[paramset.ChannelRestart]
		if !ok || !cad.Enabled {
			return &ConsistencyError{
				Stage:  i,
				Field:  "seed.policy",
				Reason: "stage resumes from restart but the prior stage never enables the restart output channel",
			}
		}
	}
	if len(cur.Geometry.Boxes) != len(prev.Geometry.Boxes) {
		return &ConsistencyError{
			Stage:  i,
			Field:  "boxes",
			Reason: fmt.Sprintf("box count changes across the chain (%d -> %d)", len(prev.Geometry.Boxes), len(cur.Geometry.Boxes)),
		}
	}
	if !sameKinds(prev.MoleculeKinds, cur.MoleculeKinds) {
		return &ConsistencyError{
			Stage:  i,
			Field:  "molecule_kinds",
			Reason: "declared molecule kinds change across the chain",
		}
	}
	return nil
}

// sameKinds compares two kind declarations as sets.
func sameKinds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
