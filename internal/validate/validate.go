// Package validate checks a parameter set against the physical and
// numerical invariants both engines share.
//
// Validation is a pure function: it collects every violation instead of
// failing fast, so one pass reports all problems. A set that passes is
// wrapped in a Validated holding a private deep copy, which downstream
// adapters read; later edits to the caller's set cannot reach an
// already-approved deck.
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/molsim/deckgen/internal/paramset"
)

// Validated wraps a parameter set that passed every check. The inner copy
// is never exposed directly; Spec returns a fresh clone.
type Validated struct {
	ps *paramset.ParameterSet
}

// Spec returns a deep copy of the validated parameter set.
func (v *Validated) Spec() *paramset.ParameterSet {
	return v.ps.Clone()
}

// Label returns the run label of the validated set.
func (v *Validated) Label() string {
	return v.ps.Label
}

// Engine returns the engine kind of the validated set.
func (v *Validated) Engine() paramset.EngineKind {
	return v.ps.Engine
}

// collector gathers findings and applies the per-field tie-break: when
// two findings concern the same field, only the most specific kind is
// kept, exactly once.
type collector struct {
	byField map[string]*Error
	order   []string
}

func newCollector() *collector {
	return &collector{byField: make(map[string]*Error)}
}

func (c *collector) add(kind Kind, field string, value any, invariant string) {
	if prev, ok := c.byField[field]; ok {
		if specificity[kind] >= specificity[prev.Kind] {
			return
		}
		c.byField[field] = &Error{Kind: kind, Field: field, Value: value, Invariant: invariant}
		return
	}
	c.byField[field] = &Error{Kind: kind, Field: field, Value: value, Invariant: invariant}
	c.order = append(c.order, field)
}

func (c *collector) errors() Errors {
	if len(c.order) == 0 {
		return nil
	}
	out := make(Errors, 0, len(c.order))
	for _, field := range c.order {
		out = append(out, c.byField[field])
	}
	return out
}

// ParameterSet validates ps against every invariant and returns either a
// Validated wrapper or the full list of findings.
func ParameterSet(ps *paramset.ParameterSet) (*Validated, Errors) {
	c := newCollector()

	checkEngine(c, ps)
	checkThermo(c, ps)
	checkGeometry(c, ps)
	checkElectrostatics(c, ps)
	checkMoves(c, ps)
	checkExchange(c, ps)
	checkTrials(c, ps)
	checkSchedule(c, ps)
	checkOutput(c, ps)
	checkFiles(c, ps)
	checkDynamics(c, ps)

	if errs := c.errors(); errs != nil {
		return nil, errs
	}
	return &Validated{ps: ps.Clone()}, nil
}

func checkEngine(c *collector, ps *paramset.ParameterSet) {
	switch ps.Engine {
	case paramset.EngineMonteCarlo, paramset.EngineMolecularDynamics:
	default:
		c.add(KindRange, "engine", string(ps.Engine), `engine kind is "gomc" or "gromacs"`)
	}
}

func checkThermo(c *collector, ps *paramset.ParameterSet) {
	if ps.Temperature <= 0 {
		c.add(KindRange, "temperature", ps.Temperature, "temperature > 0 K")
	}
	if ps.PressureCalc && ps.PressureEvery <= 0 {
		c.add(KindRange, "pressure_every", ps.PressureEvery, "pressure interval > 0")
	}
}

func checkGeometry(c *collector, ps *paramset.ParameterSet) {
	g := ps.Geometry
	if len(g.Boxes) == 0 {
		c.add(KindCardinality, "boxes", 0, "at least one box required")
	}
	for i, box := range g.Boxes {
		field := fmt.Sprintf("boxes[%d]", i)
		if len(box) != 3 {
			c.add(KindCardinality, field, len(box), "box carries exactly 3 basis vectors")
			continue
		}
		for j, vec := range box {
			if len(vec) != 3 {
				c.add(KindCardinality, fmt.Sprintf("%s.vector[%d]", field, j), len(vec), "basis vector has 3 components")
			}
		}
	}
	if g.Rcut <= 0 {
		c.add(KindRange, "rcut", g.Rcut, "rcut > 0")
	}
	if g.RcutLow <= 0 {
		c.add(KindRange, "rcut_low", g.RcutLow, "rcut_low > 0")
	}
	// Only meaningful once both radii are individually in range.
	if g.Rcut > 0 && g.RcutLow > 0 && g.RcutLow >= g.Rcut {
		c.add(KindOrdering, "rcut_low", g.RcutLow, "rcut_low < rcut")
	}
}

func checkElectrostatics(c *collector, ps *paramset.ParameterSet) {
	e := ps.Electro
	if e.Ewald && !e.Enabled {
		c.add(KindDependency, "ewald", true, "ewald requires electrostatics enabled")
	}
	if e.Ewald {
		if e.Tolerance <= 0 || e.Tolerance >= 1 {
			c.add(KindRange, "ewald_tolerance", e.Tolerance, "0 < tolerance < 1")
		}
		if n := len(ps.Geometry.Boxes); n > 0 && len(e.RcutCoulomb) > 0 && len(e.RcutCoulomb) != n {
			c.add(KindCardinality, "rcut_coulomb", len(e.RcutCoulomb), "one coulomb cutoff per box")
		}
		for i, rc := range e.RcutCoulomb {
			if rc <= 0 {
				c.add(KindRange, fmt.Sprintf("rcut_coulomb[%d]", i), rc, "coulomb cutoff > 0")
			}
		}
	} else if len(e.RcutCoulomb) > 0 {
		c.add(KindDependency, "rcut_coulomb", e.RcutCoulomb, "coulomb cutoffs require ewald enabled")
	}
}

func checkMoves(c *collector, ps *paramset.ParameterSet) {
	if len(ps.Moves) == 0 {
		// A Monte-Carlo stage with no moves samples nothing; its
		// frequencies sum to 0, not 1.
		if ps.Engine == paramset.EngineMonteCarlo {
			c.add(KindSumInvariant, "moves", 0.0, "move frequencies sum to 1.0")
		}
		return
	}
	names := make([]string, 0, len(ps.Moves))
	for name := range ps.Moves {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := 0.0
	inRange := true
	for _, name := range names {
		freq := ps.Moves[name]
		if freq < 0 || freq > 1 {
			c.add(KindRange, "moves["+name+"]", freq, "frequency in [0, 1]")
			inRange = false
			continue
		}
		sum += freq
	}
	// A per-move range finding is the more specific report; the sum
	// invariant would only restate it.
	if inRange && math.Abs(sum-1.0) > paramset.MoveSumEpsilon {
		c.add(KindSumInvariant, "moves", sum, "move frequencies sum to 1.0")
	}
}

func checkExchange(c *collector, ps *paramset.ParameterSet) {
	ex := ps.Exchange
	if ex == nil {
		return
	}
	if len(ex.VolumeDim) != 3 {
		c.add(KindCardinality, "exchange.volume_dim", len(ex.VolumeDim), "volume dimensions have 3 components")
	}
	if len(ex.Pairs) == 0 {
		c.add(KindCardinality, "exchange.pairs", 0, "exchange block requires at least one pair")
	}
	for i, pair := range ex.Pairs {
		field := fmt.Sprintf("exchange.pairs[%d]", i)
		if !ps.HasKind(pair.LargeKind) {
			c.add(KindReferential, field+".large_kind", pair.LargeKind, "molecule kind must be declared")
		}
		if !ps.HasKind(pair.SmallKind) {
			c.add(KindReferential, field+".small_kind", pair.SmallKind, "molecule kind must be declared")
		}
		if pair.Ratio <= 0 {
			c.add(KindRange, field+".ratio", pair.Ratio, "exchange ratio > 0")
		}
		if len(pair.LargeBackbone) != len(pair.SmallBackbone) {
			c.add(KindCardinality, field+".backbone", fmt.Sprintf("%d vs %d", len(pair.LargeBackbone), len(pair.SmallBackbone)), "backbone atom lists have equal length")
		}
	}
}

func checkTrials(c *collector, ps *paramset.ParameterSet) {
	// CBMC trials only drive Monte-Carlo chain growth.
	if ps.Engine != paramset.EngineMonteCarlo {
		return
	}
	t := ps.Trials
	if t.First <= 0 {
		c.add(KindRange, "cbmc.first", t.First, "first trial count > 0")
	}
	if t.Nth <= 0 {
		c.add(KindRange, "cbmc.nth", t.Nth, "nth trial count > 0")
	}
	if t.Angles <= 0 {
		c.add(KindRange, "cbmc.angles", t.Angles, "angle trial count > 0")
	}
	if t.Dihedrals <= 0 {
		c.add(KindRange, "cbmc.dihedrals", t.Dihedrals, "dihedral trial count > 0")
	}
}

func checkSchedule(c *collector, ps *paramset.ParameterSet) {
	s := ps.Schedule
	if s.RunSteps <= 0 {
		c.add(KindRange, "run_steps", s.RunSteps, "run steps > 0")
	}
	if s.EqSteps < 0 {
		c.add(KindRange, "eq_steps", s.EqSteps, "equilibration steps >= 0")
	}
	if s.AdjSteps < 0 {
		c.add(KindRange, "adj_steps", s.AdjSteps, "adjustment interval >= 0")
	}
	if s.RunSteps > 0 && s.EqSteps > s.RunSteps {
		c.add(KindOrdering, "eq_steps", s.EqSteps, "equilibration steps <= run steps")
	}
}

func checkOutput(c *collector, ps *paramset.ParameterSet) {
	channels := make([]string, 0, len(ps.Output))
	for ch := range ps.Output {
		channels = append(channels, string(ch))
	}
	sort.Strings(channels)

	for _, name := range channels {
		cad := ps.Output[paramset.OutputChannel(name)]
		if !cad.Enabled {
			continue
		}
		field := "output[" + name + "]"
		if cad.Every <= 0 {
			c.add(KindRange, field, cad.Every, "enabled channel frequency > 0")
			continue
		}
		if ps.Schedule.RunSteps > 0 && cad.Every > ps.Schedule.RunSteps {
			c.add(KindOrdering, field, cad.Every, "channel frequency <= run steps")
		}
	}

	if ps.Histogram != nil && ps.Histogram.SampleFreq <= 0 {
		c.add(KindRange, "histogram.sample_freq", ps.Histogram.SampleFreq, "sample frequency > 0")
	}
}

func checkFiles(c *collector, ps *paramset.ParameterSet) {
	type key struct {
		role paramset.FileRole
		box  int
	}
	seen := make(map[key]bool)
	for i, ref := range ps.Files {
		k := key{ref.Role, ref.Box}
		if seen[k] {
			c.add(KindCardinality, fmt.Sprintf("files[%d]", i), string(ref.Role), "one file per role per box")
			continue
		}
		seen[k] = true
	}
}

func checkDynamics(c *collector, ps *paramset.ParameterSet) {
	if ps.Engine != paramset.EngineMolecularDynamics {
		return
	}
	d := ps.Dynamics
	if d == nil {
		c.add(KindDependency, "dynamics", nil, "molecular-dynamics engine requires a dynamics block")
		return
	}
	if d.TimestepFS <= 0 {
		c.add(KindRange, "dynamics.timestep_fs", d.TimestepFS, "timestep > 0 fs")
	}
	if d.Integrator == "" {
		c.add(KindRange, "dynamics.integrator", d.Integrator, "integrator kind required")
	}
}
