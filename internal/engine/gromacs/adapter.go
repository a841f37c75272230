// Package gromacs projects the universal parameter set onto a
// GROMACS-style molecular-dynamics .mdp parameter deck.
//
// The universal set speaks Angstrom and femtoseconds; the deck speaks
// nanometers and picoseconds. All unit conversion happens here so the
// shared representation stays engine-neutral.
package gromacs

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/molsim/deckgen/internal/deck"
	"github.com/molsim/deckgen/internal/engine"
	"github.com/molsim/deckgen/internal/paramset"
	"github.com/molsim/deckgen/internal/validate"
)

//go:embed template.mdp
var defaultTemplate string

// defaultNeighborList is the nstlist fallback when the dynamics block
// leaves it unset.
const defaultNeighborList = 10

// Adapter renders molecular-dynamics parameter decks.
type Adapter struct{}

// New creates the molecular-dynamics adapter.
func New() *Adapter { return &Adapter{} }

// Kind implements engine.Adapter.
func (a *Adapter) Kind() paramset.EngineKind { return paramset.EngineMolecularDynamics }

// DeckName implements engine.Adapter.
func (a *Adapter) DeckName() string { return "run.mdp" }

// Template implements engine.Adapter.
func (a *Adapter) Template() string { return defaultTemplate }

// Vocabulary implements engine.Adapter.
func (a *Adapter) Vocabulary() []string {
	return []string{
		"RUN_LABEL", "RCUT_LOW", "EQ_STEPS", "ADJ_STEPS", "MOL_KINDS", "BOX_VECTORS",
		"INTEGRATOR", "TIMESTEP", "NSTEPS",
		"NSTXOUT", "NSTVOUT", "NSTENERGY", "NSTLOG",
		"NSTLIST", "RLIST", "PBC_KIND",
		"COULOMBTYPE", "RCOULOMB", "RVDW", "EWALD_RTOL",
		"TCOUPL", "TC_GRPS", "TAU_T", "REF_T", "PCOUPL", "TAU_P",
		"GEN_VEL", "GEN_TEMP", "GEN_SEED", "CONTINUATION",
		"FREEZEGRPS", "FREEZEDIM",
	}
}

// Render implements engine.Adapter.
func (a *Adapter) Render(v *validate.Validated) ([]deck.Directive, error) {
	ps := v.Spec()
	if err := a.checkSupported(ps); err != nil {
		return nil, err
	}
	d := ps.Dynamics

	thermostat := d.Thermostat
	if thermostat == "" {
		thermostat = "no"
	}
	barostat := d.Barostat
	if barostat == "" {
		barostat = "no"
	}
	pbc := d.PBC
	if pbc == "" {
		pbc = "xyz"
	}
	nstlist := d.NeighborList
	if nstlist == 0 {
		nstlist = defaultNeighborList
	}

	restart := ps.Seed.Policy == paramset.SeedRestart
	genVel := d.GenVelocity && !restart

	return []deck.Directive{
		deck.D("RUN_LABEL", ps.Label),
		deck.D("RCUT_LOW", deck.Float(ps.Geometry.RcutLow)),
		deck.D("EQ_STEPS", deck.Int(ps.Schedule.EqSteps)),
		deck.D("ADJ_STEPS", deck.Int(ps.Schedule.AdjSteps)),
		deck.D("MOL_KINDS", strings.Join(ps.MoleculeKinds, " ")),
		deck.D("BOX_VECTORS", flattenBox(ps.Geometry.Boxes)),
		deck.D("INTEGRATOR", d.Integrator),
		deck.D("TIMESTEP", deck.Float(d.TimestepFS/1000)), // fs -> ps
		deck.D("NSTEPS", deck.Int(ps.Schedule.RunSteps)),
		deck.D("NSTXOUT", interval(ps.Output, paramset.ChannelCoordinates)),
		deck.D("NSTVOUT", interval(ps.Output, paramset.ChannelRestart)),
		deck.D("NSTENERGY", interval(ps.Output, paramset.ChannelBlockAverage)),
		deck.D("NSTLOG", interval(ps.Output, paramset.ChannelConsole)),
		deck.D("NSTLIST", deck.Int(nstlist)),
		deck.D("RLIST", deck.Float(ps.Geometry.Rcut/10)), // Angstrom -> nm
		deck.D("PBC_KIND", pbc),
		deck.D("COULOMBTYPE", coulombType(ps.Electro)),
		deck.D("RCOULOMB", deck.Float(coulombCutoff(ps)/10)),
		deck.D("RVDW", deck.Float(ps.Geometry.Rcut/10)),
		deck.D("EWALD_RTOL", deck.Float(ps.Electro.Tolerance)),
		deck.D("TCOUPL", thermostat),
		deck.D("TC_GRPS", "System"),
		deck.D("TAU_T", deck.Float(d.TauT)),
		deck.D("REF_T", deck.Float(ps.Temperature)),
		deck.D("PCOUPL", barostat),
		deck.D("TAU_P", deck.Float(d.TauP)),
		deck.D("GEN_VEL", yesNo(genVel)),
		deck.D("GEN_TEMP", deck.Float(ps.Temperature)),
		deck.D("GEN_SEED", genSeed(ps.Seed)),
		deck.D("CONTINUATION", yesNo(restart)),
		deck.D("FREEZEGRPS", strings.Join(d.FreezeGroups, " ")),
		deck.D("FREEZEDIM", freezeDim(len(d.FreezeGroups))),
	}, nil
}

// checkSupported rejects Monte-Carlo-only capabilities. The validator has
// already approved the set; this is a capability check, not validation.
func (a *Adapter) checkSupported(ps *paramset.ParameterSet) error {
	unsupported := func(feature string) error {
		return &engine.UnsupportedFeatureError{Engine: a.Kind(), Feature: feature}
	}
	switch {
	case ps.Engine != a.Kind():
		return unsupported(fmt.Sprintf("parameter set targeting engine %q", ps.Engine))
	case len(ps.Moves) > 0:
		return unsupported("monte-carlo move set")
	case ps.Exchange != nil:
		return unsupported("particle exchange moves")
	case len(ps.ChemPot) > 0:
		return unsupported("chemical potential control")
	case ps.Histogram != nil:
		return unsupported("particle-number histogram output")
	case len(ps.Geometry.Boxes) > 1:
		return unsupported("multiple simulation boxes")
	}
	if cad, ok := ps.Output[paramset.ChannelHistogram]; ok && cad.Enabled {
		return unsupported("histogram output channel")
	}
	if cad, ok := ps.Output[paramset.ChannelCheckpoint]; ok && cad.Enabled {
		return unsupported("checkpoint output channel")
	}
	return nil
}

func interval(out paramset.Output, ch paramset.OutputChannel) string {
	cad, ok := out[ch]
	if !ok || !cad.Enabled {
		return "0"
	}
	return deck.Int(cad.Every)
}

func coulombType(e paramset.Electrostatics) string {
	if e.Ewald {
		return "PME"
	}
	return "Cut-off"
}

// coulombCutoff falls back to the van der Waals cutoff when no per-box
// Coulomb cutoff is configured.
func coulombCutoff(ps *paramset.ParameterSet) float64 {
	if len(ps.Electro.RcutCoulomb) > 0 {
		return ps.Electro.RcutCoulomb[0]
	}
	return ps.Geometry.Rcut
}

func genSeed(s paramset.Seed) string {
	if s.Policy == paramset.SeedFixed {
		return deck.Int(s.Value1)
	}
	// -1 asks the engine to draw its own seed.
	return "-1"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// flattenBox writes the single box's basis vectors as nine values on one
// line so the metadata comment stays a single comment line.
func flattenBox(boxes []paramset.BoxVectors) string {
	if len(boxes) == 0 {
		return ""
	}
	var comps []string
	for _, vec := range boxes[0] {
		for _, x := range vec {
			comps = append(comps, deck.Float(x))
		}
	}
	return strings.Join(comps, " ")
}

func freezeDim(groups int) string {
	dims := make([]string, 0, groups*3)
	for i := 0; i < groups; i++ {
		dims = append(dims, "Y", "Y", "Y")
	}
	return strings.Join(dims, " ")
}
