// Package yamlload implements the YAML plan loader. It mirrors the HCL
// loader behind the same config.Loader interface, so drivers can keep
// plans in whichever format their tooling prefers.
package yamlload

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/molsim/deckgen/internal/config"
	"github.com/molsim/deckgen/internal/ctxlog"
	"github.com/molsim/deckgen/internal/paramset"
)

// planFile is the YAML shape of a plan file.
type planFile struct {
	Simulations []*simulation `yaml:"simulations"`
}

type simulation struct {
	Name          string   `yaml:"name"`
	Engine        string   `yaml:"engine"`
	MoleculeKinds []string `yaml:"molecule_kinds"`
	ChainID       string   `yaml:"chain_id"`
	Stages        []*stage `yaml:"stages"`
}

type stage struct {
	Name          string             `yaml:"name"`
	Temperature   float64            `yaml:"temperature"`
	SeedPolicy    string             `yaml:"seed_policy"`
	Seed1         int64              `yaml:"seed1"`
	Seed2         int64              `yaml:"seed2"`
	PressureEvery *int64             `yaml:"pressure_every"`
	Moves         map[string]float64 `yaml:"moves"`
	ChemPot       map[string]float64 `yaml:"chem_pot"`
	Geometry      *geometry          `yaml:"geometry"`
	Electro       *electrostatics    `yaml:"electrostatics"`
	Exchange      *exchange          `yaml:"exchange"`
	Trials        *trials            `yaml:"cbmc"`
	Schedule      *schedule          `yaml:"schedule"`
	Outputs       map[string]cadence `yaml:"output"`
	Histogram     *histogram         `yaml:"histogram"`
	Files         []*file            `yaml:"files"`
	Dynamics      *dynamics          `yaml:"dynamics"`
}

type geometry struct {
	Rcut    float64       `yaml:"rcut"`
	RcutLow float64       `yaml:"rcut_low"`
	Boxes   [][][]float64 `yaml:"boxes"`
}

type electrostatics struct {
	Enabled     bool      `yaml:"enabled"`
	Ewald       bool      `yaml:"ewald"`
	Tolerance   float64   `yaml:"tolerance"`
	RcutCoulomb []float64 `yaml:"rcut_coulomb"`
}

type exchange struct {
	VolumeDim []float64 `yaml:"volume_dim"`
	Pairs     []*pair   `yaml:"pairs"`
}

type pair struct {
	LargeKind     string   `yaml:"large_kind"`
	SmallKind     string   `yaml:"small_kind"`
	Ratio         int      `yaml:"ratio"`
	LargeBackbone []string `yaml:"large_backbone"`
	SmallBackbone []string `yaml:"small_backbone"`
}

type trials struct {
	First     int `yaml:"first"`
	Nth       int `yaml:"nth"`
	Angles    int `yaml:"angles"`
	Dihedrals int `yaml:"dihedrals"`
}

type schedule struct {
	RunSteps int64 `yaml:"run_steps"`
	EqSteps  int64 `yaml:"eq_steps"`
	AdjSteps int64 `yaml:"adj_steps"`
}

type cadence struct {
	Enabled bool  `yaml:"enabled"`
	Every   int64 `yaml:"every"`
}

type histogram struct {
	DistName   string `yaml:"dist_name"`
	HistName   string `yaml:"hist_name"`
	RunNumber  int    `yaml:"run_number"`
	RunLetter  string `yaml:"run_letter"`
	SampleFreq int64  `yaml:"sample_freq"`
}

type file struct {
	Role string `yaml:"role"`
	Box  int    `yaml:"box"`
	Path string `yaml:"path"`
}

type dynamics struct {
	Integrator   string   `yaml:"integrator"`
	TimestepFS   float64  `yaml:"timestep_fs"`
	Thermostat   string   `yaml:"thermostat"`
	TauT         float64  `yaml:"tau_t"`
	Barostat     string   `yaml:"barostat"`
	TauP         float64  `yaml:"tau_p"`
	GenVelocity  bool     `yaml:"gen_velocity"`
	PBC          string   `yaml:"pbc"`
	FreezeGroups []string `yaml:"freeze_groups"`
	NeighborList int64    `yaml:"neighbor_list"`
}

// Loader reads .yaml plan files into the format-agnostic model.
type Loader struct{}

// NewLoader creates a YAML plan loader.
func NewLoader() *Loader { return &Loader{} }

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	var pf planFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("failed to decode plan file %s: %w", path, err)
	}
	logger.Debug("Plan file decoded.", "path", path, "simulations", len(pf.Simulations))

	plan := &config.Plan{}
	for _, sim := range pf.Simulations {
		chain, err := translateSimulation(sim)
		if err != nil {
			return nil, fmt.Errorf("simulation %q: %w", sim.Name, err)
		}
		plan.Chains = append(plan.Chains, chain)
	}
	return plan, nil
}

func translateSimulation(sim *simulation) (*config.Chain, error) {
	chain := &config.Chain{Name: sim.Name, ChainID: sim.ChainID}
	for _, st := range sim.Stages {
		ps, err := translateStage(sim, st)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", st.Name, err)
		}
		chain.Stages = append(chain.Stages, ps)
	}
	return chain, nil
}

func translateStage(sim *simulation, st *stage) (*paramset.ParameterSet, error) {
	label := sim.Name + "_" + st.Name
	b := paramset.NewBuilder(paramset.EngineKind(sim.Engine), label).
		Temperature(st.Temperature).
		Seed(translateSeed(st)).
		MoleculeKinds(sim.MoleculeKinds...)

	if st.PressureEvery != nil {
		b.PressureCalc(*st.PressureEvery)
	}
	if st.Moves != nil {
		b.Moves(st.Moves)
	}
	if st.ChemPot != nil {
		b.ChemPot(st.ChemPot)
	}
	if st.Geometry != nil {
		boxes := make([]paramset.BoxVectors, len(st.Geometry.Boxes))
		for i, box := range st.Geometry.Boxes {
			boxes[i] = paramset.BoxVectors(box)
		}
		b.Geometry(paramset.Geometry{Boxes: boxes, Rcut: st.Geometry.Rcut, RcutLow: st.Geometry.RcutLow})
	}
	if st.Electro != nil {
		b.Electrostatics(paramset.Electrostatics{
			Enabled:     st.Electro.Enabled,
			Ewald:       st.Electro.Ewald,
			Tolerance:   st.Electro.Tolerance,
			RcutCoulomb: st.Electro.RcutCoulomb,
		})
	}
	if st.Exchange != nil {
		ex := &paramset.Exchange{VolumeDim: st.Exchange.VolumeDim}
		for _, p := range st.Exchange.Pairs {
			ex.Pairs = append(ex.Pairs, paramset.ExchangePair{
				LargeKind:     p.LargeKind,
				SmallKind:     p.SmallKind,
				Ratio:         p.Ratio,
				LargeBackbone: p.LargeBackbone,
				SmallBackbone: p.SmallBackbone,
			})
		}
		b.Exchange(ex)
	}
	if st.Trials != nil {
		b.Trials(paramset.Trials{First: st.Trials.First, Nth: st.Trials.Nth, Angles: st.Trials.Angles, Dihedrals: st.Trials.Dihedrals})
	}
	if st.Schedule != nil {
		b.Schedule(paramset.Schedule{RunSteps: st.Schedule.RunSteps, EqSteps: st.Schedule.EqSteps, AdjSteps: st.Schedule.AdjSteps})
	}
	if len(st.Outputs) > 0 {
		out := make(paramset.Output, len(st.Outputs))
		for ch, c := range st.Outputs {
			out[paramset.OutputChannel(ch)] = paramset.Cadence{Enabled: c.Enabled, Every: c.Every}
		}
		b.Output(out)
	}
	if st.Histogram != nil {
		b.Histogram(&paramset.Histogram{
			DistName:   st.Histogram.DistName,
			HistName:   st.Histogram.HistName,
			RunNumber:  st.Histogram.RunNumber,
			RunLetter:  st.Histogram.RunLetter,
			SampleFreq: st.Histogram.SampleFreq,
		})
	}
	if len(st.Files) > 0 {
		refs := make([]paramset.FileRef, len(st.Files))
		for i, f := range st.Files {
			refs[i] = paramset.FileRef{Role: paramset.FileRole(f.Role), Box: f.Box, Path: f.Path}
		}
		b.Files(refs...)
	}
	if st.Dynamics != nil {
		b.Dynamics(&paramset.Dynamics{
			Integrator:   st.Dynamics.Integrator,
			TimestepFS:   st.Dynamics.TimestepFS,
			Thermostat:   st.Dynamics.Thermostat,
			TauT:         st.Dynamics.TauT,
			Barostat:     st.Dynamics.Barostat,
			TauP:         st.Dynamics.TauP,
			GenVelocity:  st.Dynamics.GenVelocity,
			PBC:          st.Dynamics.PBC,
			FreezeGroups: st.Dynamics.FreezeGroups,
			NeighborList: st.Dynamics.NeighborList,
		})
	}

	return b.Build()
}

func translateSeed(st *stage) paramset.Seed {
	policy := paramset.SeedPolicy(st.SeedPolicy)
	if st.SeedPolicy == "" {
		policy = paramset.SeedRandom
		if st.Seed1 != 0 || st.Seed2 != 0 {
			policy = paramset.SeedFixed
		}
	}
	return paramset.Seed{Policy: policy, Value1: st.Seed1, Value2: st.Seed2}
}
