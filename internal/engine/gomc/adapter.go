// Package gomc projects the universal parameter set onto a GOMC-style
// Monte-Carlo run-control deck.
package gomc

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/molsim/deckgen/internal/deck"
	"github.com/molsim/deckgen/internal/engine"
	"github.com/molsim/deckgen/internal/paramset"
	"github.com/molsim/deckgen/internal/validate"
)

//go:embed template.conf
var defaultTemplate string

// moveTokens maps each universal move name to its frequency placeholder.
// Every token is always emitted; moves absent from the set render as 0.
var moveTokens = []struct {
	move  string
	token string
}{
	{paramset.MoveDisplace, "DIS_FREQ"},
	{paramset.MoveRotate, "ROT_FREQ"},
	{paramset.MoveRegrow, "REGROWTH_FREQ"},
	{paramset.MoveIntraSwap, "INTRA_SWAP_FREQ"},
	{paramset.MoveSwap, "SWAP_FREQ"},
	{paramset.MoveVolume, "VOL_FREQ"},
	{paramset.MoveMultiParticle, "MULTIPARTICLE_FREQ"},
	{paramset.MoveCrankShaft, "CRANKSHAFT_FREQ"},
	{paramset.MoveMEMC, "MEMC_FREQ"},
}

// channelTokens maps output channels to their enable+frequency placeholders.
var channelTokens = []struct {
	channel paramset.OutputChannel
	token   string
}{
	{paramset.ChannelRestart, "RESTART_FREQ"},
	{paramset.ChannelCheckpoint, "CHECKPOINT_FREQ"},
	{paramset.ChannelCoordinates, "COORD_FREQ"},
	{paramset.ChannelConsole, "CONSOLE_FREQ"},
	{paramset.ChannelBlockAverage, "BLOCK_AVG_FREQ"},
	{paramset.ChannelHistogram, "HIST_FREQ"},
}

// Adapter renders Monte-Carlo run-control decks.
type Adapter struct{}

// New creates the Monte-Carlo adapter.
func New() *Adapter { return &Adapter{} }

// Kind implements engine.Adapter.
func (a *Adapter) Kind() paramset.EngineKind { return paramset.EngineMonteCarlo }

// DeckName implements engine.Adapter.
func (a *Adapter) DeckName() string { return "in.conf" }

// Template implements engine.Adapter.
func (a *Adapter) Template() string { return defaultTemplate }

// Vocabulary implements engine.Adapter.
func (a *Adapter) Vocabulary() []string {
	vocab := []string{
		"RESTART_MODE", "PRNG_KIND", "SEED_BLOCK",
		"FF_FILE", "IO_FILES",
		"TTT", "PRESSURE_CALC", "RCUT", "RCUT_LOW",
		"ELECTROSTATIC", "EWALD", "EWALD_TOL", "RCUT_COULOMB",
		"RUN_STEPS", "EQ_STEPS", "ADJ_STEPS",
		"CHEM_POT", "MEMC_BLOCK",
		"CBMC_FIRST", "CBMC_NTH", "CBMC_ANG", "CBMC_DIH",
		"CELL_BASIS", "OUTPUT_NAME", "HIST_BLOCK",
	}
	for _, mt := range moveTokens {
		vocab = append(vocab, mt.token)
	}
	for _, ct := range channelTokens {
		vocab = append(vocab, ct.token)
	}
	return vocab
}

// Render implements engine.Adapter.
func (a *Adapter) Render(v *validate.Validated) ([]deck.Directive, error) {
	ps := v.Spec()
	if ps.Engine != a.Kind() {
		return nil, &engine.UnsupportedFeatureError{Engine: a.Kind(), Feature: fmt.Sprintf("parameter set targeting engine %q", ps.Engine)}
	}
	if ps.Dynamics != nil {
		return nil, &engine.UnsupportedFeatureError{Engine: a.Kind(), Feature: "molecular-dynamics integrator block"}
	}

	var ds []deck.Directive
	ds = append(ds,
		deck.D("RESTART_MODE", deck.Bool(ps.Seed.Policy == paramset.SeedRestart)),
		deck.D("PRNG_KIND", prngKind(ps.Seed.Policy)),
		deck.D("SEED_BLOCK", seedBlock(ps.Seed)),
		deck.D("FF_FILE", parametersPath(ps)),
		deck.D("IO_FILES", ioFiles(ps)),
		deck.D("TTT", deck.Float(ps.Temperature)),
		deck.D("PRESSURE_CALC", pressureCalc(ps)),
		deck.D("RCUT", deck.Float(ps.Geometry.Rcut)),
		deck.D("RCUT_LOW", deck.Float(ps.Geometry.RcutLow)),
		deck.D("ELECTROSTATIC", deck.Bool(ps.Electro.Enabled)),
		deck.D("EWALD", deck.Bool(ps.Electro.Ewald)),
		deck.D("EWALD_TOL", deck.Float(ps.Electro.Tolerance)),
		deck.D("RCUT_COULOMB", rcutCoulomb(ps)),
		deck.D("RUN_STEPS", deck.Int(ps.Schedule.RunSteps)),
		deck.D("EQ_STEPS", deck.Int(ps.Schedule.EqSteps)),
		deck.D("ADJ_STEPS", deck.Int(ps.Schedule.AdjSteps)),
		deck.D("CHEM_POT", chemPot(ps)),
	)
	for _, mt := range moveTokens {
		ds = append(ds, deck.D(mt.token, deck.Float(ps.Moves[mt.move])))
	}
	ds = append(ds,
		deck.D("MEMC_BLOCK", memcBlock(ps)),
		deck.D("CBMC_FIRST", deck.Int(int64(ps.Trials.First))),
		deck.D("CBMC_NTH", deck.Int(int64(ps.Trials.Nth))),
		deck.D("CBMC_ANG", deck.Int(int64(ps.Trials.Angles))),
		deck.D("CBMC_DIH", deck.Int(int64(ps.Trials.Dihedrals))),
		deck.D("CELL_BASIS", cellBasis(ps)),
		deck.D("OUTPUT_NAME", ps.Label),
	)
	for _, ct := range channelTokens {
		ds = append(ds, deck.D(ct.token, cadence(ps.Output, ct.channel)))
	}
	ds = append(ds, deck.D("HIST_BLOCK", histBlock(ps)))
	return ds, nil
}

func prngKind(policy paramset.SeedPolicy) string {
	switch policy {
	case paramset.SeedRestart:
		return "RESTART"
	case paramset.SeedFixed:
		return "INTSEED"
	default:
		return "RANDOM"
	}
}

func seedBlock(s paramset.Seed) string {
	if s.Policy != paramset.SeedFixed {
		return ""
	}
	if s.Value2 != 0 {
		return fmt.Sprintf("Random_Seed               %d %d", s.Value1, s.Value2)
	}
	return fmt.Sprintf("Random_Seed               %d", s.Value1)
}

func parametersPath(ps *paramset.ParameterSet) string {
	for _, ref := range ps.Files {
		if ref.Role == paramset.RoleParameters {
			return ref.Path
		}
	}
	return ""
}

// ioFiles emits one Coordinates/Structure pair per box, ordered by box
// index so the deck is byte-stable.
func ioFiles(ps *paramset.ParameterSet) string {
	refs := append([]paramset.FileRef(nil), ps.Files...)
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].Box != refs[j].Box {
			return refs[i].Box < refs[j].Box
		}
		return refs[i].Role < refs[j].Role
	})
	var lines []string
	for _, ref := range refs {
		switch ref.Role {
		case paramset.RoleCoordinates:
			lines = append(lines, fmt.Sprintf("Coordinates               %d  %s", ref.Box, ref.Path))
		case paramset.RoleStructure:
			lines = append(lines, fmt.Sprintf("Structure                 %d  %s", ref.Box, ref.Path))
		}
	}
	return strings.Join(lines, "\n")
}

func pressureCalc(ps *paramset.ParameterSet) string {
	if !ps.PressureCalc {
		return "false"
	}
	return "true " + deck.Int(ps.PressureEvery)
}

func rcutCoulomb(ps *paramset.ParameterSet) string {
	var lines []string
	for i, rc := range ps.Electro.RcutCoulomb {
		lines = append(lines, fmt.Sprintf("RcutCoulomb               %d  %s", i, deck.Float(rc)))
	}
	return strings.Join(lines, "\n")
}

func chemPot(ps *paramset.ParameterSet) string {
	kinds := make([]string, 0, len(ps.ChemPot))
	for kind := range ps.ChemPot {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	var lines []string
	for _, kind := range kinds {
		lines = append(lines, fmt.Sprintf("ChemPot                   %s  %s", kind, deck.Float(ps.ChemPot[kind])))
	}
	return strings.Join(lines, "\n")
}

func memcBlock(ps *paramset.ParameterSet) string {
	ex := ps.Exchange
	if ex == nil {
		return ""
	}
	dims := make([]string, len(ex.VolumeDim))
	for i, d := range ex.VolumeDim {
		dims[i] = deck.Float(d)
	}
	var ratios, large, small, largeBB, smallBB []string
	for _, p := range ex.Pairs {
		ratios = append(ratios, deck.Int(int64(p.Ratio)))
		large = append(large, p.LargeKind)
		small = append(small, p.SmallKind)
		largeBB = append(largeBB, p.LargeBackbone...)
		smallBB = append(smallBB, p.SmallBackbone...)
	}
	lines := []string{
		"ExchangeVolumeDim         " + strings.Join(dims, " "),
		"ExchangeRatio             " + strings.Join(ratios, " "),
		"ExchangeLargeKind         " + strings.Join(large, " "),
		"ExchangeSmallKind         " + strings.Join(small, " "),
		"LargeKindBackBone         " + strings.Join(largeBB, " "),
		"SmallKindBackBone         " + strings.Join(smallBB, " "),
	}
	return strings.Join(lines, "\n")
}

func cellBasis(ps *paramset.ParameterSet) string {
	var lines []string
	for i, box := range ps.Geometry.Boxes {
		for j, vec := range box {
			comps := make([]string, len(vec))
			for k, x := range vec {
				comps[k] = deck.Float(x)
			}
			lines = append(lines, fmt.Sprintf("CellBasisVector%d          %d  %s", j+1, i, strings.Join(comps, " ")))
		}
	}
	return strings.Join(lines, "\n")
}

func cadence(out paramset.Output, ch paramset.OutputChannel) string {
	cad, ok := out[ch]
	if !ok {
		return "false"
	}
	if cad.Every <= 0 {
		return deck.Bool(cad.Enabled)
	}
	return deck.Bool(cad.Enabled) + " " + deck.Int(cad.Every)
}

func histBlock(ps *paramset.ParameterSet) string {
	h := ps.Histogram
	if h == nil {
		return ""
	}
	lines := []string{
		"DistName                  " + h.DistName,
		"HistName                  " + h.HistName,
		"RunNumber                 " + deck.Int(int64(h.RunNumber)),
		"RunLetter                 " + h.RunLetter,
		"SampleFreq                " + deck.Int(h.SampleFreq),
	}
	return strings.Join(lines, "\n")
}
