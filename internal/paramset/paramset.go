package paramset

import "errors"

// ErrImmutableState is returned when a sealed builder is asked to mutate
// the parameter set it already produced.
var ErrImmutableState = errors.New("parameter set is immutable after build")

// EngineKind identifies the simulation engine a stage targets.
type EngineKind string

const (
	// EngineMonteCarlo is a GOMC-style Monte-Carlo engine consuming a
	// run-control deck.
	EngineMonteCarlo EngineKind = "gomc"
	// EngineMolecularDynamics is a GROMACS-style molecular-dynamics engine
	// consuming an .mdp parameter deck.
	EngineMolecularDynamics EngineKind = "gromacs"
)

// SeedPolicy controls how the engine's PRNG state is established.
type SeedPolicy string

const (
	// SeedRestart resumes PRNG state from a prior stage's restart artifact.
	SeedRestart SeedPolicy = "restart"
	// SeedRandom lets the engine draw its own seed.
	SeedRandom SeedPolicy = "random"
	// SeedFixed seeds the PRNG with explicit integer values.
	SeedFixed SeedPolicy = "fixed"
)

// Seed carries the seed policy plus the explicit values a fixed policy
// uses. State points draw two seeds per run; the Monte-Carlo deck
// carries both, while the molecular-dynamics deck has a single gen-seed
// slot and projects Value1 only.
type Seed struct {
	Policy SeedPolicy
	Value1 int64
	Value2 int64
}

// BoxVectors holds the basis vectors of one simulation box. A valid box
// carries exactly three vectors of three components each (Angstrom); the
// validator enforces the cardinality.
type BoxVectors [][]float64

// Geometry groups the box shapes and the pair-interaction cutoff radii.
type Geometry struct {
	Boxes   []BoxVectors
	Rcut    float64 // van der Waals cutoff, Angstrom
	RcutLow float64 // short-range exclusion cutoff, Angstrom
}

// Electrostatics configures the long-range Coulomb treatment.
type Electrostatics struct {
	Enabled   bool
	Ewald     bool
	Tolerance float64
	// RcutCoulomb lists the per-box Coulomb cutoff (Angstrom); it must be
	// supplied only when Ewald is enabled, one entry per box.
	RcutCoulomb []float64
}

// Move names form the universal Monte-Carlo move vocabulary. Adapters map
// each to the engine's own frequency keyword.
const (
	MoveDisplace      = "Displace"
	MoveRotate        = "Rotate"
	MoveRegrow        = "Regrow"
	MoveIntraSwap     = "IntraSwap"
	MoveSwap          = "Swap"
	MoveVolume        = "Volume"
	MoveMultiParticle = "MultiParticle"
	MoveCrankShaft    = "CrankShaft"
	MoveMEMC          = "MEMC"
)

// MoveSet maps a move name to its selection probability. Probabilities
// must sum to 1 within MoveSumEpsilon.
type MoveSet map[string]float64

// MoveSumEpsilon is the tolerance on the move-frequency sum invariant.
const MoveSumEpsilon = 1e-6

// ExchangePair describes one MEMC-style molecule exchange between a large
// and a small molecule kind.
type ExchangePair struct {
	LargeKind     string
	SmallKind     string
	Ratio         int
	LargeBackbone []string
	SmallBackbone []string
}

// Exchange groups the volume-exchange dimensions and the exchange pairs.
type Exchange struct {
	// VolumeDim is the sub-volume used for targeted exchanges; a valid
	// value has exactly three components (Angstrom).
	VolumeDim []float64
	Pairs     []ExchangePair
}

// Trials holds the CBMC chain-growth trial counts.
type Trials struct {
	First     int
	Nth       int
	Angles    int
	Dihedrals int
}

// Schedule is the step budget of one stage.
type Schedule struct {
	RunSteps int64
	EqSteps  int64
	AdjSteps int64
}

// OutputChannel names one of the engine output streams.
type OutputChannel string

const (
	ChannelCoordinates  OutputChannel = "coordinates"
	ChannelRestart      OutputChannel = "restart"
	ChannelCheckpoint   OutputChannel = "checkpoint"
	ChannelConsole      OutputChannel = "console"
	ChannelBlockAverage OutputChannel = "block-average"
	ChannelHistogram    OutputChannel = "histogram"
)

// Cadence is the enable flag and step interval of one output channel.
type Cadence struct {
	Enabled bool
	Every   int64
}

// Output maps each channel to its cadence.
type Output map[OutputChannel]Cadence

// Histogram names the particle-number histogram artifacts of a GCMC run.
type Histogram struct {
	DistName   string
	HistName   string
	RunNumber  int
	RunLetter  string
	SampleFreq int64
}

// FileRole classifies an input file reference.
type FileRole string

const (
	RoleCoordinates FileRole = "coordinates"
	RoleStructure   FileRole = "structure"
	RoleParameters  FileRole = "parameters"
)

// FileRef points at one input file for one box. Existence is not checked
// here; only role uniqueness per box is enforced by the validator.
type FileRef struct {
	Role FileRole
	Box  int
	Path string
}

// Dynamics holds the knobs only a molecular-dynamics engine consumes.
type Dynamics struct {
	Integrator   string
	TimestepFS   float64
	Thermostat   string
	TauT         float64
	Barostat     string
	TauP         float64
	GenVelocity  bool
	PBC          string
	FreezeGroups []string
	NeighborList int64
}

// ParameterSet is the complete, engine-agnostic description of one
// simulation stage.
type ParameterSet struct {
	Engine        EngineKind
	Label         string
	Seed          Seed
	Temperature   float64 // Kelvin
	PressureCalc  bool
	PressureEvery int64
	Geometry      Geometry
	Electro       Electrostatics
	Moves         MoveSet
	Exchange      *Exchange
	Trials        Trials
	Schedule      Schedule
	Output        Output
	Histogram     *Histogram
	Files         []FileRef
	MoleculeKinds []string
	// ChemPot maps a molecule kind to its chemical potential (Kelvin),
	// driving GCMC insertion equilibria.
	ChemPot  map[string]float64
	Dynamics *Dynamics
}

// Clone returns a deep copy of the parameter set. Maps and slices are
// copied so the clone shares no mutable state with the original.
func (ps *ParameterSet) Clone() *ParameterSet {
	if ps == nil {
		return nil
	}
	out := *ps

	if ps.Geometry.Boxes != nil {
		out.Geometry.Boxes = make([]BoxVectors, len(ps.Geometry.Boxes))
		for i, box := range ps.Geometry.Boxes {
			cp := make(BoxVectors, len(box))
			for j, vec := range box {
				cp[j] = append([]float64(nil), vec...)
			}
			out.Geometry.Boxes[i] = cp
		}
	}
	out.Electro.RcutCoulomb = append([]float64(nil), ps.Electro.RcutCoulomb...)

	if ps.Moves != nil {
		out.Moves = make(MoveSet, len(ps.Moves))
		for name, freq := range ps.Moves {
			out.Moves[name] = freq
		}
	}
	if ps.Exchange != nil {
		ex := Exchange{VolumeDim: append([]float64(nil), ps.Exchange.VolumeDim...)}
		ex.Pairs = make([]ExchangePair, len(ps.Exchange.Pairs))
		for i, p := range ps.Exchange.Pairs {
			p.LargeBackbone = append([]string(nil), p.LargeBackbone...)
			p.SmallBackbone = append([]string(nil), p.SmallBackbone...)
			ex.Pairs[i] = p
		}
		out.Exchange = &ex
	}
	if ps.Output != nil {
		out.Output = make(Output, len(ps.Output))
		for ch, c := range ps.Output {
			out.Output[ch] = c
		}
	}
	if ps.Histogram != nil {
		h := *ps.Histogram
		out.Histogram = &h
	}
	out.Files = append([]FileRef(nil), ps.Files...)
	out.MoleculeKinds = append([]string(nil), ps.MoleculeKinds...)
	if ps.ChemPot != nil {
		out.ChemPot = make(map[string]float64, len(ps.ChemPot))
		for kind, mu := range ps.ChemPot {
			out.ChemPot[kind] = mu
		}
	}
	if ps.Dynamics != nil {
		d := *ps.Dynamics
		d.FreezeGroups = append([]string(nil), ps.Dynamics.FreezeGroups...)
		out.Dynamics = &d
	}
	return &out
}

// HasKind reports whether the given molecule kind is declared.
func (ps *ParameterSet) HasKind(kind string) bool {
	for _, k := range ps.MoleculeKinds {
		if k == kind {
			return true
		}
	}
	return false
}
