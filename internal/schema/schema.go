// Package schema holds the HCL shapes of a plan file. These structs are
// decode targets only; internal/hclload translates them into the
// format-agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// PlanFile is the top-level structure of a plan file.
type PlanFile struct {
	Simulations []*Simulation `hcl:"simulation,block"`
}

// Simulation declares one stage chain: the target engine, the molecule
// kinds present in the topology inputs, and the ordered stages.
type Simulation struct {
	Name          string   `hcl:"name,label"`
	Engine        string   `hcl:"engine"`
	MoleculeKinds []string `hcl:"molecule_kinds,optional"`
	ChainID       string   `hcl:"chain_id,optional"`
	Stages        []*Stage `hcl:"stage,block"`
}

// Stage maps onto one parameter set.
type Stage struct {
	Name          string          `hcl:"name,label"`
	Temperature   float64         `hcl:"temperature"`
	SeedPolicy    string          `hcl:"seed_policy,optional"`
	Seed1         int64           `hcl:"seed1,optional"`
	Seed2         int64           `hcl:"seed2,optional"`
	PressureEvery *int64          `hcl:"pressure_every,optional"`
	Moves         hcl.Expression  `hcl:"moves,optional"`
	ChemPot       hcl.Expression  `hcl:"chem_pot,optional"`
	Geometry      *Geometry       `hcl:"geometry,block"`
	Electro       *Electrostatics `hcl:"electrostatics,block"`
	Exchange      *Exchange       `hcl:"exchange,block"`
	Trials        *Trials         `hcl:"cbmc,block"`
	Schedule      *Schedule       `hcl:"schedule,block"`
	Outputs       []*Output       `hcl:"output,block"`
	Histogram     *Histogram      `hcl:"histogram,block"`
	Files         []*File         `hcl:"file,block"`
	Dynamics      *Dynamics       `hcl:"dynamics,block"`
}

// Geometry is the box shape and cutoff block.
type Geometry struct {
	Rcut    float64 `hcl:"rcut"`
	RcutLow float64 `hcl:"rcut_low"`
	// Boxes is a list of 3x3 basis-vector matrices, kept as an
	// expression so the loader can report fine-grained decode errors.
	Boxes hcl.Expression `hcl:"boxes"`
}

// Electrostatics is the Coulomb treatment block.
type Electrostatics struct {
	Enabled     bool      `hcl:"enabled"`
	Ewald       bool      `hcl:"ewald,optional"`
	Tolerance   float64   `hcl:"tolerance,optional"`
	RcutCoulomb []float64 `hcl:"rcut_coulomb,optional"`
}

// Exchange is the MEMC-style exchange block.
type Exchange struct {
	VolumeDim []float64 `hcl:"volume_dim"`
	Pairs     []*Pair   `hcl:"pair,block"`
}

// Pair is one large/small molecule exchange pair.
type Pair struct {
	LargeKind     string   `hcl:"large_kind"`
	SmallKind     string   `hcl:"small_kind"`
	Ratio         int      `hcl:"ratio"`
	LargeBackbone []string `hcl:"large_backbone,optional"`
	SmallBackbone []string `hcl:"small_backbone,optional"`
}

// Trials is the CBMC trial-count block.
type Trials struct {
	First     int `hcl:"first"`
	Nth       int `hcl:"nth"`
	Angles    int `hcl:"angles"`
	Dihedrals int `hcl:"dihedrals"`
}

// Schedule is the step-budget block.
type Schedule struct {
	RunSteps int64 `hcl:"run_steps"`
	EqSteps  int64 `hcl:"eq_steps,optional"`
	AdjSteps int64 `hcl:"adj_steps,optional"`
}

// Output is one named output-channel block.
type Output struct {
	Channel string `hcl:"channel,label"`
	Enabled bool   `hcl:"enabled"`
	Every   int64  `hcl:"every,optional"`
}

// Histogram is the histogram naming block.
type Histogram struct {
	DistName   string `hcl:"dist_name"`
	HistName   string `hcl:"hist_name"`
	RunNumber  int    `hcl:"run_number"`
	RunLetter  string `hcl:"run_letter"`
	SampleFreq int64  `hcl:"sample_freq"`
}

// File is one input file reference.
type File struct {
	Role string `hcl:"role,label"`
	Box  int    `hcl:"box,optional"`
	Path string `hcl:"path"`
}

// Dynamics is the molecular-dynamics-only block.
type Dynamics struct {
	Integrator   string   `hcl:"integrator"`
	TimestepFS   float64  `hcl:"timestep_fs"`
	Thermostat   string   `hcl:"thermostat,optional"`
	TauT         float64  `hcl:"tau_t,optional"`
	Barostat     string   `hcl:"barostat,optional"`
	TauP         float64  `hcl:"tau_p,optional"`
	GenVelocity  bool     `hcl:"gen_velocity,optional"`
	PBC          string   `hcl:"pbc,optional"`
	FreezeGroups []string `hcl:"freeze_groups,optional"`
	NeighborList int64    `hcl:"neighbor_list,optional"`
}
