package paramset

// Builder assembles a ParameterSet group by group. After Build has been
// called the builder is sealed: any further setter poisons it and the
// next Build returns ErrImmutableState.
type Builder struct {
	ps     ParameterSet
	sealed bool
	err    error
}

// NewBuilder starts a builder for the given engine kind and run label.
func NewBuilder(engine EngineKind, label string) *Builder {
	return &Builder{ps: ParameterSet{Engine: engine, Label: label}}
}

// set applies a mutation unless the builder is sealed.
func (b *Builder) set(apply func(*ParameterSet)) *Builder {
	if b.sealed {
		b.err = ErrImmutableState
		return b
	}
	apply(&b.ps)
	return b
}

// Seed sets the PRNG seed policy and values.
func (b *Builder) Seed(s Seed) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Seed = s })
}

// Temperature sets the run temperature in Kelvin.
func (b *Builder) Temperature(kelvin float64) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Temperature = kelvin })
}

// PressureCalc enables periodic pressure calculation.
func (b *Builder) PressureCalc(every int64) *Builder {
	return b.set(func(ps *ParameterSet) {
		ps.PressureCalc = true
		ps.PressureEvery = every
	})
}

// Geometry sets the box basis vectors and cutoff radii.
func (b *Builder) Geometry(g Geometry) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Geometry = g })
}

// Electrostatics sets the Coulomb treatment.
func (b *Builder) Electrostatics(e Electrostatics) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Electro = e })
}

// Moves sets the Monte-Carlo move frequencies.
func (b *Builder) Moves(m MoveSet) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Moves = m })
}

// Exchange sets the MEMC-style exchange parameters.
func (b *Builder) Exchange(ex *Exchange) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Exchange = ex })
}

// Trials sets the CBMC trial counts.
func (b *Builder) Trials(t Trials) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Trials = t })
}

// Schedule sets the step budget.
func (b *Builder) Schedule(s Schedule) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Schedule = s })
}

// Output sets the per-channel output cadence.
func (b *Builder) Output(o Output) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Output = o })
}

// Histogram sets the histogram naming block.
func (b *Builder) Histogram(h *Histogram) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Histogram = h })
}

// Files sets the input file references.
func (b *Builder) Files(refs ...FileRef) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Files = refs })
}

// MoleculeKinds declares the molecule kinds present in the topology inputs.
func (b *Builder) MoleculeKinds(kinds ...string) *Builder {
	return b.set(func(ps *ParameterSet) { ps.MoleculeKinds = kinds })
}

// ChemPot sets per-kind chemical potentials (Kelvin).
func (b *Builder) ChemPot(mu map[string]float64) *Builder {
	return b.set(func(ps *ParameterSet) { ps.ChemPot = mu })
}

// Dynamics sets the molecular-dynamics-only knobs.
func (b *Builder) Dynamics(d *Dynamics) *Builder {
	return b.set(func(ps *ParameterSet) { ps.Dynamics = d })
}

// Build seals the builder and returns an independent copy of the
// assembled parameter set. A builder that was mutated after sealing
// returns ErrImmutableState instead.
func (b *Builder) Build() (*ParameterSet, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.sealed = true
	return b.ps.Clone(), nil
}
