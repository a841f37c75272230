package gromacs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/molsim/deckgen/internal/paramset"
)

// Parse reads a rendered .mdp deck back into the universal
// representation. Fields the engine format cannot express (run label,
// low cutoff, box vectors, step bookkeeping) are recovered from the
// deckgen metadata comments the template carries.
func (a *Adapter) Parse(text string) (*paramset.ParameterSet, error) {
	ps := &paramset.ParameterSet{
		Engine:   paramset.EngineMolecularDynamics,
		Seed:     paramset.Seed{Policy: paramset.SeedRandom},
		Output:   make(paramset.Output),
		Dynamics: &paramset.Dynamics{},
	}
	d := ps.Dynamics
	var genSeedValue int64 = -1
	continuation := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		key, value, ok := splitDirective(scanner.Text())
		if !ok {
			continue
		}

		var err error
		switch key {
		case "run-label":
			ps.Label = value
		case "rcut-low-angstrom":
			ps.Geometry.RcutLow, err = strconv.ParseFloat(value, 64)
		case "eq-steps":
			ps.Schedule.EqSteps, err = strconv.ParseInt(value, 10, 64)
		case "adj-steps":
			ps.Schedule.AdjSteps, err = strconv.ParseInt(value, 10, 64)
		case "mol-kinds":
			ps.MoleculeKinds = strings.Fields(value)
		case "box-angstrom":
			ps.Geometry.Boxes, err = parseBox(value)
		case "integrator":
			d.Integrator = value
		case "dt":
			var dt float64
			if dt, err = strconv.ParseFloat(value, 64); err == nil {
				d.TimestepFS = dt * 1000 // ps -> fs
			}
		case "nsteps":
			ps.Schedule.RunSteps, err = strconv.ParseInt(value, 10, 64)
		case "nstxout":
			err = parseInterval(ps.Output, paramset.ChannelCoordinates, value)
		case "nstvout":
			err = parseInterval(ps.Output, paramset.ChannelRestart, value)
		case "nstenergy":
			err = parseInterval(ps.Output, paramset.ChannelBlockAverage, value)
		case "nstlog":
			err = parseInterval(ps.Output, paramset.ChannelConsole, value)
		case "nstlist":
			d.NeighborList, err = strconv.ParseInt(value, 10, 64)
		case "pbc":
			d.PBC = value
		case "coulombtype":
			ps.Electro.Enabled = true
			ps.Electro.Ewald = value == "PME"
		case "rcoulomb":
			var rc float64
			if rc, err = strconv.ParseFloat(value, 64); err == nil {
				ps.Electro.RcutCoulomb = []float64{rc * 10} // nm -> Angstrom
			}
		case "rvdw":
			var rv float64
			if rv, err = strconv.ParseFloat(value, 64); err == nil {
				ps.Geometry.Rcut = rv * 10
			}
		case "ewald-rtol":
			ps.Electro.Tolerance, err = strconv.ParseFloat(value, 64)
		case "tcoupl":
			d.Thermostat = value
		case "tau-t":
			d.TauT, err = strconv.ParseFloat(value, 64)
		case "ref-t":
			ps.Temperature, err = strconv.ParseFloat(value, 64)
		case "pcoupl":
			d.Barostat = value
		case "tau-p":
			d.TauP, err = strconv.ParseFloat(value, 64)
		case "gen-vel":
			d.GenVelocity = value == "yes"
		case "gen-seed":
			genSeedValue, err = strconv.ParseInt(value, 10, 64)
		case "continuation":
			continuation = value == "yes"
		case "freezegrps":
			d.FreezeGroups = strings.Fields(value)
		}
		if err != nil {
			return nil, fmt.Errorf("deck line %d: directive %s: %w", line, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	switch {
	case continuation:
		ps.Seed.Policy = paramset.SeedRestart
	case genSeedValue >= 0:
		ps.Seed.Policy = paramset.SeedFixed
		ps.Seed.Value1 = genSeedValue
	}
	// A non-Ewald deck has no per-box cutoff of its own; rcoulomb just
	// mirrors rvdw there.
	if !ps.Electro.Ewald {
		ps.Electro.RcutCoulomb = nil
	}
	return ps, nil
}

// splitDirective parses one "key = value" line. Metadata comments keep
// their payload after the leading ';'; ordinary comments yield nothing.
func splitDirective(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, ";"))
	idx := strings.IndexByte(trimmed, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(trimmed[:idx])
	value = strings.TrimSpace(trimmed[idx+1:])
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, value, true
}

func parseInterval(out paramset.Output, ch paramset.OutputChannel, value string) error {
	every, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return err
	}
	if every > 0 {
		out[ch] = paramset.Cadence{Enabled: true, Every: every}
	}
	return nil
}

func parseBox(value string) ([]paramset.BoxVectors, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 9 {
		return nil, fmt.Errorf("box metadata carries %d components, want 9", len(fields))
	}
	box := make(paramset.BoxVectors, 3)
	for i := 0; i < 3; i++ {
		vec := make([]float64, 3)
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[i*3+j], 64)
			if err != nil {
				return nil, err
			}
			vec[j] = v
		}
		box[i] = vec
	}
	return []paramset.BoxVectors{box}, nil
}
