package gomc

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/molsim/deckgen/internal/paramset"
)

// moveKeywords maps deck frequency keywords back to universal move names.
var moveKeywords = map[string]string{
	"DisFreq":           paramset.MoveDisplace,
	"RotFreq":           paramset.MoveRotate,
	"RegrowthFreq":      paramset.MoveRegrow,
	"IntraSwapFreq":     paramset.MoveIntraSwap,
	"SwapFreq":          paramset.MoveSwap,
	"VolFreq":           paramset.MoveVolume,
	"MultiParticleFreq": paramset.MoveMultiParticle,
	"CrankShaftFreq":    paramset.MoveCrankShaft,
	"MEMC-1Freq":        paramset.MoveMEMC,
}

// channelKeywords maps deck cadence keywords back to output channels.
var channelKeywords = map[string]paramset.OutputChannel{
	"RestartFreq":      paramset.ChannelRestart,
	"CheckpointFreq":   paramset.ChannelCheckpoint,
	"CoordinatesFreq":  paramset.ChannelCoordinates,
	"ConsoleFreq":      paramset.ChannelConsole,
	"BlockAverageFreq": paramset.ChannelBlockAverage,
	"HistogramFreq":    paramset.ChannelHistogram,
}

// Parse reads a rendered run-control deck back into the universal
// representation. Molecule kinds are recovered from the directives that
// name them (chemical potentials and exchange pairs), since the deck
// itself never declares the topology.
func (a *Adapter) Parse(text string) (*paramset.ParameterSet, error) {
	ps := &paramset.ParameterSet{
		Engine: paramset.EngineMonteCarlo,
		Seed:   paramset.Seed{Policy: paramset.SeedRandom},
		Moves:  make(paramset.MoveSet),
		Output: make(paramset.Output),
	}
	var (
		hist     paramset.Histogram
		histSeen bool
		exch     paramset.Exchange
		ratios   []int
		largeKs  []string
		smallKs  []string
		largeBB  []string
		smallBB  []string
		boxes    = make(map[int]paramset.BoxVectors)
		rcutCoul = make(map[int]float64)
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		fields := deckFields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		key, args := fields[0], fields[1:]

		var err error
		switch {
		case key == "PRNG" && len(args) == 1:
			switch args[0] {
			case "RESTART":
				ps.Seed.Policy = paramset.SeedRestart
			case "INTSEED":
				ps.Seed.Policy = paramset.SeedFixed
			default:
				ps.Seed.Policy = paramset.SeedRandom
			}
		case key == "Random_Seed" && len(args) >= 1:
			if ps.Seed.Value1, err = strconv.ParseInt(args[0], 10, 64); err == nil && len(args) > 1 {
				ps.Seed.Value2, err = strconv.ParseInt(args[1], 10, 64)
			}
		case key == "Parameters" && len(args) == 1:
			ps.Files = append(ps.Files, paramset.FileRef{Role: paramset.RoleParameters, Path: args[0]})
		case (key == "Coordinates" || key == "Structure") && len(args) == 2:
			var box int
			box, err = strconv.Atoi(args[0])
			role := paramset.RoleCoordinates
			if key == "Structure" {
				role = paramset.RoleStructure
			}
			ps.Files = append(ps.Files, paramset.FileRef{Role: role, Box: box, Path: args[1]})
		case key == "Temperature" && len(args) == 1:
			ps.Temperature, err = strconv.ParseFloat(args[0], 64)
		case key == "PressureCalc":
			ps.PressureCalc = len(args) > 0 && args[0] == "true"
			if ps.PressureCalc && len(args) > 1 {
				ps.PressureEvery, err = strconv.ParseInt(args[1], 10, 64)
			}
		case key == "Rcut" && len(args) == 1:
			ps.Geometry.Rcut, err = strconv.ParseFloat(args[0], 64)
		case key == "RcutLow" && len(args) == 1:
			ps.Geometry.RcutLow, err = strconv.ParseFloat(args[0], 64)
		case key == "ElectroStatic" && len(args) == 1:
			ps.Electro.Enabled = args[0] == "true"
		case key == "Ewald" && len(args) == 1:
			ps.Electro.Ewald = args[0] == "true"
		case key == "Tolerance" && len(args) == 1:
			ps.Electro.Tolerance, err = strconv.ParseFloat(args[0], 64)
		case key == "RcutCoulomb" && len(args) == 2:
			var box int
			var rc float64
			if box, err = strconv.Atoi(args[0]); err == nil {
				if rc, err = strconv.ParseFloat(args[1], 64); err == nil {
					rcutCoul[box] = rc
				}
			}
		case key == "RunSteps" && len(args) == 1:
			ps.Schedule.RunSteps, err = strconv.ParseInt(args[0], 10, 64)
		case key == "EqSteps" && len(args) == 1:
			ps.Schedule.EqSteps, err = strconv.ParseInt(args[0], 10, 64)
		case key == "AdjSteps" && len(args) == 1:
			ps.Schedule.AdjSteps, err = strconv.ParseInt(args[0], 10, 64)
		case key == "ChemPot" && len(args) == 2:
			if ps.ChemPot == nil {
				ps.ChemPot = make(map[string]float64)
			}
			ps.ChemPot[args[0]], err = strconv.ParseFloat(args[1], 64)
		case key == "ExchangeVolumeDim":
			exch.VolumeDim, err = parseFloats(args)
		case key == "ExchangeRatio":
			ratios, err = parseInts(args)
		case key == "ExchangeLargeKind":
			largeKs = args
		case key == "ExchangeSmallKind":
			smallKs = args
		case key == "LargeKindBackBone":
			largeBB = args
		case key == "SmallKindBackBone":
			smallBB = args
		case key == "CBMC_First" && len(args) == 1:
			ps.Trials.First, err = strconv.Atoi(args[0])
		case key == "CBMC_Nth" && len(args) == 1:
			ps.Trials.Nth, err = strconv.Atoi(args[0])
		case key == "CBMC_Ang" && len(args) == 1:
			ps.Trials.Angles, err = strconv.Atoi(args[0])
		case key == "CBMC_Dih" && len(args) == 1:
			ps.Trials.Dihedrals, err = strconv.Atoi(args[0])
		case strings.HasPrefix(key, "CellBasisVector") && len(args) == 4:
			err = parseBasisVector(key, args, boxes)
		case key == "OutputName" && len(args) == 1:
			ps.Label = args[0]
		case key == "DistName" && len(args) == 1:
			hist.DistName, histSeen = args[0], true
		case key == "HistName" && len(args) == 1:
			hist.HistName, histSeen = args[0], true
		case key == "RunNumber" && len(args) == 1:
			hist.RunNumber, err = strconv.Atoi(args[0])
			histSeen = true
		case key == "RunLetter" && len(args) == 1:
			hist.RunLetter, histSeen = args[0], true
		case key == "SampleFreq" && len(args) == 1:
			hist.SampleFreq, err = strconv.ParseInt(args[0], 10, 64)
			histSeen = true
		default:
			if move, ok := moveKeywords[key]; ok && len(args) == 1 {
				var freq float64
				if freq, err = strconv.ParseFloat(args[0], 64); err == nil && freq > 0 {
					ps.Moves[move] = freq
				}
				break
			}
			if ch, ok := channelKeywords[key]; ok && len(args) >= 1 {
				if cad, keep := parseCadence(args); keep {
					ps.Output[ch] = cad
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("deck line %d: directive %s: %w", line, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	assembleBoxes(ps, boxes)
	assembleCoulomb(ps, rcutCoul)
	if histSeen {
		ps.Histogram = &hist
	}
	if len(ratios) > 0 {
		exch.Pairs = assemblePairs(ratios, largeKs, smallKs, largeBB, smallBB)
		ps.Exchange = &exch
	}
	ps.MoleculeKinds = recoverKinds(ps)
	return ps, nil
}

// deckFields splits a deck line into whitespace-delimited tokens,
// dropping everything after a comment marker.
func deckFields(line string) []string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return strings.Fields(line)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseBasisVector(key string, args []string, boxes map[int]paramset.BoxVectors) error {
	idx, err := strconv.Atoi(strings.TrimPrefix(key, "CellBasisVector"))
	if err != nil || idx < 1 || idx > 3 {
		return fmt.Errorf("bad basis vector keyword %q", key)
	}
	box, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	vec, err := parseFloats(args[1:])
	if err != nil {
		return err
	}
	basis := boxes[box]
	for len(basis) < 3 {
		basis = append(basis, nil)
	}
	basis[idx-1] = vec
	boxes[box] = basis
	return nil
}

func parseCadence(args []string) (paramset.Cadence, bool) {
	cad := paramset.Cadence{Enabled: args[0] == "true"}
	if len(args) == 1 {
		// A bare "false" means the channel was never configured.
		return cad, cad.Enabled
	}
	every, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return cad, false
	}
	cad.Every = every
	return cad, true
}

func assembleBoxes(ps *paramset.ParameterSet, boxes map[int]paramset.BoxVectors) {
	if len(boxes) == 0 {
		return
	}
	indices := make([]int, 0, len(boxes))
	for i := range boxes {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		ps.Geometry.Boxes = append(ps.Geometry.Boxes, boxes[i])
	}
}

func assembleCoulomb(ps *paramset.ParameterSet, rcutCoul map[int]float64) {
	if len(rcutCoul) == 0 {
		return
	}
	indices := make([]int, 0, len(rcutCoul))
	for i := range rcutCoul {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		ps.Electro.RcutCoulomb = append(ps.Electro.RcutCoulomb, rcutCoul[i])
	}
}

// assemblePairs regroups the flattened exchange directives into pairs.
// Backbone atoms are distributed evenly across pairs, matching how the
// renderer flattened them.
func assemblePairs(ratios []int, largeKs, smallKs, largeBB, smallBB []string) []paramset.ExchangePair {
	n := len(ratios)
	pairs := make([]paramset.ExchangePair, n)
	for i := range pairs {
		pairs[i] = paramset.ExchangePair{Ratio: ratios[i]}
		if i < len(largeKs) {
			pairs[i].LargeKind = largeKs[i]
		}
		if i < len(smallKs) {
			pairs[i].SmallKind = smallKs[i]
		}
	}
	if n > 0 && len(largeBB)%n == 0 {
		per := len(largeBB) / n
		for i := range pairs {
			pairs[i].LargeBackbone = largeBB[i*per : (i+1)*per]
		}
	}
	if n > 0 && len(smallBB)%n == 0 {
		per := len(smallBB) / n
		for i := range pairs {
			pairs[i].SmallBackbone = smallBB[i*per : (i+1)*per]
		}
	}
	return pairs
}

// recoverKinds derives the declared molecule kinds from every directive
// that names one.
func recoverKinds(ps *paramset.ParameterSet) []string {
	set := make(map[string]bool)
	for kind := range ps.ChemPot {
		set[kind] = true
	}
	if ps.Exchange != nil {
		for _, p := range ps.Exchange.Pairs {
			set[p.LargeKind] = true
			set[p.SmallKind] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	kinds := make([]string, 0, len(set))
	for kind := range set {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
