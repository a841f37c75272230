package hclload

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/molsim/deckgen/internal/config"
	"github.com/molsim/deckgen/internal/paramset"
	"github.com/molsim/deckgen/internal/schema"
)

// translateSimulation converts one HCL simulation block into a chain of
// parameter sets via the builder.
func translateSimulation(sim *schema.Simulation) (*config.Chain, error) {
	chain := &config.Chain{Name: sim.Name, ChainID: sim.ChainID}
	for _, stage := range sim.Stages {
		ps, err := translateStage(sim, stage)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
		}
		chain.Stages = append(chain.Stages, ps)
	}
	return chain, nil
}

func translateStage(sim *schema.Simulation, stage *schema.Stage) (*paramset.ParameterSet, error) {
	label := sim.Name + "_" + stage.Name
	b := paramset.NewBuilder(paramset.EngineKind(sim.Engine), label).
		Temperature(stage.Temperature).
		Seed(translateSeed(stage)).
		MoleculeKinds(sim.MoleculeKinds...)

	if stage.PressureEvery != nil {
		b.PressureCalc(*stage.PressureEvery)
	}

	moves, err := decodeFloatMap(stage.Moves)
	if err != nil {
		return nil, fmt.Errorf("moves: %w", err)
	}
	if moves != nil {
		b.Moves(moves)
	}

	chemPot, err := decodeFloatMap(stage.ChemPot)
	if err != nil {
		return nil, fmt.Errorf("chem_pot: %w", err)
	}
	if chemPot != nil {
		b.ChemPot(chemPot)
	}

	if stage.Geometry != nil {
		boxes, err := decodeBoxes(stage.Geometry.Boxes)
		if err != nil {
			return nil, fmt.Errorf("geometry.boxes: %w", err)
		}
		b.Geometry(paramset.Geometry{
			Boxes:   boxes,
			Rcut:    stage.Geometry.Rcut,
			RcutLow: stage.Geometry.RcutLow,
		})
	}
	if stage.Electro != nil {
		b.Electrostatics(paramset.Electrostatics{
			Enabled:     stage.Electro.Enabled,
			Ewald:       stage.Electro.Ewald,
			Tolerance:   stage.Electro.Tolerance,
			RcutCoulomb: stage.Electro.RcutCoulomb,
		})
	}
	if stage.Exchange != nil {
		ex := &paramset.Exchange{VolumeDim: stage.Exchange.VolumeDim}
		for _, p := range stage.Exchange.Pairs {
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
	if stage.Trials != nil {
		b.Trials(paramset.Trials{
			First:     stage.Trials.First,
			Nth:       stage.Trials.Nth,
			Angles:    stage.Trials.Angles,
			Dihedrals: stage.Trials.Dihedrals,
		})
	}
	if stage.Schedule != nil {
		b.Schedule(paramset.Schedule{
			RunSteps: stage.Schedule.RunSteps,
			EqSteps:  stage.Schedule.EqSteps,
			AdjSteps: stage.Schedule.AdjSteps,
		})
	}
	if len(stage.Outputs) > 0 {
		out := make(paramset.Output, len(stage.Outputs))
		for _, o := range stage.Outputs {
			out[paramset.OutputChannel(o.Channel)] = paramset.Cadence{Enabled: o.Enabled, Every: o.Every}
		}
		b.Output(out)
	}
	if stage.Histogram != nil {
		b.Histogram(&paramset.Histogram{
			DistName:   stage.Histogram.DistName,
			HistName:   stage.Histogram.HistName,
			RunNumber:  stage.Histogram.RunNumber,
			RunLetter:  stage.Histogram.RunLetter,
			SampleFreq: stage.Histogram.SampleFreq,
		})
	}
	if len(stage.Files) > 0 {
		refs := make([]paramset.FileRef, len(stage.Files))
		for i, f := range stage.Files {
			refs[i] = paramset.FileRef{Role: paramset.FileRole(f.Role), Box: f.Box, Path: f.Path}
		}
		b.Files(refs...)
	}
	if stage.Dynamics != nil {
		b.Dynamics(&paramset.Dynamics{
			Integrator:   stage.Dynamics.Integrator,
			TimestepFS:   stage.Dynamics.TimestepFS,
			Thermostat:   stage.Dynamics.Thermostat,
			TauT:         stage.Dynamics.TauT,
			Barostat:     stage.Dynamics.Barostat,
			TauP:         stage.Dynamics.TauP,
			GenVelocity:  stage.Dynamics.GenVelocity,
			PBC:          stage.Dynamics.PBC,
			FreezeGroups: stage.Dynamics.FreezeGroups,
			NeighborList: stage.Dynamics.NeighborList,
		})
	}

	return b.Build()
}

func translateSeed(stage *schema.Stage) paramset.Seed {
	policy := paramset.SeedPolicy(stage.SeedPolicy)
	if stage.SeedPolicy == "" {
		policy = paramset.SeedRandom
		if stage.Seed1 != 0 || stage.Seed2 != 0 {
			policy = paramset.SeedFixed
		}
	}
	return paramset.Seed{Policy: policy, Value1: stage.Seed1, Value2: stage.Seed2}
}

// decodeFloatMap evaluates an object expression like
// {Displace = 0.24, Rotate = 0.24} into a string-to-float map.
func decodeFloatMap(expr hcl.Expression) (map[string]float64, error) {
	val, ok, err := evalExpr(expr)
	if err != nil || !ok {
		return nil, err
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("expected an object of numbers, got %s", val.Type().FriendlyName())
	}
	out := make(map[string]float64)
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		f, err := ctyFloat(v)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", k.AsString(), err)
		}
		out[k.AsString()] = f
	}
	return out, nil
}

// decodeBoxes evaluates a list of 3x3 basis-vector matrices.
func decodeBoxes(expr hcl.Expression) ([]paramset.BoxVectors, error) {
	val, ok, err := evalExpr(expr)
	if err != nil || !ok {
		return nil, err
	}
	var boxes []paramset.BoxVectors
	for it := val.ElementIterator(); it.Next(); {
		_, boxVal := it.Element()
		var box paramset.BoxVectors
		for bt := boxVal.ElementIterator(); bt.Next(); {
			_, vecVal := bt.Element()
			var vec []float64
			for vt := vecVal.ElementIterator(); vt.Next(); {
				_, comp := vt.Element()
				f, err := ctyFloat(comp)
				if err != nil {
					return nil, err
				}
				vec = append(vec, f)
			}
			box = append(box, vec)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// evalExpr evaluates a literal expression. The boolean reports whether a
// value is actually present; absent optional attributes decode to a nil
// expression or a null value.
func evalExpr(expr hcl.Expression) (cty.Value, bool, error) {
	if expr == nil {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, false, diags
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	return val, true, nil
}

func ctyFloat(v cty.Value) (float64, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
