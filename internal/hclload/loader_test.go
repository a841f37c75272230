package hclload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molsim/deckgen/internal/paramset"
)

const waterPlan = `
simulation "water" {
  engine         = "gomc"
  molecule_kinds = ["H2O"]
  chain_id       = "chain-0001"

  stage "equilibrate" {
    temperature = 298
    seed1       = 249576

    moves = {
      Displace = 0.5
      Rotate   = 0.5
    }

    chem_pot = {
      H2O = -51000.5
    }

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
    }

    electrostatics {
      enabled      = true
      ewald        = true
      tolerance    = 1e-5
      rcut_coulomb = [9]
    }

    cbmc {
      first     = 10
      nth       = 8
      angles    = 50
      dihedrals = 50
    }

    schedule {
      run_steps = 1000000
      eq_steps  = 100000
      adj_steps = 1000
    }

    output "restart" {
      enabled = true
      every   = 100000
    }

    file "parameters" {
      path = "par.inp"
    }

    file "coordinates" {
      box  = 0
      path = "box0.pdb"
    }
  }

  stage "produce" {
    temperature = 298
    seed_policy = "restart"

    moves = {
      Displace = 0.5
      Rotate   = 0.5
    }

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
    }

    schedule {
      run_steps = 5000000
    }
  }
}
`

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// Arrange
	path := writePlan(t, "plan.hcl", waterPlan)

	// Act
	plan, err := NewLoader().Load(context.Background(), path)

	// Assert
	require.NoError(t, err)
	require.Len(t, plan.Chains, 1)

	chain := plan.Chains[0]
	assert.Equal(t, "water", chain.Name)
	assert.Equal(t, "chain-0001", chain.ChainID)
	require.Len(t, chain.Stages, 2)

	equil := chain.Stages[0]
	assert.Equal(t, paramset.EngineMonteCarlo, equil.Engine)
	assert.Equal(t, "water_equilibrate", equil.Label)
	assert.Equal(t, []string{"H2O"}, equil.MoleculeKinds)
	assert.Equal(t, paramset.Seed{Policy: paramset.SeedFixed, Value1: 249576}, equil.Seed)
	assert.Equal(t, 298.0, equil.Temperature)
	assert.Equal(t, paramset.MoveSet{paramset.MoveDisplace: 0.5, paramset.MoveRotate: 0.5}, equil.Moves)
	assert.Equal(t, map[string]float64{"H2O": -51000.5}, equil.ChemPot)
	require.Len(t, equil.Geometry.Boxes, 1)
	assert.Equal(t, paramset.BoxVectors{{30, 0, 0}, {0, 30, 0}, {0, 0, 30}}, equil.Geometry.Boxes[0])
	assert.Equal(t, 9.0, equil.Geometry.Rcut)
	assert.True(t, equil.Electro.Ewald)
	assert.Equal(t, []float64{9}, equil.Electro.RcutCoulomb)
	assert.Equal(t, paramset.Trials{First: 10, Nth: 8, Angles: 50, Dihedrals: 50}, equil.Trials)
	assert.Equal(t, int64(1000000), equil.Schedule.RunSteps)
	assert.Equal(t, paramset.Cadence{Enabled: true, Every: 100000}, equil.Output[paramset.ChannelRestart])
	require.Len(t, equil.Files, 2)
	assert.Equal(t, paramset.FileRef{Role: paramset.RoleParameters, Path: "par.inp"}, equil.Files[0])

	prod := chain.Stages[1]
	assert.Equal(t, "water_produce", prod.Label)
	assert.Equal(t, paramset.SeedRestart, prod.Seed.Policy)
}

func TestLoader_LoadDynamicsPlan(t *testing.T) {
	t.Parallel()

	path := writePlan(t, "plan.hcl", `
simulation "md" {
  engine = "gromacs"

  stage "production" {
    temperature = 300

    geometry {
      rcut     = 12
      rcut_low = 1
      boxes    = [[[40, 0, 0], [0, 40, 0], [0, 0, 40]]]
    }

    schedule {
      run_steps = 500000
    }

    dynamics {
      integrator    = "md"
      timestep_fs   = 2
      thermostat    = "v-rescale"
      tau_t         = 0.1
      gen_velocity  = true
      freeze_groups = ["wall"]
    }
  }
}
`)

	plan, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, plan.Chains, 1)

	stage := plan.Chains[0].Stages[0]
	assert.Equal(t, paramset.EngineMolecularDynamics, stage.Engine)
	require.NotNil(t, stage.Dynamics)
	assert.Equal(t, "md", stage.Dynamics.Integrator)
	assert.Equal(t, 2.0, stage.Dynamics.TimestepFS)
	assert.Equal(t, "v-rescale", stage.Dynamics.Thermostat)
	assert.True(t, stage.Dynamics.GenVelocity)
	assert.Equal(t, []string{"wall"}, stage.Dynamics.FreezeGroups)
	assert.Equal(t, paramset.SeedRandom, stage.Seed.Policy)
}

func TestLoader_RejectsMalformedPlan(t *testing.T) {
	t.Parallel()

	path := writePlan(t, "plan.hcl", `simulation "broken" {`)

	_, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoader_RejectsBadMovesExpression(t *testing.T) {
	t.Parallel()

	path := writePlan(t, "plan.hcl", `
simulation "bad" {
  engine = "gomc"

  stage "s" {
    temperature = 298
    moves       = [0.5, 0.5]
  }
}
`)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moves")
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	assert.Error(t, err)
}
