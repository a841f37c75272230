package yamlload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molsim/deckgen/internal/paramset"
)

const mixedPlan = `
simulations:
  - name: water
    engine: gomc
    molecule_kinds: [H2O]
    stages:
      - name: equilibrate
        temperature: 298
        seed1: 249576
        moves:
          Displace: 0.5
          Rotate: 0.5
        geometry:
          rcut: 9
          rcut_low: 1
          boxes:
            - [[30, 0, 0], [0, 30, 0], [0, 0, 30]]
        cbmc:
          first: 10
          nth: 8
          angles: 50
          dihedrals: 50
        schedule:
          run_steps: 1000000
          eq_steps: 100000
        output:
          restart:
            enabled: true
            every: 100000
        files:
          - role: parameters
            path: par.inp
  - name: slab
    engine: gromacs
    chain_id: chain-0002
    stages:
      - name: production
        temperature: 300
        seed_policy: restart
        geometry:
          rcut: 12
          rcut_low: 1
          boxes:
            - [[40, 0, 0], [0, 40, 0], [0, 0, 40]]
        schedule:
          run_steps: 500000
        dynamics:
          integrator: md
          timestep_fs: 2
          thermostat: v-rescale
          freeze_groups: [wall]
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
	path := writePlan(t, "plan.yaml", mixedPlan)

	// Act
	plan, err := NewLoader().Load(context.Background(), path)

	// Assert
	require.NoError(t, err)
	require.Len(t, plan.Chains, 2)

	water := plan.Chains[0]
	assert.Equal(t, "water", water.Name)
	require.Len(t, water.Stages, 1)

	equil := water.Stages[0]
	assert.Equal(t, paramset.EngineMonteCarlo, equil.Engine)
	assert.Equal(t, "water_equilibrate", equil.Label)
	assert.Equal(t, []string{"H2O"}, equil.MoleculeKinds)
	assert.Equal(t, paramset.Seed{Policy: paramset.SeedFixed, Value1: 249576}, equil.Seed)
	assert.Equal(t, paramset.MoveSet{paramset.MoveDisplace: 0.5, paramset.MoveRotate: 0.5}, equil.Moves)
	assert.Equal(t, paramset.BoxVectors{{30, 0, 0}, {0, 30, 0}, {0, 0, 30}}, equil.Geometry.Boxes[0])
	assert.Equal(t, paramset.Trials{First: 10, Nth: 8, Angles: 50, Dihedrals: 50}, equil.Trials)
	assert.Equal(t, paramset.Cadence{Enabled: true, Every: 100000}, equil.Output[paramset.ChannelRestart])
	require.Len(t, equil.Files, 1)
	assert.Equal(t, paramset.FileRef{Role: paramset.RoleParameters, Path: "par.inp"}, equil.Files[0])

	slab := plan.Chains[1]
	assert.Equal(t, "chain-0002", slab.ChainID)
	prod := slab.Stages[0]
	assert.Equal(t, paramset.EngineMolecularDynamics, prod.Engine)
	assert.Equal(t, paramset.SeedRestart, prod.Seed.Policy)
	require.NotNil(t, prod.Dynamics)
	assert.Equal(t, "v-rescale", prod.Dynamics.Thermostat)
	assert.Equal(t, []string{"wall"}, prod.Dynamics.FreezeGroups)
}

func TestLoader_RejectsMalformedPlan(t *testing.T) {
	t.Parallel()

	path := writePlan(t, "plan.yaml", "simulations: {not: a list}")

	_, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
