package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molsim/deckgen/internal/workflow"
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

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
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
    }

    output "restart" {
      enabled = true
      every   = 100000
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

    cbmc {
      first     = 10
      nth       = 8
      angles    = 50
      dihedrals = 50
    }

    schedule {
      run_steps = 5000000
    }
  }
}
`

const slabPlan = `
simulations:
  - name: slab
    engine: gromacs
    stages:
      - name: production
        temperature: 300
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
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestApp_LoadPlanDirectory(t *testing.T) {
	t.Parallel()

	// Arrange: one plan per format under the same directory.
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "water.hcl"), waterPlan)
	writeFile(t, filepath.Join(dir, "slab.yaml"), slabPlan)

	// Act
	plan, err := New().LoadPlan(context.Background(), dir)

	// Assert
	require.NoError(t, err)
	require.Len(t, plan.Chains, 2)
	assert.Equal(t, "slab", plan.Chains[0].Name)
	assert.Equal(t, "water", plan.Chains[1].Name)
}

func TestApp_LoadPlanDuplicateChainName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.hcl"), waterPlan)
	writeFile(t, filepath.Join(dir, "b.hcl"), waterPlan)

	_, err := New().LoadPlan(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `chain "water"`)
}

func TestApp_LoadPlanUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.toml")
	writeFile(t, path, "")

	_, err := New().LoadPlan(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plan format")
}

func TestApp_ValidateCleanPlan(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.hcl")
	writeFile(t, path, waterPlan)

	report, err := New().Validate(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Chains)
	assert.Equal(t, 2, report.Stages)
}

func TestApp_ValidateReportsBrokenChain(t *testing.T) {
	t.Parallel()

	// A move distribution summing to 0.99 must surface in the report
	// without failing the Validate call itself.
	path := filepath.Join(t.TempDir(), "plan.hcl")
	writeFile(t, path, `
simulation "drift" {
  engine = "gomc"

  stage "s" {
    temperature = 298

    moves = {
      Displace = 0.5
      Rotate   = 0.49
    }

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
    }

    cbmc {
      first     = 10
      nth       = 8
      angles    = 50
      dihedrals = 50
    }

    schedule {
      run_steps = 1000000
    }
  }
}
`)

	report, err := New().Validate(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "drift", report.Issues[0].Chain)

	var stageErr *workflow.StageError
	require.ErrorAs(t, report.Issues[0].Err, &stageErr)
}

func TestApp_ValidateRejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	// A plan naming an engine no adapter serves must fail validation,
	// not surface later as a render-time lookup error.
	path := filepath.Join(t.TempDir(), "plan.hcl")
	writeFile(t, path, `
simulation "foreign" {
  engine = "cassandra"

  stage "s" {
    temperature = 298

    moves = {
      Displace = 1.0
    }

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
    }

    schedule {
      run_steps = 1000
    }
  }
}
`)

	report, err := New().Validate(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "foreign", report.Issues[0].Chain)
}

func TestApp_RenderWritesDecks(t *testing.T) {
	t.Parallel()

	// Arrange
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hcl")
	writeFile(t, planPath, waterPlan)
	outDir := filepath.Join(dir, "out")

	// Act
	artifacts, err := New().Render(context.Background(), planPath, outDir)

	// Assert
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, filepath.Join(outDir, "water", "00_water_equilibrate", "in.conf"), artifacts[0].Path)
	assert.Equal(t, filepath.Join(outDir, "water", "01_water_produce", "in.conf"), artifacts[1].Path)

	deck, err := os.ReadFile(artifacts[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(deck), "Temperature               298")
	assert.Contains(t, string(deck), "Random_Seed               249576")
	assert.Contains(t, string(deck), "OutputName                water_equilibrate")
}

func TestApp_RenderIsByteStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hcl")
	writeFile(t, planPath, waterPlan)
	a := New()

	first, err := a.Render(context.Background(), planPath, filepath.Join(dir, "out1"))
	require.NoError(t, err)
	second, err := a.Render(context.Background(), planPath, filepath.Join(dir, "out2"))
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		one, err := os.ReadFile(first[i].Path)
		require.NoError(t, err)
		two, err := os.ReadFile(second[i].Path)
		require.NoError(t, err)
		assert.Equal(t, string(one), string(two))
	}
}

func TestApp_RenderMixedEngines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plans", "water.hcl"), waterPlan)
	writeFile(t, filepath.Join(dir, "plans", "slab.yaml"), slabPlan)
	outDir := filepath.Join(dir, "out")

	artifacts, err := New().Render(context.Background(), filepath.Join(dir, "plans"), outDir)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	var deckNames []string
	for _, art := range artifacts {
		deckNames = append(deckNames, filepath.Base(art.Path))
	}
	assert.Contains(t, deckNames, "in.conf")
	assert.Contains(t, deckNames, "run.mdp")
}

func TestWriteAtomic_CleansUpOnRenameFailure(t *testing.T) {
	t.Parallel()

	// Renaming onto an existing directory fails; the temp file must not
	// be left behind.
	dir := t.TempDir()
	target := filepath.Join(dir, "in.conf")
	require.NoError(t, os.MkdirAll(target, 0o755))

	err := writeAtomic(dir, target, []byte("Temperature 298\n"))
	require.Error(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".deck-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestApp_RenderFailsOnBrokenPlan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.hcl")
	writeFile(t, planPath, `
simulation "bad" {
  engine = "gomc"

  stage "s" {
    temperature = -10

    geometry {
      rcut     = 9
      rcut_low = 1
      boxes    = [[[30, 0, 0], [0, 30, 0], [0, 0, 30]]]
    }

    cbmc {
      first     = 10
      nth       = 8
      angles    = 50
      dihedrals = 50
    }

    schedule {
      run_steps = 1000
    }
  }
}
`)

	_, err := New().Render(context.Background(), planPath, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `chain "bad"`)
}
