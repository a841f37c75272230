package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waterPlan = `
simulation "water" {
  engine = "gomc"

  stage "equilibrate" {
    temperature = 298

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
    }
  }
}
`

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecute_ValidateValidPlan(t *testing.T) {
	path := writePlan(t, waterPlan)
	var out, errOut bytes.Buffer

	err := Execute([]string{"validate", path}, &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "plan is valid")
	assert.Contains(t, out.String(), "1 chain(s), 1 stage(s)")
}

func TestExecute_ValidateBrokenPlan(t *testing.T) {
	path := writePlan(t, `
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
	var out, errOut bytes.Buffer

	err := Execute([]string{"validate", path}, &out, &errOut)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan invalid")
	assert.Contains(t, out.String(), "drift: stage 0:")
}

func TestExecute_RenderWritesDecks(t *testing.T) {
	path := writePlan(t, waterPlan)
	outDir := filepath.Join(t.TempDir(), "decks")
	var out, errOut bytes.Buffer

	err := Execute([]string{"render", path, "--out", outDir}, &out, &errOut)

	require.NoError(t, err)
	deckPath := filepath.Join(outDir, "water", "00_water_equilibrate", "in.conf")
	assert.Contains(t, out.String(), deckPath)

	deck, err := os.ReadFile(deckPath)
	require.NoError(t, err)
	assert.Contains(t, string(deck), "Temperature               298")
}

func TestExecute_Engines(t *testing.T) {
	var out, errOut bytes.Buffer

	err := Execute([]string{"engines"}, &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "gomc")
	assert.Contains(t, out.String(), "in.conf")
	assert.Contains(t, out.String(), "gromacs")
	assert.Contains(t, out.String(), "run.mdp")
}

func TestExecute_MissingPlanPath(t *testing.T) {
	var out, errOut bytes.Buffer

	err := Execute([]string{"validate", filepath.Join(t.TempDir(), "absent.hcl")}, &out, &errOut)
	assert.Error(t, err)
}

func TestExecute_EnvironmentOverride(t *testing.T) {
	// Environment overrides apply when the flag keeps its default, so the
	// render output lands under the directory the variable names.
	t.Setenv("DECKGEN_OUT_DIR", filepath.Join(t.TempDir(), "env-decks"))
	path := writePlan(t, waterPlan)
	var out, errOut bytes.Buffer

	err := Execute([]string{"render", path}, &out, &errOut)

	require.NoError(t, err)
	assert.Contains(t, out.String(), filepath.Join(os.Getenv("DECKGEN_OUT_DIR"), "water"))
}
