package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molsim/deckgen/internal/deck"
)

func TestRender_SubstitutesVocabularyTokens(t *testing.T) {
	t.Parallel()

	r := New([]string{"TTT", "RCUT"})
	template := "Temperature               TTT\nRcut                      RCUT\n"
	directives := []deck.Directive{
		deck.D("TTT", "298"),
		deck.D("RCUT", "9"),
	}

	out, warnings, err := r.Render(template, directives)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Temperature               298\nRcut                      9\n", out)
}

func TestRender_LeavesNonVocabularyWordsAlone(t *testing.T) {
	t.Parallel()

	// Uppercase engine keywords outside the vocabulary are literal text.
	r := New([]string{"TTT"})
	template := "Potential                 VDW\nTemperature               TTT"

	out, _, err := r.Render(template, []deck.Directive{deck.D("TTT", "298")})
	require.NoError(t, err)
	assert.Contains(t, out, "Potential                 VDW")
}

func TestRender_UnknownPlaceholder(t *testing.T) {
	t.Parallel()

	r := New([]string{"TTT", "RCUT"})
	template := "Temperature  TTT\nRcut         RCUT"

	_, _, err := r.Render(template, []deck.Directive{deck.D("TTT", "298")})
	var unknownErr *UnknownPlaceholderError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "RCUT", unknownErr.Token)
	assert.Equal(t, 2, unknownErr.Line)
}

func TestRender_UnusedDirectiveWarning(t *testing.T) {
	t.Parallel()

	r := New([]string{"TTT", "RCUT"})
	template := "Temperature  TTT"
	directives := []deck.Directive{
		deck.D("TTT", "298"),
		deck.D("RCUT", "9"),
	}

	out, warnings, err := r.Render(template, directives)
	require.NoError(t, err)
	assert.Equal(t, "Temperature  298", out)
	require.Len(t, warnings, 1)
	assert.Equal(t, "RCUT", warnings[0].Token)
}

func TestRender_IgnoresComments(t *testing.T) {
	t.Parallel()

	// A vocabulary token inside a comment is documentation, not a
	// placeholder, and must neither substitute nor fail.
	r := New([]string{"TTT"})
	template := "# temperature goes into TTT below\nTemperature  TTT  # Kelvin, was TTT in the original"

	out, _, err := r.Render(template, []deck.Directive{deck.D("TTT", "298")})
	require.NoError(t, err)
	assert.Contains(t, out, "# temperature goes into TTT below")
	assert.Contains(t, out, "Temperature  298  # Kelvin, was TTT in the original")
}

func TestRender_MultiLineBlockValue(t *testing.T) {
	t.Parallel()

	r := New([]string{"IO_FILES"})
	template := "IO_FILES\n"
	block := "Coordinates 0 a.pdb\nStructure   0 a.psf"

	out, _, err := r.Render(template, []deck.Directive{deck.D("IO_FILES", block)})
	require.NoError(t, err)
	assert.Equal(t, block+"\n", out)
}

func TestRender_DuplicateDirective(t *testing.T) {
	t.Parallel()

	r := New([]string{"TTT"})
	directives := []deck.Directive{deck.D("TTT", "298"), deck.D("TTT", "300")}

	_, _, err := r.Render("Temperature TTT", directives)
	var dupErr *DuplicateDirectiveError
	require.ErrorAs(t, err, &dupErr)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	r := New([]string{"TTT", "RCUT", "CHEM_POT"})
	template := "Temperature TTT\nRcut RCUT\nCHEM_POT"
	directives := []deck.Directive{
		deck.D("TTT", "298"),
		deck.D("RCUT", "9"),
		deck.D("CHEM_POT", "ChemPot H2O -51000\nChemPot h2o -51000"),
	}

	first, _, err := r.Render(template, directives)
	require.NoError(t, err)
	second, _, err := r.Render(template, directives)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
