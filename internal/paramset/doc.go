// Package paramset defines the engine-agnostic description of a single
// simulation stage.
//
// A ParameterSet is the single source of truth for every knob a stage
// needs: thermodynamic state, box geometry, Monte-Carlo move frequencies,
// CBMC trial counts, step schedule, output cadence, and input file
// references. Engine adapters project it into engine-specific decks, so a
// value typed once here can never drift between the decks of different
// engines.
//
// Construction goes through the Builder. Once a builder has produced its
// ParameterSet the builder is sealed; further mutation attempts surface
// ErrImmutableState, so a set that passed validation cannot be silently
// edited afterwards.
package paramset
