// Package app wires the loaders, planner, engine adapters, and renderer
// into the operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/molsim/deckgen/internal/config"
	"github.com/molsim/deckgen/internal/ctxlog"
	"github.com/molsim/deckgen/internal/engine"
	"github.com/molsim/deckgen/internal/engine/gomc"
	"github.com/molsim/deckgen/internal/engine/gromacs"
	"github.com/molsim/deckgen/internal/fsutil"
	"github.com/molsim/deckgen/internal/hclload"
	"github.com/molsim/deckgen/internal/render"
	"github.com/molsim/deckgen/internal/workflow"
	"github.com/molsim/deckgen/internal/yamlload"
)

// App holds the format loaders and the engine adapter registry.
type App struct {
	loaders map[string]config.Loader
	engines *engine.Registry
}

// New creates an App with both plan formats and both engine adapters
// registered.
func New() *App {
	reg := engine.NewRegistry()
	reg.Register(gomc.New())
	reg.Register(gromacs.New())

	hcl := hclload.NewLoader()
	yml := yamlload.NewLoader()
	return &App{
		loaders: map[string]config.Loader{
			".hcl":  hcl,
			".yaml": yml,
			".yml":  yml,
		},
		engines: reg,
	}
}

// Engines exposes the adapter registry (used by the engines command).
func (a *App) Engines() *engine.Registry { return a.engines }

// LoadPlan reads one plan file, or every plan file under a directory,
// into a single merged plan.
func (a *App) LoadPlan(ctx context.Context, path string) (*config.Plan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plan path: %w", err)
	}

	paths := []string{path}
	if info.IsDir() {
		paths, err = fsutil.FindFilesByExtension(path, ".hcl", ".yaml", ".yml")
		if err != nil {
			return nil, fmt.Errorf("discovering plan files: %w", err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no plan files found under %s", path)
		}
	}

	merged := &config.Plan{}
	seen := make(map[string]string)
	for _, p := range paths {
		loader, ok := a.loaders[strings.ToLower(filepath.Ext(p))]
		if !ok {
			return nil, fmt.Errorf("unsupported plan format %q", filepath.Ext(p))
		}
		plan, err := loader.Load(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, chain := range plan.Chains {
			if prior, dup := seen[chain.Name]; dup {
				return nil, fmt.Errorf("chain %q declared in both %s and %s", chain.Name, prior, p)
			}
			seen[chain.Name] = p
			merged.Chains = append(merged.Chains, chain)
		}
	}
	return merged, nil
}

// Issue is one chain's planning failure inside a validation report.
type Issue struct {
	Chain string
	Err   error
}

// Report summarizes validation of an entire plan.
type Report struct {
	Chains int
	Stages int
	Issues []Issue
}

// OK reports whether the whole plan passed.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// Validate loads a plan and checks every chain, collecting per-chain
// failures instead of stopping at the first bad chain.
func (a *App) Validate(ctx context.Context, planPath string) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	plan, err := a.LoadPlan(ctx, planPath)
	if err != nil {
		return nil, err
	}

	report := &Report{Chains: len(plan.Chains)}
	for _, chain := range plan.Chains {
		report.Stages += len(chain.Stages)
		planner := workflow.NewPlanner(chainOpts(chain)...)
		if _, err := planner.Plan(ctx, chain.Stages); err != nil {
			report.Issues = append(report.Issues, Issue{Chain: chain.Name, Err: err})
		}
	}
	logger.Info("Plan validated.", "chains", report.Chains, "stages", report.Stages, "issues", len(report.Issues))
	return report, nil
}

// Artifact is one rendered deck on disk.
type Artifact struct {
	Chain string
	Stage string
	Path  string
}

// Render validates the plan and writes every stage's deck under outDir.
// Independent chains render concurrently; each deck is written
// atomically (temp file plus rename) so a failed render never leaves a
// partial deck behind.
func (a *App) Render(ctx context.Context, planPath, outDir string) ([]Artifact, error) {
	logger := ctxlog.FromContext(ctx)
	plan, err := a.LoadPlan(ctx, planPath)
	if err != nil {
		return nil, err
	}

	artifacts := make([][]Artifact, len(plan.Chains))
	g, gctx := errgroup.WithContext(ctx)
	for i, chain := range plan.Chains {
		g.Go(func() error {
			out, err := a.renderChain(gctx, chain, outDir)
			if err != nil {
				return fmt.Errorf("chain %q: %w", chain.Name, err)
			}
			artifacts[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []Artifact
	for _, out := range artifacts {
		flat = append(flat, out...)
	}
	logger.Info("Plan rendered.", "decks", len(flat), "out_dir", outDir)
	return flat, nil
}

func (a *App) renderChain(ctx context.Context, chain *config.Chain, outDir string) ([]Artifact, error) {
	logger := ctxlog.FromContext(ctx)
	planner := workflow.NewPlanner(chainOpts(chain)...)
	wf, err := planner.Plan(ctx, chain.Stages)
	if err != nil {
		return nil, err
	}

	var artifacts []Artifact
	for i, stage := range wf.Stages {
		adapter, err := a.engines.Lookup(stage.Engine())
		if err != nil {
			return nil, err
		}
		directives, err := adapter.Render(stage)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Label(), err)
		}
		renderer := render.New(adapter.Vocabulary())
		text, warnings, err := renderer.Render(adapter.Template(), directives)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Label(), err)
		}
		for _, w := range warnings {
			logger.Warn("Directive unused by template.", "stage", stage.Label(), "token", w.Token)
		}

		dir := filepath.Join(outDir, chain.Name, fmt.Sprintf("%02d_%s", i, stage.Label()))
		path := filepath.Join(dir, adapter.DeckName())
		if err := writeAtomic(dir, path, []byte(text)); err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, stage.Label(), err)
		}
		artifacts = append(artifacts, Artifact{Chain: chain.Name, Stage: stage.Label(), Path: path})
	}
	return artifacts, nil
}

func chainOpts(chain *config.Chain) []workflow.Option {
	if chain.ChainID == "" {
		return nil
	}
	return []workflow.Option{workflow.WithChainID(chain.ChainID)}
}

// writeAtomic writes the deck to a temp file in the target directory and
// renames it into place.
func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".deck-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
