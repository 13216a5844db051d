// Package pipelinecat loads, validates, and persists pipeline definitions
// as one YAML file per pipeline in a conventional directory: load every
// file in the directory first, then cross-validate references across the
// whole set, using gopkg.in/yaml.v3 since pipelines are authored as YAML.
package pipelinecat

import (
	"fmt"

	"github.com/fleetsync/fleetsync/internal/errs"
)

// StepKind is one of the three step kinds the executor dispatches on.
type StepKind string

const (
	KindCollect StepKind = "collect"
	KindSync    StepKind = "sync"
	KindExport  StepKind = "export"
)

// Step is one unit of work in a Pipeline.
type Step struct {
	ID        string            `yaml:"id"`
	Kind      StepKind          `yaml:"kind"`
	Target    string            `yaml:"target"`
	Enabled   bool              `yaml:"enabled"`
	Options   map[string]string `yaml:"options,omitempty"`
	DependsOn []string          `yaml:"depends_on,omitempty"`
}

// Pipeline is the persisted, declarative step DAG.
type Pipeline struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Enabled     bool   `yaml:"enabled"`
	Steps       []Step `yaml:"steps"`
}

// Validate checks the acyclic-and-resolvable depends_on invariant this package
// §3 requires: every depends_on id must name another step in the same
// pipeline, and the dependency graph must be acyclic.
func Validate(p *Pipeline) error {
	ids := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		ids[s.ID] = true
	}
	for _, s := range p.Steps {
		for _, dep := range s.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("pipeline %q: step %q depends on unknown step %q: %w", p.ID, s.ID, dep, errs.ErrDependencyMissing)
			}
		}
	}
	if cyclicStep, ok := findCycle(p.Steps); ok {
		return fmt.Errorf("pipeline %q: dependency cycle reachable from step %q: %w", p.ID, cyclicStep, errs.ErrDependencyCycle)
	}
	return nil
}

// OutOfOrderWarnings reports, for each step declared before one of its own
// dependencies, a human-readable warning string. The executor never
// re-sorts steps to fix this — declared order is always honored — but a
// pipeline author almost certainly made a mistake if a step lists a
// dependency that hasn't appeared yet, so this is surfaced rather than
// silently accepted.
func OutOfOrderWarnings(p *Pipeline) []string {
	seen := make(map[string]bool, len(p.Steps))
	var warnings []string
	for _, s := range p.Steps {
		for _, dep := range s.DependsOn {
			if !seen[dep] {
				warnings = append(warnings, fmt.Sprintf("step %q depends on %q, which is declared later in the pipeline", s.ID, dep))
			}
		}
		seen[s.ID] = true
	}
	return warnings
}

// findCycle runs a three-color DFS over the depends_on graph.
func findCycle(steps []Step) (string, bool) {
	byID := make(map[string]Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(steps))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, dep := range byID[id].DependsOn {
			switch color[dep] {
			case gray:
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, s := range steps {
		if color[s.ID] == white {
			if visit(s.ID) {
				return s.ID, true
			}
		}
	}
	return "", false
}
