package eiffel

import (
	"context"
	"io"
)

// Script is a compiled program ready to run. Each Run starts from fresh scopes.
type Script struct {
	engine   *Engine
	program  *Program
	registry *ClassRegistry
	source   string
}

func (s *Script) Program() *Program { return s.program }

func (s *Script) Registry() *ClassRegistry { return s.registry }

// Run executes the entry routine when the entry class declares it, and evaluates
// the top-level statements in a fresh global scope otherwise.
func (s *Script) Run(ctx context.Context, out io.Writer) error {
	exec := newExecution(ctx, s.engine, s.registry, s.source, out)
	cfg := s.engine.config

	if class, ok := s.registry.Lookup(cfg.EntryClass); ok {
		if body, ok := class.Feature(cfg.EntryFeature); ok {
			exec.logger.Debug("run entry", "class", class.Name, "feature", body.Name)
			root := exec.instantiate(class)
			_, err := exec.invokeFeature(root, body, nil, NewGlobalScope(), body.Pos())
			return err
		}
	}

	exec.logger.Debug("run flat program", "statements", len(s.program.Statements))
	_, err := exec.Evaluate(s.program, NewGlobalScope())
	return err
}
