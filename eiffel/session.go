package eiffel

import (
	"context"
	"io"
)

// Session evaluates successive snippets against one global scope and one class
// registry, as an interactive prompt does.
type Session struct {
	engine   *Engine
	registry *ClassRegistry
	global   *Scope
}

// Binding is a global variable visible in a session.
type Binding struct {
	Name  string
	Type  string
	Value Value
}

func (e *Engine) NewSession() *Session {
	return &Session{engine: e, registry: NewClassRegistry(), global: NewGlobalScope()}
}

// Eval registers the classes declared in source, skipping names already known, and
// runs its top-level statements in the global scope. It returns the value of the
// last statement.
func (s *Session) Eval(ctx context.Context, source string, out io.Writer) (Value, error) {
	program, errs := newParser(source).ParseProgram()
	if len(errs) > 0 {
		return NewVoid(), combineErrors(errs)
	}
	for _, decl := range s.registry.registerProgram(program) {
		s.engine.config.Logger.Debug("ignored duplicate class", "class", decl.Name)
	}

	exec := newExecution(ctx, s.engine, s.registry, source, out)
	last := NewVoid()
	for _, stmt := range program.Statements {
		body, ok := stmt.(*FeatureBody)
		if !ok || body.Name != "" {
			continue
		}
		for _, decl := range body.Locals {
			declareWithDefault(s.global, decl.Name, decl.Type)
		}
		for _, inner := range body.Body {
			val, err := exec.Evaluate(inner, s.global)
			if err != nil {
				return NewVoid(), err
			}
			last = val
		}
	}
	return last, nil
}

// Bindings lists global variables in declaration order.
func (s *Session) Bindings() []Binding {
	names := s.global.Names()
	out := make([]Binding, 0, len(names))
	for _, name := range names {
		val, _ := s.global.Get(name)
		declType, _ := s.global.DeclaredType(name)
		out = append(out, Binding{Name: name, Type: declType, Value: val})
	}
	return out
}

func (s *Session) Classes() []string { return s.registry.Names() }

// Reset drops every variable and class.
func (s *Session) Reset() {
	s.registry = NewClassRegistry()
	s.global = NewGlobalScope()
}
