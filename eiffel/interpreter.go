package eiffel

import (
	"fmt"
	"io"
	"log/slog"
)

// Config controls execution bounds, the entry point and the missing member policy.
type Config struct {
	// StepQuota caps evaluation steps per run. Zero means unlimited.
	StepQuota int `toml:"step_quota"`

	// RecursionLimit caps routine call depth. Zero selects a guard deep enough for
	// ordinary recursion that still stops runaway calls before the Go stack does.
	RecursionLimit int `toml:"recursion_limit"`

	EntryClass   string `toml:"entry_class"`
	EntryFeature string `toml:"entry_feature"`

	// DefaultCreateClass is instantiated by a create whose target has no declared
	// type. Empty disables the fallback.
	DefaultCreateClass string `toml:"default_create_class"`

	// StrictMembers turns calls to missing classes, routines and attributes into
	// LookupErrors instead of no-ops.
	StrictMembers bool `toml:"strict_members"`

	Logger *slog.Logger `toml:"-"`
}

const (
	defaultRecursionLimit = 10000
	defaultEntryClass     = "MAIN"
	defaultEntryFeature   = "make"
)

// Engine compiles and runs programs under the limits of its Config.
type Engine struct {
	config Config
}

// NewEngine constructs an Engine, filling in defaults for unset fields.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("step quota must not be negative, got %d", cfg.StepQuota)
	}
	if cfg.RecursionLimit < 0 {
		return nil, fmt.Errorf("recursion limit must not be negative, got %d", cfg.RecursionLimit)
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.EntryClass == "" {
		cfg.EntryClass = defaultEntryClass
	}
	if cfg.EntryFeature == "" {
		cfg.EntryFeature = defaultEntryFeature
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	names := []struct{ field, value string }{
		{"entry class", cfg.EntryClass},
		{"entry feature", cfg.EntryFeature},
		{"default create class", cfg.DefaultCreateClass},
	}
	for _, n := range names {
		if n.value != "" && !isIdentifier(n.value) {
			return nil, fmt.Errorf("invalid %s %q", n.field, n.value)
		}
	}

	return &Engine{config: cfg}, nil
}

// MustNewEngine is NewEngine for configurations known to be valid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Config returns the configuration with defaults applied.
func (e *Engine) Config() Config { return e.config }

// Compile parses source and registers its classes.
func (e *Engine) Compile(source string) (*Script, error) {
	program, errs := newParser(source).ParseProgram()
	if len(errs) > 0 {
		return nil, combineErrors(errs)
	}
	script := e.Load(program)
	script.source = source
	return script, nil
}

// Load wraps a program built elsewhere, such as a decoded AST document.
func (e *Engine) Load(program *Program) *Script {
	registry := NewClassRegistry()
	for _, decl := range registry.registerProgram(program) {
		e.config.Logger.Debug("ignored duplicate class", "class", decl.Name, "line", decl.Pos().Line)
	}
	return &Script{engine: e, program: program, registry: registry}
}

func isIdentifier(name string) bool {
	for i, r := range name {
		if i == 0 && !isIdentifierStart(r) {
			return false
		}
		if !isIdentifierRune(r) {
			return false
		}
	}
	return name != "" && lookupIdent(name) == tokenIdent
}
