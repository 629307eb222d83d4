package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgomes/eiffel/eiffel"
)

type lintWarning struct {
	Scope   string
	Pos     eiffel.Position
	Message string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("eiffel analyze: program path required")
	}

	programPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve program path: %w", err)
	}
	input, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	engine := eiffel.MustNewEngine(eiffel.Config{})
	script, err := engine.Compile(string(input))
	if err != nil {
		return fmt.Errorf("analysis compile failed: %w", err)
	}

	warnings := analyzeProgramWarnings(script)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		line := warning.Pos.Line
		column := warning.Pos.Column
		if line <= 0 {
			line = 1
		}
		if column <= 0 {
			column = 1
		}
		fmt.Printf("%s:%d:%d: %s (%s)\n", programPath, line, column, warning.Message, warning.Scope)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

// linter tracks the names visible in the routine being checked.
type linter struct {
	registry *eiffel.ClassRegistry
	class    *eiffel.ClassEntry
	scope    string
	types    map[string]string
	warnings *[]lintWarning
}

func analyzeProgramWarnings(script *eiffel.Script) []lintWarning {
	warnings := make([]lintWarning, 0)
	registry := script.Registry()
	seen := make(map[string]bool)

	for _, stmt := range script.Program().Statements {
		switch decl := stmt.(type) {
		case *eiffel.ClassDecl:
			if seen[decl.Name] {
				warnings = append(warnings, lintWarning{
					Scope:   decl.Name,
					Pos:     decl.Pos(),
					Message: fmt.Sprintf("duplicate class %s is ignored", decl.Name),
				})
				continue
			}
			seen[decl.Name] = true
			entry, _ := registry.Lookup(decl.Name)
			for _, feature := range decl.Features {
				body, ok := feature.(*eiffel.FeatureBody)
				if !ok {
					continue
				}
				l := newLinter(registry, entry, decl.Name+"."+body.Name, &warnings)
				l.lintRoutine(body)
			}
		case *eiffel.FeatureBody:
			l := newLinter(registry, nil, "<script>", &warnings)
			l.lintRoutine(decl)
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		if warnings[i].Pos.Column != warnings[j].Pos.Column {
			return warnings[i].Pos.Column < warnings[j].Pos.Column
		}
		return warnings[i].Scope < warnings[j].Scope
	})

	return warnings
}

func newLinter(registry *eiffel.ClassRegistry, class *eiffel.ClassEntry, scope string, warnings *[]lintWarning) *linter {
	l := &linter{registry: registry, class: class, scope: scope, types: make(map[string]string), warnings: warnings}
	if class != nil {
		for _, attr := range class.Attributes() {
			l.types[attr.Name] = attr.Type
		}
	}
	return l
}

func (l *linter) warn(pos eiffel.Position, format string, args ...any) {
	*l.warnings = append(*l.warnings, lintWarning{Scope: l.scope, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (l *linter) lintRoutine(body *eiffel.FeatureBody) {
	for _, decl := range body.Declarations() {
		l.types[decl.Name] = decl.Type
	}
	if body.ResultType != "" {
		l.types["Result"] = body.ResultType
	}
	l.lintNodes(body.Body)
}

func (l *linter) lintNodes(nodes []eiffel.Node) {
	for _, node := range nodes {
		l.lintNode(node)
	}
}

func (l *linter) lintNode(node eiffel.Node) {
	switch n := node.(type) {
	case *eiffel.Create:
		typeName := n.ClassName
		if typeName == "" {
			typeName = l.types[n.Target]
		}
		switch {
		case typeName == "":
			l.warn(n.Pos(), "create %s has no declared type", n.Target)
		default:
			if _, ok := l.registry.Lookup(typeName); !ok {
				l.warn(n.Pos(), "create %s uses unknown class %s", n.Target, typeName)
			}
		}
		l.lintNodes(n.Args)
	case *eiffel.ProcedureCall:
		if !l.knownProcedure(n.Name) {
			l.warn(n.Pos(), "unknown procedure %s", n.Name)
		}
		l.lintNodes(n.Args)
	case *eiffel.MethodCall:
		l.lintNode(n.Object)
		l.lintNodes(n.Args)
	case *eiffel.AttributeAccess:
		l.lintNode(n.Object)
	case *eiffel.Assign:
		l.lintNode(n.Target)
		l.lintNode(n.Value)
	case *eiffel.BinaryExpr:
		l.lintNode(n.Left)
		l.lintNode(n.Right)
	case *eiffel.ComparisonExpr:
		l.lintNode(n.Left)
		l.lintNode(n.Right)
	case *eiffel.IfStmt:
		l.lintNode(n.Condition)
		l.lintNodes(n.Then)
		l.lintNodes(n.Else)
	case *eiffel.LoopStmt:
		l.lintNodes(n.Init)
		l.lintNode(n.Until)
		l.lintNodes(n.Body)
	}
}

func (l *linter) knownProcedure(name string) bool {
	if name == "print" {
		return true
	}
	if l.class == nil {
		return false
	}
	_, ok := l.class.Feature(name)
	return ok
}
