package eiffel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Execution holds the state of one run: output sink, limits, call stack and the
// class registry used for dispatch.
type Execution struct {
	ctx      context.Context
	registry *ClassRegistry
	out      io.Writer
	logger   *slog.Logger
	source   string

	quota        int
	steps        int
	recursionCap int
	callStack    []callFrame

	strictMembers bool
	defaultClass  string
}

type callFrame struct {
	Function string
	Pos      Position
}

func newExecution(ctx context.Context, engine *Engine, registry *ClassRegistry, source string, out io.Writer) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	return &Execution{
		ctx:           ctx,
		registry:      registry,
		out:           out,
		logger:        engine.config.Logger,
		source:        source,
		quota:         engine.config.StepQuota,
		recursionCap:  engine.config.RecursionLimit,
		callStack:     make([]callFrame, 0, 8),
		strictMembers: engine.config.StrictMembers,
		defaultClass:  engine.config.DefaultCreateClass,
	}
}

func (exec *Execution) step() error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return fmt.Errorf("%w (%d)", errStepQuotaExceeded, exec.quota)
	}
	select {
	case <-exec.ctx.Done():
		return exec.ctx.Err()
	default:
	}
	return nil
}

func (exec *Execution) pushFrame(function string, pos Position) error {
	if exec.recursionCap > 0 && len(exec.callStack) >= exec.recursionCap {
		return exec.errorAt(ErrQuotaExceeded, pos, recursionLimitMessageFmt, exec.recursionCap)
	}
	exec.callStack = append(exec.callStack, callFrame{Function: function, Pos: pos})
	return nil
}

func (exec *Execution) popFrame() {
	if len(exec.callStack) == 0 {
		return
	}
	exec.callStack = exec.callStack[:len(exec.callStack)-1]
}

// Evaluate computes the value of node in scope. Statements yield void.
func (exec *Execution) Evaluate(node Node, scope *Scope) (Value, error) {
	if err := exec.step(); err != nil {
		if errors.Is(err, errStepQuotaExceeded) {
			return NewVoid(), exec.newRuntimeError(ErrQuotaExceeded, err.Error(), node.Pos())
		}
		return NewVoid(), err
	}

	switch n := node.(type) {
	case *IntegerLiteral:
		return NewInt(n.Value), nil
	case *RealLiteral:
		return NewReal(n.Value), nil
	case *StringLiteral:
		return NewString(n.Value), nil
	case *BinaryExpr:
		return exec.evalBinary(n, scope)
	case *ComparisonExpr:
		return exec.evalComparison(n, scope)
	case *Variable:
		return exec.evalVariable(n, scope)
	case *CurrentRef:
		obj, ok := scope.Current()
		if !ok {
			return NewVoid(), exec.errorAt(ErrUnresolvedName, n.Pos(), "Current used outside of an object")
		}
		return NewObject(obj), nil
	case *VoidLiteral:
		return NewNull(), nil
	case *AttributeAccess:
		return exec.evalAttributeAccess(n, scope)
	case *MethodCall:
		return exec.evalMethodCall(n, scope)
	case *ProcedureCall:
		return exec.evalProcedureCall(n, scope)
	case *Assign:
		return NewVoid(), exec.evalAssign(n, scope)
	case *Create:
		return NewVoid(), exec.evalCreate(n, scope)
	case *IfStmt:
		return NewVoid(), exec.evalIf(n, scope)
	case *LoopStmt:
		return NewVoid(), exec.evalLoop(n, scope)
	case *FeatureBody:
		return exec.evalFeatureBody(n, scope)
	case *Program:
		return NewVoid(), exec.evalStatements(n.Statements, scope)
	case *ClassDecl, *DeclarationList:
		return NewVoid(), nil
	default:
		return NewVoid(), exec.errorAt(ErrTypeMismatch, node.Pos(), "unsupported node %T", node)
	}
}

func (exec *Execution) evalStatements(stmts []Node, scope *Scope) error {
	for _, stmt := range stmts {
		if _, err := exec.Evaluate(stmt, scope); err != nil {
			return err
		}
	}
	return nil
}

func (exec *Execution) evalVariable(n *Variable, scope *Scope) (Value, error) {
	if val, ok := scope.Get(n.Name); ok {
		return val, nil
	}
	if obj, ok := scope.Current(); ok {
		if class, found := exec.registry.Lookup(obj.Owner()); found {
			if body, isFeature := class.Feature(n.Name); isFeature {
				return exec.invokeFeature(obj, body, nil, scope, n.Pos())
			}
		}
	}
	return NewVoid(), exec.errorAt(ErrUnresolvedName, n.Pos(), "unresolved name '%s'", n.Name)
}

func (exec *Execution) evalAssign(n *Assign, scope *Scope) error {
	val, err := exec.Evaluate(n.Value, scope)
	if err != nil {
		return err
	}
	if val.IsVoid() {
		return exec.errorAt(ErrTypeMismatch, n.Value.Pos(), "expression has no value")
	}

	switch target := n.Target.(type) {
	case *Variable:
		if declType, ok := scope.DeclaredType(target.Name); ok {
			val = coerceToDeclared(val, declType)
		}
		scope.Assign(target.Name, val)
		return nil
	case *AttributeAccess:
		obj, err := exec.evalTarget(target.Object, scope, target.Name, target.Pos())
		if err != nil {
			return err
		}
		if !obj.Has(target.Name) && exec.strictMembers {
			return exec.errorAt(ErrMissingMember, target.Pos(), "class %s has no attribute '%s'", obj.Owner(), target.Name)
		}
		if declType, ok := obj.DeclaredType(target.Name); ok {
			val = coerceToDeclared(val, declType)
		}
		obj.Set(target.Name, val)
		return nil
	default:
		return exec.errorAt(ErrTypeMismatch, n.Pos(), "invalid assignment target")
	}
}

func (exec *Execution) evalIf(n *IfStmt, scope *Scope) error {
	cond, err := exec.evalCondition(n.Condition, scope)
	if err != nil {
		return err
	}
	if cond {
		return exec.evalStatements(n.Then, scope)
	}
	return exec.evalStatements(n.Else, scope)
}

// evalLoop runs the body until the exit condition becomes nonzero.
func (exec *Execution) evalLoop(n *LoopStmt, scope *Scope) error {
	if err := exec.evalStatements(n.Init, scope); err != nil {
		return err
	}
	for {
		done, err := exec.evalCondition(n.Until, scope)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := exec.evalStatements(n.Body, scope); err != nil {
			return err
		}
	}
}

func (exec *Execution) evalCondition(node Node, scope *Scope) (bool, error) {
	val, err := exec.Evaluate(node, scope)
	if err != nil {
		return false, err
	}
	if val.Kind() != KindInt {
		return false, exec.errorAt(ErrTypeMismatch, node.Pos(), "condition must be INTEGER, got %s", val.TypeName())
	}
	return val.Int() != 0, nil
}

// evalFeatureBody declares the routine's parameters and locals in scope and runs the
// statements there. Functions yield the final value of Result.
func (exec *Execution) evalFeatureBody(n *FeatureBody, scope *Scope) (Value, error) {
	for _, decl := range n.Declarations() {
		declareWithDefault(scope, decl.Name, decl.Type)
	}
	if n.ResultType != "" {
		declareWithDefault(scope, resultName, n.ResultType)
	}

	if err := exec.evalStatements(n.Body, scope); err != nil {
		return NewVoid(), err
	}

	if n.ResultType == "" {
		return NewVoid(), nil
	}
	result, _ := scope.Get(resultName)
	return result, nil
}

const resultName = "Result"

// declareWithDefault declares name in scope. A new entry of a basic type starts at
// that type's default; the rest start as null.
func declareWithDefault(scope *Scope, name, typeName string) {
	fresh := !scope.Has(name)
	scope.Declare(name, typeName)
	if fresh && isBasicType(typeName) {
		scope.Set(name, defaultValue(typeName))
	}
}

// missing applies the missing class or feature policy: void in lenient mode, a
// LookupError in strict mode.
func (exec *Execution) missing(pos Position, format string, args ...any) (Value, error) {
	if exec.strictMembers {
		return NewVoid(), exec.errorAt(ErrMissingMember, pos, format, args...)
	}
	exec.logger.Debug("skipped missing member", "reason", fmt.Sprintf(format, args...), "line", pos.Line)
	return NewVoid(), nil
}
