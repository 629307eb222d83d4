package eiffel

import (
	"errors"
	"fmt"
	"strings"
)

type StackFrame struct {
	Function string
	Pos      Position
}

// RuntimeError is a fatal evaluation failure. errors.Is matches it against the
// sentinel for its Type.
type RuntimeError struct {
	Type      string
	Message   string
	CodeFrame string
	Frames    []StackFrame

	cause error
}

const (
	runtimeErrorTypeBase     = "RuntimeError"
	runtimeErrorTypeName     = "NameError"
	runtimeErrorTypeType     = "TypeError"
	runtimeErrorTypeZeroDiv  = "ZeroDivisionError"
	runtimeErrorTypeLookup   = "LookupError"
	runtimeErrorTypeQuota    = "QuotaError"
	runtimeErrorFrameHead    = 8
	runtimeErrorFrameTail    = 8
	scriptFrameName          = "<script>"
	recursionLimitMessageFmt = "recursion depth exceeded (limit %d)"
)

var (
	ErrUnresolvedName = errors.New("unresolved name")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrDivisionByZero = errors.New("division by zero")
	ErrMissingMember  = errors.New("missing class or feature")
	ErrQuotaExceeded  = errors.New("quota exceeded")

	errStepQuotaExceeded = errors.New("step quota exceeded")
)

func runtimeErrorType(cause error) string {
	switch {
	case errors.Is(cause, ErrUnresolvedName):
		return runtimeErrorTypeName
	case errors.Is(cause, ErrTypeMismatch):
		return runtimeErrorTypeType
	case errors.Is(cause, ErrDivisionByZero):
		return runtimeErrorTypeZeroDiv
	case errors.Is(cause, ErrMissingMember):
		return runtimeErrorTypeLookup
	case errors.Is(cause, ErrQuotaExceeded):
		return runtimeErrorTypeQuota
	default:
		return runtimeErrorTypeBase
	}
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	if re.Type != "" {
		b.WriteString(re.Type)
		b.WriteString(": ")
	}
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 && frame.Pos.Column > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (line %d)", frame.Function, frame.Pos.Line)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}

	return b.String()
}

// Unwrap exposes the sentinel the error was raised with.
func (re *RuntimeError) Unwrap() error {
	return re.cause
}

func (exec *Execution) errorAt(cause error, pos Position, format string, args ...any) error {
	return exec.newRuntimeError(cause, fmt.Sprintf(format, args...), pos)
}

func (exec *Execution) newRuntimeError(cause error, message string, pos Position) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)

	if len(exec.callStack) > 0 {
		// the innermost frame reports where the error happened, the rest where each routine was called from
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, StackFrame{Function: current.Function, Pos: pos})
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			frames = append(frames, StackFrame(exec.callStack[i]))
		}
	} else {
		frames = append(frames, StackFrame{Function: scriptFrameName, Pos: pos})
	}

	return &RuntimeError{
		Type:      runtimeErrorType(cause),
		Message:   message,
		CodeFrame: formatCodeFrame(exec.source, pos),
		Frames:    frames,
		cause:     cause,
	}
}
