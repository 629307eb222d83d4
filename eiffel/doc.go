// Package eiffel implements a tree-walking evaluator for a small, Eiffel-flavoured
// teaching language. Supported constructs:
//   - Class declarations with `feature` clauses holding typed attributes
//     (`value: INTEGER`) and routines (`inc do ... end`).
//   - Object creation with `create x`, `create {T} x` and `create x.make(args)`.
//   - Assignment with `:=`, dot access to attributes and routines, and `Current`.
//   - `if/then/elseif/else/end`, `from/until/loop/end` and the built-in `print`.
//   - INTEGER, REAL and STRING values with type-driven default initialization.
//
// Comments start with `--`. Programs may either define a MAIN class with a `make`
// routine or be written as a flat statement list.
package eiffel
