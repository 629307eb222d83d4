package eiffel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FprintAST writes an indented outline of node, two spaces per level.
func FprintAST(w io.Writer, node Node) error {
	pr := &astPrinter{}
	pr.node(node, 0)
	_, err := io.WriteString(w, pr.b.String())
	return err
}

type astPrinter struct {
	b strings.Builder
}

func (pr *astPrinter) line(indent int, format string, args ...any) {
	pr.b.WriteString(strings.Repeat(" ", indent))
	fmt.Fprintf(&pr.b, format, args...)
	pr.b.WriteByte('\n')
}

func (pr *astPrinter) list(label string, nodes []Node, indent int) {
	pr.line(indent, "%s:", label)
	if len(nodes) == 0 {
		pr.line(indent+2, "(empty)")
		return
	}
	for _, n := range nodes {
		pr.node(n, indent+2)
	}
}

func (pr *astPrinter) declarations(label string, decls []Declaration, indent int) {
	if len(decls) == 0 {
		return
	}
	pr.line(indent, "%s:", label)
	for _, d := range decls {
		if d.Type == "" {
			pr.line(indent+2, "%s", d.Name)
			continue
		}
		pr.line(indent+2, "%s: %s", d.Name, d.Type)
	}
}

func (pr *astPrinter) node(node Node, indent int) {
	switch n := node.(type) {
	case nil:
		pr.line(indent, "(null)")
	case *Program:
		pr.line(indent, "Program")
		for _, stmt := range n.Statements {
			pr.node(stmt, indent+2)
		}
	case *IntegerLiteral:
		pr.line(indent, "Literal: %d (int)", n.Value)
	case *RealLiteral:
		pr.line(indent, "Literal: %f (real)", n.Value)
	case *StringLiteral:
		pr.line(indent, "Literal: %s (string)", strconv.Quote(n.Value))
	case *BinaryExpr:
		pr.line(indent, "BinaryExpr: %c", n.Op)
		pr.node(n.Left, indent+2)
		pr.node(n.Right, indent+2)
	case *ComparisonExpr:
		pr.line(indent, "ComparisonExpr: %s", n.Op)
		pr.node(n.Left, indent+2)
		pr.node(n.Right, indent+2)
	case *Variable:
		pr.line(indent, "Variable: %s", n.Name)
	case *CurrentRef:
		pr.line(indent, "Current")
	case *VoidLiteral:
		pr.line(indent, "Void")
	case *AttributeAccess:
		pr.line(indent, "AttributeAccess: %s", n.Name)
		pr.node(n.Object, indent+2)
	case *ProcedureCall:
		pr.line(indent, "ProcedureCall: %s", n.Name)
		pr.list("Arguments", n.Args, indent+2)
	case *MethodCall:
		pr.line(indent, "MethodCall: %s", n.Name)
		pr.line(indent+2, "Object:")
		pr.node(n.Object, indent+4)
		pr.list("Arguments", n.Args, indent+2)
	case *Assign:
		pr.line(indent, "Assign")
		pr.line(indent+2, "Target:")
		pr.node(n.Target, indent+4)
		pr.line(indent+2, "Expression:")
		pr.node(n.Value, indent+4)
	case *Create:
		label := n.Target
		if n.ClassName != "" {
			label = "{" + n.ClassName + "} " + label
		}
		if n.Init != "" {
			pr.line(indent, "Create: %s.%s", label, n.Init)
			pr.list("Arguments", n.Args, indent+2)
			return
		}
		pr.line(indent, "Create: %s", label)
	case *IfStmt:
		pr.line(indent, "If")
		pr.line(indent+2, "Condition:")
		pr.node(n.Condition, indent+4)
		pr.list("Then", n.Then, indent+2)
		pr.list("Else", n.Else, indent+2)
	case *LoopStmt:
		pr.line(indent, "Loop")
		pr.list("Initialization", n.Init, indent+2)
		pr.line(indent+2, "Until:")
		pr.node(n.Until, indent+4)
		pr.list("Body", n.Body, indent+2)
	case *DeclarationList:
		pr.line(indent, "DeclarationList")
		for _, d := range n.Decls {
			pr.line(indent+2, "%s: %s", d.Name, d.Type)
		}
	case *FeatureBody:
		name := n.Name
		if name == "" {
			name = "(anonymous)"
		}
		if n.ResultType != "" {
			pr.line(indent, "FeatureBody: %s: %s", name, n.ResultType)
		} else {
			pr.line(indent, "FeatureBody: %s", name)
		}
		pr.declarations("Parameters", n.Params, indent+2)
		pr.declarations("Locals", n.Locals, indent+2)
		pr.list("Body", n.Body, indent+2)
	case *ClassDecl:
		pr.line(indent, "Class: %s", n.Name)
		for _, f := range n.Features {
			pr.node(f, indent+2)
		}
	default:
		pr.line(indent, "Unknown node %T", node)
	}
}
