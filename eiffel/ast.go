package eiffel

// Node is any element of the abstract syntax tree. The set of node types is closed:
// every consumer switches over the concrete types declared in this file.
type Node interface {
	Pos() Position
	astNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Statements []Node
}

func (p *Program) astNode() {}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{}
	}
	return p.Statements[0].Pos()
}

// Classes returns the class declarations found in the top-level statement list.
func (p *Program) Classes() []*ClassDecl {
	var out []*ClassDecl
	for _, stmt := range p.Statements {
		if cl, ok := stmt.(*ClassDecl); ok {
			out = append(out, cl)
		}
	}
	return out
}

type IntegerLiteral struct {
	Value    int64
	position Position
}

func (n *IntegerLiteral) astNode()      {}
func (n *IntegerLiteral) Pos() Position { return n.position }

type RealLiteral struct {
	Value    float64
	position Position
}

func (n *RealLiteral) astNode()      {}
func (n *RealLiteral) Pos() Position { return n.position }

type StringLiteral struct {
	Value    string
	position Position
}

func (n *StringLiteral) astNode()      {}
func (n *StringLiteral) Pos() Position { return n.position }

// BinaryExpr is an arithmetic expression; Op is one of + - * /.
type BinaryExpr struct {
	Op       byte
	Left     Node
	Right    Node
	position Position
}

func (n *BinaryExpr) astNode()      {}
func (n *BinaryExpr) Pos() Position { return n.position }

// CompareOp names a comparison operator.
type CompareOp string

const (
	CompareLT    CompareOp = "<"
	CompareLTE   CompareOp = "<="
	CompareGT    CompareOp = ">"
	CompareGTE   CompareOp = ">="
	CompareEQ    CompareOp = "="
	CompareNotEQ CompareOp = "/="
)

func (op CompareOp) valid() bool {
	switch op {
	case CompareLT, CompareLTE, CompareGT, CompareGTE, CompareEQ, CompareNotEQ:
		return true
	default:
		return false
	}
}

type ComparisonExpr struct {
	Op       CompareOp
	Left     Node
	Right    Node
	position Position
}

func (n *ComparisonExpr) astNode()      {}
func (n *ComparisonExpr) Pos() Position { return n.position }

type Variable struct {
	Name     string
	position Position
}

func (n *Variable) astNode()      {}
func (n *Variable) Pos() Position { return n.position }

// CurrentRef is the implicit reference to the object executing the routine.
type CurrentRef struct {
	position Position
}

func (n *CurrentRef) astNode()      {}
func (n *CurrentRef) Pos() Position { return n.position }

// VoidLiteral is the detached reference `Void`.
type VoidLiteral struct {
	position Position
}

func (n *VoidLiteral) astNode()      {}
func (n *VoidLiteral) Pos() Position { return n.position }

// AttributeAccess is `object.name` written without an argument list.
type AttributeAccess struct {
	Object   Node
	Name     string
	position Position
}

func (n *AttributeAccess) astNode()      {}
func (n *AttributeAccess) Pos() Position { return n.position }

// ProcedureCall is an unqualified call such as `print(x)`.
type ProcedureCall struct {
	Name     string
	Args     []Node
	position Position
}

func (n *ProcedureCall) astNode()      {}
func (n *ProcedureCall) Pos() Position { return n.position }

// MethodCall is `object.name(args)`.
type MethodCall struct {
	Object   Node
	Name     string
	Args     []Node
	position Position
}

func (n *MethodCall) astNode()      {}
func (n *MethodCall) Pos() Position { return n.position }

// Assign binds Value to Target, which is a *Variable or an *AttributeAccess.
type Assign struct {
	Target   Node
	Value    Node
	position Position
}

func (n *Assign) astNode()      {}
func (n *Assign) Pos() Position { return n.position }

// Create instantiates an object into the variable named Target. ClassName is the
// explicit `{T}` type when given; Init names an optional creation routine called
// with Args once the attributes are initialized.
type Create struct {
	Target    string
	ClassName string
	Init      string
	Args      []Node
	position  Position
}

func (n *Create) astNode()      {}
func (n *Create) Pos() Position { return n.position }

type IfStmt struct {
	Condition Node
	Then      []Node
	Else      []Node
	position  Position
}

func (n *IfStmt) astNode()      {}
func (n *IfStmt) Pos() Position { return n.position }

// LoopStmt runs Init once, then Body until Until evaluates to a nonzero integer.
type LoopStmt struct {
	Init     []Node
	Until    Node
	Body     []Node
	position Position
}

func (n *LoopStmt) astNode()      {}
func (n *LoopStmt) Pos() Position { return n.position }

// Declaration is a name with an optional declared type.
type Declaration struct {
	Name string
	Type string
}

// DeclarationList declares one or more typed names; inside a class it lists attributes.
type DeclarationList struct {
	Decls    []Declaration
	position Position
}

func (n *DeclarationList) astNode()      {}
func (n *DeclarationList) Pos() Position { return n.position }

// FeatureBody is a routine. An empty Name marks the anonymous body holding a flat
// program's top-level statements. A non-empty ResultType makes the routine a function
// whose value is the final content of Result.
type FeatureBody struct {
	Name       string
	Params     []Declaration
	ResultType string
	Locals     []Declaration
	Body       []Node
	position   Position
}

func (n *FeatureBody) astNode()      {}
func (n *FeatureBody) Pos() Position { return n.position }

// Declarations returns parameters followed by locals.
func (n *FeatureBody) Declarations() []Declaration {
	out := make([]Declaration, 0, len(n.Params)+len(n.Locals))
	out = append(out, n.Params...)
	return append(out, n.Locals...)
}

type ClassDecl struct {
	Name     string
	Features []Node
	position Position
}

func (n *ClassDecl) astNode()      {}
func (n *ClassDecl) Pos() Position { return n.position }
