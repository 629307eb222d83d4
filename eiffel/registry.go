package eiffel

// ClassEntry is a registered class: its name and the unevaluated feature list.
type ClassEntry struct {
	Name     string
	Features []Node
	Pos      Position
}

// Feature returns the first routine named name.
func (c *ClassEntry) Feature(name string) (*FeatureBody, bool) {
	for _, f := range c.Features {
		if body, ok := f.(*FeatureBody); ok && body.Name == name {
			return body, true
		}
	}
	return nil, false
}

// Attributes returns every attribute declaration of the class in source order.
func (c *ClassEntry) Attributes() []Declaration {
	var out []Declaration
	for _, f := range c.Features {
		if list, ok := f.(*DeclarationList); ok {
			out = append(out, list.Decls...)
		}
	}
	return out
}

// HasAttribute reports whether name is declared as an attribute of the class.
func (c *ClassEntry) HasAttribute(name string) bool {
	for _, decl := range c.Attributes() {
		if decl.Name == name {
			return true
		}
	}
	return false
}

// ClassRegistry maps class names to their declarations. It is filled before a run
// starts and only read while evaluating.
type ClassRegistry struct {
	classes map[string]*ClassEntry
	order   []string
}

// NewClassRegistry returns an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]*ClassEntry)}
}

// Register inserts a class unless one with the same name exists. It reports whether
// the class was added; later duplicates are ignored.
func (r *ClassRegistry) Register(name string, features []Node) bool {
	return r.register(&ClassEntry{Name: name, Features: features})
}

func (r *ClassRegistry) register(entry *ClassEntry) bool {
	if _, exists := r.classes[entry.Name]; exists {
		return false
	}
	r.classes[entry.Name] = entry
	r.order = append(r.order, entry.Name)
	return true
}

// Lookup returns the class registered under name. A missing class yields nil and
// false rather than an error.
func (r *ClassRegistry) Lookup(name string) (*ClassEntry, bool) {
	entry, ok := r.classes[name]
	return entry, ok
}

// Names lists registered classes in registration order.
func (r *ClassRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len is the number of registered classes.
func (r *ClassRegistry) Len() int { return len(r.order) }

// registerProgram adds every top-level class declaration of program and returns the
// declarations that were shadowed by an earlier class of the same name.
func (r *ClassRegistry) registerProgram(program *Program) []*ClassDecl {
	var ignored []*ClassDecl
	for _, decl := range program.Classes() {
		if !r.register(&ClassEntry{Name: decl.Name, Features: decl.Features, Pos: decl.Pos()}) {
			ignored = append(ignored, decl)
		}
	}
	return ignored
}

// BuildRegistry scans the top-level statements of program for class declarations.
func BuildRegistry(program *Program) *ClassRegistry {
	r := NewClassRegistry()
	r.registerProgram(program)
	return r
}
