package eiffel

type scopeEntry struct {
	name     string
	value    Value
	declType string
}

// Scope is a name to value binding environment. A scope with an owner class is the
// attribute store of an object; any other scope is a lexical scope such as a routine
// call frame. Names are unique within one scope and may shadow names further up the
// parent chain.
type Scope struct {
	parent  *Scope
	owner   string
	entries []scopeEntry
	index   map[string]int
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, index: make(map[string]int)}
}

func newObjectScope(owner string) *Scope {
	s := newScope(nil)
	s.owner = owner
	return s
}

// NewGlobalScope returns an empty root scope.
func NewGlobalScope() *Scope {
	return newScope(nil)
}

// Parent returns the enclosing scope, or nil for a root or object scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Owner is the class name of the object this scope stores, or "" for lexical scopes.
func (s *Scope) Owner() string { return s.owner }

// Declare adds name with a null value if this scope does not hold it yet. An existing
// entry without a declared type picks up typeName; a typed entry is left unchanged.
func (s *Scope) Declare(name, typeName string) {
	if i, ok := s.index[name]; ok {
		if s.entries[i].declType == "" {
			s.entries[i].declType = typeName
		}
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, scopeEntry{name: name, value: NewNull(), declType: typeName})
}

// Set overwrites name in this scope only, inserting it when absent.
func (s *Scope) Set(name string, val Value) {
	if i, ok := s.index[name]; ok {
		s.entries[i].value = val
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, scopeEntry{name: name, value: val})
}

// Assign writes to the nearest scope in the chain that holds name, falling back to
// inserting it into this scope.
func (s *Scope) Assign(name string, val Value) {
	if owner := s.resolve(name); owner != nil {
		owner.Set(name, val)
		return
	}
	s.Set(name, val)
}

// Get searches this scope and then each parent in turn.
func (s *Scope) Get(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if i, ok := cur.index[name]; ok {
			return cur.entries[i].value, true
		}
	}
	return Value{}, false
}

// Has reports whether name is bound in this scope, ignoring parents.
func (s *Scope) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// DeclaredType returns the declared type of the nearest binding of name.
func (s *Scope) DeclaredType(name string) (string, bool) {
	owner := s.resolve(name)
	if owner == nil {
		return "", false
	}
	return owner.entries[owner.index[name]].declType, true
}

// Current walks up to the nearest object scope.
func (s *Scope) Current() (*Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.owner != "" {
			return cur, true
		}
	}
	return nil, false
}

// Names lists the names bound in this scope in declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.name
	}
	return out
}

func (s *Scope) resolve(name string) *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.index[name]; ok {
			return cur
		}
	}
	return nil
}
