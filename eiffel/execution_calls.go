package eiffel

// evalTarget evaluates the object side of a qualified access.
func (exec *Execution) evalTarget(node Node, scope *Scope, member string, pos Position) (*Scope, error) {
	val, err := exec.Evaluate(node, scope)
	if err != nil {
		return nil, err
	}
	switch val.Kind() {
	case KindObject:
		return val.Object(), nil
	case KindNull, KindVoid:
		return nil, exec.errorAt(ErrTypeMismatch, pos, "feature call '%s' on Void target", member)
	default:
		return nil, exec.errorAt(ErrTypeMismatch, pos, "feature call '%s' on %s value", member, val.TypeName())
	}
}

// evalAttributeAccess runs a routine named like the member, or reads the stored
// attribute otherwise.
func (exec *Execution) evalAttributeAccess(n *AttributeAccess, scope *Scope) (Value, error) {
	obj, err := exec.evalTarget(n.Object, scope, n.Name, n.Pos())
	if err != nil {
		return NewVoid(), err
	}
	class, ok := exec.registry.Lookup(obj.Owner())
	if !ok {
		return exec.missing(n.Pos(), "class %s is not defined", obj.Owner())
	}
	if body, isFeature := class.Feature(n.Name); isFeature {
		return exec.invokeFeature(obj, body, nil, scope, n.Pos())
	}
	if obj.Has(n.Name) {
		val, _ := obj.Get(n.Name)
		return val, nil
	}
	return exec.missing(n.Pos(), "class %s has no feature '%s'", class.Name, n.Name)
}

func (exec *Execution) evalMethodCall(n *MethodCall, scope *Scope) (Value, error) {
	obj, err := exec.evalTarget(n.Object, scope, n.Name, n.Pos())
	if err != nil {
		return NewVoid(), err
	}
	class, ok := exec.registry.Lookup(obj.Owner())
	if !ok {
		return exec.missing(n.Pos(), "class %s is not defined", obj.Owner())
	}
	body, ok := class.Feature(n.Name)
	if !ok {
		return exec.missing(n.Pos(), "class %s has no routine '%s'", class.Name, n.Name)
	}
	return exec.invokeFeature(obj, body, n.Args, scope, n.Pos())
}

// evalProcedureCall handles print and unqualified calls to routines of Current.
func (exec *Execution) evalProcedureCall(n *ProcedureCall, scope *Scope) (Value, error) {
	if n.Name == "print" {
		return NewVoid(), exec.print(n.Args, scope)
	}
	obj, ok := scope.Current()
	if !ok {
		return exec.missing(n.Pos(), "unknown procedure '%s'", n.Name)
	}
	class, ok := exec.registry.Lookup(obj.Owner())
	if !ok {
		return exec.missing(n.Pos(), "class %s is not defined", obj.Owner())
	}
	body, ok := class.Feature(n.Name)
	if !ok {
		return exec.missing(n.Pos(), "class %s has no routine '%s'", class.Name, n.Name)
	}
	return exec.invokeFeature(obj, body, n.Args, scope, n.Pos())
}

// invokeFeature evaluates args in the caller's scope and runs body in a fresh scope
// chained to the object.
func (exec *Execution) invokeFeature(obj *Scope, body *FeatureBody, args []Node, caller *Scope, pos Position) (Value, error) {
	if len(args) != len(body.Params) {
		return NewVoid(), exec.errorAt(ErrTypeMismatch, pos, "%s.%s expects %d argument(s), got %d", obj.Owner(), body.Name, len(body.Params), len(args))
	}
	values := make([]Value, len(args))
	for i, arg := range args {
		val, err := exec.Evaluate(arg, caller)
		if err != nil {
			return NewVoid(), err
		}
		if val.IsVoid() {
			return NewVoid(), exec.errorAt(ErrTypeMismatch, arg.Pos(), "argument %d of %s has no value", i+1, body.Name)
		}
		values[i] = val
	}

	name := obj.Owner() + "." + body.Name
	if err := exec.pushFrame(name, pos); err != nil {
		return NewVoid(), err
	}
	defer exec.popFrame()

	exec.logger.Debug("invoke feature", "feature", name, "args", len(values), "depth", len(exec.callStack))

	local := newScope(obj)
	for i, param := range body.Params {
		local.Declare(param.Name, param.Type)
		local.Set(param.Name, coerceToDeclared(values[i], param.Type))
	}
	return exec.evalFeatureBody(body, local)
}

// evalCreate instantiates an object into a variable that is still null. An already
// attached variable is left alone.
func (exec *Execution) evalCreate(n *Create, scope *Scope) error {
	holder := scope.resolve(n.Target)
	if holder != nil {
		current, _ := holder.Get(n.Target)
		if !current.IsNull() {
			exec.logger.Debug("create skipped, target attached", "target", n.Target, "line", n.Pos().Line)
			return nil
		}
	} else {
		holder = scope
	}

	className := n.ClassName
	if className == "" {
		className, _ = holder.DeclaredType(n.Target)
	}
	if className == "" {
		className = exec.defaultClass
	}
	if className == "" {
		_, err := exec.missing(n.Pos(), "cannot create '%s': no type declared", n.Target)
		return err
	}

	class, ok := exec.registry.Lookup(className)
	if !ok {
		_, err := exec.missing(n.Pos(), "class %s is not defined", className)
		return err
	}

	obj := exec.instantiate(class)
	holder.Declare(n.Target, className)
	holder.Set(n.Target, NewObject(obj))
	exec.logger.Debug("create object", "class", className, "target", n.Target, "line", n.Pos().Line)

	if n.Init == "" {
		return nil
	}
	body, ok := class.Feature(n.Init)
	if !ok {
		_, err := exec.missing(n.Pos(), "class %s has no creation routine '%s'", className, n.Init)
		return err
	}
	_, err := exec.invokeFeature(obj, body, n.Args, scope, n.Pos())
	return err
}

// instantiate allocates the attribute store of a new object with type defaults.
func (exec *Execution) instantiate(class *ClassEntry) *Scope {
	obj := newObjectScope(class.Name)
	for _, attr := range class.Attributes() {
		obj.Declare(attr.Name, attr.Type)
		obj.Set(attr.Name, defaultValue(attr.Type))
	}
	return obj
}
