package codegen

// AutoVariable is one synthesized local declared by the #AUTOVAR/#INITAUTOVAR
// macros: name, static type, and an optional constant
// initializer (when set, the declaration itself carries "= <Constant>"
// and no assignment statement is emitted in the body).
type AutoVariable struct {
	Name     string
	VarType  string
	Constant string
	HasConst bool
}

// AutoVarBuilder accumulates a function body's auto-variables in first
// occurrence order while tracking the enclosing function's return type,
// which #DEFRETURN needs.
type AutoVarBuilder struct {
	Data       []AutoVariable
	ReturnType string
}

// NewAutoVarBuilder constructs a builder for a function whose return type
// is returnType ("void" if none).
func NewAutoVarBuilder(returnType string) *AutoVarBuilder {
	if returnType == "" {
		returnType = "void"
	}
	return &AutoVarBuilder{ReturnType: returnType}
}

// Empty reports whether no auto-variables have been collected yet.
func (b *AutoVarBuilder) Empty() bool {
	return len(b.Data) == 0
}

// Has reports whether name is already declared.
func (b *AutoVarBuilder) Has(name string) bool {
	for _, v := range b.Data {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Append records a new auto-variable if name is not already present.
func (b *AutoVarBuilder) Append(v AutoVariable) {
	b.AppendAt(v, nil)
}

// AppendAt inserts v into Data at position *cursor, advancing *cursor
// past it, or appends at the end when cursor is nil. A no-op if name is
// already present. The reserved IfThenElse def's #SUBFUNCS(then)/
// #SUBFUNCS(else) expansion uses this to snapshot the insertion point
// before "then" and restore it before "else", so the else branch's
// auto-vars end up declared ahead of the then branch's.
func (b *AutoVarBuilder) AppendAt(v AutoVariable, cursor *int) {
	if b.Has(v.Name) {
		return
	}
	if cursor == nil {
		b.Data = append(b.Data, v)
		return
	}
	pos := *cursor
	if pos > len(b.Data) {
		pos = len(b.Data)
	}
	b.Data = append(b.Data, AutoVariable{})
	copy(b.Data[pos+1:], b.Data[pos:])
	b.Data[pos] = v
	*cursor = pos + 1
}

// Declarations renders each collected auto-variable as a declaration
// line, in first-occurrence order.
func (b *AutoVarBuilder) Declarations() []string {
	out := make([]string, 0, len(b.Data))
	for _, v := range b.Data {
		line := v.VarType + " " + v.Name
		if v.HasConst {
			line = "const " + line + " = " + v.Constant
		}
		out = append(out, line+";")
	}
	return out
}
