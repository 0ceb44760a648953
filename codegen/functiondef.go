package codegen

import (
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

// autoVarInsertionMarker is the reserved placeholder line spliced back out
// by CodegenFunctionDef once the body's auto-variables are known.
const autoVarInsertionMarker = "// Automatic Variable Declarations"

// ReturnType resolves a FunctionDef's declared return type, remapping it
// through core.TypeMap and resolving a "preset" return through the
// referenced Preset's backing type.
func (c *Context) ReturnType(e *core.Element) (string, error) {
	if _, ok := e.FirstLineOfTag("ReturnType"); !ok {
		return "void", nil
	}
	inBlock := false
	var typeValue string
	var typeElement *core.Element
	for _, l := range e.Lines {
		switch {
		case l == "<ReturnType>":
			inBlock = true
		case l == "</ReturnType>":
			inBlock = false
		case inBlock && hasPrefixTag(l, "Type"):
			if v, ok := attrValue(l, "Value"); ok {
				typeValue = v
			}
		case inBlock && hasPrefixTag(l, "TypeElement"):
			_, te, err := c.GetReferencedElement(l)
			if err != nil {
				return "", err
			}
			typeElement = te
		}
	}
	if typeValue == "" {
		return "void", nil
	}
	if typeValue == "preset" {
		if typeElement == nil {
			return "", core.NewBrokenReference("FunctionDef %s declares preset return with no TypeElement", e.ID)
		}
		backing, err := PresetBackingType(typeElement)
		if err != nil {
			return "", err
		}
		return core.ResolveType(backing), nil
	}
	return core.ResolveType(typeValue), nil
}

// CodegenFunctionDef generates a FunctionDef's full Galaxy source: header,
// declarations, initializers, body, default-return backfill, and the
// auto-variable splice. The header-affecting flags (the
// thread-dispatch rewrite, the FlagEvent parameter) are resolved before
// the body is generated, for scripted and non-scripted defs alike.
func (c *Context) CodegenFunctionDef(lib *core.Library, e *core.Element) (string, error) {
	if e.HasFlag("Disabled") {
		return "", nil
	}
	returnType, err := c.ReturnType(e)
	if err != nil {
		return "", err
	}
	funcName, paramDefs, _ := CodegenFunctionInfo(lib, e)

	if e.HasFlag("FlagCreateThread") {
		return c.codegenThreadDispatchFunctionDef(lib, e, funcName, returnType, paramDefs)
	}

	params := make([]string, 0, len(paramDefs)+1)
	if e.HasFlag("FlagEvent") {
		params = append(params, "trigger t")
	}
	for _, pd := range paramDefs {
		t, err := c.CodegenParameterType(pd)
		if err != nil {
			return "", err
		}
		params = append(params, t+" "+ParameterName(lib, pd))
	}

	body, err := c.codegenFunctionBody(lib, e, funcName, returnType, params, nil)
	if err != nil {
		return "", err
	}
	return body, nil
}

func (c *Context) codegenThreadDispatchFunctionDef(lib *core.Library, e *core.Element, funcName, returnType string, paramDefs []*core.Element) (string, error) {
	var out []string
	triggerVar := "auto_" + funcName + "_Trigger"
	out = append(out, "trigger "+triggerVar+" = null;")

	shadowNames := make([]string, len(paramDefs))
	params := make([]string, 0, len(paramDefs))
	for i, pd := range paramDefs {
		t, err := c.CodegenParameterType(pd)
		if err != nil {
			return "", err
		}
		shadow := "auto_" + funcName + "_" + ParameterName(lib, pd)
		shadowNames[i] = shadow
		out = append(out, t+" "+shadow+" = "+zeroLiteral(t)+";")
		params = append(params, t+" "+ParameterName(lib, pd))
	}

	out = append(out, "")
	out = append(out, "void "+funcName+"("+strings.Join(params, ", ")+") {")
	for i, pd := range paramDefs {
		out = append(out, "    "+shadowNames[i]+" = "+ParameterName(lib, pd)+";")
	}
	out = append(out, "    if ("+triggerVar+" == null) {")
	out = append(out, "        "+triggerVar+" = TriggerCreate(\""+funcName+"_TriggerFunc\");")
	out = append(out, "    }")
	out = append(out, "    TriggerExecute("+triggerVar+", false, false);")
	out = append(out, "}")
	out = append(out, "")

	// The trigger-side body reads the shadow globals back into locals
	// named like the declared parameters, so the generated statements
	// reference lp_<name> the same way a direct call would.
	var prelude []string
	for i, pd := range paramDefs {
		t, err := c.CodegenParameterType(pd)
		if err != nil {
			return "", err
		}
		prelude = append(prelude, t+" "+ParameterName(lib, pd)+" = "+shadowNames[i]+";")
	}
	if len(prelude) > 0 {
		prelude = append(prelude, "")
	}
	body, err := c.codegenFunctionBody(lib, e, funcName+"_TriggerFunc", "bool", []string{"bool testConds", "bool runActions"}, prelude)
	if err != nil {
		return "", err
	}
	out = append(out, body)
	return strings.Join(out, "\n"), nil
}

func zeroLiteral(t string) string {
	switch t {
	case "bool":
		return "false"
	case "int", "fixed":
		return "0"
	case "string":
		return "\"\""
	default:
		return "null"
	}
}

func (c *Context) codegenFunctionBody(lib *core.Library, e *core.Element, funcName, returnType string, params []string, prelude []string) (string, error) {
	autoVars := NewAutoVarBuilder(returnType)

	var locals []*core.Element
	for _, child := range lib.Children(e) {
		if child.Kind == core.KindVariable {
			locals = append(locals, child)
		}
	}

	var declLines, initLines []string
	for _, v := range locals {
		t, err := c.GetVariableType(v)
		if err != nil {
			return "", err
		}
		declLines = append(declLines, t+" "+VariableName(lib, v)+";")
		init, err := c.CodegenVariableInit(lib, v)
		if err != nil {
			return "", err
		}
		initLines = append(initLines, init...)
	}

	var implLines []string
	var calls []*core.Element
	for _, child := range lib.Children(e) {
		if child.Kind == core.KindFunctionCall {
			calls = append(calls, child)
		}
	}
	for idx, call := range calls {
		lines, err := c.CodegenFunctionCall(lib, call, autoVars, ";", idx)
		if err != nil {
			return "", err
		}
		implLines = append(implLines, lines...)
	}

	if returnType != "void" {
		lastNonEmpty := ""
		for i := len(implLines) - 1; i >= 0; i-- {
			trimmed := strings.TrimSpace(implLines[i])
			if trimmed == "" || trimmed == "}" || trimmed == "{" {
				continue
			}
			lastNonEmpty = trimmed
			break
		}
		if !strings.HasPrefix(lastNonEmpty, "return") {
			implLines = append(implLines, "return "+core.DefaultReturnValues[returnType]+";")
		}
	}

	var out []string
	out = append(out, returnType+" "+funcName+"("+strings.Join(params, ", ")+") {")
	for _, l := range prelude {
		if l == "" {
			out = append(out, "")
			continue
		}
		out = append(out, "    "+l)
	}
	out = append(out, "    // Variable Declarations")
	for _, l := range declLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    "+autoVarInsertionMarker)
	out = append(out, "    // Variable Initialization")
	for _, l := range initLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    // Implementation")
	for _, l := range implLines {
		out = append(out, "    "+l)
	}
	out = append(out, "}")

	var spliced []string
	for _, l := range out {
		if strings.TrimSpace(l) == autoVarInsertionMarker {
			for _, av := range autoVars.Declarations() {
				spliced = append(spliced, "    "+av)
			}
			continue
		}
		spliced = append(spliced, l)
	}
	return strings.Join(spliced, "\n"), nil
}
