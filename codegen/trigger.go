package codegen

import (
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

// triggerChildRefs parses the self-closed reference lines inside a
// Trigger's named block (Events/Conditions/Actions), each of the form
// `<Tag Type="Kind" Library="L" Id="X"/>`, and resolves them in document
// order.
func (c *Context) triggerChildRefs(e *core.Element, blockTag string) ([]*core.Element, error) {
	lines, ok := e.MultilineValue(blockTag)
	if !ok {
		return nil, nil
	}
	var out []*core.Element
	for _, line := range lines {
		if !typeLibIDPattern.MatchString(line) {
			continue
		}
		_, child, err := c.GetReferencedElement(line)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// CodegenTrigger generates a Trigger's full skeleton: a `<name>_Func` predicate evaluating conditions and
// running actions, and a `<name>_Init` that creates the trigger, disables
// it if `<InitOff/>` is present, and registers every Event.
func (c *Context) CodegenTrigger(lib *core.Library, e *core.Element) (string, error) {
	if e.HasFlag("Disabled") {
		return "", nil
	}
	name := TriggerName(lib, e)

	var locals []*core.Element
	for _, child := range lib.Children(e) {
		if child.Kind == core.KindVariable {
			locals = append(locals, child)
		}
	}

	autoVars := NewAutoVarBuilder("bool")
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

	conditions, err := c.triggerChildRefs(e, "Conditions")
	if err != nil {
		return "", err
	}
	actions, err := c.triggerChildRefs(e, "Actions")
	if err != nil {
		return "", err
	}
	events, err := c.triggerChildRefs(e, "Events")
	if err != nil {
		return "", err
	}

	var condLines []string
	for idx, cond := range conditions {
		lines, err := c.CodegenFunctionCall(lib, cond, autoVars, "", idx)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			continue
		}
		condLines = append(condLines, "if (testConds) {")
		condLines = append(condLines, "    if (!("+strings.Join(lines, "")+")) {")
		condLines = append(condLines, "        return false;")
		condLines = append(condLines, "    }")
		condLines = append(condLines, "}")
	}

	var actionLines []string
	for idx, action := range actions {
		lines, err := c.CodegenFunctionCall(lib, action, autoVars, ";", idx)
		if err != nil {
			return "", err
		}
		actionLines = append(actionLines, lines...)
	}

	var out []string
	out = append(out, "bool "+name+"_Func (bool testConds, bool runActions) {")
	out = append(out, "    // Variable Declarations")
	for _, l := range declLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    "+autoVarInsertionMarker)
	out = append(out, "    // Variable Initialization")
	for _, l := range initLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    // Conditions")
	for _, l := range condLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    if (!runActions) {")
	out = append(out, "        return true;")
	out = append(out, "    }")
	out = append(out, "    // Actions")
	for _, l := range actionLines {
		out = append(out, "    "+l)
	}
	out = append(out, "    return true;")
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

	// Event registrations run in the _Init body, after the _Func's
	// auto-variables are already spliced; they get their own scratch
	// builder (events never synthesize auto-variables).
	eventVars := NewAutoVarBuilder("void")
	var initFn []string
	initFn = append(initFn, "")
	initFn = append(initFn, "void "+name+"_Init () {")
	initFn = append(initFn, "    trigger t;")
	initFn = append(initFn, "    t = TriggerCreate(\""+name+"_Func\");")
	for idx, ev := range events {
		lines, err := c.CodegenFunctionCall(lib, ev, eventVars, ";", idx)
		if err != nil {
			return "", err
		}
		if len(lines) == 0 {
			continue
		}
		initFn = append(initFn, "    "+strings.Join(lines, ""))
	}
	if e.HasFlag("InitOff") {
		initFn = append(initFn, "    TriggerSetState(t, c_triggerStateOff);")
	}
	initFn = append(initFn, "}")

	return strings.Join(spliced, "\n") + "\n" + strings.Join(initFn, "\n"), nil
}
