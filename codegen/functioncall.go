package codegen

import (
	"sort"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

// customScriptActionID is the reserved Native FunctionDef whose ScriptCode
// is read from the calling FunctionCall itself rather than the def (the
// editor's "custom script action").
const customScriptActionID = "00000123"

func subfunctionLine(subfunction *core.Element) string {
	return `<SubFunctionType Type="SubFuncType" Library="` + subfunction.Library + `" Id="` + subfunction.ID + `"/>`
}

func paramdefLine(paramdef *core.Element) string {
	return `<ParameterDef Type="ParamDef" Library="` + paramdef.Library + `" Id="` + paramdef.ID + `"/>`
}

// CodegenFunctionInfo returns a FunctionDef's codegen name plus its
// declared ParamDef and SubFuncType children, each in library child
// order.
func CodegenFunctionInfo(lib *core.Library, functionDef *core.Element) (string, []*core.Element, []*core.Element) {
	var paramDefs, subFuncDefs []*core.Element
	for _, child := range lib.Children(functionDef) {
		switch child.Kind {
		case core.KindParamDef:
			paramDefs = append(paramDefs, child)
		case core.KindSubFuncType:
			subFuncDefs = append(subFuncDefs, child)
		}
	}
	return FunctionName(lib, functionDef), paramDefs, subFuncDefs
}

// CodegenCustomScript extracts a CustomScript element's ScriptCode body,
// unescaped line by line.
func CodegenCustomScript(e *core.Element) ([]string, error) {
	lines, ok := e.MultilineValue("ScriptCode")
	if !ok {
		return nil, core.NewMalformedXml("CustomScript %s has no ScriptCode block", e.ID)
	}
	return lines, nil
}

// CodegenVariableInit generates the initializer statement for a Variable
// whose Value is a bound Param, or nil when the Variable is marked
// <Constant/> (no initializer is emitted for it, and its declaration
// carries no value either) or its value is one of the default-initialized
// literals.
func (c *Context) CodegenVariableInit(lib *core.Library, e *core.Element) ([]string, error) {
	for _, line := range e.Lines {
		if !strings.HasPrefix(line, `<Value Type="Param"`) {
			continue
		}
		if e.HasFlag("Constant") {
			return nil, nil
		}
		m := libraryIDPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, core.NewMalformedXml("Variable %s Value line malformed: %q", e.ID, line)
		}
		varLibID, varID := m[1], m[2]
		varLib, ok := c.Repo.Library(varLibID)
		if !ok {
			return nil, core.NewBrokenReference("library %q not found", varLibID)
		}
		varElement, ok := varLib.Get(core.KindParam, varID)
		if !ok {
			return nil, core.NewBrokenReference("Param (%s, %s) not found", varLibID, varID)
		}
		scratch := NewAutoVarBuilder("void")
		initValue, err := c.CodegenParameter(varLib, varElement, scratch)
		if err != nil {
			return nil, err
		}
		switch initValue {
		case "0", "0.0", "null", "false":
			return nil, nil
		}
		if !scratch.Empty() {
			return nil, core.NewInvalidInvariant("Variable %s initializer unexpectedly synthesized auto-variables", e.ID)
		}
		return []string{VariableName(lib, e) + " = " + initValue + ";"}, nil
	}
	return nil, nil
}

// CodegenFunctionCall generates the statement(s) or single expression for
// a FunctionCall element: end is appended as terminal punctuation when
// the caller wants a statement. thisSubfuncOrder is this
// call's position among its siblings bound to the same SubFuncType
// (needed by #IFSUBFUNC).
func (c *Context) CodegenFunctionCall(lib *core.Library, element *core.Element, autoVars *AutoVarBuilder, end string, thisSubfuncOrder int) ([]string, error) {
	return c.codegenFunctionCall(lib, element, autoVars, end, thisSubfuncOrder, nil)
}

func (c *Context) codegenFunctionCall(lib *core.Library, element *core.Element, autoVars *AutoVarBuilder, end string, thisSubfuncOrder int, cursor *int) ([]string, error) {
	if element.HasFlag("Disabled") {
		return nil, nil
	}

	var functionDefLine string
	for _, line := range element.Lines {
		if strings.HasPrefix(line, "<FunctionDef") {
			functionDefLine = line
			break
		}
	}
	var parameters, subfunctionParameters []*core.Element
	for _, child := range lib.Children(element) {
		if child.Kind == core.KindComment {
			continue
		}
		switch child.Kind {
		case core.KindParam:
			parameters = append(parameters, child)
		case core.KindFunctionCall:
			subfunctionParameters = append(subfunctionParameters, child)
		}
	}
	if functionDefLine == "" {
		return []string{"@nofunc@"}, nil
	}
	functionDefLib, functionDef, err := c.GetReferencedElement(functionDefLine)
	if err != nil {
		return nil, err
	}
	functionName, paramOrder, subfuncOrder := CodegenFunctionInfo(functionDefLib, functionDef)

	var scriptCode []string
	scriptCode, hasScriptCode := functionDef.MultilineValue("ScriptCode")
	if functionDef.ID == customScriptActionID && functionDef.Library == core.NativeLibraryTag {
		scriptCode, hasScriptCode = element.MultilineValue("ScriptCode")
		if !hasScriptCode {
			return nil, core.NewMalformedXml("custom script action %s has no ScriptCode", element.ID)
		}
	}

	if !hasScriptCode && len(subfuncOrder) > 0 {
		if len(paramOrder) != 0 {
			return nil, core.NewInvalidInvariant("container FunctionDef %s unexpectedly declares ParamDefs", functionDef.ID)
		}
		if len(subfuncOrder) != 1 {
			return nil, core.NewInvalidInvariant("container FunctionDef %s declares %d SubFuncTypes, expected 1", functionDef.ID, len(subfuncOrder))
		}
		var result []string
		idx := 0
		for _, subfunction := range subfunctionParameters {
			if subfunction.HasFlag("Disabled") {
				continue
			}
			lines, err := c.CodegenFunctionCall(lib, subfunction, autoVars, ";", idx)
			if err != nil {
				return nil, err
			}
			result = append(result, lines...)
			idx++
		}
		return result, nil
	}

	if !hasScriptCode && functionDef.HasFlag("FlagOperator") && (len(parameters) == 1 || len(parameters) == 3) {
		ordered, err := orderByParamDef(parameters, paramOrder)
		if err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(ordered))
		for _, p := range ordered {
			v, err := c.CodegenParameter(lib, p, autoVars)
			if err != nil {
				return nil, err
			}
			parts = append(parts, v)
		}
		return []string{"(" + strings.Join(parts, " ") + ")" + end}, nil
	}

	if !hasScriptCode {
		if len(subfuncOrder) != 0 {
			return nil, core.NewInvalidInvariant("FunctionDef %s unexpectedly declares SubFuncTypes", functionDef.ID)
		}
		ordered, err := orderByParamDef(parameters, paramOrder)
		if err != nil {
			return nil, err
		}
		var eventArgs []string
		if functionDef.HasFlag("FlagEvent") {
			eventArgs = append(eventArgs, "t")
		}
		args := eventArgs
		for _, p := range ordered {
			v, err := c.CodegenParameter(lib, p, autoVars)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return []string{functionName + "(" + strings.Join(args, ", ") + ")" + end}, nil
	}

	scope := &callScope{
		lib:                    lib,
		element:                element,
		functionDef:            functionDef,
		functionDefLib:         functionDefLib,
		autoVarElementID:       element.ID,
		paramIdentToElement:    map[string]*core.Element{},
		paramIdentToElements:   map[string][]*core.Element{},
		paramIdentToElementLib: map[string]*core.Library{},
		subfuncIdentToElements: map[string][]*core.Element{},
		thisSubfuncOrder:       thisSubfuncOrder,
		autoVarCursor:          cursor,
	}

	for _, subfuncDef := range subfuncOrder {
		identifier, ok := subfuncDef.InlineValue("Identifier")
		if !ok {
			return nil, core.NewMalformedXml("SubFuncType %s has no Identifier", subfuncDef.ID)
		}
		var arguments []*core.Element
		target := subfunctionLine(subfuncDef)
		for _, child := range subfunctionParameters {
			if containsLine(child.Lines, target) {
				arguments = append(arguments, child)
			}
		}
		scope.subfuncIdentToElements[identifier] = arguments
	}

	for _, paramdefElement := range paramOrder {
		identifier, ok := paramdefElement.InlineValue("Identifier")
		if !ok {
			return nil, core.NewMalformedXml("ParamDef %s has no Identifier", paramdefElement.ID)
		}
		var arguments []*core.Element
		target := paramdefLine(paramdefElement)
		for _, child := range parameters {
			if containsLine(child.Lines, target) {
				arguments = append(arguments, child)
			}
		}
		// More than one argument on the same ParamDef is a variadic
		// binding; #PARAM(ident, joiner) consumes the full list, the
		// one-arg macros see the first.
		if len(arguments) > 0 {
			scope.paramIdentToElement[identifier] = arguments[0]
			scope.paramIdentToElements[identifier] = arguments
			scope.paramIdentToElementLib[identifier] = lib
		}

		if defaultLine, ok := paramdefElement.FirstLineOfTag("Default"); ok {
			defaultLib, defaultElement, err := c.GetReferencedElement(defaultLine)
			if err != nil {
				return nil, err
			}
			if _, bound := scope.paramIdentToElement[identifier]; !bound {
				scope.paramIdentToElement[identifier] = defaultElement
				scope.paramIdentToElementLib[identifier] = defaultLib
			}
			continue
		}

		paramdefType, _ := paramdefElement.Attribute("Type", "Value")
		switch paramdefType {
		case "sameasparent":
			parentFunctionCall, ok := lib.Parent(element)
			if !ok || parentFunctionCall.Kind != core.KindFunctionCall {
				return nil, core.NewBrokenReference("ParamDef %s is sameasparent but %s has no FunctionCall parent", paramdefElement.ID, element.ID)
			}
			scope.autoVarElementID = parentFunctionCall.ID
			var parentParams []*core.Element
			for _, child := range lib.Children(parentFunctionCall) {
				if child.Kind == core.KindParam {
					parentParams = append(parentParams, child)
				}
			}
			if len(parentParams) != 1 {
				return nil, core.NewInvalidInvariant("sameasparent expects exactly 1 Param on parent FunctionCall %s, got %d", parentFunctionCall.ID, len(parentParams))
			}
			paramLine, ok := parentParams[0].FirstLineOfTag("ParameterDef")
			if !ok {
				return nil, core.NewMalformedXml("Param %s has no ParameterDef line", parentParams[0].ID)
			}
			_, parentParamDefElement, err := c.GetReferencedElement(paramLine)
			if err != nil {
				return nil, err
			}
			if defaultLine, ok := parentParamDefElement.FirstLineOfTag("Default"); ok {
				defaultLib, defaultElement, err := c.GetReferencedElement(defaultLine)
				if err != nil {
					return nil, err
				}
				if _, bound := scope.paramIdentToElement[identifier]; !bound {
					scope.paramIdentToElement[identifier] = defaultElement
					scope.paramIdentToElementLib[identifier] = defaultLib
				}
			}
		case "sameas":
			if _, bound := scope.paramIdentToElement[identifier]; !bound {
				return nil, core.NewInvalidInvariant("ParamDef %s is sameas but %s has no bound argument", paramdefElement.ID, element.ID)
			}
		default:
			if _, bound := scope.paramIdentToElement[identifier]; !bound {
				return nil, core.NewInvalidInvariant("ParamDef %s has no bound argument on FunctionCall %s", paramdefElement.ID, element.ID)
			}
		}
	}

	return c.expandScriptCode(scope, scriptCode, autoVars)
}

func orderByParamDef(parameters, paramOrder []*core.Element) ([]*core.Element, error) {
	order := make(map[string]int, len(paramOrder))
	for i, p := range paramOrder {
		order[p.ID] = i
	}
	ordered := make([]*core.Element, len(parameters))
	copy(ordered, parameters)
	var sortErr error
	sort.SliceStable(ordered, func(i, j int) bool {
		di, err := ParameterDefID(ordered[i])
		if err != nil {
			sortErr = err
		}
		dj, err := ParameterDefID(ordered[j])
		if err != nil {
			sortErr = err
		}
		return order[di] < order[dj]
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return ordered, nil
}
