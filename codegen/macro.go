package codegen

import (
	"regexp"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

var macroPattern = regexp.MustCompile(`#(\w+)\(([^)]*)\)`)

// callScope holds everything the macro expander needs about the
// FunctionCall whose ScriptCode it is expanding: the identifier ->
// argument/type maps built from the FunctionDef's declared ParamDefs, and
// the identifier -> bound-subfunction list built from its SubFuncTypes.
type callScope struct {
	lib                    *core.Library
	element                *core.Element
	functionDef            *core.Element
	functionDefLib         *core.Library
	autoVarElementID       string
	paramIdentToElement    map[string]*core.Element
	paramIdentToElements   map[string][]*core.Element
	paramIdentToElementLib map[string]*core.Library
	subfuncIdentToElements map[string][]*core.Element
	thisSubfuncOrder       int

	// autoVarCursor, when non-nil, redirects AUTOVAR/INITAUTOVAR
	// insertions to *autoVarCursor instead of the end of the list; only
	// ever set for the reserved IfThenElse def's else branch.
	autoVarCursor *int

	// thenInsertionPoint is snapshotted by #SUBFUNCS(then) and consumed
	// by #SUBFUNCS(else), both only on the reserved IfThenElse def.
	thenInsertionPoint *int
}

// parentOf returns the library owning e's recorded parent and the parent
// itself, resolving through the Repository when the parent belongs to a
// different library than e.
func (c *Context) parentOf(lib *core.Library, e *core.Element) (*core.Library, *core.Element, bool) {
	owner := lib
	if owner.Tag != e.Library {
		if l, ok := c.Repo.Library(e.Library); ok {
			owner = l
		}
	}
	p, ok := owner.Parent(e)
	if !ok {
		return nil, nil, false
	}
	pLib := owner
	if l, ok := c.Repo.Library(p.Library); ok {
		pLib = l
	}
	return pLib, p, true
}

// ifThenElseDefID is the reserved Native FunctionDef id for the editor's
// If/Then/Else control construct, whose #SUBFUNCS(then) / #SUBFUNCS(else)
// expansion order requires the auto-variable insertion point to be
// snapshotted and restored.
const ifThenElseDefID = "00000137"

// expandScriptCode runs the macro lexer over script over scope, appending
// generated text/statement lines to result.
func (c *Context) expandScriptCode(scope *callScope, script []string, autoVars *AutoVarBuilder) ([]string, error) {
	var result []string
	i := 0
	for i < len(script) {
		line := script[i]
		i++
		shouldPrint := true
		ateExtraLine := false

		switch {
		case line == "#SMARTBREAK":
			line = "break;"
		case line == "#SMARTCONTINUE":
			line = "continue;"
		case strings.Contains(line, "#DEFRETURN"):
			line = strings.ReplaceAll(line, "#DEFRETURN", core.DefaultReturnValues[autoVars.ReturnType])
		}

		for strings.Contains(line, "#") && shouldPrint {
			m := macroPattern.FindStringSubmatchIndex(line)
			if m == nil {
				if i >= len(script) {
					return nil, core.NewUnknownMacro("unterminated macro invocation in %q", line)
				}
				line = line + script[i] + ")"
				i++
				ateExtraLine = true
				m = macroPattern.FindStringSubmatchIndex(line)
			}
			if m == nil {
				return nil, core.NewUnknownMacro("malformed macro invocation in %q", line)
			}
			whole := line[m[0]:m[1]]
			macroName := line[m[2]:m[3]]
			macroArgsStr := line[m[4]:m[5]]
			// Whitespace in args is preserved; macros that need it
			// stripped (AUTOVAR's type spec) do so themselves.
			macroArgs := strings.Split(macroArgsStr, ",")

			var err error
			var replacement string
			var consumesLine bool

			switch macroName {
			case "AUTOVAR":
				replacement, err = c.expandAutoVar(scope, macroArgs, autoVars)
			case "INITAUTOVAR":
				replacement, consumesLine, err = c.expandInitAutoVar(scope, macroArgs, autoVars)
				if consumesLine && replacement == "" {
					shouldPrint = false
				}
			case "PARAM":
				replacement, err = c.expandParam(scope, macroArgs, autoVars)
			case "IFHAVESUBFUNCS":
				replacement, shouldPrint, err = c.expandIfHaveSubfuncs(scope, macroArgs, ateExtraLine)
			case "IFSUBFUNC":
				replacement, err = c.expandIfSubfunc(scope, macroArgs)
			case "SUBFUNCS":
				var extra []string
				replacement, shouldPrint, extra, err = c.expandSubfuncs(scope, macroArgs, autoVars, whole == strings.TrimSpace(line))
				result = append(result, extra...)
			default:
				err = core.NewUnknownMacro("macro not implemented: %s", macroName)
			}
			if err != nil {
				return nil, err
			}
			line = strings.Replace(line, whole, replacement, 1)
		}
		if shouldPrint {
			result = append(result, strings.Split(line, "\n")...)
		}
	}
	return result, nil
}

func (c *Context) expandAutoVar(scope *callScope, args []string, autoVars *AutoVarBuilder) (string, error) {
	if len(args) == 1 {
		args = append(args, "int")
	}
	if len(args) != 2 {
		return "", core.NewUnknownMacro("AUTOVAR expects 1 or 2 arguments, got %d", len(args))
	}
	name, spec := args[0], args[1]
	ownerID := scope.autoVarElementID
	varType := spec

	switch {
	case strings.HasPrefix(spec, "ancestor:"):
		ancestor := strings.TrimPrefix(spec, "ancestor:")
		parentLib, parent, parentFunctionDef := scope.lib, scope.element, scope.functionDef
		for parent.Kind != core.KindRoot {
			ident, _ := parentFunctionDef.InlineValue("Identifier")
			if ident == ancestor {
				break
			}
			var ok bool
			parentLib, parent, ok = c.parentOf(parentLib, parent)
			if !ok {
				return "", core.NewBrokenReference("no ancestor %q found above %s", ancestor, scope.element.ID)
			}
			for parent.Kind != core.KindRoot && parent.Kind != core.KindFunctionCall {
				parentLib, parent, ok = c.parentOf(parentLib, parent)
				if !ok {
					return "", core.NewBrokenReference("no ancestor %q found above %s", ancestor, scope.element.ID)
				}
			}
			fdLibID, ok1 := parent.Attribute("FunctionDef", "Library")
			fdID, ok2 := parent.Attribute("FunctionDef", "Id")
			if !ok1 || !ok2 {
				return "", core.NewMalformedXml("FunctionCall %s has no FunctionDef reference", parent.ID)
			}
			fdLib, ok := c.Repo.Library(fdLibID)
			if !ok {
				return "", core.NewBrokenReference("library %q not found", fdLibID)
			}
			fd, ok := fdLib.Get(core.KindFunctionDef, fdID)
			if !ok {
				return "", core.NewBrokenReference("FunctionDef (%s, %s) not found", fdLibID, fdID)
			}
			parentFunctionDef = fd
		}
		ownerID = parent.ID

	case spec == "parent":
		paramIdent := name
		parentLib, parent, ok := c.parentOf(scope.lib, scope.element)
		if !ok {
			return "", core.NewBrokenReference("element %s has no parent", scope.element.ID)
		}
		functionDefLine, ok := parent.FirstLineOfTag("FunctionDef")
		if !ok {
			return "", core.NewMalformedXml("FunctionCall %s has no FunctionDef line", parent.ID)
		}
		parentFunctionDefLib, parentFunctionDef, err := c.GetReferencedElement(functionDefLine)
		if err != nil {
			return "", err
		}
		if paramIdent == "val" {
			paramIdent = "value"
		}
		parentParamDef, ok := parentFunctionDefLib.KeywordParameter(parentFunctionDef, paramIdent)
		if !ok {
			return "", core.NewBrokenReference("FunctionDef %s has no keyword parameter %q", parentFunctionDef.ID, paramIdent)
		}
		var argument *core.Element
		for _, child := range parentLib.Children(parent) {
			if child.Kind == core.KindParam && containsLine(child.Lines, paramdefLine(parentParamDef)) {
				argument = child
				break
			}
		}
		if argument == nil {
			return "", core.NewBrokenReference("no argument bound to keyword parameter %q on FunctionCall %s", paramIdent, parent.ID)
		}
		ownerID = parent.ID
		vt, err := c.GetVariableType(argument)
		if err != nil {
			return "", err
		}
		varType = vt
	}

	autoVarName := "auto" + ownerID + "_" + name
	autoVars.AppendAt(AutoVariable{Name: autoVarName, VarType: strings.TrimSpace(varType)}, scope.autoVarCursor)
	return autoVarName, nil
}

func (c *Context) expandInitAutoVar(scope *callScope, args []string, autoVars *AutoVarBuilder) (string, bool, error) {
	if len(args) != 2 {
		return "", false, core.NewUnknownMacro("INITAUTOVAR expects 2 arguments, got %d", len(args))
	}
	name, paramIdent := args[0], args[1]
	autoVarName := "auto" + scope.autoVarElementID + "_" + name
	parameterElement, ok := scope.paramIdentToElement[paramIdent]
	if !ok {
		return "", false, core.NewBrokenReference("INITAUTOVAR references unknown parameter identifier %q", paramIdent)
	}
	parameterLib := scope.paramIdentToElementLib[paramIdent]

	varType, err := c.CodegenParameterType(parameterElement)
	if err != nil {
		return "", false, err
	}
	varType = core.ResolveType(varType)
	if varType == "" {
		varType = "int"
	}

	constant, isConstant, err := c.IsVariableParameterConstant(parameterElement)
	if err != nil {
		return "", false, err
	}
	if isConstant {
		autoVars.AppendAt(AutoVariable{Name: autoVarName, VarType: varType, Constant: constant, HasConst: true}, scope.autoVarCursor)
		return "", true, nil
	}
	autoVars.AppendAt(AutoVariable{Name: autoVarName, VarType: varType}, scope.autoVarCursor)
	value, err := c.CodegenParameter(parameterLib, parameterElement, autoVars)
	if err != nil {
		return "", false, err
	}
	return autoVarName + " = " + value + ";", false, nil
}

func (c *Context) expandParam(scope *callScope, args []string, autoVars *AutoVarBuilder) (string, error) {
	if len(args) != 1 && len(args) != 2 {
		return "", core.NewUnknownMacro("PARAM expects 1 or 2 arguments, got %d", len(args))
	}
	parameterElement, ok := scope.paramIdentToElement[args[0]]
	if !ok {
		return "true", nil
	}
	if len(args) == 2 {
		// Variadic binding: every argument targeting the same ParamDef
		// is generated and joined, with the joiner's quotes stripped.
		joiner := strings.ReplaceAll(args[1], `"`, "")
		bound := scope.paramIdentToElements[args[0]]
		if len(bound) == 0 {
			bound = []*core.Element{parameterElement}
		}
		parts := make([]string, 0, len(bound))
		for _, b := range bound {
			v, err := c.CodegenParameter(scope.paramIdentToElementLib[args[0]], b, autoVars)
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		}
		return strings.Join(parts, joiner), nil
	}
	return c.CodegenParameter(scope.paramIdentToElementLib[args[0]], parameterElement, autoVars)
}

func (c *Context) expandIfHaveSubfuncs(scope *callScope, args []string, ateExtraLine bool) (string, bool, error) {
	if len(args) != 2 {
		return "", true, core.NewUnknownMacro("IFHAVESUBFUNCS expects 2 arguments, got %d", len(args))
	}
	subfuncs := scope.subfuncIdentToElements[args[0]]
	var active []*core.Element
	for _, s := range subfuncs {
		if !s.HasFlag("Disabled") {
			active = append(active, s)
		}
	}
	if len(active) > 0 {
		return args[1], true, nil
	}
	if ateExtraLine {
		return "", false, nil
	}
	return "", true, nil
}

func (c *Context) expandIfSubfunc(scope *callScope, args []string) (string, error) {
	if len(args) != 2 || args[0] != "notfirst" {
		return "", core.NewUnknownMacro("IFSUBFUNC expects (notfirst, text), got %v", args)
	}
	if scope.thisSubfuncOrder == 0 {
		return "", nil
	}
	return args[1], nil
}

// expandSubfuncs implements #SUBFUNCS(ident) and #SUBFUNCS(ident, joiner).
// It returns (replacement text for the current line, whether the current
// line should still be printed, extra statement lines to append directly
// to the result — used only by the one-arg form, error). Disabled
// subfunctions are filtered here, at the expansion site, so they neither
// generate statements nor occupy an ordering slot.
func (c *Context) expandSubfuncs(scope *callScope, args []string, autoVars *AutoVarBuilder, wholeLineIsMacro bool) (string, bool, []string, error) {
	if len(args) != 1 && len(args) != 2 {
		return "", true, nil, core.NewUnknownMacro("SUBFUNCS expects 1 or 2 arguments, got %d", len(args))
	}
	var subfuncs []*core.Element
	for _, s := range scope.subfuncIdentToElements[args[0]] {
		if !s.HasFlag("Disabled") {
			subfuncs = append(subfuncs, s)
		}
	}

	if len(args) == 1 {
		isIfThenElse := scope.functionDef.ID == ifThenElseDefID && scope.functionDefLib.Tag == core.NativeLibraryTag
		var cursor *int
		if isIfThenElse {
			if args[0] == "then" {
				pos := len(autoVars.Data)
				scope.thenInsertionPoint = &pos
			} else if args[0] == "else" && scope.thenInsertionPoint != nil {
				cursor = scope.thenInsertionPoint
			}
		}
		var extra []string
		for idx, child := range subfuncs {
			lines, err := c.codegenFunctionCall(c.owningLibrary(scope, child), child, autoVars, ";", idx, cursor)
			if err != nil {
				return "", true, nil, err
			}
			extra = append(extra, lines...)
		}
		if !wholeLineIsMacro {
			return "", true, nil, core.NewUnknownMacro("SUBFUNCS(ident) one-arg form must be the entire line")
		}
		return "", false, extra, nil
	}

	if len(subfuncs) == 0 {
		return "true", true, nil, nil
	}
	parts := make([]string, 0, len(subfuncs))
	for idx, child := range subfuncs {
		lines, err := c.CodegenFunctionCall(c.owningLibrary(scope, child), child, autoVars, "", idx)
		if err != nil {
			return "", true, nil, err
		}
		if len(lines) == 0 {
			continue
		}
		if len(lines) != 1 {
			return "", true, nil, core.NewInvalidInvariant("SUBFUNCS expression form produced %d lines for a subfunction", len(lines))
		}
		parts = append(parts, lines[0])
	}
	joiner := strings.Trim(args[1], `"`)
	return strings.Join(parts, joiner), true, nil, nil
}

// owningLibrary resolves the library a bound subfunction actually lives
// in; the children of a call belong to the calling library, not the
// (often Native) library that declares the FunctionDef.
func (c *Context) owningLibrary(scope *callScope, child *core.Element) *core.Library {
	if child.Library == scope.lib.Tag {
		return scope.lib
	}
	if l, ok := c.Repo.Library(child.Library); ok {
		return l
	}
	return scope.lib
}

func containsLine(lines []string, target string) bool {
	for _, l := range lines {
		if l == target {
			return true
		}
	}
	return false
}
