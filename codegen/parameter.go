package codegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

var (
	valuePattern         = regexp.MustCompile(`^<(ValueType|ValueId) (?:Type|Id)="(\w+)"`)
	variableRefPattern   = regexp.MustCompile(`^<Variable Type="Variable" Library="(\w+)" Id="([0-9A-F]{8})"/>$`)
	arrayRefPattern      = regexp.MustCompile(`<Array Type="Param" Library="(\w+)" Id="([0-9A-F]{8})"/>`)
	valueElementPattern  = regexp.MustCompile(`^<ValueElement Type="(Trigger|Preset)" Library="(\w+)" Id="([0-9A-F]{8})"/>$`)
	functionCallPattern  = regexp.MustCompile(`^<FunctionCall Type="FunctionCall" Library="(\w+)" Id="([0-9A-F]{8})"/>$`)
	presetValuePattern   = regexp.MustCompile(`^<Preset Type="PresetValue" Library="(\w+)" Id="([0-9A-F]{8})"/>$`)
	paramDefLinePattern  = regexp.MustCompile(`<ParameterDef Type="ParamDef" Library="\w+" Id="([0-9A-F]{8})"`)
)

// CodegenParameterType resolves the static type of a ParamDef or Variable
// (or, for anything else, of its referenced Preset/PresetValue chain),
// following Preset/TypeElement -> backing type, Default -> recurse,
// Type attribute, Parameter -> recurse, Variable -> recurse.
func (c *Context) CodegenParameterType(e *core.Element) (string, error) {
	var result string
	switch e.Kind {
	case core.KindParamDef, core.KindVariable:
		presetLine, ok := e.FirstLineOfTag("Preset")
		if !ok {
			presetLine, ok = e.FirstLineOfTag("TypeElement")
		}
		if ok {
			_, presetElement, err := c.GetReferencedElement(presetLine)
			if err != nil {
				return "", err
			}
			if presetElement.Kind == core.KindPreset {
				return PresetBackingType(presetElement)
			}
			return c.CodegenParameterType(presetElement)
		}
		if defaultLine, ok := e.FirstLineOfTag("Default"); ok {
			_, defaultElement, err := c.GetReferencedElement(defaultLine)
			if err != nil {
				return "", err
			}
			result, err = c.CodegenParameterType(defaultElement)
			if err != nil {
				return "", err
			}
		}
	default:
		if presetLine, ok := e.FirstLineOfTag("Preset"); ok {
			presetLib, presetValueElement, err := c.GetReferencedElement(presetLine)
			if err != nil {
				return "", err
			}
			presetElement, ok := presetLib.Parent(presetValueElement)
			if !ok {
				return "", core.NewBrokenReference("PresetValue %s has no owning Preset", presetValueElement.ID)
			}
			return PresetBackingType(presetElement)
		}
	}
	if autoVarType, ok := e.Attribute("Type", "Value"); ok && autoVarType != "" {
		if result == "" {
			result = autoVarType
		}
	}
	if parameterLine, ok := e.FirstLineOfTag("Parameter"); ok {
		_, parameterElement, err := c.GetReferencedElement(parameterLine)
		if err != nil {
			return "", err
		}
		if result == "" {
			result, err = c.CodegenParameterType(parameterElement)
			if err != nil {
				return "", err
			}
		}
	}
	if variableLine, ok := e.FirstLineOfTag("Variable"); ok {
		_, variableElement, err := c.GetReferencedElement(variableLine)
		if err != nil {
			return "", err
		}
		if result == "" {
			result, err = c.CodegenParameterType(variableElement)
			if err != nil {
				return "", err
			}
		}
	}
	if result == "preset" {
		return "", core.NewInvalidInvariant("codegen parameter type resolved to bare 'preset' for element %s", e.ID)
	}
	return result, nil
}

// CodegenParameter generates the Galaxy value expression for a Param
// element. A ScriptCode block, or a reference to a nested function call,
// value element, preset or parameter, returns as soon as the scan reaches
// it; otherwise the collected fields decide in a fixed order: abilcmd,
// ValueId, layoutframerel, array-indexed and plain variables, text,
// ExpressionText, then the typed-literal shapes, falling back to the raw
// Value.
func (c *Context) CodegenParameter(lib *core.Library, e *core.Element, autoVars *AutoVarBuilder) (string, error) {
	var (
		value, typ, variable, valueID, expression string
		arrayParam                                []string
	)

	inScriptCode := false
	var scriptCodeResult []string
	for _, line := range e.Lines {
		switch {
		case strings.HasPrefix(line, "<Value>") && strings.HasSuffix(line, "</Value>"):
			value = core.UnescapeXMLString(line[len("<Value>") : len(line)-len("</Value>")])
		case strings.HasPrefix(line, "<ExpressionText>"):
			expression = core.UnescapeXMLString(line[len("<ExpressionText>") : len(line)-len("</ExpressionText>")])
		case line == "<ScriptCode>":
			inScriptCode = true
		case line == "</ScriptCode>":
			return strings.Join(scriptCodeResult, "\n"), nil
		case inScriptCode:
			scriptCodeResult = append(scriptCodeResult, core.UnescapeXMLString(line))
		default:
			if m := valuePattern.FindStringSubmatch(line); m != nil {
				if m[1] == "ValueId" {
					valueID = m[2]
				} else {
					typ = core.ResolveType(m[2])
				}
				continue
			}
			if m := variableRefPattern.FindStringSubmatch(line); m != nil {
				libID, varID := m[1], m[2]
				if libID == core.NativeLibraryTag {
					return "", core.NewInvalidInvariant("Param %s references a Variable in the Native library", e.ID)
				}
				varLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				varElement, ok := varLib.Get(core.KindVariable, varID)
				if !ok {
					return "", core.NewBrokenReference("Variable (%s, %s) not found", libID, varID)
				}
				variable = VariableName(varLib, varElement)
				continue
			}
			if m := arrayRefPattern.FindStringSubmatch(line); m != nil {
				libID, paramID := m[1], m[2]
				paramLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				paramElement, ok := paramLib.Get(core.KindParam, paramID)
				if !ok {
					return "", core.NewBrokenReference("Param (%s, %s) not found", libID, paramID)
				}
				indexValue, err := c.CodegenParameter(paramLib, paramElement, autoVars)
				if err != nil {
					return "", err
				}
				arrayParam = append(arrayParam, "["+indexValue+"]")
				continue
			}
			if m := functionCallPattern.FindStringSubmatch(line); m != nil {
				libID, callID := m[1], m[2]
				if libID == core.NativeLibraryTag {
					return "", core.NewInvalidInvariant("Param %s references a FunctionCall in the Native library", e.ID)
				}
				callLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				callElement, ok := callLib.Get(core.KindFunctionCall, callID)
				if !ok {
					return "", core.NewBrokenReference("FunctionCall (%s, %s) not found", libID, callID)
				}
				result, err := c.CodegenFunctionCall(callLib, callElement, autoVars, "", 0)
				if err != nil {
					return "", err
				}
				if len(result) != 1 {
					return "", core.NewInvalidInvariant("FunctionCall %s used as a value did not produce exactly one line", callElement.ID)
				}
				return result[0], nil
			}
			if m := valueElementPattern.FindStringSubmatch(line); m != nil {
				elementType, libID, elementID := core.ElementKind(m[1]), m[2], m[3]
				valueLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				target, ok := valueLib.Get(elementType, elementID)
				if !ok {
					return "", core.NewBrokenReference("element (%s, %s, %s) not found", libID, elementType, elementID)
				}
				switch elementType {
				case core.KindTrigger:
					return TriggerName(valueLib, target), nil
				case core.KindPreset:
					if valuePresetLine, ok := e.FirstLineOfTag("ValuePreset"); ok {
						vm := typeLibIDPattern.FindStringSubmatch(valuePresetLine)
						if vm == nil || core.ElementKind(vm[1]) != core.KindPresetValue {
							return "", core.NewMalformedXml("ValuePreset line malformed: %q", valuePresetLine)
						}
						pvLib, ok := c.Repo.Library(vm[2])
						if !ok {
							return "", core.NewBrokenReference("library %q not found", vm[2])
						}
						pv, ok := pvLib.Get(core.KindPresetValue, vm[3])
						if !ok {
							return "", core.NewBrokenReference("PresetValue (%s, %s) not found", vm[2], vm[3])
						}
						return c.PresetValue(pvLib, pv)
					}
					if baseType, ok := target.Attribute("BaseType", "Value"); ok {
						if def, ok := core.DefaultReturnValues[baseType]; ok {
							return def, nil
						}
					}
					key := fmt.Sprintf("%s/Name/lib_%s_%s", elementType, libID, elementID)
					return EscapeIdentifier(valueLib.TriggerStrings[key]), nil
				default:
					return "", core.NewInvalidInvariant("don't know how to handle ValueElement of type %s", elementType)
				}
			}
			if m := presetValuePattern.FindStringSubmatch(line); m != nil {
				libID, presetID := m[1], m[2]
				presetLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				pv, ok := presetLib.Get(core.KindPresetValue, presetID)
				if !ok {
					return "", core.NewBrokenReference("PresetValue (%s, %s) not found", libID, presetID)
				}
				return c.PresetValue(presetLib, pv)
			}
			if strings.HasPrefix(line, `<Parameter Type="ParamDef"`) {
				m := libraryIDPattern.FindStringSubmatch(line)
				if m == nil {
					return "", core.NewMalformedXml("Parameter line malformed: %q", line)
				}
				libID, id := m[1], m[2]
				paramLib, ok := c.Repo.Library(libID)
				if !ok {
					return "", core.NewBrokenReference("library %q not found", libID)
				}
				paramDefElement, ok := paramLib.Get(core.KindParamDef, id)
				if !ok {
					return "", core.NewBrokenReference("ParamDef (%s, %s) not found", libID, id)
				}
				return ParameterName(paramLib, paramDefElement), nil
			}
		}
	}

	switch {
	case typ == "abilcmd":
		id := valueID
		if id == "" {
			id = "0"
		}
		return fmt.Sprintf(`AbilityCommand("%s", %s)`, value, id), nil
	case valueID != "":
		return valueID, nil
	case typ == "layoutframerel":
		parts := strings.Split(value, "/")
		return `"` + parts[len(parts)-1] + `"`, nil
	case len(arrayParam) > 0:
		if variable == "" {
			return "", core.NewInvalidInvariant("Param %s has array indices but no backing variable", e.ID)
		}
		return variable + strings.Join(arrayParam, ""), nil
	case variable != "":
		return variable, nil
	case typ == "text":
		key := fmt.Sprintf("%s/Value/lib_%s_%s", e.Kind, lib.Tag, e.ID)
		if _, ok := lib.TriggerStrings[key]; ok {
			return fmt.Sprintf(`StringExternal("%s")`, key), nil
		}
		return `StringToText("")`, nil
	case expression != "":
		children := lib.Children(e)
		expressionToChild := make(map[string]string, len(children))
		for _, child := range children {
			code, ok := child.Attribute("ExpressionCode", "Value")
			if !ok {
				continue
			}
			v, err := c.CodegenParameter(lib, child, autoVars)
			if err != nil {
				return "", err
			}
			expressionToChild[code] = v
		}
		expanded := expressionRefPattern.ReplaceAllStringFunc(expression, func(m string) string {
			code := m[1 : len(m)-1]
			if v, ok := expressionToChild[code]; ok {
				return v
			}
			return m
		})
		return "(" + expanded + ")", nil
	case typ == "string" && value == "":
		return `""`, nil
	case value == "":
		return "@param" + e.ID, nil
	case typ == "color":
		return codegenColor(value)
	case typ == "fixed":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", core.NewMalformedXml("fixed value %q is not numeric: %v", value, err)
		}
		return formatFixed(f), nil
	case typ == "string":
		return `"` + pythonReprInner(value) + `"`, nil
	case typ == "unitfilter":
		parts := strings.SplitN(value, ";", 2)
		if len(parts) != 2 {
			return "", core.NewMalformedXml("unitfilter value %q missing include/exclude separator", value)
		}
		incLo, incHi, err := FormatFilterParts(strings.Split(parts[0], ","))
		if err != nil {
			return "", err
		}
		excLo, excHi, err := FormatFilterParts(strings.Split(parts[1], ","))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("UnitFilter(%s, %s, %s, %s)", incLo, incHi, excLo, excHi), nil
	default:
		return value, nil
	}
}

var expressionRefPattern = regexp.MustCompile(`~([A-Z]+)~`)

// formatFixed renders a fixed-point literal with the fractional point
// always present, so a whole number comes out as "1.0" rather than "1".
func formatFixed(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func codegenColor(value string) (string, error) {
	parts := strings.Split(value, ",")
	order := []int{1, 2, 3, 0}
	wantAlpha := len(parts) == 4
	if !wantAlpha && len(parts) != 3 {
		return "", core.NewMalformedXml("color value %q has %d components", value, len(parts))
	}
	if !wantAlpha {
		order = []int{0, 1, 2}
	}
	display := make([]string, 0, len(order))
	for _, idx := range order {
		f, err := strconv.ParseFloat(parts[idx], 64)
		if err != nil {
			return "", core.NewMalformedXml("color component %q is not numeric: %v", parts[idx], err)
		}
		display = append(display, fmt.Sprintf("%.2f", f/2.55))
	}
	if wantAlpha {
		return fmt.Sprintf("ColorWithAlpha(%s)", strings.Join(display, ", ")), nil
	}
	return fmt.Sprintf("Color(%s)", strings.Join(display, ", ")), nil
}

// pythonReprInner mirrors Python's repr()-then-strip-outer-quote-chars
// behavior for a plain string: backslash and the chosen quote character
// are escaped; the quote character is '\'' unless the value contains a
// single quote and no double quote, in which case '"' is chosen instead
// (matching CPython's str.__repr__ quote selection).
func pythonReprInner(value string) string {
	hasSingle := strings.ContainsRune(value, '\'')
	hasDouble := strings.ContainsRune(value, '"')
	quote := '\''
	if hasSingle && !hasDouble {
		quote = '"'
	}
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatFilterParts splits a unitfilter category list into the (bits
// 0-31, bits 32-61) bitmask expressions codegen emits, referencing the
// generated c_targetFilter<Name> constants rather than raw bit positions
//; "-" is a placeholder category
// that contributes no bit.
func FormatFilterParts(categories []string) (string, string, error) {
	var lower, upper []string
	for _, category := range categories {
		category = strings.TrimSpace(category)
		if category == "-" {
			continue
		}
		bit, ok := core.TargetFilterValue[category]
		if !ok {
			return "", "", core.NewBrokenReference("unknown unit-filter category %q", category)
		}
		if bit < 32 {
			lower = append(lower, category)
		} else {
			upper = append(upper, category)
		}
	}
	lowerParam := "0"
	if len(lower) > 0 {
		parts := make([]string, len(lower))
		for i, x := range lower {
			parts[i] = fmt.Sprintf("(1 << c_targetFilter%s)", x)
		}
		lowerParam = strings.Join(parts, " | ")
	}
	upperParam := "0"
	if len(upper) > 0 {
		parts := make([]string, len(upper))
		for i, x := range upper {
			parts[i] = fmt.Sprintf("(1 << (c_targetFilter%s - 32))", x)
		}
		upperParam = strings.Join(parts, " | ")
	}
	return lowerParam, upperParam, nil
}

// ParameterDefID extracts the ParamDef id a Param argument targets, from
// its embedded "<ParameterDef Type="ParamDef" Library="…" Id="…"/>" line.
func ParameterDefID(e *core.Element) (string, error) {
	for _, line := range e.Lines {
		if m := paramDefLinePattern.FindStringSubmatch(line); m != nil {
			return m[1], nil
		}
	}
	return "", core.NewBrokenReference("Param %s has no ParameterDef line", e.ID)
}

// IsVariableParameterConstant reports whether a Param's bound value is
// usable as a const initializer: an inline Value, or a referenced
// Variable carrying <Constant/> (in which case its variable name is the
// initializer).
func (c *Context) IsVariableParameterConstant(e *core.Element) (string, bool, error) {
	if v, ok := e.InlineValue("Value"); ok {
		return v, true, nil
	}
	if variableLine, ok := e.FirstLineOfTag("Variable"); ok {
		variableLib, variableElement, err := c.GetReferencedElement(variableLine)
		if err != nil {
			return "", false, err
		}
		if !variableElement.HasFlag("Constant") {
			return "", false, nil
		}
		return VariableName(variableLib, variableElement), true, nil
	}
	return "", false, nil
}
