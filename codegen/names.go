package codegen

import (
	"strings"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
)

// EscapeIdentifier strips the characters a display name can carry but a
// Galaxy identifier cannot.
func EscapeIdentifier(s string) string {
	r := strings.NewReplacer(" ", "", "(", "", ")", "", "/", "", "+", "", "-", "")
	return r.Replace(s)
}

// ToggleCaseOfFirstLetter flips the case of s's first rune, used when a
// Variable's display name doubles as its identifier fallback.
func ToggleCaseOfFirstLetter(s string) string {
	if s == "" {
		return s
	}
	first := s[0:1]
	rest := s[1:]
	if strings.ToUpper(first) == first {
		return strings.ToLower(first) + rest
	}
	return strings.ToUpper(first) + rest
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[0:1]) + s[1:]
}

// ParameterName names a ParamDef/Param: its declared
// Identifier prefixed with "lp_", else an escaped, lower-first display
// name.
func ParameterName(lib *core.Library, e *core.Element) string {
	if ident, ok := e.InlineValue("Identifier"); ok && ident != "" {
		return "lp_" + ident
	}
	display := parser.IDToString(lib, e.Kind, e.ID, "")
	return EscapeIdentifier("lp_" + lowerFirst(display))
}

// GlobalVariableName names a Variable whose parent is Root/Category:
// "lib<lib>_gv_<ident or toggled-case display name>".
func GlobalVariableName(lib *core.Library, e *core.Element) string {
	ident, ok := e.InlineValue("Identifier")
	if !ok || ident == "" {
		ident = ToggleCaseOfFirstLetter(EscapeIdentifier(parser.IDToString(lib, e.Kind, e.ID, "")))
	}
	return "lib" + lib.Tag + "_gv_" + ident
}

// LocalVariableName names a Variable owned by a function body: "lv_<ident
// or lower-first display name>", escaped.
func LocalVariableName(lib *core.Library, e *core.Element) string {
	ident, ok := e.InlineValue("Identifier")
	if !ok || ident == "" {
		ident = lowerFirst(parser.IDToString(lib, e.Kind, e.ID, ""))
	}
	return EscapeIdentifier("lv_" + ident)
}

// VariableName dispatches to GlobalVariableName or LocalVariableName based
// on whether e's parent is the library root/a category.
func VariableName(lib *core.Library, e *core.Element) string {
	if parent, ok := lib.Parent(e); ok && (parent.Kind == core.KindRoot || parent.Kind == core.KindCategory) {
		return GlobalVariableName(lib, e)
	}
	return LocalVariableName(lib, e)
}

// FunctionName names a FunctionDef: unprefixed if it carries
// <FlagNative/> (it names a runtime built-in), else
// "lib<lib>_gf_<ident or escaped display name>".
func FunctionName(lib *core.Library, e *core.Element) string {
	prefix := "lib" + lib.Tag + "_gf_"
	if e.HasFlag("FlagNative") {
		prefix = ""
	}
	if ident, ok := e.InlineValue("Identifier"); ok && ident != "" {
		return prefix + ident
	}
	return prefix + EscapeIdentifier(parser.IDToString(lib, e.Kind, e.ID, ""))
}

// TriggerName names a Trigger: "lib<lib>_gt_<ident or escaped display
// name>".
func TriggerName(lib *core.Library, e *core.Element) string {
	prefix := "lib" + lib.Tag + "_gt_"
	if ident, ok := e.InlineValue("Identifier"); ok && ident != "" {
		return prefix + ident
	}
	return prefix + EscapeIdentifier(parser.IDToString(lib, e.Kind, e.ID, ""))
}

// PresetTypeName names a Preset by its escaped display name.
func PresetTypeName(lib *core.Library, e *core.Element) string {
	return EscapeIdentifier(parser.IDToString(lib, e.Kind, e.ID, ""))
}

// PresetBackingType returns a Preset element's declared BaseType, the
// underlying scalar type its values actually codegen as.
func PresetBackingType(e *core.Element) (string, error) {
	v, ok := e.Attribute("BaseType", "Value")
	if !ok {
		return "", core.NewBrokenReference("Preset %s has no BaseType", e.ID)
	}
	return v, nil
}

// PresetValue names a PresetValue: its inline Value if present (unescaped),
// else "lib<lib>_ge_<presetTypeName>_<ident or escaped display name>".
func (c *Context) PresetValue(lib *core.Library, e *core.Element) (string, error) {
	if v, ok := e.InlineValue("Value"); ok {
		return core.UnescapeXMLString(v), nil
	}
	var ident string
	if raw, ok := e.InlineValue("Identifier"); ok {
		ident = core.UnescapeXMLString(raw)
	} else {
		ident = EscapeIdentifier(parser.IDToString(lib, e.Kind, e.ID, ""))
	}
	presetTypeElement, ok := lib.Parent(e)
	if !ok || presetTypeElement.Kind != core.KindPreset {
		return "", core.NewBrokenReference("PresetValue %s has no owning Preset", e.ID)
	}
	return "lib" + lib.Tag + "_ge_" + PresetTypeName(lib, presetTypeElement) + "_" + ident, nil
}

// GetVariableType resolves the static type of a ParamDef or Variable,
// following its VariableType/ParameterType block: a direct Type value, or
// (for "preset") the backing type of the referenced Preset/TypeElement,
// remapped through core.TypeMap.
func (c *Context) GetVariableType(e *core.Element) (string, error) {
	var variableType string
	var typeElement *core.Element
	inBlock := false
	for _, line := range e.Lines {
		switch {
		case line == "<VariableType>" || line == "<ParameterType>":
			inBlock = true
		case line == "</VariableType>" || line == "</ParameterType>":
			inBlock = false
		case inBlock && hasPrefixTag(line, "Type"):
			if v, ok := attrValue(line, "Value"); ok {
				variableType = v
			}
		case inBlock && hasPrefixTag(line, "TypeElement"):
			_, te, err := c.GetReferencedElement(line)
			if err != nil {
				return "", err
			}
			typeElement = te
		}
	}
	if variableType == "preset" {
		if typeElement == nil {
			return "", core.NewBrokenReference("element %s declares preset type with no TypeElement", e.ID)
		}
		presetType, err := PresetBackingType(typeElement)
		if err != nil {
			return "", err
		}
		return core.ResolveType(presetType), nil
	}
	return core.ResolveType(variableType), nil
}

func hasPrefixTag(line, tag string) bool {
	return strings.HasPrefix(line, "<"+tag)
}

func attrValue(line, attr string) (string, bool) {
	idx := strings.Index(line, attr+`="`)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(attr)+2:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
