package mutation

import (
	"regexp"
	"strings"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
)

var typeLibIDPattern = regexp.MustCompile(`Type="(\w+)" Library="(\w+)" Id="([0-9A-F]{8})"`)

// Result reports what InsertElement (and its named wrappers) did: the new
// element and, when the parent's lines actually changed, a unified diff
// of the parent's lines before/after.
type Result struct {
	Inserted *core.Element
	ParentID string
	Diff     string
}

// childRefLine renders the self-closed reference line spliced into a
// parent's lines: `<Item .../>` under Root/Category, the caller-chosen
// tag name elsewhere ("FunctionDef", "ParameterDef", "SubFunctionType",
// and so on — the tag depends on the child's role in the parent).
func childRefLine(parent *core.Element, refTag, lib, kind, id string) string {
	tag := refTag
	if parent.Kind == core.KindRoot || parent.Kind == core.KindCategory {
		tag = "Item"
	}
	return "<" + tag + ` Type="` + kind + `" Library="` + lib + `" Id="` + id + `"/>`
}

// InsertElement is the base mutation operation: it
// allocates a fresh id for kind, builds the new element's raw lines from
// body (wrapped in the `<Element Type=… Id=…>`/`</Element>` envelope,
// which callers never construct directly; this envelope is used for every
// kind, Root included, and no `<Root>` form is produced), inserts it into lib's objects/children/parents at position
// index among parent's existing children (-1 = end), and splices a
// reference line into parent's own lines after the first index existing
// child-reference lines so the textual layout matches the logical order.
func InsertElement(lib *core.Library, parent *core.Element, index int, kind core.ElementKind, refTag string, body []string) (*core.Element, Result, error) {
	if parent == nil {
		return nil, Result{}, errBadTarget("insertion target parent is nil")
	}
	if lib.Tag == core.NativeLibraryTag {
		return nil, Result{}, errBadTarget("the Native library is read-only")
	}
	if parent.Kind == core.KindComment || parent.Kind == core.KindCustomScript {
		return nil, Result{}, errBadTarget("%s elements cannot own children", parent.Kind)
	}

	id, err := core.NewElementID(lib, kind)
	if err != nil {
		return nil, Result{}, err
	}

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, `<Element Type="`+string(kind)+`" Id="`+id+`">`)
	lines = append(lines, body...)
	lines = append(lines, `</Element>`)

	newElement := &core.Element{Kind: kind, Library: lib.Tag, ID: id, Lines: lines}

	before := append([]string(nil), parent.Lines...)

	refLine := childRefLine(parent, refTag, lib.Tag, string(kind), id)
	splicedLines, err := spliceChildRef(parent.Lines, refLine, index)
	if err != nil {
		return nil, Result{}, err
	}
	parent.Lines = splicedLines

	lib.Put(newElement)
	parser.RebuildIndices(lib)
	if err := parser.RebuildKeywordParameters(lib); err != nil {
		return nil, Result{}, err
	}

	return newElement, Result{
		Inserted: newElement,
		ParentID: parent.ID,
		Diff:     unifiedDiff(before, parent.Lines),
	}, nil
}

// spliceChildRef inserts refLine into lines after the first count
// existing self-closed `Type="…" Library="…" Id="…"` reference lines
// found strictly between the opening and closing tag (count < 0 = after
// all of them, i.e. append at the end).
func spliceChildRef(lines []string, refLine string, count int) ([]string, error) {
	if len(lines) < 2 {
		return nil, errBadArgument("parent has no body to splice into")
	}
	body := lines[1 : len(lines)-1]

	insertAt := len(body)
	if count >= 0 {
		seen := 0
		insertAt = len(body)
		for i, l := range body {
			if !typeLibIDPattern.MatchString(l) {
				continue
			}
			if seen == count {
				insertAt = i
				break
			}
			seen++
		}
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[0])
	out = append(out, body[:insertAt]...)
	out = append(out, refLine)
	out = append(out, body[insertAt:]...)
	out = append(out, lines[len(lines)-1])
	return out, nil
}

// AddVariable inserts a new Variable under parent (Root, Category, or a
// function/trigger body), with the given static type and display
// identifier.
func AddVariable(lib *core.Library, parent *core.Element, index int, varType, identifier string) (*core.Element, Result, error) {
	if strings.TrimSpace(varType) == "" {
		return nil, Result{}, errBadArgument("variable type must not be empty")
	}
	body := []string{
		`<VariableType>`,
		`<Type Value="` + varType + `"/>`,
		`</VariableType>`,
	}
	if identifier != "" {
		body = append(body, `<Identifier>`+identifier+`</Identifier>`)
	}
	return InsertElement(lib, parent, index, core.KindVariable, "Tag", body)
}

// AddFunctionCall inserts a new FunctionCall under parent, referencing
// functionDefLib/functionDefID as its FunctionDef.
func AddFunctionCall(lib *core.Library, parent *core.Element, index int, functionDefLib, functionDefID string) (*core.Element, Result, error) {
	if functionDefID == "" {
		return nil, Result{}, errBadArgument("function call must reference a FunctionDef")
	}
	body := []string{
		`<FunctionDef Type="FunctionDef" Library="` + functionDefLib + `" Id="` + functionDefID + `"/>`,
	}
	return InsertElement(lib, parent, index, core.KindFunctionCall, "Tag", body)
}

// AddParam inserts a new Param under a FunctionCall, bound to the given
// ParamDef and carrying value, a raw `<Value …>` line produced by the
// caller.
func AddParam(lib *core.Library, parent *core.Element, index int, paramDefLib, paramDefID string, value string) (*core.Element, Result, error) {
	if parent.Kind != core.KindFunctionCall {
		return nil, Result{}, errBadTarget("Param must be added under a FunctionCall, got %s", parent.Kind)
	}
	body := []string{
		`<ParameterDef Type="ParamDef" Library="` + paramDefLib + `" Id="` + paramDefID + `"/>`,
	}
	if value != "" {
		body = append(body, value)
	}
	return InsertElement(lib, parent, index, core.KindParam, "Tag", body)
}
