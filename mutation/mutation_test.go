package mutation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/mutation"
	"github.com/galaxyscript/trigforge/parser"
)

func newTestLibrary(t *testing.T) *core.Library {
	t.Helper()
	lib := core.NewLibrary("TEST", "Test")
	root := &core.Element{Kind: core.KindRoot, Library: "TEST", ID: core.RootElementID, Lines: []string{"<Root>", "</Root>"}}
	lib.Put(root)
	parser.RebuildIndices(lib)
	return lib
}

func TestAddVariableUnderRootSplicesItemLine(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	v, result, err := mutation.AddVariable(lib, root, -1, "int", "MyCounter")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, core.KindVariable, v.Kind)
	require.NotEmpty(t, result.Diff)

	got, ok := lib.Get(core.KindVariable, v.ID)
	require.True(t, ok)
	require.Same(t, v, got)

	children := lib.Children(root)
	require.Len(t, children, 1)
	require.Equal(t, v.ID, children[0].ID)

	require.Contains(t, root.Lines[1], `<Item Type="Variable" Library="TEST" Id="`+v.ID+`"/>`)
}

func TestAddVariableTwiceInsertsAtRequestedIndex(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	first, _, err := mutation.AddVariable(lib, root, -1, "int", "First")
	require.NoError(t, err)
	second, _, err := mutation.AddVariable(lib, root, 0, "bool", "Second")
	require.NoError(t, err)

	children := lib.Children(root)
	require.Len(t, children, 2)
	require.Equal(t, second.ID, children[0].ID)
	require.Equal(t, first.ID, children[1].ID)
}

func TestAddVariableRejectsEmptyType(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	_, _, err := mutation.AddVariable(lib, root, -1, "", "Broken")
	require.Error(t, err)

	var recoverable *core.RecoverableError
	require.ErrorAs(t, err, &recoverable)
	require.Equal(t, core.KindBadArgument, recoverable.Kind)
}

func TestAddFunctionCallRequiresFunctionDef(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	_, _, err := mutation.AddFunctionCall(lib, root, -1, "TEST", "")
	require.Error(t, err)
}

func TestAddFunctionCallThenAddParamUnderIt(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	call, _, err := mutation.AddFunctionCall(lib, root, -1, "Ntve", "00000042")
	require.NoError(t, err)

	param, result, err := mutation.AddParam(lib, call, -1, "Ntve", "00000099", `<Value Type="int"><Value>5</Value></Value>`)
	require.NoError(t, err)
	require.Equal(t, core.KindParam, param.Kind)
	require.NotEmpty(t, result.Diff)

	children := lib.Children(call)
	require.Len(t, children, 1)
	require.Equal(t, param.ID, children[0].ID)
}

func TestAddParamRejectsNonFunctionCallParent(t *testing.T) {
	lib := newTestLibrary(t)
	root := lib.Root()

	_, _, err := mutation.AddParam(lib, root, -1, "Ntve", "00000099", "")
	require.Error(t, err)

	var recoverable *core.RecoverableError
	require.ErrorAs(t, err, &recoverable)
	require.Equal(t, core.KindBadMutationTarget, recoverable.Kind)
}

func TestInsertElementRejectsLeafParent(t *testing.T) {
	lib := newTestLibrary(t)
	comment := &core.Element{Kind: core.KindComment, Library: "TEST", ID: "00000001", Lines: []string{"<Element Type=\"Comment\" Id=\"00000001\">", "</Element>"}}
	lib.Put(comment)

	_, _, err := mutation.InsertElement(lib, comment, -1, core.KindVariable, "Tag", nil)
	require.Error(t, err)
}
