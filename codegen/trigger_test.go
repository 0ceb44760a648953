package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/codegen"
	"github.com/galaxyscript/trigforge/core"
)

// CodegenTrigger emits a _Func predicate plus an _Init that registers
// every Event and honors <InitOff/>.
func TestCodegenTriggerFuncAndInit(t *testing.T) {
	repo := core.NewRepository()
	ntve := core.NewLibrary(core.NativeLibraryTag, core.NativeLibraryTag)
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(ntve)
	repo.AddLibrary(lib)

	eventDef := mkElement(core.NativeLibraryTag, core.KindFunctionDef, "00000711",
		`<FlagNative/>`,
		`<Identifier>MapInitEvent</Identifier>`,
	)
	ntve.Put(eventDef)
	actionDef := mkElement(core.NativeLibraryTag, core.KindFunctionDef, "00000712",
		`<FlagNative/>`,
		`<Identifier>DoSomething</Identifier>`,
	)
	ntve.Put(actionDef)

	eventCall := mkElement("TEST", core.KindFunctionCall, "00000702",
		`<FunctionDef Type="FunctionDef" Library="Ntve" Id="00000711"/>`,
	)
	lib.Put(eventCall)
	actionCall := mkElement("TEST", core.KindFunctionCall, "00000703",
		`<FunctionDef Type="FunctionDef" Library="Ntve" Id="00000712"/>`,
	)
	lib.Put(actionCall)

	trig := mkElement("TEST", core.KindTrigger, "00000701",
		`<Identifier>OnMapInit</Identifier>`,
		`<InitOff/>`,
		`<Events>`,
		`<Event Type="FunctionCall" Library="TEST" Id="00000702"/>`,
		`</Events>`,
		`<Actions>`,
		`<Action Type="FunctionCall" Library="TEST" Id="00000703"/>`,
		`</Actions>`,
	)
	lib.SetChildren(trig, nil)

	ctx := codegen.NewContext(repo)
	got, err := ctx.CodegenTrigger(lib, trig)
	require.NoError(t, err)

	require.Contains(t, got, "bool libTEST_gt_OnMapInit_Func (bool testConds, bool runActions) {")
	require.Contains(t, got, "    DoSomething();")
	require.Contains(t, got, "void libTEST_gt_OnMapInit_Init () {")
	require.Contains(t, got, `t = TriggerCreate("libTEST_gt_OnMapInit_Func");`)
	require.Contains(t, got, "    MapInitEvent();")
	require.Contains(t, got, "    TriggerSetState(t, c_triggerStateOff);")
	require.NotContains(t, got, "Automatic Variable Declarations")
}

func TestCodegenTriggerDisabledProducesEmptyString(t *testing.T) {
	repo := core.NewRepository()
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(lib)

	trig := mkElement("TEST", core.KindTrigger, "00000721", `<Disabled/>`)

	ctx := codegen.NewContext(repo)
	got, err := ctx.CodegenTrigger(lib, trig)
	require.NoError(t, err)
	require.Equal(t, "", got)
}
