package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/codegen"
	"github.com/galaxyscript/trigforge/core"
)

func TestParameterNameUsesIdentifierWithLpPrefix(t *testing.T) {
	lib := core.NewLibrary("Ntve", "Ntve")
	e := mkElement("Ntve", core.KindParamDef, "00000010", `<Identifier>player</Identifier>`)
	require.Equal(t, "lp_player", codegen.ParameterName(lib, e))
}

func TestFunctionNameNativeFlagStripsLibraryPrefix(t *testing.T) {
	lib := core.NewLibrary("Ntve", "Ntve")
	e := mkElement("Ntve", core.KindFunctionDef, "00000011",
		`<FlagNative/>`,
		`<Identifier>UnitOrder</Identifier>`,
	)
	require.Equal(t, "UnitOrder", codegen.FunctionName(lib, e))
}

// A FunctionDef living in the Ntve
// library but NOT carrying <FlagNative/> still names with the
// "lib<lib>_gf_" prefix, since the flag (not the library tag) decides.
func TestFunctionNameWithoutFlagNativeUsesPrefixEvenInNativeLibrary(t *testing.T) {
	lib := core.NewLibrary("Ntve", "Ntve")
	e := mkElement("Ntve", core.KindFunctionDef, "00000012",
		`<Identifier>SetUpgradeLevelForPlayer</Identifier>`,
	)
	require.Equal(t, "libNtve_gf_SetUpgradeLevelForPlayer", codegen.FunctionName(lib, e))
}

func TestVariableNameGlobalForRootChild(t *testing.T) {
	lib := core.NewLibrary("TEST", "TEST")
	root := mkElement("TEST", core.KindRoot, core.RootElementID)
	v := mkElement("TEST", core.KindVariable, "00000013", `<Identifier>MyGlobal</Identifier>`)
	lib.SetChildren(root, []*core.Element{v})

	require.Equal(t, "libTEST_gv_MyGlobal", codegen.VariableName(lib, v))
}

func TestVariableNameLocalForFunctionBodyChild(t *testing.T) {
	lib := core.NewLibrary("TEST", "TEST")
	fn := mkElement("TEST", core.KindFunctionDef, "00000014")
	v := mkElement("TEST", core.KindVariable, "00000015", `<Identifier>counter</Identifier>`)
	lib.SetChildren(fn, []*core.Element{v})

	require.Equal(t, "lv_counter", codegen.VariableName(lib, v))
}

func TestTriggerNameUsesIdentifier(t *testing.T) {
	lib := core.NewLibrary("TEST", "TEST")
	e := mkElement("TEST", core.KindTrigger, "00000016", `<Identifier>OnUnitDeath</Identifier>`)
	require.Equal(t, "libTEST_gt_OnUnitDeath", codegen.TriggerName(lib, e))
}

func TestEscapeIdentifierStripsReservedCharacters(t *testing.T) {
	require.Equal(t, "SetUnitLifePercent", codegen.EscapeIdentifier("Set Unit (Life)-Percent+"))
}

func TestToggleCaseOfFirstLetter(t *testing.T) {
	require.Equal(t, "myVar", codegen.ToggleCaseOfFirstLetter("MyVar"))
	require.Equal(t, "MyVar", codegen.ToggleCaseOfFirstLetter("myVar"))
	require.Equal(t, "", codegen.ToggleCaseOfFirstLetter(""))
}

func TestPresetValueUsesInlineValueWhenPresent(t *testing.T) {
	repo := core.NewRepository()
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(lib)
	ctx := codegen.NewContext(repo)

	pv := mkElement("TEST", core.KindPresetValue, "00000017", `<Value>42</Value>`)
	got, err := ctx.PresetValue(lib, pv)
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestPresetValueFallsBackToOwningPresetName(t *testing.T) {
	repo := core.NewRepository()
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(lib)
	ctx := codegen.NewContext(repo)

	preset := mkElement("TEST", core.KindPreset, "00000018")
	lib.TriggerStrings["Preset/Name/lib_TEST_00000018"] = "Difficulty"
	pv := mkElement("TEST", core.KindPresetValue, "00000019", `<Identifier>Hard</Identifier>`)
	lib.SetChildren(preset, []*core.Element{pv})

	got, err := ctx.PresetValue(lib, pv)
	require.NoError(t, err)
	require.Equal(t, "libTEST_ge_Difficulty_Hard", got)
}
