package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/codegen"
	"github.com/galaxyscript/trigforge/core"
)

// A setter-style FunctionCall binding a passed-through
// parameter, a string literal, and a plain numeric literal to a
// cross-library FunctionDef that carries no <FlagNative/>.
func TestCodegenFunctionCallSetter(t *testing.T) {
	repo := core.NewRepository()
	ntve := core.NewLibrary(core.NativeLibraryTag, core.NativeLibraryTag)
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(ntve)
	repo.AddLibrary(lib)

	functionDef := mkElement(core.NativeLibraryTag, core.KindFunctionDef, "00000101",
		`<Identifier>SetUpgradeLevelForPlayer</Identifier>`,
	)
	ntve.Put(functionDef)
	playerDef := mkElement(core.NativeLibraryTag, core.KindParamDef, "00000102", `<Identifier>player</Identifier>`)
	upgradeDef := mkElement(core.NativeLibraryTag, core.KindParamDef, "00000103", `<Identifier>upgradeName</Identifier>`)
	levelDef := mkElement(core.NativeLibraryTag, core.KindParamDef, "00000104", `<Identifier>level</Identifier>`)
	ntve.SetChildren(functionDef, []*core.Element{playerDef, upgradeDef, levelDef})

	outerPlayerDef := mkElement("TEST", core.KindParamDef, "00000201", `<Identifier>player</Identifier>`)
	lib.Put(outerPlayerDef)

	param1 := mkElement("TEST", core.KindParam, "00000302",
		`<ParameterDef Type="ParamDef" Library="Ntve" Id="00000102"/>`,
		`<Parameter Type="ParamDef" Library="TEST" Id="00000201"/>`,
	)
	param2 := mkElement("TEST", core.KindParam, "00000303",
		`<ParameterDef Type="ParamDef" Library="Ntve" Id="00000103"/>`,
		`<ValueType Type="string"/>`,
		`<Value>AP_ZergCreepStomach</Value>`,
	)
	param3 := mkElement("TEST", core.KindParam, "00000304",
		`<ParameterDef Type="ParamDef" Library="Ntve" Id="00000104"/>`,
		`<Value>1</Value>`,
	)

	call := mkElement("TEST", core.KindFunctionCall, "00000301",
		`<FunctionDef Type="FunctionDef" Library="Ntve" Id="00000101"/>`,
	)
	lib.SetChildren(call, []*core.Element{param1, param2, param3})

	ctx := codegen.NewContext(repo)
	autoVars := codegen.NewAutoVarBuilder("void")
	lines, err := ctx.CodegenFunctionCall(lib, call, autoVars, ";", 0)
	require.NoError(t, err)
	require.Equal(t, []string{`libNtve_gf_SetUpgradeLevelForPlayer(lp_player, "AP_ZergCreepStomach", 1);`}, lines)
}

// A FunctionCall whose FunctionDef carries <FlagNative/> never gets the
// "lib<lib>_gf_" prefix, even though the call itself lives in a project
// library.
func TestCodegenFunctionCallNativeFlaggedFunction(t *testing.T) {
	repo := core.NewRepository()
	ntve := core.NewLibrary(core.NativeLibraryTag, core.NativeLibraryTag)
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(ntve)
	repo.AddLibrary(lib)

	functionDef := mkElement(core.NativeLibraryTag, core.KindFunctionDef, "00000201",
		`<FlagNative/>`,
		`<Identifier>UnitKill</Identifier>`,
	)
	ntve.Put(functionDef)
	unitDef := mkElement(core.NativeLibraryTag, core.KindParamDef, "00000202", `<Identifier>unit</Identifier>`)
	ntve.SetChildren(functionDef, []*core.Element{unitDef})

	param := mkElement("TEST", core.KindParam, "00000302",
		`<ParameterDef Type="ParamDef" Library="Ntve" Id="00000202"/>`,
		`<Value>0</Value>`,
	)
	call := mkElement("TEST", core.KindFunctionCall, "00000301",
		`<FunctionDef Type="FunctionDef" Library="Ntve" Id="00000201"/>`,
	)
	lib.SetChildren(call, []*core.Element{param})

	ctx := codegen.NewContext(repo)
	autoVars := codegen.NewAutoVarBuilder("void")
	lines, err := ctx.CodegenFunctionCall(lib, call, autoVars, ";", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"UnitKill(0);"}, lines)
}

// A FunctionCall whose Disabled flag is set generates nothing.
func TestCodegenFunctionCallDisabledProducesNoLines(t *testing.T) {
	repo := core.NewRepository()
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(lib)

	call := mkElement("TEST", core.KindFunctionCall, "00000401", `<Disabled/>`)

	ctx := codegen.NewContext(repo)
	autoVars := codegen.NewAutoVarBuilder("void")
	lines, err := ctx.CodegenFunctionCall(lib, call, autoVars, ";", 0)
	require.NoError(t, err)
	require.Nil(t, lines)
}

// A FunctionCall with no FunctionDef reference at all degrades to the
// sentinel placeholder rather than failing.
func TestCodegenFunctionCallMissingFunctionDefLine(t *testing.T) {
	repo := core.NewRepository()
	lib := core.NewLibrary("TEST", "TEST")
	repo.AddLibrary(lib)

	call := mkElement("TEST", core.KindFunctionCall, "00000402")

	ctx := codegen.NewContext(repo)
	autoVars := codegen.NewAutoVarBuilder("void")
	lines, err := ctx.CodegenFunctionCall(lib, call, autoVars, ";", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"@nofunc@"}, lines)
}
