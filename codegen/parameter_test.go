package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/codegen"
	"github.com/galaxyscript/trigforge/core"
)

func mkElement(lib string, kind core.ElementKind, id string, lines ...string) *core.Element {
	return &core.Element{Kind: kind, Library: lib, ID: id, Lines: lines}
}

func newRepoWithLibrary(tag string) (*core.Repository, *core.Library) {
	repo := core.NewRepository()
	lib := core.NewLibrary(tag, tag)
	repo.AddLibrary(lib)
	return repo, lib
}

// A Param with ValueType="color" and 3 values emits Color(...), each
// channel divided by 2.55 and formatted to two decimals.
func TestCodegenParameterColorThreeComponents(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000001",
		`<ValueType Type="color"/>`,
		`<Value>255,0,128</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, "Color(100.00, 0.00, 50.20)", got)
}

// 4 values emit ColorWithAlpha(...) with the alpha (first in the XML)
// moved to the last position.
func TestCodegenParameterColorFourComponentsMovesAlphaLast(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000002",
		`<ValueType Type="color"/>`,
		`<Value>64,255,0,128</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, "ColorWithAlpha(100.00, 0.00, 50.20, 25.10)", got)
}

func TestCodegenParameterStringLiteral(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000003",
		`<ValueType Type="string"/>`,
		`<Value>AP_ZergCreepStomach</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, `"AP_ZergCreepStomach"`, got)
}

func TestCodegenParameterEmptyStringLiteral(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000004",
		`<ValueType Type="string"/>`,
		`<Value></Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, `""`, got)
}

// A "fixed" literal always keeps its fractional point, so a whole number
// comes out as "1.0".
func TestCodegenParameterFixedKeepsFractionalPoint(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	for value, want := range map[string]string{
		"1":    "1.0",
		"1.5":  "1.5",
		"0.25": "0.25",
	} {
		p := mkElement("TEST", core.KindParam, "00000009",
			`<ValueType Type="fixed"/>`,
			`<Value>`+value+`</Value>`,
		)
		got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestCodegenParameterValueIdShortCircuits(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000005",
		`<ValueId Id="42"/>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestCodegenParameterAbilcmd(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000006",
		`<ValueType Type="abilcmd"/>`,
		`<Value>AttackOnce</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, `AbilityCommand("AttackOnce", 0)`, got)
}

// A "layoutframerel" value returns the last slash-separated token of
// Value, quoted.
func TestCodegenParameterLayoutFrameRel(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000007",
		`<ValueType Type="layoutframerel"/>`,
		`<Value>Root/Container/Button</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, `"Button"`, got)
}

func TestCodegenParameterFallbackSentinel(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "000000AA")

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, "@param000000AA", got)
}

// A unitfilter value with all filters below bit 32 emits 0 as the upper
// mask.
func TestFormatFilterPartsAllBelowBit32(t *testing.T) {
	lower, upper, err := codegen.FormatFilterParts([]string{"Self", "Player"})
	require.NoError(t, err)
	require.Equal(t, "(1 << c_targetFilterSelf) | (1 << c_targetFilterPlayer)", lower)
	require.Equal(t, "0", upper)
}

// ... and with all above, emits 0 as the lower mask.
func TestFormatFilterPartsAllAboveBit32(t *testing.T) {
	lower, upper, err := codegen.FormatFilterParts([]string{"NeutralHostile"})
	require.NoError(t, err)
	require.Equal(t, "0", lower)
	require.Equal(t, "(1 << (c_targetFilterNeutralHostile - 32))", upper)
}

func TestFormatFilterPartsPlaceholderCategoryContributesNoBit(t *testing.T) {
	lower, upper, err := codegen.FormatFilterParts([]string{"-"})
	require.NoError(t, err)
	require.Equal(t, "0", lower)
	require.Equal(t, "0", upper)
}

func TestCodegenParameterUnitFilterSplitsAtBit32(t *testing.T) {
	repo, lib := newRepoWithLibrary("TEST")
	ctx := codegen.NewContext(repo)

	p := mkElement("TEST", core.KindParam, "00000008",
		`<ValueType Type="unitfilter"/>`,
		`<Value>Self,Player;NeutralHostile</Value>`,
	)

	got, err := ctx.CodegenParameter(lib, p, codegen.NewAutoVarBuilder("void"))
	require.NoError(t, err)
	require.Equal(t, "UnitFilter((1 << c_targetFilterSelf) | (1 << c_targetFilterPlayer), 0, 0, (1 << (c_targetFilterNeutralHostile - 32)))", got)
}
