package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTriggersEmptyFileYieldsNoLibrary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Triggers", "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<TriggerData/>\n")

	lib, err := parser.ParseTriggers(path)
	require.NoError(t, err)
	require.Equal(t, core.NoLibraryTag, lib.Tag)
	root := lib.Root()
	require.NotNil(t, root)
	require.Empty(t, lib.Children(root))
}

func TestParseTriggersBasicLibraryAndElements(t *testing.T) {
	dir := t.TempDir()
	content := `<?xml version="1.0" encoding="utf-8"?>
<TriggerData>
<Library Id="ABFE498B">
<Root>
<Item Type="Category" Library="ABFE498B" Id="00000001"/>
</Root>
<Element Type="Category" Id="00000001">
</Element>
</Library>
</TriggerData>`
	path := writeFile(t, dir, "Triggers", content)

	lib, err := parser.ParseTriggers(path)
	require.NoError(t, err)
	require.Equal(t, "ABFE498B", lib.Tag)

	root := lib.Root()
	require.NotNil(t, root)
	children := lib.Children(root)
	require.Len(t, children, 1)
	require.Equal(t, core.KindCategory, children[0].Kind)
	require.Equal(t, "00000001", children[0].ID)

	parent, ok := lib.Parent(children[0])
	require.True(t, ok)
	require.Equal(t, root, parent)
}

func TestParseTriggersUnclosedElementIsFatal(t *testing.T) {
	dir := t.TempDir()
	content := `<?xml version="1.0" encoding="utf-8"?>
<TriggerData>
<Library Id="ABFE498B">
<Root>
</Root>
<Element Type="Category" Id="00000001">
</Library>
</TriggerData>`
	path := writeFile(t, dir, "Triggers", content)

	_, err := parser.ParseTriggers(path)
	require.Error(t, err)
	var fatalErr *core.FatalError
	require.ErrorAs(t, err, &fatalErr)
}

func TestParseTriggersStripsBOM(t *testing.T) {
	dir := t.TempDir()
	content := "\ufeff<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<TriggerData>\n<Library Id=\"ABFE498B\">\n<Root>\n</Root>\n</Library>\n</TriggerData>"
	path := writeFile(t, dir, "Triggers", content)

	lib, err := parser.ParseTriggers(path)
	require.NoError(t, err)
	require.Equal(t, "ABFE498B", lib.Tag)
}

func TestParseTriggerStringsMissingFileIsEmpty(t *testing.T) {
	lib := core.NewLibrary("TEST", "Test")
	err := parser.ParseTriggerStrings(lib, filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	require.Empty(t, lib.TriggerStrings)
}

func TestParseTriggerStringsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := "FunctionDef/Name/lib_ABFE498B_00000001=DoThing\nParamDef/Name/lib_ABFE498B_00000002=player\n"
	path := writeFile(t, dir, "TriggerStrings.txt", content)

	lib := core.NewLibrary("ABFE498B", "Test")
	require.NoError(t, parser.ParseTriggerStrings(lib, path))
	require.Equal(t, "DoThing", lib.TriggerStrings["FunctionDef/Name/lib_ABFE498B_00000001"])

	out := parser.WriteTriggerStrings(lib)
	require.Equal(t, []string{
		"FunctionDef/Name/lib_ABFE498B_00000001=DoThing",
		"ParamDef/Name/lib_ABFE498B_00000002=player",
	}, out)
}

func TestParseDependencies(t *testing.T) {
	dir := t.TempDir()
	content := `<?xml version="1.0" encoding="utf-8"?>
<DocumentInfo>
<Dependencies>
<Value>file:Mods/ArchipelagoCore.SC2Mod</Value>
<Value>file:Mods/ArchipelagoPlayer.SC2Mod</Value>
</Dependencies>
</DocumentInfo>`
	path := writeFile(t, dir, "DocumentInfo", content)

	lib := core.NewLibrary("ABFE498B", "Test")
	require.NoError(t, parser.ParseDependencies(lib, path))
	require.Equal(t, []string{"ArchipelagoCore", "ArchipelagoPlayer"}, lib.Dependencies)
}

func TestIDToStringRoot(t *testing.T) {
	lib := core.NewLibrary("ABFE498B", "Test")
	require.Equal(t, "Root", parser.IDToString(lib, core.KindRoot, core.RootElementID, "fallback"))
}
