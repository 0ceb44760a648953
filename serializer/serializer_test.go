package serializer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
	"github.com/galaxyscript/trigforge/serializer"
)

func TestComputeIndentClosingTagDedents(t *testing.T) {
	indent, next := serializer.ComputeIndent(2, "</Element>")
	require.Equal(t, 1, indent)
	require.Equal(t, 1, next)
}

func TestComputeIndentSelfClosingStaysFlat(t *testing.T) {
	indent, next := serializer.ComputeIndent(2, `<Item Type="Category" Library="L" Id="00000001"/>`)
	require.Equal(t, 2, indent)
	require.Equal(t, 2, next)
}

func TestComputeIndentOpenerIndents(t *testing.T) {
	indent, next := serializer.ComputeIndent(1, "<ScriptCode>")
	require.Equal(t, 1, indent)
	require.Equal(t, 2, next)
}

func TestComputeIndentSelfContainedOneLiner(t *testing.T) {
	indent, next := serializer.ComputeIndent(1, "<Identifier>foo</Identifier>")
	require.Equal(t, 1, indent)
	require.Equal(t, 1, next)
}

func TestComputeIndentTargetLanguageBraces(t *testing.T) {
	indent, next := serializer.ComputeIndent(1, "if (x) {")
	require.Equal(t, 1, indent)
	require.Equal(t, 2, next)

	indent, next = serializer.ComputeIndent(2, "}")
	require.Equal(t, 1, indent)
	require.Equal(t, 1, next)
}

func TestSerializeTriggersRoundTrips(t *testing.T) {
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
	path := filepath.Join(dir, "Triggers")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lib, err := parser.ParseTriggers(path)
	require.NoError(t, err)

	out := serializer.SerializeTriggers(lib)
	outPath := filepath.Join(dir, "Triggers.out")
	require.NoError(t, os.WriteFile(outPath, []byte(joinLines(out)), 0o644))

	reloaded, err := parser.ParseTriggers(outPath)
	require.NoError(t, err)

	require.Equal(t, lib.Tag, reloaded.Tag)
	require.ElementsMatch(t, refIDs(lib), refIDs(reloaded))
}

func refIDs(lib *core.Library) []string {
	var out []string
	for _, e := range lib.Objects() {
		out = append(out, string(e.Kind)+":"+e.ID)
	}
	return out
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
