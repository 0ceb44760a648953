package codegen

import (
	"strings"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
)

// archipelagoPatchesDependency is a dependency name whose variable-init
// call the generator skips: it never generates any variables and
// parsing its whole library on every run isn't worth it.
const archipelagoPatchesDependency = "ArchipelagoPatches"

// CodegenLibrary generates a library's full translation unit: include directives, a library-init chain over its
// dependencies, a one-shot variable-init guarded by a completion flag,
// verbatim custom scripts with an init wrapper, every FunctionDef, every
// Trigger, an InitTriggers calling each Trigger's _Init, and a one-shot
// InitLib orchestrating all of the above.
func (c *Context) CodegenLibrary(lib *core.Library) (string, error) {
	var out []string

	// Deterministic element order for every section below.
	sorted := core.SortElements(lib)

	out = append(out, `include "TriggerLibs/NativeLib"`)
	for _, dep := range lib.Dependencies {
		depLib, ok := c.Repo.Library(dependencyTag(c.Repo, dep))
		if !ok {
			continue
		}
		out = append(out, `include "Lib`+depLib.Tag+`"`)
	}
	out = append(out, "")
	out = append(out, `include "Lib`+lib.Tag+`_h"`)
	out = append(out, "")

	libraryName := libraryDisplayName(lib)
	out = append(out, divider())
	out = append(out, "// Library: "+libraryName)
	out = append(out, divider())

	out = append(out, "// External Library Initialization")
	out = append(out, "void lib"+lib.Tag+"_InitLibraries () {")
	out = append(out, "    libNtve_InitVariables();")
	for _, dep := range lib.Dependencies {
		if dep == archipelagoPatchesDependency {
			continue
		}
		depLib, ok := c.Repo.Library(dependencyTag(c.Repo, dep))
		if !ok {
			continue
		}
		out = append(out, "    lib"+depLib.Tag+"_InitVariables();")
	}
	out = append(out, "}")
	out = append(out, "")

	out = append(out, "// Variable Initialization")
	out = append(out, "bool lib"+lib.Tag+"_InitVariables_completed = false;")
	out = append(out, "")
	out = append(out, "void lib"+lib.Tag+"_InitVariables () {")
	out = append(out, "    if (lib"+lib.Tag+"_InitVariables_completed) {")
	out = append(out, "        return;")
	out = append(out, "    }")
	out = append(out, "")
	out = append(out, "    lib"+lib.Tag+"_InitVariables_completed = true;")
	out = append(out, "")
	for _, obj := range sorted.Order {
		if obj.Kind != core.KindVariable {
			continue
		}
		parent, ok := lib.Parent(obj)
		if !ok || (parent.Kind != core.KindRoot && parent.Kind != core.KindCategory) {
			continue
		}
		init, err := c.CodegenVariableInit(lib, obj)
		if err != nil {
			return "", err
		}
		for _, l := range init {
			out = append(out, "    "+l)
		}
	}
	out = append(out, "}")
	out = append(out, "")

	var customScripts []*core.Element
	for _, obj := range sorted.Order {
		if obj.Kind != core.KindCustomScript {
			continue
		}
		parent, ok := lib.Parent(obj)
		if !ok || (parent.Kind != core.KindRoot && parent.Kind != core.KindCategory) {
			continue
		}
		customScripts = append(customScripts, obj)
	}
	if len(customScripts) > 0 {
		out = append(out, "// Custom Script")
	}
	for _, cs := range customScripts {
		out = append(out, divider())
		out = append(out, "// Custom Script: "+parser.IDToString(lib, cs.Kind, cs.ID, cs.ID))
		out = append(out, divider())
		lines, err := CodegenCustomScript(cs)
		if err != nil {
			return "", err
		}
		out = append(out, lines...)
		out = append(out, "")
	}
	if len(customScripts) > 0 {
		out = append(out, "void lib"+lib.Tag+"_InitCustomScript () {")
		for _, cs := range customScripts {
			if fn, ok := cs.InlineValue("InitFunc"); ok && fn != "" {
				out = append(out, "    "+fn+"();")
			}
		}
		out = append(out, "}")
		out = append(out, "")
	}

	hasPresets := false
	for _, obj := range sorted.Order {
		if obj.Kind == core.KindPreset {
			hasPresets = true
			break
		}
	}
	if hasPresets {
		out = append(out, "// Presets")
	}

	out = append(out, "// Functions")
	for _, obj := range sorted.Order {
		if obj.Kind != core.KindFunctionDef {
			continue
		}
		fn, err := c.CodegenFunctionDef(lib, obj)
		if err != nil {
			return "", err
		}
		if fn == "" {
			continue
		}
		out = append(out, fn)
		out = append(out, "")
	}

	out = append(out, "// Triggers")
	var triggers []*core.Element
	for _, obj := range sorted.Order {
		if obj.Kind != core.KindTrigger {
			continue
		}
		t, err := c.CodegenTrigger(lib, obj)
		if err != nil {
			return "", err
		}
		if t == "" {
			continue
		}
		triggers = append(triggers, obj)
		out = append(out, t)
		out = append(out, "")
	}

	out = append(out, "void lib"+lib.Tag+"_InitTriggers () {")
	for _, t := range triggers {
		out = append(out, "    "+TriggerName(lib, t)+"_Init();")
	}
	out = append(out, "}")
	out = append(out, "")

	out = append(out, "bool lib"+lib.Tag+"_InitLib_completed = false;")
	out = append(out, "")
	out = append(out, "void lib"+lib.Tag+"_InitLib () {")
	out = append(out, "    if (lib"+lib.Tag+"_InitLib_completed) {")
	out = append(out, "        return;")
	out = append(out, "    }")
	out = append(out, "")
	out = append(out, "    lib"+lib.Tag+"_InitLib_completed = true;")
	out = append(out, "")
	out = append(out, "    lib"+lib.Tag+"_InitLibraries();")
	out = append(out, "    lib"+lib.Tag+"_InitVariables();")
	if len(customScripts) > 0 {
		out = append(out, "    lib"+lib.Tag+"_InitCustomScript();")
	}
	out = append(out, "    lib"+lib.Tag+"_InitTriggers();")
	out = append(out, "}")

	return strings.Join(out, "\n"), nil
}

func divider() string {
	return "//" + strings.Repeat("-", 98)
}

func libraryDisplayName(lib *core.Library) string {
	if s, ok := lib.TriggerStrings["Library/Name/"+lib.Tag]; ok {
		return s
	}
	return lib.Tag
}

func dependencyTag(repo *core.Repository, name string) string {
	for _, lib := range repo.Libraries() {
		if lib.Name == name {
			return lib.Tag
		}
	}
	return name
}
