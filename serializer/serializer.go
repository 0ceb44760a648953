// Package serializer re-emits a core.Library's elements as a Triggers
// XML file and its trigger strings as a TriggerStrings localization
// file, after sorting into the deterministic traversal order defined by
// core.SortElements.
package serializer

import (
	"strings"

	"github.com/galaxyscript/trigforge/core"
	"github.com/galaxyscript/trigforge/parser"
)

const indentUnit = "\t"

// SerializeTriggers writes the XML header, <TriggerData>, <Library
// Id="…">, each element's raw lines (reindented per ComputeIndent), and
// the closing tags. The Native library's elements are never serialized
//; callers must not pass it here.
func SerializeTriggers(lib *core.Library) []string {
	out := []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<TriggerData>`,
	}
	if lib.Tag == core.NoLibraryTag {
		out = append(out, `</TriggerData>`)
		return out
	}
	out = append(out, `<Library Id="`+lib.Tag+`">`)

	sorted := core.SortElements(lib)
	depth := 1
	for _, e := range sorted.Order {
		for _, line := range e.Lines {
			indent, next := ComputeIndent(depth, line)
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				out = append(out, "")
			} else {
				out = append(out, strings.Repeat(indentUnit, indent)+trimmed)
			}
			depth = next
		}
	}

	out = append(out, `</Library>`, `</TriggerData>`)
	return out
}

// SerializeTriggerStrings writes lib's trigger strings sorted
// lexicographically by key.
func SerializeTriggerStrings(lib *core.Library) []string {
	return parser.WriteTriggerStrings(lib)
}
