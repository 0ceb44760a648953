package parser

import (
	"os"
	"sort"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

// ParseTriggerStrings reads a TriggerStrings localization file
// ("Key=Value" lines, UTF-8 with optional BOM) into lib.TriggerStrings.
// A missing file yields an empty mapping, not an error.
func ParseTriggerStrings(lib *core.Library, triggerStringsFile string) error {
	for k := range lib.TriggerStrings {
		delete(lib.TriggerStrings, k)
	}
	data, err := os.ReadFile(triggerStringsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	lines := strings.Split(string(data), "\n")
	for i, raw := range lines {
		if i == 0 {
			raw = stripBOM(raw)
		}
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		lib.TriggerStrings[key] = val
	}
	return nil
}

// WriteTriggerStrings serializes lib.TriggerStrings sorted lexicographically
// by key, one "Key=Value" per line.
func WriteTriggerStrings(lib *core.Library) []string {
	keys := make([]string, 0, len(lib.TriggerStrings))
	for k := range lib.TriggerStrings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+lib.TriggerStrings[k])
	}
	return out
}

// IDToString consults trigger_strings for a display/value name of
// (elementType, id), honoring the reserved "root" id.
func IDToString(lib *core.Library, elementType core.ElementKind, id string, defaultVal string) string {
	if id == core.RootElementID {
		return "Root"
	}
	key := string(elementType) + "/Name/lib_" + lib.Tag + "_" + id
	if v, ok := lib.TriggerStrings[key]; ok {
		return v
	}
	return defaultVal
}
