package parser

import (
	"os"
	"regexp"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

var dependencyRe = regexp.MustCompile(`^<Value>file:Mods[\\/](\w+)\.SC2Mod</Value>`)

// ParseDependencies reads the <Dependencies> block of a DocumentInfo
// file, appending each referenced mod name (in order) to lib's
// dependency list. A missing
// file is a recoverable MissingOptional, not a fatal error.
func ParseDependencies(lib *core.Library, documentInfoFile string) error {
	data, err := os.ReadFile(documentInfoFile)
	if err != nil {
		if os.IsNotExist(err) {
			return core.NewMissingOptional("DocumentInfo file %q not present", documentInfoFile)
		}
		return err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 {
		lines[0] = stripBOM(lines[0])
	}

	inDependencies := false
	// Window over lines[2:-1]: skip the first two
	// lines (XML prolog + root element open) and the final line (root
	// element close).
	start, end := 2, len(lines)-1
	if start > end {
		start, end = 0, 0
	}
	for _, raw := range lines[start:end] {
		line := strings.TrimSpace(raw)
		switch {
		case line == "<Dependencies>":
			inDependencies = true
		case line == "</Dependencies>":
			inDependencies = false
		case inDependencies:
			if m := dependencyRe.FindStringSubmatch(line); m != nil {
				lib.Dependencies = append(lib.Dependencies, m[1])
			}
		}
	}
	return nil
}
