package serializer

import (
	"regexp"
	"strings"
)

var selfContainedTagRe = regexp.MustCompile(`^<(\w+)(?:\s[^>]*)?>.*</(\w+)>$`)

// ComputeIndent implements the indentation state machine shared between
// the serializer and the code generator's pretty-printer:
// given the current depth and a line, it returns (line-indent,
// next-depth).
func ComputeIndent(depth int, line string) (indent int, next int) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return 0, depth

	case strings.HasPrefix(trimmed, "</"):
		return depth - 1, depth - 1

	case strings.HasPrefix(trimmed, "<"):
		if strings.HasSuffix(trimmed, "/>") {
			return depth, depth
		}
		if m := selfContainedTagRe.FindStringSubmatch(trimmed); m != nil && m[1] == m[2] {
			return depth, depth
		}
		return depth, depth + 1

	case strings.HasSuffix(trimmed, "(") || strings.HasSuffix(trimmed, "{"):
		return depth, depth + 1

	case strings.HasPrefix(trimmed, ")") || strings.HasPrefix(trimmed, "}"):
		return depth - 1, depth - 1

	default:
		return depth, depth
	}
}

// IndentLines applies ComputeIndent over a full block of lines starting
// at startDepth, returning each line prefixed with indent*unit, using
// unit as the per-level indentation string (e.g. two spaces).
func IndentLines(lines []string, startDepth int, unit string) []string {
	out := make([]string, 0, len(lines))
	depth := startDepth
	for _, line := range lines {
		indent, next := ComputeIndent(depth, line)
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
		} else {
			out = append(out, strings.Repeat(unit, indent)+strings.TrimSpace(line))
		}
		depth = next
	}
	return out
}
