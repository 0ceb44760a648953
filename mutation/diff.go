package mutation

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a 3-line-context unified diff between before and
// after, each a full set of element lines, or "" if they're identical.
func unifiedDiff(before, after []string) string {
	if strings.Join(before, "\n") == strings.Join(after, "\n") {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(before, "\n")),
		B:        difflib.SplitLines(strings.Join(after, "\n")),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
