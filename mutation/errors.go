// Package mutation implements the Mutation API: the only
// sanctioned way to change a core.Library's element graph. Every
// operation allocates a fresh element id, updates the children/parents
// indices, and splices a reference line into the parent's own raw lines
// so the textual layout matches the logical ordering.
package mutation

import "github.com/galaxyscript/trigforge/core"

// errBadTarget wraps core.NewBadMutationTarget for a parent that cannot
// accept the requested child kind.
func errBadTarget(format string, args ...any) error {
	return core.NewBadMutationTarget(format, args...)
}

// errBadArgument wraps core.NewBadArgument for a malformed or
// out-of-range operation argument.
func errBadArgument(format string, args ...any) error {
	return core.NewBadArgument(format, args...)
}
