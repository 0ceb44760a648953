package core

import "fmt"

// ErrorKind classifies a failure by what went wrong and whether the
// caller can recover from it.
type ErrorKind string

const (
	KindMalformedXml     ErrorKind = "MalformedXml"
	KindBrokenReference  ErrorKind = "BrokenReference"
	KindInvalidInvariant ErrorKind = "InvalidInvariant"
	KindUnknownMacro     ErrorKind = "UnknownMacro"
	KindBadMutationTarget ErrorKind = "BadMutationTarget"
	KindBadArgument      ErrorKind = "BadArgument"
	KindMissingOptional  ErrorKind = "MissingOptional"
)

// FatalError aborts the current operation; the Repository it was
// operating on must not be left modified. MalformedXml, BrokenReference,
// InvalidInvariant, and UnknownMacro are all FatalError.
type FatalError struct {
	Kind ErrorKind
	Msg  string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func fatal(kind ErrorKind, format string, args ...any) *FatalError {
	return &FatalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewMalformedXml reports a parser-level structural error: missing
// library header, unclosed element, mismatched tags.
func NewMalformedXml(format string, args ...any) *FatalError {
	return fatal(KindMalformedXml, format, args...)
}

// NewBrokenReference reports a cross-element reference that does not
// resolve to (library, kind, id).
func NewBrokenReference(format string, args ...any) *FatalError {
	return fatal(KindBrokenReference, format, args...)
}

// NewInvalidInvariant reports a store-level structural violation: a
// duplicate parameter identifier in a scripted def, or a contradictory
// priority during parent assignment.
func NewInvalidInvariant(format string, args ...any) *FatalError {
	return fatal(KindInvalidInvariant, format, args...)
}

// NewUnknownMacro reports an unrecognized #NAME macro invocation in
// script code.
func NewUnknownMacro(format string, args ...any) *FatalError {
	return fatal(KindUnknownMacro, format, args...)
}

// RecoverableError is returned as a value rather than aborting the
// caller's larger operation; the Repository is left unchanged.
// BadMutationTarget, BadArgument, and MissingOptional are all
// RecoverableError.
type RecoverableError struct {
	Kind ErrorKind
	Msg  string
}

func (e *RecoverableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func recoverable(kind ErrorKind, format string, args ...any) *RecoverableError {
	return &RecoverableError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewBadMutationTarget reports a mutation API call whose target element
// cannot accept the requested operation (e.g. adding a function def
// under something that is not a Root/Category, or assuming a FunctionDef
// has a single ParamDef child when it does not).
func NewBadMutationTarget(format string, args ...any) *RecoverableError {
	return recoverable(KindBadMutationTarget, format, args...)
}

// NewBadArgument reports an argument parse failure from a mutation CLI
// helper (integer/bool literal parsing, wrong argument count).
func NewBadArgument(format string, args ...any) *RecoverableError {
	return recoverable(KindBadArgument, format, args...)
}

// NewMissingOptional reports an absent optional input (localization or
// dependency file); callers should treat this as an empty result, not a
// failure.
func NewMissingOptional(format string, args ...any) *RecoverableError {
	return recoverable(KindMissingOptional, format, args...)
}
