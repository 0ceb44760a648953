// Package codegen turns a core.Library's elements into Galaxy source text
//: per-parameter value expressions, per-call statements,
// per-function bodies, and a whole-library translation unit.
package codegen

import (
	"regexp"

	"github.com/galaxyscript/trigforge/core"
)

var typeLibIDPattern = regexp.MustCompile(`Type="(\w+)" Library="(\w+)" Id="([0-9A-F]{8})"`)
var libraryIDPattern = regexp.MustCompile(`Library="(\w+)" Id="([0-9A-F]{8})"`)

// Context is the cross-library resolution scope a generation pass runs
// under: the full Repository, so a Param in one library can reference a
// Variable or Preset defined in another.
type Context struct {
	Repo *core.Repository
}

// NewContext builds a Context over repo.
func NewContext(repo *core.Repository) *Context {
	return &Context{Repo: repo}
}

// GetReferencedElement resolves a self-closed reference line of the form
// `<Tag Type="Kind" Library="lib" Id="id"/>` against the context's
// Repository, returning the owning library and the element.
func (c *Context) GetReferencedElement(line string) (*core.Library, *core.Element, error) {
	m := typeLibIDPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, nil, core.NewBrokenReference("line does not carry a Type/Library/Id reference: %q", line)
	}
	ref := core.ElementRef{Kind: core.ElementKind(m[1]), Library: m[2], ID: m[3]}
	e, err := c.Repo.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	lib, _ := c.Repo.Library(m[2])
	return lib, e, nil
}
