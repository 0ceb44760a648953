// Package core implements the element store: the in-memory graph of a
// trigger library's elements, their parent/child/keyword-parameter
// indices, and the fixed ordered Repository that ties multiple libraries
// together for cross-library reference resolution.
package core

// ElementKind enumerates the tag types that appear in a Triggers file.
type ElementKind string

const (
	KindLibrary     ElementKind = "Library"
	KindRoot        ElementKind = "Root"
	KindCategory    ElementKind = "Category"
	KindTrigger     ElementKind = "Trigger"
	KindFunctionCall ElementKind = "FunctionCall"
	KindFunctionDef ElementKind = "FunctionDef"
	KindParam       ElementKind = "Param"
	KindParamDef    ElementKind = "ParamDef"
	KindSubFuncType ElementKind = "SubFuncType"
	KindLabel       ElementKind = "Label"
	KindComment     ElementKind = "Comment"
	KindVariable    ElementKind = "Variable"
	KindCustomScript ElementKind = "CustomScript"
	KindStructure   ElementKind = "Structure"
	KindPreset      ElementKind = "Preset"
	KindPresetValue ElementKind = "PresetValue"
)

// RootElementID is the reserved element id naming the root node of a
// library's tree.
const RootElementID = "root"

// NativeLibraryTag is the reserved short name of the built-in, read-only
// library.
const NativeLibraryTag = "Ntve"

// NoLibraryTag names the synthetic library produced when parsing an
// empty or near-empty Triggers file.
const NoLibraryTag = "nolibrary"

// ElementRef identifies one element across the whole Repository: a
// library tag plus the (kind, id) pair that is unique within that
// library.
type ElementRef struct {
	Library string
	Kind    ElementKind
	ID      string
}

// Element is one node of the tree. lines is the ordered raw
// XML text of the element, from its opening <Element …> (or <Root>)
// through its closing tag; the generator and mutation API both read
// through it, and the mutation API also writes to it to keep the
// serialized form consistent with the logical graph.
type Element struct {
	Kind    ElementKind
	Library string
	ID      string
	Lines   []string
}

// Ref returns the ElementRef identifying this element.
func (e *Element) Ref() ElementRef {
	return ElementRef{Library: e.Library, Kind: e.Kind, ID: e.ID}
}

// childKey is the (kind, id) pair unique within one library's objects map.
type childKey struct {
	Kind ElementKind
	ID   string
}

// parentPriority resolves multi-parent conflicts: when a child is named
// by more than one parent, the parent with the highest priority wins.
func parentPriority(k ElementKind) int {
	switch k {
	case KindCategory, KindRoot:
		return 10
	case KindPreset:
		return 8
	default:
		return 1
	}
}

// Library is a collection of elements sharing one library tag.
type Library struct {
	Tag  string
	Name string

	objects map[childKey]*Element

	children map[*Element][]*Element
	parents  map[*Element]*Element

	// childParentPriority tracks the priority of the parent currently
	// recorded for each child, so a later-discovered higher-priority
	// parent can displace an earlier one while rebuilding indices.
	childParentPriority map[*Element]int

	Dependencies []string

	// TriggerStrings maps localization keys (e.g.
	// "FunctionDef/Name/lib_<lib>_<id>") to their display/value text.
	TriggerStrings map[string]string

	// KeywordParameters maps a scripted FunctionDef to its identifier ->
	// ParamDef index, populated only for FunctionDefs carrying a
	// ScriptCode body.
	KeywordParameters map[*Element]map[string]*Element

	root *Element
}

// NewLibrary constructs an empty Library ready to receive elements from
// the parser or mutation API.
func NewLibrary(tag, name string) *Library {
	return &Library{
		Tag:                 tag,
		Name:                name,
		objects:             make(map[childKey]*Element),
		children:            make(map[*Element][]*Element),
		parents:             make(map[*Element]*Element),
		childParentPriority: make(map[*Element]int),
		TriggerStrings:      make(map[string]string),
		KeywordParameters:   make(map[*Element]map[string]*Element),
	}
}

// Put registers e in the objects map, replacing any prior element at the
// same (kind, id). If e is a Root, it becomes the library's root.
func (l *Library) Put(e *Element) {
	l.objects[childKey{e.Kind, e.ID}] = e
	if e.Kind == KindRoot {
		l.root = e
	}
}

// Get looks up an element by (kind, id) within this library.
func (l *Library) Get(kind ElementKind, id string) (*Element, bool) {
	e, ok := l.objects[childKey{kind, id}]
	return e, ok
}

// Root returns the library's Root element, or nil if none has been
// registered yet.
func (l *Library) Root() *Element {
	return l.root
}

// Objects returns every element registered in this library. The order is
// unspecified; callers that need a stable order should run Sort (see
// sort.go).
func (l *Library) Objects() []*Element {
	out := make([]*Element, 0, len(l.objects))
	for _, e := range l.objects {
		out = append(out, e)
	}
	return out
}

// Children returns the ordered children of e as recorded by SetChildren,
// or nil if e has no recorded children.
func (l *Library) Children(e *Element) []*Element {
	return l.children[e]
}

// Parent returns the parent of e, or (nil, false) if none is recorded
// (which should only ever be true for a not-yet-indexed element; the root
// is always its own parent).
func (l *Library) Parent(e *Element) (*Element, bool) {
	if e != nil && e == l.root {
		return e, true
	}
	p, ok := l.parents[e]
	return p, ok
}

// SetChildren replaces the ordered child list of parent and assigns
// parent-of for each child that does not already have a higher-priority
// parent recorded.
func (l *Library) SetChildren(parent *Element, children []*Element) {
	l.children[parent] = children
	pri := parentPriority(parent.Kind)
	for _, c := range children {
		if existingPri, ok := l.childParentPriority[c]; ok && existingPri >= pri {
			continue
		}
		l.parents[c] = parent
		l.childParentPriority[c] = pri
	}
}

// SetKeywordParameters installs the identifier -> ParamDef index for a
// scripted FunctionDef.
func (l *Library) SetKeywordParameters(def *Element, params map[string]*Element) {
	l.KeywordParameters[def] = params
}

// KeywordParameter looks up a scripted FunctionDef's ParamDef by
// identifier.
func (l *Library) KeywordParameter(def *Element, ident string) (*Element, bool) {
	m, ok := l.KeywordParameters[def]
	if !ok {
		return nil, false
	}
	p, ok := m[ident]
	return p, ok
}

// Repository is a fixed ordered set of libraries loaded together: the
// built-in Native library plus a configured list of project libraries.
type Repository struct {
	order     []string
	libraries map[string]*Library
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{libraries: make(map[string]*Library)}
}

// AddLibrary registers lib in the Repository, appending it to the
// iteration order if it is not already present.
func (r *Repository) AddLibrary(lib *Library) {
	if _, ok := r.libraries[lib.Tag]; !ok {
		r.order = append(r.order, lib.Tag)
	}
	r.libraries[lib.Tag] = lib
}

// Library returns the library registered under tag.
func (r *Repository) Library(tag string) (*Library, bool) {
	l, ok := r.libraries[tag]
	return l, ok
}

// Libraries returns every registered library in registration order.
func (r *Repository) Libraries() []*Library {
	out := make([]*Library, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.libraries[tag])
	}
	return out
}

// Resolve looks up an element anywhere in the Repository by its full
// reference.
func (r *Repository) Resolve(ref ElementRef) (*Element, error) {
	lib, ok := r.libraries[ref.Library]
	if !ok {
		return nil, NewBrokenReference("library %q not found (resolving %s %s)", ref.Library, ref.Kind, ref.ID)
	}
	e, ok := lib.Get(ref.Kind, ref.ID)
	if !ok {
		return nil, NewBrokenReference("element (%s, %s, %s) not found", ref.Library, ref.Kind, ref.ID)
	}
	return e, nil
}
