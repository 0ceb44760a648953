// Package parser reads the Triggers XML file, the DocumentInfo
// dependency list, and the TriggerStrings localization file into a
// core.Library.
package parser

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/galaxyscript/trigforge/core"
)

const bomMojibake = "ï»¿"

var libraryHeaderRe = regexp.MustCompile(`^<(?:Library|Standard) Id="(\w+)"/?>$`)

// stripBOM removes a leading UTF-8 BOM, including the mojibake form
// produced by round-tripping a UTF-8 file through a Latin-1 read
//.
func stripBOM(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimPrefix(s, bomMojibake)
	return s
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = stripBOM(line)
			first = false
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return lines, nil
}

// ParseTriggers reads triggersFile into a new core.Library. An empty or
// near-empty file (≤ 3 lines) becomes a library whose only element is an
// empty Root, with library tag "nolibrary".
func ParseTriggers(triggersFile string) (*core.Library, error) {
	lines, err := readLines(triggersFile)
	if err != nil {
		return nil, err
	}

	if len(lines) <= 3 {
		lib := core.NewLibrary(core.NoLibraryTag, core.NoLibraryTag)
		lib.Put(&core.Element{Kind: core.KindRoot, Library: core.NoLibraryTag, ID: core.RootElementID, Lines: []string{"<Root>", "</Root>"}})
		return lib, nil
	}

	var libTag string
	var current []string
	var objects []*core.Element

	for i := 2; i < len(lines); i++ {
		lineNumber := i + 1
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		switch {
		case lineNumber == 3:
			m := libraryHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, core.NewMalformedXml("line 3 of %q did not carry the library id: %q", triggersFile, line)
			}
			libTag = m[1]
		case line == "</Library>" || line == "</TriggerData>":
			continue
		case strings.HasPrefix(line, "<Element") || line == "<Root>":
			if current != nil {
				return nil, core.NewMalformedXml("nested element opened before previous one closed, at line %d of %q", lineNumber, triggersFile)
			}
			current = []string{line}
		case line == "</Element>" || line == "</Root>":
			if current == nil {
				return nil, core.NewMalformedXml("closing tag with no open element, at line %d of %q", lineNumber, triggersFile)
			}
			current = append(current, line)
			el, err := newElement(current, libTag)
			if err != nil {
				return nil, err
			}
			objects = append(objects, el)
			current = nil
		default:
			if current == nil {
				return nil, core.NewMalformedXml("stray content outside any element, at line %d of %q: %q", lineNumber, triggersFile, line)
			}
			current = append(current, line)
		}
	}
	if current != nil {
		return nil, core.NewMalformedXml("unclosed element at end of %q", triggersFile)
	}
	if libTag == "" {
		return nil, core.NewMalformedXml("%q never produced a library header", triggersFile)
	}

	lib := core.NewLibrary(libTag, libTag)
	for _, el := range objects {
		lib.Put(el)
	}
	if lib.Root() == nil {
		return nil, core.NewMalformedXml("%q never produced a Root element", triggersFile)
	}

	RebuildIndices(lib)
	if err := RebuildKeywordParameters(lib); err != nil {
		return nil, err
	}
	return lib, nil
}

var (
	typePattern      = regexp.MustCompile(`Type="(\w+)"`)
	idPattern        = regexp.MustCompile(`\bId="([0-9A-F]{8}|root)"`)
	typeLibIDPattern = regexp.MustCompile(`Type="(\w+)" Library="(\w+)" Id="([0-9A-F]{8})"`)
	categoryItemTmpl = `^<Item Type="(\w+)" Library="%s" Id="([0-9A-F]{8})"/>$`
)

func newElement(lines []string, library string) (*core.Element, error) {
	if lines[0] == "<Root>" {
		return &core.Element{Kind: core.KindRoot, Library: library, ID: core.RootElementID, Lines: lines}, nil
	}
	tm := typePattern.FindStringSubmatch(lines[0])
	if tm == nil {
		return nil, core.NewMalformedXml("element opening line has no Type attribute: %q", lines[0])
	}
	im := idPattern.FindStringSubmatch(lines[0])
	if im == nil {
		return nil, core.NewMalformedXml("element opening line has no Id attribute: %q", lines[0])
	}
	return &core.Element{Kind: core.ElementKind(tm[1]), Library: library, ID: im[1], Lines: lines}, nil
}

// RebuildIndices rebuilds children and parents from each element's lines
// and the parent-priority rule (Category/Root > Preset > others).
// Between mutations the parent/child/keyword-parameter indices must be
// rebuildable from objects and lines alone; this is also used by the
// mutation API after it edits lines directly.
func RebuildIndices(lib *core.Library) {
	categoryItemRe := regexp.MustCompile(strings.Replace(categoryItemTmpl, "%s", lib.Tag, 1))

	for _, obj := range lib.Objects() {
		switch obj.Kind {
		case core.KindRoot, core.KindCategory:
			var children []*core.Element
			for _, line := range innerLines(obj.Lines) {
				m := categoryItemRe.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				if child, ok := lib.Get(core.ElementKind(m[1]), m[2]); ok {
					children = append(children, child)
				}
			}
			lib.SetChildren(obj, children)
		case core.KindComment, core.KindCustomScript:
			// leaf kinds: never own child references.
		default:
			var children []*core.Element
			for _, line := range innerLines(obj.Lines) {
				m := typeLibIDPattern.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				if m[2] != lib.Tag {
					continue
				}
				if child, ok := lib.Get(core.ElementKind(m[1]), m[3]); ok {
					children = append(children, child)
				}
			}
			lib.SetChildren(obj, children)
		}
	}

	if root := lib.Root(); root != nil {
		lib.SetChildren(root, lib.Children(root))
	}
}

// innerLines returns lines[1:len-1], the lines strictly between an
// element's opening and closing tag.
func innerLines(lines []string) []string {
	if len(lines) <= 2 {
		return nil
	}
	return lines[1 : len(lines)-1]
}

// RebuildKeywordParameters rebuilds, for every scripted FunctionDef (one
// carrying an inline ScriptCode body), the identifier -> ParamDef index
//. Duplicate or missing identifiers are an
// invariant violation.
func RebuildKeywordParameters(lib *core.Library) error {
	for _, obj := range lib.Objects() {
		if obj.Kind != core.KindFunctionDef {
			continue
		}
		hasScriptCode := false
		for _, line := range obj.Lines {
			if line == "<ScriptCode>" {
				hasScriptCode = true
				break
			}
		}
		if !hasScriptCode {
			continue
		}
		params := make(map[string]*core.Element)
		for _, child := range lib.Children(obj) {
			if child.Kind != core.KindParamDef {
				continue
			}
			ident, ok := child.InlineValue("Identifier")
			if !ok || ident == "" {
				return core.NewInvalidInvariant("scripted FunctionDef %s has a ParamDef with no Identifier", obj.ID)
			}
			if _, dup := params[ident]; dup {
				return core.NewInvalidInvariant("scripted FunctionDef %s has duplicate ParamDef identifier %q", obj.ID, ident)
			}
			params[ident] = child
		}
		lib.SetKeywordParameters(obj, params)
	}
	return nil
}
