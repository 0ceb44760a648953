package core

import (
	"regexp"
	"strings"
)

var (
	openTagRe  = regexp.MustCompile(`^<(\w+)[ >]`)
	attrRe     = regexp.MustCompile(`(\w+)="([^"]*)"`)
	selfClosed = regexp.MustCompile(`^<\w+(?:\s+[^>]*)?/>$`)
)

// tagName returns the tag name of line if it opens with "<Name" (either
// "<Name>" or "<Name attr=...>"), else "".
func tagName(line string) string {
	m := openTagRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// InlineValue returns the text inside the first "<T>…</T>" appearing on
// one line, and whether such a line was found.
func (e *Element) InlineValue(tag string) (string, bool) {
	open := "<" + tag + ">"
	closeSuffix := "</" + tag + ">"
	for _, line := range e.Lines {
		if strings.HasPrefix(line, open) && strings.HasSuffix(line, closeSuffix) {
			return line[len(open) : len(line)-len(closeSuffix)], true
		}
	}
	return "", false
}

// MultilineValue returns the lines strictly between "<T>" and "</T>",
// with XML entities unescaped, and whether the block was found.
func (e *Element) MultilineValue(tag string) ([]string, bool) {
	open := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	start := -1
	for i, line := range e.Lines {
		if line == open {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	var out []string
	for i := start + 1; i < len(e.Lines); i++ {
		if e.Lines[i] == closeTag {
			return out, true
		}
		out = append(out, UnescapeXMLString(e.Lines[i]))
	}
	return nil, false
}

// Attribute returns the value of attribute A on the first line starting
// with "<T ", and whether it was found.
func (e *Element) Attribute(tag, attr string) (string, bool) {
	prefix := "<" + tag + " "
	for _, line := range e.Lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		for _, m := range attrRe.FindAllStringSubmatch(line, -1) {
			if m[1] == attr {
				return m[2], true
			}
		}
		return "", false
	}
	return "", false
}

// FirstLineOfTag returns the first line whose tag name is T.
func (e *Element) FirstLineOfTag(tag string) (string, bool) {
	for _, line := range e.Lines {
		if tagName(line) == tag {
			return line, true
		}
	}
	return "", false
}

// AllLinesOfTag returns every line whose tag name is T.
func (e *Element) AllLinesOfTag(tag string) []string {
	var out []string
	for _, line := range e.Lines {
		if tagName(line) == tag {
			out = append(out, line)
		}
	}
	return out
}

// HasFlag reports whether a self-closed "<Flag/>" line is present.
func (e *Element) HasFlag(flag string) bool {
	target := "<" + flag + "/>"
	for _, line := range e.Lines {
		if line == target {
			return true
		}
	}
	return false
}

var xmlEntityUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// UnescapeXMLString unescapes the five predefined XML entities.
func UnescapeXMLString(s string) string {
	return xmlEntityUnescaper.Replace(s)
}
