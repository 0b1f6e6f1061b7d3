// Package scanner locates <xtml> regions in a raw document.
//
// Two forms are recognized: self-closing tags `<xtml attr="v" ... />` and
// block tags `<xtml attr="v" ...>...</xtml>`. Block matching is
// non-greedy, so nested <xtml> inside a block is not supported and the
// shortest closing tag wins. Tags are returned in source order and never
// overlap.
package scanner

import (
	"regexp"
)

// Tag is one matched <xtml> occurrence.
type Tag struct {
	// Full is the entire matched text, used to splice results back into
	// the document.
	Full string
	// Head is the opening tag including its attribute text.
	Head string
	// Content is the literal text between the opening and closing tag.
	// Empty for self-closing tags.
	Content string
	// SelfClosing marks the `<xtml ... />` form.
	SelfClosing bool
	// Attributes holds the double-quoted attributes parsed from Head.
	Attributes map[string]string
}

var (
	// Self-closing first so `<xtml ... />` is not consumed as the head of
	// a block match. (?s) lets the block body span newlines.
	tagRe = regexp.MustCompile(`(?s)<xtml\b([^>]*)/>|<xtml\b([^>]*)>(.*?)</xtml>`)

	// Attribute values are always double-quoted; names may contain word
	// characters and dashes (param-name attributes).
	attrRe = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"`)
)

// Scan returns every <xtml> tag in content, in source order.
func Scan(content string) []Tag {
	var tags []Tag

	for _, m := range tagRe.FindAllStringSubmatchIndex(content, -1) {
		var tag Tag
		tag.Full = content[m[0]:m[1]]

		if m[2] >= 0 {
			// First alternative: self-closing
			tag.Head = "<xtml" + content[m[2]:m[3]] + "/>"
			tag.SelfClosing = true
		} else {
			// Second alternative: block
			tag.Head = "<xtml" + content[m[4]:m[5]] + ">"
			tag.Content = content[m[6]:m[7]]
		}

		tag.Attributes = ParseAttributes(tag.Head)
		tags = append(tags, tag)
	}

	return tags
}

// ParseAttributes extracts the attribute map from an opening tag.
func ParseAttributes(head string) map[string]string {
	attributes := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(head, -1) {
		attributes[m[1]] = m[2]
	}
	return attributes
}
