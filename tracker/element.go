package tracker

import (
	"strings"

	"sitepulse/api/models"
)

const (
	attrTrack      = "data-track"
	attrTrackLabel = "data-track-label"
	attrAriaLabel  = "aria-label"
)

// Element is the slice of a DOM node the click tracker needs.
type Element interface {
	TagName() string
	Attr(name string) (string, bool)
	Text() string
	// Parent returns nil at the root.
	Parent() Element
}

// Node is a plain Element implementation for embedders that build their own tree.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Content  string
	ParentEl *Node
}

func (n *Node) TagName() string { return n.Tag }

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) Text() string { return n.Content }

func (n *Node) Parent() Element {
	if n.ParentEl == nil {
		return nil
	}
	return n.ParentEl
}

// interactiveAncestor walks up from el to the nearest button, link or
// element marked with data-track.
func interactiveAncestor(el Element) Element {
	for el != nil {
		switch strings.ToLower(el.TagName()) {
		case "button", "a":
			return el
		}
		if _, ok := el.Attr(attrTrack); ok {
			return el
		}
		el = el.Parent()
	}
	return nil
}

// clickLabel prefers data-track-label, then aria-label, then the trimmed text.
func clickLabel(el Element) string {
	if v, ok := el.Attr(attrTrackLabel); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := el.Attr(attrAriaLabel); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return models.TruncateLabel(strings.TrimSpace(el.Text()))
}
