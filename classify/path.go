// Package classify holds the allow-lists that decide which pages are tracked
// and how a page view's traffic source is attributed.
package classify

import "strings"

// DefaultTrackedPrefixes lists the article listing surfaces tracked besides the root page.
var DefaultTrackedPrefixes = []string{"/blog"}

// PathPolicy decides whether a path belongs to the tracked marketing surface.
// The root path is always tracked.
type PathPolicy struct {
	prefixes []string
}

func NewPathPolicy(prefixes ...string) PathPolicy {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		p = strings.TrimRight(p, "/")
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		cleaned = append(cleaned, p)
	}
	return PathPolicy{prefixes: cleaned}
}

func DefaultPathPolicy() PathPolicy {
	return NewPathPolicy(DefaultTrackedPrefixes...)
}

// Trackable reports whether path is the root or lives under one of the prefixes.
func (p PathPolicy) Trackable(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range p.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
