package dirtreecheck

import (
	"errors"
	"strings"
)

// PathSeparator separates components in a rendered pathname
const PathSeparator = "/"

// ErrBadPath is returned when a pathname cannot be parsed into components
var ErrBadPath = errors.New("malformed pathname")

// Path is an immutable slash-delimited sequence of pathname components.
// A Path always has at least one component.
type Path struct {
	pathname   string
	components []string
}

// NewPath parses pathname into a Path. Empty pathnames, leading or trailing
// separators, and empty components ("a//b") are rejected.
func NewPath(pathname string) (*Path, error) {
	if pathname == "" {
		return nil, ErrBadPath
	}

	components := strings.Split(pathname, PathSeparator)
	for _, component := range components {
		if component == "" {
			return nil, ErrBadPath
		}
	}

	return &Path{
		pathname:   pathname,
		components: components,
	}, nil
}

// Pathname returns the rendered slash-delimited form
func (p *Path) Pathname() string {
	return p.pathname
}

// Depth returns the number of components (always >= 1)
func (p *Path) Depth() int {
	return len(p.components)
}

// Component returns the component at the given zero-based depth index
func (p *Path) Component(index int) string {
	return p.components[index]
}

// Prefix returns the path consisting of the first depth components of p
func (p *Path) Prefix(depth int) (*Path, error) {
	if depth < 1 || depth > len(p.components) {
		return nil, ErrBadPath
	}
	if depth == len(p.components) {
		return p, nil
	}

	components := p.components[:depth]
	return &Path{
		pathname:   strings.Join(components, PathSeparator),
		components: components,
	}, nil
}

// ComparePaths orders two paths component by component. A path that is a
// proper prefix of another sorts first. The result is <0, 0, or >0.
func ComparePaths(a, b *Path) int {
	minDepth := len(a.components)
	if len(b.components) < minDepth {
		minDepth = len(b.components)
	}

	for i := 0; i < minDepth; i++ {
		if cmp := strings.Compare(a.components[i], b.components[i]); cmp != 0 {
			return cmp
		}
	}

	return len(a.components) - len(b.components)
}

// SharedPrefixDepth returns the number of leading components a and b have in
// common.
func SharedPrefixDepth(a, b *Path) int {
	minDepth := len(a.components)
	if len(b.components) < minDepth {
		minDepth = len(b.components)
	}

	shared := 0
	for i := 0; i < minDepth; i++ {
		if a.components[i] != b.components[i] {
			break
		}
		shared++
	}

	return shared
}
