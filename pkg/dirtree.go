package dirtreecheck

import (
	"errors"
	"strings"
)

// ErrNoSuchPath is returned when removing a path that is not in the tree
var ErrNoSuchPath = errors.New("no such path in tree")

// ErrConflictingPath is returned when inserting a path whose first component
// disagrees with the existing root
var ErrConflictingPath = errors.New("path conflicts with existing root")

// DirTree is a hierarchy of directory nodes with a single root. It tracks its
// own node count and keeps a flat sorted path index alongside the node
// structure; the checker cross-validates the tracked count against the tree,
// so the count is maintained explicitly rather than derived at check time.
type DirTree struct {
	initialized bool
	root        *Node
	count       int
	index       *pathIndex
}

// NewDirTree returns an initialized empty tree
func NewDirTree() *DirTree {
	return &DirTree{
		initialized: true,
		index:       newPathIndex(),
	}
}

// Initialized reports whether the tree handle has been set up
func (dt *DirTree) Initialized() bool {
	return dt.initialized
}

// Root returns the tree's root node, or nil for an empty tree
func (dt *DirTree) Root() *Node {
	return dt.root
}

// Count returns the tracked number of nodes in the tree
func (dt *DirTree) Count() int {
	return dt.count
}

// Insert adds pathname to the tree, creating any missing ancestors. Inserting
// a pathname already present returns ErrAlreadyInTree; a pathname whose first
// component differs from the existing root returns ErrConflictingPath.
func (dt *DirTree) Insert(pathname string) error {
	path, err := NewPath(pathname)
	if err != nil {
		return err
	}

	if dt.root != nil && SharedPrefixDepth(path, dt.root.Path()) == 0 {
		return ErrConflictingPath
	}

	if IsDebugEnabled("tree") {
		VerboseLog(3, "Insert: %s (count=%d)", pathname, dt.count)
	}

	inserted := false
	var parent *Node
	for depth := 1; depth <= path.Depth(); depth++ {
		prefix, err := path.Prefix(depth)
		if err != nil {
			return err
		}

		existing := dt.lookupChild(parent, prefix)
		if existing != nil {
			parent = existing
			continue
		}

		node := newNode(prefix, parent)
		if parent == nil {
			dt.root = node
		} else if err := parent.addChild(node); err != nil {
			return err
		}
		dt.index.Insert(node)
		dt.count++
		inserted = true
		parent = node
	}

	if !inserted {
		return ErrAlreadyInTree
	}
	return nil
}

// lookupChild finds parent's child with the given path; a nil parent looks at
// the root slot
func (dt *DirTree) lookupChild(parent *Node, path *Path) *Node {
	if parent == nil {
		if dt.root != nil && ComparePaths(dt.root.Path(), path) == 0 {
			return dt.root
		}
		return nil
	}

	i, found := parent.childIndex(path)
	if !found {
		return nil
	}
	child, _ := parent.Child(i)
	return child
}

// Remove deletes pathname and its entire subtree from the tree
func (dt *DirTree) Remove(pathname string) error {
	path, err := NewPath(pathname)
	if err != nil {
		return err
	}

	node := dt.index.Find(path.Pathname())
	if node == nil {
		return ErrNoSuchPath
	}

	if IsDebugEnabled("tree") {
		VerboseLog(3, "Remove: %s (count=%d)", pathname, dt.count)
	}

	if node.Parent() == nil {
		dt.root = nil
	} else {
		node.Parent().removeChild(node)
	}
	dt.count -= dt.unindexSubtree(node)
	return nil
}

// unindexSubtree drops every node under node (inclusive) from the path index
// and returns the number of nodes dropped
func (dt *DirTree) unindexSubtree(node *Node) int {
	if node == nil {
		return 0
	}

	removed := 1
	if node.Path() != nil {
		dt.index.Delete(node.Path().Pathname())
	}
	for i := 0; i < node.NumChildren(); i++ {
		child, ok := node.Child(i)
		if !ok {
			break
		}
		removed += dt.unindexSubtree(child)
	}
	return removed
}

// Contains reports whether pathname is present in the tree
func (dt *DirTree) Contains(pathname string) bool {
	path, err := NewPath(pathname)
	if err != nil {
		return false
	}
	return dt.index.Find(path.Pathname()) != nil
}

// Listing returns the pre-order traversal of the tree, one pathname per line
func (dt *DirTree) Listing() string {
	var sb strings.Builder
	listSubtree(dt.root, &sb)
	return sb.String()
}

func listSubtree(node *Node, sb *strings.Builder) {
	if node == nil {
		return
	}
	if node.Path() != nil {
		sb.WriteString(node.Path().Pathname())
		sb.WriteString("\n")
	}
	for i := 0; i < node.NumChildren(); i++ {
		child, ok := node.Child(i)
		if !ok {
			break
		}
		listSubtree(child, sb)
	}
}

// Validate runs the consistency checker against the tree's current state.
// Returns true iff every structural invariant holds; on failure the first
// violation has been reported on stderr.
func (dt *DirTree) Validate() bool {
	return IsValid(dt.initialized, dt.root, dt.count)
}
