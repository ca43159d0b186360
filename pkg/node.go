package dirtreecheck

import (
	"errors"
	"sort"
)

// ErrAlreadyInTree is returned when inserting a path that already exists
var ErrAlreadyInTree = errors.New("path already in tree")

// Node is a single vertex in a DirTree. It holds one path, a parent reference
// (nil for the root), and an ordered sequence of children kept in strictly
// increasing path order.
type Node struct {
	path     *Path
	parent   *Node
	children []*Node

	// childCount is maintained alongside the children slice; the checker
	// cross-validates the two rather than trusting either.
	childCount int
}

func newNode(path *Path, parent *Node) *Node {
	return &Node{
		path:   path,
		parent: parent,
	}
}

// Path returns the node's path
func (n *Node) Path() *Path {
	return n.path
}

// Parent returns the node's parent, or nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// NumChildren returns the node's tracked child count
func (n *Node) NumChildren() int {
	return n.childCount
}

// Child returns the child at the given index in sorted order. The second
// return value is false when index is out of range of the retrievable
// children, which can disagree with NumChildren on a corrupted node.
func (n *Node) Child(index int) (*Node, bool) {
	if index < 0 || index >= len(n.children) {
		return nil, false
	}
	return n.children[index], true
}

// childIndex returns the sorted insertion point for path among n's children
// and whether a child with that exact path is already present.
func (n *Node) childIndex(path *Path) (int, bool) {
	i := sort.Search(len(n.children), func(i int) bool {
		return ComparePaths(n.children[i].path, path) >= 0
	})
	if i < len(n.children) && ComparePaths(n.children[i].path, path) == 0 {
		return i, true
	}
	return i, false
}

// addChild links child into n's ordered child sequence
func (n *Node) addChild(child *Node) error {
	i, found := n.childIndex(child.path)
	if found {
		return ErrAlreadyInTree
	}

	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	n.childCount = len(n.children)
	return nil
}

// removeChild unlinks child from n; a child not present is a no-op
func (n *Node) removeChild(child *Node) {
	i, found := n.childIndex(child.path)
	if !found || n.children[i] != child {
		return
	}

	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	n.childCount = len(n.children)
}
