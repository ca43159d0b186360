package dirtreecheck

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// treeContext tags every index entry; the index holds a single generation of
// the tree, so one context is enough.
const treeContext = "tree"

// pathIndex is a flat sorted index of every node in a DirTree, keyed by
// rendered pathname. It backs Contains lookups and snapshot iteration; the
// node hierarchy itself stays authoritative for structure and count.
type pathIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[Node, string, string]
}

func newPathIndex() *pathIndex {
	getKeyFromItem := func(node *Node) string {
		if node == nil || node.Path() == nil {
			return ""
		}
		return node.Path().Pathname()
	}

	// Size function for serialization: one listing line per node
	getItemSize := func(node *Node) int {
		if node == nil || node.Path() == nil {
			return 0
		}
		return len(node.Path().Pathname()) + 1
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	skiplist := zcsl.MakeZeroCopySkiplist[Node, string, string](
		16,
		getKeyFromItem,
		getItemSize,
		cmpKey,
	)

	return &pathIndex{skiplist: skiplist}
}

// Insert adds a node to the index
func (pi *pathIndex) Insert(node *Node) bool {
	return pi.skiplist.Insert(node, treeContext)
}

// Find returns the indexed node for pathname, or nil
func (pi *pathIndex) Find(pathname string) *Node {
	itemPtr, _ := pi.skiplist.Find(pathname)
	if itemPtr == nil {
		return nil
	}
	return itemPtr.Item()
}

// Delete removes the entry for pathname
func (pi *pathIndex) Delete(pathname string) bool {
	return pi.skiplist.Delete(pathname)
}

// Length returns the number of indexed nodes
func (pi *pathIndex) Length() int {
	return pi.skiplist.Length()
}

// ForEach iterates the index in sorted pathname order until the callback
// returns false
func (pi *pathIndex) ForEach(callback func(*Node) bool) {
	for current := pi.skiplist.First(); current != nil; current = current.Next() {
		node := current.Item()
		if node == nil {
			continue
		}
		if !callback(node) {
			break
		}
	}
}
