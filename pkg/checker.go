package dirtreecheck

import (
	"fmt"
	"os"
	"strings"
)

// ViolationKind identifies which structural invariant a check found broken
type ViolationKind int

const (
	ViolationNullNode ViolationKind = iota
	ViolationNullPath
	ViolationBadParentPathRelation
	ViolationRootHasParent
	ViolationNonRootMissingParent
	ViolationRootContainsSeparator
	ViolationChildParentMismatch
	ViolationParentMissingChild
	ViolationChildrenOutOfOrder
	ViolationDuplicateChildren
	ViolationChildAccessInconsistent
	ViolationUninitializedNonEmpty
	ViolationRootMissingForNonEmptyTree
	ViolationCountMismatch
)

// String returns the violation kind name used in diagnostics
func (k ViolationKind) String() string {
	switch k {
	case ViolationNullNode:
		return "NullNode"
	case ViolationNullPath:
		return "NullPath"
	case ViolationBadParentPathRelation:
		return "BadParentPathRelation"
	case ViolationRootHasParent:
		return "RootHasParent"
	case ViolationNonRootMissingParent:
		return "NonRootMissingParent"
	case ViolationRootContainsSeparator:
		return "RootContainsSeparator"
	case ViolationChildParentMismatch:
		return "ChildParentMismatch"
	case ViolationParentMissingChild:
		return "ParentMissingChild"
	case ViolationChildrenOutOfOrder:
		return "ChildrenOutOfOrder"
	case ViolationDuplicateChildren:
		return "DuplicateChildren"
	case ViolationChildAccessInconsistent:
		return "ChildAccessInconsistent"
	case ViolationUninitializedNonEmpty:
		return "UninitializedNonEmpty"
	case ViolationRootMissingForNonEmptyTree:
		return "RootMissingForNonEmptyTree"
	case ViolationCountMismatch:
		return "CountMismatch"
	default:
		return "Unknown"
	}
}

// reportViolation emits the single-line diagnostic for a broken invariant.
// The checker is fail-fast, so at most one line is printed per check call.
func reportViolation(kind ViolationKind, format string, args ...interface{}) {
	detail := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "dirtree invariant %s: %s\n", kind, detail)
}

// CheckNode verifies the local invariants of a single node: presence, path
// presence, the parent path being the longest proper prefix of the node path,
// root/non-root parent arity, the root component being separator-free, and
// the child list being in strictly increasing path order with back-pointers
// to this node. Returns false on the first violation found, after printing
// its diagnostic.
func CheckNode(node *Node) bool {
	if node == nil {
		reportViolation(ViolationNullNode, "a node is a nil reference")
		return false
	}

	path := node.Path()
	if path == nil {
		reportViolation(ViolationNullPath, "a node has a nil path")
		return false
	}

	parent := node.Parent()
	if parent != nil {
		parentPath := parent.Path()
		if parentPath == nil {
			reportViolation(ViolationNullPath, "parent of (%s) has a nil path", path.Pathname())
			return false
		}

		// parent's path must be the longest possible proper prefix of the
		// node's path, not merely a prefix
		if SharedPrefixDepth(path, parentPath) != path.Depth()-1 {
			reportViolation(ViolationBadParentPathRelation,
				"parent and child paths disagree: (%s) (%s)",
				parentPath.Pathname(), path.Pathname())
			return false
		}
	}

	if path.Depth() == 1 && parent != nil {
		reportViolation(ViolationRootHasParent, "root (%s) has a non-nil parent", path.Pathname())
		return false
	}
	if path.Depth() > 1 && parent == nil {
		reportViolation(ViolationNonRootMissingParent, "non-root (%s) has a nil parent", path.Pathname())
		return false
	}

	if path.Depth() == 1 && strings.Contains(path.Pathname(), PathSeparator) {
		reportViolation(ViolationRootContainsSeparator,
			"root component (%s) contains a separator", path.Pathname())
		return false
	}

	// one scan over the child list: back-pointers, then strict path increase
	// between adjacent children, which catches out-of-order and duplicate
	// entries alike
	var prev *Node
	for i := 0; i < node.NumChildren(); i++ {
		child, ok := node.Child(i)
		if !ok {
			reportViolation(ViolationChildAccessInconsistent,
				"(%s) claims %d children but child %d is not retrievable",
				path.Pathname(), node.NumChildren(), i)
			return false
		}
		if child == nil {
			reportViolation(ViolationNullNode, "child %d of (%s) is a nil reference", i, path.Pathname())
			return false
		}
		if child.Parent() != node {
			reportViolation(ViolationChildParentMismatch,
				"child (%s) does not point back to its parent", childPathname(child))
			return false
		}
		if child.Path() == nil {
			reportViolation(ViolationNullPath, "child %d of (%s) has a nil path", i, path.Pathname())
			return false
		}

		if prev != nil {
			cmp := ComparePaths(prev.Path(), child.Path())
			if cmp == 0 {
				reportViolation(ViolationDuplicateChildren,
					"(%s) has duplicate children (%s)", path.Pathname(), child.Path().Pathname())
				return false
			}
			if cmp > 0 {
				reportViolation(ViolationChildrenOutOfOrder,
					"children out of lexicographic order: (%s) >= (%s)",
					prev.Path().Pathname(), child.Path().Pathname())
				return false
			}
		}
		prev = child
	}

	// the node must appear in its own parent's child list
	if parent != nil {
		found := false
		for i := 0; i < parent.NumChildren(); i++ {
			if sibling, ok := parent.Child(i); ok && sibling == node {
				found = true
				break
			}
		}
		if !found {
			reportViolation(ViolationParentMissingChild,
				"(%s) is missing from its parent's child list", path.Pathname())
			return false
		}
	}

	return true
}

// childPathname renders a child's path for diagnostics, tolerating nil paths
func childPathname(child *Node) string {
	if child.Path() == nil {
		return "<nil path>"
	}
	return child.Path().Pathname()
}

// treeCheck walks the subtree rooted at node in pre-order, validating each
// visited node and counting it. A nil node is an empty subtree. Child
// accessors are re-queried at every step so a claimed-versus-retrievable
// child count mismatch is itself detected. The first violation anywhere in
// the subtree aborts the walk; the returned count is only meaningful when
// the second return value is true.
func treeCheck(node *Node) (int, bool) {
	if node == nil {
		return 0, true
	}

	if !CheckNode(node) {
		return 0, false
	}

	count := 1
	for i := 0; i < node.NumChildren(); i++ {
		child, ok := node.Child(i)
		if !ok {
			reportViolation(ViolationChildAccessInconsistent,
				"NumChildren claims more children than Child returns for (%s)",
				node.Path().Pathname())
			return count, false
		}

		subtreeCount, ok := treeCheck(child)
		if !ok {
			return count, false
		}
		count += subtreeCount
	}

	return count, true
}

// IsValid is the single entry point of the checker. It validates the global
// tree-handle invariants (initialization flag, root presence, tracked node
// count) and then walks the whole tree validating every structural invariant
// of every node. The tracked count is ground truth to be cross-checked
// against what the traversal actually finds, never corrected.
//
// Returns true iff every invariant holds. On failure exactly one diagnostic
// line has been written to stderr.
func IsValid(initialized bool, root *Node, count int) bool {
	defer VerboseEnter()()

	if !initialized {
		if count != 0 || root != nil {
			detail := fmt.Sprintf("not initialized, but count is %d", count)
			if root != nil {
				detail = "not initialized, but a root is present"
			}
			reportViolation(ViolationUninitializedNonEmpty, "%s", detail)
			return false
		}
		return true
	}

	if root == nil && count > 0 {
		reportViolation(ViolationRootMissingForNonEmptyTree,
			"root is nil but tracked count is %d", count)
		return false
	}

	actual, ok := treeCheck(root)
	if !ok {
		return false
	}

	if IsDebugEnabled("checker") {
		VerboseLog(3, "IsValid: traversal found %d nodes, tracked count %d", actual, count)
	}

	if actual != count {
		reportViolation(ViolationCountMismatch,
			"tracked %d nodes, but traversal found %d", count, actual)
		return false
	}

	return true
}
