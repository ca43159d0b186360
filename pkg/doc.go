// Package dirtreecheck provides an in-memory hierarchical directory tree with a
// built-in structural consistency checker for fail-fast corruption detection.
//
// # Core API
//
// The main entry point is DirTree, which owns the node hierarchy:
//
//	dt := dirtreecheck.NewDirTree()
//	err := dt.Insert("a/b/c")
//
// # Validation
//
// The checker walks the tree once and verifies every structural invariant
// (parent/child path relations, child ordering and uniqueness, and the tracked
// node count). It never mutates the tree; the verdict is a boolean and the
// first violation found is reported as a single line on stderr:
//
//	if !dt.Validate() {
//		// tree is corrupt, diagnostic already printed
//	}
//
// The checker can also be driven directly against a raw tree handle:
//
//	ok := dirtreecheck.IsValid(dt.Initialized(), dt.Root(), dt.Count())
//
// # Configuration
//
// Enable debug output:
//
//	dirtreecheck.SetDebugFlags("checker,tree")
//	dirtreecheck.SetVerboseLevel(2)
//
// # Note on Internal API
//
// Types like pathIndex and the Node mutation helpers are internal implementation
// details and may change in future versions. External consumers should primarily
// use DirTree, Path, the read-only Node accessors, and IsValid/CheckNode.
package dirtreecheck
