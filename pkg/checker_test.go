package dirtreecheck

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with stderr redirected and returns what was written
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured stderr: %v", err)
	}
	return string(data)
}

// buildSampleTree returns the 4-node tree: a, a/b, a/b/d, a/c
func buildSampleTree(t *testing.T) *DirTree {
	t.Helper()

	dt := NewDirTree()
	for _, pathname := range []string{"a/b/d", "a/c"} {
		if err := dt.Insert(pathname); err != nil {
			t.Fatalf("Insert(%q) failed: %v", pathname, err)
		}
	}
	if dt.Count() != 4 {
		t.Fatalf("Expected 4 nodes in sample tree, got %d", dt.Count())
	}
	return dt
}

// findNode fetches a node by pathname through the tree's index
func findNode(t *testing.T, dt *DirTree, pathname string) *Node {
	t.Helper()
	node := dt.index.Find(pathname)
	if node == nil {
		t.Fatalf("Node %q not found in tree", pathname)
	}
	return node
}

func TestIsValid_ValidTree(t *testing.T) {
	dt := buildSampleTree(t)

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(dt.Initialized(), dt.Root(), dt.Count())
	})

	if !ok {
		t.Error("Expected valid tree to pass the check")
	}
	if output != "" {
		t.Errorf("Expected no diagnostic output for valid tree, got %q", output)
	}
}

func TestIsValid_Uninitialized(t *testing.T) {
	if !IsValid(false, nil, 0) {
		t.Error("Expected uninitialized empty tree to pass")
	}

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(false, nil, 5)
	})
	if ok {
		t.Error("Expected uninitialized tree with non-zero count to fail")
	}
	if !strings.Contains(output, "UninitializedNonEmpty") {
		t.Errorf("Expected UninitializedNonEmpty diagnostic, got %q", output)
	}

	dt := buildSampleTree(t)
	output = captureStderr(t, func() {
		ok = IsValid(false, dt.Root(), 0)
	})
	if ok {
		t.Error("Expected uninitialized tree with a root to fail")
	}
	if !strings.Contains(output, "UninitializedNonEmpty") {
		t.Errorf("Expected UninitializedNonEmpty diagnostic, got %q", output)
	}
}

func TestIsValid_RootMissingForNonEmptyTree(t *testing.T) {
	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, nil, 3)
	})
	if ok {
		t.Error("Expected nil root with non-zero count to fail")
	}
	if !strings.Contains(output, "RootMissingForNonEmptyTree") {
		t.Errorf("Expected RootMissingForNonEmptyTree diagnostic, got %q", output)
	}

	if !IsValid(true, nil, 0) {
		t.Error("Expected initialized empty tree to pass")
	}
}

func TestIsValid_CountMismatch(t *testing.T) {
	dt := buildSampleTree(t)

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, dt.Root(), 3)
	})
	if ok {
		t.Error("Expected short count to fail")
	}
	if !strings.Contains(output, "CountMismatch") {
		t.Errorf("Expected CountMismatch diagnostic, got %q", output)
	}
}

func TestIsValid_DetachedSubtreeStaleCount(t *testing.T) {
	dt := buildSampleTree(t)

	// detach a/b/d without adjusting the tracked count
	bNode := findNode(t, dt, "a/b")
	dNode := findNode(t, dt, "a/b/d")
	bNode.removeChild(dNode)

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, dt.Root(), 4)
	})
	if ok {
		t.Error("Expected stale count after detach to fail")
	}
	if !strings.Contains(output, "CountMismatch") {
		t.Errorf("Expected CountMismatch diagnostic, got %q", output)
	}

	// with a corrected count the detached tree is valid again
	if !IsValid(true, dt.Root(), 3) {
		t.Error("Expected detached tree with corrected count to pass")
	}
}

func TestIsValid_ChildrenOutOfOrder(t *testing.T) {
	dt := buildSampleTree(t)

	root := dt.Root()
	root.children[0], root.children[1] = root.children[1], root.children[0]

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, root, 4)
	})
	if ok {
		t.Error("Expected swapped children to fail")
	}
	if !strings.Contains(output, "ChildrenOutOfOrder") {
		t.Errorf("Expected ChildrenOutOfOrder diagnostic, got %q", output)
	}
}

func TestIsValid_DuplicateChildren(t *testing.T) {
	dt := buildSampleTree(t)
	root := dt.Root()

	// splice a second a/c in next to the original
	cNode := findNode(t, dt, "a/c")
	dup := newNode(cNode.Path(), root)
	root.children = append(root.children, dup)
	root.childCount = len(root.children)

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, root, 5)
	})
	if ok {
		t.Error("Expected duplicate children to fail")
	}
	if !strings.Contains(output, "DuplicateChildren") {
		t.Errorf("Expected DuplicateChildren diagnostic, got %q", output)
	}
}

func TestIsValid_ChildParentMismatch(t *testing.T) {
	dt := buildSampleTree(t)

	// a/b's parent pointer redirected to a sibling; the paths still relate
	// correctly, only the back-pointer is wrong
	bNode := findNode(t, dt, "a/b")
	cNode := findNode(t, dt, "a/c")
	bNode.parent = cNode

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, dt.Root(), 4)
	})
	if ok {
		t.Error("Expected broken parent back-pointer to fail")
	}
	if !strings.Contains(output, "ChildParentMismatch") {
		t.Errorf("Expected ChildParentMismatch diagnostic, got %q", output)
	}
}

func TestIsValid_ChildAccessInconsistent(t *testing.T) {
	dt := buildSampleTree(t)

	root := dt.Root()
	root.childCount++ // claims more children than are retrievable

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, root, 4)
	})
	if ok {
		t.Error("Expected inconsistent child count to fail")
	}
	if !strings.Contains(output, "ChildAccessInconsistent") {
		t.Errorf("Expected ChildAccessInconsistent diagnostic, got %q", output)
	}
}

func TestIsValid_RootContainsSeparator(t *testing.T) {
	// a depth-1 path whose single component carries a separator can only
	// come from corruption, never from NewPath
	badPath := &Path{pathname: "a/x", components: []string{"a/x"}}
	root := newNode(badPath, nil)

	var ok bool
	output := captureStderr(t, func() {
		ok = IsValid(true, root, 1)
	})
	if ok {
		t.Error("Expected separator in root component to fail")
	}
	if !strings.Contains(output, "RootContainsSeparator") {
		t.Errorf("Expected RootContainsSeparator diagnostic, got %q", output)
	}
}

func TestIsValid_FailFastSingleDiagnostic(t *testing.T) {
	dt := buildSampleTree(t)

	// two independent violations: swapped children and a wrong count
	root := dt.Root()
	root.children[0], root.children[1] = root.children[1], root.children[0]

	output := captureStderr(t, func() {
		IsValid(true, root, 99)
	})

	if lines := strings.Count(output, "\n"); lines != 1 {
		t.Errorf("Expected exactly one diagnostic line, got %d: %q", lines, output)
	}
	if !strings.Contains(output, "ChildrenOutOfOrder") {
		t.Errorf("Expected the first violation to win, got %q", output)
	}
}

func TestCheckNode_NilNode(t *testing.T) {
	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(nil)
	})
	if ok {
		t.Error("Expected nil node to fail")
	}
	if !strings.Contains(output, "NullNode") {
		t.Errorf("Expected NullNode diagnostic, got %q", output)
	}
}

func TestCheckNode_NilPath(t *testing.T) {
	node := newNode(nil, nil)

	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(node)
	})
	if ok {
		t.Error("Expected nil path to fail")
	}
	if !strings.Contains(output, "NullPath") {
		t.Errorf("Expected NullPath diagnostic, got %q", output)
	}
}

func TestCheckNode_BadParentPathRelation(t *testing.T) {
	dt := buildSampleTree(t)

	// a/b/d re-parented directly under the root: the root's path is a
	// prefix, but not the longest proper prefix
	dNode := findNode(t, dt, "a/b/d")
	dNode.parent = dt.Root()

	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(dNode)
	})
	if ok {
		t.Error("Expected skipped-level parent to fail")
	}
	if !strings.Contains(output, "BadParentPathRelation") {
		t.Errorf("Expected BadParentPathRelation diagnostic, got %q", output)
	}
}

func TestCheckNode_RootHasParent(t *testing.T) {
	dt := buildSampleTree(t)

	// give the root a parent with an unrelated path so the path relation
	// check cannot fire first
	other := newNode(mustPath(t, "z"), nil)
	dt.Root().parent = other

	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(dt.Root())
	})
	if ok {
		t.Error("Expected root with a parent to fail")
	}
	if !strings.Contains(output, "RootHasParent") {
		t.Errorf("Expected RootHasParent diagnostic, got %q", output)
	}
}

func TestCheckNode_NonRootMissingParent(t *testing.T) {
	dt := buildSampleTree(t)

	bNode := findNode(t, dt, "a/b")
	bNode.parent = nil

	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(bNode)
	})
	if ok {
		t.Error("Expected depth-2 node without parent to fail")
	}
	if !strings.Contains(output, "NonRootMissingParent") {
		t.Errorf("Expected NonRootMissingParent diagnostic, got %q", output)
	}
}

func TestCheckNode_ParentMissingChild(t *testing.T) {
	dt := buildSampleTree(t)

	bNode := findNode(t, dt, "a/b")
	dt.Root().removeChild(bNode)

	var ok bool
	output := captureStderr(t, func() {
		ok = CheckNode(bNode)
	})
	if ok {
		t.Error("Expected node missing from parent's child list to fail")
	}
	if !strings.Contains(output, "ParentMissingChild") {
		t.Errorf("Expected ParentMissingChild diagnostic, got %q", output)
	}
}

func TestViolationKind_String(t *testing.T) {
	if got := ViolationCountMismatch.String(); got != "CountMismatch" {
		t.Errorf("Expected CountMismatch, got %s", got)
	}
	if got := ViolationKind(-1).String(); got != "Unknown" {
		t.Errorf("Expected Unknown for out-of-range kind, got %s", got)
	}
}
