package rowan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Built-in lifecycle signals, declared on every node at construction.
const (
	SignalTreeEntered = "tree_entered"
	SignalTreeExited  = "tree_exited"
	SignalReady       = "ready"
	SignalRenamed     = "renamed"
)

// nodeIDCounter is a plain counter (no atomic — rowan is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node types to avoid interface dispatch on the hot path; the Space
// tag selects which transform fields are live, and concrete behavior is
// composed through the nil-by-default callback fields.
type Node struct {
	Object

	// Identity
	ID    uint32
	Space Space

	// Hierarchy. parent is a weak back-reference: lookup only, never used
	// to extend lifetime or free through.
	parent   *Node
	children []*Node
	name     string

	// Tree attachment and lifecycle
	tree  *SceneTree
	ready bool
	freed bool

	// Processing
	ProcessMode    ProcessMode
	physicsEnabled bool

	// 2D local transform (Space2D)
	X, Y         float64
	Rotation     float64
	ScaleX       float64
	ScaleY       float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// 3D local transform (Space3D)
	Position mgl64.Vec3
	Quat     mgl64.Quat
	Scale    mgl64.Vec3

	// Cached global transform, recomputed lazily on read.
	global2D    [6]float64
	global3D    mgl64.Mat4
	globalDirty bool

	// Visibility (honored by the canvas bridge and render collection)
	Visible bool

	// CanvasItem bridge state, nil unless the node is a canvas item.
	canvas *canvasState

	// Lifecycle callbacks (nil by default; zero cost when unused)
	OnEnterTree      func(n *Node)
	OnReady          func(n *Node)
	OnProcess        func(n *Node, delta float64)
	OnPhysicsProcess func(n *Node, delta float64)
	OnExitTree       func(n *Node)
	OnFree           func(n *Node)
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Quat = mgl64.QuatIdent()
	n.Scale = mgl64.Vec3{1, 1, 1}
	n.Visible = true
	n.globalDirty = true
	n.AddSignal(SignalTreeEntered)
	n.AddSignal(SignalTreeExited)
	n.AddSignal(SignalReady)
	n.AddSignal(SignalRenamed)
}

// NewNode creates a plain tree node with no spatial transform.
func NewNode(name string) *Node {
	n := &Node{name: name, Space: SpaceNone}
	n.Class = "Node"
	nodeDefaults(n)
	return n
}

// NewNode2D creates a node with a 2D affine transform.
func NewNode2D(name string) *Node {
	n := &Node{name: name, Space: Space2D}
	n.Class = "Node2D"
	nodeDefaults(n)
	return n
}

// NewNode3D creates a node with a 3D TRS transform.
func NewNode3D(name string) *Node {
	n := &Node{name: name, Space: Space3D}
	n.Class = "Node3D"
	nodeDefaults(n)
	return n
}

// Name returns the node's display name, unique among its siblings.
func (n *Node) Name() string {
	return n.name
}

// SetName renames the node, de-duplicating against siblings, and emits the
// renamed signal if the effective name changed.
func (n *Node) SetName(name string) {
	if n.parent != nil {
		name = uniqueSiblingName(n.parent, n, name)
	}
	if name == n.name {
		return
	}
	n.name = name
	_ = n.Emit(SignalRenamed, name)
}

// SetVisible shows or hides the node. Hidden canvas items (and their
// subtrees) are skipped by render collection and hit testing. Canvas items
// emit visibility_changed when the value actually changes.
func (n *Node) SetVisible(v bool) {
	if n.Visible == v {
		return
	}
	n.Visible = v
	if n.HasSignal(SignalVisibilityChanged) {
		_ = n.Emit(SignalVisibilityChanged, v)
	}
}

// SetPhysicsProcess enables or disables the fixed-step physics pass for
// this node.
func (n *Node) SetPhysicsProcess(enabled bool) {
	n.physicsEnabled = enabled
}

// PhysicsProcessing reports whether the node is flagged for the fixed-step pass.
func (n *Node) PhysicsProcessing() bool {
	return n.physicsEnabled
}

// Tree returns the SceneTree the node is attached to, or nil when detached.
func (n *Node) Tree() *SceneTree {
	return n.tree
}

// InTree reports whether the node is attached under a tree-connected ancestor.
func (n *Node) InTree() bool {
	return n.tree != nil
}

// IsReady reports whether the node's one-time ready callback has fired.
func (n *Node) IsReady() bool {
	return n.ready
}

// IsFreed reports whether the node has been destroyed. Freed is terminal.
func (n *Node) IsFreed() bool {
	return n.freed
}

// --- Tree manipulation ---

// AddChild takes ownership of child and appends it to the child list.
// The child's name is de-duplicated against its new siblings. If the
// receiver is attached to a tree, the new subtree enters it top-down.
//
// Panics with ErrDuplicateParent if child already has a parent, and with
// ErrCyclicParenting if child is the receiver or one of its ancestors; in
// both cases the tree is left unchanged.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("rowan: cannot add nil child")
	}
	if globalDebug {
		debugCheckFreed(n, "AddChild (parent)")
		debugCheckFreed(child, "AddChild (child)")
	}
	if child.parent != nil {
		panic(fmt.Errorf("%w: %q (move it with Reparent)", ErrDuplicateParent, child.name))
	}
	// A parentless node with a tree is a tree's root; it is owned by that
	// tree, not available for adoption.
	if child.tree != nil {
		panic(fmt.Errorf("%w: %q is the root of a tree", ErrDuplicateParent, child.name))
	}
	if isAncestor(child, n) {
		panic(fmt.Errorf("%w: %q is an ancestor of %q", ErrCyclicParenting, child.name, n.name))
	}
	n.checkStructuralEdit("AddChild")
	child.name = uniqueSiblingName(n, child, child.name)
	child.parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	if n.tree != nil {
		child.propagateEnterTree(n.tree)
	}
}

// RemoveChild releases ownership of child; the caller owns it afterwards.
// If the receiver is attached to a tree, the subtree exits it bottom-up
// before detaching. Panics with ErrNotAChild if child is not an owned child.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckFreed(n, "RemoveChild (parent)")
	}
	if child == nil || child.parent != n {
		panic(fmt.Errorf("%w: RemoveChild on %q", ErrNotAChild, n.name))
	}
	n.checkStructuralEdit("RemoveChild")
	if child.tree != nil {
		child.propagateExitTree()
	}
	n.removeChildByPtr(child)
	child.parent = nil
	markSubtreeDirty(child)
}

// Reparent moves the node from its current parent (if any) to newParent.
func (n *Node) Reparent(newParent *Node) {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	newParent.AddChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated
// by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Parent returns the owning parent, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// FindByPath resolves a slash-delimited name path relative to this node.
// Returns nil if any segment is missing; lookup misses are not errors.
func (n *Node) FindByPath(path string) *Node {
	cur := n
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		var next *Node
		for _, c := range cur.children {
			if c.name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Path returns the slash-delimited name path from the tree root (or the
// topmost detached ancestor) down to this node.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// --- Lifecycle propagation ---

// propagateEnterTree attaches a subtree to tree, firing enter-tree top-down.
func (n *Node) propagateEnterTree(tree *SceneTree) {
	n.tree = tree
	if n.OnEnterTree != nil {
		n.OnEnterTree(n)
	}
	_ = n.Emit(SignalTreeEntered)
	tree.logLifecycle("enter_tree", n)
	for _, c := range n.children {
		c.propagateEnterTree(tree)
	}
}

// propagateExitTree detaches a subtree from its tree, firing exit-tree
// bottom-up (children before parent).
func (n *Node) propagateExitTree() {
	for _, c := range n.children {
		c.propagateExitTree()
	}
	if n.OnExitTree != nil {
		n.OnExitTree(n)
	}
	_ = n.Emit(SignalTreeExited)
	if n.tree != nil {
		n.tree.logLifecycle("exit_tree", n)
	}
	n.tree = nil
}

// --- Destruction ---

// Free destroys the node and every descendant, depth-first, children before
// parent. Freed is terminal and irreversible. If the owning tree is mid
// traversal the free is queued and applied at the frame boundary, so
// destroying a node from inside a callback is always legal.
func (n *Node) Free() {
	if n.freed {
		return
	}
	if n.tree != nil && n.tree.locked {
		n.tree.queueFree(n)
		return
	}
	if n.parent != nil {
		n.parent.RemoveChild(n)
	} else if n.tree != nil {
		// Tree root being torn down: exit the tree without a parent detach.
		n.propagateExitTree()
	}
	n.freeRecursive()
}

// QueueFree defers destruction to the owning tree's post-traversal queue.
// Falls back to an immediate Free for detached nodes.
func (n *Node) QueueFree() {
	if n.freed {
		return
	}
	if n.tree != nil {
		n.tree.queueFree(n)
		return
	}
	n.Free()
}

// freeRecursive destroys children before the node itself and severs every
// reference so a freed subtree cannot retain live objects.
func (n *Node) freeRecursive() {
	for _, c := range n.children {
		c.parent = nil
		c.freeRecursive()
	}
	n.children = nil
	if n.OnFree != nil {
		n.OnFree(n)
	}
	n.freed = true
	n.ready = false
	n.ID = 0
	n.parent = nil
	n.tree = nil
	n.clearSignals()
	if n.canvas != nil {
		n.canvas.release()
		n.canvas = nil
	}
	n.OnEnterTree = nil
	n.OnReady = nil
	n.OnProcess = nil
	n.OnPhysicsProcess = nil
	n.OnExitTree = nil
	n.OnFree = nil
}

// --- Helpers ---

// checkStructuralEdit panics if the owning tree is mid-traversal.
// Structural edits during traversal must go through SceneTree.Defer or
// QueueFree; mutating the list being iterated is the canonical bug this
// design rules out.
func (n *Node) checkStructuralEdit(op string) {
	if n.tree != nil && n.tree.locked {
		panic(fmt.Sprintf("rowan: %s during tree traversal on %q; use Defer or QueueFree", op, n.name))
	}
}

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// uniqueSiblingName returns name, suffixed "_2", "_3", ... until it
// collides with no sibling of node under parent.
func uniqueSiblingName(parent, node *Node, name string) string {
	if name == "" {
		name = "node"
	}
	taken := func(candidate string) bool {
		for _, c := range parent.children {
			if c != node && c.name == candidate {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// markSubtreeDirty invalidates the cached global transform of node and all
// its descendants. A descendant's global transform depends on every
// ancestor, so one local change dirties the whole subtree.
func markSubtreeDirty(node *Node) {
	node.globalDirty = true
	if node.canvas != nil {
		node.canvas.placementDirty = true
	}
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
