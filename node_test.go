package rowan

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func assertPanicsWith(t *testing.T, sentinel error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", sentinel)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, sentinel) {
			t.Fatalf("panic = %v, want error wrapping %v", r, sentinel)
		}
	}()
	fn()
}

// --- Construction ---

func TestNodeConstructors(t *testing.T) {
	tests := []struct {
		name  string
		node  *Node
		space Space
		class string
	}{
		{"NewNode", NewNode("a"), SpaceNone, "Node"},
		{"NewNode2D", NewNode2D("b"), Space2D, "Node2D"},
		{"NewNode3D", NewNode3D("c"), Space3D, "Node3D"},
		{"NewCanvasItem", NewCanvasItem("d", 8, 8), Space2D, "CanvasItem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.node
			if n.Space != tt.space {
				t.Errorf("Space = %v, want %v", n.Space, tt.space)
			}
			if n.Class != tt.class {
				t.Errorf("Class = %q, want %q", n.Class, tt.class)
			}
			if n.ID == 0 {
				t.Error("ID should be assigned at construction")
			}
			if !n.Visible {
				t.Error("nodes default to visible")
			}
			if n.Parent() != nil || n.InTree() || n.IsReady() || n.IsFreed() {
				t.Error("new nodes are detached, not ready, not freed")
			}
			if n.ScaleX != 1 || n.ScaleY != 1 {
				t.Error("2D scale defaults to 1")
			}
			if n.Scale != (mgl64.Vec3{1, 1, 1}) {
				t.Error("3D scale defaults to 1")
			}
		})
	}
}

func TestNodeIDsUnique(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	if a.ID == b.ID {
		t.Errorf("node IDs should be unique, both got %d", a.ID)
	}
}

// --- AddChild / RemoveChild ---

func TestAddChildBasics(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	parent.AddChild(a)
	parent.AddChild(b)

	if parent.NumChildren() != 2 {
		t.Fatalf("NumChildren = %d, want 2", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != b {
		t.Error("children must keep insertion order")
	}
	if a.Parent() != parent || b.Parent() != parent {
		t.Error("children must point back at their parent")
	}
}

func TestAddChildNilPanics(t *testing.T) {
	parent := NewNode("parent")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child")
		}
	}()
	parent.AddChild(nil)
}

func TestAddChildDuplicateParent(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")
	p1.AddChild(child)

	assertPanicsWith(t, ErrDuplicateParent, func() {
		p2.AddChild(child)
	})
	// The failed attach must leave both trees unchanged.
	if child.Parent() != p1 {
		t.Error("child must keep its original parent")
	}
	if p2.NumChildren() != 0 {
		t.Error("failed AddChild must not modify the target parent")
	}
}

func TestAddChildRejectsTreeRoot(t *testing.T) {
	treeA := NewSceneTree(TreeConfig{})
	treeB := NewSceneTree(TreeConfig{})

	assertPanicsWith(t, ErrDuplicateParent, func() {
		treeA.Root().AddChild(treeB.Root())
	})
	// Both trees keep exclusive ownership of their roots.
	if treeA.Root().NumChildren() != 0 {
		t.Error("failed AddChild must not modify the target tree")
	}
	if treeB.Root().Parent() != nil || treeB.Root().Tree() != treeB {
		t.Error("the rejected root must stay owned by its own tree")
	}
}

func TestAddChildCycles(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(b)
	b.AddChild(c)

	tests := []struct {
		name          string
		parent, child *Node
	}{
		{"self", a, a},
		{"direct ancestor", b, a},
		{"transitive ancestor", c, a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPanicsWith(t, ErrCyclicParenting, func() {
				tt.parent.AddChild(tt.child)
			})
		})
	}
	// Structure unchanged after every failed attempt.
	if a.NumChildren() != 1 || b.NumChildren() != 1 || c.NumChildren() != 0 {
		t.Error("failed cyclic attach must leave the tree unchanged")
	}
	if a.Parent() != nil || b.Parent() != a || c.Parent() != b {
		t.Error("failed cyclic attach must leave parent pointers unchanged")
	}
}

func TestRemoveChild(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	parent.RemoveChild(b)
	if parent.NumChildren() != 2 {
		t.Fatalf("NumChildren = %d, want 2", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != c {
		t.Error("remaining children must keep their relative order")
	}
	if b.Parent() != nil {
		t.Error("removed child must be detached")
	}
	if b.IsFreed() {
		t.Error("RemoveChild must not free the child")
	}
}

func TestRemoveChildNotAChild(t *testing.T) {
	parent := NewNode("parent")
	stranger := NewNode("stranger")
	assertPanicsWith(t, ErrNotAChild, func() {
		parent.RemoveChild(stranger)
	})
}

func TestReparent(t *testing.T) {
	p1 := NewNode("p1")
	p2 := NewNode("p2")
	child := NewNode("child")
	p1.AddChild(child)

	child.Reparent(p2)
	if child.Parent() != p2 {
		t.Error("Reparent must move the child to the new parent")
	}
	if p1.NumChildren() != 0 {
		t.Error("Reparent must detach from the old parent")
	}
}

// --- Naming ---

func TestSiblingNameDeDuplication(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("enemy")
	b := NewNode("enemy")
	c := NewNode("enemy")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	if a.Name() != "enemy" {
		t.Errorf("first child = %q, want enemy", a.Name())
	}
	if b.Name() != "enemy_2" {
		t.Errorf("second child = %q, want enemy_2", b.Name())
	}
	if c.Name() != "enemy_3" {
		t.Errorf("third child = %q, want enemy_3", c.Name())
	}
}

func TestSetNameEmitsRenamed(t *testing.T) {
	n := NewNode("old")
	var got string
	_, _ = n.Connect(SignalRenamed, func(args ...any) {
		got = args[0].(string)
	})
	n.SetName("new")
	if n.Name() != "new" || got != "new" {
		t.Errorf("name = %q, renamed arg = %q, want new/new", n.Name(), got)
	}

	got = ""
	n.SetName("new") // unchanged; no signal
	if got != "" {
		t.Error("renaming to the same name must not emit renamed")
	}
}

func TestSetNameDeDuplicatesAgainstSiblings(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	parent.AddChild(a)
	parent.AddChild(b)
	b.SetName("a")
	if b.Name() != "a_2" {
		t.Errorf("renamed sibling = %q, want a_2", b.Name())
	}
}

// --- Path lookup ---

func TestFindByPath(t *testing.T) {
	root := NewNode("root")
	world := NewNode("world")
	player := NewNode2D("player")
	weapon := NewNode2D("weapon")
	root.AddChild(world)
	world.AddChild(player)
	player.AddChild(weapon)

	tests := []struct {
		path string
		want *Node
	}{
		{"world", world},
		{"world/player", player},
		{"world/player/weapon", weapon},
		{"world//player", player},  // empty segments are skipped
		{"./world/player", player}, // "." segments are skipped
		{"world/missing", nil},
		{"nope", nil},
	}
	for _, tt := range tests {
		if got := root.FindByPath(tt.path); got != tt.want {
			t.Errorf("FindByPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPathFindByPathRoundTrip(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	root.AddChild(a)
	a.AddChild(b)
	b.AddChild(c)

	for _, n := range []*Node{a, b, c} {
		path := n.Path()
		if got := root.FindByPath(path[len("root/"):]); got != n {
			t.Errorf("FindByPath(Path()) for %q returned %v, want the node itself", n.Name(), got)
		}
	}
	if root.Path() != "root" {
		t.Errorf("root.Path() = %q, want root", root.Path())
	}
	if c.Path() != "root/a/b/c" {
		t.Errorf("c.Path() = %q, want root/a/b/c", c.Path())
	}
}

// --- Tree attachment lifecycle ---

func TestEnterTreeTopDown(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(b)
	b.AddChild(c)

	var order []string
	hook := func(n *Node) { order = append(order, n.Name()) }
	a.OnEnterTree = hook
	b.OnEnterTree = hook
	c.OnEnterTree = hook

	var signals []string
	_, _ = b.Connect(SignalTreeEntered, func(args ...any) {
		signals = append(signals, "b")
	})

	tree.Root().AddChild(a)
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("enter order = %v, want top-down [a b c]", order)
	}
	if len(signals) != 1 {
		t.Errorf("tree_entered fired %d times on b, want 1", len(signals))
	}
	for _, n := range []*Node{a, b, c} {
		if n.Tree() != tree {
			t.Errorf("%q should be attached to the tree", n.Name())
		}
	}
}

func TestExitTreeBottomUp(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(b)
	b.AddChild(c)
	tree.Root().AddChild(a)

	var order []string
	hook := func(n *Node) { order = append(order, n.Name()) }
	a.OnExitTree = hook
	b.OnExitTree = hook
	c.OnExitTree = hook

	tree.Root().RemoveChild(a)
	if len(order) != 3 || order[0] != "c" || order[1] != "b" || order[2] != "a" {
		t.Errorf("exit order = %v, want bottom-up [c b a]", order)
	}
	for _, n := range []*Node{a, b, c} {
		if n.InTree() {
			t.Errorf("%q should be detached from the tree", n.Name())
		}
		if n.IsFreed() {
			t.Errorf("%q must survive detachment", n.Name())
		}
	}
}

func TestDetachedSubtreeEntersOnAttach(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	sub := NewNode("sub")
	leaf := NewNode("leaf")
	sub.AddChild(leaf)
	if sub.InTree() || leaf.InTree() {
		t.Fatal("detached subtree must not be in a tree")
	}
	tree.Root().AddChild(sub)
	if !sub.InTree() || !leaf.InTree() {
		t.Error("attaching a subtree must attach every descendant")
	}
}

// --- Destruction ---

func TestFreeCascadesChildrenFirst(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leafA := NewNode("leafA")
	leafB := NewNode("leafB")
	root.AddChild(mid)
	mid.AddChild(leafA)
	mid.AddChild(leafB)

	var order []string
	hook := func(n *Node) { order = append(order, n.Name()) }
	root.OnFree = hook
	mid.OnFree = hook
	leafA.OnFree = hook
	leafB.OnFree = hook

	root.Free()
	want := []string{"leafA", "leafB", "mid", "root"}
	if len(order) != len(want) {
		t.Fatalf("free order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("free order[%d] = %q, want %q (children before parent)", i, order[i], want[i])
		}
	}
	for _, n := range []*Node{root, mid, leafA, leafB} {
		if !n.IsFreed() {
			t.Errorf("%q should be freed", n.Name())
		}
		if n.Parent() != nil || n.NumChildren() != 0 || n.InTree() {
			t.Error("freed nodes must hold no references")
		}
	}
}

func TestFreeDetachesFromParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	child.Free()
	if parent.NumChildren() != 0 {
		t.Error("freeing a child must remove it from its parent")
	}
	if parent.IsFreed() {
		t.Error("freeing a child must not free the parent")
	}
}

func TestFreeIsIdempotent(t *testing.T) {
	n := NewNode("n")
	n.Free()
	n.Free() // second free is a no-op
	if !n.IsFreed() {
		t.Error("node should stay freed")
	}
}

func TestFreeAttachedNodeExitsTreeFirst(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("n")
	tree.Root().AddChild(n)

	exited := false
	n.OnExitTree = func(*Node) {
		exited = true
		if n.IsFreed() {
			t.Error("exit-tree must fire before the node is freed")
		}
	}
	n.Free()
	if !exited {
		t.Error("freeing an attached node must fire exit-tree")
	}
	if tree.Root().NumChildren() != 0 {
		t.Error("freed node must leave the tree")
	}
}
