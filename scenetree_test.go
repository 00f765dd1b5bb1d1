package rowan

import (
	"testing"
)

func TestNewSceneTreeDefaults(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	if tree.Root() == nil || !tree.Root().InTree() {
		t.Fatal("the root node must exist and be attached")
	}
	if tree.Current() != nil {
		t.Error("no current scene until ChangeScene")
	}
	if tree.ZScale() != 1 {
		t.Errorf("ZScale = %v, want 1", tree.ZScale())
	}
	if tree.Frame() != 0 {
		t.Errorf("Frame = %d, want 0 before stepping", tree.Frame())
	}
}

// --- Ready and process ---

func TestReadyFiresOnceBeforeFirstProcess(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("n")
	var events []string
	n.OnReady = func(*Node) { events = append(events, "ready") }
	n.OnProcess = func(*Node, float64) { events = append(events, "process") }
	var readySignals int
	_, _ = n.Connect(SignalReady, func(args ...any) { readySignals++ })
	tree.Root().AddChild(n)

	tree.Step(0.016)
	tree.Step(0.016)

	want := []string{"ready", "process", "process"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
	if readySignals != 1 {
		t.Errorf("ready signal fired %d times, want 1", readySignals)
	}
	if !n.IsReady() {
		t.Error("node should report ready after its first frame")
	}
}

func TestProcessOrderDeterministic(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	a := NewNode("a")
	b := NewNode("b")
	a1 := NewNode("a1")
	a2 := NewNode("a2")
	tree.Root().AddChild(a)
	tree.Root().AddChild(b)
	a.AddChild(a1)
	a.AddChild(a2)

	var order []string
	hook := func(n *Node, _ float64) { order = append(order, n.Name()) }
	for _, n := range []*Node{a, b, a1, a2} {
		n.OnProcess = hook
	}

	for i := 0; i < 3; i++ {
		order = nil
		tree.Step(0.016)
		want := []string{"a", "a1", "a2", "b"}
		if len(order) != len(want) {
			t.Fatalf("frame %d order = %v, want %v", i, order, want)
		}
		for j := range want {
			if order[j] != want[j] {
				t.Errorf("frame %d order[%d] = %q, want %q (pre-order, child array order)", i, j, order[j], want[j])
			}
		}
	}
}

func TestFrameCounter(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	tree.Step(0.016)
	tree.Step(0.016)
	if tree.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", tree.Frame())
	}
}

// --- Pause and process modes ---

func TestPauseAndProcessModes(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	counts := map[string]int{}
	mk := func(name string, mode ProcessMode) *Node {
		n := NewNode(name)
		n.ProcessMode = mode
		n.OnProcess = func(n *Node, _ float64) { counts[n.Name()]++ }
		tree.Root().AddChild(n)
		return n
	}
	mk("pausable", ProcessModePausable)
	mk("always", ProcessModeAlways)
	mk("disabled", ProcessModeDisabled)

	tree.Step(0.016)
	tree.Paused = true
	tree.Step(0.016)
	tree.Step(0.016)
	tree.Paused = false
	tree.Step(0.016)

	if counts["pausable"] != 2 {
		t.Errorf("pausable ran %d times, want 2 (unpaused frames only)", counts["pausable"])
	}
	if counts["always"] != 4 {
		t.Errorf("always ran %d times, want 4", counts["always"])
	}
	if counts["disabled"] != 0 {
		t.Errorf("disabled ran %d times, want 0", counts["disabled"])
	}
}

func TestReadyFiresEvenWhenPaused(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	tree.Paused = true
	n := NewNode("n")
	ready := false
	n.OnReady = func(*Node) { ready = true }
	tree.Root().AddChild(n)
	tree.Step(0.016)
	if !ready {
		t.Error("ready is one-time initialization and must fire while paused")
	}
}

// --- Physics ---

func TestPhysicsFixedStepAccumulation(t *testing.T) {
	tree := NewSceneTree(TreeConfig{PhysicsStep: 0.01})
	n := NewNode("n")
	n.SetPhysicsProcess(true)
	var steps int
	var lastDelta float64
	n.OnPhysicsProcess = func(_ *Node, delta float64) {
		steps++
		lastDelta = delta
	}
	tree.Root().AddChild(n)

	tree.Step(0.025) // 2 steps, 0.005 left over
	if steps != 2 {
		t.Fatalf("physics steps = %d, want 2", steps)
	}
	if lastDelta != 0.01 {
		t.Errorf("physics delta = %v, want the fixed step 0.01", lastDelta)
	}

	tree.Step(0.005) // accumulator reaches 0.01
	if steps != 3 {
		t.Errorf("physics steps = %d, want 3 after the accumulator fills", steps)
	}
}

func TestPhysicsRequiresOptIn(t *testing.T) {
	tree := NewSceneTree(TreeConfig{PhysicsStep: 0.01})
	n := NewNode("n")
	called := false
	n.OnPhysicsProcess = func(*Node, float64) { called = true }
	tree.Root().AddChild(n)
	tree.Step(0.1)
	if called {
		t.Error("physics callbacks must not run without SetPhysicsProcess(true)")
	}
}

// --- Structural edits during traversal ---

func TestStructuralEditDuringTraversalPanics(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("n")
	tree.Root().AddChild(n)

	var recovered any
	n.OnProcess = func(n *Node, _ float64) {
		defer func() { recovered = recover() }()
		n.AddChild(NewNode("illegal"))
	}
	tree.Step(0.016)
	if recovered == nil {
		t.Error("AddChild during traversal must panic; use Defer")
	}
}

func TestDeferAppliesAtFrameBoundary(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("n")
	tree.Root().AddChild(n)

	n.OnProcess = func(n *Node, _ float64) {
		if n.NumChildren() == 0 {
			tree.Defer(func() {
				n.AddChild(NewNode("spawned"))
			})
			if n.NumChildren() != 0 {
				t.Error("a deferred child must not be visible within the frame that deferred it")
			}
		}
	}

	tree.Step(0.016)
	if n.NumChildren() != 1 {
		t.Fatalf("deferred AddChild should have applied at the frame boundary, children = %d", n.NumChildren())
	}
	tree.Step(0.016)
	if !n.ChildAt(0).IsReady() {
		t.Error("the spawned child should be processed on the following frame")
	}
}

func TestQueueFreeDuringTraversal(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("doomed")
	tree.Root().AddChild(n)
	n.OnProcess = func(n *Node, _ float64) {
		n.QueueFree()
		if n.IsFreed() {
			t.Error("QueueFree must not free within the traversal")
		}
	}
	tree.Step(0.016)
	if !n.IsFreed() {
		t.Error("queued free must apply at the frame boundary")
	}
	if tree.Root().NumChildren() != 0 {
		t.Error("freed node must leave the tree")
	}
}

func TestFreeDuringTraversalIsDeferred(t *testing.T) {
	// A direct Free from inside a callback routes through the queue, so
	// destroying any node mid-frame is always legal.
	tree := NewSceneTree(TreeConfig{})
	a := NewNode("a")
	b := NewNode("b")
	tree.Root().AddChild(a)
	tree.Root().AddChild(b)

	bProcessed := false
	a.OnProcess = func(*Node, float64) { b.Free() }
	b.OnProcess = func(*Node, float64) { bProcessed = true }

	tree.Step(0.016)
	if !b.IsFreed() {
		t.Error("node freed mid-frame must be freed by the frame boundary")
	}
	_ = bProcessed // b may or may not run this frame; only the final state is contractual

	tree.Step(0.016)
	if tree.Root().NumChildren() != 1 {
		t.Errorf("children after free = %d, want 1", tree.Root().NumChildren())
	}
}

func TestQueueFreeIsDeDuplicated(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	n := NewNode("n")
	tree.Root().AddChild(n)
	frees := 0
	n.OnFree = func(*Node) { frees++ }
	n.OnProcess = func(n *Node, _ float64) {
		n.QueueFree()
		n.QueueFree()
		n.Free()
	}
	tree.Step(0.016)
	if frees != 1 {
		t.Errorf("node freed %d times, want 1", frees)
	}
}

func TestFlushOutsideTraversal(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	ran := false
	tree.Defer(func() { ran = true })
	tree.Flush()
	if !ran {
		t.Error("Flush must drain the deferred queue")
	}
}

// --- Scene switching ---

func TestChangeScene(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	first := NewNode("first")
	tree.ChangeScene(first)
	if tree.Current() != first || !first.InTree() {
		t.Fatal("ChangeScene must attach the scene under the root")
	}

	second := NewNode("second")
	tree.ChangeScene(second)
	if !first.IsFreed() {
		t.Error("the previous scene must be freed")
	}
	if tree.Current() != second || !second.InTree() {
		t.Error("the new scene must be current and attached")
	}
	if tree.Root().NumChildren() != 1 {
		t.Errorf("root children = %d, want 1", tree.Root().NumChildren())
	}
}

func TestChangeSceneDuringTraversalDeferred(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	first := NewNode("first")
	tree.ChangeScene(first)
	next := NewNode("next")
	first.OnProcess = func(*Node, float64) {
		tree.ChangeScene(next)
		if tree.Current() != first {
			t.Error("the scene swap must not be visible mid-frame")
		}
	}
	tree.Step(0.016)
	if tree.Current() != next || !first.IsFreed() {
		t.Error("the swap must apply at the frame boundary")
	}
}

// --- Teardown ---

func TestSceneTreeFree(t *testing.T) {
	tree := NewSceneTree(TreeConfig{})
	a := NewNode("a")
	b := NewNode("b")
	tree.Root().AddChild(a)
	a.AddChild(b)

	var order []string
	hook := func(n *Node) { order = append(order, n.Name()) }
	a.OnFree = hook
	b.OnFree = hook

	tree.Free()
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("free order = %v, want [b a]", order)
	}
	if !tree.Root().IsFreed() {
		t.Error("the root must be freed with the tree")
	}
}
