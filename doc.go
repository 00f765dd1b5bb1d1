// Package rowan is the scene-graph runtime behind the Rowan editor: the
// hierarchical node system that models every game object (2D or 3D),
// propagates transforms, dispatches typed events through per-object
// signals, and exposes a declarative property-reflection surface so
// generic editor UI can inspect and edit any node without per-type code.
//
// # Nodes and the tree
//
// Every object is a [Node], created with a typed constructor — [NewNode],
// [NewNode2D], [NewNode3D], [NewCanvasItem] — and owned by at most one
// parent. A [SceneTree] owns the root and drives the per-frame traversal:
//
//	tree := rowan.NewSceneTree(rowan.TreeConfig{})
//	player := rowan.NewNode2D("player")
//	player.OnProcess = func(n *rowan.Node, delta float64) {
//		n.SetPosition2D(n.X+100*delta, n.Y)
//	}
//	tree.Root().AddChild(player)
//	tree.Step(1.0 / 60.0)
//
// Lifecycle callbacks (OnEnterTree, OnReady, OnProcess, OnPhysicsProcess,
// OnExitTree) are plain nil-by-default fields; concrete behavior is
// composed, not inherited. Structural edits during a traversal go through
// [SceneTree.Defer] or [Node.QueueFree] and apply at the frame boundary.
//
// # Transforms
//
// 2D nodes carry an affine transform (top-left origin, Y down, pixels);
// 3D nodes carry a TRS transform (centered origin, Y up). A node's global
// transform is cached and recomputed lazily: changing a local transform
// dirties the subtree, and the first read after that recomputes the chain.
//
// # The 2D -> 3D bridge
//
// Canvas items ([NewCanvasItem]) express 2D content as positioned,
// Z-ordered planes in the shared 3D rendering space. [SceneTree.Render]
// collects visible items in paint order and hands them to a
// [RenderBackend] as composed world matrices plus painted surfaces.
//
// # Signals and properties
//
// Every node is an [Object] with named signal channels (ordered,
// re-entrancy-safe pub/sub) and a per-class property registry enabling
// name-based get/set, inspector enumeration, and subtree [Snapshot]
// round-trips.
package rowan
