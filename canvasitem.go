package rowan

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// SignalVisibilityChanged is declared on canvas items and emitted by
// SetVisible when the visible flag actually changes.
const SignalVisibilityChanged = "visibility_changed"

// drawHandleCounter issues stable drawable handles for the render backend.
var drawHandleCounter uint64

func nextDrawHandle() uint64 {
	drawHandleCounter++
	return drawHandleCounter
}

// canvasState is the 2D->3D bridge state carried by canvas item nodes: one
// 2D node maps to one 3D drawable. Geometry moves and content repaints are
// independent costs, tracked by separate dirty flags.
type canvasState struct {
	handle      uint64
	size        Vec2
	zIndex      int
	zAsRelative bool
	modulate    Color

	// Painted surface, regenerated when contentDirty. Allocated lazily so
	// pure-math use of the bridge never touches the GPU.
	surface      *ebiten.Image
	contentDirty bool

	// Cached 3D placement, derived from the 2D global transform.
	placement      mgl64.Vec3
	placementDirty bool

	// OnDraw paints the node's visual content into the surface.
	onDraw func(n *Node, surface *ebiten.Image)
}

func (c *canvasState) release() {
	if c.surface != nil {
		c.surface.Deallocate()
		c.surface = nil
	}
	c.onDraw = nil
}

// NewCanvasItem creates a 2D node bridged into the 3D rendering space as a
// positioned, Z-ordered, texture-mapped plane of the given pixel size.
func NewCanvasItem(name string, width, height float64) *Node {
	n := &Node{name: name, Space: Space2D}
	n.Class = "CanvasItem"
	nodeDefaults(n)
	n.AddSignal(SignalVisibilityChanged)
	n.canvas = &canvasState{
		handle:         nextDrawHandle(),
		size:           Vec2{width, height},
		modulate:       ColorWhite,
		contentDirty:   true,
		placementDirty: true,
	}
	return n
}

// IsCanvasItem reports whether the node carries bridge state.
func (n *Node) IsCanvasItem() bool {
	return n.canvas != nil
}

// DrawHandle returns the stable drawable handle the render backend keys on.
// Zero for non-canvas nodes.
func (n *Node) DrawHandle() uint64 {
	if n.canvas == nil {
		return 0
	}
	return n.canvas.handle
}

// Size returns the 2D size of the canvas item in pixels.
func (n *Node) Size() Vec2 {
	if n.canvas == nil {
		return Vec2{}
	}
	return n.canvas.size
}

// SetSize resizes the canvas item. Marks both content (the surface must be
// reallocated) and placement (the plane center moves) dirty.
func (n *Node) SetSize(width, height float64) {
	c := n.mustCanvas("SetSize")
	if c.size.X == width && c.size.Y == height {
		return
	}
	c.size = Vec2{width, height}
	if c.surface != nil {
		c.surface.Deallocate()
		c.surface = nil
	}
	c.contentDirty = true
	c.placementDirty = true
}

// ZIndex returns the node's declared Z-ordering index.
func (n *Node) ZIndex() int {
	if n.canvas == nil {
		return 0
	}
	return n.canvas.zIndex
}

// SetZIndex sets the Z-ordering index. Higher indices draw on top; ties are
// broken by tree order (later siblings on top).
func (n *Node) SetZIndex(z int) {
	c := n.mustCanvas("SetZIndex")
	if c.zIndex == z {
		return
	}
	c.zIndex = z
	markZPlacementDirty(n)
}

// ZAsRelative reports whether the Z index is treated as relative to the
// nearest canvas ancestor's effective Z.
func (n *Node) ZAsRelative() bool {
	return n.canvas != nil && n.canvas.zAsRelative
}

// SetZAsRelative toggles relative Z ordering.
func (n *Node) SetZAsRelative(rel bool) {
	c := n.mustCanvas("SetZAsRelative")
	if c.zAsRelative == rel {
		return
	}
	c.zAsRelative = rel
	markZPlacementDirty(n)
}

// markZPlacementDirty invalidates the cached placement of node and of every
// descendant canvas item whose effective Z inherits from it. A canvas
// descendant with an absolute Z index restarts the Z chain, so its subtree
// is unaffected and the walk stops there.
func markZPlacementDirty(node *Node) {
	if node.canvas != nil {
		node.canvas.placementDirty = true
	}
	for _, c := range node.children {
		if c.canvas != nil && !c.canvas.zAsRelative {
			continue
		}
		markZPlacementDirty(c)
	}
}

// EffectiveZ resolves the node's Z index, accumulating ancestor canvas
// indices when Z is relative.
func (n *Node) EffectiveZ() int {
	if n.canvas == nil {
		return 0
	}
	z := n.canvas.zIndex
	if n.canvas.zAsRelative {
		for p := n.parent; p != nil; p = p.parent {
			if p.canvas != nil {
				z += p.EffectiveZ()
				break
			}
		}
	}
	return z
}

// Modulate returns the canvas item's tint color.
func (n *Node) Modulate() Color {
	if n.canvas == nil {
		return ColorWhite
	}
	return n.canvas.modulate
}

// SetModulate tints the canvas item without forcing a surface repaint;
// modulation is applied by the backend at submit time.
func (n *Node) SetModulate(c Color) {
	n.mustCanvas("SetModulate").modulate = c
}

// SetOnDraw installs the paint callback and marks the content dirty.
func (n *Node) SetOnDraw(fn func(n *Node, surface *ebiten.Image)) {
	c := n.mustCanvas("SetOnDraw")
	c.onDraw = fn
	c.contentDirty = true
}

// MarkContentDirty flags the visual surface for regeneration on the next
// render collection. Independent from transform dirtiness: moving a node
// does not repaint it, repainting does not move it.
func (n *Node) MarkContentDirty() {
	n.mustCanvas("MarkContentDirty").contentDirty = true
}

// ContentDirty reports whether the surface is pending regeneration.
func (n *Node) ContentDirty() bool {
	return n.canvas != nil && n.canvas.contentDirty
}

// regenerateSurface allocates the surface if needed and repaints it through
// the OnDraw callback. Returns whether the surface changed and must be
// re-uploaded by the backend.
func (n *Node) regenerateSurface() bool {
	c := n.canvas
	if !c.contentDirty {
		return false
	}
	c.contentDirty = false
	w, h := int(c.size.X), int(c.size.Y)
	if w <= 0 || h <= 0 {
		return false
	}
	if c.surface == nil {
		c.surface = ebiten.NewImage(w, h)
	} else {
		c.surface.Clear()
	}
	if c.onDraw != nil {
		c.onDraw(n, c.surface)
	}
	return true
}

func (n *Node) mustCanvas(op string) *canvasState {
	if n.canvas == nil {
		panic("rowan: " + op + " on non-canvas node " + n.name)
	}
	return n.canvas
}

// --- 2D -> 3D coordinate conversion ---
//
// 2D space: origin top-left, Y down, pixel units. 3D space: origin center,
// Y up, world units. A canvas item becomes a plane whose center sits at the
// converted position of its 2D origin, at a depth monotonic in paint order.

// canvasZScale returns the tree's Z depth scale, or 1 for detached nodes.
func (n *Node) canvasZScale() float64 {
	if n.tree != nil {
		return n.tree.zScale
	}
	return 1
}

// ToWorld3D converts a point in the node's local 2D space to 3D world space:
//
//	world.x =  local.x + size.x/2
//	world.y = -(local.y + size.y/2)
//	world.z =  effectiveZ * zScale
func (n *Node) ToWorld3D(p Vec2) mgl64.Vec3 {
	c := n.mustCanvas("ToWorld3D")
	return mgl64.Vec3{
		p.X + c.size.X/2,
		-(p.Y + c.size.Y/2),
		float64(n.EffectiveZ()) * n.canvasZScale(),
	}
}

// ToLocal2D is the exact inverse of ToWorld3D: recovers the 2D position
// that would place an item of this size at the given 3D world point.
func (n *Node) ToLocal2D(w mgl64.Vec3) Vec2 {
	c := n.mustCanvas("ToLocal2D")
	return Vec2{
		w.X() - c.size.X/2,
		-w.Y() - c.size.Y/2,
	}
}

// Placement returns the cached 3D position of the drawable plane's center,
// derived from the node's global 2D transform. Recomputed lazily when the
// node's transform or Z ordering was dirtied.
func (n *Node) Placement() mgl64.Vec3 {
	c := n.mustCanvas("Placement")
	if c.placementDirty || n.globalDirty {
		g := n.GlobalTransform2D()
		cx, cy := transformPoint(g, c.size.X/2, c.size.Y/2)
		c.placement = mgl64.Vec3{cx, -cy, float64(n.EffectiveZ()) * n.canvasZScale()}
		c.placementDirty = false
	}
	return c.placement
}

// WorldMatrix returns the composed world transform handed to the render
// backend: the 2D global affine embedded in 3D with the Y axis flipped and
// the plane centered at Placement. Plane-local coordinates span
// [-size/2, +size/2] in both axes.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	g := n.GlobalTransform2D()
	p := n.Placement()
	a, b, c, d := g[0], g[1], g[2], g[3]
	// Column-major Mat4.
	return mgl64.Mat4{
		a, -b, 0, 0,
		-c, d, 0, 0,
		0, 0, 1, 0,
		p.X(), p.Y(), p.Z(), 1,
	}
}

// HitTest converts a 3D world point on the node's plane back to local 2D
// space and reports whether it falls inside the node's bounds. A world
// point maps to global 2D as (x, -y); the node's composed 2D transform
// then takes it local.
func (n *Node) HitTest(w mgl64.Vec3) (Vec2, bool) {
	c := n.mustCanvas("HitTest")
	lx, ly := n.GlobalToLocal2D(w.X(), -w.Y())
	inside := lx >= 0 && lx <= c.size.X && ly >= 0 && ly <= c.size.Y
	return Vec2{lx, ly}, inside
}
