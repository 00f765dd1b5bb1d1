package rowan

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// DrawItem is what the core hands the render backend for one drawable: a
// composed world transform, a stable handle, a Z/order key, and a dirty
// flag telling the backend the visual surface must be re-uploaded. The
// backend turns these into pixels; it never mutates the scene graph.
type DrawItem struct {
	// Handle is stable for the life of the canvas item.
	Handle uint64

	// Transform maps plane-local coordinates (spanning -size/2..+size/2,
	// Y up) into 3D world space.
	Transform mgl64.Mat4

	// Size of the plane in 2D pixels; the surface has the same dimensions.
	Size Vec2

	// Order is the item's effective Z index. Items are submitted in paint
	// order: ascending Order, ties broken by tree order (later siblings
	// draw on top).
	Order int

	// SurfaceDirty is true when the surface was regenerated this frame and
	// must be re-uploaded.
	SurfaceDirty bool

	// Surface is the item's painted pixels. May be nil for zero-sized items.
	Surface *ebiten.Image

	// Modulate is the tint to apply at composite time.
	Modulate Color
}

// RenderBackend consumes draw items in paint order each frame.
type RenderBackend interface {
	Submit(items []DrawItem)
}

// Render collects every visible canvas item into paint order and submits
// the batch to the backend. Dirty surfaces are regenerated during
// collection; geometry and content dirtiness are tracked separately, so a
// moved item is not repainted and a repainted item is not re-placed.
func (s *SceneTree) Render(backend RenderBackend) {
	s.drawBuf = s.drawBuf[:0]
	s.collectDrawItems(s.root)
	sortDrawItems(s.drawBuf)
	backend.Submit(s.drawBuf)
}

// collectDrawItems walks the tree in child order, appending one item per
// visible canvas node. An invisible node prunes its whole subtree. Items
// are appended in tree order; the stable sort keeps that order within each
// Z level, giving later siblings the top of the tie.
func (s *SceneTree) collectDrawItems(n *Node) {
	if n.freed || !n.Visible {
		return
	}
	if n.canvas != nil {
		dirty := n.regenerateSurface()
		s.drawBuf = append(s.drawBuf, DrawItem{
			Handle:       n.canvas.handle,
			Transform:    n.WorldMatrix(),
			Size:         n.canvas.size,
			Order:        n.EffectiveZ(),
			SurfaceDirty: dirty,
			Surface:      n.canvas.surface,
			Modulate:     n.canvas.modulate,
		})
	}
	for _, c := range n.children {
		s.collectDrawItems(c)
	}
}

// sortDrawItems orders items by ascending Order with tree-order ties kept
// stable. Insertion sort: zero allocations, stable, and optimal for the
// typical nearly-sorted case (O(n) when already in paint order).
func sortDrawItems(items []DrawItem) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].Order > key.Order {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}

// --- Ray picking ---

// PickAt routes a pointer ray into the canvas layer: it intersects the ray
// with each visible canvas item's plane, inverse-maps the hit point to the
// item's local 2D space, and returns the topmost item containing it (by
// effective Z, then tree order), along with the local hit position.
// Returns nil when nothing is hit; a miss is not an error.
func (s *SceneTree) PickAt(origin, dir mgl64.Vec3) (*Node, Vec2) {
	var (
		best      *Node
		bestLocal Vec2
		bestOrder int
		bestTree  int
	)
	treeOrder := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.freed || !n.Visible {
			return
		}
		if n.canvas != nil {
			treeOrder++
			planeZ := float64(n.EffectiveZ()) * s.zScale
			if point, ok := rayPlaneZ(origin, dir, planeZ); ok {
				if local, inside := n.HitTest(point); inside {
					z := n.EffectiveZ()
					if best == nil || z > bestOrder || (z == bestOrder && treeOrder > bestTree) {
						best = n
						bestLocal = local
						bestOrder = z
						bestTree = treeOrder
					}
				}
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s.root)
	return best, bestLocal
}

// rayPlaneZ intersects a ray with the plane z = planeZ. A ray parallel to
// the plane only hits when it already lies in it.
func rayPlaneZ(origin, dir mgl64.Vec3, planeZ float64) (mgl64.Vec3, bool) {
	dz := dir.Z()
	if dz > -1e-12 && dz < 1e-12 {
		if origin.Z() == planeZ {
			return origin, true
		}
		return mgl64.Vec3{}, false
	}
	t := (planeZ - origin.Z()) / dz
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}

// --- Reference backend ---

// EbitenBackend is a minimal reference RenderBackend that composites draw
// items onto an ebiten image. The 3D space is projected orthographically:
// world X maps to screen X and world Y (up) to screen Y (down), with depth
// already resolved by submit order.
type EbitenBackend struct {
	Target *ebiten.Image
}

// Submit draws each item in order onto the target.
func (b *EbitenBackend) Submit(items []DrawItem) {
	if b.Target == nil {
		return
	}
	for i := range items {
		item := &items[i]
		if item.Surface == nil {
			continue
		}
		var op ebiten.DrawImageOptions
		op.GeoM = geoMFromItem(item)
		op.ColorScale.Scale(
			float32(item.Modulate.R),
			float32(item.Modulate.G),
			float32(item.Modulate.B),
			float32(item.Modulate.A),
		)
		b.Target.DrawImage(item.Surface, &op)
	}
}

// geoMFromItem recovers the screen-space affine transform for a surface
// from the item's world matrix. The orthographic projection undoes the
// bridge's Y flip, so the result is the item's original 2D global
// transform.
func geoMFromItem(item *DrawItem) ebiten.GeoM {
	m := item.Transform
	a := m.At(0, 0)
	b := -m.At(1, 0)
	c := -m.At(0, 1)
	d := m.At(1, 1)
	cx, cy := item.Size.X/2, item.Size.Y/2
	tx := m.At(0, 3) - (a*cx + c*cy)
	ty := -m.At(1, 3) - (b*cx + d*cy)

	var g ebiten.GeoM
	g.SetElement(0, 0, a)
	g.SetElement(0, 1, c)
	g.SetElement(0, 2, tx)
	g.SetElement(1, 0, b)
	g.SetElement(1, 1, d)
	g.SetElement(1, 2, ty)
	return g
}
