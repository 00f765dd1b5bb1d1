package rowan

import "math"

// identityAffine is the identity 2D affine matrix.
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// localAffine computes the node's local affine matrix from its 2D transform
// properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func localAffine(n *Node) [6]float64 {
	sx := n.ScaleX
	sy := n.ScaleY

	sin, cos := math.Sincos(n.Rotation)

	var tanSkewX, tanSkewY float64
	if n.SkewX != 0 {
		tanSkewX = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		tanSkewY = math.Tan(n.SkewY)
	}

	// After Scale * Translate(-pivot), then Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := n.PivotX
	py := n.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return [6]float64{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// --- Lazy global transform ---

// GlobalTransform2D returns the node's composed global affine matrix:
// parent global * local, with a missing or non-2D parent treated as
// identity. The cached value is recomputed lazily on the first read after
// the node was dirtied; the read clears the dirty bit for this node only
// (descendants stay dirty until themselves read). Subtrees nobody queries
// are never recomputed.
func (n *Node) GlobalTransform2D() [6]float64 {
	if n.globalDirty {
		parent := identityAffine
		if n.parent != nil && n.parent.Space == Space2D {
			parent = n.parent.GlobalTransform2D()
		}
		n.global2D = multiplyAffine(parent, localAffine(n))
		n.globalDirty = false
	}
	return n.global2D
}

// GlobalPosition2D returns the node's origin in global 2D space.
func (n *Node) GlobalPosition2D() Vec2 {
	g := n.GlobalTransform2D()
	return Vec2{g[4], g[5]}
}

// --- Transform property setters ---

// SetPosition2D sets the node's local X and Y and dirties its subtree.
func (n *Node) SetPosition2D(x, y float64) {
	n.X = x
	n.Y = y
	markSubtreeDirty(n)
}

// SetScale2D sets the node's ScaleX and ScaleY and dirties its subtree.
func (n *Node) SetScale2D(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	markSubtreeDirty(n)
}

// SetRotation2D sets the node's rotation (in radians) and dirties its subtree.
func (n *Node) SetRotation2D(r float64) {
	n.Rotation = r
	markSubtreeDirty(n)
}

// SetSkew2D sets the node's SkewX and SkewY and dirties its subtree.
func (n *Node) SetSkew2D(sx, sy float64) {
	n.SkewX = sx
	n.SkewY = sy
	markSubtreeDirty(n)
}

// SetPivot2D sets the node's PivotX and PivotY and dirties its subtree.
func (n *Node) SetPivot2D(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	markSubtreeDirty(n)
}

// MarkTransformDirty invalidates the subtree's cached global transforms.
// Useful after bulk-setting transform fields directly.
func (n *Node) MarkTransformDirty() {
	markSubtreeDirty(n)
}

// --- Coordinate conversion ---

// GlobalToLocal2D converts a global 2D point to this node's local space.
func (n *Node) GlobalToLocal2D(gx, gy float64) (lx, ly float64) {
	inv := invertAffine(n.GlobalTransform2D())
	return transformPoint(inv, gx, gy)
}

// LocalToGlobal2D converts a local 2D point to global 2D space.
func (n *Node) LocalToGlobal2D(lx, ly float64) (gx, gy float64) {
	return transformPoint(n.GlobalTransform2D(), lx, ly)
}
