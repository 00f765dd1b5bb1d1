package rowan

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// localMat4 computes the node's local 3D matrix: Translate * Rotate * Scale.
func localMat4(n *Node) mgl64.Mat4 {
	t := mgl64.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := n.Quat.Mat4()
	s := mgl64.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// GlobalTransform3D returns the node's composed global matrix:
// parent global * local, with a missing or non-3D parent treated as
// identity. Same lazy dirty scheme as the 2D side: recomputed on first read
// after a dirty, and the read clears this node's flag only.
func (n *Node) GlobalTransform3D() mgl64.Mat4 {
	if n.globalDirty {
		parent := mgl64.Ident4()
		if n.parent != nil && n.parent.Space == Space3D {
			parent = n.parent.GlobalTransform3D()
		}
		n.global3D = parent.Mul4(localMat4(n))
		n.globalDirty = false
	}
	return n.global3D
}

// GlobalPosition3D returns the node's origin in global 3D space.
func (n *Node) GlobalPosition3D() mgl64.Vec3 {
	g := n.GlobalTransform3D()
	return mgl64.Vec3{g.At(0, 3), g.At(1, 3), g.At(2, 3)}
}

// --- Transform property setters ---

// SetPosition3D sets the node's local position and dirties its subtree.
func (n *Node) SetPosition3D(p mgl64.Vec3) {
	n.Position = p
	markSubtreeDirty(n)
}

// SetQuat sets the node's local rotation quaternion and dirties its subtree.
func (n *Node) SetQuat(q mgl64.Quat) {
	n.Quat = q
	markSubtreeDirty(n)
}

// SetScale3D sets the node's local scale and dirties its subtree.
func (n *Node) SetScale3D(s mgl64.Vec3) {
	n.Scale = s
	markSubtreeDirty(n)
}

// RotationDegrees returns the local rotation as XYZ Euler angles in degrees.
func (n *Node) RotationDegrees() mgl64.Vec3 {
	x, y, z := eulerFromQuat(n.Quat)
	return mgl64.Vec3{mgl64.RadToDeg(x), mgl64.RadToDeg(y), mgl64.RadToDeg(z)}
}

// SetRotationDegrees sets the local rotation from XYZ Euler angles in
// degrees, applied X then Y then Z.
func (n *Node) SetRotationDegrees(deg mgl64.Vec3) {
	n.Quat = quatFromEuler(
		mgl64.DegToRad(deg.X()),
		mgl64.DegToRad(deg.Y()),
		mgl64.DegToRad(deg.Z()),
	)
	markSubtreeDirty(n)
}

// quatFromEuler builds a rotation quaternion from XYZ Euler angles in
// radians, applied X then Y then Z.
func quatFromEuler(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(x, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(z, mgl64.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}

// eulerFromQuat extracts XYZ Euler angles (radians) from a quaternion built
// with quatFromEuler. Clamps the Y term at the gimbal poles.
func eulerFromQuat(q mgl64.Quat) (x, y, z float64) {
	q = q.Normalize()
	w := q.W
	i, j, k := q.V.X(), q.V.Y(), q.V.Z()

	// ZYX decomposition of R = Rz * Ry * Rx.
	sinY := 2 * (w*j - k*i)
	if sinY > 1 {
		sinY = 1
	} else if sinY < -1 {
		sinY = -1
	}
	y = math.Asin(sinY)
	x = math.Atan2(2*(w*i+j*k), 1-2*(i*i+j*j))
	z = math.Atan2(2*(w*k+i*j), 1-2*(j*j+k*k))
	return x, y, z
}

// --- Coordinate conversion ---

// LocalToGlobal3D converts a local 3D point to global 3D space.
func (n *Node) LocalToGlobal3D(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, n.GlobalTransform3D())
}

// GlobalToLocal3D converts a global 3D point to this node's local space.
func (n *Node) GlobalToLocal3D(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, n.GlobalTransform3D().Inv())
}
