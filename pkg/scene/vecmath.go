package scene

import "math"

// Vec3 and Mat4 are the minimal vector/matrix types the transform pipeline
// needs. The original engine leans on Sony's Vectormath library; nothing
// in the example corpus ships an equivalent 3D math package (gonum targets
// linear algebra, not affine transform composition), so this is a small,
// justified stdlib-only implementation — see DESIGN.md.
type Vec3 struct{ X, Y, Z float32 }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

// Quat is a unit quaternion used for node rotation.
type Quat struct{ X, Y, Z, W float32 }

// EulerToQuat converts Euler angles (degrees, XYZ order) to a quaternion,
// matching dmVMath::EulerToQuat's call site in gui.cpp's
// UpdateLocalTransform.
func EulerToQuat(euler Vec3) Quat {
	const deg2rad = math.Pi / 180
	hx := float64(euler.X) * deg2rad * 0.5
	hy := float64(euler.Y) * deg2rad * 0.5
	hz := float64(euler.Z) * deg2rad * 0.5
	sx, cx := math.Sincos(hx)
	sy, cy := math.Sincos(hy)
	sz, cz := math.Sincos(hz)

	return Quat{
		X: float32(sx*cy*cz - cx*sy*sz),
		Y: float32(cx*sy*cz + sx*cy*sz),
		Z: float32(cx*cy*sz - sx*sy*cz),
		W: float32(cx*cy*cz + sx*sy*sz),
	}
}

func normalizeQuat(q Quat) Quat {
	n := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if n == 0 {
		return Quat{W: 1}
	}
	return Quat{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Mat4 is a column-major 4x4 matrix, mirroring Vectormath's Matrix4 layout
// closely enough that CalculateNodeTransform's composition order ports
// directly: m = T * R * S.
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func scaleMat(s Vec3) Mat4 {
	m := Identity()
	m[0] = s.X
	m[5] = s.Y
	m[10] = s.Z
	return m
}

func rotationMat(q Quat) Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m := Identity()
	m[0] = 1 - 2*(y*y+z*z)
	m[1] = 2 * (x*y + z*w)
	m[2] = 2 * (x*z - y*w)
	m[4] = 2 * (x*y - z*w)
	m[5] = 1 - 2*(x*x+z*z)
	m[6] = 2 * (y*z + x*w)
	m[8] = 2 * (x*z + y*w)
	m[9] = 2 * (y*z - x*w)
	m[10] = 1 - 2*(x*x+y*y)
	return m
}

func translationMat(t Vec3) Mat4 {
	m := Identity()
	m[12] = t.X
	m[13] = t.Y
	m[14] = t.Z
	return m
}

// Mul multiplies two column-major 4x4 matrices, a*b, matching the
// left-to-right composition order used throughout gui.cpp (rotation *
// scale, then translation applied via setTranslation).
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Translation returns the matrix's translation column.
func (a Mat4) Translation() Vec3 {
	return Vec3{a[12], a[13], a[14]}
}

// WithTranslation replaces the translation column in place, matching
// Matrix4::setTranslation used after composing rotation*scale.
func (a Mat4) WithTranslation(t Vec3) Mat4 {
	a[12], a[13], a[14] = t.X, t.Y, t.Z
	return a
}

// TransformPoint applies the matrix to a point (w=1).
func (a Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: a[0]*p.X + a[4]*p.Y + a[8]*p.Z + a[12],
		Y: a[1]*p.X + a[5]*p.Y + a[9]*p.Z + a[13],
		Z: a[2]*p.X + a[6]*p.Y + a[10]*p.Z + a[14],
	}
}
