package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromRows builds a matrix from its four rows.
// Row-major literals read naturally next to the math they implement.
func FromRows(r0, r1, r2, r3 Vec4) Mat4 {
	return Mat4{
		r0.X, r1.X, r2.X, r3.X,
		r0.Y, r1.Y, r2.Y, r3.Y,
		r0.Z, r1.Z, r2.Z, r3.Z,
		r0.W, r1.W, r2.W, r3.W,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// FromQuat creates a rotation matrix from a unit quaternion (x, y, z, w).
func FromQuat(x, y, z, w float64) Mat4 {
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return FromRows(
		V4(1-2*(yy+zz), 2*(xy-wz), 2*(xz+wy), 0),
		V4(2*(xy+wz), 1-2*(xx+zz), 2*(yz-wx), 0),
		V4(2*(xz-wy), 2*(yz+wx), 1-2*(xx+yy), 0),
		V4(0, 0, 0, 1),
	)
}

// View builds a world-to-camera matrix from an orthonormal basis and the eye.
// w points from the target back toward the eye, so visible points have
// negative camera-space z.
func View(u, v, w, eye Vec3) Mat4 {
	return FromRows(
		V4(u.X, u.Y, u.Z, -u.Dot(eye)),
		V4(v.X, v.Y, v.Z, -v.Dot(eye)),
		V4(w.X, w.Y, w.Z, -w.Dot(eye)),
		V4(0, 0, 0, 1),
	)
}

// PlotPerspective creates the plotting projection.
// fovDeg is the field of view in degrees. Projected x/y are scaled so that
// the edge of the field of view lands at ±1000 units; the depth row leaves a
// positive pre-divide z only for points past the near plane.
func PlotPerspective(fovDeg, near, far float64) Mat4 {
	scale := 1000 / math.Tan(fovDeg*math.Pi/180/2)
	f1 := -far / (far - near)
	f2 := -far * near / (far - near)

	return FromRows(
		V4(scale, 0, 0, 0),
		V4(0, scale, 0, 0),
		V4(0, 0, f2, -1),
		V4(0, 0, f1, 0),
	)
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Det3 returns the determinant of the upper-left 3x3 block. A negative
// value means the transform mirrors, which reverses triangle winding.
func (m Mat4) Det3() float64 {
	return m.Get(0, 0)*(m.Get(1, 1)*m.Get(2, 2)-m.Get(1, 2)*m.Get(2, 1)) -
		m.Get(0, 1)*(m.Get(1, 0)*m.Get(2, 2)-m.Get(1, 2)*m.Get(2, 0)) +
		m.Get(0, 2)*(m.Get(1, 0)*m.Get(2, 1)-m.Get(1, 1)*m.Get(2, 0))
}
