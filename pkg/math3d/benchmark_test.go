package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := ScaleUniform(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := PlotPerspective(60, 1, 200).Mul(Translate(V3(1, 2, 3)))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkViewProjection(b *testing.B) {
	eye := V3(0, 0, 10)
	w := eye.Normalize()
	u := Up().Cross(w).Normalize()
	v := w.Cross(u).Normalize()
	view := View(u, v, w, eye)
	proj := PlotPerspective(60, 1, 200)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
