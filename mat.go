package b2d

import "github.com/go-gl/mathgl/mgl64"

// Effective mass matrices are kept in mgl64 column-major form.

func newMat22(col1, col2 Vector) mgl64.Mat2 {
	return mgl64.Mat2{col1.X, col1.Y, col2.X, col2.Y}
}

func newMat33(col1, col2, col3 mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		col1[0], col1[1], col1[2],
		col2[0], col2[1], col2[2],
		col3[0], col3[1], col3[2],
	}
}

func mulMat22(m mgl64.Mat2, v Vector) Vector {
	r := m.Mul2x1(mgl64.Vec2{v.X, v.Y})
	return Vector{r[0], r[1]}
}

// solve22 solves m * x = b. A singular matrix yields the zero vector.
func solve22(m mgl64.Mat2, b Vector) Vector {
	return mulMat22(m.Inv(), b)
}

// solve33 solves m * x = b. A singular matrix yields the zero vector.
func solve33(m mgl64.Mat3, b mgl64.Vec3) mgl64.Vec3 {
	return m.Inv().Mul3x1(b)
}

// solve33Upper solves only the upper 2x2 block of m.
func solve33Upper(m mgl64.Mat3, b Vector) Vector {
	k := mgl64.Mat2{m[0], m[1], m[3], m[4]}
	return solve22(k, b)
}
