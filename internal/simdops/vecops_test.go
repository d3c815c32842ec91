package simdops

import "testing"

func approxEqual(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-4
}

func TestAlignedFloat32IsAligned(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 100, 1024} {
		buf := AlignedFloat32(n)
		if len(buf) != n {
			t.Fatalf("len = %d, want %d", len(buf), n)
		}
		if n > 0 && !IsAligned(buf) {
			t.Errorf("AlignedFloat32(%d) not aligned", n)
		}
	}
}

func TestAccumulate(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := []float32{9, 8, 7, 6, 5, 4, 3, 2, 1}
	Accumulate(a, b)
	for _, v := range a {
		if v != 10 {
			t.Errorf("got %v, want all 10", a)
			break
		}
	}
}

func TestScaleAndDivide(t *testing.T) {
	v := []float32{1, 2, 3, 4}
	Scale(v, 2)
	want := []float32{2, 4, 6, 8}
	for i := range v {
		if v[i] != want[i] {
			t.Fatalf("Scale: got %v, want %v", v, want)
		}
	}
	DivideByScalar(v, 2)
	for i, w := range []float32{1, 2, 3, 4} {
		if v[i] != w {
			t.Fatalf("DivideByScalar: got %v, want %v", v, []float32{1, 2, 3, 4})
		}
	}
}

func TestSaxpy(t *testing.T) {
	a := []float32{1, 1, 1, 1, 1}
	b := []float32{2, 2, 2, 2, 2}
	Saxpy(a, 3, b)
	for _, v := range a {
		if !approxEqual(v, 7) {
			t.Fatalf("Saxpy: got %v, want all 7", a)
		}
	}
}

func TestSaxpby(t *testing.T) {
	a := []float32{1, 1, 1, 1}
	b := []float32{2, 2, 2, 2}
	Saxpby(a, 0.5, b, 0.25)
	for _, v := range a {
		if !approxEqual(v, 1.25) {
			t.Fatalf("Saxpby: got %v, want all 1.25", a)
		}
	}
}

func TestSquareElements(t *testing.T) {
	x := []float32{1, 2, 3, 4, 5}
	y := make([]float32, len(x))
	SquareElements(y, x)
	want := []float32{1, 4, 9, 16, 25}
	for i := range y {
		if y[i] != want[i] {
			t.Fatalf("got %v, want %v", y, want)
		}
	}
}

func TestVectorMatrixMultiply(t *testing.T) {
	// weight [2,3] row-major: row0 feeds all 3 outputs from input0, etc.
	weight := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	bias := []float32{0, 0, 0}
	input := []float32{1, 1}
	y := make([]float32, 3)
	VectorMatrixMultiply(weight, bias, input, y, 2, 3)
	want := []float32{5, 7, 9}
	for i := range y {
		if !approxEqual(y[i], want[i]) {
			t.Fatalf("got %v, want %v", y, want)
		}
	}
}

func TestVectorMatrixMultiplyZeroInputSkipsRow(t *testing.T) {
	weight := []float32{1, 1, 4, 4}
	bias := []float32{1, 1}
	input := []float32{0, 2}
	y := make([]float32, 2)
	VectorMatrixMultiply(weight, bias, input, y, 2, 2)
	want := []float32{9, 9}
	for i := range y {
		if !approxEqual(y[i], want[i]) {
			t.Fatalf("got %v, want %v", y, want)
		}
	}
}

func TestMatrixVectorMultiply(t *testing.T) {
	weight := []float32{
		1, 0,
		0, 1,
		1, 1,
	}
	v := []float32{2, 3}
	y := make([]float32, 3)
	MatrixVectorMultiply(weight, v, y, 3, 2)
	want := []float32{2, 3, 5}
	for i := range y {
		if !approxEqual(y[i], want[i]) {
			t.Fatalf("got %v, want %v", y, want)
		}
	}
}

func TestVectorVectorOuter(t *testing.T) {
	x := []float32{2, 0, 3}
	y := []float32{1, 2}
	matrix := make([]float32, 3*2)
	VectorVectorOuter(x, y, matrix, 3, 2)
	want := []float32{2, 4, 0, 0, 3, 6}
	for i := range matrix {
		if !approxEqual(matrix[i], want[i]) {
			t.Fatalf("got %v, want %v", matrix, want)
		}
	}
}
