package simdops

import "github.com/ajroetker/go-highway/hwy"

// lanes returns how many float32 lanes hwy will process per vector op on
// this machine, chosen once at package init by hwy's runtime CPU dispatch.
func lanes() int {
	n := hwy.NumLanes[float32]()
	if n <= 0 {
		return 1
	}
	return n
}

// Accumulate computes a += b elementwise. hwy's Load/Store accept any
// alignment, so neither slice has to come from AlignedFloat32; it is used
// by the forward kernel and the optimizers' own state buffers, while
// Network.Update goes through AccumulateUnaligned.
func Accumulate(a, b []float32) {
	accumulate(a, b)
}

// AccumulateUnaligned computes y += b elementwise, exactly like Accumulate,
// but named separately because the minibatch gradient reduction sums
// goroutine-local gradient buffers that are not guaranteed to share the
// same alignment as the shared accumulator; hwy's Load/Store tolerate
// either case identically, but the name documents the intent at call
// sites the way the original C's vector_accumulate_unaligned did.
func AccumulateUnaligned(y, b []float32) {
	accumulate(y, b)
}

func accumulate(a, b []float32) {
	n := min(len(a), len(b))
	step := lanes()
	i := 0
	for ; i+step <= n; i += step {
		av := hwy.Load(a[i : i+step])
		bv := hwy.Load(b[i : i+step])
		hwy.Store(hwy.Add(av, bv), a[i:i+step])
	}
	for ; i < n; i++ {
		a[i] += b[i]
	}
}

// Scale computes v *= scalar elementwise.
func Scale(v []float32, scalar float32) {
	n := len(v)
	step := lanes()
	sv := hwy.Set[float32](scalar)
	i := 0
	for ; i+step <= n; i += step {
		vv := hwy.Load(v[i : i+step])
		hwy.Store(hwy.Mul(vv, sv), v[i:i+step])
	}
	for ; i < n; i++ {
		v[i] *= scalar
	}
}

// DivideByScalar computes v /= scalar elementwise.
func DivideByScalar(v []float32, scalar float32) {
	n := len(v)
	step := lanes()
	sv := hwy.Set[float32](scalar)
	i := 0
	for ; i+step <= n; i += step {
		vv := hwy.Load(v[i : i+step])
		hwy.Store(hwy.Div(vv, sv), v[i:i+step])
	}
	for ; i < n; i++ {
		v[i] /= scalar
	}
}

// Saxpy computes a += alpha*b elementwise (y = alpha*x + y in BLAS naming).
func Saxpy(a []float32, alpha float32, b []float32) {
	n := min(len(a), len(b))
	step := lanes()
	av := hwy.Set[float32](alpha)
	i := 0
	for ; i+step <= n; i += step {
		aa := hwy.Load(a[i : i+step])
		bb := hwy.Load(b[i : i+step])
		hwy.Store(hwy.FMA(av, bb, aa), a[i:i+step])
	}
	for ; i < n; i++ {
		a[i] += alpha * b[i]
	}
}

// Saxpby computes a = beta*a + alpha*b elementwise.
func Saxpby(a []float32, alpha float32, b []float32, beta float32) {
	n := min(len(a), len(b))
	step := lanes()
	av := hwy.Set[float32](alpha)
	bv := hwy.Set[float32](beta)
	i := 0
	for ; i+step <= n; i += step {
		aa := hwy.Load(a[i : i+step])
		bb := hwy.Load(b[i : i+step])
		hwy.Store(hwy.FMA(av, bb, hwy.Mul(aa, bv)), a[i:i+step])
	}
	for ; i < n; i++ {
		a[i] = beta*a[i] + alpha*b[i]
	}
}

// SquareElements computes y[i] = x[i]*x[i] elementwise.
func SquareElements(y, x []float32) {
	n := min(len(y), len(x))
	step := lanes()
	i := 0
	for ; i+step <= n; i += step {
		xv := hwy.Load(x[i : i+step])
		hwy.Store(hwy.Mul(xv, xv), y[i:i+step])
	}
	for ; i < n; i++ {
		y[i] = x[i] * x[i]
	}
}

// VectorMatrixMultiply computes y = weightᵀ·input + bias, where weight is
// stored row-major with shape [nIn, nOut] (row i holds the nOut weights
// feeding out of input unit i). This is the dense-layer forward kernel:
// each row of weight is accumulated into y scaled by the corresponding
// input element, with a fast path when that element is exactly 0 or 1 (a
// common case for one-hot or binary-masked inputs).
func VectorMatrixMultiply(weight, bias, input, y []float32, nIn, nOut int) {
	copy(y, bias[:nOut])
	for i := 0; i < nIn; i++ {
		in := input[i]
		if in == 0 {
			continue
		}
		row := weight[i*nOut : i*nOut+nOut]
		if in == 1.0 {
			Accumulate(y, row)
			continue
		}
		Saxpy(y, in, row)
	}
}

// MatrixVectorMultiply computes y[i] = Σ_j weight[i,j]·v[j] for a row-major
// matrix of shape [nRows, nCols]. This is the backward kernel that
// propagates a layer's output gradient into its input gradient: nRows is
// the downstream layer's input size, nCols its output size.
func MatrixVectorMultiply(weight, v, y []float32, nRows, nCols int) {
	step := lanes()
	for i := 0; i < nRows; i++ {
		row := weight[i*nCols : i*nCols+nCols]
		var acc float32
		j := 0
		for ; j+step <= nCols; j += step {
			rv := hwy.Load(row[j : j+step])
			vv := hwy.Load(v[j : j+step])
			acc += hwy.ReduceSum(hwy.Mul(rv, vv))
		}
		for ; j < nCols; j++ {
			acc += row[j] * v[j]
		}
		y[i] = acc
	}
}

// VectorVectorOuter computes matrix[i,j] = x[i]*y[j] for a row-major
// output of shape [nRows, nCols], skipping rows where x[i] == 0 (the
// weight-gradient fast path for sparse/one-hot activations). matrix must
// already be zeroed; callers always pass a fresh gradient buffer.
func VectorVectorOuter(x, y, matrix []float32, nRows, nCols int) {
	for i := 0; i < nRows; i++ {
		a := x[i]
		if a == 0 {
			continue
		}
		row := matrix[i*nCols : i*nCols+nCols]
		Saxpy(row, a, y[:nCols])
	}
}
