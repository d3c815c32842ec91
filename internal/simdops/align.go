// Package simdops implements the vectorized primitives used throughout the
// network and optimizer packages: accumulation, scaling, and the three
// matrix/vector kernels that make up the forward and backward pass. It is
// built on top of github.com/ajroetker/go-highway/hwy, which picks the best
// available instruction set (AVX2, AVX-512, NEON, ...) at process start and
// falls back to a portable scalar path everywhere else.
package simdops

import "unsafe"

// AlignSize is the byte alignment requested for parameter, gradient, and
// activation buffers. 64 bytes covers AVX-512's widest register without
// over-aligning on platforms that can't use it; hwy itself tolerates
// smaller alignments by falling back to unaligned loads/stores, but keeping
// buffers aligned lets the accumulate/saxpy kernels use the fast path.
const AlignSize = 64

// AlignedFloat32 returns a []float32 of length n whose first element is
// guaranteed to start at an address that is a multiple of AlignSize. This
// is the portable-Go equivalent of simd_malloc/_mm_malloc: over-allocate
// and slice off the unaligned prefix.
func AlignedFloat32(n int) []float32 {
	if n <= 0 {
		return nil
	}
	const elemSize = int(unsafe.Sizeof(float32(0)))
	lanes := AlignSize / elemSize
	buf := make([]float32, n+lanes)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	offset := 0
	if rem := addr % AlignSize; rem != 0 {
		offset = (AlignSize - int(rem)) / elemSize
	}
	return buf[offset : offset+n : offset+n]
}

// IsAligned reports whether v's backing array starts on an AlignSize
// boundary. Used only in tests; production code never branches on it since
// hwy dispatches to unaligned loads transparently.
func IsAligned(v []float32) bool {
	if len(v) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&v[0]))%AlignSize == 0
}
