// Package permute implements the invertible index permutations the ITP
// format stores pixel data under: block swizzles and Z-order (morton)
// curves. Each permutation is applied through a scratch buffer as
// dst[i] = src[perm[i]] rather than by pairwise swapping, since these
// permutations are not involutions in general.
package permute

// iterSwizzle yields the index permutation for a swizzle operation: the
// buffer is viewed as an a×b×c×d array and the two middle axes trade
// places. The result is a permutation of 0 .. a*b*c*d.
func iterSwizzle(a, b, c, d int) []int {
	perm := make([]int, 0, a*b*c*d)
	for ia := 0; ia < a; ia++ {
		for ib := 0; ib < b; ib++ {
			for ic := 0; ic < c; ic++ {
				for id := 0; id < d; id++ {
					perm = append(perm, ia*b*c*d+ib*d+ic*b*d+id)
				}
			}
		}
	}
	return perm
}

// iterMorton yields the Z-order permutation of an h×w buffer. Both
// dimensions must be powers of two but need not be equal; the wider
// dimension keeps contributing bits after the narrower one runs out.
func iterMorton(h, w int) []int {
	if w&(w-1) != 0 || h&(h-1) != 0 {
		panic("permute: morton dimensions must be powers of two")
	}
	wbits := trailingZeros(w)
	hbits := trailingZeros(h)
	bits := wbits
	if hbits > bits {
		bits = hbits
	}
	perm := make([]int, w*h)
	for i := range perm {
		a := i
		x, y := 0, 0
		for b := 0; b < bits; b++ {
			if b < hbits {
				y |= (a & 1) << b
				a >>= 1
			}
			if b < wbits {
				x |= (a & 1) << b
				a >>= 1
			}
		}
		perm[i] = y*w + x
	}
	return perm
}

func trailingZeros(v int) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// apply moves slice[perm[i]] into position i for every i.
func apply[T any](slice []T, perm []int) {
	scratch := make([]T, len(slice))
	for to, from := range perm {
		scratch[to] = slice[from]
	}
	copy(slice, scratch)
}

// applyInverse moves slice[i] into position perm[i] for every i,
// undoing apply with the same permutation.
func applyInverse[T any](slice []T, perm []int) {
	scratch := make([]T, len(slice))
	for from, to := range perm {
		scratch[to] = slice[from]
	}
	copy(slice, scratch)
}

// Swizzle reorders an h×w buffer from row-major into block-major order,
// with ch×cw blocks.
func Swizzle[T any](slice []T, h, w, ch, cw int) {
	checkSwizzle(len(slice), h, w, ch, cw)
	apply(slice, iterSwizzle(h/ch, w/cw, ch, cw))
}

// Unswizzle inverts Swizzle with the same arguments.
func Unswizzle[T any](slice []T, h, w, ch, cw int) {
	checkSwizzle(len(slice), h, w, ch, cw)
	applyInverse(slice, iterSwizzle(h/ch, w/cw, ch, cw))
}

func checkSwizzle(n, h, w, ch, cw int) {
	if n != w*h {
		panic("permute: buffer does not match dimensions")
	}
	if w%cw != 0 || h%ch != 0 {
		panic("permute: dimensions not divisible by block size")
	}
}

// Morton reorders an h×w row-major buffer into Z-order.
func Morton[T any](slice []T, h, w int) {
	if len(slice) != w*h {
		panic("permute: buffer does not match dimensions")
	}
	apply(slice, iterMorton(h, w))
}

// Unmorton inverts Morton with the same arguments.
func Unmorton[T any](slice []T, h, w int) {
	if len(slice) != w*h {
		panic("permute: buffer does not match dimensions")
	}
	applyInverse(slice, iterMorton(h, w))
}

// IsPow2 reports whether v is a positive power of two.
func IsPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}
