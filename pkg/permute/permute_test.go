package permute

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// TestSwizzleBlocks checks that a 4×4 buffer with 2×2 blocks reads out
// block by block.
func TestSwizzleBlocks(t *testing.T) {
	got := seq(16)
	Swizzle(got, 4, 4, 2, 2)
	assert.Equal(t, []int{
		0, 1, 4, 5,
		2, 3, 6, 7,
		8, 9, 12, 13,
		10, 11, 14, 15,
	}, got)
}

// TestSwizzleRoundtrip checks Unswizzle inverts Swizzle for non-square
// blocks and images.
func TestSwizzleRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]int, 32*48)
	for i := range buf {
		buf[i] = rng.Int()
	}
	want := append([]int(nil), buf...)

	Swizzle(buf, 48, 32, 8, 16)
	assert.NotEqual(t, want, buf)
	Unswizzle(buf, 48, 32, 8, 16)
	assert.Equal(t, want, buf)
}

// TestMortonSquare pins the Z-order curve on a 4×4 buffer.
func TestMortonSquare(t *testing.T) {
	got := seq(16)
	Morton(got, 4, 4)
	assert.Equal(t, []int{
		0, 4, 1, 5,
		8, 12, 9, 13,
		2, 6, 3, 7,
		10, 14, 11, 15,
	}, got)
}

// TestMortonWide checks that the wider dimension keeps contributing bits
// after the narrower one runs out.
func TestMortonWide(t *testing.T) {
	got := seq(16)
	Morton(got, 2, 8)
	assert.Equal(t, []int{0, 8, 1, 9, 2, 10, 3, 11, 4, 12, 5, 13, 6, 14, 7, 15}, got)
}

func TestMortonTall(t *testing.T) {
	got := seq(16)
	Morton(got, 8, 2)
	assert.Equal(t, []int{0, 2, 1, 3, 4, 6, 5, 7, 8, 10, 9, 11, 12, 14, 13, 15}, got)
}

func TestMortonRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	buf := make([]byte, 64*16)
	rng.Read(buf)
	want := append([]byte(nil), buf...)

	Morton(buf, 16, 64)
	Unmorton(buf, 16, 64)
	assert.Equal(t, want, buf)
}

func TestMortonRejectsNonPow2(t *testing.T) {
	require.Panics(t, func() { Morton(make([]int, 12), 3, 4) })
}

func TestSwizzleRejectsIndivisible(t *testing.T) {
	require.Panics(t, func() { Swizzle(make([]int, 12), 3, 4, 2, 2) })
	require.Panics(t, func() { Swizzle(make([]int, 15), 4, 4, 2, 2) })
}

func TestIsPow2(t *testing.T) {
	assert.True(t, IsPow2(1))
	assert.True(t, IsPow2(256))
	assert.False(t, IsPow2(0))
	assert.False(t, IsPow2(-4))
	assert.False(t, IsPow2(48))
}
