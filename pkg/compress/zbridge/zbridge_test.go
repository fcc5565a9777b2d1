package zbridge

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	raw := make([]byte, 4096)
	rng.Read(raw)

	var b Bridge
	frame, err := b.Compress(raw)
	require.NoError(t, err)
	assert.Equal(t, magic, string(frame[:4]))

	got, err := b.Decompress(bytes.NewReader(frame), len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

// TestSequentialFrames checks that frames are self-delimiting: two frames
// written back to back decode one at a time from the same reader, which
// the Bz_2 payload mode depends on.
func TestSequentialFrames(t *testing.T) {
	var b Bridge
	f1, err := b.Compress([]byte("first frame"))
	require.NoError(t, err)
	f2, err := b.Compress([]byte("second frame"))
	require.NoError(t, err)

	r := bytes.NewReader(append(f1, f2...))
	got, err := b.Decompress(r, 11)
	require.NoError(t, err)
	assert.Equal(t, []byte("first frame"), got)
	got, err = b.Decompress(r, 12)
	require.NoError(t, err)
	assert.Equal(t, []byte("second frame"), got)
}

func TestBadMagic(t *testing.T) {
	var b Bridge
	_, err := b.Decompress(bytes.NewReader(make([]byte, 32)), 4)
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestTruncatedFrame(t *testing.T) {
	var b Bridge
	frame, err := b.Compress([]byte("some payload"))
	require.NoError(t, err)
	_, err = b.Decompress(bytes.NewReader(frame[:len(frame)-3]), 12)
	assert.Error(t, err)
}
