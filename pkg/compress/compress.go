// Package compress defines the byte-stream compression contract the ITP
// codec delegates to. The codec selects an entry point by CompressionType
// but treats the wire format itself as opaque: a bridge recognizes its own
// frames by a leading magic and knows how many input bytes each frame
// consumes.
package compress

import "io"

// Bridge is the compression collaborator. Implementations must be
// reentrant: the codec may be driven from multiple goroutines on
// independent inputs.
type Bridge interface {
	// Compress frames and compresses data.
	Compress(data []byte) ([]byte, error)

	// Decompress reads exactly one frame from r and returns its
	// decompressed payload. expected is the structurally required
	// payload size; bridges may use it to size buffers or to reject
	// obviously wrong frames, but the caller re-verifies the length.
	Decompress(r io.Reader, expected int) ([]byte, error)
}
