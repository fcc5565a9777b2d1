// Package zbridge is a compress.Bridge over zstd. It is the reference
// bridge used by the CLI and the test suite; frames are self-describing:
// a 4-byte magic, the compressed length, the raw length, then one zstd
// frame.
package zbridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/Aureole-Suite/Cradle/pkg/compress"
)

const magic = "CZSD"

// header: magic | u32 compressed size | u32 raw size
const headerSize = 12

var ErrBadFrame = errors.New("zbridge: bad frame header")

type Bridge struct{}

var _ compress.Bridge = Bridge{}

var (
	zenc = mustEncoder()
	zdec = mustDecoder()
)

func mustEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

func (Bridge) Compress(data []byte) ([]byte, error) {
	body := zenc.EncodeAll(data, nil)
	out := make([]byte, headerSize, headerSize+len(body))
	copy(out, magic)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[8:], uint32(len(data)))
	return append(out, body...), nil
}

func (Bridge) Decompress(r io.Reader, expected int) ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("zbridge: reading frame header: %w", err)
	}
	if string(hdr[:4]) != magic {
		return nil, ErrBadFrame
	}
	compressed := binary.LittleEndian.Uint32(hdr[4:])
	raw := binary.LittleEndian.Uint32(hdr[8:])

	body := make([]byte, compressed)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("zbridge: reading frame body: %w", err)
	}
	out, err := zdec.DecodeAll(body, make([]byte, 0, raw))
	if err != nil {
		return nil, fmt.Errorf("zbridge: decoding frame: %w", err)
	}
	if len(out) != int(raw) {
		return nil, fmt.Errorf("zbridge: frame declared %d bytes, decoded %d", raw, len(out))
	}
	return out, nil
}
