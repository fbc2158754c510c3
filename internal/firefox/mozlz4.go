package firefox

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

const mozLz4HeaderSize = 12 // 8 magic + 4 size

// IsMozLz4 reports whether data starts with the mozlz4 magic header.
func IsMozLz4(data []byte) bool {
	return bytes.HasPrefix(data, mozLz4Magic)
}

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format.
// The format is: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	if len(data) < mozLz4HeaderSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}
	if !IsMozLz4(data) {
		return nil, fmt.Errorf("mozlz4: invalid header magic")
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[mozLz4HeaderSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}

	return dst[:n], nil
}

// CompressMozLz4 encodes data in the mozlz4 format Firefox writes for
// recovery.jsonlz4 and sessionstore.jsonlz4.
func CompressMozLz4(data []byte) ([]byte, error) {
	block := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: compress failed: %w", err)
	}

	out := make([]byte, mozLz4HeaderSize, mozLz4HeaderSize+n)
	copy(out, mozLz4Magic)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(data)))
	return append(out, block[:n]...), nil
}
