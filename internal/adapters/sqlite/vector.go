package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vector blob layout: a 4-byte little-endian dimension count followed
// by the float32 components in little-endian order.

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4+4*len(vec))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("vector blob too short: %d bytes", len(blob))
	}
	dim := int(binary.LittleEndian.Uint32(blob[0:4]))
	if len(blob) != 4+4*dim {
		return nil, fmt.Errorf("vector blob length %d does not match dimension %d", len(blob), dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4+i*4:]))
	}
	return vec, nil
}
