// Package field holds the particle field data model: the index/texel mapping,
// RGBA float32 textures, the ping-pong buffer slot and origin generators.
package field

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned for a field side that is not a positive integer.
var ErrInvalidSize = errors.New("field size must be a positive integer")

// Encoder maps a linear particle index to a texel of a square field and back.
// Row-major: row = i / size, col = i % size. UVs address texel centres.
type Encoder struct {
	size int
}

// NewEncoder creates an encoder for a size x size field.
func NewEncoder(size int) (Encoder, error) {
	if size < 1 {
		return Encoder{}, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return Encoder{size: size}, nil
}

// Size returns the field side.
func (e Encoder) Size() int { return e.size }

// N returns the particle count, size².
func (e Encoder) N() int { return e.size * e.size }

// IndexToCoord returns the texel holding particle i.
func (e Encoder) IndexToCoord(i int) (row, col int) {
	return i / e.size, i % e.size
}

// CoordToIndex is the inverse of IndexToCoord.
func (e Encoder) CoordToIndex(row, col int) int {
	return row*e.size + col
}

// CoordToUV returns the normalised coordinate of the texel centre.
func (e Encoder) CoordToUV(row, col int) (u, v float32) {
	s := float32(e.size)
	return (float32(col) + 0.5) / s, (float32(row) + 0.5) / s
}

// UVToCoord returns the texel containing (u, v), clamped to the field.
func (e Encoder) UVToCoord(u, v float32) (row, col int) {
	s := float32(e.size)
	return e.clamp(int(v * s)), e.clamp(int(u * s))
}

// IndexToUV composes IndexToCoord and CoordToUV.
func (e Encoder) IndexToUV(i int) (u, v float32) {
	return e.CoordToUV(e.IndexToCoord(i))
}

// UVToIndex composes UVToCoord and CoordToIndex.
func (e Encoder) UVToIndex(u, v float32) int {
	return e.CoordToIndex(e.UVToCoord(u, v))
}

func (e Encoder) clamp(x int) int {
	if x < 0 {
		return 0
	}
	if x >= e.size {
		return e.size - 1
	}
	return x
}
