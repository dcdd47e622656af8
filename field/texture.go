package field

import (
	"errors"
	"fmt"
	"sync"
)

// ErrResourceExhausted is returned when a texture does not fit in the allocator budget.
var ErrResourceExhausted = errors.New("texture allocation exhausted")

// Texel is one RGBA float32 texel: xyz carries a vector, w is free per use.
type Texel [4]float32

// Texture is a square RGBA float32 texture stored row-major.
type Texture struct {
	size     int
	data     []float32
	released bool
}

// Size returns the texture side.
func (t *Texture) Size() int { return t.size }

// Len returns the texel count.
func (t *Texture) Len() int { return t.size * t.size }

// Texel returns texel i.
func (t *Texture) Texel(i int) Texel {
	o := i * 4
	return Texel{t.data[o], t.data[o+1], t.data[o+2], t.data[o+3]}
}

// SetTexel writes texel i.
func (t *Texture) SetTexel(i int, v Texel) {
	o := i * 4
	t.data[o] = v[0]
	t.data[o+1] = v[1]
	t.data[o+2] = v[2]
	t.data[o+3] = v[3]
}

// Fill writes v into every texel of r.
func (t *Texture) Fill(r Range, v Texel) {
	for i := r.Lo; i < r.Hi; i++ {
		t.SetTexel(i, v)
	}
}

// CopyFrom replaces the texture contents. src must hold exactly Len()*4 floats.
func (t *Texture) CopyFrom(src []float32) error {
	if len(src) != len(t.data) {
		return fmt.Errorf("texture data length %d does not match %dx%d RGBA (%d floats)",
			len(src), t.size, t.size, len(t.data))
	}
	copy(t.data, src)
	return nil
}

// Data exposes the raw RGBA floats for binding as a sampler source.
func (t *Texture) Data() []float32 { return t.data }

// Released reports whether the texture has been returned to its allocator.
func (t *Texture) Released() bool { return t.released }

// Allocator hands out textures against a texel budget. It stands in for
// the GPU memory pool: Alloc fails instead of over-committing.
type Allocator struct {
	mu        sync.Mutex
	maxTexels int
	inUse     int
}

// NewAllocator creates an allocator. maxTexels <= 0 means unlimited.
func NewAllocator(maxTexels int) *Allocator {
	return &Allocator{maxTexels: maxTexels}
}

// Alloc creates a zeroed size x size texture.
func (a *Allocator) Alloc(size int) (*Texture, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	n := size * size

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.maxTexels > 0 && a.inUse+n > a.maxTexels {
		return nil, fmt.Errorf("%w: need %d texels, %d of %d in use",
			ErrResourceExhausted, n, a.inUse, a.maxTexels)
	}
	a.inUse += n
	return &Texture{size: size, data: make([]float32, n*4)}, nil
}

// Release returns t to the budget. Releasing twice is a no-op.
func (a *Allocator) Release(t *Texture) {
	if t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.data = nil
	a.inUse -= t.size * t.size
}

// InUse returns the number of texels currently allocated.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}

// View is a read-only handle on a texture, given to display consumers.
type View struct {
	t *Texture
}

// NewView wraps t.
func NewView(t *Texture) View { return View{t: t} }

// Valid reports whether the view refers to a live texture.
func (v View) Valid() bool { return v.t != nil && !v.t.released }

// Size returns the texture side.
func (v View) Size() int { return v.t.Size() }

// Len returns the texel count.
func (v View) Len() int { return v.t.Len() }

// Texel returns texel i.
func (v View) Texel(i int) Texel { return v.t.Texel(i) }

// CopyTo copies the RGBA floats into dst and returns the number copied.
func (v View) CopyTo(dst []float32) int { return copy(dst, v.t.data) }

// Same reports whether the view refers to t.
func (v View) Same(t *Texture) bool { return v.t == t }
