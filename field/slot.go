package field

// Slot is a ping-pong pair of equal-size textures. Current holds the last
// written state; Previous is the write target of the next pass. Swap is
// called exactly once per simulated tick.
type Slot struct {
	a, b     *Texture
	current  *Texture
	previous *Texture
	swaps    int
}

// NewSlot pairs a and b with a as the initial current texture.
func NewSlot(a, b *Texture) *Slot {
	return &Slot{a: a, b: b, current: a, previous: b}
}

// Current returns the last written texture.
func (s *Slot) Current() *Texture { return s.current }

// Previous returns the texture the next pass writes into.
func (s *Slot) Previous() *Texture { return s.previous }

// Swap exchanges the roles of the two textures.
func (s *Slot) Swap() {
	s.current, s.previous = s.previous, s.current
	s.swaps++
}

// Swaps returns how many times Swap has been called.
func (s *Slot) Swaps() int { return s.swaps }

// A returns the first texture of the pair.
func (s *Slot) A() *Texture { return s.a }

// B returns the second texture of the pair.
func (s *Slot) B() *Texture { return s.b }

// Release returns both textures to alloc.
func (s *Slot) Release(alloc *Allocator) {
	alloc.Release(s.a)
	alloc.Release(s.b)
}

// Range is a half-open draw range [Lo, Hi) of particle indices.
type Range struct {
	Lo, Hi int
}

// Full returns the range covering n particles.
func Full(n int) Range { return Range{Lo: 0, Hi: n} }

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

// Empty reports whether the range covers nothing.
func (r Range) Empty() bool { return r.Len() == 0 }

// Clamp restricts the range to [0, n).
func (r Range) Clamp(n int) Range {
	if r.Lo < 0 {
		r.Lo = 0
	}
	if r.Hi > n {
		r.Hi = n
	}
	if r.Hi < r.Lo {
		r.Hi = r.Lo
	}
	return r
}
