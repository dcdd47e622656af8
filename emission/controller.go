// Package emission activates dormant slices of the particle field.
package emission

import "github.com/pthm-cable/pingpong/field"

// Controller walks an emission cursor over [0, N). Each Emit hands out the
// next slice; once the cursor reaches N it resets to 0 rather than splitting
// a slice across the end of the field.
type Controller struct {
	n       int
	cursor  int
	emitted int64 // total texels handed out
	wraps   int
}

// NewController creates a controller for a field of n particles.
func NewController(n int) *Controller {
	return &Controller{n: n}
}

// Emit returns the draw range for count particles and advances the cursor.
// count is clamped to [0, N]; the range is clamped at N.
func (c *Controller) Emit(count int) field.Range {
	if count <= 0 || c.n == 0 {
		return field.Range{Lo: c.cursor, Hi: c.cursor}
	}
	if count > c.n {
		count = c.n
	}

	r := field.Range{Lo: c.cursor, Hi: c.cursor + count}.Clamp(c.n)
	c.emitted += int64(r.Len())

	c.cursor += count
	if c.cursor >= c.n {
		c.cursor = 0
		c.wraps++
	}
	return r
}

// Cursor returns the start of the next emission slice.
func (c *Controller) Cursor() int { return c.cursor }

// Emitted returns the total number of texels emitted so far.
func (c *Controller) Emitted() int64 { return c.emitted }

// Wraps returns how many times the cursor has reset to 0.
func (c *Controller) Wraps() int { return c.wraps }

// Progress returns the fraction of the field that has been emitted at least
// once, in [0, 1].
func (c *Controller) Progress() float64 {
	if c.n == 0 {
		return 0
	}
	if c.emitted >= int64(c.n) {
		return 1
	}
	return float64(c.emitted) / float64(c.n)
}

// Reset returns the controller to its initial state.
func (c *Controller) Reset() {
	c.cursor = 0
	c.emitted = 0
	c.wraps = 0
}
