// Package sim implements the per-texel simulation passes: the steady-state
// STEP update and the two bootstrap modes used at startup and on emission.
package sim

import (
	"math"

	"github.com/pthm-cable/pingpong/field"
)

// normalizeEpsilon is the squared length below which Normalize returns zero.
const normalizeEpsilon = 1e-24

// Vec3 is a float32 3-vector.
type Vec3 struct {
	X, Y, Z float32
}

// V3 builds a Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// FromArray converts a [3]float32.
func FromArray(a [3]float32) Vec3 { return Vec3{a[0], a[1], a[2]} }

// FromTexel takes the xyz channels of a texel.
func FromTexel(t field.Texel) Vec3 { return Vec3{t[0], t[1], t[2]} }

// Texel packs v with the given w channel.
func (v Vec3) Texel(w float32) field.Texel { return field.Texel{v.X, v.Y, v.Z, w} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Len returns the Euclidean length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float32 { return v.Sub(o).Len() }

// Normalize returns the unit vector along v, or the zero vector when v is
// too short to have a direction.
func (v Vec3) Normalize() Vec3 {
	sq := v.Dot(v)
	if sq < normalizeEpsilon {
		return Vec3{}
	}
	inv := float32(1 / math.Sqrt(float64(sq)))
	return v.Scale(inv)
}

// RotateZ90 rotates v a quarter turn about the z axis.
func (v Vec3) RotateZ90() Vec3 { return Vec3{-v.Y, v.X, v.Z} }

// Lerp interpolates from v to o.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// FlipX mirrors v across the YZ plane.
func (v Vec3) FlipX() Vec3 { return Vec3{-v.X, v.Y, v.Z} }

// IsNaN reports whether any component is NaN.
func (v Vec3) IsNaN() bool {
	return v.X != v.X || v.Y != v.Y || v.Z != v.Z
}
