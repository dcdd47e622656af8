package field

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"
	"math/rand"
)

// ErrNoPoints is returned when an image contains no pixel dark enough to become a point.
var ErrNoPoints = errors.New("image has no points below threshold")

// Origin generators return size*size RGBA texels ready for Texture.CopyFrom.
// xyz is the rest position, w a small per-particle jitter.

// Constant places every origin at p.
func Constant(size int, p [3]float32) []float32 {
	data := make([]float32, size*size*4)
	for i := 0; i < size*size; i++ {
		o := i * 4
		data[o], data[o+1], data[o+2] = p[0], p[1], p[2]
	}
	return data
}

// Sphere samples points uniformly on a sphere of the given radius.
func Sphere(size int, radius float32, rng *rand.Rand) []float32 {
	data := make([]float32, size*size*4)
	for i := 0; i < size*size; i++ {
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*rng.Float64() - 1)
		o := i * 4
		data[o] = radius * float32(math.Sin(phi)*math.Cos(theta))
		data[o+1] = radius * float32(math.Sin(phi)*math.Sin(theta))
		data[o+2] = radius * float32(math.Cos(phi))
		data[o+3] = float32(rng.Float64()-0.5) * 0.01
	}
	return data
}

// Fibonacci spreads points evenly over a sphere along a golden-angle spiral.
func Fibonacci(size int, radius float32, rng *rand.Rand) []float32 {
	n := size * size
	data := make([]float32, n*4)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1.0
		if n > 1 {
			y = 1 - 2*float64(i)/float64(n-1)
		}
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := golden * float64(i)
		o := i * 4
		data[o] = radius * float32(math.Cos(theta)*r)
		data[o+1] = radius * float32(y)
		data[o+2] = radius * float32(math.Sin(theta)*r)
		data[o+3] = float32(rng.Float64()-0.5) * 0.01
	}
	return data
}

// Grid lays particles on a flat square lattice spanning spread units,
// centred on the origin.
func Grid(size int, spread float32, rng *rand.Rand) []float32 {
	data := make([]float32, size*size*4)
	step := float32(0)
	if size > 1 {
		step = spread / float32(size-1)
	}
	half := spread / 2
	for i := 0; i < size*size; i++ {
		row, col := i/size, i%size
		o := i * 4
		data[o] = float32(col)*step - half
		data[o+1] = float32(row)*step - half
		data[o+3] = float32(rng.Float64()-0.5) * 0.1
	}
	return data
}

// Spiral winds particles outward along branches arms reaching spread/2.
func Spiral(size, branches int, spread float32) []float32 {
	n := size * size
	data := make([]float32, n*4)
	half := float64(spread) / 2
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		angle := 2 * math.Pi * float64(branches) * t
		o := i * 4
		data[o] = float32(math.Cos(angle) * t * half)
		data[o+1] = float32(math.Sin(angle) * t * half)
	}
	return data
}

// ImagePoints turns the dark pixels of a PNG or JPEG into a point cloud.
// A pixel counts when its red channel (0-255) is below threshold. Every
// texel picks a random dark pixel so the cloud fills the whole field.
func ImagePoints(r io.Reader, size, threshold int, rng *rand.Rand) ([]float32, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding origin image: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrNoPoints
	}
	aspect := float32(w) / float32(h)

	type point struct{ x, y float32 }
	var points []point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			red, _, _, _ := img.At(x, y).RGBA()
			if int(red>>8) >= threshold {
				continue
			}
			fx := float32(x-b.Min.X) / float32(w)
			fy := float32(y-b.Min.Y) / float32(h)
			points = append(points, point{
				x: lerp(-0.77*aspect, 0.77*aspect, fx),
				y: lerp(0.77, -0.77, fy),
			})
		}
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	data := make([]float32, size*size*4)
	for i := 0; i < size*size; i++ {
		p := points[rng.Intn(len(points))]
		o := i * 4
		data[o] = p.x + float32(rng.Float64()-0.5)*0.005
		data[o+1] = p.y + float32(rng.Float64()-0.5)*0.005
		data[o+2] = float32(rng.Float64()-0.5) * 0.01
		data[o+3] = float32(rng.Float64()-0.5) * 0.01
	}
	return data, nil
}

// Blend mixes two origin buffers of equal length: a*(1-t) + b*t.
func Blend(a, b []float32, t float32) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("blend length mismatch: %d vs %d", len(a), len(b))
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = lerp(a[i], b[i], t)
	}
	return out, nil
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
