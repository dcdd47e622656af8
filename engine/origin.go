package engine

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/sim"
)

// OriginSource supplies the origin reference texture: size*size RGBA floats.
// It is the one place the engine waits on outside work.
type OriginSource interface {
	Origin(ctx context.Context, size int) ([]float32, error)
}

// OriginFunc adapts a function to OriginSource.
type OriginFunc func(ctx context.Context, size int) ([]float32, error)

func (f OriginFunc) Origin(ctx context.Context, size int) ([]float32, error) {
	return f(ctx, size)
}

// ConstantOrigin puts every particle's origin at p.
func ConstantOrigin(p sim.Vec3) OriginSource {
	return OriginFunc(func(_ context.Context, size int) ([]float32, error) {
		return field.Constant(size, [3]float32{p.X, p.Y, p.Z}), nil
	})
}

// DataOrigin serves a prepared buffer as is.
func DataOrigin(data []float32) OriginSource {
	return OriginFunc(func(context.Context, int) ([]float32, error) {
		return data, nil
	})
}

// ShapeOrigin generates the named shape using the parameters of cfg.
func ShapeOrigin(cfg config.OriginConfig, shape string, seed int64) OriginSource {
	return OriginFunc(func(ctx context.Context, size int) ([]float32, error) {
		rng := rand.New(rand.NewSource(seed))
		radius := float32(cfg.Radius)
		spread := float32(cfg.Spread)

		switch shape {
		case "sphere":
			return field.Sphere(size, radius, rng), nil
		case "fibonacci":
			return field.Fibonacci(size, radius, rng), nil
		case "grid":
			return field.Grid(size, spread, rng), nil
		case "spiral":
			return field.Spiral(size, cfg.Branches, spread), nil
		case "zero":
			return field.Constant(size, [3]float32{}), nil
		case "image":
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			f, err := os.Open(cfg.ImagePath)
			if err != nil {
				return nil, fmt.Errorf("opening origin image: %w", err)
			}
			defer f.Close()
			return field.ImagePoints(f, size, cfg.ImageThreshold, rng)
		}
		return nil, fmt.Errorf("unknown origin shape %q", shape)
	})
}
