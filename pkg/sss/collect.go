package sss

import (
	"context"
	"runtime"
	"sync"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/geometry"
	"github.com/df07/go-gi-shading/pkg/material"
)

// FaceSource enumerates the faces of a scene
type FaceSource interface {
	ForEachFace(fn func(f *geometry.Face))
}

// ShadeFunc returns the light arriving at point p with normal n on face f.
// It must be safe for concurrent use.
type ShadeFunc func(f *geometry.Face, p, n core.Vec3) core.Vec3

// CollectOptions controls how faces are sampled
type CollectOptions struct {
	Eye          core.Vec3             // viewer position, decides front and back
	Visible      func(p core.Vec3) bool // optional, drops samples the viewer cannot see
	Subdivisions int                   // samples per triangle edge, at least 1
	NumWorkers   int                   // 0 uses runtime.NumCPU
}

// Collect samples every face using m and lights each sample with shade.
// Each triangle is cut into Subdivisions² equal parts with one sample at
// the center of each. Samples on faces turned away from the eye get a
// negative area.
func Collect(ctx context.Context, src FaceSource, m *material.Material, shade ShadeFunc, opts CollectOptions) ([]Point, error) {
	var faces []*geometry.Face
	src.ForEachFace(func(f *geometry.Face) {
		if f.Material == m && f.Area() > 0 {
			faces = append(faces, f)
		}
	})
	if len(faces) == 0 {
		return nil, ErrNoPoints
	}

	div := max(opts.Subdivisions, 1)
	workers := opts.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(faces))

	perFace := make([][]Point, len(faces))
	next := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				perFace[i] = sampleFace(faces[i], div, shade, opts)
			}
		}()
	}

	var err error
	for i := range faces {
		if i%256 == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
		next <- i
	}
	close(next)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	var points []Point
	for _, fp := range perFace {
		points = append(points, fp...)
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	return points, nil
}

func sampleFace(f *geometry.Face, div int, shade ShadeFunc, opts CollectOptions) []Point {
	tris := 1
	if f.IsQuad() {
		tris = 2
	}
	out := make([]Point, 0, tris*div*div)
	inv := 1 / float64(div)

	for t := 0; t < tris; t++ {
		second := t == 1
		c := geometry.Corners(second)
		e1 := f.V[c[1]].Subtract(f.V[c[0]])
		e2 := f.V[c[2]].Subtract(f.V[c[0]])
		area := 0.5 * e1.Cross(e2).Length() * inv * inv
		if area <= 0 {
			continue
		}

		for i := 0; i < div; i++ {
			for j := 0; j < div-i; j++ {
				out = addSample(out, f, (float64(i)+1.0/3)*inv, (float64(j)+1.0/3)*inv, second, area, shade, opts)
				if j < div-i-1 {
					out = addSample(out, f, (float64(i)+2.0/3)*inv, (float64(j)+2.0/3)*inv, second, area, shade, opts)
				}
			}
		}
	}
	return out
}

func addSample(out []Point, f *geometry.Face, u, v float64, second bool, area float64, shade ShadeFunc, opts CollectOptions) []Point {
	p := f.Point(u, v, second)
	if opts.Visible != nil && !opts.Visible(p) {
		return out
	}

	n := f.SmoothNormal(u, v, second)
	if f.Normal.Dot(opts.Eye.Subtract(p)) < 0 {
		area = -area
	}
	return append(out, Point{Position: p, Radiance: shade(f, p, n), Area: area})
}
