package occlusion

import (
	"context"
	"sync"
	"time"

	"github.com/df07/go-gi-shading/pkg/core"
)

// faceOffset lifts lookup points off the face they sit on
const faceOffset = 1e-6

// forEachFace runs fn for every face on the configured number of workers,
// each with its own traversal stack. Cancellation is checked between
// chunks.
func (t *Tree) forEachFace(ctx context.Context, fn func(i int, st *Stack)) error {
	const chunk = 256

	n := len(t.faces)
	workers := min(t.settings.workers(), (n+chunk-1)/chunk)
	next := make(chan int, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := t.NewStack()
			for start := range next {
				for i := start; i < min(start+chunk, n); i++ {
					fn(i, st)
				}
			}
		}()
	}

	var err error
	for start := 0; start < n; start += chunk {
		if err = ctx.Err(); err != nil {
			break
		}
		next <- start
	}
	close(next)
	wg.Wait()
	return err
}

// progress logs a heartbeat at most once per ProgressInterval
type progress struct {
	log      core.Logger
	interval time.Duration
	last     time.Time
}

func (p *progress) report(format string, args ...interface{}) {
	if p.interval <= 0 || time.Since(p.last) < p.interval {
		return
	}
	p.last = time.Now()
	p.log.Infof(format, args...)
}

// shadeFaces stores the direct radiance leaving every face center
func (t *Tree) shadeFaces(ctx context.Context, shader FaceShader) error {
	if shader == nil {
		return nil
	}
	return t.forEachFace(ctx, func(i int, _ *Stack) {
		f := &t.faces[i]
		p := f.center.AddScaled(f.normal, faceOffset)
		t.rad[i] = shader(f.face, p, f.normal).MaxVec(core.Vec3{})
	})
}

// computePasses refines the per-face occlusion weights. Each pass looks up
// the occlusion behind every face and subtracts it, so occluders that are
// themselves hidden count less in the following lookups.
func (t *Tree) computePasses(ctx context.Context, passes int) error {
	prog := &progress{log: t.settings.logger(), interval: t.settings.ProgressInterval, last: time.Now()}
	occ := make([]float64, len(t.faces))

	for pass := 0; pass < passes; pass++ {
		err := t.forEachFace(ctx, func(i int, st *Stack) {
			f := &t.faces[i]
			n := f.normal.Negate()
			p := f.center.AddScaled(n, faceOffset)
			occ[i] = t.Lookup(st, f.ref, p, n).Occlusion
		})
		if err != nil {
			return err
		}

		for i := range t.occ {
			t.occ[i] = max(t.occ[i]-occ[i], 0)
		}
		t.sumOcclusion(0)
		prog.report("occlusion pass %d of %d", pass+1, passes)
	}
	return nil
}

// computeBounces gathers light bounced between faces. The first bounce is
// the direct radiance already stored; each further bounce adds the
// irradiance arriving at a face, tinted by its albedo, to its direct light.
func (t *Tree) computeBounces(ctx context.Context, bounces int) error {
	if bounces <= 1 {
		return nil
	}
	prog := &progress{log: t.settings.logger(), interval: t.settings.ProgressInterval, last: time.Now()}

	direct := make([]core.Vec3, len(t.rad))
	copy(direct, t.rad)
	next := make([]core.Vec3, len(t.rad))

	for bounce := 1; bounce < bounces; bounce++ {
		err := t.forEachFace(ctx, func(i int, st *Stack) {
			f := &t.faces[i]
			p := f.center.AddScaled(f.normal, faceOffset)
			in := t.Lookup(st, f.ref, p, f.normal).Indirect.MaxVec(core.Vec3{})
			next[i] = direct[i].Add(in.MultiplyVec(f.albedo))
		})
		if err != nil {
			return err
		}

		copy(t.rad, next)
		t.sumOcclusion(0)
		prog.report("indirect bounce %d of %d", bounce+1, bounces)
	}
	return nil
}
