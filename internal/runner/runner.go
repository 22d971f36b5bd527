// Package runner implements the reconstruction pipeline's concurrency
// fabric: parallel workers, each owning a disjoint volume sub-volume
// and its own filter/back-projection state, driven by a single
// control goroutine that reads, corrects, and fans out projections.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/athabascarecon/ctrecon/internal/atten"
	"github.com/athabascarecon/ctrecon/internal/backproject"
	"github.com/athabascarecon/ctrecon/internal/badpixel"
	"github.com/athabascarecon/ctrecon/internal/beampower"
	"github.com/athabascarecon/ctrecon/internal/filter"
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/interp"
	"github.com/athabascarecon/ctrecon/internal/ioexec"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/athabascarecon/ctrecon/internal/streamio"
	"github.com/athabascarecon/ctrecon/internal/subvolume"
)

// Worker owns one disjoint Z-slab of the output volume, one
// ProjectionFilterer, and one BackProjector. Nothing in a Worker is
// touched by any other goroutine.
type Worker struct {
	Index     int
	Filterer  filter.ProjectionFilterer
	Projector *backproject.BackProjector
}

// Angle pairs a projection's acquisition index with its rotation
// angle in radians.
type Angle struct {
	Index int
	Theta float64
}

// Runner drives the full pipeline: read a raw projection, convert it
// to attenuation, correct bad pixels and beam power, fan the result
// out to every worker (each filters and back-projects it into its own
// slab), then repeat for the next projection.
type Runner[TRaw geom.Number] struct {
	Reader streamio.Reader[TRaw]
	// Converter converts raw pixels to attenuation. nil means the
	// reader already yields attenuation values (the AttenuationProjectionsFile
	// entry point): each read projection is copied straight into the
	// working attenuation buffer instead of being log-ratio converted.
	Converter *atten.Converter
	BadPixel  *badpixel.Corrector
	BeamPower beampower.Corrector
	Workers   []*Worker
	Angles    []Angle

	// SkipFilter bypasses every worker's Filterer (the
	// FilteredProjectionsFile entry point: the reader already yields
	// filtered projections, ready for back-projection as-is).
	SkipFilter bool

	// io runs projection reads on a dedicated goroutine so the next
	// projection's disk I/O overlaps with the current projection's
	// filter/back-project fan-out instead of serialising after it.
	io *ioexec.Executor
}

// New builds a Runner whose workers partition the volume's Z axis
// into len(slabs) slabs (see subvolume.Partition), each with its own
// filterer built from filterCfg and backprojector built from tracer,
// interpolator, and scale.
func New[TRaw geom.Number](
	reader streamio.Reader[TRaw],
	converter *atten.Converter,
	badPixel *badpixel.Corrector,
	beamPower beampower.Corrector,
	slabs []subvolume.Slab,
	backend filter.Backend,
	filterCfg filter.Config,
	tracer backproject.RayTracer,
	interpolator interp.PixelInterpolator,
	scale float64,
	angles []Angle,
) (*Runner[TRaw], error) {
	workers := make([]*Worker, len(slabs))
	for i, slab := range slabs {
		f, err := filter.New(backend, filterCfg)
		if err != nil {
			return nil, fmt.Errorf("worker %d: %w", i, err)
		}
		vol := slab.NewVolume()
		workers[i] = &Worker{
			Index:     i,
			Filterer:  f,
			Projector: backproject.New(vol, tracer, interpolator, scale),
		}
	}
	return &Runner[TRaw]{
		Reader:    reader,
		Converter: converter,
		BadPixel:  badPixel,
		BeamPower: beamPower,
		Workers:   workers,
		Angles:    angles,
		io:        ioexec.New(),
	}, nil
}

// Close releases the Runner's background I/O goroutine. Safe to call
// more than once; safe to call whether or not Run has been called.
func (r *Runner[TRaw]) Close() error {
	return r.io.Close()
}

// Run drives the pipeline to completion: one projection at a time, in
// acquisition order, barrier-synchronised across all workers. Once
// every worker has finished the current projection, the first worker
// error observed (first-exception-wins) is returned and no further
// projection is processed; ctx cancellation is checked before each
// projection is processed (its prefetched read may already have run).
//
// Reads are double-buffered: while the current projection is being
// converted, corrected, and fanned out to workers, the next
// projection's NextProjection call already runs concurrently on a
// dedicated I/O goroutine (internal/ioexec), so disk I/O overlaps
// worker compute instead of serialising after it.
func (r *Runner[TRaw]) Run(ctx context.Context, rawDims geom.Dims, rawSpacing geom.Spacing, rawOrigin geom.Origin) error {
	if len(r.Angles) == 0 {
		return nil
	}

	bufs := [2]*geom.RawProjection[TRaw]{
		geom.NewRawProjection[TRaw](rawDims, rawSpacing, rawOrigin),
		geom.NewRawProjection[TRaw](rawDims, rawSpacing, rawOrigin),
	}
	attenProj := geom.NewProjection(rawDims, rawSpacing, rawOrigin)

	type readOutcome struct {
		ok  bool
		err error
	}
	startRead := func(buf *geom.RawProjection[TRaw]) (<-chan error, *readOutcome) {
		out := &readOutcome{}
		ch := r.io.Submit(ctx, func() error {
			ok, err := r.Reader.NextProjection(buf)
			out.ok, out.err = ok, err
			return err
		})
		return ch, out
	}
	awaitRead := func(ch <-chan error, out *readOutcome, index int) error {
		if err := <-ch; err != nil {
			if out.err != nil {
				return reconerr.NewIOError("", fmt.Errorf("reading projection %d: %w", index, out.err))
			}
			// ctx was cancelled, or the executor closed, before the
			// read was even scheduled.
			return err
		}
		if !out.ok {
			return reconerr.NewInputDataError("", fmt.Errorf("acquisition ended before projection %d", index))
		}
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	pendingCh, pendingOut := startRead(bufs[0])

	for i, a := range r.Angles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := awaitRead(pendingCh, pendingOut, a.Index); err != nil {
			return err
		}
		cur := bufs[i%2]

		var nextCh <-chan error
		var nextOut *readOutcome
		if i+1 < len(r.Angles) {
			nextCh, nextOut = startRead(bufs[(i+1)%2])
		}

		if r.Converter != nil {
			if err := atten.ProcessProjection(r.Converter, cur, attenProj); err != nil {
				return fmt.Errorf("converting projection %d: %w", a.Index, err)
			}
		} else {
			for flat := 0; flat < cur.Len(); flat++ {
				attenProj.SetFlat(flat, float64(cur.FlatAt(flat)))
			}
		}
		if r.BadPixel != nil {
			r.BadPixel.CorrectBadPixels(attenProj)
		}
		if r.BeamPower != nil {
			if _, err := r.BeamPower.Correct(attenProj, a.Index); err != nil {
				return fmt.Errorf("beam-power correction for projection %d: %w", a.Index, err)
			}
		}

		if err := r.applyToWorkers(ctx, attenProj, a); err != nil {
			return err
		}

		slog.Debug("projection applied", "index", a.Index, "theta", a.Theta)

		pendingCh, pendingOut = nextCh, nextOut
	}
	return nil
}

// applyToWorkers fans attenProj out to every worker concurrently and
// waits for all of them (the barrier), returning the first error any
// worker raised.
func (r *Runner[TRaw]) applyToWorkers(ctx context.Context, attenProj *geom.Projection, a Angle) error {
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for _, w := range r.Workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()

			if r.SkipFilter {
				w.Projector.ApplyProjection(attenProj, a.Theta)
				return
			}

			filtered := geom.NewProjection(attenProj.Dims(), attenProj.Spacing(), attenProj.Origin())
			if err := w.Filterer.FilterProjection(attenProj, filtered); err != nil {
				once.Do(func() { firstErr = reconerr.NewWorkerError(w.Index, err) })
				return
			}
			w.Projector.ApplyProjection(filtered, a.Theta)
		}(w)
	}

	wg.Wait()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return firstErr
}

// Volumes returns each worker's accumulated sub-volume, in worker
// (Z-ascending) order, ready for a streaming writer.
func (r *Runner[TRaw]) Volumes() []*geom.Volume {
	out := make([]*geom.Volume, len(r.Workers))
	for i, w := range r.Workers {
		out[i] = w.Projector.Volume()
	}
	return out
}
