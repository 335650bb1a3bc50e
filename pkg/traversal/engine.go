// Package traversal walks every chunk of a world with a pool of workers,
// handing each decoded chunk to a Visitor and writing it back.
package traversal

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Mc-Fr/Convertisseur/pkg/nbt"
	"github.com/Mc-Fr/Convertisseur/pkg/region"
)

var tracer = otel.Tracer("pkg/traversal")

// Engine runs a Visitor over every region of a Container.
type Engine struct {
	cfg       Config
	container region.Container
	visitor   Visitor
	metrics   *Metrics
	logger    log.Logger

	mu  sync.Mutex
	cur *run
}

// New creates a new Engine instance.
func New(cfg Config, container region.Container, visitor Visitor, metrics *Metrics, logger log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	if visitor == nil {
		return nil, fmt.Errorf("visitor cannot be nil")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics cannot be nil")
	}

	return &Engine{
		cfg:       cfg,
		container: container,
		visitor:   visitor,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Run processes every region listed by the container and returns once all
// workers have finished. Cancelling ctx interrupts the workers; each one
// completes the chunk it is on and stops. The returned error is non-nil
// only if a worker panicked.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	// The run is published before listing regions so that an Interrupt
	// issued meanwhile still applies.
	r := newRun(nil, e.metrics, e.logger)
	e.mu.Lock()
	e.cur = r
	e.mu.Unlock()

	coords, err := e.container.Units()
	if err != nil {
		return Stats{}, err
	}
	r.enqueue(coords)

	level.Info(e.logger).Log("msg", "starting traversal", "regions", len(coords), "workers", e.cfg.Workers, "read_only", e.cfg.ReadOnly)

	var g errgroup.Group
	for id := 0; id < e.cfg.Workers; id++ {
		w := r.register(id)
		g.Go(func() error {
			return e.work(ctx, r, w)
		})
	}
	err = g.Wait()

	return r.stats(), err
}

// Interrupt stops the workers of the current run.
func (e *Engine) Interrupt() {
	e.mu.Lock()
	r := e.cur
	e.mu.Unlock()

	if r != nil {
		r.interrupt()
	}
}

func (e *Engine) work(ctx context.Context, r *run, w *worker) (err error) {
	defer r.finished(w.id)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("worker %d panicked: %v", w.id, p)
			level.Error(e.logger).Log("msg", "worker failed, interrupting the others", "worker", w.id, "err", err)
			r.interruptOthers(w.id)
		}
	}()

	for !e.halted(ctx, r, w) {
		c, ok := r.claim()
		if !ok {
			return nil
		}
		e.processUnit(ctx, r, w, c)
	}
	return nil
}

// halted reports whether w must stop. A cancelled ctx interrupts the
// whole run.
func (e *Engine) halted(ctx context.Context, r *run, w *worker) bool {
	if ctx.Err() != nil {
		r.interrupt()
	}
	return w.stopped()
}

func (e *Engine) processUnit(ctx context.Context, r *run, w *worker, c region.Coord) {
	_, span := tracer.Start(ctx, "traversal.Engine.processUnit", trace.WithAttributes(
		attribute.Int("region.x", c.X),
		attribute.Int("region.z", c.Z),
		attribute.Int("worker", w.id),
	))
	defer span.End()

	u, err := e.container.OpenUnit(c)
	if err != nil {
		level.Error(e.logger).Log("msg", "failed to open region", "region", c, "err", err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.UnitsProcessed.WithLabelValues(UnitFailed).Inc()
		r.unitDone(c, true)
		return
	}
	defer u.Close()

	for x := 0; x < region.ChunksPerAxis; x++ {
		for z := 0; z < region.ChunksPerAxis; z++ {
			if e.halted(ctx, r, w) {
				span.SetAttributes(attribute.Bool("interrupted", true))
				e.metrics.UnitsProcessed.WithLabelValues(UnitInterrupted).Inc()
				return
			}
			e.processChunk(r, u, c, x, z)
		}
	}

	e.metrics.UnitsProcessed.WithLabelValues(UnitCompleted).Inc()
	r.unitDone(c, false)
}

func (e *Engine) chunkOutcome(outcome string) {
	e.metrics.ChunksProcessed.WithLabelValues(outcome).Inc()
}

func (e *Engine) processChunk(r *run, u region.Unit, c region.Coord, x, z int) {
	cx, cz := c.ChunkPos(x, z)
	ref := ChunkRef{Region: c, X: cx, Z: cz}

	in, ok, err := u.OpenReadStream(x, z)
	if err != nil {
		level.Error(e.logger).Log("msg", "failed to read chunk", "chunk", ref, "err", err)
		r.readErrs.Add(1)
		e.chunkOutcome(OutcomeReadError)
		return
	}
	if !ok {
		r.absent.Add(1)
		e.chunkOutcome(OutcomeAbsent)
		return
	}

	root, err := nbt.Decode(in, nbt.NewSizeTracker(e.cfg.MaxChunkBytes))
	in.Close()
	if err != nil {
		level.Error(e.logger).Log("msg", "failed to decode chunk", "chunk", ref, "err", err)
		r.decodeErrs.Add(1)
		e.chunkOutcome(OutcomeDecodeError)
		return
	}

	e.visit(r, ref, root)

	if e.cfg.ReadOnly {
		r.visited.Add(1)
		e.chunkOutcome(OutcomeVisited)
		return
	}

	if err := e.write(u, x, z, root); err != nil {
		level.Error(e.logger).Log("msg", "failed to write chunk", "chunk", ref, "err", err)
		r.writeErrs.Add(1)
		e.chunkOutcome(OutcomeWriteError)
		return
	}
	r.written.Add(1)
	e.chunkOutcome(OutcomeWritten)
}

func (e *Engine) visit(r *run, ref ChunkRef, root *nbt.Compound) {
	lvl := root.Compound("Level")
	sections := lvl.List("Sections", nbt.TypeCompound)

	e.visitor.OnTileEntities(ref, lvl, lvl.List("TileEntities", nbt.TypeCompound))

	for i := 0; i < sections.Len(); i++ {
		section := sections.CompoundAt(i)
		blocks := section.ByteArray("Blocks")
		data := section.ByteArray("Data")
		add := section.ByteArray("Add")
		addPresent := len(add) > 0

		if !addPresent {
			add = make([]byte, (len(blocks)+1)/2)
		}
		if len(blocks) == 0 || len(data)*2 < len(blocks) || len(add)*2 < len(blocks) {
			level.Warn(e.logger).Log("msg", "malformed section", "chunk", ref, "section", i,
				"blocks", len(blocks), "data", len(data), "add", len(add))
			r.malformed.Add(1)
			e.metrics.MalformedSections.Inc()
			continue
		}

		s := &Section{
			Chunk:      ref,
			Index:      i,
			Level:      lvl,
			Sections:   sections,
			Section:    section,
			Blocks:     blocks,
			Add:        add,
			Data:       data,
			AddPresent: addPresent,
		}
		if e.visitor.OnSection(s) && !addPresent {
			section.SetByteArray("Add", add)
		}
	}
}

// write encodes root fully before opening the output so that an encoding
// failure leaves the stored chunk untouched.
func (e *Engine) write(u region.Unit, x, z int, root *nbt.Compound) error {
	var buf bytes.Buffer
	if err := nbt.Encode(root, &buf); err != nil {
		return err
	}
	out, err := u.OpenWriteStream(x, z)
	if err != nil {
		return err
	}
	if _, err := buf.WriteTo(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
