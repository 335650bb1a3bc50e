package traversal

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Mc-Fr/Convertisseur/pkg/region"
)

// Stats summarizes one Run.
type Stats struct {
	Units          int
	UnitsCompleted int
	UnitsFailed    int

	ChunksWritten     int64
	ChunksVisited     int64
	ChunksAbsent      int64
	ReadErrors        int64
	DecodeErrors      int64
	WriteErrors       int64
	MalformedSections int64

	Interrupted bool
	Elapsed     time.Duration
}

type worker struct {
	id   int
	stop atomic.Bool
}

func (w *worker) stopped() bool {
	return w.stop.Load()
}

// run is the state shared by the workers of one Run. The pending stack,
// progress, worker registry and interrupt flag are guarded by mu; the
// chunk counters are atomic.
type run struct {
	logger  log.Logger
	metrics *Metrics

	mu          sync.Mutex
	pending     []region.Coord
	total       int
	completed   int
	failed      int
	workers     map[int]*worker
	interrupted bool
	start       time.Time
	elapsed     time.Duration

	written, visited, absent        atomic.Int64
	readErrs, decodeErrs, writeErrs atomic.Int64
	malformed                       atomic.Int64
}

func newRun(coords []region.Coord, metrics *Metrics, logger log.Logger) *run {
	r := &run{
		logger:  logger,
		metrics: metrics,
		workers: make(map[int]*worker),
		start:   time.Now(),
	}
	r.enqueue(coords)
	return r
}

// enqueue adds regions to the pending stack.
func (r *run) enqueue(coords []region.Coord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = append(r.pending, coords...)
	r.total += len(coords)
}

func (r *run) register(id int) *worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := &worker{id: id}
	if r.interrupted {
		w.stop.Store(true)
	}
	r.workers[id] = w
	return w
}

// claim pops the most recently queued region.
func (r *run) claim() (region.Coord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return region.Coord{}, false
	}
	c := r.pending[len(r.pending)-1]
	r.pending = r.pending[:len(r.pending)-1]
	return c, true
}

// unitDone records a fully processed region and logs the progress.
func (r *run) unitDone(c region.Coord, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completed++
	if failed {
		r.failed++
	}
	ratio := float64(r.completed) / float64(r.total)
	r.metrics.Progress.Set(ratio)
	level.Info(r.logger).Log("msg", "progress", "progress", fmt.Sprintf("%.2f%%", ratio*100), "region", c)
}

// interruptOthers stops every worker except id. Only the first request of
// a run has an effect.
func (r *run) interruptOthers(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interrupted {
		return
	}
	r.interrupted = true
	for wid, w := range r.workers {
		if wid != id {
			w.stop.Store(true)
		}
	}
}

// interrupt stops every worker.
func (r *run) interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.interrupted = true
	for _, w := range r.workers {
		w.stop.Store(true)
	}
}

// finished removes id from the registry. The last worker to finish logs
// the elapsed time.
func (r *run) finished(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workers[id]; !ok {
		return
	}
	delete(r.workers, id)
	if len(r.workers) > 0 {
		return
	}
	r.elapsed = time.Since(r.start)
	level.Info(r.logger).Log("msg", "finished", "elapsed", FormatElapsed(r.elapsed), "completed", r.completed, "units", r.total)
}

func (r *run) stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Units:             r.total,
		UnitsCompleted:    r.completed,
		UnitsFailed:       r.failed,
		ChunksWritten:     r.written.Load(),
		ChunksVisited:     r.visited.Load(),
		ChunksAbsent:      r.absent.Load(),
		ReadErrors:        r.readErrs.Load(),
		DecodeErrors:      r.decodeErrs.Load(),
		WriteErrors:       r.writeErrs.Load(),
		MalformedSections: r.malformed.Load(),
		Interrupted:       r.interrupted,
		Elapsed:           r.elapsed,
	}
}
