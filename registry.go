package lumen

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/lumen/engine"
)

// MaxDim bounds buffer width and height, in pixels.
const MaxDim = 1024

// BufferInfo describes a live buffer.
type BufferInfo struct {
	// ID is the session-visible buffer id.
	ID uint64

	// Width and Height are the buffer dimensions in pixels.
	Width  int
	Height int

	// PixelCount is Width*Height.
	PixelCount int

	// Age is the wall-clock time elapsed since allocation.
	Age time.Duration
}

// record pairs a public id with the engine handle it owns.
// Immutable after creation; release deletes it from the map.
type record struct {
	id      uint64
	handle  engine.Handle
	width   int
	height  int
	created time.Time
}

func (rec *record) info() BufferInfo {
	return BufferInfo{
		ID:         rec.id,
		Width:      rec.width,
		Height:     rec.height,
		PixelCount: rec.width * rec.height,
		Age:        time.Since(rec.created),
	}
}

// registry owns the id-to-handle map. Every handle the engine hands out
// is stored in exactly one record and destroyed at most once, by release
// or by releaseAll during session teardown. Public ids come from a
// counter that never repeats, so a stale id cannot alias a newer buffer.
//
// One mutex serializes all registry operations, per the session's
// synchronous call model.
type registry struct {
	mu     sync.Mutex
	eng    engine.Engine
	nextID uint64
	recs   map[uint64]*record
}

func newRegistry(eng engine.Engine) *registry {
	return &registry{eng: eng, recs: make(map[uint64]*record)}
}

// allocate validates dimensions, obtains a handle from the engine, and
// tracks it under a fresh id.
func (r *registry) allocate(width, height int) (uint64, error) {
	if width < 1 || width > MaxDim || height < 1 || height > MaxDim {
		return 0, fmt.Errorf("%w: dimensions %dx%d outside [1, %d]",
			ErrInvalidArgument, width, height, MaxDim)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := r.eng.CreateBuffer(width, height)
	if err != nil {
		return 0, fmt.Errorf("%w: %dx%d: %v", ErrAllocation, width, height, err)
	}
	r.nextID++
	rec := &record{id: r.nextID, handle: h, width: width, height: height, created: time.Now()}
	r.recs[rec.id] = rec
	return rec.id, nil
}

// lookup returns a copy of the record for id. Records are immutable
// after creation, so the copy stays valid after the lock is dropped.
func (r *registry) lookup(id uint64) (record, error) {
	r.mu.Lock()
	rec, ok := r.recs[id]
	r.mu.Unlock()
	if !ok {
		return record{}, fmt.Errorf("%w: id %d", ErrUnknownBuffer, id)
	}
	return *rec, nil
}

// release frees the buffer for id. Unknown or already-released ids are
// a no-op. Engine-side destroy failures are logged and swallowed: the
// record is removed regardless, so the registry's own bookkeeping never
// leaks even when the engine does. The no-error signature keeps that
// contract visible to callers.
func (r *registry) release(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[id]
	if !ok {
		return
	}
	delete(r.recs, id)
	if err := r.eng.DestroyBuffer(rec.handle); err != nil {
		Logger().Warn("lumen: buffer release failed", "id", rec.id, "error", err)
	}
}

// releaseAll frees every tracked buffer. Serves both bulk cleanup and
// session teardown; afterwards no record remains.
func (r *registry) releaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.recs {
		if err := r.eng.DestroyBuffer(rec.handle); err != nil {
			Logger().Warn("lumen: buffer release failed", "id", rec.id, "error", err)
		}
		delete(r.recs, id)
	}
}

// describe reports the buffer for id, or ok=false when unknown.
func (r *registry) describe(id uint64) (BufferInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[id]
	if !ok {
		return BufferInfo{}, false
	}
	return rec.info(), true
}

// listActive reports every live buffer in unspecified order.
func (r *registry) listActive() []BufferInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]BufferInfo, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec.info())
	}
	return out
}
