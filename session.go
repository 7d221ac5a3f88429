package lumen

import (
	"fmt"
	"io"
	"sync"

	"github.com/gogpu/lumen/engine"

	// The software engine is always available as the fallback choice.
	_ "github.com/gogpu/lumen/engine/soft"
)

// Session owns a compute engine and the buffers allocated on it.
// It is the single entry point for drawing, effects, read-back, and
// frame packing. Session implements io.Closer; Close releases every
// outstanding buffer before shutting the engine down.
//
// A session is a single logical thread of control: calls are
// synchronous and applied in issue order. The buffer registry is
// internally serialized, so sharing a session across goroutines does
// not corrupt bookkeeping, but no cross-call ordering is promised
// beyond what the callers establish themselves.
type Session struct {
	eng        engine.Engine
	ownsEngine bool
	reg        *registry

	// Device capabilities, queried once on first use.
	infoOnce sync.Once
	info     DeviceInfo

	closed bool
}

// Ensure Session implements io.Closer
var _ io.Closer = (*Session)(nil)

// New opens a session on a compute engine.
//
// With no options, New picks the highest-priority available engine from
// the registry (the GPU engine when engine/wgpu is imported and a
// Vulkan adapter is present, otherwise the software engine). Use
// WithEngine to pin an engine by name, or WithEngineInstance to supply
// one directly.
//
// New fails with an error wrapping ErrInitialization when no engine can
// be brought up; no session is constructed in that case.
func New(opts ...Option) (*Session, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	eng := options.engine
	owns := false
	if eng == nil {
		var err error
		if options.engineName != "" {
			eng, err = engine.NewByName(options.engineName)
		} else {
			eng, err = engine.New()
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInitialization, err)
		}
		owns = true
	}

	propagateLogger(eng, Logger())
	Logger().Info("lumen: session opened", "engine", eng.Name())

	return &Session{
		eng:        eng,
		ownsEngine: owns,
		reg:        newRegistry(eng),
	}, nil
}

// Engine returns the compute engine backing the session.
func (s *Session) Engine() engine.Engine { return s.eng }

// Close releases every outstanding buffer and, when the session owns
// its engine, shuts the engine down. Buffers are released on every
// path, even if the engine later fails to close. Idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.reg.releaseAll()

	if s.ownsEngine {
		if err := s.eng.Close(); err != nil {
			return fmt.Errorf("lumen: close engine: %w", err)
		}
	}
	return nil
}

// CreateBuffer allocates a width x height intensity buffer on the
// engine and returns its id. Ids are unique for the life of the
// session and never reused, even after release. Dimensions must be in
// [1, MaxDim]; violations fail with ErrInvalidArgument, engine
// refusals with ErrAllocation.
func (s *Session) CreateBuffer(width, height int) (uint64, error) {
	return s.reg.allocate(width, height)
}

// Release frees the buffer for id. Releasing an unknown or
// already-released id is a no-op, and engine-side destroy failures are
// logged rather than returned: cleanup always succeeds from the
// caller's perspective.
func (s *Session) Release(id uint64) {
	s.reg.release(id)
}

// ReleaseAll frees every buffer the session is tracking.
func (s *Session) ReleaseAll() {
	s.reg.releaseAll()
}

// Describe reports the buffer for id, or ok=false when the id is
// unknown. An unknown id is an answer, not an error.
func (s *Session) Describe(id uint64) (BufferInfo, bool) {
	return s.reg.describe(id)
}

// ListActive reports every live buffer in unspecified order.
func (s *Session) ListActive() []BufferInfo {
	return s.reg.listActive()
}
