package lumen

import "github.com/gogpu/lumen/engine"

// Option configures a Session during creation.
// Use functional options to customize Session behavior.
//
// Example:
//
//	// Best available engine (default)
//	s, err := lumen.New()
//
//	// Pin a registered engine by name
//	s, err := lumen.New(lumen.WithEngine("soft"))
type Option func(*sessionOptions)

// sessionOptions holds optional configuration for Session creation.
type sessionOptions struct {
	engineName string
	engine     engine.Engine
}

// defaultOptions returns the default session options.
func defaultOptions() sessionOptions {
	return sessionOptions{} // Highest-priority available engine.
}

// WithEngine pins the session to a registered engine by name
// ("soft", "wgpu"). New fails if the engine is unknown, unavailable,
// or cannot be constructed.
//
// Example:
//
//	s, err := lumen.New(lumen.WithEngine("soft"))
func WithEngine(name string) Option {
	return func(o *sessionOptions) {
		o.engineName = name
	}
}

// WithEngineInstance runs the session on an engine the caller already
// constructed. Use this for dependency injection: sharing one GPU engine
// between sessions, or driving tests with a fake.
//
// The caller keeps ownership: Close releases the session's buffers but
// does not close an injected engine.
//
// Example:
//
//	eng, _ := wgpu.New(wgpu.WithDevice(provider))
//	s, err := lumen.New(lumen.WithEngineInstance(eng))
func WithEngineInstance(e engine.Engine) Option {
	return func(o *sessionOptions) {
		o.engine = e
	}
}
