// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Boundary is the synchronous call surface: it validates foreign inputs,
// drives requests through its Runtime and reports failures through its
// ErrorStore. The C ABI uses the process-wide Default boundary.
type Boundary struct {
	store ErrorStore

	mu           sync.Mutex
	cfg          Config
	logger       *zap.Logger
	fixedLogger  bool
	runtime      *Runtime
	extraOptions []DialOption
}

// BoundaryOption configures a Boundary.
type BoundaryOption func(*Boundary)

// WithLogger sets the logger, overriding the config's log section.
func WithLogger(l *zap.Logger) BoundaryOption {
	return func(b *Boundary) {
		b.logger = l
		b.fixedLogger = true
	}
}

// WithDialOptions appends dial options to every request.
func WithDialOptions(opts ...DialOption) BoundaryOption {
	return func(b *Boundary) { b.extraOptions = append(b.extraOptions, opts...) }
}

// New returns a Boundary for cfg. Its runtime starts on the first call.
func New(cfg Config, opts ...BoundaryOption) (*Boundary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Boundary{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if !b.fixedLogger {
		l, err := newLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		b.logger = l
	}
	b.runtime = NewRuntime(cfg.Workers, b.logger)
	return b, nil
}

var (
	defaultOnce     sync.Once
	defaultBoundary *Boundary
)

// Default returns the process-wide boundary, created on first use with
// DefaultConfig.
func Default() *Boundary {
	defaultOnce.Do(func() {
		b, err := New(DefaultConfig())
		if err != nil {
			panic("clientffi: default config is invalid: " + err.Error())
		}
		defaultBoundary = b
	})
	return defaultBoundary
}

// Configure replaces the boundary's configuration. In-flight calls finish on
// the previous runtime; later calls use a new one.
func (b *Boundary) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	l := b.logger
	if !b.fixedLogger {
		var err error
		if l, err = newLogger(cfg.Log); err != nil {
			b.mu.Unlock()
			return err
		}
	}
	old := b.runtime
	b.cfg = cfg
	b.logger = l
	b.runtime = NewRuntime(cfg.Workers, l)
	b.mu.Unlock()

	old.Close()
	return nil
}

// Setup reconfigures the boundary from ConfigFromEnv. On failure it records
// the error and returns false.
func (b *Boundary) Setup() (ok bool) {
	defer b.recoverTo("setup_client", &ok)
	cfg, err := ConfigFromEnv()
	if err == nil {
		err = b.Configure(cfg)
	}
	if err != nil {
		b.fail("setup_client", &Error{Kind: KindValidation, Cause: err})
		return false
	}
	return true
}

// Shutdown waits for in-flight calls and stops the runtime's workers. The
// boundary stays usable: the next call starts a fresh runtime.
func (b *Boundary) Shutdown() {
	b.mu.Lock()
	old := b.runtime
	b.runtime = NewRuntime(b.cfg.Workers, b.logger)
	b.mu.Unlock()

	old.Close()
}

// GetLastError copies the most recent failure message into out and returns
// the number of bytes written.
func (b *Boundary) GetLastError(out []byte) int {
	return b.store.CopyTo(out)
}

// LastError returns the most recent failure message, if any.
func (b *Boundary) LastError() (string, bool) {
	return b.store.Message()
}

// RecordError stores err as the last error on behalf of op. The C layer
// uses it for failures detected before a façade method runs.
func (b *Boundary) RecordError(op string, err error) {
	b.fail(op, err)
}

func (b *Boundary) fail(op string, err error) {
	e := asError(err)
	b.currentLogger().Debug("operation failed",
		zap.String("op", op),
		zap.Stringer("kind", e.Kind),
		zap.Error(e),
	)
	b.store.Record(e)
}

// recoverTo turns a panic into a recorded internal error and a false return.
func (b *Boundary) recoverTo(op string, ok *bool) {
	if p := recover(); p != nil {
		b.fail(op, &Error{Kind: KindInternal, Message: fmt.Sprintf("%s panicked: %v", op, p)})
		*ok = false
	}
}

func (b *Boundary) currentLogger() *zap.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logger
}

// snapshot returns the state a single call works with.
func (b *Boundary) snapshot() (Config, *zap.Logger, *Runtime) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg, b.logger, b.runtime
}

// request is one validated façade call.
type request struct {
	op          string
	method      string
	id          RequestID
	nodeAddress string
	verbose     bool
	params      any
}

// newRequest validates the inputs shared by every RPC façade.
func newRequest(op, method string, cfg Config, maybeRPCID, nodeAddress *string, verbose bool) (*request, error) {
	if nodeAddress == nil {
		return nil, validationError("node address is null")
	}
	if _, err := ParseNodeAddress(*nodeAddress, cfg.Transport.RPCPath); err != nil {
		return nil, err
	}
	var rawID string
	if maybeRPCID != nil {
		if !utf8.ValidString(*maybeRPCID) {
			return nil, validationError("rpc id is not valid UTF-8")
		}
		rawID = *maybeRPCID
	}
	return &request{
		op:          op,
		method:      method,
		id:          ParseRequestID(rawID),
		nodeAddress: *nodeAddress,
		verbose:     verbose,
	}, nil
}

// invoke runs one façade call: build validates the inputs, the request runs
// on the runtime and its JSON response is written NUL-terminated into out.
// Every failure is recorded and reported as false.
func (b *Boundary) invoke(op string, out []byte, build func(cfg Config) (*request, error)) (ok bool) {
	defer b.recoverTo(op, &ok)

	cfg, log, rt := b.snapshot()
	req, err := build(cfg)
	if err != nil {
		b.fail(op, err)
		return false
	}

	payload, err := b.run(rt, func(ctx context.Context) ([]byte, error) {
		return b.send(ctx, cfg, log, req)
	})
	if err != nil {
		b.fail(op, err)
		return false
	}

	if _, err := WriteTerminated(out, payload); err != nil {
		b.fail(op, err)
		return false
	}
	return true
}

// run submits task to rt. Shutdown and Configure install a new runtime
// before closing the old one, so a task rejected by a closed runtime moves to
// its successor.
func (b *Boundary) run(rt *Runtime, task Task) ([]byte, error) {
	for {
		payload, err := rt.RunBlocking(task)
		if !errors.Is(err, ErrRuntimeClosed) {
			return payload, err
		}
		next := b.currentRuntime()
		if next == rt {
			return nil, err
		}
		rt = next
	}
}

func (b *Boundary) currentRuntime() *Runtime {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runtime
}

func (b *Boundary) send(ctx context.Context, cfg Config, log *zap.Logger, req *request) ([]byte, error) {
	if req.verbose {
		log = verboseLogger(log)
	}
	opts := append([]DialOption{
		WithTransportConfig(cfg.Transport),
		WithVerbose(req.verbose),
		WithDialLogger(log.With(zap.String("op", req.op))),
	}, b.extraOptions...)

	client, err := Dial(ctx, req.nodeAddress, opts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	resp, err := client.Call(ctx, req.method, req.id, req.params)
	if err != nil {
		return nil, err
	}
	return resp.Marshal()
}
