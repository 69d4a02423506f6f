// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client sends JSON-RPC requests to a single node.
type Client interface {
	// Call sends method with params under id and blocks until the node
	// answers or the transport gives up.
	Call(ctx context.Context, method string, id RequestID, params any) (*Response, error)

	// Close releases the client's resources.
	Close() error
}

// DialOption configures client connections
type DialOption func(*dialOptions)

type dialOptions struct {
	rpcPath         string
	maxAttempts     int
	retryBaseWait   time.Duration
	requestTimeout  time.Duration
	maxResponseSize int64
	verbose         bool
	logger          *zap.Logger
	options         []Option
}

func newDialOptions(opts []DialOption) *dialOptions {
	o := &dialOptions{
		rpcPath:         DefaultRPCPath,
		maxAttempts:     DefaultMaxAttempts,
		retryBaseWait:   DefaultRetryBaseWait,
		requestTimeout:  DefaultRequestTimeout,
		maxResponseSize: DefaultMaxResponseSize,
		logger:          Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithTransportConfig applies every transport setting from cfg.
func WithTransportConfig(cfg TransportConfig) DialOption {
	return func(o *dialOptions) {
		o.rpcPath = cfg.RPCPath
		o.maxAttempts = cfg.MaxAttempts
		o.retryBaseWait = cfg.RetryBaseWait
		o.requestTimeout = cfg.RequestTimeout
		o.maxResponseSize = cfg.MaxResponseSize
		for k, v := range cfg.Headers {
			o.options = append(o.options, WithHeader(k, v))
		}
	}
}

// WithRPCPath sets the path appended to the node address.
func WithRPCPath(path string) DialOption {
	return func(o *dialOptions) { o.rpcPath = path }
}

// WithRetries sets the attempt budget and first backoff delay.
func WithRetries(maxAttempts int, baseWait time.Duration) DialOption {
	return func(o *dialOptions) {
		o.maxAttempts = maxAttempts
		o.retryBaseWait = baseWait
	}
}

// WithVerbose logs request and response bodies at info level.
func WithVerbose(verbose bool) DialOption {
	return func(o *dialOptions) { o.verbose = verbose }
}

// WithDialLogger sets the logger used by the client.
func WithDialLogger(l *zap.Logger) DialOption {
	return func(o *dialOptions) { o.logger = l }
}

// WithRequestOptions adds per-request HTTP options.
func WithRequestOptions(opts ...Option) DialOption {
	return func(o *dialOptions) { o.options = append(o.options, opts...) }
}

type dialFunc func(ctx context.Context, endpoint *url.URL, o *dialOptions) (Client, error)
