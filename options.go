// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"net/http"
	"net/url"
)

// Option configures a single HTTP request.
type Option func(*Options)

// Options holds the HTTP headers and query parameters sent with a request.
type Options struct {
	headers     http.Header
	queryParams url.Values
}

// NewOptions applies options over empty headers and query parameters.
func NewOptions(options []Option) *Options {
	o := &Options{
		headers:     http.Header{},
		queryParams: url.Values{},
	}
	for _, option := range options {
		option(o)
	}
	return o
}

func (o *Options) Headers() http.Header {
	return o.headers
}

func (o *Options) QueryParams() url.Values {
	return o.queryParams
}

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		o.headers.Set(key, value)
	}
}

// WithQueryParam adds a query parameter to the endpoint URL.
func WithQueryParam(key, value string) Option {
	return func(o *Options) {
		o.queryParams.Add(key, value)
	}
}
