// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"go.uber.org/zap"
)

// newHTTPClient creates a fresh HTTP client with disabled connection reuse.
// A node call is one request; pooled connections only add stale-connection
// EOFs between calls.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
		},
	}
}

// CleanlyCloseBody drains and closes an HTTP response body to prevent
// HTTP/2 GOAWAY errors caused by closing bodies with unread data.
// See: https://github.com/golang/go/issues/46071
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, body)
	return body.Close()
}

// isRetryableError checks if an error is transient and worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	if errors.Is(err, io.EOF) || strings.Contains(errStr, "EOF") {
		return true
	}
	return strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe")
}

// httpClient implements Client as JSON-RPC 2.0 over HTTP POST.
type httpClient struct {
	endpoint *url.URL
	opts     *dialOptions
	http     *http.Client
}

func dialHTTP(_ context.Context, endpoint *url.URL, o *dialOptions) (Client, error) {
	return &httpClient{
		endpoint: endpoint,
		opts:     o,
		http:     newHTTPClient(o.requestTimeout),
	}, nil
}

func (c *httpClient) Call(ctx context.Context, method string, id RequestID, params any) (*Response, error) {
	requestBody, err := encodeRequest(method, id, params)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "failed to encode request params", Cause: err}
	}

	log := c.opts.logger.With(
		zap.String("method", method),
		zap.Stringer("id", id),
		zap.String("endpoint", c.endpoint.String()),
	)
	c.logBody(log, "rpc request", requestBody)

	body, err := c.send(ctx, log, requestBody)
	if err != nil {
		return nil, err
	}
	c.logBody(log, "rpc response", body)

	return decodeResponse(body, id)
}

func (c *httpClient) logBody(log *zap.Logger, msg string, body []byte) {
	if c.opts.verbose {
		log.Info(msg, zap.ByteString("body", body))
		return
	}
	log.Debug(msg, zap.ByteString("body", body))
}

// send posts requestBody, retrying transient failures with exponential
// backoff, and returns the raw response body.
func (c *httpClient) send(ctx context.Context, log *zap.Logger, requestBody []byte) ([]byte, error) {
	ops := NewOptions(c.opts.options)
	uri := *c.endpoint
	uri.RawQuery = ops.QueryParams().Encode()

	var lastErr error
	for attempt := 0; attempt < c.opts.maxAttempts; attempt++ {
		if attempt > 0 {
			waitTime := c.opts.retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, transportError("request abandoned", ctx.Err())
			case <-time.After(waitTime):
			}
		}

		// The body buffer is consumed by each attempt.
		request, err := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			uri.String(),
			bytes.NewReader(requestBody),
		)
		if err != nil {
			return nil, transportError("failed to create request", err)
		}
		request.Header = ops.Headers().Clone()
		request.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(request)
		if err != nil {
			lastErr = err
			retryable := isRetryableError(err)
			log.Warn("rpc attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Bool("retryable", retryable),
				zap.Error(err),
			)
			if retryable {
				continue
			}
			return nil, transportError("failed to issue request", err)
		}
		if attempt > 0 {
			log.Info("rpc request succeeded after retry", zap.Int("attempt", attempt+1))
		}
		return c.readBody(resp)
	}

	return nil, transportError(fmt.Sprintf("failed to issue request after %d attempts", c.opts.maxAttempts), lastErr)
}

func (c *httpClient) readBody(resp *http.Response) ([]byte, error) {
	defer CleanlyCloseBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError(fmt.Sprintf("received status code: %d", resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.maxResponseSize+1))
	if err != nil {
		return nil, transportError("failed to read response", err)
	}
	if int64(len(body)) > c.opts.maxResponseSize {
		return nil, transportError(fmt.Sprintf("limit is %d bytes", c.opts.maxResponseSize), ErrResponseTooLarge)
	}
	return body, nil
}

func (c *httpClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// decodeResponse splits a raw JSON-RPC response into its id and result,
// turning error members into KindRemote errors.
func decodeResponse(body []byte, id RequestID) (*Response, error) {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transportError("failed to parse as json-rpc response", err)
	}

	var result json.RawMessage
	if err := json2.DecodeClientResponse(bytes.NewReader(body), &result); err != nil {
		var rpcErr *json2.Error
		if errors.As(err, &rpcErr) {
			return nil, &Error{Kind: KindRemote, Code: int(rpcErr.Code), Message: rpcErr.Message}
		}
		if errors.Is(err, json2.ErrNullResult) {
			return nil, &Error{Kind: KindRemote, Message: "response has neither result nor error"}
		}
		return nil, transportError("failed to parse as json-rpc response", err)
	}

	if !id.matches(env.ID) {
		return nil, transportError(fmt.Sprintf("sent %s, got %s", id, env.ID), ErrIDMismatch)
	}
	return &Response{ID: env.ID, Result: result}, nil
}
