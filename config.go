// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the path of the config
// file read by ConfigFromEnv. There is no other discovery mechanism.
const ConfigEnv = "CLIENTFFI_CONFIG"

const (
	DefaultRPCPath         = "/rpc"
	DefaultMaxAttempts     = 3
	DefaultRetryBaseWait   = 500 * time.Millisecond
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxResponseSize = 16 << 20
)

// Config configures a Boundary.
type Config struct {
	// Workers is the size of the bridge's worker pool.
	Workers int `yaml:"workers"`

	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
}

// TransportConfig configures the JSON-RPC transport.
type TransportConfig struct {
	// RPCPath is appended to the node address to form the endpoint.
	RPCPath string `yaml:"rpc_path"`

	// MaxAttempts is the total number of HTTP attempts per call, the first
	// one included. Only transient failures are attempted again.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBaseWait is the first backoff delay; each retry doubles it.
	RetryBaseWait time.Duration `yaml:"retry_base_wait"`

	// RequestTimeout bounds a single HTTP attempt.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxResponseSize bounds the bytes read from a response body.
	MaxResponseSize int64 `yaml:"max_response_size"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers"`
}

// LogConfig configures logging. An empty Level keeps the package logger.
type LogConfig struct {
	Level string `yaml:"level"`

	// Output is "stderr" (default), "stdout" or a file path.
	Output string `yaml:"output"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Workers: 4 * runtime.GOMAXPROCS(0),
		Transport: TransportConfig{
			RPCPath:         DefaultRPCPath,
			MaxAttempts:     DefaultMaxAttempts,
			RetryBaseWait:   DefaultRetryBaseWait,
			RequestTimeout:  DefaultRequestTimeout,
			MaxResponseSize: DefaultMaxResponseSize,
		},
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv loads the file named by ConfigEnv, or returns DefaultConfig
// if the variable is unset.
func ConfigFromEnv() (Config, error) {
	path := os.Getenv(ConfigEnv)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	t := c.Transport
	if !strings.HasPrefix(t.RPCPath, "/") {
		errs = append(errs, fmt.Errorf("transport.rpc_path must start with '/', got %q", t.RPCPath))
	}
	if t.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("transport.max_attempts must be at least 1, got %d", t.MaxAttempts))
	}
	if t.RetryBaseWait < 0 {
		errs = append(errs, fmt.Errorf("transport.retry_base_wait must not be negative, got %s", t.RetryBaseWait))
	}
	if t.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("transport.request_timeout must not be negative, got %s", t.RequestTimeout))
	}
	if t.MaxResponseSize < 1 {
		errs = append(errs, fmt.Errorf("transport.max_response_size must be positive, got %d", t.MaxResponseSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
