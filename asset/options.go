package asset

import (
	"net/http"
	"time"
)

// Option configures a Loader during creation.
type Option func(*options)

type options struct {
	root          string
	client        *http.Client
	timeout       time.Duration
	maxBytes      int64
	maxPixels     int64
	cacheCapacity int
}

func defaultOptions() options {
	return options{
		root:      ".",
		timeout:   DefaultTimeout,
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
	}
}

// WithRoot sets the directory relative paths are resolved against.
func WithRoot(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.root = dir
		}
	}
}

// WithHTTPClient sets the client used for remote sources. It takes
// precedence over WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxBytes limits the encoded size of a single asset. Zero or less
// disables the limit.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithMaxPixels limits the decoded width times height of a single asset.
// Zero or less disables the limit.
func WithMaxPixels(n int64) Option {
	return func(o *options) {
		o.maxPixels = n
	}
}

// WithCache enables the decoded-image cache with the given per-shard
// capacity. Zero disables it.
func WithCache(capacity int) Option {
	return func(o *options) {
		o.cacheCapacity = capacity
	}
}
