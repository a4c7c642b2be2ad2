package client

import (
	"github.com/omochice/line-chat/internal/logger"
)

// options holds the configuration for a Client.
type options struct {
	logger logger.Logger
	dialer Dialer
}

// Option is a function that configures a Client.
type Option func(*options)

// WithLogger sets the logger. If not set, nothing is logged.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDialer sets how connections are opened. Defaults to TCPDialer(0).
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

func checkOptions(opts *options) {
	if opts.logger == nil {
		opts.logger = logger.Nop()
	}
	if opts.dialer == nil {
		opts.dialer = TCPDialer(0)
	}
}
