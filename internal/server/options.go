package server

import (
	"github.com/omochice/line-chat/internal/logger"
)

// DefaultWebSocketPath is the only path accepted for WebSocket upgrades
// unless WithWebSocketPath says otherwise.
const DefaultWebSocketPath = "/ws"

type options struct {
	logger logger.Logger
	wsPath string
}

// Option is a function that configures a Server.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWebSocketPath sets the request path accepted for WebSocket upgrades.
func WithWebSocketPath(path string) Option {
	return func(o *options) {
		o.wsPath = path
	}
}

func checkOptions(opts *options) {
	if opts.logger == nil {
		opts.logger = logger.Nop()
	}
	if opts.wsPath == "" {
		opts.wsPath = DefaultWebSocketPath
	}
}
