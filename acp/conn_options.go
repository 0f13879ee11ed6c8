package acp

import "log/slog"

// readBufferSize is the initial size of the input line buffer. Longer
// messages grow it as needed.
const readBufferSize = 64 * 1024

// ConnConfig holds connection configuration.
type ConnConfig struct {
	Logger *slog.Logger
}

func defaultConnConfig() ConnConfig {
	return ConnConfig{}
}

// ConnOption is a functional option for configuring a Conn.
type ConnOption func(*ConnConfig)

// WithLogger sets the logger used for protocol diagnostics.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *ConnConfig) { c.Logger = logger }
}
