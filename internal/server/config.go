package server

import (
	"github.com/candelahq/candela/internal/audit"
	"github.com/candelahq/candela/internal/logging"
)

// Config for the HTTP + WebSocket API surface.
type Config struct {
	// ListenAddr is the host:port the server binds to.
	ListenAddr string

	// AppConfig configures the orchestrator; nil gets defaults.
	AppConfig *audit.Config

	// Logger is optional; nil gets a stdout JSON logger.
	Logger logging.Logger
}

// DefaultConfig listens on :8484.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8484",
		AppConfig:  audit.DefaultConfig(),
	}
}
