package pagecontext

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/candelahq/candela/internal/interfaces"
)

// BackendConstructor constructs an interfaces.ContextProvider given the
// config and logger.
type BackendConstructor func(cfg *Config, logger interfaces.Logger) (interfaces.ContextProvider, error)

var (
	mu       sync.RWMutex
	backends = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is
// lower-cased internally; re-registering a name overwrites the previous
// constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	backends[strings.ToLower(name)] = ctor
}

// New constructs the configured ContextProvider backend. It returns an
// error if the named backend has not been registered.
func New(cfg *Config, logger interfaces.Logger) (interfaces.ContextProvider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	name := strings.ToLower(strings.TrimSpace(string(cfg.Backend)))
	if name == "" {
		name = string(BackendChromedp)
	}

	mu.RLock()
	ctor, ok := backends[name]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("pagecontext backend %q not registered: available backends=%v", name, ListBackends())
	}

	p, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct pagecontext backend %q: %w", name, err)
	}
	if p == nil {
		return nil, errors.New("pagecontext constructor returned nil")
	}
	return p, nil
}

// ListBackends returns the registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(backends))
	for k := range backends {
		out = append(out, k)
	}
	return out
}

// RegisterDefaultBackends registers the chromedp and snippet backends.
// Call from init() or early in main() so New can resolve them.
func RegisterDefaultBackends() {
	RegisterBackend(string(BackendChromedp), func(cfg *Config, logger interfaces.Logger) (interfaces.ContextProvider, error) {
		return NewChromedpProvider(cfg, logger)
	})
	RegisterBackend(string(BackendSnippet), func(cfg *Config, logger interfaces.Logger) (interfaces.ContextProvider, error) {
		return NewSnippetProvider(cfg.Violations, logger), nil
	})
}
