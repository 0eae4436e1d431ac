//go:build tools

package main

// Pin the swagger generator used by go:generate in internal/server.
import (
	_ "github.com/swaggo/swag"
)
