// Command candela starts the confidence-scoring API server.
// Usage: go run . [listen address]
// Default listen address: :8484
package main

import (
	"log"
	"os"

	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/server"
)

func main() {
	cfg := server.DefaultConfig()
	cfg.Logger = logging.NewStdoutLogger("Candela")

	// Optional: custom listen address from command line
	if len(os.Args) > 1 {
		cfg.ListenAddr = os.Args[1]
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Server setup error: %v", err)
	}
	defer srv.Close()

	cfg.Logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
