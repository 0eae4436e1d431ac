package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Args are the command-line arguments for an offline scoring run.
type Args struct {
	// Input is the path to a scanner results JSON document; "-" reads stdin.
	Input string

	// ContextBackend is "" (no context) or "snippet" for markup-derived
	// context. Live-page inspection is a server concern, not a CLI one.
	ContextBackend string

	// MinConfidence filters the printed violations; 0 prints everything.
	MinConfidence float64

	// FlaggedOnly keeps only violations needing manual review.
	FlaggedOnly bool

	// Format is "json" or "text".
	Format string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns Args. Use in tests by
// passing arbitrary slices; the function is deterministic and does not
// read os.Args.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("candela-score", flag.ContinueOnError)
	var (
		input         = fs.String("input", "", "Scanner results JSON file, or - for stdin (required)")
		contextFlag   = fs.String("context", "", "Context backend: snippet, or empty for none")
		minConfidence = fs.Float64("min-confidence", 0, "Only print violations at or above this confidence")
		flaggedOnly   = fs.Bool("flagged-only", false, "Only print violations flagged for manual review")
		format        = fs.String("format", "text", "Output format: text|json")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*input) == "" {
		return nil, fmt.Errorf("missing required -input argument")
	}
	switch *format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid -format %q: must be text or json", *format)
	}
	switch *contextFlag {
	case "", "snippet":
	default:
		return nil, fmt.Errorf("invalid -context %q: must be snippet or empty", *contextFlag)
	}
	if *minConfidence < 0 || *minConfidence > 1 {
		return nil, fmt.Errorf("-min-confidence must be on [0,1]")
	}

	return &Args{
		Input:          *input,
		ContextBackend: *contextFlag,
		MinConfidence:  *minConfidence,
		FlaggedOnly:    *flaggedOnly,
		Format:         *format,
		RawArgs:        args,
	}, nil
}
