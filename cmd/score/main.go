// Command score runs the confidence-scoring pipeline offline against a
// saved scanner results document, without persistence or a server.
// Usage: go run ./cmd/score -input results.json [-context snippet] [-format json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/candelahq/candela/internal/aggregate"
	"github.com/candelahq/candela/internal/audit"
	"github.com/candelahq/candela/internal/cli"
	"github.com/candelahq/candela/internal/ingest"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/pagecontext"
	"github.com/candelahq/candela/internal/report"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	var in io.Reader = os.Stdin
	if args.Input != "-" {
		f, err := os.Open(args.Input)
		if err != nil {
			log.Fatalf("Opening input: %v", err)
		}
		defer f.Close()
		in = f
	}

	scan, err := ingest.ParseReport(in)
	if err != nil {
		log.Fatalf("Parsing results: %v", err)
	}

	pagecontext.RegisterDefaultBackends()

	logger := logging.NewStderrLogger("Score")
	orch, err := audit.NewOrchestrator(audit.DefaultConfig(), nil, logger)
	if err != nil {
		log.Fatalf("Setup error: %v", err)
	}
	defer orch.Close()

	result, err := orch.RunAudit(context.Background(), scan, audit.Options{
		ContextBackend: args.ContextBackend,
	})
	if err != nil {
		log.Fatalf("Audit error: %v", err)
	}

	scored := result.Scored
	if args.MinConfidence > 0 {
		scored = aggregate.FilterByConfidence(scored, args.MinConfidence)
	}
	if args.FlaggedOnly {
		scored = aggregate.FilterFlagged(scored)
	}
	scored = aggregate.SortByConfidence(scored)

	if args.Format == "json" {
		result.Scored = scored
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Encoding output: %v", err)
		}
		return
	}

	fmt.Print(report.RenderAudit(*result.Record))
	if len(scored) > 0 {
		fmt.Println("violations:")
		for _, sv := range scored {
			flag := " "
			if sv.FlaggedForReview {
				flag = "!"
			}
			fmt.Printf("  %s %-40s %.2f %s\n", flag, sv.ID, sv.Confidence, sv.Severity)
		}
	}
}
