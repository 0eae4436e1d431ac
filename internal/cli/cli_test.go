package cli_test

import (
	"testing"

	"github.com/candelahq/candela/internal/cli"
)

func TestParseArgs_Defaults(t *testing.T) {
	t.Parallel()

	args, err := cli.ParseArgs([]string{"-input", "results.json"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Input != "results.json" {
		t.Errorf("unexpected input %q", args.Input)
	}
	if args.ContextBackend != "" || args.MinConfidence != 0 || args.FlaggedOnly {
		t.Errorf("unexpected non-default values: %+v", args)
	}
	if args.Format != "text" {
		t.Errorf("expected default format text, got %q", args.Format)
	}
}

func TestParseArgs_AllFlags(t *testing.T) {
	t.Parallel()

	args, err := cli.ParseArgs([]string{
		"-input", "-",
		"-context", "snippet",
		"-min-confidence", "0.85",
		"-flagged-only",
		"-format", "json",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.Input != "-" || args.ContextBackend != "snippet" || args.MinConfidence != 0.85 || !args.FlaggedOnly || args.Format != "json" {
		t.Errorf("unexpected parsed args: %+v", args)
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"-format", "json"}},
		{"blank input", []string{"-input", "  "}},
		{"bad format", []string{"-input", "r.json", "-format", "xml"}},
		{"bad context", []string{"-input", "r.json", "-context", "selenium"}},
		{"confidence out of range", []string{"-input", "r.json", "-min-confidence", "1.5"}},
		{"unknown flag", []string{"-input", "r.json", "-bogus"}},
	}
	for _, tc := range cases {
		if _, err := cli.ParseArgs(tc.args); err == nil {
			t.Errorf("%s: expected error for %v", tc.name, tc.args)
		}
	}
}
