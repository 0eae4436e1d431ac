package utils_test

import (
	"testing"

	"github.com/candelahq/candela/internal/utils"
)

func TestClamp01(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tc := range cases {
		if got := utils.Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()
	cases := []struct {
		v, lo, hi, want float64
	}{
		{0.1, 0.2, 1.0, 0.2},
		{0.5, 0.2, 1.0, 0.5},
		{1.5, 0.2, 1.0, 1.0},
	}
	for _, tc := range cases {
		if got := utils.Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, want float64
	}{
		{0.9625, 0.96},
		{0.555, 0.56},
		{0.554, 0.55},
		{0, 0},
		{1, 1},
	}
	for _, tc := range cases {
		if got := utils.Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
