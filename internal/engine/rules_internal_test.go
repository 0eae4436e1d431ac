package engine

import "testing"

func TestRuleLists_Disjoint(t *testing.T) {
	t.Parallel()
	for id := range reliableRules {
		if flakyRules[id] {
			t.Errorf("rule %s is in both the reliable and flaky lists", id)
		}
	}
}

func TestIsSubjectiveRule(t *testing.T) {
	t.Parallel()
	cases := []struct {
		id   string
		want bool
	}{
		{"color-contrast", true},
		{"heading-order", true},
		{"aria-allowed-attr", true},
		{"aria-hidden-focus", true},
		{"image-alt", false},
		{"aria", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isSubjectiveRule(tc.id); got != tc.want {
			t.Errorf("isSubjectiveRule(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestIsWCAGTagged(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		tags []string
		want bool
	}{
		{"lowercase", []string{"cat.text-alternatives", "wcag2a"}, true},
		{"uppercase", []string{"WCAG21AA"}, true},
		{"absent", []string{"best-practice"}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		if got := isWCAGTagged(tc.tags); got != tc.want {
			t.Errorf("%s: isWCAGTagged(%v) = %v, want %v", tc.name, tc.tags, got, tc.want)
		}
	}
}

func TestFalsePositivePatterns_Match(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		text    string
		matches int
	}{
		{"empty aria-label", `<button aria-label="">x</button>`, 1},
		{"display none", `<div style="display: none">x</div>`, 1},
		{"aria-hidden and visibility", `<span aria-hidden="true" style="visibility: hidden"></span>`, 2},
		{"presentation role", `<img role="presentation">`, 1},
		{"clean markup", `<img src="a.png" alt="logo">`, 0},
	}
	for _, tc := range cases {
		got := 0
		for _, p := range falsePositivePatterns {
			if p.re.MatchString(tc.text) {
				got++
			}
		}
		if got != tc.matches {
			t.Errorf("%s: %d patterns matched, want %d", tc.name, got, tc.matches)
		}
	}
}
