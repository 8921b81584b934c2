package domain

import (
	"errors"
	"testing"
)

func TestNormalizePlan(t *testing.T) {
	raw := SearchPlan{Strategies: []Strategy{
		{Name: "A", Query: "mechanical keyboard", MustInclude: []string{" Keyboard ", ""}, PriceRole: "accessory"},
		{Name: "", Query: "desk mat", PriceRole: "bogus"},
		{Name: "Empty", Query: "   "},
	}}

	plan, err := NormalizePlan(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Strategies) != 2 {
		t.Fatalf("expected 2 strategies after normalization, got %d", len(plan.Strategies))
	}

	first := plan.Strategies[0]
	if len(first.MustInclude) != 1 || first.MustInclude[0] != "keyboard" {
		t.Errorf("keywords not lowercased/cleaned: %v", first.MustInclude)
	}
	if first.PriceRole != RoleAccessory {
		t.Errorf("expected accessory role, got %s", first.PriceRole)
	}

	second := plan.Strategies[1]
	if second.Name != "General" {
		t.Errorf("empty strategy name should default to General, got %q", second.Name)
	}
	if second.PriceRole != RoleSimilar {
		t.Errorf("unknown role should normalize to similar, got %s", second.PriceRole)
	}
}

func TestNormalizePlan_BoundsLength(t *testing.T) {
	raw := SearchPlan{}
	for i := 0; i < 8; i++ {
		raw.Strategies = append(raw.Strategies, Strategy{Name: "s", Query: "q"})
	}
	plan, err := NormalizePlan(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Strategies) != MaxStrategies {
		t.Errorf("expected plan bounded to %d, got %d", MaxStrategies, len(plan.Strategies))
	}
}

func TestNormalizePlan_Empty(t *testing.T) {
	_, err := NormalizePlan(SearchPlan{Strategies: []Strategy{{Query: "  "}}})
	if !errors.Is(err, ErrEmptyPlan) {
		t.Errorf("expected ErrEmptyPlan, got %v", err)
	}
}

func TestTitleMatches(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		keywords []string
		want     bool
	}{
		{"substring hit", "Ergonomic Keyboard Pro", []string{"keyboard"}, true},
		{"case insensitive", "MECHANICAL KEYBOARD", []string{"keyboard"}, true},
		{"miss", "Wireless Mouse", []string{"keyboard"}, false},
		{"any keyword matches", "Desk Mat XL", []string{"keyboard", "mat"}, true},
		{"no keywords matches everything", "Anything", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleMatches(tt.title, tt.keywords); got != tt.want {
				t.Errorf("TitleMatches(%q, %v) = %v, want %v", tt.title, tt.keywords, got, tt.want)
			}
		})
	}
}

func TestCandidateKey(t *testing.T) {
	withLink := Candidate{Payload: map[string]string{"link": "https://x/p1", "title": "P1"}}
	if withLink.Key() != "https://x/p1" {
		t.Errorf("key should prefer link, got %q", withLink.Key())
	}
	noLink := Candidate{Payload: map[string]string{"title": "P2"}}
	if noLink.Key() != "P2" {
		t.Errorf("key should fall back to title, got %q", noLink.Key())
	}
	empty := Candidate{Payload: map[string]string{}}
	if empty.Key() != "Unknown Product" {
		t.Errorf("empty payload key = %q", empty.Key())
	}
}
