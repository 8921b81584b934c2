package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

type stubBrands struct {
	related []string
	err     error
	asked   string
}

func (s *stubBrands) RelatedBrands(ctx context.Context, brand string, limit int) ([]string, error) {
	s.asked = brand
	return s.related, s.err
}

func TestRules_KnownArchetypeAndVibe(t *testing.T) {
	r := NewRules(nil)
	plan, err := r.Plan(context.Background(), domain.Profile{
		Archetype: "The Explorer",
		Vibe:      "Minimalist",
	}, domain.ActivityContext{})
	if err != nil {
		t.Fatal(err)
	}

	if len(plan.Strategies) != 4 {
		t.Fatalf("strategies = %d, want 4", len(plan.Strategies))
	}
	if plan.Strategies[0].Name != "Based on The Explorer" || plan.Strategies[0].Query != "travel gear" {
		t.Errorf("strategy[0] = %+v", plan.Strategies[0])
	}
	if plan.Strategies[2].Name != "Aesthetic: Minimalist" {
		t.Errorf("strategy[2] = %+v", plan.Strategies[2])
	}
}

func TestRules_UnknownProfileStillPlans(t *testing.T) {
	r := NewRules(nil)
	plan, err := r.Plan(context.Background(), domain.Profile{}, domain.ActivityContext{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Strategies) == 0 {
		t.Fatal("rule planner must never return an empty plan")
	}
	if plan.Strategies[0].Query != "trending products" {
		t.Errorf("fallback query = %q", plan.Strategies[0].Query)
	}
}

func TestRules_HobbyStrategy(t *testing.T) {
	r := NewRules(nil)
	plan, err := r.Plan(context.Background(), domain.Profile{
		Hobbies: []string{"climbing", "photography", "chess"},
	}, domain.ActivityContext{})
	if err != nil {
		t.Fatal(err)
	}

	last := plan.Strategies[len(plan.Strategies)-1]
	if last.Name != "Hobby Match" {
		t.Fatalf("last strategy = %+v", last)
	}
	if last.Query != "climbing photography" {
		t.Errorf("hobby query = %q, want first two hobbies", last.Query)
	}
}

func TestRules_EcosystemStrategy(t *testing.T) {
	brands := &stubBrands{related: []string{"Anker", "Peak Design"}}
	r := NewRules(brands)

	plan, err := r.Plan(context.Background(), domain.Profile{}, domain.ActivityContext{
		RecentProducts: []domain.ViewedProduct{
			{Name: "old thing"},
			{Name: "Sony WH-1000XM5", Brand: "Sony"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if brands.asked != "Sony" {
		t.Errorf("asked brand = %q, want Sony", brands.asked)
	}
	last := plan.Strategies[len(plan.Strategies)-1]
	if last.Name != "Ecosystem Expansion" {
		t.Fatalf("last strategy = %+v", last)
	}
	if !strings.Contains(last.Query, "anker") && !strings.Contains(last.Query, "Anker") {
		t.Errorf("ecosystem query = %q", last.Query)
	}
	if last.PriceRole != domain.RoleAccessory {
		t.Errorf("price role = %v, want accessory", last.PriceRole)
	}
}

func TestRules_GraphErrorDropsStrategyOnly(t *testing.T) {
	r := NewRules(&stubBrands{err: errors.New("neo4j down")})
	plan, err := r.Plan(context.Background(), domain.Profile{}, domain.ActivityContext{
		RecentProducts: []domain.ViewedProduct{{Name: "x", Brand: "Sony"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range plan.Strategies {
		if s.Name == "Ecosystem Expansion" {
			t.Fatal("ecosystem strategy should be dropped on graph error")
		}
	}
}

func TestRules_BoundedToMaxStrategies(t *testing.T) {
	brands := &stubBrands{related: []string{"Anker"}}
	r := NewRules(brands)
	plan, err := r.Plan(context.Background(), domain.Profile{
		Archetype: "The Nester",
		Vibe:      "Retro",
		Hobbies:   []string{"baking"},
	}, domain.ActivityContext{
		RecentProducts: []domain.ViewedProduct{{Name: "x", Brand: "KitchenAid"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Strategies) > domain.MaxStrategies {
		t.Errorf("strategies = %d, want <= %d", len(plan.Strategies), domain.MaxStrategies)
	}
}
