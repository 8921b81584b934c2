package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

// BrandSource resolves brands compatible with a given brand. A nil source is
// valid and yields no ecosystem strategy.
type BrandSource interface {
	RelatedBrands(ctx context.Context, brand string, limit int) ([]string, error)
}

// archetypeQueries maps lifestyle archetypes to search queries.
var archetypeQueries = map[string][]string{
	"The Creator":                     {"creative tools camera", "art supplies", "design equipment"},
	"The Optimizer":                   {"productivity gadgets", "ergonomic accessories", "office tech"},
	"The Nester":                      {"home decor", "kitchen appliances", "comfort items"},
	"The Explorer":                    {"travel gear", "outdoor equipment", "portable tech"},
	"Digital Nomad / Tech Enthusiast": {"portable tech", "travel accessories", "wireless gadgets"},
}

// vibeQueries maps aesthetic preferences to search queries.
var vibeQueries = map[string][]string{
	"Minimalist": {"minimal design", "clean aesthetic", "simple"},
	"Industrial": {"industrial style", "raw materials", "leather"},
	"Retro":      {"vintage style", "retro design", "classic"},
	"Cyber":      {"RGB lighting", "gaming setup", "futuristic"},
	"Matte Black, Industrial, Ultra-Portable": {"matte black", "portable", "industrial design"},
}

// Rules is a deterministic planner built from archetype and vibe lookup
// tables, plus a brand ecosystem strategy when a compatibility graph is
// available. It never returns an empty plan.
type Rules struct {
	brands BrandSource
}

// NewRules creates the rule planner. brands may be nil.
func NewRules(brands BrandSource) *Rules {
	return &Rules{brands: brands}
}

// Plan assembles up to five strategies from the profile and activity.
func (r *Rules) Plan(ctx context.Context, profile domain.Profile, activity domain.ActivityContext) (domain.SearchPlan, error) {
	archetype := orDefault(profile.Archetype, "General")
	vibe := orDefault(profile.Vibe, "Neutral")

	var strategies []domain.Strategy

	queries := archetypeQueries[archetype]
	if len(queries) == 0 {
		queries = []string{"trending products"}
	}
	for _, q := range bound(queries, 2) {
		strategies = append(strategies, domain.Strategy{
			Name:      "Based on " + archetype,
			Query:     q,
			Reasoning: fmt.Sprintf("Matches your %s lifestyle", archetype),
			PriceRole: domain.RoleSimilar,
		})
	}

	vibeSearches := vibeQueries[vibe]
	if len(vibeSearches) == 0 {
		vibeSearches = []string{"popular products"}
	}
	for _, q := range bound(vibeSearches, 2) {
		strategies = append(strategies, domain.Strategy{
			Name:      "Aesthetic: " + vibe,
			Query:     q,
			Reasoning: fmt.Sprintf("Matches your %s aesthetic preference", vibe),
			PriceRole: domain.RoleSimilar,
		})
	}

	if eco := r.ecosystemStrategy(ctx, activity); eco != nil {
		strategies = append(strategies, *eco)
	} else if len(profile.Hobbies) > 0 {
		strategies = append(strategies, domain.Strategy{
			Name:      "Hobby Match",
			Query:     strings.Join(bound(profile.Hobbies, 2), " "),
			Reasoning: "Based on your interests: " + strings.Join(profile.Hobbies, ", "),
			PriceRole: domain.RoleSimilar,
		})
	}

	return domain.NormalizePlan(domain.SearchPlan{Strategies: strategies})
}

// ecosystemStrategy builds a brand expansion strategy from the most recently
// viewed branded product. Graph errors drop the strategy rather than the plan.
func (r *Rules) ecosystemStrategy(ctx context.Context, activity domain.ActivityContext) *domain.Strategy {
	if r.brands == nil {
		return nil
	}

	brand := ""
	for i := len(activity.RecentProducts) - 1; i >= 0; i-- {
		if b := activity.RecentProducts[i].Brand; b != "" {
			brand = b
			break
		}
	}
	if brand == "" {
		return nil
	}

	related, err := r.brands.RelatedBrands(ctx, brand, 3)
	if err != nil || len(related) == 0 {
		return nil
	}

	return &domain.Strategy{
		Name:      "Ecosystem Expansion",
		Query:     strings.Join(related, " ") + " accessories",
		Reasoning: fmt.Sprintf("Brands compatible with %s you already use", brand),
		PriceRole: domain.RoleAccessory,
	}
}

func bound[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
