package domain

import "strings"

// NormalizePlan validates and normalizes a raw plan before it reaches the
// executor: strategies with empty query text are dropped, required keywords
// are lowercased and de-blanked, price roles collapse to a known value, and
// the plan is bounded to MaxStrategies.
//
// Returns ErrEmptyPlan when nothing usable remains; callers fall back to a
// deterministic planner in that case.
func NormalizePlan(p SearchPlan) (SearchPlan, error) {
	out := SearchPlan{Strategies: make([]Strategy, 0, len(p.Strategies))}

	for _, s := range p.Strategies {
		s.Query = strings.TrimSpace(s.Query)
		if s.Query == "" {
			continue
		}
		if s.Name == "" {
			s.Name = "General"
		}
		s.PriceRole = NormalizeRole(string(s.PriceRole))

		keywords := make([]string, 0, len(s.MustInclude))
		for _, k := range s.MustInclude {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				keywords = append(keywords, k)
			}
		}
		s.MustInclude = keywords

		out.Strategies = append(out.Strategies, s)
		if len(out.Strategies) == MaxStrategies {
			break
		}
	}

	if len(out.Strategies) == 0 {
		return out, ErrEmptyPlan
	}
	return out, nil
}

// TitleMatches reports whether any required keyword appears as a
// case-insensitive substring of the title. An empty keyword list matches.
func TitleMatches(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title = strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}
