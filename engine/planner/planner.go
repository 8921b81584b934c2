// Package planner generates search plans for the personalized feed. The
// primary planner asks an LLM for five strategies; a deterministic rule
// planner covers LLM outages and users with sparse profiles.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

// Planner produces a normalized search plan from a user profile and recent
// activity.
type Planner interface {
	Plan(ctx context.Context, profile domain.Profile, activity domain.ActivityContext) (domain.SearchPlan, error)
}

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	braceBlock = regexp.MustCompile(`(?s)\{.*\}`)
)

// decodePlan parses a search plan from raw LLM output. Models sometimes wrap
// the JSON in markdown fences or prose, so parsing falls back to extracting
// the fenced block and then the outermost brace pair.
func decodePlan(text string) (domain.SearchPlan, error) {
	var plan domain.SearchPlan
	if err := json.Unmarshal([]byte(text), &plan); err == nil {
		return plan, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &plan); err == nil {
			return plan, nil
		}
	}
	if m := braceBlock.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), &plan); err == nil {
			return plan, nil
		}
	}
	return domain.SearchPlan{}, domain.ErrEmptyPlan
}

// summarize renders recent activity as the compact text block the LLM prompt
// expects.
func summarize(activity domain.ActivityContext) string {
	var b strings.Builder

	if len(activity.RecentSearches) > 0 {
		b.WriteString("Recent Searches:\n")
		for _, s := range tailSearches(activity.RecentSearches, 5) {
			b.WriteString("  - '" + s.Query + "'")
			if s.Budget > 0 {
				b.WriteString(fmt.Sprintf(" (Budget: $%g)", s.Budget))
			}
			b.WriteString("\n")
		}
	}
	if len(activity.RecentProducts) > 0 {
		b.WriteString("Recently Viewed Products:\n")
		products := activity.RecentProducts
		if len(products) > 10 {
			products = products[len(products)-10:]
		}
		for _, p := range products {
			line := "  - " + p.Name
			if p.Brand != "" {
				line += " (" + p.Brand + ")"
			}
			if p.Price != "" {
				line += " - " + p.Price
			}
			b.WriteString(line + "\n")
		}
	}
	if len(activity.TopProducts) > 0 {
		b.WriteString("Most Engaged Products:\n")
		top := activity.TopProducts
		if len(top) > 5 {
			top = top[:5]
		}
		for _, p := range top {
			b.WriteString("  - " + p.Name + " (viewed " + strconv.Itoa(p.Count) + " times)\n")
		}
	}

	if b.Len() == 0 {
		return "No recent activity"
	}
	return strings.TrimRight(b.String(), "\n")
}

func tailSearches(entries []domain.SearchEntry, n int) []domain.SearchEntry {
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
