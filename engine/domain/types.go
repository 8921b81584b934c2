// Package domain defines core domain types, constants, and validation for the
// VondraLink engine pipeline. It acts as the normalization gate at pipeline
// entry points: no search plan reaches the executor without passing through
// NormalizePlan.
package domain

import "time"

// Candidate is a single vector-store hit, with the stored vector when the
// query requested it (needed for diversification).
type Candidate struct {
	ID      string            `json:"id"`
	Vector  []float32         `json:"-"`
	Payload map[string]string `json:"payload"`
	Score   float32           `json:"score"`
}

// Title returns the payload title, or a placeholder when missing.
func (c Candidate) Title() string {
	if t := c.Payload["title"]; t != "" {
		return t
	}
	return "Unknown Product"
}

// Key identifies a candidate for cross-strategy deduplication: the product
// link when present, falling back to the title.
func (c Candidate) Key() string {
	if l := c.Payload["link"]; l != "" {
		return l
	}
	return c.Title()
}

// Product is the display form of a recommended item.
type Product struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Image string `json:"image"`
	Link  string `json:"link"`
	Score string `json:"score"`
}

// PriceRole describes how a strategy's target price relates to the user's
// baseline price.
type PriceRole string

const (
	RoleSimilar   PriceRole = "similar"
	RoleAccessory PriceRole = "accessory"
	RoleUpgrade   PriceRole = "upgrade"
)

// NormalizeRole maps unknown or empty roles to RoleSimilar.
func NormalizeRole(r string) PriceRole {
	switch PriceRole(r) {
	case RoleAccessory:
		return RoleAccessory
	case RoleUpgrade:
		return RoleUpgrade
	default:
		return RoleSimilar
	}
}

// Strategy is one named search within a plan.
type Strategy struct {
	Name        string    `json:"strategy"`
	Query       string    `json:"search_query"`
	Reasoning   string    `json:"reasoning"`
	MustInclude []string  `json:"strict_must_include"`
	PriceRole   PriceRole `json:"price_role"`
}

// SearchPlan is an ordered list of strategies. Length is bounded by
// MaxStrategies after normalization.
type SearchPlan struct {
	Strategies []Strategy `json:"search_plan"`
}

// MaxStrategies bounds a normalized plan.
const MaxStrategies = 5

// MatchType distinguishes matches that passed every filter from those
// admitted after relaxation.
type MatchType string

const (
	MatchStrict  MatchType = "Strict"
	MatchRelaxed MatchType = "Relaxed"
)

// Match is a single recommended product with its provenance.
type Match struct {
	Strategy  string    `json:"strategy"`
	Reasoning string    `json:"reasoning"`
	Type      MatchType `json:"match_type"`
	Product   Product   `json:"product"`
}

// SearchEntry is one recorded search in a user's activity history.
type SearchEntry struct {
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Budget    float64   `json:"budget,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewedProduct is one recorded product view.
type ViewedProduct struct {
	Name      string    `json:"name"`
	Brand     string    `json:"brand,omitempty"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// TopProduct is a product ranked by interaction count.
type TopProduct struct {
	Name  string `json:"name"`
	Count int    `json:"interaction_count"`
}

// ActivityContext is a read-only snapshot of a user's recent activity, fed to
// the planner and the baseline price computation.
type ActivityContext struct {
	RecentSearches []SearchEntry   `json:"recent_searches"`
	RecentProducts []ViewedProduct `json:"recent_products"`
	TopProducts    []TopProduct    `json:"top_products"`
	TotalSearches  int             `json:"total_searches"`
	TotalViews     int             `json:"total_views"`
}

// Profile is the questionnaire-derived user profile consumed by planners.
type Profile struct {
	Tier      string   `json:"derived_richness_tier,omitempty"`
	Archetype string   `json:"archetype,omitempty"`
	Vibe      string   `json:"vibe,omitempty"`
	Hobbies   []string `json:"hobbies,omitempty"`
}
