// Package curator orchestrates retrieval, ranking, and diversification: the
// search pipeline (embed, tier-select, diversify, format) and the
// personalized feed built by executing a multi-strategy search plan.
package curator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
	"github.com/Jawher-Sadok/VondraLink/engine/planner"
	"github.com/Jawher-Sadok/VondraLink/engine/pricing"
	"github.com/Jawher-Sadok/VondraLink/engine/rank"
	"github.com/Jawher-Sadok/VondraLink/pkg/clip"
	"github.com/Jawher-Sadok/VondraLink/pkg/fn"
	"github.com/Jawher-Sadok/VondraLink/pkg/resilience"
)

// VectorSearcher abstracts the Qdrant product index.
type VectorSearcher interface {
	Query(ctx context.Context, embedding []float32, limit int, withVectors bool) ([]domain.Candidate, error)
}

// Options configures the curator pipelines.
type Options struct {
	Tiers rank.TierConfig
	// SearchLambda is the MMR relevance weight for plain search.
	SearchLambda float64
	// PlanLambda is the MMR relevance weight during plan execution.
	PlanLambda float64
	// SearchPool is how many candidates a diversified search fetches.
	SearchPool int
	// StrategyPool is how many candidates each plan strategy fetches.
	StrategyPool int
	// DiversifyTo is the post-MMR pool size per strategy.
	DiversifyTo int
	// ItemsPerStrategy is the fill quota per strategy.
	ItemsPerStrategy int
	// Workers bounds the strategy fetch fan-out.
	Workers int
	// FetchTimeout bounds a single vector-store query.
	FetchTimeout time.Duration
	// PlanTimeout bounds a whole plan execution.
	PlanTimeout time.Duration
	Retry       fn.RetryOpts
}

// DefaultOptions returns the standard pipeline parameters.
func DefaultOptions() Options {
	return Options{
		Tiers:            rank.DefaultTiers(),
		SearchLambda:     0.7,
		PlanLambda:       0.6,
		SearchPool:       50,
		StrategyPool:     60,
		DiversifyTo:      25,
		ItemsPerStrategy: 3,
		Workers:          3,
		FetchTimeout:     5 * time.Second,
		PlanTimeout:      30 * time.Second,
		Retry: fn.RetryOpts{
			MaxAttempts: 2,
			InitialWait: 200 * time.Millisecond,
			MaxWait:     time.Second,
			Jitter:      true,
		},
	}
}

// Service is the curator orchestration service.
type Service struct {
	embed   clip.Embedder
	store   VectorSearcher
	planner planner.Planner
	breaker *resilience.Breaker
	opts    Options
	log     *slog.Logger
}

// New creates a curator Service.
func New(embed clip.Embedder, store VectorSearcher, p planner.Planner, breaker *resilience.Breaker, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		embed:   embed,
		store:   store,
		planner: p,
		breaker: breaker,
		opts:    opts,
		log:     log,
	}
}

// SearchRequest describes one search call.
type SearchRequest struct {
	Query  string  `json:"query"`
	Mode   string  `json:"mode"`
	Image  []byte  `json:"-"`
	Limit  int     `json:"limit"`
	UseMMR bool    `json:"use_mmr"`
	Lambda float64 `json:"lambda"`
	// Budget admits only prices inside [0.5*Budget, Budget] when positive.
	Budget float64 `json:"budget_limit"`
}

const (
	ModeText  = "text"
	ModeImage = "image"
)

func (r *SearchRequest) validate() error {
	switch r.Mode {
	case "", ModeText:
		r.Mode = ModeText
		if r.Query == "" {
			return domain.ErrEmptyQuery
		}
	case ModeImage:
		if len(r.Image) == 0 {
			return domain.ErrEmptyQuery
		}
	default:
		return domain.ErrInvalidMode
	}
	if r.Lambda < 0 || r.Lambda > 1 {
		return domain.ErrInvalidLambda
	}
	if r.Limit <= 0 {
		r.Limit = 5
	}
	return nil
}

// Search runs the retrieval pipeline: embed the query, pull a candidate pool,
// pick the best quality tier, diversify with MMR, format, then apply the
// budget window.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]domain.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { searchDuration.WithLabelValues(req.Mode).Observe(time.Since(start).Seconds()) }()

	lambda := req.Lambda
	if lambda == 0 {
		lambda = s.opts.SearchLambda
	}

	var embedding []float32
	var err error
	if req.Mode == ModeImage {
		embedding, err = s.embed.EmbedImage(ctx, req.Image)
	} else {
		embedding, err = s.embed.EmbedText(ctx, req.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("curator: embed query: %w", err)
	}

	fetch := req.Limit * 2
	if req.UseMMR {
		fetch = s.opts.SearchPool
	}
	points, err := s.fetch(ctx, embedding, fetch, req.UseMMR)
	if err != nil {
		return nil, fmt.Errorf("curator: search: %w", err)
	}
	if len(points) == 0 {
		return []domain.Product{}, nil
	}

	points, tier := rank.SelectTier(points, req.Limit, s.opts.Tiers)
	tierSelections.WithLabelValues(string(tier)).Inc()
	if tier != rank.TierHigh {
		s.log.Info("degraded result tier", "tier", tier, "pool", len(points))
	}

	if req.UseMMR && len(points) > req.Limit {
		vectors := fn.Map(points, func(c domain.Candidate) []float32 { return c.Vector })
		points = fn.Pick(points, rank.MMR(embedding, vectors, req.Limit, lambda))
	} else if len(points) > req.Limit {
		points = points[:req.Limit]
	}

	results := fn.Map(points, displayProduct)

	if req.Budget > 0 {
		window := pricing.BudgetWindow(req.Budget)
		results = fn.Filter(results, func(p domain.Product) bool {
			v, ok := pricing.Parse(p.Price)
			return ok && window.Contains(v)
		})
	}
	return results, nil
}

// Recommendations builds the personalized feed: derive the baseline price
// from view history, generate a plan, and execute it.
func (s *Service) Recommendations(ctx context.Context, profile domain.Profile, activity domain.ActivityContext) ([]domain.Match, error) {
	baseline := pricing.Baseline(activity.RecentProducts)

	plan, err := s.planner.Plan(ctx, profile, activity)
	if err != nil {
		return nil, fmt.Errorf("curator: plan: %w", err)
	}
	return s.ExecutePlan(ctx, plan, baseline)
}

// fetch queries the vector store through the circuit breaker with a bounded
// retry for transient failures.
func (s *Service) fetch(ctx context.Context, embedding []float32, limit int, withVectors bool) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	result := fn.Retry(ctx, s.opts.Retry, func(ctx context.Context) fn.Result[[]domain.Candidate] {
		return resilience.CallResult(s.breaker, ctx, func(ctx context.Context) fn.Result[[]domain.Candidate] {
			return fn.FromPair(s.store.Query(ctx, embedding, limit, withVectors))
		})
	})
	return result.Unwrap()
}

// displayProduct formats a candidate for the search response: "$"-prefixed
// price and a 4-decimal score.
func displayProduct(c domain.Candidate) domain.Product {
	return domain.Product{
		Title: c.Title(),
		Price: "$" + priceOrZero(c),
		Image: c.Payload["image_online"],
		Link:  c.Payload["link"],
		Score: fmt.Sprintf("%.4f", c.Score),
	}
}

// matchProduct formats a candidate for the feed response: the raw stored
// price string and a 4-decimal score.
func matchProduct(c domain.Candidate) domain.Product {
	return domain.Product{
		Title: c.Title(),
		Price: priceOrZero(c),
		Image: c.Payload["image_online"],
		Link:  c.Payload["link"],
		Score: fmt.Sprintf("%.4f", c.Score),
	}
}

func priceOrZero(c domain.Candidate) string {
	if p := c.Payload["price"]; p != "" {
		return p
	}
	return "0"
}

var tracer = otel.Tracer("github.com/Jawher-Sadok/VondraLink/engine/curator")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
