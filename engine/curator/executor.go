package curator

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
	"github.com/Jawher-Sadok/VondraLink/engine/pricing"
	"github.com/Jawher-Sadok/VondraLink/engine/rank"
	"github.com/Jawher-Sadok/VondraLink/pkg/fn"
)

// strategyPool is the diversified candidate pool fetched for one strategy.
type strategyPool struct {
	strategy domain.Strategy
	hits     []domain.Candidate
}

// ExecutePlan turns a normalized search plan into the final feed. Each
// strategy fetches and diversifies its candidate pool concurrently; the fill
// then runs in plan order so output is deterministic and deduplication across
// strategies is stable. A strategy whose retrieval fails is logged and
// skipped; exhausting every strategy yields an empty feed, not an error.
func (s *Service) ExecutePlan(ctx context.Context, plan domain.SearchPlan, baseline float64) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PlanTimeout)
	defer cancel()

	ctx, span := startSpan(ctx, "curator.ExecutePlan",
		attribute.Int("strategies", len(plan.Strategies)),
		attribute.Float64("baseline", baseline),
	)
	defer span.End()

	pools := fn.ParMap(plan.Strategies, s.opts.Workers, func(st domain.Strategy) strategyPool {
		return s.fetchStrategy(ctx, st)
	})

	feed := []domain.Match{}
	seen := make(map[string]struct{})
	for _, pool := range pools {
		matches := s.fillStrategy(pool, baseline, seen)
		switch {
		case len(matches) == 0 && len(pool.hits) == 0:
			strategiesTotal.WithLabelValues("skipped").Inc()
		case len(matches) == 0:
			strategiesTotal.WithLabelValues("empty").Inc()
		case len(matches) < s.opts.ItemsPerStrategy:
			strategiesTotal.WithLabelValues("partial").Inc()
		default:
			strategiesTotal.WithLabelValues("filled").Inc()
		}
		feed = append(feed, matches...)
	}

	span.SetAttributes(attribute.Int("matches", len(feed)))
	return feed, nil
}

// fetchStrategy embeds the strategy query, pulls its candidate pool with
// vectors, and diversifies it. Failures degrade to an empty pool.
func (s *Service) fetchStrategy(ctx context.Context, st domain.Strategy) strategyPool {
	ctx, span := startSpan(ctx, "curator.fetchStrategy", attribute.String("strategy", st.Name))
	defer span.End()

	if st.Query == "" {
		return strategyPool{strategy: st}
	}

	embedding, err := s.embed.EmbedText(ctx, st.Query)
	if err != nil {
		s.log.Warn("strategy embed failed, skipping", "strategy", st.Name, "error", err)
		return strategyPool{strategy: st}
	}

	hits, err := s.fetch(ctx, embedding, s.opts.StrategyPool, true)
	if err != nil {
		s.log.Warn("strategy search failed, skipping", "strategy", st.Name, "error", err)
		return strategyPool{strategy: st}
	}

	if len(hits) > 5 {
		vectors := fn.Map(hits, func(c domain.Candidate) []float32 { return c.Vector })
		hits = fn.Pick(hits, rank.MMR(embedding, vectors, s.opts.DiversifyTo, s.opts.PlanLambda))
	}
	return strategyPool{strategy: st, hits: hits}
}

// fillStrategy runs the three-pass waterfall over a strategy's pool: strict
// keywords and price, then price only, then neither. seen dedupes across the
// whole plan by link, falling back to title.
func (s *Service) fillStrategy(pool strategyPool, baseline float64, seen map[string]struct{}) []domain.Match {
	window := pricing.RangeForRole(baseline, pool.strategy.PriceRole)
	var matches []domain.Match

	admit := func(checkKeywords, checkPrice bool) {
		for _, hit := range pool.hits {
			if len(matches) >= s.opts.ItemsPerStrategy {
				return
			}
			if _, dup := seen[hit.Key()]; dup {
				continue
			}
			if checkPrice {
				v, _ := pricing.Parse(hit.Payload["price"])
				if !window.Contains(v) {
					continue
				}
			}
			if checkKeywords && !domain.TitleMatches(hit.Title(), pool.strategy.MustInclude) {
				continue
			}

			matchType := domain.MatchRelaxed
			if checkKeywords && checkPrice {
				matchType = domain.MatchStrict
			}
			matchesTotal.WithLabelValues(string(matchType)).Inc()
			matches = append(matches, domain.Match{
				Strategy:  pool.strategy.Name,
				Reasoning: pool.strategy.Reasoning,
				Type:      matchType,
				Product:   matchProduct(hit),
			})
			seen[hit.Key()] = struct{}{}
		}
	}

	admit(true, true)
	if len(matches) < s.opts.ItemsPerStrategy {
		admit(false, true)
	}
	if len(matches) < s.opts.ItemsPerStrategy {
		admit(false, false)
	}
	return matches
}
