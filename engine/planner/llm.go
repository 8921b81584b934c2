package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
)

const systemPrompt = `You are an Expert AI Curator. Your goal is to discover "Hidden Gems".

### THE STRATEGY PLAYBOOK
Generate exactly 5 distinct search strategies. The system will pull 3 products per strategy to create a 15-item feed.

PILLARS:
1. "Aesthetic Match": Visual vibe match.
2. "The Missing Piece": Accessories for main items.
3. "Wildcard": Unexpected but relevant.
4. "Ecosystem Expansion": Brand compatibility.
5. "Direct Upgrade": Spec comparison.

### CRITICAL RULES
1. "strict_must_include": Use concrete nouns ONLY (e.g., "blender", "pan"). No adjectives.
2. "price_role":
   - "accessory": Target 20-50% of avg view price.
   - "upgrade": Target 110%+
   - "similar": Target same range.

### OUTPUT JSON FORMAT
{
  "search_plan": [
    {
      "strategy": "Strategy Name",
      "search_query": "Detailed vector search query",
      "reasoning": "Why this fits",
      "strict_must_include": ["noun1"],
      "price_role": "accessory"
    }
  ]
}`

// LLMOptions configures the LLM planner.
type LLMOptions struct {
	BaseURL     string
	Token       string
	Model       string
	Temperature float64
	// RatePerMin throttles upstream calls. Zero disables throttling.
	RatePerMin int
}

// DefaultLLMOptions provides sensible planner defaults.
func DefaultLLMOptions() LLMOptions {
	return LLMOptions{
		Model:       "gpt-4-turbo",
		Temperature: 0.7,
		RatePerMin:  30,
	}
}

// LLM plans the feed by prompting a chat model. Every failure path falls back
// to the rule planner so recommendation requests never fail on LLM trouble.
type LLM struct {
	client      llms.Model
	fallback    Planner
	limiter     *rate.Limiter
	temperature float64
	log         *slog.Logger
}

// NewLLM creates an LLM planner backed by an OpenAI-compatible endpoint.
func NewLLM(opts LLMOptions, fallback Planner, log *slog.Logger) (*LLM, error) {
	clientOpts := []openai.Option{openai.WithModel(opts.Model)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(opts.BaseURL))
	}
	if opts.Token != "" {
		clientOpts = append(clientOpts, openai.WithToken(opts.Token))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("planner: llm client: %w", err)
	}
	return newLLM(client, opts, fallback, log), nil
}

// newLLM wires an LLM planner around any llms.Model, for tests.
func newLLM(client llms.Model, opts LLMOptions, fallback Planner, log *slog.Logger) *LLM {
	var limiter *rate.Limiter
	if opts.RatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RatePerMin)/60.0), opts.RatePerMin)
	}
	return &LLM{
		client:      client,
		fallback:    fallback,
		limiter:     limiter,
		temperature: opts.Temperature,
		log:         log,
	}
}

// Plan asks the model for a five-strategy plan. Any error, malformed output
// included, degrades to the rule planner.
func (l *LLM) Plan(ctx context.Context, profile domain.Profile, activity domain.ActivityContext) (domain.SearchPlan, error) {
	plan, err := l.generate(ctx, profile, activity)
	if err != nil {
		l.log.Warn("llm plan failed, using fallback", "error", err)
		planFallbacks.Inc()
		return l.fallback.Plan(ctx, profile, activity)
	}
	return plan, nil
}

func (l *LLM) generate(ctx context.Context, profile domain.Profile, activity domain.ActivityContext) (domain.SearchPlan, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return domain.SearchPlan{}, fmt.Errorf("planner: rate limit: %w", err)
		}
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userMessage(profile, activity))},
		},
	}

	resp, err := l.client.GenerateContent(ctx, content,
		llms.WithTemperature(l.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return domain.SearchPlan{}, fmt.Errorf("planner: generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.SearchPlan{}, fmt.Errorf("planner: no choices returned")
	}

	plan, err := decodePlan(resp.Choices[0].Content)
	if err != nil {
		return domain.SearchPlan{}, fmt.Errorf("planner: decode: %w", err)
	}
	return domain.NormalizePlan(plan)
}

// userMessage renders the profile and history block sent as the human turn.
func userMessage(profile domain.Profile, activity domain.ActivityContext) string {
	tier := orDefault(profile.Tier, "Standard")
	archetype := orDefault(profile.Archetype, "General")
	vibe := orDefault(profile.Vibe, "Neutral")
	hobbies := "Not specified"
	if len(profile.Hobbies) > 0 {
		hobbies = strings.Join(profile.Hobbies, ", ")
	}

	return fmt.Sprintf(`### USER PROFILE
- Tier: %s
- Archetype: %s
- Vibe: %s
- Hobbies: %s

### HISTORY
%s`, tier, archetype, vibe, hobbies, summarize(activity))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
