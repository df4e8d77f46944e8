package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/config"
	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/observability"
)

// Outcome labels recorded for every Classify call.
const (
	OutcomeConfigMissing = "config_missing"
	OutcomeCacheHit      = "cache_hit"
	OutcomeCallFailed    = "call_failed"
	OutcomeParseFailed   = "parse_failed"
	OutcomeClassified    = "classified"
	OutcomePartial       = "partial"
	OutcomeEmpty         = "empty"
)

const (
	defaultMaxTokens = 50
	systemPrompt     = "You are a support ticket classifier. Reply with a single JSON object and nothing else."
)

// Gateway turns free-text descriptions into category and priority
// suggestions using an external provider. It never returns an error: every
// failure degrades to an empty result.
type Gateway struct {
	cfg      config.ClassifierConfig
	provider Provider
	logger   *zap.Logger
	metrics  *observability.Metrics
	cache    ResultCache
	tracer   trace.Tracer
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *observability.Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// WithCache enables result caching.
func WithCache(cache ResultCache) GatewayOption {
	return func(g *Gateway) { g.cache = cache }
}

// NewGateway builds a gateway. The credential is read from cfg only.
func NewGateway(cfg config.ClassifierConfig, provider Provider, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		provider: provider,
		logger:   zap.NewNop(),
		tracer:   observability.Tracer("github.com/spec-kit/ticket-triage/classification"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Classify suggests a category and priority for description. Either field
// of the result may be nil; caller cancellation ends the provider call.
func (g *Gateway) Classify(ctx context.Context, description string) domain.ClassificationResult {
	ctx, span := g.tracer.Start(ctx, "classifier.classify")
	defer span.End()
	span.SetAttributes(
		attribute.String("classifier.provider", g.cfg.Provider),
		attribute.String("classifier.model", g.cfg.Model),
	)

	result, outcome, err := g.classify(ctx, description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("classifier.outcome", outcome))
	g.metrics.RecordClassification(g.cfg.Provider, outcome)
	return result
}

func (g *Gateway) classify(ctx context.Context, description string) (domain.ClassificationResult, string, error) {
	if !g.cfg.Configured() || g.provider == nil {
		g.logger.Warn("classification skipped", zap.Error(ErrCredentialMissing), zap.String("provider", g.cfg.Provider))
		return domain.ClassificationResult{}, OutcomeConfigMissing, nil
	}

	key := CacheKey(g.cfg.Provider, g.cfg.Model, description)
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, key); ok {
			return cached, OutcomeCacheHit, nil
		}
	}

	maxTokens := g.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout())
	defer cancel()

	reply, err := g.provider.Complete(callCtx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(description),
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		g.logger.Error("classifier call failed",
			zap.String("provider", g.cfg.Provider),
			zap.Duration("timeout", g.cfg.Timeout()),
			zap.Error(err))
		return domain.ClassificationResult{}, OutcomeCallFailed, err
	}

	result, err := g.parseReply(reply)
	if err != nil {
		g.logger.Error("classifier reply rejected",
			zap.String("provider", g.cfg.Provider),
			zap.Int("reply_length", len(reply)),
			zap.Error(err))
		return domain.ClassificationResult{}, OutcomeParseFailed, err
	}

	outcome := OutcomeEmpty
	switch {
	case result.Complete():
		outcome = OutcomeClassified
	case !result.Empty():
		outcome = OutcomePartial
	}
	if g.cache != nil && !result.Empty() {
		g.cache.Set(ctx, key, result)
	}
	return result, outcome, nil
}

// parseReply extracts the two fields from a JSON object reply. Each field
// is kept only when it is a string naming a member of its enumeration.
func (g *Gateway) parseReply(reply string) (domain.ClassificationResult, error) {
	body := StripCodeFence(reply)
	if !gjson.Valid(body) {
		return domain.ClassificationResult{}, ErrMalformedResponse
	}
	parsed := gjson.Parse(body)
	if !parsed.IsObject() {
		return domain.ClassificationResult{}, ErrMalformedResponse
	}

	category := stringField(parsed, "category")
	priority := stringField(parsed, "priority")
	result := domain.NewClassificationResult(category, priority)

	if result.Category == nil && parsed.Get("category").Exists() {
		g.logger.Debug("discarding category outside the allowed set", zap.String("value", parsed.Get("category").Raw))
	}
	if result.Priority == nil && parsed.Get("priority").Exists() {
		g.logger.Debug("discarding priority outside the allowed set", zap.String("value", parsed.Get("priority").Raw))
	}
	return result, nil
}

func stringField(obj gjson.Result, name string) string {
	field := obj.Get(name)
	if field.Type != gjson.String {
		return ""
	}
	return field.Str
}

// StripCodeFence removes surrounding whitespace and a Markdown code fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// BuildPrompt renders the user prompt naming both closed sets and the reply shape.
func BuildPrompt(description string) string {
	return fmt.Sprintf(`Classify the support ticket below into exactly one of these categories: %s.
Also assign exactly one priority: %s.
Respond with only a JSON object like: {"category": "...", "priority": "..."}
Description: %s`,
		joinValues(domain.Categories), joinValues(domain.Priorities), description)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
