package classification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/config"
	"github.com/spec-kit/ticket-triage/internal/observability"
)

var (
	// ErrCredentialMissing means no provider credential was configured.
	ErrCredentialMissing = errors.New("classifier credential not configured")
	// ErrMalformedResponse means the provider reply was not a JSON object.
	ErrMalformedResponse = errors.New("classifier response is not a JSON object")
)

// CompletionRequest is a single prompt sent to a text-completion provider.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Provider is an external text-completion capability. Implementations must
// honor ctx cancellation and return the raw reply text.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg config.ClassifierConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicProvider(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider %q", cfg.Provider)
	}
}

// NewFromConfig selects the configured provider and builds a gateway around
// it. cache may be nil.
func NewFromConfig(cfg config.ClassifierConfig, cache ResultCache, logger *zap.Logger, metrics *observability.Metrics) (*Gateway, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewGateway(cfg, provider, WithLogger(logger), WithMetrics(metrics), WithCache(cache)), nil
}
