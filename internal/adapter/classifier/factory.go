package classifier

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/symptom-assistant/internal/ports"
	"github.com/seu-repo/symptom-assistant/pkg/config"
)

// New assembles the classifier chain described by cfg: the base client,
// an optional cache and the tracing decorator on the outside.
func New(cfg config.ClassifierConfig, cache ports.Cache, log *zap.Logger) (ports.Classifier, error) {
	var base ports.Classifier

	switch cfg.Mode {
	case "", "keyword":
		base = NewKeywordClassifier(cfg.Latency)
	case "http":
		cb := cfg.CircuitBreaker
		breaker := circuitbreaker.New(circuitbreaker.Settings{
			Name:         "classifier",
			MaxRequests:  uint32(cb.MaxRequests),
			Interval:     cb.Interval,
			Timeout:      cb.Timeout,
			FailureRatio: cb.FailureThreshold,
			MinRequests:  uint32(cb.MinRequests),
		}, log)
		client := circuitbreaker.NewHTTPClient(&http.Client{Timeout: cfg.Timeout}, breaker, log)
		base = NewHTTPClassifier(cfg.URL, cfg.APIKey, cfg.Timeout, client, log)
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", cfg.Mode)
	}

	if cache != nil && cfg.CacheTTL > 0 {
		base = NewCachingClassifier(base, cache, cfg.CacheTTL, log)
	}

	log.Info("Classifier configured",
		zap.String("mode", cfg.Mode),
		zap.Bool("cached", cache != nil && cfg.CacheTTL > 0),
	)
	return NewTracedClassifier(base), nil
}
