package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

// CachingClassifier serves repeated questions from a cache. Cache failures
// are logged and bypassed.
type CachingClassifier struct {
	inner ports.Classifier
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachingClassifier(inner ports.Classifier, cache ports.Cache, ttl time.Duration, log *zap.Logger) *CachingClassifier {
	return &CachingClassifier{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (c *CachingClassifier) Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
	key := cacheKey(text, lang)

	if cached, err := c.cache.Get(ctx, key); err == nil && cached != "" {
		var result domain.ClassificationResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil && result.Validate() == nil {
			telemetry.ClassificationCacheTotal.WithLabelValues("hit").Inc()
			return result, nil
		}
		c.log.Warn("Discarding unreadable cached classification", zap.String("key", key))
	}
	telemetry.ClassificationCacheTotal.WithLabelValues("miss").Inc()

	result, err := c.inner.Classify(ctx, text, lang)
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.log.Warn("Failed to cache classification", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

func cacheKey(text string, lang domain.Language) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "classification:" + string(lang) + ":" + hex.EncodeToString(sum[:])
}
