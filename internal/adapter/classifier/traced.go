package classifier

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

// TracedClassifier records a span and the latency metrics around inner.
type TracedClassifier struct {
	inner ports.Classifier
}

func NewTracedClassifier(inner ports.Classifier) *TracedClassifier {
	return &TracedClassifier{inner: inner}
}

func (c *TracedClassifier) Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "classifier.classify",
		attribute.String("language", string(lang)),
		attribute.Int("text.length", len(text)),
	)
	defer span.End()

	start := time.Now()
	result, err := c.inner.Classify(ctx, text, lang)
	telemetry.ClassificationLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.ClassificationsTotal.WithLabelValues("", "error").Inc()
		return result, err
	}

	span.SetAttributes(
		attribute.String("suggestion", string(result.Suggestion)),
		attribute.String("confidence", result.Confidence),
	)
	telemetry.ClassificationsTotal.WithLabelValues(string(result.Suggestion), "ok").Inc()
	return result, nil
}
