package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/infrastructure/circuitbreaker"
)

type classifyRequest struct {
	Text     string          `json:"text"`
	Language domain.Language `json:"language"`
}

// HTTPClassifier calls a remote classification service.
type HTTPClassifier struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewHTTPClassifier(url, apiKey string, timeout time.Duration, client *circuitbreaker.HTTPClient, log *zap.Logger) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassifier{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		client:  client,
		log:     log,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(classifyRequest{Text: text, Language: lang})
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("encode request: %w", err)
	}

	requestID := uuid.NewString()
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Post(ctx, c.url, header, body)
	if err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("classifier request %s: %w", requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.ClassificationResult{}, fmt.Errorf("classifier request %s: unexpected status %d", requestID, resp.StatusCode)
	}

	var result domain.ClassificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.ClassificationResult{}, fmt.Errorf("decode classifier response: %w", err)
	}
	if err := result.Validate(); err != nil {
		c.log.Warn("Classifier returned a partial result", zap.String("request_id", requestID))
		return domain.ClassificationResult{}, err
	}

	return result, nil
}
