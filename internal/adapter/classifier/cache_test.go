package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/mocks"
)

func TestCachingClassifier_HitSkipsInner(t *testing.T) {
	// Arrange
	inner := &mocks.MockClassifier{}
	cache := mocks.NewMockCache()
	c := NewCachingClassifier(inner, cache, time.Minute, newTestLogger())

	// Act
	first, err := c.Classify(context.Background(), "I have a Fever", domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	second, err := c.Classify(context.Background(), "  i have a   fever ", domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("second Classify() error = %v", err)
	}

	// Assert
	if len(inner.Calls()) != 1 {
		t.Errorf("inner called %d times, want 1", len(inner.Calls()))
	}
	if first != second {
		t.Errorf("cached result %+v differs from %+v", second, first)
	}
}

func TestCachingClassifier_KeyedByLanguage(t *testing.T) {
	// Arrange
	inner := &mocks.MockClassifier{}
	c := NewCachingClassifier(inner, mocks.NewMockCache(), time.Minute, newTestLogger())

	// Act
	c.Classify(context.Background(), "fever", domain.LanguageEnglish)
	c.Classify(context.Background(), "fever", domain.LanguageHindi)

	// Assert
	if len(inner.Calls()) != 2 {
		t.Errorf("inner called %d times, want 2", len(inner.Calls()))
	}
}

func TestCachingClassifier_ErrorsAreNotCached(t *testing.T) {
	// Arrange
	inner := &mocks.MockClassifier{
		ClassifyFunc: func(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
			return domain.ClassificationResult{}, errors.New("upstream down")
		},
	}
	cache := mocks.NewMockCache()
	c := NewCachingClassifier(inner, cache, time.Minute, newTestLogger())

	// Act
	_, err := c.Classify(context.Background(), "fever", domain.LanguageEnglish)

	// Assert
	if err == nil {
		t.Fatal("expected error")
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries, want 0", cache.Len())
	}
}

func TestCachingClassifier_CacheFailureIsBypassed(t *testing.T) {
	// Arrange
	inner := &mocks.MockClassifier{}
	cache := mocks.NewMockCache()
	cache.SetFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
		return errors.New("redis unavailable")
	}
	c := NewCachingClassifier(inner, cache, time.Minute, newTestLogger())

	// Act
	result, err := c.Classify(context.Background(), "fever", domain.LanguageEnglish)

	// Assert
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Reply != "mock reply" {
		t.Errorf("Reply = %q", result.Reply)
	}
}
