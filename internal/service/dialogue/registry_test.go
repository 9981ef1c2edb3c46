package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/mocks"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	// Arrange
	r := NewRegistry(RegistryConfig{Classifier: &mocks.MockClassifier{}}, newTestLogger())
	defer r.CloseAll()

	// Act
	s := r.Create(SessionOptions{})
	got, err := r.Get(s.ID())

	// Assert
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
	if s.State().Language != domain.LanguageEnglish {
		t.Errorf("default language = %q", s.State().Language)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d", r.Len())
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(RegistryConfig{}, newTestLogger())
	defer r.CloseAll()

	if _, err := r.Get("missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistry_RemoveClosesSession(t *testing.T) {
	// Arrange
	r := NewRegistry(RegistryConfig{Classifier: &mocks.MockClassifier{}}, newTestLogger())
	defer r.CloseAll()
	s := r.Create(SessionOptions{Language: domain.LanguageHindi})

	// Act
	r.Remove(s.ID())
	r.Remove(s.ID())

	// Assert
	if r.Len() != 0 {
		t.Errorf("Len() = %d", r.Len())
	}
	if err := s.Submit(context.Background(), "fever"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestRegistry_EvictIdle(t *testing.T) {
	// Arrange
	r := NewRegistry(RegistryConfig{Classifier: &mocks.MockClassifier{}}, newTestLogger())
	defer r.CloseAll()
	stale := r.Create(SessionOptions{})
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	fresh := r.Create(SessionOptions{})

	// Act
	r.evictIdle(cutoff)

	// Assert
	if _, err := r.Get(stale.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("stale session should be evicted")
	}
	if _, err := r.Get(fresh.ID()); err != nil {
		t.Error("fresh session should be kept")
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	// Arrange
	r := NewRegistry(RegistryConfig{Classifier: &mocks.MockClassifier{}, IdleTimeout: time.Minute}, newTestLogger())
	a := r.Create(SessionOptions{})
	r.Create(SessionOptions{})

	// Act
	r.CloseAll()
	r.CloseAll()

	// Assert
	if r.Len() != 0 {
		t.Errorf("Len() = %d", r.Len())
	}
	if err := a.SetDraft("x"); !errors.Is(err, domain.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}

func TestRegistry_OnRemove(t *testing.T) {
	// Arrange
	r := NewRegistry(RegistryConfig{Classifier: &mocks.MockClassifier{}}, newTestLogger())
	var removed []string
	r.OnRemove(func(id string) { removed = append(removed, id) })
	a := r.Create(SessionOptions{})
	b := r.Create(SessionOptions{})

	// Act
	r.Remove(a.ID())
	r.CloseAll()

	// Assert
	if len(removed) != 2 || removed[0] != a.ID() || removed[1] != b.ID() {
		t.Errorf("removed = %v, want [%s %s]", removed, a.ID(), b.ID())
	}
}
