package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/pkg/config"
)

func newFakeVault(t *testing.T, secrets map[string]map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"data": data},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSecretManager_Apply(t *testing.T) {
	// Arrange
	srv := newFakeVault(t, map[string]map[string]interface{}{
		"/v1/secret/data/database":   {"connection_string": "postgres://vault@db/symptoms"},
		"/v1/secret/data/classifier": {"api_key": "from-vault"},
	})
	logger, _ := zap.NewDevelopment()
	sm, err := NewSecretManager(srv.URL, "test-token", logger)
	if err != nil {
		t.Fatalf("NewSecretManager() error = %v", err)
	}
	cfg := &config.Config{}
	cfg.Vault.DatabasePath = "secret/data/database"
	cfg.Vault.ClassifierPath = "secret/data/classifier"

	// Act
	err = sm.Apply(context.Background(), cfg)

	// Assert
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.Database.URL != "postgres://vault@db/symptoms" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Classifier.APIKey != "from-vault" {
		t.Errorf("Classifier.APIKey = %q", cfg.Classifier.APIKey)
	}
}

func TestSecretManager_MissingSecret(t *testing.T) {
	// Arrange
	srv := newFakeVault(t, map[string]map[string]interface{}{
		"/v1/secret/data/classifier": {"other": "x"},
	})
	logger, _ := zap.NewDevelopment()
	sm, _ := NewSecretManager(srv.URL, "test-token", logger)

	// Act
	_, missingPath := sm.ReadField(context.Background(), "secret/data/database", "connection_string")
	_, missingField := sm.ReadField(context.Background(), "secret/data/classifier", "api_key")

	// Assert
	if missingPath == nil {
		t.Error("expected error for missing secret")
	}
	if missingField == nil {
		t.Error("expected error for missing field")
	}
}
