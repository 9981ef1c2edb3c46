package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/pkg/config"
)

const (
	databaseURLKey = "connection_string"
	apiKeyKey      = "api_key"
)

// SecretManager reads secrets from KV v2 paths such as
// "secret/data/database".
type SecretManager struct {
	client *api.Client
	log    *zap.Logger
}

func NewSecretManager(address, token string, log *zap.Logger) (*SecretManager, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}

	client.SetToken(token)

	return &SecretManager{client: client, log: log}, nil
}

// ReadField returns one string field of a KV v2 secret.
func (sm *SecretManager) ReadField(ctx context.Context, path, field string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if secret == nil {
		return "", fmt.Errorf("read %s: secret not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("read %s: not a kv v2 secret", path)
	}
	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("read %s: field %q missing", path, field)
	}
	return value, nil
}

// Apply overrides the database URL and the classifier API key with the
// values stored in Vault. Paths left empty in cfg.Vault are skipped.
func (sm *SecretManager) Apply(ctx context.Context, cfg *config.Config) error {
	if path := cfg.Vault.DatabasePath; path != "" {
		url, err := sm.ReadField(ctx, path, databaseURLKey)
		if err != nil {
			return err
		}
		cfg.Database.URL = url
		sm.log.Info("Database URL loaded from Vault", zap.String("path", path))
	}

	if path := cfg.Vault.ClassifierPath; path != "" {
		key, err := sm.ReadField(ctx, path, apiKeyKey)
		if err != nil {
			return err
		}
		cfg.Classifier.APIKey = key
		sm.log.Info("Classifier API key loaded from Vault", zap.String("path", path))
	}

	return nil
}
