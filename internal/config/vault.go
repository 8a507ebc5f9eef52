package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault integration settings.
type VaultConfig struct {
	Enabled   bool               `mapstructure:"enabled"`
	Address   string             `mapstructure:"address"`
	Token     string             `mapstructure:"token"`
	TokenFile string             `mapstructure:"tokenFile"`
	Namespace string             `mapstructure:"namespace"`
	Secrets   VaultSecretsConfig `mapstructure:"secrets"`
}

// VaultSecretsConfig maps secrets to their Vault paths. Paths use the form
// "mount/path#field", e.g. "secret/data/talentscan#gemini_api_key".
type VaultSecretsConfig struct {
	GeminiKey   string `mapstructure:"geminiKey"`
	RedisURL    string `mapstructure:"redisURL"`
	PostgresURL string `mapstructure:"postgresURL"`
}

// LoadVaultSecrets fetches secrets from Vault and injects them into the
// config, overriding file and environment values.
func (c *Config) LoadVaultSecrets(ctx context.Context) error {
	if !c.Vault.Enabled {
		return nil
	}

	client, err := newVaultClient(&c.Vault)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}

	if c.Vault.Secrets.GeminiKey != "" {
		value, err := readVaultSecret(ctx, client, c.Vault.Secrets.GeminiKey)
		if err != nil {
			return fmt.Errorf("failed to read gemini key from vault: %w", err)
		}
		c.AI.APIKey = value
	}

	if c.Vault.Secrets.RedisURL != "" {
		value, err := readVaultSecret(ctx, client, c.Vault.Secrets.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to read redis url from vault: %w", err)
		}
		c.Index.RedisURL = value
	}

	if c.Vault.Secrets.PostgresURL != "" {
		value, err := readVaultSecret(ctx, client, c.Vault.Secrets.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to read postgres url from vault: %w", err)
		}
		c.Benchmarks.PostgresURL = value
	}

	return nil
}

func newVaultClient(cfg *VaultConfig) (*vault.Client, error) {
	vaultConfig := vault.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}
	vaultConfig.Timeout = 10 * time.Second

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, err
	}

	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no vault token provided")
	}
	client.SetToken(token)

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return client, nil
}

// readVaultSecret reads a single field from a KV v2 secret. The reference has
// the form "path#field".
func readVaultSecret(ctx context.Context, client *vault.Client, ref string) (string, error) {
	path, field, found := strings.Cut(ref, "#")
	if !found {
		return "", fmt.Errorf("invalid secret reference %q, expected path#field", ref)
	}

	secret, err := client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret not found at %s", path)
	}

	// KV v2 nests fields under "data"
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]any); ok {
		data = nested
	}

	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("field %q not found in secret at %s", field, path)
	}
	return value, nil
}
