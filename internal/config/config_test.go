package config

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mstepanov/dropmate/internal/vault"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestVaultKeyPrefersDedicatedKey(t *testing.T) {
	c := &Config{APP_SECRET_KEY: "app-secret", VAULT_ENCRYPTION_KEY: "vault-secret"}

	require.Equal(t, vault.DeriveKey("vault-secret"), c.VaultKey(discardLogger()))
}

func TestVaultKeyFallsBackToAppSecret(t *testing.T) {
	c := &Config{APP_SECRET_KEY: "app-secret"}

	key := c.VaultKey(discardLogger())
	require.Equal(t, vault.DeriveKey("app-secret"), key)

	// credentials stored under the fallback key stay readable
	token, err := vault.Encrypt("supplier-secret", key)
	require.NoError(t, err)
	got, err := vault.Decrypt(token, key)
	require.NoError(t, err)
	require.Equal(t, "supplier-secret", got)
}
