package stripe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianprocure/storefront-backend/pkg/config"
)

func TestNewClientBindsSessionServiceToKey(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc123",
		Secret: "whsec_test",
		Env:    "test",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "sk_test_abc123", client.sessions.Key)
	assert.NotNil(t, client.sessions.B)
	assert.Equal(t, "test", client.Environment())
	assert.Equal(t, "whsec_test", client.SigningSecret())
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{
		Secret: "whsec_test",
	}, nil)
	require.ErrorIs(t, err, errAPIKeyRequired)
}

func TestNewClientRequiresSigningSecret(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc123",
	}, nil)
	require.ErrorIs(t, err, errSecretRequired)
}

func TestNewClientRejectsMismatchedKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc123",
		Secret: "whsec_live",
		Env:    "live",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "live secret key")
}

func TestNewClientRejectsUnknownEnv(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{
		APIKey: "sk_test_abc123",
		Secret: "whsec_test",
		Env:    "staging",
	}, nil)
	require.ErrorIs(t, err, errInvalidStripeEnv)
}

func TestNilClientAccessors(t *testing.T) {
	var client *Client
	assert.Empty(t, client.Environment())
	assert.Empty(t, client.SigningSecret())
}
