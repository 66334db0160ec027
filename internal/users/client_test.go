package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbite-dev/quickbite-backend/pkg/config"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.UserServiceConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestCurrentReturnsProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"u1","fullName":"Asha Rao","location":{"text":"HSR Layout, Bengaluru"}}}`))
	})

	profile, err := client.Current(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "Asha Rao", profile.FullName)
	require.NotNil(t, profile.Location)
	assert.Equal(t, "HSR Layout, Bengaluru", profile.Location.Text)
}

func TestCurrentMapsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Current(context.Background(), "expired")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestCurrentMapsServerErrorToDependency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Current(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestCurrentRequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server")
	})

	_, err := client.Current(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.UserServiceConfig{})
	require.Error(t, err)
}
