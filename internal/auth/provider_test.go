package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoTrueStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   3600,
			"user":         map[string]string{"id": "u-1", "email": "inspector@geda.example"},
		})
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "u-1", "email": "inspector@geda.example"})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return httptest.NewServer(mux)
}

func TestGoTrueProviderSignInThenCurrentSession(t *testing.T) {
	srv := newGoTrueStub()
	defer srv.Close()

	provider := NewGoTrueProvider(srv.URL, "anon-key")

	session, err := provider.SignInWithPassword(context.Background(), "inspector@geda.example", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, "tok-1", session.AccessToken)

	current, err := provider.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inspector@geda.example", current.Email)
	assert.Equal(t, "tok-1", current.AccessToken)
}

func TestGoTrueProviderSignOutDropsSession(t *testing.T) {
	srv := newGoTrueStub()
	defer srv.Close()

	provider := NewGoTrueProvider(srv.URL, "anon-key")

	_, err := provider.SignInWithPassword(context.Background(), "inspector@geda.example", "pw")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(context.Background()))

	_, err = provider.CurrentSession(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	// Signing out with no session is a no-op.
	assert.NoError(t, provider.SignOut(context.Background()))
}

func TestGoTrueProviderConcurrentHandlers(t *testing.T) {
	srv := newGoTrueStub()
	defer srv.Close()

	provider := NewGoTrueProvider(srv.URL, "anon-key")

	// Login, logout, and restore handlers run concurrently against one
	// provider instance; the token field must survive that.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := provider.SignInWithPassword(context.Background(), "inspector@geda.example", "pw")
			assert.NoError(t, err)
			_, _ = provider.CurrentSession(context.Background())
			assert.NoError(t, provider.SignOut(context.Background()))
		}()
	}
	wg.Wait()
}
