package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(GoogleInformation{
			GoogleID:      "g-1",
			Email:         "a@x.com",
			VerifiedEmail: true,
		})
	})
	return httptest.NewServer(mux)
}

func TestGoogleService(t *testing.T) {
	srv := newFakeGoogle(t)
	defer srv.Close()

	svc := NewGoogleService("client", "secret", "http://localhost/callback", WithEndpoints(oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo"))

	t.Run("state is random", func(t *testing.T) {
		a, err := svc.GenerateState()
		require.NoError(t, err)
		b, err := svc.GenerateState()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("redirect carries state and client", func(t *testing.T) {
		u, err := url.Parse(svc.RedirectURL("state-1"))
		require.NoError(t, err)
		assert.Equal(t, "state-1", u.Query().Get("state"))
		assert.Equal(t, "client", u.Query().Get("client_id"))
	})

	t.Run("exchange and fetch user", func(t *testing.T) {
		ctx := context.Background()
		token, err := svc.Exchange(ctx, "good-code")
		require.NoError(t, err)

		info, err := svc.VerifyUser(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", info.Email)
		assert.True(t, info.VerifiedEmail)
	})

	t.Run("bad code", func(t *testing.T) {
		_, err := svc.Exchange(context.Background(), "bad-code")
		assert.Error(t, err)
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := svc.VerifyUser(context.Background(), &oauth2.Token{AccessToken: "nope", TokenType: "Bearer"})
		assert.ErrorIs(t, err, ErrUserInfo)
	})
}
