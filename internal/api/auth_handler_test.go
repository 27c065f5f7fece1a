package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandlerLogin(t *testing.T) {
	verifier := &stubVerifier{verifyFn: func(email, password string) error {
		if email == "admin@example.com" && password == "secret-password" {
			return nil
		}
		return auth.ErrInvalidCredentials
	}}
	handler := NewAuthHandler(verifier, &stubJWTService{}, nil)

	t.Run("returns a token for valid credentials", func(t *testing.T) {
		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "admin@example.com",
			Password: "secret-password",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "token-admin@example.com", resp.Token)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		handler.Login(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{Password: "secret-password"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
