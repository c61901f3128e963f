package handlers

import (
	"net/http"
	"testing"

	"github.com/groupledger/backend/internal/models"
)

func TestAuthEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("POST /api/auth/register creates user and returns token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":     "alice@test.com",
			"password":  "password123",
			"firstName": "Alice",
			"lastName":  "Anderson",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		data := body["data"].(map[string]any)
		if data["token"] == "" {
			t.Fatalf("expected a token in the response")
		}
		user := data["user"].(map[string]any)
		if user["email"] != "alice@test.com" {
			t.Fatalf("expected normalized email, got %v", user["email"])
		}
	})

	t.Run("POST /api/auth/register rejects duplicate email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":     "Alice@Test.com",
			"password":  "password123",
			"firstName": "Alice",
			"lastName":  "Again",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusConflict)
		assertEnvelopeError(t, body, "email already registered")
	})

	t.Run("POST /api/auth/register rejects short password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"email":     "bob@test.com",
			"password":  "short",
			"firstName": "Bob",
			"lastName":  "Brown",
		}, nil)
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("POST /api/auth/login succeeds with valid credentials", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@test.com",
			"password": "password123",
		}, nil)
		assertStatus(t, resp, http.StatusOK)
	})

	t.Run("POST /api/auth/login rejects wrong password", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@test.com",
			"password": "wrong-password",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusUnauthorized)
		assertEnvelopeError(t, body, "invalid credentials")
	})

	t.Run("POST /api/auth/login rejects password login for sso-only accounts", func(t *testing.T) {
		provider := "google"
		ssoUser := models.User{
			Email:        "sso-only@test.com",
			FirstName:    "Sso",
			LastName:     "Only",
			AuthProvider: &provider,
		}
		if err := env.db.Create(&ssoUser).Error; err != nil {
			t.Fatalf("failed creating sso user: %v", err)
		}

		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "sso-only@test.com",
			"password": "anything-at-all",
		}, nil)
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusUnauthorized)
		assertEnvelopeError(t, body, "invalid credentials")
	})

	t.Run("GET /api/auth/me returns the authenticated user", func(t *testing.T) {
		_, token := createTestUser(t, env.db, "me@test.com", "password123")

		resp := performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)

		data := body["data"].(map[string]any)
		if data["email"] != "me@test.com" {
			t.Fatalf("expected own profile, got %v", data["email"])
		}
	})

	t.Run("GET /api/auth/me rejects missing token", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/auth/me", nil, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	})
}
