package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/groupledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

func TestReplenishmentsEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := createTestUser(t, env.db, "rep-owner@test.com", "password123")
	_, otherToken := createTestUser(t, env.db, "rep-other@test.com", "password123")

	var replenishmentID string

	t.Run("POST /api/replenishments/ records income", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/replenishments/", map[string]any{
			"description": "salary",
			"amount":      "1500.00",
		}, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		replenishmentID = body["data"].(map[string]any)["id"].(string)
	})

	t.Run("POST /api/replenishments/ rejects non-positive amounts", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/replenishments/", map[string]any{
			"amount": "-5",
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("PUT /api/replenishments/:id only the owner may edit", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/replenishments/"+replenishmentID, map[string]any{
			"amount": "1.00",
		}, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "it's not your replenishment")
	})

	t.Run("PUT /api/replenishments/:id updates description and amount", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, "/api/replenishments/"+replenishmentID, map[string]any{
			"description": "salary, corrected",
			"amount":      "1600.00",
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		var row models.Replenishment
		if err := env.db.First(&row, "id = ?", replenishmentID).Error; err != nil {
			t.Fatalf("failed reloading replenishment: %v", err)
		}
		if !row.Amount.Equal(decimal.NewFromInt(1600)) {
			t.Fatalf("expected amount 1600, got %s", row.Amount)
		}
	})

	t.Run("GET /api/replenishments/ lists only the caller's rows", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/replenishments/", nil, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if len(body["data"].([]any)) != 0 {
			t.Fatalf("expected no rows for the other user")
		}
	})

	t.Run("GET /api/replenishments/ honors period filters", func(t *testing.T) {
		backdated := models.Replenishment{
			Description: "old bonus",
			Amount:      decimal.NewFromInt(200),
			Time:        time.Date(2020, 3, 15, 12, 0, 0, 0, time.UTC),
			UserID:      owner.ID,
		}
		if err := env.db.Create(&backdated).Error; err != nil {
			t.Fatalf("failed creating backdated replenishment: %v", err)
		}

		resp := performRequest(t, env.app, http.MethodGet,
			"/api/replenishments/?filter_date=2020-03", nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected exactly the backdated row, got %d", len(data))
		}
	})

	t.Run("GET /api/replenishments/ rejects conflicting filters", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet,
			"/api/replenishments/?filter_date=2020-03&start_date=2020-03-01&end_date=2020-03-31", nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusUnprocessableEntity)
	})

	t.Run("DELETE /api/replenishments/:id removes the record", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/replenishments/"+replenishmentID, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodDelete, "/api/replenishments/"+replenishmentID, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusNotFound)
	})
}
