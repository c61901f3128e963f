package handlers

import (
	"net/http"
	"testing"

	"github.com/groupledger/backend/internal/models"
)

func TestCategoriesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := createTestUser(t, env.db, "cat-admin@test.com", "password123")
	member, memberToken := createTestUser(t, env.db, "cat-member@test.com", "password123")

	groupID := createGroup(t, env.app, adminToken, "Household")
	otherGroupID := createGroup(t, env.app, adminToken, "Holidays")
	joinGroup(t, env.db, member.ID, mustUUID(t, groupID))

	var categoryID string

	t.Run("POST /api/groups/:id/categories attaches a new category", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+groupID+"/categories", map[string]any{
			"title":     "Groceries",
			"iconURL":   "https://icons.test/cart.svg",
			"colorCode": "#00aa44",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		data := body["data"].(map[string]any)
		categoryID = data["categoryID"].(string)
		category := data["category"].(map[string]any)
		if category["title"] != "groceries" {
			t.Fatalf("expected normalized lowercase title, got %v", category["title"])
		}
	})

	t.Run("POST /api/groups/:id/categories non-admin forbidden", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+groupID+"/categories", map[string]any{
			"title": "Rent",
		}, authHeaders(memberToken))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("reattaching the same title conflicts regardless of case", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+groupID+"/categories", map[string]any{
			"title": "GROCERIES",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusConflict)
		assertEnvelopeError(t, body, "the category is already in this group")
	})

	t.Run("the same title in another group reuses the category row", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+otherGroupID+"/categories", map[string]any{
			"title":     "groceries",
			"colorCode": "#0000ff",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		data := body["data"].(map[string]any)
		if data["categoryID"].(string) != categoryID {
			t.Fatalf("expected the shared category row to be reused")
		}

		var count int64
		if err := env.db.Model(&models.Category{}).Where("title = ?", "groceries").Count(&count).Error; err != nil {
			t.Fatalf("failed counting categories: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected a single shared category row, got %d", count)
		}
	})

	t.Run("PUT /api/groups/:id/categories/:categoryId restyles one link only", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut,
			"/api/groups/"+groupID+"/categories/"+categoryID, map[string]any{
				"iconURL":   "https://icons.test/basket.svg",
				"colorCode": "#ff0000",
			}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if body["data"].(map[string]any)["colorCode"] != "#ff0000" {
			t.Fatalf("expected restyled link in response")
		}

		var otherLink models.CategoryGroup
		err := env.db.First(&otherLink, "category_id = ? AND group_id = ?", categoryID, otherGroupID).Error
		if err != nil {
			t.Fatalf("failed loading sibling link: %v", err)
		}
		if otherLink.ColorCode != "#0000ff" {
			t.Fatalf("expected sibling group's styling untouched, got %s", otherLink.ColorCode)
		}
	})

	t.Run("PUT restyle of an unattached category not found", func(t *testing.T) {
		thirdID := createGroup(t, env.app, adminToken, "Empty Group")
		resp := performJSONRequest(t, env.app, http.MethodPut,
			"/api/groups/"+thirdID+"/categories/"+categoryID, map[string]any{
				"colorCode": "#123456",
			}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "the category is not in this group")
	})

	t.Run("GET /api/groups/:id/categories lists links with styling", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/groups/"+groupID+"/categories", nil, authHeaders(memberToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected one attached category, got %d", len(data))
		}
	})

	t.Run("attaching to a disbanded group conflicts", func(t *testing.T) {
		doomedID := createGroup(t, env.app, adminToken, "Closing Down")
		resp := performRequest(t, env.app, http.MethodDelete, "/api/groups/"+doomedID+"/leave", nil, authHeaders(adminToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+doomedID+"/categories", map[string]any{
			"title": "anything",
		}, authHeaders(adminToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusConflict)
		assertEnvelopeError(t, body, "the group is inactive")
	})
}
