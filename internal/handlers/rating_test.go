package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

func seedRatedProduct(t *testing.T, db *gorm.DB, owner models.User) models.Product {
	t.Helper()

	category := createCategory(t, db, "Electronics")
	product := models.Product{
		UserID:     owner.ID,
		CategoryID: category.ID,
		Name:       "Camera",
		Slug:       "camera",
		Price:      199.99,
		Stock:      5,
		Available:  true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

func TestSetRating_CreatesSingleRow(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	rater := createUser(t, db, "rater@example.com", false)
	product := seedRatedProduct(t, db, owner)

	req := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 4})
	req.Header.Set("Authorization", bearer(t, cfg, rater))
	resp, body := doRequest(t, app, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
	}

	var rating models.Rating
	if err := json.Unmarshal(body.Data, &rating); err != nil {
		t.Fatalf("failed to decode rating: %v", err)
	}
	if rating.Value != 4 {
		t.Errorf("expected value 4, got %d", rating.Value)
	}

	if got := countRows(t, db, &models.Rating{}); got != 1 {
		t.Errorf("expected 1 rating row, got %d", got)
	}
}

func TestSetRating_SecondPostIsAdvisoryNoOp(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	rater := createUser(t, db, "rater@example.com", false)
	product := seedRatedProduct(t, db, owner)
	auth := bearer(t, cfg, rater)

	first := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 5})
	first.Header.Set("Authorization", auth)
	if resp, body := doRequest(t, app, first); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
	}

	second := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 1})
	second.Header.Set("Authorization", auth)
	resp, body := doRequest(t, app, second)

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.StatusCode)
	}
	if body.Code != "already_rated" {
		t.Errorf("expected code already_rated, got %q", body.Code)
	}

	if got := countRows(t, db, &models.Rating{}); got != 1 {
		t.Errorf("expected 1 rating row, got %d", got)
	}

	// The stored value must be untouched by the rejected POST.
	var rating models.Rating
	if err := db.First(&rating, "user_id = ? AND product_id = ?", rater.ID, product.ID).Error; err != nil {
		t.Fatalf("failed to load rating: %v", err)
	}
	if rating.Value != 5 {
		t.Errorf("expected value 5, got %d", rating.Value)
	}
}

func TestUpdateRating_MutatesExistingRow(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	rater := createUser(t, db, "rater@example.com", false)
	product := seedRatedProduct(t, db, owner)
	auth := bearer(t, cfg, rater)

	create := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 2})
	create.Header.Set("Authorization", auth)
	doRequest(t, app, create)

	patch := jsonRequest(http.MethodPatch, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 5})
	patch.Header.Set("Authorization", auth)
	resp, body := doRequest(t, app, patch)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", resp.StatusCode, body.Message)
	}

	var rating models.Rating
	if err := json.Unmarshal(body.Data, &rating); err != nil {
		t.Fatalf("failed to decode rating: %v", err)
	}
	if rating.Value != 5 {
		t.Errorf("expected value 5, got %d", rating.Value)
	}

	if got := countRows(t, db, &models.Rating{}); got != 1 {
		t.Errorf("expected 1 rating row, got %d", got)
	}
}

func TestUpdateRating_WithoutExistingRowWritesNothing(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	rater := createUser(t, db, "rater@example.com", false)
	product := seedRatedProduct(t, db, owner)

	patch := jsonRequest(http.MethodPatch, "/api/products/"+product.ID.String()+"/rating",
		map[string]int{"value": 3})
	patch.Header.Set("Authorization", bearer(t, cfg, rater))
	resp, body := doRequest(t, app, patch)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
	if body.Code != "not_rated" {
		t.Errorf("expected code not_rated, got %q", body.Code)
	}

	if got := countRows(t, db, &models.Rating{}); got != 0 {
		t.Errorf("expected 0 rating rows, got %d", got)
	}
}

func TestSetRating_ValueOutOfRangeNeverCreatesRow(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	rater := createUser(t, db, "rater@example.com", false)
	product := seedRatedProduct(t, db, owner)
	auth := bearer(t, cfg, rater)

	for _, value := range []int{0, 6, -1, 100} {
		req := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
			map[string]int{"value": value})
		req.Header.Set("Authorization", auth)
		resp, body := doRequest(t, app, req)

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("value %d: expected status 400, got %d", value, resp.StatusCode)
		}
		if body.Code != "invalid_rating" {
			t.Errorf("value %d: expected code invalid_rating, got %q", value, body.Code)
		}
	}

	if got := countRows(t, db, &models.Rating{}); got != 0 {
		t.Errorf("expected 0 rating rows, got %d", got)
	}
}

func TestSetRating_UnknownProduct(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	rater := createUser(t, db, "rater@example.com", false)

	req := jsonRequest(http.MethodPost, "/api/products/6b1884cb-2b43-4adb-a29c-3b81ce821a3b/rating",
		map[string]int{"value": 3})
	req.Header.Set("Authorization", bearer(t, cfg, rater))
	resp, body := doRequest(t, app, req)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
	if body.Code != "product_not_found" {
		t.Errorf("expected code product_not_found, got %q", body.Code)
	}
}

func TestSetRating_TwoUsersRateIndependently(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	owner := createUser(t, db, "owner@example.com", false)
	first := createUser(t, db, "first@example.com", false)
	second := createUser(t, db, "second@example.com", false)
	product := seedRatedProduct(t, db, owner)

	for _, user := range []models.User{first, second} {
		req := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/rating",
			map[string]int{"value": 4})
		req.Header.Set("Authorization", bearer(t, cfg, user))
		if resp, body := doRequest(t, app, req); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
		}
	}

	if got := countRows(t, db, &models.Rating{}); got != 2 {
		t.Errorf("expected 2 rating rows, got %d", got)
	}
}
