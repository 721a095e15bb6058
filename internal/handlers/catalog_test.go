package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/example/bazaar/internal/models"
)

func TestCreateTag_DuplicateNameWritesNothing(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	user := createUser(t, db, "user@example.com", false)
	auth := bearer(t, cfg, user)

	first := jsonRequest(http.MethodPost, "/api/tags", map[string]string{"name": "wood"})
	first.Header.Set("Authorization", auth)
	if resp, body := doRequest(t, app, first); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
	}

	second := jsonRequest(http.MethodPost, "/api/tags", map[string]string{"name": "wood"})
	second.Header.Set("Authorization", auth)
	resp, body := doRequest(t, app, second)

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.StatusCode)
	}
	if body.Code != "tag_exists" {
		t.Errorf("expected code tag_exists, got %q", body.Code)
	}

	if got := countRows(t, db, &models.Tag{}); got != 1 {
		t.Errorf("expected 1 tag row, got %d", got)
	}
}

func TestCreateTag_SlugDerivedFromName(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	user := createUser(t, db, "user@example.com", false)

	req := jsonRequest(http.MethodPost, "/api/tags", map[string]string{"name": "Hand Made"})
	req.Header.Set("Authorization", bearer(t, cfg, user))
	resp, body := doRequest(t, app, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
	}

	var tag models.Tag
	if err := json.Unmarshal(body.Data, &tag); err != nil {
		t.Fatalf("failed to decode tag: %v", err)
	}
	if tag.Slug != "hand-made" {
		t.Errorf("expected slug hand-made, got %q", tag.Slug)
	}
}

func TestCreateCategory_AdminOnly(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	user := createUser(t, db, "user@example.com", false)
	admin := createUser(t, db, "admin@example.com", true)

	req := jsonRequest(http.MethodPost, "/api/categories", map[string]string{"name": "Books"})
	req.Header.Set("Authorization", bearer(t, cfg, user))
	resp, body := doRequest(t, app, req)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-admin, got %d", resp.StatusCode)
	}
	if body.Code != "admin_required" {
		t.Errorf("expected code admin_required, got %q", body.Code)
	}
	if got := countRows(t, db, &models.Category{}); got != 0 {
		t.Errorf("expected 0 category rows, got %d", got)
	}

	req = jsonRequest(http.MethodPost, "/api/categories", map[string]string{"name": "Books"})
	req.Header.Set("Authorization", bearer(t, cfg, admin))
	resp, body = doRequest(t, app, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201 for admin, got %d (%s)", resp.StatusCode, body.Message)
	}

	var category models.Category
	if err := json.Unmarshal(body.Data, &category); err != nil {
		t.Fatalf("failed to decode category: %v", err)
	}
	if category.Slug != "books" {
		t.Errorf("expected slug books, got %q", category.Slug)
	}
}

func TestDeleteCategory_CascadesToProducts(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	admin := createUser(t, db, "admin@example.com", true)
	seller := createUser(t, db, "seller@example.com", false)
	category := createCategory(t, db, "Doomed")
	keep := createCategory(t, db, "Kept")

	doomed := models.Product{
		UserID:     seller.ID,
		CategoryID: category.ID,
		Name:       "Doomed Product",
		Slug:       "doomed-product",
		Price:      1,
		Stock:      1,
		Available:  true,
		Images:     []models.ProductImage{{URL: "https://cdn.example.com/1.jpg"}},
	}
	if err := db.Create(&doomed).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	survivor := models.Product{
		UserID:     seller.ID,
		CategoryID: keep.ID,
		Name:       "Survivor",
		Slug:       "survivor",
		Price:      1,
		Stock:      1,
		Available:  true,
	}
	if err := db.Create(&survivor).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	req := jsonRequest(http.MethodDelete, "/api/categories/"+category.ID.String(), nil)
	req.Header.Set("Authorization", bearer(t, cfg, admin))
	resp, _ := doRequest(t, app, req)

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.StatusCode)
	}

	if got := countRows(t, db, &models.Product{}); got != 1 {
		t.Errorf("expected 1 surviving product, got %d", got)
	}
	if got := countRows(t, db, &models.ProductImage{}); got != 0 {
		t.Errorf("expected 0 image rows, got %d", got)
	}

	var remaining models.Product
	if err := db.First(&remaining).Error; err != nil {
		t.Fatalf("failed to load surviving product: %v", err)
	}
	if remaining.Name != "Survivor" {
		t.Errorf("wrong product survived: %q", remaining.Name)
	}
}

func TestCreateComment_AndOwnerOnlyDelete(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	seller := createUser(t, db, "seller@example.com", false)
	author := createUser(t, db, "author@example.com", false)
	stranger := createUser(t, db, "stranger@example.com", false)
	product := seedRatedProduct(t, db, seller)

	create := jsonRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/comments",
		map[string]string{"text": "great product"})
	create.Header.Set("Authorization", bearer(t, cfg, author))
	resp, body := doRequest(t, app, create)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.StatusCode, body.Message)
	}

	var comment models.Comment
	if err := json.Unmarshal(body.Data, &comment); err != nil {
		t.Fatalf("failed to decode comment: %v", err)
	}

	del := jsonRequest(http.MethodDelete, "/api/comments/"+comment.ID.String(), nil)
	del.Header.Set("Authorization", bearer(t, cfg, stranger))
	resp, body = doRequest(t, app, del)

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403 for stranger, got %d", resp.StatusCode)
	}
	if body.Code != "owner_required" {
		t.Errorf("expected code owner_required, got %q", body.Code)
	}

	del = jsonRequest(http.MethodDelete, "/api/comments/"+comment.ID.String(), nil)
	del.Header.Set("Authorization", bearer(t, cfg, author))
	resp, _ = doRequest(t, app, del)

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status 204 for owner, got %d", resp.StatusCode)
	}

	if got := countRows(t, db, &models.Comment{}); got != 0 {
		t.Errorf("expected 0 comment rows, got %d", got)
	}
}
