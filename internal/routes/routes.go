package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/authz"
	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mailer := services.NewMailer(cfg)
	policy := authz.New(db)

	authHandler := handlers.NewAuthHandler(db, cfg, mailer)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, mailer)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	commentHandler := handlers.NewCommentHandler(db)
	ratingHandler := handlers.NewRatingHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	authRequired := middleware.AuthMiddleware(cfg)

	api := app.Group("/api")

	// Account lifecycle
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Get("/activate/:code", authHandler.Activate)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/recovery-password", resetHandler.RecoveryPassword)
	auth.Post("/set-recovered-password", resetHandler.SetRecoveredPassword)
	auth.Post("/change-password", authRequired, policy.Require("account", "change_password"), authHandler.ChangePassword)
	auth.Delete("/logout", authRequired, policy.Require("account", "logout"), authHandler.Logout)
	auth.Delete("/account", authRequired, policy.Require("account", "delete"), authHandler.DeleteAccount)

	// Catalog
	categories := api.Group("/categories")
	categories.Get("/", policy.Require("category", "list"), catalogHandler.ListCategories)
	categories.Get("/:id", policy.Require("category", "get"), catalogHandler.GetCategory)
	categories.Post("/", authRequired, policy.Require("category", "create"), catalogHandler.CreateCategory)
	categories.Put("/:id", authRequired, policy.Require("category", "update"), catalogHandler.UpdateCategory)
	categories.Delete("/:id", authRequired, policy.Require("category", "delete"), catalogHandler.DeleteCategory)

	tags := api.Group("/tags")
	tags.Get("/", policy.Require("tag", "list"), catalogHandler.ListTags)
	tags.Get("/:id", policy.Require("tag", "get"), catalogHandler.GetTag)
	tags.Post("/", authRequired, policy.Require("tag", "create"), catalogHandler.CreateTag)
	tags.Delete("/:id", authRequired, policy.Require("tag", "delete"), catalogHandler.DeleteTag)

	// Products
	products := api.Group("/products")
	products.Get("/", policy.Require("product", "list"), productHandler.ListProducts)
	products.Get("/:id", policy.Require("product", "get"), productHandler.GetProduct)
	products.Post("/", authRequired, policy.Require("product", "create"), productHandler.CreateProduct)
	products.Put("/:id", authRequired, policy.Require("product", "update"), productHandler.UpdateProduct)
	products.Delete("/:id", authRequired, policy.Require("product", "delete"), productHandler.DeleteProduct)

	// Comments and ratings hang off products
	products.Post("/:id/comments", authRequired, policy.Require("comment", "create"), commentHandler.CreateComment)
	products.Post("/:id/rating", authRequired, policy.Require("rating", "set"), ratingHandler.SetRating)
	products.Patch("/:id/rating", authRequired, policy.Require("rating", "update"), ratingHandler.UpdateRating)

	api.Delete("/comments/:id", authRequired, policy.Require("comment", "delete"), commentHandler.DeleteComment)

	// Profile
	protected := api.Group("", authRequired)
	protected.Get("/profile", policy.Require("profile", "get"), profileHandler.GetProfile)
	protected.Put("/profile", policy.Require("profile", "update"), profileHandler.UpdateProfile)

	// Admin
	admin := api.Group("/admin", authRequired)
	admin.Get("/stats", policy.Require("admin", "stats"), adminHandler.DashboardStats)
}
