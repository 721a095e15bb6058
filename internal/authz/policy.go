package authz

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/apierr"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
)

// Capability is the access level a (resource, action) pair demands.
type Capability int

const (
	Public Capability = iota
	Authenticated
	Owner
	Admin
)

type rule struct {
	resource string
	action   string
}

// policy is the single authorization table. Every route consults it through
// Policy.Require before its handler runs; pairs missing from the table are
// denied.
var policy = map[rule]Capability{
	{"category", "list"}:   Public,
	{"category", "get"}:    Public,
	{"category", "create"}: Admin,
	{"category", "update"}: Admin,
	{"category", "delete"}: Admin,

	{"tag", "list"}:   Public,
	{"tag", "get"}:    Public,
	{"tag", "create"}: Authenticated,
	{"tag", "delete"}: Admin,

	{"product", "list"}:   Public,
	{"product", "get"}:    Public,
	{"product", "create"}: Authenticated,
	{"product", "update"}: Owner,
	{"product", "delete"}: Owner,

	{"comment", "create"}: Authenticated,
	{"comment", "delete"}: Owner,

	{"rating", "set"}:    Authenticated,
	{"rating", "update"}: Authenticated,

	{"profile", "get"}:    Authenticated,
	{"profile", "update"}: Authenticated,

	{"account", "change_password"}: Authenticated,
	{"account", "logout"}:          Authenticated,
	{"account", "delete"}:          Authenticated,

	{"admin", "stats"}: Admin,
}

// ownerResolvers load the owning user of the resource instance addressed by
// the request's id parameter.
var ownerResolvers = map[string]func(db *gorm.DB, c *fiber.Ctx) (uuid.UUID, error){
	"product": func(db *gorm.DB, c *fiber.Ctx) (uuid.UUID, error) {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return uuid.Nil, apierr.BadRequest("invalid_id", "invalid id")
		}
		var product models.Product
		if err := db.Select("user_id").First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apierr.NotFound("product_not_found", "product not found")
			}
			return uuid.Nil, err
		}
		return product.UserID, nil
	},
	"comment": func(db *gorm.DB, c *fiber.Ctx) (uuid.UUID, error) {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return uuid.Nil, apierr.BadRequest("invalid_id", "invalid id")
		}
		var comment models.Comment
		if err := db.Select("user_id").First(&comment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apierr.NotFound("comment_not_found", "comment not found")
			}
			return uuid.Nil, err
		}
		return comment.UserID, nil
	},
}

// Policy evaluates the authorization table against incoming requests.
type Policy struct {
	db *gorm.DB
}

// New constructs a Policy.
func New(db *gorm.DB) *Policy {
	return &Policy{db: db}
}

// Require returns a middleware enforcing the capability registered for the
// (resource, action) pair. Authenticated routes must be mounted behind
// middleware.AuthMiddleware so the user ID is present in context.
func (p *Policy) Require(resource, action string) fiber.Handler {
	capability, known := policy[rule{resource, action}]

	return func(c *fiber.Ctx) error {
		if !known {
			return apierr.Forbidden("forbidden", "action not permitted")
		}

		if capability == Public {
			return c.Next()
		}

		userID, ok := middleware.GetCurrentUserID(c)
		if !ok {
			return apierr.Unauthorized("unauthorized", "authentication required")
		}

		switch capability {
		case Authenticated:
			return c.Next()

		case Admin:
			isAdmin, err := p.isAdmin(userID)
			if err != nil {
				return err
			}
			if !isAdmin {
				return apierr.Forbidden("admin_required", "admin access required")
			}
			return c.Next()

		case Owner:
			resolve, ok := ownerResolvers[resource]
			if !ok {
				return apierr.Forbidden("forbidden", "action not permitted")
			}
			ownerID, err := resolve(p.db, c)
			if err != nil {
				return err
			}
			if ownerID == userID {
				return c.Next()
			}
			// Admins may act on resources they do not own.
			isAdmin, err := p.isAdmin(userID)
			if err != nil {
				return err
			}
			if !isAdmin {
				return apierr.Forbidden("owner_required", "you do not own this resource")
			}
			return c.Next()
		}

		return apierr.Forbidden("forbidden", "action not permitted")
	}
}

func (p *Policy) isAdmin(userID uuid.UUID) (bool, error) {
	var user models.User
	if err := p.db.Select("is_admin").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apierr.Unauthorized("unauthorized", "authentication required")
		}
		return false, err
	}
	return user.IsAdmin, nil
}
