package handler

import (
	"go-stock-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
)

// GetRoles returns every role with the privileges it grants
// GET /api/v1/roles
func GetRoles(c *fiber.Ctx) error {
	return c.JSON(model.Roles())
}

// GetPrivileges lists all privilege codes
// GET /api/v1/privileges
func GetPrivileges(c *fiber.Ctx) error {
	return c.JSON(model.AllPrivileges)
}
