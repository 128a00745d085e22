package middleware

import (
	"strings"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID         = "user_id"
	LocalUserEmail      = "user_email"
	LocalUserName       = "user_name"
	LocalUserRole       = "user_role"
	LocalUserPrivileges = "user_privileges"
)

// RequireAuth validates the bearer token and sets the operator in context.
func RequireAuth(users repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("Missing authorization token"))
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("Invalid authorization format. Use: Bearer <token>"))
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("Invalid or expired token"))
		}

		// strict single session
		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("User not found"))
		}
		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("User account is inactive"))
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.New("Session expired (logged in on another device)"))
		}

		c.Locals(LocalUserID, claims.UserID.String())
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserName, claims.Name)
		c.Locals(LocalUserRole, claims.RoleCode)
		c.Locals(LocalUserPrivileges, claims.Privileges)

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalUserPrivileges).([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(apierror.New("No privileges found"))
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(apierror.New(
			"Forbidden: requires '" + requiredPrivilege + "' privilege",
		))
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalUserPrivileges).([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(apierror.New("No privileges found"))
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(apierror.New(
			"Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		))
	}
}
