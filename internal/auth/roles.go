package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := MustPrincipal(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireTelephoniste ensures the caller works the contact queue.
func RequireTelephoniste() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		if !principal.IsTelephoniste() {
			return apperrors.NewForbidden("telephoniste access required")
		}
		return c.Next()
	}
}

// RequireAdminPermission ensures the caller is an admin holding permission.
func RequireAdminPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		if !principal.HasAdminPermission(permission) {
			return apperrors.NewForbidden("missing permission " + permission)
		}
		return c.Next()
	}
}

// RequireAgent ensures the caller is a field agent.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		if principal.User == nil || !principal.User.IsAgent {
			return apperrors.NewForbidden("agent access required")
		}
		return c.Next()
	}
}
