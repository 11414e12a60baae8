package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/rs/zerolog/log"

	"github.com/PagodaAdmin/PagodaAdmin/internal/db/models"
)

// Realm is sent in the WWW-Authenticate header.
const Realm = "PagodaAdmin"

// Authenticator is the part of LocalProvider the middleware needs.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// RequireUser creates Fiber middleware that requires HTTP basic auth of an active user.
// The user name is stored in the "username" local.
func RequireUser(a Authenticator) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm: Realm,
		Authorizer: func(username, password string) bool {
			_, err := a.Authenticate(context.Background(), username, password)
			if err == nil {
				return true
			}

			if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) ||
				errors.Is(err, ErrUserAccountDisabled) || errors.Is(err, ErrEmptyCredentials) {
				log.Warn().Err(err).Str("username", username).Msg("authentication failed")
			} else {
				log.Error().Err(err).Str("username", username).Msg("authentication error")
			}

			return false
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="`+Realm+`"`)

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		},
	})
}
