package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"chessrules/internal/core"
)

// TokenValidator validates seat tokens
type TokenValidator func(token string) (playerID string, claims map[string]any, err error)

// SeatToken resolves an optional bearer seat token to a player ID. Requests
// without a token continue anonymously; a bad token or one issued for
// another game is refused outright.
func SeatToken(validateToken TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Next()
		}

		playerID, claims, err := validateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "invalid or expired token",
				Code:  core.ErrUnauthorized,
			})
		}
		if game, _ := claims["game"].(string); game != c.Params("gameId") {
			return c.Status(fiber.StatusForbidden).JSON(core.ErrorResponse{
				Error: "token was issued for another game",
				Code:  core.ErrUnauthorized,
			})
		}

		c.Locals("playerID", playerID)
		return c.Next()
	}
}

// extractBearerToken extracts the token from an Authorization header
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
