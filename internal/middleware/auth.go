package middleware

import (
	stderrors "errors"

	"finance-reporting/internal/errors"
	"finance-reporting/internal/handlers"
	"finance-reporting/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by RequireAuth
const (
	UserIDContextKey   = "user_id"
	UsernameContextKey = "username"
)

// RequireAuth creates a middleware that requires a valid bearer access token
// and exposes the caller identity on the echo context
func RequireAuth(tokenService services.TokenServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if stderrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid user ID in token"))
			}

			c.Set(UserIDContextKey, userID)
			c.Set(UsernameContextKey, claims.Username)

			return next(c)
		}
	}
}
