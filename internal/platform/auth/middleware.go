package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID string
	Role   Role
}

// ContextWithPrincipal returns a context carrying the given principal.
// Exposed for tests and internal callers that bypass the HTTP middleware.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated caller. The second return
// is false when the request carried no valid token.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Middleware validates the bearer token on every request and stores the
// resulting principal on the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := ContextWithPrincipal(c.Request().Context(), Principal{
				UserID: claims.Subject,
				Role:   ParseRole(claims.Role),
			})
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevMiddleware is a permissive middleware for development that treats
// unauthenticated requests as an admin user.
func DevMiddleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	authed := Middleware(issuer)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := authed(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				ctx := ContextWithPrincipal(c.Request().Context(), Principal{
					UserID: "dev-user",
					Role:   RoleAdmin,
				})
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
			return withAuth(c)
		}
	}
}
