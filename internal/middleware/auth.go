package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spark-meetup/internal/model"
	"github.com/iliyamo/spark-meetup/internal/service"
	"github.com/iliyamo/spark-meetup/internal/utils"
)

// PrincipalResolver turns a verified token subject into the caller's current
// principal.
type PrincipalResolver interface {
	PrincipalFor(ctx context.Context, userID uint64) (service.Principal, error)
}

// JWTAuth validates a Bearer access token and stores the caller's principal
// on the request context. Requests without a valid token get 401.
func JWTAuth(secret string, resolver PrincipalResolver) echo.MiddlewareFunc {
	return authenticate(secret, resolver, true)
}

// OptionalJWT is JWTAuth for routes that also serve anonymous callers. A
// missing header passes through; a present but invalid token is still 401 so
// clients know to refresh.
func OptionalJWT(secret string, resolver PrincipalResolver) echo.MiddlewareFunc {
	return authenticate(secret, resolver, false)
}

func authenticate(secret string, resolver PrincipalResolver, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && !required {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw, time.Now())
			if err != nil {
				return unauthorized(c, "invalid token")
			}

			ctx := c.Request().Context()
			p := service.Principal{UserID: claims.UserID, Role: model.Role(claims.Role)}
			if resolver != nil {
				p, err = resolver.PrincipalFor(ctx, claims.UserID)
				if errors.Is(err, service.ErrUnauthorized) {
					return unauthorized(c, "account no longer exists")
				}
				if err != nil {
					loggerFrom(ctx).ErrorContext(ctx, "principal lookup failed", "error", err)
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
				}
			}

			c.SetRequest(c.Request().WithContext(service.WithPrincipal(ctx, p)))
			c.Set("user_id", p.UserID)
			c.Set("role", string(p.Role))
			return next(c)
		}
	}
}

// RequireRole aborts with 403 unless the authenticated caller has one of
// roles. It must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := service.PrincipalFrom(c.Request().Context())
			if !ok {
				return unauthorized(c, "authentication required")
			}
			if !allowed[p.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "insufficient role"})
			}
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}
