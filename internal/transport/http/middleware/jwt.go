package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	authsvc "github.com/Additional-Code/tableside/internal/service/auth"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

const claimsKey = "auth.claims"

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*authsvc.Claims, error)
}

// JWT authenticates requests from the Authorization header or the access
// token cookie and stashes the claims on the request context.
func JWT(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing token")).Build()
			}
			claims, err := parser.ParseToken(token)
			if err != nil {
				return response.New(c).WithError(err).Build()
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole gates a route to the listed roles. Must run after JWT.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return response.New(c).WithError(errorbank.Unauthorized("missing token")).Build()
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return response.New(c).WithError(errorbank.Forbidden("insufficient role")).Build()
		}
	}
}

// ClaimsFrom returns the claims attached by JWT, or nil.
func ClaimsFrom(c echo.Context) *authsvc.Claims {
	claims, _ := c.Get(claimsKey).(*authsvc.Claims)
	return claims
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
