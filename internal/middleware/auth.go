package middleware

import (
	"net/http"
	"slices"
	"strings"

	"marketplace-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	contextUserID   = "user_id"
	contextUserRole = "user_role"
)

// Claims is the access token payload: the user id in sub and the marketplace
// role in user_role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"user_role"`
}

// AuthMiddleware resolves the caller identity. With a secret it verifies an
// HS256 bearer token; without one it trusts the X-User-* headers set by the
// gateway. Requests carrying no identity pass through anonymously.
func AuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jwtSecret == "" {
				setIdentity(c, c.Request().Header.Get(HeaderUserID), c.Request().Header.Get(HeaderUserRole))
				return next(c)
			}

			token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || token == "" {
				return next(c)
			}

			var claims Claims
			_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			setIdentity(c, claims.Subject, claims.Role)
			return next(c)
		}
	}
}

func setIdentity(c echo.Context, userID, role string) {
	if id := strings.TrimSpace(userID); id != "" {
		c.Set(contextUserID, id)
	}

	r := model.Role(strings.ToUpper(strings.TrimSpace(role)))
	if r.Valid() {
		c.Set(contextUserRole, r)
	}
}

// RequireRole rejects anonymous callers with 401 and callers holding none of
// roles with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserID(c) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !slices.Contains(roles, UserRole(c)) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(contextUserID).(string)
	return id
}

func UserRole(c echo.Context) model.Role {
	role, _ := c.Get(contextUserRole).(model.Role)
	return role
}
