package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/docflow/internal/logging"
	"github.com/Skotchmaster/docflow/internal/models"
	"github.com/Skotchmaster/docflow/internal/repo"
	"github.com/Skotchmaster/docflow/internal/token"
)

// Gate is the per-request authorization decision: bearer extraction,
// signature/expiry check, blacklist check, then role membership.
type Gate struct {
	Issuer *token.Issuer
	Repo   *repo.GormRepo
}

func NewGate(issuer *token.Issuer, r *repo.GormRepo) *Gate {
	return &Gate{Issuer: issuer, Repo: r}
}

// Require admits any authenticated identity when called with no roles.
// A revoked token is rejected exactly like an invalid one.
func (g *Gate) Require(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := g.Issuer.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			ctx := c.Request().Context()
			revoked, err := g.Repo.IsRevoked(ctx, raw)
			if err != nil {
				logging.FromContext(ctx).Error("blacklist_check_failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}

			userID, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			c.Set("user_id", userID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}
	return raw, true
}

func CurrentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

func CurrentRole(c echo.Context) (models.Role, bool) {
	role, ok := c.Get("role").(models.Role)
	return role, ok
}
