package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
	"github.com/axmednajaad/shoptrack-admin/pkg/jwtutil"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

const callerKey = "caller"

// AuthMiddleware validates the JWT token and resolves the caller context
// from the caller's own profile row. The profile is read fresh on every
// request: role or tenant changes take effect immediately, not at the next
// token refresh.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Fresh read of the caller's own profile row; the token only
		// proves identity.
		var profile *model.User
		var user model.User
		result := database.GetDB().First(&user, claims.UserID)
		switch {
		case result.Error == nil:
			profile = &user
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			// Identity without a profile row: degraded to the
			// least-privileged context by ResolveCaller.
			log.Warn("No profile row for authenticated identity", zap.Uint("user_id", claims.UserID))
			prometheus.RecordError("profile_missing")
		default:
			log.Error("Failed to load caller profile", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve caller"})
		}

		caller, err := policy.ResolveCaller(claims.UserID, claims.Email, profile)
		if err != nil {
			prometheus.RecordError("not_authenticated")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if caller.Status != model.UserStatusActive {
			log.Warn("Rejected request from non-active user",
				zap.Uint("user_id", caller.UserID),
				zap.String("status", string(caller.Status)))
			prometheus.RecordError("user_not_active")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is not active"})
		}

		c.Set(callerKey, caller)
		c.Set("user_id", caller.UserID)
		c.Set("email", caller.Email)

		log.Debug("Request authenticated",
			zap.Uint("user_id", caller.UserID),
			zap.String("role", string(caller.Role)))

		return next(c)
	}
}

// Caller retrieves the resolved caller context from the Echo context.
// Returns nil when the auth middleware did not run.
func Caller(c echo.Context) *policy.CallerContext {
	caller, ok := c.Get(callerKey).(*policy.CallerContext)
	if !ok {
		return nil
	}
	return caller
}

// SetCaller stores a caller context, used by tests to run handlers without
// the full auth stack.
func SetCaller(c echo.Context, caller *policy.CallerContext) {
	c.Set(callerKey, caller)
}
