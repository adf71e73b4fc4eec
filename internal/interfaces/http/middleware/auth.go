package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/corebank/backend/internal/infrastructure/auth"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	callerKey      = "caller"
	UserIDHeader   = "X-User-ID"
	BranchIDHeader = "X-Branch-ID"
	bearerPrefix   = "Bearer "
)

// Caller is the operator a request acts for
type Caller struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
	Roles    []string
}

// HasRole reports whether the caller carries role
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthConfig configures Authenticate. A nil JWTService trusts the
// X-User-ID and X-Branch-ID headers, which is meant for development and
// for deployments behind an authenticating gateway.
type AuthConfig struct {
	JWTService *auth.JWTService
	Logger     *zap.Logger
}

// Authenticate resolves the caller and stores it on the gin context and
// on the request scoped logger
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		var (
			caller Caller
			err    error
		)
		if cfg.JWTService != nil {
			caller, err = callerFromToken(cfg.JWTService, c.GetHeader("Authorization"))
		} else {
			caller, err = callerFromHeaders(c)
		}
		if err != nil {
			code := dto.ErrCodeUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			log.Warn("authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, err.Error(), GetRequestID(c)))
			return
		}

		c.Set(callerKey, caller)
		ctx := logger.WithUserID(c.Request.Context(), caller.UserID.String())
		ctx = logger.WithBranchID(ctx, caller.BranchID.String())
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(
			zap.String("user_id", caller.UserID.String()),
			zap.String("branch_id", caller.BranchID.String()),
		))
		c.Request = c.Request.WithContext(ctx)
		traceCaller(c, caller)
		c.Next()
	}
}

func callerFromToken(svc *auth.JWTService, header string) (Caller, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return Caller{}, errors.New("missing bearer token")
	}
	claims, err := svc.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return Caller{}, err
	}
	userID, _ := claims.UserUUID()
	branchID, _ := claims.BranchUUID()
	return Caller{UserID: userID, BranchID: branchID, Roles: claims.Roles}, nil
}

func callerFromHeaders(c *gin.Context) (Caller, error) {
	userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
	if err != nil {
		return Caller{}, errors.New("X-User-ID header must carry the operator's UUID")
	}
	branchID, err := uuid.Parse(c.GetHeader(BranchIDHeader))
	if err != nil {
		return Caller{}, errors.New("X-Branch-ID header must carry the operator's branch UUID")
	}
	return Caller{UserID: userID, BranchID: branchID}, nil
}

// CallerFrom returns the caller stored by Authenticate
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}

// RequireRole rejects callers without one of roles. It only applies when
// tokens are verified; header callers carry no roles and are let through.
func RequireRole(enforced bool, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforced {
			c.Next()
			return
		}
		caller, ok := CallerFrom(c)
		if ok {
			for _, r := range roles {
				if caller.HasRole(r) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.ErrCodeForbidden,
			"This operation requires one of the roles: "+strings.Join(roles, ", "),
			GetRequestID(c),
		))
	}
}
