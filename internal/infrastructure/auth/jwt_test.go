package auth

import (
	"testing"
	"time"

	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.AuthConfig{
		Enabled:         true,
		JWTSecret:       "test-secret-key-at-least-32-chars",
		Issuer:          "test-issuer",
		TokenExpiration: 15 * time.Minute,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	user, branch := uuid.New(), uuid.New()

	token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
		UserID:   user,
		BranchID: branch,
		Username: "teller01",
		Roles:    []string{"supervisor"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	gotUser, _ := claims.UserUUID()
	gotBranch, _ := claims.BranchUUID()
	assert.Equal(t, user, gotUser)
	assert.Equal(t, branch, gotBranch)
	assert.Equal(t, "teller01", claims.Username)
	assert.True(t, claims.HasRole("supervisor"))
	assert.False(t, claims.HasRole("admin"))
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := newTestJWTService()

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.AuthConfig{JWTSecret: "test-secret-key-at-least-32-chars", Issuer: "test-issuer", TokenExpiration: -time.Minute})
		token, _, err := expired.GenerateToken(GenerateTokenInput{UserID: uuid.New(), BranchID: uuid.New()})
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.AuthConfig{JWTSecret: "another-secret-key-of-32-characters", Issuer: "test-issuer", TokenExpiration: time.Minute})
		token, _, err := other.GenerateToken(GenerateTokenInput{UserID: uuid.New(), BranchID: uuid.New()})
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.AuthConfig{JWTSecret: "test-secret-key-at-least-32-chars", Issuer: "elsewhere", TokenExpiration: time.Minute})
		token, _, err := other.GenerateToken(GenerateTokenInput{UserID: uuid.New(), BranchID: uuid.New()})
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing branch", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			UserID: uuid.New().String(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingBranchID)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
