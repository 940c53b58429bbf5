package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	config "github.com/wildlander/launcher/configs"
	impl "github.com/wildlander/launcher/internal/application/services"
	"github.com/wildlander/launcher/internal/core/domain/auth"
	"github.com/wildlander/launcher/internal/infrastructure/cache"
	"github.com/wildlander/launcher/internal/infrastructure/repositories"
)

const testPassword = "Sk00ma-Dealer!"

func newAuthService(t *testing.T, withRevocation bool) (*impl.AdminAuthService, *config.JWTConfig) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	jwtCfg := &config.JWTConfig{Secret: "test-secret-which-is-long-enough", AccessTokenTTL: 15 * time.Minute}
	var svc *impl.AdminAuthService
	if withRevocation {
		revocations := repositories.NewTokenRevocationRepository(cache.NewMemoryCache(), nil)
		svc = impl.NewAdminAuthService(&config.AdminConfig{PasswordHash: string(hash)}, jwtCfg, revocations, nil)
	} else {
		svc = impl.NewAdminAuthService(&config.AdminConfig{PasswordHash: string(hash)}, jwtCfg, nil, nil)
	}
	return svc, jwtCfg
}

func TestAdminAuthService_LoginAndValidate(t *testing.T) {
	svc, jwtCfg := newAuthService(t, false)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, &auth.LoginRequest{Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, int64(jwtCfg.AccessTokenTTL.Seconds()), tokens.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminSubject, claims.Subject)
	assert.Equal(t, auth.ScopePublish, claims.Scope)
	assert.NotEmpty(t, claims.ID)
}

func TestAdminAuthService_LoginRejectsBadPasswords(t *testing.T) {
	svc, _ := newAuthService(t, false)
	for _, req := range []*auth.LoginRequest{nil, {Password: ""}, {Password: "wrong-password"}} {
		_, err := svc.Login(context.Background(), req)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	unset := impl.NewAdminAuthService(&config.AdminConfig{}, &config.JWTConfig{Secret: "s"}, nil, nil)
	_, err := unset.Login(context.Background(), &auth.LoginRequest{Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAdminAuthService_ValidateTokenRejects(t *testing.T) {
	svc, jwtCfg := newAuthService(t, false)
	sign := func(method jwt.SigningMethod, key interface{}, claims *auth.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() *auth.Claims {
		return &auth.Claims{
			Scope: auth.ScopePublish,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti",
				Subject:   auth.AdminSubject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongScope := valid()
	wrongScope.Scope = "feeds:read"

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("other-secret"), valid()),
		"expired":      sign(jwt.SigningMethodHS256, []byte(jwtCfg.Secret), expired),
		"wrong scope":  sign(jwt.SigningMethodHS256, []byte(jwtCfg.Secret), wrongScope),
		"alg none":     sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid()),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), token)
			assert.Error(t, err)
		})
	}
}

func TestAdminAuthService_LogoutRevokesToken(t *testing.T) {
	svc, _ := newAuthService(t, true)
	ctx := context.Background()

	tokens, err := svc.Login(ctx, &auth.LoginRequest{Password: testPassword})
	require.NoError(t, err)
	other, err := svc.Login(ctx, &auth.LoginRequest{Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.AccessToken))
	_, err = svc.ValidateToken(ctx, tokens.AccessToken)
	assert.Error(t, err)

	// Other sessions are unaffected.
	_, err = svc.ValidateToken(ctx, other.AccessToken)
	assert.NoError(t, err)

	// A revoked token cannot log out again.
	assert.Error(t, svc.Logout(ctx, tokens.AccessToken))
}

func TestAdminAuthService_LogoutWithoutRevocationStore(t *testing.T) {
	svc, _ := newAuthService(t, false)
	tokens, err := svc.Login(context.Background(), &auth.LoginRequest{Password: testPassword})
	require.NoError(t, err)
	assert.Error(t, svc.Logout(context.Background(), tokens.AccessToken))
}
