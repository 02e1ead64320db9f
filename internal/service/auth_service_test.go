package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/config"
	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret: "testsecretkeydontuseinproduction32bytes!",
	Issuer:    "https://auth.finlearn.test",
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(config.AuthConfig{}, nil, nil)
	assert.Error(t, err)
}

func TestAuthService_ValidateJWT(t *testing.T) {
	mc := new(MockCache)
	svc, err := NewAuthService(testAuthConfig, mc, nil)
	require.NoError(t, err)

	token, err := svc.IssueJWT("user-1", "ada@example.com", time.Hour)
	require.NoError(t, err)
	mc.On("Get", mock.Anything, mock.AnythingOfType("string")).Return("", domain.ErrCacheMiss)

	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestAuthService_ValidateJWT_Rejects(t *testing.T) {
	svc, _ := NewAuthService(testAuthConfig, nil, nil)

	expired, _ := svc.IssueJWT("user-1", "", -time.Minute)
	other, _ := NewAuthService(config.AuthConfig{JWTSecret: "another-secret", Issuer: testAuthConfig.Issuer}, nil, nil)
	foreign, _ := other.IssueJWT("user-1", "", time.Hour)
	wrongIssuer, _ := NewAuthService(config.AuthConfig{JWTSecret: testAuthConfig.JWTSecret, Issuer: "evil"}, nil, nil)
	badIss, _ := wrongIssuer.IssueJWT("user-1", "", time.Hour)
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"wrong issuer": badIss,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateJWT(context.Background(), tok)
			assert.ErrorIs(t, err, ErrInvalidJWTToken)
		})
	}
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	mc := new(MockCache)
	hub := session.NewHub(8)
	require.NoError(t, hub.Start())
	defer hub.Close()
	sub, err := hub.Subscribe(1)
	require.NoError(t, err)

	svc, _ := NewAuthService(testAuthConfig, mc, hub)
	token, _ := svc.IssueJWT("user-1", "", time.Hour)

	mc.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()
	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)

	key := cache.RevokedTokenKey(revocationID(token, claims))
	mc.On("Set", mock.Anything, key, "user-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)
	require.NoError(t, svc.Logout(context.Background(), token, claims))

	select {
	case ev := <-sub.C:
		assert.Equal(t, session.SignedOut, ev.Type)
		assert.Equal(t, "user-1", ev.UserID)
	case <-time.After(time.Second):
		t.Fatal("signed_out event not delivered")
	}

	mc.On("Get", mock.Anything, key).Return("user-1", nil)
	_, err = svc.ValidateJWT(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_ValidateJWT_FailsOpenOnCacheError(t *testing.T) {
	mc := new(MockCache)
	svc, _ := NewAuthService(testAuthConfig, mc, nil)
	token, _ := svc.IssueJWT("user-1", "", time.Hour)
	mc.On("Get", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestRevocationID(t *testing.T) {
	withJTI := revocationID("tok", &dto.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"}})
	assert.Equal(t, "jti-1", withJTI)

	digest := revocationID("tok", &dto.AuthClaims{})
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, revocationID("tok", nil))
}

func TestAuthService_LogoutFailsWhenRevocationStoreIsDown(t *testing.T) {
	mc := new(MockCache)
	svc, _ := NewAuthService(testAuthConfig, mc, nil)
	token, _ := svc.IssueJWT("user-1", "", time.Hour)
	claims := &dto.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	mc.On("Set", mock.Anything, mock.Anything, "user-1", mock.Anything).Return(errors.New("connection refused"))

	err := svc.Logout(context.Background(), token, claims)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeStorage, domainErr.Code)
}
