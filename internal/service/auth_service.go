package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/config"
	"finlearn/internal/domain"
	"finlearn/internal/dto"
	"finlearn/internal/logger"
	"finlearn/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

// AuthService validates bearer tokens issued by the identity provider and
// handles server-side sign-out.
type AuthService interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	// Logout revokes the token until it expires and announces the sign-out.
	Logout(ctx context.Context, tokenString string, claims *dto.AuthClaims) error
	// IssueJWT signs a token with the shared secret. The API never hands these
	// out; it serves local tooling and tests.
	IssueJWT(userID, email string, ttl time.Duration) (string, error)
}

type authServiceImpl struct {
	cfg   config.AuthConfig
	cache domain.Cache
	hub   *session.Hub
	now   func() time.Time
}

func NewAuthService(cfg config.AuthConfig, c domain.Cache, hub *session.Hub) (AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &authServiceImpl{cfg: cfg, cache: c, hub: hub, now: time.Now}, nil
}

func (s *authServiceImpl) IssueJWT(userID, email string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &dto.AuthClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID() == "" {
		return nil, ErrInvalidJWTToken
	}

	if s.cache != nil {
		_, err := s.cache.Get(ctx, cache.RevokedTokenKey(revocationID(tokenString, claims)))
		switch {
		case err == nil:
			return nil, ErrTokenRevoked
		case !errors.Is(err, domain.ErrCacheMiss):
			// Fail open when the cache is unreachable.
			logger.Get().Warn("Token revocation check failed", zap.Error(err))
		}
	}
	return claims, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, tokenString string, claims *dto.AuthClaims) error {
	if claims == nil {
		return domain.NewUnauthorizedError("Not signed in")
	}
	if s.cache != nil && claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			key := cache.RevokedTokenKey(revocationID(tokenString, claims))
			if err := s.cache.Set(ctx, key, claims.UserID(), ttl); err != nil {
				return domain.NewStorageError("Failed to revoke token", err)
			}
		}
	}

	if s.hub != nil {
		if err := s.hub.Publish(ctx, session.Event{Type: session.SignedOut, UserID: claims.UserID()}); err != nil {
			logger.Get().Warn("Failed to publish sign-out", zap.String("userID", claims.UserID()), zap.Error(err))
		}
	}
	logger.Get().Info("User signed out", zap.String("userID", claims.UserID()))
	return nil
}

// revocationID prefers the jti claim and falls back to a digest of the raw token.
func revocationID(tokenString string, claims *dto.AuthClaims) string {
	if claims != nil && claims.ID != "" {
		return claims.ID
	}
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}
