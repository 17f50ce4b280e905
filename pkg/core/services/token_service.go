package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

// TokenClaims is the payload of an identity token.
type TokenClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for user valid for the configured lifetime.
func (s *TokenService) Issue(user domain.User) (string, error) {
	now := s.now()
	claims := &TokenClaims{
		ID:       user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses tokenString and returns the identity it carries.
func (s *TokenService) Verify(tokenString string) (*domain.Identity, error) {
	if tokenString == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "Missing Authorization header")
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, domain.NewError(domain.ErrUnauthorized, "Invalid or expired token")
	}
	if claims.ID == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "Invalid or expired token")
	}
	return &domain.Identity{ID: claims.ID, Username: claims.Username}, nil
}
