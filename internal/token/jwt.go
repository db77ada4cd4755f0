package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a session token unless configured otherwise.
const DefaultTTL = 8 * time.Hour

// Claims is the signed payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	User string `json:"user"`
}

// JWT implements model.TokenCodec backed by HS256.
type JWT struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a token codec signing with secretKey whose tokens live for ttl.
func NewJWT(secretKey string, ttl time.Duration) (*JWT, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: jwt secret is empty", model.ErrConfigInvalid)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%w: negative token ttl %s", model.ErrConfigInvalid, ttl)
	}

	return &JWT{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime the codec was built with.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// Issue signs a token for subject valid for ttl from now.
func (j *JWT) Issue(subject string, ttl time.Duration) (string, model.Claims, error) {
	if ttl < 0 {
		return "", model.Claims{}, fmt.Errorf("%w: negative token ttl %s", model.ErrConfigInvalid, ttl)
	}
	if subject == "" {
		return "", model.Claims{}, errors.New("token subject is empty")
	}

	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		User: subject,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", model.Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, toModel(claims), nil
}

// Verify checks the signature and expiry of tokenString. Failures are *model.TokenError.
func (j *JWT) Verify(tokenString string) (model.Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return model.Claims{}, model.NewTokenError(classify(err), err)
	}
	if claims.User == "" {
		return model.Claims{}, model.NewTokenError(model.TokenMalformed, errors.New("token has no subject"))
	}

	return toModel(*claims), nil
}

func classify(err error) model.TokenInvalidReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.TokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return model.TokenBadSignature
	default:
		return model.TokenMalformed
	}
}

func toModel(c Claims) model.Claims {
	out := model.Claims{ID: c.ID, Subject: c.User}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
