package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleGym        = "gym"
	RoleInstructor = "instructor"
	RoleClient     = "client"
)

var ErrInvalidToken = errors.New("invalid token")

func ValidRole(role string) bool {
	return role == RoleGym || role == RoleInstructor || role == RoleClient
}

// Principal is the authenticated actor resolved from a token: one of the
// three entity tables, identified by role + row id.
type Principal struct {
	Role string
	ID   uint
}

// Claims is the decoded token payload the middleware hands to handlers.
type Claims struct {
	Principal
	TokenID   string
	ExpiresAt time.Time
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a signed HS256 token for the principal. Every token gets
// its own jti so logout can revoke it individually.
func (s *TokenService) Generate(p Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  float64(p.ID),
		"role": p.Role,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies the signature and expiry and decodes the principal.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok1 := mapClaims["sub"].(float64)
	role, ok2 := mapClaims["role"].(string)
	jti, ok3 := mapClaims["jti"].(string)
	exp, ok4 := mapClaims["exp"].(float64)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ValidRole(role) {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Principal: Principal{Role: role, ID: uint(sub)},
		TokenID:   jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
