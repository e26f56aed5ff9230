package service

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-task-manager/internal/model"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenCodec signs and verifies the HMAC tokens used for both access and
// refresh credentials. Parse failures are deliberately collapsed into a
// single model.ErrInvalidToken so callers cannot tell a bad signature from
// an expired or wrong-type token.
type TokenCodec struct {
	key []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{key: decodeSecret(secret)}
}

func (c *TokenCodec) Issue(username string, role string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": role,
		"typ":  tokenType,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})

	return token.SignedString(c.key)
}

func (c *TokenCodec) Parse(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return c.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, model.ErrInvalidToken
	}

	claims := &model.AuthClaims{Type: typ}
	claims.Username, _ = claimsMap["sub"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.Username == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// decodeSecret accepts the signing secret either base64-encoded or raw.
// A value that looks like standard base64 is decoded; anything else is used
// as the key bytes directly.
func decodeSecret(secret string) []byte {
	trimmed := strings.TrimSpace(secret)
	if base64Pattern.MatchString(trimmed) && len(trimmed)%4 == 0 {
		if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
			return decoded
		}
	}

	return []byte(trimmed)
}
