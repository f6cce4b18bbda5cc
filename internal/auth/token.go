package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusconnect/event-portal/internal/model"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated identity inside a bearer token. Tokens are
// issued by the external account service; this core only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string     `json:"account_id"`
	Role      model.Role `json:"role"`
}

// VerifyToken parses and validates an HS256 bearer token and returns the
// identity it carries.
func VerifyToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.AccountID == "" || !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{AccountID: claims.AccountID, Role: claims.Role}, nil
}

// IssueToken signs an HS256 token for the given identity. The production
// issuer lives in the account service; this helper exists for tests and local
// tooling.
func IssueToken(id Identity, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		AccountID: id.AccountID,
		Role:      id.Role,
	})
	return token.SignedString(secretKey)
}
