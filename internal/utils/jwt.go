package utils

import (
	"strconv" // Subject encoding
	"time"    // Token lifetime

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// TokenTTL is how long an issued identity token stays valid
const TokenTTL = 7 * 24 * time.Hour

// tokenIssuer is stamped on every identity token and required when parsing
const tokenIssuer = "ecommerce_backend"

// Claims carried by an identity token
type Claims struct {
	UserID uint `json:"user_id"` // Authenticated user
	jwt.RegisteredClaims
}

// Only HS256 tokens from this service with an expiry are accepted
var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithExpirationRequired(),
	jwt.WithIssuer(tokenIssuer),
)

// GenerateJWT signs an identity token for userID valid for TokenTTL
func GenerateJWT(userID uint, secret string) (string, error) {
	issued := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseJWT verifies tokenStr against secret and returns its claims
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	if _, err := tokenParser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, jwt.ErrTokenInvalidClaims // A token must name a user
	}
	return claims, nil
}
