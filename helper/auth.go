package helper

import (
	"errors"
	"fmt"
	"time"

	"canteen_manager/constants"
	"canteen_manager/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims is the signed payload of a session credential.
type SessionClaims struct {
	model.TokenClaim
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateAccessToken(secret []byte, tokenClaim model.TokenClaim, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		TokenClaim: tokenClaim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(tokenClaim.UserId),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if tokenClaim.Role == constants.ROLE_ADMIN {
		claims.Subject = constants.ROLE_ADMIN
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies signature, algorithm and expiry and returns the claims.
func ParseToken(secret []byte, tokenString string) (model.TokenClaim, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return model.TokenClaim{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.TokenClaim{}, ErrInvalidToken
	}
	if claims.Role != constants.ROLE_ADMIN && claims.Role != constants.ROLE_STUDENT {
		return model.TokenClaim{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims.TokenClaim, nil
}
