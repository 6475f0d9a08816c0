package security

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService wraps JWT creation and validation. The token subject is the
// user's numeric identifier; email rides along for display only.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// CreateForUser creates a JWT for the given user.
func (t *TokenService) CreateForUser(userID int64, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(t.expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims.
func (t *TokenService) Parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}

// Subject extracts the user ID from parsed claims.
func (t *TokenService) Subject(claims jwt.MapClaims) (int64, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return 0, jwt.ErrTokenInvalidSubject
	}
	return strconv.ParseInt(sub, 10, 64)
}
