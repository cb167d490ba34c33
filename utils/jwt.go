package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
)

// Load the secret from an environment variable. Fallback to a default (not recommended in production).
var secretKey = []byte(getSecret())

func getSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "MEETBRIDGE"
	}
	return secret
}

// GenerateToken creates a signed JWT token with the given subject (e.g., a service account ID)
// and organization ID. The token expires after the specified duration.
func GenerateToken(subject, organizationID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"org": organizationID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
}

// ExtractOrgFromToken extracts the organization ID ("org" claim) from a valid JWT token string.
// It returns the organization ID or an error if validation fails.
func ExtractOrgFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	org, ok := claims["org"].(string)
	if !ok || org == "" {
		return "", errors.New("token does not contain a valid 'org' claim")
	}

	return org, nil
}
