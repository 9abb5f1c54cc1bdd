package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/habitd/internal/constants"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// GetBearerToken extracts the token from an Authorization header
func GetBearerToken(headers http.Header) (string, error) {
	authHeaderVal := headers.Get("Authorization")
	if authHeaderVal == "" {
		return "", errors.New("authorization header missing or empty")
	}
	if !strings.HasPrefix(strings.ToLower(authHeaderVal), "bearer ") {
		return "", errors.New("no token string found")
	}
	tokenElements := strings.SplitN(authHeaderVal, " ", 2)
	if len(tokenElements) != 2 || strings.TrimSpace(tokenElements[1]) == "" {
		return "", errors.New("bearer presented without token")
	}
	return strings.TrimSpace(tokenElements[1]), nil
}

// MakeJWT signs an HS256 token for owner that expires after expiresIn
func MakeJWT(owner, tokenSecret string, expiresIn time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    constants.AppName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		Subject:   owner,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
}

// ValidateJWT verifies an HS256 token and returns its subject as the owner
func ValidateJWT(tokenString, tokenSecret string) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method: " + token.Method.Alg())
		}
		return []byte(tokenSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// authenticate resolves the owner from the bearer token before passing the
// request on.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := GetBearerToken(r.Header)
		if err != nil {
			respondWithMessage(w, http.StatusUnauthorized, "no token found")
			return
		}
		owner, err := ValidateJWT(tokenString, s.secret)
		if err != nil {
			respondWithMessage(w, http.StatusUnauthorized, "invalid token provided")
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFromContext returns the authenticated owner, or "" when unauthenticated
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
