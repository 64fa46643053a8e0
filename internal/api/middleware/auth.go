package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/order-fulfillment/internal/auth"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts JWT token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type contextKey string

const (
	BuyerContextKey contextKey = "buyer"
)

// AuthMiddleware validates JWT tokens and adds buyer claims to context
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				respondError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), BuyerContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FunctionKey rejects requests whose key header does not match key.
func FunctionKey(header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if got == "" {
				got = r.URL.Query().Get("code")
			}
			if !ValidFunctionKey(got, key) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidFunctionKey reports whether got matches key. An unconfigured key
// matches nothing.
func ValidFunctionKey(got, key string) bool {
	return key != "" && subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}

// GetBuyerFromContext retrieves buyer claims from the request context
func GetBuyerFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(BuyerContextKey).(*auth.Claims)
	return claims, ok
}

// GetBuyerID is a helper to get just the buyer ID from context
func GetBuyerID(ctx context.Context) string {
	claims, ok := GetBuyerFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.BuyerID()
}
