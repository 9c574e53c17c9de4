// Package auth gates privileged endpoints behind JWT bearer roles.
//
// Role administration itself lives outside this service; tokens arrive from
// the operator's identity provider with a "roles" claim. The middleware only
// validates and exposes the capability set; each privileged operation still
// performs its own explicit role predicate via requestcontext.HasRole.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	request "surety/pkg/platform/middleware/request"
	"surety/pkg/requestcontext"
)

// Claims are the JWT claims this service understands.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens with a shared HMAC key.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token invalid")
	}
	return claims, nil
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireRole validates the bearer token and demands the given role.
// The actor identity and full role set land in the request context so
// services can audit who performed the privileged call.
func RequireRole(verifier *Verifier, role requestcontext.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
				return
			}

			claims, err := verifier.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "rejected privileged call - invalid token",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			roles := make([]requestcontext.Role, 0, len(claims.Roles))
			for _, r := range claims.Roles {
				roles = append(roles, requestcontext.Role(r))
			}
			ctx = requestcontext.WithActor(ctx, claims.Subject, roles...)

			if !requestcontext.HasRole(ctx, role) {
				logger.WarnContext(ctx, "rejected privileged call - missing role",
					"request_id", request.GetRequestID(ctx),
					"actor", claims.Subject,
					"required_role", string(role),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "missing required role")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
