package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"privacyhub/internal/services"
)

type ctxKey int

const claimsKey ctxKey = iota

// AuthMiddleware is the only place protected routes check credentials.
type AuthMiddleware struct {
	tokens  *services.TokenService
	revoked *services.Revocations
	logger  *zap.Logger
}

func NewAuthMiddleware(tokens *services.TokenService, revoked *services.Revocations, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revoked: revoked, logger: logger}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}
		claims, err := m.tokens.Verify(raw)
		if err != nil {
			m.logger.Debug("rejected token", zap.Error(err))
			unauthorized(w)
			return
		}
		if m.revoked != nil && m.revoked.Revoked(claims.ID) {
			m.logger.Debug("rejected revoked token", zap.String("jti", claims.ID))
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims attached by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*services.Claims)
	return c, ok && c != nil
}
