package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/healthz",
	"/readyz",
	"/v1/info",
	"/metrics",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.signer == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ocen"`)
			writeError(w, r, http.StatusUnauthorized, apperr.KindInvalidRequest, err.Error())
			return
		}
		claims, err := a.signer.Verify(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ocen", error="invalid_token"`)
			writeError(w, r, http.StatusUnauthorized, apperr.KindInvalidRequest, "invalid token")
			return
		}
		ctx := auth.ContextWithCaller(r.Context(), claims.Service)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
