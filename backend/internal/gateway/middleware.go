package gateway

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/gateway/util"
)

// AdminTokenCookie may carry the admin token when no Authorization header is sent.
const AdminTokenCookie = "admin_token"

// CSRFForward hands the browser's backend CSRF token to outgoing backend
// calls. The X-CSRFToken header wins over the cookie.
func CSRFForward(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-CSRFToken")
			if token == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				r = r.WithContext(backendapi.WithCSRFToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminGuard requires an HS256 token signed with secret whose "role" claim is
// "admin". An empty secret disables the guard.
func AdminGuard(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract Token
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				c, cookieErr := r.Cookie(AdminTokenCookie)
				if cookieErr != nil || c.Value == "" {
					util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
					return
				}
				tokenStr = c.Value
			}

			// 2. Verify signature and expiry
			claims, err := parseAdminToken(tokenStr, secret)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// 3. Check role
			if role, _ := claims["role"].(string); role != "admin" {
				util.WriteJSONError(w, http.StatusForbidden, "Admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(util.WithAdminClaims(r.Context(), claims)))
		})
	}
}

func parseAdminToken(tokenStr, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}
	return claims, nil
}
