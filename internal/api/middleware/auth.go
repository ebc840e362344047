package middleware

import (
	"net/http"
	"strings"

	"solrisk/pkg/crypto"
)

// TokenAuth возвращает middleware, проверяющий Bearer-токен API.
//
// tokenHash - bcrypt-хеш ожидаемого токена (API_TOKEN_HASH).
// Пустой хеш отключает аутентификацию: локальное развертывание
// с одним пользователем работает без токена.
//
// Токен передается в заголовке Authorization: Bearer <token>.
// Сравнение через bcrypt устойчиво к timing-атакам.
//
// Использование:
//
//	api := router.PathPrefix("/api/v1").Subrouter()
//	api.Use(middleware.TokenAuth(cfg.Security.APITokenHash))
func TokenAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !crypto.CheckTokenMatch(token, tokenHash) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
