// Package middleware содержит HTTP middleware: recovery, логирование,
// CORS и аутентификацию API.
package middleware

import (
	"net/http"
	"runtime/debug"

	"solrisk/pkg/utils"
)

// Recovery перехватывает panic в HTTP handlers.
//
// Логирует сообщение и stack trace, возвращает клиенту 500 и
// позволяет серверу продолжить обработку последующих запросов.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.Error("Panic in HTTP handler",
					utils.Any("panic", err),
					utils.String("path", r.URL.Path),
					utils.String("stack", string(debug.Stack())),
				)

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
