package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/tabrima/storefront/app/api"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Recover turns a panicking handler into a 500 JSON response. The panic
// value is only sent to the client when exposeDetail is set.
func Recover(logger *slog.Logger, exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				detail := fmt.Sprint(rec)
				logger.ErrorContext(r.Context(), "panic serving request",
					"path", r.URL.Path,
					"panic", detail,
					"stack", string(debug.Stack()),
				)

				resp := ErrorResponse{Success: false, Message: "Internal server error"}
				if exposeDetail {
					resp.Error = detail
				}
				api.JSONResponse(w, http.StatusInternalServerError, resp)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
