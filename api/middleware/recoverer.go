package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/pooladgaran/campane-backend/api/responses"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// Recoverer turns handler panics into a logged 500 with the standard error
// envelope instead of tearing down the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic": rec,
						"stack": string(debug.Stack()),
					})
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
