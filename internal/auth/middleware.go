package auth

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// AdminMiddleware rejects requests without a valid admin cookie and renews
// cookies that are past half of their lifetime.
func (h *AuthHandler) AdminMiddleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		claims, msg, err := h.session(ctx.Header("Cookie"))
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)
			return
		}

		// Sliding session
		if exp, ok := claims["exp"].(float64); ok {
			remaining := time.Until(time.Unix(int64(exp), 0))
			if remaining < TokenDuration/2 {
				if newToken, err := h.GenerateToken(); err == nil {
					ctx.AppendHeader("Set-Cookie", h.SessionCookie(newToken).String())
				}
			}
		}

		next(ctx)
	}
}
