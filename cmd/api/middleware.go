package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// AuthTokenMiddleware requires a valid bearer token when token auth is enabled.
func (app *application) AuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !app.config.auth.token.enabled {
			next.ServeHTTP(writer, request)
			return
		}

		authHeader := request.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedErrorResponse(writer, request, fmt.Errorf("missing auth header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(writer, request, fmt.Errorf("invalid auth header"))
			return
		}

		if _, err := app.authenticator.ValidateToken(parts[1]); err != nil {
			app.unauthorizedErrorResponse(writer, request, err)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(request.RemoteAddr); !allow {
				app.rateLimitExceededResponse(writer, request, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				return
			}
		}
		next.ServeHTTP(writer, request)
	})
}
