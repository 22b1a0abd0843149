package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:4321", // local astro dev
	"https://meridianprocure.com",
	"https://www.meridianprocure.com",
}

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Cart-Session", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Cart-Session"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
