package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths reachable without a bearer token.
var publicPaths = map[string]bool{
	"/health":            true,
	"/health/db":         true,
	"/metrics":           true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
}

// AuthSkipper returns true for requests whose route should skip
// authentication. It matches the registered route path, so unknown paths
// still go through the middleware and answer 401 rather than 404.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()] || c.Request().Method == "OPTIONS"
}

// IsPublicPath reports whether path is reachable without credentials.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
