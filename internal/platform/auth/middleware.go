package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	ActorKey  contextKey = "actor"
	ClaimsKey contextKey = "claims"
)

// ErrUnknownActor is returned by an ActorResolver when the token subject no
// longer maps to a staff account.
var ErrUnknownActor = errors.New("unknown actor")

// ActorResolver loads the current account for a token subject. Accounts are
// re-read on every request so admin changes apply without re-login.
type ActorResolver interface {
	ResolveActor(ctx context.Context, id uuid.UUID) (Actor, error)
}

// ActorResolverFunc is a function adapter for ActorResolver.
type ActorResolverFunc func(ctx context.Context, id uuid.UUID) (Actor, error)

func (f ActorResolverFunc) ResolveActor(ctx context.Context, id uuid.UUID) (Actor, error) {
	return f(ctx, id)
}

type JWTConfig struct {
	Tokens      *TokenIssuer
	Resolver    ActorResolver
	Revocations RevocationStore
	// Skipper bypasses authentication when it returns true.
	Skipper func(c echo.Context) bool
}

func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := cfg.Tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := c.Request().Context()
			if cfg.Revocations != nil && claims.ID != "" {
				revoked, err := cfg.Revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "token revocation check unavailable").SetInternal(err)
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
				}
			}

			staffID, err := claims.StaffID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			actor, err := cfg.Resolver.ResolveActor(ctx, staffID)
			if err != nil {
				if errors.Is(err, ErrUnknownActor) {
					return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
			}

			ctx = WithActor(ctx, actor)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", actor.ID.String())

			return next(c)
		}
	}
}

// ClaimsFromContext returns the verified token claims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsKey).(*Claims)
	return claims
}
