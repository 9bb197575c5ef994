package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

type staticResolver map[uuid.UUID]Actor

func (r staticResolver) ResolveActor(_ context.Context, id uuid.UUID) (Actor, error) {
	a, ok := r[id]
	if !ok {
		return Actor{}, ErrUnknownActor
	}
	return a, nil
}

func newTestConfig(actors ...Actor) (JWTConfig, *MemoryRevocationStore) {
	resolver := staticResolver{}
	for _, a := range actors {
		resolver[a.ID] = a
	}
	store := NewMemoryRevocationStore()
	return JWTConfig{
		Tokens:      NewTokenIssuer(testSigningKey, time.Hour),
		Resolver:    resolver,
		Revocations: store,
	}, store
}

func runMiddleware(t *testing.T, cfg JWTConfig, header string) (*httptest.ResponseRecorder, error, *Actor) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Actor
	handler := func(c echo.Context) error {
		if a, ok := ActorFromContext(c.Request().Context()); ok {
			seen = &a
		}
		return c.String(http.StatusOK, "ok")
	}
	err := JWTMiddleware(cfg)(handler)(c)
	return rec, err, seen
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", status)
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != status {
		t.Errorf("expected %d, got %d", status, httpErr.Code)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	cfg, store := newTestConfig()
	defer store.Close()

	_, err, _ := runMiddleware(t, cfg, "")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	cfg, store := newTestConfig()
	defer store.Close()

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err, _ := runMiddleware(t, cfg, tt.header)
			expectStatus(t, err, http.StatusUnauthorized)
		})
	}
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	actor := Actor{ID: uuid.New(), FullName: "Jane Doe", Title: "RN"}
	cfg, store := newTestConfig(actor)
	defer store.Close()

	token, _, err := cfg.Tokens.Issue(actor.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, err, seen := runMiddleware(t, cfg, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != actor.ID {
		t.Fatalf("expected actor %s in context, got %+v", actor.ID, seen)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	actor := Actor{ID: uuid.New()}
	cfg, store := newTestConfig(actor)
	defer store.Close()

	other := NewTokenIssuer([]byte("a-different-signing-key"), time.Hour)
	token, _, _ := other.Issue(actor.ID)

	_, err, _ := runMiddleware(t, cfg, "Bearer "+token)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_RejectsNoneAlgorithm(t *testing.T) {
	actor := Actor{ID: uuid.New()}
	cfg, store := newTestConfig(actor)
	defer store.Close()

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   actor.ID.String(),
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

	_, err, _ := runMiddleware(t, cfg, "Bearer "+token)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_RevokedToken(t *testing.T) {
	actor := Actor{ID: uuid.New()}
	cfg, store := newTestConfig(actor)
	defer store.Close()

	token, claims, _ := cfg.Tokens.Issue(actor.ID)
	_ = store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time)

	_, err, _ := runMiddleware(t, cfg, "Bearer "+token)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_UnknownActor(t *testing.T) {
	cfg, store := newTestConfig()
	defer store.Close()

	token, _, _ := cfg.Tokens.Issue(uuid.New())
	_, err, _ := runMiddleware(t, cfg, "Bearer "+token)
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestJWTMiddleware_ResolverFailure(t *testing.T) {
	cfg, store := newTestConfig()
	defer store.Close()
	cfg.Resolver = ActorResolverFunc(func(context.Context, uuid.UUID) (Actor, error) {
		return Actor{}, errors.New("connection refused")
	})

	token, _, _ := cfg.Tokens.Issue(uuid.New())
	_, err, _ := runMiddleware(t, cfg, "Bearer "+token)
	expectStatus(t, err, http.StatusInternalServerError)
}

func TestJWTMiddleware_Skipper(t *testing.T) {
	cfg, store := newTestConfig()
	defer store.Close()
	cfg.Skipper = func(echo.Context) bool { return true }

	rec, err, _ := runMiddleware(t, cfg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestActor_Attestation(t *testing.T) {
	if got := (Actor{FullName: "Jane Doe", Title: "RN"}).Attestation(); got != "Jane Doe, RN" {
		t.Errorf("unexpected attestation %q", got)
	}
	if got := (Actor{FullName: "Jane Doe"}).Attestation(); got != "Jane Doe" {
		t.Errorf("unexpected attestation without title %q", got)
	}
}

func TestActor_CanAccess(t *testing.T) {
	nurse := Actor{ID: uuid.New()}
	other := uuid.New()

	if nurse.CanAccess([]uuid.UUID{other}) {
		t.Error("expected unassigned nurse to be denied")
	}
	if !nurse.CanAccess([]uuid.UUID{other, nurse.ID}) {
		t.Error("expected assigned nurse to be allowed")
	}
	admin := Actor{ID: uuid.New(), IsAdmin: true}
	if !admin.CanAccess(nil) {
		t.Error("expected admin to access every patient")
	}
}
