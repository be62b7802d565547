package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "tenant_role"
)

const (
	TenantTokenHeader      = "Tenant-Token"
	VotingCredentialHeader = "Voting-Credential"
	RoleOwner              = "owner"
	RoleAdmin              = "admin"
)

type tenantClaims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TenantAuth verifies tenant tokens issued by the external auth service and
// puts the user, tenant and role into the request context.
type TenantAuth struct {
	secret []byte
}

func NewTenantAuth(secret []byte) *TenantAuth {
	return &TenantAuth{secret: secret}
}

func (a *TenantAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TenantTokenHeader)
		if raw == "" {
			http.Error(w, "Unauthorized: missing tenant token", http.StatusUnauthorized)
			return
		}

		userID, tenantID, role, err := a.parse(raw)
		if err != nil {
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, TenantIDKey, tenantID)
		ctx = context.WithValue(ctx, RoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(RoleKey).(string)
		if role != RoleOwner && role != RoleAdmin {
			http.Error(w, "Forbidden: tenant admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *TenantAuth) parse(raw string) (uuid.UUID, uuid.UUID, string, error) {
	claims := &tenantClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", errors.New("invalid subject")
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", errors.New("invalid tenant")
	}
	return userID, tenantID, claims.Role, nil
}

func tenantFromContext(ctx context.Context) (userID, tenantID uuid.UUID, ok bool) {
	userID, ok = ctx.Value(UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, ok = ctx.Value(TenantIDKey).(uuid.UUID)
	return userID, tenantID, ok
}
