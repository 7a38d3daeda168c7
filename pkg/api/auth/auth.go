// Package auth authenticates API requests and resolves them to a
// tenant-scoped principal.
//
// Three modes are supported:
//   - jwt: Bearer tokens signed HS256, claims sub and tenant_id
//   - static: Bearer pre-shared keys, bcrypt-compared against the
//     configured hashes
//   - none: development mode, tenant taken from the X-Tenant-ID header
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Principal is an authenticated caller. Every handler scopes its work
// to Principal.TenantID.
type Principal struct {
	// User is a display name for logs; never used for authorization
	User string

	// TenantID is the tenant all operations are scoped to
	TenantID uuid.UUID
}

// Authenticator resolves a request to a principal.
type Authenticator interface {
	// Authenticate returns the caller's principal, or an
	// ErrCodeUnauthorized error.
	Authenticate(r *http.Request) (*Principal, error)
}

// New builds the authenticator for the configured mode.
func New(cfg config.AuthConfig) (Authenticator, error) {
	switch cfg.Mode {
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, objectstore.NewInvalidRequest("auth mode jwt requires auth.jwt_secret")
		}
		return &jwtAuthenticator{secret: []byte(cfg.JWTSecret)}, nil
	case "static":
		if len(cfg.StaticKeys) == 0 {
			return nil, objectstore.NewInvalidRequest("auth mode static requires at least one entry in auth.static_keys")
		}
		return newStaticAuthenticator(cfg.StaticKeys)
	case "none":
		return &noneAuthenticator{}, nil
	default:
		return nil, objectstore.NewInvalidRequest("unknown auth mode %q", cfg.Mode)
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Claims is the JWT payload minted and accepted by the jwt mode.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type jwtAuthenticator struct {
	secret []byte
}

func (a *jwtAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	tokenString, ok := bearerToken(r)
	if !ok {
		return nil, objectstore.NewUnauthorized("missing bearer token")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, objectstore.NewUnauthorized("invalid or expired token")
	}

	tenant, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, objectstore.NewUnauthorized("token carries no valid tenant_id claim")
	}

	return &Principal{User: claims.Subject, TenantID: tenant}, nil
}

// MintToken signs a token for the given subject and tenant. Used by
// the token CLI; the server itself never mints.
func MintToken(cfg config.AuthConfig, subject string, tenant uuid.UUID, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", objectstore.NewInvalidRequest("auth.jwt_secret is not configured")
	}
	if ttl <= 0 {
		ttl = cfg.JWTTTL
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := Claims{
		TenantID: tenant.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

type staticKey struct {
	hash   []byte
	tenant uuid.UUID
	user   string
}

type staticAuthenticator struct {
	keys []staticKey
}

func newStaticAuthenticator(entries []config.StaticKey) (*staticAuthenticator, error) {
	keys := make([]staticKey, 0, len(entries))
	for _, e := range entries {
		tenant, err := uuid.Parse(e.TenantID)
		if err != nil {
			return nil, objectstore.NewInvalidRequest("static key for user %q has invalid tenant_id", e.User)
		}
		keys = append(keys, staticKey{
			hash:   []byte(e.TokenHash),
			tenant: tenant,
			user:   e.User,
		})
	}
	return &staticAuthenticator{keys: keys}, nil
}

func (a *staticAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	key, ok := bearerToken(r)
	if !ok {
		return nil, objectstore.NewUnauthorized("missing bearer token")
	}

	// Linear scan; the key list is small and bcrypt dominates anyway
	for _, k := range a.keys {
		if bcrypt.CompareHashAndPassword(k.hash, []byte(key)) == nil {
			return &Principal{User: k.user, TenantID: k.tenant}, nil
		}
	}
	return nil, objectstore.NewUnauthorized("unknown API key")
}

// HashKey bcrypt-hashes an API key for the static_keys config section.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// tenantHeader names the header the none mode reads the tenant from.
const tenantHeader = "X-Tenant-ID"

type noneAuthenticator struct{}

func (noneAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	raw := r.Header.Get(tenantHeader)
	if raw == "" {
		return nil, objectstore.NewUnauthorized("auth mode none requires the X-Tenant-ID header")
	}
	tenant, err := uuid.Parse(raw)
	if err != nil {
		return nil, objectstore.NewUnauthorized("X-Tenant-ID is not a valid UUID")
	}
	return &Principal{User: "anonymous", TenantID: tenant}, nil
}
