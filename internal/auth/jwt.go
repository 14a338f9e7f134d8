package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Token types carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// MinSecretLength is the shortest HS256 secret accepted.
const MinSecretLength = 32

// ErrWeakSecret is returned for secrets shorter than MinSecretLength.
var ErrWeakSecret = errors.New("auth: jwt secret must be at least 32 bytes")

// Claims represents JWT token claims.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// Principal converts the claims into an rbac principal. The role is parsed here
// and nowhere deeper.
func (c *Claims) Principal() rbac.Principal {
	return rbac.Principal{UserID: c.UserID, Email: c.Email, Role: rbac.ParseRole(c.Role)}
}

// TokenManager issues and verifies HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager validates the secret and builds a TokenManager.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of m that reads time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// Now reports the manager's current time.
func (m *TokenManager) Now() time.Time {
	return m.now()
}

// AccessTTL exposes the access token lifetime.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL exposes the refresh token lifetime.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue signs a new access/refresh pair for p. The refresh claims are returned
// so the caller can register the jti.
func (m *TokenManager) Issue(p rbac.Principal) (TokenPair, *Claims, error) {
	issuedAt := m.now()
	access, _, err := m.sign(p, TokenTypeAccess, issuedAt, m.accessTTL)
	if err != nil {
		return TokenPair{}, nil, err
	}
	refresh, refreshClaims, err := m.sign(p, TokenTypeRefresh, issuedAt, m.refreshTTL)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(m.accessTTL / time.Second),
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time.UTC(),
	}, refreshClaims, nil
}

func (m *TokenManager) sign(p rbac.Principal, typ string, issuedAt time.Time, ttl time.Duration) (string, *Claims, error) {
	claims := &Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Role:   p.Role.String(),
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(p.UserID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign %s token: %w", typ, err)
	}
	return signed, claims, nil
}

// Parse verifies raw and checks it carries the expected typ claim. Expired
// tokens map to httpx.ErrTokenExpired, everything else to httpx.ErrUnauthorized.
func (m *TokenManager) Parse(raw, typ string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, httpx.Wrap(httpx.ErrTokenExpired, "Token expired", err)
		}
		return nil, httpx.Wrap(httpx.ErrUnauthorized, "Invalid token", err)
	}
	if !token.Valid || claims.Type != typ || claims.UserID == 0 {
		return nil, httpx.Unauthorized("Invalid token")
	}
	return claims, nil
}
