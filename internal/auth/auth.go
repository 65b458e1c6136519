// Package auth checks the admin credentials and issues and verifies the
// bearer tokens that guard the admin routes.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/apperr"
)

const (
	RoleAdmin = "admin"
	TokenTTL  = 24 * time.Hour
)

var (
	ErrTokenRequired = apperr.Unauthorized("authentication token required")
	ErrTokenExpired  = apperr.Unauthorized("token expired")
	ErrTokenInvalid  = apperr.Unauthorized("invalid token")
	ErrBadLogin      = apperr.Unauthorized("invalid username or password")
)

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	username string
	hash     []byte
	secret   []byte
	now      func() time.Time
}

// New builds an Authenticator for a single admin account. passwordHash is a
// bcrypt hash; when it is empty, password is hashed instead.
func New(username, passwordHash, password string, secret []byte) (*Authenticator, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}

	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}

	return &Authenticator{username: username, hash: hash, secret: secret, now: time.Now}, nil
}

// CheckCredentials reports whether username and password match the admin
// account. The bcrypt comparison runs even when the username is wrong.
func (a *Authenticator) CheckCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}

// Issue signs a token for username that expires after TokenTTL.
func (a *Authenticator) Issue(username string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(TokenTTL)
	claims := Claims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses token and returns its claims. Failures are one of
// ErrTokenRequired, ErrTokenExpired or ErrTokenInvalid.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, ErrTokenInvalid
	case claims.Role != RoleAdmin:
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type contextKey struct{}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the claims stored by WithClaims, or nil.
func FromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(contextKey{}).(*Claims)
	return c
}
