package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestCredentialsFromPlainPassword(t *testing.T) {
	a, err := New("admin", "", "s3cret", secret)
	require.NoError(t, err)

	assert.True(t, a.CheckCredentials("admin", "s3cret"))
	assert.False(t, a.CheckCredentials("admin", "wrong"))
	assert.False(t, a.CheckCredentials("root", "s3cret"))
}

func TestCredentialsFromHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := New("admin", string(hash), "ignored", secret)
	require.NoError(t, err)
	assert.True(t, a.CheckCredentials("admin", "s3cret"))
	assert.False(t, a.CheckCredentials("admin", "ignored"))

	_, err = New("admin", "plain-text", "", secret)
	assert.Error(t, err)
}

func TestNewRequiresSettings(t *testing.T) {
	_, err := New("", "", "pw", secret)
	assert.Error(t, err)
	_, err = New("admin", "", "", secret)
	assert.Error(t, err)
	_, err = New("admin", "", "pw", nil)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	a, err := New("admin", "", "pw", secret)
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	token, exp, err := a.Issue("admin")
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)

	claims, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)

	now = now.Add(25 * time.Hour)
	_, err = a.Verify(token)
	assert.Equal(t, ErrTokenExpired, err)
}

func TestVerifyRejects(t *testing.T) {
	a, err := New("admin", "", "pw", secret)
	require.NoError(t, err)

	_, err = a.Verify("")
	assert.Equal(t, ErrTokenRequired, err)

	_, err = a.Verify("not.a.token")
	assert.Equal(t, ErrTokenInvalid, err)

	other, err := New("admin", "", "pw", []byte("another-secret-another-secret!!!"))
	require.NoError(t, err)
	foreign, _, err := other.Issue("admin")
	require.NoError(t, err)
	_, err = a.Verify(foreign)
	assert.Equal(t, ErrTokenInvalid, err)

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "guest",
		Role:     "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = a.Verify(notAdmin)
	assert.Equal(t, ErrTokenInvalid, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "admin", Role: RoleAdmin}).SignedString(secret)
	require.NoError(t, err)
	_, err = a.Verify(noExpiry)
	assert.Equal(t, ErrTokenInvalid, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, h := range []string{"", "Bearer", "Bearer  ", "Basic abc", "abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}

func TestClaimsContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	c := &Claims{Username: "admin"}
	assert.Same(t, c, FromContext(WithClaims(context.Background(), c)))
}
