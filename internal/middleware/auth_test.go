package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// runAuth sends one request through JWTAuth and reports what the downstream
// handler observed.
func runAuth(t *testing.T, token string, prepare func(*fasthttp.RequestCtx)) (status int, called bool, userID, role string) {
	t.Helper()

	handler := JWTAuth(testSecret, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		userID = string(ctx.Request.Header.Peek("X-User-ID"))
		role = string(ctx.Request.Header.Peek("X-User-Role"))
	})

	ctx := &fasthttp.RequestCtx{}
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if prepare != nil {
		prepare(ctx)
	}
	handler(ctx)
	return ctx.Response.StatusCode(), called, userID, role
}

func TestJWTAuthPropagatesClaims(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "user-1", "role": "curator"})

	_, called, userID, role := runAuth(t, token, nil)
	require.True(t, called)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "curator", role)
}

func TestJWTAuthStripsSpoofedRoleHeader(t *testing.T) {
	// valid token, but its claims carry no role
	token := signToken(t, jwt.MapClaims{"user_id": "user-1"})

	_, called, userID, role := runAuth(t, token, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("X-User-Role", "admin")
	})
	require.True(t, called)
	assert.Equal(t, "user-1", userID)
	assert.Empty(t, role, "client-supplied role must not survive the middleware")
}

func TestJWTAuthOverwritesSpoofedUserID(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "user-1", "role": "visitor"})

	_, called, userID, _ := runAuth(t, token, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("X-User-ID", "someone-else")
	})
	require.True(t, called)
	assert.Equal(t, "user-1", userID)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	status, called, _, _ := runAuth(t, "", nil)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.False(t, called)
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "user-1"}).
		SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	status, called, _, _ := runAuth(t, forged, nil)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.False(t, called)
}
