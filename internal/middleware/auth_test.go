package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runAuth(t *testing.T, authHeader string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	OptionalAuth(testSecret)(c)
	return c, w
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	c, _ := runAuth(t, "Bearer "+signedToken(t, "user-42", testSecret))

	id, ok := Identity(c)
	assert.True(t, ok)
	assert.Equal(t, "user-42", id)
}

func TestOptionalAuth_NoHeader(t *testing.T) {
	c, w := runAuth(t, "")

	_, ok := Identity(c)
	assert.False(t, ok)
	// anonymous requests pass through
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth_WrongSecret(t *testing.T) {
	c, w := runAuth(t, "Bearer "+signedToken(t, "user-42", "other-secret"))

	_, ok := Identity(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth_MalformedHeader(t *testing.T) {
	c, _ := runAuth(t, "Token abc")

	_, ok := Identity(c)
	assert.False(t, ok)
}

func TestOptionalAuth_MissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	c, _ := runAuth(t, "Bearer "+signed)

	_, ok := Identity(c)
	assert.False(t, ok)
}
