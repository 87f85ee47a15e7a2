package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func userRouter() (*gin.Engine, *primitive.ObjectID) {
	gin.SetMode(gin.TestMode)
	var captured primitive.ObjectID
	r := gin.New()
	r.GET("/protected", UserAuth(testSecret), func(c *gin.Context) {
		id, _ := c.Get("userId")
		captured = id.(primitive.ObjectID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &captured
}

func TestUserAuthValidToken(t *testing.T) {
	r, captured := userRouter()
	userID := primitive.NewObjectID()

	token := signToken(t, jwt.MapClaims{
		"sub":  userID.Hex(),
		"role": "user",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, *captured)
}

func TestUserAuthMissingToken(t *testing.T) {
	r, _ := userRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAuthExpiredToken(t *testing.T) {
	r, _ := userRouter()

	token := signToken(t, jwt.MapClaims{
		"sub": primitive.NewObjectID().Hex(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAuthRejectsMalformedSubject(t *testing.T) {
	r, _ := userRouter()

	token := signToken(t, jwt.MapClaims{
		"sub": "not-an-object-id",
		"exp": time.Now().Add(time.Minute).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthRequiresAdminRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	userToken := signToken(t, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "user",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	adminToken := signToken(t, jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": "admin",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
