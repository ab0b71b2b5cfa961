package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func cronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/cron/attendance-sweep", CronSecret(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCronSecretAcceptsMatchingBearer(t *testing.T) {
	r := cronRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/cron/attendance-sweep", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCronSecretRejectsWrongSecret(t *testing.T) {
	r := cronRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/cron/attendance-sweep", nil)
	req.Header.Set("Authorization", "Bearer guess")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCronSecretRejectsMissingHeader(t *testing.T) {
	r := cronRouter("s3cret")

	req := httptest.NewRequest(http.MethodPost, "/cron/attendance-sweep", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCronSecretUnconfiguredAlwaysRejects(t *testing.T) {
	r := cronRouter("")

	req := httptest.NewRequest(http.MethodPost, "/cron/attendance-sweep", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "not configured")
}
