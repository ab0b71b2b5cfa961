package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type stubResolver struct {
	role models.UserRole
	err  error
}

func (s stubResolver) ResolveRole(context.Context, string) (models.UserRole, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.role, nil
}

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*models.JWTClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func protectedRouter(validator TokenValidator, resolver RoleResolver, min models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWT(validator), RequireMinRole(resolver, min), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func bearerRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	return req
}

func TestRequireMinRoleAllowsEqualRole(t *testing.T) {
	r := protectedRouter(
		stubValidator{claims: &models.JWTClaims{Email: "i@x.test"}},
		stubResolver{role: models.RoleInstructor},
		models.RoleInstructor,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireMinRoleAllowsHigherRole(t *testing.T) {
	r := protectedRouter(
		stubValidator{claims: &models.JWTClaims{Email: "a@x.test"}},
		stubResolver{role: models.RoleSuperAdmin},
		models.RoleAdmin,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireMinRoleForbidsLowerRole(t *testing.T) {
	r := protectedRouter(
		stubValidator{claims: &models.JWTClaims{Email: "p@x.test"}},
		stubResolver{role: models.RolePreceptor},
		models.RoleInstructor,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireMinRoleUsesStoredRoleNotClaim(t *testing.T) {
	// The token claims ADMIN but the users table says STUDENT; the stored
	// role wins.
	r := protectedRouter(
		stubValidator{claims: &models.JWTClaims{Email: "s@x.test", Role: models.RoleAdmin}},
		stubResolver{role: models.RoleStudent},
		models.RoleInstructor,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireMinRoleResolverErrorPropagates(t *testing.T) {
	r := protectedRouter(
		stubValidator{claims: &models.JWTClaims{Email: "gone@x.test"}},
		stubResolver{err: appErrors.Clone(appErrors.ErrForbidden, "no user record for session email")},
		models.RoleInstructor,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := protectedRouter(stubValidator{}, stubResolver{role: models.RoleAdmin}, models.RoleInstructor)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := protectedRouter(stubValidator{}, stubResolver{role: models.RoleAdmin}, models.RoleInstructor)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "token-without-scheme")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := protectedRouter(
		stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")},
		stubResolver{role: models.RoleAdmin},
		models.RoleInstructor,
	)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, bearerRequest())
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
