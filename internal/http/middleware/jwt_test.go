package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nestworth-api/internal/models"
	"nestworth-api/internal/repo"
	"nestworth-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeUserLoader struct {
	user *models.User
}

func (f *fakeUserLoader) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, repo.ErrNotFound
	}
	return f.user, nil
}

func signToken(t *testing.T, userID string, role models.Role, issuedAt time.Time) string {
	t.Helper()
	claims := services.Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   userID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(loader UserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{JWTAuth(AuthConfig{Secret: testSecret, Users: loader})}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/protected", chain...)
	return router
}

func TestJWTAuthMissingToken(t *testing.T) {
	router := authTestRouter(&fakeUserLoader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"fail"`)
}

func TestJWTAuthValidBearerToken(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleUser, PasswordChangedAt: time.Now().Add(-time.Hour)}
	router := authTestRouter(&fakeUserLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleUser, time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
}

func TestJWTAuthCookieToken(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleUser, PasswordChangedAt: time.Now().Add(-time.Hour)}
	router := authTestRouter(&fakeUserLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: signToken(t, "u1", models.RoleUser, time.Now())})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsTokenIssuedBeforePasswordChange(t *testing.T) {
	// Token minted an hour ago, password changed a minute ago.
	user := &models.User{ID: "u1", Role: models.RoleUser, PasswordChangedAt: time.Now().Add(-time.Minute)}
	router := authTestRouter(&fakeUserLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleUser, time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "password was changed recently")
}

func TestJWTAuthAcceptsTokenIssuedInSameSecondAsPasswordChange(t *testing.T) {
	// The change timestamp carries sub-second precision (DB NOW()), the iat
	// claim is serialized at whole seconds. A token minted a few hundred
	// milliseconds after the change must still pass.
	changed := time.Now().Truncate(time.Second).Add(300 * time.Millisecond)
	user := &models.User{ID: "u1", Role: models.RoleUser, PasswordChangedAt: changed}
	router := authTestRouter(&fakeUserLoader{user: user})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleUser, changed.Add(200*time.Millisecond)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestJWTAuthRejectsDeletedUser(t *testing.T) {
	router := authTestRouter(&fakeUserLoader{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ghost", models.RoleUser, time.Now()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer exists")
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	user := &models.User{ID: "u1", Role: models.RoleUser}
	router := authTestRouter(&fakeUserLoader{user: user})

	claims := services.Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	admin := &models.User{ID: "a1", Role: models.RoleAdmin, PasswordChangedAt: time.Now().Add(-time.Hour)}
	user := &models.User{ID: "u1", Role: models.RoleUser, PasswordChangedAt: time.Now().Add(-time.Hour)}

	adminRouter := authTestRouter(&fakeUserLoader{user: admin}, RequireRole(models.RoleAdmin))
	userRouter := authTestRouter(&fakeUserLoader{user: user}, RequireRole(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "a1", models.RoleAdmin, time.Now()))
	rec := httptest.NewRecorder()
	adminRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleUser, time.Now()))
	rec = httptest.NewRecorder()
	userRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "permission")
}
