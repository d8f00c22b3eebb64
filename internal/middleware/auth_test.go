package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-reporting/internal/config"
	"finance-reporting/internal/errors"
	"finance-reporting/internal/models"
	"finance-reporting/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	tokenService services.TokenServiceInterface
	e            *echo.Echo
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.tokenService = s.createTokenService(24 * time.Hour)
	s.e = echo.New()
}

func (s *AuthMiddlewareSuite) createTokenService(accessTTL time.Duration) services.TokenServiceInterface {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	return services.NewTokenService(&config.JWTConfig{
		PrivateKey:          privateKey,
		PublicKey:           publicKey,
		Issuer:              "test-issuer",
		AccessTokenDuration: accessTTL,
	})
}

func (s *AuthMiddlewareSuite) serve(mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	// SendError writes the response and returns nil
	s.NoError(handler(c))
	return rec, c
}

func (s *AuthMiddlewareSuite) assertErrorCode(rec *httptest.ResponseRecorder, code errors.ErrorCode) {
	s.Equal(http.StatusUnauthorized, rec.Code)

	var body errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(string(code), body.Error.Code)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ValidToken() {
	user := &models.User{ID: uuid.New(), Username: "analyst_1"}
	token, _, err := s.tokenService.GenerateAccessToken(user)
	s.Require().NoError(err)

	rec, c := s.serve(RequireAuth(s.tokenService), "Bearer "+token)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(user.ID, c.Get(UserIDContextKey))
	s.Equal("analyst_1", c.Get(UsernameContextKey))
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MissingHeader() {
	rec, c := s.serve(RequireAuth(s.tokenService), "")

	s.assertErrorCode(rec, errors.AuthMissingToken)
	s.Nil(c.Get(UserIDContextKey))
}

func (s *AuthMiddlewareSuite) TestRequireAuth_InvalidHeaderFormat() {
	rec, _ := s.serve(RequireAuth(s.tokenService), "Token abc")

	s.assertErrorCode(rec, errors.AuthInvalidTokenFormat)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_MalformedJWT() {
	rec, _ := s.serve(RequireAuth(s.tokenService), "Bearer invalid.jwt.token")

	s.assertErrorCode(rec, errors.AuthInvalidTokenFormat)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_ExpiredToken() {
	expiring := s.createTokenService(-time.Minute)
	token, _, err := expiring.GenerateAccessToken(&models.User{ID: uuid.New(), Username: "analyst_1"})
	s.Require().NoError(err)

	rec, _ := s.serve(RequireAuth(expiring), "Bearer "+token)

	s.assertErrorCode(rec, errors.AuthExpiredToken)
}

func (s *AuthMiddlewareSuite) TestRequireAuth_TokenSignedWithDifferentKey() {
	other := s.createTokenService(time.Hour)
	token, _, err := other.GenerateAccessToken(&models.User{ID: uuid.New(), Username: "analyst_1"})
	s.Require().NoError(err)

	rec, _ := s.serve(RequireAuth(s.tokenService), "Bearer "+token)

	s.assertErrorCode(rec, errors.AuthInvalidTokenFormat)
}
