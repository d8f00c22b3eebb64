package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"finance-reporting/internal/dto"
	"finance-reporting/internal/errors"
	"finance-reporting/internal/repositories"
	"finance-reporting/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new dashboard user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.RegisterResponse "User registered successfully"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 409 {object} errors.ErrorResponse "AUTH_005 - Username already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Register(requestContext(c), &req)
	if err != nil {
		if stderrors.Is(err, services.ErrUsernameTaken) {
			return SendError(c, errors.AuthUsernameTaken)
		}
		if stderrors.Is(err, services.ErrPasswordTooShort) || stderrors.Is(err, services.ErrPasswordTooLong) ||
			stderrors.Is(err, services.ErrPasswordEmpty) {
			return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		User:    services.NewUserResponse(user),
	})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with username and password and receive a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse "Login successful"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Invalid credentials"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(requestContext(c), &req)
	if err != nil {
		if stderrors.Is(err, services.ErrInvalidCredentials) {
			return SendError(c, errors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Me returns the verified caller
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_002"
// @Failure 404 {object} errors.ErrorResponse "AUTH_006"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.authService.GetUser(requestContext(c), userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.AuthUserNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Authenticated",
		User:    services.NewUserResponse(user),
	})
}
