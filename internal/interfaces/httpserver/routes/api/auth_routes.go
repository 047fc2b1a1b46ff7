package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent-server/internal/interfaces/httpserver/handlers"
	"voiceagent-server/internal/interfaces/httpserver/requests"
	"voiceagent-server/internal/interfaces/httpserver/responses"
	"voiceagent-server/internal/utils/platformerrors"
)

// RegisterAuthRoutes registers the authentication routes.
func RegisterAuthRoutes(router *gin.RouterGroup, handler *handlers.AuthHandler, authMiddleware gin.HandlerFunc) {
	auth := router.Group("/auth")
	auth.POST("/register", register(handler))
	auth.POST("/login", login(handler))
	auth.GET("/me", authMiddleware, me(handler))
}

// register godoc
// @Summary      Register a new account
// @Description  Creates a user account and returns access and refresh tokens.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body requests.RegisterRequest true "Registration payload"
// @Success      201 {object} responses.AuthResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Router       /api/auth/register [post]
func register(handler *handlers.AuthHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Email and password are required")
			return
		}

		result, err := handler.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			responses.HandleError(c, err, "failed to register user")
			return
		}

		c.JSON(http.StatusCreated, responses.NewAuthResponse(result, "Account created"))
	}
}

// login godoc
// @Summary      Log in
// @Description  Verifies credentials and returns access and refresh tokens.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body requests.LoginRequest true "Login payload"
// @Success      200 {object} responses.AuthResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Router       /api/auth/login [post]
func login(handler *handlers.AuthHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Email and password are required")
			return
		}

		result, err := handler.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			responses.HandleError(c, err, "failed to log in")
			return
		}

		c.JSON(http.StatusOK, responses.NewAuthResponse(result, ""))
	}
}

// me godoc
// @Summary      Get the current user
// @Description  Returns the profile of the authenticated user.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} responses.UserResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /api/auth/me [get]
func me(handler *handlers.AuthHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := handler.Me(c.Request.Context(), currentUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to load user")
			return
		}

		c.JSON(http.StatusOK, responses.NewUserResponse(u))
	}
}
