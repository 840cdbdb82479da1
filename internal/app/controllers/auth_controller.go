package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sakthivel/idcard-portal/internal/app/models/dto"
	"github.com/sakthivel/idcard-portal/internal/app/services"
	"github.com/sakthivel/idcard-portal/internal/middleware"
)

// AuthController handles admin and student authentication
type AuthController struct {
	authService      services.AuthService
	lifecycleService services.LifecycleService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, lifecycleService services.LifecycleService) *AuthController {
	return &AuthController{
		authService:      authService,
		lifecycleService: lifecycleService,
	}
}

// AdminLogin authenticates an admin with username and password
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminAuthResponse} "Login successful"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req dto.AdminLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid login data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.authService.AdminLogin(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// AdminRegister creates a new admin account
// @Summary Admin registration
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminRegisterRequest true "Admin information"
// @Success 201 {object} dto.APIResponse{data=dto.AdminAuthResponse} "Admin created"
// @Failure 409 {object} dto.ErrorResponse "Username already exists"
// @Router /auth/register [post]
func (c *AuthController) AdminRegister(ctx *gin.Context) {
	var req dto.AdminRegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid registration data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.authService.AdminRegister(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// StudentLogin authenticates a student with register number and name
// @Summary Student login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentLoginRequest true "Register number and name"
// @Success 200 {object} dto.APIResponse{data=dto.StudentAuthResponse} "Login successful"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /students/login [post]
func (c *AuthController) StudentLogin(ctx *gin.Context) {
	var req dto.StudentLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid login data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.authService.StudentLogin(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// StudentSignup self-registers a student account
// @Summary Student signup
// @Description Creates a Registered record owned by the student
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup information"
// @Success 201 {object} dto.APIResponse{data=models.StudentRecord} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Register number or email already exists"
// @Router /students/signup [post]
func (c *AuthController) StudentSignup(ctx *gin.Context) {
	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid signup data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	record, err := c.lifecycleService.SelfRegister(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      record,
		Timestamp: time.Now(),
	})
}
