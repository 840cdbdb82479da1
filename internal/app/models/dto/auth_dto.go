package dto

import "github.com/sakthivel/idcard-portal/internal/app/models"

// AdminLoginRequest represents admin credentials
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminRegisterRequest represents the one-time admin setup registration
type AdminRegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminAuthResponse carries the issued admin token
type AdminAuthResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// StudentLoginRequest represents the student login credentials.
// Students authenticate with their register number and name.
type StudentLoginRequest struct {
	RegisterNumber string `json:"registerNumber" binding:"required"`
	Name           string `json:"name" binding:"required"`
}

// StudentAuthResponse carries the issued student token
type StudentAuthResponse struct {
	ID             int64                `json:"id"`
	RegisterNumber string               `json:"registerNumber"`
	Name           string               `json:"name"`
	PhotoURL       string               `json:"photoUrl,omitempty"`
	Status         models.StudentStatus `json:"status"`
	Token          string               `json:"token"`
	Role           string               `json:"role"`
}
