package handlers

import (
	"nestworth-api/internal/config"
	"nestworth-api/internal/http/middleware"
	"nestworth-api/internal/services"
	"nestworth-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setTokenCookie(c, resp)
	utils.RespondCreated(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setTokenCookie(c, resp)
	utils.RespondOK(c, resp)
}

// Logout clears the token cookie. Bearer tokens simply age out.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cfg.Env == "prod", true)
	utils.RespondOK(c, gin.H{"message": "logged out"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"message": "reset token sent to email"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	resp, err := h.auth.ResetPassword(c.Request.Context(), req.Email, c.Param("token"), req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setTokenCookie(c, resp)
	utils.RespondOK(c, resp)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	resp, err := h.auth.UpdatePassword(c.Request.Context(), c.GetString("user_id"),
		req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setTokenCookie(c, resp)
	utils.RespondOK(c, resp)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, resp *services.TokenResponse) {
	c.SetCookie(middleware.TokenCookie, resp.AccessToken, int(resp.ExpiresIn),
		"/", "", h.cfg.Env == "prod", true)
}
