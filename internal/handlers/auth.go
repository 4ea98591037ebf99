package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"covid-testing-server/internal/config"
	"covid-testing-server/internal/middleware"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/service/account"
	"covid-testing-server/internal/utils"
)

const refreshCookie = "refresh_token"

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Accounts *account.Service
	Logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, accounts *account.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Accounts: accounts, Logger: logger}
}

// RegisterRequest represents the request body for patient registration.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// Register opens a USER account. Staff accounts are created by an admin.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Accounts.Create(c.Request.Context(), account.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.RoleUser,
	})
	if err != nil {
		h.accountError(c, err)
		return
	}
	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
			return
		}
		h.internalError(c, "lookup user", err)
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	access, refresh, err := h.issueTokens(c, &user)
	if err != nil {
		h.internalError(c, "issue tokens", err)
		return
	}

	h.Logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Sanitize(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges a refresh token for a new pair and revokes the old one.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		presented = req.RefreshToken
	}

	claims, err := utils.ValidateToken(presented, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token")
		return
	}

	ctx := c.Request.Context()
	var stored models.RefreshToken
	if err := h.DB.WithContext(ctx).Where("token = ? AND user_id = ?", presented, claims.UserID).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
			return
		}
		h.internalError(c, "lookup refresh token", err)
		return
	}
	if !stored.Usable(time.Now()) {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}

	// Only one caller may rotate a given token.
	res := h.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND is_revoked = ?", stored.ID, false).
		Update("is_revoked", true)
	if res.Error != nil {
		h.internalError(c, "revoke refresh token", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		return
	}

	user, err := h.Accounts.Get(ctx, claims.UserID)
	if err != nil {
		h.internalError(c, "load token owner", err)
		return
	}

	access, refresh, err := h.issueTokens(c, user)
	if err != nil {
		h.internalError(c, "issue tokens", err)
		return
	}

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Logout revokes the caller's refresh token and clears its cookie. Tokens
// owned by another user are left alone.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	var req LogoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var stored models.RefreshToken
	err := h.DB.WithContext(ctx).
		Where("token = ? AND user_id = ? AND is_revoked = ?", req.RefreshToken, userID, false).
		First(&stored).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.clearRefreshCookie(c)
		utils.Success(c, "Logout successful (token not found or already invalid).", nil)
		return
	case err != nil:
		h.internalError(c, "lookup refresh token", err)
		return
	}

	stored.IsRevoked = true
	stored.ExpiresAt = time.Now()
	if err := h.DB.WithContext(ctx).Save(&stored).Error; err != nil {
		h.internalError(c, "revoke refresh token", err)
		return
	}

	h.clearRefreshCookie(c)
	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Accounts.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			utils.NotFound(c, "User profile not found")
			return
		}
		h.internalError(c, "load profile", err)
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// issueTokens signs a token pair, stores the refresh token and sets its cookie.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (string, string, error) {
	access, refresh, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return "", "", err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&record).Error; err != nil {
		return "", "", err
	}

	c.SetCookie(refreshCookie, refresh, h.Cfg.JWTRefreshExpirationHours*60*60, "/", "",
		h.Cfg.Environment != "development", true)
	return access, refresh, nil
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/", "", h.Cfg.Environment != "development", true)
}

func (h *AuthHandler) accountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		utils.BadRequest(c, "User with this email already exists")
	case errors.Is(err, account.ErrInvalidRole):
		utils.BadRequest(c, err.Error())
	default:
		h.internalError(c, "create user", err)
	}
}

func (h *AuthHandler) internalError(c *gin.Context, op string, err error) {
	h.Logger.Error(op+" failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err))
	utils.InternalServerError(c, "Internal server error")
}
